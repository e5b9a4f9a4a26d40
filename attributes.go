// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// Attribute-name constants for the predefined attributes recognized by
// this decoder (JVMS 4.7). Attribute names the decoder does not recognize
// are still captured as raw Attribute values; only Code is unconditionally
// re-parsed since bytecode decoding is this package's core concern.
const (
	AttrConstantValue                        = "ConstantValue"
	AttrCode                                  = "Code"
	AttrStackMapTable                         = "StackMapTable"
	AttrExceptions                            = "Exceptions"
	AttrInnerClasses                          = "InnerClasses"
	AttrEnclosingMethod                       = "EnclosingMethod"
	AttrSynthetic                             = "Synthetic"
	AttrSignature                             = "Signature"
	AttrSourceFile                            = "SourceFile"
	AttrSourceDebugExtension                  = "SourceDebugExtension"
	AttrLineNumberTable                       = "LineNumberTable"
	AttrLocalVariableTable                    = "LocalVariableTable"
	AttrLocalVariableTypeTable                = "LocalVariableTypeTable"
	AttrDeprecated                            = "Deprecated"
	AttrRuntimeVisibleAnnotations             = "RuntimeVisibleAnnotations"
	AttrRuntimeInvisibleAnnotations           = "RuntimeInvisibleAnnotations"
	AttrRuntimeVisibleParameterAnnotations    = "RuntimeVisibleParameterAnnotations"
	AttrRuntimeInvisibleParameterAnnotations  = "RuntimeInvisibleParameterAnnotations"
	AttrRuntimeVisibleTypeAnnotations         = "RuntimeVisibleTypeAnnotations"
	AttrRuntimeInvisibleTypeAnnotations       = "RuntimeInvisibleTypeAnnotations"
	AttrAnnotationDefault                     = "AnnotationDefault"
	AttrBootstrapMethods                      = "BootstrapMethods"
	AttrMethodParameters                      = "MethodParameters"
	AttrModule                                = "Module"
	AttrModulePackages                        = "ModulePackages"
	AttrModuleMainClass                       = "ModuleMainClass"
	AttrNestHost                              = "NestHost"
	AttrNestMembers                           = "NestMembers"
	AttrRecord                                = "Record"
	AttrPermittedSubclasses                   = "PermittedSubclasses"
)

// Attribute is a generic (name, info) pair (JVMS 4.7's attribute_info),
// retained as raw bytes except for Code, which this package always
// decodes eagerly since instruction decoding is its central concern. Body
// aliases the class file's backing buffer.
type Attribute struct {
	Name string
	Body []byte

	// Code is non-nil when Name == AttrCode: the eagerly-decoded contents
	// of a Code attribute. Left nil for every other attribute kind.
	Code *CodeBlock
}

// parseAttributes decodes an attributes_count-prefixed attribute table
// from c. cp resolves each attribute_name_index, including those of the
// attributes nested inside a Code attribute. opts may be nil,
// in which case Code attributes are decoded with default (lenient) switch
// padding and no code-size cap.
func parseAttributes(c *Cursor, cp *ConstantPool, opts *Options) ([]Attribute, error) {
	count, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, 0, count)
	for i := uint16(0); i < count; i++ {
		attr, err := parseOneAttribute(c, cp, opts)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func parseOneAttribute(c *Cursor, cp *ConstantPool, opts *Options) (Attribute, error) {
	nameIndex, err := c.ReadU16()
	if err != nil {
		return Attribute{}, err
	}
	name, err := cp.GetUtf8(nameIndex)
	if err != nil {
		return Attribute{}, err
	}
	length, err := c.ReadU32()
	if err != nil {
		return Attribute{}, err
	}
	body, err := c.ReadBytes(int(length))
	if err != nil {
		return Attribute{}, err
	}

	attr := Attribute{Name: name, Body: body}
	if name == AttrCode {
		sub := NewCursor(body)
		code, err := parseCodeBlock(sub, cp, opts)
		if err != nil {
			return Attribute{}, err
		}
		attr.Code = code
	}
	return attr, nil
}

// findAttribute returns the first attribute in attrs named name, or false
// if none matches.
func findAttribute(attrs []Attribute, name string) (Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}
