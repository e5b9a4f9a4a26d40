// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// FieldInfo is a decoded field_info structure (JVMS 4.5).
type FieldInfo struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Attributes  []Attribute
}

// Strings renders f's access flags in JVMS declaration order.
func (f *FieldInfo) Strings() []string { return f.AccessFlags.fieldStrings() }

// ConstantValue returns the field's ConstantValue attribute, if present
// (used for compile-time-constant static final fields).
func (f *FieldInfo) ConstantValue() (Attribute, bool) {
	return findAttribute(f.Attributes, AttrConstantValue)
}

func parseFields(c *Cursor, cp *ConstantPool, opts *Options) ([]FieldInfo, error) {
	count, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	fields := make([]FieldInfo, count)
	for i := range fields {
		flags, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		nameIndex, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		name, err := cp.GetUtf8(nameIndex)
		if err != nil {
			return nil, err
		}
		descIndex, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		desc, err := cp.GetUtf8(descIndex)
		if err != nil {
			return nil, err
		}
		attrs, err := parseAttributes(c, cp, opts)
		if err != nil {
			return nil, err
		}
		fields[i] = FieldInfo{
			AccessFlags: AccessFlags(flags),
			Name:        name,
			Descriptor:  desc,
			Attributes:  attrs,
		}
	}
	return fields, nil
}
