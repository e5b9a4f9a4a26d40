// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// MethodInfo is a decoded method_info structure (JVMS 4.6).
type MethodInfo struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Attributes  []Attribute
}

// Strings renders m's access flags in JVMS declaration order.
func (m *MethodInfo) Strings() []string { return m.AccessFlags.methodStrings() }

// Code returns m's decoded Code attribute, if present. Abstract and
// native methods have none.
func (m *MethodInfo) Code() (*CodeBlock, bool) {
	attr, ok := findAttribute(m.Attributes, AttrCode)
	if !ok || attr.Code == nil {
		return nil, false
	}
	return attr.Code, true
}

// Exceptions returns the checked exception class names listed in m's
// Exceptions attribute, if present.
func (m *MethodInfo) Exceptions(cp *ConstantPool) ([]string, error) {
	attr, ok := findAttribute(m.Attributes, AttrExceptions)
	if !ok {
		return nil, nil
	}
	ec := NewCursor(attr.Body)
	count, err := ec.ReadU16()
	if err != nil {
		return nil, err
	}
	names := make([]string, count)
	for i := range names {
		idx, err := ec.ReadU16()
		if err != nil {
			return nil, err
		}
		name, err := cp.GetClassName(idx)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

func parseMethods(c *Cursor, cp *ConstantPool, opts *Options) ([]MethodInfo, error) {
	count, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	methods := make([]MethodInfo, count)
	for i := range methods {
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
			return nil, &ParseError{MethodSig: name + desc, Err: err}
		}
		methods[i] = MethodInfo{
			AccessFlags: AccessFlags(flags),
			Name:        name,
			Descriptor:  desc,
			Attributes:  attrs,
		}
	}
	return methods, nil
}
