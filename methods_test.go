// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

func TestParseMethodsSimple(t *testing.T) {
	cp := utf8OnlyPool(t, "<init>", "()V")

	var b []byte
	put := func(bs ...byte) { b = append(b, bs...) }
	u16 := func(v uint16) { put(byte(v>>8), byte(v)) }

	u16(1)                               // methods_count
	u16(uint16(AccPublic))               // access_flags
	u16(1)                               // name_index -> "<init>"
	u16(2)                                // descriptor_index -> "()V"
	u16(0)                                // attributes_count

	methods, err := parseMethods(NewCursor(b), cp, nil)
	if err != nil {
		t.Fatalf("parseMethods: %v", err)
	}
	if len(methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(methods))
	}
	m := methods[0]
	if m.Name != "<init>" || m.Descriptor != "()V" {
		t.Errorf("got Name=%q Descriptor=%q, want <init>/()V", m.Name, m.Descriptor)
	}
	if _, ok := m.Code(); ok {
		t.Error("unexpected Code attribute on a method with no attributes")
	}
	if exs, err := m.Exceptions(cp); err != nil || exs != nil {
		t.Errorf("Exceptions() = %v, %v; want nil, nil", exs, err)
	}
}

func TestParseMethodsAttributeErrorWrapsMethodSig(t *testing.T) {
	cp := utf8OnlyPool(t, "run", "()V")

	var b []byte
	put := func(bs ...byte) { b = append(b, bs...) }
	u16 := func(v uint16) { put(byte(v>>8), byte(v)) }

	u16(1)                  // methods_count
	u16(uint16(AccPublic))  // access_flags
	u16(1)                  // name_index -> "run"
	u16(2)                  // descriptor_index -> "()V"
	u16(1)                  // attributes_count
	u16(99)                 // attribute_name_index: out of range
	put(0, 0, 0, 0)          // attribute_length = 0

	_, err := parseMethods(NewCursor(b), cp, nil)
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if pe.MethodSig != "run()V" {
		t.Errorf("MethodSig = %q, want run()V", pe.MethodSig)
	}
	if pe.Unwrap() == nil {
		t.Error("Unwrap() returned nil")
	}
}
