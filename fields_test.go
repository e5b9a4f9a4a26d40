// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

// utf8OnlyPool builds a ConstantPool whose entries are exactly the given
// Utf8 strings, 1-indexed in order.
func utf8OnlyPool(t *testing.T, strs ...string) *ConstantPool {
	t.Helper()
	var b []byte
	put := func(bs ...byte) { b = append(b, bs...) }
	u16 := func(v uint16) { put(byte(v>>8), byte(v)) }
	for _, s := range strs {
		put(1)
		u16(uint16(len(s)))
		put([]byte(s)...)
	}
	c := NewCursor(b)
	cp, err := parseConstantPool(c, uint16(len(strs)+1))
	if err != nil {
		t.Fatalf("parseConstantPool: %v", err)
	}
	return cp
}

func TestParseFieldsSimple(t *testing.T) {
	cp := utf8OnlyPool(t, "count", "I")

	var b []byte
	put := func(bs ...byte) { b = append(b, bs...) }
	u16 := func(v uint16) { put(byte(v>>8), byte(v)) }

	u16(1)                         // fields_count
	u16(uint16(AccPrivate))        // access_flags
	u16(1)                         // name_index -> "count"
	u16(2)                         // descriptor_index -> "I"
	u16(0)                         // attributes_count

	fields, err := parseFields(NewCursor(b), cp, nil)
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("got %d fields, want 1", len(fields))
	}
	f := fields[0]
	if f.Name != "count" || f.Descriptor != "I" {
		t.Errorf("got Name=%q Descriptor=%q, want count/I", f.Name, f.Descriptor)
	}
	if !f.AccessFlags.Is(AccPrivate) {
		t.Error("expected AccPrivate set")
	}
	if _, ok := f.ConstantValue(); ok {
		t.Error("unexpected ConstantValue on a field with no attributes")
	}
}

func TestParseFieldsBadNameIndex(t *testing.T) {
	cp := utf8OnlyPool(t, "x")

	var b []byte
	put := func(bs ...byte) { b = append(b, bs...) }
	u16 := func(v uint16) { put(byte(v>>8), byte(v)) }

	u16(1)  // fields_count
	u16(0)  // access_flags
	u16(99) // name_index: out of range
	u16(1)  // descriptor_index
	u16(0)  // attributes_count

	_, err := parseFields(NewCursor(b), cp, nil)
	if err == nil {
		t.Fatal("expected an error for an out-of-range name_index, got nil")
	}
}
