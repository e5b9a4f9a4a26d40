// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

// buildPool assembles a constant_pool byte stream (tags + payloads) and
// parses it with the given constant_pool_count, exactly as ClassFile.Parse
// would encounter it embedded in a class file.
func buildPool(t *testing.T, count uint16, raw []byte) *ConstantPool {
	t.Helper()
	cp, err := parseConstantPool(NewCursor(raw), count)
	if err != nil {
		t.Fatalf("parseConstantPool: %v", err)
	}
	return cp
}

func TestConstantPoolLongOccupiesTwoSlots(t *testing.T) {
	// #1 Long(42), #2 reserved, #3 Utf8("x"). constant_pool_count = 4.
	raw := []byte{
		5, 0, 0, 0, 0, 0, 0, 0, 42, // tag Long, 8-byte value
		1, 0, 1, 'x', // tag Utf8, length 1, "x"
	}
	cp := buildPool(t, 4, raw)

	if cp.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", cp.Len())
	}
	e, ok := cp.Get(1)
	if !ok {
		t.Fatal("index 1 missing")
	}
	long, ok := e.(*ConstantLong)
	if !ok || long.Value != 42 {
		t.Errorf("index 1 = %#v, want ConstantLong{42}", e)
	}

	if _, ok := cp.Get(2); ok {
		t.Error("index 2 (reserved gap slot) should not resolve")
	}

	s, err := cp.GetUtf8(3)
	if err != nil || s != "x" {
		t.Errorf("GetUtf8(3) = %q, %v; want \"x\", nil", s, err)
	}
}

func TestConstantPoolDoubleOccupiesTwoSlots(t *testing.T) {
	bits := []byte{0x40, 0x09, 0x21, 0xfb, 0x54, 0x44, 0x2d, 0x18} // ~3.14159
	raw := append([]byte{6}, bits...)
	cp := buildPool(t, 3, raw)

	e, ok := cp.Get(1)
	if !ok {
		t.Fatal("index 1 missing")
	}
	if _, ok := e.(*ConstantDouble); !ok {
		t.Errorf("index 1 = %T, want *ConstantDouble", e)
	}
	if _, ok := cp.Get(2); ok {
		t.Error("index 2 (reserved gap slot) should not resolve")
	}
}

func TestConstantPoolUnknownTag(t *testing.T) {
	_, err := parseConstantPool(NewCursor([]byte{99, 0, 0}), 2)
	if err == nil {
		t.Fatal("expected error for unknown tag")
	}
	if _, ok := err.(*UnknownConstantPoolTagError); !ok {
		t.Errorf("got %T, want *UnknownConstantPoolTagError", err)
	}
}

func TestConstantPoolResolveMethodref(t *testing.T) {
	// #1 Utf8("Foo") #2 Class(#1) #3 Utf8("bar") #4 Utf8("()V")
	// #5 NameAndType(#3,#4) #6 Methodref(#2,#5)
	raw := []byte{}
	raw = append(raw, 1, 0, 3, 'F', 'o', 'o')
	raw = append(raw, 7, 0, 1)
	raw = append(raw, 1, 0, 3, 'b', 'a', 'r')
	raw = append(raw, 1, 0, 3, '(', ')', 'V')
	raw = append(raw, 12, 0, 3, 0, 4)
	raw = append(raw, 10, 0, 2, 0, 5)

	cp := buildPool(t, 7, raw)
	ref, err := cp.ResolveMethodref(6)
	if err != nil {
		t.Fatalf("ResolveMethodref: %v", err)
	}
	if ref.ClassName != "Foo" || ref.Name != "bar" || ref.Descriptor != "()V" {
		t.Errorf("got %+v", ref)
	}
}

func TestDecodeModifiedUTF8NulEncoding(t *testing.T) {
	// Modified UTF-8 encodes NUL as the two-byte sequence 0xC0 0x80, not
	// the single zero byte that plain UTF-8 would use.
	s, err := decodeModifiedUTF8([]byte{'a', 0xC0, 0x80, 'b'})
	if err != nil {
		t.Fatalf("decodeModifiedUTF8: %v", err)
	}
	want := "a\x00b"
	if s != want {
		t.Errorf("got %q, want %q", s, want)
	}
}

func TestDecodeModifiedUTF8SupplementaryPair(t *testing.T) {
	// U+1D11E (musical G clef) encoded as a CESU-8 surrogate pair, the
	// 3-byte UTF-8 encodings of high surrogate 0xD834 and low surrogate
	// 0xDD1E: ED A0 B4 ED B4 9E.
	s, err := decodeModifiedUTF8([]byte{0xED, 0xA0, 0xB4, 0xED, 0xB4, 0x9E})
	if err != nil {
		t.Fatalf("decodeModifiedUTF8: %v", err)
	}
	r := []rune(s)
	if len(r) != 1 || r[0] != 0x1D11E {
		t.Errorf("got %q (%v), want U+1D11E", s, r)
	}
}

func TestDecodeModifiedUTF8Malformed(t *testing.T) {
	if _, err := decodeModifiedUTF8([]byte{0xC0}); err == nil {
		t.Fatal("expected error on truncated two-byte sequence")
	}
}
