// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

func TestParseUnexpectedEOFOnTinyFile(t *testing.T) {
	data := []byte{0xCA, 0xFE, 0xBA, 0xBE}
	f, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes: %v", err)
	}
	err = f.Parse()
	if err == nil {
		t.Fatal("expected an error parsing a 4-byte file, got nil")
	}
	var eof *UnexpectedEOFError
	if !asEOF(err, &eof) {
		t.Fatalf("expected *UnexpectedEOFError, got %T: %v", err, err)
	}
}

func asEOF(err error, target **UnexpectedEOFError) bool {
	for err != nil {
		if e, ok := err.(*UnexpectedEOFError); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func TestParseBadMagic(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x00, 0x00, 0x34}
	f, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes: %v", err)
	}
	err = f.Parse()
	var bad *BadMagicError
	if !asBadMagic(err, &bad) {
		t.Fatalf("expected *BadMagicError, got %T: %v", err, err)
	}
	if bad.Got != 0xDEADBEEF {
		t.Errorf("Got = 0x%08X, want 0xDEADBEEF", bad.Got)
	}
}

func asBadMagic(err error, target **BadMagicError) bool {
	for err != nil {
		if e, ok := err.(*BadMagicError); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// minimalEmptyClass builds the bytes of a class roughly equivalent to
// `public final class Empty {}` minus its implicit <init> method (the
// decoder under test does not require a method table to be non-empty, so
// this fixture isolates the orchestrator's top-level field decoding
// without hand-assembling a Code attribute).
func minimalEmptyClass() []byte {
	var b []byte
	put := func(bs ...byte) { b = append(b, bs...) }
	u16 := func(v uint16) { put(byte(v>>8), byte(v)) }

	put(0xCA, 0xFE, 0xBA, 0xBE) // magic
	u16(0)                      // minor_version
	u16(52)                     // major_version (Java 8)

	u16(5) // constant_pool_count (4 entries + 1)

	// #1: Utf8 "Empty"
	put(1)
	u16(5)
	put('E', 'm', 'p', 't', 'y')

	// #2: Class -> #1
	put(7)
	u16(1)

	// #3: Utf8 "java/lang/Object"
	put(1)
	u16(16)
	put('j', 'a', 'v', 'a', '/', 'l', 'a', 'n', 'g', '/', 'O', 'b', 'j', 'e', 'c', 't')

	// #4: Class -> #3
	put(7)
	u16(3)

	u16(uint16(AccPublic | AccFinal | AccSuper)) // access_flags
	u16(2)                                       // this_class
	u16(4)                                       // super_class
	u16(0)                                       // interfaces_count
	u16(0)                                       // fields_count
	u16(0)                                       // methods_count
	u16(0)                                       // attributes_count

	return b
}

func TestParseMinimalClass(t *testing.T) {
	f, err := NewBytes(minimalEmptyClass(), nil)
	if err != nil {
		t.Fatalf("NewBytes: %v", err)
	}
	if err := f.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	thisClass, err := f.ThisClassName()
	if err != nil || thisClass != "Empty" {
		t.Errorf("ThisClassName() = %q, %v, want Empty, nil", thisClass, err)
	}
	superClass, ok, err := f.SuperClassName()
	if err != nil || !ok || superClass != "java/lang/Object" {
		t.Errorf("SuperClassName() = %q, %v, %v, want java/lang/Object, true, nil", superClass, ok, err)
	}
	if len(f.Fields) != 0 || len(f.Methods) != 0 || len(f.InterfaceIndices) != 0 {
		t.Errorf("expected empty fields/methods/interfaces, got %d/%d/%d",
			len(f.Fields), len(f.Methods), len(f.InterfaceIndices))
	}
	if !f.AccessFlags.Is(AccPublic) || !f.AccessFlags.Is(AccFinal) {
		t.Errorf("expected public final access flags, got %v", f.Strings())
	}
}

func TestParseFastStopsBeforeMembers(t *testing.T) {
	f, err := NewBytes(minimalEmptyClass(), &Options{Fast: true})
	if err != nil {
		t.Fatalf("NewBytes: %v", err)
	}
	if err := f.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	thisClass, err := f.ThisClassName()
	if err != nil || thisClass != "Empty" {
		t.Errorf("ThisClassName() = %q, %v, want Empty, nil", thisClass, err)
	}
	if f.InterfaceIndices != nil || f.Fields != nil || f.Methods != nil || f.Attributes != nil {
		t.Errorf("Fast parse should leave post-super_class fields nil, got interfaces=%v fields=%v methods=%v attrs=%v",
			f.InterfaceIndices, f.Fields, f.Methods, f.Attributes)
	}
}

func TestDefaultOptionsAllowsNonZeroSwitchPadding(t *testing.T) {
	opts := DefaultOptions()
	if !opts.AllowNonZeroSwitchPadding {
		t.Error("DefaultOptions().AllowNonZeroSwitchPadding = false, want true")
	}
	if opts.Fast {
		t.Error("DefaultOptions().Fast = true, want false")
	}
	if opts.MaxCodeSize != 0 {
		t.Errorf("DefaultOptions().MaxCodeSize = %d, want 0", opts.MaxCodeSize)
	}
}

func TestParseErrorWrapsClassPath(t *testing.T) {
	data := []byte{0xCA, 0xFE, 0xBA, 0xBE}
	f, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes: %v", err)
	}
	f.path = "Empty.class"

	perr := f.Parse()
	pe, ok := perr.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", perr, perr)
	}
	if pe.ClassPath != "Empty.class" {
		t.Errorf("ClassPath = %q, want Empty.class", pe.ClassPath)
	}
	if pe.Unwrap() == nil {
		t.Error("Unwrap() returned nil, want the underlying error")
	}
}
