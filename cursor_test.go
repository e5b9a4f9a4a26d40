// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

func TestCursorReadPrimitives(t *testing.T) {
	c := NewCursor([]byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x01})

	u32, err := c.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if u32 != 0xCAFEBABE {
		t.Errorf("got 0x%08X, want 0xCAFEBABE", u32)
	}

	u16, err := c.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16: %v", err)
	}
	if u16 != 1 {
		t.Errorf("got %d, want 1", u16)
	}

	if c.Remaining() != 0 {
		t.Errorf("expected cursor exhausted, %d bytes remain", c.Remaining())
	}
}

func TestCursorUnexpectedEOF(t *testing.T) {
	c := NewCursor([]byte{0x01})
	if _, err := c.ReadU32(); err == nil {
		t.Fatal("expected error reading past end of buffer")
	} else if _, ok := err.(*UnexpectedEOFError); !ok {
		t.Errorf("got %T, want *UnexpectedEOFError", err)
	}
}

func TestCursorSeek(t *testing.T) {
	c := NewCursor(make([]byte, 10))
	if err := c.SeekAbsolute(5); err != nil {
		t.Fatalf("SeekAbsolute: %v", err)
	}
	if c.Position() != 5 {
		t.Errorf("position = %d, want 5", c.Position())
	}
	if err := c.SeekAbsolute(11); err == nil {
		t.Fatal("expected OutOfBoundsError seeking past buffer end")
	}
	if err := c.SeekRelative(-6); err == nil {
		t.Fatal("expected OutOfBoundsError seeking before buffer start")
	}
}

func TestCursorPeekDoesNotAdvance(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03, 0x04})
	v, err := c.PeekU16(1)
	if err != nil {
		t.Fatalf("PeekU16: %v", err)
	}
	if v != 0x0203 {
		t.Errorf("got 0x%04X, want 0x0203", v)
	}
	if c.Position() != 0 {
		t.Errorf("peek moved cursor to %d, want 0", c.Position())
	}
}

func TestCursorSubIsolatesRange(t *testing.T) {
	c := NewCursor([]byte{0xAA, 0x01, 0x02, 0x03, 0xBB})
	if _, err := c.ReadU8(); err != nil {
		t.Fatalf("ReadU8: %v", err)
	}
	sub, err := c.Sub(3)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if sub.Len() != 3 {
		t.Errorf("sub len = %d, want 3", sub.Len())
	}
	if _, err := sub.ReadBytes(4); err == nil {
		t.Fatal("expected sub-cursor to refuse reading past its own bound")
	}
	next, err := c.ReadU8()
	if err != nil {
		t.Fatalf("ReadU8 after Sub: %v", err)
	}
	if next != 0xBB {
		t.Errorf("got 0x%02X, want 0xBB", next)
	}
}
