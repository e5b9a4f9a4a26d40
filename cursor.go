// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "encoding/binary"

// Cursor is a random-access, big-endian reader over a finite byte buffer.
// It never copies the underlying buffer: ReadBytes and sub-cursors return
// or operate over slices that alias the original data. A Cursor is single
// threaded and not safe for concurrent use; callers that need to decode
// several class files at once should give each its own Cursor over its own
// buffer, same as pe.File owns its own mmap.MMap exclusively.
type Cursor struct {
	data []byte
	pos  uint64
}

// NewCursor wraps buf for sequential, bounds-checked reads. buf is aliased,
// not copied.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{data: buf}
}

// Len returns the total number of bytes in the cursor's buffer.
func (c *Cursor) Len() uint64 { return uint64(len(c.data)) }

// Position returns the cursor's current absolute offset.
func (c *Cursor) Position() uint64 { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() uint64 { return c.Len() - c.pos }

// SeekAbsolute moves the cursor to an absolute offset. OutOfBoundsError if
// target is outside [0, length].
func (c *Cursor) SeekAbsolute(target uint64) error {
	if target > c.Len() {
		return &OutOfBoundsError{Target: target, Length: c.Len()}
	}
	c.pos = target
	return nil
}

// SeekRelative moves the cursor by delta bytes, which may be negative.
func (c *Cursor) SeekRelative(delta int64) error {
	next := int64(c.pos) + delta
	if next < 0 || uint64(next) > c.Len() {
		return &OutOfBoundsError{Target: uint64(next), Length: c.Len()}
	}
	c.pos = uint64(next)
	return nil
}

func (c *Cursor) need(n int) error {
	if c.Remaining() < uint64(n) {
		return &UnexpectedEOFError{AtOffset: c.pos, Want: n, Have: int(c.Remaining())}
	}
	return nil
}

// ReadU8 reads and advances past one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// ReadU16 reads and advances past a big-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadU32 reads and advances past a big-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadU64 reads and advances past a big-endian uint64.
func (c *Cursor) ReadU64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

// ReadI16 reads a big-endian signed 16-bit value.
func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

// ReadI32 reads a big-endian signed 32-bit value.
func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

// ReadI64 reads a big-endian signed 64-bit value.
func (c *Cursor) ReadI64() (int64, error) {
	v, err := c.ReadU64()
	return int64(v), err
}

// ReadBytes returns a zero-copy slice of the next n bytes and advances past
// them. The returned slice aliases the cursor's backing buffer; callers
// that must retain it beyond the buffer's lifetime should copy explicitly.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, &UnexpectedEOFError{AtOffset: c.pos, Want: n, Have: int(c.Remaining())}
	}
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+uint64(n)]
	c.pos += uint64(n)
	return b, nil
}

// PeekU8 reads one byte at offset bytes ahead of the current position
// without moving the cursor.
func (c *Cursor) PeekU8(offset int) (uint8, error) {
	save := c.pos
	if err := c.SeekRelative(int64(offset)); err != nil {
		c.pos = save
		return 0, err
	}
	v, err := c.ReadU8()
	c.pos = save
	return v, err
}

// PeekU16 reads a big-endian uint16 at offset bytes ahead of the current
// position without moving the cursor.
func (c *Cursor) PeekU16(offset int) (uint16, error) {
	save := c.pos
	if err := c.SeekRelative(int64(offset)); err != nil {
		c.pos = save
		return 0, err
	}
	v, err := c.ReadU16()
	c.pos = save
	return v, err
}

// Sub returns a new Cursor over the next n bytes, positioned at offset 0,
// and advances this cursor past those n bytes. Used to re-parse an
// attribute's opaque body (e.g. Code) without copying it.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	b, err := c.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return NewCursor(b), nil
}
