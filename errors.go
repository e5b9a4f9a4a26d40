// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "fmt"

// Child parsers return one of the structured error types below; where
// context is added, it is wrapped in a ParseError whose Unwrap method keeps
// errors.As working against the structured detail underneath.

// UnexpectedEOFError is returned whenever a cursor read runs past the end
// of the buffer it is reading from.
type UnexpectedEOFError struct {
	AtOffset uint64
	Want     int
	Have     int
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected EOF at offset %d: wanted %d bytes, %d remain",
		e.AtOffset, e.Want, e.Have)
}

// OutOfBoundsError is returned by seeks that target a position outside
// [0, length].
type OutOfBoundsError struct {
	Target uint64
	Length uint64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("seek target %d outside buffer of length %d", e.Target, e.Length)
}

// BadMagicError is returned when the first four bytes of the class file
// are not 0xCAFEBABE.
type BadMagicError struct {
	Got uint32
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("bad magic number: got 0x%08X, want 0xCAFEBABE", e.Got)
}

// UnknownConstantPoolTagError is returned when a constant-pool entry's tag
// byte does not match any of the tags defined by JVMS 4.4, and also when a
// Long or Double entry sits in the last slot, leaving no room for its
// second slot.
type UnknownConstantPoolTagError struct {
	Tag     uint8
	AtIndex uint16
}

func (e *UnknownConstantPoolTagError) Error() string {
	return fmt.Sprintf("unknown constant pool tag %d at index %d", e.Tag, e.AtIndex)
}

// BadCrossReferenceError is returned by typed constant-pool lookups when
// the index is out of range, points at a reserved slot, or names an entry
// of the wrong kind.
type BadCrossReferenceError struct {
	AtIndex      uint16
	ExpectedKind string
	Actual       string
}

func (e *BadCrossReferenceError) Error() string {
	return fmt.Sprintf("bad cross-reference at constant pool index %d: expected %s, got %s",
		e.AtIndex, e.ExpectedKind, e.Actual)
}

// InvalidBytecodeError is returned when the instruction decoder encounters
// an opcode byte with no defined meaning (the reserved/unassigned range).
type InvalidBytecodeError struct {
	PC     uint32
	Opcode uint8
}

func (e *InvalidBytecodeError) Error() string {
	return fmt.Sprintf("invalid bytecode at pc=%d: opcode 0x%02X", e.PC, e.Opcode)
}

// InvalidWideTargetError is returned when the byte following a wide prefix
// (opcode 196) is not one of the instructions the wide prefix may extend.
type InvalidWideTargetError struct {
	PC  uint32
	Op2 uint8
}

func (e *InvalidWideTargetError) Error() string {
	return fmt.Sprintf("invalid wide target at pc=%d: opcode 0x%02X cannot be widened", e.PC, e.Op2)
}

// MalformedSwitchError is returned when a tableswitch/lookupswitch
// violates one of its structural invariants (match ordering, low <= high,
// negative pair count, a table larger than the remaining code, non-zero
// padding in strict mode). It is also returned when the zero operand
// bytes of invokeinterface or invokedynamic are not zero.
type MalformedSwitchError struct {
	PC     uint32
	Reason string
}

func (e *MalformedSwitchError) Error() string {
	return fmt.Sprintf("malformed switch at pc=%d: %s", e.PC, e.Reason)
}

// CodeLengthMismatchError is returned when the sum of decoded instruction
// sizes does not exactly consume the declared code_length. It is also
// returned when code_length exceeds Options.MaxCodeSize; Actual then holds
// that cap.
type CodeLengthMismatchError struct {
	Declared uint32
	Actual   uint32
}

func (e *CodeLengthMismatchError) Error() string {
	return fmt.Sprintf("code length mismatch: declared %d, decoded %d", e.Declared, e.Actual)
}

// InvalidUTF8Error is returned when a Utf8 constant-pool entry is decoded
// to a Go string and its modified-UTF-8 bytes are malformed.
type InvalidUTF8Error struct {
	AtIndex uint16
	Bytes   []byte
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("invalid modified UTF-8 at constant pool index %d (%d bytes)",
		e.AtIndex, len(e.Bytes))
}

// ParseError enriches a child-parser error with the location it occurred
// at: the class (file) path if known, and the method signature if the
// error was raised while decoding a method body. Mirrors how
// saferwall-pe's Parse() lets child-parser errors bubble unchanged, except
// here the orchestrator adds context instead of silently forwarding.
type ParseError struct {
	ClassPath string
	MethodSig string
	Err       error
}

func (e *ParseError) Error() string {
	switch {
	case e.ClassPath != "" && e.MethodSig != "":
		return fmt.Sprintf("%s: method %s: %v", e.ClassPath, e.MethodSig, e.Err)
	case e.ClassPath != "":
		return fmt.Sprintf("%s: %v", e.ClassPath, e.Err)
	case e.MethodSig != "":
		return fmt.Sprintf("method %s: %v", e.MethodSig, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *ParseError) Unwrap() error { return e.Err }
