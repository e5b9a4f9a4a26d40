// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// ExceptionEntry is one row of a Code attribute's exception_table (JVMS
// 4.7.3): the [StartPC, EndPC) range a handler at HandlerPC covers, and the
// CatchType constant pool index (0 means "catch everything", i.e. finally).
type ExceptionEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// CodeBlock is the decoded form of a method's Code attribute (JVMS 4.7.3):
// the operand stack/local variable sizing, the decoded instruction stream,
// the exception table, and any nested attributes (LineNumberTable,
// StackMapTable, LocalVariableTable, etc. are left as raw Attribute
// values; this package decodes bytecode, not debug metadata).
type CodeBlock struct {
	MaxStack       uint16
	MaxLocals      uint16
	CodeLength     uint32
	Instructions   []Instruction
	ExceptionTable []ExceptionEntry
	Attributes     []Attribute
}

// InstructionAt returns the instruction whose PC equals pc, or false if no
// instruction starts there (pc falls inside a multi-byte instruction, or
// outside the code array).
func (cb *CodeBlock) InstructionAt(pc uint32) (Instruction, bool) {
	for _, ins := range cb.Instructions {
		if ins.PC == pc {
			return ins, true
		}
	}
	return Instruction{}, false
}

// parseCodeBlock decodes a Code attribute's body from its own sub-cursor,
// positioned at offset 0 of the attribute's info bytes (JVMS 4.7.3):
//
//	u2 max_stack;
//	u2 max_locals;
//	u4 code_length;
//	u1 code[code_length];
//	u2 exception_table_length;
//	{ u2 start_pc, end_pc, handler_pc, catch_type } exception_table[...];
//	u2 attributes_count;
//	attribute_info attributes[attributes_count];
//
// The instruction stream is decoded by its own sub-cursor over exactly
// code_length bytes, so an instruction decoder bug can never read past the
// declared code array into the exception table that follows it. opts may
// be nil.
func parseCodeBlock(c *Cursor, cp *ConstantPool, opts *Options) (*CodeBlock, error) {
	maxStack, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	maxLocals, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	codeLength, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.MaxCodeSize != 0 && codeLength > opts.MaxCodeSize {
		return nil, &CodeLengthMismatchError{Declared: codeLength, Actual: opts.MaxCodeSize}
	}

	codeCursor, err := c.Sub(int(codeLength))
	if err != nil {
		return nil, err
	}
	instructions, err := decodeInstructions(codeCursor, opts)
	if err != nil {
		return nil, err
	}
	if consumed := uint32(codeCursor.Position()); consumed != codeLength {
		return nil, &CodeLengthMismatchError{Declared: codeLength, Actual: consumed}
	}

	excCount, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	excTable := make([]ExceptionEntry, excCount)
	for i := range excTable {
		startPC, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		endPC, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		handlerPC, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		catchType, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		excTable[i] = ExceptionEntry{StartPC: startPC, EndPC: endPC, HandlerPC: handlerPC, CatchType: catchType}
	}

	attrs, err := parseAttributes(c, cp, opts)
	if err != nil {
		return nil, err
	}

	return &CodeBlock{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		CodeLength:     codeLength,
		Instructions:   instructions,
		ExceptionTable: excTable,
		Attributes:     attrs,
	}, nil
}
