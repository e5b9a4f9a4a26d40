// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

func TestDecodeSimpleInstructions(t *testing.T) {
	// iconst_0 ; istore_1 ; return
	code := []byte{byte(OpIconst0), byte(OpIstore1), byte(OpReturn)}
	ins, err := decodeInstructions(NewCursor(code), nil)
	if err != nil {
		t.Fatalf("decodeInstructions: %v", err)
	}
	if len(ins) != 3 {
		t.Fatalf("got %d instructions, want 3", len(ins))
	}
	for i, op := range []Opcode{OpIconst0, OpIstore1, OpReturn} {
		if ins[i].Opcode != op || ins[i].PC != uint32(i) {
			t.Errorf("instruction %d = %+v, want opcode %v at pc %d", i, ins[i], op, i)
		}
	}
}

func TestDecodeBipushSipush(t *testing.T) {
	code := []byte{byte(OpBipush), 0xFF, byte(OpSipush), 0x01, 0x00}
	ins, err := decodeInstructions(NewCursor(code), nil)
	if err != nil {
		t.Fatalf("decodeInstructions: %v", err)
	}
	if ins[0].IntOperand != -1 {
		t.Errorf("bipush 0xFF decoded as %d, want -1 (sign-extended)", ins[0].IntOperand)
	}
	if ins[1].IntOperand != 256 {
		t.Errorf("sipush 0x0100 decoded as %d, want 256", ins[1].IntOperand)
	}
}

func TestDecodeWideIinc(t *testing.T) {
	// wide iinc #300, 1000
	code := []byte{
		byte(OpWide), byte(OpIinc),
		0x01, 0x2C, // index = 300
		0x03, 0xE8, // const = 1000
	}
	ins, err := decodeInstructions(NewCursor(code), nil)
	if err != nil {
		t.Fatalf("decodeInstructions: %v", err)
	}
	if len(ins) != 1 {
		t.Fatalf("got %d instructions, want 1", len(ins))
	}
	in := ins[0]
	if !in.Wide || in.Opcode != OpIinc || in.Index != 300 || in.IntOperand != 1000 {
		t.Errorf("got %+v, want wide iinc 300,1000", in)
	}
	if in.Size != 6 {
		t.Errorf("size = %d, want 6", in.Size)
	}
}

func TestDecodeWideInvalidTarget(t *testing.T) {
	code := []byte{byte(OpWide), byte(OpNop)}
	_, err := decodeInstructions(NewCursor(code), nil)
	if err == nil {
		t.Fatal("expected error widening an instruction that takes no local index")
	}
	if _, ok := err.(*InvalidWideTargetError); !ok {
		t.Errorf("got %T, want *InvalidWideTargetError", err)
	}
}

func TestDecodeTableswitchPaddingRelativeToCodeStart(t *testing.T) {
	// tableswitch at pc 0: opcode takes 1 byte, so padding must bring us
	// to offset 4 (3 pad bytes), not offset 4-from-file which would be a
	// different amount if the Code attribute didn't start at file offset 0.
	code := []byte{
		byte(OpTableswitch),
		0, 0, 0, // 3 padding bytes so default starts at offset 4
		0, 0, 0, 10, // default = 10
		0, 0, 0, 0, // low = 0
		0, 0, 0, 1, // high = 1
		0, 0, 0, 20, // target[0]
		0, 0, 0, 30, // target[1]
	}
	ins, err := decodeInstructions(NewCursor(code), nil)
	if err != nil {
		t.Fatalf("decodeInstructions: %v", err)
	}
	if len(ins) != 1 {
		t.Fatalf("got %d instructions, want 1", len(ins))
	}
	tbl := ins[0].Table
	if tbl == nil {
		t.Fatal("expected Table operand")
	}
	if tbl.Default != 10 || tbl.Low != 0 || tbl.High != 1 {
		t.Errorf("got %+v", tbl)
	}
	if len(tbl.JumpTargets) != 2 || tbl.JumpTargets[0] != 20 || tbl.JumpTargets[1] != 30 {
		t.Errorf("jump targets = %v", tbl.JumpTargets)
	}
}

func TestDecodeTableswitchPaddingAtNonZeroPC(t *testing.T) {
	// A nop before the switch moves it to pc=1; the opcode byte then sits
	// at offset 1, so only 2 padding bytes are needed to reach offset 4.
	code := []byte{
		byte(OpNop),
		byte(OpTableswitch),
		0, 0, // 2 padding bytes
		0, 0, 0, 0, // default = 0
		0, 0, 0, 5, // low = 5
		0, 0, 0, 5, // high = 5
		0, 0, 0, 9, // target[0]
	}
	ins, err := decodeInstructions(NewCursor(code), nil)
	if err != nil {
		t.Fatalf("decodeInstructions: %v", err)
	}
	if len(ins) != 2 {
		t.Fatalf("got %d instructions, want 2", len(ins))
	}
	if ins[1].PC != 1 {
		t.Fatalf("tableswitch pc = %d, want 1", ins[1].PC)
	}
	if len(ins[1].Table.JumpTargets) != 1 {
		t.Errorf("jump targets = %v, want 1 entry", ins[1].Table.JumpTargets)
	}
}

func TestDecodeLookupswitch(t *testing.T) {
	code := []byte{
		byte(OpLookupswitch),
		0, 0, 0, // padding to offset 4
		0, 0, 0, 99, // default
		0, 0, 0, 2, // npairs = 2
		0, 0, 0, 1, 0, 0, 0, 11, // match 1 -> offset 11
		0, 0, 0, 2, 0, 0, 0, 22, // match 2 -> offset 22
	}
	ins, err := decodeInstructions(NewCursor(code), nil)
	if err != nil {
		t.Fatalf("decodeInstructions: %v", err)
	}
	lkp := ins[0].Lookup
	if lkp.Default != 99 || len(lkp.Pairs) != 2 {
		t.Fatalf("got %+v", lkp)
	}
	if lkp.Pairs[0].Match != 1 || lkp.Pairs[0].Offset != 11 {
		t.Errorf("pair 0 = %+v", lkp.Pairs[0])
	}
}

func TestDecodeLookupswitchUnsortedRejected(t *testing.T) {
	code := []byte{
		byte(OpLookupswitch),
		0, 0, 0,
		0, 0, 0, 0, // default
		0, 0, 0, 2, // npairs
		0, 0, 0, 2, 0, 0, 0, 1, // match 2
		0, 0, 0, 1, 0, 0, 0, 1, // match 1 (out of order)
	}
	_, err := decodeInstructions(NewCursor(code), nil)
	if err == nil {
		t.Fatal("expected error for unsorted lookupswitch match table")
	}
}

func TestDecodeInvalidBytecode(t *testing.T) {
	_, err := decodeInstructions(NewCursor([]byte{byte(OpBreakpoint)}), nil)
	if err == nil {
		t.Fatal("expected error decoding reserved opcode")
	}
	if _, ok := err.(*InvalidBytecodeError); !ok {
		t.Errorf("got %T, want *InvalidBytecodeError", err)
	}
}
