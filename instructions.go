// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "fmt"

// Opcode is a single JVM instruction's opcode byte (JVMS 6.5).
type Opcode uint8

const (
	OpNop             Opcode = 0
	OpAconstNull      Opcode = 1
	OpIconstM1        Opcode = 2
	OpIconst0         Opcode = 3
	OpIconst1         Opcode = 4
	OpIconst2         Opcode = 5
	OpIconst3         Opcode = 6
	OpIconst4         Opcode = 7
	OpIconst5         Opcode = 8
	OpLconst0         Opcode = 9
	OpLconst1         Opcode = 10
	OpFconst0         Opcode = 11
	OpFconst1         Opcode = 12
	OpFconst2         Opcode = 13
	OpDconst0         Opcode = 14
	OpDconst1         Opcode = 15
	OpBipush          Opcode = 16
	OpSipush          Opcode = 17
	OpLdc             Opcode = 18
	OpLdcW            Opcode = 19
	OpLdc2W           Opcode = 20
	OpIload           Opcode = 21
	OpLload           Opcode = 22
	OpFload           Opcode = 23
	OpDload           Opcode = 24
	OpAload           Opcode = 25
	OpIload0          Opcode = 26
	OpIload1          Opcode = 27
	OpIload2          Opcode = 28
	OpIload3          Opcode = 29
	OpLload0          Opcode = 30
	OpLload1          Opcode = 31
	OpLload2          Opcode = 32
	OpLload3          Opcode = 33
	OpFload0          Opcode = 34
	OpFload1          Opcode = 35
	OpFload2          Opcode = 36
	OpFload3          Opcode = 37
	OpDload0          Opcode = 38
	OpDload1          Opcode = 39
	OpDload2          Opcode = 40
	OpDload3          Opcode = 41
	OpAload0          Opcode = 42
	OpAload1          Opcode = 43
	OpAload2          Opcode = 44
	OpAload3          Opcode = 45
	OpIaload          Opcode = 46
	OpLaload          Opcode = 47
	OpFaload          Opcode = 48
	OpDaload          Opcode = 49
	OpAaload          Opcode = 50
	OpBaload          Opcode = 51
	OpCaload          Opcode = 52
	OpSaload          Opcode = 53
	OpIstore          Opcode = 54
	OpLstore          Opcode = 55
	OpFstore          Opcode = 56
	OpDstore          Opcode = 57
	OpAstore          Opcode = 58
	OpIstore0         Opcode = 59
	OpIstore1         Opcode = 60
	OpIstore2         Opcode = 61
	OpIstore3         Opcode = 62
	OpLstore0         Opcode = 63
	OpLstore1         Opcode = 64
	OpLstore2         Opcode = 65
	OpLstore3         Opcode = 66
	OpFstore0         Opcode = 67
	OpFstore1         Opcode = 68
	OpFstore2         Opcode = 69
	OpFstore3         Opcode = 70
	OpDstore0         Opcode = 71
	OpDstore1         Opcode = 72
	OpDstore2         Opcode = 73
	OpDstore3         Opcode = 74
	OpAstore0         Opcode = 75
	OpAstore1         Opcode = 76
	OpAstore2         Opcode = 77
	OpAstore3         Opcode = 78
	OpIastore         Opcode = 79
	OpLastore         Opcode = 80
	OpFastore         Opcode = 81
	OpDastore         Opcode = 82
	OpAastore         Opcode = 83
	OpBastore         Opcode = 84
	OpCastore         Opcode = 85
	OpSastore         Opcode = 86
	OpPop             Opcode = 87
	OpPop2            Opcode = 88
	OpDup             Opcode = 89
	OpDupX1           Opcode = 90
	OpDupX2           Opcode = 91
	OpDup2            Opcode = 92
	OpDup2X1          Opcode = 93
	OpDup2X2          Opcode = 94
	OpSwap            Opcode = 95
	OpIadd            Opcode = 96
	OpLadd            Opcode = 97
	OpFadd            Opcode = 98
	OpDadd            Opcode = 99
	OpIsub            Opcode = 100
	OpLsub            Opcode = 101
	OpFsub            Opcode = 102
	OpDsub            Opcode = 103
	OpImul            Opcode = 104
	OpLmul            Opcode = 105
	OpFmul            Opcode = 106
	OpDmul            Opcode = 107
	OpIdiv            Opcode = 108
	OpLdiv            Opcode = 109
	OpFdiv            Opcode = 110
	OpDdiv            Opcode = 111
	OpIrem            Opcode = 112
	OpLrem            Opcode = 113
	OpFrem            Opcode = 114
	OpDrem            Opcode = 115
	OpIneg            Opcode = 116
	OpLneg            Opcode = 117
	OpFneg            Opcode = 118
	OpDneg            Opcode = 119
	OpIshl            Opcode = 120
	OpLshl            Opcode = 121
	OpIshr            Opcode = 122
	OpLshr            Opcode = 123
	OpIushr           Opcode = 124
	OpLushr           Opcode = 125
	OpIand            Opcode = 126
	OpLand            Opcode = 127
	OpIor             Opcode = 128
	OpLor             Opcode = 129
	OpIxor            Opcode = 130
	OpLxor            Opcode = 131
	OpIinc            Opcode = 132
	OpI2l             Opcode = 133
	OpI2f             Opcode = 134
	OpI2d             Opcode = 135
	OpL2i             Opcode = 136
	OpL2f             Opcode = 137
	OpL2d             Opcode = 138
	OpF2i             Opcode = 139
	OpF2l             Opcode = 140
	OpF2d             Opcode = 141
	OpD2i             Opcode = 142
	OpD2l             Opcode = 143
	OpD2f             Opcode = 144
	OpI2b             Opcode = 145
	OpI2c             Opcode = 146
	OpI2s             Opcode = 147
	OpLcmp            Opcode = 148
	OpFcmpl           Opcode = 149
	OpFcmpg           Opcode = 150
	OpDcmpl           Opcode = 151
	OpDcmpg           Opcode = 152
	OpIfeq            Opcode = 153
	OpIfne            Opcode = 154
	OpIflt            Opcode = 155
	OpIfge            Opcode = 156
	OpIfgt            Opcode = 157
	OpIfle            Opcode = 158
	OpIfIcmpeq        Opcode = 159
	OpIfIcmpne        Opcode = 160
	OpIfIcmplt        Opcode = 161
	OpIfIcmpge        Opcode = 162
	OpIfIcmpgt        Opcode = 163
	OpIfIcmple        Opcode = 164
	OpIfAcmpeq        Opcode = 165
	OpIfAcmpne        Opcode = 166
	OpGoto            Opcode = 167
	OpJsr             Opcode = 168
	OpRet             Opcode = 169
	OpTableswitch     Opcode = 170
	OpLookupswitch    Opcode = 171
	OpIreturn         Opcode = 172
	OpLreturn         Opcode = 173
	OpFreturn         Opcode = 174
	OpDreturn         Opcode = 175
	OpAreturn         Opcode = 176
	OpReturn          Opcode = 177
	OpGetstatic       Opcode = 178
	OpPutstatic       Opcode = 179
	OpGetfield        Opcode = 180
	OpPutfield        Opcode = 181
	OpInvokevirtual   Opcode = 182
	OpInvokespecial   Opcode = 183
	OpInvokestatic    Opcode = 184
	OpInvokeinterface Opcode = 185
	OpInvokedynamic   Opcode = 186
	OpNew             Opcode = 187
	OpNewarray        Opcode = 188
	OpAnewarray       Opcode = 189
	OpArraylength     Opcode = 190
	OpAthrow          Opcode = 191
	OpCheckcast       Opcode = 192
	OpInstanceof      Opcode = 193
	OpMonitorenter    Opcode = 194
	OpMonitorexit     Opcode = 195
	OpWide            Opcode = 196
	OpMultianewarray  Opcode = 197
	OpIfnull          Opcode = 198
	OpIfnonnull       Opcode = 199
	OpGotoW           Opcode = 200
	OpJsrW            Opcode = 201
)

// Reserved opcodes: defined slots with no instruction meaning in a
// well-formed class file (JVMS 6.2). breakpoint/impdep1/impdep2 are
// reserved for debugger and JVM-internal use and never appear in code
// produced by a compiler.
const (
	OpBreakpoint Opcode = 202
	OpImpdep1    Opcode = 254
	OpImpdep2    Opcode = 255
)

// TableSwitchOperands holds a decoded tableswitch instruction's jump table
// (JVMS 6.5 tableswitch).
type TableSwitchOperands struct {
	Default     int32
	Low         int32
	High        int32
	JumpTargets []int32 // relative offsets, one per index in [Low, High]
}

// LookupSwitchOperands holds a decoded lookupswitch instruction's match
// table (JVMS 6.5 lookupswitch).
type LookupSwitchOperands struct {
	Default int32
	Pairs   []LookupPair
}

// LookupPair is one (match, offset) row of a lookupswitch, kept in the
// order the class file declares it. The decoder rejects a match sequence
// that is not strictly increasing, so decoded pairs are always ascending.
type LookupPair struct {
	Match  int32
	Offset int32
}

// Instruction is a single decoded bytecode instruction. Only the operand
// fields relevant to Opcode are populated; the rest are left at zero
// value. PC is the byte offset of the opcode within the enclosing Code
// attribute's code array (not the class file).
type Instruction struct {
	PC     uint32
	Opcode Opcode
	Size   uint32 // total instruction length in bytes, including the opcode

	// Wide reports whether this instruction was introduced by a wide
	// prefix (opcode 196); Index/IntOperand then carry 16-bit rather than
	// 8-bit operand widths.
	Wide bool

	IntOperand int32  // bipush/sipush/iinc const, branch offset
	Index      uint16 // local variable slot or constant pool index
	Count      uint8  // invokeinterface's count, multianewarray's dimensions
	ArrayType  uint8  // newarray's atype

	Table  *TableSwitchOperands
	Lookup *LookupSwitchOperands
}

// decodeInstructions decodes every instruction in c's remaining bytes. c
// must be a sub-cursor positioned at offset 0 of a Code attribute's code
// array, so that PC values and tableswitch/lookupswitch padding are
// computed relative to the code array's own start rather than the
// enclosing class file's absolute offset — padding measured against the
// file offset instead of the code array's offset is a classic bug in
// naive decoders, since the two only coincide when the Code attribute
// happens to start at a file offset that is itself a multiple of 4.
func decodeInstructions(c *Cursor, opts *Options) ([]Instruction, error) {
	var out []Instruction
	for c.Remaining() > 0 {
		pc := uint32(c.Position())
		opcodeByte, err := c.ReadU8()
		if err != nil {
			return nil, err
		}

		ins, err := decodeOneInstruction(c, Opcode(opcodeByte), pc, false, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	return out, nil
}

// decodeOneInstruction decodes the operands of a single instruction whose
// opcode byte has already been consumed from c. wide indicates the
// instruction was reached via a wide prefix, widening its index/const
// operands from 8 to 16 bits (JVMS 6.5 wide).
func decodeOneInstruction(c *Cursor, op Opcode, pc uint32, wide bool, opts *Options) (Instruction, error) {
	ins := Instruction{PC: pc, Opcode: op, Wide: wide}

	switch op {
	case OpWide:
		return decodeWide(c, pc)

	case OpBipush:
		v, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.IntOperand = int32(int8(v))
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpSipush:
		v, err := c.ReadI16()
		if err != nil {
			return Instruction{}, err
		}
		ins.IntOperand = int32(v)
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpLdc:
		v, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Index = uint16(v)
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpLdcW, OpLdc2W, OpNew, OpAnewarray, OpCheckcast, OpInstanceof,
		OpGetstatic, OpPutstatic, OpGetfield, OpPutfield,
		OpInvokevirtual, OpInvokespecial, OpInvokestatic:
		v, err := c.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		ins.Index = v
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpInvokeinterface:
		idx, err := c.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		count, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		zero, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		if zero != 0 {
			return Instruction{}, &MalformedSwitchError{PC: pc, Reason: "invokeinterface's fourth byte must be zero"}
		}
		ins.Index = idx
		ins.Count = count
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpInvokedynamic:
		idx, err := c.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		zero, err := c.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		if zero != 0 {
			return Instruction{}, &MalformedSwitchError{PC: pc, Reason: "invokedynamic's trailing two bytes must be zero"}
		}
		ins.Index = idx
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpMultianewarray:
		idx, err := c.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		dims, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Index = idx
		ins.Count = dims
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpNewarray:
		atype, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.ArrayType = atype
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpIinc:
		idx, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		delta, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Index = uint16(idx)
		ins.IntOperand = int32(int8(delta))
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpIload, OpLload, OpFload, OpDload, OpAload,
		OpIstore, OpLstore, OpFstore, OpDstore, OpAstore, OpRet:
		idx, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		ins.Index = uint16(idx)
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpIfeq, OpIfne, OpIflt, OpIfge, OpIfgt, OpIfle,
		OpIfIcmpeq, OpIfIcmpne, OpIfIcmplt, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple,
		OpIfAcmpeq, OpIfAcmpne, OpGoto, OpJsr, OpIfnull, OpIfnonnull:
		off, err := c.ReadI16()
		if err != nil {
			return Instruction{}, err
		}
		ins.IntOperand = int32(off)
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpGotoW, OpJsrW:
		off, err := c.ReadI32()
		if err != nil {
			return Instruction{}, err
		}
		ins.IntOperand = off
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpTableswitch:
		tbl, err := decodeTableswitch(c, pc, opts)
		if err != nil {
			return Instruction{}, err
		}
		ins.Table = tbl
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpLookupswitch:
		lkp, err := decodeLookupswitch(c, pc, opts)
		if err != nil {
			return Instruction{}, err
		}
		ins.Lookup = lkp
		ins.Size = uint32(c.Position()) - pc
		return ins, nil

	case OpBreakpoint, OpImpdep1, OpImpdep2:
		return Instruction{}, &InvalidBytecodeError{PC: pc, Opcode: uint8(op)}

	default:
		// Opcodes 203-253 are reserved and unassigned (JVMS 6.2): no
		// defined meaning, distinct from the explicitly reserved
		// breakpoint/impdep1/impdep2 slots handled above.
		if op > OpBreakpoint && op < OpImpdep1 {
			return Instruction{}, &InvalidBytecodeError{PC: pc, Opcode: uint8(op)}
		}
		// Every remaining opcode (nop, aconst_null, iconst_*, lconst_*,
		// fconst_*, dconst_*, the *load_N/*store_N families, all
		// arithmetic/conversion/comparison ops, stack ops, array ops,
		// monitorenter/exit, the return family, athrow, arraylength) takes
		// no operand bytes.
		ins.Size = uint32(c.Position()) - pc
		return ins, nil
	}
}

// decodeWide decodes the instruction following a wide prefix (opcode
// 196): iload/lload/fload/dload/aload/istore/lstore/fstore/dstore/
// astore/ret take a u2 index instead of u1, and iinc additionally takes a
// u2 signed const instead of u1 (JVMS 6.5 wide).
func decodeWide(c *Cursor, pc uint32) (Instruction, error) {
	op2, err := c.ReadU8()
	if err != nil {
		return Instruction{}, err
	}
	op2Code := Opcode(op2)

	switch op2Code {
	case OpIload, OpLload, OpFload, OpDload, OpAload,
		OpIstore, OpLstore, OpFstore, OpDstore, OpAstore, OpRet:
		idx, err := c.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{PC: pc, Opcode: op2Code, Wide: true, Index: idx, Size: uint32(c.Position()) - pc}, nil

	case OpIinc:
		idx, err := c.ReadU16()
		if err != nil {
			return Instruction{}, err
		}
		delta, err := c.ReadI16()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{
			PC: pc, Opcode: OpIinc, Wide: true,
			Index: idx, IntOperand: int32(delta),
			Size: uint32(c.Position()) - pc,
		}, nil

	default:
		return Instruction{}, &InvalidWideTargetError{PC: pc, Op2: op2}
	}
}

// decodeTableswitch decodes a tableswitch instruction (JVMS 6.5
// tableswitch). Between the opcode and the default offset lie 0-3 padding
// bytes, chosen so the default offset begins at an address that is a
// multiple of four relative to the start of the code array (pc 0) — NOT
// relative to the class file's absolute byte offset.
func decodeTableswitch(c *Cursor, pc uint32, opts *Options) (*TableSwitchOperands, error) {
	if err := skipSwitchPadding(c, pc, opts); err != nil {
		return nil, err
	}

	def, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	low, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	high, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	if low > high {
		return nil, &MalformedSwitchError{PC: pc, Reason: fmt.Sprintf("low %d greater than high %d", low, high)}
	}

	n := int64(high) - int64(low) + 1
	if n < 0 || n > int64(c.Remaining()/4) {
		return nil, &MalformedSwitchError{PC: pc, Reason: fmt.Sprintf("jump table of %d entries exceeds remaining code", n)}
	}
	targets := make([]int32, n)
	for i := range targets {
		off, err := c.ReadI32()
		if err != nil {
			return nil, err
		}
		targets[i] = off
	}

	return &TableSwitchOperands{Default: def, Low: low, High: high, JumpTargets: targets}, nil
}

// decodeLookupswitch decodes a lookupswitch instruction (JVMS 6.5
// lookupswitch), with the same code-array-relative padding rule as
// tableswitch.
func decodeLookupswitch(c *Cursor, pc uint32, opts *Options) (*LookupSwitchOperands, error) {
	if err := skipSwitchPadding(c, pc, opts); err != nil {
		return nil, err
	}

	def, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	npairs, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	if npairs < 0 {
		return nil, &MalformedSwitchError{PC: pc, Reason: fmt.Sprintf("negative npairs %d", npairs)}
	}
	if int64(npairs) > int64(c.Remaining()/8) {
		return nil, &MalformedSwitchError{PC: pc, Reason: fmt.Sprintf("match table of %d pairs exceeds remaining code", npairs)}
	}

	pairs := make([]LookupPair, npairs)
	for i := range pairs {
		match, err := c.ReadI32()
		if err != nil {
			return nil, err
		}
		offset, err := c.ReadI32()
		if err != nil {
			return nil, err
		}
		if i > 0 && match <= pairs[i-1].Match {
			return nil, &MalformedSwitchError{PC: pc, Reason: "match table not strictly increasing"}
		}
		pairs[i] = LookupPair{Match: match, Offset: offset}
	}

	return &LookupSwitchOperands{Default: def, Pairs: pairs}, nil
}

// skipSwitchPadding advances c past the 0-3 padding bytes following a
// tableswitch/lookupswitch opcode, so the next read begins at an offset
// (measured from the code array's own start, pc=0) that is a multiple of
// four. pc is the switch instruction's own code-array-relative offset. The
// JVM spec recommends these bytes be zero but does not require it; by
// default (opts == nil, or AllowNonZeroSwitchPadding) non-zero padding is
// accepted silently, matching how real JVMs behave. Setting
// AllowNonZeroSwitchPadding false surfaces non-zero padding as a
// MalformedSwitchError instead.
func skipSwitchPadding(c *Cursor, pc uint32, opts *Options) error {
	afterOpcode := pc + 1
	padding := (4 - afterOpcode%4) % 4
	strict := opts != nil && !opts.AllowNonZeroSwitchPadding
	for i := uint32(0); i < padding; i++ {
		b, err := c.ReadU8()
		if err != nil {
			return err
		}
		if strict && b != 0 {
			return &MalformedSwitchError{PC: pc, Reason: "non-zero switch padding byte"}
		}
	}
	return nil
}
