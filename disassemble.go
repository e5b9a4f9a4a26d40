// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"fmt"
	"strings"
)

// Disassemble renders cb's instruction stream as javap-style text, one
// instruction per line, resolving constant pool operands against cp.
// An operand that fails to resolve is printed without its trailing
// comment rather than aborting the whole listing, since a disassembly is a
// diagnostic aid, not a decode path.
func (cb *CodeBlock) Disassemble(cp *ConstantPool) string {
	var b strings.Builder
	for _, ins := range cb.Instructions {
		fmt.Fprintf(&b, "%6d: %s\n", ins.PC, disassembleOne(ins, cp))
	}
	return b.String()
}

func disassembleOne(ins Instruction, cp *ConstantPool) string {
	mnemonic := ins.Opcode.String()
	if ins.Wide {
		mnemonic = "wide " + mnemonic
	}

	switch ins.Opcode {
	case OpBipush, OpSipush:
		return fmt.Sprintf("%-15s %d", mnemonic, ins.IntOperand)

	case OpIinc:
		return fmt.Sprintf("%-15s %d, %d", mnemonic, ins.Index, ins.IntOperand)

	case OpLdc, OpLdcW, OpLdc2W:
		return fmt.Sprintf("%-15s #%d%s", mnemonic, ins.Index, describeCpRef(cp, ins.Index))

	case OpGetstatic, OpPutstatic, OpGetfield, OpPutfield:
		return fmt.Sprintf("%-15s #%d%s", mnemonic, ins.Index, describeFieldRef(cp, ins.Index))

	case OpInvokevirtual, OpInvokespecial, OpInvokestatic:
		return fmt.Sprintf("%-15s #%d%s", mnemonic, ins.Index, describeMethodRef(cp, ins.Index, false))

	case OpInvokeinterface:
		return fmt.Sprintf("%-15s #%d, %d%s", mnemonic, ins.Index, ins.Count, describeMethodRef(cp, ins.Index, true))

	case OpInvokedynamic:
		return fmt.Sprintf("%-15s #%d", mnemonic, ins.Index)

	case OpNew, OpAnewarray, OpCheckcast, OpInstanceof:
		return fmt.Sprintf("%-15s #%d%s", mnemonic, ins.Index, describeClassRef(cp, ins.Index))

	case OpNewarray:
		return fmt.Sprintf("%-15s %s", mnemonic, newarrayTypeName(ins.ArrayType))

	case OpMultianewarray:
		return fmt.Sprintf("%-15s #%d, %d%s", mnemonic, ins.Index, ins.Count, describeClassRef(cp, ins.Index))

	case OpIload, OpLload, OpFload, OpDload, OpAload,
		OpIstore, OpLstore, OpFstore, OpDstore, OpAstore, OpRet:
		return fmt.Sprintf("%-15s %d", mnemonic, ins.Index)

	case OpIfeq, OpIfne, OpIflt, OpIfge, OpIfgt, OpIfle,
		OpIfIcmpeq, OpIfIcmpne, OpIfIcmplt, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple,
		OpIfAcmpeq, OpIfAcmpne, OpGoto, OpJsr, OpIfnull, OpIfnonnull:
		return fmt.Sprintf("%-15s %d -> %d", mnemonic, ins.IntOperand, int64(ins.PC)+int64(ins.IntOperand))

	case OpGotoW, OpJsrW:
		return fmt.Sprintf("%-15s %d -> %d", mnemonic, ins.IntOperand, int64(ins.PC)+int64(ins.IntOperand))

	case OpTableswitch:
		return disassembleTableswitch(ins)

	case OpLookupswitch:
		return disassembleLookupswitch(ins)

	default:
		return mnemonic
	}
}

func disassembleTableswitch(ins Instruction) string {
	t := ins.Table
	var b strings.Builder
	fmt.Fprintf(&b, "tableswitch { // %d to %d\n", t.Low, t.High)
	for i, off := range t.JumpTargets {
		fmt.Fprintf(&b, "%24d: %d\n", int64(t.Low)+int64(i), int64(ins.PC)+int64(off))
	}
	fmt.Fprintf(&b, "%24s: %d\n", "default", int64(ins.PC)+int64(t.Default))
	b.WriteString("        }")
	return b.String()
}

func disassembleLookupswitch(ins Instruction) string {
	l := ins.Lookup
	var b strings.Builder
	fmt.Fprintf(&b, "lookupswitch { // %d\n", len(l.Pairs))
	for _, p := range l.Pairs {
		fmt.Fprintf(&b, "%24d: %d\n", p.Match, int64(ins.PC)+int64(p.Offset))
	}
	fmt.Fprintf(&b, "%24s: %d\n", "default", int64(ins.PC)+int64(l.Default))
	b.WriteString("        }")
	return b.String()
}

func describeCpRef(cp *ConstantPool, index uint16) string {
	e, ok := cp.Get(index)
	if !ok {
		return ""
	}
	switch v := e.(type) {
	case *ConstantString:
		s, err := cp.GetUtf8(v.StringIndex)
		if err != nil {
			return ""
		}
		return fmt.Sprintf(" // String %s", s)
	case *ConstantClass:
		name, err := cp.GetUtf8(v.NameIndex)
		if err != nil {
			return ""
		}
		return fmt.Sprintf(" // class %s", name)
	case *ConstantInteger:
		return fmt.Sprintf(" // int %d", v.Value)
	case *ConstantFloat:
		return fmt.Sprintf(" // float %v", v.Value)
	case *ConstantLong:
		return fmt.Sprintf(" // long %d", v.Value)
	case *ConstantDouble:
		return fmt.Sprintf(" // double %v", v.Value)
	default:
		return ""
	}
}

func describeClassRef(cp *ConstantPool, index uint16) string {
	name, err := cp.GetClassName(index)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" // class %s", name)
}

func describeFieldRef(cp *ConstantPool, index uint16) string {
	ref, err := cp.ResolveFieldref(index)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" // Field %s.%s:%s", ref.ClassName, ref.Name, ref.Descriptor)
}

func describeMethodRef(cp *ConstantPool, index uint16, iface bool) string {
	var (
		ref *MemberRef
		err error
	)
	if iface {
		ref, err = cp.ResolveInterfaceMethodref(index)
	} else {
		ref, err = cp.ResolveMethodref(index)
	}
	if err != nil {
		return ""
	}
	label := "Method"
	if iface {
		label = "InterfaceMethod"
	}
	return fmt.Sprintf(" // %s %s.%s:%s", label, ref.ClassName, ref.Name, ref.Descriptor)
}
