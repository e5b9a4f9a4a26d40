// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// AccessFlags is the u2 OR-mask carried by ClassFile, Field, and Method
// structures. The individual bits are reused across the three contexts
// with different meanings (JVMS 4.1/4.5/4.6); callers pick the predicate
// that matches the structure they're inspecting.
type AccessFlags uint16

// Access flag bits, per JVMS 4.1 Table 4.1-A (and the field/method analogs
// in 4.5/4.6). Named Acc* after the ACC_* mnemonics the JVM spec and
// bytecode tools (including raskyer-asm/asm/opcodes) use.
const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020 // class
	AccSynchronized AccessFlags = 0x0020 // method
	AccVolatile     AccessFlags = 0x0040 // field
	AccBridge       AccessFlags = 0x0040 // method
	AccTransient    AccessFlags = 0x0080 // field
	AccVarargs      AccessFlags = 0x0080 // method
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

// Is reports whether every bit in flag is set in f.
func (f AccessFlags) Is(flag AccessFlags) bool {
	return f&flag == flag
}

// classStrings renders the set bits that are meaningful for a class-level
// access_flags field, in JVMS declaration order.
func (f AccessFlags) classStrings() []string {
	var out []string
	if f.Is(AccPublic) {
		out = append(out, "public")
	}
	if f.Is(AccFinal) {
		out = append(out, "final")
	}
	if f.Is(AccSuper) {
		out = append(out, "super")
	}
	if f.Is(AccInterface) {
		out = append(out, "interface")
	}
	if f.Is(AccAbstract) {
		out = append(out, "abstract")
	}
	if f.Is(AccSynthetic) {
		out = append(out, "synthetic")
	}
	if f.Is(AccAnnotation) {
		out = append(out, "annotation")
	}
	if f.Is(AccEnum) {
		out = append(out, "enum")
	}
	if f.Is(AccModule) {
		out = append(out, "module")
	}
	return out
}

func (f AccessFlags) fieldStrings() []string {
	var out []string
	if f.Is(AccPublic) {
		out = append(out, "public")
	}
	if f.Is(AccPrivate) {
		out = append(out, "private")
	}
	if f.Is(AccProtected) {
		out = append(out, "protected")
	}
	if f.Is(AccStatic) {
		out = append(out, "static")
	}
	if f.Is(AccFinal) {
		out = append(out, "final")
	}
	if f.Is(AccVolatile) {
		out = append(out, "volatile")
	}
	if f.Is(AccTransient) {
		out = append(out, "transient")
	}
	if f.Is(AccSynthetic) {
		out = append(out, "synthetic")
	}
	if f.Is(AccEnum) {
		out = append(out, "enum")
	}
	return out
}

func (f AccessFlags) methodStrings() []string {
	var out []string
	if f.Is(AccPublic) {
		out = append(out, "public")
	}
	if f.Is(AccPrivate) {
		out = append(out, "private")
	}
	if f.Is(AccProtected) {
		out = append(out, "protected")
	}
	if f.Is(AccStatic) {
		out = append(out, "static")
	}
	if f.Is(AccFinal) {
		out = append(out, "final")
	}
	if f.Is(AccSynchronized) {
		out = append(out, "synchronized")
	}
	if f.Is(AccBridge) {
		out = append(out, "bridge")
	}
	if f.Is(AccVarargs) {
		out = append(out, "varargs")
	}
	if f.Is(AccNative) {
		out = append(out, "native")
	}
	if f.Is(AccAbstract) {
		out = append(out, "abstract")
	}
	if f.Is(AccStrict) {
		out = append(out, "strictfp")
	}
	if f.Is(AccSynthetic) {
		out = append(out, "synthetic")
	}
	return out
}

// MHKind is the reference_kind carried by a CONSTANT_MethodHandle_info
// entry: a closed enum with ordinal values 1..9 (JVMS 4.4.8).
type MHKind uint8

const (
	MHGetField MHKind = iota + 1
	MHGetStatic
	MHPutField
	MHPutStatic
	MHInvokeVirtual
	MHInvokeStatic
	MHInvokeSpecial
	MHNewInvokeSpecial
	MHInvokeInterface
)

func (k MHKind) String() string {
	switch k {
	case MHGetField:
		return "REF_getField"
	case MHGetStatic:
		return "REF_getStatic"
	case MHPutField:
		return "REF_putField"
	case MHPutStatic:
		return "REF_putStatic"
	case MHInvokeVirtual:
		return "REF_invokeVirtual"
	case MHInvokeStatic:
		return "REF_invokeStatic"
	case MHInvokeSpecial:
		return "REF_invokeSpecial"
	case MHNewInvokeSpecial:
		return "REF_newInvokeSpecial"
	case MHInvokeInterface:
		return "REF_invokeInterface"
	default:
		return "REF_unknown"
	}
}

// ValidMHKind reports whether k is one of the nine reference kinds defined
// by JVMS 4.4.8.
func ValidMHKind(k uint8) bool {
	return k >= uint8(MHGetField) && k <= uint8(MHInvokeInterface)
}
