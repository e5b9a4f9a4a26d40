// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"encoding/json"
	"fmt"
	"math"
)

// Tag identifies the variant of a ConstantPoolEntry, per JVMS 4.4 Table
// 4.4-A.
type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

func (t Tag) String() string {
	switch t {
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldref:
		return "Fieldref"
	case TagMethodref:
		return "Methodref"
	case TagInterfaceMethodref:
		return "InterfaceMethodref"
	case TagNameAndType:
		return "NameAndType"
	case TagMethodHandle:
		return "MethodHandle"
	case TagMethodType:
		return "MethodType"
	case TagDynamic:
		return "Dynamic"
	case TagInvokeDynamic:
		return "InvokeDynamic"
	case TagModule:
		return "Module"
	case TagPackage:
		return "Package"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// ConstantPoolEntry is the closed sum type of constant-pool variants. Every
// concrete type below implements it; a type switch over the concrete
// pointer type is the idiomatic way to inspect an entry (see
// daimatz-gojvm's ConstantPoolEntry for the pattern this is grounded on).
type ConstantPoolEntry interface {
	Tag() Tag
}

// ConstantUtf8 holds a constant pool Utf8 entry's raw modified-UTF-8 bytes.
// The bytes alias the class file's backing buffer; use String() to decode
// them (lazily, and correctly, unlike plain UTF-8 decoding).
type ConstantUtf8 struct {
	Bytes []byte
}

func (*ConstantUtf8) Tag() Tag { return TagUtf8 }

// String decodes the entry's modified-UTF-8 bytes to a canonical Go
// string. Returns an error if the bytes are not valid modified UTF-8.
func (c *ConstantUtf8) String() (string, error) {
	return decodeModifiedUTF8(c.Bytes)
}

// ConstantInteger holds a constant pool Integer entry.
type ConstantInteger struct{ Value int32 }

func (*ConstantInteger) Tag() Tag { return TagInteger }

// ConstantFloat holds a constant pool Float entry.
type ConstantFloat struct{ Value float32 }

func (*ConstantFloat) Tag() Tag { return TagFloat }

// ConstantLong holds a constant pool Long entry. Long entries occupy two
// logical slots; the pool places a ConstantReserved sentinel at index+1.
type ConstantLong struct{ Value int64 }

func (*ConstantLong) Tag() Tag { return TagLong }

// ConstantDouble holds a constant pool Double entry. Double entries occupy
// two logical slots; the pool places a ConstantReserved sentinel at
// index+1.
type ConstantDouble struct{ Value float64 }

func (*ConstantDouble) Tag() Tag { return TagDouble }

// ConstantClass is a CONSTANT_Class_info: an index of a Utf8 entry holding
// the (possibly array) internal class name.
type ConstantClass struct{ NameIndex uint16 }

func (*ConstantClass) Tag() Tag { return TagClass }

// ConstantString is a CONSTANT_String_info: an index of a Utf8 entry
// holding the literal's characters.
type ConstantString struct{ StringIndex uint16 }

func (*ConstantString) Tag() Tag { return TagString }

// ConstantFieldref is a CONSTANT_Fieldref_info.
type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (*ConstantFieldref) Tag() Tag { return TagFieldref }

// ConstantMethodref is a CONSTANT_Methodref_info.
type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (*ConstantMethodref) Tag() Tag { return TagMethodref }

// ConstantInterfaceMethodref is a CONSTANT_InterfaceMethodref_info.
type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (*ConstantInterfaceMethodref) Tag() Tag { return TagInterfaceMethodref }

// ConstantNameAndType is a CONSTANT_NameAndType_info.
type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (*ConstantNameAndType) Tag() Tag { return TagNameAndType }

// ConstantMethodHandle is a CONSTANT_MethodHandle_info.
type ConstantMethodHandle struct {
	ReferenceKind  MHKind
	ReferenceIndex uint16
}

func (*ConstantMethodHandle) Tag() Tag { return TagMethodHandle }

// ConstantMethodType is a CONSTANT_MethodType_info.
type ConstantMethodType struct{ DescriptorIndex uint16 }

func (*ConstantMethodType) Tag() Tag { return TagMethodType }

// ConstantDynamic is a CONSTANT_Dynamic_info (JEP 359 condy).
type ConstantDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (*ConstantDynamic) Tag() Tag { return TagDynamic }

// ConstantInvokeDynamic is a CONSTANT_InvokeDynamic_info.
type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (*ConstantInvokeDynamic) Tag() Tag { return TagInvokeDynamic }

// ConstantModule is a CONSTANT_Module_info.
type ConstantModule struct{ NameIndex uint16 }

func (*ConstantModule) Tag() Tag { return TagModule }

// ConstantPackage is a CONSTANT_Package_info.
type ConstantPackage struct{ NameIndex uint16 }

func (*ConstantPackage) Tag() Tag { return TagPackage }

// ConstantReserved occupies the logical slot immediately after a Long or
// Double entry. It is never a valid lookup target: cp.Get on a reserved
// slot returns (nil, false).
type ConstantReserved struct{ tag Tag }

func (r *ConstantReserved) Tag() Tag { return r.tag }

// ConstantPool is the class file's 1-indexed, heterogeneous symbol table.
// entries[0] corresponds to logical index 1 (there is no logical index 0);
// entries[i] corresponds to logical index i+1. This keeps lookups O(1)
// without an auxiliary slot-to-index table, per the source's own design
// note on representing Long/Double gap slots.
type ConstantPool struct {
	entries []ConstantPoolEntry
}

// Len returns the logical slot count (constant_pool_count - 1): the number
// of 1-based indices the pool spans, including reserved gap slots.
func (cp *ConstantPool) Len() int { return len(cp.entries) }

// constantPoolEntryJSON is the wire shape one ConstantPool slot marshals
// to: its 1-based index, its tag name, and the concrete entry value (nil
// for a reserved Long/Double gap slot). entries is unexported so this type
// switch is the only place that needs to know every concrete variant.
type constantPoolEntryJSON struct {
	Index uint16            `json:"index"`
	Tag   string            `json:"tag"`
	Entry ConstantPoolEntry `json:"entry,omitempty"`
}

// MarshalJSON renders the pool as an ordered array of its logical slots,
// since entries is unexported and would otherwise marshal to an empty
// object.
func (cp *ConstantPool) MarshalJSON() ([]byte, error) {
	out := make([]constantPoolEntryJSON, len(cp.entries))
	for i, e := range cp.entries {
		row := constantPoolEntryJSON{Index: uint16(i + 1), Tag: e.Tag().String()}
		if _, reserved := e.(*ConstantReserved); !reserved {
			row.Entry = e
		}
		out[i] = row
	}
	return json.Marshal(out)
}

// Get returns the entry at 1-based index, or (nil, false) if the index is
// out of range or names a reserved gap slot.
func (cp *ConstantPool) Get(index uint16) (ConstantPoolEntry, bool) {
	if index < 1 || int(index) > len(cp.entries) {
		return nil, false
	}
	e := cp.entries[index-1]
	if _, reserved := e.(*ConstantReserved); reserved {
		return nil, false
	}
	return e, true
}

// GetUtf8 resolves index to a decoded Go string, failing with
// BadCrossReferenceError if the index is absent, reserved, or not a Utf8
// entry, and with InvalidUTF8Error if its bytes are not valid modified
// UTF-8.
func (cp *ConstantPool) GetUtf8(index uint16) (string, error) {
	e, ok := cp.Get(index)
	if !ok {
		return "", &BadCrossReferenceError{AtIndex: index, ExpectedKind: "Utf8", Actual: "absent"}
	}
	u, ok := e.(*ConstantUtf8)
	if !ok {
		return "", &BadCrossReferenceError{AtIndex: index, ExpectedKind: "Utf8", Actual: e.Tag().String()}
	}
	s, err := u.String()
	if err != nil {
		if ue, ok := err.(*InvalidUTF8Error); ok {
			ue.AtIndex = index
		}
		return "", err
	}
	return s, nil
}

// GetClassName resolves a Class entry's index to the internal class name
// it refers to (not the class entry itself — the Utf8 it points at).
func (cp *ConstantPool) GetClassName(index uint16) (string, error) {
	e, ok := cp.Get(index)
	if !ok {
		return "", &BadCrossReferenceError{AtIndex: index, ExpectedKind: "Class", Actual: "absent"}
	}
	c, ok := e.(*ConstantClass)
	if !ok {
		return "", &BadCrossReferenceError{AtIndex: index, ExpectedKind: "Class", Actual: e.Tag().String()}
	}
	return cp.GetUtf8(c.NameIndex)
}

// GetNameAndType resolves a NameAndType entry's index to its decoded
// (name, descriptor) pair.
func (cp *ConstantPool) GetNameAndType(index uint16) (name, descriptor string, err error) {
	e, ok := cp.Get(index)
	if !ok {
		return "", "", &BadCrossReferenceError{AtIndex: index, ExpectedKind: "NameAndType", Actual: "absent"}
	}
	nat, ok := e.(*ConstantNameAndType)
	if !ok {
		return "", "", &BadCrossReferenceError{AtIndex: index, ExpectedKind: "NameAndType", Actual: e.Tag().String()}
	}
	name, err = cp.GetUtf8(nat.NameIndex)
	if err != nil {
		return "", "", err
	}
	descriptor, err = cp.GetUtf8(nat.DescriptorIndex)
	if err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// MemberRef holds a resolved field/method/interface-method reference:
// the declaring class name, the member name, and its descriptor.
type MemberRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

// ResolveFieldref resolves a CONSTANT_Fieldref_info at index.
func (cp *ConstantPool) ResolveFieldref(index uint16) (*MemberRef, error) {
	e, ok := cp.Get(index)
	if !ok {
		return nil, &BadCrossReferenceError{AtIndex: index, ExpectedKind: "Fieldref", Actual: "absent"}
	}
	r, ok := e.(*ConstantFieldref)
	if !ok {
		return nil, &BadCrossReferenceError{AtIndex: index, ExpectedKind: "Fieldref", Actual: e.Tag().String()}
	}
	return cp.resolveRef(r.ClassIndex, r.NameAndTypeIndex)
}

// ResolveMethodref resolves a CONSTANT_Methodref_info at index.
func (cp *ConstantPool) ResolveMethodref(index uint16) (*MemberRef, error) {
	e, ok := cp.Get(index)
	if !ok {
		return nil, &BadCrossReferenceError{AtIndex: index, ExpectedKind: "Methodref", Actual: "absent"}
	}
	r, ok := e.(*ConstantMethodref)
	if !ok {
		return nil, &BadCrossReferenceError{AtIndex: index, ExpectedKind: "Methodref", Actual: e.Tag().String()}
	}
	return cp.resolveRef(r.ClassIndex, r.NameAndTypeIndex)
}

// ResolveInterfaceMethodref resolves a CONSTANT_InterfaceMethodref_info at
// index.
func (cp *ConstantPool) ResolveInterfaceMethodref(index uint16) (*MemberRef, error) {
	e, ok := cp.Get(index)
	if !ok {
		return nil, &BadCrossReferenceError{AtIndex: index, ExpectedKind: "InterfaceMethodref", Actual: "absent"}
	}
	r, ok := e.(*ConstantInterfaceMethodref)
	if !ok {
		return nil, &BadCrossReferenceError{AtIndex: index, ExpectedKind: "InterfaceMethodref", Actual: e.Tag().String()}
	}
	return cp.resolveRef(r.ClassIndex, r.NameAndTypeIndex)
}

func (cp *ConstantPool) resolveRef(classIndex, natIndex uint16) (*MemberRef, error) {
	className, err := cp.GetClassName(classIndex)
	if err != nil {
		return nil, err
	}
	name, desc, err := cp.GetNameAndType(natIndex)
	if err != nil {
		return nil, err
	}
	return &MemberRef{ClassName: className, Name: name, Descriptor: desc}, nil
}

// parseConstantPool decodes constant_pool_count-1 logical slots from c.
// Long and Double entries each contribute two logical slots: the decoded
// entry and a ConstantReserved sentinel. count is the raw
// constant_pool_count field (one more than the logical slot count).
func parseConstantPool(c *Cursor, count uint16) (*ConstantPool, error) {
	logicalLen := int(count) - 1
	cp := &ConstantPool{entries: make([]ConstantPoolEntry, logicalLen)}

	for i := 0; i < logicalLen; i++ {
		index := uint16(i + 1)
		tagByte, err := c.ReadU8()
		if err != nil {
			return nil, err
		}

		entry, extraSlot, err := parseConstantPoolEntry(c, Tag(tagByte), index)
		if err != nil {
			return nil, err
		}
		cp.entries[i] = entry

		if extraSlot {
			i++
			if i >= logicalLen {
				return nil, &UnknownConstantPoolTagError{Tag: tagByte, AtIndex: index}
			}
			cp.entries[i] = &ConstantReserved{tag: Tag(tagByte)}
		}
	}

	return cp, nil
}

// parseConstantPoolEntry decodes a single tagged entry. extraSlot reports
// whether the tag is Long/Double and consumed a second logical slot.
func parseConstantPoolEntry(c *Cursor, tag Tag, index uint16) (entry ConstantPoolEntry, extraSlot bool, err error) {
	switch tag {
	case TagUtf8:
		length, err := c.ReadU16()
		if err != nil {
			return nil, false, err
		}
		b, err := c.ReadBytes(int(length))
		if err != nil {
			return nil, false, err
		}
		return &ConstantUtf8{Bytes: b}, false, nil

	case TagInteger:
		v, err := c.ReadI32()
		if err != nil {
			return nil, false, err
		}
		return &ConstantInteger{Value: v}, false, nil

	case TagFloat:
		bits, err := c.ReadU32()
		if err != nil {
			return nil, false, err
		}
		return &ConstantFloat{Value: math.Float32frombits(bits)}, false, nil

	case TagLong:
		v, err := c.ReadI64()
		if err != nil {
			return nil, false, err
		}
		return &ConstantLong{Value: v}, true, nil

	case TagDouble:
		bits, err := c.ReadU64()
		if err != nil {
			return nil, false, err
		}
		return &ConstantDouble{Value: math.Float64frombits(bits)}, true, nil

	case TagClass:
		nameIndex, err := c.ReadU16()
		if err != nil {
			return nil, false, err
		}
		return &ConstantClass{NameIndex: nameIndex}, false, nil

	case TagString:
		stringIndex, err := c.ReadU16()
		if err != nil {
			return nil, false, err
		}
		return &ConstantString{StringIndex: stringIndex}, false, nil

	case TagFieldref:
		classIndex, natIndex, err := readRefPair(c)
		if err != nil {
			return nil, false, err
		}
		return &ConstantFieldref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, false, nil

	case TagMethodref:
		classIndex, natIndex, err := readRefPair(c)
		if err != nil {
			return nil, false, err
		}
		return &ConstantMethodref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, false, nil

	case TagInterfaceMethodref:
		classIndex, natIndex, err := readRefPair(c)
		if err != nil {
			return nil, false, err
		}
		return &ConstantInterfaceMethodref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, false, nil

	case TagNameAndType:
		nameIndex, descIndex, err := readRefPair(c)
		if err != nil {
			return nil, false, err
		}
		return &ConstantNameAndType{NameIndex: nameIndex, DescriptorIndex: descIndex}, false, nil

	case TagMethodHandle:
		kind, err := c.ReadU8()
		if err != nil {
			return nil, false, err
		}
		refIndex, err := c.ReadU16()
		if err != nil {
			return nil, false, err
		}
		return &ConstantMethodHandle{ReferenceKind: MHKind(kind), ReferenceIndex: refIndex}, false, nil

	case TagMethodType:
		descIndex, err := c.ReadU16()
		if err != nil {
			return nil, false, err
		}
		return &ConstantMethodType{DescriptorIndex: descIndex}, false, nil

	case TagDynamic:
		bsmIndex, natIndex, err := readRefPair(c)
		if err != nil {
			return nil, false, err
		}
		return &ConstantDynamic{BootstrapMethodAttrIndex: bsmIndex, NameAndTypeIndex: natIndex}, false, nil

	case TagInvokeDynamic:
		bsmIndex, natIndex, err := readRefPair(c)
		if err != nil {
			return nil, false, err
		}
		return &ConstantInvokeDynamic{BootstrapMethodAttrIndex: bsmIndex, NameAndTypeIndex: natIndex}, false, nil

	case TagModule:
		nameIndex, err := c.ReadU16()
		if err != nil {
			return nil, false, err
		}
		return &ConstantModule{NameIndex: nameIndex}, false, nil

	case TagPackage:
		nameIndex, err := c.ReadU16()
		if err != nil {
			return nil, false, err
		}
		return &ConstantPackage{NameIndex: nameIndex}, false, nil

	default:
		return nil, false, &UnknownConstantPoolTagError{Tag: uint8(tag), AtIndex: index}
	}
}

func readRefPair(c *Cursor) (a, b uint16, err error) {
	a, err = c.ReadU16()
	if err != nil {
		return 0, 0, err
	}
	b, err = c.ReadU16()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// decodeModifiedUTF8 decodes Java's modified-UTF-8 encoding (JVMS 4.4.7):
// U+0000 is encoded as the two-byte sequence 0xC0 0x80, and supplementary
// characters are encoded as a surrogate pair of two three-byte sequences,
// rather than standard UTF-8's four-byte form. Plain UTF-8 decoding would
// silently mis-decode both cases.
func decodeModifiedUTF8(b []byte) (string, error) {
	out := make([]rune, 0, len(b))
	i := 0
	for i < len(b) {
		b0 := b[i]
		switch {
		case b0&0x80 == 0: // 0xxxxxxx
			out = append(out, rune(b0))
			i++

		case b0&0xE0 == 0xC0: // 110xxxxx 10xxxxxx
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", &InvalidUTF8Error{Bytes: b}
			}
			r := rune(b0&0x1F)<<6 | rune(b[i+1]&0x3F)
			out = append(out, r)
			i += 2

		case b0&0xF0 == 0xE0: // 1110xxxx 10xxxxxx 10xxxxxx
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", &InvalidUTF8Error{Bytes: b}
			}
			// CESU-8 surrogate pair: two adjacent three-byte sequences, each
			// the ordinary 3-byte UTF-8 encoding of one UTF-16 surrogate
			// half, together encoding one supplementary character.
			if b0 == 0xED && i+5 < len(b) && b[i+1]&0xF0 == 0xA0 && b[i+3] == 0xED && b[i+4]&0xF0 == 0xB0 {
				high := rune(b0&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
				low := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				r := 0x10000 + (high-0xD800)<<10 + (low - 0xDC00)
				out = append(out, r)
				i += 6
				continue
			}
			r := rune(b0&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			out = append(out, r)
			i += 3

		default:
			return "", &InvalidUTF8Error{Bytes: b}
		}
	}
	return string(out), nil
}
