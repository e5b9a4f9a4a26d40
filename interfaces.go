// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// parseInterfaces decodes the interfaces_count-prefixed table of direct
// superinterface constant pool indices (JVMS 4.1). The indices are kept
// raw: resolving them to class names requires a constant pool lookup that
// can itself fail (out-of-range index, wrong entry kind), and that failure
// is a cross-reference problem, not a structural one — it must not abort
// the structural parse. Callers resolve via InterfaceNames.
func parseInterfaces(c *Cursor) ([]uint16, error) {
	count, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	indices := make([]uint16, count)
	for i := range indices {
		idx, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}
	return indices, nil
}

// InterfaceNames resolves cf's InterfaceIndices against its own constant
// pool, returning the internal name of each direct superinterface in
// declaration order. An out-of-range or wrongly-tagged index is reported
// as an error rather than a panic; the class file itself has already
// parsed successfully regardless of the outcome.
func (cf *ClassFile) InterfaceNames() ([]string, error) {
	names := make([]string, len(cf.InterfaceIndices))
	for i, idx := range cf.InterfaceIndices {
		name, err := cf.ConstantPool.GetClassName(idx)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}
