// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/go-kratos/kratos/v2/log"
)

// Magic is the four-byte value every class file begins with (JVMS 4.1).
const Magic uint32 = 0xCAFEBABE

// ClassFile is the fully decoded form of a .class file (JVMS 4.1).
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags

	// ThisClassIndex, SuperClassIndex, and InterfaceIndices are kept as raw
	// constant pool indices, exactly as they appear on disk (JVMS 4.1):
	// parsing a class file never requires that these indices resolve to
	// well-formed, correctly-tagged entries. Use ThisClassName,
	// SuperClassName, and InterfaceNames to resolve them on demand; a
	// resolution failure is reported there, not during Parse.
	ThisClassIndex   uint16
	SuperClassIndex  uint16
	InterfaceIndices []uint16

	Fields     []FieldInfo
	Methods    []MethodInfo
	Attributes []Attribute
	Anomalies  []string
}

// Strings renders cf's class-level access flags in JVMS declaration order.
func (cf *ClassFile) Strings() []string { return cf.AccessFlags.classStrings() }

// ThisClassName resolves cf's ThisClassIndex against its own constant pool.
func (cf *ClassFile) ThisClassName() (string, error) {
	return cf.ConstantPool.GetClassName(cf.ThisClassIndex)
}

// SuperClassName resolves cf's SuperClassIndex against its own constant
// pool. A zero SuperClassIndex means cf has no superclass (true only of
// java/lang/Object); ok reports false in that case and name is "".
func (cf *ClassFile) SuperClassName() (name string, ok bool, err error) {
	if cf.SuperClassIndex == 0 {
		return "", false, nil
	}
	name, err = cf.ConstantPool.GetClassName(cf.SuperClassIndex)
	return name, err == nil, err
}

// SourceFile returns the class's SourceFile attribute value, if present.
func (cf *ClassFile) SourceFile() (string, bool) {
	attr, ok := findAttribute(cf.Attributes, AttrSourceFile)
	if !ok || len(attr.Body) < 2 {
		return "", false
	}
	sourceNameIndex := uint16(attr.Body[0])<<8 | uint16(attr.Body[1])
	name, err := cf.ConstantPool.GetUtf8(sourceNameIndex)
	if err != nil {
		return "", false
	}
	return name, true
}

// Options configures how a class file is parsed. The zero value parses the
// whole file but rejects non-zero switch padding; DefaultOptions returns
// the lenient configuration used when no Options are given.
type Options struct {
	// Fast parses only through the constant pool and access/class-name
	// fields, skipping interfaces, fields, methods, and attributes. By
	// default (false), the whole file is parsed.
	Fast bool

	// MaxCodeSize caps the code_length a Code attribute's instruction
	// decoder will walk, guarding against pathological inputs. Zero means
	// unbounded (bounded only by the u4 code_length field itself, per
	// JVMS 4.7.3's 65535-byte limit which callers may choose to enforce
	// separately).
	MaxCodeSize uint32

	// AllowNonZeroSwitchPadding controls whether the 0-3 padding bytes
	// before a tableswitch/lookupswitch's operands may be non-zero. The
	// JVM spec recommends zero padding but does not require it, and some
	// historic classfiles (and obfuscators) emit garbage there; DefaultOptions
	// sets this true to accept them. Set false for a stricter decode that
	// surfaces non-zero padding as a MalformedSwitchError.
	AllowNonZeroSwitchPadding bool

	// A custom logger. Defaults to a stderr logger filtered to error
	// level.
	Logger log.Logger
}

// DefaultOptions returns the Options New and NewBytes use when called with
// a nil Options: a complete parse with lenient switch-padding handling. A
// caller that passes its own Options and cares about the lenient default
// should start from DefaultOptions() rather than a bare &Options{}.
func DefaultOptions() *Options {
	return &Options{AllowNonZeroSwitchPadding: true}
}

// File represents an open class file backed either by a memory-mapped
// file or an in-memory buffer. Its ClassFile fields are filled in by Parse.
type File struct {
	ClassFile
	data   mmap.MMap
	size   uint32
	f      *os.File
	path   string
	opts   *Options
	logger *log.Helper
}

// New memory-maps name and returns an unparsed File; call Parse to decode
// it.
func New(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := newFile(opts)
	file.data = data
	file.size = uint32(len(data))
	file.f = f
	file.path = name
	return file, nil
}

// NewBytes wraps an in-memory buffer and returns an unparsed File; call
// Parse to decode it. data is aliased, not copied.
func NewBytes(data []byte, opts *Options) (*File, error) {
	file := newFile(opts)
	file.data = data
	file.size = uint32(len(data))
	return file, nil
}

func newFile(opts *Options) *File {
	file := &File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = DefaultOptions()
	}

	var logger log.Logger
	if file.opts.Logger == nil {
		logger = log.NewStdLogger(os.Stderr)
	} else {
		logger = file.opts.Logger
	}
	file.logger = log.NewHelper(log.NewFilter(logger, log.FilterLevel(log.LevelError)))
	return file
}

// Size returns the total byte length of the backing buffer.
func (f *File) Size() uint32 { return f.size }

// Close releases the file's memory mapping, if any. In-memory-backed
// Files (constructed via NewBytes) need not be closed.
func (f *File) Close() error {
	if f.data != nil && f.f != nil {
		_ = f.data.Unmap()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Parse decodes the class file, in the order laid out by JVMS 4.1:
// magic/version, constant pool, access_flags/this_class/super_class,
// interfaces, fields, methods, attributes.
func (f *File) Parse() error {
	if err := f.parse(); err != nil {
		if f.path == "" {
			return err
		}
		return &ParseError{ClassPath: f.path, Err: err}
	}
	return nil
}

func (f *File) parse() error {
	c := NewCursor(f.data)

	magic, err := c.ReadU32()
	if err != nil {
		return err
	}
	if magic != Magic {
		return &BadMagicError{Got: magic}
	}

	minor, err := c.ReadU16()
	if err != nil {
		return err
	}
	major, err := c.ReadU16()
	if err != nil {
		return err
	}
	f.MinorVersion = minor
	f.MajorVersion = major
	if _, known := javaVersionNames[major]; !known && major >= 45 {
		f.Anomalies = append(f.Anomalies, AnoMajorVersionUnreleased)
		f.logger.Warnf("major_version %d does not correspond to a known JDK release", major)
	}

	cpCount, err := c.ReadU16()
	if err != nil {
		return err
	}
	cp, err := parseConstantPool(c, cpCount)
	if err != nil {
		return err
	}
	f.ConstantPool = cp

	flags, err := c.ReadU16()
	if err != nil {
		return err
	}
	f.AccessFlags = AccessFlags(flags)

	thisClassIndex, err := c.ReadU16()
	if err != nil {
		return err
	}
	f.ThisClassIndex = thisClassIndex

	superClassIndex, err := c.ReadU16()
	if err != nil {
		return err
	}
	f.SuperClassIndex = superClassIndex
	if superClassIndex == 0 {
		// this_class is resolved only for this anomaly heuristic, and only
		// best-effort: a this_class that itself fails to resolve is a
		// cross-reference problem for a later verification pass, not a
		// reason to abort the structural parse or to suppress this check.
		if thisClass, err := cp.GetClassName(thisClassIndex); err != nil || thisClass != "java/lang/Object" {
			f.Anomalies = append(f.Anomalies, AnoSuperClassIndexZeroOnNonObject)
			f.logger.Warnf("%s: super_class is 0 but class is not java/lang/Object", f.logName())
		}
	}

	if f.opts.Fast {
		return nil
	}

	interfaces, err := parseInterfaces(c)
	if err != nil {
		return err
	}
	f.InterfaceIndices = interfaces

	fields, err := parseFields(c, cp, f.opts)
	if err != nil {
		return err
	}
	f.Fields = fields
	f.checkFieldAnomalies()

	methods, err := parseMethods(c, cp, f.opts)
	if err != nil {
		return err
	}
	f.Methods = methods
	f.checkMethodAnomalies()

	attrs, err := parseAttributes(c, cp, f.opts)
	if err != nil {
		return err
	}
	f.Attributes = attrs

	return nil
}

// logName returns cf's this_class name for log messages, best-effort: an
// unresolvable index falls back to its raw numeric form rather than
// failing the anomaly check that wants to mention it.
func (cf *ClassFile) logName() string {
	name, err := cf.ThisClassName()
	if err != nil {
		return fmt.Sprintf("#%d", cf.ThisClassIndex)
	}
	return name
}

func (f *File) checkFieldAnomalies() {
	isInterface := f.AccessFlags.Is(AccInterface)
	for i := range f.Fields {
		field := &f.Fields[i]
		if isInterface && !(field.AccessFlags.Is(AccStatic) && field.AccessFlags.Is(AccFinal)) {
			f.Anomalies = append(f.Anomalies, AnoInterfaceWithInstanceField)
			f.logger.Warnf("%s: interface field %s is not both static and final", f.logName(), field.Name)
		}
		if _, deprecated := findAttribute(field.Attributes, AttrDeprecated); deprecated {
			f.Anomalies = append(f.Anomalies, AnoDeprecatedMember)
			f.logger.Debugf("%s: field %s is deprecated", f.logName(), field.Name)
		}
	}
}

func (f *File) checkMethodAnomalies() {
	for i := range f.Methods {
		m := &f.Methods[i]
		_, hasCode := m.Code()
		abstractOrNative := m.AccessFlags.Is(AccAbstract) || m.AccessFlags.Is(AccNative)
		switch {
		case abstractOrNative && hasCode:
			f.Anomalies = append(f.Anomalies, AnoAbstractOrNativeMethodHasCode)
			f.logger.Errorf("%s: abstract or native method %s%s has a Code attribute", f.logName(), m.Name, m.Descriptor)
		case !abstractOrNative && !hasCode:
			f.Anomalies = append(f.Anomalies, AnoConcreteMethodMissingCode)
			f.logger.Errorf("%s: concrete method %s%s has no Code attribute", f.logName(), m.Name, m.Descriptor)
		}
		if _, deprecated := findAttribute(m.Attributes, AttrDeprecated); deprecated {
			f.Anomalies = append(f.Anomalies, AnoDeprecatedMember)
			f.logger.Debugf("%s: method %s%s is deprecated", f.logName(), m.Name, m.Descriptor)
		}
	}
}
