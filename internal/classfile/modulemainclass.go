// Package classfile patches compiled JVM class files.
//
// Its single job is embedding a ModuleMainClass attribute into a compiled
// module-info.class. The file is parsed only as deeply as needed: the
// constant pool is walked entry by entry (entry sizes depend on their
// tags), everything between the pool and the class-level attributes is
// kept as one opaque byte segment, and attributes are kept raw. Patching
// the same main class twice therefore yields byte-identical output.
package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	magic = 0xCAFEBABE

	moduleMainClassAttribute = "ModuleMainClass"
)

// Constant pool tags, JVMS §4.4.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

type constant struct {
	tag  byte
	data []byte // raw entry bytes after the tag
}

type attribute struct {
	nameIndex uint16
	data      []byte
}

type classFile struct {
	header     []byte // magic, minor, major
	constants  []constant
	middle     []byte // access flags through methods, untouched
	attributes []attribute
}

// PatchModuleMainClass returns classBytes with a ModuleMainClass attribute
// referencing mainClass added or replaced. Every other byte of the class
// file is preserved. mainClass uses the source form (dots), which is
// converted to the internal binary name.
func PatchModuleMainClass(classBytes []byte, mainClass string) ([]byte, error) {
	cf, err := parse(classBytes)
	if err != nil {
		return nil, err
	}

	internalName := strings.ReplaceAll(mainClass, ".", "/")

	attrName := cf.ensureUtf8(moduleMainClassAttribute)
	classIndex := cf.ensureClass(internalName)

	data := make([]byte, 2)
	binary.BigEndian.PutUint16(data, classIndex)

	replaced := false
	for i := range cf.attributes {
		if cf.utf8At(cf.attributes[i].nameIndex) == moduleMainClassAttribute {
			cf.attributes[i].data = data
			replaced = true

			break
		}
	}

	if !replaced {
		cf.attributes = append(cf.attributes, attribute{nameIndex: attrName, data: data})
	}

	return cf.serialize(), nil
}

func parse(classBytes []byte) (*classFile, error) {
	if len(classBytes) < 10 {
		return nil, fmt.Errorf("truncated class file")
	}

	r := &reader{buf: classBytes}

	if r.u4() != magic {
		return nil, fmt.Errorf("not a class file: bad magic")
	}

	r.skip(4) // minor, major

	cf := &classFile{header: classBytes[:8]}

	poolCount := int(r.u2())
	for i := 1; i < poolCount; i++ {
		tag := r.u1()

		var size int
		switch tag {
		case tagUtf8:
			size = 2 + int(binary.BigEndian.Uint16(r.peek(2)))
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			size = 4
		case tagLong, tagDouble:
			size = 8
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			size = 2
		case tagMethodHandle:
			size = 3
		default:
			return nil, fmt.Errorf("unknown constant pool tag %d at entry %d", tag, i)
		}

		cf.constants = append(cf.constants, constant{tag: tag, data: r.bytes(size)})

		// Longs and doubles occupy two pool slots.
		if tag == tagLong || tag == tagDouble {
			cf.constants = append(cf.constants, constant{})
			i++
		}
	}

	middleStart := r.pos
	r.skip(6) // access flags, this class, super class
	r.skip(2 * int(r.u2()))

	skipMembers(r) // fields
	skipMembers(r) // methods

	cf.middle = classBytes[middleStart:r.pos]

	attrCount := int(r.u2())
	for i := 0; i < attrCount; i++ {
		nameIndex := r.u2()
		length := int(r.u4())
		cf.attributes = append(cf.attributes, attribute{nameIndex: nameIndex, data: r.bytes(length)})
	}

	if r.err != nil {
		return nil, fmt.Errorf("truncated class file: %w", r.err)
	}

	return cf, nil
}

func skipMembers(r *reader) {
	count := int(r.u2())
	for i := 0; i < count; i++ {
		r.skip(6) // access flags, name index, descriptor index
		skipAttributes(r)
	}
}

func skipAttributes(r *reader) {
	count := int(r.u2())
	for i := 0; i < count; i++ {
		r.skip(2)
		r.skip(int(r.u4()))
	}
}

// utf8At returns the Utf8 constant at a 1-based pool index, or "".
func (cf *classFile) utf8At(index uint16) string {
	i := int(index) - 1
	if i < 0 || i >= len(cf.constants) || cf.constants[i].tag != tagUtf8 {
		return ""
	}

	return string(cf.constants[i].data[2:])
}

// ensureUtf8 returns the pool index of a Utf8 constant with the given
// value, appending one only when none exists. Reuse keeps repeated patches
// byte-identical.
func (cf *classFile) ensureUtf8(value string) uint16 {
	for i, c := range cf.constants {
		if c.tag == tagUtf8 && string(c.data[2:]) == value {
			return uint16(i + 1)
		}
	}

	data := make([]byte, 2+len(value))
	binary.BigEndian.PutUint16(data, uint16(len(value)))
	copy(data[2:], value)

	cf.constants = append(cf.constants, constant{tag: tagUtf8, data: data})

	return uint16(len(cf.constants))
}

// ensureClass returns the pool index of a Class constant naming
// internalName, appending the Utf8 and Class entries as needed.
func (cf *classFile) ensureClass(internalName string) uint16 {
	nameIndex := cf.ensureUtf8(internalName)

	for i, c := range cf.constants {
		if c.tag == tagClass && binary.BigEndian.Uint16(c.data) == nameIndex {
			return uint16(i + 1)
		}
	}

	data := make([]byte, 2)
	binary.BigEndian.PutUint16(data, nameIndex)

	cf.constants = append(cf.constants, constant{tag: tagClass, data: data})

	return uint16(len(cf.constants))
}

func (cf *classFile) serialize() []byte {
	var out bytes.Buffer

	out.Write(cf.header)

	writeU2(&out, uint16(len(cf.constants)+1))
	for _, c := range cf.constants {
		if c.tag == 0 {
			continue // second slot of a long or double
		}

		out.WriteByte(c.tag)
		out.Write(c.data)
	}

	out.Write(cf.middle)

	writeU2(&out, uint16(len(cf.attributes)))
	for _, a := range cf.attributes {
		writeU2(&out, a.nameIndex)

		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(a.data)))
		out.Write(length[:])

		out.Write(a.data)
	}

	return out.Bytes()
}

func writeU2(out *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	out.Write(b[:])
}

// reader is a bounds-checked big-endian cursor. The first out-of-bounds
// read latches err and subsequent reads return zero values.
type reader struct {
	buf []byte
	pos int
	err error
}

func (r *reader) u1() byte {
	b := r.bytes(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *reader) u2() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}

	return binary.BigEndian.Uint16(b)
}

func (r *reader) u4() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}

	return binary.BigEndian.Uint32(b)
}

func (r *reader) skip(n int) {
	r.bytes(n)
}

func (r *reader) peek(n int) []byte {
	if r.err != nil || r.pos+n > len(r.buf) {
		r.err = fmt.Errorf("unexpected end of data at offset %d", r.pos)
		return make([]byte, n)
	}

	return r.buf[r.pos : r.pos+n]
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil || r.pos+n > len(r.buf) {
		if r.err == nil {
			r.err = fmt.Errorf("unexpected end of data at offset %d", r.pos)
		}

		return nil
	}

	b := r.buf[r.pos : r.pos+n]
	r.pos += n

	return b
}
