package serename

import (
	"bytes"
	"encoding/binary"
)

// metaBuilder hand-encodes CTSEMETA fixtures for tests, mirroring the block
// layout the parser expects. The endianness of every multi-byte field
// follows the builder's byte order; the 8-byte magic is raw.
type metaBuilder struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

// fixMember describes one struct member of a fixture type.
type fixMember struct {
	ident   string
	typeIdx int32
}

// fixType describes one internal type of a fixture file.
type fixType struct {
	name      string
	template  string
	members   []fixMember
	kind      Kind
	format    int32
	pointee   int32
	arraySize int32
	base      int32
}

// newMetaBuilder writes the meta header (magic, cookie, version, annotation
// for versions above 1).
func newMetaBuilder(order binary.ByteOrder, version int32) *metaBuilder {
	b := &metaBuilder{order: order}
	b.buf.Write(metaMagicBytes)
	b.u32(metaCookieLittle)
	b.i32(version)
	if version > 1 {
		b.str("")
	}

	return b
}

func (b *metaBuilder) bytes() []byte { return b.buf.Bytes() }

func (b *metaBuilder) pos() int64 { return int64(b.buf.Len()) }

func (b *metaBuilder) u32(v uint32) {
	var tmp [4]byte
	b.order.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
}

func (b *metaBuilder) i32(v int32) { b.u32(uint32(v)) }

func (b *metaBuilder) raw(p []byte) { b.buf.Write(p) }

func (b *metaBuilder) str(s string) {
	b.i32(int32(len(s)))
	b.buf.WriteString(s)
}

func (b *metaBuilder) block(magic uint32) { b.u32(magic) }

func (b *metaBuilder) list(magic uint32, count int32) {
	b.block(magic)
	b.i32(count)
}

// messages writes the MESSAGES block (meta versions above 9).
func (b *metaBuilder) messages(s string) {
	b.block(blockMessages)
	b.str(s)
}

// info writes the INFO block with a zeroed payload of the version's size.
func (b *metaBuilder) info(version int32) {
	b.block(blockInfo)
	b.raw(make([]byte, metaInfoSkip(version)))
}

// extFiles writes the EXTERNAL_FILES list with zeroed entry metadata.
func (b *metaBuilder) extFiles(paths ...string) {
	b.list(blockExtFiles, int32(len(paths)))
	for _, p := range paths {
		b.raw(make([]byte, externalFileEntryMetaSize))
		b.str(p)
	}
}

// idents writes the IDS list.
func (b *metaBuilder) idents(names ...string) {
	b.list(blockIdents, int32(len(names)))
	for _, n := range names {
		b.str(n)
	}
}

// extTypes writes the EXTERNAL_TYPES list.
func (b *metaBuilder) extTypes(names ...string) {
	b.list(blockExtTypes, int32(len(names)))
	for _, n := range names {
		b.str(n)
	}
}

// intTypes writes the INTERNAL_TYPES list.
func (b *metaBuilder) intTypes(types ...fixType) {
	b.list(blockIntTypes, int32(len(types)))
	for i, t := range types {
		b.block(blockDataType)
		b.i32(int32(i))
		b.str(t.name)
		b.i32(int32(t.kind))
		b.i32(t.format)

		switch t.kind {
		case KindPointer, KindReference, KindSmartPointer, KindHandle, KindTypedef,
			KindCDynamicContainer, KindCStaticArray, KindCStaticStackArray:
			b.i32(t.pointee)
		case KindArray:
			b.i32(t.pointee)
			b.i32(t.arraySize)
		case KindUniquePointer:
			b.i32(t.pointee)
			b.str(t.template)
		case KindStruct:
			// Zero-value base means "no base"; a real base type must sit at
			// a nonzero table index in fixtures.
			base := t.base
			if base == 0 {
				base = -1
			}
			b.i32(base)
			b.list(blockStructMembs, int32(len(t.members)))
			for _, m := range t.members {
				b.str(m.ident)
				b.i32(m.typeIdx)
			}
		}
	}
}

// extObjects writes the EXTERNAL_OBJECTS list with zeroed records.
func (b *metaBuilder) extObjects(count int32) {
	b.list(blockExtObjects, count)
	b.raw(make([]byte, int(count)*externalObjectEntrySize))
}

// objTypes writes the INTERNAL_OBJECT_TYPES list.
func (b *metaBuilder) objTypes(indices ...int32) {
	b.list(blockIntObjTypes, int32(len(indices)))
	for _, idx := range indices {
		b.i32(idx)
	}
}

// editTypes writes the EDIT_OBJECT_TYPES list.
func (b *metaBuilder) editTypes(indices ...int32) {
	b.list(blockEditObjTypes, int32(len(indices)))
	for _, idx := range indices {
		b.i32(idx)
	}
}

// beginObjects writes the INTERNAL_OBJECTS block header; object bodies are
// appended with raw/str/u32.
func (b *metaBuilder) beginObjects(count int32) {
	b.list(blockIntObjects, count)
}

// beginEditObjects writes the EDIT_OBJECTS block header.
func (b *metaBuilder) beginEditObjects(count int32) {
	b.list(blockEditObjects, count)
}

// fixSimple is shorthand for a named simple type.
func fixSimple(name string) fixType {
	return fixType{name: name, kind: KindSimple}
}

// fixResourceLink is shorthand for a ResourceLink unique pointer over
// pointee.
func fixResourceLink(pointee int32) fixType {
	return fixType{name: "TUniquePointer", kind: KindUniquePointer, pointee: pointee, template: templateResourceLink}
}
