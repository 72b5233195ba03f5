package serename

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// parseFixtureTypes builds a meta header followed directly by an
// INTERNAL_TYPES list and parses it.
func parseFixtureTypes(t *testing.T, types ...fixType) *typeTable {
	t.Helper()

	b := newMetaBuilder(binary.LittleEndian, 1)
	b.intTypes(types...)

	m, err := NewMetaReader(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("NewMetaReader: %v", err)
	}

	tt, err := parseInternalTypes(m)
	if err != nil {
		t.Fatalf("parseInternalTypes: %v", err)
	}

	return tt
}

func TestDataType_SizePropagation(t *testing.T) {
	t.Parallel()

	tt := parseFixtureTypes(t,
		fixSimple("SBYTE"),
		fixSimple("UWORD"),
		fixSimple("FLOAT"),
		fixSimple("DOUBLE"),
		fixType{name: "PFloat", kind: KindPointer, pointee: 2},
		fixType{name: "AFloat", kind: KindArray, pointee: 2, arraySize: 3},
		fixType{name: "SPair", kind: KindStruct, members: []fixMember{
			{ident: "1", typeIdx: 2},
			{ident: "2", typeIdx: 1},
		}},
		fixType{name: "TDef", kind: KindTypedef, pointee: 6},
		fixType{name: "TUniq", kind: KindUniquePointer, pointee: 2, template: templateUniquePtr},
		fixType{name: "TSync", kind: KindUniquePointer, pointee: 3, template: templateSynced},
		fixSimple("CString"),
	)

	wantSizes := []struct {
		idx   int32
		size  int32
		known bool
	}{
		{0, 1, true},
		{1, 2, true},
		{2, 4, true},
		{3, 8, true},
		{4, 4, true},
		{5, 12, true},
		{6, 6, true},
		{7, 6, true},
		{8, 4, true},
		{9, 8, true},
		{10, 0, false},
	}

	for _, want := range wantSizes {
		dt, err := tt.byIndex(want.idx)
		if err != nil {
			t.Fatalf("byIndex(%d): %v", want.idx, err)
		}

		size, known := dt.Size()
		if known != want.known || (known && size != want.size) {
			t.Errorf("type %d (%s): size=%d known=%v, want %d %v", want.idx, dt.Name, size, known, want.size, want.known)
		}

		// Propagation is idempotent.
		again, knownAgain := dt.Size()
		if again != size || knownAgain != known {
			t.Errorf("type %d: second Size() changed result", want.idx)
		}
	}
}

func TestDataType_HasResourceLink(t *testing.T) {
	t.Parallel()

	tt := parseFixtureTypes(t,
		fixSimple("ULONG"),
		fixResourceLink(0),
		fixType{name: "Holder", kind: KindStruct, members: []fixMember{{ident: "1", typeIdx: 1}}},
		fixType{name: "Plain", kind: KindStruct, members: []fixMember{{ident: "1", typeIdx: 0}}},
		fixType{name: "Cont", kind: KindCDynamicContainer, pointee: 2},
		fixType{name: "Arr", kind: KindCStaticArray, pointee: 2},
		fixType{name: "TSyncLink", kind: KindUniquePointer, pointee: 1, template: templateSynced},
		fixType{name: "TUniqLink", kind: KindUniquePointer, pointee: 1, template: templateUniquePtr},
	)

	wantRL := []bool{false, true, true, false, false, true, true, false}
	for idx, want := range wantRL {
		dt, err := tt.byIndex(int32(idx))
		if err != nil {
			t.Fatalf("byIndex(%d): %v", idx, err)
		}

		if got := dt.HasResourceLink(); got != want {
			t.Errorf("type %d (%s): HasResourceLink=%v, want %v", idx, dt.Name, got, want)
		}
	}

	if !tt.anyResourceLink() {
		t.Error("anyResourceLink=false, want true")
	}
}

func TestDataType_CyclicStructResolves(t *testing.T) {
	t.Parallel()

	// A struct holding a pointer back to itself must not recurse forever.
	tt := parseFixtureTypes(t,
		fixType{name: "Node", kind: KindStruct, members: []fixMember{{ident: "1", typeIdx: 1}}},
		fixType{name: "PNode", kind: KindPointer, pointee: 0},
	)

	node, err := tt.byIndex(0)
	if err != nil {
		t.Fatalf("byIndex: %v", err)
	}

	if size, known := node.Size(); !known || size != 4 {
		t.Errorf("cyclic struct size=%d known=%v, want 4 true", size, known)
	}
	if node.HasResourceLink() {
		t.Error("cyclic struct reports a resource link")
	}
}

func TestParseInternalTypes_BadReferent(t *testing.T) {
	t.Parallel()

	b := newMetaBuilder(binary.LittleEndian, 1)
	b.intTypes(fixType{name: "P", kind: KindPointer, pointee: 9})

	m, err := NewMetaReader(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("NewMetaReader: %v", err)
	}

	if _, err := parseInternalTypes(m); !errors.Is(err, ErrTypeNotResolved) {
		t.Fatalf("got %v, want ErrTypeNotResolved", err)
	}
}

func TestMetaReader_HeaderValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewMetaReader(bytes.NewReader([]byte("NOTMETA0\x00\x00\x00\x00"))); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("bad magic: got %v, want ErrMalformedHeader", err)
	}

	var buf bytes.Buffer
	buf.Write(metaMagicBytes)
	buf.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	if _, err := NewMetaReader(bytes.NewReader(buf.Bytes())); !errors.Is(err, ErrUnexpectedEndianness) {
		t.Errorf("bad cookie: got %v, want ErrUnexpectedEndianness", err)
	}
}
