// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import "fmt"

// Kind identifies how a data type is stored and walked. Wire values follow
// declaration order.
type Kind int32

// Data type kinds found in internal-types blocks.
const (
	KindSimple Kind = iota
	KindValueField
	KindPointer
	KindReference
	KindArray
	KindStruct
	KindCStaticArray
	KindCStaticStackArray
	KindCDynamicContainer
	KindFunction
	KindVoid
	KindSmartPointer
	KindHandle
	KindTypedef
	KindUniquePointer
	KindScriptState
	KindScriptLatent
	KindUnknown
)

// UniquePointer template names with dedicated walk rules.
const (
	templateResourceLink  = "ResourceLink"
	templateSynced        = "Synced"
	templateUniquePtr     = "UniquePtr"
	templateStaticArray2D = "CStaticArray2D"
)

// Type names with dedicated skip rules.
const (
	typeNameCString       = "CString"
	typeNameCMetaPointer  = "CMetaPointer"
	typeNameCMetaHandle   = "CMetaHandle"
	typeNameCSyncedSLONG  = "CSyncedSLONG"
	typeNameCTransString  = "CTransString"
	typeNameCBaseTexture  = "CBaseTexture"
	typeNameCResourceFile = "CResourceFile"
)

// Member identities of CResourceFile self-description fields.
const (
	memberIdentAssetFN  = "14"
	memberIdentAssetUID = "7"
)

// resolveState tracks lazy per-type computations across a possibly cyclic
// type graph.
type resolveState uint8

const (
	stateUnknown resolveState = iota
	stateVisiting
	stateResolved
)

// StructMember is one named field of a struct type. Newer meta versions
// identify members by a decimal Id string, older ones by a human-readable
// Name; exactly one of the two is set.
type StructMember struct {
	// Type is the member's data type.
	Type *DataType
	// Name is the human-readable identifier of older meta versions.
	Name string
	// Id is the decimal identifier string of newer meta versions.
	Id string
}

// matchIdent reports whether the member is identified by ident.
func (sm *StructMember) matchIdent(ident string) bool {
	return sm.Id == ident || sm.Name == ident
}

// DataType is one self-describing type read from a file's internal-types
// block. Instances live for the duration of one parse and are discarded with
// the parser.
type DataType struct {
	// Pointer is the referent type for pointer-like and container kinds.
	Pointer *DataType
	// Base is the optional base type of a struct.
	Base *DataType
	// Name is the declared type name.
	Name string
	// Template is the template name, meaningful only for UniquePointer.
	Template string
	// Members is the ordered member list of a struct.
	Members []*StructMember
	// Index is the dense type table index.
	Index int32
	// Format is the numeric format tag.
	Format int32
	// ArraySize is the element count of a fixed array.
	ArraySize int32

	kind Kind

	size      int32
	sizeKnown bool
	sizeState resolveState

	hasRL      bool
	hasRLState resolveState
}

// Kind returns the type's kind.
func (t *DataType) Kind() Kind {
	return t.kind
}

// Size returns the statically known instance size and whether one exists.
// Propagation runs at most once per type and is idempotent.
func (t *DataType) Size() (int32, bool) {
	t.resolveSize()
	return t.size, t.sizeKnown
}

// HasResourceLink reports whether any reachable inline constituent is a
// UniquePointer with the ResourceLink template. Computed exactly once.
func (t *DataType) HasResourceLink() bool {
	t.resolveResourceLink()
	return t.hasRL
}

// primitiveSizes maps recognized primitive names to fixed sizes.
var primitiveSizes = map[string]int32{
	"SBYTE": 1, "UBYTE": 1,
	"SWORD": 2, "UWORD": 2,
	"SLONG": 4, "ULONG": 4, "FLOAT": 4, "IDENT": 4,
	"SQUAD": 8, "DOUBLE": 8,
}

// resolveSize computes the static size where one exists. Cycles through
// struct bases and pointees resolve to unknown.
func (t *DataType) resolveSize() {
	if t.sizeState == stateResolved {
		return
	}
	if t.sizeState == stateVisiting {
		return
	}

	t.sizeState = stateVisiting
	defer func() { t.sizeState = stateResolved }()

	switch t.kind {
	case KindSimple, KindUnknown:
		if s, ok := primitiveSizes[t.Name]; ok {
			t.size, t.sizeKnown = s, true
		}

	case KindPointer, KindReference, KindSmartPointer, KindHandle:
		t.size, t.sizeKnown = 4, true

	case KindArray:
		if t.Pointer != nil {
			if ps, ok := t.Pointer.Size(); ok {
				t.size, t.sizeKnown = t.ArraySize*ps, true
			}
		}

	case KindStruct:
		total := int32(0)
		known := true
		if t.Base != nil {
			bs, ok := t.Base.Size()
			total, known = total+bs, known && ok
		}
		for _, m := range t.Members {
			if m.Type == nil {
				known = false
				break
			}

			ms, ok := m.Type.Size()
			total, known = total+ms, known && ok
		}
		if known {
			t.size, t.sizeKnown = total, true
		}

	case KindTypedef:
		if t.Pointer != nil {
			t.size, t.sizeKnown = t.Pointer.size, t.Pointer.sizeKnown
			if !t.sizeKnown {
				if s, ok := t.Pointer.Size(); ok {
					t.size, t.sizeKnown = s, true
				}
			}
		}

	case KindUniquePointer:
		switch t.Template {
		case templateUniquePtr:
			t.size, t.sizeKnown = 4, true
		case templateSynced:
			if t.Pointer != nil {
				if s, ok := t.Pointer.Size(); ok {
					t.size, t.sizeKnown = s, true
				}
			}
		}
	}
}

// resolveResourceLink computes the resource-link reachability flag via
// structural recursion, breaking cycles with the visiting state.
func (t *DataType) resolveResourceLink() {
	if t.hasRLState == stateResolved || t.hasRLState == stateVisiting {
		return
	}

	t.hasRLState = stateVisiting
	defer func() { t.hasRLState = stateResolved }()

	switch t.kind {
	case KindUniquePointer:
		switch t.Template {
		case templateResourceLink:
			t.hasRL = true
		case templateSynced, templateStaticArray2D:
			if t.Pointer != nil {
				t.hasRL = t.Pointer.HasResourceLink()
			}
		}

	case KindArray, KindCStaticArray, KindCStaticStackArray:
		if t.Pointer != nil {
			t.hasRL = t.Pointer.HasResourceLink()
		}

	case KindTypedef:
		if t.Pointer != nil {
			t.hasRL = t.Pointer.HasResourceLink()
		}

	case KindStruct:
		if t.Base != nil && t.Base.HasResourceLink() {
			t.hasRL = true
			return
		}
		for _, m := range t.Members {
			if m.Type != nil && m.Type.HasResourceLink() {
				t.hasRL = true
				return
			}
		}
	}
}

// typeTable holds all types of one parsed file, indexed densely.
type typeTable struct {
	types []*DataType
}

// byIndex resolves a type by table index.
func (tt *typeTable) byIndex(idx int32) (*DataType, error) {
	if idx < 0 || int(idx) >= len(tt.types) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrTypeNotResolved, idx, len(tt.types))
	}

	return tt.types[idx], nil
}

// anyResourceLink reports whether any type in the table reaches a resource
// link.
func (tt *typeTable) anyResourceLink() bool {
	for _, t := range tt.types {
		if t.HasResourceLink() {
			return true
		}
	}

	return false
}

// rawTypeRefs keeps unresolved indices until the whole table is read.
type rawTypeRefs struct {
	pointee    int32
	base       int32
	memberType []int32
}

// parseInternalTypes reads the INTERNAL_TYPES list and returns the fully
// resolved type table. All types are allocated by index first; pointer
// fields resolve by index afterwards so forward references are safe.
func parseInternalTypes(m *MetaReader) (*typeTable, error) {
	count, err := m.BeginList(blockIntTypes)
	if err != nil {
		return nil, err
	}

	tt := &typeTable{types: make([]*DataType, count)}
	refs := make([]rawTypeRefs, count)
	for i := range tt.types {
		tt.types[i] = &DataType{Index: int32(i)}
		refs[i] = rawTypeRefs{pointee: -1, base: -1}
	}

	for i := int32(0); i < count; i++ {
		if err := parseDataType(m, tt.types[i], &refs[i]); err != nil {
			return nil, fmt.Errorf("internal type %d: %w", i, err)
		}
	}

	for i := range tt.types {
		if err := resolveTypeRefs(tt, tt.types[i], &refs[i]); err != nil {
			return nil, fmt.Errorf("resolve type %d: %w", i, err)
		}
	}

	return tt, nil
}

// parseDataType reads one DATA_TYPE entry, recording referent indices for a
// later resolution pass.
func parseDataType(m *MetaReader, t *DataType, refs *rawTypeRefs) error {
	if err := m.ExpectBlock(blockDataType); err != nil {
		return err
	}

	idx, err := m.ReadInt32()
	if err != nil {
		return err
	}
	if idx != t.Index {
		return fmt.Errorf("%w: entry index %d, want %d", ErrMalformedHeader, idx, t.Index)
	}

	if t.Name, err = m.ReadString(); err != nil {
		return err
	}

	kind, err := m.ReadInt32()
	if err != nil {
		return err
	}
	if kind < int32(KindSimple) || kind > int32(KindUnknown) {
		return fmt.Errorf("%w: kind %d", ErrUnexpectedDataTypeKind, kind)
	}
	t.kind = Kind(kind)

	if t.Format, err = m.ReadInt32(); err != nil {
		return err
	}

	switch t.kind {
	case KindPointer, KindReference, KindSmartPointer, KindHandle, KindTypedef,
		KindCDynamicContainer, KindCStaticArray, KindCStaticStackArray:
		if refs.pointee, err = m.ReadInt32(); err != nil {
			return err
		}

	case KindArray:
		if refs.pointee, err = m.ReadInt32(); err != nil {
			return err
		}
		if t.ArraySize, err = m.ReadInt32(); err != nil {
			return err
		}

	case KindUniquePointer:
		if refs.pointee, err = m.ReadInt32(); err != nil {
			return err
		}
		if t.Template, err = m.ReadString(); err != nil {
			return err
		}

	case KindStruct:
		if refs.base, err = m.ReadInt32(); err != nil {
			return err
		}

		memberCount, err := m.BeginList(blockStructMembs)
		if err != nil {
			return err
		}

		t.Members = make([]*StructMember, memberCount)
		refs.memberType = make([]int32, memberCount)
		for j := range t.Members {
			ident, err := m.ReadString()
			if err != nil {
				return err
			}

			member := &StructMember{}
			if isDecimalIdent(ident) {
				member.Id = ident
			} else {
				member.Name = ident
			}

			t.Members[j] = member
			if refs.memberType[j], err = m.ReadInt32(); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveTypeRefs replaces recorded indices with type pointers.
func resolveTypeRefs(tt *typeTable, t *DataType, refs *rawTypeRefs) error {
	if refs.pointee >= 0 {
		p, err := tt.byIndex(refs.pointee)
		if err != nil {
			return err
		}
		t.Pointer = p
	} else if kindRequiresPointee(t.kind) {
		return fmt.Errorf("%w: kind %d without referent", ErrUnexpectedDataTypeKind, t.kind)
	}

	if t.kind == KindStruct && refs.base >= 0 {
		b, err := tt.byIndex(refs.base)
		if err != nil {
			return err
		}
		t.Base = b
	}

	for j, idx := range refs.memberType {
		mt, err := tt.byIndex(idx)
		if err != nil {
			return err
		}
		t.Members[j].Type = mt
	}

	return nil
}

// kindRequiresPointee reports whether the kind must carry a referent type.
func kindRequiresPointee(k Kind) bool {
	switch k {
	case KindPointer, KindReference, KindArray, KindCStaticArray,
		KindCStaticStackArray, KindCDynamicContainer, KindSmartPointer,
		KindHandle, KindTypedef, KindUniquePointer:
		return true
	default:
		return false
	}
}

// isDecimalIdent reports whether s is a non-empty all-digit identifier.
func isDecimalIdent(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
