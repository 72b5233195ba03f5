// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import "fmt"

// skipType advances the reader past one instance of t without emitting.
// Special-cased type names take priority over the static-size shortcut.
func skipType(t *DataType, m *MetaReader) error {
	switch t.Name {
	case typeNameCString:
		return m.SkipString()

	case typeNameCMetaPointer, typeNameCMetaHandle, typeNameCSyncedSLONG:
		return m.Skip(4)

	case typeNameCTransString:
		if err := m.Skip(4); err != nil {
			return err
		}
		if err := m.SkipString(); err != nil {
			return err
		}

		return m.SkipString()

	case typeNameCBaseTexture:
		if err := skipStructBody(t, m); err != nil {
			return err
		}

		return skipTextureBlob(t, m)
	}

	if size, ok := t.Size(); ok {
		return m.Skip(int64(size))
	}

	switch t.Kind() {
	case KindArray:
		for i := int32(0); i < t.ArraySize; i++ {
			if err := skipType(t.Pointer, m); err != nil {
				return err
			}
		}

		return nil

	case KindCStaticArray, KindCStaticStackArray:
		return skipStaticArray(t.Pointer, m)

	case KindCDynamicContainer:
		if err := m.Skip(4); err != nil {
			return err
		}

		count, err := m.ReadInt32()
		if err != nil {
			return err
		}

		return m.Skip(int64(count) * 4)

	case KindStruct:
		return skipStructBody(t, m)

	case KindTypedef:
		return skipType(t.Pointer, m)

	case KindUniquePointer:
		switch t.Template {
		case templateResourceLink:
			return m.SkipString()
		case templateSynced:
			return skipType(t.Pointer, m)
		case templateStaticArray2D:
			if err := m.Skip(8); err != nil {
				return err
			}

			return skipStaticArray(t.Pointer, m)
		}
	}

	return fmt.Errorf("%w: cannot skip %q kind %d", ErrUnexpectedDataTypeKind, t.Name, t.Kind())
}

// skipStaticArray applies the CStaticArray rule: a 4-byte header, an int32
// element count, then count pointee instances.
func skipStaticArray(pointee *DataType, m *MetaReader) error {
	if err := m.Skip(4); err != nil {
		return err
	}

	count, err := m.ReadInt32()
	if err != nil {
		return err
	}

	for i := int32(0); i < count; i++ {
		if err := skipType(pointee, m); err != nil {
			return err
		}
	}

	return nil
}

// skipStructBody skips the base (if any) then each member in order.
func skipStructBody(t *DataType, m *MetaReader) error {
	if t.Base != nil {
		if err := skipType(t.Base, m); err != nil {
			return err
		}
	}

	for _, member := range t.Members {
		if err := skipType(member.Type, m); err != nil {
			return err
		}
	}

	return nil
}

// skipTextureBlob skips the trailing texture payload of a CBaseTexture with
// a format tag above 26.
func skipTextureBlob(t *DataType, m *MetaReader) error {
	if t.Format <= 26 {
		return nil
	}

	if err := m.Skip(2); err != nil {
		return err
	}

	size, err := m.ReadInt32()
	if err != nil {
		return err
	}

	return m.Skip(int64(size))
}

// walkResourceLinks advances through one instance of t and calls onLink at
// each ResourceLink string position without consuming it; the callback reads
// (and possibly rewrites) the string and returns control. Branches without
// reachable resource links are skipped structurally.
func walkResourceLinks(t *DataType, m *MetaReader, onLink func() error) error {
	if !t.HasResourceLink() {
		return skipType(t, m)
	}

	switch t.Kind() {
	case KindUniquePointer:
		switch t.Template {
		case templateResourceLink:
			return onLink()
		case templateSynced:
			return walkResourceLinks(t.Pointer, m, onLink)
		case templateStaticArray2D:
			if err := m.Skip(8); err != nil {
				return err
			}

			return walkStaticArrayLinks(t.Pointer, m, onLink)
		}

	case KindArray:
		for i := int32(0); i < t.ArraySize; i++ {
			if err := walkResourceLinks(t.Pointer, m, onLink); err != nil {
				return err
			}
		}

		return nil

	case KindCStaticArray, KindCStaticStackArray:
		return walkStaticArrayLinks(t.Pointer, m, onLink)

	case KindStruct:
		if t.Base != nil {
			if err := walkResourceLinks(t.Base, m, onLink); err != nil {
				return err
			}
		}
		for _, member := range t.Members {
			if err := walkResourceLinks(member.Type, m, onLink); err != nil {
				return err
			}
		}

		if t.Name == typeNameCBaseTexture {
			return skipTextureBlob(t, m)
		}

		return nil

	case KindTypedef:
		return walkResourceLinks(t.Pointer, m, onLink)
	}

	return fmt.Errorf("%w: cannot walk %q kind %d", ErrUnexpectedDataTypeKind, t.Name, t.Kind())
}

// walkStaticArrayLinks applies the CStaticArray rule while yielding at
// resource-link sites inside elements.
func walkStaticArrayLinks(pointee *DataType, m *MetaReader, onLink func() error) error {
	if err := m.Skip(4); err != nil {
		return err
	}

	count, err := m.ReadInt32()
	if err != nil {
		return err
	}

	for i := int32(0); i < count; i++ {
		if err := walkResourceLinks(pointee, m, onLink); err != nil {
			return err
		}
	}

	return nil
}

// walkStructMembers iterates a struct instance yielding members from the
// target set to the caller without consuming them; every other member is
// skipped structurally. The base chain is walked first with the same target
// set.
func walkStructMembers(t *DataType, m *MetaReader, targets map[*StructMember]struct{}, onMember func(*StructMember) error) error {
	if t.Base != nil {
		if err := walkStructMembers(t.Base, m, targets, onMember); err != nil {
			return err
		}
	}

	for _, member := range t.Members {
		if _, hit := targets[member]; hit {
			if err := onMember(member); err != nil {
				return err
			}

			continue
		}

		if err := skipType(member.Type, m); err != nil {
			return err
		}
	}

	return nil
}

// resourceFileMembers collects the asset filename and asset UID members of a
// CResourceFile type, keyed by member identity.
func resourceFileMembers(tt *typeTable) map[*StructMember]struct{} {
	targets := make(map[*StructMember]struct{}, 2)
	for _, t := range tt.types {
		if t.Name != typeNameCResourceFile || t.Kind() != KindStruct {
			continue
		}

		for _, member := range t.Members {
			if member.matchIdent(memberIdentAssetFN) || member.matchIdent(memberIdentAssetUID) {
				targets[member] = struct{}{}
			}
		}
	}

	return targets
}
