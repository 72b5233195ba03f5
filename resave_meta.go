// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"fmt"
	"io"
)

// BinaryMetaResaver rewrites references inside CTSEMETA files as a copying
// stream editor: bytes stream unchanged from input to output up to each
// replacement site, the replacement is written, and copying resumes past the
// replaced region. Untouched bytes, including the endianness cookie, pass
// through bit-exactly.
type BinaryMetaResaver struct{}

// metaCopier tracks the passthrough cursor of the two-cursor copy.
type metaCopier struct {
	in           io.ReadSeeker
	out          io.Writer
	lastFlushPos int64
}

// flushTo copies input bytes [lastFlushPos, pos) to the output and leaves
// the input reading cursor where it was.
func (c *metaCopier) flushTo(pos int64) error {
	if pos < c.lastFlushPos {
		return fmt.Errorf("flush cursor moved backwards: %d < %d", pos, c.lastFlushPos)
	}
	if pos == c.lastFlushPos {
		return nil
	}

	cur, err := c.in.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("flush save position: %w", err)
	}

	if _, err := c.in.Seek(c.lastFlushPos, io.SeekStart); err != nil {
		return fmt.Errorf("flush seek: %w", err)
	}
	if _, err := io.CopyN(c.out, c.in, pos-c.lastFlushPos); err != nil {
		return fmt.Errorf("flush copy: %w", err)
	}
	if _, err := c.in.Seek(cur, io.SeekStart); err != nil {
		return fmt.Errorf("flush restore position: %w", err)
	}

	c.lastFlushPos = pos
	return nil
}

// flushRest copies everything from lastFlushPos to the end of input.
func (c *metaCopier) flushRest() error {
	if _, err := c.in.Seek(c.lastFlushPos, io.SeekStart); err != nil {
		return fmt.Errorf("flush tail seek: %w", err)
	}

	n, err := io.Copy(c.out, c.in)
	if err != nil {
		return fmt.Errorf("flush tail copy: %w", err)
	}

	c.lastFlushPos += n
	return nil
}

// Resave streams the meta file to out, rewriting external-file entries,
// resource-link strings, and (under self-rename) the CResourceFile identity
// members.
func (BinaryMetaResaver) Resave(in io.ReadSeeker, out io.Writer, renames RenameMap, newAssetFN string) error {
	c := &metaCopier{in: in, out: out}

	m, err := NewMetaReader(in)
	if err != nil {
		return err
	}

	if m.Version() > 9 {
		if err := m.ExpectBlock(blockMessages); err != nil {
			return err
		}
		if err := m.SkipString(); err != nil {
			return err
		}
	}

	if err := m.ExpectBlock(blockInfo); err != nil {
		return err
	}
	if err := m.Skip(metaInfoSkip(m.Version())); err != nil {
		return err
	}

	if err := rewriteExternalFiles(m, c, renames); err != nil {
		return err
	}

	identCount, err := m.BeginList(blockIdents)
	if err != nil {
		return err
	}
	for i := int32(0); i < identCount; i++ {
		if err := m.SkipString(); err != nil {
			return err
		}
	}

	extTypeCount, err := m.BeginList(blockExtTypes)
	if err != nil {
		return err
	}
	for i := int32(0); i < extTypeCount; i++ {
		if err := m.SkipString(); err != nil {
			return err
		}
	}

	tt, err := parseInternalTypes(m)
	if err != nil {
		return err
	}

	targets := map[*StructMember]struct{}{}
	if newAssetFN != "" {
		targets = resourceFileMembers(tt)
	}

	hasRL := tt.anyResourceLink()
	if len(targets) < 1 && !hasRL {
		return c.flushRest()
	}

	extObjCount, err := m.BeginList(blockExtObjects)
	if err != nil {
		return err
	}
	if err := m.Skip(int64(extObjCount) * externalObjectEntrySize); err != nil {
		return err
	}

	objTypes, err := readObjectTypeList(m, blockIntObjTypes, tt)
	if err != nil {
		return err
	}

	editTypes, err := readObjectTypeList(m, blockEditObjTypes, tt)
	if err != nil {
		return err
	}

	if err := m.ExpectBlock(blockIntObjects); err != nil {
		return err
	}
	objCount, err := m.ReadInt32()
	if err != nil {
		return err
	}
	if int(objCount) != len(objTypes) {
		return fmt.Errorf("%w: object count %d, type count %d", ErrMalformedHeader, objCount, len(objTypes))
	}

	for i, t := range objTypes {
		if i == 0 && len(targets) > 0 && t.Name == typeNameCResourceFile {
			if err := rewriteResourceFileObject(m, c, t, targets, newAssetFN); err != nil {
				return err
			}

			continue
		}

		if err := rewriteObject(m, c, t, renames); err != nil {
			return err
		}
	}

	if !hasRL {
		return c.flushRest()
	}

	if err := m.ExpectBlock(blockEditObjects); err != nil {
		return err
	}
	editCount, err := m.ReadInt32()
	if err != nil {
		return err
	}
	if int(editCount) != len(editTypes) {
		return fmt.Errorf("%w: edit object count %d, type count %d", ErrMalformedHeader, editCount, len(editTypes))
	}

	for _, t := range editTypes {
		if err := rewriteObject(m, c, t, renames); err != nil {
			return err
		}
	}

	return c.flushRest()
}

// externalObjectEntrySize is the fixed record size of EXTERNAL_OBJECTS
// entries (object id, external file index, external type index).
const externalObjectEntrySize = 12

// metaInfoSkip returns the INFO block payload size for a meta version.
func metaInfoSkip(version int32) int64 {
	if version > 7 {
		return 20
	}

	return 16
}

// externalFileEntryMetaSize is the fixed per-entry metadata preceding each
// external file path.
const externalFileEntryMetaSize = 8

// rewriteExternalFiles walks the EXTERNAL_FILES list, rewriting every path
// found in the rename map in place. The on-disk int32 length prefix of a
// rewritten path uses the file's declared endianness.
func rewriteExternalFiles(m *MetaReader, c *metaCopier, renames RenameMap) error {
	count, err := m.BeginList(blockExtFiles)
	if err != nil {
		return err
	}

	for i := int32(0); i < count; i++ {
		if err := m.Skip(externalFileEntryMetaSize); err != nil {
			return err
		}

		if err := rewriteStringAt(m, c, renames); err != nil {
			return err
		}
	}

	return nil
}

// rewriteStringAt reads the length-prefixed string at the cursor and, when
// it is a rename-map key, replaces it in the output. The passthrough cursor
// advances past the original prefix and bytes regardless of the new length;
// this keeps the input and output streams in sync.
func rewriteStringAt(m *MetaReader, c *metaCopier, renames RenameMap) error {
	pos, err := m.Pos()
	if err != nil {
		return err
	}

	old, err := m.ReadString()
	if err != nil {
		return err
	}

	newPath, ok := renames.Lookup(old)
	if !ok {
		return nil
	}

	if err := c.flushTo(pos); err != nil {
		return err
	}
	if err := writeLenString(c.out, m.Order(), newPath); err != nil {
		return err
	}

	c.lastFlushPos = pos + lenStringSize(old)
	return nil
}

// readObjectTypeList reads an object-type index list and resolves each entry
// against the type table.
func readObjectTypeList(m *MetaReader, magic uint32, tt *typeTable) ([]*DataType, error) {
	count, err := m.BeginList(magic)
	if err != nil {
		return nil, err
	}

	types := make([]*DataType, count)
	for i := range types {
		idx, err := m.ReadInt32()
		if err != nil {
			return nil, err
		}

		if types[i], err = tt.byIndex(idx); err != nil {
			return nil, err
		}
	}

	return types, nil
}

// rewriteObject processes one serialized object: resource-link rewriting
// when the type reaches links, structural skip otherwise.
func rewriteObject(m *MetaReader, c *metaCopier, t *DataType, renames RenameMap) error {
	if !t.HasResourceLink() {
		return skipType(t, m)
	}

	return walkResourceLinks(t, m, func() error {
		return rewriteStringAt(m, c, renames)
	})
}

// rewriteResourceFileObject rewrites the self-identity members of the first
// internal object under self-rename: the asset filename string and a fresh
// random asset UID.
func rewriteResourceFileObject(m *MetaReader, c *metaCopier, t *DataType, targets map[*StructMember]struct{}, newAssetFN string) error {
	return walkStructMembers(t, m, targets, func(member *StructMember) error {
		pos, err := m.Pos()
		if err != nil {
			return err
		}

		if member.matchIdent(memberIdentAssetFN) {
			old, err := m.ReadString()
			if err != nil {
				return err
			}

			if err := c.flushTo(pos); err != nil {
				return err
			}
			if err := writeLenString(c.out, m.Order(), newAssetFN); err != nil {
				return err
			}

			c.lastFlushPos = pos + lenStringSize(old)
			return nil
		}

		// Asset UID: replace the stored int32 with a fresh random value.
		if err := m.Skip(4); err != nil {
			return err
		}
		if err := c.flushTo(pos); err != nil {
			return err
		}
		if err := writeUint32(c.out, m.Order(), randomUint32()); err != nil {
			return err
		}

		c.lastFlushPos = pos + 4
		return nil
	})
}
