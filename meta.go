// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Block magics of the CTSEMETA container (value of the four ASCII bytes read
// little-endian).
const (
	blockMessages     uint32 = 0x5347534D // MSGS
	blockInfo         uint32 = 0x4F464E49 // INFO
	blockExtFiles     uint32 = 0x4C494652 // RFIL
	blockIdents       uint32 = 0x544E4449 // IDNT
	blockExtTypes     uint32 = 0x59545845 // EXTY
	blockIntTypes     uint32 = 0x59544E49 // INTY
	blockDataType     uint32 = 0x59545444 // DTTY
	blockStructMembs  uint32 = 0x424D5453 // STMB
	blockExtObjects   uint32 = 0x424F5845 // EXOB
	blockIntObjTypes  uint32 = 0x5954424F // OBTY
	blockEditObjTypes uint32 = 0x59544445 // EDTY
	blockIntObjects   uint32 = 0x534A424F // OBJS
	blockEditObjects  uint32 = 0x424F4445 // EDOB
)

// MetaReader is a positional reader over an unwrapped CTSEMETA payload. All
// multi-byte reads honor the endianness declared by the file's cookie.
type MetaReader struct {
	r         io.ReadSeeker
	order     binary.ByteOrder
	version   int32
	bigEndian bool
}

// NewMetaReader validates the meta header (magic, endianness cookie,
// version, optional annotation string) at the stream's current position.
func NewMetaReader(r io.ReadSeeker) (*MetaReader, error) {
	magic, err := readUint64(r, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	if magic != metaMagic {
		return nil, fmt.Errorf("%w: meta magic 0x%016X", ErrMalformedHeader, magic)
	}

	m := &MetaReader{r: r, order: binary.LittleEndian}

	cookie, err := readUint32(r, binary.LittleEndian)
	if err != nil {
		return nil, err
	}

	switch cookie {
	case metaCookieLittle:
	case metaCookieBig:
		m.order = binary.BigEndian
		m.bigEndian = true
	default:
		return nil, fmt.Errorf("%w: 0x%08X", ErrUnexpectedEndianness, cookie)
	}

	m.version, err = m.ReadInt32()
	if err != nil {
		return nil, err
	}

	if m.version > 1 {
		// Annotation string, ignored.
		if err := m.SkipString(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Version returns the meta format version.
func (m *MetaReader) Version() int32 {
	return m.version
}

// Order returns the byte order declared by the endianness cookie.
func (m *MetaReader) Order() binary.ByteOrder {
	return m.order
}

// BigEndian reports whether the file declared big-endian storage.
func (m *MetaReader) BigEndian() bool {
	return m.bigEndian
}

// Pos returns the current byte offset in the unwrapped payload.
func (m *MetaReader) Pos() (int64, error) {
	return m.r.Seek(0, io.SeekCurrent)
}

// Skip advances n bytes.
func (m *MetaReader) Skip(n int64) error {
	return skipBytes(m.r, n)
}

// ReadInt32 reads one int32 in file order.
func (m *MetaReader) ReadInt32() (int32, error) {
	return readInt32(m.r, m.order)
}

// ReadUint32 reads one uint32 in file order.
func (m *MetaReader) ReadUint32() (uint32, error) {
	return readUint32(m.r, m.order)
}

// ReadString reads one length-prefixed UTF-8 string in file order.
func (m *MetaReader) ReadString() (string, error) {
	return readLenString(m.r, m.order)
}

// SkipString advances past one length-prefixed string.
func (m *MetaReader) SkipString() error {
	return skipLenString(m.r, m.order)
}

// ExpectBlock asserts the next 4-byte block magic.
func (m *MetaReader) ExpectBlock(magic uint32) error {
	got, err := m.ReadUint32()
	if err != nil {
		return err
	}

	if got != magic {
		return fmt.Errorf("%w: got 0x%08X, want 0x%08X", ErrUnexpectedObtainType, got, magic)
	}

	return nil
}

// BeginList asserts a list block magic and reads its element count.
func (m *MetaReader) BeginList(magic uint32) (int32, error) {
	if err := m.ExpectBlock(magic); err != nil {
		return 0, err
	}

	count, err := m.ReadInt32()
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: list count %d", ErrMalformedHeader, count)
	}

	return count, nil
}
