// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// utf8BOM is the optional byte order mark of NFO and Lua sources.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// metaMagicBytes is the 8-byte CTSEMETA magic in on-disk order.
var metaMagicBytes = []byte("CTSEMETA")

// textMetaMagicBytes is the MetaText format magic.
var textMetaMagicBytes = []byte("MetaText")

// nfoMagicBytes follows the optional BOM in level NFO files.
var nfoMagicBytes = []byte("LEVEL")

// Resaver rewrites references in one unwrapped asset stream. newAssetFN is
// non-empty only when the file itself is being renamed; it triggers the
// self-identity rewrite (asset filename and a freshly randomized asset UID).
type Resaver interface {
	Resave(in io.ReadSeeker, out io.Writer, renames RenameMap, newAssetFN string) error
}

// SniffResaver selects a resaver by content sniffing of the unwrapped
// stream's first 8 bytes; the stream position is left untouched.
func SniffResaver(in io.ReadSeeker, path string) (Resaver, error) {
	head, err := peekBytes(in, 8)
	if err != nil {
		return nil, fmt.Errorf("sniff resaver: %w", err)
	}

	switch {
	case bytes.Equal(head, metaMagicBytes):
		return BinaryMetaResaver{}, nil
	case bytes.Equal(head, textMetaMagicBytes):
		return TextMetaResaver{}, nil
	case isNfoHead(head):
		return NfoResaver{}, nil
	case strings.EqualFold(pathExtLower(path), ".lua"):
		return LuaResaver{}, nil
	default:
		return PlainCopyResaver{}, nil
	}
}

// isNfoHead reports whether head starts a level NFO file (optional BOM, then
// the LEVEL magic).
func isNfoHead(head []byte) bool {
	if bytes.HasPrefix(head, utf8BOM) {
		head = head[len(utf8BOM):]
	}

	return bytes.HasPrefix(head, nfoMagicBytes)
}

// PlainCopyResaver is the byte-for-byte passthrough fallback.
type PlainCopyResaver struct{}

// Resave copies the stream unchanged.
func (PlainCopyResaver) Resave(in io.ReadSeeker, out io.Writer, _ RenameMap, _ string) error {
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("plain copy: %w", err)
	}

	return nil
}
