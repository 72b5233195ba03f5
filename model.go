// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

// Internal binary layout and format limits.
const (
	// signedMagic is the SIG2 header magic ("SIG2" little-endian).
	signedMagic uint32 = 0x53494732
	// signedVersionLatest is the newest supported SIG2 header version.
	signedVersionLatest int32 = 5
	// signedMaxBlockSize bounds the per-block payload size in SIG2 headers.
	signedMaxBlockSize int32 = 0x80000
	// signedMaxDigestSize bounds the per-block digest size in SIG2 headers.
	signedMaxDigestSize int32 = 0x1000
	// signedWriteBlockSize is the payload block size emitted by the writer.
	signedWriteBlockSize int32 = 0x10000
	// signedWriteSignatureSize is the signature size emitted by the writer.
	signedWriteSignatureSize int32 = 0x100
	// signedBlockNonceSalt is mixed into the nonce per block before signing.
	signedBlockNonceSalt uint32 = 0x0B1B
	// signedKeyIdentifier is the key identifier string emitted by the writer.
	signedKeyIdentifier = "Signkey.EditorSignature"
	// wreckedMagic is the wrecked stream header magic.
	wreckedMagic uint32 = 0x6C720D60
	// metaMagic is the 8-byte CTSEMETA magic as a little-endian 64-bit value.
	metaMagic uint64 = 0x4154454D45535443
	// metaCookieLittle is the endianness cookie of little-endian meta files.
	metaCookieLittle uint32 = 0x1234ABCD
	// metaCookieBig is the cookie value read when the file is big-endian.
	metaCookieBig uint32 = 0xCDAB3412
)

// Outer wrapper markers consumed by the stream factory.
const (
	markerSigned  = "SIGSTRM1"
	markerWrecked = "WRKSTRM1"
	markerInfo    = "INFSTRM1"
)

// ResaveFile describes one asset rename. Paths are game-root-relative with
// forward slashes. The value is immutable once a batch starts.
type ResaveFile struct {
	// OldPath is the current asset path.
	OldPath string `json:"old_path" yaml:"old_path"`
	// NewPath is the destination asset path.
	NewPath string `json:"new_path" yaml:"new_path"`
	// DeleteOld removes the original file after a successful batch.
	DeleteOld bool `json:"delete_old,omitempty" yaml:"delete_old,omitempty"`
}

// RenameMap is the authoritative OldPath to NewPath substitution set applied
// by every resaver invocation in a batch.
type RenameMap map[string]string

// NewRenameMap derives the substitution map from a rename list.
func NewRenameMap(files []ResaveFile) RenameMap {
	m := make(RenameMap, len(files))
	for _, f := range files {
		m[f.OldPath] = f.NewPath
	}

	return m
}

// Lookup returns the replacement for path and whether one exists.
func (m RenameMap) Lookup(path string) (string, bool) {
	if len(m) == 0 {
		return "", false
	}

	newPath, ok := m[path]
	return newPath, ok
}

// BatchResult contains batch output statistics and per-file error tables.
type BatchResult struct {
	// ResaveErrors maps failed rename entries to their error.
	ResaveErrors map[ResaveFile]error `json:"-" yaml:"-"`
	// ReferenceErrors maps failed auxiliary paths to their error.
	ReferenceErrors map[string]error `json:"-" yaml:"-"`
	// Resaved is the number of successfully rewritten rename entries.
	Resaved int `json:"resaved" yaml:"resaved"`
	// ReferencesUpdated is the number of successfully updated auxiliary files.
	ReferencesUpdated int `json:"references_updated" yaml:"references_updated"`
	// Failed is the total number of failed units across both phases.
	Failed int `json:"failed,omitempty" yaml:"failed,omitempty"`
}
