// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// SignedStreamReader exposes the payload of a SIG2 block stream as a
// seekable read-only byte stream. Per-block digests and signatures are not
// verified and never rewritten on read.
type SignedStreamReader struct {
	base          io.ReadSeeker
	buf           []byte
	dataStart     int64
	blockSize     int64
	digestSize    int64
	signatureSize int64
	blockCount    int64
	length        int64
	pos           int64
	bufBlock      int64
	bufLen        int
}

// NewSignedStreamReader parses a SIG2 header at the base stream's current
// position and prepares block-wise payload access.
func NewSignedStreamReader(base io.ReadSeeker) (*SignedStreamReader, error) {
	le := binary.LittleEndian

	if err := expectUint32(base, le, signedMagic); err != nil {
		return nil, fmt.Errorf("signed stream: %w", err)
	}

	version, err := readInt32(base, le)
	if err != nil {
		return nil, err
	}
	if version < 1 || version > signedVersionLatest {
		return nil, fmt.Errorf("%w: signed stream version %d", ErrMalformedHeader, version)
	}

	blockSize, err := readInt32(base, le)
	if err != nil {
		return nil, err
	}
	blockSize = clampInt32(blockSize, 0, signedMaxBlockSize)

	// The hash method tag is recorded but unused: read does not authenticate.
	if _, err := readInt32(base, le); err != nil {
		return nil, err
	}

	digestSize, err := readInt32(base, le)
	if err != nil {
		return nil, err
	}
	digestSize = clampInt32(digestSize, 0, signedMaxDigestSize)

	// Nonce is only meaningful for writers.
	if _, err := readInt32(base, le); err != nil {
		return nil, err
	}

	if version > 1 {
		if err := skipBytes(base, 4); err != nil {
			return nil, err
		}
	}
	if version > 2 {
		if err := skipBytes(base, 4); err != nil {
			return nil, err
		}
	}
	if version > 4 {
		if err := skipLenString(base, le); err != nil {
			return nil, err
		}
	}

	signatureSize, err := readInt32(base, le)
	if err != nil {
		return nil, err
	}
	if signatureSize < 0 {
		return nil, fmt.Errorf("%w: signature size %d", ErrMalformedHeader, signatureSize)
	}
	if signatureSize > 0 {
		if err := skipLenString(base, le); err != nil {
			return nil, err
		}
	}

	// Header signature material is reserved but not verified.
	if err := skipBytes(base, int64(signatureSize)+int64(digestSize)); err != nil {
		return nil, err
	}

	dataStart, err := base.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("signed stream position: %w", err)
	}

	baseLen, err := base.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("signed stream length: %w", err)
	}

	r := &SignedStreamReader{
		base:          base,
		dataStart:     dataStart,
		blockSize:     int64(blockSize),
		digestSize:    int64(digestSize),
		signatureSize: int64(signatureSize),
		bufBlock:      -1,
	}

	remaining := baseLen - dataStart
	if remaining < 0 {
		return nil, fmt.Errorf("%w: data starts past end", ErrTruncated)
	}

	if r.blockSize == 0 && remaining > 0 {
		return nil, fmt.Errorf("%w: zero block size with %d data bytes", ErrMalformedHeader, remaining)
	}

	stride := r.blockSize + r.digestSize + r.signatureSize
	if r.blockSize > 0 {
		r.blockCount = (remaining + stride - 1) / stride
	}

	r.length = remaining - (r.digestSize+r.signatureSize)*r.blockCount
	if r.length < 0 {
		return nil, fmt.Errorf("%w: block trailer exceeds data", ErrTruncated)
	}

	r.buf = make([]byte, r.blockSize)
	return r, nil
}

// Len returns the logical payload length.
func (r *SignedStreamReader) Len() int64 {
	return r.length
}

// Read copies payload bytes across block boundaries, reloading blocks as
// needed. Reading past the last block returns 0, io.EOF.
func (r *SignedStreamReader) Read(p []byte) (int, error) {
	if r.pos >= r.length {
		return 0, io.EOF
	}

	total := 0
	for len(p) > 0 && r.pos < r.length {
		block := r.pos / r.blockSize
		if block != r.bufBlock {
			if err := r.loadBlock(block); err != nil {
				return total, err
			}
		}

		off := int(r.pos % r.blockSize)
		if off >= r.bufLen {
			break
		}

		n := copy(p, r.buf[off:r.bufLen])
		p = p[n:]
		r.pos += int64(n)
		total += n
	}

	if total == 0 {
		return 0, io.EOF
	}

	return total, nil
}

// Seek repositions the logical cursor. The target block is loaded lazily on
// the next Read.
func (r *SignedStreamReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = r.length + offset
	default:
		return 0, fmt.Errorf("%w: seek whence %d", ErrNotSupported, whence)
	}

	if abs < 0 {
		return 0, fmt.Errorf("%w: seek before start", ErrNotSupported)
	}

	r.pos = abs
	return abs, nil
}

// loadBlock reads one payload block into the in-memory buffer.
func (r *SignedStreamReader) loadBlock(block int64) error {
	size := r.blockSize
	if rest := r.length - block*r.blockSize; rest < size {
		size = rest
	}
	if size < 0 {
		return fmt.Errorf("%w: block %d out of range", ErrTruncated, block)
	}

	stride := r.blockSize + r.digestSize + r.signatureSize
	if _, err := r.base.Seek(r.dataStart+stride*block, io.SeekStart); err != nil {
		return fmt.Errorf("seek block %d: %w", block, err)
	}

	if _, err := io.ReadFull(r.base, r.buf[:size]); err != nil {
		return fmt.Errorf("read block %d: %w", block, ErrTruncated)
	}

	r.bufBlock = block
	r.bufLen = int(size)
	return nil
}

// SignedStreamWriter emits a SIG2 block stream, signing each payload block
// with the profile's editor key. The instance is write-only.
type SignedStreamWriter struct {
	w        io.Writer
	signer   *Signer
	buf      []byte
	n        int
	curBlock uint32
	nonce    uint32
	closed   bool
}

// NewSignedStreamWriter writes a SIG2 header to w and returns a block
// writer. The header uses block size 0x10000, signature size equal to the
// key modulus, zero digest size, the SHA-1 hash tag, and a random nonce.
func NewSignedStreamWriter(w io.Writer, spec *SignedStreamSpec) (*SignedStreamWriter, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil signed stream spec", ErrNotSupported)
	}
	if spec.Version < 1 || spec.Version > signedVersionLatest {
		return nil, fmt.Errorf("%w: signed stream version %d", ErrMalformedHeader, spec.Version)
	}

	signer, err := NewSigner(spec.KeyDER, HashMethodSHA1)
	if err != nil {
		return nil, err
	}

	sw := &SignedStreamWriter{
		w:      w,
		signer: signer,
		buf:    make([]byte, signedWriteBlockSize),
		nonce:  randomUint32(),
	}

	if err := sw.writeHeader(spec.Version); err != nil {
		return nil, err
	}

	return sw, nil
}

// writeHeader emits the SIG2 header and its signature. The header signature
// covers the serialized fields up to and including signatureSize, excluding
// the key identifier tail.
func (sw *SignedStreamWriter) writeHeader(version int32) error {
	le := binary.LittleEndian

	var core bytes.Buffer
	_ = writeUint32(&core, le, signedMagic)
	_ = writeInt32(&core, le, version)
	_ = writeInt32(&core, le, signedWriteBlockSize)
	_ = writeInt32(&core, le, HashMethodSHA1)
	_ = writeInt32(&core, le, 0) // digestSize
	_ = writeUint32(&core, le, sw.nonce)
	if version > 1 {
		_ = writeInt32(&core, le, 0)
	}
	if version > 2 {
		_ = writeInt32(&core, le, 0)
	}
	if version > 4 {
		_ = writeLenString(&core, le, "")
	}
	_ = writeInt32(&core, le, int32(sw.signer.SignatureSize()))

	if _, err := sw.w.Write(core.Bytes()); err != nil {
		return fmt.Errorf("write signed header: %w", err)
	}

	if err := writeLenString(sw.w, le, signedKeyIdentifier); err != nil {
		return err
	}

	sig, err := sw.signer.Sign(core.Bytes())
	if err != nil {
		return fmt.Errorf("sign header: %w", err)
	}

	if _, err := sw.w.Write(sig); err != nil {
		return fmt.Errorf("write header signature: %w", err)
	}

	return nil
}

// Write appends payload bytes, flushing full blocks as they fill.
func (sw *SignedStreamWriter) Write(p []byte) (int, error) {
	if sw.closed {
		return 0, ErrClosed
	}

	total := 0
	for len(p) > 0 {
		n := copy(sw.buf[sw.n:], p)
		sw.n += n
		p = p[n:]
		total += n

		if sw.n == len(sw.buf) {
			if err := sw.flushBlock(); err != nil {
				return total, err
			}
		}
	}

	return total, nil
}

// flushBlock signs and emits the buffered block.
func (sw *SignedStreamWriter) flushBlock() error {
	data := sw.buf[:sw.n]

	msg := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(msg, sw.nonce^(sw.curBlock+signedBlockNonceSalt))
	copy(msg[4:], data)

	sig, err := sw.signer.Sign(msg)
	if err != nil {
		return fmt.Errorf("sign block %d: %w", sw.curBlock, err)
	}

	if _, err := sw.w.Write(data); err != nil {
		return fmt.Errorf("write block %d: %w", sw.curBlock, err)
	}
	if _, err := sw.w.Write(sig); err != nil {
		return fmt.Errorf("write block %d signature: %w", sw.curBlock, err)
	}

	sw.curBlock++
	sw.n = 0
	return nil
}

// Close flushes any partial final block.
func (sw *SignedStreamWriter) Close() error {
	if sw.closed {
		return nil
	}

	sw.closed = true
	if sw.n > 0 {
		return sw.flushBlock()
	}

	return nil
}

// clampInt32 bounds v to [lo, hi].
func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
