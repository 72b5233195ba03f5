// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"sort"
)

// wreckGenerator produces the pseudo-random block sizes of a wrecked stream.
// Register updates and the float arithmetic must match the engine bit-exactly
// because sizes are persisted round-trip.
type wreckGenerator struct {
	num1 uint32
	num2 uint32
}

// newWreckGenerator returns a generator in its initial register state.
func newWreckGenerator() wreckGenerator {
	return wreckGenerator{num1: 0x12345678, num2: 0x87654321}
}

// tick advances both registers and returns their mix.
func (g *wreckGenerator) tick() uint32 {
	g.num1 = (g.num1 >> 1) | (((g.num1 ^ (8 * g.num1)) & 0xFFFFFFF8) << 28)
	g.num2 *= 1220703125
	return g.num1 ^ g.num2
}

// nextBlockSize advances one tick and derives the next block size. The mix
// scale step is routed through single-precision float on purpose.
func (g *wreckGenerator) nextBlockSize() (uint32, int32) {
	mix := g.tick()
	f := float32(float64(mix) * 2.3283064e-10)
	size := int32(f*float32(1048576.0) + float32(1048576.0) + float32(5242880.0))
	return mix, size
}

// packBlockSize obfuscates a block size for on-disk storage.
func packBlockSize(size int32) uint32 {
	return bits.RotateLeft32(uint32(size)*1512+662700032, -4)
}

// unpackBlockSize recovers a block size from its packed form.
func unpackBlockSize(packed uint32) int32 {
	return int32(bits.RotateLeft32(packed, 4)/0x5E8) + 5242880
}

// WreckedStreamReader exposes the payload of a wrecked stream as a seekable
// read-only byte stream. Block boundaries are discovered once at open time.
type WreckedStreamReader struct {
	base       io.ReadSeeker
	blockStart []int64
	blockSize  []int64
	logicalOff []int64
	length     int64
	pos        int64
}

// NewWreckedStreamReader parses the wrecked header at the base stream's
// current position and indexes every block.
func NewWreckedStreamReader(base io.ReadSeeker) (*WreckedStreamReader, error) {
	le := binary.LittleEndian

	hdrPos, err := base.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("wrecked stream position: %w", err)
	}

	if err := expectUint32(base, le, wreckedMagic); err != nil {
		return nil, fmt.Errorf("wrecked stream: %w", err)
	}

	baseLen, err := base.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("wrecked stream length: %w", err)
	}

	pos := hdrPos + 4
	if _, err := base.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("wrecked stream rewind: %w", err)
	}

	r := &WreckedStreamReader{base: base}
	for pos < baseLen {
		if baseLen-pos < 8 {
			return nil, fmt.Errorf("%w: wrecked block header", ErrTruncated)
		}

		// Tick mix value precedes every packed size; only the size matters.
		if _, err := readUint32(base, le); err != nil {
			return nil, err
		}

		packed, err := readUint32(base, le)
		if err != nil {
			return nil, err
		}

		pos += 8
		size := int64(unpackBlockSize(packed))
		if size < 0 {
			return nil, fmt.Errorf("%w: wrecked block size %d", ErrMalformedHeader, size)
		}
		if size > baseLen-pos {
			size = baseLen - pos
		}

		r.blockStart = append(r.blockStart, pos)
		r.blockSize = append(r.blockSize, size)
		r.logicalOff = append(r.logicalOff, r.length)
		r.length += size

		pos += size
		if _, err := base.Seek(pos, io.SeekStart); err != nil {
			return nil, fmt.Errorf("wrecked stream skip block: %w", err)
		}
	}

	return r, nil
}

// Len returns the logical payload length.
func (r *WreckedStreamReader) Len() int64 {
	return r.length
}

// Read copies payload bytes across block boundaries.
func (r *WreckedStreamReader) Read(p []byte) (int, error) {
	if r.pos >= r.length {
		return 0, io.EOF
	}

	total := 0
	for len(p) > 0 && r.pos < r.length {
		i := r.blockIndex(r.pos)
		inBlock := r.pos - r.logicalOff[i]
		avail := r.blockSize[i] - inBlock

		n := int64(len(p))
		if n > avail {
			n = avail
		}

		if _, err := r.base.Seek(r.blockStart[i]+inBlock, io.SeekStart); err != nil {
			return total, fmt.Errorf("wrecked seek block %d: %w", i, err)
		}

		read, err := io.ReadFull(r.base, p[:n])
		total += read
		r.pos += int64(read)
		p = p[read:]
		if err != nil {
			return total, fmt.Errorf("wrecked read block %d: %w", i, ErrTruncated)
		}
	}

	return total, nil
}

// Seek repositions the logical cursor.
func (r *WreckedStreamReader) Seek(offset int64, whence int) (int64, error) {
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

// blockIndex locates the block containing logical offset off by prefix sum.
func (r *WreckedStreamReader) blockIndex(off int64) int {
	return sort.Search(len(r.logicalOff), func(i int) bool {
		return r.logicalOff[i]+r.blockSize[i] > off
	})
}

// WreckedStreamWriter emits a wrecked stream, deriving block sizes from the
// generator and storing them in obfuscated form between blocks.
type WreckedStreamWriter struct {
	w          io.Writer
	gen        wreckGenerator
	buf        []byte
	n          int
	needHeader bool
	closed     bool
}

// NewWreckedStreamWriter writes the wrecked header (magic, first tick, first
// packed size) to w and returns a block writer.
func NewWreckedStreamWriter(w io.Writer) (*WreckedStreamWriter, error) {
	le := binary.LittleEndian

	if err := writeUint32(w, le, wreckedMagic); err != nil {
		return nil, err
	}

	ww := &WreckedStreamWriter{w: w, gen: newWreckGenerator()}
	if err := ww.beginBlock(); err != nil {
		return nil, err
	}

	return ww, nil
}

// beginBlock advances the generator and writes the tick and packed size of
// the next block.
func (ww *WreckedStreamWriter) beginBlock() error {
	le := binary.LittleEndian

	mix, size := ww.gen.nextBlockSize()
	if err := writeUint32(ww.w, le, mix); err != nil {
		return err
	}
	if err := writeUint32(ww.w, le, packBlockSize(size)); err != nil {
		return err
	}

	ww.buf = make([]byte, size)
	ww.n = 0
	ww.needHeader = false
	return nil
}

// Write appends payload bytes, emitting block headers as boundaries pass.
func (ww *WreckedStreamWriter) Write(p []byte) (int, error) {
	if ww.closed {
		return 0, ErrClosed
	}

	total := 0
	for len(p) > 0 {
		if ww.needHeader {
			if err := ww.beginBlock(); err != nil {
				return total, err
			}
		}

		n := copy(ww.buf[ww.n:], p)
		ww.n += n
		p = p[n:]
		total += n

		if ww.n == len(ww.buf) {
			if err := ww.flushBlock(); err != nil {
				return total, err
			}
		}
	}

	return total, nil
}

// flushBlock writes the buffered payload and arms the next block header.
func (ww *WreckedStreamWriter) flushBlock() error {
	if _, err := ww.w.Write(ww.buf[:ww.n]); err != nil {
		return fmt.Errorf("write wrecked block: %w", err)
	}

	ww.n = 0
	ww.needHeader = true
	return nil
}

// Close flushes the partial final block. The stored size stays as generated;
// readers truncate it to the remaining base length.
func (ww *WreckedStreamWriter) Close() error {
	if ww.closed {
		return nil
	}

	ww.closed = true
	if ww.n > 0 {
		return ww.flushBlock()
	}

	return nil
}
