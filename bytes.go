// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxStringLen bounds length-prefixed string reads against corrupt prefixes.
const maxStringLen = 1 << 24

// peekBytes reads up to n bytes and rewinds the stream to its prior position.
// Fewer than n bytes are returned near end of stream.
func peekBytes(r io.ReadSeeker, n int) ([]byte, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("peek seek: %w", err)
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("peek read: %w", err)
	}

	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("peek rewind: %w", err)
	}

	return buf[:read], nil
}

// skipBytes advances the stream by n bytes.
func skipBytes(r io.Seeker, n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative skip %d", ErrTruncated, n)
	}

	if _, err := r.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("skip %d: %w", n, err)
	}

	return nil
}

// readUint32 reads one unsigned 32-bit value in the given byte order.
func readUint32(r io.Reader, order binary.ByteOrder) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return 0, fmt.Errorf("read uint32: %w", ErrTruncated)
		}

		return 0, fmt.Errorf("read uint32: %w", err)
	}

	return order.Uint32(buf[:]), nil
}

// readInt32 reads one signed 32-bit value in the given byte order.
func readInt32(r io.Reader, order binary.ByteOrder) (int32, error) {
	v, err := readUint32(r, order)
	return int32(v), err
}

// readUint64 reads one unsigned 64-bit value in the given byte order.
func readUint64(r io.Reader, order binary.ByteOrder) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return 0, fmt.Errorf("read uint64: %w", ErrTruncated)
		}

		return 0, fmt.Errorf("read uint64: %w", err)
	}

	return order.Uint64(buf[:]), nil
}

// writeUint32 writes one unsigned 32-bit value in the given byte order.
func writeUint32(w io.Writer, order binary.ByteOrder, v uint32) error {
	var buf [4]byte
	order.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}

	return nil
}

// writeInt32 writes one signed 32-bit value in the given byte order.
func writeInt32(w io.Writer, order binary.ByteOrder, v int32) error {
	return writeUint32(w, order, uint32(v))
}

// expectUint32 reads one 32-bit value and fails unless it matches want.
func expectUint32(r io.Reader, order binary.ByteOrder, want uint32) error {
	got, err := readUint32(r, order)
	if err != nil {
		return err
	}

	if got != want {
		return fmt.Errorf("%w: got 0x%08X, want 0x%08X", ErrMalformedHeader, got, want)
	}

	return nil
}

// readLenString reads one length-prefixed UTF-8 string. A length below one
// denotes the empty string.
func readLenString(r io.Reader, order binary.ByteOrder) (string, error) {
	length, err := readInt32(r, order)
	if err != nil {
		return "", err
	}

	if length < 1 {
		return "", nil
	}
	if length > maxStringLen {
		return "", fmt.Errorf("%w: string length %d", ErrMalformedHeader, length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return "", fmt.Errorf("read string body: %w", ErrTruncated)
		}

		return "", fmt.Errorf("read string body: %w", err)
	}

	return string(buf), nil
}

// skipLenString advances past one length-prefixed string without decoding it.
func skipLenString(r io.ReadSeeker, order binary.ByteOrder) error {
	length, err := readInt32(r, order)
	if err != nil {
		return err
	}

	if length < 1 {
		return nil
	}
	if length > maxStringLen {
		return fmt.Errorf("%w: string length %d", ErrMalformedHeader, length)
	}

	return skipBytes(r, int64(length))
}

// writeLenString writes one length-prefixed UTF-8 string. The int32 length
// prefix uses the given byte order.
func writeLenString(w io.Writer, order binary.ByteOrder, s string) error {
	if err := writeInt32(w, order, int32(len(s))); err != nil {
		return err
	}

	if len(s) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write string body: %w", err)
	}

	return nil
}

// lenStringSize returns the on-disk size of a length-prefixed string.
func lenStringSize(s string) int64 {
	return int64(len(s)) + 4
}
