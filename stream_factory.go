// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"fmt"
	"io"
)

// OpenAssetStream sniffs the wrapper chain at the head of base and layers
// readers until the inner payload is exposed. Recognized markers are
// SIGSTRM1 (signed), WRKSTRM1 (wrecked), and INFSTRM1 (info); the loop
// terminates on the first unrecognized head.
func OpenAssetStream(base io.ReadSeeker) (io.ReadSeeker, error) {
	cur := base
	for {
		head, err := peekBytes(cur, 8)
		if err != nil {
			return nil, fmt.Errorf("sniff wrapper: %w", err)
		}
		if len(head) < 8 {
			return cur, nil
		}

		switch string(head) {
		case markerSigned:
			if err := skipBytes(cur, 8); err != nil {
				return nil, err
			}

			inner, err := NewSignedStreamReader(cur)
			if err != nil {
				return nil, err
			}
			cur = inner

		case markerWrecked:
			if err := skipBytes(cur, 8); err != nil {
				return nil, err
			}

			inner, err := NewWreckedStreamReader(cur)
			if err != nil {
				return nil, err
			}
			cur = inner

		case markerInfo:
			if err := skipBytes(cur, 8); err != nil {
				return nil, err
			}
			if err := stripInfoStream(cur); err != nil {
				return nil, err
			}

		default:
			return cur, nil
		}
	}
}

// assetStreamWriter is the profile-assembled write chain. Closing flushes
// the wrappers from innermost outward; the base writer is left open.
type assetStreamWriter struct {
	inner   io.Writer
	closers []io.Closer
	closed  bool
}

// NewAssetStreamWriter assembles the write chain for path under the given
// profile: the signed wrapper when the profile signs this extension, then
// the wrecked wrapper inside it for world files.
func NewAssetStreamWriter(base io.Writer, profile *StreamProfile, path string) (io.WriteCloser, error) {
	w := &assetStreamWriter{inner: base}

	if profile.ShouldSign(path) {
		if _, err := io.WriteString(w.inner, markerSigned); err != nil {
			return nil, fmt.Errorf("write signed marker: %w", err)
		}

		sw, err := NewSignedStreamWriter(w.inner, profile.Signed)
		if err != nil {
			return nil, err
		}

		w.inner = sw
		w.closers = append(w.closers, sw)
	}

	if profile.ShouldWreck(path) {
		if _, err := io.WriteString(w.inner, markerWrecked); err != nil {
			return nil, fmt.Errorf("write wrecked marker: %w", err)
		}

		ww, err := NewWreckedStreamWriter(w.inner)
		if err != nil {
			return nil, err
		}

		w.inner = ww
		w.closers = append(w.closers, ww)
	}

	return w, nil
}

// Write forwards payload bytes to the innermost wrapper.
func (w *assetStreamWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}

	return w.inner.Write(p)
}

// Close flushes wrappers innermost-first.
func (w *assetStreamWriter) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i].Close(); err != nil {
			return err
		}
	}

	return nil
}
