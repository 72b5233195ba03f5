// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// PathSet is the target path set queried by reference scanners.
type PathSet map[string]struct{}

// NewPathSet builds a set from game-root-relative paths.
func NewPathSet(paths []string) PathSet {
	set := make(PathSet, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}

	return set
}

// contains reports set membership.
func (s PathSet) contains(path string) bool {
	_, ok := s[path]
	return ok
}

// StreamReferencesAny reports whether the unwrapped stream contains at least
// one reference to any path in targets. Sniffing matches SniffResaver; each
// scanner visits the same locations as its resaver without rewriting.
func StreamReferencesAny(in io.ReadSeeker, path string, targets PathSet) (bool, error) {
	head, err := peekBytes(in, 8)
	if err != nil {
		return false, fmt.Errorf("sniff scanner: %w", err)
	}

	switch {
	case bytes.Equal(head, metaMagicBytes):
		return scanBinaryMeta(in, targets)
	case bytes.Equal(head, textMetaMagicBytes):
		return scanTextMeta(in, targets)
	case isNfoHead(head):
		return scanNfo(in, targets)
	case strings.EqualFold(pathExtLower(path), ".lua"):
		return scanLua(in, targets)
	default:
		return false, nil
	}
}

// scanBinaryMeta reads only the EXTERNAL_FILES block of a CTSEMETA stream.
func scanBinaryMeta(in io.ReadSeeker, targets PathSet) (bool, error) {
	m, err := NewMetaReader(in)
	if err != nil {
		return false, err
	}

	if m.Version() > 9 {
		if err := m.ExpectBlock(blockMessages); err != nil {
			return false, err
		}
		if err := m.SkipString(); err != nil {
			return false, err
		}
	}

	if err := m.ExpectBlock(blockInfo); err != nil {
		return false, err
	}
	if err := m.Skip(metaInfoSkip(m.Version())); err != nil {
		return false, err
	}

	count, err := m.BeginList(blockExtFiles)
	if err != nil {
		return false, err
	}

	for i := int32(0); i < count; i++ {
		if err := m.Skip(externalFileEntryMetaSize); err != nil {
			return false, err
		}

		path, err := m.ReadString()
		if err != nil {
			return false, err
		}

		if targets.contains(path) {
			return true, nil
		}
	}

	return false, nil
}

// scanLines applies hit to each line and stops on the first match.
func scanLines(in io.Reader, hit func(line string) bool) (bool, error) {
	br := bufio.NewReader(in)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			body, _ := splitLineTerm(raw)
			if hit(body) {
				return true, nil
			}
		}

		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("scan line: %w", err)
		}
	}
}

// scanTextMeta mirrors the TextMetaResaver path-literal discovery.
func scanTextMeta(in io.ReadSeeker, targets PathSet) (bool, error) {
	return scanLines(in, func(line string) bool {
		if !strings.ContainsRune(line, '=') {
			return false
		}

		for _, sub := range textMetaPathLiteral.FindAllStringSubmatch(line, -1) {
			if targets.contains(sub[1]) {
				return true
			}
		}

		return false
	})
}

// scanNfo mirrors the NfoResaver key/value discovery.
func scanNfo(in io.ReadSeeker, targets PathSet) (bool, error) {
	if err := skipBOM(in); err != nil {
		return false, err
	}

	return scanLines(in, func(line string) bool {
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return false
		}
		if _, ok := nfoRewriteKeys[line[:eq]]; !ok {
			return false
		}

		value := line[eq+1:]
		open := strings.IndexByte(value, '"')
		if open < 0 {
			return false
		}

		span := strings.IndexByte(value[open+1:], '"')
		if span < 0 {
			return false
		}

		return targets.contains(value[open+1 : open+1+span])
	})
}

// scanLua mirrors the LuaResaver call discovery.
func scanLua(in io.ReadSeeker, targets PathSet) (bool, error) {
	if err := skipBOM(in); err != nil {
		return false, err
	}

	return scanLines(in, func(line string) bool {
		for _, sub := range luaLoadCall.FindAllStringSubmatch(line, -1) {
			if targets.contains(sub[2]) {
				return true
			}
		}

		return false
	})
}

// skipBOM advances past a leading UTF-8 BOM when present.
func skipBOM(in io.ReadSeeker) error {
	head, err := peekBytes(in, len(utf8BOM))
	if err != nil {
		return err
	}

	if len(head) == len(utf8BOM) && bytes.Equal(head, utf8BOM) {
		return skipBytes(in, int64(len(utf8BOM)))
	}

	return nil
}

// FindReferencingFiles scans candidate files (game-root-relative) in
// parallel and returns the sorted subset that references any target path.
// Unreadable or malformed candidates are skipped.
func FindReferencingFiles(
	ctx context.Context,
	fs afero.Fs,
	root string,
	candidates []string,
	targets PathSet,
	workers int,
) ([]string, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu   sync.Mutex
		hits []string
	)

	g := &errgroup.Group{}
	g.SetLimit(workers)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			break
		}

		g.Go(func() error {
			ok, err := fileReferencesAny(fs, root, candidate, targets)
			if err != nil || !ok {
				return nil
			}

			mu.Lock()
			hits = append(hits, candidate)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Strings(hits)
	return hits, nil
}

// fileReferencesAny opens one candidate through the read-side wrapper chain
// and scans it.
func fileReferencesAny(fs afero.Fs, root string, candidate string, targets PathSet) (bool, error) {
	f, err := fs.Open(joinGamePath(root, candidate))
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	inner, err := OpenAssetStream(f)
	if err != nil {
		return false, err
	}

	return StreamReferencesAny(inner, candidate, targets)
}
