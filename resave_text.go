// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// lineEditFunc rewrites one line body (terminator stripped) and reports
// whether it changed.
type lineEditFunc func(line string) (string, bool)

// copyLines streams in to out line by line, applying edit to each line body.
// Line terminators are preserved per line (CRLF stays CRLF, LF stays LF, and
// a final line without a terminator does not gain one).
func copyLines(in io.Reader, out io.Writer, edit lineEditFunc) error {
	br := bufio.NewReader(in)

	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			body, term := splitLineTerm(raw)
			if edited, changed := edit(body); changed {
				body = edited
			}

			if _, werr := io.WriteString(out, body+term); werr != nil {
				return fmt.Errorf("write line: %w", werr)
			}
		}

		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}
	}
}

// splitLineTerm splits a raw line into body and terminator.
func splitLineTerm(raw string) (string, string) {
	if strings.HasSuffix(raw, "\r\n") {
		return raw[:len(raw)-2], "\r\n"
	}
	if strings.HasSuffix(raw, "\n") {
		return raw[:len(raw)-1], "\n"
	}

	return raw, ""
}

// copyBOM forwards a leading UTF-8 BOM when present and leaves the stream
// positioned after it.
func copyBOM(in io.ReadSeeker, out io.Writer) error {
	head, err := peekBytes(in, len(utf8BOM))
	if err != nil {
		return err
	}

	if len(head) < len(utf8BOM) || string(head) != string(utf8BOM) {
		return nil
	}

	if err := skipBytes(in, int64(len(utf8BOM))); err != nil {
		return err
	}
	if _, err := out.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	return nil
}

// textMetaPathLiteral matches the @"..." path literal inside a MetaText
// value.
var textMetaPathLiteral = regexp.MustCompile(`@"([^"]*)"`)

// TextMetaResaver rewrites path literals in MetaText files and, under
// self-rename, replaces the asset filename and asset UID lines.
type TextMetaResaver struct{}

// Resave streams the file line by line.
func (TextMetaResaver) Resave(in io.ReadSeeker, out io.Writer, renames RenameMap, newAssetFN string) error {
	return copyLines(in, out, func(line string) (string, bool) {
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return line, false
		}

		key := line[:eq]
		if newAssetFN != "" {
			if strings.Contains(key, "rf_strAssetFN") {
				return key + `= @"` + newAssetFN + `";`, true
			}
			if strings.Contains(key, "rf_ulAssetUID") {
				return key + "= " + strconv.FormatUint(uint64(randomUint32()), 10) + ";", true
			}
		}

		changed := false
		edited := textMetaPathLiteral.ReplaceAllStringFunc(line, func(match string) string {
			path := match[2 : len(match)-1]
			if newPath, ok := renames.Lookup(path); ok {
				changed = true
				return `@"` + newPath + `"`
			}

			return match
		})

		return edited, changed
	})
}

// nfoRewriteKeys are the NFO keys whose quoted value is a rewritable asset
// path.
var nfoRewriteKeys = map[string]struct{}{
	"LOADING_SCREEN":       {},
	"THUMBNAIL":            {},
	"INTRO_CUTSCENE_WORLD": {},
	"NETRICSA":             {},
}

// NfoResaver rewrites asset paths in level NFO files.
type NfoResaver struct{}

// Resave preserves a leading BOM and rewrites the first double-quoted span
// of recognized KEY=VALUE lines.
func (NfoResaver) Resave(in io.ReadSeeker, out io.Writer, renames RenameMap, _ string) error {
	if err := copyBOM(in, out); err != nil {
		return err
	}

	return copyLines(in, out, func(line string) (string, bool) {
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return line, false
		}

		if _, ok := nfoRewriteKeys[line[:eq]]; !ok {
			return line, false
		}

		value := line[eq+1:]
		open := strings.IndexByte(value, '"')
		if open < 0 {
			return line, false
		}

		span := strings.IndexByte(value[open+1:], '"')
		if span < 0 {
			return line, false
		}

		path := value[open+1 : open+1+span]
		newPath, ok := renames.Lookup(path)
		if !ok {
			return line, false
		}

		return line[:eq+1] + value[:open+1] + newPath + value[open+1+span:], true
	})
}

// luaLoadCall matches LoadResource and dofile calls with a single path
// argument.
var luaLoadCall = regexp.MustCompile(`(LoadResource|dofile)\s*\(\s*["']?([^"')]+)["']?\s*\)`)

// LuaResaver rewrites asset paths passed to LoadResource and dofile.
type LuaResaver struct{}

// Resave preserves a leading BOM and rewrites every matching call whose path
// is in the rename map; surrounding text on the line is kept.
func (LuaResaver) Resave(in io.ReadSeeker, out io.Writer, renames RenameMap, _ string) error {
	if err := copyBOM(in, out); err != nil {
		return err
	}

	return copyLines(in, out, func(line string) (string, bool) {
		changed := false
		edited := luaLoadCall.ReplaceAllStringFunc(line, func(match string) string {
			sub := luaLoadCall.FindStringSubmatch(match)
			if sub == nil {
				return match
			}

			newPath, ok := renames.Lookup(sub[2])
			if !ok {
				return match
			}

			changed = true
			return sub[1] + `("` + newPath + `")`
		})

		return edited, changed
	})
}
