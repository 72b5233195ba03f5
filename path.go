// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"fmt"
	"path"
	"strings"
)

// NormalizeAssetPath converts a user/input path to normalized game-root-relative
// form. It trims spaces, accepts both "/" and "\", removes leading "./" and "/",
// and cleans "." segments.
func NormalizeAssetPath(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, "/")
	raw = strings.TrimPrefix(raw, "./")
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// ValidateAssetPath normalizes raw and rejects empty, drive-absolute (C:/...),
// traversing, or NUL-bearing inputs. A leading "/" is stripped by
// normalization rather than rejected.
func ValidateAssetPath(raw string) (string, error) {
	if strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetPath, raw)
	}
	if hasDrivePrefix(strings.TrimSpace(raw)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetPath, raw)
	}

	for _, part := range strings.FieldsFunc(strings.ReplaceAll(raw, `\`, "/"), func(r rune) bool { return r == '/' }) {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidAssetPath, raw)
		}
	}

	normalized := NormalizeAssetPath(raw)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetPath, raw)
	}

	return normalized, nil
}

// hasDrivePrefix reports whether path starts with a drive-root prefix like C:/.
func hasDrivePrefix(p string) bool {
	if len(p) < 3 {
		return false
	}

	c := p[0]
	isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	return isAlpha && p[1] == ':' && (p[2] == '/' || p[2] == '\\')
}

// pathExtLower extracts the lower-cased ASCII extension including the dot.
func pathExtLower(p string) string {
	sep := strings.LastIndexAny(p, `/\`)
	dot := strings.LastIndexByte(p, '.')
	if dot <= sep {
		return ""
	}

	return strings.ToLower(p[dot:])
}
