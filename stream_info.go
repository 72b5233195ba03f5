// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"encoding/binary"
	"io"
)

// stripInfoStream advances past the single length-prefixed string of an
// INFSTRM1 wrapper. The caller has already consumed the 8-byte marker; the
// inner payload follows directly.
func stripInfoStream(r io.ReadSeeker) error {
	return skipLenString(r, binary.LittleEndian)
}
