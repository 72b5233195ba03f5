// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import "errors"

// Sentinel errors for asset stream and resave operations. Use errors.Is in callers.
var (
	// ErrMalformedHeader means a stream or meta header failed validation.
	ErrMalformedHeader = errors.New("malformed stream header")
	// ErrUnexpectedEndianness means the meta endianness cookie is unknown.
	ErrUnexpectedEndianness = errors.New("unexpected endianness cookie")
	// ErrUnexpectedObtainType means a block began with the wrong magic.
	ErrUnexpectedObtainType = errors.New("unexpected block magic")
	// ErrUnexpectedDataTypeKind means a data type kind cannot be walked.
	ErrUnexpectedDataTypeKind = errors.New("unexpected data type kind")
	// ErrTruncated means the stream ended inside a block or field.
	ErrTruncated = errors.New("stream truncated")
	// ErrNotSupported means the operation is not valid for this stream direction.
	ErrNotSupported = errors.New("operation not supported")
	// ErrClosed means the stream was already closed.
	ErrClosed = errors.New("stream already closed")
	// ErrUnknownProfile means the stream profile name is not a known preset.
	ErrUnknownProfile = errors.New("unknown stream profile")
	// ErrInvalidKey means the embedded or provided signing key failed to parse.
	ErrInvalidKey = errors.New("invalid signing key")
	// ErrUnsupportedHashMethod means the signed header hash tag is not 4 or 6.
	ErrUnsupportedHashMethod = errors.New("unsupported hash method")
	// ErrInvalidAssetPath means a game-root-relative path is empty, absolute, or traversing.
	ErrInvalidAssetPath = errors.New("invalid asset path")
	// ErrTypeNotResolved means a data type referenced an index outside the type table.
	ErrTypeNotResolved = errors.New("data type index not resolved")
)
