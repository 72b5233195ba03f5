// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import _ "embed"

// DER-encoded PKCS#1 RSAPrivateKey editor keys, one per signed game profile.
// The keys are required for output to load in the shipped games; the files
// under keys/ are replaced with the real editor keys at release build time.
var (
	//go:embed keys/sshd_editor.der
	keySSHDEditor []byte
	//go:embed keys/ss3_editor.der
	keySS3Editor []byte
	//go:embed keys/fusion_editor.der
	keyFusionEditor []byte
	//go:embed keys/ss4_editor.der
	keySS4Editor []byte
)
