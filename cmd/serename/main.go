// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
