// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

/*
Package serename renames Serious Engine 2+ asset files and rewrites every
cross-reference to those files inside both the renamed assets themselves and
any other files the caller designates. It understands the layered stream
wrappers the engine ships assets in (signed, wrecked, info), the CTSEMETA
binary meta format with its self-describing type system, and the ancillary
MetaText, NFO, and Lua formats, so rewritten files keep loading in the game.

# Resaving a batch

Build the rename list and run both phases (resave + reference update):

	files := []serename.ResaveFile{
	    {OldPath: "Content/Old.tex", NewPath: "Content/New.tex", DeleteOld: true},
	}
	res, err := serename.RunBatch(ctx, files, auxiliaryPaths, serename.BatchOptions{
	    GameRoot: "/games/ss3",
	    Profile:  serename.ProfileSS3,
	    OnFileDone: func(path string, err error) {
	        // progress tick per completed unit
	    },
	})
	if err != nil {
	    return err // explicit cancellation only; per-file errors are in res
	}
	for file, ferr := range res.ResaveErrors {
	    log.Printf("%s: %v", file.OldPath, ferr)
	}

Per-file failures never abort the batch. They are collected in
BatchResult.ResaveErrors and BatchResult.ReferenceErrors and the partial
output of a failed file is deleted.

# Stream profiles

Each supported game selects a preset combination of wrappers:

	profile, err := serename.ProfileByName("SS3")

SS2 writes plain files. SSHD signs with a v4 SIG2 header. SS3, Fusion, and
SS4 sign with v5 headers and additionally wrap .wld files in a wrecked
stream. Sound files (.wav, .ogg) always bypass signing.

# Single-file operations

Open the payload of a wrapped asset directly:

	inner, err := serename.OpenAssetStream(f)

Or resave one file with explicit streams:

	resaver, err := serename.SniffResaver(inner, "Content/Old.tex")
	err = resaver.Resave(inner, out, renames, "Content/New.tex")

# Scanning for references

To preselect auxiliary files that mention any of the renamed paths:

	hits, err := serename.FindReferencingFiles(ctx, fs, root, candidates, targets, 0)
*/
package serename
