// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/setools/serename"
)

var (
	scanTargets []string
	scanJSON    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [FILE ...]",
	Short: "Find files referencing any of the target asset paths.",
	Long: `Scan candidate files for references to target asset paths. With no
positional arguments the whole game root is scanned.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringArrayVarP(&scanTargets, "target", "t", nil, "Target asset path to look for (repeatable)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print hits as JSON")
	_ = scanCmd.MarkFlagRequired("target")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, _, err := setupRun(cmd)
	if err != nil {
		return err
	}

	targets := make([]string, 0, len(scanTargets))
	for _, t := range scanTargets {
		normalized, err := serename.ValidateAssetPath(t)
		if err != nil {
			return err
		}

		targets = append(targets, normalized)
	}

	fs := afero.NewOsFs()

	candidates := args
	if len(candidates) == 0 {
		candidates, err = listGameFiles(fs, cfg.GameRoot)
		if err != nil {
			return err
		}
	}

	hits, err := serename.FindReferencingFiles(
		cmd.Context(),
		fs,
		cfg.GameRoot,
		candidates,
		serename.NewPathSet(targets),
		cfg.MaxWorkers,
	)
	if err != nil {
		return err
	}

	if scanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		pterm.Info.Println("no referencing files found")
		return nil
	}

	for _, hit := range hits {
		fmt.Println(hit)
	}

	return nil
}

// listGameFiles walks the game root and returns all regular files as
// game-root-relative forward-slash paths.
func listGameFiles(fs afero.Fs, root string) ([]string, error) {
	var files []string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}

		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk game root: %w", err)
	}

	return files, nil
}

// discoverAuxiliary scans the game root for files referencing any renamed
// path, excluding the renamed files themselves and already-listed auxiliary
// files.
func discoverAuxiliary(ctx context.Context, cfg *Config, files []serename.ResaveFile, known []string) ([]string, error) {
	fs := afero.NewOsFs()

	candidates, err := listGameFiles(fs, cfg.GameRoot)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(files)+len(known))
	targets := make([]string, 0, len(files))
	for _, f := range files {
		skip[strings.ToLower(f.OldPath)] = struct{}{}
		skip[strings.ToLower(f.NewPath)] = struct{}{}
		targets = append(targets, f.OldPath)
	}
	for _, k := range known {
		skip[strings.ToLower(k)] = struct{}{}
	}

	filtered := candidates[:0]
	for _, c := range candidates {
		if _, dup := skip[strings.ToLower(c)]; dup {
			continue
		}

		filtered = append(filtered, c)
	}

	hits, err := serename.FindReferencingFiles(ctx, fs, cfg.GameRoot, filtered, serename.NewPathSet(targets), cfg.MaxWorkers)
	if err != nil {
		return nil, err
	}

	return append(known, hits...), nil
}
