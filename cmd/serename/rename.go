// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/setools/serename"
)

var (
	renameAux     []string
	renameList    string
	renameAutoAux bool
	renameJSON    bool
)

var renameCmd = &cobra.Command{
	Use:   "rename OLD=NEW [OLD=NEW ...]",
	Short: "Rename assets and rewrite references in designated files.",
	Long: `Rename one or more assets. Each positional argument is an
OLD=NEW pair of game-root-relative paths. Auxiliary files whose references
should be updated are passed with --aux, listed in a file via --list, or
discovered with --auto-aux (scans the game root for files referencing any
renamed path).`,
	RunE: runRename,
}

func init() {
	renameCmd.Flags().StringArrayVar(&renameAux, "aux", nil, "Auxiliary file to update references in (repeatable)")
	renameCmd.Flags().StringVar(&renameList, "list", "", "File with one OLD=NEW pair per line")
	renameCmd.Flags().BoolVar(&renameAutoAux, "auto-aux", false, "Scan the game root for referencing files")
	renameCmd.Flags().BoolVar(&renameJSON, "json", false, "Print the batch summary as JSON")
}

func runRename(cmd *cobra.Command, args []string) error {
	cfg, profile, err := setupRun(cmd)
	if err != nil {
		return err
	}

	files, err := collectRenamePairs(args, renameList, cfg.DeleteOld)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no rename pairs given")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := serename.BatchOptions{
		GameRoot:   cfg.GameRoot,
		Profile:    profile,
		MaxWorkers: cfg.MaxWorkers,
	}

	auxiliary := renameAux
	if renameAutoAux {
		auxiliary, err = discoverAuxiliary(ctx, cfg, files, auxiliary)
		if err != nil {
			return err
		}
	}

	total := len(files) + len(auxiliary)
	progress, _ := pterm.DefaultProgressbar.WithTotal(total).WithTitle("Resaving").Start()

	var progressMu sync.Mutex
	opts.OnFileDone = func(path string, err error) {
		progressMu.Lock()
		defer progressMu.Unlock()
		progress.UpdateTitle(path)
		progress.Increment()
	}

	res, err := serename.RunBatch(ctx, files, auxiliary, opts)
	_, _ = progress.Stop()
	if err != nil {
		return err
	}

	return printBatchResult(res)
}

// collectRenamePairs merges positional OLD=NEW pairs with a list file.
func collectRenamePairs(args []string, listPath string, deleteOld bool) ([]serename.ResaveFile, error) {
	pairs := make([]string, 0, len(args))
	pairs = append(pairs, args...)

	if listPath != "" {
		f, err := os.Open(listPath)
		if err != nil {
			return nil, fmt.Errorf("open rename list: %w", err)
		}
		defer func() { _ = f.Close() }()

		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			pairs = append(pairs, line)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read rename list: %w", err)
		}
	}

	files := make([]serename.ResaveFile, 0, len(pairs))
	for _, pair := range pairs {
		oldPath, newPath, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid rename pair %q, want OLD=NEW", pair)
		}

		oldNorm, err := serename.ValidateAssetPath(oldPath)
		if err != nil {
			return nil, err
		}

		newNorm, err := serename.ValidateAssetPath(newPath)
		if err != nil {
			return nil, err
		}

		files = append(files, serename.ResaveFile{
			OldPath:   oldNorm,
			NewPath:   newNorm,
			DeleteOld: deleteOld,
		})
	}

	return files, nil
}

// printBatchResult renders the completion summary and both error tables.
func printBatchResult(res *serename.BatchResult) error {
	if renameJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	pterm.Success.Printfln("resaved %d, references updated %d, failed %d",
		res.Resaved, res.ReferencesUpdated, res.Failed)

	for file, err := range res.ResaveErrors {
		pterm.Error.Printfln("resave %s: %v", file.OldPath, err)
	}
	for path, err := range res.ReferenceErrors {
		pterm.Error.Printfln("reference update %s: %v", path, err)
	}

	return nil
}
