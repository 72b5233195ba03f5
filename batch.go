// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// BatchOptions configures a rename batch.
type BatchOptions struct {
	// Fs is the filesystem the batch operates on; defaults to the OS fs.
	Fs afero.Fs `json:"-" yaml:"-"`
	// Profile selects the write-side wrapper chain; defaults to SS2 (plain).
	Profile *StreamProfile `json:"profile,omitempty" yaml:"profile,omitempty"`
	// OnFileDone is called once per completed unit, success or failure.
	OnFileDone func(path string, err error) `json:"-" yaml:"-"`
	// GameRoot is the directory all game-root-relative paths resolve under.
	GameRoot string `json:"game_root,omitempty" yaml:"game_root,omitempty"`
	// MaxWorkers bounds per-phase parallelism (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
}

// applyDefaults fills zero-valued batch options with defaults.
func (opts *BatchOptions) applyDefaults() {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	if opts.Profile == nil {
		opts.Profile = ProfileSS2
	}

	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
}

// RunBatch applies resavers to the rename list, then reference updates to
// the auxiliary list, each phase in parallel with per-file error isolation.
// Originals with DeleteOld set are removed after both phases; their deletion
// errors are swallowed. Only explicit cancellation aborts the batch.
func RunBatch(ctx context.Context, files []ResaveFile, auxiliary []string, opts BatchOptions) (*BatchResult, error) {
	opts.applyDefaults()
	if ctx == nil {
		ctx = context.Background()
	}

	renames := NewRenameMap(files)
	res := &BatchResult{
		ResaveErrors:    make(map[ResaveFile]error),
		ReferenceErrors: make(map[string]error),
	}

	var mu sync.Mutex

	log.WithFields(log.Fields{
		"files":   len(files),
		"aux":     len(auxiliary),
		"profile": opts.Profile.Name,
		"workers": opts.MaxWorkers,
	}).Info("resave phase started")

	g := &errgroup.Group{}
	g.SetLimit(opts.MaxWorkers)
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			err := resaveOne(&opts, file, renames)
			mu.Lock()
			if err != nil {
				res.ResaveErrors[file] = err
				res.Failed++
			} else {
				res.Resaved++
			}
			mu.Unlock()

			if err != nil {
				log.WithFields(log.Fields{"file": file.OldPath, "err": err}).Warning("resave failed")
			}
			if opts.OnFileDone != nil {
				opts.OnFileDone(file.OldPath, err)
			}

			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return res, err
	}

	log.WithFields(log.Fields{"aux": len(auxiliary)}).Info("reference update phase started")

	g = &errgroup.Group{}
	g.SetLimit(opts.MaxWorkers)
	for _, aux := range auxiliary {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			err := referenceUpdateOne(&opts, aux, renames)
			mu.Lock()
			if err != nil {
				res.ReferenceErrors[aux] = err
				res.Failed++
			} else {
				res.ReferencesUpdated++
			}
			mu.Unlock()

			if err != nil {
				log.WithFields(log.Fields{"file": aux, "err": err}).Warning("reference update failed")
			}
			if opts.OnFileDone != nil {
				opts.OnFileDone(aux, err)
			}

			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return res, err
	}

	for _, file := range files {
		if !file.DeleteOld || file.OldPath == file.NewPath {
			continue
		}
		if _, failed := res.ResaveErrors[file]; failed {
			continue
		}

		// Deletion failures of originals are intentionally swallowed.
		_ = opts.Fs.Remove(joinGamePath(opts.GameRoot, file.OldPath))
	}

	log.WithFields(log.Fields{
		"resaved":    res.Resaved,
		"references": res.ReferencesUpdated,
		"failed":     res.Failed,
	}).Info("batch complete")

	return res, nil
}

// resaveOne rewrites one renamed asset into its destination path through the
// profile-driven write chain. The partial destination is removed on failure.
func resaveOne(opts *BatchOptions, file ResaveFile, renames RenameMap) error {
	oldAbs := joinGamePath(opts.GameRoot, file.OldPath)
	newAbs := joinGamePath(opts.GameRoot, file.NewPath)

	src, err := opts.Fs.Open(oldAbs)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = src.Close() }()

	inner, err := OpenAssetStream(src)
	if err != nil {
		return err
	}

	resaver, err := SniffResaver(inner, file.OldPath)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(newAbs); dir != "." && dir != "" {
		if err := opts.Fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create destination dir: %w", err)
		}
	}

	dst, err := opts.Fs.Create(newAbs)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	err = writeThroughChain(dst, opts.Profile, file.NewPath, func(w io.Writer) error {
		return resaver.Resave(inner, w, renames, file.NewPath)
	})

	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		_ = opts.Fs.Remove(newAbs)
		return err
	}

	return nil
}

// referenceUpdateOne resaves one auxiliary file into a sibling temp file and
// atomically replaces the original. The temp file is removed on failure.
func referenceUpdateOne(opts *BatchOptions, relPath string, renames RenameMap) error {
	abs := joinGamePath(opts.GameRoot, relPath)
	tmpAbs := joinGamePath(opts.GameRoot, tempSiblingPath(relPath))

	err := func() error {
		src, err := opts.Fs.Open(abs)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		defer func() { _ = src.Close() }()

		inner, err := OpenAssetStream(src)
		if err != nil {
			return err
		}

		resaver, err := SniffResaver(inner, relPath)
		if err != nil {
			return err
		}

		dst, err := opts.Fs.Create(tmpAbs)
		if err != nil {
			return fmt.Errorf("create temp: %w", err)
		}

		// Reference updates never pass a new asset filename.
		werr := writeThroughChain(dst, opts.Profile, relPath, func(w io.Writer) error {
			return resaver.Resave(inner, w, renames, "")
		})

		closeErr := dst.Close()
		if werr == nil {
			werr = closeErr
		}

		return werr
	}()
	if err != nil {
		_ = opts.Fs.Remove(tmpAbs)
		return err
	}

	if err := opts.Fs.Rename(tmpAbs, abs); err != nil {
		// Some filesystems refuse to rename over an existing file.
		if rmErr := opts.Fs.Remove(abs); rmErr == nil {
			err = opts.Fs.Rename(tmpAbs, abs)
		}

		if err != nil {
			_ = opts.Fs.Remove(tmpAbs)
			return fmt.Errorf("replace original: %w", err)
		}
	}

	return nil
}

// writeThroughChain assembles the profile write chain over dst, runs fn, and
// flushes the wrappers. The wrapper flush error surfaces when fn succeeded.
func writeThroughChain(dst io.Writer, profile *StreamProfile, assetPath string, fn func(io.Writer) error) error {
	chain, err := NewAssetStreamWriter(dst, profile, assetPath)
	if err != nil {
		return err
	}

	ferr := fn(chain)
	closeErr := chain.Close()
	if ferr != nil {
		return ferr
	}

	return closeErr
}

// tempSiblingPath derives the reference-update temp path, keeping the input
// extension so write-chain gating matches the original.
func tempSiblingPath(relPath string) string {
	ext := path.Ext(relPath)
	return relPath[:len(relPath)-len(ext)] + "~resave" + ext
}

// joinGamePath resolves a game-root-relative path against the root.
func joinGamePath(root string, rel string) string {
	if root == "" {
		return filepath.FromSlash(rel)
	}

	return filepath.Join(root, filepath.FromSlash(rel))
}
