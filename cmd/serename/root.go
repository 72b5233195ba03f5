// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/setools/serename"
)

var rootCmd = &cobra.Command{
	Use:   "serename",
	Short: "Rename Serious Engine assets and rewrite every reference to them.",
	Long: `serename renames Serious Engine 2+ asset files and rewrites all
cross-references inside the renamed files themselves and any other files you
designate, preserving signed and wrecked stream wrappers so the game keeps
loading the results.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	return nil
}

func init() {
	InitFlags(rootCmd)
	rootCmd.AddCommand(renameCmd, scanCmd, profilesCmd)
}

// setupRun loads configuration and configures logging for a subcommand.
func setupRun(cmd *cobra.Command) (*Config, *serename.StreamProfile, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg, err := LoadConfig(cmd.Root(), cwd)
	if err != nil {
		return nil, nil, err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(level)

	profile, err := serename.ProfileByName(cfg.Profile)
	if err != nil {
		return nil, nil, err
	}

	return cfg, profile, nil
}
