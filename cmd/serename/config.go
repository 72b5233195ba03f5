// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the resolved tool configuration from file, environment, and
// flags.
type Config struct {
	// GameRoot is the directory all asset paths resolve under.
	GameRoot string `mapstructure:"game_root"`
	// Profile is the stream profile preset name.
	Profile string `mapstructure:"profile"`
	// LogLevel is the logrus level name.
	LogLevel string `mapstructure:"log_level"`
	// MaxWorkers bounds per-phase parallelism (zero means GOMAXPROCS).
	MaxWorkers int `mapstructure:"max_workers"`
	// DeleteOld removes originals after a successful rename.
	DeleteOld bool `mapstructure:"delete_old"`
}

// DefaultConfig values.
var DefaultConfig = Config{
	GameRoot: ".",
	Profile:  "SS2",
	LogLevel: "info",
}

// cfgFile holds the path to the configuration file (set via CLI).
var cfgFile string

// InitFlags registers the persistent flags shared by all subcommands.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to a configuration file (YAML)")
	rootCmd.PersistentFlags().StringP("root", "r", DefaultConfig.GameRoot, "Game root directory all asset paths resolve under")
	rootCmd.PersistentFlags().StringP("profile", "p", DefaultConfig.Profile, "Stream profile preset (SS2, SSHD, SS3, Fusion, SS4)")
	rootCmd.PersistentFlags().Int("workers", 0, "Parallel workers per phase (0 means all CPUs)")
	rootCmd.PersistentFlags().Bool("delete-old", false, "Delete originals after a successful rename")
	rootCmd.PersistentFlags().String("log-level", DefaultConfig.LogLevel, "Log level (debug, info, warning, error)")
}

// LoadConfig resolves configuration from defaults, an optional config file,
// environment variables, and flags, in ascending precedence.
func LoadConfig(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	v.SetDefault("game_root", DefaultConfig.GameRoot)
	v.SetDefault("profile", DefaultConfig.Profile)
	v.SetDefault("log_level", DefaultConfig.LogLevel)
	v.SetDefault("max_workers", DefaultConfig.MaxWorkers)
	v.SetDefault("delete_old", DefaultConfig.DeleteOld)

	v.SetEnvPrefix("SERENAME")
	v.AutomaticEnv()
	_ = v.BindEnv("game_root", "SERENAME_GAME_ROOT")
	_ = v.BindEnv("profile", "SERENAME_PROFILE")
	_ = v.BindEnv("log_level", "SERENAME_LOG_LEVEL")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("serename")
		v.SetConfigType("yaml")
		v.AddConfigPath(cwd)
		// A missing default config file is fine; defaults apply.
		_ = v.ReadInConfig()
	}

	_ = v.BindPFlag("game_root", rootCmd.PersistentFlags().Lookup("root"))
	_ = v.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = v.BindPFlag("max_workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = v.BindPFlag("delete_old", rootCmd.PersistentFlags().Lookup("delete-old"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}
