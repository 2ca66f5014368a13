// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the spec-miner CLI.
// Implements: prd001-segmentation, prd002-extraction, prd003-consensus,
//             prd004-validation, prd005-tagging, prd006-store (CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/spec-miner/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the spec-miner CLI.
var rootCmd = &cobra.Command{
	Use:   "spec-miner",
	Short: "Mine implementation-defined parameters from RISC-V specifications",
	Long: `spec-miner extracts implementation-defined hardware parameters from
RISC-V ISA specification documents using LLM backends, then verifies every
extracted parameter against the source text to catch hallucinations.

Each pipeline stage is a subcommand: segment, extract, compare, verify,
tag, and store. Stages exchange YAML artifacts under outputs/ so they can
be run separately or chained.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./spec-miner.yaml or ~/.config/spec-miner/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("spec-miner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "spec-miner"))
		}
	}

	viper.SetEnvPrefix("SPEC_MINER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
