// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the corpus-engine CLI.
// Implements: prd002-dedupe, prd003-graph, prd004-sources,
//             prd005-coverage, prd006-monitor, prd007-export (CLI surface).
// See docs/ARCHITECTURE § Command Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the corpus-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "corpus-engine",
	Short: "Local intelligence layer over a markdown knowledge corpus",
	Long: `corpus-engine analyzes a directory tree of markdown documents and keeps
derived intelligence about it: duplicate groups, a relationship graph,
source trust scores, coverage gaps against a taxonomy, and per-category
health. Each analysis is a subcommand that reads the corpus, persists a
JSON cache under the intel directory, and prints a summary.

The corpus root's top-level subdirectories are categories; drafts,
archive, and briefs are reserved and excluded from scans.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./corpus-engine.yaml or ~/.config/corpus-engine/config.yaml)")
	rootCmd.PersistentFlags().String("corpus-dir", "", "corpus root directory (default: notes)")
	rootCmd.PersistentFlags().String("intel-dir", "", "derived output directory (default: intel)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("corpus-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "corpus-engine"))
		}
	}

	viper.SetEnvPrefix("CORPUS_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("corpus_dir", "notes")
	viper.SetDefault("intel_dir", "intel")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// corpusConfig resolves the shared corpus settings: flags win over the
// config file, which wins over defaults.
func corpusConfig(cmd *cobra.Command) types.CorpusConfig {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	if corpusDir == "" {
		corpusDir = viper.GetString("corpus_dir")
	}
	intelDir, _ := cmd.Flags().GetString("intel-dir")
	if intelDir == "" {
		intelDir = viper.GetString("intel_dir")
	}
	return types.CorpusConfig{
		CorpusDir: corpusDir,
		IntelDir:  intelDir,
		Extension: viper.GetString("extension"),
		Excluded:  viper.GetStringSlice("excluded"),
	}
}

// corpusFs is the filesystem all commands run against. Components take
// an afero.Fs so tests can run on an in-memory tree.
func corpusFs() afero.Fs {
	return afero.NewOsFs()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
