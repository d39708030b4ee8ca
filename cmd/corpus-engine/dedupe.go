// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/dedupe"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Detect and archive duplicate documents",
	Long: `Dedupe fingerprints every document and groups duplicates three ways:
exact (identical content hash), near (similar simhash), and semantic
(overlapping keywords). The scan result is cached; archive moves a
document out of the corpus and logs the move.`,
}

var dedupeScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Fingerprint the corpus and group duplicates",
	RunE:  runDedupeScan,
}

var dedupeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last scan's duplicate statistics",
	RunE:  runDedupeStatus,
}

var dedupeArchiveCmd = &cobra.Command{
	Use:   "archive [doc-id]",
	Short: "Move a document to the archive directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runDedupeArchive,
}

func dedupeDetector(cmd *cobra.Command) *dedupe.Detector {
	archiveDir, _ := cmd.Flags().GetString("archive-dir")
	cfg := types.DedupeConfig{
		CorpusConfig: corpusConfig(cmd),
		ArchiveDir:   archiveDir,
	}
	return dedupe.NewDetector(corpusFs(), cfg, log.Default())
}

func runDedupeScan(cmd *cobra.Command, args []string) error {
	state, err := dedupeDetector(cmd).Scan(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if state.Stats.BytesRecoverable > 0 {
		fmt.Printf("recoverable: %d bytes across %d exact groups\n",
			state.Stats.BytesRecoverable, state.Stats.ExactGroups)
	}
	return nil
}

func runDedupeStatus(cmd *cobra.Command, args []string) error {
	state, ok := dedupeDetector(cmd).Load()
	if !ok {
		return fmt.Errorf("no scan on record: run 'corpus-engine dedupe scan' first")
	}

	s := state.Stats
	fmt.Printf("last scan: %s\n", state.LastScan.Format("2006-01-02 15:04"))
	fmt.Printf("documents: %d\n", s.DocumentsScanned)
	fmt.Printf("groups: %d exact, %d near, %d semantic\n", s.ExactGroups, s.NearGroups, s.SemanticGroups)
	fmt.Printf("recoverable: %d bytes\n", s.BytesRecoverable)
	for _, group := range state.Groups {
		fmt.Printf("  [%s] %.2f %v\n", group.Kind, group.Similarity, group.DocumentIDs)
	}
	return nil
}

func runDedupeArchive(cmd *cobra.Command, args []string) error {
	reason, _ := cmd.Flags().GetString("reason")

	dest, err := dedupeDetector(cmd).Archive(context.Background(), args[0], reason)
	if err != nil {
		return err
	}
	fmt.Printf("archived %s -> %s\n", args[0], dest)
	return nil
}

func init() {
	dedupeCmd.PersistentFlags().String("archive-dir", "", "archive destination (default: corpus-dir/archive)")
	dedupeArchiveCmd.Flags().String("reason", "duplicate", "reason recorded in the archive log")

	dedupeCmd.AddCommand(dedupeScanCmd)
	dedupeCmd.AddCommand(dedupeStatusCmd)
	dedupeCmd.AddCommand(dedupeArchiveCmd)

	rootCmd.AddCommand(dedupeCmd)
}
