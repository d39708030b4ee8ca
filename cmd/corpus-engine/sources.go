// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/sources"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Track and score the trustworthiness of content sources",
	Long: `Sources maintains a registry of every URL the corpus cites, scored from
a reputation baseline plus usage and feedback signals. Ingestion records
keep the score a document's source had at ingestion time.`,
}

var sourcesScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Register and recount every source cited in the corpus",
	RunE:  runSourcesScan,
}

var sourcesReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the registry with concerns and recommendations",
	RunE:  runSourcesReport,
}

var sourcesIngestCmd = &cobra.Command{
	Use:   "ingest [doc-id]",
	Short: "Record a document ingestion with its source provenance",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesIngest,
}

var sourcesFeedbackCmd = &cobra.Command{
	Use:   "feedback [source-id] [upvoted|downvoted|flagged]",
	Short: "Record feedback on a source",
	Args:  cobra.ExactArgs(2),
	RunE:  runSourcesFeedback,
}

func sourcesTracker(cmd *cobra.Command) *sources.Tracker {
	agent, _ := cmd.Flags().GetString("agent")
	cfg := types.SourcesConfig{
		CorpusConfig: corpusConfig(cmd),
		Agent:        agent,
	}
	return sources.NewTracker(corpusFs(), cfg, log.Default())
}

func runSourcesScan(cmd *cobra.Command, args []string) error {
	scanned, added, err := sourcesTracker(cmd).ScanAndUpdate(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("scanned %d documents, %d new sources\n", scanned, added)
	return nil
}

func runSourcesReport(cmd *cobra.Command, args []string) error {
	report := sourcesTracker(cmd).Report()

	fmt.Printf("sources: %d\n", report.TotalSources)
	for _, tier := range []types.TrustTier{
		types.TierVerified, types.TierTrusted, types.TierNeutral, types.TierCautious, types.TierUntrusted,
	} {
		if n := report.TierCounts[tier]; n > 0 {
			fmt.Printf("  %-10s %d\n", tier, n)
		}
	}
	for _, src := range report.Sources {
		fmt.Printf("%3d %-10s %s\n", src.Score, src.Tier, src.ID)
	}
	for _, concern := range report.Concerns {
		fmt.Printf("concern: %s\n", concern)
	}
	for _, rec := range report.Recommendations {
		fmt.Printf("recommend: %s\n", rec)
	}
	return nil
}

func runSourcesIngest(cmd *cobra.Command, args []string) error {
	sourceURL, _ := cmd.Flags().GetString("source")
	agent, _ := cmd.Flags().GetString("agent")

	prov, err := sourcesTracker(cmd).RecordIngestion(args[0], sourceURL, agent)
	if err != nil {
		return err
	}
	if prov.SourceID == "" {
		fmt.Printf("recorded %s (no source)\n", args[0])
		return nil
	}
	fmt.Printf("recorded %s from %s (score %d at ingestion)\n", args[0], prov.SourceID, prov.ScoreAtIngestion)
	return nil
}

func runSourcesFeedback(cmd *cobra.Command, args []string) error {
	kind := types.SourceEventKind(args[1])
	switch kind {
	case types.EventUpvoted, types.EventDownvoted, types.EventFlagged:
	default:
		return fmt.Errorf("unknown feedback %q: use upvoted, downvoted, or flagged", args[1])
	}
	return sourcesTracker(cmd).RecordFeedback(args[0], kind)
}

func init() {
	sourcesCmd.PersistentFlags().String("agent", "", "agent identity recorded in provenance")
	sourcesIngestCmd.Flags().String("source", "", "source URL the document came from")

	sourcesCmd.AddCommand(sourcesScanCmd)
	sourcesCmd.AddCommand(sourcesReportCmd)
	sourcesCmd.AddCommand(sourcesIngestCmd)
	sourcesCmd.AddCommand(sourcesFeedbackCmd)

	rootCmd.AddCommand(sourcesCmd)
}
