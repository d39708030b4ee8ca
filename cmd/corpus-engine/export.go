// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/dedupe"
	"github.com/pdiddy/corpus-engine/internal/export"
	"github.com/pdiddy/corpus-engine/internal/graph"
	"github.com/pdiddy/corpus-engine/internal/monitor"
	"github.com/pdiddy/corpus-engine/internal/scanner"
	"github.com/pdiddy/corpus-engine/internal/sources"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot the caches into a SQLite database",
	Long: `Export mirrors whatever component caches exist into a SQLite database
under the intel directory, for dashboards and ad-hoc SQL. The JSON
caches remain the source of truth; missing caches leave their tables
untouched.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	base := corpusConfig(cmd)
	fsys := corpusFs()
	logger := log.Default()

	sc := scanner.New(fsys, base.CorpusDir, scanner.Options{
		Extension: base.Extension,
		Exclude:   scanner.DefaultExclude(base.Excluded),
	}, logger)
	docs, err := sc.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scanning corpus: %w", err)
	}

	in := export.Input{Documents: docs}
	if state, ok := dedupe.NewDetector(fsys, types.DedupeConfig{CorpusConfig: base}, logger).Load(); ok {
		in.Dedupe = state
	}
	if g, ok := graph.NewBuilder(fsys, types.GraphConfig{CorpusConfig: base}, logger).Cached(); ok {
		in.Graph = g
	}
	if db, ok := sources.NewTracker(fsys, types.SourcesConfig{CorpusConfig: base}, logger).Load(); ok {
		in.Sources = db
	}
	if state, ok := monitor.NewMonitor(fsys, types.MonitorConfig{CorpusConfig: base}, logger).Load(); ok {
		in.Monitor = state
	}
	in.Agenda = loadAgenda(cmd)

	store, err := export.NewStore(types.ExportConfig{IntelDir: base.IntelDir})
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Snapshot(ctx, os.Stdout, in)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot: %d documents, %d sources, %d gaps\n",
		summary.Documents, summary.Sources, summary.Gaps)
	return nil
}

// loadAgenda is best-effort: the coverage framework may not exist on
// this machine, and export should still snapshot everything else.
func loadAgenda(cmd *cobra.Command) *types.ResearchAgenda {
	auditor, err := coverageAuditor(cmd)
	if err != nil {
		return nil
	}
	agenda, ok := auditor.Agenda()
	if !ok {
		return nil
	}
	return agenda
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
