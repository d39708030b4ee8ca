// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/graph"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build and query the document relationship graph",
	Long: `Graph links documents by explicit mentions and by keyword similarity,
clusters them per category, and caches the result. Queries run against
the cache, rebuilding it when it is older than --max-age.`,
}

var graphBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the relationship graph from the corpus",
	RunE:  runGraphBuild,
}

var graphRelatedCmd = &cobra.Command{
	Use:   "related [doc-id]",
	Short: "List documents related to one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphRelated,
}

var graphMissingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List same-cluster document pairs with no edge",
	RunE:  runGraphMissing,
}

func graphBuilder(cmd *cobra.Command) *graph.Builder {
	maxAge, _ := cmd.Flags().GetDuration("max-age")
	cfg := types.GraphConfig{
		CorpusConfig: corpusConfig(cmd),
		MaxAge:       maxAge,
	}
	return graph.NewBuilder(corpusFs(), cfg, log.Default())
}

func runGraphBuild(cmd *cobra.Command, args []string) error {
	g, err := graphBuilder(cmd).Build(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("graph: %d nodes, %d edges, %d clusters, %d isolated\n",
		len(g.Nodes), len(g.Edges), len(g.Clusters), len(g.Isolated))
	return nil
}

func runGraphRelated(cmd *cobra.Command, args []string) error {
	maxAge, _ := cmd.Flags().GetDuration("max-age")
	limit, _ := cmd.Flags().GetInt("limit")

	g, err := graphBuilder(cmd).Load(context.Background(), maxAge)
	if err != nil {
		return err
	}
	related, err := graph.RelatedNodes(g, args[0], limit)
	if err != nil {
		return err
	}
	for _, r := range related {
		fmt.Printf("%.2f  %-10s %s\n", r.Weight, r.Relation, r.Node.ID)
	}
	return nil
}

func runGraphMissing(cmd *cobra.Command, args []string) error {
	maxAge, _ := cmd.Flags().GetDuration("max-age")

	g, err := graphBuilder(cmd).Load(context.Background(), maxAge)
	if err != nil {
		return err
	}
	for _, m := range graph.MissingConnections(g) {
		fmt.Printf("%s <-> %s (%s)\n", m.NodeA, m.NodeB, m.Reason)
	}
	return nil
}

func init() {
	graphCmd.PersistentFlags().Duration("max-age", time.Hour, "rebuild the cached graph when older than this")
	graphRelatedCmd.Flags().Int("limit", 10, "maximum related documents to list")

	graphCmd.AddCommand(graphBuildCmd)
	graphCmd.AddCommand(graphRelatedCmd)
	graphCmd.AddCommand(graphMissingCmd)

	rootCmd.AddCommand(graphCmd)
}
