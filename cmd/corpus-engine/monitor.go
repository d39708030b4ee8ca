// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/monitor"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Score per-category health and suggest follow-up work",
	Long: `Monitor scores each corpus category from 100 down, with penalties for
stale averages, sparse categories, and very old outliers. Suggestions
derived from the scores can be dismissed for a week at a time.`,
}

var monitorScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Recompute health scores for every category",
	RunE:  runMonitorScan,
}

var monitorSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "List actionable suggestions from the last scan",
	RunE:  runMonitorSuggest,
}

var monitorDismissCmd = &cobra.Command{
	Use:   "dismiss [suggestion-id]",
	Short: "Mute a suggestion for the dismiss window",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonitorDismiss,
}

func healthMonitor(cmd *cobra.Command) *monitor.Monitor {
	cfg := types.MonitorConfig{CorpusConfig: corpusConfig(cmd)}
	return monitor.NewMonitor(corpusFs(), cfg, log.Default())
}

func runMonitorScan(cmd *cobra.Command, args []string) error {
	state, err := healthMonitor(cmd).Scan(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	for _, h := range state.Health {
		for _, issue := range h.Issues {
			fmt.Printf("  %s: %s\n", h.Category, issue)
		}
	}
	return nil
}

func runMonitorSuggest(cmd *cobra.Command, args []string) error {
	suggestions, err := healthMonitor(cmd).Suggestions()
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Println("nothing to suggest")
		return nil
	}
	for _, s := range suggestions {
		fmt.Printf("%-8s %-8s %s\n         id: %s\n", s.Priority, s.Kind, s.Text, s.ID)
	}
	return nil
}

func runMonitorDismiss(cmd *cobra.Command, args []string) error {
	if err := healthMonitor(cmd).Dismiss(args[0]); err != nil {
		return err
	}
	fmt.Printf("dismissed %s\n", args[0])
	return nil
}

func init() {
	monitorCmd.AddCommand(monitorScanCmd)
	monitorCmd.AddCommand(monitorSuggestCmd)
	monitorCmd.AddCommand(monitorDismissCmd)

	rootCmd.AddCommand(monitorCmd)
}
