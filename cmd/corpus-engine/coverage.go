// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/coverage"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Audit the corpus against a taxonomy and manage the research agenda",
	Long: `Coverage compares the corpus against a taxonomy framework (categories,
target depths, expected subtopics) and reports gaps: missing folders,
shallow or stale categories, and absent subtopics. Gaps feed a research
agenda of prioritized topics worked through sessions.`,
}

var coverageAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Recompute coverage gaps against the framework",
	RunE:  runCoverageAudit,
}

var coverageTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Enqueue research topics from the last audit's gaps",
	RunE:  runCoverageTopics,
}

var coverageAgendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Summarize the research agenda",
	RunE:  runCoverageAgenda,
}

var coverageNextCmd = &cobra.Command{
	Use:   "next",
	Short: "List the most urgent queued topics",
	RunE:  runCoverageNext,
}

var coverageTransitionCmd = &cobra.Command{
	Use:   "transition [topic] [researching|completed|blocked|queued]",
	Short: "Move a topic through its lifecycle",
	Args:  cobra.ExactArgs(2),
	RunE:  runCoverageTransition,
}

var coverageSessionCmd = &cobra.Command{
	Use:   "session [start|end]",
	Short: "Open or close a research session",
	Args:  cobra.ExactArgs(1),
	RunE:  runCoverageSession,
}

func coverageAuditor(cmd *cobra.Command) (*coverage.Auditor, error) {
	frameworkFile, _ := cmd.Flags().GetString("framework")
	cfg := types.CoverageConfig{
		CorpusConfig:  corpusConfig(cmd),
		FrameworkFile: frameworkFile,
	}
	return coverage.NewAuditor(corpusFs(), cfg, log.Default())
}

func runCoverageAudit(cmd *cobra.Command, args []string) error {
	auditor, err := coverageAuditor(cmd)
	if err != nil {
		return err
	}
	result, err := auditor.Audit(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	for _, gap := range result.Gaps {
		fmt.Printf("gap [%s/%s] %s: %s\n", gap.Priority, gap.Type, gap.Category, gap.Description)
	}
	return nil
}

func runCoverageTopics(cmd *cobra.Command, args []string) error {
	auditor, err := coverageAuditor(cmd)
	if err != nil {
		return err
	}
	added, err := auditor.GenerateTopics()
	if err != nil {
		return err
	}
	fmt.Printf("enqueued %d topics\n", added)
	return nil
}

func runCoverageAgenda(cmd *cobra.Command, args []string) error {
	auditor, err := coverageAuditor(cmd)
	if err != nil {
		return err
	}
	agenda, ok := auditor.Agenda()
	if !ok {
		fmt.Println("agenda is empty: run 'corpus-engine coverage audit' first")
		return nil
	}

	counts := map[types.TopicStatus]int{}
	for _, topic := range agenda.Topics {
		counts[topic.Status]++
	}
	fmt.Printf("topics: %d queued, %d researching, %d completed, %d blocked\n",
		counts[types.TopicQueued], counts[types.TopicResearching],
		counts[types.TopicCompleted], counts[types.TopicBlocked])
	fmt.Printf("sessions: %d completed, %.1f topics/session, %.1f files/session\n",
		agenda.Stats.SessionsCompleted, agenda.Stats.AvgTopicsPerSession, agenda.Stats.AvgFilesPerSession)
	if agenda.LastAudit != nil {
		fmt.Printf("last audit: %s, %d gaps (framework %s)\n",
			agenda.LastAudit.AuditedAt.Format("2006-01-02 15:04"),
			len(agenda.LastAudit.Gaps), agenda.LastAudit.FrameworkVersion)
	}
	return nil
}

func runCoverageNext(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("n")

	auditor, err := coverageAuditor(cmd)
	if err != nil {
		return err
	}
	topics, err := auditor.NextTopics(n)
	if err != nil {
		return err
	}
	for _, topic := range topics {
		fmt.Printf("%-8s %-12s %s (%s)\n", topic.Priority, topic.Depth, topic.Name, topic.Category)
	}
	return nil
}

func runCoverageTransition(cmd *cobra.Command, args []string) error {
	auditor, err := coverageAuditor(cmd)
	if err != nil {
		return err
	}
	return auditor.Transition(args[0], types.TopicStatus(args[1]))
}

func runCoverageSession(cmd *cobra.Command, args []string) error {
	auditor, err := coverageAuditor(cmd)
	if err != nil {
		return err
	}

	switch args[0] {
	case "start":
		session, err := auditor.StartSession()
		if err != nil {
			return err
		}
		fmt.Printf("session %s started\n", session.ID)
		return nil
	case "end":
		topics, _ := cmd.Flags().GetStringSlice("topics")
		files, _ := cmd.Flags().GetStringSlice("files")
		used, _ := cmd.Flags().GetStringSlice("sources")
		session, err := auditor.EndSession(topics, files, used)
		if err != nil {
			return err
		}
		fmt.Printf("session %s ended: %d topics, %d files\n",
			session.ID, len(session.Topics), len(session.FilesCreated))
		return nil
	}
	return fmt.Errorf("unknown session action %q: use start or end", args[0])
}

func init() {
	coverageCmd.PersistentFlags().String("framework", "", "framework YAML path (default: "+coverage.DefaultFrameworkFile+")")
	coverageNextCmd.Flags().Int("n", 5, "number of topics to list")
	coverageSessionCmd.Flags().StringSlice("topics", nil, "topic names worked (session end)")
	coverageSessionCmd.Flags().StringSlice("files", nil, "files created (session end)")
	coverageSessionCmd.Flags().StringSlice("sources", nil, "source IDs used (session end)")

	coverageCmd.AddCommand(coverageAuditCmd)
	coverageCmd.AddCommand(coverageTopicsCmd)
	coverageCmd.AddCommand(coverageAgendaCmd)
	coverageCmd.AddCommand(coverageNextCmd)
	coverageCmd.AddCommand(coverageTransitionCmd)
	coverageCmd.AddCommand(coverageSessionCmd)

	rootCmd.AddCommand(coverageCmd)
}
