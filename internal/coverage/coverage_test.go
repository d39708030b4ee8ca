// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coverage

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

const testFramework = `version: "2026.1"
categories:
  - name: Distributed Systems
    description: how machines disagree
    depth: deep
    priority: critical
    subtopics: [consensus, replication, sharding, gossip protocols]
  - name: Compilers
    depth: overview
    priority: low
    subtopics: [parsing, codegen]
aliases:
  Distributed Systems: [distributed, dist-sys]
  Compilers: [compilers]
`

func testAuditor(t *testing.T, fsys afero.Fs) *Auditor {
	t.Helper()
	if err := afero.WriteFile(fsys, "coverage-framework.yaml", []byte(testFramework), 0o644); err != nil {
		t.Fatalf("writing framework: %v", err)
	}
	a, err := NewAuditor(fsys, types.CoverageConfig{
		CorpusConfig: types.CorpusConfig{CorpusDir: "notes", IntelDir: "intel"},
	}, nil)
	if err != nil {
		t.Fatalf("NewAuditor: %v", err)
	}
	return a
}

func writeDoc(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func mustAudit(t *testing.T, a *Auditor) *types.AuditResult {
	t.Helper()
	result, err := a.Audit(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	return result
}

func gapsOfType(result *types.AuditResult, category string, gt types.GapType) []types.KnowledgeGap {
	var out []types.KnowledgeGap
	for _, g := range result.Gaps {
		if g.Category == category && g.Type == gt {
			out = append(out, g)
		}
	}
	return out
}

func TestLoadFrameworkRejectsBadDepth(t *testing.T) {
	fsys := afero.NewMemMapFs()
	bad := strings.Replace(testFramework, "depth: deep", "depth: bottomless", 1)
	if err := afero.WriteFile(fsys, "fw.yaml", []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFramework(fsys, "fw.yaml"); err == nil {
		t.Fatal("expected error for unknown depth")
	}
}

func TestLoadFrameworkRejectsOrphanAlias(t *testing.T) {
	fsys := afero.NewMemMapFs()
	bad := testFramework + "  Quantum: [quantum]\n"
	if err := afero.WriteFile(fsys, "fw.yaml", []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFramework(fsys, "fw.yaml"); err == nil {
		t.Fatal("expected error for alias without a category")
	}
}

func TestLoadFrameworkRejectsUnmappedCategory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	bad := strings.Replace(testFramework, "  Compilers: [compilers]\n", "", 1)
	if err := afero.WriteFile(fsys, "fw.yaml", []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFramework(fsys, "fw.yaml"); err == nil {
		t.Fatal("expected error for category without an alias entry")
	}
}

func TestAuditMissingCategory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	writeDoc(t, fsys, "notes/compilers/parsing.md", "Recursive descent parsing and codegen basics.")

	result := mustAudit(t, a)

	missing := gapsOfType(result, "Distributed Systems", types.GapMissing)
	if len(missing) != 1 {
		t.Fatalf("got %d missing gaps for Distributed Systems, want 1", len(missing))
	}
	if missing[0].Priority != types.PriorityCritical {
		t.Errorf("missing gap priority = %s, want critical", missing[0].Priority)
	}
	if result.Coverage["Distributed Systems"] != 0 {
		t.Errorf("coverage = %v, want 0", result.Coverage["Distributed Systems"])
	}
	if len(gapsOfType(result, "Compilers", types.GapMissing)) != 0 {
		t.Error("Compilers has a folder, should not be missing")
	}
}

func TestAuditAliasedFoldersMerge(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	writeDoc(t, fsys, "notes/distributed/raft.md", "Raft consensus and log replication.")
	writeDoc(t, fsys, "notes/dist-sys/sharding.md", "Consistent hashing for sharding; gossip protocols spread state.")

	result := mustAudit(t, a)

	if len(gapsOfType(result, "Distributed Systems", types.GapMissing)) != 0 {
		t.Fatal("aliased folders exist, category should not be missing")
	}
	// 2 docs over 4 subtopics * deep multiplier 3.
	want := 2.0 / 12.0 * 100
	if math.Abs(result.Coverage["Distributed Systems"]-want) > 1e-9 {
		t.Errorf("coverage = %v, want %v", result.Coverage["Distributed Systems"], want)
	}
}

func TestAuditShallowCategory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	// One doc against four subtopics: below the half-subtopics floor.
	writeDoc(t, fsys, "notes/distributed/raft.md", "Raft consensus.")

	result := mustAudit(t, a)
	if len(gapsOfType(result, "Distributed Systems", types.GapShallow)) != 1 {
		t.Fatal("expected a shallow gap for a one-document deep category")
	}
}

func TestAuditSubtopicsGap(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	writeDoc(t, fsys, "notes/distributed/raft.md", "Raft consensus with log replication.")
	writeDoc(t, fsys, "notes/distributed/shards.md", "Sharding by consistent hashing.")

	result := mustAudit(t, a)
	gaps := gapsOfType(result, "Distributed Systems", types.GapSubtopics)
	if len(gaps) != 1 {
		t.Fatalf("got %d subtopics gaps, want 1", len(gaps))
	}
	if len(gaps[0].SuggestedTopics) != 1 || gaps[0].SuggestedTopics[0] != "gossip protocols" {
		t.Errorf("suggested = %v, want [gossip protocols]", gaps[0].SuggestedTopics)
	}
}

func TestAuditCoversAllSubtopics(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	writeDoc(t, fsys, "notes/compilers/notes.md", "Parsing with LR tables, then codegen to SSA.")

	result := mustAudit(t, a)
	if got := gapsOfType(result, "Compilers", types.GapSubtopics); len(got) != 0 {
		t.Errorf("got subtopics gaps %v, want none", got)
	}
	if result.Coverage["Compilers"] != 50 {
		t.Errorf("coverage = %v, want 50", result.Coverage["Compilers"])
	}
}

func TestAuditStaleCategory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	writeDoc(t, fsys, "notes/compilers/old1.md", "Parsing history.")
	writeDoc(t, fsys, "notes/compilers/old2.md", "Codegen history.")
	writeDoc(t, fsys, "notes/compilers/new.md", "Fresh parsing and codegen notes.")
	old := now.Add(-60 * 24 * time.Hour)
	for _, p := range []string{"notes/compilers/old1.md", "notes/compilers/old2.md"} {
		if err := fsys.Chtimes(p, old, old); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	if err := fsys.Chtimes("notes/compilers/new.md", now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result := mustAudit(t, a)
	if len(gapsOfType(result, "Compilers", types.GapStale)) != 1 {
		t.Fatal("two of three documents past the window should flag stale")
	}
}

func TestAuditRecomputesGaps(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)

	first := mustAudit(t, a)
	if len(gapsOfType(first, "Compilers", types.GapMissing)) != 1 {
		t.Fatal("empty corpus should report Compilers missing")
	}

	writeDoc(t, fsys, "notes/compilers/notes.md", "Parsing with LR tables, then codegen to SSA.")
	second := mustAudit(t, a)
	if len(gapsOfType(second, "Compilers", types.GapMissing)) != 0 {
		t.Fatal("gap should disappear once the folder exists; gaps are rebuilt, not patched")
	}
}

func TestGenerateTopicsDedupes(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	mustAudit(t, a)

	added, err := a.GenerateTopics()
	if err != nil {
		t.Fatalf("GenerateTopics: %v", err)
	}
	if added == 0 {
		t.Fatal("empty corpus audit should enqueue topics")
	}

	again, err := a.GenerateTopics()
	if err != nil {
		t.Fatalf("GenerateTopics again: %v", err)
	}
	if again != 0 {
		t.Errorf("second generation enqueued %d topics, want 0", again)
	}
}

func TestGenerateTopicsCapsPerGap(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	mustAudit(t, a)

	if _, err := a.GenerateTopics(); err != nil {
		t.Fatalf("GenerateTopics: %v", err)
	}
	agenda, ok := a.Agenda()
	if !ok {
		t.Fatal("agenda not persisted")
	}
	perGap := map[string]int{}
	for _, topic := range agenda.Topics {
		perGap[topic.Category]++
	}
	// Distributed Systems is one missing gap with four suggestions.
	if perGap["Distributed Systems"] != topicsPerGap {
		t.Errorf("Distributed Systems topics = %d, want %d", perGap["Distributed Systems"], topicsPerGap)
	}
}

func TestGenerateTopicsRequiresAudit(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	if _, err := a.GenerateTopics(); !errors.Is(err, ErrNoAudit) {
		t.Fatalf("err = %v, want ErrNoAudit", err)
	}
}

func TestNextTopicsOrder(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	agenda := &types.ResearchAgenda{Topics: []types.ResearchTopic{
		{Name: "low early", Priority: types.PriorityLow, Status: types.TopicQueued, QueuedAt: base},
		{Name: "critical late", Priority: types.PriorityCritical, Status: types.TopicQueued, QueuedAt: base.Add(time.Hour)},
		{Name: "critical early", Priority: types.PriorityCritical, Status: types.TopicQueued, QueuedAt: base},
		{Name: "done", Priority: types.PriorityCritical, Status: types.TopicCompleted, QueuedAt: base},
	}}
	if err := a.cache.Store(agenda, base); err != nil {
		t.Fatal(err)
	}

	next, err := a.NextTopics(2)
	if err != nil {
		t.Fatalf("NextTopics: %v", err)
	}
	if len(next) != 2 || next[0].Name != "critical early" || next[1].Name != "critical late" {
		t.Fatalf("next = %+v, want critical early then critical late", next)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)
	agenda := &types.ResearchAgenda{Topics: []types.ResearchTopic{
		{Name: "consensus", Priority: types.PriorityCritical, Status: types.TopicQueued, QueuedAt: time.Now()},
	}}
	if err := a.cache.Store(agenda, time.Now()); err != nil {
		t.Fatal(err)
	}

	if err := a.Transition("consensus", types.TopicCompleted); err == nil {
		t.Fatal("queued -> completed should be rejected")
	}
	if err := a.Transition("consensus", types.TopicResearching); err != nil {
		t.Fatalf("queued -> researching: %v", err)
	}
	if err := a.Transition("consensus", types.TopicCompleted); err != nil {
		t.Fatalf("researching -> completed: %v", err)
	}

	got, _ := a.Agenda()
	if got.Topics[0].Status != types.TopicCompleted || got.Topics[0].CompletedAt.IsZero() {
		t.Errorf("topic = %+v, want completed with timestamp", got.Topics[0])
	}

	if err := a.Transition("nope", types.TopicResearching); !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("err = %v, want ErrTopicNotFound", err)
	}
}

func TestSessionLifecycleAndAverages(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := testAuditor(t, fsys)

	if _, err := a.EndSession(nil, nil, nil); !errors.Is(err, ErrNoOpenSession) {
		t.Fatalf("err = %v, want ErrNoOpenSession", err)
	}

	first, err := a.StartSession()
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if first.ID == "" {
		t.Fatal("session has no ID")
	}
	if _, err := a.StartSession(); !errors.Is(err, ErrSessionOpen) {
		t.Fatalf("err = %v, want ErrSessionOpen", err)
	}

	done, err := a.EndSession([]string{"consensus", "sharding"}, []string{"a.md", "b.md", "c.md", "d.md"}, []string{"arxiv.org"})
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if done.EndedAt.IsZero() || len(done.SourcesUsed) != 1 {
		t.Fatalf("ended session = %+v", done)
	}

	if _, err := a.StartSession(); err != nil {
		t.Fatalf("second StartSession: %v", err)
	}
	if _, err := a.EndSession([]string{"parsing", "codegen", "ssa", "lr tables"}, nil, nil); err != nil {
		t.Fatalf("second EndSession: %v", err)
	}

	agenda, _ := a.Agenda()
	if agenda.Stats.SessionsCompleted != 2 {
		t.Fatalf("SessionsCompleted = %d, want 2", agenda.Stats.SessionsCompleted)
	}
	if agenda.Stats.AvgTopicsPerSession != 3 {
		t.Errorf("AvgTopicsPerSession = %v, want 3", agenda.Stats.AvgTopicsPerSession)
	}
	if agenda.Stats.AvgFilesPerSession != 2 {
		t.Errorf("AvgFilesPerSession = %v, want 2", agenda.Stats.AvgFilesPerSession)
	}
}
