// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package monitor scores per-category corpus health and turns the
// scores into actionable suggestions. See docs/ARCHITECTURE § Monitor.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/pdiddy/corpus-engine/internal/cache"
	"github.com/pdiddy/corpus-engine/internal/scanner"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

// ErrNoScan reports a query before any monitor scan has run.
var ErrNoScan = errors.New("no monitor scan on record")

// ErrBadSuggestionID reports a dismissal target without an embedded
// timestamp.
var ErrBadSuggestionID = errors.New("malformed suggestion id")

// Health score penalties (prd006-monitor R1.2). The two staleness
// bands are exclusive; the outlier penalty stacks on top.
const (
	staleAvgDays     = 30
	veryStaleAvgDays = 60
	sparseFileCount  = 3
	outlierAgeDays   = 120

	staleAvgPenalty     = 15
	veryStaleAvgPenalty = 30
	sparsePenalty       = 20
	outlierPenalty      = 10
)

// DismissWindow is how long a dismissal mutes a suggestion (R2.3).
const DismissWindow = 7 * 24 * time.Hour

const cacheFile = "monitor.json"

// Monitor runs health scans over one corpus root.
type Monitor struct {
	fs     afero.Fs
	cfg    types.MonitorConfig
	cache  *cache.Handle[types.MonitorState]
	logger *log.Logger
	now    func() time.Time
}

// NewMonitor returns a monitor for cfg. A nil logger uses the package
// default.
func NewMonitor(fsys afero.Fs, cfg types.MonitorConfig, logger *log.Logger) *Monitor {
	if cfg.Extension == "" {
		cfg.Extension = scanner.DefaultExtension
	}
	if len(cfg.Excluded) == 0 {
		cfg.Excluded = scanner.ReservedDirs
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Monitor{
		fs:     fsys,
		cfg:    cfg,
		cache:  cache.New[types.MonitorState](fsys, filepath.Join(cfg.IntelDir, "cache", cacheFile)),
		logger: logger,
		now:    time.Now,
	}
}

// Load returns the cached monitor state, or ok=false on a miss.
func (m *Monitor) Load() (*types.MonitorState, bool) {
	state, _, ok := m.cache.Load()
	return state, ok
}

// Scan analyzes every category and persists the state, carrying
// forward unexpired dismissals (R1.1, R3.1). Progress goes to w as one
// line per category.
func (m *Monitor) Scan(ctx context.Context, w io.Writer) (*types.MonitorState, error) {
	sc := scanner.New(m.fs, m.cfg.CorpusDir, scanner.Options{
		Extension: m.cfg.Extension,
		Exclude:   scanner.DefaultExclude(m.cfg.Excluded),
	}, m.logger)
	docs, err := sc.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}

	byCategory := map[string][]types.Document{}
	for _, doc := range docs {
		byCategory[doc.Category] = append(byCategory[doc.Category], doc)
	}

	now := m.now()
	state := &types.MonitorState{LastRun: now}
	for _, category := range scanner.Categories(docs) {
		health := AnalyzeCategory(category, byCategory[category], now)
		state.Health = append(state.Health, health)
		fmt.Fprintf(w, "%s: %d files, score %d\n", category, health.FileCount, health.Score)
	}
	fmt.Fprintf(w, "monitor complete: %d categories\n", len(state.Health))

	if prior, _, ok := m.cache.Load(); ok {
		state.Dismissed = pruneDismissed(prior.Dismissed, now)
	}
	if err := m.cache.Store(state, now); err != nil {
		return nil, fmt.Errorf("storing monitor state: %w", err)
	}
	return state, nil
}

// AnalyzeCategory scores one category's documents. The score starts at
// 100 and drops by fixed penalties; every penalty leaves an issue line
// explaining it (R1.2-R1.3).
func AnalyzeCategory(category string, docs []types.Document, now time.Time) types.ContentHealth {
	health := types.ContentHealth{Category: category, FileCount: len(docs), Score: 100}
	if len(docs) == 0 {
		return health
	}

	var totalAge float64
	oldest, newest := 0.0, ageDays(now, docs[0].Modified)
	for _, doc := range docs {
		health.TotalBytes += doc.Size
		age := ageDays(now, doc.Modified)
		totalAge += age
		if age > oldest {
			oldest = age
		}
		if age < newest {
			newest = age
		}
	}
	health.AvgAgeDays = totalAge / float64(len(docs))
	health.OldestDays = oldest
	health.NewestDays = newest

	switch {
	case health.AvgAgeDays > veryStaleAvgDays:
		health.Score -= veryStaleAvgPenalty
		health.Issues = append(health.Issues, fmt.Sprintf("average age %.0f days exceeds %d", health.AvgAgeDays, veryStaleAvgDays))
	case health.AvgAgeDays > staleAvgDays:
		health.Score -= staleAvgPenalty
		health.Issues = append(health.Issues, fmt.Sprintf("average age %.0f days exceeds %d", health.AvgAgeDays, staleAvgDays))
	}
	if health.FileCount < sparseFileCount {
		health.Score -= sparsePenalty
		health.Issues = append(health.Issues, fmt.Sprintf("only %d files", health.FileCount))
	}
	if health.OldestDays > outlierAgeDays {
		health.Score -= outlierPenalty
		health.Issues = append(health.Issues, fmt.Sprintf("oldest file is %.0f days old", health.OldestDays))
	}
	return health
}

// Dismiss mutes a suggestion until its embedded timestamp falls out of
// the dismiss window (R2.3). The ID must carry a unix timestamp
// suffix.
func (m *Monitor) Dismiss(id string) error {
	if _, _, err := splitSuggestionID(id); err != nil {
		return err
	}
	state, _, ok := m.cache.Load()
	if !ok {
		return ErrNoScan
	}
	now := m.now()
	if state.Dismissed == nil {
		state.Dismissed = map[string]time.Time{}
	}
	state.Dismissed[id] = now
	state.Dismissed = pruneDismissed(state.Dismissed, now)
	if err := m.cache.Store(state, now); err != nil {
		return fmt.Errorf("storing monitor state: %w", err)
	}
	return nil
}

// pruneDismissed drops entries whose embedded timestamp is past the
// dismiss window. Malformed entries are dropped too.
func pruneDismissed(dismissed map[string]time.Time, now time.Time) map[string]time.Time {
	if len(dismissed) == 0 {
		return nil
	}
	kept := map[string]time.Time{}
	for id, at := range dismissed {
		_, ts, err := splitSuggestionID(id)
		if err != nil {
			continue
		}
		if now.Sub(time.Unix(ts, 0)) <= DismissWindow {
			kept[id] = at
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func ageDays(now, modified time.Time) float64 {
	age := now.Sub(modified).Hours() / 24
	if age < 0 {
		return 0
	}
	return age
}
