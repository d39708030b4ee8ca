// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coverage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/pdiddy/corpus-engine/internal/cache"
	"github.com/pdiddy/corpus-engine/internal/scanner"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

// FreshnessWindow is how old a document may be before it counts toward
// a stale gap (prd005-coverage R2.5).
const FreshnessWindow = 30 * 24 * time.Hour

// maxSuggestedTopics caps the subtopic suggestions attached to a gap.
const maxSuggestedTopics = 5

const cacheFile = "agenda.json"

// Auditor compares the corpus against a taxonomy framework.
type Auditor struct {
	fs        afero.Fs
	cfg       types.CoverageConfig
	framework *types.CoverageFramework
	cache     *cache.Handle[types.ResearchAgenda]
	logger    *log.Logger
	now       func() time.Time
}

// NewAuditor loads the framework and returns an auditor for cfg. A bad
// framework is a constructor error; nothing runs against an invalid
// taxonomy.
func NewAuditor(fsys afero.Fs, cfg types.CoverageConfig, logger *log.Logger) (*Auditor, error) {
	if cfg.Extension == "" {
		cfg.Extension = scanner.DefaultExtension
	}
	if len(cfg.Excluded) == 0 {
		cfg.Excluded = scanner.ReservedDirs
	}
	if cfg.FrameworkFile == "" {
		cfg.FrameworkFile = DefaultFrameworkFile
	}
	if logger == nil {
		logger = log.Default()
	}

	fw, err := LoadFramework(fsys, cfg.FrameworkFile)
	if err != nil {
		return nil, err
	}
	return &Auditor{
		fs:        fsys,
		cfg:       cfg,
		framework: fw,
		cache:     cache.New[types.ResearchAgenda](fsys, filepath.Join(cfg.IntelDir, "cache", cacheFile)),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Framework returns the loaded taxonomy.
func (a *Auditor) Framework() *types.CoverageFramework {
	return a.framework
}

// Audit scans the corpus, recomputes every gap from scratch, and
// persists the result into the agenda cache (R2.1-R2.6). Progress goes
// to w as one line per category.
func (a *Auditor) Audit(ctx context.Context, w io.Writer) (*types.AuditResult, error) {
	sc := scanner.New(a.fs, a.cfg.CorpusDir, scanner.Options{
		Extension: a.cfg.Extension,
		Exclude:   scanner.DefaultExclude(a.cfg.Excluded),
	}, a.logger)
	docs, err := sc.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}

	byCategory := map[string][]types.Document{}
	for _, doc := range docs {
		byCategory[doc.Category] = append(byCategory[doc.Category], doc)
	}

	now := a.now()
	result := &types.AuditResult{
		AuditedAt:        now,
		FrameworkVersion: a.framework.Version,
		Coverage:         make(map[string]float64, len(a.framework.Categories)),
	}

	for _, cat := range a.framework.Categories {
		catDocs := a.categoryDocs(byCategory, cat.Name)
		result.Coverage[cat.Name] = coveragePercent(cat, len(catDocs))
		result.Gaps = append(result.Gaps, a.categoryGaps(cat, catDocs, now)...)
		fmt.Fprintf(w, "%s: %d docs, %.0f%% coverage\n", cat.Name, len(catDocs), result.Coverage[cat.Name])
	}
	fmt.Fprintf(w, "audit complete: %d categories, %d gaps\n", len(a.framework.Categories), len(result.Gaps))

	agenda, _, ok := a.cache.Load()
	if !ok {
		agenda = &types.ResearchAgenda{}
	}
	agenda.LastAudit = result
	agenda.LastUpdated = now
	if err := a.cache.Store(agenda, now); err != nil {
		return nil, fmt.Errorf("storing audit: %w", err)
	}
	return result, nil
}

// categoryDocs collects documents from every folder aliased to the
// taxonomy category.
func (a *Auditor) categoryDocs(byCategory map[string][]types.Document, category string) []types.Document {
	var out []types.Document
	for _, folder := range a.framework.Aliases[category] {
		out = append(out, byCategory[folder]...)
	}
	return out
}

// folderExists reports whether any aliased folder for the category is
// present on disk. A category can exist as an empty folder, which is
// shallow rather than missing.
func (a *Auditor) folderExists(category string) bool {
	for _, folder := range a.framework.Aliases[category] {
		if ok, err := afero.DirExists(a.fs, filepath.Join(a.cfg.CorpusDir, folder)); err == nil && ok {
			return true
		}
	}
	return false
}

func (a *Auditor) categoryGaps(cat types.FrameworkCategory, docs []types.Document, now time.Time) []types.KnowledgeGap {
	var gaps []types.KnowledgeGap
	gap := func(t types.GapType, desc string, topics []string) {
		gaps = append(gaps, types.KnowledgeGap{
			Category:        cat.Name,
			Type:            t,
			Description:     desc,
			SuggestedTopics: topics,
			Priority:        cat.Priority,
			DetectedAt:      now,
		})
	}

	if len(docs) == 0 && !a.folderExists(cat.Name) {
		gap(types.GapMissing,
			fmt.Sprintf("no folder for %q (aliases: %s)", cat.Name, strings.Join(a.framework.Aliases[cat.Name], ", ")),
			capTopics(cat.Subtopics))
		return gaps
	}

	if len(docs) < expectedMinimum(cat) {
		gap(types.GapShallow,
			fmt.Sprintf("%d documents, expected at least %d for %s depth", len(docs), expectedMinimum(cat), cat.Depth),
			capTopics(cat.Subtopics))
	}

	if missing := missingSubtopics(cat.Subtopics, docs); len(missing) > 0 {
		gap(types.GapSubtopics,
			fmt.Sprintf("%d of %d expected subtopics not found in content", len(missing), len(cat.Subtopics)),
			capTopics(missing))
	}

	if stale, oldCount := isStale(docs, now); stale {
		gap(types.GapStale,
			fmt.Sprintf("%d of %d documents older than %d days", oldCount, len(docs), int(FreshnessWindow.Hours()/24)),
			capTopics(cat.Subtopics))
	}
	return gaps
}

// coveragePercent is documents over the depth-scaled subtopic count,
// capped at 100 (R2.3). A category with no subtopics is fully covered
// by a single document.
func coveragePercent(cat types.FrameworkCategory, docCount int) float64 {
	expected := len(cat.Subtopics) * depthMultiplier(cat.Depth)
	if expected == 0 {
		if docCount > 0 {
			return 100
		}
		return 0
	}
	pct := float64(docCount) / float64(expected) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// expectedMinimum is the shallow threshold: half the subtopic count,
// at least one.
func expectedMinimum(cat types.FrameworkCategory) int {
	min := (len(cat.Subtopics) + 1) / 2
	if min < 1 {
		min = 1
	}
	return min
}

// missingSubtopics returns the subtopics whose words do not all appear
// in the category's aggregated lowercased text (R2.4).
func missingSubtopics(subtopics []string, docs []types.Document) []string {
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(strings.ToLower(doc.Content))
		sb.WriteByte('\n')
		sb.WriteString(strings.ToLower(doc.ID))
		sb.WriteByte('\n')
	}
	text := sb.String()

	var missing []string
	for _, topic := range subtopics {
		covered := true
		for _, word := range strings.Fields(strings.ToLower(topic)) {
			if !strings.Contains(text, word) {
				covered = false
				break
			}
		}
		if !covered {
			missing = append(missing, topic)
		}
	}
	sort.Strings(missing)
	return missing
}

// isStale reports whether more than half the documents are older than
// the freshness window (R2.5).
func isStale(docs []types.Document, now time.Time) (bool, int) {
	if len(docs) == 0 {
		return false, 0
	}
	cutoff := now.Add(-FreshnessWindow)
	old := 0
	for _, doc := range docs {
		if doc.Modified.Before(cutoff) {
			old++
		}
	}
	return old*2 > len(docs), old
}

func capTopics(topics []string) []string {
	if len(topics) <= maxSuggestedTopics {
		return append([]string(nil), topics...)
	}
	return append([]string(nil), topics[:maxSuggestedTopics]...)
}
