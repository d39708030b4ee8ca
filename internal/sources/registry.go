// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/pdiddy/corpus-engine/internal/cache"
	"github.com/pdiddy/corpus-engine/internal/scanner"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

// ErrSourceNotFound reports feedback against an unregistered source.
var ErrSourceNotFound = errors.New("source not found")

// Scoring constants (R2.1). The score is always recomputed from the
// record's metrics, never adjusted in place.
const (
	// NeutralBaseline seeds sources missing from the reputable table.
	NeutralBaseline = 50

	// Content-volume bonus thresholds.
	contentBonusLow, contentBonusLowAt   = 5, 5
	contentBonusHigh, contentBonusHighAt = 10, 20

	// Citation-count bonus thresholds.
	citationBonusLow, citationBonusLowAt   = 5, 5
	citationBonusHigh, citationBonusHighAt = 10, 25

	// maxVoteBonus caps the positive net-vote contribution.
	maxVoteBonus = 10

	// flagWeight makes a flag a stronger negative than a downvote.
	flagWeight = 3

	// negativePenaltyFactor doubles the cost of a negative net vote so
	// sustained negative feedback subtracts more than the equivalent
	// positive feedback would add.
	negativePenaltyFactor = 2
)

// Trust tier score bands (R2.3).
const (
	tierVerifiedAt = 85
	tierTrustedAt  = 70
	tierNeutralAt  = 50
	tierCautiousAt = 30
)

const cacheFile = "sources.json"

// urlRe finds embedded source references in document text (R5.1).
var urlRe = regexp.MustCompile(`https?://[^\s)>\]"']+`)

// Tracker maintains the source registry for one corpus.
type Tracker struct {
	fs     afero.Fs
	cfg    types.SourcesConfig
	cache  *cache.Handle[types.SourceDB]
	logger *log.Logger
}

// NewTracker returns a tracker for cfg. A nil logger uses the package
// default.
func NewTracker(fsys afero.Fs, cfg types.SourcesConfig, logger *log.Logger) *Tracker {
	if cfg.Extension == "" {
		cfg.Extension = scanner.DefaultExtension
	}
	if len(cfg.Excluded) == 0 {
		cfg.Excluded = scanner.ReservedDirs
	}
	if cfg.Agent == "" {
		cfg.Agent = "corpus-engine"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		fs:     fsys,
		cfg:    cfg,
		cache:  cache.New[types.SourceDB](fsys, filepath.Join(cfg.IntelDir, "cache", cacheFile)),
		logger: logger,
	}
}

// load returns the registry, empty on cache miss.
func (t *Tracker) load() *types.SourceDB {
	db, _, ok := t.cache.Load()
	if !ok {
		db = &types.SourceDB{Sources: make(map[string]*types.SourceRecord)}
	}
	if db.Sources == nil {
		db.Sources = make(map[string]*types.SourceRecord)
	}
	return db
}

func (t *Tracker) store(db *types.SourceDB) error {
	db.LastRun = time.Now().UTC()
	if err := t.cache.Store(db, db.LastRun); err != nil {
		return fmt.Errorf("persisting source registry: %w", err)
	}
	return nil
}

// GetOrCreate looks up or registers the source behind rawURL, seeding
// score, tier, and tags from the reputable-domain table when the
// domain is known (R2.2).
func (t *Tracker) GetOrCreate(rawURL string) (*types.SourceRecord, error) {
	db := t.load()
	rec, created, err := getOrCreate(db, rawURL)
	if err != nil {
		return nil, err
	}
	if created {
		if err := t.store(db); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func getOrCreate(db *types.SourceDB, rawURL string) (rec *types.SourceRecord, created bool, err error) {
	key, srcType, err := Normalize(rawURL)
	if err != nil {
		return nil, false, err
	}

	if rec, ok := db.Sources[key]; ok {
		return rec, false, nil
	}

	baseline := NeutralBaseline
	var tags []string
	if seed, ok := reputableDomains[key]; ok {
		baseline = seed.score
		tags = append(tags, seed.tags...)
	}

	rec = &types.SourceRecord{
		ID:       key,
		Type:     srcType,
		Baseline: baseline,
		Tags:     tags,
		AddedAt:  time.Now().UTC(),
	}
	rescore(rec)
	db.Sources[key] = rec
	return rec, true, nil
}

// RecordIngestion registers that docID was saved from sourceURL: the
// source's content count rises, its score is recomputed, and a
// provenance record freezes the score at this moment (R3.1-R3.3). An
// empty sourceURL records sourceless provenance.
func (t *Tracker) RecordIngestion(docID, sourceURL, agent string) (*types.ProvenanceRecord, error) {
	if agent == "" {
		agent = t.cfg.Agent
	}
	db := t.load()
	now := time.Now().UTC()

	prov := types.ProvenanceRecord{
		DocumentID: docID,
		URL:        sourceURL,
		Agent:      agent,
		IngestedAt: now,
	}

	if sourceURL != "" {
		rec, _, err := getOrCreate(db, sourceURL)
		if err != nil {
			return nil, err
		}
		rec.Metrics.ContentCount++
		rec.Metrics.LastIngested = now
		rec.History = append(rec.History, types.SourceEvent{
			Kind: types.EventIngested,
			Note: docID,
			At:   now,
		})
		rescore(rec)

		prov.SourceID = rec.ID
		prov.ScoreAtIngestion = rec.Score
	}

	db.Provenance = append(db.Provenance, prov)
	if err := t.store(db); err != nil {
		return nil, err
	}
	return &prov, nil
}

// RecordFeedback applies an upvote, downvote, or flag to a registered
// source and recomputes its score and tier (R2.4). Unknown kinds are
// rejected; unknown sources return ErrSourceNotFound.
func (t *Tracker) RecordFeedback(sourceID string, kind types.SourceEventKind) error {
	db := t.load()
	rec, ok := db.Sources[sourceID]
	if !ok {
		return fmt.Errorf("feedback for %s: %w", sourceID, ErrSourceNotFound)
	}

	switch kind {
	case types.EventUpvoted:
		rec.Metrics.Upvotes++
	case types.EventDownvoted:
		rec.Metrics.Downvotes++
	case types.EventFlagged:
		rec.Metrics.Flags++
	default:
		return fmt.Errorf("unknown feedback kind %q", kind)
	}

	rec.History = append(rec.History, types.SourceEvent{Kind: kind, At: time.Now().UTC()})
	rescore(rec)
	return t.store(db)
}

// ScanAndUpdate scans every document for embedded URLs, registers any
// source not already known, and recomputes citation counts as the
// number of documents referencing each source (R5.1-R5.2). Recomputing
// rather than accumulating keeps repeated scans of an unchanged corpus
// idempotent.
func (t *Tracker) ScanAndUpdate(ctx context.Context) (filesScanned, newSources int, err error) {
	sc := scanner.New(t.fs, t.cfg.CorpusDir, scanner.Options{
		Extension: t.cfg.Extension,
		Exclude:   scanner.DefaultExclude(t.cfg.Excluded),
	}, t.logger)

	docs, err := sc.Scan(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("scanning corpus: %w", err)
	}

	db := t.load()

	// Citing documents per source, one count per document.
	citations := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, raw := range urlRe.FindAllString(doc.Content, -1) {
			key, _, nerr := Normalize(raw)
			if nerr != nil {
				t.logger.Debug("skipping unparseable url", "doc", doc.ID, "url", raw)
				continue
			}
			if !seen[key] {
				seen[key] = true
				citations[key]++
			}
			if _, ok := db.Sources[key]; !ok {
				if _, _, cerr := getOrCreate(db, raw); cerr == nil {
					newSources++
				}
			}
		}
	}

	ids := make([]string, 0, len(db.Sources))
	for id := range db.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rec := db.Sources[id]
		rec.Metrics.CitationCount = citations[id]
		rescore(rec)
	}

	if err := t.store(db); err != nil {
		return 0, 0, err
	}
	t.logger.Info("source scan complete", "files", len(docs), "new_sources", newSources)
	return len(docs), newSources, nil
}

// Load returns the persisted registry, or ok=false on a cache miss.
func (t *Tracker) Load() (*types.SourceDB, bool) {
	db, _, ok := t.cache.Load()
	return db, ok
}

// rescore recomputes a record's score and tier from its baseline and
// metrics (R2.1). Deterministic: identical metrics always yield the
// identical score.
func rescore(rec *types.SourceRecord) {
	rec.Score = ScoreOf(rec.Baseline, rec.Metrics)
	rec.Tier = TierOf(rec.Score)
}

// ScoreOf computes the quality score from a baseline and metrics,
// clamped to [0,100].
func ScoreOf(baseline int, m types.SourceMetrics) int {
	score := baseline

	switch {
	case m.ContentCount >= contentBonusHighAt:
		score += contentBonusHigh
	case m.ContentCount >= contentBonusLowAt:
		score += contentBonusLow
	}

	switch {
	case m.CitationCount >= citationBonusHighAt:
		score += citationBonusHigh
	case m.CitationCount >= citationBonusLowAt:
		score += citationBonusLow
	}

	net := m.Upvotes - m.Downvotes - flagWeight*m.Flags
	switch {
	case net > 0:
		if net > maxVoteBonus {
			net = maxVoteBonus
		}
		score += net
	case net < 0:
		score += negativePenaltyFactor * net
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// TierOf bands a score into its trust tier (R2.3).
func TierOf(score int) types.TrustTier {
	switch {
	case score >= tierVerifiedAt:
		return types.TierVerified
	case score >= tierTrustedAt:
		return types.TierTrusted
	case score >= tierNeutralAt:
		return types.TierNeutral
	case score >= tierCautiousAt:
		return types.TierCautious
	default:
		return types.TierUntrusted
	}
}
