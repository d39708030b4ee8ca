// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SourceType classifies a normalized source origin.
// Per prd004-sources R1.2.
type SourceType string

const (
	SourceDomain SourceType = "domain"
	SourceVideo  SourceType = "video"
	SourceSocial SourceType = "social"
)

// TrustTier is a discrete banding of a source's quality score.
// Per prd004-sources R2.3. The tier is always a pure function of the
// current score and is never settable independently.
type TrustTier string

const (
	TierVerified  TrustTier = "verified"
	TierTrusted   TrustTier = "trusted"
	TierNeutral   TrustTier = "neutral"
	TierCautious  TrustTier = "cautious"
	TierUntrusted TrustTier = "untrusted"
)

// SourceEventKind labels an entry in a source's history log.
type SourceEventKind string

const (
	EventIngested  SourceEventKind = "ingested"
	EventCited     SourceEventKind = "cited"
	EventUpvoted   SourceEventKind = "upvoted"
	EventDownvoted SourceEventKind = "downvoted"
	EventFlagged   SourceEventKind = "flagged"
)

// SourceEvent is one append-only history entry on a source record.
type SourceEvent struct {
	Kind SourceEventKind `json:"kind" yaml:"kind"`
	Note string          `json:"note,omitempty" yaml:"note,omitempty"`
	At   time.Time       `json:"at" yaml:"at"`
}

// SourceMetrics holds the running counters that feed the quality score.
// Per prd004-sources R2.1.
type SourceMetrics struct {
	// ContentCount counts documents ingested from this source.
	ContentCount int `json:"content_count" yaml:"content_count"`

	// CitationCount counts citations of this source by other documents.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// Upvotes and Downvotes are manual feedback counters. A flag is
	// recorded as a stronger negative than a plain downvote.
	Upvotes   int `json:"upvotes" yaml:"upvotes"`
	Downvotes int `json:"downvotes" yaml:"downvotes"`

	// Flags counts flag events.
	Flags int `json:"flags" yaml:"flags"`

	// LastIngested is the most recent ingestion time, zero if never.
	LastIngested time.Time `json:"last_ingested,omitempty" yaml:"last_ingested,omitempty"`
}

// SourceRecord is one normalized origin with its quality score.
// Per prd004-sources R1.1, R2.1-R2.4.
type SourceRecord struct {
	// ID is the normalized source key, typically a domain.
	ID string `json:"id" yaml:"id"`

	// Type classifies the origin.
	Type SourceType `json:"type" yaml:"type"`

	// Score is the quality score in [0,100], recomputed from Metrics
	// every time a scoring-relevant event is recorded.
	Score int `json:"score" yaml:"score"`

	// Tier is the deterministic banding of Score.
	Tier TrustTier `json:"tier" yaml:"tier"`

	// Baseline is the seed score from the reputable-domain table, or
	// the neutral default.
	Baseline int `json:"baseline" yaml:"baseline"`

	// Tags are free-form labels, seeded for known-reputable domains.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Metrics feed the score.
	Metrics SourceMetrics `json:"metrics" yaml:"metrics"`

	// History is the append-only log of scoring-relevant events.
	History []SourceEvent `json:"history,omitempty" yaml:"history,omitempty"`

	// AddedAt is when the record was created.
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

// ProvenanceRecord links one ingested document to its source.
// Per prd004-sources R3.1-R3.3.
type ProvenanceRecord struct {
	// DocumentID is the ingested document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// SourceID is the normalized source key, empty for sourceless
	// documents.
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`

	// URL is the originating URL, if any.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Agent identifies the ingestion path (e.g. "research-session",
	// "manual").
	Agent string `json:"agent" yaml:"agent"`

	// Transformations lists processing applied between fetch and save.
	Transformations []string `json:"transformations,omitempty" yaml:"transformations,omitempty"`

	// ScoreAtIngestion freezes the source's quality score at the moment
	// of ingestion. It does not track later score changes.
	ScoreAtIngestion int `json:"score_at_ingestion" yaml:"score_at_ingestion"`

	// IngestedAt is the ingestion timestamp.
	IngestedAt time.Time `json:"ingested_at" yaml:"ingested_at"`
}

// SourceDB is the persisted source-quality database.
// Per prd004-sources R4.1.
type SourceDB struct {
	// LastRun is when the registry was last written.
	LastRun time.Time `json:"last_run" yaml:"last_run"`

	// Sources maps source ID to record.
	Sources map[string]*SourceRecord `json:"sources" yaml:"sources"`

	// Provenance lists ingestion records in order.
	Provenance []ProvenanceRecord `json:"provenance,omitempty" yaml:"provenance,omitempty"`
}

// SourceReport is the human-facing registry summary.
// Per prd004-sources R6.1-R6.3.
type SourceReport struct {
	// TotalSources counts registered sources.
	TotalSources int `json:"total_sources" yaml:"total_sources"`

	// TierCounts maps tier to source count.
	TierCounts map[TrustTier]int `json:"tier_counts" yaml:"tier_counts"`

	// Sources lists all records sorted by score descending.
	Sources []*SourceRecord `json:"sources" yaml:"sources"`

	// Concerns lists derived issues (low-trust sources, high-volume
	// unverified sources, stale sources).
	Concerns []string `json:"concerns,omitempty" yaml:"concerns,omitempty"`

	// Recommendations suggest follow-up actions for the concerns.
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}
