// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ContentHealth is a per-category health summary.
// Per prd006-monitor R1.1-R1.3.
type ContentHealth struct {
	// Category is the corpus category name.
	Category string `json:"category" yaml:"category"`

	// FileCount counts documents in the category.
	FileCount int `json:"file_count" yaml:"file_count"`

	// TotalBytes sums document sizes.
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`

	// AvgAgeDays is the mean document age in days.
	AvgAgeDays float64 `json:"avg_age_days" yaml:"avg_age_days"`

	// OldestDays and NewestDays are the extreme document ages in days.
	OldestDays float64 `json:"oldest_days" yaml:"oldest_days"`
	NewestDays float64 `json:"newest_days" yaml:"newest_days"`

	// Score starts at 100 and drops by fixed penalties for staleness,
	// sparsity, and very old outliers.
	Score int `json:"score" yaml:"score"`

	// Issues explain each penalty applied.
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// SuggestionKind labels an actionable suggestion.
// Per prd006-monitor R2.1.
type SuggestionKind string

const (
	SuggestRefresh SuggestionKind = "refresh"
	SuggestExpand  SuggestionKind = "expand"
	SuggestEssay   SuggestionKind = "essay"
	SuggestPromote SuggestionKind = "promote"
)

// Suggestion is one actionable item derived from health signals.
type Suggestion struct {
	// ID embeds the kind, category, and a unix timestamp; the dismissal
	// window is derived from the timestamp suffix.
	ID string `json:"id" yaml:"id"`

	// Kind labels the action.
	Kind SuggestionKind `json:"kind" yaml:"kind"`

	// Category is the corpus category the suggestion targets.
	Category string `json:"category" yaml:"category"`

	// Text is the human-facing suggestion.
	Text string `json:"text" yaml:"text"`

	// Priority orders suggestions.
	Priority Priority `json:"priority" yaml:"priority"`
}

// MonitorState is the persisted monitor output.
// Per prd006-monitor R3.1.
type MonitorState struct {
	// LastRun is when the monitor scan completed.
	LastRun time.Time `json:"last_run" yaml:"last_run"`

	// Health holds one report per category, sorted by category.
	Health []ContentHealth `json:"health" yaml:"health"`

	// Dismissed maps suggestion ID to dismissal time. Entries expire
	// after the mute window.
	Dismissed map[string]time.Time `json:"dismissed,omitempty" yaml:"dismissed,omitempty"`
}
