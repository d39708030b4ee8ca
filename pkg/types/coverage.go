// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Depth is a taxonomy category's target coverage depth.
// Per prd005-coverage R1.2.
type Depth string

const (
	DepthOverview     Depth = "overview"
	DepthIntermediate Depth = "intermediate"
	DepthDeep         Depth = "deep"
)

// Priority orders gaps and research topics.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// PriorityRank returns a sortable rank, lower is more urgent. Unknown
// priorities sort last.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// FrameworkCategory is one taxonomy category the corpus is audited
// against. Per prd005-coverage R1.1-R1.4.
type FrameworkCategory struct {
	// Name is the taxonomy category name. It maps onto physical folders
	// through the framework's alias table, not by convention.
	Name string `json:"name" yaml:"name"`

	// Description states what the category covers.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Depth is the target coverage depth.
	Depth Depth `json:"depth" yaml:"depth"`

	// Priority weights the category's gaps.
	Priority Priority `json:"priority" yaml:"priority"`

	// Subtopics lists the expected subtopics.
	Subtopics []string `json:"subtopics" yaml:"subtopics"`
}

// CoverageFramework is the versioned taxonomy document.
// Per prd005-coverage R1.1, R1.5.
type CoverageFramework struct {
	// Version identifies the taxonomy revision.
	Version string `json:"version" yaml:"version"`

	// Categories lists the taxonomy categories.
	Categories []FrameworkCategory `json:"categories" yaml:"categories"`

	// Aliases maps a taxonomy category name to the physical folder
	// names it covers. Validated at load: every category must resolve
	// to at least one alias entry or a same-name folder mapping.
	Aliases map[string][]string `json:"aliases" yaml:"aliases"`
}

// GapType classifies a detected coverage deficiency.
// Per prd005-coverage R2.2-R2.5.
type GapType string

const (
	// GapMissing means no aliased folder exists for the category.
	GapMissing GapType = "missing"

	// GapShallow means the category has too few documents for its
	// subtopic count.
	GapShallow GapType = "shallow"

	// GapStale means more than half the category's documents are older
	// than the freshness window.
	GapStale GapType = "stale"

	// GapSubtopics means expected subtopics do not appear anywhere in
	// the category's aggregated text.
	GapSubtopics GapType = "subtopics"
)

// KnowledgeGap is one detected deficiency between the framework and the
// corpus. Gaps are fully recomputed on every audit.
type KnowledgeGap struct {
	// Category is the taxonomy category name.
	Category string `json:"category" yaml:"category"`

	// Type classifies the gap.
	Type GapType `json:"type" yaml:"type"`

	// Description explains the deficiency.
	Description string `json:"description" yaml:"description"`

	// SuggestedTopics would close the gap.
	SuggestedTopics []string `json:"suggested_topics,omitempty" yaml:"suggested_topics,omitempty"`

	// Priority is inherited from the framework category.
	Priority Priority `json:"priority" yaml:"priority"`

	// DetectedAt is the audit timestamp.
	DetectedAt time.Time `json:"detected_at" yaml:"detected_at"`
}

// AuditResult is the persisted output of a coverage audit.
// Per prd005-coverage R2.1, R2.6.
type AuditResult struct {
	// AuditedAt is when the audit completed.
	AuditedAt time.Time `json:"audited_at" yaml:"audited_at"`

	// FrameworkVersion records the taxonomy revision audited against.
	FrameworkVersion string `json:"framework_version" yaml:"framework_version"`

	// Gaps lists all detected deficiencies.
	Gaps []KnowledgeGap `json:"gaps" yaml:"gaps"`

	// Coverage maps taxonomy category name to coverage percent [0,100].
	Coverage map[string]float64 `json:"coverage" yaml:"coverage"`
}

// TopicStatus is a research topic's lifecycle state.
// Per prd005-coverage R4.1: queued -> researching -> completed|blocked.
type TopicStatus string

const (
	TopicQueued      TopicStatus = "queued"
	TopicResearching TopicStatus = "researching"
	TopicCompleted   TopicStatus = "completed"
	TopicBlocked     TopicStatus = "blocked"
)

// ResearchTopic is a taxonomy-scoped unit of research work.
type ResearchTopic struct {
	// Name identifies the topic; dedupe key within the agenda.
	Name string `json:"name" yaml:"name"`

	// Category is the taxonomy category the topic belongs to.
	Category string `json:"category" yaml:"category"`

	// Priority orders the queue.
	Priority Priority `json:"priority" yaml:"priority"`

	// Depth hints how thoroughly to research, derived from the gap type
	// that produced the topic.
	Depth Depth `json:"depth" yaml:"depth"`

	// Status is the lifecycle state. Mutated only through agenda
	// transition operations.
	Status TopicStatus `json:"status" yaml:"status"`

	// QueuedAt orders topics within a priority tier.
	QueuedAt time.Time `json:"queued_at" yaml:"queued_at"`

	// CompletedAt is set on transition to completed.
	CompletedAt time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// ResearchSession is a time-boxed batch of topic work.
// Per prd005-coverage R5.1-R5.3.
type ResearchSession struct {
	// ID is a generated session identifier.
	ID string `json:"id" yaml:"id"`

	// StartedAt is the session start.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// EndedAt is zero while the session is open.
	EndedAt time.Time `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`

	// Topics lists topic names worked during the session.
	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty"`

	// FilesCreated lists corpus files written during the session.
	FilesCreated []string `json:"files_created,omitempty" yaml:"files_created,omitempty"`

	// SourcesUsed lists source IDs consulted during the session.
	SourcesUsed []string `json:"sources_used,omitempty" yaml:"sources_used,omitempty"`
}

// AgendaStats holds running averages across completed sessions.
type AgendaStats struct {
	// SessionsCompleted counts ended sessions.
	SessionsCompleted int `json:"sessions_completed" yaml:"sessions_completed"`

	// AvgTopicsPerSession is the mean topics researched per session.
	AvgTopicsPerSession float64 `json:"avg_topics_per_session" yaml:"avg_topics_per_session"`

	// AvgFilesPerSession is the mean files created per session.
	AvgFilesPerSession float64 `json:"avg_files_per_session" yaml:"avg_files_per_session"`
}

// ResearchAgenda is the persisted topic queue, session history, and
// latest audit. Per prd005-coverage R4.4. It is the coverage
// component's single cache document.
type ResearchAgenda struct {
	// LastUpdated is when the agenda was last written.
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`

	// LastAudit is the most recent audit result. Gaps inside it are
	// fully recomputed on every audit, never patched.
	LastAudit *AuditResult `json:"last_audit,omitempty" yaml:"last_audit,omitempty"`

	// Topics lists all topics, queued and finished.
	Topics []ResearchTopic `json:"topics" yaml:"topics"`

	// Sessions lists all sessions, newest last.
	Sessions []ResearchSession `json:"sessions,omitempty" yaml:"sessions,omitempty"`

	// Stats holds running averages.
	Stats AgendaStats `json:"stats" yaml:"stats"`
}
