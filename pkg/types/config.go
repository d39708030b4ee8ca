// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CorpusConfig holds shared settings for components that scan the
// corpus tree.
type CorpusConfig struct {
	// CorpusDir is the root of the document tree. Top-level
	// subdirectories are categories.
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// IntelDir is the base directory for derived output (contains
	// cache/, index/).
	IntelDir string `json:"intel_dir" yaml:"intel_dir"`

	// Extension is the document file extension (default ".md").
	Extension string `json:"extension" yaml:"extension"`

	// Excluded lists reserved subdirectory names skipped by category
	// scans (default: drafts, archive, briefs).
	Excluded []string `json:"excluded,omitempty" yaml:"excluded,omitempty"`
}

// DedupeConfig holds settings for the duplicate detector.
// Per prd002-dedupe R3.1.
type DedupeConfig struct {
	CorpusConfig `yaml:",inline"`

	// ArchiveDir is where archived documents are moved (default
	// CorpusDir/archive).
	ArchiveDir string `json:"archive_dir,omitempty" yaml:"archive_dir,omitempty"`
}

// GraphConfig holds settings for the relationship graph builder.
// Per prd003-graph R4.2.
type GraphConfig struct {
	CorpusConfig `yaml:",inline"`

	// MaxAge is the default staleness bound for Load (default 1h).
	MaxAge time.Duration `json:"max_age" yaml:"max_age"`
}

// SourcesConfig holds settings for the source trust tracker.
type SourcesConfig struct {
	CorpusConfig `yaml:",inline"`

	// Agent is the default ingestion agent identity recorded in
	// provenance (default "corpus-engine").
	Agent string `json:"agent,omitempty" yaml:"agent,omitempty"`
}

// CoverageConfig holds settings for the coverage auditor.
// Per prd005-coverage R1.5.
type CoverageConfig struct {
	CorpusConfig `yaml:",inline"`

	// FrameworkFile is the coverage framework YAML path (default
	// coverage-framework.yaml in the working directory).
	FrameworkFile string `json:"framework_file" yaml:"framework_file"`
}

// MonitorConfig holds settings for the health monitor.
type MonitorConfig struct {
	CorpusConfig `yaml:",inline"`
}

// ExportConfig holds settings for the dashboard snapshot export.
// Per prd007-export R1.1.
type ExportConfig struct {
	// IntelDir is the base directory for derived output (contains
	// cache/, index/).
	IntelDir string `json:"intel_dir" yaml:"intel_dir"`
}

// EngineConfig groups all component configurations.
type EngineConfig struct {
	Dedupe   DedupeConfig   `json:"dedupe" yaml:"dedupe"`
	Graph    GraphConfig    `json:"graph" yaml:"graph"`
	Sources  SourcesConfig  `json:"sources" yaml:"sources"`
	Coverage CoverageConfig `json:"coverage" yaml:"coverage"`
	Monitor  MonitorConfig  `json:"monitor" yaml:"monitor"`
	Export   ExportConfig   `json:"export" yaml:"export"`
}
