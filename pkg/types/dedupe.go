// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DuplicateKind classifies the relation shared by a duplicate group.
// Per prd002-dedupe R2.1-R2.3.
type DuplicateKind string

const (
	// DuplicateExact groups documents with identical trimmed content.
	DuplicateExact DuplicateKind = "exact"

	// DuplicateNear groups documents whose similarity hashes differ in
	// fewer bit positions than the near threshold.
	DuplicateNear DuplicateKind = "near"

	// DuplicateSemantic groups documents whose keyword sets overlap
	// above the Jaccard threshold. Semantic groups may share members.
	DuplicateSemantic DuplicateKind = "semantic"
)

// DuplicateAction is the suggested handling for a duplicate group.
type DuplicateAction string

const (
	ActionArchive DuplicateAction = "archive"
	ActionMerge   DuplicateAction = "merge"
	ActionReview  DuplicateAction = "review"
)

// Fingerprint holds the derived identifiers for one document.
// Per prd002-dedupe R1.1-R1.5.
type Fingerprint struct {
	// DocumentID is the scanned document's ID.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// ContentHash is a hex SHA-256 over the trimmed content. Two
	// documents with equal hashes are byte-identical after trimming.
	ContentHash string `json:"content_hash" yaml:"content_hash"`

	// Simhash is a 64-bit similarity hash. Documents sharing most
	// vocabulary differ in few bit positions regardless of word order.
	Simhash uint64 `json:"simhash" yaml:"simhash"`

	// WordCount counts words in the document.
	WordCount int `json:"word_count" yaml:"word_count"`

	// FirstLine is the first non-empty line, for display.
	FirstLine string `json:"first_line" yaml:"first_line"`

	// Keywords are the top words by in-document frequency.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Size is the document size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// Modified is the document's modification time.
	Modified time.Time `json:"modified" yaml:"modified"`
}

// DuplicateGroup is a cluster of documents sharing one duplicate
// relation. Per prd002-dedupe R2.4-R2.6.
type DuplicateGroup struct {
	// Kind is the relation that formed the group.
	Kind DuplicateKind `json:"kind" yaml:"kind"`

	// DocumentIDs lists the member documents.
	DocumentIDs []string `json:"document_ids" yaml:"document_ids"`

	// Similarity is the group's similarity score in [0,1]. Exact groups
	// always report 1.
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// Action is the suggested handling.
	Action DuplicateAction `json:"action" yaml:"action"`

	// Reason explains the grouping in human terms.
	Reason string `json:"reason" yaml:"reason"`
}

// DedupeStats aggregates a duplicate scan. Per prd002-dedupe R3.3.
type DedupeStats struct {
	// DocumentsScanned counts documents fingerprinted.
	DocumentsScanned int `json:"documents_scanned" yaml:"documents_scanned"`

	// ExactGroups counts exact duplicate groups.
	ExactGroups int `json:"exact_groups" yaml:"exact_groups"`

	// NearGroups counts near duplicate groups.
	NearGroups int `json:"near_groups" yaml:"near_groups"`

	// SemanticGroups counts semantic duplicate groups.
	SemanticGroups int `json:"semantic_groups" yaml:"semantic_groups"`

	// BytesRecoverable sums the sizes of all but the newest document in
	// each exact group.
	BytesRecoverable int64 `json:"bytes_recoverable" yaml:"bytes_recoverable"`
}

// ArchiveEntry records one archival in the append-only archive log.
// Per prd002-dedupe R4.3.
type ArchiveEntry struct {
	// DocumentID is the archived document's former corpus ID.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// ArchivePath is where the document was moved.
	ArchivePath string `json:"archive_path" yaml:"archive_path"`

	// Reason is the caller-supplied justification.
	Reason string `json:"reason" yaml:"reason"`

	// ArchivedAt is when the move happened.
	ArchivedAt time.Time `json:"archived_at" yaml:"archived_at"`
}

// DedupeState is the persisted output of a duplicate scan.
// Per prd002-dedupe R3.4.
type DedupeState struct {
	// LastScan is when the scan completed.
	LastScan time.Time `json:"last_scan" yaml:"last_scan"`

	// Fingerprints holds one fingerprint per scanned document, sorted
	// by document ID.
	Fingerprints []Fingerprint `json:"fingerprints" yaml:"fingerprints"`

	// Groups holds the detected duplicate groups.
	Groups []DuplicateGroup `json:"groups" yaml:"groups"`

	// Stats aggregates the scan.
	Stats DedupeStats `json:"stats" yaml:"stats"`

	// ArchiveLog is the append-only record of archived documents. It
	// survives across scans.
	ArchiveLog []ArchiveEntry `json:"archive_log" yaml:"archive_log"`
}
