// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Document is a corpus file snapshot produced by the scanner.
// Per prd001-scanner R1.2-R1.4. Documents are materialized fresh on
// every scan and never persisted on their own; only derived structures
// are cached.
type Document struct {
	// ID is the path relative to the corpus root (slash-separated).
	ID string `json:"id" yaml:"id"`

	// Category is the top-level directory name. Documents at the corpus
	// root use "uncategorized".
	Category string `json:"category" yaml:"category"`

	// Content is the raw file text.
	Content string `json:"content" yaml:"content"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// WordCount counts whitespace-separated tokens in Content.
	WordCount int `json:"word_count" yaml:"word_count"`

	// Modified is the filesystem modification time.
	Modified time.Time `json:"modified" yaml:"modified"`

	// Created is the filesystem creation time where available; falls
	// back to Modified on filesystems that do not expose it.
	Created time.Time `json:"created" yaml:"created"`
}
