// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scanner walks the corpus tree and yields document snapshots.
// Every other engine component runs on its output; the scanner itself
// never mutates anything.
// Implements: prd001-scanner (R1-R3); docs/ARCHITECTURE § Scanner.
package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// DefaultExtension is the corpus document extension.
const DefaultExtension = ".md"

// ReservedDirs are subtree names excluded from category scans (R1.5).
var ReservedDirs = []string{"drafts", "archive", "briefs"}

// rootCategory is assigned to documents sitting at the corpus root.
const rootCategory = "uncategorized"

// Options configures a scan.
type Options struct {
	// Extension filters files; empty uses DefaultExtension.
	Extension string

	// Exclude reports whether the slash-separated relative path should
	// be skipped, applied to directories (pruning the subtree) and
	// files alike. Nil uses DefaultExclude(ReservedDirs).
	Exclude func(rel string) bool
}

// DefaultExclude returns a predicate that skips hidden names and any
// subtree whose top-level segment is in excluded.
func DefaultExclude(excluded []string) func(string) bool {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}
	return func(rel string) bool {
		if strings.HasPrefix(filepath.Base(rel), ".") {
			return true
		}
		top := rel
		if i := strings.Index(rel, "/"); i >= 0 {
			top = rel[:i]
		}
		return skip[top]
	}
}

// Scanner enumerates corpus documents. It runs against any afero.Fs so
// tests can use an in-memory filesystem.
type Scanner struct {
	fs     afero.Fs
	root   string
	opts   Options
	logger *log.Logger
}

// New returns a scanner rooted at root. A nil logger uses the package
// default.
func New(fsys afero.Fs, root string, opts Options, logger *log.Logger) *Scanner {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Exclude == nil {
		opts.Exclude = DefaultExclude(ReservedDirs)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{fs: fsys, root: root, opts: opts, logger: logger}
}

// Scan walks the tree and returns every eligible document, sorted by
// ID. Unreadable files are skipped with a debug note, never fatal
// (R2.1). Symlinked directories are not followed, so link loops cannot
// recurse (R2.2).
func (s *Scanner) Scan(ctx context.Context) ([]types.Document, error) {
	var docs []types.Document

	err := afero.Walk(s.fs, s.root, func(path string, info fs.FileInfo, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			s.logger.Debug("skipping unreadable entry", "path", path, "err", walkErr)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if s.opts.Exclude(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() || !strings.HasSuffix(path, s.opts.Extension) {
			return nil
		}

		content, err := afero.ReadFile(s.fs, path)
		if err != nil {
			s.logger.Debug("skipping unreadable document", "path", path, "err", err)
			return nil
		}

		docs = append(docs, types.Document{
			ID:        rel,
			Category:  categoryOf(rel),
			Content:   string(content),
			Size:      info.Size(),
			WordCount: len(strings.Fields(string(content))),
			Modified:  info.ModTime(),
			Created:   createdTime(info),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Categories returns the distinct category names present in docs,
// sorted.
func Categories(docs []types.Document) []string {
	seen := make(map[string]bool)
	for _, d := range docs {
		seen[d.Category] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func categoryOf(rel string) string {
	if i := strings.Index(rel, "/"); i >= 0 {
		return rel[:i]
	}
	return rootCategory
}

// createdTime returns the filesystem creation time where the platform
// exposes one. The portable fallback is the modification time.
func createdTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
