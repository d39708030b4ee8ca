// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/corpus-engine/internal/cache"
	"github.com/pdiddy/corpus-engine/internal/scanner"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

// ErrDocumentNotFound reports an archive target that does not exist in
// the corpus.
var ErrDocumentNotFound = errors.New("document not found")

// fingerprintWorkers bounds parallel fingerprint computation. Results
// land in pre-allocated slots so grouping never depends on scheduling
// order.
const fingerprintWorkers = 8

const cacheFile = "dedupe.json"

// Detector runs duplicate scans and archival over one corpus root.
type Detector struct {
	fs     afero.Fs
	cfg    types.DedupeConfig
	cache  *cache.Handle[types.DedupeState]
	logger *log.Logger
}

// NewDetector returns a detector for cfg. A nil logger uses the package
// default.
func NewDetector(fsys afero.Fs, cfg types.DedupeConfig, logger *log.Logger) *Detector {
	if cfg.Extension == "" {
		cfg.Extension = scanner.DefaultExtension
	}
	if len(cfg.Excluded) == 0 {
		cfg.Excluded = scanner.ReservedDirs
	}
	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = filepath.Join(cfg.CorpusDir, "archive")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Detector{
		fs:     fsys,
		cfg:    cfg,
		cache:  cache.New[types.DedupeState](fsys, filepath.Join(cfg.IntelDir, "cache", cacheFile)),
		logger: logger,
	}
}

// Load returns the cached scan state, or ok=false on a cache miss.
func (d *Detector) Load() (*types.DedupeState, bool) {
	state, _, ok := d.cache.Load()
	return state, ok
}

// Scan fingerprints the whole corpus, groups duplicates, and persists
// the state (R3.1-R3.4). The cache is only written after the entire
// scan completes. Progress goes to w as one line per group plus a
// trailing summary.
func (d *Detector) Scan(ctx context.Context, w io.Writer) (*types.DedupeState, error) {
	sc := scanner.New(d.fs, d.cfg.CorpusDir, scanner.Options{
		Extension: d.cfg.Extension,
		Exclude:   scanner.DefaultExclude(d.cfg.Excluded),
	}, d.logger)

	docs, err := sc.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}

	fps, err := d.fingerprintAll(ctx, docs)
	if err != nil {
		return nil, err
	}

	groups := FindDuplicates(fps)

	state := &types.DedupeState{
		LastScan:     time.Now().UTC(),
		Fingerprints: fps,
		Groups:       groups,
		Stats:        computeStats(fps, groups),
	}

	// The archive log survives across scans.
	if prior, ok := d.Load(); ok {
		state.ArchiveLog = prior.ArchiveLog
	}

	if err := d.cache.Store(state, state.LastScan); err != nil {
		return nil, fmt.Errorf("persisting dedupe state: %w", err)
	}

	for _, g := range groups {
		fmt.Fprintf(w, "%-8s %.2f  %v\n", g.Kind, g.Similarity, g.DocumentIDs)
	}
	fmt.Fprintf(w, "\nscanned: %d, exact: %d, near: %d, semantic: %d, recoverable: %d bytes\n",
		state.Stats.DocumentsScanned, state.Stats.ExactGroups,
		state.Stats.NearGroups, state.Stats.SemanticGroups,
		state.Stats.BytesRecoverable)

	return state, nil
}

// fingerprintAll computes fingerprints with bounded parallelism. docs
// arrive sorted from the scanner; each result lands in its document's
// slot so the output keeps that order.
func (d *Detector) fingerprintAll(ctx context.Context, docs []types.Document) ([]types.Fingerprint, error) {
	fps := make([]types.Fingerprint, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fingerprintWorkers)

	for i := range docs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			fps[i] = ComputeFingerprint(docs[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fingerprinting corpus: %w", err)
	}
	return fps, nil
}

// computeStats aggregates the scan. Recoverable bytes count all but the
// newest document per exact group (R3.3).
func computeStats(fps []types.Fingerprint, groups []types.DuplicateGroup) types.DedupeStats {
	stats := types.DedupeStats{DocumentsScanned: len(fps)}

	byID := make(map[string]types.Fingerprint, len(fps))
	for _, fp := range fps {
		byID[fp.DocumentID] = fp
	}

	for _, g := range groups {
		switch g.Kind {
		case types.DuplicateExact:
			stats.ExactGroups++
			stats.BytesRecoverable += recoverableBytes(byID, g.DocumentIDs)
		case types.DuplicateNear:
			stats.NearGroups++
		case types.DuplicateSemantic:
			stats.SemanticGroups++
		}
	}
	return stats
}

func recoverableBytes(byID map[string]types.Fingerprint, ids []string) int64 {
	newest := -1
	var newestTime time.Time
	for i, id := range ids {
		if fp, ok := byID[id]; ok && (newest < 0 || fp.Modified.After(newestTime)) {
			newest = i
			newestTime = fp.Modified
		}
	}

	var total int64
	for i, id := range ids {
		if i == newest {
			continue
		}
		total += byID[id].Size
	}
	return total
}

// Archive moves a document out of the active corpus into the archive
// area, preserving its category path, and appends an archive log entry
// (R4.1-R4.3). Nothing is deleted. A missing document returns
// ErrDocumentNotFound.
func (d *Detector) Archive(ctx context.Context, docID, reason string) (string, error) {
	src := filepath.Join(d.cfg.CorpusDir, filepath.FromSlash(docID))
	if _, err := d.fs.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("archiving %s: %w", docID, ErrDocumentNotFound)
		}
		return "", fmt.Errorf("archiving %s: %w", docID, err)
	}

	dst := filepath.Join(d.cfg.ArchiveDir, filepath.FromSlash(docID))
	if err := d.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}
	if err := d.fs.Rename(src, dst); err != nil {
		return "", fmt.Errorf("moving %s to archive: %w", docID, err)
	}

	state, builtAt, ok := d.cache.Load()
	if !ok {
		state = &types.DedupeState{}
		builtAt = time.Now().UTC()
	}
	state.ArchiveLog = append(state.ArchiveLog, types.ArchiveEntry{
		DocumentID:  docID,
		ArchivePath: filepath.ToSlash(dst),
		Reason:      reason,
		ArchivedAt:  time.Now().UTC(),
	})

	if err := d.cache.Store(state, builtAt); err != nil {
		return "", fmt.Errorf("persisting archive log: %w", err)
	}

	d.logger.Info("archived document", "id", docID, "dest", dst)
	return filepath.ToSlash(dst), nil
}
