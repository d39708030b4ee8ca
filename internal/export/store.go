// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export mirrors the component caches into a SQLite database
// for dashboards and ad-hoc queries. The JSON caches stay the source
// of truth; the database is a disposable snapshot.
// Implements: prd007-export (R1-R3); docs/ARCHITECTURE § Export.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "corpus.db"
)

// Store manages the dashboard snapshot SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the snapshot database at
// cfg.IntelDir/index/corpus.db, creating the schema if it does not
// exist (R1.1, R1.2).
func NewStore(cfg types.ExportConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.IntelDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			category TEXT,
			word_count INTEGER,
			size INTEGER,
			modified TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS duplicate_groups (
			kind TEXT NOT NULL,
			similarity REAL,
			action TEXT,
			reason TEXT,
			members TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			title TEXT,
			category TEXT,
			keywords TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			type TEXT NOT NULL,
			weight REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id)`,
		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			type TEXT,
			score INTEGER,
			tier TEXT,
			content_count INTEGER,
			citation_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS gaps (
			category TEXT NOT NULL,
			type TEXT NOT NULL,
			priority TEXT,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS health (
			category TEXT PRIMARY KEY,
			file_count INTEGER,
			total_bytes INTEGER,
			avg_age_days REAL,
			score INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Input carries the component caches to snapshot. Nil fields leave
// their tables untouched, so partial snapshots compose.
type Input struct {
	Documents []types.Document
	Dedupe    *types.DedupeState
	Graph     *types.KnowledgeGraph
	Sources   *types.SourceDB
	Agenda    *types.ResearchAgenda
	Monitor   *types.MonitorState
}

// Summary holds row counts from a snapshot run (R3.1).
type Summary struct {
	Documents int
	Groups    int
	Nodes     int
	Edges     int
	Sources   int
	Gaps      int
	Health    int
}

// Snapshot replaces the snapshot tables from the given caches in one
// transaction, so a concurrent reader sees either the old or the new
// snapshot (R2.1-R2.3). Progress goes to w as one line per table.
func (s *Store) Snapshot(ctx context.Context, w io.Writer, in Input) (Summary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var summary Summary
	if in.Documents != nil {
		if summary.Documents, err = snapshotDocuments(ctx, tx, in.Documents); err != nil {
			return Summary{}, err
		}
		fmt.Fprintf(w, "documents: %d rows\n", summary.Documents)
	}
	if in.Dedupe != nil {
		if summary.Groups, err = snapshotGroups(ctx, tx, in.Dedupe); err != nil {
			return Summary{}, err
		}
		fmt.Fprintf(w, "duplicate_groups: %d rows\n", summary.Groups)
	}
	if in.Graph != nil {
		if summary.Nodes, summary.Edges, err = snapshotGraph(ctx, tx, in.Graph); err != nil {
			return Summary{}, err
		}
		fmt.Fprintf(w, "nodes: %d rows, edges: %d rows\n", summary.Nodes, summary.Edges)
	}
	if in.Sources != nil {
		if summary.Sources, err = snapshotSources(ctx, tx, in.Sources); err != nil {
			return Summary{}, err
		}
		fmt.Fprintf(w, "sources: %d rows\n", summary.Sources)
	}
	if in.Agenda != nil && in.Agenda.LastAudit != nil {
		if summary.Gaps, err = snapshotGaps(ctx, tx, in.Agenda.LastAudit); err != nil {
			return Summary{}, err
		}
		fmt.Fprintf(w, "gaps: %d rows\n", summary.Gaps)
	}
	if in.Monitor != nil {
		if summary.Health, err = snapshotHealth(ctx, tx, in.Monitor); err != nil {
			return Summary{}, err
		}
		fmt.Fprintf(w, "health: %d rows\n", summary.Health)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (key, value) VALUES ('snapshot_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return Summary{}, fmt.Errorf("recording snapshot time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("committing snapshot: %w", err)
	}
	return summary, nil
}

func snapshotDocuments(ctx context.Context, tx *sql.Tx, docs []types.Document) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return 0, fmt.Errorf("clearing documents: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (id, category, word_count, size, modified) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing document insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		_, err := stmt.ExecContext(ctx, doc.ID, doc.Category, doc.WordCount, doc.Size,
			doc.Modified.UTC().Format(time.RFC3339))
		if err != nil {
			return 0, fmt.Errorf("inserting document %s: %w", doc.ID, err)
		}
	}
	return len(docs), nil
}

func snapshotGroups(ctx context.Context, tx *sql.Tx, state *types.DedupeState) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM duplicate_groups`); err != nil {
		return 0, fmt.Errorf("clearing duplicate_groups: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO duplicate_groups (kind, similarity, action, reason, members) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing group insert: %w", err)
	}
	defer stmt.Close()

	for _, group := range state.Groups {
		membersJSON, _ := json.Marshal(group.DocumentIDs)
		_, err := stmt.ExecContext(ctx, string(group.Kind), group.Similarity,
			string(group.Action), group.Reason, string(membersJSON))
		if err != nil {
			return 0, fmt.Errorf("inserting %s group: %w", group.Kind, err)
		}
	}
	return len(state.Groups), nil
}

func snapshotGraph(ctx context.Context, tx *sql.Tx, graph *types.KnowledgeGraph) (int, int, error) {
	for _, table := range []string{"nodes", "edges"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return 0, 0, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (id, title, category, keywords) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing node insert: %w", err)
	}
	defer nodeStmt.Close()

	for _, node := range graph.Nodes {
		keywordsJSON, _ := json.Marshal(node.Keywords)
		if _, err := nodeStmt.ExecContext(ctx, node.ID, node.Title, node.Category, string(keywordsJSON)); err != nil {
			return 0, 0, fmt.Errorf("inserting node %s: %w", node.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (from_id, to_id, type, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, edge := range graph.Edges {
		if _, err := edgeStmt.ExecContext(ctx, edge.From, edge.To, string(edge.Type), edge.Weight); err != nil {
			return 0, 0, fmt.Errorf("inserting edge %s->%s: %w", edge.From, edge.To, err)
		}
	}
	return len(graph.Nodes), len(graph.Edges), nil
}

func snapshotSources(ctx context.Context, tx *sql.Tx, db *types.SourceDB) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM sources`); err != nil {
		return 0, fmt.Errorf("clearing sources: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sources (id, type, score, tier, content_count, citation_count) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing source insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, src := range db.Sources {
		_, err := stmt.ExecContext(ctx, src.ID, string(src.Type), src.Score, string(src.Tier),
			src.Metrics.ContentCount, src.Metrics.CitationCount)
		if err != nil {
			return 0, fmt.Errorf("inserting source %s: %w", src.ID, err)
		}
		count++
	}
	return count, nil
}

func snapshotGaps(ctx context.Context, tx *sql.Tx, audit *types.AuditResult) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM gaps`); err != nil {
		return 0, fmt.Errorf("clearing gaps: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO gaps (category, type, priority, description) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing gap insert: %w", err)
	}
	defer stmt.Close()

	for _, gap := range audit.Gaps {
		_, err := stmt.ExecContext(ctx, gap.Category, string(gap.Type), string(gap.Priority), gap.Description)
		if err != nil {
			return 0, fmt.Errorf("inserting gap for %s: %w", gap.Category, err)
		}
	}
	return len(audit.Gaps), nil
}

func snapshotHealth(ctx context.Context, tx *sql.Tx, state *types.MonitorState) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM health`); err != nil {
		return 0, fmt.Errorf("clearing health: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO health (category, file_count, total_bytes, avg_age_days, score) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing health insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range state.Health {
		_, err := stmt.ExecContext(ctx, h.Category, h.FileCount, h.TotalBytes, h.AvgAgeDays, h.Score)
		if err != nil {
			return 0, fmt.Errorf("inserting health for %s: %w", h.Category, err)
		}
	}
	return len(state.Health), nil
}
