// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scanner

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

func memCorpus(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}
	return fsys
}

func scanIDs(docs []types.Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

func TestScanYieldsSortedDocuments(t *testing.T) {
	fsys := memCorpus(t, map[string]string{
		"kb/science/physics.md":  "# Physics\nQuantum notes.",
		"kb/science/biology.md":  "# Biology\nCell notes.",
		"kb/history/rome.md":     "# Rome\nEmpire notes.",
		"kb/readme.md":           "Corpus readme.",
		"kb/history/figures.txt": "not a document",
	})

	s := New(fsys, "kb", Options{}, nil)
	docs, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"history/rome.md",
		"readme.md",
		"science/biology.md",
		"science/physics.md",
	}, scanIDs(docs))
}

func TestScanCategoryDerivation(t *testing.T) {
	fsys := memCorpus(t, map[string]string{
		"kb/science/physics.md": "content",
		"kb/notes.md":           "content",
	})

	s := New(fsys, "kb", Options{}, nil)
	docs, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byID := make(map[string]types.Document)
	for _, d := range docs {
		byID[d.ID] = d
	}
	assert.Equal(t, "uncategorized", byID["notes.md"].Category)
	assert.Equal(t, "science", byID["science/physics.md"].Category)
}

func TestScanSkipsReservedAndHidden(t *testing.T) {
	fsys := memCorpus(t, map[string]string{
		"kb/science/physics.md":  "keep",
		"kb/drafts/wip.md":       "skip",
		"kb/archive/old.md":      "skip",
		"kb/briefs/daily.md":     "skip",
		"kb/.obsidian/config.md": "skip",
	})

	s := New(fsys, "kb", Options{}, nil)
	docs, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"science/physics.md"}, scanIDs(docs))
}

func TestScanCustomExcludePredicate(t *testing.T) {
	fsys := memCorpus(t, map[string]string{
		"kb/science/physics.md": "keep",
		"kb/scratch/temp.md":    "skip",
	})

	exclude := func(rel string) bool { return rel == "scratch" }
	s := New(fsys, "kb", Options{Exclude: exclude}, nil)
	docs, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"science/physics.md"}, scanIDs(docs))
}

func TestScanWordCountAndSize(t *testing.T) {
	fsys := memCorpus(t, map[string]string{
		"kb/science/note.md": "one two three",
	})

	s := New(fsys, "kb", Options{}, nil)
	docs, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, 3, docs[0].WordCount)
	assert.Equal(t, int64(13), docs[0].Size)
}

func TestScanCancelledContext(t *testing.T) {
	fsys := memCorpus(t, map[string]string{"kb/a/x.md": "content"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(fsys, "kb", Options{}, nil)
	_, err := s.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCategories(t *testing.T) {
	docs := []types.Document{
		{Category: "science"},
		{Category: "history"},
		{Category: "science"},
	}
	assert.Equal(t, []string{"history", "science"}, Categories(docs))
}
