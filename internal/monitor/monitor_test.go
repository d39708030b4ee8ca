// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package monitor

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testMonitor(fsys afero.Fs) *Monitor {
	m := NewMonitor(fsys, types.MonitorConfig{
		CorpusConfig: types.CorpusConfig{CorpusDir: "notes", IntelDir: "intel"},
	}, nil)
	m.now = func() time.Time { return testNow }
	return m
}

func docAged(days float64, size int64) types.Document {
	return types.Document{
		Size:     size,
		Modified: testNow.Add(-time.Duration(days * 24 * float64(time.Hour))),
	}
}

func TestAnalyzeCategoryHealthy(t *testing.T) {
	docs := []types.Document{docAged(1, 100), docAged(5, 200), docAged(10, 300)}
	h := AnalyzeCategory("golang", docs, testNow)

	assert.Equal(t, 100, h.Score)
	assert.Empty(t, h.Issues)
	assert.Equal(t, 3, h.FileCount)
	assert.Equal(t, int64(600), h.TotalBytes)
	assert.InDelta(t, 16.0/3.0, h.AvgAgeDays, 1e-9)
	assert.InDelta(t, 10, h.OldestDays, 1e-9)
	assert.InDelta(t, 1, h.NewestDays, 1e-9)
}

func TestAnalyzeCategoryStacksPenalties(t *testing.T) {
	// Two files averaging 80 days with a 130-day outlier: very stale
	// (-30), sparse (-20), outlier (-10).
	docs := []types.Document{docAged(30, 100), docAged(130, 100)}
	h := AnalyzeCategory("history", docs, testNow)

	assert.Equal(t, 40, h.Score)
	assert.Len(t, h.Issues, 3)
}

func TestAnalyzeCategoryStaleBandsExclusive(t *testing.T) {
	docs := []types.Document{docAged(45, 1), docAged(45, 1), docAged(45, 1)}
	h := AnalyzeCategory("ml", docs, testNow)

	assert.Equal(t, 85, h.Score)
	assert.Len(t, h.Issues, 1)
}

func TestAnalyzeCategoryEmpty(t *testing.T) {
	h := AnalyzeCategory("void", nil, testNow)
	assert.Equal(t, 100, h.Score)
	assert.Zero(t, h.FileCount)
}

func TestScanPersistsHealthPerCategory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	m := testMonitor(fsys)
	require.NoError(t, afero.WriteFile(fsys, "notes/golang/a.md", []byte("channels"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "notes/ml/b.md", []byte("gradients"), 0o644))
	for _, p := range []string{"notes/golang/a.md", "notes/ml/b.md"} {
		require.NoError(t, fsys.Chtimes(p, testNow, testNow))
	}

	state, err := m.Scan(context.Background(), io.Discard)
	require.NoError(t, err)
	require.Len(t, state.Health, 2)
	assert.Equal(t, "golang", state.Health[0].Category)
	assert.Equal(t, "ml", state.Health[1].Category)

	cached, ok := m.Load()
	require.True(t, ok)
	assert.Equal(t, state.LastRun.Unix(), cached.LastRun.Unix())
}

func storeState(t *testing.T, m *Monitor, state *types.MonitorState) {
	t.Helper()
	require.NoError(t, m.cache.Store(state, testNow))
}

func TestSuggestionsFromHealth(t *testing.T) {
	m := testMonitor(afero.NewMemMapFs())
	storeState(t, m, &types.MonitorState{
		LastRun: testNow,
		Health: []types.ContentHealth{
			{Category: "ancient", FileCount: 4, AvgAgeDays: 70, NewestDays: 40, Score: 70},
			{Category: "aging", FileCount: 4, AvgAgeDays: 40, NewestDays: 20, Score: 85},
			{Category: "sparse", FileCount: 2, AvgAgeDays: 10, NewestDays: 10, Score: 80},
			{Category: "thriving", FileCount: 6, AvgAgeDays: 5, NewestDays: 1, Score: 100},
		},
	})

	got, err := m.Suggestions()
	require.NoError(t, err)

	kinds := map[string][]types.SuggestionKind{}
	for _, s := range got {
		kinds[s.Category] = append(kinds[s.Category], s.Kind)
	}
	assert.Equal(t, []types.SuggestionKind{types.SuggestRefresh}, kinds["ancient"])
	assert.Equal(t, []types.SuggestionKind{types.SuggestRefresh}, kinds["aging"])
	assert.Equal(t, []types.SuggestionKind{types.SuggestExpand}, kinds["sparse"])
	assert.ElementsMatch(t, []types.SuggestionKind{types.SuggestEssay, types.SuggestPromote}, kinds["thriving"])

	// The urgent refresh outranks everything else.
	require.NotEmpty(t, got)
	assert.Equal(t, "ancient", got[0].Category)
	assert.Equal(t, types.PriorityHigh, got[0].Priority)
}

func TestDismissMutesUntilWindowLapses(t *testing.T) {
	m := testMonitor(afero.NewMemMapFs())
	storeState(t, m, &types.MonitorState{
		LastRun: testNow,
		Health: []types.ContentHealth{
			{Category: "sparse", FileCount: 2, AvgAgeDays: 10, NewestDays: 10, Score: 80},
		},
	})

	before, err := m.Suggestions()
	require.NoError(t, err)
	require.Len(t, before, 1)

	require.NoError(t, m.Dismiss(before[0].ID))
	after, err := m.Suggestions()
	require.NoError(t, err)
	assert.Empty(t, after)

	// Eight days on, the dismissal has expired.
	m.now = func() time.Time { return testNow.Add(8 * 24 * time.Hour) }
	revived, err := m.Suggestions()
	require.NoError(t, err)
	assert.Len(t, revived, 1)
}

func TestDismissRejectsBadID(t *testing.T) {
	m := testMonitor(afero.NewMemMapFs())
	storeState(t, m, &types.MonitorState{LastRun: testNow})

	assert.ErrorIs(t, m.Dismiss("no timestamp here"), ErrBadSuggestionID)
	assert.ErrorIs(t, m.Dismiss("refresh-golang-"), ErrBadSuggestionID)
}

func TestQueriesRequireScan(t *testing.T) {
	m := testMonitor(afero.NewMemMapFs())
	_, err := m.Suggestions()
	assert.ErrorIs(t, err, ErrNoScan)
	assert.ErrorIs(t, m.Dismiss("refresh-golang-1754049600"), ErrNoScan)
}

func TestScanPrunesExpiredDismissals(t *testing.T) {
	fsys := afero.NewMemMapFs()
	m := testMonitor(fsys)
	require.NoError(t, afero.WriteFile(fsys, "notes/golang/a.md", []byte("channels"), 0o644))
	require.NoError(t, fsys.Chtimes("notes/golang/a.md", testNow, testNow))

	old := testNow.Add(-30 * 24 * time.Hour)
	storeState(t, m, &types.MonitorState{
		LastRun: old,
		Dismissed: map[string]time.Time{
			suggestionID(types.SuggestRefresh, "golang", old):    old,
			suggestionID(types.SuggestExpand, "golang", testNow): testNow,
		},
	})

	state, err := m.Scan(context.Background(), io.Discard)
	require.NoError(t, err)
	require.Len(t, state.Dismissed, 1)
	_, kept := state.Dismissed[suggestionID(types.SuggestExpand, "golang", testNow)]
	assert.True(t, kept)
}
