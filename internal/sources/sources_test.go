// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

func testTracker(t *testing.T, files map[string]string) *Tracker {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, "kb/"+path, []byte(content), 0o644))
	}
	cfg := types.SourcesConfig{
		CorpusConfig: types.CorpusConfig{CorpusDir: "kb", IntelDir: "intel"},
	}
	return NewTracker(fsys, cfg, nil)
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		url      string
		wantKey  string
		wantType types.SourceType
	}{
		{"https://www.example.com/articles/42", "example.com", types.SourceDomain},
		{"http://example.com", "example.com", types.SourceDomain},
		{"https://www.youtube.com/watch?v=abc123", "youtube.com", types.SourceVideo},
		{"https://youtu.be/abc123", "youtube.com", types.SourceVideo},
		{"https://x.com/someone/status/1", "twitter.com", types.SourceSocial},
		{"https://old.reddit.com/r/golang", "reddit.com", types.SourceSocial},
	}
	for _, c := range cases {
		key, srcType, err := Normalize(c.url)
		require.NoError(t, err, c.url)
		assert.Equal(t, c.wantKey, key, c.url)
		assert.Equal(t, c.wantType, srcType, c.url)
	}
}

func TestNormalizeRejectsHostless(t *testing.T) {
	for _, raw := range []string{"notes/file.md", "%%%", ""} {
		_, _, err := Normalize(raw)
		assert.ErrorIs(t, err, ErrBadURL, raw)
	}
}

func TestGetOrCreateSeedsReputableDomains(t *testing.T) {
	tr := testTracker(t, nil)

	rec, err := tr.GetOrCreate("https://arxiv.org/abs/2104.00001")
	require.NoError(t, err)

	// Known-reputable seeds start above the trusted threshold with no
	// feedback at all.
	assert.GreaterOrEqual(t, rec.Score, tierTrustedAt)
	assert.Contains(t, rec.Tags, "academic")

	unknown, err := tr.GetOrCreate("https://random-blog.example.net/post")
	require.NoError(t, err)
	assert.Equal(t, NeutralBaseline, unknown.Score)
	assert.Equal(t, types.TierNeutral, unknown.Tier)
}

func TestTierOfBands(t *testing.T) {
	cases := map[int]types.TrustTier{
		100: types.TierVerified,
		85:  types.TierVerified,
		84:  types.TierTrusted,
		70:  types.TierTrusted,
		69:  types.TierNeutral,
		50:  types.TierNeutral,
		49:  types.TierCautious,
		30:  types.TierCautious,
		29:  types.TierUntrusted,
		0:   types.TierUntrusted,
	}
	for score, want := range cases {
		assert.Equal(t, want, TierOf(score), "score %d", score)
	}
}

func TestScoreOfDeterministic(t *testing.T) {
	m := types.SourceMetrics{ContentCount: 7, CitationCount: 2, Upvotes: 3, Downvotes: 1}
	first := ScoreOf(NeutralBaseline, m)
	assert.Equal(t, first, ScoreOf(NeutralBaseline, m))
	assert.Equal(t, TierOf(first), TierOf(ScoreOf(NeutralBaseline, m)))
}

func TestUpvoteNeverDecreasesScore(t *testing.T) {
	tr := testTracker(t, nil)
	rec, err := tr.GetOrCreate("https://example.com")
	require.NoError(t, err)

	prev := rec.Score
	for i := 0; i < 15; i++ {
		require.NoError(t, tr.RecordFeedback("example.com", types.EventUpvoted))
		db, ok := tr.Load()
		require.True(t, ok)
		score := db.Sources["example.com"].Score
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestFlagNeverIncreasesScore(t *testing.T) {
	tr := testTracker(t, nil)
	_, err := tr.GetOrCreate("https://example.com")
	require.NoError(t, err)

	prev := NeutralBaseline
	for i := 0; i < 5; i++ {
		require.NoError(t, tr.RecordFeedback("example.com", types.EventFlagged))
		db, ok := tr.Load()
		require.True(t, ok)
		score := db.Sources["example.com"].Score
		assert.LessOrEqual(t, score, prev)
		prev = score
	}
}

func TestFlagStrongerThanDownvote(t *testing.T) {
	m := types.SourceMetrics{Downvotes: 1}
	downvoted := ScoreOf(NeutralBaseline, m)

	m = types.SourceMetrics{Flags: 1}
	flagged := ScoreOf(NeutralBaseline, m)

	assert.Less(t, flagged, downvoted)
}

func TestFeedbackUnknownSource(t *testing.T) {
	tr := testTracker(t, nil)
	err := tr.RecordFeedback("ghost.example", types.EventUpvoted)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestRecordIngestionFreezesScore(t *testing.T) {
	tr := testTracker(t, nil)

	prov, err := tr.RecordIngestion("science/paper.md", "https://arxiv.org/abs/1", "research-session")
	require.NoError(t, err)
	require.Equal(t, "arxiv.org", prov.SourceID)

	frozen := prov.ScoreAtIngestion

	// Later feedback moves the live score but not the snapshot.
	for i := 0; i < 5; i++ {
		require.NoError(t, tr.RecordFeedback("arxiv.org", types.EventFlagged))
	}

	db, ok := tr.Load()
	require.True(t, ok)
	assert.Less(t, db.Sources["arxiv.org"].Score, frozen)
	require.Len(t, db.Provenance, 1)
	assert.Equal(t, frozen, db.Provenance[0].ScoreAtIngestion)
}

func TestRecordIngestionSourceless(t *testing.T) {
	tr := testTracker(t, nil)

	prov, err := tr.RecordIngestion("notes/manual.md", "", "")
	require.NoError(t, err)
	assert.Empty(t, prov.SourceID)
	assert.Equal(t, "corpus-engine", prov.Agent)
}

func TestScanAndUpdateRegistersSources(t *testing.T) {
	tr := testTracker(t, map[string]string{
		"science/paper.md": "See https://arxiv.org/abs/1 and [video](https://youtu.be/x).",
		"science/other.md": "More at https://arxiv.org/abs/2.",
	})

	files, newSources, err := tr.ScanAndUpdate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, files)
	assert.Equal(t, 2, newSources)

	db, ok := tr.Load()
	require.True(t, ok)
	// Two documents cite arxiv, one cites youtube.
	assert.Equal(t, 2, db.Sources["arxiv.org"].Metrics.CitationCount)
	assert.Equal(t, 1, db.Sources["youtube.com"].Metrics.CitationCount)

	// Re-scanning an unchanged corpus is idempotent.
	_, newAgain, err := tr.ScanAndUpdate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, newAgain)

	after, ok := tr.Load()
	require.True(t, ok)
	assert.Equal(t, 2, after.Sources["arxiv.org"].Metrics.CitationCount)
}

func TestReportConcerns(t *testing.T) {
	tr := testTracker(t, nil)

	_, err := tr.GetOrCreate("https://example.com")
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		require.NoError(t, tr.RecordFeedback("example.com", types.EventFlagged))
	}

	report := tr.Report()
	assert.Equal(t, 1, report.TotalSources)
	require.NotEmpty(t, report.Concerns)
	assert.NotEmpty(t, report.Recommendations)
	assert.Equal(t, types.TierUntrusted, report.Sources[0].Tier)
}
