// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// --- test helpers ---

func testDetector(t *testing.T, files map[string]string) (*Detector, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(fsys, filepath.Join("kb", path), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := types.DedupeConfig{
		CorpusConfig: types.CorpusConfig{
			CorpusDir: "kb",
			IntelDir:  "intel",
		},
	}
	return NewDetector(fsys, cfg, nil), fsys
}

func docOf(id, content string) types.Document {
	return types.Document{
		ID:        id,
		Content:   content,
		Size:      int64(len(content)),
		WordCount: len(strings.Fields(content)),
		Modified:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func groupsOfKind(groups []types.DuplicateGroup, kind types.DuplicateKind) []types.DuplicateGroup {
	var out []types.DuplicateGroup
	for _, g := range groups {
		if g.Kind == kind {
			out = append(out, g)
		}
	}
	return out
}

// --- fingerprint ---

func TestFingerprintSelfDistanceZero(t *testing.T) {
	fp := ComputeFingerprint(docOf("a.md", "Quantum field theory describes particle interactions"))
	if d := HammingDistance(fp.Simhash, fp.Simhash); d != 0 {
		t.Errorf("self distance = %d, want 0", d)
	}
}

func TestFingerprintStableUnderTrim(t *testing.T) {
	a := ComputeFingerprint(docOf("a.md", "shared corpus content here"))
	b := ComputeFingerprint(docOf("b.md", "\n\n  shared corpus content here  \n"))
	if a.ContentHash != b.ContentHash {
		t.Error("trimmed-identical documents should share a content hash")
	}
}

func TestFingerprintOrderIndependentSimhash(t *testing.T) {
	a := ComputeFingerprint(docOf("a.md", "alpha bravo charlie delta echo foxtrot"))
	b := ComputeFingerprint(docOf("b.md", "foxtrot echo delta charlie bravo alpha"))
	if d := HammingDistance(a.Simhash, b.Simhash); d != 0 {
		t.Errorf("reordered vocabulary distance = %d, want 0", d)
	}
}

func TestFingerprintDisjointVocabulary(t *testing.T) {
	a := ComputeFingerprint(docOf("a.md", "quantum entanglement superposition decoherence measurement"))
	b := ComputeFingerprint(docOf("b.md", "medieval feudalism peasantry monarchy crusades"))

	if a.ContentHash == b.ContentHash {
		t.Error("disjoint documents should not share a content hash")
	}
	if sim := Jaccard(a.Keywords, b.Keywords); sim != 0 {
		t.Errorf("Jaccard = %v, want 0", sim)
	}
	if d := HammingDistance(a.Simhash, b.Simhash); d < NearHammingThreshold {
		t.Errorf("disjoint vocabulary distance = %d, unexpectedly near", d)
	}
}

func TestFingerprintKeywordsRankedByFrequency(t *testing.T) {
	fp := ComputeFingerprint(docOf("a.md",
		"entropy entropy entropy energy energy matter"))
	if len(fp.Keywords) == 0 || fp.Keywords[0] != "entropy" {
		t.Errorf("keywords = %v, want entropy first", fp.Keywords)
	}
}

func TestJaccard(t *testing.T) {
	cases := []struct {
		a, b []string
		want float64
	}{
		{[]string{"x", "y"}, []string{"x", "y"}, 1},
		{[]string{"x", "y"}, []string{"y", "z"}, 1.0 / 3.0},
		{[]string{"x"}, []string{"z"}, 0},
		{nil, nil, 0},
	}
	for _, c := range cases {
		if got := Jaccard(c.a, c.b); got != c.want {
			t.Errorf("Jaccard(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

// --- grouping ---

func fpWith(id string, hash string, simhash uint64, keywords ...string) types.Fingerprint {
	return types.Fingerprint{
		DocumentID:  id,
		ContentHash: hash + strings.Repeat("0", 64-len(hash)),
		Simhash:     simhash,
		Keywords:    keywords,
	}
}

func TestFindDuplicatesExact(t *testing.T) {
	fps := []types.Fingerprint{
		fpWith("a.md", "aaaa", 0x1),
		fpWith("b.md", "aaaa", 0x1),
		fpWith("c.md", "cccc", 0xFFFFFFFFFFFFFFFF),
	}

	groups := FindDuplicates(fps)
	exact := groupsOfKind(groups, types.DuplicateExact)
	if len(exact) != 1 {
		t.Fatalf("exact groups = %d, want 1", len(exact))
	}
	if !reflect.DeepEqual(exact[0].DocumentIDs, []string{"a.md", "b.md"}) {
		t.Errorf("members = %v", exact[0].DocumentIDs)
	}
	if exact[0].Action != types.ActionArchive {
		t.Errorf("action = %s, want archive", exact[0].Action)
	}
	if exact[0].Similarity != 1 {
		t.Errorf("similarity = %v, want 1", exact[0].Similarity)
	}
}

func TestFindDuplicatesNear(t *testing.T) {
	// Hashes differ, simhashes differ by 2 bits.
	fps := []types.Fingerprint{
		fpWith("a.md", "aaaa", 0b0011),
		fpWith("b.md", "bbbb", 0b0000),
	}

	groups := FindDuplicates(fps)
	near := groupsOfKind(groups, types.DuplicateNear)
	if len(near) != 1 {
		t.Fatalf("near groups = %d, want 1", len(near))
	}
	if near[0].Action != types.ActionMerge {
		t.Errorf("action = %s, want merge", near[0].Action)
	}
}

func TestFindDuplicatesSemanticOverlapAllowed(t *testing.T) {
	// Simhashes far apart so only the keyword relation fires.
	// Jaccard(a,b) = Jaccard(b,c) = 2/3 > 0.6, Jaccard(a,c) = 1/3.
	fps := []types.Fingerprint{
		fpWith("a.md", "aaaa", 0x0000000000000000, "graph", "node"),
		fpWith("b.md", "bbbb", 0x00000000FFFFFFFF, "graph", "node", "edge"),
		fpWith("c.md", "cccc", 0xFFFFFFFFFFFFFFFF, "node", "edge"),
	}

	groups := FindDuplicates(fps)
	semantic := groupsOfKind(groups, types.DuplicateSemantic)
	if len(semantic) != 2 {
		t.Fatalf("semantic groups = %d, want 2 (overlap is allowed)", len(semantic))
	}

	// b.md appears in both groups.
	for _, g := range semantic {
		found := false
		for _, id := range g.DocumentIDs {
			if id == "b.md" {
				found = true
			}
		}
		if !found {
			t.Errorf("group %v should contain b.md", g.DocumentIDs)
		}
	}
}

func TestFindDuplicatesUnrelatedNeverGrouped(t *testing.T) {
	fps := []types.Fingerprint{
		fpWith("a.md", "aaaa", 0x0, "quantum", "physics"),
		fpWith("b.md", "bbbb", 0xFFFFFFFFFFFFFFFF, "rome", "empire"),
	}
	if groups := FindDuplicates(fps); len(groups) != 0 {
		t.Errorf("groups = %v, want none", groups)
	}
}

// --- scan ---

func TestScanExactAcrossCategories(t *testing.T) {
	content := "# Note\n\nIdentical body shared across two categories.\n"
	det, _ := testDetector(t, map[string]string{
		"science/copy.md": content,
		"history/copy.md": content,
		"science/solo.md": "# Unrelated\n\nCompletely different substance entirely here.\n",
	})

	var out bytes.Buffer
	state, err := det.Scan(context.Background(), &out)
	if err != nil {
		t.Fatal(err)
	}

	if state.Stats.ExactGroups != 1 {
		t.Fatalf("exact groups = %d, want 1", state.Stats.ExactGroups)
	}
	exact := groupsOfKind(state.Groups, types.DuplicateExact)
	if len(exact[0].DocumentIDs) != 2 {
		t.Errorf("group size = %d, want 2", len(exact[0].DocumentIDs))
	}

	if want := int64(len(content)); state.Stats.BytesRecoverable != want {
		t.Errorf("recoverable = %d, want %d", state.Stats.BytesRecoverable, want)
	}

	if !strings.Contains(out.String(), "exact") {
		t.Error("progress output should mention the exact group")
	}
}

func TestScanIdempotent(t *testing.T) {
	det, _ := testDetector(t, map[string]string{
		"science/a.md": "alpha beta gamma delta",
		"science/b.md": "epsilon zeta eta theta",
	})

	first, err := det.Scan(context.Background(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := det.Scan(context.Background(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Fingerprints, second.Fingerprints) {
		t.Error("fingerprints changed between identical scans")
	}
	if !reflect.DeepEqual(first.Groups, second.Groups) {
		t.Error("groups changed between identical scans")
	}
}

func TestScanPersistsCache(t *testing.T) {
	det, fsys := testDetector(t, map[string]string{"science/a.md": "content words here"})

	if _, err := det.Scan(context.Background(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	if _, err := fsys.Stat(filepath.Join("intel", "cache", "dedupe.json")); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}

	state, ok := det.Load()
	if !ok {
		t.Fatal("expected cache hit after scan")
	}
	if state.Stats.DocumentsScanned != 1 {
		t.Errorf("scanned = %d, want 1", state.Stats.DocumentsScanned)
	}
}

// --- archive ---

func TestArchiveMovesAndLogs(t *testing.T) {
	det, fsys := testDetector(t, map[string]string{"science/dup.md": "duplicate body"})

	dst, err := det.Archive(context.Background(), "science/dup.md", "exact duplicate")
	if err != nil {
		t.Fatal(err)
	}
	if dst != "kb/archive/science/dup.md" {
		t.Errorf("dest = %s", dst)
	}

	if _, err := fsys.Stat("kb/science/dup.md"); err == nil {
		t.Error("source should be gone after archive")
	}
	if _, err := fsys.Stat("kb/archive/science/dup.md"); err != nil {
		t.Errorf("archived file missing: %v", err)
	}

	state, ok := det.Load()
	if !ok {
		t.Fatal("expected cache after archive")
	}
	if len(state.ArchiveLog) != 1 || state.ArchiveLog[0].Reason != "exact duplicate" {
		t.Errorf("archive log = %+v", state.ArchiveLog)
	}

	// Archived documents drop out of future scans.
	after, err := det.Scan(context.Background(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if after.Stats.DocumentsScanned != 0 {
		t.Errorf("scanned = %d, want 0", after.Stats.DocumentsScanned)
	}
	if len(after.ArchiveLog) != 1 {
		t.Error("archive log should survive the next scan")
	}
}

func TestArchiveMissingDocument(t *testing.T) {
	det, _ := testDetector(t, map[string]string{"science/a.md": "content"})

	_, err := det.Archive(context.Background(), "science/gone.md", "test")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("err = %v, want ErrDocumentNotFound", err)
	}
}
