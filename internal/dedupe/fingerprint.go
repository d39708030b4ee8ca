// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe detects exact, near, and semantic duplicates across
// the corpus. fingerprint.go derives per-document identifiers: an
// exact content hash, a weighted-vote simhash, and a keyword set.
// Implements: prd002-dedupe (R1, R2); docs/ARCHITECTURE § Dedupe.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
	"math/bits"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// Fingerprint tuning constants (R1.1). Named so thresholds stay
// independently tunable and testable.
const (
	// SimhashBits is the similarity hash width.
	SimhashBits = 64

	// NearHammingThreshold is the maximum bit distance for a near
	// duplicate.
	NearHammingThreshold = 10

	// SemanticJaccardThreshold is the minimum keyword-set overlap for a
	// semantic duplicate.
	SemanticJaccardThreshold = 0.6

	// KeywordCount caps the per-document keyword set.
	KeywordCount = 20

	// MinWordLength filters short words out of the simhash and keyword
	// computations.
	MinWordLength = 4
)

// ComputeFingerprint derives all identifiers for one document (R1.2-R1.5).
func ComputeFingerprint(doc types.Document) types.Fingerprint {
	trimmed := strings.TrimSpace(doc.Content)
	sum := sha256.Sum256([]byte(trimmed))

	words := tokenize(trimmed)

	return types.Fingerprint{
		DocumentID:  doc.ID,
		ContentHash: hex.EncodeToString(sum[:]),
		Simhash:     simhash(words),
		WordCount:   len(words),
		FirstLine:   firstLine(trimmed),
		Keywords:    topKeywords(words, KeywordCount),
		Size:        doc.Size,
		Modified:    doc.Modified,
	}
}

// simhash accumulates a signed vote per bit position across the fnv64a
// digests of all sufficiently long words, then takes the sign of each
// position. Documents sharing most vocabulary differ in few bit
// positions regardless of word order (R1.3).
func simhash(words []string) uint64 {
	var votes [SimhashBits]int

	for _, w := range words {
		if len(w) < MinWordLength {
			continue
		}
		h := fnv.New64a()
		h.Write([]byte(w))
		digest := h.Sum64()

		for i := 0; i < SimhashBits; i++ {
			if digest&(1<<uint(i)) != 0 {
				votes[i]++
			} else {
				votes[i]--
			}
		}
	}

	var hash uint64
	for i := 0; i < SimhashBits; i++ {
		if votes[i] > 0 {
			hash |= 1 << uint(i)
		}
	}
	return hash
}

// HammingDistance counts differing bit positions between two simhashes.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Jaccard returns intersection-over-union of two keyword sets.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	intersection := 0
	union := len(set)
	for _, w := range b {
		if set[w] {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// tokenize lowercases text and splits on anything that is not a letter
// or digit, stripping punctuation (R1.4).
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// topKeywords returns the n most frequent sufficiently long words,
// ties broken alphabetically so results are deterministic.
func topKeywords(words []string, n int) []string {
	freq := make(map[string]int)
	for _, w := range words {
		if len(w) >= MinWordLength {
			freq[w]++
		}
	}

	unique := make([]string, 0, len(freq))
	for w := range freq {
		unique = append(unique, w)
	}
	sort.Slice(unique, func(i, j int) bool {
		if freq[unique[i]] != freq[unique[j]] {
			return freq[unique[i]] > freq[unique[j]]
		}
		return unique[i] < unique[j]
	})

	if len(unique) > n {
		unique = unique[:n]
	}
	return unique
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
