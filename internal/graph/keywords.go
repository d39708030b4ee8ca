// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph builds the corpus relationship graph: one node per
// document, mention and similarity edges, per-category clusters.
// keywords.go extracts the keyword set that drives mention detection
// and similarity scoring.
// Implements: prd003-graph (R1, R2); docs/ARCHITECTURE § Graph.
package graph

import (
	"regexp"
	"strings"
)

// MaxKeywords caps a node's keyword set.
const MaxKeywords = 15

// Keyword extraction patterns (R1.2).
var (
	// headerRe matches markdown heading lines.
	headerRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)

	// boldRe matches **emphasized** spans.
	boldRe = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)

	// italicRe matches _emphasized_ spans.
	italicRe = regexp.MustCompile(`_([^_\n]+)_`)

	// quotedRe matches short "quoted terms".
	quotedRe = regexp.MustCompile(`"([^"\n]{3,60})"`)

	// capPhraseRe matches capitalized multi-word phrases like
	// "Bayesian Inference" or "Standard Model".
	capPhraseRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
)

// acronyms is the fixed domain vocabulary recognized anywhere in the
// text (R1.3).
var acronyms = []string{
	"AI", "API", "CLI", "CPU", "DNS", "GPU", "HTTP", "JSON", "LLM",
	"ML", "NLP", "RAG", "REST", "SEO", "SQL", "TCP", "UX", "YAML",
}

// ExtractKeywords pulls headings, emphasized spans, quoted terms,
// capitalized phrases, and known acronyms from text, case-normalized
// and capped at MaxKeywords (R1.2-R1.4). Extraction order is fixed so
// the result is deterministic.
func ExtractKeywords(text string) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(raw string) {
		kw := normalizeKeyword(raw)
		if kw == "" || seen[kw] || len(out) >= MaxKeywords {
			return
		}
		seen[kw] = true
		out = append(out, kw)
	}

	for _, m := range headerRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range boldRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range italicRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range quotedRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range capPhraseRe.FindAllString(text, -1) {
		add(m)
	}
	for _, acr := range acronyms {
		if containsWord(text, acr) {
			add(acr)
		}
	}

	return out
}

// normalizeKeyword lowercases, strips markdown residue, and rejects
// fragments too short or too long to be useful.
func normalizeKeyword(raw string) string {
	kw := strings.ToLower(strings.TrimSpace(raw))
	kw = strings.Trim(kw, `*_#"'()[]{}:;,.!?`)
	kw = strings.Join(strings.Fields(kw), " ")
	if len(kw) < 2 || len(kw) > 60 {
		return ""
	}
	return kw
}

// containsWord reports whether word appears in text on word
// boundaries.
func containsWord(text, word string) bool {
	for idx := 0; ; {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isWordByte(text[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(text) || !isWordByte(text[afterIdx])
		if before && after {
			return true
		}
		idx = i + len(word)
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// TitleFromPath derives a node title from a document's filename:
// extension stripped, dashes and underscores spaced, words
// title-cased (R1.1).
func TitleFromPath(id string) string {
	base := id
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
