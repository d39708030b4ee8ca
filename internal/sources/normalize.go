// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources maintains the source-quality registry: normalized
// origins, trust scores and tiers, feedback, and per-document
// provenance.
// Implements: prd004-sources (R1-R6); docs/ARCHITECTURE § Sources.
package sources

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// ErrBadURL reports a URL that cannot be reduced to a source identity.
var ErrBadURL = errors.New("unusable source url")

// videoPlatforms map known video hosts to a fixed source key,
// regardless of path (R1.2).
var videoPlatforms = map[string]string{
	"youtube.com": "youtube.com",
	"youtu.be":    "youtube.com",
	"vimeo.com":   "vimeo.com",
}

// socialPlatforms map known social hosts to a fixed source key.
var socialPlatforms = map[string]string{
	"twitter.com":   "twitter.com",
	"x.com":         "twitter.com",
	"reddit.com":    "reddit.com",
	"old.reddit.com": "reddit.com",
	"linkedin.com":  "linkedin.com",
	"facebook.com":  "facebook.com",
	"instagram.com": "instagram.com",
	"tiktok.com":    "tiktok.com",
}

// Normalize maps a URL to its canonical source identity and type
// (R1.1-R1.2). Ordinary URLs normalize to their registrable host with
// any www prefix stripped.
func Normalize(rawURL string) (string, types.SourceType, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("parsing %q: %w", rawURL, ErrBadURL)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", "", fmt.Errorf("no host in %q: %w", rawURL, ErrBadURL)
	}

	if key, ok := videoPlatforms[host]; ok {
		return key, types.SourceVideo, nil
	}
	if key, ok := socialPlatforms[host]; ok {
		return key, types.SourceSocial, nil
	}
	return host, types.SourceDomain, nil
}

// reputableSeed is the static table of known-reputable domains
// (R2.2). Seeds sit above the trusted threshold so a fresh record from
// one of these starts trusted without any feedback.
type reputableSeed struct {
	score int
	tags  []string
}

var reputableDomains = map[string]reputableSeed{
	"arxiv.org":           {score: 88, tags: []string{"academic", "preprints"}},
	"nature.com":          {score: 90, tags: []string{"academic", "peer-reviewed"}},
	"science.org":         {score: 90, tags: []string{"academic", "peer-reviewed"}},
	"acm.org":             {score: 86, tags: []string{"academic", "computing"}},
	"ieee.org":            {score: 86, tags: []string{"academic", "engineering"}},
	"nih.gov":             {score: 88, tags: []string{"government", "medical"}},
	"reuters.com":         {score: 84, tags: []string{"news", "wire-service"}},
	"apnews.com":          {score: 84, tags: []string{"news", "wire-service"}},
	"bbc.com":             {score: 80, tags: []string{"news"}},
	"economist.com":       {score: 78, tags: []string{"news", "analysis"}},
	"wikipedia.org":       {score: 75, tags: []string{"reference", "crowdsourced"}},
	"github.com":          {score: 74, tags: []string{"code"}},
	"stackoverflow.com":   {score: 72, tags: []string{"community", "technical"}},
	"go.dev":              {score: 82, tags: []string{"documentation"}},
	"developer.mozilla.org": {score: 82, tags: []string{"documentation"}},
}
