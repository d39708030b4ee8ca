// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// Report thresholds (R6.2).
const (
	// highVolumeAt marks a source as high-volume for the unverified
	// concern.
	highVolumeAt = 10

	// staleAfter marks a source stale when nothing has been ingested
	// from it for this long.
	staleAfter = 90 * 24 * time.Hour
)

// Report derives the human-facing registry summary: per-tier counts,
// all records sorted by score, and concerns with matching
// recommendations (R6.1-R6.3).
func (t *Tracker) Report() *types.SourceReport {
	db := t.load()

	report := &types.SourceReport{
		TotalSources: len(db.Sources),
		TierCounts:   make(map[types.TrustTier]int),
	}

	for _, rec := range db.Sources {
		report.TierCounts[rec.Tier]++
		report.Sources = append(report.Sources, rec)
	}
	sort.Slice(report.Sources, func(i, j int) bool {
		if report.Sources[i].Score != report.Sources[j].Score {
			return report.Sources[i].Score > report.Sources[j].Score
		}
		return report.Sources[i].ID < report.Sources[j].ID
	})

	now := time.Now().UTC()
	var lowTrust, highVolumeUnverified, stale []string
	for _, rec := range report.Sources {
		switch rec.Tier {
		case types.TierCautious, types.TierUntrusted:
			lowTrust = append(lowTrust, rec.ID)
		}
		if rec.Metrics.ContentCount >= highVolumeAt &&
			rec.Tier != types.TierVerified && rec.Tier != types.TierTrusted {
			highVolumeUnverified = append(highVolumeUnverified, rec.ID)
		}
		if !rec.Metrics.LastIngested.IsZero() && now.Sub(rec.Metrics.LastIngested) > staleAfter {
			stale = append(stale, rec.ID)
		}
	}

	if len(lowTrust) > 0 {
		report.Concerns = append(report.Concerns,
			fmt.Sprintf("%d low-trust source(s) in use: %v", len(lowTrust), lowTrust))
		report.Recommendations = append(report.Recommendations,
			"review low-trust sources and archive or re-verify their documents")
	}
	if len(highVolumeUnverified) > 0 {
		report.Concerns = append(report.Concerns,
			fmt.Sprintf("%d high-volume source(s) below trusted tier: %v",
				len(highVolumeUnverified), highVolumeUnverified))
		report.Recommendations = append(report.Recommendations,
			"prioritize vetting high-volume sources; their reach outpaces their standing")
	}
	if len(stale) > 0 {
		report.Concerns = append(report.Concerns,
			fmt.Sprintf("%d source(s) with no ingestion in %d days: %v",
				len(stale), int(staleAfter.Hours()/24), stale))
		report.Recommendations = append(report.Recommendations,
			"confirm stale sources are still publishing, or drop them from rotation")
	}

	return report
}
