// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package monitor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// Suggestion thresholds (prd006-monitor R2.1-R2.2).
const (
	refreshAgeDays    = 30
	urgentRefreshDays = 60
	expandFileCount   = 3
	essayMinScore     = 80
	essayMinFiles     = 5
	promoteNewestDays = 7
)

// Suggestions derives actionable items from the last scan, filtering
// anything whose kind and category match an unexpired dismissal.
// Output is sorted by priority, then category, then kind (R2.1-R2.3).
func (m *Monitor) Suggestions() ([]types.Suggestion, error) {
	state, _, ok := m.cache.Load()
	if !ok {
		return nil, ErrNoScan
	}
	now := m.now()
	muted := mutedPrefixes(state.Dismissed, now)

	var out []types.Suggestion
	add := func(kind types.SuggestionKind, category, text string, priority types.Priority) {
		if muted[mutePrefix(kind, category)] {
			return
		}
		out = append(out, types.Suggestion{
			ID:       suggestionID(kind, category, state.LastRun),
			Kind:     kind,
			Category: category,
			Text:     text,
			Priority: priority,
		})
	}

	for _, h := range state.Health {
		if h.FileCount == 0 {
			continue
		}
		if h.AvgAgeDays > refreshAgeDays {
			priority := types.PriorityMedium
			if h.AvgAgeDays > urgentRefreshDays {
				priority = types.PriorityHigh
			}
			add(types.SuggestRefresh, h.Category,
				fmt.Sprintf("%s averages %.0f days old; revisit its key documents", h.Category, h.AvgAgeDays), priority)
		}
		if h.FileCount < expandFileCount {
			add(types.SuggestExpand, h.Category,
				fmt.Sprintf("%s has only %d documents; research adjacent topics", h.Category, h.FileCount), types.PriorityMedium)
		}
		if h.Score >= essayMinScore && h.FileCount >= essayMinFiles {
			add(types.SuggestEssay, h.Category,
				fmt.Sprintf("%s is healthy and substantial; synthesize an essay from it", h.Category), types.PriorityLow)
		}
		if h.NewestDays <= promoteNewestDays {
			add(types.SuggestPromote, h.Category,
				fmt.Sprintf("%s was updated in the last week; consider sharing the latest work", h.Category), types.PriorityLow)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		ri, rj := types.PriorityRank(out[i].Priority), types.PriorityRank(out[j].Priority)
		if ri != rj {
			return ri < rj
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

// suggestionID embeds the kind, category, and scan time so dismissal
// expiry can be derived from the ID alone.
func suggestionID(kind types.SuggestionKind, category string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%d", kind, category, at.Unix())
}

func mutePrefix(kind types.SuggestionKind, category string) string {
	return string(kind) + "-" + category
}

// splitSuggestionID separates the stable kind-category prefix from the
// unix timestamp suffix.
func splitSuggestionID(id string) (prefix string, ts int64, err error) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 || i == len(id)-1 {
		return "", 0, fmt.Errorf("%w: %q", ErrBadSuggestionID, id)
	}
	ts, perr := strconv.ParseInt(id[i+1:], 10, 64)
	if perr != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrBadSuggestionID, id)
	}
	return id[:i], ts, nil
}

// mutedPrefixes collects the kind-category prefixes of unexpired
// dismissals. A dismissal mutes every later re-issue of the same
// suggestion until the window lapses.
func mutedPrefixes(dismissed map[string]time.Time, now time.Time) map[string]bool {
	muted := map[string]bool{}
	for id := range dismissed {
		prefix, ts, err := splitSuggestionID(id)
		if err != nil {
			continue
		}
		if now.Sub(time.Unix(ts, 0)) <= DismissWindow {
			muted[prefix] = true
		}
	}
	return muted
}
