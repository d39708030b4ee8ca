// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"fmt"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// FindDuplicates groups fingerprints into exact, near, and semantic
// duplicate clusters (R2.1-R2.6). Exact and near matches remove their
// members from further comparison; semantic matches do not, so one
// document may appear in several semantic groups when its topics
// overlap. Input order decides grouping order, so callers pass
// fingerprints sorted by document ID to keep results deterministic.
func FindDuplicates(fps []types.Fingerprint) []types.DuplicateGroup {
	var groups []types.DuplicateGroup
	claimed := make([]bool, len(fps))

	for i := range fps {
		if claimed[i] {
			continue
		}

		if g, members := exactGroup(fps, claimed, i); g != nil {
			groups = append(groups, *g)
			claim(claimed, members)
			continue
		}

		if g, members := nearGroup(fps, claimed, i); g != nil {
			groups = append(groups, *g)
			claim(claimed, members)
			continue
		}

		if g := semanticGroup(fps, claimed, i); g != nil {
			groups = append(groups, *g)
			// Members stay eligible for later semantic groups.
		}
	}

	return groups
}

func exactGroup(fps []types.Fingerprint, claimed []bool, i int) (*types.DuplicateGroup, []int) {
	members := []int{i}
	for j := i + 1; j < len(fps); j++ {
		if !claimed[j] && fps[j].ContentHash == fps[i].ContentHash {
			members = append(members, j)
		}
	}
	if len(members) < 2 {
		return nil, nil
	}

	return &types.DuplicateGroup{
		Kind:        types.DuplicateExact,
		DocumentIDs: idsOf(fps, members),
		Similarity:  1,
		Action:      types.ActionArchive,
		Reason:      fmt.Sprintf("%d documents share identical trimmed content (hash %s)", len(members), fps[i].ContentHash[:12]),
	}, members
}

func nearGroup(fps []types.Fingerprint, claimed []bool, i int) (*types.DuplicateGroup, []int) {
	members := []int{i}
	maxDist := 0
	for j := i + 1; j < len(fps); j++ {
		if claimed[j] {
			continue
		}
		if d := HammingDistance(fps[i].Simhash, fps[j].Simhash); d < NearHammingThreshold {
			members = append(members, j)
			if d > maxDist {
				maxDist = d
			}
		}
	}
	if len(members) < 2 {
		return nil, nil
	}

	return &types.DuplicateGroup{
		Kind:        types.DuplicateNear,
		DocumentIDs: idsOf(fps, members),
		Similarity:  1 - float64(maxDist)/SimhashBits,
		Action:      types.ActionMerge,
		Reason:      fmt.Sprintf("similarity hashes within %d of %d bits", maxDist, SimhashBits),
	}, members
}

func semanticGroup(fps []types.Fingerprint, claimed []bool, i int) *types.DuplicateGroup {
	members := []int{i}
	var total float64
	for j := i + 1; j < len(fps); j++ {
		if claimed[j] {
			continue
		}
		if sim := Jaccard(fps[i].Keywords, fps[j].Keywords); sim > SemanticJaccardThreshold {
			members = append(members, j)
			total += sim
		}
	}
	if len(members) < 2 {
		return nil
	}

	mean := total / float64(len(members)-1)
	return &types.DuplicateGroup{
		Kind:        types.DuplicateSemantic,
		DocumentIDs: idsOf(fps, members),
		Similarity:  mean,
		Action:      types.ActionReview,
		Reason:      fmt.Sprintf("keyword overlap %.0f%% across %d documents", mean*100, len(members)),
	}
}

func claim(claimed []bool, members []int) {
	for _, m := range members {
		claimed[m] = true
	}
}

func idsOf(fps []types.Fingerprint, members []int) []string {
	ids := make([]string, len(members))
	for k, m := range members {
		ids[k] = fps[m].DocumentID
	}
	return ids
}
