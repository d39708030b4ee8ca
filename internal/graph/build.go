// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/pdiddy/corpus-engine/internal/cache"
	"github.com/pdiddy/corpus-engine/internal/scanner"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

// Similarity constants (R2.2-R2.3).
const (
	// SimilarityFloor is the minimum score for a similar edge.
	SimilarityFloor = 0.4

	// SameCategoryBonus is added when both nodes share a category.
	SameCategoryBonus = 0.2

	// KeywordOverlapWeight scales the keyword Jaccard contribution.
	KeywordOverlapWeight = 0.8

	// MentionsNeeded is how many of a node's keywords another document
	// must contain to count as a mention without a title match.
	MentionsNeeded = 2

	// titleMentionWeight and keywordMentionWeight are the edge weights
	// assigned to the two mention detection routes.
	titleMentionWeight   = 0.9
	keywordMentionWeight = 0.6
)

// DefaultMaxAge bounds cached graph staleness for Load.
const DefaultMaxAge = time.Hour

const cacheFile = "graph.json"

// Builder constructs and caches the knowledge graph for one corpus.
type Builder struct {
	fs     afero.Fs
	cfg    types.GraphConfig
	cache  *cache.Handle[types.KnowledgeGraph]
	logger *log.Logger
}

// NewBuilder returns a builder for cfg. A nil logger uses the package
// default.
func NewBuilder(fsys afero.Fs, cfg types.GraphConfig, logger *log.Logger) *Builder {
	if cfg.Extension == "" {
		cfg.Extension = scanner.DefaultExtension
	}
	if len(cfg.Excluded) == 0 {
		cfg.Excluded = scanner.ReservedDirs
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		fs:     fsys,
		cfg:    cfg,
		cache:  cache.New[types.KnowledgeGraph](fsys, filepath.Join(cfg.IntelDir, "cache", cacheFile)),
		logger: logger,
	}
}

// Build scans the corpus and constructs the graph in two passes: nodes
// first, then mention and similarity edges, clusters, and isolated
// nodes (R2.1-R3.3). The result is persisted before returning.
func (b *Builder) Build(ctx context.Context) (*types.KnowledgeGraph, error) {
	sc := scanner.New(b.fs, b.cfg.CorpusDir, scanner.Options{
		Extension: b.cfg.Extension,
		Exclude:   scanner.DefaultExclude(b.cfg.Excluded),
	}, b.logger)

	docs, err := sc.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}

	g := &types.KnowledgeGraph{
		BuiltAt: time.Now().UTC(),
		Nodes:   make(map[string]*types.GraphNode, len(docs)),
	}

	// Pass one: nodes.
	for _, doc := range docs {
		g.Nodes[doc.ID] = &types.GraphNode{
			ID:        doc.ID,
			Title:     TitleFromPath(doc.ID),
			Category:  doc.Category,
			Keywords:  ExtractKeywords(doc.Content),
			WordCount: doc.WordCount,
			Updated:   doc.Modified,
		}
	}

	// Pass two: edges. docs is sorted by ID, so edge order is stable.
	for _, doc := range docs {
		node := g.Nodes[doc.ID]
		for _, other := range docs {
			if other.ID == doc.ID {
				continue
			}
			target := g.Nodes[other.ID]
			if weight, evidence, ok := detectMention(doc.Content, target); ok {
				node.Mentions = append(node.Mentions, other.ID)
				g.Edges = append(g.Edges, types.GraphEdge{
					From:     doc.ID,
					To:       other.ID,
					Type:     types.EdgeMentions,
					Weight:   weight,
					Evidence: evidence,
				})
			}
		}
	}

	// Similar edges: once per unordered pair, stored From < To (R2.4).
	for i, doc := range docs {
		for _, other := range docs[i+1:] {
			sim := Similarity(g.Nodes[doc.ID], g.Nodes[other.ID])
			if sim >= SimilarityFloor {
				g.Edges = append(g.Edges, types.GraphEdge{
					From:     doc.ID,
					To:       other.ID,
					Type:     types.EdgeSimilar,
					Weight:   sim,
					Evidence: fmt.Sprintf("keyword similarity %.2f", sim),
				})
			}
		}
	}

	g.Clusters = buildClusters(g)
	g.Isolated = isolatedNodes(g)

	if err := b.cache.Store(g, g.BuiltAt); err != nil {
		return nil, fmt.Errorf("persisting graph: %w", err)
	}

	b.logger.Info("graph built",
		"nodes", len(g.Nodes), "edges", len(g.Edges), "clusters", len(g.Clusters))
	return g, nil
}

// Cached returns the cached graph regardless of age, or ok=false on a
// cache miss.
func (b *Builder) Cached() (*types.KnowledgeGraph, bool) {
	g, _, ok := b.cache.Load()
	return g, ok
}

// Load returns the cached graph when younger than maxAge, rebuilding
// otherwise (R4.2). maxAge <= 0 uses the configured default.
func (b *Builder) Load(ctx context.Context, maxAge time.Duration) (*types.KnowledgeGraph, error) {
	if maxAge <= 0 {
		maxAge = b.cfg.MaxAge
	}
	if g, builtAt, ok := b.cache.Load(); ok && time.Since(builtAt) <= maxAge {
		return g, nil
	}
	return b.Build(ctx)
}

// detectMention reports whether text mentions the target node: either
// the target's title appears verbatim, or at least MentionsNeeded of
// its keywords do (R2.1).
func detectMention(text string, target *types.GraphNode) (float64, string, bool) {
	if target.Title != "" && strings.Contains(text, target.Title) {
		return titleMentionWeight, fmt.Sprintf("title %q appears verbatim", target.Title), true
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range target.Keywords {
		if strings.Contains(lower, kw) {
			hits++
			if hits >= MentionsNeeded {
				return keywordMentionWeight, fmt.Sprintf("shares %d keywords", hits), true
			}
		}
	}
	return 0, "", false
}

// Similarity scores two nodes: the same-category bonus plus the
// weighted keyword Jaccard overlap, capped at 1 (R2.2).
func Similarity(a, b *types.GraphNode) float64 {
	var score float64
	if a.Category == b.Category {
		score += SameCategoryBonus
	}
	score += KeywordOverlapWeight * jaccard(a.Keywords, b.Keywords)
	if score > 1 {
		score = 1
	}
	return score
}

// buildClusters groups nodes per category with coherence equal to the
// mean pairwise similarity inside the cluster, 0 below 2 members
// (R3.1-R3.2).
func buildClusters(g *types.KnowledgeGraph) []types.GraphCluster {
	byCategory := make(map[string][]string)
	for id, node := range g.Nodes {
		byCategory[node.Category] = append(byCategory[node.Category], id)
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	clusters := make([]types.GraphCluster, 0, len(names))
	for _, name := range names {
		ids := byCategory[name]
		sort.Strings(ids)

		var total float64
		pairs := 0
		for i := range ids {
			for _, otherID := range ids[i+1:] {
				total += Similarity(g.Nodes[ids[i]], g.Nodes[otherID])
				pairs++
			}
		}
		coherence := 0.0
		if pairs > 0 {
			coherence = total / float64(pairs)
		}

		clusters = append(clusters, types.GraphCluster{
			Name:      name,
			NodeIDs:   ids,
			Coherence: coherence,
		})
	}
	return clusters
}

// isolatedNodes returns IDs with no incident edges, sorted (R3.3).
func isolatedNodes(g *types.KnowledgeGraph) []string {
	connected := make(map[string]bool)
	for _, e := range g.Edges {
		connected[e.From] = true
		connected[e.To] = true
	}

	var isolated []string
	for id := range g.Nodes {
		if !connected[id] {
			isolated = append(isolated, id)
		}
	}
	sort.Strings(isolated)
	return isolated
}

// jaccard returns intersection-over-union of two keyword sets.
func jaccard(a, b []string) float64 {
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
