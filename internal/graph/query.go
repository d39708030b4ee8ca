// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// ErrNodeNotFound reports a query for a node ID absent from the graph.
var ErrNodeNotFound = errors.New("node not found")

// RelatedNodes returns all nodes incident to nodeID's edges, sorted by
// weight descending and truncated to limit (R5.1-R5.2). Mention edges
// surface for both their source and their target.
func RelatedNodes(g *types.KnowledgeGraph, nodeID string, limit int) ([]types.RelatedNode, error) {
	if _, ok := g.Nodes[nodeID]; !ok {
		return nil, fmt.Errorf("related nodes for %s: %w", nodeID, ErrNodeNotFound)
	}

	var related []types.RelatedNode
	for _, e := range g.Edges {
		var otherID string
		switch {
		case e.From == nodeID:
			otherID = e.To
		case e.To == nodeID:
			otherID = e.From
		default:
			continue
		}
		if node, ok := g.Nodes[otherID]; ok {
			related = append(related, types.RelatedNode{
				Node:     node,
				Relation: e.Type,
				Weight:   e.Weight,
			})
		}
	}

	sort.SliceStable(related, func(i, j int) bool {
		if related[i].Weight != related[j].Weight {
			return related[i].Weight > related[j].Weight
		}
		return related[i].Node.ID < related[j].Node.ID
	})

	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related, nil
}

// MissingConnections returns same-cluster node pairs with no edge of
// either type between them, candidates for manual cross-referencing
// (R5.3).
func MissingConnections(g *types.KnowledgeGraph) []types.MissingConnection {
	linked := make(map[string]bool, len(g.Edges)*2)
	for _, e := range g.Edges {
		linked[e.From+"\x00"+e.To] = true
		linked[e.To+"\x00"+e.From] = true
	}

	var missing []types.MissingConnection
	for _, cluster := range g.Clusters {
		for i := range cluster.NodeIDs {
			for _, b := range cluster.NodeIDs[i+1:] {
				a := cluster.NodeIDs[i]
				if linked[a+"\x00"+b] {
					continue
				}
				missing = append(missing, types.MissingConnection{
					NodeA:  a,
					NodeB:  b,
					Reason: fmt.Sprintf("both in cluster %q with no edge", cluster.Name),
				})
			}
		}
	}
	return missing
}
