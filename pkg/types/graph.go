// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EdgeType classifies a knowledge graph edge. Per prd003-graph R2.1.
type EdgeType string

const (
	// EdgeMentions is directional: the source document's text mentions
	// the target node.
	EdgeMentions EdgeType = "mentions"

	// EdgeSimilar is undirected and recorded once per unordered pair.
	EdgeSimilar EdgeType = "similar"
)

// GraphNode is one document in the knowledge graph.
// Per prd003-graph R1.1-R1.4.
type GraphNode struct {
	// ID is the document ID.
	ID string `json:"id" yaml:"id"`

	// Title is derived from the filename (extension stripped, dashes
	// and underscores spaced, title-cased).
	Title string `json:"title" yaml:"title"`

	// Category is the document's category.
	Category string `json:"category" yaml:"category"`

	// Keywords are extracted from the document text.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Mentions lists node IDs this document's text refers to.
	Mentions []string `json:"mentions,omitempty" yaml:"mentions,omitempty"`

	// WordCount counts words in the document.
	WordCount int `json:"word_count" yaml:"word_count"`

	// Updated is the document's modification time.
	Updated time.Time `json:"updated" yaml:"updated"`
}

// GraphEdge is a typed relation between two nodes.
// Per prd003-graph R2.1-R2.4.
type GraphEdge struct {
	// From is the source node ID. For similar edges the pair is stored
	// with From < To so the reverse pair is never duplicated.
	From string `json:"from" yaml:"from"`

	// To is the target node ID.
	To string `json:"to" yaml:"to"`

	// Type is mentions or similar.
	Type EdgeType `json:"type" yaml:"type"`

	// Weight is the relation strength in [0,1].
	Weight float64 `json:"weight" yaml:"weight"`

	// Evidence explains why the edge exists.
	Evidence string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// GraphCluster is a named group of nodes with a coherence score.
// Per prd003-graph R3.1-R3.2.
type GraphCluster struct {
	// Name is the cluster label (the category, in the baseline policy).
	Name string `json:"name" yaml:"name"`

	// NodeIDs lists the member nodes, sorted.
	NodeIDs []string `json:"node_ids" yaml:"node_ids"`

	// Coherence is the mean pairwise similarity inside the cluster, or
	// 0 with fewer than 2 members.
	Coherence float64 `json:"coherence" yaml:"coherence"`
}

// KnowledgeGraph is the persisted output of a graph build.
// Per prd003-graph R4.1.
type KnowledgeGraph struct {
	// BuiltAt is when the build completed.
	BuiltAt time.Time `json:"built_at" yaml:"built_at"`

	// Nodes maps node ID to node.
	Nodes map[string]*GraphNode `json:"nodes" yaml:"nodes"`

	// Edges lists all edges.
	Edges []GraphEdge `json:"edges" yaml:"edges"`

	// Clusters groups nodes per category.
	Clusters []GraphCluster `json:"clusters" yaml:"clusters"`

	// Isolated lists node IDs with no incident edges.
	Isolated []string `json:"isolated,omitempty" yaml:"isolated,omitempty"`
}

// RelatedNode pairs a node with the relation that connects it to a
// query node. Per prd003-graph R5.2.
type RelatedNode struct {
	Node     *GraphNode `json:"node" yaml:"node"`
	Relation EdgeType   `json:"relation" yaml:"relation"`
	Weight   float64    `json:"weight" yaml:"weight"`
}

// MissingConnection is a same-cluster node pair with no edge between
// its members, a candidate for manual cross-referencing.
// Per prd003-graph R5.3.
type MissingConnection struct {
	NodeA  string `json:"node_a" yaml:"node_a"`
	NodeB  string `json:"node_b" yaml:"node_b"`
	Reason string `json:"reason" yaml:"reason"`
}
