// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"fmt"
	"math"
	"sync"
)

// =============================================================================
// Identifiers
// =============================================================================

// VertexID is a dense internal vertex index in the range [0, VertexCount).
// Indices are contiguous so algorithm working state can live in flat
// arrays with O(1) access instead of hash maps.
type VertexID = int

// EdgeID is a dense internal edge index in the range [0, EdgeCount).
type EdgeID = int

// =============================================================================
// Vertex and Edge
// =============================================================================

// Vertex is a graph vertex: a stable label plus an arbitrary
// caller-supplied payload. Immutable once created.
type Vertex struct {
	// ID is the dense internal index of this vertex.
	ID VertexID

	// Label is the caller-facing identifier. The label → index mapping
	// is owned by the graph store, not by algorithms.
	Label string

	// Payload is opaque caller data. The graph never inspects it.
	Payload any
}

// Edge is a weighted, optionally capacitated connection between two
// vertices. In an undirected graph the (From, To) pair is stored as
// given but traversal works in both directions.
type Edge struct {
	// ID is the dense internal index of this edge.
	ID EdgeID

	// From and To are the endpoint vertex indices.
	From VertexID
	To   VertexID

	// Weight is the traversal cost used by shortest-path and ranking
	// algorithms. Must be ≥ 0 for Dijkstra, A*, and PageRank; the check
	// is performed lazily by those algorithms, not by the store.
	Weight float64

	// Capacity is the flow capacity used by MaxFlow. Distinct from
	// Weight; a graph used only for shortest paths can leave it zero.
	Capacity float64
}

// Arc is one directed adjacency entry: the neighbor reached from a
// vertex together with the weight and capacity of the connecting edge.
type Arc struct {
	// To is the neighbor vertex index.
	To VertexID

	// Weight is the edge weight.
	Weight float64

	// Capacity is the edge capacity.
	Capacity float64

	// Edge is the index of the underlying edge.
	Edge EdgeID
}

// =============================================================================
// Graph
// =============================================================================

// Graph is an in-memory weighted graph with dense contiguous vertex
// indices and per-vertex adjacency lists.
//
// Description:
//
//	Graph follows a build-then-freeze lifecycle. During the build phase
//	a single writer adds vertices and edges; Freeze() then makes the
//	graph immutable. All analytics algorithms in this package require a
//	frozen graph and only ever read it, so any number of them can run
//	concurrently against the same instance.
//
// Thread Safety:
//
//	Mutations are serialized by an internal mutex, but the intended use
//	is single-writer build followed by Freeze(). After Freeze() all
//	read methods are safe for unlimited concurrent use.
type Graph struct {
	mu sync.RWMutex

	directed bool
	frozen   bool

	vertices []Vertex
	edges    []Edge

	// adjacency[v] enumerates arcs out of v in O(deg(v)).
	// Undirected graphs store each edge as two mirrored arcs.
	adjacency [][]Arc

	// incoming[v] enumerates arcs into v. For undirected graphs it is
	// identical to adjacency and shares the same backing slices.
	incoming [][]Arc

	// labelIndex maps non-empty vertex labels to internal indices.
	labelIndex map[string]VertexID
}

// NewGraph creates an empty graph in build mode.
//
// Inputs:
//
//	directed - Whether edges are ordered pairs. Undirected graphs store
//	           each edge as two mirrored arcs.
//
// Outputs:
//
//	*Graph - The new graph. Never nil.
func NewGraph(directed bool) *Graph {
	return &Graph{
		directed:   directed,
		labelIndex: make(map[string]VertexID),
	}
}

// Directed reports whether the graph is directed.
func (g *Graph) Directed() bool {
	return g.directed
}

// Frozen reports whether the graph has been finalized.
func (g *Graph) Frozen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frozen
}

// VertexCount returns the number of vertices (n).
func (g *Graph) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// EdgeCount returns the number of logical edges (m). An undirected edge
// counts once even though it is stored as two arcs.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// AddVertex adds a vertex and returns its dense index.
//
// Description:
//
//	Vertices are assigned contiguous indices in insertion order. A
//	non-empty label is registered in the label → index mapping and must
//	be unique; an empty label skips the mapping entirely.
//
// Inputs:
//
//	label   - Caller-facing identifier. May be empty.
//	payload - Opaque caller data. May be nil. Must not be mutated after
//	          this call.
//
// Outputs:
//
//	VertexID - The new vertex index.
//	error    - ErrGraphFrozen or ErrDuplicateVertex.
func (g *Graph) AddVertex(label string, payload any) (VertexID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return -1, ErrGraphFrozen
	}
	if label != "" {
		if _, exists := g.labelIndex[label]; exists {
			return -1, fmt.Errorf("%w: %q", ErrDuplicateVertex, label)
		}
	}

	id := len(g.vertices)
	g.vertices = append(g.vertices, Vertex{ID: id, Label: label, Payload: payload})
	g.adjacency = append(g.adjacency, nil)
	if g.directed {
		g.incoming = append(g.incoming, nil)
	}
	if label != "" {
		g.labelIndex[label] = id
	}
	return id, nil
}

// AddEdge adds an edge between two existing vertices.
//
// Description:
//
//	The edge carries both a weight (traversal cost) and a capacity
//	(flow limit). The store accepts negative weights so that flow-only
//	graphs are unrestricted; algorithms that require non-negative
//	weights fail lazily with ErrNegativeWeight when they first
//	encounter one. NaN values and negative capacities are rejected
//	eagerly because no algorithm can interpret them.
//
// Inputs:
//
//	u, v     - Endpoint vertex indices. Must be in range.
//	weight   - Edge weight. Must not be NaN.
//	capacity - Edge capacity. Must be ≥ 0 and not NaN.
//
// Outputs:
//
//	EdgeID - The new edge index.
//	error  - ErrGraphFrozen, ErrInvalidVertex, ErrInvalidWeight, or
//	         ErrNegativeCapacity.
func (g *Graph) AddEdge(u, v VertexID, weight, capacity float64) (EdgeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return -1, ErrGraphFrozen
	}
	if u < 0 || u >= len(g.vertices) {
		return -1, fmt.Errorf("%w: from=%d (n=%d)", ErrInvalidVertex, u, len(g.vertices))
	}
	if v < 0 || v >= len(g.vertices) {
		return -1, fmt.Errorf("%w: to=%d (n=%d)", ErrInvalidVertex, v, len(g.vertices))
	}
	if math.IsNaN(weight) || math.IsNaN(capacity) {
		return -1, fmt.Errorf("%w: %d→%d", ErrInvalidWeight, u, v)
	}
	if capacity < 0 {
		return -1, fmt.Errorf("%w: %d→%d capacity=%v", ErrNegativeCapacity, u, v, capacity)
	}

	id := len(g.edges)
	g.edges = append(g.edges, Edge{ID: id, From: u, To: v, Weight: weight, Capacity: capacity})

	arc := Arc{To: v, Weight: weight, Capacity: capacity, Edge: id}
	g.adjacency[u] = append(g.adjacency[u], arc)
	if g.directed {
		g.incoming[v] = append(g.incoming[v], Arc{To: u, Weight: weight, Capacity: capacity, Edge: id})
	} else {
		g.adjacency[v] = append(g.adjacency[v], Arc{To: u, Weight: weight, Capacity: capacity, Edge: id})
	}
	return id, nil
}

// Freeze finalizes the graph. After Freeze() the graph is immutable
// and safe for unlimited concurrent reads. Freeze is idempotent.
func (g *Graph) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frozen = true
	if !g.directed {
		g.incoming = g.adjacency
	}
}

// EdgesFrom returns a copy of the arcs leaving v.
//
// Inputs:
//
//	v - Vertex index. Must be in range.
//
// Outputs:
//
//	[]Arc - Owned copy of the adjacency entries for v.
//	error - ErrInvalidVertex if v is out of range.
//
// Thread Safety: Safe for concurrent use.
func (g *Graph) EdgesFrom(v VertexID) ([]Arc, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if v < 0 || v >= len(g.vertices) {
		return nil, fmt.Errorf("%w: %d (n=%d)", ErrInvalidVertex, v, len(g.vertices))
	}
	arcs := make([]Arc, len(g.adjacency[v]))
	copy(arcs, g.adjacency[v])
	return arcs, nil
}

// Vertex returns the vertex at index v.
//
// Thread Safety: Safe for concurrent use after Freeze().
func (g *Graph) Vertex(v VertexID) (Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if v < 0 || v >= len(g.vertices) {
		return Vertex{}, fmt.Errorf("%w: %d (n=%d)", ErrInvalidVertex, v, len(g.vertices))
	}
	return g.vertices[v], nil
}

// VertexByLabel resolves a label to its internal index.
//
// Outputs:
//
//	VertexID - The vertex index.
//	bool     - True if the label is registered.
//
// Thread Safety: Safe for concurrent use after Freeze().
func (g *Graph) VertexByLabel(label string) (VertexID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.labelIndex[label]
	return id, ok
}

// Label returns the label of vertex v, or "" if v is out of range.
func (g *Graph) Label(v VertexID) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if v < 0 || v >= len(g.vertices) {
		return ""
	}
	return g.vertices[v].Label
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// =============================================================================
// Internal read paths (no copying; frozen graphs only)
// =============================================================================

// arcsFrom returns the live adjacency slice for v. Callers must treat
// the slice as read-only and must only call this on a frozen graph.
func (g *Graph) arcsFrom(v VertexID) []Arc {
	return g.adjacency[v]
}

// arcsInto returns the live incoming-arc slice for v. For undirected
// graphs this is the same slice as arcsFrom. The Arc.To field holds
// the source vertex of the incoming edge.
func (g *Graph) arcsInto(v VertexID) []Arc {
	return g.incoming[v]
}

// outDegree returns the number of arcs leaving v.
func (g *Graph) outDegree(v VertexID) int {
	return len(g.adjacency[v])
}

// validateAlgorithmInput performs the shared precondition checks every
// algorithm runs before touching the graph.
func validateAlgorithmInput(g *Graph) error {
	if g == nil {
		return ErrNilGraph
	}
	if !g.Frozen() {
		return ErrGraphNotFrozen
	}
	return nil
}

// validateVertex checks that v is a valid index for g.
func validateVertex(g *Graph, v VertexID, role string) error {
	if v < 0 || v >= g.VertexCount() {
		return fmt.Errorf("%w: %s=%d (n=%d)", ErrInvalidVertex, role, v, g.VertexCount())
	}
	return nil
}
