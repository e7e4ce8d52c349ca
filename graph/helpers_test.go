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

import "testing"

// testGraphBuilder builds small graphs for tests with a fluent API.
type testGraphBuilder struct {
	g   *Graph
	err error
}

// newTestGraph starts a builder. Pass directed=true for ordered edges.
func newTestGraph(directed bool) *testGraphBuilder {
	return &testGraphBuilder{g: NewGraph(directed)}
}

// vertex adds a labeled vertex.
func (b *testGraphBuilder) vertex(labels ...string) *testGraphBuilder {
	for _, label := range labels {
		if b.err != nil {
			return b
		}
		_, b.err = b.g.AddVertex(label, nil)
	}
	return b
}

// edge adds an edge by labels with the given weight and zero capacity.
func (b *testGraphBuilder) edge(from, to string, weight float64) *testGraphBuilder {
	return b.edgeCap(from, to, weight, 0)
}

// edgeCap adds an edge by labels with weight and capacity.
func (b *testGraphBuilder) edgeCap(from, to string, weight, capacity float64) *testGraphBuilder {
	if b.err != nil {
		return b
	}
	u, ok := b.g.VertexByLabel(from)
	if !ok {
		b.err = ErrInvalidVertex
		return b
	}
	v, ok := b.g.VertexByLabel(to)
	if !ok {
		b.err = ErrInvalidVertex
		return b
	}
	_, b.err = b.g.AddEdge(u, v, weight, capacity)
	return b
}

// build freezes and returns the graph, failing the test on any
// accumulated builder error.
func (b *testGraphBuilder) build(t *testing.T) *Graph {
	t.Helper()
	if b.err != nil {
		t.Fatalf("test graph construction failed: %v", b.err)
	}
	b.g.Freeze()
	return b.g
}

// id resolves a label to its vertex index, failing the test if absent.
func id(t *testing.T, g *Graph, label string) VertexID {
	t.Helper()
	v, ok := g.VertexByLabel(label)
	if !ok {
		t.Fatalf("vertex %q not found", label)
	}
	return v
}
