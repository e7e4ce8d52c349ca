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
	"errors"
	"math"
	"testing"
)

// =============================================================================
// Graph Store Tests
// =============================================================================

func TestGraph_AddVertex_DenseIndices(t *testing.T) {
	g := NewGraph(false)

	for i, label := range []string{"A", "B", "C"} {
		v, err := g.AddVertex(label, nil)
		if err != nil {
			t.Fatalf("AddVertex(%q) failed: %v", label, err)
		}
		if v != i {
			t.Errorf("AddVertex(%q) = %d, want %d (dense contiguous indices)", label, v, i)
		}
	}
	if g.VertexCount() != 3 {
		t.Errorf("VertexCount() = %d, want 3", g.VertexCount())
	}
}

func TestGraph_AddVertex_DuplicateLabel(t *testing.T) {
	g := NewGraph(false)
	if _, err := g.AddVertex("A", nil); err != nil {
		t.Fatalf("first AddVertex failed: %v", err)
	}
	if _, err := g.AddVertex("A", nil); !errors.Is(err, ErrDuplicateVertex) {
		t.Errorf("duplicate label error = %v, want ErrDuplicateVertex", err)
	}
}

func TestGraph_AddEdge_InvalidVertex(t *testing.T) {
	g := NewGraph(false)
	a, _ := g.AddVertex("A", nil)

	tests := []struct {
		name string
		u, v VertexID
	}{
		{"from out of range", 5, a},
		{"to out of range", a, 5},
		{"negative from", -1, a},
		{"negative to", a, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.AddEdge(tt.u, tt.v, 1, 0); !errors.Is(err, ErrInvalidVertex) {
				t.Errorf("AddEdge(%d, %d) error = %v, want ErrInvalidVertex", tt.u, tt.v, err)
			}
		})
	}
}

func TestGraph_AddEdge_RejectsNaNAndNegativeCapacity(t *testing.T) {
	g := NewGraph(false)
	a, _ := g.AddVertex("A", nil)
	b, _ := g.AddVertex("B", nil)

	if _, err := g.AddEdge(a, b, math.NaN(), 0); !errors.Is(err, ErrInvalidWeight) {
		t.Errorf("NaN weight error = %v, want ErrInvalidWeight", err)
	}
	if _, err := g.AddEdge(a, b, 1, -1); !errors.Is(err, ErrNegativeCapacity) {
		t.Errorf("negative capacity error = %v, want ErrNegativeCapacity", err)
	}
	// Negative weights are accepted by the store; shortest-path and
	// ranking algorithms reject them lazily.
	if _, err := g.AddEdge(a, b, -1, 0); err != nil {
		t.Errorf("negative weight should be accepted by the store, got %v", err)
	}
}

func TestGraph_FreezeBlocksMutation(t *testing.T) {
	g := NewGraph(false)
	a, _ := g.AddVertex("A", nil)
	b, _ := g.AddVertex("B", nil)
	g.Freeze()

	if _, err := g.AddVertex("C", nil); !errors.Is(err, ErrGraphFrozen) {
		t.Errorf("AddVertex after Freeze error = %v, want ErrGraphFrozen", err)
	}
	if _, err := g.AddEdge(a, b, 1, 0); !errors.Is(err, ErrGraphFrozen) {
		t.Errorf("AddEdge after Freeze error = %v, want ErrGraphFrozen", err)
	}
	if !g.Frozen() {
		t.Error("Frozen() = false after Freeze()")
	}
}

func TestGraph_EdgesFrom_Undirected(t *testing.T) {
	g := newTestGraph(false).
		vertex("A", "B", "C").
		edge("A", "B", 1).
		edge("A", "C", 2).
		build(t)

	arcs, err := g.EdgesFrom(id(t, g, "A"))
	if err != nil {
		t.Fatalf("EdgesFrom failed: %v", err)
	}
	if len(arcs) != 2 {
		t.Fatalf("len(EdgesFrom(A)) = %d, want 2", len(arcs))
	}

	// Undirected edges are traversable from both endpoints.
	arcs, err = g.EdgesFrom(id(t, g, "B"))
	if err != nil {
		t.Fatalf("EdgesFrom failed: %v", err)
	}
	if len(arcs) != 1 || arcs[0].To != id(t, g, "A") {
		t.Errorf("EdgesFrom(B) = %v, want single arc back to A", arcs)
	}
}

func TestGraph_EdgesFrom_Directed(t *testing.T) {
	g := newTestGraph(true).
		vertex("A", "B").
		edge("A", "B", 1).
		build(t)

	arcs, err := g.EdgesFrom(id(t, g, "B"))
	if err != nil {
		t.Fatalf("EdgesFrom failed: %v", err)
	}
	if len(arcs) != 0 {
		t.Errorf("directed edge must not be traversable backwards, got %v", arcs)
	}
}

func TestGraph_EdgesFrom_OutOfRange(t *testing.T) {
	g := newTestGraph(false).vertex("A").build(t)
	if _, err := g.EdgesFrom(7); !errors.Is(err, ErrInvalidVertex) {
		t.Errorf("EdgesFrom(7) error = %v, want ErrInvalidVertex", err)
	}
}

func TestGraph_LabelMapping(t *testing.T) {
	g := newTestGraph(false).vertex("alpha", "beta").build(t)

	v, ok := g.VertexByLabel("beta")
	if !ok || v != 1 {
		t.Errorf("VertexByLabel(beta) = (%d, %v), want (1, true)", v, ok)
	}
	if _, ok := g.VertexByLabel("gamma"); ok {
		t.Error("VertexByLabel(gamma) should not resolve")
	}
	if got := g.Label(0); got != "alpha" {
		t.Errorf("Label(0) = %q, want alpha", got)
	}
	if got := g.Label(42); got != "" {
		t.Errorf("Label(42) = %q, want empty", got)
	}
}

func TestGraph_EdgeCount_UndirectedCountsOnce(t *testing.T) {
	g := newTestGraph(false).
		vertex("A", "B", "C").
		edge("A", "B", 1).
		edge("B", "C", 1).
		build(t)

	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2 (logical edges, not arcs)", g.EdgeCount())
	}
}

func TestGraph_ConcurrentReadsAfterFreeze(t *testing.T) {
	g := newTestGraph(false).
		vertex("A", "B", "C", "D").
		edge("A", "B", 1).
		edge("B", "C", 1).
		edge("C", "D", 1).
		build(t)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if _, err := g.EdgesFrom(j % g.VertexCount()); err != nil {
					t.Errorf("concurrent EdgesFrom failed: %v", err)
					return
				}
				_ = g.VertexCount()
				_ = g.EdgeCount()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
