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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Betweenness Tests
// =============================================================================

func TestBetweenness_PathGraph(t *testing.T) {
	// Path A-B-C: B sits on the only shortest path between A and C.
	// With undirected halving its score is exactly 1; endpoints get 0.
	g := newTestGraph(false).
		vertex("A", "B", "C").
		edge("A", "B", 1).
		edge("B", "C", 1).
		build(t)

	res, err := Betweenness(context.Background(), g, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Scores[id(t, g, "A")])
	assert.Equal(t, 1.0, res.Scores[id(t, g, "B")])
	assert.Equal(t, 0.0, res.Scores[id(t, g, "C")])
	assert.Equal(t, g.VertexCount(), res.Sources)
}

func TestBetweenness_CycleSymmetry(t *testing.T) {
	// Every vertex of a cycle is structurally identical, so all scores
	// must match exactly.
	g := newTestGraph(false).
		vertex("A", "B", "C", "D", "E").
		edge("A", "B", 1).
		edge("B", "C", 1).
		edge("C", "D", 1).
		edge("D", "E", 1).
		edge("E", "A", 1).
		build(t)

	res, err := Betweenness(context.Background(), g, nil)
	require.NoError(t, err)

	first := res.Scores[0]
	for v, score := range res.Scores {
		assert.InDelta(t, first, score, 1e-12, "vertex %d", v)
	}
}

func TestBetweenness_Star(t *testing.T) {
	// Every leaf pair routes through the hub. With 4 leaves there are
	// C(4,2)=6 unordered pairs, so the hub scores 6 after halving.
	g := newTestGraph(false).
		vertex("hub", "a", "b", "c", "d").
		edge("hub", "a", 1).
		edge("hub", "b", 1).
		edge("hub", "c", 1).
		edge("hub", "d", 1).
		build(t)

	res, err := Betweenness(context.Background(), g, nil)
	require.NoError(t, err)

	assert.Equal(t, 6.0, res.Scores[id(t, g, "hub")])
	for _, leaf := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, 0.0, res.Scores[id(t, g, leaf)])
	}
}

func TestBetweenness_DirectedNotHalved(t *testing.T) {
	// Directed path A→B→C. The single ordered pair (A,C) routes through
	// B and no halving applies.
	g := newTestGraph(true).
		vertex("A", "B", "C").
		edge("A", "B", 1).
		edge("B", "C", 1).
		build(t)

	res, err := Betweenness(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Scores[id(t, g, "B")])
}

func TestBetweenness_SplitShortestPaths(t *testing.T) {
	// Diamond A-B-D / A-C-D: the A..D dependency splits evenly between
	// the two interior vertices.
	g := newTestGraph(false).
		vertex("A", "B", "C", "D").
		edge("A", "B", 1).
		edge("A", "C", 1).
		edge("B", "D", 1).
		edge("C", "D", 1).
		build(t)

	res, err := Betweenness(context.Background(), g, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.Scores[id(t, g, "B")], 1e-12)
	assert.InDelta(t, 0.5, res.Scores[id(t, g, "C")], 1e-12)
}

func TestBetweenness_WeightedRoutesAroundHeavyEdge(t *testing.T) {
	// Unweighted, A-C is a direct hop and B scores 0. Weighted, the
	// direct edge costs 10 while the A-B-C detour costs 2, so every
	// A..C shortest path runs through B.
	g := newTestGraph(false).
		vertex("A", "B", "C").
		edge("A", "B", 1).
		edge("B", "C", 1).
		edge("A", "C", 10).
		build(t)

	unweighted, err := Betweenness(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, unweighted.Scores[id(t, g, "B")])

	weighted, err := Betweenness(context.Background(), g, &BetweennessOptions{UseWeights: true})
	require.NoError(t, err)
	assert.Equal(t, 1.0, weighted.Scores[id(t, g, "B")])
}

func TestBetweenness_WeightedNegativeWeight(t *testing.T) {
	g := newTestGraph(true).
		vertex("A", "B").
		edge("A", "B", -1).
		build(t)

	_, err := Betweenness(context.Background(), g, &BetweennessOptions{UseWeights: true})
	assert.ErrorIs(t, err, ErrNegativeWeight)
}

func TestBetweenness_WorkerCountParity(t *testing.T) {
	// The merge of per-worker partials must be exact regardless of how
	// the sources were striped across workers.
	g := newTestGraph(false).
		vertex("A", "B", "C", "D", "E", "F").
		edge("A", "B", 1).
		edge("B", "C", 1).
		edge("C", "D", 1).
		edge("D", "E", 1).
		edge("E", "F", 1).
		edge("C", "F", 1).
		build(t)

	serial, err := Betweenness(context.Background(), g, &BetweennessOptions{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, serial.Workers)

	parallel, err := Betweenness(context.Background(), g, &BetweennessOptions{Workers: 4})
	require.NoError(t, err)

	for v := 0; v < g.VertexCount(); v++ {
		assert.InDelta(t, serial.Scores[v], parallel.Scores[v], 1e-12, "vertex %d", v)
	}
}

func TestBetweenness_EmptyGraph(t *testing.T) {
	g := NewGraph(false)
	g.Freeze()

	res, err := Betweenness(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Scores)
	assert.Equal(t, 0, res.Sources)
}
