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
// Max-Flow Tests
// =============================================================================

func TestMaxFlow_TwoDisjointPaths(t *testing.T) {
	// s→A(10)→t(5) carries 5, s→B(3)→t(3) carries 3: total 8.
	g := newTestGraph(true).
		vertex("s", "A", "B", "t").
		edgeCap("s", "A", 1, 10).
		edgeCap("A", "t", 1, 5).
		edgeCap("s", "B", 1, 3).
		edgeCap("B", "t", 1, 3).
		build(t)

	res, err := MaxFlow(context.Background(), g, id(t, g, "s"), id(t, g, "t"))
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Value)
	assert.LessOrEqual(t, res.Augmentations, 2)
}

func TestMaxFlow_BottleneckInMiddle(t *testing.T) {
	// All flow funnels through the m→n edge of capacity 4.
	g := newTestGraph(true).
		vertex("s", "m", "n", "t").
		edgeCap("s", "m", 1, 100).
		edgeCap("m", "n", 1, 4).
		edgeCap("n", "t", 1, 100).
		build(t)

	res, err := MaxFlow(context.Background(), g, id(t, g, "s"), id(t, g, "t"))
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Value)
}

func TestMaxFlow_RequiresBackEdgeRerouting(t *testing.T) {
	// Classic residual-rerouting shape: a greedy first path s→a→b→t
	// would block the optimum; the residual back-edge on a→b lets the
	// second augmentation undo it.
	g := newTestGraph(true).
		vertex("s", "a", "b", "t").
		edgeCap("s", "a", 1, 1).
		edgeCap("s", "b", 1, 1).
		edgeCap("a", "b", 1, 1).
		edgeCap("a", "t", 1, 1).
		edgeCap("b", "t", 1, 1).
		build(t)

	res, err := MaxFlow(context.Background(), g, id(t, g, "s"), id(t, g, "t"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Value)
}

func TestMaxFlow_Disconnected(t *testing.T) {
	g := newTestGraph(true).
		vertex("s", "t").
		build(t)

	res, err := MaxFlow(context.Background(), g, id(t, g, "s"), id(t, g, "t"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Value)
	assert.Equal(t, 0, res.Augmentations)
	assert.Contains(t, res.MinCut, id(t, g, "s"))
	assert.NotContains(t, res.MinCut, id(t, g, "t"))
}

func TestMaxFlow_MinCutCapacityEqualsFlow(t *testing.T) {
	g := newTestGraph(true).
		vertex("s", "A", "B", "t").
		edgeCap("s", "A", 1, 10).
		edgeCap("A", "t", 1, 5).
		edgeCap("s", "B", 1, 3).
		edgeCap("B", "t", 1, 3).
		edgeCap("A", "B", 1, 2).
		build(t)

	res, err := MaxFlow(context.Background(), g, id(t, g, "s"), id(t, g, "t"))
	require.NoError(t, err)

	// Max-flow min-cut: the capacity of edges leaving the source side
	// must equal the flow value.
	inCut := make(map[VertexID]bool, len(res.MinCut))
	for _, v := range res.MinCut {
		inCut[v] = true
	}
	require.True(t, inCut[id(t, g, "s")])
	require.False(t, inCut[id(t, g, "t")])

	cutCapacity := 0.0
	for _, e := range g.Edges() {
		if inCut[e.From] && !inCut[e.To] {
			cutCapacity += e.Capacity
		}
	}
	assert.InDelta(t, res.Value, cutCapacity, 1e-9)
}

func TestMaxFlow_UndirectedEdgesCarryBothWays(t *testing.T) {
	// An undirected s-t edge of capacity 7 admits 7 units of flow.
	g := newTestGraph(false).
		vertex("s", "t").
		edgeCap("s", "t", 1, 7).
		build(t)

	res, err := MaxFlow(context.Background(), g, id(t, g, "s"), id(t, g, "t"))
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.Value)
}

func TestMaxFlow_SourceIsSink(t *testing.T) {
	g := newTestGraph(true).vertex("s").build(t)

	_, err := MaxFlow(context.Background(), g, id(t, g, "s"), id(t, g, "s"))
	assert.ErrorIs(t, err, ErrSourceIsSink)
}

func TestMaxFlow_InvalidVertices(t *testing.T) {
	g := newTestGraph(true).vertex("s", "t").build(t)

	_, err := MaxFlow(context.Background(), g, -1, id(t, g, "t"))
	assert.ErrorIs(t, err, ErrInvalidVertex)

	_, err = MaxFlow(context.Background(), g, id(t, g, "s"), 99)
	assert.ErrorIs(t, err, ErrInvalidVertex)
}

func TestMaxFlow_ZeroCapacityEdges(t *testing.T) {
	// Edges default to zero capacity through the weight-only helper, so
	// a purely topological path carries no flow.
	g := newTestGraph(true).
		vertex("s", "a", "t").
		edge("s", "a", 1).
		edge("a", "t", 1).
		build(t)

	res, err := MaxFlow(context.Background(), g, id(t, g, "s"), id(t, g, "t"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Value)
}
