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
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Maximum Flow (Edmonds-Karp)
// =============================================================================

var maxFlowTracer = otel.Tracer("graphkit.graph.maxflow")

// flowEpsilon is the tolerance for residual-capacity comparisons.
// Residuals smaller than this are considered exhausted.
const flowEpsilon = 1e-12

// MaxFlowResult contains the output of a max-flow computation.
type MaxFlowResult struct {
	// Value is the maximum flow from source to sink. Zero when the
	// sink is unreachable, which is a normal outcome, not an error.
	Value float64

	// MinCut is the source side of a minimum cut: the vertices still
	// reachable from the source in the final residual graph. By the
	// max-flow/min-cut theorem the capacity crossing this cut equals
	// Value.
	MinCut []VertexID

	// Augmentations is the number of augmenting paths applied.
	Augmentations int
}

// residualArc is one arc of the residual network. Arcs are stored in
// companion pairs: arc i and arc i^1 are mutual reverses, so pushing
// flow over one raises the residual of the other.
type residualArc struct {
	to       VertexID
	residual float64
}

// residualNetwork is the working residual-capacity view derived from a
// Graph. Owned exclusively by one MaxFlow invocation.
type residualNetwork struct {
	arcs []residualArc
	head [][]int // arc indices per vertex
}

// newResidualNetwork mirrors the input graph: each directed edge
// becomes a forward arc (residual = capacity) plus a zero-residual
// reverse arc for flow cancellation. Undirected edges get full
// capacity on both companion arcs.
func newResidualNetwork(g *Graph) *residualNetwork {
	rn := &residualNetwork{head: make([][]int, g.VertexCount())}
	for _, e := range g.Edges() {
		reverseCap := 0.0
		if !g.Directed() {
			reverseCap = e.Capacity
		}
		i := len(rn.arcs)
		rn.arcs = append(rn.arcs,
			residualArc{to: e.To, residual: e.Capacity},
			residualArc{to: e.From, residual: reverseCap},
		)
		rn.head[e.From] = append(rn.head[e.From], i)
		rn.head[e.To] = append(rn.head[e.To], i+1)
	}
	return rn
}

// bfs finds a shortest augmenting path from s to t. parentArc[v] is the
// arc index used to reach v, -1 if unreached. Returns whether t was
// reached.
func (rn *residualNetwork) bfs(s, t VertexID, parentArc []int) bool {
	for i := range parentArc {
		parentArc[i] = -1
	}
	parentArc[s] = -2 // sentinel: source has no parent but is visited

	queue := []VertexID{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, ai := range rn.head[v] {
			arc := rn.arcs[ai]
			if arc.residual > flowEpsilon && parentArc[arc.to] == -1 {
				parentArc[arc.to] = ai
				if arc.to == t {
					return true
				}
				queue = append(queue, arc.to)
			}
		}
	}
	return false
}

// MaxFlow computes the maximum flow between two vertices using the
// Edmonds-Karp variant of Ford-Fulkerson.
//
// Description:
//
//	Builds a residual network mirroring the graph's capacities, then
//	repeatedly finds the shortest augmenting path by BFS (guaranteeing
//	polynomial termination, unlike arbitrary-path Ford-Fulkerson),
//	pushes the path's bottleneck flow, and updates forward and reverse
//	residuals. Terminates when no augmenting path exists; the returned
//	value equals the capacity of the minimum cut, which the result
//	exposes for verification.
//
//	A disconnected source/sink pair yields Value 0 — a normal,
//	non-error outcome.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil. Honored between
//     augmentations.
//   - g: Frozen graph. Edge capacities are used; weights are ignored.
//   - source, sink: Distinct vertices. Must be in range.
//
// Outputs:
//
//   - *MaxFlowResult: Flow value, min-cut source side, augmentation count.
//   - error: ErrNilGraph, ErrGraphNotFrozen, ErrInvalidVertex,
//     ErrSourceIsSink, or ctx.Err().
//
// Thread Safety: Safe for concurrent use (read-only on graph).
//
// Complexity: O(V·E²) time, O(V + E) space.
func MaxFlow(ctx context.Context, g *Graph, source, sink VertexID) (*MaxFlowResult, error) {
	start := time.Now()
	ctx, span := maxFlowTracer.Start(ctx, "graph.MaxFlow",
		trace.WithAttributes(
			attribute.Int("source", source),
			attribute.Int("sink", sink),
		),
	)
	defer span.End()

	if err := validateAlgorithmInput(g); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := validateVertex(g, source, "source"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := validateVertex(g, sink, "sink"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if source == sink {
		span.RecordError(ErrSourceIsSink)
		span.SetStatus(codes.Error, ErrSourceIsSink.Error())
		return nil, ErrSourceIsSink
	}

	n := g.VertexCount()
	span.SetAttributes(
		attribute.Int("vertex_count", n),
		attribute.Int("edge_count", g.EdgeCount()),
	)

	rn := newResidualNetwork(g)
	parentArc := make([]int, n)

	value := 0.0
	augmentations := 0
	for rn.bfs(source, sink, parentArc) {
		if ctx.Err() != nil {
			span.SetAttributes(attribute.Bool("cancelled", true))
			return nil, ctx.Err()
		}

		// Bottleneck: minimum residual along the augmenting path.
		bottleneck := math.Inf(1)
		for v := sink; v != source; {
			ai := parentArc[v]
			if rn.arcs[ai].residual < bottleneck {
				bottleneck = rn.arcs[ai].residual
			}
			v = rn.arcs[ai^1].to
		}

		// Apply: lower forward residuals, raise companions.
		for v := sink; v != source; {
			ai := parentArc[v]
			rn.arcs[ai].residual -= bottleneck
			rn.arcs[ai^1].residual += bottleneck
			v = rn.arcs[ai^1].to
		}

		value += bottleneck
		augmentations++
	}

	// The final BFS left parentArc marking exactly the vertices still
	// reachable from the source: the min-cut's source side.
	minCut := make([]VertexID, 0)
	for v := 0; v < n; v++ {
		if parentArc[v] != -1 {
			minCut = append(minCut, v)
		}
	}

	recordAlgorithmMetrics(ctx, "maxflow", time.Since(start), true)
	span.SetAttributes(
		attribute.Float64("flow_value", value),
		attribute.Int("augmentations", augmentations),
		attribute.Int("min_cut_size", len(minCut)),
	)
	span.SetStatus(codes.Ok, "")

	slog.Debug("max flow completed",
		slog.Int("source", source),
		slog.Int("sink", sink),
		slog.Float64("value", value),
		slog.Int("augmentations", augmentations),
	)

	return &MaxFlowResult{
		Value:         value,
		MinCut:        minCut,
		Augmentations: augmentations,
	}, nil
}
