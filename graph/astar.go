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
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// A* Search
// =============================================================================

var astarTracer = otel.Tracer("graphkit.graph.astar")

// Heuristic estimates the remaining cost from a vertex to the goal.
//
// Caller obligation: A* only guarantees an optimal path when the
// heuristic is admissible (never overestimates the true remaining cost)
// and consistent (respects the triangle inequality across edges). The
// engine does not verify this; an inadmissible heuristic silently
// degrades to a valid but possibly suboptimal path.
type Heuristic func(v VertexID) float64

// AStar computes a shortest path from source to goal guided by a
// caller-supplied heuristic.
//
// Description:
//
//	Identical relaxation to Dijkstra, but the frontier is keyed by
//	g(n) + h(n). Terminates successfully the first time the goal is
//	popped from the frontier; with an admissible, consistent heuristic
//	the popped path is optimal.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil.
//   - g: Frozen graph to search. Must not be nil.
//   - source, goal: Endpoint vertices. Must be in range.
//   - h: Heuristic function. Must not be nil. See Heuristic for the
//     admissibility obligation.
//
// Outputs:
//
//   - *PathResult: Found=false when the frontier empties without
//     reaching the goal (a normal outcome, not an error).
//   - error: ErrNilGraph, ErrGraphNotFrozen, ErrInvalidVertex,
//     ErrNilHeuristic, or ErrNegativeWeight (lazy, at first encounter).
//
// Thread Safety: Safe for concurrent use (read-only on graph).
//
// Complexity: O((V + E) log V) worst case; typically far fewer
// expansions with an informative heuristic.
func AStar(ctx context.Context, g *Graph, source, goal VertexID, h Heuristic) (*PathResult, error) {
	start := time.Now()
	ctx, span := astarTracer.Start(ctx, "graph.AStar",
		trace.WithAttributes(
			attribute.Int("source", source),
			attribute.Int("goal", goal),
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
	if err := validateVertex(g, goal, "goal"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if h == nil {
		span.RecordError(ErrNilHeuristic)
		span.SetStatus(codes.Error, ErrNilHeuristic.Error())
		return nil, ErrNilHeuristic
	}

	n := g.VertexCount()
	span.SetAttributes(attribute.Int("vertex_count", n))

	gScore := make([]float64, n)
	pred := make([]VertexID, n)
	settled := make([]bool, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		pred[i] = -1
	}
	gScore[source] = 0

	pq := make(frontier, 0, n)
	heap.Push(&pq, frontierItem{vertex: source, priority: h(source)})

	expanded := 0
	for pq.Len() > 0 {
		if ctx.Err() != nil {
			span.SetAttributes(attribute.Bool("cancelled", true))
			return nil, ctx.Err()
		}

		item := heap.Pop(&pq).(frontierItem)
		u := item.vertex
		if settled[u] {
			continue
		}
		settled[u] = true
		expanded++

		if u == goal {
			path := reconstructPath(pred, source, goal)
			recordAlgorithmMetrics(ctx, "astar", time.Since(start), true)
			span.SetAttributes(
				attribute.Int("expanded", expanded),
				attribute.Bool("found", true),
			)
			span.SetStatus(codes.Ok, "")

			slog.Debug("astar completed",
				slog.Int("source", source),
				slog.Int("goal", goal),
				slog.Int("expanded", expanded),
				slog.Bool("found", true),
			)
			return &PathResult{Path: path, Distance: gScore[goal], Found: true}, nil
		}

		for _, arc := range g.arcsFrom(u) {
			if arc.Weight < 0 {
				err := fmt.Errorf("%w: edge %d→%d weight=%v", ErrNegativeWeight, u, arc.To, arc.Weight)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			if candidate := gScore[u] + arc.Weight; candidate < gScore[arc.To] {
				gScore[arc.To] = candidate
				pred[arc.To] = u
				heap.Push(&pq, frontierItem{vertex: arc.To, priority: candidate + h(arc.To)})
			}
		}
	}

	// Frontier emptied without reaching the goal.
	recordAlgorithmMetrics(ctx, "astar", time.Since(start), true)
	span.SetAttributes(
		attribute.Int("expanded", expanded),
		attribute.Bool("found", false),
	)
	span.SetStatus(codes.Ok, "")

	slog.Debug("astar completed",
		slog.Int("source", source),
		slog.Int("goal", goal),
		slog.Int("expanded", expanded),
		slog.Bool("found", false),
	)
	return &PathResult{Found: false}, nil
}

// reconstructPath walks the predecessor array from goal back to source
// and returns the path in source-first order.
func reconstructPath(pred []VertexID, source, goal VertexID) []VertexID {
	path := []VertexID{goal}
	for at := goal; at != source; {
		at = pred[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
