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
// Shortest Paths (Dijkstra)
// =============================================================================

var shortestPathTracer = otel.Tracer("graphkit.graph.shortest_path")

// DijkstraOptions configures the Dijkstra algorithm.
type DijkstraOptions struct {
	// Target, when ≥ 0, stops the search as soon as that vertex is
	// settled. Default: -1 (compute distances to every reachable vertex).
	Target VertexID
}

// Validate checks options and applies defaults for invalid values.
func (o *DijkstraOptions) Validate() {
	if o.Target < -1 {
		o.Target = -1
	}
}

// DefaultDijkstraOptions returns sensible defaults.
func DefaultDijkstraOptions() *DijkstraOptions {
	return &DijkstraOptions{Target: -1}
}

// DistanceResult contains single-source shortest-path output.
type DistanceResult struct {
	// Source is the vertex the search started from.
	Source VertexID

	// Distances maps each settled vertex to its shortest-path length
	// from Source. Vertices that were never settled are absent — an
	// absent entry means unreachable, never distance 0.
	Distances map[VertexID]float64

	// Settled is the number of vertices whose distance was finalized.
	Settled int

	// pred[v] is the predecessor of v on its shortest path, -1 if none.
	pred []VertexID
}

// PathTo reconstructs the shortest path from Source to v.
//
// Outputs:
//
//	[]VertexID - Ordered vertex sequence Source..v. Nil if v was not
//	             reached.
//	bool       - True if v was reached.
func (r *DistanceResult) PathTo(v VertexID) ([]VertexID, bool) {
	if v < 0 || v >= len(r.pred) {
		return nil, false
	}
	if _, ok := r.Distances[v]; !ok {
		return nil, false
	}
	path := []VertexID{v}
	for at := v; at != r.Source; {
		at = r.pred[at]
		path = append(path, at)
	}
	// Reverse into source-first order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}

// PathResult contains a single shortest path between two vertices.
type PathResult struct {
	// Path is the ordered vertex sequence from source to target.
	// Nil when Found is false.
	Path []VertexID

	// Distance is the total path weight. Meaningless when Found is false.
	Distance float64

	// Found reports whether the target is reachable from the source.
	// An unreachable target is a normal outcome, not an error.
	Found bool
}

// frontierItem is one entry in the lazy-deletion priority frontier.
// Stale entries (priority greater than the vertex's current best) are
// discarded on pop rather than removed eagerly.
type frontierItem struct {
	vertex   VertexID
	priority float64
}

// frontier is a min-heap of frontierItem keyed by priority.
type frontier []frontierItem

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].priority < f[j].priority }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)         { *f = append(*f, x.(frontierItem)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// Dijkstra computes single-source shortest paths over non-negative
// edge weights.
//
// Description:
//
//	Maintains a min-priority frontier keyed by tentative distance with
//	lazy deletion: relaxing an edge pushes a fresh entry rather than
//	decreasing a key, and stale entries are skipped on pop. Once a
//	vertex is popped with its current-best distance it is settled and
//	its distance is final. Vertices never settled are simply absent
//	from the result map.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil.
//   - g: Frozen graph to search. Must not be nil.
//   - source: Start vertex. Must be in range.
//   - opts: Configuration options. If nil, defaults are used.
//
// Outputs:
//
//   - *DistanceResult: Distances and predecessors for settled vertices.
//   - error: ErrNilGraph, ErrGraphNotFrozen, ErrInvalidVertex, or
//     ErrNegativeWeight on the first negative edge encountered (checked
//     lazily, not as an eager pre-scan).
//
// Thread Safety: Safe for concurrent use (read-only on graph).
//
// Complexity: O((V + E) log V) time, O(V + E) space.
func Dijkstra(ctx context.Context, g *Graph, source VertexID, opts *DijkstraOptions) (*DistanceResult, error) {
	start := time.Now()
	ctx, span := shortestPathTracer.Start(ctx, "graph.Dijkstra",
		trace.WithAttributes(attribute.Int("source", source)),
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
	if opts == nil {
		opts = DefaultDijkstraOptions()
	} else {
		opts.Validate()
	}

	n := g.VertexCount()
	span.SetAttributes(
		attribute.Int("vertex_count", n),
		attribute.Int("edge_count", g.EdgeCount()),
		attribute.Int("target", opts.Target),
	)

	// Dense working state, owned exclusively by this invocation.
	dist := make([]float64, n)
	pred := make([]VertexID, n)
	settled := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = -1
	}
	dist[source] = 0

	pq := make(frontier, 0, n)
	heap.Push(&pq, frontierItem{vertex: source, priority: 0})

	settledCount := 0
	for pq.Len() > 0 {
		if ctx.Err() != nil {
			span.SetAttributes(attribute.Bool("cancelled", true))
			return nil, ctx.Err()
		}

		item := heap.Pop(&pq).(frontierItem)
		u := item.vertex

		// Lazy deletion: skip stale frontier entries.
		if item.priority > dist[u] {
			continue
		}
		if settled[u] {
			continue
		}
		settled[u] = true
		settledCount++

		if u == opts.Target {
			span.AddEvent("target_settled")
			break
		}

		for _, arc := range g.arcsFrom(u) {
			if arc.Weight < 0 {
				err := fmt.Errorf("%w: edge %d→%d weight=%v", ErrNegativeWeight, u, arc.To, arc.Weight)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			if candidate := dist[u] + arc.Weight; candidate < dist[arc.To] {
				dist[arc.To] = candidate
				pred[arc.To] = u
				heap.Push(&pq, frontierItem{vertex: arc.To, priority: candidate})
			}
		}
	}

	// Copy settled distances into an owned result map; unreachable
	// vertices stay absent.
	distances := make(map[VertexID]float64, settledCount)
	for v := 0; v < n; v++ {
		if settled[v] {
			distances[v] = dist[v]
		}
	}

	recordAlgorithmMetrics(ctx, "dijkstra", time.Since(start), true)
	span.SetAttributes(attribute.Int("settled", settledCount))
	span.SetStatus(codes.Ok, "")

	slog.Debug("dijkstra completed",
		slog.Int("source", source),
		slog.Int("settled", settledCount),
		slog.Int("vertex_count", n),
	)

	return &DistanceResult{
		Source:    source,
		Distances: distances,
		Settled:   settledCount,
		pred:      pred,
	}, nil
}

// ShortestPath computes the single shortest path between two vertices.
//
// Description:
//
//	Runs Dijkstra with early termination at the target and reconstructs
//	the path. An unreachable target yields Found=false and a nil path,
//	which is a normal outcome rather than an error.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil.
//   - g: Frozen graph to search. Must not be nil.
//   - source, target: Endpoint vertices. Must be in range.
//
// Outputs:
//
//   - *PathResult: The path, its total weight, and reachability.
//   - error: Same failure modes as Dijkstra.
//
// Thread Safety: Safe for concurrent use.
func ShortestPath(ctx context.Context, g *Graph, source, target VertexID) (*PathResult, error) {
	if err := validateAlgorithmInput(g); err != nil {
		return nil, err
	}
	if err := validateVertex(g, target, "target"); err != nil {
		return nil, err
	}

	res, err := Dijkstra(ctx, g, source, &DijkstraOptions{Target: target})
	if err != nil {
		return nil, err
	}

	path, ok := res.PathTo(target)
	if !ok {
		return &PathResult{Found: false}, nil
	}
	return &PathResult{
		Path:     path,
		Distance: res.Distances[target],
		Found:    true,
	}, nil
}
