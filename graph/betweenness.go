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
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// Betweenness Centrality (Brandes)
// =============================================================================

var betweennessTracer = otel.Tracer("graphkit.graph.betweenness")

// Betweenness configuration constants.
const (
	// maxBetweennessWorkers caps the source-level parallelism regardless
	// of CPU count. The per-source passes are memory-bound; excessive
	// parallelism only thrashes caches.
	maxBetweennessWorkers = 8
)

// BetweennessOptions configures Brandes' algorithm.
type BetweennessOptions struct {
	// UseWeights selects the weighted variant (Dijkstra per source)
	// instead of unweighted BFS. Default: false (hop counts).
	UseWeights bool

	// Workers bounds the number of concurrent per-source passes.
	// Must be > 0. Default: min(NumCPU, 8).
	Workers int
}

// Validate checks options and applies defaults for invalid values.
func (o *BetweennessOptions) Validate() {
	if o.Workers <= 0 {
		o.Workers = defaultBetweennessWorkers()
	}
}

// DefaultBetweennessOptions returns sensible defaults.
func DefaultBetweennessOptions() *BetweennessOptions {
	return &BetweennessOptions{
		UseWeights: false,
		Workers:    defaultBetweennessWorkers(),
	}
}

func defaultBetweennessWorkers() int {
	w := runtime.NumCPU()
	if w > maxBetweennessWorkers {
		w = maxBetweennessWorkers
	}
	if w < 1 {
		w = 1
	}
	return w
}

// BetweennessResult contains betweenness centrality scores.
type BetweennessResult struct {
	// Scores maps each vertex to its betweenness centrality. For
	// undirected graphs each unordered pair is counted twice during
	// accumulation, so the final scores are divided by 2; directed
	// scores are left undivided.
	Scores map[VertexID]float64

	// Sources is the number of per-source passes performed (= V).
	Sources int

	// Workers is the parallelism the computation actually used.
	Workers int
}

// Betweenness computes betweenness centrality for every vertex using
// Brandes' algorithm.
//
// Description:
//
//	For every vertex s as source, runs a shortest-path pass (BFS for
//	unit weights, Dijkstra when UseWeights is set) accumulating
//	shortest-path counts σ, then back-propagates dependencies δ in
//	reverse finish order. The per-source passes are independent, so
//	they are fanned out across a bounded worker pool; each worker
//	accumulates into its own partial score slice and the partials are
//	merged after the pool drains — there is no shared mutable
//	accumulator.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil.
//   - g: Frozen graph. Must not be nil.
//   - opts: Configuration options. If nil, defaults are used.
//
// Outputs:
//
//   - *BetweennessResult: Centrality scores for all vertices.
//   - error: ErrNilGraph, ErrGraphNotFrozen, ErrNegativeWeight (weighted
//     variant only, at first encounter), or ctx.Err().
//
// Thread Safety: Safe for concurrent use (read-only on graph).
//
// Complexity: O(V·E) unweighted, O(V·(V + E) log V) weighted. This is
// the asymptotically dominant cost in the engine.
func Betweenness(ctx context.Context, g *Graph, opts *BetweennessOptions) (*BetweennessResult, error) {
	start := time.Now()
	ctx, span := betweennessTracer.Start(ctx, "graph.Betweenness")
	defer span.End()

	if err := validateAlgorithmInput(g); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if opts == nil {
		opts = DefaultBetweennessOptions()
	} else {
		opts.Validate()
	}

	n := g.VertexCount()
	span.SetAttributes(
		attribute.Int("vertex_count", n),
		attribute.Int("edge_count", g.EdgeCount()),
		attribute.Bool("use_weights", opts.UseWeights),
		attribute.Int("workers", opts.Workers),
	)

	if n == 0 {
		span.AddEvent("empty_graph")
		return &BetweennessResult{Scores: map[VertexID]float64{}, Workers: opts.Workers}, nil
	}

	workers := opts.Workers
	if workers > n {
		workers = n
	}

	// Parallel map over sources, one partial accumulator per worker,
	// merged after the group waits.
	partials := make([][]float64, workers)
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)

	for w := 0; w < workers; w++ {
		w := w
		partials[w] = make([]float64, n)
		grp.Go(func() error {
			state := newBrandesState(n)
			for s := w; s < n; s += workers {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				var err error
				if opts.UseWeights {
					err = brandesDijkstra(g, s, state)
				} else {
					brandesBFS(g, s, state)
				}
				if err != nil {
					return err
				}
				state.accumulate(s, partials[w])
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Reduce: sum worker partials into the final scores.
	scores := make(map[VertexID]float64, n)
	half := !g.Directed()
	for v := 0; v < n; v++ {
		total := 0.0
		for w := 0; w < workers; w++ {
			total += partials[w][v]
		}
		if half {
			total /= 2
		}
		scores[v] = total
	}

	recordAlgorithmMetrics(ctx, "betweenness", time.Since(start), true)
	span.SetStatus(codes.Ok, "")

	slog.Debug("betweenness completed",
		slog.Int("vertex_count", n),
		slog.Int("workers", workers),
		slog.Bool("use_weights", opts.UseWeights),
		slog.Duration("duration", time.Since(start)),
	)

	return &BetweennessResult{Scores: scores, Sources: n, Workers: workers}, nil
}

// brandesState is the per-source working state, reused across sources
// within one worker to avoid reallocation. Never shared between
// goroutines.
type brandesState struct {
	sigma []float64    // shortest-path counts
	dist  []float64    // distances from the current source
	delta []float64    // dependency accumulators
	preds [][]VertexID // shortest-path predecessor lists
	stack []VertexID   // settle/finish order for back-propagation
	queue []VertexID   // BFS queue storage
}

func newBrandesState(n int) *brandesState {
	return &brandesState{
		sigma: make([]float64, n),
		dist:  make([]float64, n),
		delta: make([]float64, n),
		preds: make([][]VertexID, n),
		stack: make([]VertexID, 0, n),
		queue: make([]VertexID, 0, n),
	}
}

func (st *brandesState) reset(s VertexID) {
	for i := range st.sigma {
		st.sigma[i] = 0
		st.dist[i] = math.Inf(1)
		st.delta[i] = 0
		st.preds[i] = st.preds[i][:0]
	}
	st.stack = st.stack[:0]
	st.sigma[s] = 1
	st.dist[s] = 0
}

// brandesBFS runs the unweighted counting pass from source s.
func brandesBFS(g *Graph, s VertexID, st *brandesState) {
	st.reset(s)
	st.queue = append(st.queue[:0], s)

	for len(st.queue) > 0 {
		v := st.queue[0]
		st.queue = st.queue[1:]
		st.stack = append(st.stack, v)

		for _, arc := range g.arcsFrom(v) {
			w := arc.To
			if math.IsInf(st.dist[w], 1) {
				st.dist[w] = st.dist[v] + 1
				st.queue = append(st.queue, w)
			}
			if st.dist[w] == st.dist[v]+1 {
				st.sigma[w] += st.sigma[v]
				st.preds[w] = append(st.preds[w], v)
			}
		}
	}
}

// brandesDijkstra runs the weighted counting pass from source s.
func brandesDijkstra(g *Graph, s VertexID, st *brandesState) error {
	st.reset(s)

	pq := make(frontier, 0, len(st.sigma))
	heap.Push(&pq, frontierItem{vertex: s, priority: 0})
	settled := make([]bool, len(st.sigma))

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(frontierItem)
		v := item.vertex
		if settled[v] || item.priority > st.dist[v] {
			continue
		}
		settled[v] = true
		st.stack = append(st.stack, v)

		for _, arc := range g.arcsFrom(v) {
			if arc.Weight < 0 {
				return fmt.Errorf("%w: edge %d→%d weight=%v", ErrNegativeWeight, v, arc.To, arc.Weight)
			}
			w := arc.To
			candidate := st.dist[v] + arc.Weight
			switch {
			case candidate < st.dist[w]:
				st.dist[w] = candidate
				st.sigma[w] = st.sigma[v]
				st.preds[w] = append(st.preds[w][:0], v)
				heap.Push(&pq, frontierItem{vertex: w, priority: candidate})
			case candidate == st.dist[w]:
				st.sigma[w] += st.sigma[v]
				st.preds[w] = append(st.preds[w], v)
			}
		}
	}
	return nil
}

// accumulate back-propagates dependencies in reverse finish order and
// adds each vertex's contribution into the worker-local scores.
func (st *brandesState) accumulate(s VertexID, scores []float64) {
	for i := len(st.stack) - 1; i >= 0; i-- {
		w := st.stack[i]
		for _, v := range st.preds[w] {
			st.delta[v] += (st.sigma[v] / st.sigma[w]) * (1 + st.delta[w])
		}
		if w != s {
			scores[w] += st.delta[w]
		}
	}
}
