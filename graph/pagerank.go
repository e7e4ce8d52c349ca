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
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// PageRank Algorithm
// =============================================================================

var pageRankTracer = otel.Tracer("graphkit.graph.pagerank")

// PageRank configuration constants.
const (
	// DefaultDampingFactor is the probability of following a link (vs
	// random jump). Standard value from the original PageRank paper.
	DefaultDampingFactor = 0.85

	// DefaultMaxIterations is the maximum iterations before stopping.
	DefaultMaxIterations = 100

	// DefaultConvergence is the threshold for convergence detection.
	// Power iteration stops when the L1 norm of the rank change falls
	// below this value.
	DefaultConvergence = 1e-6
)

// PageRankOptions configures the PageRank algorithm.
type PageRankOptions struct {
	// DampingFactor is the probability of following a link (vs random
	// jump). Must be in [0, 1]. Default: 0.85
	DampingFactor float64

	// MaxIterations is the maximum iterations before stopping.
	// Must be > 0. Default: 100
	MaxIterations int

	// Convergence is the L1-norm threshold for convergence detection.
	// Must be > 0. Default: 1e-6
	Convergence float64
}

// Validate checks options and applies defaults for invalid values.
func (o *PageRankOptions) Validate() {
	if o.DampingFactor < 0 || o.DampingFactor > 1 {
		o.DampingFactor = DefaultDampingFactor
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Convergence <= 0 {
		o.Convergence = DefaultConvergence
	}
}

// DefaultPageRankOptions returns sensible defaults.
func DefaultPageRankOptions() *PageRankOptions {
	return &PageRankOptions{
		DampingFactor: DefaultDampingFactor,
		MaxIterations: DefaultMaxIterations,
		Convergence:   DefaultConvergence,
	}
}

// PageRankResult contains the output of PageRank computation.
type PageRankResult struct {
	// Scores maps each vertex to its PageRank score.
	// Scores sum to 1 within the convergence tolerance.
	Scores map[VertexID]float64

	// Iterations is the actual number of iterations performed.
	Iterations int

	// Converged indicates whether the algorithm converged before
	// MaxIterations. When false the scores are the best-so-far
	// estimate, which is often still useful.
	Converged bool

	// Delta is the final L1 norm of the rank change.
	Delta float64
}

// RankedVertex pairs a vertex with its PageRank score and position.
type RankedVertex struct {
	// Vertex is the vertex index.
	Vertex VertexID

	// Label is the vertex label, for caller convenience.
	Label string

	// Score is the PageRank score.
	Score float64

	// Rank is the position in the ranking (1-indexed).
	Rank int
}

// PageRank computes importance scores for all vertices via power
// iteration.
//
// Description:
//
//	Each iteration distributes rank along edges in proportion to edge
//	weight:
//
//	  rank'[i] = (1-d)/n + dangling + d * Σ_{j→i} rank[j] * w(j,i)/outWeight(j)
//
//	Dangling vertices (no outgoing edges, or zero total out-weight)
//	have their damped mass redistributed uniformly across all vertices
//	each iteration, so no rank leaks from the graph and the scores sum
//	to 1 within tolerance.
//
//	Convergence is the L1 norm of (rank' - rank) dropping below the
//	configured threshold. Hitting the iteration cap without converging
//	returns the best-so-far scores together with ErrConvergenceFailure;
//	it is never silently accepted as converged.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil. Cancellation is
//     honored at iteration boundaries and returns the partial scores
//     alongside ctx.Err().
//   - g: Frozen graph. Must not be nil.
//   - opts: Configuration options. If nil, defaults are used.
//
// Outputs:
//
//   - *PageRankResult: Scores, iteration count, convergence status.
//     Non-nil even when err is ErrConvergenceFailure or a cancellation.
//   - error: ErrNilGraph, ErrGraphNotFrozen, ErrNegativeWeight,
//     ErrConvergenceFailure, or ctx.Err().
//
// Thread Safety: Safe for concurrent use (read-only on graph).
//
// Complexity: O(k × (V + E)) where k = iterations to converge.
func PageRank(ctx context.Context, g *Graph, opts *PageRankOptions) (*PageRankResult, error) {
	start := time.Now()
	ctx, span := pageRankTracer.Start(ctx, "graph.PageRank")
	defer span.End()

	if err := validateAlgorithmInput(g); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if opts == nil {
		opts = DefaultPageRankOptions()
	} else {
		opts.Validate()
	}

	n := g.VertexCount()
	span.SetAttributes(
		attribute.Int("vertex_count", n),
		attribute.Int("edge_count", g.EdgeCount()),
		attribute.Float64("damping_factor", opts.DampingFactor),
		attribute.Int("max_iterations", opts.MaxIterations),
		attribute.Float64("convergence_threshold", opts.Convergence),
	)

	if n == 0 {
		span.AddEvent("empty_graph")
		return &PageRankResult{Scores: map[VertexID]float64{}, Converged: true}, nil
	}

	N := float64(n)
	d := opts.DampingFactor

	// Total outgoing weight per vertex; negative weights fail here, at
	// first encounter.
	outWeight := make([]float64, n)
	dangling := make([]VertexID, 0)
	for v := 0; v < n; v++ {
		for _, arc := range g.arcsFrom(v) {
			if arc.Weight < 0 {
				err := fmt.Errorf("%w: edge %d→%d weight=%v", ErrNegativeWeight, v, arc.To, arc.Weight)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			outWeight[v] += arc.Weight
		}
		if outWeight[v] == 0 {
			dangling = append(dangling, v)
		}
	}
	span.SetAttributes(attribute.Int("dangling_count", len(dangling)))

	// Two dense vectors, swapped each iteration instead of reallocated.
	ranks := make([]float64, n)
	next := make([]float64, n)
	initial := 1.0 / N
	for i := range ranks {
		ranks[i] = initial
	}

	var (
		iterations int
		converged  bool
		delta      float64
	)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if ctx.Err() != nil {
			span.AddEvent("cancelled", trace.WithAttributes(
				attribute.Int("iterations_completed", iter),
			))
			return &PageRankResult{
				Scores:     ranksToMap(ranks),
				Iterations: iter,
				Converged:  false,
				Delta:      delta,
			}, ctx.Err()
		}

		// Dangling mass is redistributed uniformly each iteration.
		danglingMass := 0.0
		for _, v := range dangling {
			danglingMass += ranks[v]
		}
		base := (1-d)/N + d*danglingMass/N

		delta = 0
		for v := 0; v < n; v++ {
			score := base
			for _, arc := range g.arcsInto(v) {
				j := arc.To // source of the incoming edge
				if outWeight[j] > 0 {
					score += d * ranks[j] * arc.Weight / outWeight[j]
				}
			}
			next[v] = score
			delta += math.Abs(score - ranks[v])
		}

		ranks, next = next, ranks
		iterations = iter + 1

		if delta < opts.Convergence {
			converged = true
			break
		}
	}

	recordAlgorithmMetrics(ctx, "pagerank", time.Since(start), converged)
	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Bool("converged", converged),
		attribute.Float64("delta", delta),
	)

	slog.Debug("pagerank completed",
		slog.Int("iterations", iterations),
		slog.Bool("converged", converged),
		slog.Float64("delta", delta),
		slog.Int("vertex_count", n),
	)

	result := &PageRankResult{
		Scores:     ranksToMap(ranks),
		Iterations: iterations,
		Converged:  converged,
		Delta:      delta,
	}
	if !converged {
		err := fmt.Errorf("%w: pagerank after %d iterations (delta=%g)", ErrConvergenceFailure, iterations, delta)
		span.RecordError(err)
		return result, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// PageRankTop computes PageRank and returns the top-k vertices by
// score, ties broken by vertex index for stability.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil.
//   - g: Frozen graph. Must not be nil.
//   - k: Number of top vertices to return. Must be > 0.
//   - opts: Configuration options. If nil, defaults are used.
//
// Outputs:
//
//   - []RankedVertex: Top-k vertices sorted by score descending. Also
//     returned (best-so-far) alongside ErrConvergenceFailure.
//   - error: Same failure modes as PageRank.
//
// Thread Safety: Safe for concurrent use.
func PageRankTop(ctx context.Context, g *Graph, k int, opts *PageRankOptions) ([]RankedVertex, error) {
	ctx, span := pageRankTracer.Start(ctx, "graph.PageRankTop",
		trace.WithAttributes(attribute.Int("k", k)),
	)
	defer span.End()

	if k <= 0 {
		return []RankedVertex{}, nil
	}

	result, err := PageRank(ctx, g, opts)
	if err != nil && result == nil {
		return nil, err
	}

	ranked := make([]RankedVertex, 0, len(result.Scores))
	for v, score := range result.Scores {
		ranked = append(ranked, RankedVertex{Vertex: v, Label: g.Label(v), Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Vertex < ranked[j].Vertex
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	ranked = ranked[:k]
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	span.SetAttributes(attribute.Int("returned", len(ranked)))
	return ranked, err
}

// ranksToMap copies a dense rank vector into an owned result map.
func ranksToMap(ranks []float64) map[VertexID]float64 {
	scores := make(map[VertexID]float64, len(ranks))
	for v, s := range ranks {
		scores[v] = s
	}
	return scores
}
