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
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// Analyzer (analytics façade)
// =============================================================================

var analyticsTracer = otel.Tracer("graphkit.graph.analytics")

// Analyzer configuration constants.
const (
	// DefaultIterativeBudget bounds the wall-clock time Analyze grants
	// each iterative-to-convergence algorithm (PageRank, Louvain) so a
	// pathological input cannot hang a caller indefinitely.
	DefaultIterativeBudget = 30 * time.Second

	// DefaultHotspotCount is how many top-connected vertices the
	// report includes.
	DefaultHotspotCount = 10
)

// Analyzer composes the engine's algorithms into multi-algorithm
// reports over one frozen graph.
//
// Thread Safety: Analyzer is safe for concurrent use; it holds no
// mutable state beyond the frozen graph.
type Analyzer struct {
	graph *Graph
}

// NewAnalyzer creates an analyzer for the given frozen graph.
//
// Outputs:
//
//	*Analyzer - The analyzer.
//	error     - ErrNilGraph or ErrGraphNotFrozen.
func NewAnalyzer(g *Graph) (*Analyzer, error) {
	if err := validateAlgorithmInput(g); err != nil {
		return nil, err
	}
	return &Analyzer{graph: g}, nil
}

// AnalysisSpec selects the inputs for a composed analysis.
type AnalysisSpec struct {
	// Root is the source for the shortest-path distance map.
	Root VertexID

	// Source and Sink are the max-flow endpoints. When Source == Sink
	// the flow section of the report is skipped.
	Source VertexID
	Sink   VertexID

	// IterativeBudget bounds PageRank and Louvain wall-clock time.
	// Zero applies DefaultIterativeBudget.
	IterativeBudget time.Duration

	// PageRank, Betweenness, and Louvain override the per-algorithm
	// defaults when non-nil.
	PageRank    *PageRankOptions
	Betweenness *BetweennessOptions
	Louvain     *LouvainOptions
}

// HotspotVertex is a vertex with its degree-based connectivity score.
// Incoming edges are weighted higher because being pointed at
// frequently indicates higher impact.
type HotspotVertex struct {
	// Vertex is the vertex index.
	Vertex VertexID

	// Label is the vertex label, for caller convenience.
	Label string

	// Score is inDegree*2 + outDegree.
	Score int

	// InDegree and OutDegree are the raw edge counts.
	InDegree  int
	OutDegree int
}

// AnalysisReport is the composed output of Analyze.
type AnalysisReport struct {
	// ID uniquely identifies this report.
	ID string

	// GeneratedAt is when the analysis completed.
	GeneratedAt time.Time

	// VertexCount and EdgeCount describe the analyzed graph.
	VertexCount int
	EdgeCount   int

	// Distances is the shortest-path map from Root. Vertices absent
	// from it are unreachable from Root.
	Distances *DistanceResult

	// PageRank holds importance scores. May carry Converged=false when
	// the iteration cap or budget was hit; the scores are still the
	// best-so-far estimate.
	PageRank *PageRankResult

	// Betweenness holds centrality scores.
	Betweenness *BetweennessResult

	// Communities holds the Louvain partition.
	Communities *CommunityResult

	// MaxFlow holds the Source→Sink flow. Nil when Source == Sink.
	MaxFlow *MaxFlowResult

	// Hotspots lists the most connected vertices by degree score.
	Hotspots []HotspotVertex

	// Durations records per-algorithm wall-clock time.
	Durations map[string]time.Duration

	// Warnings records non-fatal outcomes (convergence failures,
	// budget expiry). A warned section still carries its best-so-far
	// result.
	Warnings []string
}

// Analyze runs the full algorithm suite against the graph and composes
// the results into one report.
//
// Description:
//
//	Shortest paths, PageRank, betweenness, communities, max flow, and
//	hotspots are independent computations over the same frozen graph,
//	so they run concurrently. PageRank and Louvain execute under the
//	iterative budget; when either exhausts its budget or iteration cap
//	the report keeps the best-so-far result and records a warning
//	instead of failing the whole analysis.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil.
//   - spec: Analysis inputs. Root, Source, and Sink must be in range.
//
// Outputs:
//
//   - *AnalysisReport: The composed report.
//   - error: ErrInvalidVertex for bad spec vertices, the first hard
//     algorithm failure, or ctx.Err().
//
// Thread Safety: Safe for concurrent use.
func (a *Analyzer) Analyze(ctx context.Context, spec AnalysisSpec) (*AnalysisReport, error) {
	start := time.Now()
	ctx, span := analyticsTracer.Start(ctx, "Analyzer.Analyze",
		trace.WithAttributes(
			attribute.Int("root", spec.Root),
			attribute.Int("flow_source", spec.Source),
			attribute.Int("flow_sink", spec.Sink),
		),
	)
	defer span.End()

	if err := validateVertex(a.graph, spec.Root, "root"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := validateVertex(a.graph, spec.Source, "source"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := validateVertex(a.graph, spec.Sink, "sink"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	budget := spec.IterativeBudget
	if budget <= 0 {
		budget = DefaultIterativeBudget
	}

	report := &AnalysisReport{
		ID:          uuid.NewString(),
		VertexCount: a.graph.VertexCount(),
		EdgeCount:   a.graph.EdgeCount(),
		Durations:   make(map[string]time.Duration),
	}

	var mu sync.Mutex
	record := func(name string, d time.Duration, warning string) {
		mu.Lock()
		defer mu.Unlock()
		report.Durations[name] = d
		if warning != "" {
			report.Warnings = append(report.Warnings, warning)
		}
	}

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		t := time.Now()
		res, err := Dijkstra(gctx, a.graph, spec.Root, nil)
		if err != nil {
			return fmt.Errorf("distances: %w", err)
		}
		report.Distances = res
		record("distances", time.Since(t), "")
		return nil
	})

	grp.Go(func() error {
		t := time.Now()
		bctx, cancel := context.WithTimeout(gctx, budget)
		defer cancel()
		res, err := PageRank(bctx, a.graph, spec.PageRank)
		warning := ""
		switch {
		case err == nil:
		case errors.Is(err, ErrConvergenceFailure), errors.Is(err, context.DeadlineExceeded):
			warning = fmt.Sprintf("pagerank: %v", err)
		default:
			return fmt.Errorf("pagerank: %w", err)
		}
		report.PageRank = res
		record("pagerank", time.Since(t), warning)
		return nil
	})

	grp.Go(func() error {
		t := time.Now()
		res, err := Betweenness(gctx, a.graph, spec.Betweenness)
		if err != nil {
			return fmt.Errorf("betweenness: %w", err)
		}
		report.Betweenness = res
		record("betweenness", time.Since(t), "")
		return nil
	})

	grp.Go(func() error {
		t := time.Now()
		bctx, cancel := context.WithTimeout(gctx, budget)
		defer cancel()
		res, err := DetectCommunities(bctx, a.graph, spec.Louvain)
		warning := ""
		switch {
		case err == nil:
		case errors.Is(err, ErrConvergenceFailure), errors.Is(err, context.DeadlineExceeded):
			warning = fmt.Sprintf("communities: %v", err)
		default:
			return fmt.Errorf("communities: %w", err)
		}
		report.Communities = res
		record("communities", time.Since(t), warning)
		return nil
	})

	if spec.Source != spec.Sink {
		grp.Go(func() error {
			t := time.Now()
			res, err := MaxFlow(gctx, a.graph, spec.Source, spec.Sink)
			if err != nil {
				return fmt.Errorf("maxflow: %w", err)
			}
			report.MaxFlow = res
			record("maxflow", time.Since(t), "")
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report.Hotspots = a.HotSpots(DefaultHotspotCount)
	report.GeneratedAt = time.Now()

	span.SetAttributes(
		attribute.String("report_id", report.ID),
		attribute.Int("warnings", len(report.Warnings)),
	)
	span.SetStatus(codes.Ok, "")

	slog.Debug("analysis completed",
		slog.String("report_id", report.ID),
		slog.Int("vertex_count", report.VertexCount),
		slog.Int("edge_count", report.EdgeCount),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("duration", time.Since(start)),
	)

	return report, nil
}

// HotSpots returns the top N most-connected vertices by degree score.
//
// Inputs:
//
//	top - Maximum number of hotspots to return. Must be > 0.
//
// Outputs:
//
//	[]HotspotVertex - Top N vertices sorted by score descending, ties
//	                  broken by vertex index.
//
// Thread Safety: Safe for concurrent use.
func (a *Analyzer) HotSpots(top int) []HotspotVertex {
	if top <= 0 {
		return []HotspotVertex{}
	}

	n := a.graph.VertexCount()
	hotspots := make([]HotspotVertex, 0, n)
	for v := 0; v < n; v++ {
		hs := HotspotVertex{
			Vertex:    v,
			Label:     a.graph.Label(v),
			InDegree:  len(a.graph.arcsInto(v)),
			OutDegree: a.graph.outDegree(v),
		}
		hs.Score = hs.InDegree*2 + hs.OutDegree
		hotspots = append(hotspots, hs)
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].Score != hotspots[j].Score {
			return hotspots[i].Score > hotspots[j].Score
		}
		return hotspots[i].Vertex < hotspots[j].Vertex
	})

	if top > len(hotspots) {
		top = len(hotspots)
	}
	return hotspots[:top]
}
