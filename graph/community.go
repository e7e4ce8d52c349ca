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
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Louvain Community Detection
// =============================================================================

var communityTracer = otel.Tracer("graphkit.graph.community")

// Louvain configuration constants.
const (
	// DefaultMaxLouvainIterations is the maximum number of
	// local-move + aggregation cycles (levels).
	DefaultMaxLouvainIterations = 20

	// DefaultMinModularityGain stops early when a full cycle improves
	// modularity by less than this.
	DefaultMinModularityGain = 1e-7

	// DefaultResolution affects community granularity. Higher values
	// produce smaller communities, lower values larger ones.
	DefaultResolution = 1.0
)

// LouvainOptions configures the Louvain algorithm.
type LouvainOptions struct {
	// MaxIterations limits local-move + aggregation cycles. Default: 20
	MaxIterations int

	// MinModularityGain stops early when a cycle gains less than this.
	// Must be > 0. Default: 1e-7
	MinModularityGain float64

	// Resolution affects community granularity. Must be > 0. Default: 1.0
	Resolution float64
}

// Validate checks options and applies defaults for invalid values.
func (o *LouvainOptions) Validate() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxLouvainIterations
	}
	if o.MinModularityGain <= 0 {
		o.MinModularityGain = DefaultMinModularityGain
	}
	if o.Resolution <= 0 {
		o.Resolution = DefaultResolution
	}
}

// DefaultLouvainOptions returns sensible defaults.
func DefaultLouvainOptions() *LouvainOptions {
	return &LouvainOptions{
		MaxIterations:     DefaultMaxLouvainIterations,
		MinModularityGain: DefaultMinModularityGain,
		Resolution:        DefaultResolution,
	}
}

// Community summarizes one detected community.
type Community struct {
	// ID is the dense community identifier.
	ID int `json:"id"`

	// Vertices contains the member vertex indices, sorted ascending.
	Vertices []VertexID `json:"vertices"`

	// InternalEdges counts edges with both endpoints in this community.
	InternalEdges int `json:"internal_edges"`

	// ExternalEdges counts edges crossing the community boundary.
	ExternalEdges int `json:"external_edges"`

	// Connectivity is internal / (internal + external), the internal
	// density measure. Zero when the community has no edges at all.
	Connectivity float64 `json:"connectivity"`
}

// CommunityResult contains the full Louvain output.
type CommunityResult struct {
	// Assignments maps each original vertex to its final community id.
	// Community ids are dense, 0..len(Communities)-1.
	Assignments map[VertexID]int `json:"assignments"`

	// Communities contains per-community summaries, ordered by id.
	Communities []Community `json:"communities"`

	// Modularity is the final modularity score Q of the partition.
	Modularity float64 `json:"modularity"`

	// Levels is the number of aggregation levels performed.
	Levels int `json:"levels"`

	// Converged indicates whether the algorithm stopped because no
	// cycle produced improvement, rather than hitting MaxIterations.
	Converged bool `json:"converged"`
}

// DetectCommunities partitions the graph into communities using the
// Louvain modularity-optimization algorithm.
//
// Description:
//
//	Two-phase iterative process. Phase 1 (local moves): every vertex,
//	in ascending index order for determinism, evaluates the modularity
//	gain of moving into each neighboring community using the standard
//	incremental gain formula over cached per-community degree sums —
//	full modularity is never recomputed per trial move. Only strictly
//	positive gains commit; when candidates tie, the vertex keeps its
//	current community (stability bias). Phase 2 (aggregation):
//	communities contract into super-vertices of a brand-new level
//	graph with summed inter-community weights, and phase 1 repeats on
//	it. The level-indexed assignments are unwound to original vertex
//	ids at the end.
//
//	Edge direction is ignored (modularity is defined on the
//	undirected weighted graph). Non-positive edge weights are treated
//	as unit weight so unweighted graphs behave as expected.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil. Honored at sweep
//     boundaries.
//   - g: Frozen graph. Must not be nil.
//   - opts: Configuration options. If nil, defaults are used.
//
// Outputs:
//
//   - *CommunityResult: Final partition with modularity score. Also
//     returned (best-so-far) alongside ErrConvergenceFailure when
//     MaxIterations is hit while still improving.
//   - error: ErrNilGraph, ErrGraphNotFrozen, ErrConvergenceFailure, or
//     ctx.Err().
//
// Thread Safety: Safe for concurrent use (read-only on graph).
//
// Complexity: O(V + E) per sweep, typically few sweeps per level.
func DetectCommunities(ctx context.Context, g *Graph, opts *LouvainOptions) (*CommunityResult, error) {
	start := time.Now()
	ctx, span := communityTracer.Start(ctx, "graph.DetectCommunities")
	defer span.End()

	if err := validateAlgorithmInput(g); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if opts == nil {
		opts = DefaultLouvainOptions()
	} else {
		opts.Validate()
	}

	n := g.VertexCount()
	span.SetAttributes(
		attribute.Int("vertex_count", n),
		attribute.Int("edge_count", g.EdgeCount()),
		attribute.Int("max_iterations", opts.MaxIterations),
		attribute.Float64("resolution", opts.Resolution),
	)

	if n == 0 {
		span.AddEvent("empty_graph")
		return &CommunityResult{Assignments: map[VertexID]int{}, Converged: true}, nil
	}

	level := newLevelGraph(g)

	// levelAssignments[l][v] is the community of level-l vertex v.
	var levelAssignments [][]int
	levels := 0
	converged := false
	previousQ := level.modularity(identityPartition(level.n), opts.Resolution)
	finalQ := previousQ

	for levels < opts.MaxIterations {
		if ctx.Err() != nil {
			span.AddEvent("cancelled", trace.WithAttributes(
				attribute.Int("levels_completed", levels),
			))
			return nil, ctx.Err()
		}

		assignment, moved := level.localMoves(ctx, opts.Resolution)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		q := level.modularity(assignment, opts.Resolution)
		if !moved || q-previousQ < opts.MinModularityGain {
			converged = true
			// A no-move sweep still normalizes community ids, so record
			// the assignment when it improved at all.
			if moved && q > previousQ {
				levelAssignments = append(levelAssignments, assignment)
				levels++
				finalQ = q
			}
			break
		}

		levelAssignments = append(levelAssignments, assignment)
		levels++
		previousQ = q
		finalQ = q

		level = level.aggregate(assignment)
	}

	// Unwind level assignments back to original vertex ids.
	assignments := unwindAssignments(n, levelAssignments)
	result := buildCommunityResult(g, assignments)
	result.Modularity = finalQ
	result.Levels = levels
	result.Converged = converged

	recordAlgorithmMetrics(ctx, "louvain", time.Since(start), converged)
	span.SetAttributes(
		attribute.Int("levels", levels),
		attribute.Int("communities_found", len(result.Communities)),
		attribute.Float64("modularity", result.Modularity),
		attribute.Bool("converged", converged),
	)

	slog.Debug("louvain community detection completed",
		slog.Int("levels", levels),
		slog.Int("communities", len(result.Communities)),
		slog.Float64("modularity", result.Modularity),
		slog.Bool("converged", converged),
		slog.Int("vertex_count", n),
	)

	if !converged {
		err := fmt.Errorf("%w: louvain after %d levels", ErrConvergenceFailure, levels)
		span.RecordError(err)
		return result, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// =============================================================================
// Level graph (contracted working graph, one instance per level)
// =============================================================================

// weightedArc is one adjacency entry of a level graph.
type weightedArc struct {
	to     int
	weight float64
}

// levelGraph is the undirected weighted working graph Louvain operates
// on. Aggregation constructs a brand-new instance per level; the
// original Graph is never mutated.
type levelGraph struct {
	n        int
	adj      [][]weightedArc
	selfLoop []float64 // intra-vertex weight from contracted communities
	m        float64   // total edge weight (each undirected edge once)
}

// newLevelGraph builds the level-0 working graph from the store,
// ignoring direction and clamping non-positive weights to 1.
func newLevelGraph(g *Graph) *levelGraph {
	n := g.VertexCount()
	lg := &levelGraph{
		n:        n,
		adj:      make([][]weightedArc, n),
		selfLoop: make([]float64, n),
	}
	for _, e := range g.Edges() {
		w := e.Weight
		if w <= 0 {
			w = 1
		}
		if e.From == e.To {
			lg.selfLoop[e.From] += w
		} else {
			lg.adj[e.From] = append(lg.adj[e.From], weightedArc{to: e.To, weight: w})
			lg.adj[e.To] = append(lg.adj[e.To], weightedArc{to: e.From, weight: w})
		}
		lg.m += w
	}
	return lg
}

// degree returns the weighted degree of v (self-loops count twice).
func (lg *levelGraph) degree(v int) float64 {
	d := 2 * lg.selfLoop[v]
	for _, arc := range lg.adj[v] {
		d += arc.weight
	}
	return d
}

// localMoves runs phase 1: repeated sweeps of single-vertex moves until
// a full sweep commits nothing. Returns the resulting assignment
// (community per vertex, not yet renumbered) and whether any move was
// committed at all.
func (lg *levelGraph) localMoves(ctx context.Context, resolution float64) ([]int, bool) {
	community := identityPartition(lg.n)
	if lg.m == 0 {
		return community, false
	}

	degrees := make([]float64, lg.n)
	commTotal := make([]float64, lg.n) // Σ_tot per community, cached
	for v := 0; v < lg.n; v++ {
		degrees[v] = lg.degree(v)
		commTotal[v] = degrees[v]
	}

	// neighborWeight[c] accumulates k_{v,c} during one vertex scan.
	neighborWeight := make(map[int]float64, 16)

	movedAny := false
	for {
		if ctx.Err() != nil {
			return community, movedAny
		}

		movedThisSweep := false
		for v := 0; v < lg.n; v++ {
			cur := community[v]
			kv := degrees[v]

			// Gather edge weight from v into each neighboring community.
			clear(neighborWeight)
			for _, arc := range lg.adj[v] {
				neighborWeight[community[arc.to]] += arc.weight
			}

			// Remove v from its community for the gain comparison.
			commTotal[cur] -= kv

			// gain(c) = k_{v,c} - resolution * Σ_tot(c) * k_v / 2m.
			// Ties keep the current community (strict > below).
			bestComm := cur
			bestGain := neighborWeight[cur] - resolution*commTotal[cur]*kv/(2*lg.m)
			for c, kvc := range neighborWeight {
				if c == cur {
					continue
				}
				gain := kvc - resolution*commTotal[c]*kv/(2*lg.m)
				if gain > bestGain || (gain == bestGain && bestComm != cur && c < bestComm) {
					bestGain = gain
					bestComm = c
				}
			}

			commTotal[bestComm] += kv
			if bestComm != cur {
				community[v] = bestComm
				movedThisSweep = true
				movedAny = true
			}
		}

		if !movedThisSweep {
			break
		}
	}
	return community, movedAny
}

// modularity computes Q for the given assignment on this level graph.
func (lg *levelGraph) modularity(community []int, resolution float64) float64 {
	if lg.m == 0 {
		return 0
	}

	intra := make(map[int]float64) // Σ_in per community (2× intra edge weight)
	total := make(map[int]float64) // Σ_tot per community
	for v := 0; v < lg.n; v++ {
		c := community[v]
		total[c] += lg.degree(v)
		intra[c] += 2 * lg.selfLoop[v]
		for _, arc := range lg.adj[v] {
			if community[arc.to] == c {
				intra[c] += arc.weight
			}
		}
	}

	q := 0.0
	m2 := 2 * lg.m
	for c, tot := range total {
		t := tot / m2
		q += intra[c]/m2 - resolution*t*t
	}
	return q
}

// aggregate runs phase 2: contracts each community into a super-vertex
// of a brand-new level graph with summed inter-community weights.
// The assignment slice is renumbered in place to the dense super-vertex
// ids so it can serve as the level mapping.
func (lg *levelGraph) aggregate(community []int) *levelGraph {
	// Dense renumbering of surviving community ids.
	renumber := make(map[int]int)
	for v := 0; v < lg.n; v++ {
		if _, ok := renumber[community[v]]; !ok {
			renumber[community[v]] = len(renumber)
		}
	}
	for v := 0; v < lg.n; v++ {
		community[v] = renumber[community[v]]
	}

	next := &levelGraph{
		n:        len(renumber),
		adj:      make([][]weightedArc, len(renumber)),
		selfLoop: make([]float64, len(renumber)),
		m:        lg.m,
	}

	// Sum inter-community weights; intra-community weight becomes a
	// self-loop on the super-vertex.
	cross := make(map[[2]int]float64)
	for v := 0; v < lg.n; v++ {
		cv := community[v]
		next.selfLoop[cv] += lg.selfLoop[v]
		for _, arc := range lg.adj[v] {
			cw := community[arc.to]
			if cv == cw {
				// Each intra edge is visited from both endpoints; half
				// the weight per visit sums to the full edge weight.
				next.selfLoop[cv] += arc.weight / 2
			} else if cv < cw {
				cross[[2]int{cv, cw}] += arc.weight
			}
		}
	}
	for pair, w := range cross {
		next.adj[pair[0]] = append(next.adj[pair[0]], weightedArc{to: pair[1], weight: w})
		next.adj[pair[1]] = append(next.adj[pair[1]], weightedArc{to: pair[0], weight: w})
	}
	return next
}

// identityPartition assigns each vertex to its own community.
func identityPartition(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// unwindAssignments composes the level-indexed mappings back to
// original vertex ids and renumbers the final communities densely.
func unwindAssignments(n int, levels [][]int) map[VertexID]int {
	final := identityPartition(n)
	for _, level := range levels {
		for v := 0; v < n; v++ {
			final[v] = level[final[v]]
		}
	}

	renumber := make(map[int]int)
	assignments := make(map[VertexID]int, n)
	for v := 0; v < n; v++ {
		c, ok := renumber[final[v]]
		if !ok {
			c = len(renumber)
			renumber[final[v]] = c
		}
		assignments[v] = c
	}
	return assignments
}

// buildCommunityResult summarizes a final assignment against the
// original graph.
func buildCommunityResult(g *Graph, assignments map[VertexID]int) *CommunityResult {
	count := 0
	for _, c := range assignments {
		if c+1 > count {
			count = c + 1
		}
	}

	communities := make([]Community, count)
	for i := range communities {
		communities[i].ID = i
	}
	for v, c := range assignments {
		communities[c].Vertices = append(communities[c].Vertices, v)
	}
	for i := range communities {
		sort.Ints(communities[i].Vertices)
	}

	for _, e := range g.Edges() {
		cf, ct := assignments[e.From], assignments[e.To]
		if cf == ct {
			communities[cf].InternalEdges++
		} else {
			communities[cf].ExternalEdges++
			communities[ct].ExternalEdges++
		}
	}
	for i := range communities {
		total := communities[i].InternalEdges + communities[i].ExternalEdges
		if total > 0 {
			communities[i].Connectivity = float64(communities[i].InternalEdges) / float64(total)
		}
	}

	return &CommunityResult{
		Assignments: assignments,
		Communities: communities,
	}
}
