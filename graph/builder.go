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
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// GraphBuilder
// =============================================================================

var builderTracer = otel.Tracer("graphkit.graph.builder")

// Builder configuration constants.
const (
	// DefaultMaxVertices caps graph size to protect against runaway
	// caller input. Raise via BuilderOptions for genuinely large graphs.
	DefaultMaxVertices = 10_000_000
)

// VertexSpec describes one vertex for BuildGraph.
type VertexSpec struct {
	// Label is the caller-facing identifier. Must be unique and non-empty.
	Label string `yaml:"label" json:"label"`

	// Payload is opaque caller data carried through to the store.
	Payload any `yaml:"payload,omitempty" json:"payload,omitempty"`
}

// EdgeSpec describes one edge for BuildGraph, endpoints by label.
type EdgeSpec struct {
	// From and To are vertex labels. Both must refer to declared vertices.
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`

	// Weight is the traversal cost, stored exactly as given. The
	// builder does not substitute a default for zero-valued input.
	Weight float64 `yaml:"weight" json:"weight"`

	// Capacity is the flow capacity.
	Capacity float64 `yaml:"capacity,omitempty" json:"capacity,omitempty"`
}

// BuilderOptions configures graph construction.
type BuilderOptions struct {
	// Directed selects ordered edges. Default: false (undirected).
	Directed bool

	// MaxVertices caps the vertex count. Must be > 0. Default: 10M.
	MaxVertices int
}

// Validate checks options and applies defaults for invalid values.
func (o *BuilderOptions) Validate() {
	if o.MaxVertices <= 0 {
		o.MaxVertices = DefaultMaxVertices
	}
}

// DefaultBuilderOptions returns sensible defaults.
func DefaultBuilderOptions() *BuilderOptions {
	return &BuilderOptions{
		Directed:    false,
		MaxVertices: DefaultMaxVertices,
	}
}

// GraphBuilder accumulates vertex and edge specs and produces a frozen
// Graph.
//
// Thread Safety: GraphBuilder is NOT safe for concurrent use. Build the
// spec lists from a single goroutine, then share the frozen Graph.
type GraphBuilder struct {
	opts     *BuilderOptions
	vertices []VertexSpec
	edges    []EdgeSpec
}

// NewGraphBuilder creates a builder with the given options.
//
// Inputs:
//
//	opts - Configuration options. If nil, defaults are used.
func NewGraphBuilder(opts *BuilderOptions) *GraphBuilder {
	if opts == nil {
		opts = DefaultBuilderOptions()
	} else {
		opts.Validate()
	}
	return &GraphBuilder{opts: opts}
}

// AddVertex queues a vertex spec. Returns the builder for chaining.
func (b *GraphBuilder) AddVertex(label string, payload any) *GraphBuilder {
	b.vertices = append(b.vertices, VertexSpec{Label: label, Payload: payload})
	return b
}

// AddEdge queues an edge spec. Returns the builder for chaining.
func (b *GraphBuilder) AddEdge(from, to string, weight, capacity float64) *GraphBuilder {
	b.edges = append(b.edges, EdgeSpec{From: from, To: to, Weight: weight, Capacity: capacity})
	return b
}

// Build materializes the queued specs into a frozen Graph.
//
// Description:
//
//	Creates all vertices first (assigning dense indices in declaration
//	order), then resolves edge endpoints by label and adds each edge.
//	The returned graph is already frozen and ready for concurrent
//	algorithm invocations.
//
// Inputs:
//
//   - ctx: Context for cancellation and tracing. Must not be nil.
//
// Outputs:
//
//   - *Graph: The frozen graph.
//   - error: Non-nil on duplicate labels, unknown edge endpoints,
//     invalid weights, or exceeding MaxVertices.
//
// Thread Safety: NOT safe for concurrent use.
func (b *GraphBuilder) Build(ctx context.Context) (*Graph, error) {
	start := time.Now()
	ctx, span := builderTracer.Start(ctx, "GraphBuilder.Build",
		trace.WithAttributes(
			attribute.Int("vertex_specs", len(b.vertices)),
			attribute.Int("edge_specs", len(b.edges)),
			attribute.Bool("directed", b.opts.Directed),
		),
	)
	defer span.End()

	g, err := b.build(ctx)
	recordBuildMetrics(ctx, time.Since(start), len(b.vertices), len(b.edges), err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("vertex_count", g.VertexCount()),
		attribute.Int("edge_count", g.EdgeCount()),
	)
	span.SetStatus(codes.Ok, "")

	slog.Debug("graph build completed",
		slog.Int("vertices", g.VertexCount()),
		slog.Int("edges", g.EdgeCount()),
		slog.Bool("directed", g.Directed()),
		slog.Duration("duration", time.Since(start)),
	)
	return g, nil
}

func (b *GraphBuilder) build(ctx context.Context) (*Graph, error) {
	if len(b.vertices) > b.opts.MaxVertices {
		return nil, fmt.Errorf("%w: %d > %d", ErrMaxVerticesExceeded, len(b.vertices), b.opts.MaxVertices)
	}

	g := NewGraph(b.opts.Directed)
	for _, vs := range b.vertices {
		if vs.Label == "" {
			return nil, fmt.Errorf("%w: empty label", ErrDuplicateVertex)
		}
		if _, err := g.AddVertex(vs.Label, vs.Payload); err != nil {
			return nil, err
		}
	}

	for i, es := range b.edges {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		u, ok := g.VertexByLabel(es.From)
		if !ok {
			return nil, fmt.Errorf("%w: edge %d from=%q", ErrInvalidVertex, i, es.From)
		}
		v, ok := g.VertexByLabel(es.To)
		if !ok {
			return nil, fmt.Errorf("%w: edge %d to=%q", ErrInvalidVertex, i, es.To)
		}
		if _, err := g.AddEdge(u, v, es.Weight, es.Capacity); err != nil {
			return nil, err
		}
	}

	g.Freeze()
	return g, nil
}

// BuildGraph constructs a frozen Graph from vertex and edge lists in a
// single call. Convenience wrapper over GraphBuilder for callers that
// already hold complete spec slices.
//
// Thread Safety: Safe for concurrent use (no shared state).
func BuildGraph(ctx context.Context, vertices []VertexSpec, edges []EdgeSpec, opts *BuilderOptions) (*Graph, error) {
	b := NewGraphBuilder(opts)
	b.vertices = append(b.vertices, vertices...)
	b.edges = append(b.edges, edges...)
	return b.Build(ctx)
}
