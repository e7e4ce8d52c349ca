// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides an in-memory weighted-graph analytics engine.
//
// The graph package contains a dense-index graph store plus a set of
// read-only analytics algorithms that run against it: shortest paths
// (Dijkstra, A*), importance ranking (PageRank), betweenness centrality
// (Brandes), community detection (Louvain), and maximum flow
// (Edmonds-Karp). An Analyzer façade composes the algorithms into a
// single multi-algorithm report.
//
// # Ownership Model
//
// The graph stores caller-supplied payloads but does NOT own them:
//   - Payloads MUST NOT be mutated after being added via AddVertex()
//   - The graph does NOT copy payloads (for memory efficiency)
//
// All algorithm results are owned, independent copies; no result holds a
// reference into algorithm working state.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. It is designed
// for:
//   - Single-writer access during the build phase (AddVertex, AddEdge)
//   - Read-only access after Freeze() is called
//
// After Freeze(), the graph can be safely read from multiple goroutines,
// and any number of algorithm invocations may run concurrently against
// the same frozen graph.
//
// # Lifecycle
//
// A typical graph lifecycle:
//  1. Create with NewGraph(directed) or via GraphBuilder
//  2. Build with AddVertex() and AddEdge() calls
//  3. Call Freeze() to finalize
//  4. Query with Dijkstra(), PageRank(), MaxFlow(), Analyzer.Analyze(), etc.
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	// Once Freeze() is called, the graph becomes read-only and no further
	// vertices or edges can be added.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrGraphNotFrozen is returned when an algorithm is invoked on a
	// graph that is still in its build phase. Algorithms require an
	// immutable snapshot; call Freeze() first.
	ErrGraphNotFrozen = errors.New("graph is not frozen")

	// ErrNilGraph is returned when an algorithm is invoked with a nil graph.
	ErrNilGraph = errors.New("graph is nil")

	// ErrInvalidVertex is returned when a vertex index is out of range.
	// This is always a caller bug and is never retried.
	ErrInvalidVertex = errors.New("vertex index out of range")

	// ErrDuplicateVertex is returned when adding a vertex with a label
	// that already exists in the graph.
	ErrDuplicateVertex = errors.New("duplicate vertex label")

	// ErrInvalidWeight is returned when an edge weight or capacity is NaN.
	ErrInvalidWeight = errors.New("edge weight is not a number")

	// ErrNegativeWeight is returned when Dijkstra, A*, or PageRank
	// encounters an edge with negative weight. Negative weights are a
	// precondition violation, not silently handled.
	ErrNegativeWeight = errors.New("negative edge weight")

	// ErrNegativeCapacity is returned when an edge capacity is negative.
	ErrNegativeCapacity = errors.New("negative edge capacity")

	// ErrConvergenceFailure is returned when an iterative algorithm
	// (PageRank, Louvain) hits its iteration cap without reaching the
	// configured tolerance. The best-so-far result is still returned
	// alongside this error; a partially converged estimate is often
	// still useful.
	ErrConvergenceFailure = errors.New("algorithm did not converge within iteration limit")

	// ErrMaxVerticesExceeded is returned when the builder has reached its
	// configured maximum vertex capacity.
	ErrMaxVerticesExceeded = errors.New("maximum vertex count exceeded")

	// ErrNilHeuristic is returned when A* is invoked without a heuristic.
	ErrNilHeuristic = errors.New("heuristic function is nil")

	// ErrSourceIsSink is returned when MaxFlow is invoked with
	// source == sink; the flow value would be unbounded.
	ErrSourceIsSink = errors.New("source and sink are the same vertex")
)
