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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for engine operations. Each algorithm owns its
// own tracer (see the var blocks in the algorithm files).
var meter = otel.Meter("graphkit.graph")

// Metrics for graph building and algorithm execution.
var (
	buildLatency     metric.Float64Histogram
	buildTotal       metric.Int64Counter
	verticesCreated  metric.Int64Histogram
	edgesCreated     metric.Int64Histogram
	algorithmLatency metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"graph_build_duration_seconds",
			metric.WithDescription("Duration of graph build operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildTotal, err = meter.Int64Counter(
			"graph_build_total",
			metric.WithDescription("Total number of graph build operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		verticesCreated, err = meter.Int64Histogram(
			"graph_vertices_created",
			metric.WithDescription("Number of vertices created per build"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesCreated, err = meter.Int64Histogram(
			"graph_edges_created",
			metric.WithDescription("Number of edges created per build"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		algorithmLatency, err = meter.Float64Histogram(
			"graph_algorithm_duration_seconds",
			metric.WithDescription("Duration of graph algorithm invocations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuildMetrics records metrics for a build operation.
func recordBuildMetrics(ctx context.Context, duration time.Duration, vertexCount, edgeCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))

	buildLatency.Record(ctx, duration.Seconds(), attrs)
	buildTotal.Add(ctx, 1, attrs)

	if success {
		verticesCreated.Record(ctx, int64(vertexCount))
		edgesCreated.Record(ctx, int64(edgeCount))
	}
}

// recordAlgorithmMetrics records latency for an algorithm invocation.
func recordAlgorithmMetrics(ctx context.Context, algorithm string, duration time.Duration, converged bool) {
	if err := initMetrics(); err != nil {
		return
	}

	algorithmLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("algorithm", algorithm),
			attribute.Bool("converged", converged),
		),
	)
}
