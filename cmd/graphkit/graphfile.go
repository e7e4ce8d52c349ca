// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AleutianAI/graphkit/graph"
	"gopkg.in/yaml.v3"
)

// GraphFile is the on-disk YAML description of a graph.
type GraphFile struct {
	Directed    bool               `yaml:"directed"`
	MaxVertices int                `yaml:"max_vertices,omitempty"`
	Vertices    []graph.VertexSpec `yaml:"vertices"`
	Edges       []graph.EdgeSpec   `yaml:"edges"`
}

// loadGraph reads, parses, and builds a frozen graph from path.
func loadGraph(ctx context.Context, path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}

	var file GraphFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing graph file %s: %w", path, err)
	}
	if len(file.Vertices) == 0 {
		return nil, fmt.Errorf("graph file %s declares no vertices", path)
	}

	g, err := graph.BuildGraph(ctx, file.Vertices, file.Edges, &graph.BuilderOptions{
		Directed:    file.Directed,
		MaxVertices: file.MaxVertices,
	})
	if err != nil {
		return nil, fmt.Errorf("building graph from %s: %w", path, err)
	}

	logger.Debug("graph loaded",
		"path", path,
		"directed", file.Directed,
		"vertices", g.VertexCount(),
		"edges", g.EdgeCount(),
	)
	return g, nil
}

// resolveLabel maps a vertex label from the command line to its index.
func resolveLabel(g *graph.Graph, label, flag string) (graph.VertexID, error) {
	v, ok := g.VertexByLabel(label)
	if !ok {
		return 0, fmt.Errorf("--%s: vertex %q not found in graph", flag, label)
	}
	return v, nil
}

// labels maps a vertex index sequence back to its labels for output.
func labels(g *graph.Graph, vs []graph.VertexID) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = g.Label(v)
	}
	return out
}
