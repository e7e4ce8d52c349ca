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
	"testing"
)

// benchGrid builds a size x size undirected unit-weight grid without
// test assertions, for benchmark setup.
func benchGrid(b *testing.B, size int) *Graph {
	b.Helper()
	g := NewGraph(false)
	ids := make([][]VertexID, size)
	for r := 0; r < size; r++ {
		ids[r] = make([]VertexID, size)
		for c := 0; c < size; c++ {
			v, err := g.AddVertex(fmt.Sprintf("%d,%d", r, c), nil)
			if err != nil {
				b.Fatal(err)
			}
			ids[r][c] = v
		}
	}
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if c+1 < size {
				if _, err := g.AddEdge(ids[r][c], ids[r][c+1], 1, 0); err != nil {
					b.Fatal(err)
				}
			}
			if r+1 < size {
				if _, err := g.AddEdge(ids[r][c], ids[r+1][c], 1, 0); err != nil {
					b.Fatal(err)
				}
			}
		}
	}
	g.Freeze()
	return g
}

func BenchmarkDijkstra_Grid32(b *testing.B) {
	g := benchGrid(b, 32)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Dijkstra(ctx, g, 0, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBetweenness_Grid16(b *testing.B) {
	g := benchGrid(b, 16)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Betweenness(ctx, g, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPageRank_Grid32(b *testing.B) {
	g := benchGrid(b, 32)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := PageRank(ctx, g, nil); err != nil {
			b.Fatal(err)
		}
	}
}
