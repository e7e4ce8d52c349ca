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
	"time"

	"github.com/AleutianAI/graphkit/graph"
	"github.com/spf13/cobra"
)

// analyzeOutput is the label-keyed rendering of an analysis report.
type analyzeOutput struct {
	ID          string             `json:"id"`
	GeneratedAt time.Time          `json:"generated_at"`
	VertexCount int                `json:"vertex_count"`
	EdgeCount   int                `json:"edge_count"`
	Distances   map[string]float64 `json:"distances"`
	PageRank    map[string]float64 `json:"pagerank"`
	Betweenness map[string]float64 `json:"betweenness"`
	Communities [][]string         `json:"communities"`
	Modularity  float64            `json:"modularity"`
	FlowValue   *float64           `json:"flow_value,omitempty"`
	MinCut      []string           `json:"min_cut,omitempty"`
	Hotspots    []hotspotOutput    `json:"hotspots"`
	Durations   map[string]string  `json:"durations"`
	Warnings    []string           `json:"warnings,omitempty"`
}

type hotspotOutput struct {
	Label     string `json:"label"`
	Score     int    `json:"score"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	g, err := loadGraph(ctx, graphPath)
	if err != nil {
		return err
	}

	root, err := resolveLabel(g, analyzeRoot, "root")
	if err != nil {
		return err
	}
	source, sink := root, root
	if analyzeSource != "" {
		if source, err = resolveLabel(g, analyzeSource, "source"); err != nil {
			return err
		}
	}
	if analyzeSink != "" {
		if sink, err = resolveLabel(g, analyzeSink, "sink"); err != nil {
			return err
		}
	}

	analyzer, err := graph.NewAnalyzer(g)
	if err != nil {
		return err
	}

	report, err := analyzer.Analyze(ctx, graph.AnalysisSpec{
		Root:   root,
		Source: source,
		Sink:   sink,
	})
	if err != nil {
		return err
	}

	logger.Info("analysis completed",
		"report_id", report.ID,
		"warnings", len(report.Warnings),
	)
	return printJSON(renderReport(g, report))
}

// renderReport converts vertex indices to labels for human consumption.
func renderReport(g *graph.Graph, report *graph.AnalysisReport) analyzeOutput {
	out := analyzeOutput{
		ID:          report.ID,
		GeneratedAt: report.GeneratedAt,
		VertexCount: report.VertexCount,
		EdgeCount:   report.EdgeCount,
		Distances:   make(map[string]float64, len(report.Distances.Distances)),
		PageRank:    make(map[string]float64, len(report.PageRank.Scores)),
		Betweenness: make(map[string]float64, len(report.Betweenness.Scores)),
		Modularity:  report.Communities.Modularity,
		Durations:   make(map[string]string, len(report.Durations)),
		Warnings:    report.Warnings,
	}

	for v, d := range report.Distances.Distances {
		out.Distances[g.Label(v)] = d
	}
	for v, s := range report.PageRank.Scores {
		out.PageRank[g.Label(v)] = s
	}
	for v, s := range report.Betweenness.Scores {
		out.Betweenness[g.Label(v)] = s
	}
	for _, comm := range report.Communities.Communities {
		out.Communities = append(out.Communities, labels(g, comm.Vertices))
	}
	if report.MaxFlow != nil {
		value := report.MaxFlow.Value
		out.FlowValue = &value
		out.MinCut = labels(g, report.MaxFlow.MinCut)
	}
	for _, hs := range report.Hotspots {
		out.Hotspots = append(out.Hotspots, hotspotOutput{
			Label:     hs.Label,
			Score:     hs.Score,
			InDegree:  hs.InDegree,
			OutDegree: hs.OutDegree,
		})
	}
	for name, d := range report.Durations {
		out.Durations[name] = d.String()
	}
	return out
}
