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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "graphkit",
		Short: "Graph analytics over YAML graph descriptions",
		Long: `Graphkit loads a graph from a YAML file and runs shortest paths,
PageRank, betweenness centrality, community detection, and max-flow
over it, printing results as JSON.`,
		SilenceUsage: true,
	}

	// Persistent flags, bound in init.
	logLevel   string
	logDir     string
	jsonLogs   bool
	quiet      bool
	graphPath  string
	configPath string

	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Run the full analytics suite and print a composed report",
		RunE:  runAnalyzeCommand,
	}
	analyzeRoot   string
	analyzeSource string
	analyzeSink   string

	pathsCmd = &cobra.Command{
		Use:   "paths",
		Short: "Compute the cheapest path between two vertices",
		RunE:  runPathsCommand,
	}
	pathsFrom string
	pathsTo   string

	rankCmd = &cobra.Command{
		Use:   "rank",
		Short: "Rank vertices by PageRank importance",
		RunE:  runRankCommand,
	}
	rankTop     int
	rankDamping float64

	flowCmd = &cobra.Command{
		Use:   "flow",
		Short: "Compute max flow and min cut between source and sink",
		RunE:  runFlowCommand,
	}
	flowSource string
	flowSink   string

	communitiesCmd = &cobra.Command{
		Use:   "communities",
		Short: "Detect communities with Louvain modularity optimization",
		RunE:  runCommunitiesCommand,
	}
	communitiesResolution float64
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for JSON log files (disabled when empty)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit stderr logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress stderr logging")
	rootCmd.PersistentFlags().StringVarP(&graphPath, "graph", "g", "graph.yaml", "Path to the YAML graph file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "graphkit.yaml", "Path to an optional YAML config file with flag defaults")

	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeRoot, "root", "", "Root vertex label for the distance map (required)")
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "Max-flow source label (defaults to root)")
	analyzeCmd.Flags().StringVar(&analyzeSink, "sink", "", "Max-flow sink label (defaults to root, which skips flow)")
	_ = analyzeCmd.MarkFlagRequired("root")

	rootCmd.AddCommand(pathsCmd)
	pathsCmd.Flags().StringVar(&pathsFrom, "from", "", "Source vertex label (required)")
	pathsCmd.Flags().StringVar(&pathsTo, "to", "", "Target vertex label (required)")
	_ = pathsCmd.MarkFlagRequired("from")
	_ = pathsCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().IntVar(&rankTop, "top", 10, "Number of top-ranked vertices to print")
	rankCmd.Flags().Float64Var(&rankDamping, "damping", 0.85, "PageRank damping factor")

	rootCmd.AddCommand(flowCmd)
	flowCmd.Flags().StringVar(&flowSource, "source", "", "Flow source label (required)")
	flowCmd.Flags().StringVar(&flowSink, "sink", "", "Flow sink label (required)")
	_ = flowCmd.MarkFlagRequired("source")
	_ = flowCmd.MarkFlagRequired("sink")

	rootCmd.AddCommand(communitiesCmd)
	communitiesCmd.Flags().Float64Var(&communitiesResolution, "resolution", 1.0, "Louvain resolution (higher = smaller communities)")
}

// printJSON writes v to stdout as indented JSON. Results go to stdout,
// logs to stderr, so output stays pipeable.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
