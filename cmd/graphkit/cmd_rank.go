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
	"errors"

	"github.com/AleutianAI/graphkit/graph"
	"github.com/spf13/cobra"
)

type rankOutput struct {
	Rank  int     `json:"rank"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func runRankCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	g, err := loadGraph(ctx, graphPath)
	if err != nil {
		return err
	}

	opts := graph.DefaultPageRankOptions()
	opts.DampingFactor = rankDamping

	ranked, err := graph.PageRankTop(ctx, g, rankTop, opts)
	if err != nil {
		// Non-converged scores are still worth printing; anything
		// else is fatal.
		if !errors.Is(err, graph.ErrConvergenceFailure) {
			return err
		}
		logger.Warn("pagerank did not converge, printing best-so-far scores", "error", err)
	}

	out := make([]rankOutput, 0, len(ranked))
	for _, rv := range ranked {
		out = append(out, rankOutput{Rank: rv.Rank, Label: rv.Label, Score: rv.Score})
	}
	return printJSON(out)
}
