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

type communitiesOutput struct {
	Modularity  float64           `json:"modularity"`
	Levels      int               `json:"levels"`
	Converged   bool              `json:"converged"`
	Communities []communityOutput `json:"communities"`
}

type communityOutput struct {
	ID            int      `json:"id"`
	Members       []string `json:"members"`
	InternalEdges int      `json:"internal_edges"`
	ExternalEdges int      `json:"external_edges"`
	Connectivity  float64  `json:"connectivity"`
}

func runCommunitiesCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	g, err := loadGraph(ctx, graphPath)
	if err != nil {
		return err
	}

	opts := graph.DefaultLouvainOptions()
	opts.Resolution = communitiesResolution

	res, err := graph.DetectCommunities(ctx, g, opts)
	if err != nil {
		if !errors.Is(err, graph.ErrConvergenceFailure) {
			return err
		}
		logger.Warn("louvain hit the level cap, printing best-so-far partition", "error", err)
	}

	out := communitiesOutput{
		Modularity: res.Modularity,
		Levels:     res.Levels,
		Converged:  res.Converged,
	}
	for _, comm := range res.Communities {
		out.Communities = append(out.Communities, communityOutput{
			ID:            comm.ID,
			Members:       labels(g, comm.Vertices),
			InternalEdges: comm.InternalEdges,
			ExternalEdges: comm.ExternalEdges,
			Connectivity:  comm.Connectivity,
		})
	}
	return printJSON(out)
}
