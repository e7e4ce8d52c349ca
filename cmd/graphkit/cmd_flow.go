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
	"github.com/AleutianAI/graphkit/graph"
	"github.com/spf13/cobra"
)

type flowOutput struct {
	Source        string   `json:"source"`
	Sink          string   `json:"sink"`
	Value         float64  `json:"value"`
	Augmentations int      `json:"augmentations"`
	MinCut        []string `json:"min_cut"`
}

func runFlowCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	g, err := loadGraph(ctx, graphPath)
	if err != nil {
		return err
	}
	source, err := resolveLabel(g, flowSource, "source")
	if err != nil {
		return err
	}
	sink, err := resolveLabel(g, flowSink, "sink")
	if err != nil {
		return err
	}

	res, err := graph.MaxFlow(ctx, g, source, sink)
	if err != nil {
		return err
	}

	return printJSON(flowOutput{
		Source:        flowSource,
		Sink:          flowSink,
		Value:         res.Value,
		Augmentations: res.Augmentations,
		MinCut:        labels(g, res.MinCut),
	})
}
