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

type pathOutput struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Found    bool     `json:"found"`
	Distance float64  `json:"distance,omitempty"`
	Path     []string `json:"path,omitempty"`
}

func runPathsCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	g, err := loadGraph(ctx, graphPath)
	if err != nil {
		return err
	}
	from, err := resolveLabel(g, pathsFrom, "from")
	if err != nil {
		return err
	}
	to, err := resolveLabel(g, pathsTo, "to")
	if err != nil {
		return err
	}

	res, err := graph.ShortestPath(ctx, g, from, to)
	if err != nil {
		return err
	}

	out := pathOutput{From: pathsFrom, To: pathsTo, Found: res.Found}
	if res.Found {
		out.Distance = res.Distance
		out.Path = labels(g, res.Path)
	} else {
		logger.Warn("no path", "from", pathsFrom, "to", pathsTo)
	}
	return printJSON(out)
}
