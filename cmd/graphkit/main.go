// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command graphkit runs graph analytics over a YAML graph description.
//
// Usage:
//
//	graphkit analyze --graph topology.yaml --root gateway --source gateway --sink db
//	graphkit paths --graph topology.yaml --from gateway --to db
//	graphkit rank --graph topology.yaml --top 10
//	graphkit flow --graph topology.yaml --source gateway --sink db
//	graphkit communities --graph topology.yaml
//
// The graph file format:
//
//	directed: true
//	vertices:
//	  - label: gateway
//	  - label: db
//	edges:
//	  - from: gateway
//	    to: db
//	    weight: 1
//	    capacity: 10
package main

import (
	"log/slog"
	"os"

	"github.com/AleutianAI/graphkit/pkg/logging"
	"github.com/spf13/cobra"
)

var logger *logging.Logger

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		applyConfig(cmd, cfg)

		logger = logging.New(logging.Config{
			Level:   logging.ParseLevel(logLevel),
			LogDir:  logDir,
			Service: "graphkit",
			JSON:    jsonLogs,
			Quiet:   quiet,
		})
		// Algorithm completion logs in the graph package go through
		// the default slog logger; route them to the same handlers.
		slog.SetDefault(logger.Slog())
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	}
}
