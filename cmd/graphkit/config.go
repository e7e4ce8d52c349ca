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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config carries defaults loaded from an optional YAML config file.
// Flags given explicitly on the command line win over config values.
type Config struct {
	LogLevel   string  `yaml:"log_level"`
	LogDir     string  `yaml:"log_dir"`
	JSONLogs   bool    `yaml:"json_logs"`
	Quiet      bool    `yaml:"quiet"`
	Graph      string  `yaml:"graph"`
	Top        int     `yaml:"top"`
	Damping    float64 `yaml:"damping"`
	Resolution float64 `yaml:"resolution"`
}

// loadConfig reads the config file if it exists. A missing file is
// fine; a present-but-broken one is an error worth stopping for.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyConfig overrides flag variables the user did not set explicitly.
func applyConfig(cmd *cobra.Command, cfg *Config) {
	if cfg == nil {
		return
	}

	flags := cmd.Flags()
	if cfg.LogLevel != "" && !flags.Changed("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogDir != "" && !flags.Changed("log-dir") {
		logDir = cfg.LogDir
	}
	if cfg.JSONLogs && !flags.Changed("json-logs") {
		jsonLogs = true
	}
	if cfg.Quiet && !flags.Changed("quiet") {
		quiet = true
	}
	if cfg.Graph != "" && !flags.Changed("graph") {
		graphPath = cfg.Graph
	}
	if cfg.Top > 0 && !flags.Changed("top") {
		rankTop = cfg.Top
	}
	if cfg.Damping > 0 && !flags.Changed("damping") {
		rankDamping = cfg.Damping
	}
	if cfg.Resolution > 0 && !flags.Changed("resolution") {
		communitiesResolution = cfg.Resolution
	}
}
