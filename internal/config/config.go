// Package config loads the server configuration: YAML on top of built-in
// defaults, then CANVAS_MCP_* environment overrides, then validation.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Logger  LoggerConfig  `yaml:"logger"`
	History HistoryConfig `yaml:"history"`
	Canvas  CanvasConfig  `yaml:"canvas"`
	Tools   ToolsConfig   `yaml:"tools"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stderr, stdout or a file path
}

// HistoryConfig holds the undo history retention policies.
type HistoryConfig struct {
	CheckpointInterval int `yaml:"checkpoint_interval"` // 0 disables checkpoints
	MaxCheckpoints     int `yaml:"max_checkpoints"`     // 0 = unlimited
	MaxSnapshots       int `yaml:"max_snapshots"`       // 0 = unlimited
}

// CanvasConfig holds the defaults for new documents and the zoom range.
type CanvasConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Background string  `yaml:"background"` // #RRGGBB or #RRGGBBAA
	MinZoom    float64 `yaml:"min_zoom"`
	MaxZoom    float64 `yaml:"max_zoom"`
}

// ToolsConfig holds the initial palette and tool settings.
type ToolsConfig struct {
	MainColor        string  `yaml:"main_color"`
	SecondaryColor   string  `yaml:"secondary_color"`
	StrokeWidth      float64 `yaml:"stroke_width"`
	FillTolerance    float64 `yaml:"fill_tolerance"`
	FillIterationCap int     `yaml:"fill_iteration_cap"` // pixels between continue prompts, 0 = no cap
	SelectionPolicy  string  `yaml:"selection_policy"`   // transparent, background, secondary
}

// Defaults returns a Config with every field set to its default.
func Defaults() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		History: HistoryConfig{
			CheckpointInterval: 20,
			MaxCheckpoints:     8,
			MaxSnapshots:       10,
		},
		Canvas: CanvasConfig{
			Width:      800,
			Height:     600,
			Background: "#FFFFFF",
			MinZoom:    0.05,
			MaxZoom:    32,
		},
		Tools: ToolsConfig{
			MainColor:        "#000000",
			SecondaryColor:   "#FFFFFF",
			StrokeWidth:      2,
			FillTolerance:    0.1,
			FillIterationCap: 1 << 20,
			SelectionPolicy:  "transparent",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides copies CANVAS_MCP_* variables into cfg. Malformed
// numbers are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CANVAS_MCP_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("CANVAS_MCP_LOG_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("CANVAS_MCP_LOG_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("CANVAS_MCP_CHECKPOINT_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.CheckpointInterval = n
		}
	}
	if v := os.Getenv("CANVAS_MCP_MAX_CHECKPOINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxCheckpoints = n
		}
	}
	if v := os.Getenv("CANVAS_MCP_MAX_SNAPSHOTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxSnapshots = n
		}
	}
	if v := os.Getenv("CANVAS_MCP_BACKGROUND"); v != "" {
		cfg.Canvas.Background = v
	}
	if v := os.Getenv("CANVAS_MCP_SELECTION_POLICY"); v != "" {
		cfg.Tools.SelectionPolicy = v
	}
}
