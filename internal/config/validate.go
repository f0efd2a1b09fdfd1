package config

import (
	"fmt"
	"strings"

	"github.com/ironsheep/canvas-history-mcp/internal/raster"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg and returns a *ValidationError listing every problem.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateLogger(cfg, ve)
	validateHistory(cfg, ve)
	validateCanvas(cfg, ve)
	validateTools(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		ve.Add("logger.level %q must be debug, info, warn or error", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "text", "json":
	default:
		ve.Add("logger.format %q must be text or json", cfg.Logger.Format)
	}
}

func validateHistory(cfg *Config, ve *ValidationError) {
	h := cfg.History
	if h.CheckpointInterval < 0 {
		ve.Add("history.checkpoint_interval must not be negative")
	}
	if h.MaxCheckpoints < 0 {
		ve.Add("history.max_checkpoints must not be negative")
	}
	if h.MaxSnapshots < 0 {
		ve.Add("history.max_snapshots must not be negative")
	}
}

func validateCanvas(cfg *Config, ve *ValidationError) {
	c := cfg.Canvas
	if c.Width <= 0 || c.Height <= 0 {
		ve.Add("canvas size %dx%d must be positive", c.Width, c.Height)
	}
	validateColor(ve, "canvas.background", c.Background)
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		ve.Add("canvas zoom range [%g, %g] is invalid", c.MinZoom, c.MaxZoom)
	}
}

func validateTools(cfg *Config, ve *ValidationError) {
	t := cfg.Tools
	validateColor(ve, "tools.main_color", t.MainColor)
	validateColor(ve, "tools.secondary_color", t.SecondaryColor)
	if t.StrokeWidth <= 0 {
		ve.Add("tools.stroke_width must be positive")
	}
	if t.FillTolerance < 0 {
		ve.Add("tools.fill_tolerance must not be negative")
	}
	if t.FillIterationCap < 0 {
		ve.Add("tools.fill_iteration_cap must not be negative")
	}
	switch strings.ToLower(t.SelectionPolicy) {
	case "transparent", "background", "secondary":
	default:
		ve.Add("tools.selection_policy %q must be transparent, background or secondary", t.SelectionPolicy)
	}
}

func validateColor(ve *ValidationError, field, value string) {
	if _, err := raster.ParseHexColor(value); err != nil {
		ve.Add("%s: %v", field, err)
	}
}
