// Package tools holds the editing tools: painting (pencil, eraser, line,
// rectangle, fill), whole-canvas edits (filter, transform) and the selection
// tools (rect_select, free_select, move, selection_apply, import).
//
// Tool settings are exported fields with JSON tags so that callers can
// decode user settings straight into a tool.
package tools

import (
	"errors"
	"fmt"

	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/selection"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

var errNoPoints = errors.New("gesture has no points")

// Settings seeds the tools' initial settings.
type Settings struct {
	StrokeWidth      float64
	FillTolerance    float64
	FillMaxPixels    int
	SelectionPolicy  selection.Policy
	BrightnessAmount float64
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		StrokeWidth:      2,
		FillTolerance:    0.1,
		FillMaxPixels:    1 << 20,
		SelectionPolicy:  selection.PolicyTransparent,
		BrightnessAmount: 0.2,
	}
}

// All returns one instance of every tool, configured from s.
func All(s Settings) []tool.Tool {
	return []tool.Tool{
		&Pencil{Width: s.StrokeWidth},
		&Eraser{Width: max(s.StrokeWidth*4, 1)},
		&Line{Width: s.StrokeWidth},
		&Rectangle{Width: s.StrokeWidth},
		&Fill{Tolerance: s.FillTolerance, MaxPixels: s.FillMaxPixels},
		&Filter{Kind: operation.FilterBlur, Amount: 2},
		&Transform{Kind: operation.TransformFlip, FlipH: true},
		&RectSelect{Policy: s.SelectionPolicy},
		&FreeSelect{Policy: s.SelectionPolicy},
		&Move{},
		&SelectionApply{},
		&Import{},
	}
}

// params checks that op belongs to t and returns its parameters as T.
func params[T operation.Params](t tool.Tool, op operation.Operation) (T, error) {
	if err := tool.CheckTool(t, op); err != nil {
		var zero T
		return zero, err
	}
	p, err := operation.As[T](op)
	if err != nil {
		return p, fmt.Errorf("%s: %w", t.ID(), err)
	}
	return p, nil
}
