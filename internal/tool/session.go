package tool

import (
	"errors"
	"fmt"

	"github.com/ironsheep/canvas-history-mcp/internal/operation"
)

// Phase is the state of a Session.
type Phase int

const (
	Idle Phase = iota
	Previewing
	Committed
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Previewing:
		return "previewing"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Session drives one tool through preview, apply and cancel.
type Session struct {
	tool  Tool
	phase Phase
	op    operation.Operation
}

// NewSession returns an idle session for t.
func NewSession(t Tool) *Session {
	return &Session{tool: t}
}

// Tool returns the session's tool.
func (s *Session) Tool() Tool {
	return s.tool
}

// Phase returns the current state.
func (s *Session) Phase() Phase {
	return s.phase
}

// InProgress reports whether a gesture is being previewed.
func (s *Session) InProgress() bool {
	return s.phase == Previewing
}

// Operation returns the operation built by the last Preview or Apply.
func (s *Session) Operation() operation.Operation {
	return s.op
}

// Preview builds an operation from g and renders it into live, starting
// from committed. Failures are absorbed: they are logged, live is reset,
// and false is returned. Committed is never touched.
func (s *Session) Preview(ec *EditContext, g Gesture) bool {
	s.phase = Previewing
	op, err := s.tool.BuildOperation(ec, g)
	if err != nil {
		ec.Log().Debug("preview build failed", "tool", s.tool.ID(), "error", err)
		ec.Canvas.DiscardLive()
		return false
	}
	s.op = op

	ec.Canvas.DiscardLive()
	if err := s.tool.DoToolOperation(ec, op.WithPreview(true)); err != nil {
		ec.Log().Debug("preview failed", "tool", s.tool.ID(), "error", err)
		ec.Canvas.DiscardLive()
		return false
	}
	return true
}

// Apply builds the final operation from g and commits it. A gesture that
// turns out to change nothing returns the zero Operation and no error.
func (s *Session) Apply(ec *EditContext, g Gesture) (operation.Operation, error) {
	op, err := s.tool.BuildOperation(ec, g)
	if err != nil {
		s.abort(ec)
		return operation.Operation{}, fmt.Errorf("failed to build %s operation: %w", s.tool.ID(), err)
	}
	if err := s.ApplyOperation(ec, op); err != nil {
		if errors.Is(err, ErrNoChange) {
			return operation.Operation{}, nil
		}
		return operation.Operation{}, err
	}
	return s.op, nil
}

// ApplyOperation runs one last DoToolOperation for op and records it, which
// folds live into committed. On failure live is discarded and committed is
// unchanged. ErrNoChange from the tool is passed through unwrapped.
func (s *Session) ApplyOperation(ec *EditContext, op operation.Operation) error {
	if err := CheckTool(s.tool, op); err != nil {
		s.abort(ec)
		return err
	}
	final := op.WithPreview(false)
	s.op = final

	ec.Canvas.DiscardLive()
	if err := s.tool.DoToolOperation(ec, final); err != nil {
		s.abort(ec)
		if errors.Is(err, ErrNoChange) {
			return ErrNoChange
		}
		ec.Log().Error("commit failed", "tool", s.tool.ID(), "error", err)
		return fmt.Errorf("failed to apply %s: %w", final, err)
	}
	if err := ec.Recorder.AddOperation(final); err != nil {
		s.abort(ec)
		ec.Log().Error("recording failed", "tool", s.tool.ID(), "error", err)
		return fmt.Errorf("failed to record %s: %w", final, err)
	}
	s.phase = Committed
	return nil
}

// Cancel abandons the gesture: live is rebuilt from committed and nothing
// is recorded.
func (s *Session) Cancel(ec *EditContext) {
	ec.Canvas.DiscardLive()
	if c, ok := s.tool.(Canceler); ok {
		c.CancelOperation(ec)
	}
	s.phase = Cancelled
}

func (s *Session) abort(ec *EditContext) {
	ec.Canvas.DiscardLive()
	if c, ok := s.tool.(Canceler); ok {
		c.CancelOperation(ec)
	}
	s.phase = Idle
}
