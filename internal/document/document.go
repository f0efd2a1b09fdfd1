// Package document ties one image's canvas, selection, history and tools
// together. A Document is the only owner of those parts; tools and history
// receive short-lived views of it per call.
//
// A Document is not safe for concurrent use. Store holds many documents and
// is.
package document

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/canvas-history-mcp/internal/canvas"
	"github.com/ironsheep/canvas-history-mcp/internal/config"
	"github.com/ironsheep/canvas-history-mcp/internal/history"
	"github.com/ironsheep/canvas-history-mcp/internal/logger"
	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/selection"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
	"github.com/ironsheep/canvas-history-mcp/internal/tools"
)

// ErrNoPath is returned by Save when neither an argument nor the document
// supplies a file path.
var ErrNoPath = errors.New("document has no file path")

// Options configures a new Document.
type Options struct {
	Canvas  canvas.Options
	History history.Options
	Tools   tools.Settings
	Palette tool.Palette
	// BlankSize is the size of documents created without an image.
	BlankSize image.Point
	// Confirm answers continue-or-abort questions from tools. nil aborts.
	Confirm func(question string) bool
	Logger  *slog.Logger
}

// DefaultOptions returns black on white with the default tool settings.
func DefaultOptions() Options {
	return Options{
		Canvas:    canvas.DefaultOptions(),
		History:   history.DefaultOptions(),
		Tools:     tools.DefaultSettings(),
		Palette:   tool.Palette{Main: raster.Black, Secondary: raster.White, Background: raster.White},
		BlankSize: image.Pt(800, 600),
	}
}

// OptionsFromConfig translates the configuration file's settings.
func OptionsFromConfig(cfg *config.Config, log *slog.Logger) (Options, error) {
	opts := DefaultOptions()
	opts.Logger = log

	opts.BlankSize = image.Pt(cfg.Canvas.Width, cfg.Canvas.Height)
	opts.Canvas.MinZoom = cfg.Canvas.MinZoom
	opts.Canvas.MaxZoom = cfg.Canvas.MaxZoom
	opts.History.CheckpointInterval = cfg.History.CheckpointInterval
	opts.History.MaxCheckpoints = cfg.History.MaxCheckpoints
	opts.History.MaxSnapshots = cfg.History.MaxSnapshots
	opts.History.Logger = log

	var err error
	if opts.Palette.Main, err = raster.ParseHexColor(cfg.Tools.MainColor); err != nil {
		return opts, fmt.Errorf("main color: %w", err)
	}
	if opts.Palette.Secondary, err = raster.ParseHexColor(cfg.Tools.SecondaryColor); err != nil {
		return opts, fmt.Errorf("secondary color: %w", err)
	}
	if opts.Palette.Background, err = raster.ParseHexColor(cfg.Canvas.Background); err != nil {
		return opts, fmt.Errorf("background color: %w", err)
	}
	if opts.Tools.SelectionPolicy, err = selection.ParsePolicy(cfg.Tools.SelectionPolicy); err != nil {
		return opts, err
	}
	opts.Tools.StrokeWidth = cfg.Tools.StrokeWidth
	opts.Tools.FillTolerance = cfg.Tools.FillTolerance
	opts.Tools.FillMaxPixels = cfg.Tools.FillIterationCap
	return opts, nil
}

// Document is one open image and everything needed to edit it.
type Document struct {
	name     string
	path     string
	canvas   *canvas.State
	sel      *selection.Manager
	hist     *history.History
	registry *tool.Registry
	session  *tool.Session
	palette  tool.Palette
	confirm  func(string) bool
	logger   *slog.Logger
	notices  []string
}

// New opens a document from snap. The pencil is the initial tool.
func New(name string, snap canvas.Snapshot, opts Options) (*Document, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	cv := canvas.New(opts.Canvas)
	if err := cv.RestoreFromSnapshot(snap); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	hopts := opts.History
	if hopts.Logger == nil {
		hopts.Logger = log
	}
	hist, err := history.New(snap, hopts)
	if err != nil {
		return nil, err
	}

	d := &Document{
		name:     name,
		canvas:   cv,
		sel:      selection.New(),
		hist:     hist,
		registry: tool.NewRegistry(tools.All(opts.Tools)...),
		palette:  opts.Palette,
		confirm:  opts.Confirm,
		logger:   log.With("document", name),
	}
	pencil, err := d.registry.Lookup(operation.ToolPencil)
	if err != nil {
		return nil, err
	}
	d.session = tool.NewSession(pencil)
	d.logger.Debug("document opened", "width", cv.Size().X, "height", cv.Size().Y)
	return d, nil
}

// Open loads the image file at path as a new document.
func Open(name, path string, opts Options) (*Document, error) {
	buf, err := raster.Load(path)
	if err != nil {
		return nil, err
	}
	size := buf.Bounds().Size()
	d, err := New(name, canvas.Snapshot{Buffer: buf, Width: size.X, Height: size.Y, Background: opts.Palette.Background}, opts)
	if err != nil {
		return nil, err
	}
	d.path = path
	return d, nil
}

// Close drops the document's buffers and history.
func (d *Document) Close() {
	d.sel.Reset()
	d.hist.Clear()
	d.canvas.Close()
	d.logger.Debug("document closed")
}

// Name returns the name the document was opened under.
func (d *Document) Name() string { return d.name }

// Path returns the file the document was loaded from or last saved to.
func (d *Document) Path() string { return d.path }

// Canvas returns the canvas for viewport changes and read access. Buffers
// must be changed only through the Document.
func (d *Document) Canvas() *canvas.State { return d.canvas }

// Selection returns the selection for read access.
func (d *Document) Selection() *selection.Manager { return d.sel }

// History returns the history for read access.
func (d *Document) History() *history.History { return d.hist }

// Palette returns the current colors.
func (d *Document) Palette() tool.Palette { return d.palette }

// SetPalette replaces the current colors. Recorded operations keep the
// colors they were built with.
func (d *Document) SetPalette(p tool.Palette) { d.palette = p }

// SetConfirm replaces the continue-or-abort callback.
func (d *Document) SetConfirm(fn func(question string) bool) { d.confirm = fn }

// ActiveTool returns the tool that receives gestures.
func (d *Document) ActiveTool() tool.Tool { return d.session.Tool() }

// Phase returns the gesture state of the active tool.
func (d *Document) Phase() tool.Phase { return d.session.Phase() }

// Tool returns the registered tool with the given id so its settings can be
// changed.
func (d *Document) Tool(id operation.ToolID) (tool.Tool, error) {
	return d.registry.Lookup(id)
}

// Tools returns the registered tool ids.
func (d *Document) Tools() []operation.ToolID { return d.registry.IDs() }

// Notices returns the warnings collected since the last call and clears
// them.
func (d *Document) Notices() []string {
	n := d.notices
	d.notices = nil
	return n
}

func (d *Document) warn(msg string) {
	d.notices = append(d.notices, msg)
}

// editContext is rebuilt for every tool call.
func (d *Document) editContext() *tool.EditContext {
	return &tool.EditContext{
		Canvas:    d.canvas,
		Selection: d.sel,
		Recorder:  recorder{d},
		Palette:   d.palette,
		Confirm:   d.confirm,
		Logger:    d.logger,
	}
}

// SetTool makes id the active tool. A gesture in progress is cancelled and
// an active selection is merged unless the new tool works on selections.
func (d *Document) SetTool(id operation.ToolID) error {
	t, err := d.registry.Lookup(id)
	if err != nil {
		return err
	}
	if d.session.InProgress() {
		d.session.Cancel(d.editContext())
	}
	if _, ok := t.(tool.SelectionTool); !ok {
		if err := d.mergeSelection(); err != nil {
			return err
		}
	}
	d.canvas.ClearScratch()
	d.session = tool.NewSession(t)
	return nil
}

// beginGesture prepares for the first event of a gesture: a tool that
// defines a new region needs the old one merged first. The merge happens on
// the first preview as well as on apply, and is recorded; cancelling the
// gesture afterwards leaves it in place.
func (d *Document) beginGesture() error {
	if d.session.InProgress() {
		return nil
	}
	if _, ok := d.session.Tool().(tool.RegionDefiner); ok {
		return d.mergeSelection()
	}
	return nil
}

// Preview renders g with the active tool without committing it. It reports
// whether the preview could be drawn.
func (d *Document) Preview(g tool.Gesture) bool {
	if err := d.beginGesture(); err != nil {
		d.logger.Warn("could not merge selection", "error", err)
		return false
	}
	return d.session.Preview(d.editContext(), g)
}

// Apply commits g with the active tool and records it. A gesture that
// changes nothing, such as a double click with a selection tool, returns
// the zero Operation and no error.
func (d *Document) Apply(g tool.Gesture) (operation.Operation, error) {
	if err := d.beginGesture(); err != nil {
		return operation.Operation{}, err
	}
	return d.session.Apply(d.editContext(), g)
}

// ApplyOperation commits a prebuilt operation with the active tool.
func (d *Document) ApplyOperation(op operation.Operation) error {
	if err := d.beginGesture(); err != nil {
		return err
	}
	err := d.session.ApplyOperation(d.editContext(), op)
	if errors.Is(err, tool.ErrNoChange) {
		return nil
	}
	return err
}

// Cancel abandons the gesture in progress.
func (d *Document) Cancel() {
	d.session.Cancel(d.editContext())
}

// Undo cancels the gesture in progress or, when there is none, reverts the
// newest operation.
func (d *Document) Undo() error {
	return d.hist.TryUndo(env{d})
}

// Redo cancels the gesture in progress and re-applies the newest undone
// operation. It never asks for confirmation.
func (d *Document) Redo() error {
	if d.session.InProgress() {
		d.session.Cancel(d.editContext())
	}
	return d.hist.TryRedo(env{d})
}

// CanUndo reports whether Undo would do anything.
func (d *Document) CanUndo() bool { return d.hist.CanUndo(env{d}) }

// CanRedo reports whether Redo would do anything.
func (d *Document) CanRedo() bool { return d.hist.CanRedo() }

// IsSaved reports whether the committed image matches the last save.
func (d *Document) IsSaved() bool { return d.hist.IsSaved() }

// Rebuild restores the canvas from history.
func (d *Document) Rebuild() (history.RebuildReport, error) {
	return d.hist.RebuildFromHistory(env{d})
}

// settle ends the gesture in progress and merges any floating region so
// that committed holds the whole picture.
func (d *Document) settle() error {
	if d.session.InProgress() {
		d.session.Cancel(d.editContext())
	}
	return d.mergeSelection()
}

// Save writes the committed image to path, or to the document's own path
// when path is empty, and records a snapshot marking the document saved.
func (d *Document) Save(path string) error {
	if path == "" {
		path = d.path
	}
	if path == "" {
		return ErrNoPath
	}
	if err := d.settle(); err != nil {
		return err
	}
	committed := d.canvas.Committed()
	if err := raster.Save(committed, path); err != nil {
		return err
	}
	if err := d.hist.AddSnapshot(env{d}, committed); err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	d.path = path
	d.logger.Info("document saved", "path", path)
	return nil
}

// Flatten records a snapshot of the committed image so that later undos
// replay from here.
func (d *Document) Flatten() error {
	if err := d.settle(); err != nil {
		return err
	}
	return d.hist.Flatten(env{d})
}

// Deselect merges the floating region, if any, as a recorded operation.
func (d *Document) Deselect() error {
	return d.mergeSelection()
}

// mergeSelection applies the selection_apply tool to the active region.
func (d *Document) mergeSelection() error {
	if !d.sel.IsActive() {
		return nil
	}
	t, err := d.registry.Lookup(operation.ToolSelectionApply)
	if err != nil {
		return err
	}
	if _, err := tool.NewSession(t).Apply(d.editContext(), tool.Gesture{}); err != nil {
		return fmt.Errorf("failed to merge selection: %w", err)
	}
	return nil
}

// Import switches to the import tool and places buf as a floating region
// with its top-left corner at at. buf is copied.
func (d *Document) Import(buf *image.NRGBA, at image.Point) (operation.Operation, error) {
	if raster.IsEmpty(buf) {
		return operation.Operation{}, fmt.Errorf("nothing to import")
	}
	t, err := d.registry.Lookup(operation.ToolImport)
	if err != nil {
		return operation.Operation{}, err
	}
	imp, ok := t.(*tools.Import)
	if !ok {
		return operation.Operation{}, fmt.Errorf("import tool has unexpected type %T", t)
	}
	if err := d.SetTool(operation.ToolImport); err != nil {
		return operation.Operation{}, err
	}
	imp.Pending = raster.Clone(buf)
	defer func() { imp.Pending = nil }()
	return d.Apply(tool.Gesture{Points: []image.Point{at}})
}

// Render returns the live surface with the floating region drawn on top.
func (d *Document) Render() *image.NRGBA {
	return d.canvas.Render(d.sel)
}

// Status summarizes the document for status displays.
type Status struct {
	Name        string          `json:"name"`
	Path        string          `json:"path,omitempty"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Tool        string          `json:"tool"`
	Phase       string          `json:"phase"`
	UndoDepth   int             `json:"undo_depth"`
	RedoDepth   int             `json:"redo_depth"`
	CanUndo     bool            `json:"can_undo"`
	CanRedo     bool            `json:"can_redo"`
	Saved       bool            `json:"saved"`
	Checkpoints int             `json:"checkpoints"`
	Selection   string          `json:"selection"`
	Bounds      image.Rectangle `json:"selection_bounds"`
}

// Status reports the document's current state.
func (d *Document) Status() Status {
	size := d.canvas.Size()
	return Status{
		Name:        d.name,
		Path:        d.path,
		Width:       size.X,
		Height:      size.Y,
		Tool:        string(d.session.Tool().ID()),
		Phase:       d.session.Phase().String(),
		UndoDepth:   d.hist.Len(),
		RedoDepth:   len(d.hist.RedoStack()),
		CanUndo:     d.CanUndo(),
		CanRedo:     d.CanRedo(),
		Saved:       d.IsSaved(),
		Checkpoints: d.hist.Checkpoints(),
		Selection:   d.sel.State().String(),
		Bounds:      d.sel.Bounds(),
	}
}
