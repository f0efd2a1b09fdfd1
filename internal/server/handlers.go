package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/canvas-history-mcp/internal/canvas"
	"github.com/ironsheep/canvas-history-mcp/internal/document"
	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "document_open", "tool_gesture").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Looks the document up by name
//  4. Calls the document engine
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	switch name {
	// Documents
	case "document_open":
		return s.handleDocumentOpen(args)
	case "document_close":
		return s.handleDocumentClose(args)
	case "document_save":
		return s.handleDocumentSave(args)
	case "document_status":
		return s.handleDocumentStatus(args)
	case "document_flatten":
		return s.handleDocumentFlatten(args)

	// Palette and tools
	case "palette_set":
		return s.handlePaletteSet(args)
	case "tool_select":
		return s.handleToolSelect(args)
	case "tool_gesture":
		return s.handleToolGesture(args)

	// History
	case "history_undo":
		return s.handleHistoryUndo(args)
	case "history_redo":
		return s.handleHistoryRedo(args)

	// Selection
	case "selection_merge":
		return s.handleSelectionMerge(args)
	case "selection_import":
		return s.handleSelectionImport(args)

	// Canvas
	case "canvas_view":
		return s.handleCanvasView(args)
	case "canvas_export":
		return s.handleCanvasExport(args)
	case "canvas_sample_color":
		return s.handleCanvasSampleColor(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type documentArgs struct {
	Document string `json:"document"`
}

// document looks up an open document by name.
func (s *Server) document(name string) (*document.Document, error) {
	if name == "" {
		return nil, errors.New("document is required")
	}
	return s.docs.Get(name)
}

// documentFromArgs decodes a documentArgs and looks the document up.
func (s *Server) documentFromArgs(args json.RawMessage) (*document.Document, error) {
	var a documentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.document(a.Document)
}

// statusResult is returned by every tool that changes a document.
type statusResult struct {
	document.Status
	Notices []string `json:"notices,omitempty"`
}

func status(d *document.Document) *statusResult {
	return &statusResult{Status: d.Status(), Notices: d.Notices()}
}

// === Document Handlers ===

type documentOpenArgs struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
}

func (s *Server) handleDocumentOpen(args json.RawMessage) (interface{}, error) {
	var a documentOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	name := a.Name
	if name == "" {
		name = a.Path
	}
	if name == "" {
		return nil, errors.New("name or path is required")
	}
	if _, err := s.docs.Get(name); err == nil {
		return nil, fmt.Errorf("%w: %s", document.ErrDuplicate, name)
	}

	var (
		d   *document.Document
		err error
	)
	if a.Path != "" {
		d, err = document.Open(name, a.Path, s.opts)
	} else {
		snap := canvas.Snapshot{
			Width:      a.Width,
			Height:     a.Height,
			Background: s.opts.Palette.Background,
		}
		if snap.Width == 0 {
			snap.Width = s.opts.BlankSize.X
		}
		if snap.Height == 0 {
			snap.Height = s.opts.BlankSize.Y
		}
		if a.Background != "" {
			if snap.Background, err = raster.ParseHexColor(a.Background); err != nil {
				return nil, err
			}
		}
		d, err = document.New(name, snap, s.opts)
	}
	if err != nil {
		return nil, err
	}
	if err := s.docs.Add(d); err != nil {
		d.Close()
		return nil, err
	}
	s.logger.Info("document opened", "document", name, "path", a.Path)
	return status(d), nil
}

func (s *Server) handleDocumentClose(args json.RawMessage) (interface{}, error) {
	var a documentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Document == "" {
		return nil, errors.New("document is required")
	}
	if err := s.docs.Remove(a.Document); err != nil {
		return nil, err
	}
	s.logger.Info("document closed", "document", a.Document)
	return map[string]interface{}{
		"closed":    a.Document,
		"documents": s.docs.Names(),
	}, nil
}

type documentSaveArgs struct {
	Document string `json:"document"`
	Path     string `json:"path"`
}

func (s *Server) handleDocumentSave(args json.RawMessage) (interface{}, error) {
	var a documentSaveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.document(a.Document)
	if err != nil {
		return nil, err
	}
	if err := d.Save(a.Path); err != nil {
		return nil, err
	}
	s.logger.Info("document saved", "document", a.Document, "path", d.Path())
	return status(d), nil
}

func (s *Server) handleDocumentStatus(args json.RawMessage) (interface{}, error) {
	var a documentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Document == "" {
		return map[string]interface{}{"documents": s.docs.Names()}, nil
	}
	d, err := s.document(a.Document)
	if err != nil {
		return nil, err
	}
	return status(d), nil
}

func (s *Server) handleDocumentFlatten(args json.RawMessage) (interface{}, error) {
	d, err := s.documentFromArgs(args)
	if err != nil {
		return nil, err
	}
	if err := d.Flatten(); err != nil {
		return nil, err
	}
	return status(d), nil
}

// === Palette and Tool Handlers ===

type paletteSetArgs struct {
	Document   string `json:"document"`
	Main       string `json:"main"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
}

type paletteResult struct {
	Main       string `json:"main"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
}

func (s *Server) handlePaletteSet(args json.RawMessage) (interface{}, error) {
	var a paletteSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.document(a.Document)
	if err != nil {
		return nil, err
	}

	p := d.Palette()
	if err := parseColorArg(a.Main, &p.Main); err != nil {
		return nil, fmt.Errorf("main: %w", err)
	}
	if err := parseColorArg(a.Secondary, &p.Secondary); err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	if err := parseColorArg(a.Background, &p.Background); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	d.SetPalette(p)

	return &paletteResult{
		Main:       raster.Hex(p.Main),
		Secondary:  raster.Hex(p.Secondary),
		Background: raster.Hex(p.Background),
	}, nil
}

// parseColorArg overwrites dst with the color in hex, unless hex is empty.
func parseColorArg(hex string, dst *color.NRGBA) error {
	if hex == "" {
		return nil
	}
	c, err := raster.ParseHexColor(hex)
	if err != nil {
		return err
	}
	*dst = c
	return nil
}

type toolSelectArgs struct {
	Document string          `json:"document"`
	Tool     string          `json:"tool"`
	Settings json.RawMessage `json:"settings"`
}

func (s *Server) handleToolSelect(args json.RawMessage) (interface{}, error) {
	var a toolSelectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.document(a.Document)
	if err != nil {
		return nil, err
	}
	if a.Tool == "" {
		return nil, errors.New("tool is required")
	}
	if err := d.SetTool(operation.ToolID(a.Tool)); err != nil {
		return nil, err
	}
	if err := applySettings(d, a.Settings); err != nil {
		return nil, err
	}
	return status(d), nil
}

// applySettings decodes raw into the active tool's exported settings.
// Fields missing from raw keep their current values.
func applySettings(d *document.Document, raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	t := d.ActiveTool()
	if err := json.Unmarshal(raw, t); err != nil {
		return fmt.Errorf("invalid settings for %s: %w", t.ID(), err)
	}
	return nil
}

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type toolGestureArgs struct {
	Document        string          `json:"document"`
	Phase           string          `json:"phase"`
	Points          []point         `json:"points"`
	ViewCoordinates bool            `json:"view_coordinates"`
	Settings        json.RawMessage `json:"settings"`
	Confirm         bool            `json:"confirm"`
}

type gestureResult struct {
	Phase     string        `json:"phase"`
	Drawn     *bool         `json:"drawn,omitempty"`
	Recorded  bool          `json:"recorded"`
	Operation string        `json:"operation,omitempty"`
	Questions []string      `json:"questions,omitempty"`
	Status    *statusResult `json:"status"`
}

func (s *Server) handleToolGesture(args json.RawMessage) (interface{}, error) {
	var a toolGestureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Phase == "" {
		a.Phase = "apply"
	}
	d, err := s.document(a.Document)
	if err != nil {
		return nil, err
	}
	if err := applySettings(d, a.Settings); err != nil {
		return nil, err
	}

	g := tool.Gesture{Points: make([]image.Point, len(a.Points))}
	for i, p := range a.Points {
		g.Points[i] = image.Pt(p.X, p.Y)
		if a.ViewCoordinates {
			g.Points[i] = d.Canvas().ToCanvasCoords(p.X, p.Y)
		}
	}

	res := &gestureResult{Phase: a.Phase}
	d.SetConfirm(func(question string) bool {
		res.Questions = append(res.Questions, question)
		return a.Confirm
	})
	defer d.SetConfirm(s.opts.Confirm)

	switch a.Phase {
	case "preview":
		drawn := d.Preview(g)
		res.Drawn = &drawn
	case "apply":
		op, err := d.Apply(g)
		if err != nil {
			return nil, err
		}
		if op.Tool != operation.ToolNone {
			res.Recorded = true
			res.Operation = op.ID.String()
		}
	case "cancel":
		d.Cancel()
	default:
		return nil, fmt.Errorf("unknown phase: %s (expected preview, apply or cancel)", a.Phase)
	}
	res.Status = status(d)
	return res, nil
}

// === History Handlers ===

func (s *Server) handleHistoryUndo(args json.RawMessage) (interface{}, error) {
	d, err := s.documentFromArgs(args)
	if err != nil {
		return nil, err
	}
	if err := d.Undo(); err != nil {
		return nil, err
	}
	return status(d), nil
}

func (s *Server) handleHistoryRedo(args json.RawMessage) (interface{}, error) {
	d, err := s.documentFromArgs(args)
	if err != nil {
		return nil, err
	}
	if err := d.Redo(); err != nil {
		return nil, err
	}
	return status(d), nil
}

// === Selection Handlers ===

func (s *Server) handleSelectionMerge(args json.RawMessage) (interface{}, error) {
	d, err := s.documentFromArgs(args)
	if err != nil {
		return nil, err
	}
	if err := d.Deselect(); err != nil {
		return nil, err
	}
	return status(d), nil
}

type selectionImportArgs struct {
	Document    string `json:"document"`
	ImageBase64 string `json:"image_base64"`
	Path        string `json:"path"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
}

func (s *Server) handleSelectionImport(args json.RawMessage) (interface{}, error) {
	var a selectionImportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.document(a.Document)
	if err != nil {
		return nil, err
	}

	var buf *image.NRGBA
	switch {
	case a.ImageBase64 != "":
		buf, err = raster.DecodePNG(a.ImageBase64)
	case a.Path != "":
		buf, err = raster.Load(a.Path)
	default:
		return nil, errors.New("image_base64 or path is required")
	}
	if err != nil {
		return nil, err
	}

	if _, err := d.Import(buf, image.Pt(a.X, a.Y)); err != nil {
		return nil, err
	}
	return status(d), nil
}

// === Canvas Handlers ===

type canvasViewArgs struct {
	Document string   `json:"document"`
	Width    *int     `json:"width"`
	Height   *int     `json:"height"`
	Zoom     *float64 `json:"zoom"`
	ScrollX  *int     `json:"scroll_x"`
	ScrollY  *int     `json:"scroll_y"`
}

func (s *Server) handleCanvasView(args json.RawMessage) (interface{}, error) {
	var a canvasViewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.document(a.Document)
	if err != nil {
		return nil, err
	}
	cv := d.Canvas()

	vp := cv.Viewport()
	if a.Width != nil || a.Height != nil {
		w, h := vp.Width, vp.Height
		if a.Width != nil {
			w = *a.Width
		}
		if a.Height != nil {
			h = *a.Height
		}
		cv.SetViewport(w, h)
	}
	if a.Zoom != nil {
		cv.SetZoom(*a.Zoom)
	}
	if a.ScrollX != nil || a.ScrollY != nil {
		vp = cv.Viewport()
		x, y := vp.ScrollX, vp.ScrollY
		if a.ScrollX != nil {
			x = *a.ScrollX
		}
		if a.ScrollY != nil {
			y = *a.ScrollY
		}
		cv.SetScroll(x, y)
	}
	return cv.Viewport(), nil
}

type canvasExportArgs struct {
	Document        string  `json:"document"`
	Scale           float64 `json:"scale"`
	GridSpacing     int     `json:"grid_spacing"`
	ShowCoordinates bool    `json:"show_coordinates"`
	GridColor       string  `json:"grid_color"`
}

func (s *Server) handleCanvasExport(args json.RawMessage) (interface{}, error) {
	var a canvasExportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.GridColor == "" {
		a.GridColor = "#FF000080"
	}
	d, err := s.document(a.Document)
	if err != nil {
		return nil, err
	}

	img := d.Render()
	if a.GridSpacing > 0 {
		img = raster.GridOverlay(img, a.GridSpacing, a.ShowCoordinates, a.GridColor)
	}
	return raster.EncodePNG(img, a.Scale)
}

type canvasSampleColorArgs struct {
	Document string `json:"document"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

func (s *Server) handleCanvasSampleColor(args json.RawMessage) (interface{}, error) {
	var a canvasSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.document(a.Document)
	if err != nil {
		return nil, err
	}
	return raster.SampleColor(d.Render(), a.X, a.Y)
}
