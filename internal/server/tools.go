package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// documentProperty is the argument every document-scoped tool takes.
var documentProperty = map[string]interface{}{
	"type":        "string",
	"description": "Name the document was opened under",
}

var pointSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x": map[string]interface{}{"type": "integer"},
		"y": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"x", "y"},
}

// documentOnly builds the schema of a tool whose only argument is the
// document name.
func documentOnly() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"document": documentProperty,
		},
		"required": []string{"document"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Documents
		{
			Name:        "document_open",
			Description: "Open a document, either from an image file or as a blank canvas of the given size. The document is addressed by name in every other tool.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Name to open the document under (default: the file path)",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Image file to open. Omit to create a blank canvas.",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Width of a blank canvas (default: configured canvas width)",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Height of a blank canvas (default: configured canvas height)",
					},
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Hex background color of a blank canvas (default: palette background)",
					},
				},
			},
		},
		{
			Name:        "document_close",
			Description: "Close a document and drop its history. Unsaved changes are lost.",
			InputSchema: documentOnly(),
		},
		{
			Name:        "document_save",
			Description: "Save the document. An active selection is merged first, the history is marked saved and a snapshot is recorded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document": documentProperty,
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Destination file; the format follows the extension (default: the path the document was opened from)",
					},
				},
				"required": []string{"document"},
			},
		},
		{
			Name:        "document_status",
			Description: "Report a document's size, active tool, history depth and selection state. Without a document, list the open documents.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document": documentProperty,
				},
			},
		},
		{
			Name:        "document_flatten",
			Description: "Record the current canvas as a snapshot so later rebuilds start from it.",
			InputSchema: documentOnly(),
		},

		// Palette and tools
		{
			Name:        "palette_set",
			Description: "Change the document's main, secondary and background colors. Omitted colors are kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document": documentProperty,
					"main": map[string]interface{}{
						"type":        "string",
						"description": "Hex color used for drawing, e.g. '#FF0000'",
					},
					"secondary": map[string]interface{}{
						"type":        "string",
						"description": "Hex color used for fills and secondary strokes",
					},
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Hex color left behind by cut selections",
					},
				},
				"required": []string{"document"},
			},
		},
		{
			Name:        "tool_select",
			Description: "Make a tool active. Switching away from a selection tool merges the floating region. Settings are applied to the tool after it is selected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document": documentProperty,
					"tool": map[string]interface{}{
						"type":        "string",
						"description": "Tool to activate",
						"enum": []string{
							"pencil", "eraser", "line", "rectangle", "fill", "filter", "transform",
							"rect_select", "free_select", "move", "selection_apply", "import",
						},
					},
					"settings": map[string]interface{}{
						"type":        "object",
						"description": "Tool settings, e.g. {\"width\": 4} for pencil or {\"kind\": \"rotate\", \"angle\": 90} for transform",
					},
				},
				"required": []string{"document", "tool"},
			},
		},
		{
			Name:        "tool_gesture",
			Description: "Feed a pointer gesture to the active tool. 'preview' renders without recording, 'apply' commits and records the operation, 'cancel' abandons the gesture in progress.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document": documentProperty,
					"phase": map[string]interface{}{
						"type":        "string",
						"description": "Gesture phase (default: apply)",
						"enum":        []string{"preview", "apply", "cancel"},
					},
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Pointer positions in event order",
						"items":       pointSchema,
					},
					"view_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Points are in view space and are mapped through the viewport (default: false)",
					},
					"settings": map[string]interface{}{
						"type":        "object",
						"description": "Settings applied to the active tool before the gesture",
					},
					"confirm": map[string]interface{}{
						"type":        "boolean",
						"description": "Answer to continue-or-abort questions the tool asks, such as a fill exceeding its pixel limit (default: false)",
					},
				},
				"required": []string{"document"},
			},
		},

		// History
		{
			Name:        "history_undo",
			Description: "Cancel the gesture in progress or, when there is none, undo the newest operation.",
			InputSchema: documentOnly(),
		},
		{
			Name:        "history_redo",
			Description: "Redo the newest undone operation.",
			InputSchema: documentOnly(),
		},

		// Selection
		{
			Name:        "selection_merge",
			Description: "Merge the floating selection into the canvas and deactivate it.",
			InputSchema: documentOnly(),
		},
		{
			Name:        "selection_import",
			Description: "Place an image as a floating selection. Provide either a base64 PNG or a file path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document": documentProperty,
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded PNG to import",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Image file to import",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge of the imported region (default: 0)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge of the imported region (default: 0)",
					},
				},
				"required": []string{"document"},
			},
		},

		// Canvas
		{
			Name:        "canvas_view",
			Description: "Read or change the viewport. Zoom is clamped to the configured limits and scroll to the canvas.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document": documentProperty,
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Viewport width in view pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Viewport height in view pixels",
					},
					"zoom": map[string]interface{}{
						"type":        "number",
						"description": "View pixels per canvas pixel",
					},
					"scroll_x": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas x shown at the left edge of the view",
					},
					"scroll_y": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas y shown at the top edge of the view",
					},
				},
				"required": []string{"document"},
			},
		},
		{
			Name:        "canvas_export",
			Description: "Render the canvas, including the floating selection, as a base64-encoded PNG. Optionally overlay a coordinate grid.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document": documentProperty,
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Output scale factor (default: 1.0)",
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines; 0 draws no grid (default: 0)",
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label grid intersections (default: false)",
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex grid color (default: '#FF000080')",
					},
				},
				"required": []string{"document"},
			},
		},
		{
			Name:        "canvas_sample_color",
			Description: "Get the color of the rendered canvas at a pixel, as hex, RGBA and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document": documentProperty,
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate",
					},
				},
				"required": []string{"document", "x", "y"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
