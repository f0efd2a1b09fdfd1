// Package server implements the MCP (Model Context Protocol) server for the
// canvas editing engine.
//
// This package provides a JSON-RPC 2.0 server that exposes documents, tools,
// history and selections through the MCP protocol, so that an MCP client can
// draw on a canvas, undo and redo, and look at the result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Documents:
//   - document_open: Open an image file or a blank canvas under a name
//   - document_close: Close a document
//   - document_save: Merge the selection, save and record a snapshot
//   - document_status: Report a document's state, or list open documents
//   - document_flatten: Record the current canvas as a snapshot
//
// Palette and Tools:
//   - palette_set: Change main, secondary and background colors
//   - tool_select: Activate a tool and apply its settings
//   - tool_gesture: Preview, apply or cancel a pointer gesture
//
// History:
//   - history_undo: Cancel the gesture in progress or undo an operation
//   - history_redo: Redo an undone operation
//
// Selection:
//   - selection_merge: Merge the floating region into the canvas
//   - selection_import: Place an image as a floating region
//
// Canvas:
//   - canvas_view: Read or change zoom, scroll and viewport size
//   - canvas_export: Render to base64 PNG with an optional grid overlay
//   - canvas_sample_color: Get the rendered color at a pixel
//
// # Documents
//
// Open documents live in a [document.Store] keyed by name for the lifetime
// of the server process. Every document-scoped tool takes a "document"
// argument naming it. Tools that change a document answer with its status,
// including any warnings collected while replaying history.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(document.DefaultOptions(), log)
//	if err := srv.Run(); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
package server
