package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"document_open",
		"document_close",
		"document_save",
		"document_status",
		"document_flatten",
		"palette_set",
		"tool_select",
		"tool_gesture",
		"history_undo",
		"history_redo",
		"selection_merge",
		"selection_import",
		"canvas_view",
		"canvas_export",
		"canvas_sample_color",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	// Check all expected tools exist
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			// Name should not be empty
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}

			// Description should not be empty
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			// InputSchema should exist
			if tool.InputSchema == nil {
				t.Error("Tool InputSchema is nil")
			}

			// InputSchema should be an object type
			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			// InputSchema should have properties
			props, ok := tool.InputSchema["properties"]
			if !ok {
				t.Error("InputSchema missing 'properties' field")
			}
			if props == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_RequiredDocument(t *testing.T) {
	// Every tool except opening and listing addresses one document
	optional := map[string]bool{
		"document_open":   true,
		"document_status": true,
	}

	for _, tool := range GetToolDefinitions() {
		if optional[tool.Name] {
			continue
		}
		tool := tool
		t.Run(tool.Name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"]
			if !ok {
				t.Error("InputSchema missing 'required' field")
				return
			}

			requiredList, ok := required.([]string)
			if !ok {
				t.Error("'required' should be a string slice")
				return
			}

			hasDocument := false
			for _, r := range requiredList {
				if r == "document" {
					hasDocument = true
					break
				}
			}

			if !hasDocument {
				t.Error("Tool should require 'document' parameter")
			}
		})
	}
}

// findTool returns the definition named name, failing the test if absent.
func findTool(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("%s tool not found", name)
	return Tool{}
}

// enumOf returns the enum of a tool's property as a set.
func enumOf(t *testing.T, tool Tool, prop string) map[string]bool {
	t.Helper()
	props, ok := tool.InputSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("properties should be a map")
	}
	p, ok := props[prop].(map[string]interface{})
	if !ok {
		t.Fatalf("%s property should exist and be a map", prop)
	}
	enum, ok := p["enum"].([]string)
	if !ok {
		t.Fatalf("%s should have enum", prop)
	}
	set := make(map[string]bool)
	for _, e := range enum {
		set[e] = true
	}
	return set
}

func TestToolDefinitions_GesturePhases(t *testing.T) {
	phases := enumOf(t, findTool(t, "tool_gesture"), "phase")

	for _, phase := range []string{"preview", "apply", "cancel"} {
		if !phases[phase] {
			t.Errorf("Expected phase '%s' not in enum", phase)
		}
	}
	if len(phases) != 3 {
		t.Errorf("phase enum: got %d values, want 3", len(phases))
	}
}

func TestToolDefinitions_SelectableTools(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.executeTool("document_open", []byte(`{"name":"doc"}`)); err != nil {
		t.Fatalf("document_open failed: %v", err)
	}
	d, err := s.docs.Get("doc")
	if err != nil {
		t.Fatal(err)
	}

	enum := enumOf(t, findTool(t, "tool_select"), "tool")
	for _, id := range d.Tools() {
		if !enum[string(id)] {
			t.Errorf("registered tool %q missing from tool_select enum", id)
		}
	}
	if len(enum) != len(d.Tools()) {
		t.Errorf("tool enum: got %d values, want %d", len(enum), len(d.Tools()))
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	tools, ok := result["tools"]
	if !ok {
		t.Fatal("Result should contain 'tools' key")
	}

	toolsList, ok := tools.([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	// Should match GetToolDefinitions
	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}

func TestToolStruct(t *testing.T) {
	tool := Tool{
		Name:        "test_tool",
		Description: "A test tool",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"param1": map[string]interface{}{
					"type":        "string",
					"description": "A test parameter",
				},
			},
			"required": []string{"param1"},
		},
	}

	if tool.Name != "test_tool" {
		t.Errorf("Name: got %s, want test_tool", tool.Name)
	}
	if tool.Description != "A test tool" {
		t.Errorf("Description: got %s, want 'A test tool'", tool.Description)
	}
	if tool.InputSchema == nil {
		t.Error("InputSchema should not be nil")
	}
}
