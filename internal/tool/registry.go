package tool

import (
	"fmt"
	"sort"

	"github.com/ironsheep/canvas-history-mcp/internal/operation"
)

// Registry maps tool ids to tools.
type Registry struct {
	tools map[operation.ToolID]Tool
}

// NewRegistry returns a registry holding tools. Later duplicates replace
// earlier ones.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[operation.ToolID]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.ID()] = t
	}
	return r
}

// Register adds t. It fails if the id is taken or reserved for snapshots.
func (r *Registry) Register(t Tool) error {
	if t.ID() == operation.ToolNone {
		return fmt.Errorf("tool id must not be empty")
	}
	if _, ok := r.tools[t.ID()]; ok {
		return fmt.Errorf("tool %q is already registered", t.ID())
	}
	r.tools[t.ID()] = t
	return nil
}

// Unregister removes the tool with id. Operations recorded by it can no
// longer be replayed.
func (r *Registry) Unregister(id operation.ToolID) {
	delete(r.tools, id)
}

// Lookup returns the tool with id or an *operation.UnknownToolError.
func (r *Registry) Lookup(id operation.ToolID) (Tool, error) {
	t, ok := r.tools[id]
	if !ok {
		return nil, &operation.UnknownToolError{Tool: id}
	}
	return t, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []operation.ToolID {
	ids := make([]operation.ToolID, 0, len(r.tools))
	for id := range r.tools {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
