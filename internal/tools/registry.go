// Package tools holds the closed set of LLM-callable tools and the
// registry that advertises and dispatches them.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/localhive/localhive/internal/schema"
)

// ToolName is the canonical name of a built-in tool.
type ToolName string

const (
	ToolPokemon  ToolName = "get_pokemon_info"
	ToolGreeting ToolName = "greet_hello_world"
	ToolPlaces   ToolName = "search_places"
	ToolMath     ToolName = "calculate_math"
)

// Registry holds the named tools in registration order and exposes them
// for advertisement and dispatch. The registry is read-only after
// construction and safe to share across concurrent runs.
type Registry struct {
	order []string
	tools map[string]schema.Tool
}

// NewRegistry builds a Registry preserving the given tool order.
func NewRegistry(tools ...schema.Tool) *Registry {
	r := &Registry{tools: make(map[string]schema.Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; exists {
			continue
		}
		r.order = append(r.order, t.Name())
		r.tools[t.Name()] = t
	}
	return r
}

// Get returns the tool with the given name, or nil.
func (r *Registry) Get(name string) schema.Tool {
	return r.tools[name]
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }

// Definitions returns all tool definitions in OpenAI function-calling
// format, in registration order.
func (r *Registry) Definitions() []map[string]any {
	list := make([]map[string]any, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		var params any
		if err := json.Unmarshal(t.Parameters(), &params); err != nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  params,
			},
		})
	}
	return list
}

// Dispatch executes the named tool. Unknown names and tool panics come
// back as error envelopes so a dispatch can never take down a run.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) (result schema.ToolResult) {
	t := r.tools[name]
	if t == nil {
		return schema.Fail(fmt.Sprintf("unknown tool: %s", name))
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("tool panicked", "tool", name, "panic", rec)
			result = schema.Fail(fmt.Sprintf("tool %s failed", name))
		}
	}()

	return t.Execute(ctx, params)
}
