package tools

import (
	"context"
	"testing"
)

func testRegistry() *Registry {
	return NewRegistry(NewGreetingTool(), NewMathTool())
}

func TestRegistry_Definitions(t *testing.T) {
	r := testRegistry()
	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}

	// Registration order is preserved in the advertisement.
	first := defs[0]["function"].(map[string]any)
	second := defs[1]["function"].(map[string]any)
	if first["name"] != string(ToolGreeting) || second["name"] != string(ToolMath) {
		t.Errorf("unexpected order: %v, %v", first["name"], second["name"])
	}
	if first["description"] == "" {
		t.Error("expected non-empty description")
	}
	if _, ok := first["parameters"].(map[string]any); !ok {
		t.Error("expected parsed parameter schema")
	}
}

func TestRegistry_DispatchUnknownTool(t *testing.T) {
	r := testRegistry()
	res := r.Dispatch(context.Background(), "no_such_tool", nil)
	if !res.IsError {
		t.Fatal("expected error envelope for unknown tool")
	}
	if res.ErrorMessage == "" {
		t.Error("expected non-empty error message")
	}
}

func TestRegistry_Dispatch(t *testing.T) {
	r := testRegistry()
	res := r.Dispatch(context.Background(), string(ToolGreeting), map[string]any{"greeting": "Hi"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.ErrorMessage)
	}
}

func TestRegistry_Get(t *testing.T) {
	r := testRegistry()
	if r.Get(string(ToolMath)) == nil {
		t.Error("expected math tool")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for missing tool")
	}
}
