package llmutils

import (
	"encoding/json"
	"testing"
)

func TestParseArguments(t *testing.T) {
	// Round-trip: well-formed arguments survive serialise/parse intact.
	orig := map[string]any{"operation": "multiply", "a": 15.0, "b": 23.0}
	raw, _ := json.Marshal(orig)
	got, err := ParseArguments(string(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["operation"] != "multiply" || got["a"] != 15.0 || got["b"] != 23.0 {
		t.Errorf("round-trip mismatch: %v", got)
	}

	// Truncated arguments are repaired rather than failing.
	got, err = ParseArguments(`{"query":"coffee"`)
	if err != nil {
		t.Fatalf("unexpected error for truncated JSON: %v", err)
	}
	if got["query"] != "coffee" {
		t.Errorf("expected repaired query, got %v", got)
	}

	// Empty arguments become an empty object.
	got, err = ParseArguments("")
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty object, got %v err %v", got, err)
	}

	// Unrepairable garbage is an error.
	if _, err := ParseArguments("not json at all"); err == nil {
		t.Error("expected error for unrepairable input")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("short string should pass through, got %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("unexpected truncation: %q", got)
	}
}
