package schema

import (
	"context"
	"encoding/json"
)

// ToolResult is the uniform envelope every tool invocation produces.
// Exactly one of Data or ErrorMessage is meaningful, selected by IsError.
type ToolResult struct {
	IsError      bool   `json:"is_error"`
	Data         any    `json:"data,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) ToolResult {
	return ToolResult{Data: data}
}

// Fail wraps a human-readable message in an error envelope.
func Fail(msg string) ToolResult {
	return ToolResult{IsError: true, ErrorMessage: msg}
}

// JSON serialises the envelope for embedding in a tool transcript turn.
func (r ToolResult) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"is_error":true,"error_message":"unserialisable tool result"}`
	}
	return string(b)
}

// Tool is the interface all LLM-callable tools must satisfy.
// Execute never propagates a failure past this boundary: backend errors,
// bad parameters, and unknown inputs all come back as an error envelope.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	Execute(ctx context.Context, params map[string]any) ToolResult
}
