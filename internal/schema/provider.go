package schema

import "context"

// ChatOptions configures a single completion request.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewChatOptions bundles the per-request completion settings.
func NewChatOptions(model string, maxTokens int, temperature float64) ChatOptions {
	return ChatOptions{Model: model, MaxTokens: maxTokens, Temperature: temperature}
}

// ToolCallRequest is one tool invocation requested by the completion service.
// RawArguments is the provider's serialised argument string, kept unparsed so
// the caller decides how to handle malformed payloads.
type ToolCallRequest struct {
	ID           string
	Name         string
	RawArguments string
}

// LLMResponse is the normalised response from the completion service.
type LLMResponse struct {
	Content      *string // nil when the response contains only tool calls
	ToolCalls    []ToolCallRequest
	FinishReason string // "stop" | "tool_calls" | provider-specific
}

// HasToolCalls reports whether the response contains at least one tool call.
func (r LLMResponse) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// ToolCallFragment is one partial accumulation of a streamed tool call.
// Index identifies which concurrent call of the turn the fragment extends;
// Name and Arguments hold the accumulator's current state, not just the
// delta that arrived.
type ToolCallFragment struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// StreamHandler receives incremental completion output.
// OnContent is called per content delta; OnToolCallDelta per tool-call
// fragment with the accumulator's current state. Callbacks run on the
// stream-consuming goroutine, strictly in arrival order.
type StreamHandler interface {
	OnContent(delta string)
	OnToolCallDelta(fragment ToolCallFragment)
}

// LLMProvider is the contract for the completion service.
//
// Chat performs one blocking round. ChatStream performs one round
// incrementally, invoking h as information arrives, and returns the fully
// assembled response once the provider signals the terminal reason.
type LLMProvider interface {
	Chat(ctx context.Context, messages Messages, tools []map[string]any, opts ChatOptions) (LLMResponse, error)
	ChatStream(ctx context.Context, messages Messages, tools []map[string]any, opts ChatOptions, h StreamHandler) (LLMResponse, error)
	DefaultModel() string
}
