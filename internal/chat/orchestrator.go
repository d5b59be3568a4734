// Package chat runs the conversation protocol between a user message,
// the completion service, and the tool registry. One run performs at
// most one round of tool execution before forcing a final natural
// language answer; there is no repeat-tool loop.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/localhive/localhive/internal/schema"
	"github.com/localhive/localhive/internal/shared/llmutils"
	"github.com/localhive/localhive/internal/tools"
)

// ToolCallRecord correlates one requested tool call with its parsed
// arguments and parsed result, matched by tool_call_id.
type ToolCallRecord struct {
	ID        string            `json:"tool_call_id"`
	Name      string            `json:"name"`
	Arguments map[string]any    `json:"arguments"`
	Result    schema.ToolResult `json:"result"`
}

// Result is the externally visible outcome of one orchestration run.
type Result struct {
	FinalMessage      string           `json:"final_message"`
	ToolUsageCount    int              `json:"tool_usage_count"`
	AuditTurns        []schema.Message `json:"audit_turns"`
	ToolCallBreakdown []ToolCallRecord `json:"tool_call_breakdown"`
}

// Orchestrator drives completion rounds and tool dispatch for one
// configured provider and registry. It is stateless across runs and safe
// for concurrent use.
type Orchestrator struct {
	provider schema.LLMProvider
	registry *tools.Registry
	opts     schema.ChatOptions
}

// NewOrchestrator wires a provider and registry with fixed generation
// settings.
func NewOrchestrator(provider schema.LLMProvider, registry *tools.Registry, opts schema.ChatOptions) *Orchestrator {
	return &Orchestrator{provider: provider, registry: registry, opts: opts}
}

// Run executes the full protocol for one seed prompt: initial completion
// with the registry advertised, at most one round of sequential tool
// dispatch, then a final completion without tools. Completion-service
// failures surface as the returned error and are not retried here; tool
// failures become error tool turns and the run continues.
func (o *Orchestrator) Run(ctx context.Context, seed string) (*Result, error) {
	transcript := schema.NewMessages()
	transcript.AddUser(seed)

	resp, err := o.provider.Chat(ctx, transcript, o.registry.Definitions(), o.opts)
	if err != nil {
		return nil, fmt.Errorf("initial completion: %w", err)
	}

	if !resp.HasToolCalls() {
		transcript.AddAssistant(resp.Content, nil)
		return &Result{
			FinalMessage: contentOrEmpty(resp.Content),
			AuditTurns:   transcript.Filter("assistant", "tool"),
		}, nil
	}

	breakdown := o.executeToolCalls(ctx, &transcript, resp, nil)

	transcript.AddUser(finalDirective)

	final, err := o.provider.Chat(ctx, transcript, nil, o.opts)
	if err != nil {
		return nil, fmt.Errorf("final completion: %w", err)
	}
	transcript.AddAssistant(final.Content, nil)

	return &Result{
		FinalMessage:      contentOrEmpty(final.Content),
		ToolUsageCount:    len(resp.ToolCalls),
		AuditTurns:        transcript.Filter("assistant", "tool"),
		ToolCallBreakdown: breakdown,
	}, nil
}

// executeToolCalls appends the assistant's tool-call turn, then dispatches
// each request strictly in the order received, appending exactly one tool
// turn per request. Argument parse failures and tool failures are recorded
// as error tool turns; they never abort the run. observe, when non-nil, is
// called around each dispatch so the streaming adapter can emit events.
func (o *Orchestrator) executeToolCalls(
	ctx context.Context,
	transcript *schema.Messages,
	resp schema.LLMResponse,
	observe dispatchObserver,
) []ToolCallRecord {
	var calls []schema.ToolCall
	records := make([]ToolCallRecord, 0, len(resp.ToolCalls))

	parsed := make([]map[string]any, len(resp.ToolCalls))
	parseErrs := make([]error, len(resp.ToolCalls))
	for i, tc := range resp.ToolCalls {
		args, err := llmutils.ParseArguments(tc.RawArguments)
		parsed[i], parseErrs[i] = args, err
		calls = append(calls, schema.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: args})
	}
	transcript.AddAssistant(resp.Content, calls)

	for i, tc := range resp.ToolCalls {
		if observe != nil {
			observe.onStart(tc, parsed[i])
		}

		var result schema.ToolResult
		if parseErrs[i] != nil {
			slog.Warn("malformed tool arguments", "tool", tc.Name, "err", parseErrs[i])
			result = schema.Fail("invalid tool arguments")
		} else {
			argsJSON, _ := json.Marshal(parsed[i])
			slog.Info("tool call", "name", tc.Name, "args", llmutils.Truncate(string(argsJSON), 200))
			result = o.registry.Dispatch(ctx, tc.Name, parsed[i])
		}

		transcript.AddToolResult(tc.ID, tc.Name, result.JSON(), result.IsError)
		records = append(records, ToolCallRecord{
			ID:        tc.ID,
			Name:      tc.Name,
			Arguments: parsed[i],
			Result:    result,
		})

		if observe != nil {
			observe.onFinish(tc, result)
		}
	}
	return records
}

// dispatchObserver receives callbacks around each tool dispatch.
type dispatchObserver interface {
	onStart(tc schema.ToolCallRequest, args map[string]any)
	onFinish(tc schema.ToolCallRequest, result schema.ToolResult)
}

func contentOrEmpty(c *string) string {
	if c == nil {
		return ""
	}
	return *c
}
