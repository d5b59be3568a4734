package chat

import (
	"context"
	"log/slog"

	"github.com/localhive/localhive/internal/schema"
)

// RunStream executes the same protocol as Run against the provider's
// streaming interface, emitting StreamEvents on the returned channel.
// The first event is always connected and the last before close is
// always done, even when the run errors. The channel is owned by the
// spawned task and closed when the run finishes; cancelling ctx stops
// event emission, but a tool dispatch already underway runs to
// completion so its side effects are not cut short.
func (o *Orchestrator) RunStream(ctx context.Context, seed string) <-chan StreamEvent {
	events := make(chan StreamEvent, 32)
	go o.runStream(ctx, seed, events)
	return events
}

func (o *Orchestrator) runStream(ctx context.Context, seed string, events chan<- StreamEvent) {
	defer close(events)

	em := &emitter{ctx: ctx, events: events}
	defer em.send(StreamEvent{Type: EventDone})

	em.send(StreamEvent{Type: EventConnected, Message: "stream established"})

	transcript := schema.NewMessages()
	transcript.AddUser(seed)

	relay := &streamRelay{em: em, variant: EventContent}
	resp, err := o.provider.ChatStream(ctx, transcript, o.registry.Definitions(), o.opts, relay)
	if err != nil {
		slog.Error("streamed completion failed", "err", err)
		em.send(StreamEvent{Type: EventError, Message: "completion service error"})
		return
	}

	if !resp.HasToolCalls() {
		// Content already went out as content deltas.
		return
	}

	// Dispatch on a context detached from consumer cancellation so a
	// disconnect never aborts a tool call mid-flight.
	o.executeToolCalls(context.WithoutCancel(ctx), &transcript, resp, em)

	transcript.AddUser(finalDirective)

	relay.variant = EventFinalContent
	if _, err := o.provider.ChatStream(ctx, transcript, nil, o.opts, relay); err != nil {
		slog.Error("final streamed completion failed", "err", err)
		em.send(StreamEvent{Type: EventError, Message: "completion service error"})
	}
}

// emitter delivers events to the consumer channel, dropping them once
// the consumer's context is cancelled. It doubles as the dispatch
// observer so tool start/result events interleave correctly with the
// transcript work.
type emitter struct {
	ctx    context.Context
	events chan<- StreamEvent
}

func (e *emitter) send(ev StreamEvent) {
	select {
	case e.events <- ev:
	case <-e.ctx.Done():
	}
}

func (e *emitter) onStart(tc schema.ToolCallRequest, args map[string]any) {
	e.send(StreamEvent{
		Type:       EventToolCallStart,
		ToolName:   tc.Name,
		ToolCallID: tc.ID,
		Arguments:  args,
	})
}

func (e *emitter) onFinish(tc schema.ToolCallRequest, result schema.ToolResult) {
	if result.IsError {
		e.send(StreamEvent{
			Type:       EventToolCallError,
			ToolName:   tc.Name,
			ToolCallID: tc.ID,
			Message:    result.ErrorMessage,
		})
		return
	}
	e.send(StreamEvent{
		Type:       EventToolCallResult,
		ToolName:   tc.Name,
		ToolCallID: tc.ID,
		Result:     result.Data,
	})
}

// streamRelay adapts provider stream callbacks into outbound events.
// variant switches from content to final_content between rounds.
type streamRelay struct {
	em      *emitter
	variant EventType
}

func (r *streamRelay) OnContent(delta string) {
	r.em.send(StreamEvent{Type: r.variant, Content: delta})
}

func (r *streamRelay) OnToolCallDelta(f schema.ToolCallFragment) {
	r.em.send(StreamEvent{
		Type:       EventToolCallProgress,
		Index:      f.Index,
		ToolName:   f.Name,
		ToolCallID: f.ID,
		Partial:    f.Arguments,
	})
}
