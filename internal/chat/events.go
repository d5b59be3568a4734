package chat

// EventType tags one StreamEvent variant.
type EventType string

const (
	EventConnected        EventType = "connected"
	EventContent          EventType = "content"
	EventToolCallProgress EventType = "tool_call_progress"
	EventToolCallStart    EventType = "tool_call_start"
	EventToolCallResult   EventType = "tool_call_result"
	EventToolCallError    EventType = "tool_call_error"
	EventFinalContent     EventType = "final_content"
	EventError            EventType = "error"
	EventDone             EventType = "done"
)

// StreamEvent is one unit of incremental orchestration output. Fields
// other than Type are populated per variant: Content for content and
// final_content deltas, ToolName/ToolCallID/Arguments around dispatch,
// Result for tool outcomes, Message for connected and error.
type StreamEvent struct {
	Type       EventType      `json:"type"`
	Content    string         `json:"content,omitempty"`
	ToolName   string         `json:"tool_name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Index      int            `json:"index,omitempty"`
	Arguments  map[string]any `json:"arguments,omitempty"`
	Partial    string         `json:"partial,omitempty"`
	Result     any            `json:"result,omitempty"`
	Message    string         `json:"message,omitempty"`
}
