package schema

// Messages is the ordered transcript of one orchestration run.
// Turns are append-only; callers never mutate an appended message.
type Messages struct {
	Messages []Message
}

// NewMessages returns a Messages initialised with the given messages.
// Called with no arguments it returns an empty transcript ready for use.
func NewMessages(msgs ...Message) Messages {
	if len(msgs) == 0 {
		return Messages{Messages: make([]Message, 0)}
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Messages{Messages: out}
}

// AddSystem appends a system message.
func (mh *Messages) AddSystem(content string) {
	mh.Messages = append(mh.Messages, NewSystemMessage(content))
}

// AddUser appends a user message.
func (mh *Messages) AddUser(content string) {
	mh.Messages = append(mh.Messages, NewUserMessage(content))
}

// AddAssistant appends an assistant message with optional tool calls.
func (mh *Messages) AddAssistant(content *string, toolCalls []ToolCall) {
	mh.Messages = append(mh.Messages, NewAssistantMessage(content, toolCalls))
}

// AddToolResult appends a tool-result message.
func (mh *Messages) AddToolResult(toolCallID, toolName, result string, isError bool) {
	mh.Messages = append(mh.Messages, NewToolResultMessage(toolCallID, toolName, result, isError))
}

// Filter returns the sub-sequence of messages whose role is in roles,
// preserving order. Used to assemble the audit view of a run.
func (mh *Messages) Filter(roles ...string) []Message {
	out := make([]Message, 0, len(mh.Messages))
	for _, m := range mh.Messages {
		for _, r := range roles {
			if m.Role == r {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// Clone returns a deep copy of mh with an independent backing slice.
func (mh *Messages) Clone() Messages {
	cloned := make([]Message, len(mh.Messages))
	copy(cloned, mh.Messages)
	return Messages{Messages: cloned}
}
