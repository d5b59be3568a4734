package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/localhive/localhive/internal/schema"
)

// GreetingTool is a deterministic stub that echoes a greeting back.
// It exists so the model has a harmless tool to route greetings through.
type GreetingTool struct{}

func NewGreetingTool() *GreetingTool { return &GreetingTool{} }

func (t *GreetingTool) Name() string        { return string(ToolGreeting) }
func (t *GreetingTool) Description() string { return "Just a greeting response to hello world" }
func (t *GreetingTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"greeting": {
				"type": "string",
				"description": "The greeting to say"
			}
		},
		"required": ["greeting"]
	}`)
}

func (t *GreetingTool) Execute(_ context.Context, params map[string]any) schema.ToolResult {
	greeting, _ := params["greeting"].(string)
	if greeting == "" {
		greeting = "Hello World"
	}
	return schema.OK(map[string]any{
		"message": fmt.Sprintf("%s right back at you!", greeting),
	})
}
