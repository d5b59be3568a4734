package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/localhive/localhive/internal/config"
	"github.com/localhive/localhive/internal/schema"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIProvider(config.LLMConfig{
		APIKey:  "test-key",
		APIBase: srv.URL,
		Model:   "gpt-4o-mini",
	})
}

func TestChat_DirectContent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"Hello there"},"finish_reason":"stop"}]}`))
	})

	msgs := schema.NewMessages(schema.NewUserMessage("hi"))
	resp, err := p.Chat(context.Background(), msgs, nil, schema.ChatOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content == nil || *resp.Content != "Hello there" {
		t.Errorf("unexpected content: %v", resp.Content)
	}
	if resp.HasToolCalls() {
		t.Error("expected no tool calls")
	}
	if resp.FinishReason != "stop" {
		t.Errorf("expected finish_reason stop, got %q", resp.FinishReason)
	}
}

func TestChat_ToolCalls(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["tools"]; !ok {
			t.Error("expected tools in request body")
		}
		if body["tool_choice"] != "auto" {
			t.Errorf("expected tool_choice auto, got %v", body["tool_choice"])
		}
		w.Write([]byte(`{"choices":[{"message":{"content":null,"tool_calls":[
			{"id":"call_1","function":{"name":"get_pokemon_info","arguments":"{\"pokemon_name\":\"pikachu\"}"}}
		]},"finish_reason":"tool_calls"}]}`))
	})

	msgs := schema.NewMessages(schema.NewUserMessage("tell me about pikachu"))
	tools := []map[string]any{{"type": "function"}}
	resp, err := p.Chat(context.Background(), msgs, tools, schema.ChatOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	tc := resp.ToolCalls[0]
	if tc.ID != "call_1" || tc.Name != "get_pokemon_info" {
		t.Errorf("unexpected tool call: %+v", tc)
	}
	if tc.RawArguments != `{"pokemon_name":"pikachu"}` {
		t.Errorf("unexpected arguments: %v", tc.RawArguments)
	}
}

func TestChat_ServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	msgs := schema.NewMessages(schema.NewUserMessage("hi"))
	if _, err := p.Chat(context.Background(), msgs, nil, schema.ChatOptions{}); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestWireMessages_ToolTurn(t *testing.T) {
	msgs := schema.NewMessages()
	msgs.AddUser("hello")
	content := "calling a tool"
	msgs.AddAssistant(&content, []schema.ToolCall{
		{ID: "call_9", Name: "calculate_math", Arguments: map[string]any{"operation": "add"}},
	})
	msgs.AddToolResult("call_9", "calculate_math", `{"is_error":false}`, false)

	wire := wireMessages(msgs)
	if len(wire) != 3 {
		t.Fatalf("expected 3 wire messages, got %d", len(wire))
	}
	toolMsg := wire[2]
	if toolMsg["role"] != "tool" || toolMsg["tool_call_id"] != "call_9" {
		t.Errorf("unexpected tool wire message: %v", toolMsg)
	}
	asst := wire[1]
	calls, ok := asst["tool_calls"].([]map[string]any)
	if !ok || len(calls) != 1 {
		t.Fatalf("expected 1 wire tool call, got %v", asst["tool_calls"])
	}
	fn := calls[0]["function"].(map[string]any)
	if fn["name"] != "calculate_math" {
		t.Errorf("unexpected function name %v", fn["name"])
	}
}
