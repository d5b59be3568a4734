package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localhive/localhive/internal/auth"
	"github.com/localhive/localhive/internal/chat"
	"github.com/localhive/localhive/internal/config"
	"github.com/localhive/localhive/internal/places"
	"github.com/localhive/localhive/internal/schema"
	"github.com/localhive/localhive/internal/store"
	"github.com/localhive/localhive/internal/tools"
)

// scriptedProvider replays fixed completion rounds.
type scriptedProvider struct {
	responses []schema.LLMResponse
	calls     int
}

func (p *scriptedProvider) Chat(_ context.Context, _ schema.Messages, _ []map[string]any, _ schema.ChatOptions) (schema.LLMResponse, error) {
	return p.next(nil)
}

func (p *scriptedProvider) ChatStream(_ context.Context, _ schema.Messages, _ []map[string]any, _ schema.ChatOptions, h schema.StreamHandler) (schema.LLMResponse, error) {
	return p.next(h)
}

func (p *scriptedProvider) DefaultModel() string { return "scripted" }

func (p *scriptedProvider) next(h schema.StreamHandler) (schema.LLMResponse, error) {
	if p.calls >= len(p.responses) {
		return schema.LLMResponse{}, fmt.Errorf("unexpected completion round %d", p.calls)
	}
	resp := p.responses[p.calls]
	p.calls++
	if h != nil && resp.Content != nil {
		h.OnContent(*resp.Content)
	}
	return resp, nil
}

type testEnv struct {
	srv   *httptest.Server
	store *store.SQLiteStore
}

// newTestEnv stands up the full handler stack with auth disabled, a
// seeded store, and a scripted completion provider.
func newTestEnv(t *testing.T, provider schema.LLMProvider, placesURL string) *testEnv {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if _, err := st.SeedLocalTypes(context.Background()); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	registry := tools.NewRegistry(tools.NewGreetingTool(), tools.NewMathTool())
	orch := chat.NewOrchestrator(provider, registry, schema.ChatOptions{})

	placesClient := places.NewClient(config.PlacesConfig{APIBase: placesURL, APIVersion: "2025-06-17"})
	mw := auth.NewMiddleware(nil, st, true)

	s := New(":0", orch, st, placesClient, mw)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: st}
}

func (e *testEnv) createLocal(t *testing.T, name string) *store.Local {
	t.Helper()
	ctx := context.Background()
	types, err := e.store.LocalTypes(ctx)
	if err != nil {
		t.Fatalf("listing types: %v", err)
	}
	local, err := e.store.CreateLocal(ctx, store.LocalParams{
		LocalTypeID:  types[0].ID,
		Name:         name,
		Coordinates:  "24.977006,67.211599",
		RadiusMeters: 2000,
	})
	if err != nil {
		t.Fatalf("creating local: %v", err)
	}
	return local
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) (string, string, map[string]any) {
	t.Helper()
	defer resp.Body.Close()
	var body struct {
		Status  string         `json:"status"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return body.Status, body.Message, body.Data
}

func strptr(s string) *string { return &s }

func chatBody(text, localID string) map[string]any {
	data := map[string]any{"text": text}
	if localID != "" {
		data["local_id"] = localID
	}
	return map[string]any{"data": data}
}

func TestWelcome(t *testing.T) {
	env := newTestEnv(t, &scriptedProvider{}, "")
	resp, err := http.Get(env.srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	status, _, _ := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || status != "success" {
		t.Errorf("unexpected welcome response %d %s", resp.StatusCode, status)
	}
}

func TestChat_MissingText(t *testing.T) {
	env := newTestEnv(t, &scriptedProvider{}, "")
	resp := postJSON(t, env.srv.URL+"/chats", chatBody("", ""))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestChat_LocalNotFound(t *testing.T) {
	env := newTestEnv(t, &scriptedProvider{}, "")
	resp := postJSON(t, env.srv.URL+"/chats", chatBody("hello", "missing-uuid"))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestChat_ToolRoundAndPersistence(t *testing.T) {
	provider := &scriptedProvider{responses: []schema.LLMResponse{
		{
			ToolCalls: []schema.ToolCallRequest{{
				ID:           "call_1",
				Name:         string(tools.ToolGreeting),
				RawArguments: `{"greeting":"Hello World"}`,
			}},
			FinishReason: "tool_calls",
		},
		{Content: strptr("Hello! Welcome to the fair."), FinishReason: "stop"},
	}}
	env := newTestEnv(t, provider, "")
	local := env.createLocal(t, "Summer Fair")

	resp := postJSON(t, env.srv.URL+"/chats", chatBody("Hello World", local.UUID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	status, _, data := decodeEnvelope(t, resp)
	if status != "success" {
		t.Fatalf("unexpected status %q", status)
	}

	ai, _ := data["ai_response"].(map[string]any)
	if ai["content"] != "Hello! Welcome to the fair." {
		t.Errorf("unexpected ai_response: %v", ai)
	}
	if data["tools_used"] != 1.0 {
		t.Errorf("expected tools_used 1, got %v", data["tools_used"])
	}

	calls, _ := data["tool_calls"].([]any)
	if len(calls) != 1 {
		t.Fatalf("expected 1 tool call record, got %v", data["tool_calls"])
	}

	// Both turns landed in the messages table.
	msgs, err := env.store.MessagesForLocal(context.Background(), local.UUID, 10)
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(msgs))
	}
	if msgs[0].MessageBy != store.MessageByAssistant || msgs[1].MessageBy != store.MessageByUser {
		t.Errorf("unexpected persisted turns: %+v", msgs)
	}
}

func TestChatStream_SSE(t *testing.T) {
	provider := &scriptedProvider{responses: []schema.LLMResponse{
		{Content: strptr("Hi there."), FinishReason: "stop"},
	}}
	env := newTestEnv(t, provider, "")

	resp := postJSON(t, env.srv.URL+"/chats/stream", chatBody("hi", ""))
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", got)
	}

	var events []chat.StreamEvent
	for _, line := range strings.Split(readAll(t, resp), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev chat.StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad event line %q: %v", line, err)
		}
		events = append(events, ev)
	}

	if len(events) < 2 {
		t.Fatalf("expected at least connected+done, got %v", events)
	}
	if events[0].Type != chat.EventConnected {
		t.Errorf("first event must be connected, got %s", events[0].Type)
	}
	if events[len(events)-1].Type != chat.EventDone {
		t.Errorf("last event must be done, got %s", events[len(events)-1].Type)
	}
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			return sb.String()
		}
	}
}
