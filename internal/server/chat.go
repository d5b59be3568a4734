package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/localhive/localhive/internal/auth"
	"github.com/localhive/localhive/internal/chat"
	"github.com/localhive/localhive/internal/store"
)

// chatRequest is the body of POST /chats and POST /chats/stream.
type chatRequest struct {
	Data struct {
		Text    string `json:"text"`
		LocalID string `json:"local_id"`
	} `json:"data"`
}

// chatResponse mirrors the historical response layout of the chat API.
type chatResponse struct {
	AIResponse        assistantMessage      `json:"ai_response"`
	ToolsUsed         int                   `json:"tools_used"`
	Conversations     any                   `json:"conversations"`
	ToolCalls         []chat.ToolCallRecord `json:"tool_calls"`
	ConversationCount int                   `json:"conversation_length"`
}

type assistantMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Data.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	seed, local, err := s.buildSeed(r.Context(), req)
	if err != nil {
		s.respondSeedError(w, err)
		return
	}

	result, err := s.orchestrator.Run(r.Context(), seed)
	if err != nil {
		slog.Error("chat run failed", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to process chat")
		return
	}

	s.persistRun(r.Context(), local, req.Data.Text, seed, result.FinalMessage, result.ToolUsageCount)

	respondSuccess(w, http.StatusOK, "Chat processed successfully", chatResponse{
		AIResponse:        assistantMessage{Role: "assistant", Content: result.FinalMessage},
		ToolsUsed:         result.ToolUsageCount,
		Conversations:     result.AuditTurns,
		ToolCalls:         result.ToolCallBreakdown,
		ConversationCount: len(result.AuditTurns),
	})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Data.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	seed, local, err := s.buildSeed(r.Context(), req)
	if err != nil {
		s.respondSeedError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	var answer strings.Builder
	toolsUsed := 0

	for ev := range s.orchestrator.RunStream(r.Context(), seed) {
		switch ev.Type {
		case chat.EventContent, chat.EventFinalContent:
			answer.WriteString(ev.Content)
		case chat.EventToolCallStart:
			toolsUsed++
		}
		writeSSE(w, ev)
		flusher.Flush()
	}

	// The consumer may have gone away; persistence still applies.
	s.persistRun(context.WithoutCancel(r.Context()), local, req.Data.Text, seed, answer.String(), toolsUsed)
}

func writeSSE(w http.ResponseWriter, ev chat.StreamEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal stream event", "err", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// buildSeed resolves the optional local and folds it into the prompt.
func (s *Server) buildSeed(ctx context.Context, req chatRequest) (string, *store.Local, error) {
	if req.Data.LocalID == "" {
		return req.Data.Text, nil, nil
	}

	local, err := s.store.LocalByUUID(ctx, req.Data.LocalID)
	if err != nil {
		return "", nil, err
	}

	lc := &chat.LocalContext{
		LocalName:        local.Name,
		LocalDescription: local.Description,
		Coordinates:      local.Coordinates,
		RadiusMeters:     local.RadiusMeters,
	}
	if local.LocalType != nil {
		lc.CategoryName = local.LocalType.Name
		lc.CategoryDescription = local.LocalType.ShortDescription
	}
	return chat.BuildSeedPrompt(req.Data.Text, lc), local, nil
}

func (s *Server) respondSeedError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Local not found")
		return
	}
	slog.Error("resolving local", "err", err)
	respondError(w, http.StatusInternalServerError, "Failed to resolve local")
}

// persistRun appends the user and assistant turns of a completed run.
// Runs without a bound local are not persisted.
func (s *Server) persistRun(ctx context.Context, local *store.Local, text, prompt, answer string, toolsUsed int) {
	if local == nil || answer == "" {
		return
	}

	var userID, customerID int64
	if u := auth.UserFromContext(ctx); u != nil {
		userID, customerID = u.ID, u.CustomerID
	}

	if _, err := s.store.SaveMessage(ctx, store.MessageRecord{
		MessageBy:  store.MessageByUser,
		UserID:     userID,
		CustomerID: customerID,
		LocalID:    local.ID,
		Message:    text,
		Prompt:     prompt,
	}); err != nil {
		slog.Error("persisting user turn", "err", err)
		return
	}

	metadata, _ := json.Marshal(map[string]int{"tool_usage_count": toolsUsed})
	if _, err := s.store.SaveMessage(ctx, store.MessageRecord{
		MessageBy:  store.MessageByAssistant,
		UserID:     userID,
		CustomerID: customerID,
		LocalID:    local.ID,
		Message:    answer,
		Metadata:   metadata,
	}); err != nil {
		slog.Error("persisting assistant turn", "err", err)
	}
}
