package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/localhive/localhive/internal/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browsers hit this endpoint cross-origin from the web client.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleChatWS carries the chat stream over a websocket: the client
// sends one chat request, the server replies with the same event
// sequence the SSE endpoint produces, then closes.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	var req chatRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(map[string]string{"type": "error", "message": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Data.Text) == "" {
		_ = conn.WriteJSON(map[string]string{"type": "error", "message": "text is required"})
		return
	}

	seed, local, err := s.buildSeed(r.Context(), req)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"type": "error", "message": "Local not found"})
		return
	}

	var answer strings.Builder
	toolsUsed := 0
	for ev := range s.orchestrator.RunStream(r.Context(), seed) {
		switch ev.Type {
		case chat.EventContent, chat.EventFinalContent:
			answer.WriteString(ev.Content)
		case chat.EventToolCallStart:
			toolsUsed++
		}
		if err := conn.WriteJSON(ev); err != nil {
			slog.Warn("websocket write failed", "err", err)
			// Keep draining so the orchestration finishes cleanly.
		}
	}

	s.persistRun(r.Context(), local, req.Data.Text, seed, answer.String(), toolsUsed)
}
