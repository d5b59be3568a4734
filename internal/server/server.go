// Package server exposes the HTTP surface: chat orchestration (plain,
// SSE, and websocket), locals and local-type management, onboarding,
// quick find, and place photos.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/localhive/localhive/internal/auth"
	"github.com/localhive/localhive/internal/chat"
	"github.com/localhive/localhive/internal/places"
	"github.com/localhive/localhive/internal/store"
)

// Server wires handlers to their collaborators and owns the listener.
type Server struct {
	addr         string
	orchestrator *chat.Orchestrator
	store        store.Store
	places       *places.Client
	authMW       *auth.Middleware
}

// New builds a Server. The returned value is ready to Run.
func New(addr string, orchestrator *chat.Orchestrator, st store.Store, placesClient *places.Client, authMW *auth.Middleware) *Server {
	return &Server{
		addr:         addr,
		orchestrator: orchestrator,
		store:        st,
		places:       placesClient,
		authMW:       authMW,
	}
}

// Handler assembles the route table. Everything except the root welcome
// route sits behind the auth middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleWelcome)

	authed := http.NewServeMux()
	authed.HandleFunc("POST /chats", s.handleChat)
	authed.HandleFunc("POST /chats/stream", s.handleChatStream)
	authed.HandleFunc("GET /chats/ws", s.handleChatWS)

	authed.HandleFunc("GET /local-types", s.handleLocalTypesIndex)
	authed.HandleFunc("GET /local-types/{id}", s.handleLocalTypesShow)

	authed.HandleFunc("GET /locals", s.handleLocalsIndex)
	authed.HandleFunc("GET /locals/{id}", s.handleLocalsShow)
	authed.HandleFunc("POST /locals", s.handleLocalsCreate)
	authed.HandleFunc("PUT /locals/{id}", s.handleLocalsUpdate)
	authed.HandleFunc("DELETE /locals/{id}", s.handleLocalsDelete)

	authed.HandleFunc("POST /onboarding/create-local", s.handleOnboardingCreateLocal)

	authed.HandleFunc("GET /quick-find", s.handleQuickFind)
	authed.HandleFunc("GET /quick-find/categories", s.handleQuickFindCategories)

	authed.HandleFunc("GET /photos", s.handlePhotos)
	authed.HandleFunc("GET /photos/{fsq_place_id}", s.handlePhotosByPath)

	mux.Handle("/", s.authMW.Wrap(authed))
	return mux
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, "Welcome to the localhive API", nil)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
