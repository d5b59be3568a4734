package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/localhive/localhive/internal/store"
)

type contextKey struct{}

// UserFromContext returns the authenticated user attached by Middleware,
// or nil outside an authenticated request.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(contextKey{}).(*store.User)
	return u
}

// Middleware authenticates requests with a bearer token, resolves the
// session to a stored user, and attaches it to the request context.
// With Disabled set every request runs as a shared anonymous user,
// which keeps local development working without an identity provider.
type Middleware struct {
	validator Validator
	users     store.Store
	disabled  bool
}

func NewMiddleware(validator Validator, users store.Store, disabled bool) *Middleware {
	return &Middleware{validator: validator, users: users, disabled: disabled}
}

// Wrap guards h, rejecting requests without a valid session.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			user, err := m.users.EnsureUser(r.Context(), "anonymous", "")
			if err != nil {
				unauthorized(w, "user lookup failed")
				return
			}
			h.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
			return
		}

		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "Missing bearer token")
			return
		}

		session, err := m.validator.ValidateSession(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrInvalidSession) {
				slog.Error("session validation failed", "err", err)
			}
			unauthorized(w, "Could not validate user session")
			return
		}

		user, err := m.users.EnsureUser(r.Context(), session.Subject, session.Email)
		if err != nil {
			slog.Error("user mapping failed", "subject", session.Subject, "err", err)
			unauthorized(w, "user lookup failed")
			return
		}

		h.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func withUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": msg})
}
