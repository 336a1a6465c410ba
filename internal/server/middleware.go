package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type contextKey int

const identityKey contextKey = iota

// Identity holds the resolved request identity.
type Identity struct {
	UserID      int    `json:"userId"`
	Login       string `json:"login"`
	DisplayName string `json:"displayName"`
}

// Identity resolves who is making the request. With Tailscale enabled the
// node's WhoIs answer names the user; in dev mode every request maps to a
// single local user. Either way the user row is found-or-created and its id
// travels in the request context.
func (s *Server) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, displayName := "local", "Local Dev User"
		if s.lc != nil {
			who, err := s.lc.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil || who == nil || who.UserProfile == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
				return
			}
			login = who.UserProfile.LoginName
			displayName = who.UserProfile.DisplayName
		}

		uid, err := s.db.GetOrCreateUser(r.Context(), login, displayName)
		if err != nil {
			s.log.Error("identity lookup failed", "login", login, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "identity lookup failed"})
			return
		}

		ident := Identity{UserID: uid, Login: login, DisplayName: displayName}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, ident)))
	})
}

// mustIdentity pulls the identity from the context, answering 401 when a
// request reached a handler without one.
func mustIdentity(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	ident, ok := r.Context().Value(identityKey).(Identity)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return Identity{}, false
	}
	return ident, true
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and in-process callers that bypass the middleware.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS adds permissive CORS headers for local development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
