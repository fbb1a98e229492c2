package http

import (
	"context"
	"net/http"
	"strings"

	"chittrack/internal/auth"
)

type sessionContextKey struct{}

// sessionMiddleware validates the Bearer token and stashes the session in the
// request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "authorization token required")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			writeError(w, http.StatusUnauthorized, "malformed authorization header")
			return
		}

		session, err := s.jwt.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) auth.Session {
	session, _ := r.Context().Value(sessionContextKey{}).(auth.Session)
	return session
}
