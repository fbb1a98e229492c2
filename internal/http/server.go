// Package http exposes the group over a JSON API: login, dashboard reads,
// and the admin mutations.
package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chittrack/internal/auth"
	"chittrack/internal/cache"
	"chittrack/internal/insight"
	"chittrack/internal/log"
	"chittrack/internal/middleware/ratelimit"
	"chittrack/internal/services"
)

type Server struct {
	http.Server
	svc          *services.GroupService
	jwt          *auth.JWTManager
	insights     insight.Generator
	insightCache *cache.LRUCache[insight.Insight]
	limiter      *ratelimit.Limiter
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer wires the routes and returns a ready-to-run server. insights may
// be nil; the insights endpoint then serves the static fallback.
func NewServer(addr string, svc *services.GroupService, jwt *auth.JWTManager, insights insight.Generator, logger *log.Logger) *Server {
	s := &Server{
		svc:          svc,
		jwt:          jwt,
		insights:     insights,
		insightCache: cache.NewLRUCache[insight.Insight](16, 10*time.Minute),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		logger:       logger.WithComponent(log.ComponentHTTP),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(s.limiter.Middleware(clientIP))

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Post("/api/logout", s.handleLogout)
		r.Get("/api/snapshot", s.handleSnapshot)
		r.Get("/api/dashboard", s.handleDashboard)
		r.Get("/api/insights", s.handleInsights)

		r.Post("/api/payments", s.handleRecordPayment)
		r.Post("/api/auctions", s.handleRecordAuction)
		r.Put("/api/auctions", s.handleRecordAuction)
		r.Patch("/api/config", s.handleUpsertConfig)

		r.Post("/api/members", s.handleAddMember)
		r.Patch("/api/members/{id}", s.handleUpdateMember)
		r.Delete("/api/members/{id}", s.handleRemoveMember)
	})

	s.Server = http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Shutdown gracefully stops the server. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// clientIP trusts the RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"sync":   string(s.svc.Status()),
	})
}
