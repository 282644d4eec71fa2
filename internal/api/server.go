// Package api serves a read-only JSON view of a vault: races, parsed
// documents, cities and consistency reports.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/vaultlint/internal/config"
	"github.com/dgallion1/vaultlint/internal/report"
	"github.com/dgallion1/vaultlint/internal/vault"
)

// Server is the HTTP API server for vaultlint.
type Server struct {
	router  chi.Router
	vault   *vault.Vault
	engine  *report.Engine
	stats   *ReportStats
	metrics *Metrics
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(v *vault.Vault, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		vault:   v,
		engine:  report.New(v, log),
		stats:   NewReportStats(cfg.StatsWindow),
		metrics: NewMetrics(),
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log, s.metrics))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/races", s.handleListRaces)
		r.Get("/api/races/{race}/issues", s.handleRaceIssues)
		r.Get("/api/races/{race}/document", s.handleRaceDocument)
		r.Get("/api/races/{race}/cities", s.handleRaceCities)

		r.Get("/api/documents", s.handleGetDocument)
		r.Get("/api/stats/reports", s.handleReportStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
