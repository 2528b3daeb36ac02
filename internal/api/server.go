package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkuznetsova/dobrobot/internal/scheduler"
)

// Server exposes liveness and operational status over HTTP. It carries no
// bot functionality; it exists for deployment probes and on-call checks.
type Server struct {
	notifier  *scheduler.Notifier
	logger    *slog.Logger
	startedAt time.Time
	version   string
}

// NewServer builds the status server around the reminder notifier.
func NewServer(notifier *scheduler.Notifier, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		notifier:  notifier,
		logger:    logger,
		startedAt: time.Now().UTC(),
		version:   version,
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusResponse struct {
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Notifier      string `json:"notifier"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Notifier:      string(s.notifier.Status()),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("writing status response failed", "error", err)
	}
}
