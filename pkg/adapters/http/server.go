// Package http exposes a registry over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/implicate"
	"github.com/aretw0/implicate/internal/logging"
	"github.com/aretw0/implicate/pkg/domain"
	"github.com/aretw0/implicate/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine is the registry surface served over HTTP.
type Engine interface {
	Get(ctx context.Context, typ, id string) (any, bool, error)
	Put(ctx context.Context, typ, id string, value any) error
	Explain(ctx context.Context, typ, id string) (any, bool, []domain.TraceRecord, error)
	Rules() []*implicate.Implicator
}

// Server holds the handlers of the API.
type Server struct {
	Engine   Engine
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithGatherer sets the registry exposed on /metrics.
// Defaults to prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// AttributeResponse is the body of attribute lookups.
type AttributeResponse struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value any    `json:"value"`
	Found bool   `json:"found"`
}

// ExplainResponse is an attribute lookup together with its trace.
type ExplainResponse struct {
	AttributeResponse
	Trace []domain.TraceRecord `json:"trace"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		Logger:   logging.NewNop(),
		Gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/attributes/{type}/{id}", s.GetAttribute)
	r.Put("/attributes/{type}/{id}", s.PutAttribute)
	r.Get("/explain/{type}/{id}", s.Explain)
	r.Get("/rules", s.ListRules)
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "implicate-http",
		"version": implicate.Version,
	})
}

// GetAttribute handles GET /attributes/{type}/{id}. Absent values are 404.
func (s *Server) GetAttribute(w http.ResponseWriter, r *http.Request) {
	typ, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")

	value, ok, err := s.Engine.Get(r.Context(), typ, id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Get error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Get failed", "type", typ, "id", id, "error", err)
		return
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, AttributeResponse{Type: typ, ID: id, Value: value, Found: ok})
}

// PutAttribute handles PUT /attributes/{type}/{id}. The body is the JSON value.
func (s *Server) PutAttribute(w http.ResponseWriter, r *http.Request) {
	typ, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")

	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Put: invalid request body", "type", typ, "id", id, "error", err)
		return
	}

	if err := s.Engine.Put(r.Context(), typ, id, value); err != nil {
		if errors.Is(err, schema.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, fmt.Sprintf("Put error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Put failed", "type", typ, "id", id, "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Explain handles GET /explain/{type}/{id}.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	typ, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")

	value, ok, trace, err := s.Engine.Explain(r.Context(), typ, id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Explain error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Explain failed", "type", typ, "id", id, "error", err)
		return
	}

	s.writeJSON(w, http.StatusOK, ExplainResponse{
		AttributeResponse: AttributeResponse{Type: typ, ID: id, Value: value, Found: ok},
		Trace:             trace,
	})
}

// ListRules handles GET /rules.
func (s *Server) ListRules(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, implicate.DescribeRules(s.Engine.Rules()))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
