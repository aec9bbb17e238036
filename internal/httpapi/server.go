// Package httpapi exposes the chat endpoint and operational routes. The chat
// endpoint returns 200 for every answerable turn, including degraded ones;
// non-200 statuses are reserved for malformed requests and readiness checks.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/restore-pt/clinibot/internal/assistant"
	"github.com/restore-pt/clinibot/internal/chat"
	"github.com/restore-pt/clinibot/internal/config"
	"github.com/restore-pt/clinibot/internal/observability"
)

// TurnAnswerer is the assistant pipeline consumed by the chat endpoint.
type TurnAnswerer interface {
	Answer(ctx context.Context, conv chat.Conversation) assistant.Result
}

// StoreProbe reports whether the vector store is reachable, for readiness.
type StoreProbe interface {
	Count(ctx context.Context) (int64, error)
}

type Server struct {
	cfg     config.Config
	turns   TurnAnswerer
	store   StoreProbe
	metrics *observability.Metrics
}

func New(cfg config.Config, turns TurnAnswerer, store StoreProbe, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		turns:   turns,
		store:   store,
		metrics: metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/chat", s.handleChat)
	r.Options("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

type chatRequest struct {
	Query   string      `json:"query"`
	History []chat.Turn `json:"history"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.InFlightRequests.Inc()
		defer s.metrics.InFlightRequests.Dec()
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with query and history fields")
		return
	}

	conv := make(chat.Conversation, 0, len(req.History)+1)
	conv = append(conv, req.History...)
	conv = append(conv, chat.Turn{Role: chat.RoleUser, Content: req.Query})

	res := s.turns.Answer(r.Context(), conv)
	respondJSON(w, http.StatusOK, chatResponse{Answer: res.Answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if _, err := s.store.Count(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "store_unreachable", "vector store is not reachable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// corsMiddleware mirrors the permissive policy of the original deployment:
// the chat widget is served from a separate static site.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if !s.cfg.AllowAnyOrigin {
			origin = strings.TrimSpace(r.Header.Get("Origin"))
		}
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		// A body with no JSON value at all reads as io.EOF. A truncated
		// value reads as io.ErrUnexpectedEOF and is malformed, not empty.
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
