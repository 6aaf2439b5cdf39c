// Package api provides HTTP handlers for the training pages.
//
//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/ashureev/ajiwai-labs/internal/manual"
	"github.com/ashureev/ajiwai-labs/internal/metrics"
	"github.com/ashureev/ajiwai-labs/internal/simulator"
	"github.com/ashureev/ajiwai-labs/internal/store"
	"github.com/go-chi/chi/v5"
)

const maxRequestBody = 64 << 10

// ChatService is the chat page's conversation owner.
type ChatService interface {
	GetOrInit(key string) *domain.Session
	Send(ctx context.Context, userID, key, input string) (string, *domain.Session, error)
	Reset(key string)
}

// SimulatorService is the complaint simulator's conversation owner.
type SimulatorService interface {
	GetOrInit(key string) *domain.Session
	Submit(ctx context.Context, userID, key, input string) (*simulator.TurnResult, error)
	Reset(key string)
	Attempts(ctx context.Context, userID string, limit int) ([]*domain.Attempt, error)
}

// ManualService answers questions from the shop manual.
type ManualService interface {
	Answer(ctx context.Context, question string) (*manual.Result, error)
	Len() int
}

// Deps are the collaborators a Handler serves.
type Deps struct {
	Chat           ChatService
	Simulator      SimulatorService
	Manual         ManualService
	Archive        store.Repository
	Sessions       *store.SessionStore
	Limiter        *RateLimiter
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	IsDev          bool
}

// Handler serves the JSON API and the WebSocket transport.
type Handler struct {
	chat     ChatService
	sim      SimulatorService
	manual   ManualService
	archive  store.Repository
	sessions *store.SessionStore
	limiter  *RateLimiter
	metrics  *metrics.Metrics
	conns    *ConnRegistry
	origins  []string
	isDev    bool
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	archive := d.Archive
	if archive == nil {
		archive = store.Nop{}
	}
	return &Handler{
		chat:     d.Chat,
		sim:      d.Simulator,
		manual:   d.Manual,
		archive:  archive,
		sessions: d.Sessions,
		limiter:  d.Limiter,
		metrics:  d.Metrics,
		conns:    NewConnRegistry(),
		origins:  d.AllowedOrigins,
		isDev:    d.IsDev,
	}
}

// RegisterRoutes registers the page API and the WebSocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/chat", h.GetChat)
		r.Post("/chat", h.PostChat)
		r.Post("/chat/reset", h.ResetChat)

		r.Get("/simulator", h.GetSimulator)
		r.Post("/simulator", h.PostSimulator)
		r.Post("/simulator/reset", h.ResetSimulator)
		r.Get("/simulator/attempts", h.ListAttempts)

		r.Post("/manual", h.PostManual)
	})
	r.Get("/ws", h.ServeWS)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type submitRequest struct {
	Message  string `json:"message"`
	Question string `json:"question"`
}

func decodeSubmit(w http.ResponseWriter, r *http.Request) (submitRequest, bool) {
	var req submitRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

// errorStatus maps service errors to an HTTP status and a stable code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusBadRequest, "empty_message"
	case errors.Is(err, domain.ErrTurnInProgress):
		return http.StatusConflict, "turn_in_progress"
	case errors.Is(err, domain.ErrSessionReset):
		return http.StatusConflict, "session_reset"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "completion_cancelled"
	default:
		return http.StatusBadGateway, "completion_failed"
	}
}

func writeServiceError(w http.ResponseWriter, err error, attrs ...any) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", append(attrs, "error", err)...)
	}
	Error(w, status, code)
}

// allow applies the per-user rate limit. It writes 429 when exhausted.
func (h *Handler) allow(w http.ResponseWriter, userID string) bool {
	if h.limiter == nil || h.limiter.Allow(userID) {
		return true
	}
	slog.Warn("Rate limit exceeded", "user_id", userID)
	Error(w, http.StatusTooManyRequests, "rate_limited")
	return false
}

func (h *Handler) observeSessions() {
	if h.sessions != nil {
		h.metrics.SetActiveSessions(h.sessions.Len())
	}
}
