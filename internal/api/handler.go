// Package api implements the KlinScore REST API.
// It serves score definitions, runs calculations and exposes the calculation history.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jeffcwolf/klinscore/internal/history"
	"github.com/jeffcwolf/klinscore/pkg/library"
	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

// Handler is the top-level API handler.
type Handler struct {
	lib      *library.Library
	engine   *scoring.Engine
	history  *history.Service
	logger   *slog.Logger
	language string
}

// NewHandler creates a new API handler. hist may be nil, in which case
// calculations are never stored and the history endpoints return 503.
func NewHandler(lib *library.Library, hist *history.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		lib:      lib,
		engine:   scoring.NewEngine(),
		history:  hist,
		logger:   logger,
		language: "en",
	}
}

// SetDefaultLanguage sets the export language used when a request names none.
func (h *Handler) SetDefaultLanguage(lang string) {
	if lang == "de" {
		h.language = "de"
	} else {
		h.language = "en"
	}
}

// Router returns the chi router with the full middleware stack. A non-empty
// apiKey protects every /api route.
func (h *Handler) Router(apiKey string) http.Handler {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(middleware.Recoverer)
	r.Use(Tracing)
	r.Use(Logging(h.logger))

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(APIKeyAuth(apiKey))

		r.Get("/scores", h.handleListScores)
		r.Get("/scores/{scoreID}", h.handleGetScore)
		r.Post("/scores/{scoreID}/calculate", h.handleCalculate)

		r.Get("/calculations", h.handleListCalculations)
		r.Get("/calculations/{id}", h.handleGetCalculation)
		r.Get("/calculations/{id}/export", h.handleExportCalculation)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"scores":  h.lib.Count(),
		"history": h.history != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type calculationErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// writeFailure maps domain errors to status codes.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var ce *scoring.CalculationError
	switch {
	case errors.As(err, &ce):
		writeJSON(w, http.StatusUnprocessableEntity, calculationErrorResponse{
			Error: ce.Error(),
			Code:  ce.Code(),
			Field: ce.Field,
		})
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, "score not found")
	case errors.Is(err, history.ErrNotFound):
		writeError(w, http.StatusNotFound, "calculation not found")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
