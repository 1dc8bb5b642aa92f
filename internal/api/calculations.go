package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
	"github.com/jeffcwolf/klinscore/pkg/surface"
)

var exportContentTypes = map[string]string{
	"txt":  "text/plain; charset=utf-8",
	"json": "application/json",
	"csv":  "text/csv; charset=utf-8",
	"md":   "text/markdown; charset=utf-8",
}

func (h *Handler) requireHistory(w http.ResponseWriter) bool {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "calculation history is disabled")
		return false
	}
	return true
}

func (h *Handler) handleListCalculations(w http.ResponseWriter, r *http.Request) {
	if !h.requireHistory(w) {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	list, err := h.history.List(r.Context(), r.URL.Query().Get("score_id"), limit)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetCalculation(w http.ResponseWriter, r *http.Request) {
	if !h.requireHistory(w) {
		return
	}

	rec, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleExportCalculation(w http.ResponseWriter, r *http.Request) {
	if !h.requireHistory(w) {
		return
	}

	q := r.URL.Query()
	renderer, ext, err := surface.ForFormat(q.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if t, ok := renderer.(*surface.TerminalRenderer); ok {
		t.Plain = true
	}

	lang := q.Get("lang")
	switch lang {
	case "":
		lang = h.language
	case "en", "de":
	default:
		writeError(w, http.StatusBadRequest, "lang must be en or de")
		return
	}

	rec, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	// The definition may have been removed since the record was made.
	def, err := h.lib.Get(rec.ScoreID)
	if err != nil {
		def = &scoring.ScoreDefinition{Name: rec.ScoreName}
	}

	out := surface.NewRecord(rec.ScoreID, def, rec.Result, lang, rec.CreatedAt)
	w.Header().Set("Content-Type", exportContentTypes[ext])
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", surface.DefaultFilename(rec.ScoreName, ext, rec.CreatedAt)))
	w.WriteHeader(http.StatusOK)
	if err := renderer.Render(w, out); err != nil {
		h.logger.Error("export failed", "record_id", rec.ID, "error", err)
	}
}
