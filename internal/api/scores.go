package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jeffcwolf/klinscore/pkg/library"
	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

type scoreSummary struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	NameDE      string            `json:"name_de,omitempty"`
	Specialty   scoring.Specialty `json:"specialty"`
	Version     string            `json:"version,omitempty"`
	Description string            `json:"description,omitempty"`
	Formula     string            `json:"formula,omitempty"`
	InputCount  int               `json:"input_count"`
}

func entryToSummary(e *library.Entry) scoreSummary {
	d := e.Definition
	return scoreSummary{
		ID:          e.ID,
		Name:        d.Name,
		NameDE:      d.NameDE,
		Specialty:   d.Specialty,
		Version:     d.Version,
		Description: d.Description,
		Formula:     d.Formula,
		InputCount:  len(d.Inputs),
	}
}

func (h *Handler) handleListScores(w http.ResponseWriter, r *http.Request) {
	var entries []*library.Entry
	if sp := r.URL.Query().Get("specialty"); sp != "" {
		entries = h.lib.ForSpecialty(scoring.ParseSpecialty(sp))
	} else {
		entries = h.lib.Entries()
	}

	result := make([]scoreSummary, 0, len(entries))
	for _, e := range entries {
		result = append(result, entryToSummary(e))
	}
	writeJSON(w, http.StatusOK, result)
}

type scoreDetail struct {
	ID string `json:"id"`
	*scoring.ScoreDefinition
}

func (h *Handler) handleGetScore(w http.ResponseWriter, r *http.Request) {
	scoreID := chi.URLParam(r, "scoreID")

	def, err := h.lib.Get(scoreID)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreDetail{ID: scoreID, ScoreDefinition: def})
}

type calculateRequest struct {
	Inputs scoring.Inputs `json:"inputs"`
	Save   bool           `json:"save"`
}

type calculateResponse struct {
	ScoreID string                     `json:"score_id"`
	Result  *scoring.CalculationResult `json:"result"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	scoreID := chi.URLParam(r, "scoreID")

	def, err := h.lib.Get(scoreID)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Inputs == nil {
		req.Inputs = scoring.Inputs{}
	}

	if req.Save {
		if h.history == nil {
			writeError(w, http.StatusServiceUnavailable, "calculation history is disabled")
			return
		}
		rec, err := h.history.Calculate(r.Context(), scoreID, def, req.Inputs)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
		return
	}

	result, err := h.engine.Calculate(def, req.Inputs)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse{ScoreID: scoreID, Result: result})
}
