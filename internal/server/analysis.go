package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gnegDev/path/internal/analysis"
)

// AnalysisHandler exposes the analyze/read surface for analysis results.
type AnalysisHandler struct {
	svc *analysis.Service
}

func NewAnalysisHandler(svc *analysis.Service) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id must be a UUID"})
		return
	}
	result, err := h.svc.Analyze(r.Context(), id, ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id must be a UUID"})
		return
	}
	result, err := h.svc.Get(r.Context(), id, ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
