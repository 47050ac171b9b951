package httpapi

import (
	"net/http"
	"strings"

	"pd-smartdoc/internal/domain"
	"pd-smartdoc/internal/service"

	"go.uber.org/zap"
)

// AnalysisHandler serves the DFMEA collection under /api/dfmea. Single-record
// reads answer with linked norm/procedure data resolved in.
type AnalysisHandler struct {
	analyses *service.AnalysisService
	logger   *zap.Logger
}

func NewAnalysisHandler(analyses *service.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses, logger: logger}
}

func (h *AnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/dfmea"), "/")
	if strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.List(w, r)
	case id == "" && r.Method == http.MethodPost:
		h.Create(w, r)
	case id != "" && r.Method == http.MethodGet:
		h.Get(w, r, id)
	case id != "" && r.Method == http.MethodPut:
		h.Update(w, r, id)
	case id != "" && r.Method == http.MethodDelete:
		h.Delete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.analyses.ListAnalyses(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "DFMEA entry not found")
		return
	}
	writeJSON(w, http.StatusOK, OkCount(entries, len(entries)))
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.analyses.GetAnalysis(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "DFMEA entry not found")
		return
	}
	writeJSON(w, http.StatusOK, Ok(entry))
}

func (h *AnalysisHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAnalysisRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	entry, err := h.analyses.CreateAnalysis(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "DFMEA entry not found")
		return
	}
	writeJSON(w, http.StatusCreated, Ok(entry))
}

func (h *AnalysisHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var patch domain.FailureAnalysisPatch
	if err := readBodyJSON(r, 1<<20, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	entry, err := h.analyses.UpdateAnalysis(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, h.logger, err, "DFMEA entry not found")
		return
	}
	writeJSON(w, http.StatusOK, Ok(entry))
}

func (h *AnalysisHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.analyses.DeleteAnalysis(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err, "DFMEA entry not found")
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(nil, "DFMEA entry deleted successfully"))
}
