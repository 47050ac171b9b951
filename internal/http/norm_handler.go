package httpapi

import (
	"net/http"
	"strings"

	"pd-smartdoc/internal/domain"
	"pd-smartdoc/internal/service"

	"go.uber.org/zap"
)

// NormHandler serves the EDPS norm collection under /api/edps.
type NormHandler struct {
	norms  *service.NormService
	logger *zap.Logger
}

func NewNormHandler(norms *service.NormService, logger *zap.Logger) *NormHandler {
	return &NormHandler{norms: norms, logger: logger}
}

func (h *NormHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/edps"), "/")
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

func (h *NormHandler) List(w http.ResponseWriter, r *http.Request) {
	norms, err := h.norms.ListNorms(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Norm not found")
		return
	}
	writeJSON(w, http.StatusOK, OkCount(norms, len(norms)))
}

func (h *NormHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	norm, err := h.norms.GetNorm(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Norm not found")
		return
	}
	writeJSON(w, http.StatusOK, Ok(norm))
}

func (h *NormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateNormRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	norm, err := h.norms.CreateNorm(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Norm not found")
		return
	}
	writeJSON(w, http.StatusCreated, Ok(norm))
}

func (h *NormHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var patch domain.NormPatch
	if err := readBodyJSON(r, 1<<20, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	norm, err := h.norms.UpdateNorm(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, h.logger, err, "Norm not found")
		return
	}
	writeJSON(w, http.StatusOK, Ok(norm))
}

func (h *NormHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.norms.DeleteNorm(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err, "Norm not found")
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(nil, "Norm deleted successfully"))
}
