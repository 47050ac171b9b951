package httpapi

import (
	"net/http"
	"strings"

	"pd-smartdoc/internal/domain"
	"pd-smartdoc/internal/service"

	"go.uber.org/zap"
)

// ProcedureHandler serves the DVP test-procedure collection under /api/dvp.
type ProcedureHandler struct {
	procedures *service.ProcedureService
	logger     *zap.Logger
}

func NewProcedureHandler(procedures *service.ProcedureService, logger *zap.Logger) *ProcedureHandler {
	return &ProcedureHandler{procedures: procedures, logger: logger}
}

func (h *ProcedureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/dvp"), "/")
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

func (h *ProcedureHandler) List(w http.ResponseWriter, r *http.Request) {
	procs, err := h.procedures.ListProcedures(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Procedure not found")
		return
	}
	writeJSON(w, http.StatusOK, OkCount(procs, len(procs)))
}

func (h *ProcedureHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	proc, err := h.procedures.GetProcedure(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Procedure not found")
		return
	}
	writeJSON(w, http.StatusOK, Ok(proc))
}

func (h *ProcedureHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProcedureRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	proc, err := h.procedures.CreateProcedure(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Procedure not found")
		return
	}
	writeJSON(w, http.StatusCreated, Ok(proc))
}

func (h *ProcedureHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var patch domain.TestProcedurePatch
	if err := readBodyJSON(r, 1<<20, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	proc, err := h.procedures.UpdateProcedure(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, h.logger, err, "Procedure not found")
		return
	}
	writeJSON(w, http.StatusOK, Ok(proc))
}

func (h *ProcedureHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.procedures.DeleteProcedure(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err, "Procedure not found")
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(nil, "Procedure deleted successfully"))
}
