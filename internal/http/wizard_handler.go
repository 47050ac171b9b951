package httpapi

import (
	"net/http"
	"strings"

	"pd-smartdoc/internal/wizard"

	"go.uber.org/zap"
)

// WizardHandler drives the conversational document assistant under
// /api/wizard/{doctype}/start and /api/wizard/{doctype}/message.
type WizardHandler struct {
	manager *wizard.Manager
	logger  *zap.Logger
}

func NewWizardHandler(manager *wizard.Manager, logger *zap.Logger) *WizardHandler {
	return &WizardHandler{manager: manager, logger: logger}
}

type wizardMessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

func (h *WizardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/wizard"), "/"), "/")
	if len(parts) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	docType := wizard.DocType(parts[0])

	switch parts[1] {
	case "start":
		h.Start(w, r, docType)
	case "message":
		h.Message(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request, docType wizard.DocType) {
	reply, err := h.manager.Start(r.Context(), docType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(reply))
}

func (h *WizardHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req wizardMessageRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("sessionId is required"))
		return
	}

	reply, err := h.manager.Message(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeServiceError(w, h.logger, err, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, Ok(reply))
}
