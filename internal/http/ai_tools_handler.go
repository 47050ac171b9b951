package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"pd-smartdoc/internal/config"
	"pd-smartdoc/internal/service"

	"go.uber.org/zap"
)

// AIToolsHandler exposes the SAI template executions under /api/ai-tools.
// The upstream response is passed through untouched; clients do their own
// parsing of whatever the template happens to answer.
type AIToolsHandler struct {
	sai       *service.SAIClient
	templates config.SAIConfig
	logger    *zap.Logger
}

func NewAIToolsHandler(sai *service.SAIClient, templates config.SAIConfig, logger *zap.Logger) *AIToolsHandler {
	return &AIToolsHandler{sai: sai, templates: templates, logger: logger}
}

// generateRequest uses the wire name the original frontend sends for all
// three document types.
type generateRequest struct {
	Norma string `json:"norma"`
}

func (h *AIToolsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/ai-tools"), "/")

	if action == "status" && r.Method == http.MethodGet {
		h.Status(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "edps":
		h.generate(w, r, h.sai.GenerateNorm, "EDPS norm generated successfully using AI")
	case "dvp":
		h.generate(w, r, h.sai.GenerateProcedure, "DVP test procedure generated successfully using AI")
	case "dfmea":
		h.generate(w, r, h.sai.GenerateAnalysis, "DFMEA generated successfully using AI")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AIToolsHandler) generate(
	w http.ResponseWriter,
	r *http.Request,
	execute func(ctx context.Context, description string) (json.RawMessage, error),
	message string,
) {
	var req generateRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if strings.TrimSpace(req.Norma) == "" {
		writeJSON(w, http.StatusBadRequest, Fail("norma parameter is required"))
		return
	}
	if !h.sai.Configured() {
		writeJSON(w, http.StatusInternalServerError, Fail("SAI API key not configured. Please set SAI_API_KEY environment variable."))
		return
	}

	raw, err := execute(r.Context(), req.Norma)
	if err != nil {
		writeServiceError(w, h.logger, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(raw, message))
}

// Status reports whether the integration is usable and which templates it
// would run. The API key itself is never echoed.
func (h *AIToolsHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"configured": h.sai.Configured(),
		"templates": map[string]string{
			"edps":  h.templates.EDPSTemplate,
			"dvp":   h.templates.DVPTemplate,
			"dfmea": h.templates.DFMEATemplate,
		},
	}))
}
