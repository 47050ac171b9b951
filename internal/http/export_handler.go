package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"pd-smartdoc/internal/service"

	"go.uber.org/zap"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves DFMEA downloads under /api/export/dfmea. Single-entry
// exports resolve linked norms and procedures before rendering.
type ExportHandler struct {
	analyses *service.AnalysisService
	logger   *zap.Logger
}

func NewExportHandler(analyses *service.AnalysisService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{analyses: analyses, logger: logger}
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/export/dfmea"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case parts[0] == "all" && parts[1] == "excel":
		h.ExportAllExcel(w, r)
	case parts[1] == "excel":
		h.ExportExcel(w, r, parts[0])
	case parts[1] == "pdf":
		h.ExportPDF(w, r, parts[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.analyses.GetAnalysis(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "DFMEA entry not found")
		return
	}

	data, err := GenerateAnalysisWorkbook(entry)
	if err != nil {
		h.logger.Error("Excel export failed", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=DFMEA_%s.xlsx", entry.ID))
	w.Write(data)
}

func (h *ExportHandler) ExportPDF(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.analyses.GetAnalysis(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "DFMEA entry not found")
		return
	}

	data, err := GenerateAnalysisPDF(entry)
	if err != nil {
		h.logger.Error("PDF export failed", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=DFMEA_%s.pdf", entry.ID))
	w.Write(data)
}

func (h *ExportHandler) ExportAllExcel(w http.ResponseWriter, r *http.Request) {
	entries, err := h.analyses.ListAnalyses(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "DFMEA entry not found")
		return
	}

	data, err := GenerateSummaryWorkbook(entries)
	if err != nil {
		h.logger.Error("Excel export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", "attachment; filename=DFMEA_All.xlsx")
	w.Write(data)
}
