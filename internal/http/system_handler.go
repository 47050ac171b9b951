package httpapi

import (
	"net/http"
	"time"
)

// SystemHandler answers the health check and the root service descriptor.
type SystemHandler struct {
	version string
}

func NewSystemHandler(version string) *SystemHandler {
	return &SystemHandler{version: version}
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *SystemHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, Fail("Endpoint not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "PD-SmartDoc API",
		"version": h.version,
		"endpoints": map[string]string{
			"edps":    "/api/edps",
			"dvp":     "/api/dvp",
			"dfmea":   "/api/dfmea",
			"export":  "/api/export",
			"aiTools": "/api/ai-tools",
			"wizard":  "/api/wizard",
		},
	})
}
