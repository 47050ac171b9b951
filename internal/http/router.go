package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux; the route surface is small
// enough that a third-party router would buy nothing.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	logRequest(r.logger, r.mux).ServeHTTP(w, req)
}

// RegisterDocumentRoutes wires the three document collections.
func (r *Router) RegisterDocumentRoutes(norms *NormHandler, procedures *ProcedureHandler, analyses *AnalysisHandler) {
	r.mux.Handle("/api/edps", norms)
	r.mux.Handle("/api/edps/", norms)
	r.mux.Handle("/api/dvp", procedures)
	r.mux.Handle("/api/dvp/", procedures)
	r.mux.Handle("/api/dfmea", analyses)
	r.mux.Handle("/api/dfmea/", analyses)
}

func (r *Router) RegisterExportRoutes(h *ExportHandler) {
	r.mux.Handle("/api/export/dfmea/", h)
}

func (r *Router) RegisterAIToolsRoutes(h *AIToolsHandler) {
	r.mux.Handle("/api/ai-tools/", h)
}

func (r *Router) RegisterWizardRoutes(h *WizardHandler) {
	r.mux.Handle("/api/wizard/", h)
}

func (r *Router) RegisterSystemRoutes(auth *AuthHandler, system *SystemHandler) {
	r.Handle("/api/auth/login", auth.Login)
	r.Handle("/api/health", system.Health)
	r.Handle("/", system.Index)
}
