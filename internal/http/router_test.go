package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pd-smartdoc/internal/config"
	"pd-smartdoc/internal/repository"
	"pd-smartdoc/internal/service"
	"pd-smartdoc/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiFixture struct {
	router *Router
}

func newAPIFixture(t *testing.T, sai config.SAIConfig) *apiFixture {
	t.Helper()
	logger := zap.NewNop()
	dir := t.TempDir()

	normStore := repository.NewNormStore(dir, logger)
	procStore := repository.NewProcedureStore(dir, logger)
	analysisStore := repository.NewAnalysisStore(dir, logger)

	norms := service.NewNormService(normStore, logger)
	procedures := service.NewProcedureService(procStore, logger)
	analyses := service.NewAnalysisService(analysisStore, normStore, procStore, logger)
	saiClient := service.NewSAIClient(sai, logger)
	manager := wizard.NewManager(saiClient, norms, procedures, analyses, logger)

	router := NewRouter(logger)
	router.RegisterDocumentRoutes(
		NewNormHandler(norms, logger),
		NewProcedureHandler(procedures, logger),
		NewAnalysisHandler(analyses, logger),
	)
	router.RegisterExportRoutes(NewExportHandler(analyses, logger))
	router.RegisterAIToolsRoutes(NewAIToolsHandler(saiClient, sai, logger))
	router.RegisterWizardRoutes(NewWizardHandler(manager, logger))
	router.RegisterSystemRoutes(
		NewAuthHandler(config.AuthConfig{User: "engineer", Password: "admin123"}, logger),
		NewSystemHandler("1.0.0"),
	)
	return &apiFixture{router: router}
}

func (fx *apiFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, Result) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	var result Result
	if rec.Header().Get("Content-Type") == "application/json" {
		_ = json.Unmarshal(rec.Body.Bytes(), &result)
	}
	return rec, result
}

func TestNormCRUD(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})

	rec, result := fx.do(t, http.MethodPost, "/api/edps", map[string]any{
		"normNumber":  "NP-2024-001",
		"title":       "Door seal durability",
		"description": "Test procedure",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, result.Success)
	created := result.Data.(map[string]any)
	id := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "active", created["status"])

	rec, result = fx.do(t, http.MethodGet, "/api/edps", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, result.Count)
	assert.Equal(t, 1, *result.Count)

	rec, result = fx.do(t, http.MethodGet, "/api/edps/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NP-2024-001", result.Data.(map[string]any)["normNumber"])

	rec, result = fx.do(t, http.MethodPut, "/api/edps/"+id, map[string]any{"title": "Updated title"})
	assert.Equal(t, http.StatusOK, rec.Code)
	updated := result.Data.(map[string]any)
	assert.Equal(t, "Updated title", updated["title"])
	assert.Equal(t, "NP-2024-001", updated["normNumber"])

	rec, result = fx.do(t, http.MethodDelete, "/api/edps/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Norm deleted successfully", result.Message)

	rec, result = fx.do(t, http.MethodGet, "/api/edps/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, result.Success)
	assert.Equal(t, "Norm not found", result.Error)
}

func TestNormCreateMissingFields(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})
	rec, result := fx.do(t, http.MethodPost, "/api/edps", map[string]any{"description": "no number"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, result.Success)
	assert.Equal(t, "normNumber and title are required", result.Error)
}

func TestProcedureDefaultsType(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})
	rec, result := fx.do(t, http.MethodPost, "/api/dvp", map[string]any{
		"procedureId": "DVP-001",
		"testName":    "Seal compression",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "FUNCIONAL", result.Data.(map[string]any)["procedureType"])
}

func TestAnalysisLinkValidationAndResolution(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})

	rec, result := fx.do(t, http.MethodPost, "/api/dfmea", map[string]any{
		"genericFailure": "Door module",
		"failureMode":    "Seal detachment",
		"preventionControl": map[string]any{
			"type":   "EDPS",
			"edpsId": "nonexistent",
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EDPS norm with ID nonexistent not found", result.Error)

	_, normResult := fx.do(t, http.MethodPost, "/api/edps", map[string]any{
		"normNumber": "NP-001",
		"title":      "Seal norm",
	})
	normID := normResult.Data.(map[string]any)["id"].(string)

	rec, result = fx.do(t, http.MethodPost, "/api/dfmea", map[string]any{
		"genericFailure": "Door module",
		"failureMode":    "Seal detachment",
		"severity":       7,
		"occurrence":     4,
		"detection":      3,
		"preventionControl": map[string]any{
			"type":   "EDPS",
			"edpsId": normID,
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	entry := result.Data.(map[string]any)
	assert.Equal(t, float64(84), entry["rpn"])
	id := entry["id"].(string)

	rec, result = fx.do(t, http.MethodGet, "/api/dfmea/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	prevention := result.Data.(map[string]any)["preventionControl"].(map[string]any)
	edpsData, ok := prevention["edpsData"].(map[string]any)
	require.True(t, ok, "expected resolved edpsData")
	assert.Equal(t, "NP-001", edpsData["normNumber"])
}

func TestAuthLogin(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})

	rec, result := fx.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "engineer",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := result.Data.(map[string]any)
	assert.Equal(t, "engineer", data["username"])
	assert.NotEmpty(t, data["token"])

	rec, result = fx.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "engineer",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, result.Success)
}

func TestHealthAndIndex(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})

	rec, _ := fx.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])

	rec, _ = fx.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var index map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &index))
	assert.Equal(t, "PD-SmartDoc API", index["name"])
}

func TestAIToolsStatusAndValidation(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{
		EDPSTemplate: "tpl-edps", DVPTemplate: "tpl-dvp", DFMEATemplate: "tpl-dfmea",
	})

	rec, result := fx.do(t, http.MethodGet, "/api/ai-tools/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := result.Data.(map[string]any)
	assert.Equal(t, false, data["configured"])

	rec, result = fx.do(t, http.MethodPost, "/api/ai-tools/edps", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "norma parameter is required", result.Error)

	rec, result = fx.do(t, http.MethodPost, "/api/ai-tools/edps", map[string]any{"norma": "a norm"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, result.Error, "SAI API key not configured")
}

func TestAIToolsPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tpl-dvp/execute", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"test_name": "Compression test"}`)
	}))
	defer upstream.Close()

	fx := newAPIFixture(t, config.SAIConfig{
		BaseURL: upstream.URL, APIKey: "secret",
		EDPSTemplate: "tpl-edps", DVPTemplate: "tpl-dvp", DFMEATemplate: "tpl-dfmea",
	})

	rec, result := fx.do(t, http.MethodPost, "/api/ai-tools/dvp", map[string]any{"norma": "a compression test"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, result.Success)
	assert.Equal(t, "DVP test procedure generated successfully using AI", result.Message)
	assert.Equal(t, "Compression test", result.Data.(map[string]any)["test_name"])
}

func TestAIToolsUpstreamErrorPreserved(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"message": "quota exceeded"}`)
	}))
	defer upstream.Close()

	fx := newAPIFixture(t, config.SAIConfig{
		BaseURL: upstream.URL, APIKey: "secret",
		EDPSTemplate: "tpl-edps", DVPTemplate: "tpl-dvp", DFMEATemplate: "tpl-dfmea",
	})

	rec, result := fx.do(t, http.MethodPost, "/api/ai-tools/edps", map[string]any{"norma": "a norm"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.False(t, result.Success)
	assert.Equal(t, "quota exceeded", result.Error)
}

func TestWizardOverHTTP(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})

	rec, result := fx.do(t, http.MethodPost, "/api/wizard/edps/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reply := result.Data.(map[string]any)
	sessionID := reply["sessionId"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "initial", reply["step"])

	rec, result = fx.do(t, http.MethodPost, "/api/wizard/edps/message", map[string]any{
		"sessionId": sessionID,
		"message":   "Create new",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "field", result.Data.(map[string]any)["step"])

	rec, result = fx.do(t, http.MethodPost, "/api/wizard/edps/message", map[string]any{
		"sessionId": "missing",
		"message":   "hello",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Session not found", result.Error)

	rec, _ = fx.do(t, http.MethodPost, "/api/wizard/unknown/start", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})
	rec, _ := fx.do(t, http.MethodPatch, "/api/edps", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
