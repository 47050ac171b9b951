package httpapi

import (
	"bytes"
	"net/http"
	"testing"

	"pd-smartdoc/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedAnalysis(t *testing.T, fx *apiFixture) string {
	t.Helper()

	_, normResult := fx.do(t, http.MethodPost, "/api/edps", map[string]any{
		"normNumber":  "NP-001",
		"title":       "Seal norm",
		"description": "Compression procedure",
	})
	normID := normResult.Data.(map[string]any)["id"].(string)

	_, result := fx.do(t, http.MethodPost, "/api/dfmea", map[string]any{
		"genericFailure": "Door module",
		"failureMode":    "Seal detachment",
		"cause":          "Adhesive degradation",
		"severity":       7,
		"occurrence":     4,
		"detection":      3,
		"preventionControl": map[string]any{
			"type":   "EDPS",
			"edpsId": normID,
		},
	})
	return result.Data.(map[string]any)["id"].(string)
}

func TestExportSingleExcel(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})
	id := seedAnalysis(t, fx)

	rec, _ := fx.do(t, http.MethodGet, "/api/export/dfmea/"+id+"/excel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=DFMEA_"+id+".xlsx", rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("DFMEA")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Field", "Value"}, rows[0][:2])

	flat := map[string]string{}
	for _, row := range rows {
		if len(row) >= 2 {
			flat[row[0]] = row[1]
		}
	}
	assert.Equal(t, "Door module", flat["Generic Failure"])
	assert.Equal(t, "NP-001", flat["  - EDPS Norm Number"])
	assert.Equal(t, "No detection control defined", flat["  - None"])
	assert.Equal(t, "84", flat["RPN"])
}

func TestExportSingleExcelNotFound(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})
	rec, result := fx.do(t, http.MethodGet, "/api/export/dfmea/missing/excel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "DFMEA entry not found", result.Error)
}

func TestExportPDF(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})
	id := seedAnalysis(t, fx)

	rec, _ := fx.do(t, http.MethodGet, "/api/export/dfmea/"+id+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=DFMEA_"+id+".pdf", rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestExportAllExcel(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})
	seedAnalysis(t, fx)
	_, _ = fx.do(t, http.MethodPost, "/api/dfmea", map[string]any{
		"genericFailure": "Window regulator",
		"failureMode":    "Motor stall",
	})

	rec, _ := fx.do(t, http.MethodGet, "/api/export/dfmea/all/excel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=DFMEA_All.xlsx", rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("DFMEA List")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ExportSummaryHeader, rows[0])
	assert.Equal(t, "Linked", rows[1][4])
	assert.Equal(t, "None", rows[2][4])
	assert.Equal(t, "84", rows[1][9])
	assert.Equal(t, "0", rows[2][9])
}

func TestExportUnknownPath(t *testing.T) {
	fx := newAPIFixture(t, config.SAIConfig{})
	rec, _ := fx.do(t, http.MethodGet, "/api/export/dfmea/some-id/csv", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
