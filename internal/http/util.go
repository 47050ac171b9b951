package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"pd-smartdoc/internal/repository"
	"pd-smartdoc/internal/service"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// writeServiceError maps service-layer errors onto HTTP statuses. Validation
// problems keep their message; storage faults answer a generic 500 so file
// paths never leak to clients. notFound is the resource-specific 404 text
// ("Norm not found", "DFMEA entry not found").
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, notFound string) {
	var missing *service.MissingFieldError
	var link *service.LinkTargetError
	var upstream *service.UpstreamError
	var persistence *repository.PersistenceError

	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, Fail(missing.Error()))
	case errors.As(err, &link):
		writeJSON(w, http.StatusBadRequest, Fail(link.Error()))
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail(notFound))
	case errors.As(err, &upstream):
		status := upstream.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, Fail(upstream.Message))
	case errors.As(err, &persistence):
		logger.Error("Storage failure", zap.String("path", persistence.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("Internal server error"))
	default:
		logger.Error("Unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("Internal server error"))
	}
}
