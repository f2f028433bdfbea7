package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/debemdeboas/folio/internal/auth"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/ingest"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/rs/zerolog"
)

const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

var (
	errBadRequest      = errors.New("bad request")
	errPayloadTooLarge = errors.New("payload too large")
)

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

var now = time.Now

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		apiLogger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError maps err to its status and code. Server-side failures are
// logged and their details kept out of the response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	message := err.Error()
	l := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		l.Error().Stack().Err(err).Str("code", code).Int("status", status).Msg("Request failed")
		if status == http.StatusInternalServerError {
			message = http.StatusText(status)
		}
	} else {
		l.Debug().Err(err).Str("code", code).Int("status", status).Msg("Request rejected")
	}

	writeJSON(w, status, envelope{
		Success: false,
		Error: &apiError{
			Code:      code,
			Message:   message,
			Timestamp: now().UTC(),
		},
	})
}

// classify is the single table from error category to HTTP status.
func classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthenticated
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, errPayloadTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, CodePayloadTooLarge
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, CodeBadRequest
	}

	kind := ingest.Kind(err)
	switch kind {
	case ingest.KindInvalidArchive, ingest.KindInvalidPackage, ingest.KindInvalidPost:
		return http.StatusBadRequest, kind
	case ingest.KindDuplicateSlug:
		return http.StatusConflict, kind
	case ingest.KindUploadFailed:
		return http.StatusBadGateway, kind
	case ingest.KindCanceled:
		return http.StatusGatewayTimeout, kind
	default:
		return http.StatusInternalServerError, kind
	}
}
