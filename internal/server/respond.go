package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ocrgateway/internal/gateway"
	"ocrgateway/internal/logger"
	"ocrgateway/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure maps gateway errors onto the HTTP taxonomy: caller input
// errors (400/413/415), configuration errors and engine failures (500).
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	} else {
		s.log.Warn().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request rejected")
	}
	writeError(w, status, err.Error())
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, gateway.ErrEmptyPayload),
		errors.Is(err, gateway.ErrBatchSizeOutOfRange),
		errors.Is(err, storage.ErrInvalidURI):
		return http.StatusBadRequest
	case errors.Is(err, gateway.ErrTooManyPages):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, gateway.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// logRequests logs one line per request with a generated request id.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		reqLog := logger.WithRequestID(uuid.NewString())
		reqLog.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
