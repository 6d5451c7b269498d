package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/0x5457/phosim/internal/embeddings"
	"github.com/0x5457/phosim/internal/models"
	"go.uber.org/zap"
)

// ValidationError marks a request rejected before any encoding work.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(msg string) error { return &ValidationError{Msg: msg} }

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, embeddings.ErrInputTooLong), errors.Is(err, embeddings.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, embeddings.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	detail := err.Error()
	fields := []zap.Field{
		zap.String("request_id", RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	var verr *ValidationError
	switch {
	case status == http.StatusInternalServerError:
		s.logger.Error("request failed", fields...)
		detail = http.StatusText(status)
	case errors.As(err, &verr):
		s.logger.Debug("request rejected", fields...)
	default:
		s.logger.Warn("encoding failed", fields...)
	}
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
