package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, errorResponse{Error: msg})
}

// writeFailure reports err using msg for upstream failures and the error text
// for client mistakes and missing configuration.
func writeFailure(w http.ResponseWriter, logger *slog.Logger, err error, msg string) {
	status := statusFor(err)
	switch {
	case status == http.StatusBadRequest:
		writeError(w, status, err.Error())
	case errors.Is(err, domain.ErrMissingConfiguration):
		writeError(w, status, err.Error())
	default:
		logger.Error(msg, "error", err)
		sharedobs.WriteJSON(w, status, errorResponse{Error: msg, Details: err.Error()})
	}
}
