package dispatch

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-error-advice/internal/failure"
)

// StatusOf maps a failure kind to its HTTP status. Kinds outside the
// catalog fall back to 500.
func StatusOf(k failure.Kind) int {
	switch k {
	case failure.KindValidation, failure.KindConstraintViolation, failure.KindInvalidArgument:
		return http.StatusBadRequest
	case failure.KindNotFound:
		return http.StatusNotFound
	case failure.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case failure.KindTimeout:
		return http.StatusRequestTimeout
	case failure.KindConflict:
		return http.StatusConflict
	case failure.KindUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case failure.KindIllegalState:
		// Kept at 503 even though callers sometimes raise it for plain
		// precondition failures; use InvalidArgument for those.
		return http.StatusServiceUnavailable
	case failure.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// levelOf picks the log level for a status: client faults warn, timeouts
// and server faults are errors.
func levelOf(status int) zerolog.Level {
	if status == http.StatusRequestTimeout || status >= http.StatusInternalServerError {
		return zerolog.ErrorLevel
	}
	return zerolog.WarnLevel
}
