package http

import (
	"errors"
	"fmt"
	"net/http"

	"lifeadmin/internal/cloud"
	"lifeadmin/internal/groceries"
	"lifeadmin/internal/log"
	"lifeadmin/internal/services"
	"lifeadmin/internal/store"
	"lifeadmin/internal/vault"
)

// syncError marks a failure reported by the cloud remote.
type syncError struct{ err error }

func (e *syncError) Error() string { return fmt.Sprintf("sync failed: %v", e.err) }
func (e *syncError) Unwrap() error { return e.err }

// statusFor maps an action error to an HTTP status and a client message.
// Unknown errors hide their text.
func statusFor(err error) (int, string) {
	var se *syncError
	switch {
	case errors.Is(err, services.ErrUnknownTemplate):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, cloud.ErrDisabled), errors.Is(err, cloud.ErrNoUser):
		return http.StatusConflict, err.Error()
	case errors.As(err, &se):
		return http.StatusBadGateway, err.Error()
	case services.IsValidation(err),
		errors.Is(err, groceries.ErrEmptyName),
		errors.Is(err, groceries.ErrDuplicate),
		errors.Is(err, groceries.ErrNegativeBudget),
		errors.Is(err, vault.ErrDecrypt),
		errors.Is(err, vault.ErrEmptyPass):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, groceries.ErrNotFound),
		errors.Is(err, store.ErrBackupNotFound),
		errors.Is(err, store.ErrNoBackups):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, errBadJSON),
		errors.Is(err, store.ErrUnparsable),
		errors.Is(err, store.ErrBadShape),
		errors.Is(err, vault.ErrFormat),
		errors.Is(err, vault.ErrUnsupportedVer):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	logger := log.FromContext(r.Context())
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldPath, r.URL.Path,
			log.FieldStatus, status)
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldReason, msg,
			log.FieldStatus, status)
	}
	ErrorResponse(status, msg).Write(w)
}
