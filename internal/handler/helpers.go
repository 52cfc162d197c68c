package handler

import (
	"errors"
	"net/http"

	"auditcore/internal/domain"
	"auditcore/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Typed lifecycle
// failures carry extras so the console can resynchronize without a second
// round trip.
func handleError(w http.ResponseWriter, err error) {
	var stepErr *domain.StepMismatchError
	var stateErr *domain.InvalidStateError
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &stepErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, stepErr.Error(), map[string]interface{}{
			"current_step":   stepErr.Current,
			"submitted_step": stepErr.Submitted,
		})
	case errors.As(err, &stateErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, stateErr.Error(), map[string]interface{}{
			"workflow_status": stateErr.Status,
		})
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
