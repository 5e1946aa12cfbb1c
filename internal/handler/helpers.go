package handler

import (
	"errors"
	"net/http"

	"folio/internal/domain"
	"folio/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	// Typed errors carry their own status
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		status := httpErr.StatusCode()
		if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
			httputil.RespondError(w, status, "internal server error")
			return
		}
		if extras := conflictDetails(err); extras != nil {
			httputil.RespondErrorWithExtras(w, status, err.Error(), extras)
			return
		}
		httputil.RespondError(w, status, err.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrVersionConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrSlugExhausted):
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// conflictDetails exposes what a client needs to refetch and retry after a conflict
func conflictDetails(err error) map[string]interface{} {
	var versionErr *domain.VersionConflictError
	if errors.As(err, &versionErr) {
		return map[string]interface{}{
			"resource_id":      versionErr.ResourceID,
			"expected_version": versionErr.ExpectedVersion,
		}
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		return map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		}
	}
	return nil
}

// requireUser returns the authenticated user ID, writing a 401 when absent
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}
