package api

import (
	"errors"
	"net/http"

	"FxPulse/internal/domain/models"
	xhttp "FxPulse/pkg/http"
)

// toAppError maps domain errors onto HTTP errors. Unknown errors pass through
// and render as 500.
func toAppError(err error) error {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		return xhttp.NotFoundError("not found").WithError(err)
	case errors.Is(err, models.ErrDuplicate):
		return xhttp.ConflictError("already exists").WithError(err)
	case errors.Is(err, models.ErrNotificationsDisabled):
		return xhttp.NewAppError("ERR_NOT_CONFIGURED", "", err.Error(), http.StatusBadRequest)
	}

	var rej *models.RejectionError
	if errors.As(err, &rej) {
		switch rej.Kind {
		case models.RejectBusy:
			return xhttp.NewAppError(string(rej.Kind), "", rej.Message, http.StatusConflict)
		case models.RejectProvider:
			return xhttp.NewAppError(string(rej.Kind), "", rej.Message, http.StatusInternalServerError).WithError(rej)
		default:
			return xhttp.NewAppError(string(rej.Kind), "", rej.Error(), http.StatusBadRequest)
		}
	}
	return err
}
