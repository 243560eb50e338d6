package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrCompanyIDRequired), errors.Is(err, auth.ErrUserIDRequired):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrManagerAccessRequired):
		Forbidden(w, err.Error())

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrPayrollPeriodLocked):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPayrollNotApproved):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPersistenceConflict):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidTransition):
		BadRequest(w, err.Error(), nil)

	// Statutory errors
	case errors.Is(err, statutory.ErrMalformedSlabs), errors.Is(err, statutory.ErrInvalidContribution):
		ValidationError(w, map[string]string{"statutory": err.Error()})

	// Notification errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
