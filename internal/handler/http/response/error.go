package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var outside *attendance.OutsideGeofenceError
	if errors.As(err, &outside) {
		Forbidden(w, attendance.ErrOutsideGeofence.Error(), map[string]any{
			"distance_km": outside.DistanceKm,
			"radius_km":   outside.RadiusKm,
		})
		return
	}

	var holiday *leave.HolidayError
	if errors.As(err, &holiday) {
		BadRequest(w, err.Error(), map[string]any{"holiday": holiday.Name})
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, jwt.ErrInvalidClaims):
		Unauthorized(w, auth.ErrInvalidToken.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")

	// User
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUsernameExists):
		Conflict(w, err.Error())
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, err.Error(), nil)
	case errors.Is(err, user.ErrCannotDeleteSelf), errors.Is(err, user.ErrInvalidRole):
		BadRequest(w, err.Error(), nil)

	// Attendance
	case errors.Is(err, attendance.ErrInvalidInput):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyOpen),
		errors.Is(err, attendance.ErrNoOpenSession),
		errors.Is(err, attendance.ErrKindCompleted):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrInternsOnly):
		Forbidden(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrSessionNotFound):
		NotFound(w, err.Error())

	// Leave
	case errors.Is(err, leave.ErrLeaveNotFound):
		NotFound(w, "Leave application not found")
	case errors.Is(err, leave.ErrLeaveAlreadyExists),
		errors.Is(err, leave.ErrLeaveAlreadyProcessed),
		errors.Is(err, leave.ErrLeaveNotDeletable):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrLeaveOnWeekend):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrInternsOnly):
		Forbidden(w, err.Error(), nil)

	// Notification
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrRecipientNotFound):
		NotFound(w, "Recipient not found")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
