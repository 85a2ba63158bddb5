package attendance

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the parent of every caller-correctable input error.
var ErrInvalidInput = errors.New("invalid input")

// Attendance domain errors
var (
	// Input errors
	ErrCoordinatesRequired = fmt.Errorf("%w: coordinates required", ErrInvalidInput)
	ErrInvalidCoordinates  = fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	ErrInvalidKind         = fmt.Errorf("%w: session kind must be one of normal, shift1, shift2", ErrInvalidInput)
	ErrInvalidDate         = fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrInvalidInput)
	ErrInvalidDateRange    = fmt.Errorf("%w: start_date must not be after end_date", ErrInvalidInput)
	ErrDateRangeTooLong    = fmt.Errorf("%w: date range must not exceed 366 days", ErrInvalidInput)
	ErrInvalidTargetHours  = fmt.Errorf("%w: target work hours must be between 1 and 12", ErrInvalidInput)

	// State machine errors
	ErrAlreadyOpen     = errors.New("finish your current session first")
	ErrNoOpenSession   = errors.New("nothing to close")
	ErrKindCompleted   = errors.New("target hours for this session kind are already complete today")
	ErrOutsideGeofence = errors.New("you are outside the allowed radius")

	// General errors
	ErrSessionNotFound = errors.New("attendance session not found")
	ErrInternsOnly     = errors.New("only interns can record attendance")
)

// OutsideGeofenceError is returned when a check-in coordinate lies outside
// the office radius. It matches ErrOutsideGeofence.
type OutsideGeofenceError struct {
	DistanceKm float64
	RadiusKm   float64
}

func (e *OutsideGeofenceError) Error() string {
	return fmt.Sprintf("%s: %.4f km from office, limit %.2f km", ErrOutsideGeofence, e.DistanceKm, e.RadiusKm)
}

func (e *OutsideGeofenceError) Is(target error) bool {
	return target == ErrOutsideGeofence
}
