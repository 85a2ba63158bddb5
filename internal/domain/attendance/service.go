package attendance

import (
	"context"
)

// AttendanceService is the attendance engine as seen by the HTTP layer.
type AttendanceService interface {
	// Office returns the configured geofence.
	Office() OfficeResponse

	// CheckGeofence reports whether the coordinate is within the office radius.
	CheckGeofence(ctx context.Context, req GeofenceRequest) (Admission, error)

	// OpenSession checks in: geofence admission, then an atomic open.
	OpenSession(ctx context.Context, req OpenSessionRequest) (SessionResponse, error)

	// CloseSession checks out the earliest open session. A duration below the
	// configured minimum without Force yields CloseOutcomeBelowMinimum and
	// writes nothing.
	CloseSession(ctx context.Context, req CloseSessionRequest) (CloseSessionResponse, error)

	// DayTotals aggregates one date for a user.
	DayTotals(ctx context.Context, userID string, date string) (DayTotalsResponse, error)

	// Today aggregates the current local date and lists its sessions.
	Today(ctx context.Context, userID string) (TodayResponse, error)

	// PeriodStatistics aggregates an inclusive date range for a user.
	PeriodStatistics(ctx context.Context, req PeriodRequest) (PeriodStatisticsResponse, error)

	// History lists a user's sessions, newest first.
	History(ctx context.Context, req PeriodRequest) ([]SessionResponse, error)

	// ListSessions lists sessions of every user for administrators.
	ListSessions(ctx context.Context, req ListSessionsRequest) ([]SessionResponse, error)
}
