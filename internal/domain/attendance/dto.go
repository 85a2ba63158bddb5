package attendance

import (
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/pkg/validator"
)

// ========================================
// REQUEST DTOs
// ========================================

type GeofenceRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type OpenSessionRequest struct {
	UserID    string   `json:"-"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Kind      Kind     `json:"kind"`
}

// Validate checks everything except the coordinate, which the engine reports
// with its own error so callers can tell "missing" from "outside".
func (r *OpenSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if r.Kind == "" {
		r.Kind = KindNormal
	}
	if !r.Kind.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of: normal, shift1, shift2",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CloseSessionRequest struct {
	UserID    string   `json:"-"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Kind      *Kind    `json:"kind,omitempty"`
	Force     bool     `json:"force"`
}

func (r *CloseSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if r.Kind != nil && *r.Kind == "" {
		r.Kind = nil
	}
	if r.Kind != nil && !r.Kind.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of: normal, shift1, shift2",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodRequest struct {
	UserID    string `json:"-"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if r.StartDate != "" {
		if _, valid := validator.IsValidDate(r.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.EndDate != "" {
		if _, valid := validator.IsValidDate(r.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListSessionsRequest struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	UserID    *string `json:"user_id,omitempty"`
}

func (r *ListSessionsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.StartDate != "" {
		if _, valid := validator.IsValidDate(r.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.EndDate != "" {
		if _, valid := validator.IsValidDate(r.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.UserID != nil && !validator.IsValidUUID(*r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

const timeLayout = "2006-01-02 15:04:05"

type OfficeResponse struct {
	Name      string  `json:"office_name"`
	Latitude  float64 `json:"office_lat"`
	Longitude float64 `json:"office_lng"`
	RadiusKm  float64 `json:"allowed_radius_km"`
	RadiusM   float64 `json:"allowed_radius_m"`
}

type SessionResponse struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	Username        *string  `json:"username,omitempty"`
	Date            string   `json:"date"`
	Kind            Kind     `json:"kind"`
	Ordinal         int      `json:"ordinal"`
	State           State    `json:"state"`
	LoginTime       string   `json:"login_time"`
	LoginLatitude   float64  `json:"login_latitude"`
	LoginLongitude  float64  `json:"login_longitude"`
	LogoutTime      *string  `json:"logout_time,omitempty"`
	LogoutLatitude  *float64 `json:"logout_latitude,omitempty"`
	LogoutLongitude *float64 `json:"logout_longitude,omitempty"`
	DurationHours   *float64 `json:"duration_hours,omitempty"`
	TargetHours     float64  `json:"target_hours"`
	UserTargetHours float64  `json:"user_target_hours"`
}

// NewSessionResponse formats s for display in loc. Stored instants are
// never altered.
func NewSessionResponse(s Session, loc *time.Location) SessionResponse {
	resp := SessionResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		Username:        s.Username,
		Date:            s.Date.String(),
		Kind:            s.Kind,
		Ordinal:         s.Ordinal,
		State:           s.State(),
		LoginTime:       s.LoginAt.In(loc).Format(timeLayout),
		LoginLatitude:   s.LoginCoordinate.Latitude,
		LoginLongitude:  s.LoginCoordinate.Longitude,
		TargetHours:     s.TargetHours,
		UserTargetHours: s.UserTargetHours,
	}
	if c := s.Closure; c != nil {
		logout := c.LogoutAt.In(loc).Format(timeLayout)
		duration := c.DurationHours
		resp.LogoutTime = &logout
		resp.DurationHours = &duration
		if c.LogoutCoordinate != nil {
			lat, lng := c.LogoutCoordinate.Latitude, c.LogoutCoordinate.Longitude
			resp.LogoutLatitude = &lat
			resp.LogoutLongitude = &lng
		}
	}
	return resp
}

// CloseOutcome distinguishes an applied close from the confirmation step.
type CloseOutcome string

const (
	CloseOutcomeClosed       CloseOutcome = "closed"
	CloseOutcomeBelowMinimum CloseOutcome = "below_minimum"
)

type CloseSessionResponse struct {
	Outcome              CloseOutcome     `json:"outcome"`
	RequiresConfirmation bool             `json:"requires_confirmation"`
	DurationHours        float64          `json:"duration_hours"`
	MinimumHours         float64          `json:"minimum_hours,omitempty"`
	Session              *SessionResponse `json:"session,omitempty"`
}

type DayTotalsResponse struct {
	Date       string              `json:"date"`
	TotalHours float64             `json:"total_hours"`
	Kinds      map[Kind]KindTotals `json:"kinds"`
}

func NewDayTotalsResponse(t DayTotals) DayTotalsResponse {
	return DayTotalsResponse{
		Date:       t.Date.String(),
		TotalHours: t.TotalHours,
		Kinds:      t.Kinds,
	}
}

type TodayResponse struct {
	DayTotalsResponse
	Sessions    []SessionResponse `json:"sessions"`
	OpenSession *SessionResponse  `json:"open_session,omitempty"`
}

type ShortfallResponse struct {
	SessionID      string  `json:"session_id"`
	Date           string  `json:"date"`
	Kind           Kind    `json:"kind"`
	Ordinal        int     `json:"ordinal"`
	TargetHours    float64 `json:"target_hours"`
	ActualHours    float64 `json:"actual_hours"`
	ShortfallHours float64 `json:"shortfall_hours"`
}

type PeriodStatisticsResponse struct {
	StartDate                string                    `json:"start_date"`
	EndDate                  string                    `json:"end_date"`
	TotalHours               float64                   `json:"total_hours"`
	ActiveDays               int                       `json:"active_days"`
	AverageHoursPerActiveDay float64                   `json:"average_hours_per_active_day"`
	OpenSessions             int                       `json:"open_sessions"`
	Kinds                    map[Kind]KindPeriodTotals `json:"kinds"`
	Shortfalls               []ShortfallResponse       `json:"shortfalls"`
}

func NewPeriodStatisticsResponse(p PeriodStatistics) PeriodStatisticsResponse {
	shortfalls := make([]ShortfallResponse, 0, len(p.Shortfalls))
	for _, s := range p.Shortfalls {
		shortfalls = append(shortfalls, ShortfallResponse{
			SessionID:      s.SessionID,
			Date:           s.Date.String(),
			Kind:           s.Kind,
			Ordinal:        s.Ordinal,
			TargetHours:    s.TargetHours,
			ActualHours:    s.ActualHours,
			ShortfallHours: s.ShortfallHours,
		})
	}
	return PeriodStatisticsResponse{
		StartDate:                p.From.String(),
		EndDate:                  p.To.String(),
		TotalHours:               p.TotalHours,
		ActiveDays:               p.ActiveDays,
		AverageHoursPerActiveDay: p.AverageHoursPerActiveDay,
		OpenSessions:             p.OpenSessions,
		Kinds:                    p.Kinds,
		Shortfalls:               shortfalls,
	}
}
