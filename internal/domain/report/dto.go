package report

import (
	"fmt"

	"github.com/cmlabs-hris/intern-attendance/internal/pkg/validator"
)

// ========================================
// ATTENDANCE EXPORT
// ========================================

type AttendanceExportRequest struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	UserID    *string `json:"user_id,omitempty"`
}

func (r *AttendanceExportRequest) Validate() error {
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

// AttendanceExport is a rendered CSV document.
type AttendanceExport struct {
	Filename string
	Rows     int
	Content  []byte
}

func ExportFilename(start, end string) string {
	return fmt.Sprintf("attendance_%s_%s.csv", start, end)
}

// ========================================
// CALENDAR
// ========================================

type CalendarRequest struct {
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	UserIDs   []string `json:"user_ids,omitempty"`
}

func (r *CalendarRequest) Validate() error {
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
	for _, id := range r.UserIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "user_id",
				Message: fmt.Sprintf("user_id %q must be a valid UUID", id),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CalendarSession struct {
	Kind    string   `json:"kind"`
	Ordinal int      `json:"ordinal"`
	Login   string   `json:"login"`
	Logout  *string  `json:"logout,omitempty"`
	Hours   *float64 `json:"hours,omitempty"`
}

type CalendarLeave struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

// CalendarDay is one user's date cell. Hours counts closed sessions only.
type CalendarDay struct {
	Date     string            `json:"date"`
	Hours    float64           `json:"hours"`
	Sessions []CalendarSession `json:"sessions"`
	Leave    *CalendarLeave    `json:"leave,omitempty"`
}

type CalendarUser struct {
	UserID   string        `json:"user_id"`
	Username string        `json:"username"`
	Days     []CalendarDay `json:"days"`
}

type Calendar struct {
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Users     []CalendarUser `json:"users"`
}
