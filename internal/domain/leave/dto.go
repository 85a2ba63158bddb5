package leave

import (
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/pkg/validator"
)

// ========================================
// REQUEST DTOs
// ========================================

type ApplyRequest struct {
	UserID string  `json:"-"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Type   string  `json:"type"`
	Reason *string `json:"reason,omitempty"`
}

func (r *ApplyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is required",
		})
	} else if len(r.Type) > 50 {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must not exceed 50 characters",
		})
	}

	if r.Reason != nil && len(*r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DecideRequest struct {
	ID       string  `json:"-"`
	AdminID  string  `json:"-"`
	Approve  bool    `json:"-"`
	Comments *string `json:"comments,omitempty"`
}

func (r *DecideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Comments != nil && len(*r.Comments) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "comments",
			Message: "comments must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListMineRequest struct {
	UserID    string `json:"-"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ListRequest struct {
	Status    *string `json:"status,omitempty"`
	UserID    *string `json:"user_id,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != nil && !Status(*r.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, denied",
		})
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

type ApplicationResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Username      *string `json:"username,omitempty"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Reason        *string `json:"reason,omitempty"`
	Status        Status  `json:"status"`
	AdminComments *string `json:"admin_comments,omitempty"`
	Notified      bool    `json:"notified"`
	DecidedBy     *string `json:"decided_by,omitempty"`
	DecidedAt     *string `json:"decided_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func NewApplicationResponse(a Application, loc *time.Location) ApplicationResponse {
	resp := ApplicationResponse{
		ID:            a.ID,
		UserID:        a.UserID,
		Username:      a.Username,
		Date:          a.Date.String(),
		Type:          a.Type,
		Reason:        a.Reason,
		Status:        a.Status,
		AdminComments: a.AdminComments,
		Notified:      a.Notified,
		DecidedBy:     a.DecidedBy,
		CreatedAt:     a.CreatedAt.In(loc).Format(time.RFC3339),
	}
	if a.DecidedAt != nil {
		decided := a.DecidedAt.In(loc).Format(time.RFC3339)
		resp.DecidedAt = &decided
	}
	return resp
}
