package notification

import (
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/pkg/validator"
)

const (
	maxMessageLength = 1000

	EventCreated = "notification.created"
	EventReplied = "notification.replied"
)

// ========================================
// REQUEST DTOs
// ========================================

type SendRequest struct {
	SenderID string `json:"-"`
	// To is a user ID or RecipientAll.
	To      string `json:"to"`
	Message string `json:"message"`
}

func (r *SendRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.To) {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to is required",
		})
	} else if r.To != RecipientAll && !validator.IsValidUUID(r.To) {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: `to must be "all" or a valid user ID`,
		})
	}

	if validator.IsEmpty(r.Message) {
		errs = append(errs, validator.ValidationError{
			Field:   "message",
			Message: "message is required",
		})
	} else if len(r.Message) > maxMessageLength {
		errs = append(errs, validator.ValidationError{
			Field:   "message",
			Message: "message must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReplyRequest struct {
	NotificationID string `json:"-"`
	UserID         string `json:"-"`
	IsAdmin        bool   `json:"-"`
	Text           string `json:"text"`
}

func (r *ReplyRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.NotificationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}
	if validator.IsEmpty(r.Text) {
		errs = append(errs, validator.ValidationError{
			Field:   "text",
			Message: "text is required",
		})
	} else if len(r.Text) > maxMessageLength {
		errs = append(errs, validator.ValidationError{
			Field:   "text",
			Message: "text must not exceed 1000 characters",
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

type ReplyResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationResponse struct {
	ID             string `json:"id"`
	SenderID       string `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	// To is a user ID or RecipientAll.
	To                string          `json:"to"`
	RecipientUsername *string         `json:"recipient_username,omitempty"`
	Message           string          `json:"message"`
	CreatedAt         time.Time       `json:"created_at"`
	Replies           []ReplyResponse `json:"replies"`
}

func NewNotificationResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:                n.ID,
		SenderID:          n.SenderID,
		To:                RecipientAll,
		RecipientUsername: n.RecipientUsername,
		Message:           n.Message,
		CreatedAt:         n.CreatedAt,
		Replies:           make([]ReplyResponse, 0, len(n.Replies)),
	}
	if n.SenderUsername != nil {
		resp.SenderUsername = *n.SenderUsername
	}
	if n.RecipientID != nil {
		resp.To = *n.RecipientID
	}
	for _, r := range n.Replies {
		rr := ReplyResponse{
			ID:        r.ID,
			UserID:    r.UserID,
			Text:      r.Text,
			CreatedAt: r.CreatedAt,
		}
		if r.Username != nil {
			rr.Username = *r.Username
		}
		resp.Replies = append(resp.Replies, rr)
	}
	return resp
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// ========================================
// SSE EVENT
// ========================================

type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
