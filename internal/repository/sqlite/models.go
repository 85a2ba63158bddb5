package sqlite

import (
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/geo"
	"github.com/golang-sql/civil"
)

type userModel struct {
	ID           string  `gorm:"primaryKey"`
	Username     string  `gorm:"uniqueIndex;not null"`
	Email        string  `gorm:"not null"`
	PasswordHash string  `gorm:"not null"`
	Role         string  `gorm:"not null"`
	WorkHours    float64 `gorm:"not null;default:8"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toDomain() user.User {
	return user.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         user.Role(m.Role),
		WorkHours:    m.WorkHours,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// Dates are stored as YYYY-MM-DD text so range filters compare correctly.
type sessionModel struct {
	ID              string    `gorm:"primaryKey"`
	UserID          string    `gorm:"not null;uniqueIndex:uq_attendance_sessions_ordinal,priority:1"`
	Date            string    `gorm:"not null;uniqueIndex:uq_attendance_sessions_ordinal,priority:2;index"`
	Kind            string    `gorm:"not null"`
	Ordinal         int       `gorm:"not null;uniqueIndex:uq_attendance_sessions_ordinal,priority:3"`
	LoginAt         time.Time `gorm:"not null"`
	LoginLat        float64   `gorm:"not null"`
	LoginLng        float64   `gorm:"not null"`
	UserTargetHours float64   `gorm:"not null"`
	TargetHours     float64   `gorm:"not null"`
	LogoutAt        *time.Time
	LogoutLat       *float64
	LogoutLng       *float64
	DurationHours   *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time

	User *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (sessionModel) TableName() string {
	return "attendance_sessions"
}

func newSessionModel(s attendance.Session) sessionModel {
	return sessionModel{
		ID:              s.ID,
		UserID:          s.UserID,
		Date:            s.Date.String(),
		Kind:            string(s.Kind),
		Ordinal:         s.Ordinal,
		LoginAt:         s.LoginAt.UTC(),
		LoginLat:        s.LoginCoordinate.Latitude,
		LoginLng:        s.LoginCoordinate.Longitude,
		UserTargetHours: s.UserTargetHours,
		TargetHours:     s.TargetHours,
	}
}

func (m sessionModel) toDomain() (attendance.Session, error) {
	date, err := civil.ParseDate(m.Date)
	if err != nil {
		return attendance.Session{}, err
	}
	s := attendance.Session{
		ID:              m.ID,
		UserID:          m.UserID,
		Date:            date,
		Kind:            attendance.Kind(m.Kind),
		Ordinal:         m.Ordinal,
		LoginAt:         m.LoginAt.UTC(),
		LoginCoordinate: geo.Point{Latitude: m.LoginLat, Longitude: m.LoginLng},
		UserTargetHours: m.UserTargetHours,
		TargetHours:     m.TargetHours,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.LogoutAt != nil && m.DurationHours != nil {
		c := &attendance.Closure{LogoutAt: m.LogoutAt.UTC(), DurationHours: *m.DurationHours}
		if m.LogoutLat != nil && m.LogoutLng != nil {
			c.LogoutCoordinate = &geo.Point{Latitude: *m.LogoutLat, Longitude: *m.LogoutLng}
		}
		s.Closure = c
	}
	if m.User != nil {
		username := m.User.Username
		s.Username = &username
	}
	return s, nil
}

type leaveModel struct {
	ID            string `gorm:"primaryKey"`
	UserID        string `gorm:"not null;index:idx_leave_applications_user_date,priority:1"`
	Date          string `gorm:"not null;index:idx_leave_applications_user_date,priority:2"`
	Type          string `gorm:"not null"`
	Reason        *string
	Status        string `gorm:"not null;default:pending;index"`
	AdminComments *string
	Notified      bool `gorm:"not null;default:false"`
	DecidedBy     *string
	DecidedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (leaveModel) TableName() string {
	return "leave_applications"
}

func (m leaveModel) toDomain() (leave.Application, error) {
	date, err := civil.ParseDate(m.Date)
	if err != nil {
		return leave.Application{}, err
	}
	a := leave.Application{
		ID:            m.ID,
		UserID:        m.UserID,
		Date:          date,
		Type:          m.Type,
		Reason:        m.Reason,
		Status:        leave.Status(m.Status),
		AdminComments: m.AdminComments,
		Notified:      m.Notified,
		DecidedBy:     m.DecidedBy,
		DecidedAt:     m.DecidedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.User != nil {
		username, email := m.User.Username, m.User.Email
		a.Username, a.Email = &username, &email
	}
	return a, nil
}

type notificationModel struct {
	ID          string    `gorm:"primaryKey"`
	SenderID    string    `gorm:"not null"`
	RecipientID *string   `gorm:"index"`
	Message     string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`

	Sender    *userModel   `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Recipient *userModel   `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Replies   []replyModel `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE"`
}

func (notificationModel) TableName() string {
	return "notifications"
}

func (m notificationModel) toDomain() notification.Notification {
	n := notification.Notification{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Message:     m.Message,
		CreatedAt:   m.CreatedAt,
		Replies:     make([]notification.Reply, 0, len(m.Replies)),
	}
	if m.Sender != nil {
		username := m.Sender.Username
		n.SenderUsername = &username
	}
	if m.Recipient != nil {
		username := m.Recipient.Username
		n.RecipientUsername = &username
	}
	for _, r := range m.Replies {
		n.Replies = append(n.Replies, r.toDomain())
	}
	return n
}

type replyModel struct {
	ID             string    `gorm:"primaryKey"`
	NotificationID string    `gorm:"not null;index"`
	UserID         string    `gorm:"not null"`
	Text           string    `gorm:"not null"`
	CreatedAt      time.Time

	User *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (replyModel) TableName() string {
	return "notification_replies"
}

func (m replyModel) toDomain() notification.Reply {
	r := notification.Reply{
		ID:             m.ID,
		NotificationID: m.NotificationID,
		UserID:         m.UserID,
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
	}
	if m.User != nil {
		username := m.User.Username
		r.Username = &username
	}
	return r
}
