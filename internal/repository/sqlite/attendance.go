package sqlite

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"gorm.io/gorm"
)

type sessionRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) attendance.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

func (r *sessionRepositoryImpl) Open(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	m := newSessionModel(s)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&sessionModel{}).
			Where("user_id = ? AND date = ? AND kind = ? AND logout_at IS NULL", m.UserID, m.Date, m.Kind).
			Count(&open).Error; err != nil {
			return fmt.Errorf("count open sessions: %w", err)
		}
		if open > 0 {
			return attendance.ErrAlreadyOpen
		}

		var existing int64
		if err := tx.Model(&sessionModel{}).
			Where("user_id = ? AND date = ?", m.UserID, m.Date).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("count sessions: %w", err)
		}
		m.Ordinal = int(existing) + 1

		if err := tx.Create(&m).Error; err != nil {
			if isDuplicate(err) {
				return attendance.ErrAlreadyOpen
			}
			return fmt.Errorf("insert session: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.Session{}, err
	}
	return m.toDomain()
}

func (r *sessionRepositoryImpl) FindOpen(ctx context.Context, q attendance.OpenQuery) (attendance.Session, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND logout_at IS NULL AND date BETWEEN ? AND ?", q.UserID, q.From.String(), q.To.String())
	if q.Kind != nil {
		query = query.Where("kind = ?", string(*q.Kind))
	}

	var m sessionModel
	if err := query.Order("date ASC").Order("ordinal ASC").First(&m).Error; err != nil {
		if isNotFound(err) {
			return attendance.Session{}, attendance.ErrNoOpenSession
		}
		return attendance.Session{}, fmt.Errorf("find open session: %w", err)
	}
	return m.toDomain()
}

func (r *sessionRepositoryImpl) Close(ctx context.Context, id string, c attendance.Closure) (attendance.Session, error) {
	updates := map[string]any{
		"logout_at":      c.LogoutAt.UTC(),
		"duration_hours": c.DurationHours,
		"updated_at":     c.LogoutAt.UTC(),
	}
	if c.LogoutCoordinate != nil {
		updates["logout_lat"] = c.LogoutCoordinate.Latitude
		updates["logout_lng"] = c.LogoutCoordinate.Longitude
	}

	res := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("id = ? AND logout_at IS NULL", id).
		Updates(updates)
	if res.Error != nil {
		return attendance.Session{}, fmt.Errorf("close session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return attendance.Session{}, attendance.ErrNoOpenSession
	}

	var m sessionModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return attendance.Session{}, fmt.Errorf("reload session: %w", err)
	}
	return m.toDomain()
}

func (r *sessionRepositoryImpl) ListByUser(ctx context.Context, userID string, q attendance.RangeQuery) ([]attendance.Session, error) {
	var models []sessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, q.From.String(), q.To.String()).
		Order("date ASC").Order("ordinal ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions by user: %w", err)
	}
	return toSessions(models)
}

func (r *sessionRepositoryImpl) List(ctx context.Context, q attendance.RangeQuery) ([]attendance.Session, error) {
	query := r.db.WithContext(ctx).
		Joins("User").
		Where("attendance_sessions.date BETWEEN ? AND ?", q.From.String(), q.To.String())
	if len(q.UserIDs) > 0 {
		query = query.Where("attendance_sessions.user_id IN ?", q.UserIDs)
	}

	var models []sessionModel
	err := query.
		Order("attendance_sessions.date ASC").
		Order(`"User"."username" ASC`).
		Order("attendance_sessions.ordinal ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return toSessions(models)
}

func toSessions(models []sessionModel) ([]attendance.Session, error) {
	sessions := make([]attendance.Session, 0, len(models))
	for _, m := range models {
		s, err := m.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode session %s: %w", m.ID, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
