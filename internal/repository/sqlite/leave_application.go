package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/golang-sql/civil"
	"gorm.io/gorm"
)

type leaveApplicationRepositoryImpl struct {
	db *gorm.DB
}

func NewLeaveApplicationRepository(db *gorm.DB) leave.ApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

func (r *leaveApplicationRepositoryImpl) Apply(ctx context.Context, app leave.Application) (leave.Application, error) {
	m := leaveModel{
		ID:     app.ID,
		UserID: app.UserID,
		Date:   app.Date.String(),
		Type:   app.Type,
		Reason: app.Reason,
		Status: string(leave.StatusPending),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []leaveModel
		if err := tx.Where("user_id = ? AND date = ?", m.UserID, m.Date).Find(&existing).Error; err != nil {
			return fmt.Errorf("find existing leave: %w", err)
		}
		for _, e := range existing {
			if leave.Status(e.Status).Blocking() {
				return leave.ErrLeaveAlreadyExists
			}
		}
		if len(existing) > 0 {
			if err := tx.Where("user_id = ? AND date = ? AND status = ?", m.UserID, m.Date, string(leave.StatusDenied)).
				Delete(&leaveModel{}).Error; err != nil {
				return fmt.Errorf("delete denied leave: %w", err)
			}
		}

		if err := tx.Create(&m).Error; err != nil {
			if isDuplicate(err) {
				return leave.ErrLeaveAlreadyExists
			}
			return fmt.Errorf("insert leave: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.Application{}, err
	}
	return m.toDomain()
}

func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Application, error) {
	var m leaveModel
	if err := r.db.WithContext(ctx).Joins("User").First(&m, "leave_applications.id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return leave.Application{}, leave.ErrLeaveNotFound
		}
		return leave.Application{}, fmt.Errorf("get leave by id: %w", err)
	}
	return m.toDomain()
}

func (r *leaveApplicationRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, date civil.Date) (leave.Application, error) {
	var m leaveModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date.String()).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if isNotFound(err) {
			return leave.Application{}, leave.ErrLeaveNotFound
		}
		return leave.Application{}, fmt.Errorf("get leave by date: %w", err)
	}
	return m.toDomain()
}

func (r *leaveApplicationRepositoryImpl) List(ctx context.Context, filter leave.Filter) ([]leave.Application, error) {
	q := r.db.WithContext(ctx).
		Joins("User").
		Where("leave_applications.date >= ?", filter.From.String())
	if filter.To != nil {
		q = q.Where("leave_applications.date <= ?", filter.To.String())
	}
	if len(filter.UserIDs) > 0 {
		q = q.Where("leave_applications.user_id IN ?", filter.UserIDs)
	}
	if filter.Status != nil {
		q = q.Where("leave_applications.status = ?", string(*filter.Status))
	}

	var models []leaveModel
	if err := q.Order("leave_applications.date DESC").Order(`"User"."username" ASC`).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list leave: %w", err)
	}

	apps := make([]leave.Application, 0, len(models))
	for _, m := range models {
		a, err := m.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode leave %s: %w", m.ID, err)
		}
		apps = append(apps, a)
	}
	return apps, nil
}

func (r *leaveApplicationRepositoryImpl) Decide(ctx context.Context, d leave.Decision) (leave.Application, error) {
	decidedAt := d.DecidedAt.UTC()
	res := r.db.WithContext(ctx).Model(&leaveModel{}).
		Where("id = ? AND status = ?", d.ID, string(leave.StatusPending)).
		Updates(map[string]any{
			"status":         string(d.Status),
			"admin_comments": d.AdminComments,
			"decided_by":     d.DecidedBy,
			"decided_at":     decidedAt,
			"updated_at":     decidedAt,
		})
	if res.Error != nil {
		return leave.Application{}, fmt.Errorf("decide leave: %w", res.Error)
	}

	a, err := r.GetByID(ctx, d.ID)
	if err != nil {
		return leave.Application{}, err
	}
	if res.RowsAffected == 0 {
		return leave.Application{}, leave.ErrLeaveAlreadyProcessed
	}
	return a, nil
}

func (r *leaveApplicationRepositoryImpl) ListUnnotified(ctx context.Context, limit int) ([]leave.Application, error) {
	var models []leaveModel
	err := r.db.WithContext(ctx).
		Joins("User").
		Where("leave_applications.status <> ? AND leave_applications.notified = ?", string(leave.StatusPending), false).
		Order("leave_applications.decided_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list unnotified leave: %w", err)
	}

	apps := make([]leave.Application, 0, len(models))
	for _, m := range models {
		a, err := m.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode leave %s: %w", m.ID, err)
		}
		apps = append(apps, a)
	}
	return apps, nil
}

func (r *leaveApplicationRepositoryImpl) MarkNotified(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&leaveModel{}).Where("id = ?", id).
		Update("notified", true)
	if res.Error != nil {
		return fmt.Errorf("mark leave notified: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func (r *leaveApplicationRepositoryImpl) DeleteDenied(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND status = ?", id, string(leave.StatusDenied)).Delete(&leaveModel{})
	if res.Error != nil {
		return fmt.Errorf("delete leave: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		if errors.Is(err, leave.ErrLeaveNotFound) {
			return err
		}
		return fmt.Errorf("delete leave: %w", err)
	}
	return leave.ErrLeaveNotDeletable
}
