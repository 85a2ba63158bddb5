package sqlite

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/notification"
	"gorm.io/gorm"
)

type notificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &notificationRepositoryImpl{db: db}
}

// withThread loads sender, recipient and replies oldest first.
func withThread(db *gorm.DB) *gorm.DB {
	return db.
		Joins("Sender").
		Joins("Recipient").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("notification_replies.created_at ASC").Order("notification_replies.id ASC")
		}).
		Preload("Replies.User")
}

func (r *notificationRepositoryImpl) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	m := notificationModel{
		ID:          n.ID,
		SenderID:    n.SenderID,
		RecipientID: n.RecipientID,
		Message:     n.Message,
		CreatedAt:   n.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return notification.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return r.GetByID(ctx, m.ID)
}

func (r *notificationRepositoryImpl) GetByID(ctx context.Context, id string) (notification.Notification, error) {
	var m notificationModel
	if err := withThread(r.db.WithContext(ctx)).First(&m, "notifications.id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return notification.Notification{}, notification.ErrNotificationNotFound
		}
		return notification.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return m.toDomain(), nil
}

func (r *notificationRepositoryImpl) List(ctx context.Context, filter notification.Filter) ([]notification.Notification, error) {
	q := withThread(r.db.WithContext(ctx))
	if filter.RecipientID != nil {
		q = q.Where("notifications.recipient_id IS NULL OR notifications.recipient_id = ?", *filter.RecipientID)
	}

	var models []notificationModel
	if err := q.Order("notifications.created_at DESC").Order("notifications.id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]notification.Notification, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *notificationRepositoryImpl) AddReply(ctx context.Context, reply notification.Reply) (notification.Reply, error) {
	m := replyModel{
		ID:             reply.ID,
		NotificationID: reply.NotificationID,
		UserID:         reply.UserID,
		Text:           reply.Text,
		CreatedAt:      reply.CreatedAt,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&notificationModel{}).Where("id = ?", m.NotificationID).Count(&exists).Error; err != nil {
			return fmt.Errorf("find notification: %w", err)
		}
		if exists == 0 {
			return notification.ErrNotificationNotFound
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("insert reply: %w", err)
		}
		return tx.Preload("User").First(&m, "id = ?", m.ID).Error
	})
	if err != nil {
		return notification.Reply{}, err
	}
	return m.toDomain(), nil
}
