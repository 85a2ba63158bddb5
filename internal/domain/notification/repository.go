package notification

import "context"

type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	// GetByID returns the notification with its replies, oldest first.
	GetByID(ctx context.Context, id string) (Notification, error)
	// List returns matching notifications newest first, each with replies.
	List(ctx context.Context, filter Filter) ([]Notification, error)
	// AddReply yields ErrNotificationNotFound when the thread is gone.
	AddReply(ctx context.Context, r Reply) (Reply, error)
}
