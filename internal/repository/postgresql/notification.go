package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type notificationRepositoryImpl struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepositoryImpl{db: db}
}

const notificationSelect = `
	SELECT n.id, n.sender_id, n.recipient_id, n.message, n.created_at, s.username, r.username
	FROM notifications n
	JOIN users s ON s.id = n.sender_id
	LEFT JOIN users r ON r.id = n.recipient_id`

func scanNotification(row pgx.Row) (notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(
		&n.ID,
		&n.SenderID,
		&n.RecipientID,
		&n.Message,
		&n.CreatedAt,
		&n.SenderUsername,
		&n.RecipientUsername,
	)
	n.Replies = []notification.Reply{}
	return n, err
}

// Create implements notification.Repository.
func (r *notificationRepositoryImpl) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO notifications (id, sender_id, recipient_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.SenderID, n.RecipientID, n.Message, n.CreatedAt,
	)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return r.GetByID(ctx, n.ID)
}

// GetByID implements notification.Repository.
func (r *notificationRepositoryImpl) GetByID(ctx context.Context, id string) (notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	n, err := scanNotification(q.QueryRow(ctx, notificationSelect+` WHERE n.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification.Notification{}, notification.ErrNotificationNotFound
		}
		return notification.Notification{}, fmt.Errorf("get notification: %w", err)
	}

	threads := []*notification.Notification{&n}
	if err := r.loadReplies(ctx, threads); err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

// List implements notification.Repository.
func (r *notificationRepositoryImpl) List(ctx context.Context, filter notification.Filter) ([]notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, notificationSelect+`
		WHERE ($1::uuid IS NULL OR n.recipient_id IS NULL OR n.recipient_id = $1)
		ORDER BY n.created_at DESC, n.id DESC`,
		filter.RecipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	threads := make([]*notification.Notification, len(out))
	for i := range out {
		threads[i] = &out[i]
	}
	if err := r.loadReplies(ctx, threads); err != nil {
		return nil, err
	}
	return out, nil
}

// loadReplies fills Replies for every thread with one query.
func (r *notificationRepositoryImpl) loadReplies(ctx context.Context, threads []*notification.Notification) error {
	if len(threads) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	byID := make(map[string]*notification.Notification, len(threads))
	ids := make([]string, 0, len(threads))
	for _, n := range threads {
		byID[n.ID] = n
		ids = append(ids, n.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT p.id, p.notification_id, p.user_id, p.text, p.created_at, u.username
		FROM notification_replies p
		JOIN users u ON u.id = p.user_id
		WHERE p.notification_id = ANY($1)
		ORDER BY p.created_at ASC, p.id ASC`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reply notification.Reply
		if err := rows.Scan(&reply.ID, &reply.NotificationID, &reply.UserID, &reply.Text, &reply.CreatedAt, &reply.Username); err != nil {
			return fmt.Errorf("scan reply: %w", err)
		}
		if n, ok := byID[reply.NotificationID]; ok {
			n.Replies = append(n.Replies, reply)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate replies: %w", err)
	}
	return nil
}

// AddReply implements notification.Repository.
func (r *notificationRepositoryImpl) AddReply(ctx context.Context, reply notification.Reply) (notification.Reply, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO notification_replies (id, notification_id, user_id, text, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING user_id
		)
		SELECT u.username FROM inserted JOIN users u ON u.id = inserted.user_id`,
		reply.ID, reply.NotificationID, reply.UserID, reply.Text, reply.CreatedAt,
	).Scan(&reply.Username)
	if err != nil {
		if isForeignKeyViolation(err) {
			return notification.Reply{}, notification.ErrNotificationNotFound
		}
		return notification.Reply{}, fmt.Errorf("insert reply: %w", err)
	}
	return reply, nil
}
