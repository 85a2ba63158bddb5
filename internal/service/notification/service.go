package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/sse"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type NotificationServiceImpl struct {
	notification.Repository
	user.UserRepository
	hub    *sse.Hub
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewNotificationService(
	notifRepo notification.Repository,
	userRepo user.UserRepository,
	hub *sse.Hub,
	clock clockwork.Clock,
	logger *slog.Logger,
) notification.Service {
	return &NotificationServiceImpl{
		Repository:     notifRepo,
		UserRepository: userRepo,
		hub:            hub,
		clock:          clock,
		logger:         logger,
	}
}

// Send implements notification.Service.
func (s *NotificationServiceImpl) Send(ctx context.Context, req notification.SendRequest) (notification.NotificationResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.NotificationResponse{}, err
	}

	n := notification.Notification{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SenderID:  req.SenderID,
		Message:   req.Message,
		CreatedAt: s.clock.Now().UTC(),
	}
	if req.To != notification.RecipientAll {
		recipient, err := s.UserRepository.GetByID(ctx, req.To)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return notification.NotificationResponse{}, notification.ErrRecipientNotFound
			}
			return notification.NotificationResponse{}, fmt.Errorf("failed to get recipient: %w", err)
		}
		n.RecipientID = &recipient.ID
	}

	created, err := s.Repository.Create(ctx, n)
	if err != nil {
		return notification.NotificationResponse{}, fmt.Errorf("failed to create notification: %w", err)
	}

	resp := notification.NewNotificationResponse(created)
	event := sse.Event{Event: notification.EventCreated, Data: resp}
	if created.RecipientID == nil {
		s.hub.Broadcast(event)
	} else {
		s.hub.Publish(*created.RecipientID, event)
	}

	s.logger.Info("notification sent",
		"notification_id", created.ID,
		"sender_id", created.SenderID,
		"to", resp.To,
		"connected", s.hub.TotalSubscribers(),
	)
	return resp, nil
}

// ListAll implements notification.Service.
func (s *NotificationServiceImpl) ListAll(ctx context.Context) ([]notification.NotificationResponse, error) {
	return s.list(ctx, notification.Filter{})
}

// ListMine implements notification.Service.
func (s *NotificationServiceImpl) ListMine(ctx context.Context, userID string) ([]notification.NotificationResponse, error) {
	return s.list(ctx, notification.Filter{RecipientID: &userID})
}

func (s *NotificationServiceImpl) list(ctx context.Context, filter notification.Filter) ([]notification.NotificationResponse, error) {
	items, err := s.Repository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	out := make([]notification.NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, notification.NewNotificationResponse(n))
	}
	return out, nil
}

// Reply implements notification.Service. A thread the caller cannot see is
// reported as not found.
func (s *NotificationServiceImpl) Reply(ctx context.Context, req notification.ReplyRequest) (notification.NotificationResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.NotificationResponse{}, err
	}

	n, err := s.Repository.GetByID(ctx, req.NotificationID)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return notification.NotificationResponse{}, err
		}
		return notification.NotificationResponse{}, fmt.Errorf("failed to get notification: %w", err)
	}
	if !req.IsAdmin && !n.VisibleTo(req.UserID) {
		return notification.NotificationResponse{}, notification.ErrNotificationNotFound
	}

	reply, err := s.Repository.AddReply(ctx, notification.Reply{
		ID:             uuid.Must(uuid.NewV7()).String(),
		NotificationID: n.ID,
		UserID:         req.UserID,
		Text:           req.Text,
		CreatedAt:      s.clock.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return notification.NotificationResponse{}, err
		}
		return notification.NotificationResponse{}, fmt.Errorf("failed to add reply: %w", err)
	}

	thread, err := s.Repository.GetByID(ctx, n.ID)
	if err != nil {
		return notification.NotificationResponse{}, fmt.Errorf("failed to reload notification: %w", err)
	}
	resp := notification.NewNotificationResponse(thread)

	// The sender and a direct recipient follow the thread; the replier
	// already has the response.
	var followers []string
	for _, id := range []string{thread.SenderID, resp.To} {
		if id != notification.RecipientAll && id != req.UserID {
			followers = append(followers, id)
		}
	}
	s.hub.PublishToMany(followers, sse.Event{Event: notification.EventReplied, Data: resp})

	s.logger.Info("notification replied",
		"notification_id", thread.ID,
		"reply_id", reply.ID,
		"user_id", req.UserID,
	)
	return resp, nil
}

// Subscribe implements notification.Service.
func (s *NotificationServiceImpl) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}
