package notification

import "context"

type Service interface {
	// Send stores an admin message and pushes it to connected addressees.
	Send(ctx context.Context, req SendRequest) (NotificationResponse, error)
	// ListAll returns every notification, for admins.
	ListAll(ctx context.Context) ([]NotificationResponse, error)
	// ListMine returns broadcasts and messages addressed to userID.
	ListMine(ctx context.Context, userID string) ([]NotificationResponse, error)
	// Reply appends to a thread the caller can see and returns the thread.
	Reply(ctx context.Context, req ReplyRequest) (NotificationResponse, error)

	// Subscribe streams events for userID until ctx ends or cleanup runs.
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())
}
