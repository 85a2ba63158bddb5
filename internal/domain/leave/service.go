package leave

import (
	"context"
)

type LeaveService interface {
	Apply(ctx context.Context, req ApplyRequest) (ApplicationResponse, error)
	Decide(ctx context.Context, req DecideRequest) (ApplicationResponse, error)
	Delete(ctx context.Context, userID, id string) error
	GetByDate(ctx context.Context, userID, date string) (ApplicationResponse, error)
	ListMine(ctx context.Context, req ListMineRequest) ([]ApplicationResponse, error)
	List(ctx context.Context, req ListRequest) ([]ApplicationResponse, error)
	// RetryNotifications re-sends decision notices that were not delivered
	// and reports how many went out.
	RetryNotifications(ctx context.Context) (int, error)
}
