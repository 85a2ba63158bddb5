package leave

import (
	"context"

	"github.com/golang-sql/civil"
)

type ApplicationRepository interface {
	// Apply inserts app as pending in one transaction: a blocking application
	// for the same user and date yields ErrLeaveAlreadyExists, a denied one is
	// replaced.
	Apply(ctx context.Context, app Application) (Application, error)
	GetByID(ctx context.Context, id string) (Application, error)
	GetByUserAndDate(ctx context.Context, userID string, date civil.Date) (Application, error)
	List(ctx context.Context, filter Filter) ([]Application, error)
	// Decide moves a pending application to d.Status. Anything not pending
	// yields ErrLeaveAlreadyProcessed.
	Decide(ctx context.Context, d Decision) (Application, error)
	// ListUnnotified returns decided applications whose applicant has not
	// been reached yet, oldest decision first.
	ListUnnotified(ctx context.Context, limit int) ([]Application, error)
	MarkNotified(ctx context.Context, id string) error
	// DeleteDenied removes the application only while it is denied.
	DeleteDenied(ctx context.Context, id string) error
}
