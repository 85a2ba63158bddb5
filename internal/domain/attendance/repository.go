package attendance

import (
	"context"
)

// SessionRepository persists attendance sessions. Implementations must make
// Open and Close atomic with respect to concurrent callers on the same key.
type SessionRepository interface {
	// Open inserts s unless an open session already exists for
	// (UserID, Date, Kind), in which case it returns ErrAlreadyOpen. The
	// ordinal is assigned in the same step as count(sessions on that date)+1.
	Open(ctx context.Context, s Session) (Session, error)

	// FindOpen returns the earliest-created open session matching q, ordered
	// by date then ordinal. Returns ErrNoOpenSession when none match.
	FindOpen(ctx context.Context, q OpenQuery) (Session, error)

	// Close records c on session id only if it is still open. Returns
	// ErrNoOpenSession when the session was closed concurrently.
	Close(ctx context.Context, id string, c Closure) (Session, error)

	// ListByUser returns a user's sessions dated within [from, to], ordered by
	// date and ordinal.
	ListByUser(ctx context.Context, userID string, q RangeQuery) ([]Session, error)

	// List returns sessions of all (or the selected) users in the range,
	// with Username populated.
	List(ctx context.Context, q RangeQuery) ([]Session, error)
}
