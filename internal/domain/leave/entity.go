package leave

import (
	"time"

	"github.com/golang-sql/civil"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// Blocking reports whether an application in status s prevents another
// application for the same date.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusApproved
}

// Application is one day of requested leave. Transitions are
// pending -> approved and pending -> denied; both targets are terminal.
type Application struct {
	ID            string
	UserID        string
	Date          civil.Date
	Type          string
	Reason        *string
	Status        Status
	AdminComments *string
	Notified      bool
	DecidedBy     *string
	DecidedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	Username *string
	Email    *string
}

// Decision is the admin verdict applied to a pending application.
type Decision struct {
	ID            string
	Status        Status
	AdminComments *string
	DecidedBy     string
	DecidedAt     time.Time
}

// Filter selects applications dated on or after From. A nil To leaves the
// range open so upcoming leave is included.
// An empty UserIDs matches every user.
type Filter struct {
	UserIDs []string
	Status  *Status
	From    civil.Date
	To      *civil.Date
}
