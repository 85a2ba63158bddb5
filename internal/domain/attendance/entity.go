package attendance

import (
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/pkg/geo"
	"github.com/golang-sql/civil"
)

// Kind partitions a day's target hours between sessions.
type Kind string

const (
	KindNormal Kind = "normal"
	KindShift1 Kind = "shift1"
	KindShift2 Kind = "shift2"
)

// Kinds lists every session kind in display order.
var Kinds = []Kind{KindNormal, KindShift1, KindShift2}

// Valid reports whether k is a known session kind.
func (k Kind) Valid() bool {
	switch k {
	case KindNormal, KindShift1, KindShift2:
		return true
	}
	return false
}

// IsShift reports whether k is one half of a two-shift day.
func (k Kind) IsShift() bool {
	return k == KindShift1 || k == KindShift2
}

// TargetShare returns the portion of a user's daily target assigned to one
// session of kind k.
func (k Kind) TargetShare(dailyTarget float64) float64 {
	if k.IsShift() {
		return dailyTarget / 2
	}
	return dailyTarget
}

// State is the lifecycle state of a single session.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Closure holds everything recorded when a session is closed. It is set
// exactly once.
type Closure struct {
	LogoutAt         time.Time
	LogoutCoordinate *geo.Point
	DurationHours    float64
}

// Session is one login/logout pair. Date is the local calendar day of the
// login instant and never moves, even when the session spans midnight.
type Session struct {
	ID              string
	UserID          string
	Date            civil.Date
	Kind            Kind
	Ordinal         int
	LoginAt         time.Time
	LoginCoordinate geo.Point
	UserTargetHours float64
	TargetHours     float64
	Closure         *Closure
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Join
	Username *string
}

// State derives the lifecycle state from the presence of a closure.
func (s Session) State() State {
	if s.Closure == nil {
		return StateOpen
	}
	return StateClosed
}

// IsOpen reports whether the session still awaits its logout.
func (s Session) IsOpen() bool {
	return s.Closure == nil
}

// DurationHours returns the recorded duration, or 0 while the session is open.
func (s Session) DurationHours() float64 {
	if s.Closure == nil {
		return 0
	}
	return s.Closure.DurationHours
}

// OpenQuery selects the open sessions a check-out may close.
type OpenQuery struct {
	UserID string
	From   civil.Date
	To     civil.Date
	Kind   *Kind
}

// RangeQuery selects sessions by calendar range.
type RangeQuery struct {
	From    civil.Date
	To      civil.Date
	UserIDs []string
}
