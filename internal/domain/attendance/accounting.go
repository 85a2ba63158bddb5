package attendance

import (
	"sort"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

// MaxRangeDays bounds the span of period queries.
const MaxRangeDays = 366

const hourPlaces = 4

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// SessionDuration returns logout - login in hours, rounded to 4 places.
// It works on absolute instants so zone offsets never leak into the result.
func SessionDuration(login, logout time.Time) float64 {
	d := decimal.NewFromInt(int64(logout.Sub(login)))
	return d.Div(nanosPerHour).Round(hourPlaces).InexactFloat64()
}

// ValidateRange checks an inclusive calendar range.
func ValidateRange(from, to civil.Date) error {
	if !from.IsValid() || !to.IsValid() {
		return ErrInvalidDate
	}
	if from.After(to) {
		return ErrInvalidDateRange
	}
	if to.DaysSince(from) >= MaxRangeDays {
		return ErrDateRangeTooLong
	}
	return nil
}

// ResolveRange parses an optional inclusive range. A missing end defaults to
// today and a missing start to defaultDays days ending at end.
func ResolveRange(start, end string, today civil.Date, defaultDays int) (civil.Date, civil.Date, error) {
	to := today
	if end != "" {
		d, err := civil.ParseDate(end)
		if err != nil {
			return civil.Date{}, civil.Date{}, ErrInvalidDate
		}
		to = d
	}
	from := to.AddDays(-(defaultDays - 1))
	if start != "" {
		d, err := civil.ParseDate(start)
		if err != nil {
			return civil.Date{}, civil.Date{}, ErrInvalidDate
		}
		from = d
	}
	if err := ValidateRange(from, to); err != nil {
		return civil.Date{}, civil.Date{}, err
	}
	return from, to, nil
}

// KindTotals is one kind's share of a day.
type KindTotals struct {
	Kind         Kind    `json:"kind"`
	Hours        float64 `json:"hours"`
	TargetHours  float64 `json:"target_hours"`
	Sessions     int     `json:"sessions"`
	OpenSessions int     `json:"open_sessions"`
	Completed    bool    `json:"completed"`
	// AcceptsMore is advisory; the state machine itself does not enforce it.
	AcceptsMore bool `json:"accepts_more"`
}

// DayTotals aggregates one user's sessions for one date.
type DayTotals struct {
	Date       civil.Date
	TotalHours float64
	Kinds      map[Kind]KindTotals
}

// AggregateDay sums closed sessions on date, per kind, against dailyTarget.
// Open sessions are counted but contribute no hours.
func AggregateDay(date civil.Date, dailyTarget float64, sessions []Session) DayTotals {
	hours := make(map[Kind]decimal.Decimal, len(Kinds))
	closed := make(map[Kind]int, len(Kinds))
	open := make(map[Kind]int, len(Kinds))
	total := decimal.Zero

	for _, s := range sessions {
		if s.Date != date {
			continue
		}
		if s.IsOpen() {
			open[s.Kind]++
			continue
		}
		d := decimal.NewFromFloat(s.Closure.DurationHours)
		hours[s.Kind] = hours[s.Kind].Add(d)
		closed[s.Kind]++
		total = total.Add(d)
	}

	out := DayTotals{
		Date:       date,
		TotalHours: total.Round(hourPlaces).InexactFloat64(),
		Kinds:      make(map[Kind]KindTotals, len(Kinds)),
	}
	for _, k := range Kinds {
		target := decimal.NewFromFloat(k.TargetShare(dailyTarget))
		h := hours[k]
		completed := h.GreaterThanOrEqual(target)
		out.Kinds[k] = KindTotals{
			Kind:         k,
			Hours:        h.Round(hourPlaces).InexactFloat64(),
			TargetHours:  target.Round(hourPlaces).InexactFloat64(),
			Sessions:     closed[k],
			OpenSessions: open[k],
			Completed:    completed,
			AcceptsMore:  !completed,
		}
	}
	return out
}

// KindPeriodTotals is one kind's share of a period.
type KindPeriodTotals struct {
	Hours    float64 `json:"hours"`
	Sessions int     `json:"sessions"`
}

// Shortfall records a closed session that ended below its target.
type Shortfall struct {
	SessionID      string
	Date           civil.Date
	Kind           Kind
	Ordinal        int
	TargetHours    float64
	ActualHours    float64
	ShortfallHours float64
}

// PeriodStatistics aggregates a user's sessions over an inclusive range.
type PeriodStatistics struct {
	From                     civil.Date
	To                       civil.Date
	TotalHours               float64
	ActiveDays               int
	AverageHoursPerActiveDay float64
	OpenSessions             int
	Kinds                    map[Kind]KindPeriodTotals
	Shortfalls               []Shortfall
}

// AggregatePeriod computes totals for sessions dated within [from, to].
// A day is active when it has at least one closed session.
func AggregatePeriod(from, to civil.Date, sessions []Session) PeriodStatistics {
	hours := make(map[Kind]decimal.Decimal, len(Kinds))
	counts := make(map[Kind]int, len(Kinds))
	activeDays := make(map[civil.Date]struct{})
	total := decimal.Zero

	out := PeriodStatistics{
		From:       from,
		To:         to,
		Kinds:      make(map[Kind]KindPeriodTotals, len(Kinds)),
		Shortfalls: []Shortfall{},
	}

	for _, s := range sessions {
		if s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		if s.IsOpen() {
			out.OpenSessions++
			continue
		}

		actual := decimal.NewFromFloat(s.Closure.DurationHours)
		hours[s.Kind] = hours[s.Kind].Add(actual)
		counts[s.Kind]++
		total = total.Add(actual)
		activeDays[s.Date] = struct{}{}

		short := decimal.NewFromFloat(s.TargetHours).Sub(actual).Round(hourPlaces)
		if short.IsPositive() {
			out.Shortfalls = append(out.Shortfalls, Shortfall{
				SessionID:      s.ID,
				Date:           s.Date,
				Kind:           s.Kind,
				Ordinal:        s.Ordinal,
				TargetHours:    s.TargetHours,
				ActualHours:    s.Closure.DurationHours,
				ShortfallHours: short.InexactFloat64(),
			})
		}
	}

	for _, k := range Kinds {
		out.Kinds[k] = KindPeriodTotals{
			Hours:    hours[k].Round(hourPlaces).InexactFloat64(),
			Sessions: counts[k],
		}
	}

	out.TotalHours = total.Round(hourPlaces).InexactFloat64()
	out.ActiveDays = len(activeDays)
	if out.ActiveDays > 0 {
		out.AverageHoursPerActiveDay = total.
			DivRound(decimal.NewFromInt(int64(out.ActiveDays)), hourPlaces).
			InexactFloat64()
	}

	sort.Slice(out.Shortfalls, func(i, j int) bool {
		a, b := out.Shortfalls[i], out.Shortfalls[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.Ordinal < b.Ordinal
	})

	return out
}
