package attendance

import (
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closed(id string, date civil.Date, kind Kind, ordinal int, target, hours float64) Session {
	return Session{
		ID:          id,
		Date:        date,
		Kind:        kind,
		Ordinal:     ordinal,
		TargetHours: target,
		Closure:     &Closure{DurationHours: hours},
	}
}

func TestSessionDuration(t *testing.T) {
	login := time.Date(2025, 3, 10, 18, 20, 0, 0, time.UTC)

	cases := []struct {
		name   string
		logout time.Time
		want   float64
	}{
		{"whole hours", login.Add(4 * time.Hour), 4},
		{"thirds round to four places", login.Add(20 * time.Minute), 0.3333},
		{"two thirds round up", login.Add(40 * time.Minute), 0.6667},
		{"seconds", login.Add(time.Second), 0.0003},
		{"zero", login, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SessionDuration(login, tc.logout))
		})
	}
}

func TestSessionDuration_IgnoresZones(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	login := time.Date(2025, 3, 10, 23, 50, 0, 0, kolkata)
	logout := time.Date(2025, 3, 10, 18, 40, 0, 0, time.UTC) // 00:10 IST next day

	assert.Equal(t, 0.3333, SessionDuration(login, logout))
}

func TestValidateRange(t *testing.T) {
	d := civil.Date{Year: 2025, Month: 1, Day: 1}

	assert.NoError(t, ValidateRange(d, d))
	assert.NoError(t, ValidateRange(d, d.AddDays(365)))
	assert.ErrorIs(t, ValidateRange(d, d.AddDays(366)), ErrDateRangeTooLong)
	assert.ErrorIs(t, ValidateRange(d.AddDays(1), d), ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateRange(civil.Date{Year: 2025, Month: 2, Day: 30}, d), ErrInvalidDate)
	assert.ErrorIs(t, ValidateRange(d.AddDays(1), d), ErrInvalidInput)
}

func TestResolveRange(t *testing.T) {
	today := civil.Date{Year: 2025, Month: 3, Day: 31}

	from, to, err := ResolveRange("", "", today, 30)
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2025, Month: 3, Day: 2}, from)
	assert.Equal(t, today, to)

	from, to, err = ResolveRange("2025-01-01", "2025-01-31", today, 30)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", from.String())
	assert.Equal(t, "2025-01-31", to.String())

	_, _, err = ResolveRange("01/01/2025", "", today, 30)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, _, err = ResolveRange("2025-04-01", "", today, 30)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestAggregateDay(t *testing.T) {
	day := civil.Date{Year: 2025, Month: 3, Day: 10}
	sessions := []Session{
		closed("a", day, KindShift1, 1, 4, 2.5),
		closed("b", day, KindShift1, 2, 4, 1.5),
		closed("c", day, KindShift2, 3, 4, 3.9999),
		{ID: "d", Date: day, Kind: KindNormal, Ordinal: 4}, // open
		closed("e", day.AddDays(-1), KindNormal, 1, 8, 8),  // other day
	}

	got := AggregateDay(day, 8, sessions)

	assert.Equal(t, 7.9999, got.TotalHours)
	require.Len(t, got.Kinds, 3)

	s1 := got.Kinds[KindShift1]
	assert.Equal(t, 4.0, s1.Hours)
	assert.Equal(t, 4.0, s1.TargetHours)
	assert.Equal(t, 2, s1.Sessions)
	assert.True(t, s1.Completed)
	assert.False(t, s1.AcceptsMore)

	s2 := got.Kinds[KindShift2]
	assert.False(t, s2.Completed)
	assert.True(t, s2.AcceptsMore)

	n := got.Kinds[KindNormal]
	assert.Equal(t, 0.0, n.Hours)
	assert.Equal(t, 8.0, n.TargetHours)
	assert.Equal(t, 1, n.OpenSessions)
	assert.Equal(t, 0, n.Sessions)
}

func TestAggregateDay_DecimalSums(t *testing.T) {
	day := civil.Date{Year: 2025, Month: 3, Day: 10}
	var sessions []Session
	for i := 0; i < 10; i++ {
		sessions = append(sessions, closed("s", day, KindNormal, i+1, 8, 0.1))
	}

	got := AggregateDay(day, 1, sessions)
	assert.Equal(t, 1.0, got.TotalHours)
	assert.True(t, got.Kinds[KindNormal].Completed)
}

func TestAggregatePeriod(t *testing.T) {
	from := civil.Date{Year: 2025, Month: 3, Day: 1}
	to := civil.Date{Year: 2025, Month: 3, Day: 31}
	d1 := civil.Date{Year: 2025, Month: 3, Day: 10}
	d2 := civil.Date{Year: 2025, Month: 3, Day: 4}

	sessions := []Session{
		closed("late", d1, KindShift2, 2, 4, 3),
		closed("early", d1, KindShift1, 1, 4, 4.25),
		closed("first", d2, KindNormal, 1, 8, 7.5),
		{ID: "open", Date: d1, Kind: KindNormal, Ordinal: 3},
		closed("outside", to.AddDays(1), KindNormal, 1, 8, 1),
	}

	got := AggregatePeriod(from, to, sessions)

	assert.Equal(t, 14.75, got.TotalHours)
	assert.Equal(t, 2, got.ActiveDays)
	assert.Equal(t, 7.375, got.AverageHoursPerActiveDay)
	assert.Equal(t, 1, got.OpenSessions)
	assert.Equal(t, KindPeriodTotals{Hours: 4.25, Sessions: 1}, got.Kinds[KindShift1])
	assert.Equal(t, KindPeriodTotals{Hours: 3, Sessions: 1}, got.Kinds[KindShift2])
	assert.Equal(t, KindPeriodTotals{Hours: 7.5, Sessions: 1}, got.Kinds[KindNormal])

	require.Len(t, got.Shortfalls, 2)
	assert.Equal(t, "first", got.Shortfalls[0].SessionID)
	assert.Equal(t, 0.5, got.Shortfalls[0].ShortfallHours)
	assert.Equal(t, "late", got.Shortfalls[1].SessionID)
	assert.Equal(t, 1.0, got.Shortfalls[1].ShortfallHours)
}

func TestAggregatePeriod_Empty(t *testing.T) {
	d := civil.Date{Year: 2025, Month: 3, Day: 1}
	got := AggregatePeriod(d, d, nil)

	assert.Equal(t, 0.0, got.TotalHours)
	assert.Equal(t, 0, got.ActiveDays)
	assert.Equal(t, 0.0, got.AverageHoursPerActiveDay)
	assert.NotNil(t, got.Shortfalls)
	assert.Len(t, got.Kinds, 3)
}

func TestKind(t *testing.T) {
	assert.True(t, KindNormal.Valid())
	assert.False(t, Kind("night").Valid())
	assert.Equal(t, 8.0, KindNormal.TargetShare(8))
	assert.Equal(t, 4.0, KindShift1.TargetShare(8))
	assert.Equal(t, 3.5, KindShift2.TargetShare(7))
}
