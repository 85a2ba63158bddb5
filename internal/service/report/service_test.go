package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/report"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/geo"
	"github.com/cmlabs-hris/intern-attendance/internal/repository/sqlite"
	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportAttendance(t *testing.T) {
	db, err := sqlite.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	ctx := context.Background()

	users := sqlite.NewUserRepository(db)
	sessions := sqlite.NewSessionRepository(db)

	seed := func(name string) string {
		u, err := users.Create(ctx, user.User{
			ID: uuid.Must(uuid.NewV7()).String(), Username: name, Email: name + "@example.com",
			PasswordHash: "x", Role: user.RoleIntern, WorkHours: 8,
		})
		require.NoError(t, err)
		return u.ID
	}
	open := func(userID string, date civil.Date, login time.Time) attendance.Session {
		s, err := sessions.Open(ctx, attendance.Session{
			ID: uuid.Must(uuid.NewV7()).String(), UserID: userID, Date: date, Kind: attendance.KindNormal,
			LoginAt: login.UTC(), LoginCoordinate: geo.Point{Latitude: 12.92, Longitude: 77.57},
			UserTargetHours: 8, TargetHours: 8,
		})
		require.NoError(t, err)
		return s
	}

	asha, ravi := seed("asha"), seed("ravi")
	day := civil.Date{Year: 2025, Month: time.March, Day: 10}
	login := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)

	s := open(ravi, day, login)
	_, err = sessions.Close(ctx, s.ID, attendance.Closure{
		LogoutAt:      login.Add(80 * time.Minute).UTC(),
		DurationHours: attendance.SessionDuration(login, login.Add(80*time.Minute)),
	})
	require.NoError(t, err)
	open(asha, day, login.Add(2*time.Hour))
	open(asha, day.AddDays(-40), login.AddDate(0, 0, -40))

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 11, 12, 0, 0, 0, loc))
	svc := NewReportService(sessions, sqlite.NewLeaveApplicationRepository(db), clock, slog.New(slog.NewTextHandler(io.Discard, nil)), loc)

	export, err := svc.ExportAttendance(ctx, report.AttendanceExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "attendance_2025-02-10_2025-03-11.csv", export.Filename)
	assert.Equal(t, 2, export.Rows)

	records, err := csv.NewReader(bytes.NewReader(export.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"username", "date", "kind", "ordinal", "login", "logout", "hours"}, records[0])
	assert.Equal(t, []string{"asha", "2025-03-10", "normal", "1", "2025-03-10 11:00:00 AM", "", ""}, records[1])
	assert.Equal(t, []string{"ravi", "2025-03-10", "normal", "1", "2025-03-10 09:00:00 AM", "2025-03-10 10:20:00 AM", "1.3333"}, records[2])

	export, err = svc.ExportAttendance(ctx, report.AttendanceExportRequest{
		StartDate: "2025-01-01", EndDate: "2025-03-31", UserID: &asha,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, export.Rows)

	_, err = svc.ExportAttendance(ctx, report.AttendanceExportRequest{StartDate: "2025-03-31", EndDate: "2025-03-01"})
	assert.ErrorIs(t, err, attendance.ErrInvalidDateRange)

	bad := "nope"
	_, err = svc.ExportAttendance(ctx, report.AttendanceExportRequest{UserID: &bad})
	assert.Error(t, err)
}

func TestCalendar(t *testing.T) {
	db, err := sqlite.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	ctx := context.Background()

	users := sqlite.NewUserRepository(db)
	sessions := sqlite.NewSessionRepository(db)
	leaves := sqlite.NewLeaveApplicationRepository(db)

	seed := func(name string) string {
		u, err := users.Create(ctx, user.User{
			ID: uuid.Must(uuid.NewV7()).String(), Username: name, Email: name + "@example.com",
			PasswordHash: "x", Role: user.RoleIntern, WorkHours: 8,
		})
		require.NoError(t, err)
		return u.ID
	}
	open := func(userID string, date civil.Date, kind attendance.Kind, login time.Time) attendance.Session {
		s, err := sessions.Open(ctx, attendance.Session{
			ID: uuid.Must(uuid.NewV7()).String(), UserID: userID, Date: date, Kind: kind,
			LoginAt: login.UTC(), LoginCoordinate: geo.Point{Latitude: 12.92, Longitude: 77.57},
			UserTargetHours: 8, TargetHours: 4,
		})
		require.NoError(t, err)
		return s
	}
	closeAfter := func(s attendance.Session, login time.Time, d time.Duration) {
		_, err := sessions.Close(ctx, s.ID, attendance.Closure{
			LogoutAt:      login.Add(d).UTC(),
			DurationHours: attendance.SessionDuration(login, login.Add(d)),
		})
		require.NoError(t, err)
	}

	asha, ravi, meera := seed("asha"), seed("ravi"), seed("meera")
	day := civil.Date{Year: 2025, Month: time.March, Day: 10}
	login := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)

	first := open(ravi, day, attendance.KindShift1, login)
	closeAfter(first, login, 2*time.Hour)
	second := open(ravi, day, attendance.KindShift2, login.Add(3*time.Hour))
	closeAfter(second, login.Add(3*time.Hour), 90*time.Minute)
	open(asha, day, attendance.KindNormal, login)

	reason := "fever"
	_, err = leaves.Apply(ctx, leave.Application{
		ID: uuid.Must(uuid.NewV7()).String(), UserID: asha, Date: day.AddDays(-1), Type: "sick", Reason: &reason,
	})
	require.NoError(t, err)
	_, err = leaves.Apply(ctx, leave.Application{
		ID: uuid.Must(uuid.NewV7()).String(), UserID: meera, Date: day.AddDays(30), Type: "casual",
	})
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 11, 12, 0, 0, 0, loc))
	svc := NewReportService(sessions, leaves, clock, slog.New(slog.NewTextHandler(io.Discard, nil)), loc)

	cal, err := svc.Calendar(ctx, report.CalendarRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-12-12", cal.StartDate)
	assert.Equal(t, "2025-03-11", cal.EndDate)
	require.Len(t, cal.Users, 2, "leave after the window is excluded")

	assert.Equal(t, "asha", cal.Users[0].Username)
	require.Len(t, cal.Users[0].Days, 2)
	sick := cal.Users[0].Days[0]
	assert.Equal(t, "2025-03-09", sick.Date)
	assert.Empty(t, sick.Sessions)
	require.NotNil(t, sick.Leave)
	assert.Equal(t, "sick", sick.Leave.Type)
	assert.Equal(t, "pending", sick.Leave.Status)
	assert.Equal(t, &reason, sick.Leave.Reason)

	working := cal.Users[0].Days[1]
	assert.Equal(t, "2025-03-10", working.Date)
	assert.Nil(t, working.Leave)
	require.Len(t, working.Sessions, 1)
	assert.Equal(t, "2025-03-10T09:00:00+05:30", working.Sessions[0].Login)
	assert.Nil(t, working.Sessions[0].Logout)
	assert.Zero(t, working.Hours)

	assert.Equal(t, "ravi", cal.Users[1].Username)
	require.Len(t, cal.Users[1].Days, 1)
	shifts := cal.Users[1].Days[0]
	assert.InDelta(t, 3.5, shifts.Hours, 1e-9)
	require.Len(t, shifts.Sessions, 2)
	assert.Equal(t, "shift1", shifts.Sessions[0].Kind)
	assert.Equal(t, "shift2", shifts.Sessions[1].Kind)
	require.NotNil(t, shifts.Sessions[1].Logout)
	assert.Equal(t, "2025-03-10T13:30:00+05:30", *shifts.Sessions[1].Logout)

	cal, err = svc.Calendar(ctx, report.CalendarRequest{
		StartDate: "2025-03-01", EndDate: "2025-04-30", UserIDs: []string{ravi, meera},
	})
	require.NoError(t, err)
	require.Len(t, cal.Users, 2)
	assert.Equal(t, "meera", cal.Users[0].Username)
	require.Len(t, cal.Users[0].Days, 1)
	assert.Equal(t, "2025-04-09", cal.Users[0].Days[0].Date)
	assert.Equal(t, "ravi", cal.Users[1].Username)

	_, err = svc.Calendar(ctx, report.CalendarRequest{StartDate: "2025-03-31", EndDate: "2025-03-01"})
	assert.ErrorIs(t, err, attendance.ErrInvalidDateRange)

	_, err = svc.Calendar(ctx, report.CalendarRequest{UserIDs: []string{"nope"}})
	assert.Error(t, err)
}
