package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/geo"
	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) user.User {
	t.Helper()
	u, err := NewUserRepository(db).Create(context.Background(), user.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         user.RoleIntern,
		WorkHours:    8,
	})
	require.NoError(t, err)
	return u
}

func newSession(userID string, date civil.Date, kind attendance.Kind, at time.Time) attendance.Session {
	return attendance.Session{
		ID:              uuid.Must(uuid.NewV7()).String(),
		UserID:          userID,
		Date:            date,
		Kind:            kind,
		LoginAt:         at,
		LoginCoordinate: geo.Point{Latitude: 12.93, Longitude: 77.58},
		UserTargetHours: 8,
		TargetHours:     kind.TargetShare(8),
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "asha")

	_, err := NewUserRepository(db).Create(context.Background(), user.User{
		ID: uuid.Must(uuid.NewV7()).String(), Username: "asha", Role: user.RoleIntern, WorkHours: 8,
	})
	assert.ErrorIs(t, err, user.ErrUsernameExists)
}

func TestSessionRepository_OpenAssignsOrdinals(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUser(t, db, "asha")
	repo := NewSessionRepository(db)
	day := civil.Date{Year: 2025, Month: 3, Day: 10}
	at := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)

	first, err := repo.Open(ctx, newSession(u.ID, day, attendance.KindShift1, at))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Ordinal)
	assert.True(t, first.IsOpen())

	_, err = repo.Open(ctx, newSession(u.ID, day, attendance.KindShift1, at.Add(time.Minute)))
	assert.ErrorIs(t, err, attendance.ErrAlreadyOpen)

	// A different kind may be open at the same time.
	second, err := repo.Open(ctx, newSession(u.ID, day, attendance.KindShift2, at.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Ordinal)

	_, err = repo.Close(ctx, first.ID, attendance.Closure{LogoutAt: at.Add(4 * time.Hour), DurationHours: 4})
	require.NoError(t, err)

	third, err := repo.Open(ctx, newSession(u.ID, day, attendance.KindShift1, at.Add(5*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 3, third.Ordinal)
}

func TestSessionRepository_CloseIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUser(t, db, "asha")
	repo := NewSessionRepository(db)
	day := civil.Date{Year: 2025, Month: 3, Day: 10}
	at := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)

	s, err := repo.Open(ctx, newSession(u.ID, day, attendance.KindNormal, at))
	require.NoError(t, err)

	logout := &geo.Point{Latitude: 12.92, Longitude: 77.57}
	closed, err := repo.Close(ctx, s.ID, attendance.Closure{LogoutAt: at.Add(90 * time.Minute), LogoutCoordinate: logout, DurationHours: 1.5})
	require.NoError(t, err)
	require.NotNil(t, closed.Closure)
	assert.Equal(t, 1.5, closed.Closure.DurationHours)
	assert.Equal(t, logout, closed.Closure.LogoutCoordinate)
	assert.True(t, closed.Closure.LogoutAt.Equal(at.Add(90*time.Minute)))

	_, err = repo.Close(ctx, s.ID, attendance.Closure{LogoutAt: at.Add(2 * time.Hour), DurationHours: 2})
	assert.ErrorIs(t, err, attendance.ErrNoOpenSession)
}

func TestSessionRepository_FindOpenOrdering(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUser(t, db, "asha")
	repo := NewSessionRepository(db)
	yesterday := civil.Date{Year: 2025, Month: 3, Day: 9}
	today := yesterday.AddDays(1)
	at := time.Date(2025, 3, 9, 17, 0, 0, 0, time.UTC)

	_, err := repo.FindOpen(ctx, attendance.OpenQuery{UserID: u.ID, From: yesterday, To: today})
	assert.ErrorIs(t, err, attendance.ErrNoOpenSession)

	late, err := repo.Open(ctx, newSession(u.ID, yesterday, attendance.KindShift2, at))
	require.NoError(t, err)
	_, err = repo.Open(ctx, newSession(u.ID, today, attendance.KindShift1, at.Add(12*time.Hour)))
	require.NoError(t, err)

	got, err := repo.FindOpen(ctx, attendance.OpenQuery{UserID: u.ID, From: yesterday, To: today})
	require.NoError(t, err)
	assert.Equal(t, late.ID, got.ID)

	kind := attendance.KindShift1
	got, err = repo.FindOpen(ctx, attendance.OpenQuery{UserID: u.ID, From: yesterday, To: today, Kind: &kind})
	require.NoError(t, err)
	assert.Equal(t, today, got.Date)

	shift2 := attendance.KindShift2
	_, err = repo.FindOpen(ctx, attendance.OpenQuery{UserID: u.ID, From: today, To: today, Kind: &shift2})
	assert.ErrorIs(t, err, attendance.ErrNoOpenSession)
}

func TestSessionRepository_ListJoinsUsername(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	a := seedUser(t, db, "asha")
	b := seedUser(t, db, "bala")
	repo := NewSessionRepository(db)
	day := civil.Date{Year: 2025, Month: 3, Day: 10}
	at := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)

	_, err := repo.Open(ctx, newSession(b.ID, day, attendance.KindNormal, at))
	require.NoError(t, err)
	_, err = repo.Open(ctx, newSession(a.ID, day, attendance.KindNormal, at))
	require.NoError(t, err)

	all, err := repo.List(ctx, attendance.RangeQuery{From: day, To: day})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Username)
	assert.Equal(t, "asha", *all[0].Username)

	only, err := repo.List(ctx, attendance.RangeQuery{From: day, To: day, UserIDs: []string{b.ID}})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, b.ID, only[0].UserID)

	mine, err := repo.ListByUser(ctx, a.ID, attendance.RangeQuery{From: day.AddDays(-1), To: day})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUser(t, db, "asha")
	day := civil.Date{Year: 2025, Month: 3, Day: 10}

	_, err := NewSessionRepository(db).Open(ctx, newSession(u.ID, day, attendance.KindNormal, time.Now()))
	require.NoError(t, err)
	_, err = NewLeaveApplicationRepository(db).Apply(ctx, leave.Application{
		ID: uuid.Must(uuid.NewV7()).String(), UserID: u.ID, Date: day.AddDays(1), Type: "sick",
	})
	require.NoError(t, err)

	require.NoError(t, NewUserRepository(db).Delete(ctx, u.ID))

	var sessions, leaves int64
	require.NoError(t, db.Model(&sessionModel{}).Count(&sessions).Error)
	require.NoError(t, db.Model(&leaveModel{}).Count(&leaves).Error)
	assert.Zero(t, sessions)
	assert.Zero(t, leaves)

	assert.ErrorIs(t, NewUserRepository(db).Delete(ctx, u.ID), user.ErrUserNotFound)
}

func TestLeaveRepository_ApplyDecideDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUser(t, db, "asha")
	admin := seedUser(t, db, "root")
	repo := NewLeaveApplicationRepository(db)
	day := civil.Date{Year: 2025, Month: 3, Day: 11}

	app, err := repo.Apply(ctx, leave.Application{ID: uuid.Must(uuid.NewV7()).String(), UserID: u.ID, Date: day, Type: "sick"})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, app.Status)

	_, err = repo.Apply(ctx, leave.Application{ID: uuid.Must(uuid.NewV7()).String(), UserID: u.ID, Date: day, Type: "casual"})
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyExists)

	assert.ErrorIs(t, repo.DeleteDenied(ctx, app.ID), leave.ErrLeaveNotDeletable)

	decided, err := repo.Decide(ctx, leave.Decision{ID: app.ID, Status: leave.StatusDenied, DecidedBy: admin.ID, DecidedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusDenied, decided.Status)
	require.NotNil(t, decided.Username)
	assert.Equal(t, "asha", *decided.Username)

	_, err = repo.Decide(ctx, leave.Decision{ID: app.ID, Status: leave.StatusApproved, DecidedBy: admin.ID, DecidedAt: time.Now()})
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyProcessed)

	_, err = repo.Decide(ctx, leave.Decision{ID: uuid.Must(uuid.NewV7()).String(), Status: leave.StatusApproved, DecidedBy: admin.ID, DecidedAt: time.Now()})
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)

	// Reapplying replaces the denied application.
	again, err := repo.Apply(ctx, leave.Application{ID: uuid.Must(uuid.NewV7()).String(), UserID: u.ID, Date: day, Type: "casual"})
	require.NoError(t, err)
	assert.Equal(t, "casual", again.Type)

	_, err = repo.GetByID(ctx, app.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)

	latest, err := repo.GetByUserAndDate(ctx, u.ID, day)
	require.NoError(t, err)
	assert.Equal(t, again.ID, latest.ID)

	require.NoError(t, repo.MarkNotified(ctx, again.ID))
	pending := leave.StatusPending
	listed, err := repo.List(ctx, leave.Filter{Status: &pending, From: day, To: &day})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Notified)
}

func TestTimestampsFollowInjectedClock(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	db, err := OpenInMemory(WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	u := seedUser(t, db, "asha")
	assert.True(t, u.CreatedAt.Equal(start))

	sessions := NewSessionRepository(db)
	day := civil.Date{Year: 2025, Month: 3, Day: 10}
	s, err := sessions.Open(ctx, newSession(u.ID, day, attendance.KindNormal, start))
	require.NoError(t, err)
	assert.True(t, s.CreatedAt.Equal(start))

	logout := start.Add(3 * time.Hour)
	closed, err := sessions.Close(ctx, s.ID, attendance.Closure{LogoutAt: logout, DurationHours: 3})
	require.NoError(t, err)
	assert.True(t, closed.UpdatedAt.Equal(logout), "updated_at = %s", closed.UpdatedAt)

	leaves := NewLeaveApplicationRepository(db)
	app, err := leaves.Apply(ctx, leave.Application{
		ID: uuid.Must(uuid.NewV7()).String(), UserID: u.ID, Date: day.AddDays(1), Type: "sick",
	})
	require.NoError(t, err)

	decidedAt := start.Add(5 * time.Hour)
	decided, err := leaves.Decide(ctx, leave.Decision{
		ID: app.ID, Status: leave.StatusApproved, DecidedBy: u.ID, DecidedAt: decidedAt,
	})
	require.NoError(t, err)
	assert.True(t, decided.UpdatedAt.Equal(decidedAt), "updated_at = %s", decided.UpdatedAt)

	clock.Advance(time.Hour)
	require.NoError(t, leaves.MarkNotified(ctx, app.ID))
	stored, err := leaves.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(start.Add(time.Hour)), "updated_at = %s", stored.UpdatedAt)

	clock.Advance(time.Hour)
	updated, err := NewUserRepository(db).UpdateWorkHours(ctx, u.ID, 6)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.Equal(start.Add(2*time.Hour)), "updated_at = %s", updated.UpdatedAt)
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	admin := seedUser(t, db, "root")
	asha := seedUser(t, db, "asha")
	ravi := seedUser(t, db, "ravi")
	at := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)

	broadcast, err := repo.Create(ctx, notification.Notification{
		ID: uuid.Must(uuid.NewV7()).String(), SenderID: admin.ID, Message: "Town hall", CreatedAt: at,
	})
	require.NoError(t, err)
	assert.Nil(t, broadcast.RecipientID)
	require.NotNil(t, broadcast.SenderUsername)
	assert.Equal(t, "root", *broadcast.SenderUsername)
	assert.Empty(t, broadcast.Replies)

	direct, err := repo.Create(ctx, notification.Notification{
		ID: uuid.Must(uuid.NewV7()).String(), SenderID: admin.ID, RecipientID: &asha.ID,
		Message: "Submit your report", CreatedAt: at.Add(time.Minute),
	})
	require.NoError(t, err)
	require.NotNil(t, direct.RecipientUsername)
	assert.Equal(t, "asha", *direct.RecipientUsername)

	for i, text := range []string{"first", "second"} {
		_, err := repo.AddReply(ctx, notification.Reply{
			ID: uuid.Must(uuid.NewV7()).String(), NotificationID: direct.ID, UserID: asha.ID,
			Text: text, CreatedAt: at.Add(time.Duration(i+2) * time.Minute),
		})
		require.NoError(t, err)
	}
	reply, err := repo.AddReply(ctx, notification.Reply{
		ID: uuid.Must(uuid.NewV7()).String(), NotificationID: broadcast.ID, UserID: ravi.ID,
		Text: "Will attend", CreatedAt: at.Add(5 * time.Minute),
	})
	require.NoError(t, err)
	require.NotNil(t, reply.Username)
	assert.Equal(t, "ravi", *reply.Username)

	_, err = repo.AddReply(ctx, notification.Reply{
		ID: uuid.Must(uuid.NewV7()).String(), NotificationID: uuid.Must(uuid.NewV7()).String(), UserID: asha.ID,
		Text: "lost", CreatedAt: at,
	})
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

	got, err := repo.GetByID(ctx, direct.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 2)
	assert.Equal(t, "first", got.Replies[0].Text)
	assert.Equal(t, "second", got.Replies[1].Text)

	_, err = repo.GetByID(ctx, uuid.Must(uuid.NewV7()).String())
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

	forAsha, err := repo.List(ctx, notification.Filter{RecipientID: &asha.ID})
	require.NoError(t, err)
	require.Len(t, forAsha, 2)
	assert.Equal(t, direct.ID, forAsha[0].ID)
	assert.Len(t, forAsha[0].Replies, 2)
	assert.Len(t, forAsha[1].Replies, 1)

	forRavi, err := repo.List(ctx, notification.Filter{RecipientID: &ravi.ID})
	require.NoError(t, err)
	require.Len(t, forRavi, 1)
	assert.Equal(t, broadcast.ID, forRavi[0].ID)

	// Deleting a recipient takes their threads and replies with them.
	require.NoError(t, NewUserRepository(db).Delete(ctx, asha.ID))
	everything, err := repo.List(ctx, notification.Filter{})
	require.NoError(t, err)
	require.Len(t, everything, 1)
	assert.Equal(t, broadcast.ID, everything[0].ID)
	assert.Len(t, everything[0].Replies, 1)
}
