package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/validator"
	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// HistoryWindowDays is the default span of history and statistics queries.
	HistoryWindowDays = 90
	// AdminWindowDays is the default span of the admin session listing.
	AdminWindowDays = 30
)

// Options carries the attendance policy.
type Options struct {
	Geofence attendance.Geofence
	Location *time.Location

	// MinSessionHours enables the confirmation step on close. Zero disables it.
	MinSessionHours float64
	// CloseLookbackDays lets a close reach sessions opened on earlier dates,
	// so a session that spans midnight can still be closed.
	CloseLookbackDays int
	// EnforceCompletedKinds refuses to open a kind whose target for the day is met.
	EnforceCompletedKinds bool
}

type AttendanceServiceImpl struct {
	attendance.SessionRepository
	user.UserRepository
	clock  clockwork.Clock
	logger *slog.Logger
	opts   Options
}

func NewAttendanceService(
	sessionRepo attendance.SessionRepository,
	userRepo user.UserRepository,
	clock clockwork.Clock,
	logger *slog.Logger,
	opts Options,
) attendance.AttendanceService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &AttendanceServiceImpl{
		SessionRepository: sessionRepo,
		UserRepository:    userRepo,
		clock:             clock,
		logger:            logger,
		opts:              opts,
	}
}

// today returns the current instant and its local calendar date, sampled once.
func (a *AttendanceServiceImpl) today() (time.Time, civil.Date) {
	now := a.clock.Now().UTC()
	return now, civil.DateOf(now.In(a.opts.Location))
}

// Office implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Office() attendance.OfficeResponse {
	g := a.opts.Geofence
	return attendance.OfficeResponse{
		Name:      g.Name,
		Latitude:  g.Center.Latitude,
		Longitude: g.Center.Longitude,
		RadiusKm:  g.RadiusKm,
		RadiusM:   g.RadiusKm * 1000,
	}
}

// CheckGeofence implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckGeofence(ctx context.Context, req attendance.GeofenceRequest) (attendance.Admission, error) {
	p, err := attendance.ParseCoordinate(req.Latitude, req.Longitude)
	if err != nil {
		return attendance.Admission{}, err
	}
	return a.opts.Geofence.Admit(p), nil
}

// OpenSession implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) OpenSession(ctx context.Context, req attendance.OpenSessionRequest) (attendance.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionResponse{}, err
	}

	p, err := attendance.ParseCoordinate(req.Latitude, req.Longitude)
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	adm := a.opts.Geofence.Admit(p)
	if !adm.Allowed {
		return attendance.SessionResponse{}, &attendance.OutsideGeofenceError{
			DistanceKm: adm.DistanceKm,
			RadiusKm:   adm.RadiusKm,
		}
	}

	u, err := a.intern(ctx, req.UserID)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	now, date := a.today()

	if a.opts.EnforceCompletedKinds {
		sessions, err := a.SessionRepository.ListByUser(ctx, u.ID, attendance.RangeQuery{From: date, To: date})
		if err != nil {
			return attendance.SessionResponse{}, fmt.Errorf("failed to list today's sessions: %w", err)
		}
		if attendance.AggregateDay(date, u.WorkHours, sessions).Kinds[req.Kind].Completed {
			return attendance.SessionResponse{}, attendance.ErrKindCompleted
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.SessionResponse{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	opened, err := a.SessionRepository.Open(ctx, attendance.Session{
		ID:              id.String(),
		UserID:          u.ID,
		Date:            date,
		Kind:            req.Kind,
		LoginAt:         now,
		LoginCoordinate: p,
		UserTargetHours: u.WorkHours,
		TargetHours:     req.Kind.TargetShare(u.WorkHours),
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyOpen) {
			return attendance.SessionResponse{}, err
		}
		return attendance.SessionResponse{}, fmt.Errorf("failed to open session: %w", err)
	}

	a.logger.Info("session opened",
		slog.String("user_id", opened.UserID),
		slog.String("session_id", opened.ID),
		slog.String("date", opened.Date.String()),
		slog.String("kind", string(opened.Kind)),
		slog.Int("ordinal", opened.Ordinal),
		slog.Float64("distance_km", adm.DistanceKm),
	)

	return attendance.NewSessionResponse(opened, a.opts.Location), nil
}

// CloseSession implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CloseSession(ctx context.Context, req attendance.CloseSessionRequest) (attendance.CloseSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CloseSessionResponse{}, err
	}

	logoutPoint, err := attendance.ParseOptionalCoordinate(req.Latitude, req.Longitude)
	if err != nil {
		return attendance.CloseSessionResponse{}, err
	}

	now, today := a.today()

	open, err := a.SessionRepository.FindOpen(ctx, attendance.OpenQuery{
		UserID: req.UserID,
		From:   today.AddDays(-a.opts.CloseLookbackDays),
		To:     today,
		Kind:   req.Kind,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNoOpenSession) {
			return attendance.CloseSessionResponse{}, err
		}
		return attendance.CloseSessionResponse{}, fmt.Errorf("failed to find open session: %w", err)
	}

	logoutAt := now
	if logoutAt.Before(open.LoginAt) {
		logoutAt = open.LoginAt
	}
	duration := attendance.SessionDuration(open.LoginAt, logoutAt)

	if a.opts.MinSessionHours > 0 && duration < a.opts.MinSessionHours && !req.Force {
		pending := attendance.NewSessionResponse(open, a.opts.Location)
		return attendance.CloseSessionResponse{
			Outcome:              attendance.CloseOutcomeBelowMinimum,
			RequiresConfirmation: true,
			DurationHours:        duration,
			MinimumHours:         a.opts.MinSessionHours,
			Session:              &pending,
		}, nil
	}

	closed, err := a.SessionRepository.Close(ctx, open.ID, attendance.Closure{
		LogoutAt:         logoutAt,
		LogoutCoordinate: logoutPoint,
		DurationHours:    duration,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNoOpenSession) {
			return attendance.CloseSessionResponse{}, err
		}
		return attendance.CloseSessionResponse{}, fmt.Errorf("failed to close session: %w", err)
	}

	a.logger.Info("session closed",
		slog.String("user_id", closed.UserID),
		slog.String("session_id", closed.ID),
		slog.String("date", closed.Date.String()),
		slog.String("kind", string(closed.Kind)),
		slog.Float64("duration_hours", duration),
		slog.Bool("forced", req.Force),
	)

	resp := attendance.NewSessionResponse(closed, a.opts.Location)
	return attendance.CloseSessionResponse{
		Outcome:       attendance.CloseOutcomeClosed,
		DurationHours: duration,
		MinimumHours:  a.opts.MinSessionHours,
		Session:       &resp,
	}, nil
}

// DayTotals implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DayTotals(ctx context.Context, userID string, date string) (attendance.DayTotalsResponse, error) {
	d, valid := validator.IsValidDate(date)
	if !valid {
		return attendance.DayTotalsResponse{}, attendance.ErrInvalidDate
	}

	totals, _, err := a.day(ctx, userID, d)
	if err != nil {
		return attendance.DayTotalsResponse{}, err
	}
	return attendance.NewDayTotalsResponse(totals), nil
}

// Today implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Today(ctx context.Context, userID string) (attendance.TodayResponse, error) {
	_, today := a.today()

	totals, sessions, err := a.day(ctx, userID, today)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	resp := attendance.TodayResponse{
		DayTotalsResponse: attendance.NewDayTotalsResponse(totals),
		Sessions:          make([]attendance.SessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		sr := attendance.NewSessionResponse(s, a.opts.Location)
		resp.Sessions = append(resp.Sessions, sr)
		if s.IsOpen() && resp.OpenSession == nil {
			open := sr
			resp.OpenSession = &open
		}
	}
	return resp, nil
}

func (a *AttendanceServiceImpl) day(ctx context.Context, userID string, d civil.Date) (attendance.DayTotals, []attendance.Session, error) {
	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return attendance.DayTotals{}, nil, err
	}

	sessions, err := a.SessionRepository.ListByUser(ctx, u.ID, attendance.RangeQuery{From: d, To: d})
	if err != nil {
		return attendance.DayTotals{}, nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return attendance.AggregateDay(d, u.WorkHours, sessions), sessions, nil
}

// PeriodStatistics implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PeriodStatistics(ctx context.Context, req attendance.PeriodRequest) (attendance.PeriodStatisticsResponse, error) {
	from, to, sessions, err := a.period(ctx, req)
	if err != nil {
		return attendance.PeriodStatisticsResponse{}, err
	}
	return attendance.NewPeriodStatisticsResponse(attendance.AggregatePeriod(from, to, sessions)), nil
}

// History implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) History(ctx context.Context, req attendance.PeriodRequest) ([]attendance.SessionResponse, error) {
	_, _, sessions, err := a.period(ctx, req)
	if err != nil {
		return nil, err
	}

	history := make([]attendance.SessionResponse, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		history = append(history, attendance.NewSessionResponse(sessions[i], a.opts.Location))
	}
	return history, nil
}

func (a *AttendanceServiceImpl) period(ctx context.Context, req attendance.PeriodRequest) (civil.Date, civil.Date, []attendance.Session, error) {
	if err := req.Validate(); err != nil {
		return civil.Date{}, civil.Date{}, nil, err
	}

	_, today := a.today()
	from, to, err := attendance.ResolveRange(req.StartDate, req.EndDate, today, HistoryWindowDays)
	if err != nil {
		return civil.Date{}, civil.Date{}, nil, err
	}

	if _, err := a.UserRepository.GetByID(ctx, req.UserID); err != nil {
		return civil.Date{}, civil.Date{}, nil, err
	}

	sessions, err := a.SessionRepository.ListByUser(ctx, req.UserID, attendance.RangeQuery{From: from, To: to})
	if err != nil {
		return civil.Date{}, civil.Date{}, nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return from, to, sessions, nil
}

// ListSessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListSessions(ctx context.Context, req attendance.ListSessionsRequest) ([]attendance.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, today := a.today()
	from, to, err := attendance.ResolveRange(req.StartDate, req.EndDate, today, AdminWindowDays)
	if err != nil {
		return nil, err
	}

	q := attendance.RangeQuery{From: from, To: to}
	if req.UserID != nil {
		q.UserIDs = []string{*req.UserID}
	}

	sessions, err := a.SessionRepository.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	resp := make([]attendance.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, attendance.NewSessionResponse(s, a.opts.Location))
	}
	return resp, nil
}

func (a *AttendanceServiceImpl) intern(ctx context.Context, userID string) (user.User, error) {
	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if !u.IsIntern() {
		return user.User{}, attendance.ErrInternsOnly
	}
	if !validator.IsValidWorkHours(u.WorkHours) {
		return user.User{}, attendance.ErrInvalidTargetHours
	}
	return u, nil
}
