package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/email"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/holiday"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/validator"
	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// ListWindowDays is the default span of leave listings.
	ListWindowDays = 90
	// retryBatch bounds one notification retry pass.
	retryBatch = 50
)

type LeaveServiceImpl struct {
	leave.ApplicationRepository
	user.UserRepository
	notifier email.Notifier
	holidays *holiday.Calendar
	clock    clockwork.Clock
	logger   *slog.Logger
	loc      *time.Location
}

func NewLeaveService(
	leaveRepo leave.ApplicationRepository,
	userRepo user.UserRepository,
	notifier email.Notifier,
	holidays *holiday.Calendar,
	clock clockwork.Clock,
	logger *slog.Logger,
	loc *time.Location,
) leave.LeaveService {
	if loc == nil {
		loc = time.UTC
	}
	return &LeaveServiceImpl{
		ApplicationRepository: leaveRepo,
		UserRepository:        userRepo,
		notifier:              notifier,
		holidays:              holidays,
		clock:                 clock,
		logger:                logger,
		loc:                   loc,
	}
}

func (l *LeaveServiceImpl) today() civil.Date {
	return civil.DateOf(l.clock.Now().In(l.loc))
}

// Apply implements leave.LeaveService.
func (l *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)

	if validator.IsWeekend(date) {
		return leave.ApplicationResponse{}, leave.ErrLeaveOnWeekend
	}
	if name, ok := l.holidays.IsHoliday(date); ok {
		return leave.ApplicationResponse{}, &leave.HolidayError{Name: name}
	}

	u, err := l.UserRepository.GetByID(ctx, req.UserID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if !u.IsIntern() {
		return leave.ApplicationResponse{}, leave.ErrInternsOnly
	}

	id, err := uuid.NewV7()
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to generate leave id: %w", err)
	}

	app, err := l.ApplicationRepository.Apply(ctx, leave.Application{
		ID:     id.String(),
		UserID: u.ID,
		Date:   date,
		Type:   req.Type,
		Reason: req.Reason,
	})
	if err != nil {
		if errors.Is(err, leave.ErrLeaveAlreadyExists) {
			return leave.ApplicationResponse{}, err
		}
		return leave.ApplicationResponse{}, fmt.Errorf("failed to apply for leave: %w", err)
	}

	l.logger.Info("leave applied",
		"leave_id", app.ID,
		"user_id", app.UserID,
		"date", app.Date.String(),
		"type", app.Type,
	)
	return leave.NewApplicationResponse(app, l.loc), nil
}

// Decide implements leave.LeaveService.
func (l *LeaveServiceImpl) Decide(ctx context.Context, req leave.DecideRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	status := leave.StatusDenied
	if req.Approve {
		status = leave.StatusApproved
	}

	app, err := l.ApplicationRepository.Decide(ctx, leave.Decision{
		ID:            req.ID,
		Status:        status,
		AdminComments: req.Comments,
		DecidedBy:     req.AdminID,
		DecidedAt:     l.clock.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, leave.ErrLeaveNotFound) || errors.Is(err, leave.ErrLeaveAlreadyProcessed) {
			return leave.ApplicationResponse{}, err
		}
		return leave.ApplicationResponse{}, fmt.Errorf("failed to decide leave: %w", err)
	}

	l.logger.Info("leave decided",
		"leave_id", app.ID,
		"user_id", app.UserID,
		"status", string(app.Status),
		"decided_by", req.AdminID,
	)

	if l.notify(ctx, app) {
		app.Notified = true
	}
	return leave.NewApplicationResponse(app, l.loc), nil
}

// notify reports whether the applicant was reached and recorded as notified.
// Failures are logged only; the decision stands either way.
func (l *LeaveServiceImpl) notify(ctx context.Context, app leave.Application) bool {
	if l.notifier == nil || app.Email == nil || *app.Email == "" {
		return false
	}

	d := email.LeaveDecision{
		To:     *app.Email,
		Date:   app.Date.String(),
		Type:   app.Type,
		Status: string(app.Status),
	}
	if app.Username != nil {
		d.Username = *app.Username
	}
	if app.AdminComments != nil {
		d.Comments = *app.AdminComments
	}

	if err := l.notifier.SendLeaveDecision(ctx, d); err != nil {
		if !errors.Is(err, email.ErrNotConfigured) {
			l.logger.Error("failed to notify leave decision", "leave_id", app.ID, "error", err)
		}
		return false
	}
	if err := l.ApplicationRepository.MarkNotified(ctx, app.ID); err != nil {
		l.logger.Error("failed to mark leave notified", "leave_id", app.ID, "error", err)
		return false
	}
	return true
}

// RetryNotifications implements leave.LeaveService.
func (l *LeaveServiceImpl) RetryNotifications(ctx context.Context) (int, error) {
	apps, err := l.ApplicationRepository.ListUnnotified(ctx, retryBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list unnotified leave applications: %w", err)
	}

	sent := 0
	for _, app := range apps {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if l.notify(ctx, app) {
			sent++
		}
	}
	if len(apps) > 0 {
		l.logger.Info("leave notifications retried", "pending", len(apps), "sent", sent)
	}
	return sent, nil
}

// Delete implements leave.LeaveService.
func (l *LeaveServiceImpl) Delete(ctx context.Context, userID, id string) error {
	app, err := l.ApplicationRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// Someone else's application is reported as missing.
	if app.UserID != userID {
		return leave.ErrLeaveNotFound
	}
	if app.Status != leave.StatusDenied {
		return leave.ErrLeaveNotDeletable
	}

	if err := l.ApplicationRepository.DeleteDenied(ctx, id); err != nil {
		return err
	}
	l.logger.Info("leave deleted", "leave_id", id, "user_id", userID)
	return nil
}

// GetByDate implements leave.LeaveService.
func (l *LeaveServiceImpl) GetByDate(ctx context.Context, userID, date string) (leave.ApplicationResponse, error) {
	d, ok := validator.IsValidDate(date)
	if !ok {
		return leave.ApplicationResponse{}, attendance.ErrInvalidDate
	}
	app, err := l.ApplicationRepository.GetByUserAndDate(ctx, userID, d)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	return leave.NewApplicationResponse(app, l.loc), nil
}

// listRange resolves an optional listing range. Without an end date the
// range starts ListWindowDays back and stays open towards the future, since
// leave is usually applied ahead of time.
func (l *LeaveServiceImpl) listRange(start, end string) (civil.Date, *civil.Date, error) {
	if end != "" {
		from, to, err := attendance.ResolveRange(start, end, l.today(), ListWindowDays)
		if err != nil {
			return civil.Date{}, nil, err
		}
		return from, &to, nil
	}

	from := l.today().AddDays(-(ListWindowDays - 1))
	if start != "" {
		d, ok := validator.IsValidDate(start)
		if !ok {
			return civil.Date{}, nil, attendance.ErrInvalidDate
		}
		from = d
	}
	return from, nil, nil
}

// ListMine implements leave.LeaveService.
func (l *LeaveServiceImpl) ListMine(ctx context.Context, req leave.ListMineRequest) ([]leave.ApplicationResponse, error) {
	from, to, err := l.listRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	return l.list(ctx, leave.Filter{UserIDs: []string{req.UserID}, From: from, To: to})
}

// List implements leave.LeaveService.
func (l *LeaveServiceImpl) List(ctx context.Context, req leave.ListRequest) ([]leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	from, to, err := l.listRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	filter := leave.Filter{From: from, To: to}
	if req.UserID != nil {
		filter.UserIDs = []string{*req.UserID}
	}
	if req.Status != nil {
		s := leave.Status(*req.Status)
		filter.Status = &s
	}
	return l.list(ctx, filter)
}

func (l *LeaveServiceImpl) list(ctx context.Context, filter leave.Filter) ([]leave.ApplicationResponse, error) {
	apps, err := l.ApplicationRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave applications: %w", err)
	}
	resp := make([]leave.ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		resp = append(resp, leave.NewApplicationResponse(a, l.loc))
	}
	return resp, nil
}
