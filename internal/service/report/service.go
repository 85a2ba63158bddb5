package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/report"
	"github.com/golang-sql/civil"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// ExportWindowDays is the default span of an export.
const ExportWindowDays = 30

const exportTimeLayout = "2006-01-02 03:04:05 PM"

var exportHeader = []string{"username", "date", "kind", "ordinal", "login", "logout", "hours"}

type ReportServiceImpl struct {
	sessionRepo attendance.SessionRepository
	leaveRepo   leave.ApplicationRepository
	clock       clockwork.Clock
	logger      *slog.Logger
	loc         *time.Location
}

func NewReportService(sessionRepo attendance.SessionRepository, leaveRepo leave.ApplicationRepository, clock clockwork.Clock, logger *slog.Logger, loc *time.Location) report.ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{
		sessionRepo: sessionRepo,
		leaveRepo:   leaveRepo,
		clock:       clock,
		logger:      logger,
		loc:         loc,
	}
}

// ExportAttendance implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, req report.AttendanceExportRequest) (report.AttendanceExport, error) {
	if err := req.Validate(); err != nil {
		return report.AttendanceExport{}, err
	}

	today := civil.DateOf(s.clock.Now().In(s.loc))
	from, to, err := attendance.ResolveRange(req.StartDate, req.EndDate, today, ExportWindowDays)
	if err != nil {
		return report.AttendanceExport{}, err
	}

	q := attendance.RangeQuery{From: from, To: to}
	if req.UserID != nil {
		q.UserIDs = []string{*req.UserID}
	}
	sessions, err := s.sessionRepo.List(ctx, q)
	if err != nil {
		return report.AttendanceExport{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return report.AttendanceExport{}, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, sess := range sessions {
		if err := w.Write(s.row(sess)); err != nil {
			return report.AttendanceExport{}, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return report.AttendanceExport{}, fmt.Errorf("failed to flush csv: %w", err)
	}

	s.logger.Info("attendance exported",
		"start_date", from.String(),
		"end_date", to.String(),
		"rows", len(sessions),
	)

	return report.AttendanceExport{
		Filename: report.ExportFilename(from.String(), to.String()),
		Rows:     len(sessions),
		Content:  buf.Bytes(),
	}, nil
}

// row renders one session; open sessions leave logout and hours blank.
func (s *ReportServiceImpl) row(sess attendance.Session) []string {
	var username string
	if sess.Username != nil {
		username = *sess.Username
	}

	var logout, hours string
	if c := sess.Closure; c != nil {
		logout = c.LogoutAt.In(s.loc).Format(exportTimeLayout)
		hours = decimal.NewFromFloat(c.DurationHours).StringFixed(4)
	}

	return []string{
		username,
		sess.Date.String(),
		string(sess.Kind),
		strconv.Itoa(sess.Ordinal),
		sess.LoginAt.In(s.loc).Format(exportTimeLayout),
		logout,
		hours,
	}
}
