package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/report"
	"github.com/golang-sql/civil"
)

// CalendarWindowDays is the default span of the calendar view.
const CalendarWindowDays = 90

type calendarKey struct {
	userID string
	date   civil.Date
}

// Calendar implements report.ReportService.
func (s *ReportServiceImpl) Calendar(ctx context.Context, req report.CalendarRequest) (report.Calendar, error) {
	if err := req.Validate(); err != nil {
		return report.Calendar{}, err
	}

	today := civil.DateOf(s.clock.Now().In(s.loc))
	from, to, err := attendance.ResolveRange(req.StartDate, req.EndDate, today, CalendarWindowDays)
	if err != nil {
		return report.Calendar{}, err
	}

	sessions, err := s.sessionRepo.List(ctx, attendance.RangeQuery{From: from, To: to, UserIDs: req.UserIDs})
	if err != nil {
		return report.Calendar{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	apps, err := s.leaveRepo.List(ctx, leave.Filter{UserIDs: req.UserIDs, From: from, To: &to})
	if err != nil {
		return report.Calendar{}, fmt.Errorf("failed to list leave applications: %w", err)
	}

	users := map[string]*report.CalendarUser{}
	byDay := map[calendarKey][]attendance.Session{}
	leaves := map[calendarKey]*report.CalendarLeave{}

	track := func(userID string, username *string) {
		if _, ok := users[userID]; ok {
			return
		}
		u := &report.CalendarUser{UserID: userID}
		if username != nil {
			u.Username = *username
		}
		users[userID] = u
	}

	for _, sess := range sessions {
		track(sess.UserID, sess.Username)
		k := calendarKey{sess.UserID, sess.Date}
		byDay[k] = append(byDay[k], sess)
	}
	for _, a := range apps {
		track(a.UserID, a.Username)
		leaves[calendarKey{a.UserID, a.Date}] = &report.CalendarLeave{
			ID:     a.ID,
			Type:   a.Type,
			Status: string(a.Status),
			Reason: a.Reason,
		}
	}

	keys := make(map[calendarKey]struct{}, len(byDay)+len(leaves))
	for k := range byDay {
		keys[k] = struct{}{}
	}
	for k := range leaves {
		keys[k] = struct{}{}
	}
	for k := range keys {
		users[k.userID].Days = append(users[k.userID].Days, s.calendarDay(k.date, byDay[k], leaves[k]))
	}

	out := report.Calendar{
		StartDate: from.String(),
		EndDate:   to.String(),
		Users:     make([]report.CalendarUser, 0, len(users)),
	}
	for _, u := range users {
		sort.Slice(u.Days, func(i, j int) bool { return u.Days[i].Date < u.Days[j].Date })
		out.Users = append(out.Users, *u)
	}
	sort.Slice(out.Users, func(i, j int) bool {
		if out.Users[i].Username != out.Users[j].Username {
			return out.Users[i].Username < out.Users[j].Username
		}
		return out.Users[i].UserID < out.Users[j].UserID
	})

	s.logger.Debug("calendar built",
		"start_date", out.StartDate,
		"end_date", out.EndDate,
		"users", len(out.Users),
	)
	return out, nil
}

func (s *ReportServiceImpl) calendarDay(date civil.Date, sessions []attendance.Session, l *report.CalendarLeave) report.CalendarDay {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Kind != sessions[j].Kind {
			return sessions[i].Kind < sessions[j].Kind
		}
		return sessions[i].Ordinal < sessions[j].Ordinal
	})

	day := report.CalendarDay{
		Date:     date.String(),
		Hours:    attendance.AggregateDay(date, 0, sessions).TotalHours,
		Sessions: make([]report.CalendarSession, 0, len(sessions)),
		Leave:    l,
	}
	for _, sess := range sessions {
		cs := report.CalendarSession{
			Kind:    string(sess.Kind),
			Ordinal: sess.Ordinal,
			Login:   sess.LoginAt.In(s.loc).Format(time.RFC3339),
		}
		if c := sess.Closure; c != nil {
			logout := c.LogoutAt.In(s.loc).Format(time.RFC3339)
			hours := c.DurationHours
			cs.Logout = &logout
			cs.Hours = &hours
		}
		day.Sessions = append(day.Sessions, cs)
	}
	return day
}
