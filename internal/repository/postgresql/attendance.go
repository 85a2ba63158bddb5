package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/geo"
	"github.com/golang-sql/civil"
	"github.com/jackc/pgx/v5"
)

type sessionRepositoryImpl struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) attendance.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

const sessionColumns = `
	s.id, s.user_id, s.date, s.kind, s.ordinal, s.login_at, s.login_lat, s.login_lng,
	s.user_target_hours, s.target_hours, s.logout_at, s.logout_lat, s.logout_lng,
	s.duration_hours, s.created_at, s.updated_at`

func scanSession(row pgx.Row, extra ...any) (attendance.Session, error) {
	var (
		s         attendance.Session
		date      time.Time
		logoutAt  *time.Time
		logoutLat *float64
		logoutLng *float64
		duration  *float64
	)
	dest := []any{
		&s.ID,
		&s.UserID,
		&date,
		&s.Kind,
		&s.Ordinal,
		&s.LoginAt,
		&s.LoginCoordinate.Latitude,
		&s.LoginCoordinate.Longitude,
		&s.UserTargetHours,
		&s.TargetHours,
		&logoutAt,
		&logoutLat,
		&logoutLng,
		&duration,
		&s.CreatedAt,
		&s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attendance.Session{}, err
	}

	s.Date = civil.DateOf(date)
	if logoutAt != nil && duration != nil {
		c := &attendance.Closure{LogoutAt: *logoutAt, DurationHours: *duration}
		if logoutLat != nil && logoutLng != nil {
			c.LogoutCoordinate = &geo.Point{Latitude: *logoutLat, Longitude: *logoutLng}
		}
		s.Closure = c
	}
	return s, nil
}

// Open implements attendance.SessionRepository. A per-(user, date) advisory
// lock serialises ordinal assignment; the partial unique index on open
// sessions makes the insert conditional.
func (r *sessionRepositoryImpl) Open(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	var opened attendance.Session

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		lockKey := s.UserID + "/" + s.Date.String()
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return fmt.Errorf("lock session day: %w", err)
		}

		query := `
			INSERT INTO attendance_sessions AS s (
				id, user_id, date, kind, ordinal, login_at, login_lat, login_lng,
				user_target_hours, target_hours
			)
			SELECT $1::uuid, $2::uuid, $3::date, $4::text, COUNT(*) + 1, $5::timestamptz,
			       $6::float8, $7::float8, $8::float8, $9::float8
			FROM attendance_sessions
			WHERE user_id = $2::uuid AND date = $3::date
			ON CONFLICT (user_id, date, kind) WHERE logout_at IS NULL DO NOTHING
			RETURNING ` + sessionColumns

		var err error
		opened, err = scanSession(tx.QueryRow(ctx, query,
			s.ID,
			s.UserID,
			dateArg(s.Date),
			string(s.Kind),
			s.LoginAt,
			s.LoginCoordinate.Latitude,
			s.LoginCoordinate.Longitude,
			s.UserTargetHours,
			s.TargetHours,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrAlreadyOpen
		}
		if isUniqueViolation(err) {
			return attendance.ErrAlreadyOpen
		}
		return err
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyOpen) {
			return attendance.Session{}, err
		}
		return attendance.Session{}, fmt.Errorf("open session: %w", err)
	}
	return opened, nil
}

// FindOpen implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) FindOpen(ctx context.Context, q attendance.OpenQuery) (attendance.Session, error) {
	db := GetQuerier(ctx, r.db)

	var kind *string
	if q.Kind != nil {
		k := string(*q.Kind)
		kind = &k
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions s
		WHERE s.user_id = $1
		  AND s.logout_at IS NULL
		  AND s.date BETWEEN $2 AND $3
		  AND ($4::text IS NULL OR s.kind = $4)
		ORDER BY s.date ASC, s.ordinal ASC
		LIMIT 1`

	s, err := scanSession(db.QueryRow(ctx, query, q.UserID, dateArg(q.From), dateArg(q.To), kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrNoOpenSession
		}
		return attendance.Session{}, fmt.Errorf("find open session: %w", err)
	}
	return s, nil
}

// Close implements attendance.SessionRepository as a compare-and-set on
// logout_at IS NULL.
func (r *sessionRepositoryImpl) Close(ctx context.Context, id string, c attendance.Closure) (attendance.Session, error) {
	db := GetQuerier(ctx, r.db)

	var lat, lng *float64
	if c.LogoutCoordinate != nil {
		lat, lng = &c.LogoutCoordinate.Latitude, &c.LogoutCoordinate.Longitude
	}

	query := `
		UPDATE attendance_sessions AS s
		SET logout_at = $2, logout_lat = $3, logout_lng = $4, duration_hours = $5, updated_at = $2
		WHERE s.id = $1 AND s.logout_at IS NULL
		RETURNING ` + sessionColumns

	s, err := scanSession(db.QueryRow(ctx, query, id, c.LogoutAt, lat, lng, c.DurationHours))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrNoOpenSession
		}
		return attendance.Session{}, fmt.Errorf("close session: %w", err)
	}
	return s, nil
}

// ListByUser implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) ListByUser(ctx context.Context, userID string, q attendance.RangeQuery) ([]attendance.Session, error) {
	db := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions s
		WHERE s.user_id = $1 AND s.date BETWEEN $2 AND $3
		ORDER BY s.date ASC, s.ordinal ASC`

	rows, err := db.Query(ctx, query, userID, dateArg(q.From), dateArg(q.To))
	if err != nil {
		return nil, fmt.Errorf("list sessions by user: %w", err)
	}
	defer rows.Close()

	sessions := []attendance.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// List implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) List(ctx context.Context, q attendance.RangeQuery) ([]attendance.Session, error) {
	db := GetQuerier(ctx, r.db)

	var userIDs []string
	if len(q.UserIDs) > 0 {
		userIDs = q.UserIDs
	}

	query := `
		SELECT ` + sessionColumns + `, u.username
		FROM attendance_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.date BETWEEN $1 AND $2
		  AND ($3::uuid[] IS NULL OR s.user_id = ANY($3))
		ORDER BY s.date ASC, u.username ASC, s.ordinal ASC`

	rows, err := db.Query(ctx, query, dateArg(q.From), dateArg(q.To), userIDs)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []attendance.Session{}
	for rows.Next() {
		var username string
		s, err := scanSession(rows, &username)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Username = &username
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
