package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/database"
	"github.com/golang-sql/civil"
	"github.com/jackc/pgx/v5"
)

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.ApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

const leaveColumns = `
	l.id, l.user_id, l.date, l.type, l.reason, l.status, l.admin_comments, l.notified,
	l.decided_by, l.decided_at, l.created_at, l.updated_at`

func scanLeave(row pgx.Row, extra ...any) (leave.Application, error) {
	var (
		a    leave.Application
		date time.Time
	)
	dest := []any{
		&a.ID,
		&a.UserID,
		&date,
		&a.Type,
		&a.Reason,
		&a.Status,
		&a.AdminComments,
		&a.Notified,
		&a.DecidedBy,
		&a.DecidedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return leave.Application{}, err
	}
	a.Date = civil.DateOf(date)
	return a, nil
}

// Apply implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Apply(ctx context.Context, app leave.Application) (leave.Application, error) {
	var created leave.Application

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var existingID string
		var status leave.Status
		err := tx.QueryRow(ctx, `
			SELECT id, status FROM leave_applications
			WHERE user_id = $1 AND date = $2
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE`,
			app.UserID, dateArg(app.Date),
		).Scan(&existingID, &status)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("find existing leave: %w", err)
		case status.Blocking():
			return leave.ErrLeaveAlreadyExists
		default:
			if _, err := tx.Exec(ctx,
				`DELETE FROM leave_applications WHERE user_id = $1 AND date = $2 AND status = 'denied'`,
				app.UserID, dateArg(app.Date),
			); err != nil {
				return fmt.Errorf("delete denied leave: %w", err)
			}
		}

		query := `
			INSERT INTO leave_applications AS l (id, user_id, date, type, reason, status)
			VALUES ($1, $2, $3, $4, $5, 'pending')
			RETURNING ` + leaveColumns

		created, err = scanLeave(tx.QueryRow(ctx, query,
			app.ID, app.UserID, dateArg(app.Date), app.Type, app.Reason,
		))
		if isUniqueViolation(err) {
			return leave.ErrLeaveAlreadyExists
		}
		return err
	})
	if err != nil {
		if errors.Is(err, leave.ErrLeaveAlreadyExists) {
			return leave.Application{}, err
		}
		return leave.Application{}, fmt.Errorf("apply leave: %w", err)
	}
	return created, nil
}

// GetByID implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveColumns + `, u.username, u.email
		FROM leave_applications l
		JOIN users u ON u.id = l.user_id
		WHERE l.id = $1`

	var username, email string
	a, err := scanLeave(q.QueryRow(ctx, query, id), &username, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Application{}, leave.ErrLeaveNotFound
		}
		return leave.Application{}, fmt.Errorf("get leave by id: %w", err)
	}
	a.Username, a.Email = &username, &email
	return a, nil
}

// GetByUserAndDate implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, date civil.Date) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveColumns + `
		FROM leave_applications l
		WHERE l.user_id = $1 AND l.date = $2
		ORDER BY l.created_at DESC
		LIMIT 1`

	a, err := scanLeave(q.QueryRow(ctx, query, userID, dateArg(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Application{}, leave.ErrLeaveNotFound
		}
		return leave.Application{}, fmt.Errorf("get leave by date: %w", err)
	}
	return a, nil
}

// List implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) List(ctx context.Context, filter leave.Filter) ([]leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	var userIDs []string
	if len(filter.UserIDs) > 0 {
		userIDs = filter.UserIDs
	}

	var to *time.Time
	if filter.To != nil {
		d := dateArg(*filter.To)
		to = &d
	}

	query := `
		SELECT ` + leaveColumns + `, u.username, u.email
		FROM leave_applications l
		JOIN users u ON u.id = l.user_id
		WHERE l.date >= $1
		  AND ($2::date IS NULL OR l.date <= $2)
		  AND ($3::uuid[] IS NULL OR l.user_id = ANY($3))
		  AND ($4::text IS NULL OR l.status = $4)
		ORDER BY l.date DESC, u.username ASC`

	rows, err := q.Query(ctx, query, dateArg(filter.From), to, userIDs, status)
	if err != nil {
		return nil, fmt.Errorf("list leave: %w", err)
	}
	defer rows.Close()

	apps := []leave.Application{}
	for rows.Next() {
		var username, email string
		a, err := scanLeave(rows, &username, &email)
		if err != nil {
			return nil, fmt.Errorf("scan leave: %w", err)
		}
		a.Username, a.Email = &username, &email
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// Decide implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Decide(ctx context.Context, d leave.Decision) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH l AS (
			UPDATE leave_applications
			SET status = $2, admin_comments = $3, decided_by = $4, decided_at = $5, updated_at = $5
			WHERE id = $1 AND status = 'pending'
			RETURNING *
		)
		SELECT ` + leaveColumns + `, u.username, u.email
		FROM l
		JOIN users u ON u.id = l.user_id`

	var username, email string
	a, err := scanLeave(q.QueryRow(ctx, query, d.ID, string(d.Status), d.AdminComments, d.DecidedBy, d.DecidedAt), &username, &email)
	if err == nil {
		a.Username, a.Email = &username, &email
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return leave.Application{}, fmt.Errorf("decide leave: %w", err)
	}

	// Nothing updated: either the id is unknown or it was already decided.
	if _, err := r.GetByID(ctx, d.ID); err != nil {
		return leave.Application{}, err
	}
	return leave.Application{}, leave.ErrLeaveAlreadyProcessed
}

// ListUnnotified implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListUnnotified(ctx context.Context, limit int) ([]leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveColumns + `, u.username, u.email
		FROM leave_applications l
		JOIN users u ON u.id = l.user_id
		WHERE l.status <> 'pending' AND NOT l.notified
		ORDER BY l.decided_at ASC
		LIMIT $1`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unnotified leave: %w", err)
	}
	defer rows.Close()

	apps := []leave.Application{}
	for rows.Next() {
		var username, email string
		a, err := scanLeave(rows, &username, &email)
		if err != nil {
			return nil, fmt.Errorf("scan leave: %w", err)
		}
		a.Username, a.Email = &username, &email
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// MarkNotified implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) MarkNotified(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE leave_applications SET notified = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark leave notified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

// DeleteDenied implements leave.ApplicationRepository.
func (r *leaveApplicationRepositoryImpl) DeleteDenied(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_applications WHERE id = $1 AND status = 'denied'`, id)
	if err != nil {
		return fmt.Errorf("delete leave: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return leave.ErrLeaveNotDeletable
	}
	return nil
}
