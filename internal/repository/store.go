package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/config"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/intern-attendance/internal/repository/postgresql"
	"github.com/cmlabs-hris/intern-attendance/internal/repository/sqlite"
)

// Store bundles the repositories of one backing database.
type Store struct {
	Users         user.UserRepository
	Sessions      attendance.SessionRepository
	Leaves        leave.ApplicationRepository
	Notifications notification.Repository

	close func() error
}

func (s *Store) Close() error {
	return s.close()
}

// Open connects to the database selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, dsn string) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{
			MaxConns:        int32(cfg.MaxConns),
			MinConns:        int32(cfg.MinConns),
			MaxConnIdleTime: 5 * time.Minute,
		})
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &Store{
			Users:         postgresql.NewUserRepository(db),
			Sessions:      postgresql.NewSessionRepository(db),
			Leaves:        postgresql.NewLeaveApplicationRepository(db),
			Notifications: postgresql.NewNotificationRepository(db),
			close: func() error {
				db.Close()
				return nil
			},
		}, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:         sqlite.NewUserRepository(db),
			Sessions:      sqlite.NewSessionRepository(db),
			Leaves:        sqlite.NewLeaveApplicationRepository(db),
			Notifications: sqlite.NewNotificationRepository(db),
			close:         func() error { return sqlite.Close(db) },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
