// Package sqlite is the embedded store: the same repository contracts as the
// PostgreSQL store, on gorm and SQLite, for local runs and tests.
package sqlite

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Option adjusts the gorm configuration of a store.
type Option func(*gorm.Config)

// WithClock makes gorm's created_at/updated_at bookkeeping read c.
func WithClock(c clockwork.Clock) Option {
	return func(cfg *gorm.Config) {
		cfg.NowFunc = func() time.Time { return c.Now().UTC() }
	}
}

// Open opens (creating if needed) the database file at path and migrates it.
func Open(path string, opts ...Option) (*gorm.DB, error) {
	return open(fmt.Sprintf("file:%s?_foreign_keys=1&_busy_timeout=5000", path), opts)
}

// OpenInMemory returns a private in-memory database, migrated and empty.
func OpenInMemory(opts ...Option) (*gorm.DB, error) {
	return open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()), opts)
}

func open(dsn string, opts []Option) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// One connection serialises writers, which is what makes Open and Apply atomic.
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userModel{}, &sessionModel{}, &leaveModel{}, &notificationModel{}, &replyModel{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// Partial indexes are not expressible through struct tags.
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_sessions_open
			ON attendance_sessions (user_id, date, kind) WHERE logout_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_leave_applications_active
			ON leave_applications (user_id, date) WHERE status IN ('pending', 'approved')`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
