package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/intern-attendance/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// every table. Tests skip when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	_, err = db.Exec(ctx, "TRUNCATE TABLE notification_replies, notifications, leave_applications, attendance_sessions, users CASCADE")
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *database.DB, username string) user.User {
	t.Helper()
	u, err := postgresql.NewUserRepository(db).Create(context.Background(), user.User{
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
