package user

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/validator"
	"github.com/cmlabs-hris/intern-attendance/internal/repository/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupUserService(t *testing.T) (*UserServiceImpl, user.UserRepository) {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	repo := sqlite.NewUserRepository(db)
	svc := NewUserService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)), 8).(*UserServiceImpl)
	svc.bcryptCost = bcrypt.MinCost
	return svc, repo
}

func TestCreate(t *testing.T) {
	svc, repo := setupUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, user.CreateUserRequest{
		Username: "asha",
		Email:    "asha@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleIntern, created.Role)
	assert.Equal(t, 8.0, created.WorkHours)
	assert.True(t, validator.IsValidUUID(created.ID))

	stored, err := repo.GetByUsername(ctx, "asha")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))

	hours := 6.0
	admin, err := svc.Create(ctx, user.CreateUserRequest{
		Username:  "root",
		Email:     "root@example.com",
		Password:  "password123",
		Role:      user.RoleAdmin,
		WorkHours: &hours,
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, admin.Role)
	assert.Equal(t, 6.0, admin.WorkHours)

	_, err = svc.Create(ctx, user.CreateUserRequest{Username: "asha", Email: "a2@example.com", Password: "password123"})
	assert.ErrorIs(t, err, user.ErrUsernameExists)

	_, err = svc.Create(ctx, user.CreateUserRequest{Username: "x", Email: "bad", Password: "short", Role: "boss"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	m := verrs.ToMap()
	for _, field := range []string{"username", "email", "password", "role"} {
		assert.Contains(t, m, field)
	}
}

func TestListUpdateDelete(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	mk := func(name string, role user.Role) string {
		u, err := svc.Create(ctx, user.CreateUserRequest{
			Username: name, Email: name + "@example.com", Password: "password123", Role: role,
		})
		require.NoError(t, err)
		return u.ID
	}
	root := mk("root", user.RoleAdmin)
	ravi := mk("ravi", user.RoleIntern)
	mk("asha", user.RoleIntern)

	all, err := svc.List(ctx, user.ListUsersRequest{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "asha", all[0].Username)

	intern := user.RoleIntern
	interns, err := svc.List(ctx, user.ListUsersRequest{Role: &intern})
	require.NoError(t, err)
	assert.Len(t, interns, 2)

	bogus := user.Role("boss")
	_, err = svc.List(ctx, user.ListUsersRequest{Role: &bogus})
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	updated, err := svc.UpdateWorkHours(ctx, user.UpdateWorkHoursRequest{ID: ravi, WorkHours: 4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.WorkHours)

	_, err = svc.UpdateWorkHours(ctx, user.UpdateWorkHoursRequest{ID: ravi, WorkHours: 13})
	assert.Error(t, err)
	_, err = svc.UpdateWorkHours(ctx, user.UpdateWorkHoursRequest{ID: uuid.NewString(), WorkHours: 4})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, root, root), user.ErrCannotDeleteSelf)
	require.NoError(t, svc.Delete(ctx, root, ravi))
	_, err = svc.GetByID(ctx, ravi)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, root, ravi), user.ErrUserNotFound)
}

func TestResetPassword(t *testing.T) {
	svc, repo := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, user.CreateUserRequest{Username: "asha", Email: "asha@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, user.ResetPasswordRequest{Username: "asha", Password: "new-password"}))
	stored, err := repo.GetByUsername(ctx, "asha")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password")))

	err = svc.ResetPassword(ctx, user.ResetPasswordRequest{Username: "ghost", Password: "new-password"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.Error(t, svc.ResetPassword(ctx, user.ResetPasswordRequest{Username: "asha", Password: "short"}))
}
