package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/intern-attendance/internal/repository/sqlite"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

func setupAuth(t *testing.T) (auth.AuthService, jwt.Service, user.User) {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	users := sqlite.NewUserRepository(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	u, err := users.Create(context.Background(), user.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Username:     "asha",
		Email:        "asha@example.com",
		PasswordHash: string(hash),
		Role:         user.RoleIntern,
		WorkHours:    user.DefaultWorkHours,
	})
	require.NoError(t, err)

	jwtService := jwt.NewJWTService(testSecret, time.Hour)
	return NewAuthService(users, jwtService, slog.New(slog.NewTextHandler(io.Discard, nil))), jwtService, u
}

func TestLogin_Success(t *testing.T) {
	svc, jwtService, u := setupAuth(t)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{Username: "asha", Password: "password123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.AccessTokenExpiresIn, time.Now().Unix())
	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, user.RoleIntern, resp.User.Role)

	token, err := jwtauth.VerifyToken(jwtService.JWTAuth(), resp.AccessToken)
	require.NoError(t, err)
	claims, err := jwt.ClaimsFromMap(token.PrivateClaims())
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "asha", claims.Username)
}

func TestLogin_Failures(t *testing.T) {
	svc, _, _ := setupAuth(t)

	tests := []struct {
		name string
		req  auth.LoginRequest
	}{
		{"wrong password", auth.LoginRequest{Username: "asha", Password: "password124"}},
		{"unknown user", auth.LoginRequest{Username: "ghost", Password: "password123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}

	_, err := svc.Login(context.Background(), auth.LoginRequest{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	svc, _, u := setupAuth(t)

	me, err := svc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", me.Email)
	assert.Equal(t, 8.0, me.WorkHours)

	_, err = svc.Me(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
