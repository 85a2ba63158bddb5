package auth

import (
	"context"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Me(ctx context.Context, userID string) (user.UserResponse, error)
}
