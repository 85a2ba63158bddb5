package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	List(ctx context.Context, role *Role) ([]User, error)
	UpdateWorkHours(ctx context.Context, id string, workHours float64) (User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// Delete removes the user together with their sessions and leave applications.
	Delete(ctx context.Context, id string) error
}
