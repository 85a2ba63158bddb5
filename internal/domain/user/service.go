package user

import "context"

type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	List(ctx context.Context, req ListUsersRequest) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	UpdateWorkHours(ctx context.Context, req UpdateWorkHoursRequest) (UserResponse, error)
	Delete(ctx context.Context, actorID, id string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}
