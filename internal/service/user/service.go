package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	user.UserRepository
	logger     *slog.Logger
	workHours  float64
	bcryptCost int
}

// NewUserService creates a user service. defaultWorkHours applies when a
// create request leaves work_hours unset.
func NewUserService(userRepository user.UserRepository, logger *slog.Logger, defaultWorkHours float64) user.UserService {
	if defaultWorkHours <= 0 {
		defaultWorkHours = user.DefaultWorkHours
	}
	return &UserServiceImpl{
		UserRepository: userRepository,
		logger:         logger,
		workHours:      defaultWorkHours,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

func (s *UserServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to generate user id: %w", err)
	}

	workHours := s.workHours
	if req.WorkHours != nil {
		workHours = *req.WorkHours
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		ID:           id.String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         req.Role,
		WorkHours:    workHours,
	})
	if err != nil {
		if errors.Is(err, user.ErrUsernameExists) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", "user_id", created.ID, "username", created.Username, "role", string(created.Role))
	return user.NewUserResponse(created), nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, req user.ListUsersRequest) ([]user.UserResponse, error) {
	if req.Role != nil && !req.Role.Valid() {
		return nil, user.ErrInvalidRole
	}
	users, err := s.UserRepository.List(ctx, req.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	resp := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, user.NewUserResponse(u))
	}
	return resp, nil
}

// GetByID implements user.UserService.
func (s *UserServiceImpl) GetByID(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(u), nil
}

// UpdateWorkHours implements user.UserService.
func (s *UserServiceImpl) UpdateWorkHours(ctx context.Context, req user.UpdateWorkHoursRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	u, err := s.UserRepository.UpdateWorkHours(ctx, req.ID, req.WorkHours)
	if err != nil {
		return user.UserResponse{}, err
	}
	s.logger.Info("work hours updated", "user_id", u.ID, "work_hours", u.WorkHours)
	return user.NewUserResponse(u), nil
}

// Delete implements user.UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return user.ErrCannotDeleteSelf
	}
	if err := s.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "deleted_by", actorID)
	return nil
}

// ResetPassword implements user.UserService.
func (s *UserServiceImpl) ResetPassword(ctx context.Context, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	u, err := s.UserRepository.GetByUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.UserRepository.UpdatePassword(ctx, u.ID, hashed); err != nil {
		return err
	}
	s.logger.Info("password reset", "user_id", u.ID)
	return nil
}
