package sqlite

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"gorm.io/gorm"
)

type userRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return m.toDomain(), nil
}

func (r *userRepositoryImpl) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, "username = ?", username).Error; err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return m.toDomain(), nil
}

func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	m := userModel{
		ID:           newUser.ID,
		Username:     newUser.Username,
		Email:        newUser.Email,
		PasswordHash: newUser.PasswordHash,
		Role:         string(newUser.Role),
		WorkHours:    newUser.WorkHours,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicate(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return m.toDomain(), nil
}

func (r *userRepositoryImpl) List(ctx context.Context, role *user.Role) ([]user.User, error) {
	q := r.db.WithContext(ctx).Order("username")
	if role != nil {
		q = q.Where("role = ?", string(*role))
	}

	var models []userModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]user.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toDomain())
	}
	return users, nil
}

func (r *userRepositoryImpl) UpdateWorkHours(ctx context.Context, id string, workHours float64) (user.User, error) {
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).
		Update("work_hours", workHours)
	if res.Error != nil {
		return user.User{}, fmt.Errorf("update work hours: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.User{}, user.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// Delete removes the user's sessions and leave applications in the same
// transaction, mirroring ON DELETE CASCADE in the PostgreSQL schema.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&sessionModel{}).Error; err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&leaveModel{}).Error; err != nil {
			return fmt.Errorf("delete leave applications: %w", err)
		}
		threads := tx.Model(&notificationModel{}).Select("id").Where("sender_id = ? OR recipient_id = ?", id, id)
		if err := tx.Where("user_id = ? OR notification_id IN (?)", id, threads).Delete(&replyModel{}).Error; err != nil {
			return fmt.Errorf("delete notification replies: %w", err)
		}
		if err := tx.Where("sender_id = ? OR recipient_id = ?", id, id).Delete(&notificationModel{}).Error; err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&userModel{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return user.ErrUserNotFound
		}
		return nil
	})
}
