package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUsernameExists         = errors.New("username already taken")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrCannotDeleteSelf       = errors.New("administrators cannot delete their own account")
	ErrInvalidRole            = errors.New("role must be intern or admin")
)
