package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserIDEmptyParam  = errors.New("user id is required")
	ErrDuplicateEmail    = errors.New("a user with the same email already exists")
	ErrUserDeactivated   = errors.New("user is deactivated")
	ErrInvalidUserDetail = errors.New("invalid user details")
)
