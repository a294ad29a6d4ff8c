package util

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("account role mismatch")
	ErrUserNotFound       = errors.New("用户不存在")
)
