package account

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidInviteToken = errors.New("invite token invalid or already claimed")
	ErrUnauthorized       = errors.New("invalid credentials")
)
