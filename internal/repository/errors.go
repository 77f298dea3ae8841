package repository

import "errors"

var (
	ErrEmailNotFound  = errors.New("email not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrInvalidInput   = errors.New("invalid input parameters")
)
