package domain

import (
	"errors"
	"fmt"
)

// Registration errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingCredentials = fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	ErrPasswordTooLong    = fmt.Errorf("%w: password must be at most 72 bytes", ErrInvalidInput)
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrStorage            = errors.New("storage failure")
)

// Repository errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrOwnerSlotTaken  = errors.New("owner account already exists")
	ErrSessionNotFound = errors.New("session not found")
)
