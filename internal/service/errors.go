// Package service holds the business rules of the image board: who may do
// what to which image, and how accounts and sessions come to be. Persistence
// is delegated to the store package.
package service

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not logged in")
	ErrForbidden          = errors.New("not allowed")
	ErrNotFound           = errors.New("image not found")
	ErrInvalidFileType    = errors.New("invalid file type")
	ErrFileTooLarge       = errors.New("file too large")
	ErrInvalidInput       = errors.New("invalid input")
)

// InputError is a validation failure whose message is safe to show to users.
// It matches ErrInvalidInput with errors.Is.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(err error) error {
	return &InputError{Err: err}
}
