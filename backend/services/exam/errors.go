package exam

import "errors"

// Service failures are sentinel errors so controllers can translate them to
// HTTP statuses with errors.Is. None of them are transient: each one means
// caller misuse or broken data, so nothing here is retried.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("already submitted")
	ErrValidation = errors.New("validation failed")
)
