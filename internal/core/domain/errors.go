package domain

import "errors"

// Sentinel errors shared by the services and the HTTP boundary. Callers attach
// detail with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrRecordNotFound     = errors.New("record not found")
	ErrStoreUnavailable   = errors.New("store unavailable")

	// ErrDuplicateRecord is returned by a RecordRepository when an insert
	// violates the (user_id, day) uniqueness constraint. It never leaves the
	// service layer.
	ErrDuplicateRecord = errors.New("record already exists for day")
)
