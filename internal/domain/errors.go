package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError represents malformed or incomplete input.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return "validation failed"
	}
	return e.Reason
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for malformed input.
var ErrValidation = ValidationError{}

// PermissionDeniedError represents an authorization failure.
type PermissionDeniedError struct {
	Reason string
}

func (e PermissionDeniedError) Error() string {
	if e.Reason == "" {
		return "permission denied"
	}
	return e.Reason
}

func (e PermissionDeniedError) Is(target error) bool {
	_, ok := target.(PermissionDeniedError)
	if ok {
		return true
	}
	_, ok = target.(*PermissionDeniedError)
	return ok
}

// ErrPermissionDenied is the sentinel error for authorization failures.
var ErrPermissionDenied = PermissionDeniedError{}

// ConflictError is reserved for concurrent-switch races.
type ConflictError struct {
	Resource string
}

func (e ConflictError) Error() string {
	if e.Resource == "" {
		return "conflict"
	}
	return fmt.Sprintf("%s conflict", e.Resource)
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

// ErrConflict is the sentinel error for write races.
var ErrConflict = ConflictError{}

// TransientIOError represents a blob-store or persistence failure that the
// caller may retry. The core never retries on its own.
type TransientIOError struct {
	Op  string
	Err error
}

func (e TransientIOError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transient io error: %s", e.Op)
	}
	return fmt.Sprintf("transient io error: %s: %v", e.Op, e.Err)
}

func (e TransientIOError) Unwrap() error { return e.Err }

func (e TransientIOError) Is(target error) bool {
	_, ok := target.(TransientIOError)
	if ok {
		return true
	}
	_, ok = target.(*TransientIOError)
	return ok
}

// ErrTransientIO is the sentinel error for retryable storage failures.
var ErrTransientIO = TransientIOError{}
