package service

import (
	"errors"
	"fmt"

	"gifstore/internal/access"
	"gifstore/internal/repository"
)

// Error kinds returned by every service operation. Callers branch with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage error")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// denied converts a policy decision into an error kind.
func denied(d access.Decision) error {
	switch d {
	case access.DenyUnauthenticated:
		return ErrUnauthenticated
	case access.DenyForbidden:
		return ErrForbidden
	default:
		return nil
	}
}

// fromRepo maps a repository error onto a service kind. Anything unexpected
// is reported as ErrStorage with the cause kept for logging.
func fromRepo(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %s", ErrConflict, what)
	default:
		return fmt.Errorf("%w: %s: %w", ErrStorage, what, err)
	}
}
