package services

import (
	"errors"
	"fmt"

	"catering-backend/internal/repositories"
	"catering-backend/internal/validation"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("too many requests")
)

// Error messages surfaced to clients as-is.
type serviceError struct {
	kind error
	msg  string
}

func (e *serviceError) Error() string        { return e.msg }
func (e *serviceError) Is(target error) bool { return target == e.kind }

func invalid(format string, args ...any) error {
	return &serviceError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func rateLimited(format string, args ...any) error {
	return &serviceError{kind: ErrRateLimited, msg: fmt.Sprintf(format, args...)}
}

func invalidErrs(errs validation.Errors) error {
	if errs.Empty() {
		return nil
	}
	return &serviceError{kind: ErrValidation, msg: errs.Error()}
}

func notFound(what string) error {
	return &serviceError{kind: ErrNotFound, msg: what + " not found"}
}

func unauthorized(msg string) error {
	return &serviceError{kind: ErrUnauthorized, msg: msg}
}

func forbidden(msg string) error {
	return &serviceError{kind: ErrForbidden, msg: msg}
}

func conflict(format string, args ...any) error {
	return &serviceError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// lookup maps a repository miss to a not-found error for what.
func lookup(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(what)
	}
	return err
}
