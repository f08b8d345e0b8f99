package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure leaving the core is one of these (or wraps one).
var (
	ErrNotAuthorized   = errors.New("not authorized")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRateLimited     = errors.New("too many failed login attempts")
)

// Refinements of the kinds above; errors.Is matches both the refinement and its kind.
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrNotAuthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrNotAuthorized)
	ErrForbidden          = fmt.Errorf("%w: access forbidden", ErrNotAuthorized)
	ErrWrongPassword      = fmt.Errorf("%w: current password does not match", ErrNotAuthorized)

	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrUsernameTaken    = fmt.Errorf("username %w", ErrAlreadyExists)
	ErrEmailTaken       = fmt.Errorf("email %w", ErrAlreadyExists)
	ErrPasswordReused   = fmt.Errorf("new password must differ from the current one: %w", ErrAlreadyExists)
	ErrUnknownCountry   = fmt.Errorf("%w: unknown country", ErrInvalidArgument)
	ErrInternal         = fmt.Errorf("%w: request could not be processed", ErrInvalidArgument)
	ErrInvalidOperation = fmt.Errorf("%w: unsupported operation", ErrInvalidArgument)
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string { return f.Field + ": " + f.Message }

// ValidationError carries every violation found on an input, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.String())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is makes a ValidationError match ErrInvalidArgument.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Details returns the field messages in "field: message" form.
func (e *ValidationError) Details() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.String())
	}
	return out
}
