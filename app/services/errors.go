package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotOwner is returned when the caller does not own the entity it
	// is trying to mutate. Controllers decide whether that surfaces as a
	// silent redirect or a 403.
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken is returned when registering or renaming to an
	// existing username.
	ErrUsernameTaken = errors.New("username already taken")
)

// ValidationError collects per-field messages for form re-rendering.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, name := range names {
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(e.Fields[name])
		b.WriteString(";")
	}
	return strings.TrimSuffix(b.String(), ";")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, message string) {
	if _, dup := e.Fields[field]; !dup {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
