// Package apperr defines the error taxonomy shared by the ledger, the
// onboarding flow, authentication and the projection client.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when the addressed record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports bad input shape or range. It never reaches a
// collaborator and is not a system fault.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthKind classifies authentication failures.
type AuthKind int

const (
	AuthUnknown AuthKind = iota
	AuthInvalidCredentials
	AuthEmailInUse
	AuthInvalidInput
	AuthUnavailable
)

func (k AuthKind) String() string {
	switch k {
	case AuthInvalidCredentials:
		return "invalid_credentials"
	case AuthEmailInUse:
		return "email_in_use"
	case AuthInvalidInput:
		return "invalid_input"
	case AuthUnavailable:
		return "unavailable"
	}

	return "unknown"
}

// AuthError reports a sign-in, sign-up or sign-out failure.
type AuthError struct {
	Kind AuthKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "auth: " + e.Kind.String()
	}

	return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Auth builds an AuthError.
func Auth(kind AuthKind, err error) error {
	return &AuthError{Kind: kind, Err: err}
}

// PersistenceError reports a store read or write failure, including records
// that could not be decoded into their schema.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError for op. A nil err yields nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}

	return &PersistenceError{Op: op, Err: err}
}

// RemoteKind classifies failures of the remote projection service.
type RemoteKind int

const (
	RemoteUnknown RemoteKind = iota
	RemoteUnauthorized
	RemoteServiceUnavailable
	RemoteMalformedResponse
)

func (k RemoteKind) String() string {
	switch k {
	case RemoteUnauthorized:
		return "unauthorized"
	case RemoteServiceUnavailable:
		return "service_unavailable"
	case RemoteMalformedResponse:
		return "malformed_response"
	}

	return "unknown"
}

// RemoteServiceError reports a failure of the remote projection service.
type RemoteServiceError struct {
	Kind RemoteKind
	Err  error
}

func (e *RemoteServiceError) Error() string {
	if e.Err == nil {
		return "remote service: " + e.Kind.String()
	}

	return fmt.Sprintf("remote service: %s: %v", e.Kind, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// Remote builds a RemoteServiceError.
func Remote(kind RemoteKind, err error) error {
	return &RemoteServiceError{Kind: kind, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}

// AuthKindOf returns the kind of the AuthError in err's chain.
func AuthKindOf(err error) (AuthKind, bool) {
	var a *AuthError
	if !errors.As(err, &a) {
		return AuthUnknown, false
	}

	return a.Kind, true
}

// RemoteKindOf returns the kind of the RemoteServiceError in err's chain.
func RemoteKindOf(err error) (RemoteKind, bool) {
	var r *RemoteServiceError
	if !errors.As(err, &r) {
		return RemoteUnknown, false
	}

	return r.Kind, true
}
