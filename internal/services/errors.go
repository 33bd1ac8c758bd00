package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCertificateType is returned by the rule catalog for a
	// certificate type it has no rule for
	ErrUnknownCertificateType = errors.New("unknown certificate type")

	// ErrNotFound is returned when a referenced property or tenancy does
	// not exist for the requesting user
	ErrNotFound = errors.New("record not found")
)

// ValidationError reports malformed or contradictory source dates, such as a
// certificate issued in the future or expiring before it was issued. It
// fails timeline generation for the offending tenancy only; other tenancies
// are unaffected.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DispatchError reports a notification transport failure for one user. The
// scheduler surfaces it in that user's run result and carries on with the
// remaining users.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return "reminder dispatch failed: " + e.Err.Error()
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
