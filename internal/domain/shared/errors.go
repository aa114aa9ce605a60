// Package shared contains the error taxonomy used across the dashboard.
// This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base kinds, matched with errors.Is.
var (
	ErrNotFound = errors.New("not found")

	ErrValidation    = errors.New("validation error")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidFormat = errors.New("invalid format")

	ErrServiceUnavailable = errors.New("service unavailable")
	ErrExternalService    = errors.New("external service error")
)

// DomainError carries where an error happened and which kind it is.
type DomainError struct {
	Domain  string // "dataset", "roster"
	Op      string // "Load", "Decode", "ParseFilter"
	Kind    error  // one of the base kinds
	Message string
	Err     error // cause, optional
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap exposes the cause, or the kind when there is none.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches the kind, the cause, and any DomainError with the same
// domain, op and message (so sentinels below match wrapped copies).
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e == t || (e.Domain == t.Domain && e.Op == t.Op && e.Message == t.Message)
	}
	return (e.Kind != nil && errors.Is(e.Kind, target)) ||
		(e.Err != nil && errors.Is(e.Err, target))
}

// NewDomainError creates a sentinel-style error without a cause.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError attaches domain context to err.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// Dataset errors
var (
	ErrDatasetUnavailable = NewDomainError("dataset", "Load", ErrServiceUnavailable, "dataset is not loaded")
	ErrMalformedDataset   = NewDomainError("dataset", "Decode", ErrInvalidFormat, "malformed dataset")
	ErrDatasetHTTPStatus  = NewDomainError("dataset", "Fetch", ErrExternalService, "unexpected HTTP status")
)

// Roster errors
var (
	ErrSchoolNotFound  = NewDomainError("roster", "SelectSchool", ErrNotFound, "school not found")
	ErrProgramNotFound = NewDomainError("roster", "SelectProgram", ErrNotFound, "program not found")
	ErrInvalidFilter   = NewDomainError("roster", "ParseFilter", ErrValidation, "unknown classification filter")
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	// KindInternal is anything unexpected.
	KindInternal Kind = iota
	// KindUnavailable means no dataset can be served; a reload may help.
	KindUnavailable
	// KindValidation means the request itself is wrong.
	KindValidation
	// KindNotFound means an unknown school or program was requested.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	}
	return "internal"
}

// KindOf classifies err. Unavailability wins: with no dataset, a lookup
// cannot tell a wrong name from a missing load.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrExternalService), errors.Is(err, ErrInvalidFormat):
		return KindUnavailable
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	}
	return KindInternal
}

// IsNotFound reports an unknown school or program.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports a rejected request parameter.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsUnavailable reports that the dataset cannot be served.
func IsUnavailable(err error) bool { return KindOf(err) == KindUnavailable }
