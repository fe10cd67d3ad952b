package services

import "errors"

// Sentinel errors for the domain taxonomy. Handlers map them onto HTTP
// status codes with errors.Is; the concrete message comes from the wrapping
// DomainError.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

// DomainError pairs one of the sentinel errors with a human-readable
// message surfaced to the client.
type DomainError struct {
	kind error
	msg  string
}

func (e *DomainError) Error() string { return e.msg }

func (e *DomainError) Unwrap() error { return e.kind }

func notFound(msg string) error { return &DomainError{kind: ErrNotFound, msg: msg} }

func forbidden(msg string) error { return &DomainError{kind: ErrForbidden, msg: msg} }

func conflict(msg string) error { return &DomainError{kind: ErrConflict, msg: msg} }
