package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrBookNotFound           = errors.New("book not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrTicketConflict         = errors.New("ticket state conflict")
	ErrInsufficientInventory  = errors.New("insufficient inventory stock")
	ErrInsufficientShelfStock = errors.New("insufficient shelf stock")
	ErrInvalidCount           = errors.New("invalid count")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrBookInfoRequired       = errors.New("book not found and no book info provided")
	ErrRealNameRequired       = errors.New("real name required")
	ErrPasswordRequired       = errors.New("password required")
	ErrInvalidID              = errors.New("invalid id")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrTokenInvalid           = errors.New("token invalid or expired")
	ErrForbidden              = errors.New("forbidden")
	ErrTransient              = errors.New("transient storage failure")
)

// TicketStateError is the conflict reported when a compare-and-set status
// transition observes a ticket in a different state than expected. It carries
// both sides so callers can see what actually happened; errors.Is matches it
// against ErrTicketConflict.
type TicketStateError struct {
	WantStatus TicketStatus
	GotStatus  TicketStatus
	WantType   TicketType
	GotType    TicketType
}

func (e *TicketStateError) Error() string {
	if e.WantType != e.GotType {
		return fmt.Sprintf("ticket type is not %s, but %s", e.WantType, e.GotType)
	}
	return fmt.Sprintf("ticket status is not %s, but %s", e.WantStatus, e.GotStatus)
}

func (e *TicketStateError) Is(target error) bool {
	return target == ErrTicketConflict
}

// TransientError wraps storage failures that are safe to retry with backoff
// (lock timeouts, deadlocks, dropped connections). errors.Is matches it
// against ErrTransient.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// Category classifies an error for the caller's retry decision and the
// transport layer's status mapping.
type Category int

const (
	CategoryInternal Category = iota
	CategoryValidation
	CategoryNotFound
	CategoryConflict
	CategoryUnauthorized
	CategoryForbidden
	CategoryTransient
)

func CategoryOf(err error) Category {
	switch {
	case errors.Is(err, ErrInvalidCount),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrBookInfoRequired),
		errors.Is(err, ErrRealNameRequired),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrInvalidID):
		return CategoryValidation
	case errors.Is(err, ErrTicketNotFound),
		errors.Is(err, ErrBookNotFound),
		errors.Is(err, ErrUserNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrTicketConflict),
		errors.Is(err, ErrInsufficientInventory),
		errors.Is(err, ErrInsufficientShelfStock):
		return CategoryConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTokenInvalid):
		return CategoryUnauthorized
	case errors.Is(err, ErrForbidden):
		return CategoryForbidden
	case errors.Is(err, ErrTransient):
		return CategoryTransient
	default:
		return CategoryInternal
	}
}
