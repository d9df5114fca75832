// Package apperrors classifies the failures the device can recover from.
//
// Every failure maps to one Kind, and every Kind has a fixed fallback:
//   - Store: persisted record could not be read or written; treated as absent and logged
//   - Transport: network failure or timeout; the status falls back to no data or provisioning
//   - Protocol: malformed health response; handled exactly like Transport
//   - Config: rejected credentials at the portal; never reaches the credential store
package apperrors

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind int

const (
	KindStore Kind = iota
	KindTransport
	KindProtocol
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindStore:
		return "store error"
	case KindTransport:
		return "transport error"
	case KindProtocol:
		return "protocol error"
	case KindConfig:
		return "config error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Error carries the Kind, the failed operation and the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Store wraps a persistence failure.
func Store(op string, err error) error {
	return &Error{Kind: KindStore, Op: op, Err: err}
}

// Transport wraps a network or timeout failure.
func Transport(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// Protocol wraps a malformed response.
func Protocol(op string, err error) error {
	return &Error{Kind: KindProtocol, Op: op, Err: err}
}

// Config wraps invalid submitted credentials.
func Config(op string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

// Is reports whether any error in err's chain is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
