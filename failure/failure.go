// Package failure classifies the errors of the bookkeeping engine.
//
// Every error crossing a package boundary carries a Kind so callers can
// tell a corrupted backup from a missing file, or an engine misuse from a
// duplicate record:
//
//   - Data: duplicate identifiers, invalid references, malformed metadata.
//   - Validation: domain rule violations (normally kept in item error lists, not returned).
//   - Crypto: digest or signature mismatch, bad password, cipher failure.
//   - Logic: misuse of the engine, a programmer error.
//   - IO: plain read/write failures of the underlying storage.
package failure

import (
	"errors"
	"fmt"
)

// Kind is the classification of an Error.
type Kind int

const (
	Data Kind = iota + 1
	Validation
	Crypto
	Logic
	IO
)

func (k Kind) String() string {
	switch k {
	case Data:
		return "data"
	case Validation:
		return "validation"
	case Crypto:
		return "crypto"
	case Logic:
		return "logic"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a classified error. Object optionally holds the domain object
// that caused the failure, for display.
type Error struct {
	Kind   Kind
	Msg    string
	Object any
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error: " + e.Msg
	}
	return e.Kind.String() + " error: " + e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match on Kind and Msg, so that sentinel errors declared
// with New can be compared against wrapped copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

// New returns a new error of kind k.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. It returns nil if err is nil.
func Wrap(k Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: err}
}

// WithObject returns a copy of e carrying obj.
func (e *Error) WithObject(obj any) *Error {
	c := *e
	c.Object = obj
	return &c
}

// Because returns a copy of the sentinel e wrapping the cause err.
func (e *Error) Because(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// KindOf returns the Kind of the first classified error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err is classified as k.
func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// ObjectOf returns the first domain object attached in err's chain.
func ObjectOf(err error) any {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Object != nil {
			return e.Object
		}
		err = errors.Unwrap(err)
	}
	return nil
}
