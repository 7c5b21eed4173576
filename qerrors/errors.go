// Package qerrors provides the error taxonomy used by the consensus
// replication queue: a reference-code carrying error type with an optional
// logical-operation stack, adapted from the kit/platform/errors convention
// used throughout the wider codebase this queue lives in.
package qerrors

import (
	"fmt"
	"strings"
)

// Error codes the queue produces. Any time this set changes, check for
// switches elsewhere that exhaustively match on these.
const (
	EInternal    = "internal error"
	ENotFound    = "not found"
	EInvalid     = "invalid argument"
	EConflict    = "already tracked"
	EUnavailable = "service unavailable"
)

// Error is the error type returned by every exported queue operation that
// can fail. Code targets automated handlers so callers can branch on
// failure kind; Msg is for operators; Op and Err chain errors together into
// a logical stack trace.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

// Option configures an Error under construction.
type Option func(*Error)

// WithCode sets the error's code.
func WithCode(code string) Option {
	return func(e *Error) { e.Code = code }
}

// WithOp sets the logical operation the error occurred in.
func WithOp(op string) Option {
	return func(e *Error) { e.Op = op }
}

// WithMsg sets the human-readable message.
func WithMsg(msg string) Option {
	return func(e *Error) { e.Msg = msg }
}

// WithMsgf sets the human-readable message using a format string.
func WithMsgf(format string, args ...interface{}) Option {
	return func(e *Error) { e.Msg = fmt.Sprintf(format, args...) }
}

// WithErr sets the wrapped error.
func WithErr(err error) Option {
	return func(e *Error) { e.Err = err }
}

// New constructs an Error from the given options.
func New(opts ...Option) *Error {
	e := &Error{}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Error implements the error interface, writing out the recursive message
// chain.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(fmt.Sprintf("<%s>", e.Code))
	}
	return b.String()
}

// Unwrap lets errors.Is/errors.As see through the Err chain.
func (e *Error) Unwrap() error { return e.Err }

// Code returns the first non-empty code found walking err's *Error chain
// from the outermost error inward, or EInternal if err is not a *Error or
// no *Error in the chain carries a code.
func Code(err error) string {
	if err == nil {
		return ""
	}
	e, ok := err.(*Error)
	if !ok {
		return EInternal
	}
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Err != nil {
		return Code(e.Err)
	}
	return EInternal
}

// Op returns the logical operation of err, if available.
func Op(err error) string {
	if err == nil {
		return ""
	}
	e, ok := err.(*Error)
	if !ok || e == nil {
		return ""
	}
	if e.Op != "" {
		return e.Op
	}
	if e.Err != nil {
		return Op(e.Err)
	}
	return ""
}
