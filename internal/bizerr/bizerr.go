// Package bizerr gives the core's error taxonomy a typed home: invalid
// input, precondition failures, session conflicts, LLM budget limits,
// transient collaborator failures, and fatal startup errors.
package bizerr

import "errors"

// Code classifies an error for the event-handler translation layer.
type Code int

const (
	// CodeInvalidInput is an argument parse failure.
	CodeInvalidInput Code = iota
	// CodePrecondition is a typed reason like already_claimed_today or
	// insufficient_credits.
	CodePrecondition
	// CodeConflict is a concurrent session/race; the action did no mutation.
	CodeConflict
	// CodeBudget is an LLM monthly budget cap hit.
	CodeBudget
	// CodeTransient is a collaborator I/O failure (network/HTTP).
	CodeTransient
	// CodeFatal is store corruption or migration failure at startup.
	CodeFatal
)

func (c Code) String() string {
	switch c {
	case CodeInvalidInput:
		return "invalid_input"
	case CodePrecondition:
		return "precondition"
	case CodeConflict:
		return "conflict"
	case CodeBudget:
		return "budget"
	case CodeTransient:
		return "transient"
	case CodeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a code-tagged error with a machine-checkable reason string,
// e.g. reason="already_claimed_today" for CodePrecondition.
type Error struct {
	Code   Code
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code.String() + ":" + e.Reason + ": " + e.Err.Error()
	}
	return e.Code.String() + ":" + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a bizerr with no wrapped cause.
func New(code Code, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

// Wrap builds a bizerr around an underlying error.
func Wrap(code Code, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// Invalid is a shorthand for a CodeInvalidInput error.
func Invalid(reason string) *Error { return New(CodeInvalidInput, reason) }

// Precondition is a shorthand for a CodePrecondition error.
func Precondition(reason string) *Error { return New(CodePrecondition, reason) }

// Busy is the Conflict error the spec requires concurrent session starts
// to return to the loser.
func Busy() *Error { return New(CodeConflict, "busy") }

// Reason extracts the reason string of a bizerr, or "" if err isn't one.
func Reason(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Reason
	}
	return ""
}

// CodeOf extracts the Code of a bizerr, defaulting to CodeFatal for any
// error that wasn't constructed through this package.
func CodeOf(err error) Code {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeFatal
}
