// Package errs defines the single error kind raised by the automate core.
//
// Core failures carry a fully formatted message and a Kind that tells callers which
// family the failure belongs to. Callers never retry: a core error aborts the command.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a core failure
type Kind int

const (
	// KindValidation covers structural and validation failures (duplicate names,
	// reserved names, invalid values, malformed expressions, bad version instructions)
	KindValidation Kind = iota
	// KindNotFound covers missing patterns, toolkits, drafts and schema nodes
	KindNotFound
	// KindCompatibility covers runtime/toolkit and draft/toolkit version mismatches
	KindCompatibility
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindCompatibility:
		return "compatibility"
	default:
		return "unknown"
	}
}

// Error is the core error kind
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an error of the given kind with a formatted message
func New(kind Kind, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg}
}

// Validation creates a structural/validation error
func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

// NotFound creates a not-found error
func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

// Compatibility creates a version compatibility error
func Compatibility(format string, args ...interface{}) *Error {
	return New(KindCompatibility, format, args...)
}

// KindOf returns the kind of the first core error in err's chain
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return is(err, KindValidation) }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsCompatibility reports whether err is a compatibility error
func IsCompatibility(err error) bool { return is(err, KindCompatibility) }
