package failure

import (
	"errors"
	"fmt"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field  string
	Detail string
}

// Violation is a single property-level constraint violation.
type Violation struct {
	PropertyPath string
	Detail       string
}

// Error is a catalog failure. Values are immutable once constructed: the
// accessors hand out copies and there are no setters.
type Error struct {
	kind       Kind
	msg        string
	fields     []FieldError
	violations []Violation
	cause      error
}

// New constructs a failure of the given kind carrying msg.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap constructs a failure of the given kind that keeps cause for logs and
// errors.Is/As. The cause is never shown to clients.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// Validation builds a field-level validation failure. Sub-errors keep the
// order in which they were produced.
func Validation(fields ...FieldError) *Error {
	return &Error{
		kind:   KindValidation,
		msg:    "validation failed",
		fields: append([]FieldError(nil), fields...),
	}
}

// Constraint builds a property-level constraint failure. Violations keep the
// order in which they were produced.
func Constraint(violations ...Violation) *Error {
	return &Error{
		kind:       KindConstraintViolation,
		msg:        "constraint violation",
		violations: append([]Violation(nil), violations...),
	}
}

// InvalidArgument reports a malformed or out-of-range input.
func InvalidArgument(msg string) *Error { return New(KindInvalidArgument, msg) }

// NotFound reports a missing resource.
func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// MethodNotAllowed reports an unsupported HTTP verb.
func MethodNotAllowed(msg string) *Error { return New(KindMethodNotAllowed, msg) }

// Timeout reports an operation that ran past its deadline.
func Timeout(msg string) *Error { return New(KindTimeout, msg) }

// Conflict reports a clash with the current state of a resource.
func Conflict(msg string) *Error { return New(KindConflict, msg) }

// UnprocessableEntity reports well-formed input that breaks a business rule.
func UnprocessableEntity(msg string) *Error { return New(KindUnprocessableEntity, msg) }

// Internal reports a fault whose message must not reach clients.
func Internal(msg string) *Error { return New(KindInternal, msg) }

// IllegalState reports that the service cannot take the request right now.
func IllegalState(msg string) *Error { return New(KindIllegalState, msg) }

// Kind returns the failure kind.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message given at construction.
func (e *Error) Message() string { return e.msg }

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Fields returns a copy of the field-level sub-errors.
func (e *Error) Fields() []FieldError {
	if len(e.fields) == 0 {
		return nil
	}
	return append([]FieldError(nil), e.fields...)
}

// Violations returns a copy of the constraint sub-violations.
func (e *Error) Violations() []Violation {
	if len(e.violations) == 0 {
		return nil
	}
	return append([]Violation(nil), e.violations...)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return e.kind.String() + ": " + e.msg
}

// As finds the first catalog failure in err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) && fe != nil {
		return fe, true
	}
	return nil, false
}

// PanicError carries a value recovered from a panic together with the stack
// captured at the recovery point. It is never classified into a specific
// kind, so it always takes the catch-all path.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (p *PanicError) Error() string { return fmt.Sprintf("panic: %v", p.Value) }

// StackTrace returns the stack captured when the panic was recovered.
func (p *PanicError) StackTrace() []byte { return p.Stack }
