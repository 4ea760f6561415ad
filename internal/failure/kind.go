// Package failure defines the closed catalog of failure kinds that any layer
// of a service may raise. A failure carries a kind and a single message; it
// deliberately knows nothing about HTTP. Status codes, reason phrases and log
// severity are assigned by the dispatch package, so new kinds can be added
// here without touching response formatting.
package failure

// Kind tags a category of failure. The set is closed: every value below is
// mapped to exactly one status by the dispatcher.
type Kind uint8

const (
	// KindInternal is any uncategorized or unexpected failure.
	KindInternal Kind = iota
	// KindValidation is a declarative field-constraint violation.
	KindValidation
	// KindConstraintViolation is a property-level constraint violation.
	KindConstraintViolation
	// KindInvalidArgument is a caller-supplied argument failing a precondition.
	KindInvalidArgument
	// KindNotFound is a referenced resource that does not exist.
	KindNotFound
	// KindMethodNotAllowed is a request using an unsupported verb.
	KindMethodNotAllowed
	// KindTimeout is an operation that did not finish in its allotted time.
	KindTimeout
	// KindConflict is a request conflicting with current resource state.
	KindConflict
	// KindUnprocessableEntity is a well-formed but semantically invalid request.
	KindUnprocessableEntity
	// KindIllegalState is a system or resource state that cannot serve the request.
	KindIllegalState
)

var kindNames = [...]string{
	KindInternal:            "internal",
	KindValidation:          "validation",
	KindConstraintViolation: "constraint_violation",
	KindInvalidArgument:     "invalid_argument",
	KindNotFound:            "not_found",
	KindMethodNotAllowed:    "method_not_allowed",
	KindTimeout:             "timeout",
	KindConflict:            "conflict",
	KindUnprocessableEntity: "unprocessable_entity",
	KindIllegalState:        "illegal_state",
}

// String returns the snake_case name of the kind, suitable for log fields
// and metric labels.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds returns every kind in the catalog in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}
