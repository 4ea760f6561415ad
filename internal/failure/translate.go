package failure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// From classifies err into the catalog. Catalog failures anywhere in the
// chain win; otherwise a few well-known library errors are translated. The
// second result is false when err is unrecognized and must take the
// catch-all path.
func From(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		return nil, false
	}
	if fe, ok := As(err); ok {
		return fe, true
	}

	var (
		ve       validator.ValidationErrors
		syntax   *json.SyntaxError
		typeErr  *json.UnmarshalTypeError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		return Validation(FieldErrors(ve)...), true
	case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
		return Wrap(KindInvalidArgument, "malformed JSON body", err), true
	case errors.As(err, &typeErr):
		return Wrap(KindInvalidArgument, fmt.Sprintf("%s: must be %s", typeErr.Field, typeErr.Type), err), true
	case errors.Is(err, io.EOF):
		return Wrap(KindInvalidArgument, "request body is empty", err), true
	case errors.As(err, &tooLarge):
		return Wrap(KindInvalidArgument, "request body too large", err), true
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(KindNotFound, "record not found", err), true
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(KindConflict, "resource already exists", err), true
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(KindTimeout, "operation timed out", err), true
	}
	return nil, false
}

// FieldErrors converts validator output into field errors, preserving the
// order the validator reported them in. Field names follow the validator's
// registered tag name func, so with json names installed they read the same
// as the request body ("tags[1].name").
func FieldErrors(ve validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fieldPath(fe), Detail: detail(fe)})
	}
	return out
}

// fieldPath strips the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func detail(fe validator.FieldError) string {
	p := fe.Param()
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "gt":
		if p == "0" {
			return "must be positive"
		}
		return "must be greater than " + p
	case "gte":
		return "must be greater than or equal to " + p
	case "lt":
		return "must be less than " + p
	case "lte":
		return "must be less than or equal to " + p
	case "min":
		return "must be at least " + p
	case "max":
		return "must be at most " + p
	case "email":
		return "must be a well-formed email address"
	case "oneof":
		return "must be one of [" + p + "]"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
