package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/tbourn/go-error-advice/internal/failure"
	"github.com/tbourn/go-error-advice/internal/observability"
)

// unrecognizedLabel tags catch-all failures in logs and metrics.
const unrecognizedLabel = "unrecognized"

// Resolution is the outcome of classifying a failure.
type Resolution struct {
	Kind    failure.Kind
	Status  int
	Message string
	// Recognized is false for failures that took the catch-all path.
	Recognized bool
}

// Dispatcher converts failures into Records. The zero value is not usable;
// construct one with New.
type Dispatcher struct {
	logger *zerolog.Logger
	now    func() time.Time
	locale int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used when the request context carries none.
// Without it the global zerolog logger is used.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = &l }
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithLocale sets the default language of the generic internal-fault message.
// Unsupported tags fall back to English.
func WithLocale(tag language.Tag) Option {
	return func(d *Dispatcher) { d.locale = matchLocale(d.locale, tag) }
}

// New returns a Dispatcher with English generic messages, the global logger
// and the wall clock.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{now: time.Now}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Resolve classifies err and derives its status and client message using the
// default locale.
func (d *Dispatcher) Resolve(err error) Resolution {
	return d.resolve(err, genericMessages[d.locale])
}

func (d *Dispatcher) resolve(err error, generic string) Resolution {
	f, ok := failure.From(err)
	if !ok {
		return Resolution{Kind: failure.KindInternal, Status: http.StatusInternalServerError, Message: generic}
	}

	res := Resolution{Kind: f.Kind(), Status: StatusOf(f.Kind()), Recognized: true}
	switch {
	case f.Kind() == failure.KindInternal:
		res.Message = generic
	case len(f.Fields()) > 0:
		parts := make([]string, 0, len(f.Fields()))
		for _, fe := range f.Fields() {
			parts = append(parts, fe.Field+": "+fe.Detail)
		}
		res.Message = strings.Join(parts, ", ")
	case len(f.Violations()) > 0:
		parts := make([]string, 0, len(f.Violations()))
		for _, v := range f.Violations() {
			parts = append(parts, v.PropertyPath+": "+v.Detail)
		}
		res.Message = strings.Join(parts, ", ")
	default:
		res.Message = f.Message()
	}
	return res
}

// Dispatch converts err into a Record. req may be nil when the failure did
// not originate from an HTTP request; the path is then NotAvailablePath.
//
// Every call emits exactly one log entry, increments http_errors_total and
// annotates the span active in ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, err error, req *http.Request) Record {
	if ctx == nil {
		ctx = context.Background()
	}

	locale := d.locale
	path := NotAvailablePath
	if req != nil {
		locale = requestLocale(req, d.locale)
		if req.URL != nil {
			path = req.URL.Path
		}
	}

	res := d.resolve(err, genericMessages[locale])
	rec := NewRecord(res.Status, http.StatusText(res.Status), res.Message, path, d.now())

	label := res.Kind.String()
	if !res.Recognized {
		label = unrecognizedLabel
	}
	d.log(ctx, err, res, label, rec.Path)
	errorsTotal.WithLabelValues(label, fmt.Sprint(res.Status)).Inc()
	observability.RecordFailure(ctx, err, label, res.Status, res.Message)

	return rec
}

func (d *Dispatcher) log(ctx context.Context, err error, res Resolution, label, path string) {
	ev := d.loggerFor(ctx).WithLevel(levelOf(res.Status)).
		Int("status", res.Status).
		Str("kind", label).
		Str("request_path", path)

	if !res.Recognized || res.Kind == failure.KindInternal {
		// Clients only see the generic text; keep everything here.
		ev = ev.Err(err).
			Str("detail", fmt.Sprintf("%+v", err)).
			Bytes("stack", stackOf(err))
	} else {
		ev = ev.Str("reason", res.Message)
	}
	ev.Msg("request failed")
}

// loggerFor prefers the request-scoped logger stored in ctx.
func (d *Dispatcher) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	if d.logger != nil {
		return d.logger
	}
	return &log.Logger
}

type stackTracer interface {
	StackTrace() []byte
}

// stackOf returns the stack recorded with err, or the current one.
func stackOf(err error) []byte {
	var st stackTracer
	if errors.As(err, &st) {
		return st.StackTrace()
	}
	return debug.Stack()
}
