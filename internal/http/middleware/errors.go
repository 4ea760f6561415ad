// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file installs the dispatcher as the single exit point for failures.
// Handlers never format error bodies themselves: they record the failure with
// c.Error (or panic), and ErrorHandler turns it into the standard record.
//
//   - The last error recorded on the context is the terminal failure.
//   - Panics are recovered, wrapped as *failure.PanicError with the stack of
//     the recovery point, and always served as a generic 500.
//   - When a handler already started the response, the failure is still
//     dispatched (and logged) but nothing more is written.
//
// Place ErrorHandler after RequestID() and Logger() so the dispatcher logs
// with the request-scoped logger, and so access logs and metrics observe the
// final status.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-error-advice/internal/dispatch"
	"github.com/tbourn/go-error-advice/internal/failure"
)

// ErrorHandler returns middleware that converts failures escaping downstream
// handlers into dispatch records.
func ErrorHandler(d *dispatch.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				perr := &failure.PanicError{Value: rec, Stack: debug.Stack()}
				_ = c.Error(perr)
				respond(c, d, perr)
			}
		}()

		c.Next()

		if last := c.Errors.Last(); last != nil {
			respond(c, d, last.Err)
		}
	}
}

func respond(c *gin.Context, d *dispatch.Dispatcher, err error) {
	rec := d.Dispatch(c.Request.Context(), err, c.Request)
	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(rec.Status, rec)
}

// NoRoute reports unmatched routes as NotFound failures.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(failure.NotFound("route not found"))
	}
}

// NoMethod reports unsupported verbs as MethodNotAllowed failures.
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(failure.MethodNotAllowed("method not allowed: " + c.Request.Method))
	}
}
