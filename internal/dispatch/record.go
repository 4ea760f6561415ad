// Package dispatch turns any failure observed during request handling into a
// standardized Record and the HTTP status it is served with.
//
// The Dispatcher is the only place that knows how failure kinds map to
// statuses, how messages are derived, and at which level each failure is
// logged. It keeps no state between calls and is safe for concurrent use.
//
// Example response body:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "status": 404,
//	  "error": "Not Found",
//	  "message": "user 42 not found",
//	  "path": "/api/v1/users/42",
//	  "timestamp": "2025-10-14T18:04:05.123456789Z"
//	}
package dispatch

import (
	"encoding/json"
	"time"
)

// NotAvailablePath is reported as the path of failures dispatched outside of
// an HTTP request.
const NotAvailablePath = "N/A"

// TimestampLayout is RFC 3339 with a fixed nine-digit fraction. Every
// serialized timestamp has the same width, so records sort as text.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is the error body returned to clients. It is a plain value: every
// dispatch builds a fresh one and nothing mutates it afterwards.
type Record struct {
	// Status is the numeric HTTP status.
	Status int `json:"status"`
	// Error is the reason phrase for Status.
	Error string `json:"error"`
	// Message is safe to show to users; internal faults get a generic text.
	Message string `json:"message"`
	// Path is the request path, or NotAvailablePath.
	Path string `json:"path"`
	// Timestamp is when the record was built, serialized with TimestampLayout.
	Timestamp time.Time `json:"timestamp"`
}

// NewRecord builds a Record from all five fields. The timestamp is stored in
// UTC.
func NewRecord(status int, reason, message, path string, timestamp time.Time) Record {
	return Record{
		Status:    status,
		Error:     reason,
		Message:   message,
		Path:      path,
		Timestamp: timestamp.UTC(),
	}
}

// MarshalJSON writes the timestamp in UTC with TimestampLayout.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status    int    `json:"status"`
		Error     string `json:"error"`
		Message   string `json:"message"`
		Path      string `json:"path"`
		Timestamp string `json:"timestamp"`
	}{
		Status:    r.Status,
		Error:     r.Error,
		Message:   r.Message,
		Path:      r.Path,
		Timestamp: r.Timestamp.UTC().Format(TimestampLayout),
	})
}
