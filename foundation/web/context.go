package web

import (
	"context"
	"time"
)

// ctxKey is unexported to keep context values private to this package.
type ctxKey int

const key ctxKey = 1

// Values carries request-scoped data threaded through context by Handle.
type Values struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

func setValues(ctx context.Context, v *Values) context.Context {
	return context.WithValue(ctx, key, v)
}

// GetValues returns the Values stored in ctx, or a zero-value Values if
// none were set (e.g. in tests that bypass Handle).
func GetValues(ctx context.Context) *Values {
	v, ok := ctx.Value(key).(*Values)
	if !ok {
		return &Values{TraceID: "00000000-0000-0000-0000-000000000000", Now: time.Now()}
	}
	return v
}

// GetTraceID returns the trace id from ctx, if any.
func GetTraceID(ctx context.Context) string {
	return GetValues(ctx).TraceID
}

// SetStatusCode records the HTTP status code a handler intends to
// write, so logging middleware can report it without re-parsing the
// response writer.
func SetStatusCode(ctx context.Context, statusCode int) {
	GetValues(ctx).StatusCode = statusCode
}
