// Package web provides a thin wrapper around httptreemux adding
// context-aware handlers and a shared middleware chain.
package web

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/dimfeld/httptreemux/v5"
	"github.com/google/uuid"
)

// Handler is the signature every application handler and middleware
// must comply with, returning its error rather than writing it
// directly so common middleware can classify and log it uniformly.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(Handler) Handler

// App is the entrypoint into the application, wiring a router, a
// shutdown channel used by middleware to trigger a graceful server
// exit on unrecoverable errors, and the global middleware chain.
type App struct {
	*httptreemux.ContextMux
	shutdown chan os.Signal
	mw       []Middleware
}

// NewApp constructs an App, applying mw to every route registered
// through Handle, outermost first.
func NewApp(shutdown chan os.Signal, mw ...Middleware) *App {
	return &App{
		ContextMux: httptreemux.NewContextMux(),
		shutdown:   shutdown,
		mw:         mw,
	}
}

// SignalShutdown sends a SIGTERM to the application, used by
// middleware that detects a condition the app cannot recover from.
func (a *App) SignalShutdown() {
	a.shutdown <- syscall.SIGTERM
}

// Handle registers a handler for the given method and path, applying
// the app's global middleware plus any route-specific middleware,
// innermost (route-specific) first.
func (a *App) Handle(method string, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	h := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = setValues(ctx, &Values{TraceID: uuid.NewString(), Now: time.Now()})

		if err := handler(ctx, w, r); err != nil {
			if IsShutdown(err) {
				a.SignalShutdown()
			}
		}
	}

	a.ContextMux.Handle(method, path, h)
}

func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}
	return handler
}
