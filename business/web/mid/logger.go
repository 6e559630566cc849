package mid

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ardanlabs/vaultchain/foundation/web"
)

// Logger writes an entry for every request, before and after it runs.
func Logger(log *zap.SugaredLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := web.GetValues(ctx)

			log.Infow("request started", "traceid", v.TraceID, "method", r.Method, "path", r.URL.Path)

			err := handler(ctx, w, r)

			log.Infow("request completed", "traceid", v.TraceID, "method", r.Method, "path", r.URL.Path,
				"statuscode", v.StatusCode, "since", time.Since(v.Now).String())

			return err
		}

		return h
	}

	return m
}
