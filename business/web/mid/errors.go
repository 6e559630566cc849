package mid

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ardanlabs/vaultchain/business/web/errs"
	"github.com/ardanlabs/vaultchain/foundation/web"
)

// Errors handles errors coming out of the call chain: every error is
// logged and answered with a JSON-RPC error object, carrying the
// Trusted code when a handler classified the error as Trusted and
// -32603 (internal error) otherwise.
func Errors(log *zap.SugaredLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if err := handler(ctx, w, r); err != nil {
				log.Errorw("ERROR", "traceid", web.GetTraceID(ctx), "message", err)

				var trusted *errs.Trusted
				if e := errs.GetTrusted(err); e != nil {
					trusted = e
				} else {
					trusted = &errs.Trusted{Err: err, Code: -32603}
				}

				resp := errs.Response{Code: trusted.Code, Message: trusted.Err.Error()}
				if respErr := web.Respond(ctx, w, resp, http.StatusOK); respErr != nil {
					return respErr
				}

				if web.IsShutdown(err) {
					return err
				}
			}

			return nil
		}

		return h
	}

	return m
}
