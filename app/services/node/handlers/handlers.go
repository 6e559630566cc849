// Package handlers assembles this node's HTTP surface: the JSON-RPC
// facade, the gossip websocket upgrade endpoint, and a debug mux for
// health checks and profiling.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"go.uber.org/zap"

	"github.com/ardanlabs/vaultchain/app/services/node/handlers/debug/checkgrp"
	"github.com/ardanlabs/vaultchain/app/services/node/handlers/rpc"
	"github.com/ardanlabs/vaultchain/business/web/mid"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/engine"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/gossip"
	"github.com/ardanlabs/vaultchain/foundation/web"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Engine   *engine.Engine
	Gossip   *gossip.Transport
}

// PublicMux constructs the http.Handler serving the JSON-RPC facade and
// the inbound gossip upgrade endpoint.
func PublicMux(cfg MuxConfig) http.Handler {
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Panics(),
		mid.Cors("*"),
	)

	rpcHandlers := rpc.New(cfg.Log, cfg.Engine)
	app.Handle(http.MethodPost, "/", rpcHandlers.Dispatch)

	gossipHandler := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		host := r.URL.Query().Get("host")
		return cfg.Gossip.ServeHTTP(w, r, host)
	}
	app.Handle(http.MethodGet, "/gossip", gossipHandler)

	return app
}

// DebugStandardLibraryMux registers the standard library's debug
// handlers on a mux of their own, rather than the DefaultServeMux a
// dependency could silently register into.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers the standard library debug routes plus this
// service's readiness/liveness checks.
func DebugMux(build string, log *zap.SugaredLogger) http.Handler {
	mux := DebugStandardLibraryMux()

	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
