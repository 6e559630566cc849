// Command vaultnode runs a single blockchain node: the chain engine,
// its gossip transport, and the JSON-RPC facade that exposes it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"

	"github.com/ardanlabs/vaultchain/app/services/node/handlers"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/engine"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/gossip"
	"github.com/ardanlabs/vaultchain/foundation/logger"
)

// build is the git version of this program, set at build time with -ldflags.
var build = "develop"

func main() {
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		State struct {
			DataDir     string        `conf:"default:zblock/"`
			GenesisFile string        `conf:"default:"`
			KnownPeers  []string      `conf:"default:"`
			MineEvery   time.Duration `conf:"default:0s"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(`     _    ____  ____    _    _   _    ____  _     ___   ____ _  ______ _   _    _    ___ _   _  `)
	fmt.Println(`    / \  |  _ \|  _ \  / \  | \ | |  | __ )| |   / _ \ / ___| |/ / ___| | | |  / \  |_ _| \ | | `)
	fmt.Println(`   / _ \ | |_) | | | |/ _ \ |  \| |  |  _ \| |  | | | | |   | ' / |   | |_| | / _ \  | ||  \| | `)
	fmt.Println(`  / ___ \|  _ <| |_| / ___ \| |\  |  | |_) | |__| |_| | |___| . \ |___|  _  |/ ___ \ | || |\  | `)
	fmt.Println(` /_/   \_\_| \_\____/_/   \_\_| \_|  |____/|_____\___/ \____|_|\_\____|_| |_/_/   \_\___|_| \_| `)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Chain Engine, Gossip Transport

	gen, err := genesis.Load(cfg.State.GenesisFile)
	if err != nil {
		return fmt.Errorf("loading genesis: %w", err)
	}

	eng, err := engine.New(engine.Config{
		Genesis:  gen,
		ChainDir: cfg.State.DataDir + "chain",
		BlobDir:  cfg.State.DataDir + "vault",
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("starting chain engine: %w", err)
	}
	defer eng.Close()

	transport := gossip.New(log, nodeGossipHandler{eng: eng, log: log})
	eng.SetBroadcaster(transport)

	for _, host := range cfg.State.KnownPeers {
		if err := transport.Dial(host); err != nil {
			log.Warnw("startup", "status", "unable to dial peer", "peer", host, "ERROR", err)
		}
	}

	if cfg.State.MineEvery > 0 {
		go runMiningLoop(log, eng, cfg.State.MineEvery)
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log)
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service (JSON-RPC + gossip upgrade)

	log.Infow("startup", "status", "initializing public API support")

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Engine:   eng,
		Gossip:   transport,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		eng.CancelMining()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// runMiningLoop repeatedly mines a block from whatever is pending in the
// mempool, pausing interval between attempts. A zero-transaction mempool
// still produces a block, matching the engine's reference semantics; an
// operator wanting idle nodes to stay quiet should raise MineEvery well
// past their expected transaction arrival rate instead.
func runMiningLoop(log *zap.SugaredLogger, eng *engine.Engine, interval time.Duration) {
	for {
		block, err := eng.MineBlock(context.Background())
		if err != nil {
			log.Warnw("mining", "status", "attempt failed", "ERROR", err)
		} else {
			log.Infow("mining", "status", "block mined", "height", block.Header.Height, "hash", block.Hash().String())
		}
		time.Sleep(interval)
	}
}

// nodeGossipHandler adapts the chain engine's error-returning accept
// methods to gossip.Handler's fire-and-forget signature: a rejected
// peer message is logged and dropped rather than propagated, since
// there is no caller left on the other end of a websocket read loop to
// hand the error back to.
type nodeGossipHandler struct {
	eng *engine.Engine
	log *zap.SugaredLogger
}

func (h nodeGossipHandler) HandleTransaction(tx database.Transaction) {
	if err := h.eng.AcceptGossipedTransaction(tx); err != nil {
		h.log.Warnw("gossip", "status", "rejected transaction", "hash", tx.Hash().String(), "ERROR", err)
	}
}

func (h nodeGossipHandler) HandleBlock(block database.Block) {
	if err := h.eng.AddBlock(block); err != nil {
		h.log.Warnw("gossip", "status", "rejected block", "height", block.Header.Height, "ERROR", err)
	}
}
