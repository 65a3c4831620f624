package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/field-medic/asset"
	"github.com/lixenwraith/field-medic/bridge"
	"github.com/lixenwraith/field-medic/config"
	"github.com/lixenwraith/field-medic/journal"
	"github.com/lixenwraith/field-medic/platform/otel"
)

const (
	serviceName     = "field-medic-bridge"
	shutdownTimeout = 10 * time.Second
)

var addrFlag = flag.String("addr", "", "Listen address, overrides FIELD_MEDIC_BRIDGE_ADDR")

func main() {
	flag.Parse()

	env, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}
	if *addrFlag != "" {
		env.BridgeAddr = *addrFlag
	}

	log, err := config.NewLogger(env.LogLevel, os.Stderr)
	if err != nil {
		config.Exitf("logging: %v", err)
	}
	slog.SetDefault(log)

	if err := run(env, log); err != nil {
		config.Exitf("%s: %v", serviceName, err)
	}
}

func run(env config.Env, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", "error", err)
		}
	}()

	scn, err := asset.LoadScenario(env.ScenarioPath)
	if err != nil {
		return err
	}

	var store *journal.Store
	if env.JournalPath != "" {
		store, err = journal.Open(env.JournalPath, log)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	srv, err := bridge.NewServer(bridge.Options{
		Scenario: scn,
		Graphs:   asset.Graphs{Dir: env.GraphDir},
		Interval: env.TickInterval,
		Journal:  store,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/session", srv)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpSrv := &http.Server{
		Addr:              env.BridgeAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("bridge listening", "addr", env.BridgeAddr, "scenario", scn.Name)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("bridge shutting down", "sessions", srv.Sessions())
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by http.Server
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	return srv.Close(sctx)
}
