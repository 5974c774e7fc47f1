// Command gateway starts the API gateway service.
//
// The gateway is the single external entry point: it authenticates requests
// via API keys (SHA-256 validated against PostgreSQL), applies per-key
// rate limiting, and proxies search/autocomplete/similar/cache requests to
// the searcher service and upload requests to the ingestion service. It
// also serves a direct document-metadata endpoint and API key
// administration, both backed by PostgreSQL (spec.md §1's ambient outer
// surface, not core search scope).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scisearch/engine/internal/auth/apikey"
	"github.com/scisearch/engine/internal/auth/ratelimit"
	"github.com/scisearch/engine/internal/docstore"
	gwhandler "github.com/scisearch/engine/internal/gateway/handler"
	"github.com/scisearch/engine/internal/gateway/router"
	"github.com/scisearch/engine/pkg/config"
	"github.com/scisearch/engine/pkg/logger"
	"github.com/scisearch/engine/pkg/metrics"
	"github.com/scisearch/engine/pkg/middleware"
	"github.com/scisearch/engine/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting gateway service",
		"port", cfg.Gateway.Port,
		"ingestion_addr", cfg.Gateway.IngestionAddr,
		"searcher_addr", cfg.Gateway.SearcherAddr,
	)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs := docstore.New(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure docstore schema", "error", err)
		os.Exit(1)
	}

	validator := apikey.NewValidator(db)
	if err := validator.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure api key schema", "error", err)
		os.Exit(1)
	}
	limiter := ratelimit.New(time.Minute)

	h := gwhandler.New(gwhandler.Config{
		IngestionURL: httpURL(cfg.Gateway.IngestionAddr),
		SearcherURL:  httpURL(cfg.Gateway.SearcherAddr),
	}, docs, validator)

	m := metrics.New()
	var chain http.Handler = router.New(h, validator, limiter)
	chain = middleware.Metrics(m)(chain)

	mux := http.NewServeMux()
	mux.Handle("/", chain)
	mux.Handle("GET /metrics", metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Gateway.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("gateway service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("gateway service stopped")
}

// httpURL prepends a scheme to a bare host:port address, since
// GatewayConfig stores addresses without one.
func httpURL(addr string) string {
	if len(addr) >= 7 && (addr[:7] == "http://" || (len(addr) >= 8 && addr[:8] == "https://")) {
		return addr
	}
	return "http://" + addr
}
