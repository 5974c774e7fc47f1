// Command ingestion starts the document ingestion service: an HTTP upload
// endpoint that validates and queues new documents, and a Kafka consumer
// that hands queued documents to the Incremental Indexer so they become
// searchable within the bounded time budget spec.md §4.J describes.
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

	"github.com/scisearch/engine/internal/analytics"
	"github.com/scisearch/engine/internal/analytics/collector"
	"github.com/scisearch/engine/internal/autocomplete"
	"github.com/scisearch/engine/internal/barrel"
	"github.com/scisearch/engine/internal/forwardindex"
	"github.com/scisearch/engine/internal/incremental"
	"github.com/scisearch/engine/internal/ingestion/consumer"
	"github.com/scisearch/engine/internal/ingestion/handler"
	"github.com/scisearch/engine/internal/ingestion/publisher"
	"github.com/scisearch/engine/internal/lexicon"
	"github.com/scisearch/engine/internal/tokenizer"
	"github.com/scisearch/engine/pkg/config"
	"github.com/scisearch/engine/pkg/kafka"
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
	slog.Info("starting ingestion service", "port", cfg.Server.Port)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
	defer producer.Close()

	pub := publisher.New(db, producer)
	if err := pub.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure idempotency schema", "error", err)
		os.Exit(1)
	}

	indexer, err := newIndexer(cfg)
	if err != nil {
		slog.Error("failed to initialize incremental indexer", "error", err)
		os.Exit(1)
	}

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	indexEvents := collector.NewBatchCollector(analyticsProducer, 100, 5*time.Second)
	indexEvents.Start(ctx)
	defer indexEvents.Close()
	track := func(evt analytics.IndexEvent) {
		indexEvents.Track("analytics", evt)
	}

	consumerHandler := consumer.HandleMessage(indexer, track)
	kafkaConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, consumerHandler)
	go func() {
		if err := kafkaConsumer.Start(ctx); err != nil {
			slog.Error("ingest consumer stopped", "error", err)
		}
	}()

	h := handler.New(pub)
	m := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/upload", h.Upload)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
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

	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestion service stopped")
}

// newIndexer loads the same on-disk lexicon, barrel index, and
// autocomplete buckets the searcher serves from, and wraps them in an
// Incremental Indexer so this process's writes and the searcher's reads
// operate on the same delta barrel files.
func newIndexer(cfg *config.Config) (*incremental.Indexer, error) {
	p := cfg.Paths
	base := p.DataDir + "/" + p.IndexesDir + "/"

	lex, err := lexicon.LoadBinary(base + p.LexiconBinaryFile)
	if err != nil {
		return nil, fmt.Errorf("loading lexicon: %w", err)
	}

	thresholds := barrel.Thresholds{
		HotDF:       cfg.Indexing.HotDFThreshold,
		WarmDF:      cfg.Indexing.WarmDFThreshold,
		WarmBarrels: cfg.Indexing.WarmBarrelCount,
		ColdBarrels: cfg.Indexing.ColdBarrelCount,
	}
	barrels, err := barrel.Open(base+p.BarrelsBinaryDir, p.DeltaBarrelBaseName, thresholds)
	if err != nil {
		return nil, fmt.Errorf("loading barrel index: %w", err)
	}

	acStore, err := autocomplete.LoadPrefixBuckets(base+p.AutocompleteFile,
		cfg.Autocomplete.TwoCharBucket, cfg.Autocomplete.ThreeCharBucket, cfg.Autocomplete.BigramBucket)
	if err != nil {
		return nil, fmt.Errorf("loading autocomplete buckets: %w", err)
	}
	if err := autocomplete.LoadNgramBuckets(acStore, base+p.NgramAutocomplete); err != nil {
		slog.Warn("n-gram autocomplete buckets unavailable", "error", err)
	}

	fwd, err := forwardindex.Load(base + p.ForwardIndexFile)
	if err != nil {
		return nil, fmt.Errorf("loading forward index: %w", err)
	}

	resolver := tokenizer.NewResolver(lex)
	builder := forwardindex.NewBuilder(resolver, cfg.Indexing.MaxBodyTerms)
	indexer := incremental.New(lex, builder, barrels, acStore, base+p.BarrelsBinaryDir, p.DeltaBarrelBaseName, base+p.LexiconBinaryFile, cfg.Indexing.IncrementalTimeout)

	docIDs := make([]string, 0, len(fwd.Records))
	for _, r := range fwd.Records {
		docIDs = append(docIDs, r.DocID)
	}
	indexer.SeedKnownDocIDs(docIDs)

	return indexer, nil
}
