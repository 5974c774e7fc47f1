// Command searcher runs the persistent query service: it loads the lexicon,
// barrel index, embeddings store, autocomplete buckets, and document
// authority store once at startup, then serves search, autocomplete, and
// similarity lookups over both an HTTP facade and the internal RPC layer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scisearch/engine/internal/analytics"
	analyticsstore "github.com/scisearch/engine/internal/analytics/aggregator"
	"github.com/scisearch/engine/internal/autocomplete"
	"github.com/scisearch/engine/internal/barrel"
	"github.com/scisearch/engine/internal/docstore"
	"github.com/scisearch/engine/internal/embeddings"
	"github.com/scisearch/engine/internal/forwardindex"
	"github.com/scisearch/engine/internal/lexicon"
	"github.com/scisearch/engine/internal/query"
	"github.com/scisearch/engine/pkg/config"
	"github.com/scisearch/engine/pkg/grpc"
	"github.com/scisearch/engine/pkg/health"
	"github.com/scisearch/engine/pkg/kafka"
	"github.com/scisearch/engine/pkg/logger"
	"github.com/scisearch/engine/pkg/metrics"
	"github.com/scisearch/engine/pkg/middleware"
	"github.com/scisearch/engine/pkg/postgres"
	"github.com/scisearch/engine/pkg/proto"
	pkgredis "github.com/scisearch/engine/pkg/redis"
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
	slog.Info("starting searcher service", "port", cfg.Server.Port, "rpc_port", cfg.Server.RPCPort)

	lex, barrels, embStore, acStore, fwd, err := loadIndexes(cfg)
	if err != nil {
		slog.Error("failed to load indexes", "error", err)
		os.Exit(1)
	}
	defer barrels.Close()
	slog.Info("indexes loaded",
		"lexicon_size", lex.Size(),
		"documents", fwd.DocumentCount(),
		"semantic_enabled", embStore.Enabled(),
	)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	docs := docstore.New(db)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := docs.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure docstore schema", "error", err)
		os.Exit(1)
	}

	var queryCache *query.Cache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = query.NewCache(redisClient, cfg.Redis)
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	corpus := query.CorpusStatsFromForwardIndex(fwd)
	params := query.Params{
		BM25:              query.BM25Params{K1: cfg.Query.BM25K1, B: cfg.Query.BM25B},
		TopK:              cfg.Query.TopK,
		SemanticThreshold: cfg.Query.SemanticThreshold,
		ExpansionWeight:   cfg.Query.ExpansionWeight,
		TopSimilarWords:   cfg.Query.TopSimilarWords,
		WeightBM25:        cfg.Query.WeightBM25,
		WeightSemantic:    cfg.Query.WeightSemantic,
		WeightAuthority:   cfg.Query.WeightAuthority,
	}
	engine := query.New(lex, barrels, embStore, acStore, docs, corpus, params)

	m := metrics.New()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	collector := analytics.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	var aggregator *analytics.Aggregator
	analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, func(ctx context.Context, key, value []byte) error {
		return analytics.HandleEvent(aggregator)(ctx, key, value)
	})
	aggregator = analytics.NewAggregator(analyticsConsumer)
	go func() {
		if err := aggregator.Start(ctx); err != nil {
			slog.Error("analytics aggregator stopped", "error", err)
		}
	}()
	analyticsHandler := analytics.NewHandler(aggregator)

	snapshotStore := analyticsstore.NewStore(db)
	if err := snapshotStore.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure analytics snapshot schema", "error", err)
		os.Exit(1)
	}
	const analyticsSnapshotInterval = 5 * time.Minute
	snapshotStore.StartPeriodicSave(ctx, aggregator, analyticsSnapshotInterval)

	checker := health.NewChecker()
	checker.Register("barrel_index", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("lexicon size %d", lex.Size())}
	})
	checker.Register("embeddings", func(ctx context.Context) health.ComponentHealth {
		if embStore.Enabled() {
			return health.ComponentHealth{Status: health.StatusUp}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "semantic expansion disabled"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	rpcServer := registerRPC(engine, queryCache, collector)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.RPCPort)
		if err := rpcServer.Serve(addr); err != nil {
			slog.Error("rpc server stopped", "error", err)
		}
	}()
	defer rpcServer.Stop()

	h := newHTTPHandler(engine, queryCache, collector, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/autocomplete", h.Autocomplete)
	mux.HandleFunc("GET /api/v1/similar", h.Similar)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
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

	slog.Info("searcher service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("searcher service stopped")
}

// loadIndexes reads every on-disk artifact the query engine needs, in the
// order spec.md §2's offline build pipeline produces them.
func loadIndexes(cfg *config.Config) (*lexicon.Lexicon, *barrel.Index, *embeddings.Store, *autocomplete.Store, *forwardindex.Index, error) {
	p := cfg.Paths
	base := p.DataDir + "/" + p.IndexesDir + "/"

	lex, err := lexicon.LoadBinary(base + p.LexiconBinaryFile)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("loading lexicon: %w", err)
	}

	thresholds := barrel.Thresholds{
		HotDF:       cfg.Indexing.HotDFThreshold,
		WarmDF:      cfg.Indexing.WarmDFThreshold,
		WarmBarrels: cfg.Indexing.WarmBarrelCount,
		ColdBarrels: cfg.Indexing.ColdBarrelCount,
	}
	barrels, err := barrel.Open(base+p.BarrelsBinaryDir, p.DeltaBarrelBaseName, thresholds)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("loading barrel index: %w", err)
	}

	vocab, err := embeddings.LoadVocab(base + p.VocabFile)
	var embStore *embeddings.Store
	if err != nil {
		slog.Warn("vocab unavailable, semantic expansion disabled", "error", err)
		embStore = &embeddings.Store{}
	} else {
		embStore, err = embeddings.Load(base+p.EmbeddingsBinFile, vocab)
		if err != nil {
			slog.Warn("embeddings unavailable, semantic expansion disabled", "error", err)
			embStore = &embeddings.Store{}
		}
	}

	acStore, err := autocomplete.LoadPrefixBuckets(base+p.AutocompleteFile,
		cfg.Autocomplete.TwoCharBucket, cfg.Autocomplete.ThreeCharBucket, cfg.Autocomplete.BigramBucket)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("loading autocomplete buckets: %w", err)
	}
	if err := autocomplete.LoadNgramBuckets(acStore, base+p.NgramAutocomplete); err != nil {
		slog.Warn("n-gram autocomplete buckets unavailable", "error", err)
	}

	fwd, err := forwardindex.Load(base + p.ForwardIndexFile)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("loading forward index: %w", err)
	}

	return lex, barrels, embStore, acStore, fwd, nil
}

// registerRPC wires the query engine's operations onto the internal
// JSON-over-TCP service, the "local request channel" SPEC_FULL.md §5.8
// calls for.
func registerRPC(engine *query.Engine, cache *query.Cache, collector *analytics.Collector) *grpc.Server {
	s := grpc.NewServer()
	s.Register("SearchService.Search", func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.SearchRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		return executeSearch(ctx, engine, cache, collector, req)
	})
	s.Register("AutocompleteService.Autocomplete", func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.AutocompleteRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		return autocompleteResponse(engine, req), nil
	})
	s.Register("SimilarityService.Similar", func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.SimilarRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		return similarResponse(engine, req), nil
	})
	return s
}
