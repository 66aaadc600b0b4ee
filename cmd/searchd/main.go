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

	"github.com/oooAHOYooo/ahoy-search/internal/analytics"
	"github.com/oooAHOYooo/ahoy-search/internal/catalog"
	"github.com/oooAHOYooo/ahoy-search/internal/index"
	"github.com/oooAHOYooo/ahoy-search/internal/refresh"
	"github.com/oooAHOYooo/ahoy-search/internal/search"
	"github.com/oooAHOYooo/ahoy-search/internal/search/cache"
	"github.com/oooAHOYooo/ahoy-search/internal/server"
	"github.com/oooAHOYooo/ahoy-search/pkg/config"
	"github.com/oooAHOYooo/ahoy-search/pkg/health"
	"github.com/oooAHOYooo/ahoy-search/pkg/kafka"
	"github.com/oooAHOYooo/ahoy-search/pkg/logger"
	"github.com/oooAHOYooo/ahoy-search/pkg/metrics"
	"github.com/oooAHOYooo/ahoy-search/pkg/middleware"
	"github.com/oooAHOYooo/ahoy-search/pkg/postgres"
	pkgredis "github.com/oooAHOYooo/ahoy-search/pkg/redis"
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
	slog.Info("starting catalog search service",
		"port", cfg.Server.Port,
		"catalog_source", cfg.Catalog.Source,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	var pgClient *postgres.Client
	var source catalog.Source
	switch cfg.Catalog.Source {
	case "postgres":
		pgClient, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()
		source = catalog.NewPostgresSource(pgClient)
	default:
		source = catalog.NewFileSource(cfg.Catalog)
	}

	idx := index.New()
	engine := search.NewEngine(idx, cfg.Search)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	var collector *analytics.Collector
	eventsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
	defer eventsProducer.Close()
	collector = analytics.NewCollector(eventsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.SearchEvents)

	completeProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer completeProducer.Close()

	refresher := refresh.New(idx, source, cfg.Catalog.RefreshInterval, refresh.Options{
		Cache:     queryCache,
		Producer:  completeProducer,
		Collector: collector,
		Metrics:   m,
	})

	if _, err := refresher.Rebuild(ctx, "startup"); err != nil {
		slog.Error("initial index build failed", "error", err)
		os.Exit(1)
	}
	refresher.StartLoop(ctx)

	updateConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.ContentUpdate, refresher.ContentUpdateHandler())
	go func() {
		if err := updateConsumer.Start(ctx); err != nil {
			slog.Error("content update consumer error", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		view := idx.View()
		if view.TotalDocs() > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents indexed", view.TotalDocs()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "index is empty"}
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
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	h := server.New(engine, queryCache, refresher, collector, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/reindex", h.Reindex)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	// Wait until Shutdown has drained in-flight handlers before the
	// deferred closes tear down the collector and producers.
	<-shutdownDone
	slog.Info("search service stopped")
}
