package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/nws-text-ingest/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/nws-text-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/nws-text-ingest/internal/adapter/mqttpub"
	"github.com/couchcryptid/nws-text-ingest/internal/adapter/natspub"
	"github.com/couchcryptid/nws-text-ingest/internal/adapter/postgres"
	"github.com/couchcryptid/nws-text-ingest/internal/cache"
	"github.com/couchcryptid/nws-text-ingest/internal/config"
	"github.com/couchcryptid/nws-text-ingest/internal/domain"
	"github.com/couchcryptid/nws-text-ingest/internal/gazetteer"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/dispatch"
	"github.com/couchcryptid/nws-text-ingest/internal/observability"
	"github.com/couchcryptid/nws-text-ingest/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Gazetteer (optional; without it SIGMET and METAR locations stay unresolved).
	var locations gazetteer.Provider
	if cfg.GazetteerPath != "" {
		g, err := gazetteer.Open(cfg.GazetteerPath, logger)
		if err != nil {
			logger.Error("failed to open gazetteer", "error", err)
			os.Exit(1)
		}
		defer g.Close()
		locations = gazetteer.NewCached(g, cfg.LocationCacheSize, metrics.LocationCache)
		logger.Info("gazetteer loaded", "path", cfg.GazetteerPath, "cache_size", cfg.LocationCacheSize)
	} else {
		logger.Warn("GAZETTEER_PATH not set, station and UGC lookups disabled")
	}

	// Throttle (shared through Redis when several instances run).
	var throttle cache.Throttle = cache.NewMemoryThrottle(cfg.ThrottleCacheSize)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		throttle = cache.NewRedisThrottle(rdb, "nws-ingest:throttle:", 24*time.Hour)
		logger.Info("redis throttle enabled", "addr", cfg.RedisAddr)
	}

	deps := dispatch.Deps{
		BaseURL:       cfg.NotificationBaseURL,
		WindThreshold: cfg.WindAlertThresholdKT,
	}
	if locations != nil {
		deps.Locations, deps.UGCs = locations, locations
	}
	dispatcher := dispatch.NewDefault(deps)
	logger.Info("parsers registered", "parsers", dispatcher.Names())

	ready := httpadapter.AllReady{}

	// Persistence (optional).
	var store pipeline.RecordStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Open(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.EnsureYears(ctx, domain.Now()); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		go pg.KeepSchema(ctx, clockwork.NewRealClock(), time.Hour)
		store = pg
		ready = append(ready, pg)
	} else {
		logger.Warn("DATABASE_URL not set, records will not be stored")
	}

	// Notification sinks.
	writer := kafkaadapter.NewWriter(cfg, logger)
	publishers := []pipeline.Publisher{writer}
	if cfg.NATSURL != "" {
		np, err := natspub.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		defer np.Close()
		publishers = append(publishers, np)
	}
	if cfg.MQTTBroker != "" {
		host, _ := os.Hostname()
		mp, err := mqttpub.Connect(cfg.MQTTBroker, cfg.KafkaGroupID+"-"+host, logger)
		if err != nil {
			logger.Error("failed to connect to mqtt broker", "error", err)
			os.Exit(1)
		}
		defer mp.Close()
		publishers = append(publishers, mp)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	transformer := pipeline.NewTransformer(dispatcher, logger)
	loader := pipeline.NewLoader(store, throttle, logger, metrics, publishers...)

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)
	ready = append(ready, p)

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, dispatcher, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingest pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
