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

	"github.com/couchcryptid/crowdmap-service/internal/adapter/besttime"
	httpadapter "github.com/couchcryptid/crowdmap-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/crowdmap-service/internal/adapter/kafka"
	"github.com/couchcryptid/crowdmap-service/internal/adapter/mapbox"
	"github.com/couchcryptid/crowdmap-service/internal/adapter/overpass"
	redisadapter "github.com/couchcryptid/crowdmap-service/internal/adapter/redis"
	"github.com/couchcryptid/crowdmap-service/internal/config"
	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/observability"
	"github.com/couchcryptid/crowdmap-service/internal/pipeline"
	"github.com/couchcryptid/crowdmap-service/internal/places"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var placeOpts []places.Option

	// Geocoding and POI search (feature-flagged via MAPBOX_TOKEN, with
	// Overpass as the keyless alternative for POI search).
	var geocoder domain.Geocoder
	switch {
	case cfg.MapboxEnabled():
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		placeOpts = append(placeOpts, places.WithSearcher(client))
		logger.Info("mapbox enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	case cfg.OverpassEnabled:
		searcher := overpass.NewSearcher(cfg.OverpassURL, cfg.OverpassRadius, cfg.OverpassTimeout, logger, metrics)
		placeOpts = append(placeOpts, places.WithSearcher(searcher))
		logger.Info("overpass POI search enabled", "url", cfg.OverpassURL, "radius_m", cfg.OverpassRadius)
	default:
		logger.Info("no POI provider configured, serving demo places")
	}
	metrics.ProviderEnabled.WithLabelValues("mapbox").Set(boolGauge(cfg.MapboxEnabled()))
	metrics.ProviderEnabled.WithLabelValues("overpass").Set(boolGauge(!cfg.MapboxEnabled() && cfg.OverpassEnabled))

	// Live foot traffic (BESTTIME_API_KEY_PRIVATE, enrichment behind BESTTIME_ENRICH).
	var bestTime httpadapter.BestTime
	if cfg.BestTimeEnabled() {
		client := besttime.NewClient(cfg.BestTimeAPIKey, cfg.BestTimeTimeout, logger, metrics)
		bestTime = client
		if cfg.BestTimeEnrich {
			placeOpts = append(placeOpts, places.WithOccupancy(client, cfg.BestTimeEnrichLimit))
		}
		logger.Info("besttime enabled", "enrich", cfg.BestTimeEnrich, "enrich_limit", cfg.BestTimeEnrichLimit)
	}
	metrics.ProviderEnabled.WithLabelValues("besttime").Set(boolGauge(cfg.BestTimeEnabled()))

	// Shared place cache (REDIS_ADDR).
	var placeCache *redisadapter.PlaceCache
	if cfg.RedisAddr != "" {
		placeCache = redisadapter.NewPlaceCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.PlacesCacheTTL, logger)
		placeOpts = append(placeOpts, places.WithCache(placeCache))

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := placeCache.CheckReadiness(pingCtx); err != nil {
			logger.Warn("redis unreachable, place cache will miss until it recovers", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
	}
	metrics.ProviderEnabled.WithLabelValues("redis").Set(boolGauge(placeCache != nil))

	svc := places.NewService(logger, metrics, placeOpts...)
	estimator := domain.NewEstimator(clockwork.NewRealClock(), domain.NewRandSource(), cfg.TimeZone)

	// Snapshot sink (KAFKA_ENABLED).
	var sink pipeline.SnapshotSink = pipeline.NopSink{}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("kafka snapshot sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSnapshotTopic)
	}
	metrics.ProviderEnabled.WithLabelValues("kafka").Set(boolGauge(writer != nil))

	initial := pipeline.Selection{Latitude: cfg.DefaultLat, Longitude: cfg.DefaultLng, Filter: domain.FilterAll}
	p := pipeline.New(places.NewLatest(svc), estimator, sink, clockwork.NewRealClock(), cfg.RecomputeInterval, initial, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Places:    svc,
		Estimator: estimator,
		Tracker:   p,
		Geocoder:  geocoder,
		BestTime:  bestTime,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start recompute pipeline.
	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
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
	select {
	case <-pipelineDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if placeCache != nil {
		if err := placeCache.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
