package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Crowd engine.
	RecomputeInterval time.Duration
	TimeZone          *time.Location
	DefaultLat        float64
	DefaultLng        float64

	// Mapbox geocoding and POI search.
	MapboxToken     string
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// BestTime foot traffic.
	BestTimeAPIKey      string
	BestTimeTimeout     time.Duration
	BestTimeEnrich      bool
	BestTimeEnrichLimit int

	// OpenStreetMap Overpass POI search, used when Mapbox is not configured.
	OverpassEnabled bool
	OverpassURL     string
	OverpassRadius  int
	OverpassTimeout time.Duration

	// Shared place-result cache. Empty RedisAddr disables it.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	PlacesCacheTTL time.Duration

	// Snapshot sink.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// MapboxEnabled reports whether a Mapbox token is configured.
func (c *Config) MapboxEnabled() bool { return c.MapboxToken != "" }

// BestTimeEnabled reports whether a BestTime private key is configured.
func (c *Config) BestTimeEnabled() bool { return c.BestTimeAPIKey != "" }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	recomputeInterval, err := parsePositiveDuration("RECOMPUTE_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	bestTimeTimeout, err := parsePositiveDuration("BESTTIME_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	overpassTimeout, err := parsePositiveDuration("OVERPASS_TIMEOUT", "25s")
	if err != nil {
		return nil, err
	}
	placesCacheTTL, err := parsePositiveDuration("PLACES_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	tzName := sharedcfg.EnvOrDefault("CROWD_TIME_ZONE", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid CROWD_TIME_ZONE: %w", err)
	}

	defaultLat, err := parseFloat("DEFAULT_LAT", 40.7282, -90, 90)
	if err != nil {
		return nil, err
	}
	defaultLng, err := parseFloat("DEFAULT_LNG", -73.9942, -180, 180)
	if err != nil {
		return nil, err
	}

	redisDB, err := parseInt("REDIS_DB", 0, 0)
	if err != nil {
		return nil, err
	}
	overpassRadius, err := parseInt("OVERPASS_RADIUS", 1500, 1)
	if err != nil {
		return nil, err
	}
	enrichLimit, err := parseInt("BESTTIME_ENRICH_LIMIT", 10, 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RecomputeInterval: recomputeInterval,
		TimeZone:          loc,
		DefaultLat:        defaultLat,
		DefaultLng:        defaultLng,

		MapboxToken:     os.Getenv("MAPBOX_TOKEN"),
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		BestTimeAPIKey:      os.Getenv("BESTTIME_API_KEY_PRIVATE"),
		BestTimeTimeout:     bestTimeTimeout,
		BestTimeEnrich:      os.Getenv("BESTTIME_ENRICH") == "true",
		BestTimeEnrichLimit: enrichLimit,

		OverpassEnabled: os.Getenv("OVERPASS_ENABLED") == "true",
		OverpassURL:     sharedcfg.EnvOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassRadius:  overpassRadius,
		OverpassTimeout: overpassTimeout,

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		PlacesCacheTTL: placesCacheTTL,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "crowd-snapshots"),
	}

	if cfg.BestTimeEnrich && !cfg.BestTimeEnabled() {
		return nil, errors.New("BESTTIME_ENRICH is true but BESTTIME_API_KEY_PRIVATE is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required")
	}
	if cfg.OverpassEnabled && cfg.OverpassURL == "" {
		return nil, errors.New("OVERPASS_ENABLED is true but OVERPASS_URL is empty")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key string, def, lo, hi float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseInt(key string, def, minValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minValue {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
