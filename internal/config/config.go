package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Supported DATABASE_DRIVER values.
const (
	DriverPGX = "pgx"
	DriverPQ  = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Persistence. An empty DatabaseURL disables record storage.
	DatabaseURL    string
	DatabaseDriver string

	// Gazetteer of stations and UGC codes.
	GazetteerPath     string
	LocationCacheSize int

	// Optional notification fan-out and shared throttle.
	NATSURL    string
	MQTTBroker string
	RedisAddr  string

	WindAlertThresholdKT int
	ThrottleCacheSize    int
	NotificationBaseURL  string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	locationCacheSize, err := parsePositiveInt("LOCATION_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	throttleCacheSize, err := parsePositiveInt("THROTTLE_CACHE_SIZE", 10000)
	if err != nil {
		return nil, err
	}
	windThreshold, err := parsePositiveInt("WIND_ALERT_THRESHOLD_KT", 50)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "nws-raw-products"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "nws-notifications"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "nws-ingest"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseDriver: sharedcfg.EnvOrDefault("DATABASE_DRIVER", DriverPGX),

		GazetteerPath:     os.Getenv("GAZETTEER_PATH"),
		LocationCacheSize: locationCacheSize,

		NATSURL:    os.Getenv("NATS_URL"),
		MQTTBroker: os.Getenv("MQTT_BROKER"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),

		WindAlertThresholdKT: windThreshold,
		ThrottleCacheSize:    throttleCacheSize,
		NotificationBaseURL:  sharedcfg.EnvOrDefault("NOTIFICATION_BASE_URL", "https://mesonet.agron.iastate.edu/p.php?pid="),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.DatabaseDriver != DriverPGX && cfg.DatabaseDriver != DriverPQ {
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want %q or %q", cfg.DatabaseDriver, DriverPGX, DriverPQ)
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}
