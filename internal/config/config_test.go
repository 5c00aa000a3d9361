package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "nws-raw-products", cfg.KafkaSourceTopic)
	assert.Equal(t, "nws-notifications", cfg.KafkaSinkTopic)
	assert.Equal(t, "nws-ingest", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, DriverPGX, cfg.DatabaseDriver)
	assert.Empty(t, cfg.GazetteerPath)
	assert.Equal(t, 1000, cfg.LocationCacheSize)
	assert.Empty(t, cfg.NATSURL)
	assert.Empty(t, cfg.MQTTBroker)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 50, cfg.WindAlertThresholdKT)
	assert.Equal(t, 10000, cfg.ThrottleCacheSize)
	assert.Equal(t, "https://mesonet.agron.iastate.edu/p.php?pid=", cfg.NotificationBaseURL)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("DATABASE_URL", "postgres://nws@db:5432/postgis")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("GAZETTEER_PATH", "/var/lib/nws/gazetteer.db")
	t.Setenv("LOCATION_CACHE_SIZE", "250")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("MQTT_BROKER", "tcp://mqtt:1883")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("WIND_ALERT_THRESHOLD_KT", "58")
	t.Setenv("THROTTLE_CACHE_SIZE", "500")
	t.Setenv("NOTIFICATION_BASE_URL", "https://example.test/p?pid=")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, "postgres://nws@db:5432/postgis", cfg.DatabaseURL)
	assert.Equal(t, DriverPQ, cfg.DatabaseDriver)
	assert.Equal(t, "/var/lib/nws/gazetteer.db", cfg.GazetteerPath)
	assert.Equal(t, 250, cfg.LocationCacheSize)
	assert.Equal(t, "nats://nats:4222", cfg.NATSURL)
	assert.Equal(t, "tcp://mqtt:1883", cfg.MQTTBroker)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 58, cfg.WindAlertThresholdKT)
	assert.Equal(t, 500, cfg.ThrottleCacheSize)
	assert.Equal(t, "https://example.test/p?pid=", cfg.NotificationBaseURL)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidDatabaseDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestLoad_InvalidPositiveInts(t *testing.T) {
	for _, key := range []string{"LOCATION_CACHE_SIZE", "THROTTLE_CACHE_SIZE", "WIND_ALERT_THRESHOLD_KT"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "-3")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
