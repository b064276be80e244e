package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for key := range defaults {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_FILE", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"localhost:19092"}, cfg.KafkaBrokers)
	assert.Equal(t, "rmt.risk.scored", cfg.KafkaTopicRisk)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 8*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("KAFKA_TOPIC_SUBMISSIONS", "rmt.custom")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "30")
	t.Setenv("SHUTDOWN_TIMEOUT", "2m")
	t.Setenv("LOG_FORMAT", "Console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "rmt.custom", cfg.KafkaTopicSubmissions)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Minute, cfg.ShutdownTimeout)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadFallsBackOnBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "soon")
	t.Setenv("SHUTDOWN_TIMEOUT", "later")
	t.Setenv("KAFKA_BROKERS", " , ")
	t.Setenv("HTTP_ADDR", "   ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 8*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"localhost:19092"}, cfg.KafkaBrokers)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "rmt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"http_addr: \":7070\"\nkafka_topic_risk: rmt.file.risk\nrequest_timeout_seconds: 45\nlog_level: debug\n",
	), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "rmt.file.risk", cfg.KafkaTopicRisk)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "warn", cfg.LogLevel, "environment overrides the file")
}

func TestLoadRejectsBrokenConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "rmt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: [unclosed\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}
