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

	assert.Equal(t, "data/StormData.csv.bz2", cfg.DataPath)
	assert.Equal(t, DefaultDataURL, cfg.DataURL)
	assert.Equal(t, 5*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, 10, cfg.TopN)
	assert.False(t, cfg.StrictValidation)
	assert.Empty(t, cfg.ReportOut)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "storm-impact-report", cfg.KafkaReportTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_PATH", "/tmp/storm.csv")
	t.Setenv("DATA_URL", "http://mirror.local/storm.csv")
	t.Setenv("DOWNLOAD_TIMEOUT", "30s")
	t.Setenv("TOP_N", "5")
	t.Setenv("STRICT_VALIDATION", "true")
	t.Setenv("REPORT_OUT", "out/report.json")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_REPORT_TOPIC", "custom-report")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/storm.csv", cfg.DataPath)
	assert.Equal(t, "http://mirror.local/storm.csv", cfg.DataURL)
	assert.Equal(t, 30*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, 5, cfg.TopN)
	assert.True(t, cfg.StrictValidation)
	assert.Equal(t, "out/report.json", cfg.ReportOut)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-report", cfg.KafkaReportTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDownloadTimeout(t *testing.T) {
	t.Setenv("DOWNLOAD_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_TIMEOUT")
}

func TestLoad_InvalidTopN(t *testing.T) {
	for _, v := range []string{"0", "-3", "ten", "101"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TOP_N", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "TOP_N")
		})
	}
}

func TestLoad_InvalidStrictValidation(t *testing.T) {
	t.Setenv("STRICT_VALIDATION", "maybe")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRICT_VALIDATION")
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

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{DataPath: "x.csv", TopN: 10, KafkaBrokers: []string{defaultBroker}, KafkaReportTopic: "r"}
	}

	require.NoError(t, base().Validate())

	c := base()
	c.DataPath = ""
	assert.ErrorContains(t, c.Validate(), "DATA_PATH")

	c = base()
	c.TopN = 0
	assert.ErrorContains(t, c.Validate(), "TOP_N")

	c = base()
	c.KafkaEnabled = true
	c.KafkaBrokers = nil
	assert.ErrorContains(t, c.Validate(), "KAFKA_BROKERS")

	c = base()
	c.KafkaEnabled = true
	c.KafkaReportTopic = ""
	assert.ErrorContains(t, c.Validate(), "KAFKA_REPORT_TOPIC")
}
