package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultDataURL is the public mirror of the NOAA Storm Events extract.
const DefaultDataURL = "https://d396qusza40orc.cloudfront.net/repdata%2Fdata%2FStormData.csv.bz2"

// Config holds all report settings, populated from environment variables.
type Config struct {
	DataPath         string
	DataURL          string
	DownloadTimeout  time.Duration
	TopN             int
	StrictValidation bool
	ReportOut        string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publication of the ranked report.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaReportTopic   string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	downloadTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("DOWNLOAD_TIMEOUT", "5m"))
	if err != nil || downloadTimeout <= 0 {
		return nil, errors.New("invalid DOWNLOAD_TIMEOUT")
	}

	topN, err := parseTopN()
	if err != nil {
		return nil, err
	}

	strict, err := parseBool("STRICT_VALIDATION", false)
	if err != nil {
		return nil, err
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
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

	cfg := &Config{
		DataPath:         sharedcfg.EnvOrDefault("DATA_PATH", "data/StormData.csv.bz2"),
		DataURL:          sharedcfg.EnvOrDefault("DATA_URL", DefaultDataURL),
		DownloadTimeout:  downloadTimeout,
		TopN:             topN,
		StrictValidation: strict,
		ReportOut:        os.Getenv("REPORT_OUT"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportTopic:   sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "storm-impact-report"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints. It is re-run after CLI flags
// override environment values.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.New("DATA_PATH is required")
	}
	if c.TopN <= 0 || c.TopN > maxTopN {
		return errors.New("TOP_N must be between 1 and 100")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if c.KafkaEnabled && c.KafkaReportTopic == "" {
		return errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_ENABLED is true")
	}
	return nil
}

const maxTopN = 100

func parseTopN() (int, error) {
	s := sharedcfg.EnvOrDefault("TOP_N", "10")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > maxTopN {
		return 0, errors.New("invalid TOP_N: must be an integer between 1 and 100")
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return b, nil
}
