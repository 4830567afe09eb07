// Package config loads engine configuration from a .env file and
// environment variables. Priority: ENV > .env file > defaults.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// FeedMode selects how executed trades reach the market data feed.
const (
	FeedOff    = "off"    // no publishing
	FeedDirect = "direct" // fire-and-forget kafka-go producer
	FeedOutbox = "outbox" // pebble outbox drained by sarama
)

type Config struct {
	// TickScale is the number of decimal places one price tick carries.
	TickScale int32

	ExportDir  string
	AutoExport bool

	ArchiveDir string
	FeedMode   string

	KafkaBrokers []string
	KafkaTopic   string

	MetricsAddr string
	LogLevel    string
}

func Default() Config {
	return Config{
		TickScale:    2,
		ExportDir:    "./exports",
		AutoExport:   false,
		ArchiveDir:   "./archive",
		FeedMode:     FeedOff,
		KafkaBrokers: []string{"localhost:9092"},
		KafkaTopic:   "trades",
		MetricsAddr:  ":9100",
		LogLevel:     "info",
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("ENGINE_TICK_SCALE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.TickScale = int32(n)
		}
	}
	if v := os.Getenv("ENGINE_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv("ENGINE_AUTO_EXPORT"); v != "" {
		cfg.AutoExport = v == "true"
	}
	if v := os.Getenv("ENGINE_ARCHIVE_DIR"); v != "" {
		cfg.ArchiveDir = v
	}
	if v := os.Getenv("ENGINE_FEED_MODE"); v != "" {
		switch v {
		case FeedOff, FeedDirect, FeedOutbox:
			cfg.FeedMode = v
		}
	}
	if v := os.Getenv("ENGINE_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ENGINE_KAFKA_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}
	if v := os.Getenv("ENGINE_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("ENGINE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}
