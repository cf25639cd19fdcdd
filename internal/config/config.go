// Package config loads the runtime configuration from the
// environment, with defaults tuned for a local single-user setup.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cambio/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (optional; empty URL routes export events through the SQLite
	// queue instead)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export target (optional; empty spreadsheet ID disables
	// the export). Credentials and sheet names are read by the sheets
	// client itself.
	GoogleSpreadsheetID string

	// Dashboard
	DisplayCurrency string

	// Worker
	ExportBatchSize   int
	ExportInterval    time.Duration
	RecurringInterval time.Duration

	// Geocoder
	GeocoderBaseURL   string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration

	// Backend selection
	DataBackend string
}

func Load() *Config {
	return &Config{
		Port:         envOr("PORT", "8081"),
		SQLiteDBPath: envOr("SQLITE_DB_PATH", "./data/cambio.db"),

		AMQPURL:      envOr("AMQP_URL", ""),
		AMQPExchange: envOr("AMQP_EXCHANGE", "cambio"),
		AMQPQueue:    envOr("AMQP_QUEUE", "export_entries"),

		GoogleSpreadsheetID: envOr("GOOGLE_SPREADSHEET_ID", ""),

		DisplayCurrency: core.NormalizeCurrencyCode(envOr("DISPLAY_CURRENCY", "EUR")),

		ExportBatchSize:   envIntOr("EXPORT_BATCH_SIZE", 10),
		ExportInterval:    envDurationOr("EXPORT_INTERVAL", 30*time.Second),
		RecurringInterval: envDurationOr("RECURRING_INTERVAL", 1*time.Hour),

		GeocoderBaseURL:   envOr("GEOCODER_BASE_URL", ""),
		GeocoderUserAgent: envOr("GEOCODER_USER_AGENT", "cambio"),
		GeocoderTimeout:   envDurationOr("GEOCODER_TIMEOUT", 5*time.Second),

		DataBackend: envOr("DATA_BACKEND", "sqlite"),
	}
}

// Validate reports every problem at once so a broken deployment shows
// the full picture in a single error.
func (c *Config) Validate() error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		fail("PORT %q is not a valid TCP port", c.Port)
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			fail("SQLITE_DB_PATH is required with the sqlite backend")
		} else if err := ensureParentDir(c.SQLiteDBPath); err != nil {
			fail("SQLITE_DB_PATH directory: %v", err)
		}
	case "memory":
	default:
		fail("DATA_BACKEND %q is not one of sqlite, memory", c.DataBackend)
	}

	if c.AMQPURL != "" {
		u, err := url.Parse(c.AMQPURL)
		switch {
		case err != nil:
			fail("AMQP_URL %q: %v", c.AMQPURL, err)
		case u.Scheme != "amqp" && u.Scheme != "amqps":
			fail("AMQP_URL scheme %q: want amqp or amqps", u.Scheme)
		}
		if c.AMQPExchange == "" {
			fail("AMQP_EXCHANGE is required when AMQP_URL is set")
		}
		if c.AMQPQueue == "" {
			fail("AMQP_QUEUE is required when AMQP_URL is set")
		}
	}

	if !core.ValidCurrencyCode(c.DisplayCurrency) {
		fail("DISPLAY_CURRENCY %q is not a currency code", c.DisplayCurrency)
	}

	if c.ExportBatchSize < 1 || c.ExportBatchSize > 1000 {
		fail("EXPORT_BATCH_SIZE %d: want 1..1000", c.ExportBatchSize)
	}
	if c.ExportInterval < time.Second || c.ExportInterval > 24*time.Hour {
		fail("EXPORT_INTERVAL %v: want 1s..24h", c.ExportInterval)
	}
	if c.RecurringInterval < time.Minute || c.RecurringInterval > 7*24*time.Hour {
		fail("RECURRING_INTERVAL %v: want 1m..168h", c.RecurringInterval)
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ensureParentDir creates the database directory when missing so a
// first run on a fresh volume needs no manual setup.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
