// Package cli holds the startup plumbing shared by the cambio binaries:
// logger and env bootstrap, config validation, SQLite setup and the
// signal-driven shutdown sequence.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cambio/internal/config"
	"cambio/internal/log"
	"cambio/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL/LOG_FORMAT and
// installs it as the slog default, so packages logging through slog
// share the same handler.
func SetupLogger() *log.Logger {
	logger := log.New(log.FromEnv())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile reads .env when present. Local convenience only; deployed
// processes get real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig exits the process on an invalid configuration.
// A binary running with bad settings would only fail later and less
// clearly.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens (and migrates) the SQLite store, exiting on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}

	version, dirty, err := storage.SchemaVersion(dbPath)
	switch {
	case err != nil:
		logger.Warn("Could not read schema version", "error", err, "path", dbPath)
	case dirty:
		logger.Warn("Schema is dirty, a migration failed halfway",
			"path", dbPath, "schema_version", version)
	default:
		logger.Info("SQLite store ready", "path", dbPath, "schema_version", version)
	}
	return repo
}

// GracefulShutdown installs SIGINT/SIGTERM handling. On a signal it runs
// cleanup, cancels the returned context, waits a short grace period and
// then closes done. Callers block on WaitForShutdown.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer close(done)

		sig := <-sigs
		logger.Info("Shutdown signal received", "signal", sig.String())

		start := time.Now()
		if cleanup != nil {
			cleanup()
		}
		cancel()

		// Grace period for goroutines watching ctx to drain, bounded by
		// whatever cleanup left of the timeout.
		const grace = 2 * time.Second
		if timeout-time.Since(start) < grace {
			logger.Warn("Shutdown timeout reached")
			return
		}
		time.Sleep(grace)
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the shutdown sequence has finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
