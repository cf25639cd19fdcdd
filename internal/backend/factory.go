package backend

import (
	"context"
	"fmt"

	"cambio/internal/adapters"
	"cambio/internal/amqp"
	"cambio/internal/log"
	"cambio/internal/report/memory"
	"cambio/internal/services"
	"cambio/internal/storage"
)

type factory struct {
	logger *log.Logger
}

// NewFactory returns the standard Factory. A nil logger falls back to
// the default logging configuration.
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &factory{logger: logger}
}

func (f *factory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	switch config.Type {
	case SQLiteBackend:
		return f.sqlite(config)
	case MemoryBackend:
		return f.memory(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// sqlite wires repository, ledger service and optional AMQP export
// publishing into one backend.
func (f *factory) sqlite(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}

	var publisher *amqp.Client
	if config.AMQPURL != "" {
		publisher, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("AMQP unavailable, export events disabled", "error", err)
		} else {
			f.logger.Info("AMQP export events enabled",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	ledger := services.NewLedgerService(repo, publisher)

	f.logger.Info("SQLite backend ready",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Backend: adapters.NewSQLiteAdapter(repo, ledger),
		Cleanup: ledger.Close,
	}, nil
}

func (f *factory) memory() *BackendResult {
	f.logger.Info("In-memory backend ready with seed data")
	return &BackendResult{Backend: memory.NewSeeded()}
}
