package backend

import (
	"errors"
	"fmt"

	"cambio/internal/config"
)

// BackendType names a persistence implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// ParseBackendType maps the DATA_BACKEND setting onto a known type.
func ParseBackendType(raw string) (BackendType, error) {
	switch bt := BackendType(raw); bt {
	case SQLiteBackend, MemoryBackend:
		return bt, nil
	default:
		return "", fmt.Errorf("unknown data backend %q (valid: %s, %s)", raw, SQLiteBackend, MemoryBackend)
	}
}

// Config selects and parameterizes the persistence layer. The AMQP
// fields are optional: without them the sqlite backend skips export
// event publishing.
type Config struct {
	Type BackendType

	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig narrows the application config down to what backend
// construction needs, validated for the selected type.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	bt, err := ParseBackendType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Type:         bt,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields the selected backend will read.
func (c Config) Validate() error {
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("sqlite backend requires SQLITE_DB_PATH")
		}
	case MemoryBackend:
		// seeds itself, nothing to check
	default:
		return fmt.Errorf("unknown backend type: %s", c.Type)
	}
	return nil
}
