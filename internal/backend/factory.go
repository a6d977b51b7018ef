package backend

import (
	"context"
	"errors"
	"fmt"

	"spendwise/internal/amqp"
	"spendwise/internal/log"
	"spendwise/internal/store"
	"spendwise/internal/store/memory"
	"spendwise/internal/store/sqlstore"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentStore),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = f.createSQLStore(ctx, sqlstore.SQLite, config.SQLiteDBPath)
	case PostgresBackend:
		st, err = f.createSQLStore(ctx, sqlstore.Postgres, config.DatabaseURL)
	case MemoryBackend:
		st = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Store: st, Cleanup: st.Close}

	// Publishing is optional: a broker outage must not keep the API down.
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without notification publishing", log.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange)
			result.Publisher = client
			result.Cleanup = func() error {
				return errors.Join(client.Close(), st.Close())
			}
		}
	}

	return result, nil
}

func (f *DefaultFactory) createSQLStore(ctx context.Context, dialect sqlstore.Dialect, dsn string) (store.Store, error) {
	st, err := sqlstore.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", dialect, err)
	}

	f.logger.Info("Initialized SQL backend", "dialect", string(dialect))
	return st, nil
}
