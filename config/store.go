package config

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/storage"
)

// StoreConnection is an opened store plus the function releasing its connection.
type StoreConnection struct {
	Store *storage.Store
	Close func()
}

// OpenStore creates the store for the configured adapter.
// The connection itself is established lazily; call Store.Ping to verify it.
func (c Config) OpenStore(ctx context.Context, options ...storage.Option) (StoreConnection, error) {
	switch c.DBAdapter {
	case AdapterPGXPool:
		poolConfig, err := c.PostgresPGXPoolConfig()
		if err != nil {
			return StoreConnection{}, fmt.Errorf("%w: %w", sales.ErrInvalidConfig, err)
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return StoreConnection{}, fmt.Errorf("%w: %w", sales.ErrFatalConnect, err)
		}

		store, err := storage.NewStoreFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return StoreConnection{}, err
		}

		return StoreConnection{Store: store, Close: pool.Close}, nil

	case AdapterSQLDB, AdapterSQLite:
		open := c.PostgresSQLDB
		if c.DBAdapter == AdapterSQLite {
			open = c.SQLiteSQLDB
		}

		db, err := open()
		if err != nil {
			return StoreConnection{}, fmt.Errorf("%w: %w", sales.ErrFatalConnect, err)
		}

		store, err := storage.NewStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return StoreConnection{}, err
		}

		return StoreConnection{Store: store, Close: func() { _ = db.Close() }}, nil

	case AdapterSQLXDB:
		db, err := c.PostgresSQLX()
		if err != nil {
			return StoreConnection{}, fmt.Errorf("%w: %w", sales.ErrFatalConnect, err)
		}

		store, err := storage.NewStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return StoreConnection{}, err
		}

		return StoreConnection{Store: store, Close: func() { _ = db.Close() }}, nil

	default:
		return StoreConnection{}, fmt.Errorf("%w: unknown DB_ADAPTER %q", sales.ErrInvalidConfig, c.DBAdapter)
	}
}
