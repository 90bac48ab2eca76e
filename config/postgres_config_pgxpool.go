package config

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPGXPoolConfig creates a single-connection pgxpool.Config for the configured database.
func (c Config) PostgresPGXPoolConfig() (*pgxpool.Config, error) {
	const maxConnections = int32(1)
	const minConnections = int32(0)
	const defaultMaxConnLifetime = time.Hour
	const defaultHealthCheckPeriod = time.Minute

	dbConfig, err := pgxpool.ParseConfig(c.PostgresDSN())
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = maxConnections
	dbConfig.MinConns = minConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = c.DBConnectTimeout

	return dbConfig, nil
}
