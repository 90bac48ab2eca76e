package config

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// PostgresSQLDB opens a single-connection *sql.DB for the configured database using lib/pq.
// No connection is established until first use.
func (c Config) PostgresSQLDB() (*sql.DB, error) {
	db, err := sql.Open(driverPostgres, c.PostgresDSN())
	if err != nil {
		return nil, err
	}

	configureSingleConnection(db)

	return db, nil
}

// SQLiteSQLDB opens a single-connection *sql.DB for the configured SQLite file.
func (c Config) SQLiteSQLDB() (*sql.DB, error) {
	db, err := sql.Open(driverSQLite, c.SQLiteDSN())
	if err != nil {
		return nil, err
	}

	configureSingleConnection(db)

	return db, nil
}

func configureSingleConnection(db *sql.DB) {
	const maxOpenConnections = 1
	const maxIdleConnections = 1
	const defaultMaxConnLifetime = time.Hour

	db.SetMaxOpenConns(maxOpenConnections)
	db.SetMaxIdleConns(maxIdleConnections)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
}
