package config

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLX opens a single-connection *sqlx.DB for the configured database using lib/pq.
func (c Config) PostgresSQLX() (*sqlx.DB, error) {
	db, err := sqlx.Open(driverPostgres, c.PostgresDSN())
	if err != nil {
		return nil, err
	}

	configureSingleConnection(db.DB)

	return db, nil
}
