package config

import (
	"net"
	"net/url"
	"strconv"
)

// PostgresDSN returns the postgres:// DSN for the configured database.
func (c Config) PostgresDSN() string {
	query := url.Values{}
	query.Set("sslmode", c.DBSSLMode)
	query.Set("connect_timeout", strconv.Itoa(int(c.DBConnectTimeout.Seconds())))

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// SQLiteDSN returns the modernc.org/sqlite DSN for the configured file with foreign keys enforced.
func (c Config) SQLiteDSN() string {
	return "file:" + c.SQLitePath + "?_pragma=foreign_keys(1)"
}
