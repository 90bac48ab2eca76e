// Package storewrapper provides an abstraction layer for testing the sales store with different database adapters.
//
// This package allows the same tests to run against sql.DB and sqlx.DB connections over a SQLite
// fixture database, either selected through the ADAPTER_TYPE environment variable or iterated explicitly.
package storewrapper
