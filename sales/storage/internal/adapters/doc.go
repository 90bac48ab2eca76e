// Package adapters provide database adapter implementations for the sales store.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgxpool.Pool, sql.DB (lib/pq or the modernc SQLite driver), and sqlx.DB. All adapters provide
// equivalent functionality through a common DBAdapter interface, allowing the store to work
// with any supported connection type.
package adapters
