// Package storage provides the relational store the sales generator reads its reference data from
// and writes synthetic sales into.
//
// Queries are built with goqu using the postgres dialect. Numeric columns are read back as text and
// parsed into decimal.Decimal so that no precision is lost between the database and the generator.
// The store works with pgxpool.Pool, sql.DB (lib/pq or SQLite), and sqlx.DB connections.
package storage
