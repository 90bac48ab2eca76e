package adapters

import "context"

// DBAdapter defines the interface for database operations needed by the sales store.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Ping(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
// Errors of lazily executed statements surface through Err after iteration.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}
