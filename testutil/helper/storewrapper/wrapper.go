package storewrapper

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales/storage"
	"github.com/AntonStoeckl/synthetic-sales-generator/testutil/helper"
)

// Adapter type constants
const (
	TypeSQLDB  = "sql.db"
	TypeSQLXDB = "sqlx.db"
)

// AdapterTypes lists every adapter type a Wrapper can be created for.
var AdapterTypes = []string{TypeSQLDB, TypeSQLXDB}

// Wrapper interface to abstract over different adapter types
type Wrapper interface {
	GetStore() *storage.Store
	DB() *sql.DB
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db    *sql.DB
	store *storage.Store
}

func (w *SQLDBWrapper) GetStore() *storage.Store {
	return w.store
}

func (w *SQLDBWrapper) DB() *sql.DB {
	return w.db
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db    *sqlx.DB
	store *storage.Store
}

func (w *SQLXWrapper) GetStore() *storage.Store {
	return w.store
}

func (w *SQLXWrapper) DB() *sql.DB {
	return w.db.DB
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the environment variable
func CreateWrapperWithTestConfig(t testing.TB, options ...storage.Option) Wrapper {
	return CreateWrapper(t, strings.ToLower(os.Getenv("ADAPTER_TYPE")), options...)
}

// CreateWrapper creates a wrapper for the given adapter type over a fresh SQLite fixture database.
func CreateWrapper(t testing.TB, adapterType string, options ...storage.Option) Wrapper {
	db := helper.GivenSQLiteDB(t)

	switch adapterType {
	case TypeSQLDB, "":
		store, err := storage.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating the store in test setup")

		return &SQLDBWrapper{db: db, store: store}

	case TypeSQLXDB:
		sqlxDB := sqlx.NewDb(db, "sqlite")
		store, err := storage.NewStoreFromSQLX(sqlxDB, options...)
		require.NoError(t, err, "error creating the store in test setup")

		return &SQLXWrapper{db: sqlxDB, store: store}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type: %s", adapterType))
	}
}
