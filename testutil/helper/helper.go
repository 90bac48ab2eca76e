package helper

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // driver import

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
)

const sqliteDriverName = "sqlite"

// Schema mirrors the production tables with the column types SQLite understands.
const Schema = `
CREATE TABLE products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	base_price NUMERIC(10,2) NOT NULL CHECK (base_price >= 0)
);
CREATE TABLE salesmen (
	id INTEGER PRIMARY KEY AUTOINCREMENT
);
CREATE TABLE stores (
	id INTEGER PRIMARY KEY AUTOINCREMENT
);
CREATE TABLE sales (
	sale_id INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id INTEGER NOT NULL REFERENCES products(id),
	salesman_id INTEGER NOT NULL REFERENCES salesmen(id),
	store_id INTEGER NOT NULL REFERENCES stores(id),
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price NUMERIC(10,2) NOT NULL,
	total_amount NUMERIC(12,2) NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED'))
);`

// SQLiteDSN builds a modernc.org/sqlite DSN for the given file with foreign keys enforced.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)"
}

// GivenSQLiteDB opens a fresh file-backed SQLite database in a temp dir and applies Schema.
// The connection pool is limited to a single connection.
func GivenSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()

	return GivenSQLiteDBAt(t, filepath.Join(t.TempDir(), "sales.db"))
}

// GivenSQLiteDBAt is GivenSQLiteDB for a caller-chosen database file.
func GivenSQLiteDBAt(t testing.TB, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open(sqliteDriverName, SQLiteDSN(path))
	require.NoError(t, err, "error in arranging test data")

	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = db.ExecContext(context.Background(), Schema)
	require.NoError(t, err, "error in arranging test data")

	return db
}

// GivenProducts inserts one product per base price and returns them in insertion order.
func GivenProducts(t testing.TB, db *sql.DB, basePrices ...string) []sales.Product {
	t.Helper()

	products := make([]sales.Product, 0, len(basePrices))

	for _, basePrice := range basePrices {
		res, err := db.ExecContext(context.Background(), "INSERT INTO products (base_price) VALUES (?)", basePrice)
		require.NoError(t, err, "error in arranging test data")

		id, err := res.LastInsertId()
		require.NoError(t, err, "error in arranging test data")

		products = append(products, sales.Product{
			ID:        strconv.FormatInt(id, 10),
			BasePrice: decimal.RequireFromString(basePrice),
		})
	}

	return products
}

// GivenSalesmen inserts numSalesmen salesmen.
func GivenSalesmen(t testing.TB, db *sql.DB, numSalesmen int) []sales.Salesman {
	t.Helper()

	salesmen := make([]sales.Salesman, 0, numSalesmen)
	for _, id := range givenIDs(t, db, "salesmen", numSalesmen) {
		salesmen = append(salesmen, sales.Salesman{ID: id})
	}

	return salesmen
}

// GivenStores inserts numStores stores.
func GivenStores(t testing.TB, db *sql.DB, numStores int) []sales.Store {
	t.Helper()

	stores := make([]sales.Store, 0, numStores)
	for _, id := range givenIDs(t, db, "stores", numStores) {
		stores = append(stores, sales.Store{ID: id})
	}

	return stores
}

// GivenReferenceData seeds products with the given base prices plus numSalesmen salesmen and numStores stores.
func GivenReferenceData(t testing.TB, db *sql.DB, numSalesmen, numStores int, basePrices ...string) sales.ReferenceSnapshot {
	t.Helper()

	return sales.ReferenceSnapshot{
		Products: GivenProducts(t, db, basePrices...),
		Salesmen: GivenSalesmen(t, db, numSalesmen),
		Stores:   GivenStores(t, db, numStores),
	}
}

// CountSales returns the number of rows in the sales table.
func CountSales(t testing.TB, db *sql.DB) int {
	t.Helper()

	var count int
	err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM sales").Scan(&count)
	require.NoError(t, err, "error in asserting test results")

	return count
}

// GetSaleIDsFromDB returns all sale ids in ascending order.
func GetSaleIDsFromDB(t testing.TB, db *sql.DB) []int64 {
	t.Helper()

	rows, err := db.QueryContext(context.Background(), "SELECT sale_id FROM sales ORDER BY sale_id")
	require.NoError(t, err, "error in asserting test results")
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id), "error in asserting test results")
		ids = append(ids, id)
	}

	require.NoError(t, rows.Err(), "error in asserting test results")

	return ids
}

func givenIDs(t testing.TB, db *sql.DB, tableName string, count int) []string {
	t.Helper()

	ids := make([]string, 0, count)

	for i := 0; i < count; i++ {
		res, err := db.ExecContext(context.Background(), "INSERT INTO "+tableName+" DEFAULT VALUES")
		require.NoError(t, err, "error in arranging test data")

		id, err := res.LastInsertId()
		require.NoError(t, err, "error in arranging test data")

		ids = append(ids, strconv.FormatInt(id, 10))
	}

	return ids
}
