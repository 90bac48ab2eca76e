package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/storage/internal/adapters"
)

const (
	defaultProductsTableName     = "products"
	defaultSalesmenTableName     = "salesmen"
	defaultStoresTableName       = "stores"
	defaultSalesTableName        = "sales"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBInsertFailed         = "database insert failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgParseDecimalFailed     = "failed to parse numeric column"
	logMsgNoRowReturned          = "insert returned no row"
	logMsgPingFailed             = "store ping failed"
	logMsgSnapshotRead           = "reference snapshot read"
	logMsgStoredValuesDiverged   = "stored values diverged from synthesized values"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "store operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrTable                 = "table"
	logAttrDurationMS            = "duration_ms"
	logAttrProducts              = "products"
	logAttrSalesmen              = "salesmen"
	logAttrStores                = "stores"
	logAttrSaleID                = "sale_id"
	logAttrSynthesizedTotal      = "synthesized_total_amount"
	logAttrStoredTotal           = "stored_total_amount"
	logAttrSynthesizedStatus     = "synthesized_status"
	logAttrStoredStatus          = "stored_status"
	logActionSelect              = "select"
	logActionInsert              = "insert"
	colID                        = "id"
	colBasePrice                 = "base_price"
	colSaleID                    = "sale_id"
	colProductID                 = "product_id"
	colSalesmanID                = "salesman_id"
	colStoreID                   = "store_id"
	colQuantity                  = "quantity"
	colUnitPrice                 = "unit_price"
	colTotalAmount               = "total_amount"
	colStatus                    = "status"
	dialectPostgres              = "postgres"
	castTypeText                 = "TEXT"
)

// Store reads reference data and persists synthetic sales through one relational connection.
type Store struct {
	db                adapters.DBAdapter
	productsTableName string
	salesmenTableName string
	storesTableName   string
	salesTableName    string
	logger            sales.Logger
	metricsCollector  sales.MetricsCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, sales.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, sales.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, sales.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:                db,
		productsTableName: defaultProductsTableName,
		salesmenTableName: defaultSalesmenTableName,
		storesTableName:   defaultStoresTableName,
		salesTableName:    defaultSalesTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Ping verifies that the store answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		s.logError(logMsgPingFailed, err)
		return classifyStoreError(err)
	}

	return nil
}

// FetchProducts returns all products with their current base price.
func (s *Store) FetchProducts(ctx context.Context) ([]sales.Product, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.productsTableName).
		Select(goqu.Cast(goqu.C(colID), castTypeText), goqu.Cast(goqu.C(colBasePrice), castTypeText)).
		Order(goqu.C(colID).Asc())

	rows, err := s.query(ctx, s.productsTableName, selectStmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	products := make([]sales.Product, 0)

	for rows.Next() {
		var id, basePrice string

		if scanErr := rows.Scan(&id, &basePrice); scanErr != nil {
			s.logError(logMsgScanRowFailed, scanErr, logAttrTable, s.productsTableName)
			return nil, errors.Join(sales.ErrStoreUnavailable, scanErr)
		}

		price, parseErr := decimal.NewFromString(basePrice)
		if parseErr != nil {
			s.logError(logMsgParseDecimalFailed, parseErr, logAttrTable, s.productsTableName)
			return nil, errors.Join(sales.ErrStoreUnavailable, parseErr)
		}

		products = append(products, sales.Product{ID: id, BasePrice: price})
	}

	if iterErr := rows.Err(); iterErr != nil {
		s.logError(logMsgDBQueryFailed, iterErr, logAttrTable, s.productsTableName)
		return nil, classifyStoreError(iterErr)
	}

	return products, nil
}

// FetchSalesmen returns all salesmen.
func (s *Store) FetchSalesmen(ctx context.Context) ([]sales.Salesman, error) {
	ids, err := s.fetchIDs(ctx, s.salesmenTableName)
	if err != nil {
		return nil, err
	}

	salesmen := make([]sales.Salesman, 0, len(ids))
	for _, id := range ids {
		salesmen = append(salesmen, sales.Salesman{ID: id})
	}

	return salesmen, nil
}

// FetchStores returns all stores.
func (s *Store) FetchStores(ctx context.Context) ([]sales.Store, error) {
	ids, err := s.fetchIDs(ctx, s.storesTableName)
	if err != nil {
		return nil, err
	}

	stores := make([]sales.Store, 0, len(ids))
	for _, id := range ids {
		stores = append(stores, sales.Store{ID: id})
	}

	return stores, nil
}

// ReferenceSnapshot reads products, salesmen, and stores in that order.
// An empty table is not an error here; the synthesizer rejects empty sets.
func (s *Store) ReferenceSnapshot(ctx context.Context) (sales.ReferenceSnapshot, error) {
	products, err := s.FetchProducts(ctx)
	if err != nil {
		return sales.ReferenceSnapshot{}, err
	}

	salesmen, err := s.FetchSalesmen(ctx)
	if err != nil {
		return sales.ReferenceSnapshot{}, err
	}

	stores, err := s.FetchStores(ctx)
	if err != nil {
		return sales.ReferenceSnapshot{}, err
	}

	s.logOperation(
		logMsgSnapshotRead,
		logAttrProducts, len(products),
		logAttrSalesmen, len(salesmen),
		logAttrStores, len(stores),
	)

	return sales.ReferenceSnapshot{Products: products, Salesmen: salesmen, Stores: stores}, nil
}

// Insert persists one synthetic sale and returns it together with the store-assigned sale_id
// and the total_amount and status as the store stored them.
//
// A rejected row (e.g. a dangling foreign key) fails with ErrConstraintViolation,
// any other failure with ErrStoreUnavailable. When the stored values differ from the synthesized
// ones, this is reported through the logger and the metrics collector and the stored values are returned.
func (s *Store) Insert(ctx context.Context, sale sales.SyntheticSale) (sales.PersistedSale, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.salesTableName).
		Rows(goqu.Record{
			colProductID:   sale.ProductID,
			colSalesmanID:  sale.SalesmanID,
			colStoreID:     sale.StoreID,
			colQuantity:    sale.Quantity,
			colUnitPrice:   moneyString(sale.UnitPrice),
			colTotalAmount: moneyString(sale.TotalAmount),
			colStatus:      string(sale.Status),
		}).
		Returning(
			goqu.Cast(goqu.C(colSaleID), castTypeText),
			goqu.Cast(goqu.C(colTotalAmount), castTypeText),
			goqu.Cast(goqu.C(colStatus), castTypeText),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildInsertQueryFailed, toSQLErr, logAttrTable, s.salesTableName)
		return sales.PersistedSale{}, errors.Join(sales.ErrStoreUnavailable, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, logActionInsert, time.Since(start))

	if queryErr != nil {
		s.logError(logMsgDBInsertFailed, queryErr, logAttrQuery, sqlQuery)
		return sales.PersistedSale{}, classifyStoreError(queryErr)
	}
	defer s.closeRows(rows)

	persisted, err := s.scanInsertedRow(rows, sale)
	if err != nil {
		return sales.PersistedSale{}, err
	}

	if persisted.Diverged() {
		s.reportDivergence(persisted)
	}

	return persisted, nil
}

func (s *Store) scanInsertedRow(rows adapters.DBRows, sale sales.SyntheticSale) (sales.PersistedSale, error) {
	var saleID, storedTotal, storedStatus string
	found := false

	for rows.Next() {
		if found {
			continue
		}

		if scanErr := rows.Scan(&saleID, &storedTotal, &storedStatus); scanErr != nil {
			s.logError(logMsgScanRowFailed, scanErr, logAttrTable, s.salesTableName)
			return sales.PersistedSale{}, errors.Join(sales.ErrStoreUnavailable, scanErr)
		}

		found = true
	}

	if iterErr := rows.Err(); iterErr != nil {
		s.logError(logMsgDBInsertFailed, iterErr, logAttrTable, s.salesTableName)
		return sales.PersistedSale{}, classifyStoreError(iterErr)
	}

	if !found {
		err := fmt.Errorf("%w: %s", sales.ErrStoreUnavailable, logMsgNoRowReturned)
		s.logError(logMsgDBInsertFailed, err, logAttrTable, s.salesTableName)

		return sales.PersistedSale{}, err
	}

	total, parseErr := decimal.NewFromString(storedTotal)
	if parseErr != nil {
		s.logError(logMsgParseDecimalFailed, parseErr, logAttrSaleID, saleID)
		return sales.PersistedSale{}, errors.Join(sales.ErrStoreUnavailable, parseErr)
	}

	return sales.PersistedSale{
		SyntheticSale:     sale,
		SaleID:            saleID,
		StoredTotalAmount: total,
		StoredStatus:      sales.Status(storedStatus),
	}, nil
}

func (s *Store) fetchIDs(ctx context.Context, tableName string) ([]string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableName).
		Select(goqu.Cast(goqu.C(colID), castTypeText)).
		Order(goqu.C(colID).Asc())

	rows, err := s.query(ctx, tableName, selectStmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	ids := make([]string, 0)

	for rows.Next() {
		var id string

		if scanErr := rows.Scan(&id); scanErr != nil {
			s.logError(logMsgScanRowFailed, scanErr, logAttrTable, tableName)
			return nil, errors.Join(sales.ErrStoreUnavailable, scanErr)
		}

		ids = append(ids, id)
	}

	if iterErr := rows.Err(); iterErr != nil {
		s.logError(logMsgDBQueryFailed, iterErr, logAttrTable, tableName)
		return nil, classifyStoreError(iterErr)
	}

	return ids, nil
}

// query renders the select statement and executes it with timing information.
func (s *Store) query(ctx context.Context, tableName string, selectStmt *goqu.SelectDataset) (adapters.DBRows, error) {
	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildSelectQueryFailed, toSQLErr, logAttrTable, tableName)
		return nil, errors.Join(sales.ErrStoreUnavailable, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, logActionSelect, time.Since(start))

	if queryErr != nil {
		s.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, classifyStoreError(queryErr)
	}

	return rows, nil
}

// moneyString renders d with at least two decimal places and never rounds.
func moneyString(d decimal.Decimal) string {
	return d.StringFixed(max(2, -d.Exponent()))
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}
