// Package store persists daily price bars in DuckDB so repeated evaluations
// of the same symphony do not refetch history from the vendor.
package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/launchstack-dev/composer-parser/internal/types"
	"github.com/launchstack-dev/composer-parser/pkg/errors"
)

// DuckDBStore keeps one price_bars table in a DuckDB database file. An empty
// path opens an in-memory database.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore opens (or creates) the database at path and ensures the
// schema exists.
func NewDuckDBStore(path string) (*DuckDBStore, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreNotInitialized, "failed to open DuckDB connection", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS price_bars (
			id TEXT,
			time TIMESTAMP,
			ticker TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeStoreNotInitialized, "failed to create price_bars table", err)
	}

	return &DuckDBStore{db: db}, nil
}

// SaveSeries writes a full series inside one transaction, replacing any bars
// already stored for the ticker.
func (s *DuckDBStore) SaveSeries(ticker string, series types.PriceSeries) error {
	if s.db == nil {
		return errors.New(errors.ErrCodeStoreNotInitialized, "store is not open")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	if _, err = tx.Exec(`DELETE FROM price_bars WHERE ticker = ?`, ticker); err != nil {
		tx.Rollback()

		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to clear existing bars for %s", ticker)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO price_bars (id, time, ticker, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare insert", err)
	}

	for _, bar := range series {
		_, err = stmt.Exec(uuid.New().String(), bar.Time, ticker, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		if err != nil {
			stmt.Close()
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to insert bar for %s", ticker)
		}
	}

	stmt.Close()

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	return nil
}

// LoadSeries reads the stored bars for one ticker, ascending by time. A
// ticker with no bars returns an empty series, not an error.
func (s *DuckDBStore) LoadSeries(ticker string) (types.PriceSeries, error) {
	if s.db == nil {
		return nil, errors.New(errors.ErrCodeStoreNotInitialized, "store is not open")
	}

	query, args, err := sq.Select("time", "ticker", "open", "high", "low", "close", "volume").
		From("price_bars").
		Where(sq.Eq{"ticker": ticker}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to build query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataReadFailed, err, "failed to read bars for %s", ticker)
	}
	defer rows.Close()

	var series types.PriceSeries

	for rows.Next() {
		var bar types.PriceBar

		err = rows.Scan(&bar.Time, &bar.Ticker, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to scan bar", err)
		}

		series = append(series, bar)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed while iterating bars", err)
	}

	return series, nil
}

// LoadAll reads the stored series for every ticker requested. Tickers with
// no bars are omitted from the result.
func (s *DuckDBStore) LoadAll(tickers []string) (map[string]types.PriceSeries, error) {
	out := make(map[string]types.PriceSeries, len(tickers))

	for _, ticker := range tickers {
		series, err := s.LoadSeries(ticker)
		if err != nil {
			return nil, err
		}

		if len(series) > 0 {
			out[ticker] = series
		}
	}

	return out, nil
}

// Tickers lists the distinct tickers with stored bars, sorted.
func (s *DuckDBStore) Tickers() ([]string, error) {
	if s.db == nil {
		return nil, errors.New(errors.ErrCodeStoreNotInitialized, "store is not open")
	}

	query, _, err := sq.Select("DISTINCT ticker").From("price_bars").OrderBy("ticker ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to build query", err)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to list tickers", err)
	}
	defer rows.Close()

	var tickers []string

	for rows.Next() {
		var ticker string
		if err = rows.Scan(&ticker); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to scan ticker", err)
		}

		tickers = append(tickers, ticker)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed while listing tickers", err)
	}

	return tickers, nil
}

// Close releases the underlying database handle.
func (s *DuckDBStore) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}
