package seed

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yomariano/futurezxyback/internal/model"
	"github.com/yomariano/futurezxyback/internal/store"
)

// SQLite seeds from a local candle archive, for offline runs and tests.
// The database is opened read-only; this process never writes history.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the archive at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("seed: open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: archive ping: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Load returns up to the series cap of bars for the pair, newest-first.
func (s *SQLite) Load(ctx context.Context, symbol string, tf model.Timeframe) ([]model.Candle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT open_time, open, high, low, close, volume
		   FROM candles
		  WHERE symbol = ? AND timeframe = ?
		  ORDER BY open_time DESC
		  LIMIT ?`,
		symbol, string(tf), store.MaxBars)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []model.Candle
	for rows.Next() {
		var c model.Candle
		if err := rows.Scan(&c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}
