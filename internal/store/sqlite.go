// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"srzones/internal/analysis/zones"
	"srzones/internal/models"
)

// SQLiteStore implements ZoneStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based zone store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for historical OHLCV data
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);

	-- Zone runs: one row per computed zone set
	CREATE TABLE IF NOT EXISTS zone_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL UNIQUE,
		price REAL NOT NULL,
		atr REAL NOT NULL,
		computed_at DATETIME NOT NULL
	);

	-- Zones table: members of a run
	CREATE TABLE IF NOT EXISTS zone_levels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		low REAL NOT NULL,
		mid REAL NOT NULL,
		high REAL NOT NULL,
		sources TEXT NOT NULL,
		source_weights TEXT NOT NULL,
		base_score REAL NOT NULL,
		final_score REAL NOT NULL,
		distance REAL NOT NULL,
		distance_atr REAL NOT NULL,
		FOREIGN KEY (run_id) REFERENCES zone_runs(id) ON DELETE CASCADE
	);

	-- Create indexes for performance
	CREATE INDEX IF NOT EXISTS idx_candles_symbol_timeframe ON candles(symbol, timeframe);
	CREATE INDEX IF NOT EXISTS idx_candles_timestamp ON candles(timestamp);
	CREATE INDEX IF NOT EXISTS idx_zone_runs_computed ON zone_runs(computed_at);
	CREATE INDEX IF NOT EXISTS idx_zone_levels_run ON zone_levels(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCandles saves candles to the database.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol string, timeframe models.Timeframe, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, string(timeframe), c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCandles retrieves candles from the database.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, timeframe models.Timeframe, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timeframe = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, string(timeframe), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}

// GetCandlesFreshness returns the timestamp of the most recent candle.
func (s *SQLiteStore) GetCandlesFreshness(ctx context.Context, symbol string, timeframe models.Timeframe) (time.Time, error) {
	var timestamp sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp) FROM candles WHERE symbol = ? AND timeframe = ?
	`, symbol, string(timeframe)).Scan(&timestamp)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("failed to get candles freshness: %w", err)
	}
	if !timestamp.Valid {
		return time.Time{}, nil
	}
	return timestamp.Time, nil
}

// SaveZones replaces the cached zone set for a symbol.
func (s *SQLiteStore) SaveZones(ctx context.Context, symbol string, price, atr float64, zs []zones.Zone) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM zone_levels WHERE run_id IN (SELECT id FROM zone_runs WHERE symbol = ?)
	`, symbol); err != nil {
		return fmt.Errorf("failed to clear zone levels: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM zone_runs WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("failed to clear zone run: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO zone_runs (symbol, price, atr, computed_at) VALUES (?, ?, ?, ?)
	`, symbol, price, atr, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert zone run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO zone_levels (run_id, kind, low, mid, high, sources, source_weights, base_score, final_score, distance, distance_atr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, z := range zs {
		sources, _ := json.Marshal(z.Sources)
		weights, _ := json.Marshal(z.SourceWeights)
		_, err := stmt.ExecContext(ctx, runID, string(z.Kind), z.Low, z.Mid, z.High,
			string(sources), string(weights), z.BaseScore, z.FinalScore,
			z.DistanceFromPrice, z.DistanceATR)
		if err != nil {
			return fmt.Errorf("failed to insert zone: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetZones returns the cached zone set for a symbol if one exists and is
// newer than maxAge. The second return value reports a cache hit.
func (s *SQLiteStore) GetZones(ctx context.Context, symbol string, maxAge time.Duration) ([]zones.Zone, bool, error) {
	var runID int64
	var computedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT id, computed_at FROM zone_runs WHERE symbol = ?
	`, symbol).Scan(&runID, &computedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query zone run: %w", err)
	}
	if maxAge > 0 && time.Since(computedAt) > maxAge {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, low, mid, high, sources, source_weights, base_score, final_score, distance, distance_atr
		FROM zone_levels WHERE run_id = ? ORDER BY final_score DESC
	`, runID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	zs := []zones.Zone{}
	for rows.Next() {
		var z zones.Zone
		var kind, sources, weights string
		if err := rows.Scan(&kind, &z.Low, &z.Mid, &z.High, &sources, &weights,
			&z.BaseScore, &z.FinalScore, &z.DistanceFromPrice, &z.DistanceATR); err != nil {
			return nil, false, fmt.Errorf("failed to scan zone: %w", err)
		}
		z.Kind = zones.ZoneKind(kind)
		if err := json.Unmarshal([]byte(sources), &z.Sources); err != nil {
			return nil, false, fmt.Errorf("failed to decode sources: %w", err)
		}
		if err := json.Unmarshal([]byte(weights), &z.SourceWeights); err != nil {
			return nil, false, fmt.Errorf("failed to decode source weights: %w", err)
		}
		zs = append(zs, z)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating zones: %w", err)
	}

	return zs, true, nil
}

// PurgeZones removes cached zone sets older than the given age and
// returns the number of runs removed.
func (s *SQLiteStore) PurgeZones(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM zone_levels WHERE run_id IN (SELECT id FROM zone_runs WHERE computed_at < ?)
	`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to purge zone levels: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM zone_runs WHERE computed_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge zone runs: %w", err)
	}
	return res.RowsAffected()
}
