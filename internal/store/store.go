// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"srzones/internal/analysis/zones"
	"srzones/internal/models"
)

// ZoneStore defines the interface for caching candle series and
// computed zones.
type ZoneStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol string, timeframe models.Timeframe, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol string, timeframe models.Timeframe, from, to time.Time) ([]models.Candle, error)
	GetCandlesFreshness(ctx context.Context, symbol string, timeframe models.Timeframe) (time.Time, error)

	// Zones. Cached results expire after the TTL supplied at query time;
	// the engine itself stays stateless.
	SaveZones(ctx context.Context, symbol string, price, atr float64, zs []zones.Zone) error
	GetZones(ctx context.Context, symbol string, maxAge time.Duration) ([]zones.Zone, bool, error)
	PurgeZones(ctx context.Context, olderThan time.Duration) (int64, error)

	// Lifecycle
	Close() error
}
