// Package scan runs the zone builder across many symbols with a worker
// pool. Zone construction is pure computation with no shared state, so
// instruments are processed in parallel, each over its own input copy.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"srzones/internal/analysis/indicators"
	"srzones/internal/analysis/zones"
	"srzones/internal/logging"
	"srzones/internal/models"
	"srzones/internal/store"
)

// Input carries everything needed to evaluate one instrument.
type Input struct {
	Symbol   string
	Daily    []models.Candle
	Intraday []models.Candle
	Price    float64
	// ATR is optional; when zero it is computed from the daily series.
	ATR    float64
	Regime *models.RegimeContext
}

// Result holds the zones computed for one instrument.
type Result struct {
	Symbol    string
	Zones     []zones.Zone
	FromCache bool
}

// Sweeper fans instrument evaluations out over a worker pool, optionally
// consulting a zone cache before recomputing.
type Sweeper struct {
	builder   *zones.Builder
	workers   int
	atrPeriod int
	log       zerolog.Logger

	cache    store.ZoneStore
	cacheTTL time.Duration
}

// NewSweeper creates a sweeper with the specified number of workers.
func NewSweeper(builder *zones.Builder, workers, atrPeriod int, logger zerolog.Logger) *Sweeper {
	if workers <= 0 {
		workers = 4
	}
	if atrPeriod <= 0 {
		atrPeriod = 14
	}
	return &Sweeper{
		builder:   builder,
		workers:   workers,
		atrPeriod: atrPeriod,
		log:       logger,
	}
}

// WithCache attaches a zone store; cached results newer than ttl are
// returned without recomputation.
func (s *Sweeper) WithCache(st store.ZoneStore, ttl time.Duration) *Sweeper {
	s.cache = st
	s.cacheTTL = ttl
	return s
}

// Sweep evaluates all inputs and returns results keyed by symbol.
func (s *Sweeper) Sweep(ctx context.Context, inputs []Input) map[string]Result {
	results := make(map[string]Result, len(inputs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	work := make(chan Input, len(inputs))

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range work {
				select {
				case <-ctx.Done():
					return
				default:
					res := s.process(ctx, in)
					mu.Lock()
					results[in.Symbol] = res
					mu.Unlock()
				}
			}
		}()
	}

	started := time.Now()
	for _, in := range inputs {
		work <- in
	}
	close(work)

	wg.Wait()

	var zoneCount int
	for _, r := range results {
		zoneCount += len(r.Zones)
	}
	logging.LogSweep(logging.WithOperation(s.log, "sweep"), len(inputs), zoneCount, time.Since(started))

	return results
}

func (s *Sweeper) process(ctx context.Context, in Input) Result {
	log := logging.WithSymbol(s.log, in.Symbol)

	if s.cache != nil {
		cached, hit, err := s.cache.GetZones(ctx, in.Symbol, s.cacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("Zone cache read failed")
		} else if hit {
			return Result{Symbol: in.Symbol, Zones: cached, FromCache: true}
		}
	}

	atr := in.ATR
	if atr <= 0 {
		if v, err := indicators.LatestATR(in.Daily, s.atrPeriod); err == nil {
			atr = v
		}
	}

	zs := s.builder.Build(in.Symbol, in.Daily, in.Intraday, in.Price, atr, in.Regime)
	for _, z := range zs {
		logging.LogZone(log, in.Symbol, string(z.Kind), z.Mid, z.FinalScore, len(z.Sources))
	}

	if s.cache != nil && len(zs) > 0 {
		if err := s.cache.SaveZones(ctx, in.Symbol, in.Price, atr, zs); err != nil {
			log.Warn().Err(err).Msg("Zone cache write failed")
		}
	}

	return Result{Symbol: in.Symbol, Zones: zs}
}
