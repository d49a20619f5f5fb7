package zones

import (
	"math"

	"github.com/rs/zerolog"

	"srzones/internal/models"
)

// Builder orchestrates the seed detectors and the confluence merge for a
// single instrument. It holds only configuration and a logger; every
// Build call is an independent, deterministic computation over its
// inputs, so one Builder may serve concurrent invocations.
type Builder struct {
	cfg Config
	log zerolog.Logger
}

// NewBuilder creates a zone builder with the given configuration.
func NewBuilder(cfg Config, logger zerolog.Logger) *Builder {
	return &Builder{cfg: cfg, log: logger}
}

// Build runs all seed detectors over the supplied series and returns
// merged, scored zones sorted strongest first. The intraday series is
// optional; without it gap detection is skipped. A missing or
// non-positive ATR makes zone construction meaningless and yields an
// empty list, which callers cannot distinguish from "evaluated, no
// zones found" except by this documentation. The input series are never
// mutated.
func (b *Builder) Build(symbol string, daily, intraday []models.Candle, price, atr float64, regime *models.RegimeContext) []Zone {
	zones := []Zone{}
	log := b.log.With().Str("symbol", symbol).Logger()

	if atr <= 0 || math.IsNaN(atr) || math.IsInf(atr, 0) {
		log.Warn().Float64("atr", atr).Msg("Invalid ATR, cannot build zones")
		return zones
	}
	if price <= 0 || math.IsNaN(price) {
		log.Warn().Float64("price", price).Msg("Invalid price, cannot build zones")
		return zones
	}

	seeds := b.collectSeeds(log, daily, intraday, price, atr)
	if len(seeds) == 0 {
		log.Debug().Msg("No candidate seeds")
		return zones
	}

	zones = MergeSeeds(seeds, price, atr, b.cfg)
	zones = ScoreZones(zones, price, atr, regime, b.cfg)

	log.Debug().
		Int("seeds", len(seeds)).
		Int("zones", len(zones)).
		Msg("Zone build complete")
	return zones
}

// collectSeeds runs each detector and accumulates whatever it produced.
// A detector returning nothing contributes zero seeds; the pipeline
// continues with the rest.
func (b *Builder) collectSeeds(log zerolog.Logger, daily, intraday []models.Candle, price, atr float64) []Seed {
	var seeds []Seed

	swings := DetectSwings(daily, b.cfg)
	if len(swings) == 0 {
		log.Debug().Int("bars", len(daily)).Msg("No swings detected")
	}

	swingSeeds := SwingSeeds(swings, price, b.cfg)
	seeds = append(seeds, swingSeeds...)

	fibSeeds := FibonacciSeeds(swings, price, atr, b.cfg)
	seeds = append(seeds, fibSeeds...)

	diagSeeds := DiagonalSeeds(daily, swings, price, b.cfg)
	seeds = append(seeds, diagSeeds...)

	avgSeeds := AverageSeeds(daily, price, atr, b.cfg)
	seeds = append(seeds, avgSeeds...)

	var gapSeeds []Seed
	if len(intraday) > 0 {
		gaps := DetectGaps(intraday, atr, b.cfg)
		gapSeeds = GapSeeds(gaps, price, b.cfg)
		seeds = append(seeds, gapSeeds...)
	} else {
		log.Debug().Msg("No intraday series, skipping gap detection")
	}

	log.Debug().
		Int("swing", len(swingSeeds)).
		Int("fib", len(fibSeeds)).
		Int("diagonal", len(diagSeeds)).
		Int("average", len(avgSeeds)).
		Int("gap", len(gapSeeds)).
		Msg("Seed detection complete")
	return seeds
}
