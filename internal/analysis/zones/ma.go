package zones

import (
	"fmt"

	"srzones/internal/analysis/indicators"
	"srzones/internal/models"
)

// AverageSeeds emits the current values of the configured trend averages
// as candidate levels: one fast EMA and several slow SMAs. Averages
// implausibly far from current price are rejected as stale inputs. The
// fast average's weight is scaled by its ATR-normalized slope bucket;
// slow averages stacked in trend order around price are flagged so the
// merger can apply the stack bonus.
func AverageSeeds(daily []models.Candle, price, atr float64, cfg Config) []Seed {
	if price <= 0 || atr <= 0 {
		return nil
	}

	var seeds []Seed

	slowValues := make([]float64, 0, len(cfg.SlowPeriods))
	slowIdx := make([]int, 0, len(cfg.SlowPeriods))
	allSlow := true

	for _, period := range cfg.SlowPeriods {
		values, err := indicators.NewSMA(period).Calculate(daily)
		if err != nil {
			allSlow = false
			continue
		}
		value := indicators.LastValid(values)
		slowValues = append(slowValues, value)
		if abs(value-price)/price > cfg.MaxAverageDistancePct {
			continue
		}
		seeds = append(seeds, Seed{
			Price:  value,
			Source: SourceMovingAverage,
			Weight: cfg.Weights.SlowAverage,
			Average: &AverageMeta{
				Name:   fmt.Sprintf("SMA_%d", period),
				Period: period,
			},
		})
		slowIdx = append(slowIdx, len(seeds)-1)
	}

	if allSlow && stackAligned(price, slowValues) {
		for _, i := range slowIdx {
			seeds[i].Average.Aligned = true
		}
	}

	if cfg.FastPeriod > 0 {
		if values, err := indicators.NewEMA(cfg.FastPeriod).Calculate(daily); err == nil {
			value := indicators.LastValid(values)
			if abs(value-price)/price <= cfg.MaxAverageDistancePct {
				factor := slopeFactor(indicators.LastSlope(values), atr, cfg)
				seeds = append(seeds, Seed{
					Price:  value,
					Source: SourceMovingAverage,
					Weight: cfg.Weights.FastAverage * factor,
					Average: &AverageMeta{
						Name:        fmt.Sprintf("EMA_%d", cfg.FastPeriod),
						Period:      cfg.FastPeriod,
						SlopeFactor: factor,
					},
				})
			}
		}
	}

	return seeds
}

// slopeFactor buckets the fast average's one-period slope, normalized by
// ATR, into flat/moderate/strong and returns the weight factor.
func slopeFactor(slope, atr float64, cfg Config) float64 {
	normalized := abs(slope) / atr
	switch {
	case normalized >= cfg.SlopeStrong:
		return cfg.SlopeStrongFactor
	case normalized >= cfg.SlopeFlat:
		return cfg.SlopeModerateFactor
	default:
		return cfg.SlopeFlatFactor
	}
}

// stackAligned reports whether the slow averages sit in strict trend
// order on one side of price: price above a descending ladder of values
// (bullish stack) or below an ascending one (bearish stack). Values are
// given shortest period first.
func stackAligned(price float64, values []float64) bool {
	if len(values) < 2 {
		return false
	}
	bullish, bearish := price > values[0], price < values[0]
	for i := 1; i < len(values); i++ {
		if values[i-1] <= values[i] {
			bullish = false
		}
		if values[i-1] >= values[i] {
			bearish = false
		}
	}
	return bullish || bearish
}
