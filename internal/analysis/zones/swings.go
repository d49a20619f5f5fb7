package zones

import (
	"sort"

	"srzones/internal/models"
)

// SwingType distinguishes pivot highs from pivot lows.
type SwingType string

const (
	SwingHigh SwingType = "high"
	SwingLow  SwingType = "low"
)

// Swing is a detected pivot point.
type Swing struct {
	Index    int
	BarsAgo  int
	Price    float64
	Type     SwingType
	Strength float64 // percent distance from the surrounding window average
}

// DetectSwings locates pivot highs and lows using a symmetric lookback
// window. A bar is a swing high when its high exceeds the high of every
// bar within the window on both sides; swing lows mirror the rule.
// Each type is pruned to the cfg.MaxSwings strongest pivots; the combined
// result is ordered most recent first, then by strength. Series shorter
// than 2*window+1 bars yield an empty result.
func DetectSwings(candles []models.Candle, cfg Config) []Swing {
	w := cfg.SwingWindow
	if w <= 0 || len(candles) < 2*w+1 {
		return nil
	}

	var highs, lows []Swing
	last := len(candles) - 1

	for i := w; i <= last-w; i++ {
		isHigh, isLow := true, true
		for j := i - w; j <= i+w; j++ {
			if j == i {
				continue
			}
			if candles[j].High >= candles[i].High {
				isHigh = false
			}
			if candles[j].Low <= candles[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}

		if isHigh {
			highs = append(highs, Swing{
				Index:    i,
				BarsAgo:  last - i,
				Price:    candles[i].High,
				Type:     SwingHigh,
				Strength: pivotStrength(candles, i, w, SwingHigh),
			})
		}
		if isLow {
			lows = append(lows, Swing{
				Index:    i,
				BarsAgo:  last - i,
				Price:    candles[i].Low,
				Type:     SwingLow,
				Strength: pivotStrength(candles, i, w, SwingLow),
			})
		}
	}

	swings := append(pruneSwings(highs, cfg.MaxSwings), pruneSwings(lows, cfg.MaxSwings)...)
	sort.SliceStable(swings, func(i, j int) bool {
		if swings[i].BarsAgo != swings[j].BarsAgo {
			return swings[i].BarsAgo < swings[j].BarsAgo
		}
		return swings[i].Strength > swings[j].Strength
	})
	return swings
}

// pivotStrength measures how far the pivot sticks out from the average
// of the surrounding window, as a percentage.
func pivotStrength(candles []models.Candle, i, w int, t SwingType) float64 {
	var total float64
	var count int
	for j := i - w; j <= i+w; j++ {
		if j == i {
			continue
		}
		if t == SwingHigh {
			total += candles[j].High
		} else {
			total += candles[j].Low
		}
		count++
	}
	if count == 0 {
		return 0
	}
	avg := total / float64(count)
	if avg == 0 {
		return 0
	}
	var pivot float64
	if t == SwingHigh {
		pivot = candles[i].High
	} else {
		pivot = candles[i].Low
	}
	return abs(pivot-avg) / avg * 100
}

// pruneSwings keeps the n strongest swings of one type.
func pruneSwings(swings []Swing, n int) []Swing {
	if n <= 0 || len(swings) <= n {
		return swings
	}
	sort.SliceStable(swings, func(i, j int) bool {
		return swings[i].Strength > swings[j].Strength
	})
	return swings[:n]
}

// SwingSeeds converts detected swings into candidate seeds, dropping any
// pivot too far from current price.
func SwingSeeds(swings []Swing, price float64, cfg Config) []Seed {
	var seeds []Seed
	for _, s := range swings {
		if price <= 0 || abs(s.Price-price)/price > cfg.MaxSeedDistancePct {
			continue
		}
		source := SourceSwingHigh
		if s.Type == SwingLow {
			source = SourceSwingLow
		}
		seeds = append(seeds, Seed{
			Price:  s.Price,
			Source: source,
			Weight: cfg.Weights.Swing,
			Swing:  &SwingMeta{BarsAgo: s.BarsAgo, Strength: s.Strength},
		})
	}
	return seeds
}
