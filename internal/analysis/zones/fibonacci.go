package zones

import (
	"sort"
)

// Classic retracement ratios. The deep retracements carry more weight
// as reversal levels than the shallow ones.
var (
	fibCoreRatios  = []float64{0.500, 0.618, 0.786}
	fibOtherRatios = []float64{0.236, 0.382}
)

// swingPair is one directional high/low swing move.
type swingPair struct {
	low    Swing
	high   Swing
	upMove bool // low formed before high
}

// FibonacciSeeds derives retracement levels from the most recent swing
// pairs in each chronological direction. Levels beyond the maximum
// distance from current price are dropped; near-duplicates within an
// ATR-relative tolerance are deduplicated keeping the higher weight.
func FibonacciSeeds(swings []Swing, price, atr float64, cfg Config) []Seed {
	if price <= 0 {
		return nil
	}
	pairs := recentSwingPairs(swings, cfg.FibPairs)

	var seeds []Seed
	for _, p := range pairs {
		rng := p.high.Price - p.low.Price
		if rng <= 0 {
			continue
		}
		seeds = append(seeds, fibLevels(p, rng, price, cfg)...)
	}

	return dedupeFibSeeds(seeds, atr, cfg)
}

func fibLevels(p swingPair, rng, price float64, cfg Config) []Seed {
	var seeds []Seed
	emit := func(ratio float64, source SeedSource, weight float64) {
		var level float64
		if p.upMove {
			// Price ran low to high; retracement measures down from the high.
			level = p.high.Price - ratio*rng
		} else {
			level = p.low.Price + ratio*rng
		}
		if abs(level-price)/price > cfg.MaxSeedDistancePct {
			return
		}
		seeds = append(seeds, Seed{
			Price:  level,
			Source: source,
			Weight: weight,
			Fib: &FibMeta{
				Ratio:     ratio,
				SwingHigh: p.high.Price,
				SwingLow:  p.low.Price,
				UpMove:    p.upMove,
			},
		})
	}

	for _, r := range fibCoreRatios {
		emit(r, SourceFibCore, cfg.Weights.FibCore)
	}
	for _, r := range fibOtherRatios {
		emit(r, SourceFibOther, cfg.Weights.FibOther)
	}
	return seeds
}

// recentSwingPairs pairs each swing with the nearest preceding swing of
// the opposite type and keeps the n most recent pairs per direction.
func recentSwingPairs(swings []Swing, n int) []swingPair {
	ordered := make([]Swing, len(swings))
	copy(ordered, swings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	var upMoves, downMoves []swingPair
	for i, s := range ordered {
		// Nearest preceding opposite-type swing closes the move.
		for j := i - 1; j >= 0; j-- {
			prev := ordered[j]
			if prev.Type == s.Type {
				continue
			}
			if s.Type == SwingHigh {
				upMoves = append(upMoves, swingPair{low: prev, high: s, upMove: true})
			} else {
				downMoves = append(downMoves, swingPair{low: s, high: prev, upMove: false})
			}
			break
		}
	}

	// Pair lists are already chronological; keep the tail of each.
	if n > 0 && len(upMoves) > n {
		upMoves = upMoves[len(upMoves)-n:]
	}
	if n > 0 && len(downMoves) > n {
		downMoves = downMoves[len(downMoves)-n:]
	}
	return append(upMoves, downMoves...)
}

// dedupeFibSeeds collapses levels closer than the ATR tolerance,
// keeping the higher-weighted one.
func dedupeFibSeeds(seeds []Seed, atr float64, cfg Config) []Seed {
	if len(seeds) < 2 {
		return seeds
	}
	tolerance := cfg.FibDedupeATR * atr

	sort.SliceStable(seeds, func(i, j int) bool {
		if seeds[i].Weight != seeds[j].Weight {
			return seeds[i].Weight > seeds[j].Weight
		}
		return seeds[i].Price < seeds[j].Price
	})

	var kept []Seed
	for _, s := range seeds {
		duplicate := false
		for _, k := range kept {
			if abs(s.Price-k.Price) <= tolerance {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, s)
		}
	}
	return kept
}
