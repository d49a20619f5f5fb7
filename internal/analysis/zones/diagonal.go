package zones

import (
	"math"
	"sort"

	"srzones/internal/models"
)

// DiagonalSeeds fits trendlines through same-type swing pairs and emits
// the projection of each valid line at the most recent bar. A line is
// valid only when its normalized slope falls inside the configured degree
// band and no candle body between the anchors crosses it. Ascending lines
// come from swing lows (support), descending lines from swing highs
// (resistance).
func DiagonalSeeds(candles []models.Candle, swings []Swing, price float64, cfg Config) []Seed {
	if len(candles) < 2 || price <= 0 {
		return nil
	}

	priceRange := seriesRange(candles)
	if priceRange <= 0 {
		return nil
	}
	seriesLen := float64(len(candles))
	lastIdx := len(candles) - 1

	var lows, highs []Swing
	for _, s := range swings {
		if s.Type == SwingLow {
			lows = append(lows, s)
		} else {
			highs = append(highs, s)
		}
	}
	sortChronological(lows)
	sortChronological(highs)

	var seeds []Seed
	seeds = append(seeds, fitLines(candles, lows, true, lastIdx, seriesLen, priceRange, price, cfg)...)
	seeds = append(seeds, fitLines(candles, highs, false, lastIdx, seriesLen, priceRange, price, cfg)...)
	return seeds
}

func fitLines(candles []models.Candle, points []Swing, ascending bool, lastIdx int, seriesLen, priceRange, price float64, cfg Config) []Seed {
	var seeds []Seed
	for i := 0; i < len(points); i++ {
		limit := i + cfg.MaxDiagonalSpan
		for j := i + 1; j <= limit && j < len(points); j++ {
			a, b := points[i], points[j]
			if b.Index <= a.Index {
				continue
			}
			slope := (b.Price - a.Price) / float64(b.Index-a.Index)
			if ascending && slope <= 0 {
				continue
			}
			if !ascending && slope >= 0 {
				continue
			}

			degrees := math.Atan(abs(slope)*seriesLen/priceRange) * 180 / math.Pi
			if degrees < cfg.MinSlopeDegrees || degrees > cfg.MaxSlopeDegrees {
				continue
			}
			if bodyCrossesLine(candles, a, slope, ascending, b.Index) {
				continue
			}

			projected := a.Price + slope*float64(lastIdx-a.Index)
			if projected <= 0 || abs(projected-price)/price > cfg.MaxSeedDistancePct {
				continue
			}

			seeds = append(seeds, Seed{
				Price:  projected,
				Source: SourceDiagonal,
				Weight: cfg.Weights.Diagonal,
				Diagonal: &DiagonalMeta{
					Slope:        slope,
					SlopeDegrees: degrees,
					StartIndex:   a.Index,
					EndIndex:     b.Index,
					Ascending:    ascending,
				},
			})
		}
	}
	return seeds
}

// bodyCrossesLine checks the candles strictly between the anchors. For an
// ascending support line no candle body may sit below the line at its
// projected value for that bar; descending resistance mirrors the rule.
// Wicks crossing the line are tolerated.
func bodyCrossesLine(candles []models.Candle, a Swing, slope float64, ascending bool, endIdx int) bool {
	for k := a.Index + 1; k < endIdx; k++ {
		lineVal := a.Price + slope*float64(k-a.Index)
		bodyLow, bodyHigh := candles[k].Body()
		if ascending && bodyLow < lineVal {
			return true
		}
		if !ascending && bodyHigh > lineVal {
			return true
		}
	}
	return false
}

func seriesRange(candles []models.Candle) float64 {
	hi, lo := candles[0].High, candles[0].Low
	for _, c := range candles[1:] {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	return hi - lo
}

func sortChronological(swings []Swing) {
	sort.SliceStable(swings, func(i, j int) bool {
		return swings[i].Index < swings[j].Index
	})
}
