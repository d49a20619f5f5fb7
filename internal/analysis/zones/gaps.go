package zones

import (
	"sort"

	"srzones/internal/models"
)

// Gap is a detected price discontinuity between adjacent bars.
type Gap struct {
	Top     float64
	Bottom  float64
	Up      bool
	Index   int
	BarsAgo int
	Filled  bool
	Size    float64
	SizePct float64
}

// DetectGaps scans an intraday series for adjacent-bar gaps: a gap up
// when a bar's low exceeds the prior bar's high, a gap down when a bar's
// high sits below the prior bar's low. A gap qualifies when it meets
// either the percentage-of-price threshold or the ATR-multiple threshold.
// Each gap is scanned forward for a later re-entry into its range.
// Results are ordered unfilled first, then most recent, then largest,
// truncated to cfg.MaxGaps.
func DetectGaps(intraday []models.Candle, atr float64, cfg Config) []Gap {
	if len(intraday) < 2 {
		return nil
	}
	last := len(intraday) - 1

	var gaps []Gap
	for i := 1; i < len(intraday); i++ {
		prev, cur := intraday[i-1], intraday[i]

		var g Gap
		switch {
		case cur.Low > prev.High:
			g = Gap{Top: cur.Low, Bottom: prev.High, Up: true, Index: i}
		case cur.High < prev.Low:
			g = Gap{Top: prev.Low, Bottom: cur.High, Up: false, Index: i}
		default:
			continue
		}

		g.Size = g.Top - g.Bottom
		// Percent size is measured against the prior bar's edge the
		// price gapped away from.
		basis := g.Bottom
		if !g.Up {
			basis = g.Top
		}
		if basis > 0 {
			g.SizePct = g.Size / basis
		}
		if g.SizePct < cfg.GapMinPct && g.Size < cfg.GapMinATR*atr {
			continue
		}

		g.BarsAgo = last - i
		g.Filled = gapFilled(intraday, g)
		gaps = append(gaps, g)
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Filled != gaps[j].Filled {
			return !gaps[i].Filled
		}
		if gaps[i].BarsAgo != gaps[j].BarsAgo {
			return gaps[i].BarsAgo < gaps[j].BarsAgo
		}
		return gaps[i].Size > gaps[j].Size
	})
	if cfg.MaxGaps > 0 && len(gaps) > cfg.MaxGaps {
		gaps = gaps[:cfg.MaxGaps]
	}
	return gaps
}

// gapFilled reports whether price later traded back into the gap range.
// Any re-entry counts, partial or full.
func gapFilled(intraday []models.Candle, g Gap) bool {
	for k := g.Index + 1; k < len(intraday); k++ {
		if g.Up && intraday[k].Low <= g.Top {
			return true
		}
		if !g.Up && intraday[k].High >= g.Bottom {
			return true
		}
	}
	return false
}

// GapSeeds converts gaps into candidate seeds at the edge nearer current
// price. Filled gaps keep their level but carry a decayed weight.
func GapSeeds(gaps []Gap, price float64, cfg Config) []Seed {
	if price <= 0 {
		return nil
	}
	var seeds []Seed
	for i := range gaps {
		g := gaps[i]
		edge := g.Top
		if abs(g.Bottom-price) < abs(g.Top-price) {
			edge = g.Bottom
		}
		if abs(edge-price)/price > cfg.MaxSeedDistancePct {
			continue
		}

		source := SourceGapOpen
		weight := cfg.Weights.Gap
		if g.Filled {
			source = SourceGapFilled
			weight *= cfg.GapFillDecay
		}
		seeds = append(seeds, Seed{
			Price:  edge,
			Source: source,
			Weight: weight,
			Gap: &GapMeta{
				Top:     g.Top,
				Bottom:  g.Bottom,
				Up:      g.Up,
				Filled:  g.Filled,
				BarsAgo: g.BarsAgo,
				SizePct: g.SizePct,
			},
		})
	}
	return seeds
}
