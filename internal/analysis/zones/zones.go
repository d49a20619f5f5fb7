// Package zones implements support/resistance zone detection. Independent
// seed detectors (swings, Fibonacci retracements, diagonal trendlines, gaps,
// moving averages) propose candidate price levels, which are wrapped in
// ATR-scaled bands, merged by confluence, and scored.
package zones

import (
	"fmt"
	"sort"
	"strings"
)

// SeedSource identifies the detector that produced a seed.
type SeedSource string

const (
	SourceSwingHigh     SeedSource = "swing_high"
	SourceSwingLow      SeedSource = "swing_low"
	SourceFibCore       SeedSource = "fib_core"
	SourceFibOther      SeedSource = "fib_other"
	SourceDiagonal      SeedSource = "diagonal"
	SourceMovingAverage SeedSource = "moving_average"
	SourceGapOpen       SeedSource = "gap_open"
	SourceGapFilled     SeedSource = "gap_filled"
)

// isGap reports whether the source is a gap edge, filled or not.
func (s SeedSource) isGap() bool {
	return s == SourceGapOpen || s == SourceGapFilled
}

// SwingMeta carries pivot details for swing seeds.
type SwingMeta struct {
	BarsAgo  int
	Strength float64
}

// FibMeta carries retracement details for Fibonacci seeds.
type FibMeta struct {
	Ratio     float64
	SwingHigh float64
	SwingLow  float64
	UpMove    bool
}

// DiagonalMeta carries trendline details for diagonal seeds.
type DiagonalMeta struct {
	Slope        float64 // price change per bar
	SlopeDegrees float64
	StartIndex   int
	EndIndex     int
	Ascending    bool
}

// GapMeta carries gap details for gap seeds.
type GapMeta struct {
	Top     float64
	Bottom  float64
	Up      bool
	Filled  bool
	BarsAgo int
	SizePct float64
}

// AverageMeta carries moving-average details for average seeds.
type AverageMeta struct {
	Name        string
	Period      int
	SlopeFactor float64
	Aligned     bool
}

// Seed is a single proposed price level before banding and merging.
// Exactly one metadata pointer is set, matching Source.
type Seed struct {
	Price  float64
	Source SeedSource
	Weight float64

	Swing    *SwingMeta
	Fib      *FibMeta
	Diagonal *DiagonalMeta
	Gap      *GapMeta
	Average  *AverageMeta
}

// ZoneKind classifies a zone relative to current price.
type ZoneKind string

const (
	ZoneSupport    ZoneKind = "support"
	ZoneResistance ZoneKind = "resistance"
)

// Zone is a merged, scored price band.
type Zone struct {
	Kind ZoneKind
	Low  float64
	Mid  float64
	High float64

	// Sources lists contributing source types in first-seen order,
	// deduplicated; SourceWeights holds the summed weight per type.
	Sources       []SeedSource
	SourceWeights map[SeedSource]float64

	BaseScore  float64
	FinalScore float64

	DistanceFromPrice float64
	DistanceATR       float64
}

// Contains reports whether the price falls inside the zone band.
func (z Zone) Contains(price float64) bool {
	return price >= z.Low && price <= z.High
}

// Nearest returns up to n zones ordered by distance from price.
func Nearest(zones []Zone, price float64, n int) []Zone {
	out := make([]Zone, len(zones))
	copy(out, zones)
	sort.SliceStable(out, func(i, j int) bool {
		di := abs(out[i].Mid - price)
		dj := abs(out[j].Mid - price)
		return di < dj
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary renders a compact one-line-per-zone description, strongest first.
func Summary(zones []Zone) string {
	var b strings.Builder
	for _, z := range zones {
		sources := make([]string, len(z.Sources))
		for i, s := range z.Sources {
			sources[i] = string(s)
		}
		fmt.Fprintf(&b, "%s %.2f [%.2f-%.2f] score %.1f (%s)\n",
			z.Kind, z.Mid, z.Low, z.High, z.FinalScore, strings.Join(sources, ","))
	}
	return b.String()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
