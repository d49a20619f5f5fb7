package zones

import (
	"sort"

	"srzones/internal/models"
)

// cluster accumulates seeds while walking the sorted candidate list.
// The weighted midpoint is maintained incrementally.
type cluster struct {
	seeds     []Seed
	weightSum float64
	priceSum  float64 // Σ(price × weight)
}

func newCluster(s Seed) *cluster {
	c := &cluster{}
	c.add(s)
	return c
}

func (c *cluster) add(s Seed) {
	c.seeds = append(c.seeds, s)
	c.weightSum += s.Weight
	c.priceSum += s.Price * s.Weight
}

func (c *cluster) mid() float64 {
	if c.weightSum == 0 {
		return 0
	}
	return c.priceSum / c.weightSum
}

// narrow reports whether any structural (non moving-average) source
// participates, which selects the tighter band multiplier.
func (c *cluster) narrow() bool {
	for _, s := range c.seeds {
		if s.Source != SourceMovingAverage {
			return true
		}
	}
	return false
}

// averageDominated reports whether moving-average sources carry the
// majority of the cluster's weight.
func (c *cluster) averageDominated() bool {
	var maWeight float64
	for _, s := range c.seeds {
		if s.Source == SourceMovingAverage {
			maWeight += s.Weight
		}
	}
	return maWeight > c.weightSum/2
}

// MergeSeeds clusters candidate seeds into zones. Seeds are sorted by
// price and walked left to right; a seed joins the current cluster when
// its price is within the ATR-relative merge threshold of the cluster's
// running weighted midpoint, subject to the gap protection rule. Merged
// midpoints are clamped between the constituent extremes, and zones
// landing outside the sanity distance from current price are discarded
// as numerical outliers.
func MergeSeeds(seeds []Seed, price, atr float64, cfg Config) []Zone {
	zones := []Zone{}
	if len(seeds) == 0 || atr <= 0 {
		return zones
	}

	sorted := make([]Seed, len(seeds))
	copy(sorted, seeds)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Price != sorted[j].Price {
			return sorted[i].Price < sorted[j].Price
		}
		return sorted[i].Weight > sorted[j].Weight
	})

	threshold := cfg.MergeThresholdATR * atr
	var cur *cluster
	for _, s := range sorted {
		if cur == nil {
			cur = newCluster(s)
			continue
		}
		if abs(s.Price-cur.mid()) <= threshold && mergeAllowed(cur, s, atr, cfg) {
			cur.add(s)
			continue
		}
		if z, ok := finalizeCluster(cur, price, atr, cfg); ok {
			zones = append(zones, z)
		}
		cur = newCluster(s)
	}
	if z, ok := finalizeCluster(cur, price, atr, cfg); ok {
		zones = append(zones, z)
	}
	return zones
}

// mergeAllowed applies the gap protection rule: a gap-type seed does not
// merge into an average-dominated cluster unless the band overlap
// exceeds half the narrower band's width. A sharp gap edge must not be
// diluted into a much wider moving-average band.
func mergeAllowed(c *cluster, s Seed, atr float64, cfg Config) bool {
	if !s.Source.isGap() || !c.averageDominated() {
		return true
	}

	clusterHW := cfg.WideBandATR * atr
	if c.narrow() {
		clusterHW = cfg.NarrowBandATR * atr
	}
	seedHW := cfg.NarrowBandATR * atr

	mid := c.mid()
	overlap := minF(mid+clusterHW, s.Price+seedHW) - maxF(mid-clusterHW, s.Price-seedHW)
	narrower := minF(2*clusterHW, 2*seedHW)
	return overlap > 0.5*narrower
}

// finalizeCluster turns a cluster into a zone, or discards it when the
// merged midpoint falls outside the sanity distance from current price.
func finalizeCluster(c *cluster, price, atr float64, cfg Config) (Zone, bool) {
	if c == nil || len(c.seeds) == 0 {
		return Zone{}, false
	}

	lo, hi := c.seeds[0].Price, c.seeds[0].Price
	for _, s := range c.seeds[1:] {
		if s.Price < lo {
			lo = s.Price
		}
		if s.Price > hi {
			hi = s.Price
		}
	}
	mid := clampF(c.mid(), lo, hi)

	if price <= 0 || abs(mid-price)/price > cfg.MaxZoneDistancePct {
		return Zone{}, false
	}

	halfWidth := cfg.WideBandATR * atr
	if c.narrow() {
		halfWidth = cfg.NarrowBandATR * atr
	}

	base := c.weightSum
	sources := make([]SeedSource, 0, len(c.seeds))
	weights := make(map[SeedSource]float64, len(c.seeds))
	for _, s := range c.seeds {
		if _, seen := weights[s.Source]; !seen {
			sources = append(sources, s.Source)
		}
		weights[s.Source] += s.Weight
		if s.Average != nil && s.Average.Aligned {
			base += cfg.StackBonus
		}
	}
	base = clampF(base, 0, cfg.MaxBaseScore)

	kind := ZoneResistance
	if mid < price {
		kind = ZoneSupport
	}

	return Zone{
		Kind:          kind,
		Low:           mid - halfWidth,
		Mid:           mid,
		High:          mid + halfWidth,
		Sources:       sources,
		SourceWeights: weights,
		BaseScore:     base,
	}, true
}

// ScoreZones computes final confluence scores and returns the zones
// sorted strongest first, truncated to cfg.MaxZones:
//
//	final = (base + proximity + alignment) × volatility multiplier
//
// The proximity bonus applies when the zone sits within the ATR-relative
// proximity threshold of current price. The alignment bonus applies when
// the zone's directional bias agrees with the supplied regime context;
// without a context it is zero.
func ScoreZones(zones []Zone, price, atr float64, regime *models.RegimeContext, cfg Config) []Zone {
	bias := regime.Bias()
	multiplier := regime.Multiplier()

	for i := range zones {
		z := &zones[i]
		z.DistanceFromPrice = abs(z.Mid - price)
		if atr > 0 {
			z.DistanceATR = z.DistanceFromPrice / atr
		}

		score := z.BaseScore
		if z.DistanceFromPrice <= cfg.ProximityThresholdATR*atr {
			score += cfg.ProximityBonus
		}
		if (z.Kind == ZoneSupport && bias == models.BiasUp) ||
			(z.Kind == ZoneResistance && bias == models.BiasDown) {
			score += cfg.AlignmentBonus
		}
		z.FinalScore = score * multiplier
	}

	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].FinalScore != zones[j].FinalScore {
			return zones[i].FinalScore > zones[j].FinalScore
		}
		return zones[i].DistanceATR < zones[j].DistanceATR
	})
	if cfg.MaxZones > 0 && len(zones) > cfg.MaxZones {
		zones = zones[:cfg.MaxZones]
	}
	return zones
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
