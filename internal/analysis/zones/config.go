package zones

// Weights defines the confluence contribution of each seed source.
type Weights struct {
	FibCore     float64 `mapstructure:"fib_core"`
	FibOther    float64 `mapstructure:"fib_other"`
	Swing       float64 `mapstructure:"swing"`
	Diagonal    float64 `mapstructure:"diagonal"`
	SlowAverage float64 `mapstructure:"slow_average"`
	FastAverage float64 `mapstructure:"fast_average"`
	Gap         float64 `mapstructure:"gap"`
}

// Config holds all zone engine tunables. Every threshold that scales with
// volatility is expressed as an ATR multiple.
type Config struct {
	Weights Weights `mapstructure:"weights"`

	// Band half-widths as ATR multiples. Slow daily-cadence sources
	// (moving averages) get the wide band, structural sources (swings,
	// gaps, retracements, trendlines) the narrow one.
	WideBandATR   float64 `mapstructure:"wide_band_atr"`
	NarrowBandATR float64 `mapstructure:"narrow_band_atr"`

	MergeThresholdATR     float64 `mapstructure:"merge_threshold_atr"`
	ProximityThresholdATR float64 `mapstructure:"proximity_threshold_atr"`

	// Distance sanity filters as fractions of current price.
	MaxSeedDistancePct    float64 `mapstructure:"max_seed_distance_pct"`
	MaxZoneDistancePct    float64 `mapstructure:"max_zone_distance_pct"`
	MaxAverageDistancePct float64 `mapstructure:"max_average_distance_pct"`

	// Gap detection. A gap qualifies when either threshold is met.
	GapMinPct    float64 `mapstructure:"gap_min_pct"`
	GapMinATR    float64 `mapstructure:"gap_min_atr"`
	GapFillDecay float64 `mapstructure:"gap_fill_decay"`
	MaxGaps      int     `mapstructure:"max_gaps"`

	// Diagonal trendline slope validity band, in degrees.
	MinSlopeDegrees float64 `mapstructure:"min_slope_degrees"`
	MaxSlopeDegrees float64 `mapstructure:"max_slope_degrees"`
	// A swing point is paired with up to this many following same-type swings.
	MaxDiagonalSpan int `mapstructure:"max_diagonal_span"`

	SwingWindow int `mapstructure:"swing_window"`
	MaxSwings   int `mapstructure:"max_swings"`

	// Fibonacci pairing and deduplication.
	FibPairs     int     `mapstructure:"fib_pairs"`
	FibDedupeATR float64 `mapstructure:"fib_dedupe_atr"`

	// Fast-average slope buckets (one-period slope normalized by ATR)
	// and the weight factor applied per bucket.
	SlopeFlat           float64 `mapstructure:"slope_flat"`
	SlopeStrong         float64 `mapstructure:"slope_strong"`
	SlopeFlatFactor     float64 `mapstructure:"slope_flat_factor"`
	SlopeModerateFactor float64 `mapstructure:"slope_moderate_factor"`
	SlopeStrongFactor   float64 `mapstructure:"slope_strong_factor"`

	// Moving-average periods: one fast EMA and several slow SMAs.
	FastPeriod  int   `mapstructure:"fast_period"`
	SlowPeriods []int `mapstructure:"slow_periods"`

	StackBonus   float64 `mapstructure:"stack_bonus"`
	MaxBaseScore float64 `mapstructure:"max_base_score"`

	ProximityBonus float64 `mapstructure:"proximity_bonus"`
	AlignmentBonus float64 `mapstructure:"alignment_bonus"`

	MaxZones int `mapstructure:"max_zones"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			FibCore:     3.0,
			FibOther:    2.0,
			Swing:       2.0,
			Diagonal:    2.0,
			SlowAverage: 2.0,
			FastAverage: 1.0,
			Gap:         2.0,
		},
		WideBandATR:           0.30,
		NarrowBandATR:         0.15,
		MergeThresholdATR:     0.10,
		ProximityThresholdATR: 0.30,
		MaxSeedDistancePct:    0.20,
		MaxZoneDistancePct:    0.25,
		MaxAverageDistancePct: 0.30,
		GapMinPct:             0.015,
		GapMinATR:             0.30,
		GapFillDecay:          0.7,
		MaxGaps:               8,
		MinSlopeDegrees:       5.0,
		MaxSlopeDegrees:       45.0,
		MaxDiagonalSpan:       3,
		SwingWindow:           5,
		MaxSwings:             10,
		FibPairs:              3,
		FibDedupeATR:          0.05,
		SlopeFlat:             0.05,
		SlopeStrong:           0.10,
		SlopeFlatFactor:       0.5,
		SlopeModerateFactor:   1.0,
		SlopeStrongFactor:     1.5,
		FastPeriod:            20,
		SlowPeriods:           []int{50, 100, 200},
		StackBonus:            0.5,
		MaxBaseScore:          10.0,
		ProximityBonus:        2.0,
		AlignmentBonus:        2.0,
		MaxZones:              10,
	}
}
