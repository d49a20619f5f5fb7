package zones

import (
	"math"
	"testing"
	"time"

	"srzones/internal/models"
)

// hourlySeries builds a flat intraday series around 100.
func hourlySeries(n int) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			Timestamp: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
			Open:      100,
			High:      100.4,
			Low:       99.6,
			Close:     100,
			Volume:    500,
		}
	}
	return candles
}

// gapUpAt opens a gap of the given size above the prior bar's high. Bars
// after the gap bar trade clear of the gap top so the gap stays open.
func gapUpAt(candles []models.Candle, i int, size float64) {
	bottom := candles[i-1].High
	top := bottom + size
	candles[i].Low = top
	candles[i].High = top + 0.8
	candles[i].Open = top + 0.2
	candles[i].Close = top + 0.4
	for j := i + 1; j < len(candles); j++ {
		candles[j].Low = top + 0.2
		candles[j].High = top + 1.0
		candles[j].Open = top + 0.4
		candles[j].Close = top + 0.6
	}
}

func TestDetectGaps_DualThreshold(t *testing.T) {
	cfg := DefaultConfig()
	// ATR 10 puts the ATR threshold at 3.0, above the 1.5% price threshold.
	atr := 10.0

	// Gap clearing the percentage threshold: reported despite missing
	// the ATR threshold. Percent size is measured against the prior
	// bar's high of 100.4.
	candles := hourlySeries(20)
	gapUpAt(candles, 10, 1.6)
	gaps := DetectGaps(candles, atr, cfg)
	if len(gaps) != 1 {
		t.Fatalf("expected percentage-threshold gap to be reported, got %d", len(gaps))
	}
	if !gaps[0].Up {
		t.Error("expected gap up")
	}
	if math.Abs(gaps[0].SizePct-1.6/100.4) > 1e-9 {
		t.Errorf("expected size pct %.5f, got %.5f", 1.6/100.4, gaps[0].SizePct)
	}

	// Gap below both thresholds: not reported.
	candles = hourlySeries(20)
	gapUpAt(candles, 10, 0.5)
	if gaps := DetectGaps(candles, atr, cfg); len(gaps) != 0 {
		t.Errorf("expected sub-threshold gap to be ignored, got %d", len(gaps))
	}

	// Gap meeting only the ATR threshold: reported.
	candles = hourlySeries(20)
	gapUpAt(candles, 10, 0.8)
	if gaps := DetectGaps(candles, 2.0, cfg); len(gaps) != 1 {
		t.Errorf("expected ATR-threshold gap to be reported, got %d", len(gaps))
	}
}

func TestDetectGaps_GapDown(t *testing.T) {
	cfg := DefaultConfig()
	candles := hourlySeries(20)
	// Drop bar 10 well below the prior low; later bars keep trading
	// under the gap bottom.
	candles[10].High = 97
	candles[10].Low = 96.2
	candles[10].Open = 96.8
	candles[10].Close = 96.5
	for j := 11; j < len(candles); j++ {
		candles[j].High = 96.8
		candles[j].Low = 96.0
		candles[j].Open = 96.6
		candles[j].Close = 96.2
	}

	gaps := DetectGaps(candles, 2.0, cfg)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	g := gaps[0]
	if g.Up {
		t.Error("expected gap down")
	}
	if g.Top != 99.6 || g.Bottom != 97 {
		t.Errorf("unexpected gap edges: top %.2f bottom %.2f", g.Top, g.Bottom)
	}
	// Percent size against the prior bar's low of 99.6.
	if math.Abs(g.SizePct-2.6/99.6) > 1e-9 {
		t.Errorf("expected size pct %.5f, got %.5f", 2.6/99.6, g.SizePct)
	}
	if g.Filled {
		t.Error("gap should be unfilled")
	}
}

func TestDetectGaps_PartialRetraceMarksFilled(t *testing.T) {
	cfg := DefaultConfig()
	candles := hourlySeries(20)
	// Gap range [100.4, 102.4].
	gapUpAt(candles, 10, 2.0)
	// Price later dips back inside the range without reaching the bottom.
	candles[15].Low = 101.0

	gaps := DetectGaps(candles, 2.0, cfg)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if !gaps[0].Filled {
		t.Error("re-entry into the gap range must mark the gap filled")
	}
}

func TestGapFillDecay(t *testing.T) {
	cfg := DefaultConfig()
	atr := 2.0

	unfilled := hourlySeries(20)
	gapUpAt(unfilled, 10, 2.0)

	filled := hourlySeries(20)
	gapUpAt(filled, 10, 2.0)
	// Price later trades all the way back through the gap.
	filled[15].Low = filled[9].High - 0.1

	unfilledGaps := DetectGaps(unfilled, atr, cfg)
	filledGaps := DetectGaps(filled, atr, cfg)
	if len(unfilledGaps) != 1 || len(filledGaps) != 1 {
		t.Fatalf("expected 1 gap each, got %d and %d", len(unfilledGaps), len(filledGaps))
	}
	if unfilledGaps[0].Filled {
		t.Error("expected unfilled gap")
	}
	if !filledGaps[0].Filled {
		t.Error("expected filled gap")
	}

	price := 101.5
	openSeeds := GapSeeds(unfilledGaps, price, cfg)
	filledSeeds := GapSeeds(filledGaps, price, cfg)
	if len(openSeeds) != 1 || len(filledSeeds) != 1 {
		t.Fatalf("expected 1 seed each, got %d and %d", len(openSeeds), len(filledSeeds))
	}
	if openSeeds[0].Source != SourceGapOpen {
		t.Errorf("expected gap_open, got %s", openSeeds[0].Source)
	}
	if filledSeeds[0].Source != SourceGapFilled {
		t.Errorf("expected gap_filled, got %s", filledSeeds[0].Source)
	}
	if filledSeeds[0].Weight >= openSeeds[0].Weight {
		t.Errorf("filled gap weight %.2f should be below unfilled %.2f",
			filledSeeds[0].Weight, openSeeds[0].Weight)
	}
	want := cfg.Weights.Gap * cfg.GapFillDecay
	if filledSeeds[0].Weight != want {
		t.Errorf("expected decayed weight %.2f, got %.2f", want, filledSeeds[0].Weight)
	}
}

func TestGapSeeds_NearerEdge(t *testing.T) {
	cfg := DefaultConfig()
	gaps := []Gap{{Top: 102, Bottom: 100, Up: true, BarsAgo: 3, SizePct: 0.02}}

	// Price above the gap: the top edge is nearer.
	seeds := GapSeeds(gaps, 103, cfg)
	if len(seeds) != 1 || seeds[0].Price != 102 {
		t.Fatalf("expected top edge 102, got %+v", seeds)
	}

	// Price below the gap: the bottom edge is nearer.
	seeds = GapSeeds(gaps, 99, cfg)
	if len(seeds) != 1 || seeds[0].Price != 100 {
		t.Fatalf("expected bottom edge 100, got %+v", seeds)
	}
}

func TestDetectGaps_OrderingAndTruncation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxGaps = 2
	atr := 2.0

	candles := hourlySeries(40)
	gapUpAt(candles, 10, 2.0)
	gapUpAt(candles, 25, 2.0)
	// Fill the first gap: trade back through its range.
	candles[12].Low = candles[9].High - 0.1

	gaps := DetectGaps(candles, atr, cfg)
	if len(gaps) > 2 {
		t.Fatalf("expected at most 2 gaps, got %d", len(gaps))
	}
	for i := 1; i < len(gaps); i++ {
		if gaps[i-1].Filled && !gaps[i].Filled {
			t.Error("unfilled gaps must sort before filled ones")
		}
	}
}
