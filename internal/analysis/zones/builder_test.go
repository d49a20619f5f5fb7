package zones

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"srzones/internal/models"
)

// zigzagSeries builds an oscillating series with a mild upward drift,
// producing clean pivot structure for the detectors.
func zigzagSeries(n int) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		close := 100 + 0.05*float64(i) + 4*math.Sin(2*math.Pi*float64(i)/16)
		candles[i] = models.Candle{
			Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:      close - 0.2,
			High:      close + 0.6,
			Low:       close - 0.6,
			Close:     close,
			Volume:    1500,
		}
	}
	return candles
}

func TestBuilder_ATRPrecondition(t *testing.T) {
	b := NewBuilder(DefaultConfig(), zerolog.Nop())
	daily := zigzagSeries(120)
	price := daily[len(daily)-1].Close

	for _, atr := range []float64{0, -1, math.NaN()} {
		zones := b.Build("TEST", daily, nil, price, atr, nil)
		if zones == nil {
			t.Error("expected empty non-nil slice")
		}
		if len(zones) != 0 {
			t.Errorf("expected no zones for atr %f, got %d", atr, len(zones))
		}
	}
}

func TestBuilder_DailyOnlyDegradesGracefully(t *testing.T) {
	b := NewBuilder(DefaultConfig(), zerolog.Nop())
	daily := zigzagSeries(120)
	price := daily[len(daily)-1].Close

	zones := b.Build("TEST", daily, nil, price, 2.0, nil)
	if zones == nil {
		t.Fatal("expected non-nil zone list")
	}
	if len(zones) == 0 {
		t.Fatal("expected zones from daily series alone")
	}
	for _, z := range zones {
		if z.Low >= z.Mid || z.Mid >= z.High {
			t.Errorf("bound invariant violated: %+v", z)
		}
	}
}

func TestBuilder_Deterministic(t *testing.T) {
	b := NewBuilder(DefaultConfig(), zerolog.Nop())
	daily := zigzagSeries(120)
	intraday := zigzagSeries(60)
	price := daily[len(daily)-1].Close
	regime := &models.RegimeContext{MarketBias: models.BiasUp, VolatilityMultiplier: 1.2}

	first := b.Build("TEST", daily, intraday, price, 2.0, regime)
	second := b.Build("TEST", daily, intraday, price, 2.0, regime)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical zone lists")
	}
}

func TestBuilder_DoesNotMutateInputs(t *testing.T) {
	b := NewBuilder(DefaultConfig(), zerolog.Nop())
	daily := zigzagSeries(120)
	snapshot := make([]models.Candle, len(daily))
	copy(snapshot, daily)

	b.Build("TEST", daily, nil, daily[len(daily)-1].Close, 2.0, nil)

	if !reflect.DeepEqual(daily, snapshot) {
		t.Error("input series must not be mutated")
	}
}

func TestBuilder_KindMatchesSide(t *testing.T) {
	b := NewBuilder(DefaultConfig(), zerolog.Nop())
	daily := zigzagSeries(120)
	price := daily[len(daily)-1].Close

	zones := b.Build("TEST", daily, nil, price, 2.0, nil)
	for _, z := range zones {
		if z.Mid < price && z.Kind != ZoneSupport {
			t.Errorf("zone below price must be support: %+v", z)
		}
		if z.Mid >= price && z.Kind != ZoneResistance {
			t.Errorf("zone at or above price must be resistance: %+v", z)
		}
		wantDist := math.Abs(z.Mid - price)
		if math.Abs(z.DistanceFromPrice-wantDist) > 1e-9 {
			t.Errorf("distance mismatch: %f vs %f", z.DistanceFromPrice, wantDist)
		}
	}
}

func TestBuilder_EmptySeries(t *testing.T) {
	b := NewBuilder(DefaultConfig(), zerolog.Nop())
	zones := b.Build("TEST", nil, nil, 100, 2.0, nil)
	if zones == nil || len(zones) != 0 {
		t.Errorf("expected empty non-nil slice for empty series, got %v", zones)
	}
}

func TestZoneContains(t *testing.T) {
	z := Zone{Low: 97.7, Mid: 98, High: 98.3}
	for _, p := range []float64{97.7, 98, 98.3} {
		if !z.Contains(p) {
			t.Errorf("expected %f inside zone", p)
		}
	}
	if z.Contains(98.4) || z.Contains(97.6) {
		t.Error("expected prices outside the band to be rejected")
	}
}

func TestNearest(t *testing.T) {
	zones := []Zone{
		{Mid: 90}, {Mid: 99}, {Mid: 105},
	}
	got := Nearest(zones, 100, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(got))
	}
	if got[0].Mid != 99 || got[1].Mid != 105 {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestSummary(t *testing.T) {
	zones := []Zone{{
		Kind: ZoneSupport, Low: 97.7, Mid: 98, High: 98.3,
		Sources: []SeedSource{SourceSwingLow, SourceFibCore}, FinalScore: 6.5,
	}}
	s := Summary(zones)
	if s == "" {
		t.Fatal("expected non-empty summary")
	}
}
