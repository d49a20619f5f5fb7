package zones

import (
	"math"
	"testing"
)

func TestFibonacciSeeds_CoreRetracement(t *testing.T) {
	cfg := DefaultConfig()
	// Clean up-move: swing low 95, swing high 110 three weeks later.
	swings := []Swing{
		{Index: 5, BarsAgo: 20, Price: 95, Type: SwingLow},
		{Index: 20, BarsAgo: 5, Price: 110, Type: SwingHigh},
	}

	seeds := FibonacciSeeds(swings, 104, 2.0, cfg)
	if len(seeds) == 0 {
		t.Fatal("expected fibonacci seeds")
	}

	want := 110 - 0.618*15 // 100.73
	var found *Seed
	for i := range seeds {
		if seeds[i].Fib != nil && seeds[i].Fib.Ratio == 0.618 {
			found = &seeds[i]
			break
		}
	}
	if found == nil {
		t.Fatal("expected a 0.618 retracement seed")
	}
	if math.Abs(found.Price-want) > 1e-9 {
		t.Errorf("expected level %.4f, got %.4f", want, found.Price)
	}
	if found.Source != SourceFibCore {
		t.Errorf("expected fib_core, got %s", found.Source)
	}
	if found.Weight != cfg.Weights.FibCore {
		t.Errorf("expected weight %f, got %f", cfg.Weights.FibCore, found.Weight)
	}
	if !found.Fib.UpMove {
		t.Error("expected up-move metadata")
	}
}

func TestFibonacciSeeds_RatioTagging(t *testing.T) {
	cfg := DefaultConfig()
	swings := []Swing{
		{Index: 5, BarsAgo: 20, Price: 95, Type: SwingLow},
		{Index: 20, BarsAgo: 5, Price: 110, Type: SwingHigh},
	}

	seeds := FibonacciSeeds(swings, 104, 2.0, cfg)
	for _, s := range seeds {
		core := s.Fib.Ratio == 0.5 || s.Fib.Ratio == 0.618 || s.Fib.Ratio == 0.786
		if core && s.Source != SourceFibCore {
			t.Errorf("ratio %.3f should be fib_core, got %s", s.Fib.Ratio, s.Source)
		}
		if !core && s.Source != SourceFibOther {
			t.Errorf("ratio %.3f should be fib_other, got %s", s.Fib.Ratio, s.Source)
		}
	}
}

func TestFibonacciSeeds_DownMove(t *testing.T) {
	cfg := DefaultConfig()
	// High formed first, then the low: retracement projects up from the low.
	swings := []Swing{
		{Index: 5, BarsAgo: 20, Price: 110, Type: SwingHigh},
		{Index: 20, BarsAgo: 5, Price: 95, Type: SwingLow},
	}

	seeds := FibonacciSeeds(swings, 104, 2.0, cfg)
	want := 95 + 0.5*15 // 102.5
	found := false
	for _, s := range seeds {
		if s.Fib.Ratio == 0.5 && math.Abs(s.Price-want) < 1e-9 {
			if s.Fib.UpMove {
				t.Error("expected down-move metadata")
			}
			found = true
		}
	}
	if !found {
		t.Errorf("expected 0.5 retracement at %.2f", want)
	}
}

func TestFibonacciSeeds_DistanceFilter(t *testing.T) {
	cfg := DefaultConfig()
	swings := []Swing{
		{Index: 5, BarsAgo: 20, Price: 95, Type: SwingLow},
		{Index: 20, BarsAgo: 5, Price: 110, Type: SwingHigh},
	}

	// Far away from the swing structure: every level exceeds 20%.
	seeds := FibonacciSeeds(swings, 300, 2.0, cfg)
	if len(seeds) != 0 {
		t.Errorf("expected no seeds far from price, got %d", len(seeds))
	}
}

func TestFibonacciSeeds_DedupeKeepsHigherWeight(t *testing.T) {
	cfg := DefaultConfig()
	// Two near-identical up-moves produce overlapping levels.
	swings := []Swing{
		{Index: 2, BarsAgo: 28, Price: 95, Type: SwingLow},
		{Index: 10, BarsAgo: 20, Price: 110, Type: SwingHigh},
		{Index: 15, BarsAgo: 15, Price: 95.01, Type: SwingLow},
		{Index: 25, BarsAgo: 5, Price: 110.01, Type: SwingHigh},
	}

	seeds := FibonacciSeeds(swings, 104, 2.0, cfg)
	tolerance := cfg.FibDedupeATR * 2.0
	for i := range seeds {
		for j := i + 1; j < len(seeds); j++ {
			if math.Abs(seeds[i].Price-seeds[j].Price) <= tolerance {
				t.Errorf("seeds %d and %d within dedupe tolerance: %.4f vs %.4f",
					i, j, seeds[i].Price, seeds[j].Price)
			}
		}
	}
}

func TestFibonacciSeeds_DegenerateRange(t *testing.T) {
	cfg := DefaultConfig()
	swings := []Swing{
		{Index: 5, BarsAgo: 20, Price: 100, Type: SwingLow},
		{Index: 20, BarsAgo: 5, Price: 100, Type: SwingHigh},
	}
	if seeds := FibonacciSeeds(swings, 100, 2.0, cfg); len(seeds) != 0 {
		t.Errorf("expected no seeds from zero-range pair, got %d", len(seeds))
	}
}
