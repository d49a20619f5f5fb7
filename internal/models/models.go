// Package models provides domain models for the zone engine.
package models

import (
	"time"
)

// Timeframe represents the cadence of a candle series.
type Timeframe string

const (
	TimeframeDaily  Timeframe = "day"
	TimeframeHourly Timeframe = "60minute"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Body returns the open-close span of the candle, low end first.
func (c Candle) Body() (float64, float64) {
	if c.Open <= c.Close {
		return c.Open, c.Close
	}
	return c.Close, c.Open
}

// TrendBias represents a directional assessment of a market or instrument.
type TrendBias string

const (
	BiasUp      TrendBias = "UP"
	BiasDown    TrendBias = "DOWN"
	BiasNeutral TrendBias = "NEUTRAL"
)

// RegimeContext carries externally computed market conditions consumed
// by zone scoring. The engine never computes these itself.
type RegimeContext struct {
	MarketBias           TrendBias
	InstrumentBias       TrendBias
	VolatilityMultiplier float64
}

// Bias returns the effective directional bias, preferring the
// instrument-level assessment over the broader market one.
func (r *RegimeContext) Bias() TrendBias {
	if r == nil {
		return BiasNeutral
	}
	if r.InstrumentBias != "" && r.InstrumentBias != BiasNeutral {
		return r.InstrumentBias
	}
	if r.MarketBias != "" {
		return r.MarketBias
	}
	return BiasNeutral
}

// Multiplier returns the volatility multiplier, defaulting to 1.0
// when the context is absent or the field is unset.
func (r *RegimeContext) Multiplier() float64 {
	if r == nil || r.VolatilityMultiplier <= 0 {
		return 1.0
	}
	return r.VolatilityMultiplier
}
