package indicators

import (
	"StockSignalBot/internal/models"
)

// Set holds the indicator values of one series, index-aligned bar for bar.
// Warm-up bars are NaN; check with Defined before use.
type Set struct {
	EMA20  []float64
	EMA200 []float64
	RSI14  []float64
}

// Len returns the number of bars the set covers.
func (s *Set) Len() int {
	return len(s.EMA20)
}

// Engine computes the indicator set of a bar series. Periods are
// configurable; the defaults are EMA 20/200 and RSI 14.
type Engine struct {
	ema *EMAService
	rsi *RSIService

	emaFastPeriod int
	emaSlowPeriod int
	rsiPeriod     int
}

// NewEngine creates an indicator engine with the given periods.
func NewEngine(emaFastPeriod, emaSlowPeriod, rsiPeriod int) *Engine {
	return &Engine{
		ema:           NewEMAService(),
		rsi:           NewRSIService(),
		emaFastPeriod: emaFastPeriod,
		emaSlowPeriod: emaSlowPeriod,
		rsiPeriod:     rsiPeriod,
	}
}

// Calculate returns the indicator set of the series, equal in length to the
// series. Short series come back fully undefined for the affected indicator.
func (e *Engine) Calculate(series models.Series) *Set {
	closes := series.Closes()
	return &Set{
		EMA20:  e.ema.Calculate(closes, e.emaFastPeriod),
		EMA200: e.ema.Calculate(closes, e.emaSlowPeriod),
		RSI14:  e.rsi.Calculate(closes, e.rsiPeriod),
	}
}
