package signal

import (
	"StockSignalBot/internal/models"
	"StockSignalBot/internal/services/indicators"
	"StockSignalBot/internal/services/patterns"
	"math"
)

// Result is one instrument's evaluation outcome. Status distinguishes a
// clean "no setup" cycle from one where the warm-up window was not met.
type Result struct {
	Status models.Status
	Signal models.Signal
}

// Evaluator runs the three-stage signal decision: trend environment on the
// trend timeframe, setup zone and trigger pattern on the entry timeframe.
// It carries no state between cycles; each call is a pure function of the
// two input series.
type Evaluator struct {
	indicators *indicators.Engine
	patterns   *patterns.Recognizer

	emaProximity float64 // |close-ema20|/close band that counts as "near"
	rsiBuyMax    float64 // RSI below this is a pullback in a buy context
	rsiSellMin   float64 // RSI above this is a rally in a sell context
}

// NewEvaluator creates an evaluator with the given setup thresholds.
func NewEvaluator(engine *indicators.Engine, recognizer *patterns.Recognizer, emaProximity, rsiBuyMax, rsiSellMin float64) *Evaluator {
	return &Evaluator{
		indicators:   engine,
		patterns:     recognizer,
		emaProximity: emaProximity,
		rsiBuyMax:    rsiBuyMax,
		rsiSellMin:   rsiSellMin,
	}
}

// Evaluate combines environment, setup and trigger into a directional
// decision for one symbol. A signal fires only when all three agree on the
// same direction; an undefined indicator at the evaluated bars degrades the
// result to insufficient-data rather than a false signal. Price levels are
// not filled in here; the risk calculator does that for fired signals.
func (e *Evaluator) Evaluate(symbol string, trend, entry models.Series) Result {
	noSignal := models.Signal{Symbol: symbol, Direction: models.DirectionNone}
	if last, ok := entry.Last(); ok {
		noSignal.Timestamp = last.CloseTime
	}

	if len(trend) == 0 || len(entry) == 0 {
		return Result{Status: models.StatusInsufficientData, Signal: noSignal}
	}

	trendSet := e.indicators.Calculate(trend)
	entrySet := e.indicators.Calculate(entry)

	// 1. Environment: latest trend-timeframe close against the 200 EMA
	ti := len(trend) - 1
	if !indicators.Defined(trendSet.EMA200, ti) {
		return Result{Status: models.StatusInsufficientData, Signal: noSignal}
	}
	direction := e.environment(trend[ti].Close, trendSet.EMA200[ti])
	if direction == models.DirectionNone {
		return Result{Status: models.StatusNoSignal, Signal: noSignal}
	}

	// 2. Setup: entry-timeframe pullback into the EMA20 band or RSI zone
	ei := len(entry) - 1
	if !indicators.Defined(entrySet.EMA20, ei) || !indicators.Defined(entrySet.RSI14, ei) {
		return Result{Status: models.StatusInsufficientData, Signal: noSignal}
	}
	setupOK := e.setup(direction, entry[ei].Close, entrySet.EMA20[ei], entrySet.RSI14[ei])

	// 3. Trigger: candlestick pattern on the most recent closed entry bar
	trigger := e.patterns.Detect(entry)
	triggerOK := (direction == models.DirectionBuy && trigger.Kind.Bullish()) ||
		(direction == models.DirectionSell && trigger.Kind.Bearish())

	sig := models.Signal{
		Symbol:        symbol,
		Direction:     models.DirectionNone,
		EnvironmentOK: true,
		SetupOK:       setupOK,
		Trigger:       trigger,
		Timestamp:     entry[ei].CloseTime,
	}

	if !setupOK || !triggerOK {
		return Result{Status: models.StatusNoSignal, Signal: sig}
	}

	sig.Direction = direction
	return Result{Status: models.StatusSignal, Signal: sig}
}

func (e *Evaluator) environment(close, ema200 float64) models.Direction {
	switch {
	case close > ema200:
		return models.DirectionBuy
	case close < ema200:
		return models.DirectionSell
	default:
		return models.DirectionNone
	}
}

func (e *Evaluator) setup(direction models.Direction, close, ema20, rsi float64) bool {
	nearEMA := close != 0 && math.Abs(close-ema20)/close <= e.emaProximity

	if direction == models.DirectionBuy {
		return nearEMA || rsi < e.rsiBuyMax
	}
	return nearEMA || rsi > e.rsiSellMin
}
