package models

import (
	"time"
)

// Direction is the trade direction of a signal.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionBuy
	DirectionSell
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "none"
	}
}

// Status is the per-instrument outcome of one scan cycle. Every instrument
// in the watch-list gets exactly one status per cycle.
type Status int

const (
	StatusNoSignal Status = iota
	StatusSignal
	StatusInsufficientData
	StatusFetchError
)

func (s Status) String() string {
	switch s {
	case StatusSignal:
		return "signal"
	case StatusInsufficientData:
		return "insufficient-data"
	case StatusFetchError:
		return "fetch-error"
	default:
		return "no-signal"
	}
}

// PatternKind classifies the candlestick pattern of a single closed bar.
type PatternKind int

const (
	PatternNone PatternKind = iota
	PatternBullishPinbar
	PatternBearishPinbar
	PatternBullishEngulfing
	PatternBearishEngulfing
)

func (k PatternKind) String() string {
	switch k {
	case PatternBullishPinbar:
		return "bullish_pinbar"
	case PatternBearishPinbar:
		return "bearish_pinbar"
	case PatternBullishEngulfing:
		return "bullish_engulfing"
	case PatternBearishEngulfing:
		return "bearish_engulfing"
	default:
		return "none"
	}
}

// Bullish reports whether the pattern triggers in the buy direction.
func (k PatternKind) Bullish() bool {
	return k == PatternBullishPinbar || k == PatternBullishEngulfing
}

// Bearish reports whether the pattern triggers in the sell direction.
func (k PatternKind) Bearish() bool {
	return k == PatternBearishPinbar || k == PatternBearishEngulfing
}

// PatternMatch is the classification of one bar within a series.
type PatternMatch struct {
	BarIndex int
	Kind     PatternKind
}

// Signal is the result of one evaluation of one instrument. Created fresh
// each cycle and never mutated afterward.
type Signal struct {
	Symbol        string
	Direction     Direction
	EnvironmentOK bool
	SetupOK       bool
	Trigger       PatternMatch
	EntryPrice    float64
	StopLoss      float64
	TakeProfit    float64
	Timestamp     time.Time
}
