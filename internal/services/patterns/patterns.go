package patterns

import (
	"StockSignalBot/internal/models"
	"math"
)

// Recognizer classifies the most recent closed bar of a series as a pinbar,
// an engulfing candle, or none. Pinbar is checked first; the first match wins,
// so a bar is never reported with two kinds.
type Recognizer struct {
	wickRatio    float64 // wick must be at least this multiple of the body
	bodyFraction float64 // body must be at most this fraction of the range
}

// NewRecognizer creates a recognizer with the standard thresholds:
// wick >= 2x body, body <= 1/3 of the bar range.
func NewRecognizer() *Recognizer {
	return &Recognizer{
		wickRatio:    2.0,
		bodyFraction: 1.0 / 3.0,
	}
}

// Detect classifies the last bar of the series. Callers pass closed bars
// only; the still-forming bar is never evaluated. Fewer than 2 bars yields
// PatternNone.
func (r *Recognizer) Detect(bars models.Series) models.PatternMatch {
	if len(bars) < 2 {
		return models.PatternMatch{BarIndex: len(bars) - 1, Kind: models.PatternNone}
	}

	curr := bars[len(bars)-1]
	prev := bars[len(bars)-2]
	match := models.PatternMatch{BarIndex: len(bars) - 1, Kind: models.PatternNone}

	if kind := r.checkPinbar(curr); kind != models.PatternNone {
		match.Kind = kind
		return match
	}

	match.Kind = r.checkEngulfing(prev, curr)
	return match
}

func (r *Recognizer) checkPinbar(bar models.Bar) models.PatternKind {
	body := math.Abs(bar.Close - bar.Open)
	upperWick := bar.High - math.Max(bar.Open, bar.Close)
	lowerWick := math.Min(bar.Open, bar.Close) - bar.Low
	totalRange := bar.High - bar.Low

	// A zero body makes the wick-to-body test vacuous
	if body == 0 || totalRange <= 0 {
		return models.PatternNone
	}

	if body > totalRange*r.bodyFraction {
		return models.PatternNone
	}

	if lowerWick >= body*r.wickRatio {
		return models.PatternBullishPinbar
	}
	if upperWick >= body*r.wickRatio {
		return models.PatternBearishPinbar
	}

	return models.PatternNone
}

func (r *Recognizer) checkEngulfing(prev, curr models.Bar) models.PatternKind {
	currBodyHigh := math.Max(curr.Open, curr.Close)
	currBodyLow := math.Min(curr.Open, curr.Close)
	prevBodyHigh := math.Max(prev.Open, prev.Close)
	prevBodyLow := math.Min(prev.Open, prev.Close)

	engulfs := currBodyLow <= prevBodyLow && currBodyHigh >= prevBodyHigh

	// Bullish: previous bar bearish, current bar bullish and containing it
	if prev.Close < prev.Open && curr.Close > curr.Open && engulfs {
		return models.PatternBullishEngulfing
	}

	// Bearish: previous bar bullish, current bar bearish and containing it
	if prev.Close > prev.Open && curr.Close < curr.Open && engulfs {
		return models.PatternBearishEngulfing
	}

	return models.PatternNone
}
