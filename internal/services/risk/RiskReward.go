package risk

import (
	"StockSignalBot/internal/models"
	"errors"
	"math"
)

// ErrNoValidStop is reported when the trigger bar gives no price structure to
// anchor a stop-loss on (zero risk distance). Take-profit is suppressed
// instead of dividing a degenerate range.
var ErrNoValidStop = errors.New("no valid stop: zero risk distance")

// Levels are the price levels proposed for a fired signal.
type Levels struct {
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Risk       float64 // absolute distance entry -> stop
}

// Calculator derives stop-loss and take-profit levels from the entry-timeframe
// series of a fired signal, enforcing a fixed risk-reward ratio.
type Calculator struct {
	ratio      float64 // reward as a multiple of risk
	bufferFrac float64 // stop buffer as a fraction of entry price
}

// NewCalculator creates a calculator. ratio is the reward multiple (2 gives
// 1:2 risk-reward); bufferFrac pads the stop beyond the trigger-bar extreme.
func NewCalculator(ratio, bufferFrac float64) *Calculator {
	return &Calculator{
		ratio:      ratio,
		bufferFrac: bufferFrac,
	}
}

// Calculate computes entry, stop-loss and take-profit for the given direction.
// Entry is the latest close. The stop anchors on the trigger bar's extreme or
// the more protective extreme of the last 2 bars, padded by the buffer. A
// trigger bar with no range in the stop direction yields ErrNoValidStop.
func (c *Calculator) Calculate(direction models.Direction, entry models.Series) (*Levels, error) {
	last, ok := entry.Last()
	if !ok {
		return nil, errors.New("empty entry series")
	}
	entryPrice := last.Close
	buffer := entryPrice * c.bufferFrac

	var stop, structRisk float64
	switch direction {
	case models.DirectionBuy:
		low := last.Low
		if len(entry) >= 2 {
			low = math.Min(low, entry[len(entry)-2].Low)
		}
		structRisk = entryPrice - low
		stop = low - buffer
	case models.DirectionSell:
		high := last.High
		if len(entry) >= 2 {
			high = math.Max(high, entry[len(entry)-2].High)
		}
		structRisk = high - entryPrice
		stop = high + buffer
	default:
		return nil, errors.New("no direction to calculate levels for")
	}

	// The buffer alone is not structure; a flat trigger bar has no stop
	if structRisk <= 0 {
		return nil, ErrNoValidStop
	}

	riskDistance := math.Abs(entryPrice - stop)
	levels := &Levels{
		Entry:    entryPrice,
		StopLoss: stop,
		Risk:     riskDistance,
	}

	if direction == models.DirectionBuy {
		levels.TakeProfit = entryPrice + riskDistance*c.ratio
	} else {
		levels.TakeProfit = entryPrice - riskDistance*c.ratio
	}

	return levels, nil
}
