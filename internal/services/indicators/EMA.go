package indicators

import "math"

// EMAService provides Exponential Moving Average calculations
type EMAService struct{}

// NewEMAService creates a new EMA service instance
func NewEMAService() *EMAService {
	return &EMAService{}
}

// Calculate computes EMA for the entire price series. The result is
// index-aligned with prices; bars inside the warm-up window (index < period-1)
// are NaN, never zero. A series shorter than the period yields an all-NaN
// result rather than an error; callers must check definedness before use.
func (s *EMAService) Calculate(prices []float64, period int) []float64 {
	ema := undefinedSeries(len(prices))
	if period <= 0 || len(prices) < period {
		return ema
	}

	multiplier := s.getMultiplier(period)

	// Seed with the simple average of the first `period` closes
	ema[period-1] = s.calculateInitialSMA(prices, period)

	for i := period; i < len(prices); i++ {
		ema[i] = s.calculatePoint(prices[i], ema[i-1], multiplier)
	}

	return ema
}

func (s *EMAService) getMultiplier(period int) float64 {
	return 2.0 / float64(period+1)
}

func (s *EMAService) calculateInitialSMA(prices []float64, period int) float64 {
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	return sum / float64(period)
}

func (s *EMAService) calculatePoint(price, prevEMA, multiplier float64) float64 {
	return (price-prevEMA)*multiplier + prevEMA
}

func undefinedSeries(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}
	return values
}

// Defined reports whether the indicator value at index i is outside the
// warm-up window and usable.
func Defined(values []float64, i int) bool {
	return i >= 0 && i < len(values) && !math.IsNaN(values[i])
}

// DefinedCount returns how many values of the series are defined.
func DefinedCount(values []float64) int {
	count := 0
	for i := range values {
		if !math.IsNaN(values[i]) {
			count++
		}
	}
	return count
}
