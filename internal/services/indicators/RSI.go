package indicators

// RSIService provides Relative Strength Index calculations using Wilder's
// smoothing of average gains and losses.
type RSIService struct{}

// NewRSIService creates a new RSI service instance
func NewRSIService() *RSIService {
	return &RSIService{}
}

// Calculate computes RSI for the entire price series. Values are in [0, 100]
// and index-aligned with prices; the first `period` indices are NaN. A window
// with zero losses yields RSI = 100. A series shorter than period+1 prices
// yields an all-NaN result.
func (s *RSIService) Calculate(prices []float64, period int) []float64 {
	rsi := undefinedSeries(len(prices))
	if period <= 0 || len(prices) < period+1 {
		return rsi
	}

	// Seed the averages over the first `period` deltas
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	rsi[period] = s.rsiValue(avgGain, avgLoss)

	// Wilder smoothing: avg = (avg*(period-1) + current) / period
	for i := period + 1; i < len(prices); i++ {
		var gain, loss float64
		change := prices[i] - prices[i-1]
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		rsi[i] = s.rsiValue(avgGain, avgLoss)
	}

	return rsi
}

func (s *RSIService) rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
