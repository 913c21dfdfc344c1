package marketdata

import (
	"StockSignalBot/internal/models"
	"math"
)

// Resample aggregates consecutive groups of `factor` bars into single bars of
// the target timeframe: first open, highest high, lowest low, last close,
// summed volume. A trailing group with fewer than `factor` bars is dropped so
// only complete buckets come back.
func Resample(series models.Series, factor int, timeframe string) models.Series {
	if factor <= 1 || len(series) < factor {
		return nil
	}

	out := make(models.Series, 0, len(series)/factor)
	for start := 0; start+factor <= len(series); start += factor {
		group := series[start : start+factor]

		bar := models.Bar{
			Symbol:    group[0].Symbol,
			TimeFrame: timeframe,
			OpenTime:  group[0].OpenTime,
			CloseTime: group[len(group)-1].CloseTime,
			Open:      group[0].Open,
			High:      group[0].High,
			Low:       group[0].Low,
			Close:     group[len(group)-1].Close,
		}
		for _, b := range group {
			bar.High = math.Max(bar.High, b.High)
			bar.Low = math.Min(bar.Low, b.Low)
			bar.Volume += b.Volume
		}

		out = append(out, bar)
	}

	return out
}
