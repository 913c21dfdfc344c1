package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"StockSignalBot/internal/models"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
)

// ErrUnavailable wraps every supplier failure: network or rate-limit errors
// from the venue, and timeframe/lookback combinations the venue cannot serve.
var ErrUnavailable = errors.New("market data unavailable")

// Supplier is the data collaborator consumed by the scan pipeline.
type Supplier interface {
	Fetch(ctx context.Context, symbol, timeframe string, lookback int) (models.Series, error)
}

// maxLookback is the largest trailing window the venue serves per timeframe.
// Short intraday timeframes are limited to a small trailing window.
var maxLookback = map[string]int{
	models.TimeFrame1m:  1500,
	models.TimeFrame5m:  1500,
	models.TimeFrame15m: 1500,
	models.TimeFrame1h:  1500,
	models.TimeFrame4h:  1000,
	models.TimeFrame1d:  1000,
}

// Fetcher retrieves kline series from Binance futures.
type Fetcher struct {
	client   *futures.Client
	derive4h bool // build 4h bars from 1h klines instead of fetching natively
	log      zerolog.Logger
}

// NewFetcher creates a fetcher. With derive4h set, 4h requests are served by
// fetching 1h klines and aggregating 4:1.
func NewFetcher(client *futures.Client, derive4h bool, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		derive4h: derive4h,
		log:      log,
	}
}

// Fetch returns the most recent `lookback` closed bars for the symbol and
// timeframe, oldest first.
func (f *Fetcher) Fetch(ctx context.Context, symbol, timeframe string, lookback int) (models.Series, error) {
	if err := f.validate(timeframe, lookback); err != nil {
		return nil, err
	}

	if timeframe == models.TimeFrame4h && f.derive4h {
		// Derivation needs 4 hourly bars per 4h bar, which hits the 1h
		// window cap sooner than the native one.
		if err := f.validate(models.TimeFrame1h, lookback*4); err != nil {
			return nil, err
		}
		hourly, err := f.fetch(ctx, symbol, models.TimeFrame1h, lookback*4)
		if err != nil {
			return nil, err
		}
		return Resample(hourly, 4, models.TimeFrame4h), nil
	}

	return f.fetch(ctx, symbol, timeframe, lookback)
}

func (f *Fetcher) validate(timeframe string, lookback int) error {
	limit, ok := maxLookback[timeframe]
	if !ok {
		return fmt.Errorf("%w: unsupported timeframe %q", ErrUnavailable, timeframe)
	}
	if lookback <= 0 || lookback > limit {
		return fmt.Errorf("%w: lookback %d outside supported window for %s (max %d)",
			ErrUnavailable, lookback, timeframe, limit)
	}
	return nil
}

func (f *Fetcher) fetch(ctx context.Context, symbol, timeframe string, lookback int) (models.Series, error) {
	klines, err := f.client.NewKlinesService().
		Symbol(symbol).
		Interval(timeframe).
		Limit(lookback).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, symbol, timeframe, err)
	}

	series := make(models.Series, 0, len(klines))
	for _, k := range klines {
		series = append(series, models.Bar{
			Symbol:    symbol,
			TimeFrame: timeframe,
			OpenTime:  time.Unix(k.OpenTime/1000, 0),
			CloseTime: time.Unix(k.CloseTime/1000, 0),
			Open:      parseFloat(k.Open),
			High:      parseFloat(k.High),
			Low:       parseFloat(k.Low),
			Close:     parseFloat(k.Close),
			Volume:    parseFloat(k.Volume),
		})
	}

	// Drop the still-forming bar so the pipeline only ever sees closed bars
	if len(series) > 0 {
		last := series[len(series)-1]
		if last.CloseTime.After(time.Now()) {
			series = series[:len(series)-1]
		}
	}

	f.log.Debug().
		Str("symbol", symbol).
		Str("timeframe", timeframe).
		Int("bars", len(series)).
		Msg("fetched klines")

	return series, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
