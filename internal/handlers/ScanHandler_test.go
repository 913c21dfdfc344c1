package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"StockSignalBot/internal/models"
	"StockSignalBot/internal/operations/marketdata"
	"StockSignalBot/internal/services/indicators"
	"StockSignalBot/internal/services/notify"
	"StockSignalBot/internal/services/patterns"
	"StockSignalBot/internal/services/risk"
	"StockSignalBot/internal/services/signal"

	"github.com/rs/zerolog"
)

type fakeSupplier struct {
	data map[string]models.Series // keyed by symbol/timeframe
	errs map[string]error         // per-symbol failures
}

func (f *fakeSupplier) Fetch(_ context.Context, symbol, timeframe string, _ int) (models.Series, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	series, ok := f.data[symbol+"/"+timeframe]
	if !ok {
		return nil, fmt.Errorf("%w: no data for %s %s", marketdata.ErrUnavailable, symbol, timeframe)
	}
	return series, nil
}

type fakeNotifier struct {
	sent []*notify.Notification
}

func (f *fakeNotifier) Send(n *notify.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) IsEnabled() bool { return true }

type fakeRiskCalc struct {
	err error
}

func (f *fakeRiskCalc) Calculate(_ models.Direction, _ models.Series) (*risk.Levels, error) {
	return nil, f.err
}

// fakeBarStore records calls; symbols are scanned concurrently so it locks.
type fakeBarStore struct {
	mu      sync.Mutex
	saved   []models.Series
	cutoffs []time.Time
}

func (f *fakeBarStore) SaveSeries(series models.Series) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, series)
	return nil
}

func (f *fakeBarStore) DeleteBefore(cutoff time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return nil
}

func flatSeries(n int, level, lastClose float64) models.Series {
	series := make(models.Series, n)
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i := range series {
		close := level
		if i == n-1 {
			close = lastClose
		}
		series[i] = models.Bar{
			OpenTime:  start.Add(time.Duration(i) * time.Hour),
			CloseTime: start.Add(time.Duration(i+1) * time.Hour),
			Open:      close, High: close, Low: close, Close: close,
		}
	}
	return series
}

// buyEntrySeries ends in a bullish pinbar after a steady decline.
func buyEntrySeries() models.Series {
	series := make(models.Series, 0, 31)
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	close := 60.0
	for i := 0; i < 30; i++ {
		open := close
		close -= 0.35
		series = append(series, models.Bar{
			OpenTime:  start.Add(time.Duration(i) * 15 * time.Minute),
			CloseTime: start.Add(time.Duration(i+1) * 15 * time.Minute),
			Open:      open,
			High:      open + 0.05,
			Low:       close - 0.05,
			Close:     close,
		})
	}
	return append(series, models.Bar{
		OpenTime:  start.Add(30 * 15 * time.Minute),
		CloseTime: start.Add(31 * 15 * time.Minute),
		Open:      50, High: 51, Low: 40, Close: 49,
	})
}

func newTestHandler(supplier marketdata.Supplier, notifier notify.Notifier) *ScanHandler {
	engine := indicators.NewEngine(20, 200, 14)
	evaluator := signal.NewEvaluator(engine, patterns.NewRecognizer(), 0.01, 40, 60)
	riskCalc := risk.NewCalculator(2, 0.001)

	return NewScanHandler(supplier, evaluator, riskCalc, notifier, nil, nil,
		ScanSettings{
			TrendTimeFrame: models.TimeFrame4h,
			EntryTimeFrame: models.TimeFrame15m,
			TrendLookback:  250,
			EntryLookback:  250,
		}, zerolog.Nop())
}

func resultBySymbol(results []InstrumentResult, symbol string) *InstrumentResult {
	for i := range results {
		if results[i].Symbol == symbol {
			return &results[i]
		}
	}
	return nil
}

// TestRunCycleStatuses checks that every instrument gets exactly one status
// and one failing instrument never aborts the others.
func TestRunCycleStatuses(t *testing.T) {
	supplier := &fakeSupplier{
		data: map[string]models.Series{
			"GOOD/4h":  flatSeries(210, 100, 110),
			"GOOD/15m": buyEntrySeries(),
			"FLAT/4h":  flatSeries(210, 100, 100), // close == EMA200, neutral
			"FLAT/15m": buyEntrySeries(),
		},
		errs: map[string]error{
			"BAD": fmt.Errorf("%w: rate limited", marketdata.ErrUnavailable),
		},
	}
	notifier := &fakeNotifier{}
	h := newTestHandler(supplier, notifier)

	symbols := []string{"GOOD", "BAD", "FLAT"}
	results, updated := h.RunCycle(context.Background(), symbols, map[string]models.Direction{})

	if len(results) != len(symbols) {
		t.Fatalf("expected %d results, got %d", len(symbols), len(results))
	}

	good := resultBySymbol(results, "GOOD")
	if good == nil || good.Status != models.StatusSignal {
		t.Fatalf("expected GOOD to produce a signal, got %+v", good)
	}
	if good.Signal.Direction != models.DirectionBuy {
		t.Errorf("expected buy, got %s", good.Signal.Direction)
	}
	if good.Signal.EntryPrice != 49 {
		t.Errorf("expected entry 49, got %f", good.Signal.EntryPrice)
	}
	if good.Signal.TakeProfit <= good.Signal.EntryPrice {
		t.Error("buy take-profit must sit above entry")
	}

	bad := resultBySymbol(results, "BAD")
	if bad == nil || bad.Status != models.StatusFetchError {
		t.Fatalf("expected BAD to report fetch-error, got %+v", bad)
	}
	if !errors.Is(bad.Err, marketdata.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", bad.Err)
	}

	flat := resultBySymbol(results, "FLAT")
	if flat == nil || flat.Status != models.StatusNoSignal {
		t.Fatalf("expected FLAT to report no-signal, got %+v", flat)
	}

	if updated["GOOD"] != models.DirectionBuy {
		t.Errorf("expected updated map to carry buy for GOOD, got %s", updated["GOOD"])
	}
	if updated["FLAT"] != models.DirectionNone {
		t.Errorf("expected none for FLAT, got %s", updated["FLAT"])
	}
	if _, ok := updated["BAD"]; ok {
		t.Error("a fetch-error cycle must not invent a state for the symbol")
	}

	if len(notifier.sent) != 1 || notifier.sent[0].Symbol != "GOOD" {
		t.Fatalf("expected exactly one notification for GOOD, got %d", len(notifier.sent))
	}
}

// TestRunCycleDedup checks that an unchanged signal direction does not
// notify twice, and that the caller's map is not mutated.
func TestRunCycleDedup(t *testing.T) {
	supplier := &fakeSupplier{
		data: map[string]models.Series{
			"GOOD/4h":  flatSeries(210, 100, 110),
			"GOOD/15m": buyEntrySeries(),
		},
	}
	notifier := &fakeNotifier{}
	h := newTestHandler(supplier, notifier)

	input := map[string]models.Direction{"GOOD": models.DirectionNone}
	_, updated := h.RunCycle(context.Background(), []string{"GOOD"}, input)
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification on the first cycle, got %d", len(notifier.sent))
	}
	if input["GOOD"] != models.DirectionNone {
		t.Error("the input map must not be mutated")
	}

	// Same data, same direction: no duplicate notification
	_, updated = h.RunCycle(context.Background(), []string{"GOOD"}, updated)
	if len(notifier.sent) != 1 {
		t.Errorf("expected no duplicate notification, got %d", len(notifier.sent))
	}
	if updated["GOOD"] != models.DirectionBuy {
		t.Errorf("expected buy to persist in the map, got %s", updated["GOOD"])
	}
}

// TestRunCycleNoValidStop checks that a signal whose bars yield no tradable
// stop is still reported as a signal, carries the entry price and the error,
// and is never notified.
func TestRunCycleNoValidStop(t *testing.T) {
	supplier := &fakeSupplier{
		data: map[string]models.Series{
			"GOOD/4h":  flatSeries(210, 100, 110),
			"GOOD/15m": buyEntrySeries(),
		},
	}
	notifier := &fakeNotifier{}

	engine := indicators.NewEngine(20, 200, 14)
	evaluator := signal.NewEvaluator(engine, patterns.NewRecognizer(), 0.01, 40, 60)
	h := NewScanHandler(supplier, evaluator, &fakeRiskCalc{err: risk.ErrNoValidStop},
		notifier, nil, nil,
		ScanSettings{
			TrendTimeFrame: models.TimeFrame4h,
			EntryTimeFrame: models.TimeFrame15m,
			TrendLookback:  250,
			EntryLookback:  250,
		}, zerolog.Nop())

	results, updated := h.RunCycle(context.Background(), []string{"GOOD"}, nil)

	res := resultBySymbol(results, "GOOD")
	if res == nil || res.Status != models.StatusSignal {
		t.Fatalf("expected the signal status to survive a missing stop, got %+v", res)
	}
	if !errors.Is(res.Err, risk.ErrNoValidStop) {
		t.Fatalf("expected ErrNoValidStop on the result, got %v", res.Err)
	}
	if res.Signal.EntryPrice != 49 {
		t.Errorf("expected the last close as entry, got %f", res.Signal.EntryPrice)
	}
	if res.Signal.StopLoss != 0 || res.Signal.TakeProfit != 0 {
		t.Errorf("expected zero levels, got stop %f take-profit %f",
			res.Signal.StopLoss, res.Signal.TakeProfit)
	}
	if updated["GOOD"] != models.DirectionBuy {
		t.Errorf("expected the direction to be tracked, got %s", updated["GOOD"])
	}
	if len(notifier.sent) != 0 {
		t.Errorf("a signal without tradable levels must not notify, got %d", len(notifier.sent))
	}
}

// TestRunCycleBarRetention checks that fetched series are stored and that one
// prune with the configured retention window runs per cycle.
func TestRunCycleBarRetention(t *testing.T) {
	supplier := &fakeSupplier{
		data: map[string]models.Series{
			"GOOD/4h":  flatSeries(210, 100, 110),
			"GOOD/15m": buyEntrySeries(),
		},
	}
	store := &fakeBarStore{}

	engine := indicators.NewEngine(20, 200, 14)
	evaluator := signal.NewEvaluator(engine, patterns.NewRecognizer(), 0.01, 40, 60)
	retention := 720 * time.Hour
	h := NewScanHandler(supplier, evaluator, risk.NewCalculator(2, 0.001),
		&fakeNotifier{}, store, nil,
		ScanSettings{
			TrendTimeFrame: models.TimeFrame4h,
			EntryTimeFrame: models.TimeFrame15m,
			TrendLookback:  250,
			EntryLookback:  250,
			Retention:      retention,
		}, zerolog.Nop())

	before := time.Now().Add(-retention)
	h.RunCycle(context.Background(), []string{"GOOD"}, nil)
	after := time.Now().Add(-retention)

	if len(store.saved) != 2 {
		t.Fatalf("expected both timeframes saved, got %d series", len(store.saved))
	}
	if len(store.cutoffs) != 1 {
		t.Fatalf("expected exactly one prune per cycle, got %d", len(store.cutoffs))
	}
	cutoff := store.cutoffs[0]
	if cutoff.Before(before) || cutoff.After(after) {
		t.Errorf("prune cutoff %v outside the retention window", cutoff)
	}
}

// TestRunCycleInsufficientData checks the short-series status path through
// the full pipeline.
func TestRunCycleInsufficientData(t *testing.T) {
	supplier := &fakeSupplier{
		data: map[string]models.Series{
			"SHORT/4h":  flatSeries(50, 100, 110),
			"SHORT/15m": buyEntrySeries(),
		},
	}
	h := newTestHandler(supplier, &fakeNotifier{})

	results, _ := h.RunCycle(context.Background(), []string{"SHORT"}, nil)
	if results[0].Status != models.StatusInsufficientData {
		t.Fatalf("expected insufficient-data, got %s", results[0].Status)
	}
	if results[0].Signal.Direction != models.DirectionNone {
		t.Errorf("expected no direction, got %s", results[0].Signal.Direction)
	}
}
