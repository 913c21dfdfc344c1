package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"StockSignalBot/internal/models"
	"StockSignalBot/internal/operations/marketdata"
	"StockSignalBot/internal/repositories"
	"StockSignalBot/internal/services/notify"
	"StockSignalBot/internal/services/risk"
	"StockSignalBot/internal/services/signal"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RiskCalculator turns a signal direction and its entry-timeframe series into
// price levels. Satisfied by risk.Calculator.
type RiskCalculator interface {
	Calculate(direction models.Direction, entry models.Series) (*risk.Levels, error)
}

// BarStore persists fetched bars and prunes old ones. Satisfied by
// repositories.BarRepository.
type BarStore interface {
	SaveSeries(series models.Series) error
	DeleteBefore(cutoff time.Time) error
}

// ScanSettings designates the trend and entry timeframes and their lookback
// windows for every instrument in the watch-list. Retention bounds the bar
// audit table; zero disables pruning.
type ScanSettings struct {
	TrendTimeFrame string
	EntryTimeFrame string
	TrendLookback  int
	EntryLookback  int
	Retention      time.Duration
}

// InstrumentResult is the per-instrument outcome of one cycle. Every symbol
// in the watch-list produces exactly one result; a failing symbol is recorded
// here instead of aborting the cycle.
type InstrumentResult struct {
	Symbol string
	Status models.Status
	Signal models.Signal
	Err    error
}

// ScanHandler runs the full pipeline for a watch-list: fetch both timeframes,
// evaluate, compute risk levels, notify new signals. Instruments are
// independent and scanned concurrently; each one owns its series and signal.
type ScanHandler struct {
	supplier  marketdata.Supplier
	evaluator *signal.Evaluator
	risk      RiskCalculator
	notifier  notify.Notifier
	barRepo   BarStore
	stateRepo *repositories.SignalStateRepository
	settings  ScanSettings
	log       zerolog.Logger
}

// NewScanHandler creates a scan handler. barRepo and stateRepo may be nil to
// run without persistence.
func NewScanHandler(
	supplier marketdata.Supplier,
	evaluator *signal.Evaluator,
	riskCalc RiskCalculator,
	notifier notify.Notifier,
	barRepo BarStore,
	stateRepo *repositories.SignalStateRepository,
	settings ScanSettings,
	log zerolog.Logger,
) *ScanHandler {
	return &ScanHandler{
		supplier:  supplier,
		evaluator: evaluator,
		risk:      riskCalc,
		notifier:  notifier,
		barRepo:   barRepo,
		stateRepo: stateRepo,
		settings:  settings,
		log:       log,
	}
}

// RunCycle scans every symbol once and returns one result per symbol plus the
// updated last-known-direction map. The map passed in is not mutated; dedup
// state flows explicitly through this call rather than living in the handler.
func (h *ScanHandler) RunCycle(ctx context.Context, symbols []string, lastKnown map[string]models.Direction) ([]InstrumentResult, map[string]models.Direction) {
	cycleID := uuid.NewString()
	log := h.log.With().Str("cycle", cycleID).Logger()

	results := make([]InstrumentResult, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			results[i] = h.scanSymbol(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	updated := make(map[string]models.Direction, len(lastKnown)+len(symbols))
	for symbol, direction := range lastKnown {
		updated[symbol] = direction
	}

	signals := 0
	failures := 0
	for _, res := range results {
		switch res.Status {
		case models.StatusSignal:
			signals++
			isNew := updated[res.Symbol] != res.Signal.Direction
			updated[res.Symbol] = res.Signal.Direction
			if isNew && res.Err == nil {
				h.sendNotification(log, res)
			}
		case models.StatusNoSignal:
			updated[res.Symbol] = models.DirectionNone
		case models.StatusFetchError, models.StatusInsufficientData:
			// No fresh decision for this symbol; keep the previous state
			failures++
		}

		log.Info().
			Str("symbol", res.Symbol).
			Str("status", res.Status.String()).
			Str("direction", res.Signal.Direction.String()).
			Msg("instrument scanned")
	}

	if h.stateRepo != nil {
		if err := h.stateRepo.Save(updated); err != nil {
			log.Error().Err(err).Msg("failed to persist signal state")
		}
	}

	h.pruneBars(log)

	log.Info().
		Int("symbols", len(symbols)).
		Int("signals", signals).
		Int("failures", failures).
		Msg("scan cycle complete")

	return results, updated
}

func (h *ScanHandler) scanSymbol(ctx context.Context, symbol string) InstrumentResult {
	trend, err := h.supplier.Fetch(ctx, symbol, h.settings.TrendTimeFrame, h.settings.TrendLookback)
	if err != nil {
		return h.fetchFailure(symbol, err)
	}

	entry, err := h.supplier.Fetch(ctx, symbol, h.settings.EntryTimeFrame, h.settings.EntryLookback)
	if err != nil {
		return h.fetchFailure(symbol, err)
	}

	h.saveBars(trend, entry)

	evaluation := h.evaluator.Evaluate(symbol, trend, entry)
	result := InstrumentResult{
		Symbol: symbol,
		Status: evaluation.Status,
		Signal: evaluation.Signal,
	}

	if evaluation.Status != models.StatusSignal {
		return result
	}

	levels, err := h.risk.Calculate(evaluation.Signal.Direction, entry)
	if err != nil {
		// Signal stands but has no tradable levels; entry is still reported
		if last, ok := entry.Last(); ok {
			result.Signal.EntryPrice = last.Close
		}
		result.Err = err
		if !errors.Is(err, risk.ErrNoValidStop) {
			h.log.Error().Err(err).Str("symbol", symbol).Msg("risk calculation failed")
		}
		return result
	}

	result.Signal.EntryPrice = levels.Entry
	result.Signal.StopLoss = levels.StopLoss
	result.Signal.TakeProfit = levels.TakeProfit
	return result
}

func (h *ScanHandler) fetchFailure(symbol string, err error) InstrumentResult {
	h.log.Warn().Err(err).Str("symbol", symbol).Msg("fetch failed")
	return InstrumentResult{
		Symbol: symbol,
		Status: models.StatusFetchError,
		Signal: models.Signal{Symbol: symbol, Direction: models.DirectionNone},
		Err:    err,
	}
}

func (h *ScanHandler) saveBars(series ...models.Series) {
	if h.barRepo == nil {
		return
	}
	for _, s := range series {
		if err := h.barRepo.SaveSeries(s); err != nil {
			h.log.Error().Err(err).Msg("failed to save bars")
		}
	}
}

// pruneBars drops stored bars older than the retention window so the audit
// table stays bounded across long runs.
func (h *ScanHandler) pruneBars(log zerolog.Logger) {
	if h.barRepo == nil || h.settings.Retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-h.settings.Retention)
	if err := h.barRepo.DeleteBefore(cutoff); err != nil {
		log.Error().Err(err).Msg("failed to prune bars")
	}
}

func (h *ScanHandler) sendNotification(log zerolog.Logger, res InstrumentResult) {
	if h.notifier == nil || !h.notifier.IsEnabled() {
		return
	}

	err := h.notifier.Send(&notify.Notification{
		Symbol:     res.Symbol,
		Direction:  res.Signal.Direction,
		Trigger:    res.Signal.Trigger.Kind,
		Entry:      res.Signal.EntryPrice,
		StopLoss:   res.Signal.StopLoss,
		TakeProfit: res.Signal.TakeProfit,
		Timestamp:  res.Signal.Timestamp,
	})
	if err != nil {
		log.Error().Err(err).Str("symbol", res.Symbol).Msg("notification failed")
	}
}
