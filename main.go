package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockSignalBot/config"
	"StockSignalBot/internal/handlers"
	"StockSignalBot/internal/models"
	"StockSignalBot/internal/operations/marketdata"
	"StockSignalBot/internal/repositories"
	"StockSignalBot/internal/services/indicators"
	"StockSignalBot/internal/services/notify"
	"StockSignalBot/internal/services/patterns"
	"StockSignalBot/internal/services/risk"
	signalsvc "StockSignalBot/internal/services/signal"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup database
	db := setupDatabase(cfg.Database, log)
	barRepo := repositories.NewBarRepository(db)
	stateRepo := repositories.NewSignalStateRepository(db)

	// Initialize Binance client and data supplier
	futuresClient := futures.NewClient(cfg.Exchange.APIKey, cfg.Exchange.SecretKey)
	fetcher := marketdata.NewFetcher(futuresClient, cfg.Scan.Derive4h, log)

	// Build the signal pipeline
	engine := indicators.NewEngine(cfg.Strategy.EMAFastPeriod, cfg.Strategy.EMASlowPeriod, cfg.Strategy.RSIPeriod)
	recognizer := patterns.NewRecognizer()
	evaluator := signalsvc.NewEvaluator(engine, recognizer,
		cfg.Strategy.EMAProximity, cfg.Strategy.RSIBuyMax, cfg.Strategy.RSISellMin)
	riskCalc := risk.NewCalculator(cfg.Strategy.RiskRewardRatio, cfg.Strategy.StopBuffer)
	notifier := notify.NewDiscordNotifier(cfg.Discord.WebhookURL)

	scanner := handlers.NewScanHandler(fetcher, evaluator, riskCalc, notifier, barRepo, stateRepo,
		handlers.ScanSettings{
			TrendTimeFrame: cfg.Scan.TrendTimeFrame,
			EntryTimeFrame: cfg.Scan.EntryTimeFrame,
			TrendLookback:  cfg.Scan.TrendLookback,
			EntryLookback:  cfg.Scan.EntryLookback,
			Retention:      cfg.Scan.Retention,
		}, log)

	// Restore dedup state from the previous run
	lastKnown, err := stateRepo.Load()
	if err != nil {
		log.Warn().Err(err).Msg("could not load signal state, starting fresh")
		lastKnown = make(map[string]models.Direction)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info().
		Strs("symbols", cfg.Symbols).
		Str("trend", cfg.Scan.TrendTimeFrame).
		Str("entry", cfg.Scan.EntryTimeFrame).
		Dur("interval", cfg.Scan.Interval).
		Msg("signal scanner started")

	done := make(chan struct{})
	go func() {
		defer close(done)

		_, lastKnown = scanner.RunCycle(ctx, cfg.Symbols, lastKnown)

		ticker := time.NewTicker(cfg.Scan.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, lastKnown = scanner.RunCycle(ctx, cfg.Symbols, lastKnown)
			}
		}
	}()

	// Handle shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info().Msg("shutting down...")
	cancel()
	<-done
	log.Info().Msg("shutdown complete")
}

func setupDatabase(dbConfig config.DatabaseConfig, log zerolog.Logger) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto migrate database schemas
	if err := db.AutoMigrate(&models.Bar{}, &models.SignalState{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	return db
}
