package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func Load() (*config, error) {
	// A missing .env file is fine; env vars may come from the environment
	_ = godotenv.Load()

	return &config{
		Exchange: ExchangeConfig{
			APIKey:    os.Getenv("BINANCE_API_KEY"),
			SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     envInt("DB_PORT", 5432),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Discord: DiscordConfig{
			WebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		},
		Scan: ScanConfig{
			TrendTimeFrame: envString("TREND_TIMEFRAME", "4h"),
			EntryTimeFrame: envString("ENTRY_TIMEFRAME", "15m"),
			TrendLookback:  envInt("TREND_LOOKBACK", 250),
			EntryLookback:  envInt("ENTRY_LOOKBACK", 250),
			Interval:       envDuration("SCAN_INTERVAL", 15*time.Minute),
			Derive4h:       envBool("DERIVE_4H", false),
			Retention:      envDuration("BAR_RETENTION", 720*time.Hour),
		},
		Strategy: StrategyConfig{
			EMAFastPeriod:   envInt("EMA_FAST_PERIOD", 20),
			EMASlowPeriod:   envInt("EMA_SLOW_PERIOD", 200),
			RSIPeriod:       envInt("RSI_PERIOD", 14),
			RSIBuyMax:       envFloat("RSI_BUY_MAX", 40),
			RSISellMin:      envFloat("RSI_SELL_MIN", 60),
			EMAProximity:    envFloat("EMA_PROXIMITY", 0.01),
			RiskRewardRatio: envFloat("RISK_REWARD_RATIO", 2),
			StopBuffer:      envFloat("STOP_BUFFER", 0.001),
		},
		Symbols: getSymbols(),
	}, nil
}

// helper to get the watch-list
func getSymbols() []string {
	symbols := os.Getenv("WATCHLIST")
	if symbols == "" {
		return []string{"BTCUSDT", "ETHUSDT"} // Default pairs if none specified
	}

	parts := strings.Split(symbols, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			list = append(list, p)
		}
	}
	return list
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
