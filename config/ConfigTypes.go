package config

import "time"

type config struct {
	Exchange ExchangeConfig
	Database DatabaseConfig
	Discord  DiscordConfig
	Scan     ScanConfig
	Strategy StrategyConfig
	Symbols  []string
}

type ExchangeConfig struct {
	APIKey    string
	SecretKey string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type DiscordConfig struct {
	WebhookURL string
}

type ScanConfig struct {
	TrendTimeFrame string
	EntryTimeFrame string
	TrendLookback  int
	EntryLookback  int
	Interval       time.Duration
	Derive4h       bool          // aggregate 1h klines instead of fetching 4h natively
	Retention      time.Duration // how long stored bars are kept; zero keeps forever
}

// StrategyConfig holds the signal thresholds. The defaults mirror the
// classic trend-following setup: EMA 20/200, RSI 14 with 40/60 pullback
// zones, 1:2 risk-reward.
type StrategyConfig struct {
	EMAFastPeriod   int
	EMASlowPeriod   int
	RSIPeriod       int
	RSIBuyMax       float64
	RSISellMin      float64
	EMAProximity    float64 // |close-ema20|/close band counted as "near"
	RiskRewardRatio float64
	StopBuffer      float64 // stop padding as a fraction of entry price
}
