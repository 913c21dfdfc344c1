package models

import (
	"time"
)

type Bar struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"uniqueIndex:idx_bar_key;index;not null"`
	TimeFrame string    `gorm:"uniqueIndex:idx_bar_key;not null"`
	OpenTime  time.Time `gorm:"uniqueIndex:idx_bar_key;index;not null"`
	CloseTime time.Time `gorm:"index"`
	Open      float64   `gorm:"type:decimal(20,8)"`
	High      float64   `gorm:"type:decimal(20,8)"`
	Low       float64   `gorm:"type:decimal(20,8)"`
	Close     float64   `gorm:"type:decimal(20,8)"`
	Volume    float64   `gorm:"type:decimal(20,8)"`
}

const (
	TimeFrame1m  = "1m"
	TimeFrame5m  = "5m"
	TimeFrame15m = "15m"
	TimeFrame1h  = "1h"
	TimeFrame4h  = "4h"
	TimeFrame1d  = "1d"
)

// TableName sets the table name for Bar model
func (Bar) TableName() string {
	return "bars"
}

// Series is an ordered sequence of bars for one symbol and timeframe,
// oldest first with strictly increasing open times.
type Series []Bar

// Closes extracts the close prices, index-aligned with the series.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar, or false for an empty series.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}
