package models

import (
	"time"
)

// SignalState is the last known signal direction per symbol, kept so that an
// unchanged signal does not trigger a duplicate notification across restarts.
type SignalState struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"uniqueIndex;not null"`
	Direction Direction `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName sets the table name for SignalState model
func (SignalState) TableName() string {
	return "signal_states"
}
