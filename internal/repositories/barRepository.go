package repositories

import (
	"StockSignalBot/internal/models"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BarRepository struct {
	db *gorm.DB
}

// NewBarRepository creates a new instance of BarRepository
func NewBarRepository(db *gorm.DB) *BarRepository {
	return &BarRepository{db: db}
}

// Create adds a new Bar record to the database
func (r *BarRepository) Create(bar *models.Bar) error {
	if bar == nil {
		return errors.New("bar cannot be nil")
	}
	return r.db.Create(bar).Error
}

// SaveSeries stores a fetched series as an audit trail of supplier output.
// Consecutive cycles re-fetch overlapping trailing windows, so bars already
// stored for the same symbol, timeframe and open time are skipped.
func (r *BarRepository) SaveSeries(series models.Series) error {
	if len(series) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "time_frame"}, {Name: "open_time"}},
		DoNothing: true,
	}).CreateInBatches(series, 500).Error
}

// GetSeries retrieves the most recent `limit` bars for a symbol and
// timeframe, ordered oldest first.
func (r *BarRepository) GetSeries(symbol, timeFrame string, limit int) (models.Series, error) {
	if symbol == "" || timeFrame == "" {
		return nil, errors.New("invalid symbol or timeframe")
	}

	var bars []models.Bar
	err := r.db.Where("symbol = ? AND time_frame = ?", symbol, timeFrame).
		Order("open_time DESC").
		Limit(limit).
		Find(&bars).Error
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

// GetSeriesRange retrieves bars for a symbol and timeframe within a time
// range, ordered oldest first.
func (r *BarRepository) GetSeriesRange(symbol, timeFrame string, start, end time.Time) (models.Series, error) {
	if symbol == "" || timeFrame == "" {
		return nil, errors.New("invalid symbol or timeframe")
	}

	var bars []models.Bar
	err := r.db.Where("symbol = ? AND time_frame = ? AND open_time BETWEEN ? AND ?",
		symbol, timeFrame, start, end).
		Order("open_time ASC").
		Find(&bars).Error
	return bars, err
}

// DeleteBefore prunes bars older than the cutoff.
func (r *BarRepository) DeleteBefore(cutoff time.Time) error {
	return r.db.Where("open_time < ?", cutoff).Delete(&models.Bar{}).Error
}
