package repositories

import (
	"StockSignalBot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SignalStateRepository persists the last known signal direction per symbol,
// so notification dedup survives process restarts. Only the current state is
// stored; there is no history of past signals.
type SignalStateRepository struct {
	db *gorm.DB
}

// NewSignalStateRepository creates a new instance of SignalStateRepository
func NewSignalStateRepository(db *gorm.DB) *SignalStateRepository {
	return &SignalStateRepository{db: db}
}

// Load returns the last known direction per symbol.
func (r *SignalStateRepository) Load() (map[string]models.Direction, error) {
	var states []models.SignalState
	if err := r.db.Find(&states).Error; err != nil {
		return nil, err
	}

	known := make(map[string]models.Direction, len(states))
	for _, s := range states {
		known[s.Symbol] = s.Direction
	}
	return known, nil
}

// Save upserts the direction for every symbol in the map.
func (r *SignalStateRepository) Save(known map[string]models.Direction) error {
	for symbol, direction := range known {
		state := models.SignalState{Symbol: symbol, Direction: direction}
		err := r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
		}).Create(&state).Error
		if err != nil {
			return err
		}
	}
	return nil
}
