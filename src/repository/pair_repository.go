package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/model"
)

// PairRepository handles read/write operations for pairs.
type PairRepository struct {
	db *gorm.DB
}

// NewPairRepository creates a repository bound to the given handle.
func NewPairRepository(db *gorm.DB) *PairRepository {
	logger.WithField("component", "PairRepository").
		Debug("Creating PairRepository")

	return &PairRepository{db: db}
}

// List returns every pair, newest first.
func (r *PairRepository) List(ctx context.Context) ([]model.Pair, error) {
	logger.WithFields(map[string]interface{}{
		"repo": "PairRepository",
		"op":   "List",
	}).Debug("Fetching pairs")

	pairs := make([]model.Pair, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&pairs).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PairRepository",
			"op":   "List",
		}).WithError(err).Error("Failed to fetch pairs")

		return nil, err
	}

	return pairs, nil
}

// Create inserts a new pair. The given pair is updated with the generated
// ID and creation time. Constraint checking is left to the engine.
func (r *PairRepository) Create(ctx context.Context, pair *model.Pair) error {
	logger.WithFields(map[string]interface{}{
		"repo":     "PairRepository",
		"op":       "Create",
		"symbol":   pair.Symbol,
		"momentum": pair.Momentum,
	}).Debug("Creating new pair")

	if err := r.db.WithContext(ctx).Create(pair).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PairRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create pair")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "PairRepository",
		"op":      "Create",
		"pair_id": pair.ID,
	}).Info("Pair created successfully")

	return nil
}
