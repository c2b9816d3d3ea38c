package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/model"
)

var (
	ErrPositionNotFound      = errors.New("position not found")
	ErrPositionAlreadyClosed = errors.New("position already closed")
)

// PositionRepository handles read/write operations for positions.
type PositionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPositionRepository creates a repository bound to the given handle.
func NewPositionRepository(db *gorm.DB) *PositionRepository {
	logger.WithField("component", "PositionRepository").
		Debug("Creating PositionRepository")

	return &PositionRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// List returns every position joined with its pair symbol, newest first.
// Positions whose pair is missing are kept with a nil symbol.
func (r *PositionRepository) List(ctx context.Context) ([]model.PositionWithSymbol, error) {
	logger.WithFields(map[string]interface{}{
		"repo": "PositionRepository",
		"op":   "List",
	}).Debug("Fetching positions")

	rows := make([]model.PositionWithSymbol, 0)
	err := r.db.WithContext(ctx).
		Table("positions").
		Select("positions.*, pairs.symbol").
		Joins("LEFT JOIN pairs ON positions.pair_id = pairs.id").
		Order("positions.created_at DESC, positions.id DESC").
		Scan(&rows).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "List",
		}).WithError(err).Error("Failed to fetch positions")

		return nil, err
	}

	return rows, nil
}

// Create inserts a new position. Status is always OPEN and any close data
// on the input is discarded.
func (r *PositionRepository) Create(ctx context.Context, position *model.Position) error {
	position.Status = model.PositionStatusOpen
	position.ProfitPercentage = nil
	position.ProfitUSDT = nil
	position.ClosedAt = nil

	logger.WithFields(map[string]interface{}{
		"repo":    "PositionRepository",
		"op":      "Create",
		"pair_id": position.PairID,
		"type":    position.Type,
		"amount":  position.Amount,
	}).Debug("Creating new position")

	if err := r.db.WithContext(ctx).Create(position).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create position")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "Create",
		"position_id": position.ID,
	}).Info("Position created successfully")

	return nil
}

// Close marks an OPEN position as CLOSED with the supplied profit figures.
// It returns the number of rows changed; zero means the id is unknown or the
// position was already closed. No existence check is made here.
func (r *PositionRepository) Close(
	ctx context.Context,
	id uint,
	profitPercentage float64,
	profitUSDT float64,
) (int64, error) {

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "Close",
		"position_id": id,
	}).Debug("Closing position")

	res := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ? AND status = ?", id, model.PositionStatusOpen).
		Updates(map[string]interface{}{
			"status":            model.PositionStatusClosed,
			"profit_percentage": profitPercentage,
			"profit_usdt":       profitUSDT,
			"closed_at":         r.now(),
		})
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "PositionRepository",
			"op":          "Close",
			"position_id": id,
		}).WithError(res.Error).Error("Failed to close position")

		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		logger.WithFields(map[string]interface{}{
			"repo":        "PositionRepository",
			"op":          "Close",
			"position_id": id,
		}).Warn("Close matched no open position")
	}

	return res.RowsAffected, nil
}

// FindByID fetches a single position by its primary ID.
// Returns (nil, nil) if the position is not found.
func (r *PositionRepository) FindByID(ctx context.Context, id uint) (*model.Position, error) {
	var position model.Position

	err := r.db.WithContext(ctx).First(&position, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":        "PositionRepository",
			"op":          "FindByID",
			"position_id": id,
		}).WithError(err).Error("Failed to fetch position by ID")

		return nil, err
	}

	return &position, nil
}

// CloseStrict closes a position and reports why nothing changed:
// ErrPositionNotFound for an unknown id, ErrPositionAlreadyClosed when the
// position is no longer OPEN.
func (r *PositionRepository) CloseStrict(
	ctx context.Context,
	id uint,
	profitPercentage float64,
	profitUSDT float64,
) error {

	affected, err := r.Close(ctx, id, profitPercentage, profitUSDT)
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	position, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if position == nil {
		return ErrPositionNotFound
	}
	return ErrPositionAlreadyClosed
}
