package prices

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"joarchive/internal/model"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes the singleton price row in a single statement, creating it on the first refresh
// and replacing every value column afterwards.
func (that *Repository) Upsert(ctx context.Context, prices *model.MetalPrices) error {
	prices.ID = model.MetalPricesID

	query := that.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"gold_14k",
				"gold_18k",
				"silver",
				"fx_rate",
				"updated_at",
			}),
		},
	)

	if err := query.Create(prices).Error; err != nil {
		return fmt.Errorf("upsert metal prices in database: %w", err)
	}

	return nil
}

// GetCurrent returns the singleton price row or model.ErrPricesNotFound before the first refresh.
func (that *Repository) GetCurrent(ctx context.Context) (*model.MetalPrices, error) {
	var prices model.MetalPrices

	err := that.db.WithContext(ctx).Where("id = ?", model.MetalPricesID).Take(&prices).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPricesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch metal prices from database: %w", err)
	}

	return &prices, nil
}
