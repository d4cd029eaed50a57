package model

import (
	"time"

	"github.com/google/uuid"
)

// MetalPricesID is the fixed key of the singleton price row.
var MetalPricesID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// MetalPrices describes the current per-gram metal prices in local currency.
// Only one row with MetalPricesID ever exists.
type MetalPrices struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	Gold14K   float64   `gorm:"column:gold_14k;not null" json:"gold_14k"`
	Gold18K   float64   `gorm:"column:gold_18k;not null" json:"gold_18k"`
	Silver    float64   `gorm:"column:silver;not null" json:"silver"`
	FxRate    float64   `gorm:"column:fx_rate;not null" json:"fx_rate"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (*MetalPrices) TableName() string {
	return "current_metal_prices"
}
