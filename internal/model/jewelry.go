package model

import (
	"time"

	"gorm.io/datatypes"
)

// Components maps a free-form component category (spreadsheet column) to its ordered values.
type Components map[string][]string

// JewelryRecord describes an archived jewelry item, keyed by its JO number.
type JewelryRecord struct {
	JONumber       string                         `gorm:"column:jo_number;primaryKey"`
	ItemName       string                         `gorm:"column:item_name"`
	Classification string                         `gorm:"column:classification;index"`
	Components     datatypes.JSONType[Components] `gorm:"column:jewelry_components;type:jsonb;not null;default:'{}'"`
	Notes          string                         `gorm:"column:notes"`
	ImageURL       string                         `gorm:"column:image_url"`
	CreatedAt      time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}

func (*JewelryRecord) TableName() string {
	return "jewelry_archive"
}

// GetComponents returns the component map, never nil.
func (that *JewelryRecord) GetComponents() Components {
	components := that.Components.Data()
	if components == nil {
		return Components{}
	}
	return components
}

// SetComponents replaces the component map.
func (that *JewelryRecord) SetComponents(components Components) {
	that.Components = datatypes.NewJSONType(components)
}

// JewelryFilter narrows down a record search. Empty fields match everything.
type JewelryFilter struct {
	Query          string
	Classification string
}
