package jewelry

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

func (that *Repository) Create(ctx context.Context, record *model.JewelryRecord) error {
	result := that.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jo_number"}}, DoNothing: true}).
		Create(record)
	if err := result.Error; err != nil {
		return fmt.Errorf("create jewelry record: %w", err)
	}

	if result.RowsAffected == 0 {
		return model.ErrAlreadyExists
	}

	return nil
}

// Upsert creates the record or replaces its name, classification and components.
// Notes and image are left untouched on existing records.
func (that *Repository) Upsert(ctx context.Context, record *model.JewelryRecord) error {
	query := that.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "jo_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"item_name", "classification", "jewelry_components", "updated_at"}),
		},
	)

	if err := query.Create(record).Error; err != nil {
		return fmt.Errorf("upsert jewelry record %s: %w", record.JONumber, err)
	}

	return nil
}

func (that *Repository) Get(ctx context.Context, joNumber string) (*model.JewelryRecord, error) {
	var record model.JewelryRecord

	err := that.db.WithContext(ctx).Where("jo_number = ?", joNumber).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch jewelry record from database: %w", err)
	}

	return &record, nil
}

// Update saves the editable fields of an existing record. The JO number never changes.
func (that *Repository) Update(ctx context.Context, record *model.JewelryRecord) error {
	result := that.db.WithContext(ctx).
		Model(&model.JewelryRecord{}).
		Where("jo_number = ?", record.JONumber).
		Updates(map[string]interface{}{
			"item_name":          record.ItemName,
			"classification":     record.Classification,
			"jewelry_components": record.Components,
			"notes":              record.Notes,
		})
	if err := result.Error; err != nil {
		return fmt.Errorf("update jewelry record: %w", err)
	}

	if result.RowsAffected == 0 {
		return model.ErrRecordNotFound
	}

	return nil
}

func (that *Repository) UpdateImageURL(ctx context.Context, joNumber string, imageURL string) error {
	result := that.db.WithContext(ctx).
		Model(&model.JewelryRecord{}).
		Where("jo_number = ?", joNumber).
		Update("image_url", imageURL)
	if err := result.Error; err != nil {
		return fmt.Errorf("update jewelry image: %w", err)
	}

	if result.RowsAffected == 0 {
		return model.ErrRecordNotFound
	}

	return nil
}

// Search returns records matching the filter, without components.
func (that *Repository) Search(ctx context.Context, filter model.JewelryFilter) ([]*model.JewelryRecord, error) {
	var records []*model.JewelryRecord

	query := that.db.WithContext(ctx).
		Model(&model.JewelryRecord{}).
		Select("jo_number", "item_name", "classification", "image_url")

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		query = query.Where("jo_number ILIKE ? OR item_name ILIKE ?", pattern, pattern)
	}

	if filter.Classification != "" {
		query = query.Where("classification = ?", filter.Classification)
	}

	if err := query.Order("jo_number").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("search jewelry records: %w", err)
	}

	return records, nil
}

func (that *Repository) Classifications(ctx context.Context) ([]string, error) {
	var classifications []string

	err := that.db.WithContext(ctx).
		Model(&model.JewelryRecord{}).
		Where("classification IS NOT NULL AND classification <> ''").
		Distinct("classification").
		Order("classification").
		Pluck("classification", &classifications).Error
	if err != nil {
		return nil, fmt.Errorf("fetch classifications: %w", err)
	}

	return classifications, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
