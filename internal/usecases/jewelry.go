package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path"
	"strings"

	"github.com/google/uuid"

	"joarchive/internal/model"
)

const (
	// ListLimit caps the number of records on the list page.
	ListLimit = 100
	// MaxImageSize is the largest accepted photo upload, in bytes.
	MaxImageSize = 5 << 20

	// ComponentCostOfProduction holds a single free-text value.
	ComponentCostOfProduction = "cost_of_production"

	classificationAll = "all"
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type JewelryRepository interface {
	Create(ctx context.Context, record *model.JewelryRecord) error
	Get(ctx context.Context, joNumber string) (*model.JewelryRecord, error)
	Update(ctx context.Context, record *model.JewelryRecord) error
	UpdateImageURL(ctx context.Context, joNumber string, imageURL string) error
	Search(ctx context.Context, filter model.JewelryFilter) ([]*model.JewelryRecord, error)
	Classifications(ctx context.Context) ([]string, error)
}

type ImageStore interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// JewelryInput is the editable part of a record as submitted by the add and edit forms.
type JewelryInput struct {
	JONumber         string
	ItemName         string
	Classification   string
	CostOfProduction string
	Notes            string
	Components       map[string][]string
}

type JewelryUseCase struct {
	logger     *slog.Logger
	repository JewelryRepository
	images     ImageStore
	shuffle    func(n int, swap func(i, j int))
}

func NewJewelryUseCase(logger *slog.Logger, repository JewelryRepository, images ImageStore) *JewelryUseCase {
	return &JewelryUseCase{
		logger:     logger.With("component", "jewelry"),
		repository: repository,
		images:     images,
		shuffle:    rand.Shuffle,
	}
}

// List returns up to ListLimit records matching the query, in random order.
func (that *JewelryUseCase) List(ctx context.Context, query string, classification string) ([]*model.JewelryRecord, error) {
	if strings.EqualFold(classification, classificationAll) {
		classification = ""
	}

	records, err := that.repository.Search(ctx, model.JewelryFilter{Query: strings.TrimSpace(query), Classification: classification})
	if err != nil {
		return nil, fmt.Errorf("search jewelry: %w", err)
	}

	that.shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	if len(records) > ListLimit {
		records = records[:ListLimit]
	}

	return records, nil
}

func (that *JewelryUseCase) Classifications(ctx context.Context) ([]string, error) {
	return that.repository.Classifications(ctx)
}

func (that *JewelryUseCase) Get(ctx context.Context, joNumber string) (*model.JewelryRecord, error) {
	return that.repository.Get(ctx, strings.TrimSpace(joNumber))
}

func (that *JewelryUseCase) Create(ctx context.Context, input JewelryInput) (*model.JewelryRecord, error) {
	log := that.logger.With("method", "Create", "jo_number", input.JONumber)

	record, err := newRecord(input)
	if err != nil {
		return nil, err
	}

	if err = that.repository.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create %s: %w", record.JONumber, err)
	}

	log.Info("jewelry record created", "classification", record.Classification)
	return record, nil
}

// Update replaces the editable fields of an existing record. The JO number in input is ignored.
func (that *JewelryUseCase) Update(ctx context.Context, joNumber string, input JewelryInput) (*model.JewelryRecord, error) {
	log := that.logger.With("method", "Update", "jo_number", joNumber)

	existing, err := that.repository.Get(ctx, joNumber)
	if err != nil {
		return nil, err
	}

	input.JONumber = existing.JONumber
	record, err := newRecord(input)
	if err != nil {
		return nil, err
	}
	record.ImageURL = existing.ImageURL
	record.CreatedAt = existing.CreatedAt

	if err = that.repository.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("update %s: %w", joNumber, err)
	}

	log.Info("jewelry record updated")
	return record, nil
}

// UploadImage stores a JPEG, PNG or WebP photo of at most MaxImageSize bytes and links it to the record.
func (that *JewelryUseCase) UploadImage(ctx context.Context, joNumber string, contentType string, size int64, body io.Reader) (string, error) {
	log := that.logger.With("method", "UploadImage", "jo_number", joNumber)

	if that.images == nil {
		return "", errors.New("image storage is not configured")
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %q", model.ErrValidation, contentType)
	}

	if size > MaxImageSize {
		return "", fmt.Errorf("%w: image is larger than 5 MB", model.ErrValidation)
	}

	record, err := that.repository.Get(ctx, joNumber)
	if err != nil {
		return "", err
	}

	key := path.Join("jewelry", record.JONumber, uuid.NewString()+"."+ext)

	url, err := that.images.Save(ctx, key, io.LimitReader(body, MaxImageSize+1), contentType)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	if err = that.repository.UpdateImageURL(ctx, record.JONumber, url); err != nil {
		return "", err
	}

	log.Info("jewelry image uploaded", "key", key)
	return url, nil
}

func newRecord(input JewelryInput) (*model.JewelryRecord, error) {
	joNumber := strings.TrimSpace(input.JONumber)
	if joNumber == "" {
		return nil, fmt.Errorf("%w: JO number is required", model.ErrValidation)
	}

	classification := strings.TrimSpace(input.Classification)
	if classification == "" {
		return nil, fmt.Errorf("%w: classification is required", model.ErrValidation)
	}

	record := &model.JewelryRecord{
		JONumber:       joNumber,
		ItemName:       strings.TrimSpace(input.ItemName),
		Classification: classification,
		Notes:          strings.TrimSpace(input.Notes),
	}
	record.SetComponents(BuildComponents(input.Components, input.CostOfProduction))

	return record, nil
}

// BuildComponents trims every value, drops blank rows and omits empty categories.
// A non-blank cost of production is stored as a single-value category.
func BuildComponents(rows map[string][]string, costOfProduction string) model.Components {
	components := model.Components{}

	for category, values := range rows {
		category = strings.TrimSpace(category)
		if category == "" {
			continue
		}

		var kept []string
		for _, value := range values {
			if value = strings.TrimSpace(value); value != "" {
				kept = append(kept, value)
			}
		}

		if len(kept) > 0 {
			components[category] = kept
		}
	}

	if cost := strings.TrimSpace(costOfProduction); cost != "" {
		components[ComponentCostOfProduction] = []string{cost}
	}

	return components
}
