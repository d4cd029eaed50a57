package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"joarchive/internal/model"
)

type ArchiveRepository interface {
	Upsert(ctx context.Context, record *model.JewelryRecord) error
}

// ImportResult counts the records of one import run.
type ImportResult struct {
	Total    int
	Upserted int
	Failed   []string
}

func (r ImportResult) String() string {
	return fmt.Sprintf("%d/%d records upserted", r.Upserted, r.Total)
}

type ImportUseCase struct {
	logger     *slog.Logger
	repository ArchiveRepository
}

func NewImportUseCase(logger *slog.Logger, repository ArchiveRepository) *ImportUseCase {
	return &ImportUseCase{
		logger:     logger.With("component", "import"),
		repository: repository,
	}
}

// Import reads the workbook and upserts every record on its JO number. A failed record is
// logged and counted; it does not stop the run.
func (that *ImportUseCase) Import(ctx context.Context, workbook io.Reader) (ImportResult, error) {
	log := that.logger.With("method", "Import")

	records, err := ParseWorkbook(workbook)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Total: len(records)}
	log.Info("upserting records", "count", len(records))

	for _, record := range records {
		if err = ctx.Err(); err != nil {
			return result, err
		}

		if err = that.repository.Upsert(ctx, record); err != nil {
			log.Error("failed to upsert record", "jo_number", record.JONumber, "error", err)
			result.Failed = append(result.Failed, record.JONumber)
			continue
		}
		result.Upserted++
	}

	log.Info("import finished", "upserted", result.Upserted, "total", result.Total)
	return result, nil
}

// ParseWorkbook turns an archive workbook into records. Each sheet name is a classification,
// row 1 holds the headers, column A the JO number, column B the item name and every further
// column a component category. A JO number seen on several sheets keeps the classification of
// the first one and collects the component values of all of them. Records keep sheet order.
func ParseWorkbook(workbook io.Reader) ([]*model.JewelryRecord, error) {
	file, err := excelize.OpenReader(workbook)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	var (
		order      []string
		records    = map[string]*model.JewelryRecord{}
		components = map[string]model.Components{}
	)

	for _, sheet := range file.GetSheetList() {
		classification := strings.TrimSpace(sheet)
		if classification == "" {
			continue
		}

		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		headers := rows[0]
		for _, row := range rows[1:] {
			joNumber := cell(row, 0)
			if joNumber == "" {
				continue
			}

			record, ok := records[joNumber]
			if !ok {
				record = &model.JewelryRecord{JONumber: joNumber, Classification: classification}
				records[joNumber] = record
				components[joNumber] = model.Components{}
				order = append(order, joNumber)
			}

			if record.ItemName == "" {
				record.ItemName = cell(row, 1)
			}

			for col := 2; col < len(headers); col++ {
				category := strings.TrimSpace(headers[col])
				value := cell(row, col)
				if category == "" || value == "" {
					continue
				}
				components[joNumber][category] = append(components[joNumber][category], value)
			}
		}
	}

	result := make([]*model.JewelryRecord, 0, len(order))
	for _, joNumber := range order {
		record := records[joNumber]
		record.SetComponents(components[joNumber])
		result = append(result, record)
	}

	return result, nil
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
