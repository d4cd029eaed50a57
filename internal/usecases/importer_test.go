package usecases_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"joarchive/internal/model"
	"joarchive/internal/repository/jewelry"
	"joarchive/internal/usecases"
	"joarchive/testing/suite"
)

func newWorkbook(t *testing.T, sheets map[string][][]interface{}, order ...string) *bytes.Buffer {
	t.Helper()

	file := excelize.NewFile()
	t.Cleanup(func() { _ = file.Close() })

	for i, name := range order {
		if i == 0 {
			require.NoError(t, file.SetSheetName("Sheet1", name))
		} else {
			_, err := file.NewSheet(name)
			require.NoError(t, err)
		}

		for r, row := range sheets[name] {
			axis, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, file.SetSheetRow(name, axis, &row))
		}
	}

	buf, err := file.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func archiveWorkbook(t *testing.T) *bytes.Buffer {
	return newWorkbook(t, map[string][][]interface{}{
		"Rings": {
			{"JO Number", "Item Name", "gold_14k", "materials"},
			{"JO-1", "Band", "2.5", "diamond"},
			{"", "Orphan row", "9"},
			{"JO-2", "", "1.2"},
		},
		"Sets": {
			{"JO Number", "Item Name", "gold_14k", "silver"},
			{"JO-2", "Bridal set", "0.8", "4"},
			{"JO-3", "Charm"},
		},
	}, "Rings", "Sets")
}

func Test_ParseWorkbook(t *testing.T) {
	t.Run("should merge rows by JO number across sheets", func(t *testing.T) {
		records, err := usecases.ParseWorkbook(archiveWorkbook(t))
		require.NoError(t, err)
		require.Len(t, records, 3)

		// Then: Records keep the order they first appear in
		require.Equal(t, "JO-1", records[0].JONumber)
		require.Equal(t, "Band", records[0].ItemName)
		require.Equal(t, "Rings", records[0].Classification)
		require.Equal(t, model.Components{"gold_14k": {"2.5"}, "materials": {"diamond"}}, records[0].GetComponents())

		// Then: The first classification wins and the missing item name is filled from a later sheet
		require.Equal(t, "JO-2", records[1].JONumber)
		require.Equal(t, "Bridal set", records[1].ItemName)
		require.Equal(t, "Rings", records[1].Classification)
		require.Equal(t, model.Components{"gold_14k": {"1.2", "0.8"}, "silver": {"4"}}, records[1].GetComponents())

		require.Equal(t, "JO-3", records[2].JONumber)
		require.Equal(t, "Sets", records[2].Classification)
		require.Equal(t, model.Components{}, records[2].GetComponents())
	})

	t.Run("should skip sheets without data rows", func(t *testing.T) {
		records, err := usecases.ParseWorkbook(newWorkbook(t, map[string][][]interface{}{
			"Empty": {{"JO Number", "Item Name"}},
		}, "Empty"))
		require.NoError(t, err)
		require.Empty(t, records)
	})

	t.Run("should fail on a file that is not a workbook", func(t *testing.T) {
		_, err := usecases.ParseWorkbook(bytes.NewReader([]byte("jo,item\n")))
		require.Error(t, err)
	})
}

type flakyArchive struct {
	failOn  string
	records []*model.JewelryRecord
}

func (that *flakyArchive) Upsert(_ context.Context, record *model.JewelryRecord) error {
	if record.JONumber == that.failOn {
		return errors.New("constraint violation")
	}
	that.records = append(that.records, record)
	return nil
}

func Test_ImportUseCase(t *testing.T) {
	t.Run("should count failed records and continue", func(t *testing.T) {
		_, st := suite.New(t)
		repository := &flakyArchive{failOn: "JO-2"}

		result, err := usecases.NewImportUseCase(st.Logger, repository).Import(context.Background(), archiveWorkbook(t))
		require.NoError(t, err)

		require.Equal(t, 3, result.Total)
		require.Equal(t, 2, result.Upserted)
		require.Equal(t, []string{"JO-2"}, result.Failed)
		require.Equal(t, "2/3 records upserted", result.String())
		require.Len(t, repository.records, 2)
	})

	t.Run("should replace imported fields and keep notes on re-import", func(t *testing.T) {
		ctx, st := suite.New(t, suite.WithPostgres())
		repository := jewelry.NewRepository(st.GetDB())

		// Given: JO-1 was edited by hand after an earlier import
		require.NoError(t, repository.Create(ctx, &model.JewelryRecord{JONumber: "JO-1", ItemName: "Old band", Classification: "Misc", Notes: "Customer order"}))

		// When: The archive is imported
		result, err := usecases.NewImportUseCase(st.Logger, repository).Import(ctx, archiveWorkbook(t))
		require.NoError(t, err)
		require.Equal(t, 3, result.Upserted)

		// Then: Spreadsheet fields win, notes survive
		stored, err := repository.Get(ctx, "JO-1")
		require.NoError(t, err)
		require.Equal(t, "Band", stored.ItemName)
		require.Equal(t, "Rings", stored.Classification)
		require.Equal(t, "Customer order", stored.Notes)
		require.Equal(t, model.Components{"gold_14k": {"2.5"}, "materials": {"diamond"}}, stored.GetComponents())
	})
}
