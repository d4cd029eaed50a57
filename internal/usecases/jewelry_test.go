package usecases_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"joarchive/internal/model"
	"joarchive/internal/repository/jewelry"
	"joarchive/internal/usecases"
	"joarchive/testing/suite"
)

type memoryImages struct {
	key         string
	contentType string
	body        []byte
}

func (that *memoryImages) Save(_ context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	that.key, that.contentType, that.body = key, contentType, data
	return "https://cdn.example.com/" + key, nil
}

func Test_BuildComponents(t *testing.T) {
	t.Run("should trim values and drop blank rows and empty categories", func(t *testing.T) {
		components := usecases.BuildComponents(map[string][]string{
			"gold_14k":  {" 2.5 ", "", "1"},
			"gold_18k":  {"", "  "},
			"materials": {"pearl"},
			" ":         {"orphan"},
		}, " 1200 ")

		require.Equal(t, model.Components{
			"gold_14k":           {"2.5", "1"},
			"materials":          {"pearl"},
			"cost_of_production": {"1200"},
		}, components)
	})

	t.Run("should return an empty map for an empty form", func(t *testing.T) {
		require.Equal(t, model.Components{}, usecases.BuildComponents(nil, ""))
	})
}

func Test_JewelryUseCase_Create(t *testing.T) {
	ctx, st := suite.New(t, suite.WithPostgres())
	uc := usecases.NewJewelryUseCase(st.Logger, jewelry.NewRepository(st.GetDB()), nil)

	t.Run("should create a record with its components", func(t *testing.T) {
		created, err := uc.Create(ctx, usecases.JewelryInput{
			JONumber:         " JO-1001 ",
			ItemName:         "Solitaire ring",
			Classification:   "Rings",
			CostOfProduction: "8500",
			Notes:            "Client pickup",
			Components:       map[string][]string{"gold_18k": {"3.2"}, "silver": {""}},
		})
		require.NoError(t, err)
		require.Equal(t, "JO-1001", created.JONumber)

		stored, err := uc.Get(ctx, "JO-1001")
		require.NoError(t, err)
		require.Equal(t, "Solitaire ring", stored.ItemName)
		require.Equal(t, "Rings", stored.Classification)
		require.Equal(t, "Client pickup", stored.Notes)
		require.Equal(t, model.Components{"gold_18k": {"3.2"}, "cost_of_production": {"8500"}}, stored.GetComponents())
	})

	t.Run("should require JO number and classification", func(t *testing.T) {
		_, err := uc.Create(ctx, usecases.JewelryInput{JONumber: "  ", Classification: "Rings"})
		require.ErrorIs(t, err, model.ErrValidation)

		_, err = uc.Create(ctx, usecases.JewelryInput{JONumber: "JO-1002"})
		require.ErrorIs(t, err, model.ErrValidation)

		_, err = uc.Get(ctx, "JO-1002")
		require.ErrorIs(t, err, model.ErrRecordNotFound)
	})

	t.Run("shouldn't overwrite an existing JO number", func(t *testing.T) {
		_, err := uc.Create(ctx, usecases.JewelryInput{JONumber: "JO-1003", ItemName: "Bangle", Classification: "Bracelets"})
		require.NoError(t, err)

		_, err = uc.Create(ctx, usecases.JewelryInput{JONumber: "JO-1003", ItemName: "Anklet", Classification: "Bracelets"})
		require.ErrorIs(t, err, model.ErrAlreadyExists)

		stored, err := uc.Get(ctx, "JO-1003")
		require.NoError(t, err)
		require.Equal(t, "Bangle", stored.ItemName)
	})
}

func Test_JewelryUseCase_Update(t *testing.T) {
	ctx, st := suite.New(t, suite.WithPostgres())
	uc := usecases.NewJewelryUseCase(st.Logger, jewelry.NewRepository(st.GetDB()), nil)

	// Given: A record with a photo
	_, err := uc.Create(ctx, usecases.JewelryInput{JONumber: "JO-2001", ItemName: "Pendant", Classification: "Necklaces"})
	require.NoError(t, err)
	require.NoError(t, st.GetDB().WithContext(ctx).Model(&model.JewelryRecord{}).Where("jo_number = ?", "JO-2001").Update("image_url", "https://cdn.example.com/p.jpg").Error)

	t.Run("should edit fields but keep the JO number and photo", func(t *testing.T) {
		_, err := uc.Update(ctx, "JO-2001", usecases.JewelryInput{
			JONumber:       "JO-9999",
			ItemName:       "Heart pendant",
			Classification: "Pendants",
			Notes:          "Resized chain",
			Components:     map[string][]string{"gold_14k": {"1.1", "0.4"}},
		})
		require.NoError(t, err)

		stored, err := uc.Get(ctx, "JO-2001")
		require.NoError(t, err)
		require.Equal(t, "Heart pendant", stored.ItemName)
		require.Equal(t, "Pendants", stored.Classification)
		require.Equal(t, "Resized chain", stored.Notes)
		require.Equal(t, "https://cdn.example.com/p.jpg", stored.ImageURL)
		require.Equal(t, model.Components{"gold_14k": {"1.1", "0.4"}}, stored.GetComponents())

		_, err = uc.Get(ctx, "JO-9999")
		require.ErrorIs(t, err, model.ErrRecordNotFound)
	})

	t.Run("should report a missing record", func(t *testing.T) {
		_, err := uc.Update(ctx, "JO-0000", usecases.JewelryInput{Classification: "Rings"})
		require.ErrorIs(t, err, model.ErrRecordNotFound)
	})
}

func Test_JewelryUseCase_List(t *testing.T) {
	ctx, st := suite.New(t, suite.WithPostgres())
	repository := jewelry.NewRepository(st.GetDB())
	uc := usecases.NewJewelryUseCase(st.Logger, repository, nil)

	// Given: More rings than fit on one page and a couple of earrings
	for i := 0; i < usecases.ListLimit+5; i++ {
		require.NoError(t, repository.Create(ctx, &model.JewelryRecord{JONumber: fmt.Sprintf("R-%03d", i), ItemName: "Ring", Classification: "Rings"}))
	}
	require.NoError(t, repository.Create(ctx, &model.JewelryRecord{JONumber: "E-001", ItemName: "Pearl stud", Classification: "Earrings"}))
	require.NoError(t, repository.Create(ctx, &model.JewelryRecord{JONumber: "E-002", ItemName: "Hoop 50%_off", Classification: "Earrings"}))

	t.Run("should cap the list", func(t *testing.T) {
		records, err := uc.List(ctx, "", "all")
		require.NoError(t, err)
		require.Len(t, records, usecases.ListLimit)
	})

	t.Run("should filter by classification", func(t *testing.T) {
		records, err := uc.List(ctx, "", "Earrings")
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"E-001", "E-002"}, joNumbers(records))
	})

	t.Run("should search JO number and item name case-insensitively", func(t *testing.T) {
		records, err := uc.List(ctx, "pearl", "")
		require.NoError(t, err)
		require.Equal(t, []string{"E-001"}, joNumbers(records))

		records, err = uc.List(ctx, "e-00", "all")
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"E-001", "E-002"}, joNumbers(records))
	})

	t.Run("should treat wildcard characters literally", func(t *testing.T) {
		records, err := uc.List(ctx, "50%_", "")
		require.NoError(t, err)
		require.Equal(t, []string{"E-002"}, joNumbers(records))
	})

	t.Run("should return sorted distinct classifications", func(t *testing.T) {
		classifications, err := uc.Classifications(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"Earrings", "Rings"}, classifications)
	})
}

func Test_JewelryUseCase_UploadImage(t *testing.T) {
	ctx, st := suite.New(t, suite.WithPostgres())
	images := &memoryImages{}
	uc := usecases.NewJewelryUseCase(st.Logger, jewelry.NewRepository(st.GetDB()), images)

	_, err := uc.Create(ctx, usecases.JewelryInput{JONumber: "JO-3001", Classification: "Rings"})
	require.NoError(t, err)

	t.Run("should store the photo and link it to the record", func(t *testing.T) {
		photo := []byte("\x89PNG fake image")

		url, err := uc.UploadImage(ctx, "JO-3001", "image/png", int64(len(photo)), bytes.NewReader(photo))
		require.NoError(t, err)

		require.Regexp(t, regexp.MustCompile(`^jewelry/JO-3001/[0-9a-f-]{36}\.png$`), images.key)
		require.Equal(t, "image/png", images.contentType)
		require.Equal(t, photo, images.body)
		require.Equal(t, "https://cdn.example.com/"+images.key, url)

		stored, err := uc.Get(ctx, "JO-3001")
		require.NoError(t, err)
		require.Equal(t, url, stored.ImageURL)
	})

	t.Run("should reject unsupported types and large files", func(t *testing.T) {
		_, err := uc.UploadImage(ctx, "JO-3001", "image/gif", 10, bytes.NewReader([]byte("GIF89a")))
		require.ErrorIs(t, err, model.ErrValidation)

		_, err = uc.UploadImage(ctx, "JO-3001", "image/jpeg", usecases.MaxImageSize+1, bytes.NewReader(nil))
		require.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("should report a missing record", func(t *testing.T) {
		_, err := uc.UploadImage(ctx, "JO-0000", "image/jpeg", 3, bytes.NewReader([]byte("jpg")))
		require.ErrorIs(t, err, model.ErrRecordNotFound)
	})
}

func joNumbers(records []*model.JewelryRecord) []string {
	numbers := make([]string, 0, len(records))
	for _, record := range records {
		numbers = append(numbers, record.JONumber)
	}
	sort.Strings(numbers)
	return numbers
}
