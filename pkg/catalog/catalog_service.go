package catalog

import (
	"context"
	"encoding/csv"
	"io"

	"foodgram/domain"
	"foodgram/entities"

	"github.com/google/uuid"
)

type (
	CatalogService interface {
		SearchIngredients(ctx context.Context, namePrefix string) ([]domain.IngredientResponse, error)
		GetTags(ctx context.Context) ([]domain.TagResponse, error)
		ImportIngredients(ctx context.Context, r io.Reader) (int, error)
		ImportTags(ctx context.Context, r io.Reader) (int, error)
	}

	catalogService struct {
		catalogRepository CatalogRepository
	}
)

func NewCatalogService(catalogRepository CatalogRepository) CatalogService {
	return &catalogService{catalogRepository: catalogRepository}
}

func (s *catalogService) SearchIngredients(ctx context.Context, namePrefix string) ([]domain.IngredientResponse, error) {
	ingredients, err := s.catalogRepository.SearchIngredients(ctx, namePrefix)
	if err != nil {
		return nil, err
	}

	res := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		res = append(res, domain.IngredientResponse{
			ID:              ingredient.ID.String(),
			Name:            ingredient.Name,
			MeasurementUnit: ingredient.MeasurementUnit,
		})
	}
	return res, nil
}

func (s *catalogService) GetTags(ctx context.Context) ([]domain.TagResponse, error) {
	tags, err := s.catalogRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]domain.TagResponse, 0, len(tags))
	for _, tag := range tags {
		res = append(res, domain.TagResponse{
			ID:    tag.ID.String(),
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}
	return res, nil
}

// ImportIngredients loads reference ingredients from a CSV stream with
// rows of the form "name,measurement_unit". Returns the number of rows
// processed.
func (s *catalogService) ImportIngredients(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	imported := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, err
		}
		if len(row) < 2 {
			continue
		}

		ingredient := &entities.Ingredient{
			ID:              uuid.New(),
			Name:            row[0],
			MeasurementUnit: row[1],
		}
		if err := s.catalogRepository.CreateIngredient(ctx, ingredient); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// ImportTags loads tags from a CSV stream with rows of the form
// "name,color,slug". Rows whose slug is already in the catalog are skipped,
// so reruns only add what is new.
func (s *catalogService) ImportTags(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows [][]string
	var slugs []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if len(row) < 3 {
			continue
		}
		rows = append(rows, row)
		slugs = append(slugs, row[2])
	}
	if len(rows) == 0 {
		return 0, nil
	}

	existing, err := s.catalogRepository.GetTagsBySlugs(ctx, slugs)
	if err != nil {
		return 0, err
	}
	taken := make(map[string]bool, len(existing))
	for _, tag := range existing {
		taken[tag.Slug] = true
	}

	imported := 0
	for _, row := range rows {
		if taken[row[2]] {
			continue
		}
		tag := &entities.Tag{
			ID:    uuid.New(),
			Name:  row[0],
			Color: row[1],
			Slug:  row[2],
		}
		if err := s.catalogRepository.CreateTag(ctx, tag); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
