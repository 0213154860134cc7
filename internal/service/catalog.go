package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
)

// CatalogService serves the read-mostly tag and ingredient dictionaries.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).Take(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	return &tag, nil
}

// ListIngredients returns ingredients whose name starts with prefix,
// ignoring case. An empty prefix lists everything.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(prefix))+"%")
	}
	var out []models.Ingredient
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return out, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).Take(&ing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	return &ing, nil
}

// ImportIngredients inserts rows in batches, skipping (name, unit) pairs
// that already exist. It returns the number of rows inserted.
func (s *CatalogService) ImportIngredients(ctx context.Context, rows []models.Ingredient, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for i := range rows {
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		rows[i].MeasurementUnit = strings.TrimSpace(rows[i].MeasurementUnit)
		if rows[i].Name == "" || rows[i].MeasurementUnit == "" {
			return 0, invalid("ingredients", "row %d: name and measurement unit are required", i+1)
		}
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
			DoNothing: true,
		}).
		CreateInBatches(&rows, batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to import ingredients: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	tag := models.Tag{Name: strings.TrimSpace(name), Slug: strings.TrimSpace(slug)}
	if tag.Name == "" || len(tag.Name) > models.TagMaxLength {
		return nil, invalid("name", "must be 1 to %d characters", models.TagMaxLength)
	}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, invalid("name", "tag %q already exists", tag.Name)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
