package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// DefaultShortCodeAttempts bounds the generate-check-retry loop.
const DefaultShortCodeAttempts = 10

// ShortCodeGenerator produces recipe short codes that no other recipe holds.
type ShortCodeGenerator struct {
	maxAttempts int
	source      func() string
}

// NewShortCodeGenerator returns a generator drawing candidates from the
// first characters of a random UUID.
func NewShortCodeGenerator(maxAttempts int) *ShortCodeGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultShortCodeAttempts
	}
	return &ShortCodeGenerator{
		maxAttempts: maxAttempts,
		source:      randomShortCode,
	}
}

// WithSource replaces the candidate source. Used by tests to force collisions.
func (g *ShortCodeGenerator) WithSource(source func() string) *ShortCodeGenerator {
	g.source = source
	return g
}

func randomShortCode() string {
	return uuid.NewString()[:models.ShortCodeLength]
}

// Generate returns a candidate not currently assigned to any recipe. It
// fails with *ShortCodeExhaustedError once maxAttempts candidates collided.
func (g *ShortCodeGenerator) Generate(db *gorm.DB) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code := g.source()
		free, err := codeIsFree(db, code)
		if err != nil {
			return "", err
		}
		if free {
			return code, nil
		}
		collided(code, attempt)
	}
	return "", &ShortCodeExhaustedError{Attempts: g.maxAttempts}
}

// Assign gives an already stored recipe a short code if it has none. A code
// that is already set is left untouched. The write is conditional on the
// column still being NULL, so a concurrent assignment wins and is reloaded.
func (g *ShortCodeGenerator) Assign(db *gorm.DB, recipe *models.Recipe) error {
	if recipe.ShortCode != nil && *recipe.ShortCode != "" {
		return nil
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code := g.source()
		free, err := codeIsFree(db, code)
		if err != nil {
			return err
		}
		if !free {
			collided(code, attempt)
			continue
		}

		res := db.Model(&models.Recipe{}).
			Where("id = ? AND short_code IS NULL", recipe.ID).
			UpdateColumn("short_code", code)
		if res.Error != nil {
			if database.IsUniqueViolation(res.Error) {
				collided(code, attempt)
				continue
			}
			return fmt.Errorf("failed to assign short code: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return reloadShortCode(db, recipe)
		}
		recipe.ShortCode = &code
		return nil
	}
	return &ShortCodeExhaustedError{Attempts: g.maxAttempts}
}

func codeIsFree(db *gorm.DB, code string) (bool, error) {
	var count int64
	if err := db.Model(&models.Recipe{}).Where("short_code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}
	return count == 0, nil
}

func collided(code string, attempt int) {
	metrics.ShortCodeCollisions.Inc()
	logging.Warn().Str("code", code).Int("attempt", attempt).Msg("short code collision")
}

func reloadShortCode(db *gorm.DB, recipe *models.Recipe) error {
	var stored models.Recipe
	err := db.Select("id", "short_code").Take(&stored, "id = ?", recipe.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to reload short code: %w", err)
	}
	recipe.ShortCode = stored.ShortCode
	return nil
}
