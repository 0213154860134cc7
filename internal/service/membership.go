package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// MembershipService adds and removes recipes from a user's favorites or
// shopping cart. Both collections share one table keyed by kind; the
// (kind, user, recipe) unique index decides concurrent duplicate adds.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Add puts recipeID into the user's collection of the given kind.
func (s *MembershipService) Add(ctx context.Context, kind models.MembershipKind, userID, recipeID uuid.UUID) (err error) {
	defer observeMembership(kind, "add", &err)

	if !kind.Valid() {
		return invalid("kind", "unknown collection %q", kind)
	}
	db := s.db.WithContext(ctx)
	if err := recipeExists(db, recipeID); err != nil {
		return err
	}

	m := models.Membership{Kind: kind, UserID: userID, RecipeID: recipeID}
	if err := db.Create(&m).Error; err != nil {
		if v, ok := database.Classify(err); ok {
			switch v.Kind {
			case database.UniqueViolation:
				return ErrDuplicateMembership
			case database.ForeignKeyViolation:
				return ErrNotFound
			}
		}
		return fmt.Errorf("failed to add %s membership: %w", kind, err)
	}
	return nil
}

// Remove takes recipeID out of the user's collection of the given kind.
func (s *MembershipService) Remove(ctx context.Context, kind models.MembershipKind, userID, recipeID uuid.UUID) (err error) {
	defer observeMembership(kind, "remove", &err)

	if !kind.Valid() {
		return invalid("kind", "unknown collection %q", kind)
	}
	db := s.db.WithContext(ctx)
	if err := recipeExists(db, recipeID); err != nil {
		return err
	}

	res := db.Where("kind = ? AND user_id = ? AND recipe_id = ?", string(kind), userID, recipeID).
		Delete(&models.Membership{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove %s membership: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotAMember
	}
	return nil
}

// Contains reports whether recipeID is in the user's collection.
func (s *MembershipService) Contains(ctx context.Context, kind models.MembershipKind, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("kind = ? AND user_id = ? AND recipe_id = ?", string(kind), userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// Count returns the number of recipes in the user's collection.
func (s *MembershipService) Count(ctx context.Context, kind models.MembershipKind, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("kind = ? AND user_id = ?", string(kind), userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count, nil
}

// Flags is the per-actor membership state shown on a recipe.
type Flags struct {
	IsFavorited      bool
	IsInShoppingCart bool
}

// FlagsFor returns the actor's flags for each of recipeIDs. A nil actor gets
// an empty map.
func (s *MembershipService) FlagsFor(ctx context.Context, actor *uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]Flags, error) {
	flags := make(map[uuid.UUID]Flags, len(recipeIDs))
	if actor == nil || len(recipeIDs) == 0 {
		return flags, nil
	}

	var rows []models.Membership
	err := s.db.WithContext(ctx).
		Select("kind", "recipe_id").
		Where("user_id = ? AND recipe_id IN ?", *actor, recipeIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load membership flags: %w", err)
	}
	for _, m := range rows {
		f := flags[m.RecipeID]
		switch m.Kind {
		case models.KindFavorite:
			f.IsFavorited = true
		case models.KindShoppingCart:
			f.IsInShoppingCart = true
		}
		flags[m.RecipeID] = f
	}
	return flags, nil
}

func recipeExists(db *gorm.DB, recipeID uuid.UUID) error {
	var r models.Recipe
	err := db.Select("id").Take(&r, "id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	return nil
}

func observeMembership(kind models.MembershipKind, action string, err *error) {
	metrics.MembershipChanges.WithLabelValues(string(kind), action, metrics.Outcome(*err)).Inc()
	if *err != nil {
		logging.Debug().Err(*err).Str("kind", string(kind)).Str("action", action).Msg("membership change rejected")
	}
}
