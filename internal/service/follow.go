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

// FollowService maintains directed follow edges between users. Self-follows
// and duplicate edges are rejected by store constraints as well as here.
type FollowService struct {
	db          *gorm.DB
	defaultPage int
}

func NewFollowService(db *gorm.DB, defaultPageSize int) *FollowService {
	return &FollowService{db: db, defaultPage: defaultPageSize}
}

// Follow makes userID follow targetID.
func (s *FollowService) Follow(ctx context.Context, userID, targetID uuid.UUID) (err error) {
	defer observeFollow("follow", &err)

	if userID == targetID {
		return ErrSelfFollowForbidden
	}
	db := s.db.WithContext(ctx)
	if err := userExists(db, targetID); err != nil {
		return err
	}

	edge := models.Follow{UserID: userID, FollowingID: targetID}
	if err := db.Create(&edge).Error; err != nil {
		if v, ok := database.Classify(err); ok {
			switch v.Kind {
			case database.CheckViolation:
				return ErrSelfFollowForbidden
			case database.UniqueViolation:
				return ErrAlreadyFollowing
			case database.ForeignKeyViolation:
				return ErrNotFound
			}
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

// Unfollow removes the edge from userID to targetID.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uuid.UUID) (err error) {
	defer observeFollow("unfollow", &err)

	db := s.db.WithContext(ctx)
	if err := userExists(db, targetID); err != nil {
		return err
	}

	res := db.Where("user_id = ? AND following_id = ?", userID, targetID).Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete follow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// IsFollowing reports whether userID follows targetID.
func (s *FollowService) IsFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id = ?", userID, targetID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}

// FollowingSet returns which of targetIDs userID follows.
func (s *FollowService) FollowingSet(ctx context.Context, userID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id IN ?", userID, targetIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load follows: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ListFollowing pages through the users userID follows, most recent first.
func (s *FollowService) ListFollowing(ctx context.Context, userID uuid.UUID, page Page) (Paged[models.User], error) {
	return s.listEdges(ctx, "follows.following_id = users.id", "follows.user_id = ?", userID, page)
}

// ListFollowers pages through the users following userID, most recent first.
func (s *FollowService) ListFollowers(ctx context.Context, userID uuid.UUID, page Page) (Paged[models.User], error) {
	return s.listEdges(ctx, "follows.user_id = users.id", "follows.following_id = ?", userID, page)
}

func (s *FollowService) listEdges(ctx context.Context, join, where string, userID uuid.UUID, page Page) (Paged[models.User], error) {
	page = page.Normalize(s.defaultPage)
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN follows ON "+join).
			Where(where, userID)
	}

	var out Paged[models.User]
	if err := base().Count(&out.Count).Error; err != nil {
		return out, fmt.Errorf("failed to count follows: %w", err)
	}
	err := base().
		Order("follows.created_at DESC").
		Order("users.id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&out.Results).Error
	if err != nil {
		return out, fmt.Errorf("failed to list follows: %w", err)
	}
	return out, nil
}

// Subscription is a followed user with a preview of their recipes.
type Subscription struct {
	User         models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// Subscriptions pages through the users userID follows, each with at most
// recipesLimit of their newest recipes. recipesLimit <= 0 returns them all.
func (s *FollowService) Subscriptions(ctx context.Context, userID uuid.UUID, page Page, recipesLimit int) (Paged[Subscription], error) {
	following, err := s.ListFollowing(ctx, userID, page)
	if err != nil {
		return Paged[Subscription]{}, err
	}

	out := Paged[Subscription]{Count: following.Count, Results: make([]Subscription, 0, len(following.Results))}
	db := s.db.WithContext(ctx)
	for _, u := range following.Results {
		sub, err := subscriptionOf(db, u, recipesLimit)
		if err != nil {
			return out, err
		}
		out.Results = append(out.Results, sub)
	}
	return out, nil
}

// Subscription loads one user with their recipe preview.
func (s *FollowService) Subscription(ctx context.Context, targetID uuid.UUID, recipesLimit int) (*Subscription, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Take(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	sub, err := subscriptionOf(db, user, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func subscriptionOf(db *gorm.DB, user models.User, recipesLimit int) (Subscription, error) {
	sub := Subscription{User: user}
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", user.ID).Count(&sub.RecipesCount).Error; err != nil {
		return sub, fmt.Errorf("failed to count recipes: %w", err)
	}
	q := db.Where("author_id = ?", user.ID).Order("created_at DESC").Order("id")
	if recipesLimit > 0 {
		q = q.Limit(recipesLimit)
	}
	if err := q.Find(&sub.Recipes).Error; err != nil {
		return sub, fmt.Errorf("failed to load recipes: %w", err)
	}
	return sub, nil
}

func userExists(db *gorm.DB, id uuid.UUID) error {
	var u models.User
	err := db.Select("id").Take(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	return nil
}

func observeFollow(action string, err *error) {
	metrics.FollowChanges.WithLabelValues(action, metrics.Outcome(*err)).Inc()
	if *err != nil {
		logging.Debug().Err(*err).Str("action", action).Msg("follow change rejected")
	}
}
