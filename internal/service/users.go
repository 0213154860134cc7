package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// UserDetail is a user with whether the actor follows them.
type UserDetail struct {
	User         models.User
	IsSubscribed bool
}

type UserService struct {
	db          *gorm.DB
	follows     *FollowService
	images      ImageStore
	defaultPage int
}

func NewUserService(db *gorm.DB, follows *FollowService, images ImageStore, defaultPageSize int) *UserService {
	return &UserService{db: db, follows: follows, images: images, defaultPage: defaultPageSize}
}

// Get loads a user. actor may be nil.
func (s *UserService) Get(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*UserDetail, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	details, err := s.decorate(ctx, actor, []models.User{user})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// List pages through all users ordered by username.
func (s *UserService) List(ctx context.Context, actor *uuid.UUID, page Page) (Paged[UserDetail], error) {
	page = page.Normalize(s.defaultPage)
	db := s.db.WithContext(ctx)

	var out Paged[UserDetail]
	if err := db.Model(&models.User{}).Count(&out.Count).Error; err != nil {
		return out, fmt.Errorf("failed to count users: %w", err)
	}
	var users []models.User
	if err := db.Order("username").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return out, fmt.Errorf("failed to list users: %w", err)
	}
	var err error
	out.Results, err = s.decorate(ctx, actor, users)
	return out, err
}

// Decorate attaches the actor's subscription flag to already loaded users.
func (s *UserService) Decorate(ctx context.Context, actor *uuid.UUID, users []models.User) ([]UserDetail, error) {
	return s.decorate(ctx, actor, users)
}

// SetAvatar uploads a data URI image and stores its URL on the user.
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (string, error) {
	url, err := storeImage(ctx, s.images, "avatars", dataURI)
	if err != nil {
		return "", err
	}
	if err := s.setAvatar(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// DeleteAvatar clears the user's avatar.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	return s.setAvatar(ctx, userID, "")
}

func (s *UserService) setAvatar(ctx context.Context, userID uuid.UUID, url string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar", url)
	if res.Error != nil {
		return fmt.Errorf("failed to update avatar: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserService) decorate(ctx context.Context, actor *uuid.UUID, users []models.User) ([]UserDetail, error) {
	out := make([]UserDetail, len(users))
	following := map[uuid.UUID]bool{}
	if actor != nil && len(users) > 0 {
		ids := make([]uuid.UUID, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		var err error
		following, err = s.follows.FollowingSet(ctx, *actor, ids)
		if err != nil {
			return nil, err
		}
	}
	for i, u := range users {
		out[i] = UserDetail{User: u, IsSubscribed: following[u.ID]}
	}
	return out, nil
}
