package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ImageStore mocks service.ImageStore.
type ImageStore struct {
	mock.Mock
}

func (m *ImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

// ShortLinkCache mocks service.ShortLinkCache.
type ShortLinkCache struct {
	mock.Mock
}

func (m *ShortLinkCache) Get(ctx context.Context, code string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *ShortLinkCache) Set(ctx context.Context, code string, recipeID uuid.UUID) error {
	return m.Called(ctx, code, recipeID).Error(0)
}

func (m *ShortLinkCache) Delete(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}
