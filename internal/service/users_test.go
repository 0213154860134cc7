package service_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

func TestUsers_GetAndListWithSubscription(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	follows := service.NewFollowService(f.db, 6)
	svc := service.NewUserService(f.db, follows, nil, 6)
	require.NoError(t, follows.Follow(ctx, f.alice.ID, f.bob.ID))

	got, err := svc.Get(ctx, &f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSubscribed)

	got, err = svc.Get(ctx, nil, f.bob.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSubscribed)

	_, err = svc.Get(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	list, err := svc.List(ctx, &f.bob.ID, service.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Count)
	require.Len(t, list.Results, 2)
	assert.Equal(t, "alice", list.Results[0].User.Username)
	assert.False(t, list.Results[0].IsSubscribed)
}

func TestUsers_Avatar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := &mocks.ImageStore{}
	svc := service.NewUserService(f.db, service.NewFollowService(f.db, 6), store, 6)

	store.On("Put", mock.Anything, mock.AnythingOfType("string"), []byte("gif"), "image/gif").
		Return("https://cdn.example.com/avatars/a.gif", nil).Once()

	url, err := svc.SetAvatar(ctx, f.alice.ID, "data:image/gif;base64,"+base64.StdEncoding.EncodeToString([]byte("gif")))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/a.gif", url)

	var stored models.User
	require.NoError(t, f.db.Take(&stored, "id = ?", f.alice.ID).Error)
	assert.Equal(t, url, stored.Avatar)

	require.NoError(t, svc.DeleteAvatar(ctx, f.alice.ID))
	require.NoError(t, f.db.Take(&stored, "id = ?", f.alice.ID).Error)
	assert.Empty(t, stored.Avatar)

	assert.ErrorIs(t, svc.DeleteAvatar(ctx, uuid.New()), service.ErrNotFound)
	store.AssertExpectations(t)
}
