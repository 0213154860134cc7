package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestMembership_AddTwiceKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	for _, kind := range []models.MembershipKind{models.KindFavorite, models.KindShoppingCart} {
		t.Run(string(kind), func(t *testing.T) {
			f := newFixture(t)
			svc := service.NewMembershipService(f.db)
			recipe := testhelpers.CreateRecipe(t, f.db, f.bob, "Waffles")

			require.NoError(t, svc.Add(ctx, kind, f.alice.ID, recipe.ID))
			err := svc.Add(ctx, kind, f.alice.ID, recipe.ID)
			assert.ErrorIs(t, err, service.ErrDuplicateMembership)

			n, err := svc.Count(ctx, kind, f.alice.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)
		})
	}
}

func TestMembership_RemoveAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := service.NewMembershipService(f.db)
	recipe := testhelpers.CreateRecipe(t, f.db, f.bob, "Waffles")
	other := testhelpers.CreateRecipe(t, f.db, f.bob, "Crepes")
	require.NoError(t, svc.Add(ctx, models.KindFavorite, f.alice.ID, other.ID))

	before := f.count(t, &models.Membership{})
	err := svc.Remove(ctx, models.KindFavorite, f.alice.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotAMember)
	assert.Equal(t, before, f.count(t, &models.Membership{}))

	// Same recipe in the other collection is not a favorite.
	require.NoError(t, svc.Add(ctx, models.KindShoppingCart, f.alice.ID, recipe.ID))
	err = svc.Remove(ctx, models.KindFavorite, f.alice.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotAMember)
}

func TestMembership_AddRemoveRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := service.NewMembershipService(f.db)
	recipe := testhelpers.CreateRecipe(t, f.db, f.bob, "Waffles")

	require.NoError(t, svc.Add(ctx, models.KindFavorite, f.alice.ID, recipe.ID))
	require.NoError(t, svc.Add(ctx, models.KindShoppingCart, f.alice.ID, recipe.ID))

	ok, err := svc.Contains(ctx, models.KindFavorite, f.alice.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Remove(ctx, models.KindFavorite, f.alice.ID, recipe.ID))
	ok, err = svc.Contains(ctx, models.KindFavorite, f.alice.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Contains(ctx, models.KindShoppingCart, f.alice.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, ok, "removing a favorite must not touch the cart")
}

func TestMembership_UnknownRecipe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := service.NewMembershipService(f.db)

	assert.ErrorIs(t, svc.Add(ctx, models.KindFavorite, f.alice.ID, uuid.New()), service.ErrNotFound)
	assert.ErrorIs(t, svc.Remove(ctx, models.KindShoppingCart, f.alice.ID, uuid.New()), service.ErrNotFound)
	assert.Zero(t, f.count(t, &models.Membership{}))
}

func TestMembership_UnknownKind(t *testing.T) {
	f := newFixture(t)
	svc := service.NewMembershipService(f.db)
	recipe := testhelpers.CreateRecipe(t, f.db, f.bob, "Waffles")

	err := svc.Add(context.Background(), models.MembershipKind("wishlist"), f.alice.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestMembership_FlagsFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := service.NewMembershipService(f.db)
	a := testhelpers.CreateRecipe(t, f.db, f.bob, "A")
	b := testhelpers.CreateRecipe(t, f.db, f.bob, "B")

	require.NoError(t, svc.Add(ctx, models.KindFavorite, f.alice.ID, a.ID))
	require.NoError(t, svc.Add(ctx, models.KindShoppingCart, f.alice.ID, a.ID))
	require.NoError(t, svc.Add(ctx, models.KindShoppingCart, f.alice.ID, b.ID))
	require.NoError(t, svc.Add(ctx, models.KindFavorite, f.bob.ID, b.ID))

	flags, err := svc.FlagsFor(ctx, &f.alice.ID, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, service.Flags{IsFavorited: true, IsInShoppingCart: true}, flags[a.ID])
	assert.Equal(t, service.Flags{IsInShoppingCart: true}, flags[b.ID])

	anon, err := svc.FlagsFor(ctx, nil, []uuid.UUID{a.ID})
	require.NoError(t, err)
	assert.Empty(t, anon)
}

func TestMembership_CascadesWithRecipe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := service.NewMembershipService(f.db)
	recipe := testhelpers.CreateRecipe(t, f.db, f.bob, "Waffles")
	require.NoError(t, svc.Add(ctx, models.KindFavorite, f.alice.ID, recipe.ID))

	require.NoError(t, f.db.Delete(&models.Recipe{}, "id = ?", recipe.ID).Error)
	assert.Zero(t, f.count(t, &models.Membership{}))
}
