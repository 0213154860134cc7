package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
)

func TestNewSQLiteDB(t *testing.T) {
	a := NewSQLiteDB(t)
	b := NewSQLiteDB(t)

	CreateUser(t, a, "alice")

	var n int64
	require.NoError(t, b.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n, "databases must not share state")

	err := a.Create(&models.Follow{UserID: uuid.New(), FollowingID: uuid.New()}).Error
	require.Error(t, err)
	v, ok := database.Classify(err)
	require.True(t, ok)
	assert.Equal(t, database.ForeignKeyViolation, v.Kind)
}

func TestCreateRecipe(t *testing.T) {
	db := NewSQLiteDB(t)
	alice := CreateUser(t, db, "alice")
	flour := CreateIngredient(t, db, "Flour", "g")
	eggs := CreateIngredient(t, db, "Eggs", "pcs")

	recipe := CreateRecipe(t, db, alice, "Pancakes", Amount{flour, 200}, Amount{eggs, 2})
	assert.Nil(t, recipe.ShortCode)
	assert.Equal(t, alice.ID, recipe.AuthorID)

	var rows []models.RecipeIngredient
	require.NoError(t, db.Where("recipe_id = ?", recipe.ID).Order("amount").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Amount)
	assert.Equal(t, 200, rows[1].Amount)
}

func TestCreateTagDerivesSlug(t *testing.T) {
	db := NewSQLiteDB(t)
	tag := CreateTag(t, db, "Quick Dinner")
	assert.Equal(t, "quick-dinner", tag.Slug)
}
