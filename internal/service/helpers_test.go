package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type fixture struct {
	db      *gorm.DB
	alice   *models.User
	bob     *models.User
	flour   *models.Ingredient
	sugarG  *models.Ingredient
	sugarTs *models.Ingredient
	eggs    *models.Ingredient
	brkfst  *models.Tag
	dinner  *models.Tag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	return &fixture{
		db:      db,
		alice:   testhelpers.CreateUser(t, db, "alice"),
		bob:     testhelpers.CreateUser(t, db, "bob"),
		flour:   testhelpers.CreateIngredient(t, db, "Flour", "g"),
		sugarG:  testhelpers.CreateIngredient(t, db, "Sugar", "g"),
		sugarTs: testhelpers.CreateIngredient(t, db, "Sugar", "tsp"),
		eggs:    testhelpers.CreateIngredient(t, db, "Eggs", "pcs"),
		brkfst:  testhelpers.CreateTag(t, db, "Breakfast"),
		dinner:  testhelpers.CreateTag(t, db, "Dinner"),
	}
}

func (f *fixture) recipeRequest(name string, amounts ...types.IngredientAmount) *types.RecipeRequest {
	if len(amounts) == 0 {
		amounts = []types.IngredientAmount{{ID: f.flour.ID, Amount: 200}}
	}
	return &types.RecipeRequest{
		Name:        name,
		Text:        "Mix everything and bake for half an hour.",
		CookingTime: 30,
		Image:       "https://example.com/" + uuid.NewString() + ".png",
		Tags:        []uuid.UUID{f.brkfst.ID},
		Ingredients: amounts,
	}
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

// sequence returns the given codes in order, then repeats the last one.
func sequence(codes ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c
	}
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]uuid.UUID
	gets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]uuid.UUID{}}
}

func (c *fakeCache) Get(_ context.Context, code string) (uuid.UUID, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	id, ok := c.entries[code]
	return id, ok, nil
}

func (c *fakeCache) Set(_ context.Context, code string, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = id
	return nil
}

func (c *fakeCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
	return nil
}

var _ service.ShortLinkCache = (*fakeCache)(nil)

func isUnique(err error) bool {
	return database.IsUniqueViolation(err)
}
