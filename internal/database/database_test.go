package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestNew_SQLite(t *testing.T) {
	db, err := database.New(&config.Config{DBDriver: "sqlite", DBPath: "file:newtest?mode=memory&cache=shared"})
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.RunMigrations(db, "does-not-matter"))
	assert.NoError(t, database.HealthCheck(context.Background(), db))
	assert.True(t, db.Migrator().HasTable(&models.Membership{}))
	assert.True(t, db.Migrator().HasTable("recipe_tags"))
}

func TestClassify_SQLite(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	alice := testhelpers.CreateUser(t, db, "alice")

	t.Run("unique", func(t *testing.T) {
		err := db.Create(&models.User{
			Email: alice.Email, Username: "other", FirstName: "A", LastName: "B", PasswordHash: "x",
		}).Error
		v, ok := database.Classify(err)
		require.True(t, ok, "unclassified: %v", err)
		assert.Equal(t, database.UniqueViolation, v.Kind)
		assert.True(t, v.Mentions("email"))
		assert.True(t, database.IsUniqueViolation(err))
	})

	t.Run("check", func(t *testing.T) {
		err := db.Create(&models.Follow{UserID: alice.ID, FollowingID: alice.ID}).Error
		assert.True(t, database.IsCheckViolation(err), "got %v", err)
	})

	t.Run("foreign key", func(t *testing.T) {
		bob := testhelpers.CreateUser(t, db, "bob")
		err := db.Create(&models.Membership{Kind: models.KindFavorite, UserID: bob.ID, RecipeID: alice.ID}).Error
		assert.True(t, database.IsForeignKeyViolation(err), "got %v", err)
	})

	t.Run("recipe cooking time bound", func(t *testing.T) {
		r := testhelpers.CreateRecipe(t, db, alice, "Soup")
		err := db.Model(r).Update("cooking_time", 32001).Error
		assert.True(t, database.IsCheckViolation(err), "got %v", err)
	})
}

func TestClassify_Postgres(t *testing.T) {
	cases := []struct {
		code pq.ErrorCode
		kind database.ViolationKind
	}{
		{"23505", database.UniqueViolation},
		{"23503", database.ForeignKeyViolation},
		{"23514", database.CheckViolation},
	}
	for _, tc := range cases {
		err := &pq.Error{Code: tc.code, Constraint: "idx_x"}
		v, ok := database.Classify(errorsWrap(err))
		require.True(t, ok)
		assert.Equal(t, tc.kind, v.Kind)
		assert.Equal(t, "idx_x", v.Constraint)
	}

	_, ok := database.Classify(&pq.Error{Code: "42P01"})
	assert.False(t, ok)
}

func TestClassify_Other(t *testing.T) {
	_, ok := database.Classify(nil)
	assert.False(t, ok)
	_, ok = database.Classify(errors.New("boom"))
	assert.False(t, ok)
	_, ok = database.Classify(gorm.ErrRecordNotFound)
	assert.False(t, ok)

	v, ok := database.Classify(gorm.ErrDuplicatedKey)
	assert.True(t, ok)
	assert.Equal(t, database.UniqueViolation, v.Kind)
}

func TestRunMigrations_Postgres(t *testing.T) {
	db := testhelpers.NewPostgresDB(t)

	// A second run applies nothing new.
	require.NoError(t, database.RunMigrations(db, testhelpers.MigrationsDir()))

	var applied int64
	require.NoError(t, db.Table("schema_migrations").Count(&applied).Error)
	assert.EqualValues(t, 1, applied)
	for _, table := range []string{"users", "follows", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients", "recipe_memberships"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func errorsWrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func TestRedisOptions(t *testing.T) {
	opts, err := database.RedisOptions(&config.Config{RedisHost: "cache", RedisPort: "6380", RedisPassword: "pw", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = database.RedisOptions(&config.Config{RedisHost: "ignored", RedisPort: "1", RedisURL: "redis://:secret@redis.internal:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = database.RedisOptions(&config.Config{RedisURL: "http://not-redis"})
	assert.Error(t, err)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := database.NewRedisClient(ctx, &config.Config{RedisHost: "127.0.0.1", RedisPort: "1"})
	assert.Error(t, err)
}
