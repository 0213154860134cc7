package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService owns recipe writes (always transactional with their tags,
// ingredient amounts and short code) and the filtered recipe listing.
type RecipeService struct {
	db          *gorm.DB
	codes       *ShortCodeGenerator
	members     *MembershipService
	follows     *FollowService
	images      ImageStore
	cache       ShortLinkCache
	defaultPage int
}

type RecipeOption func(*RecipeService)

// WithImageStore enables data URI image uploads.
func WithImageStore(store ImageStore) RecipeOption {
	return func(s *RecipeService) { s.images = store }
}

// WithShortLinkCache puts a cache in front of short code resolution.
func WithShortLinkCache(cache ShortLinkCache) RecipeOption {
	return func(s *RecipeService) { s.cache = cache }
}

func NewRecipeService(db *gorm.DB, codes *ShortCodeGenerator, defaultPageSize int, opts ...RecipeOption) *RecipeService {
	s := &RecipeService{
		db:          db,
		codes:       codes,
		members:     NewMembershipService(db),
		follows:     NewFollowService(db, defaultPageSize),
		defaultPage: defaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecipeDetail is a recipe with the actor-specific flags of its read view.
type RecipeDetail struct {
	Recipe models.Recipe
	Flags
	AuthorSubscribed bool
}

// RecipeFilter narrows List. The membership filters apply to the actor and
// are ignored for anonymous callers.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// Create stores a recipe with its tags, ingredient amounts and a fresh short
// code in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*RecipeDetail, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	image, err := storeImage(ctx, s.images, "recipes", req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       image,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, req.Ingredients); err != nil {
			return err
		}
		recipe.Tags = tags
		if err := s.insertWithShortCode(tx, recipe); err != nil {
			return err
		}
		return insertIngredients(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("recipe_id", recipe.ID.String()).Str("short_code", *recipe.ShortCode).Msg("recipe created")
	return s.Get(ctx, &authorID, recipe.ID)
}

// insertWithShortCode inserts recipe under a freshly generated short code. A
// code taken by a concurrent insert between the free check and this insert
// counts as a collision: the insert is rolled back to a savepoint and retried
// within the generator's attempt budget.
func (s *RecipeService) insertWithShortCode(tx *gorm.DB, recipe *models.Recipe) error {
	const savepoint = "recipe_insert"
	for attempt := 1; attempt <= s.codes.maxAttempts; attempt++ {
		code, err := s.codes.Generate(tx)
		if err != nil {
			return err
		}
		recipe.ShortCode = &code

		if err := tx.SavePoint(savepoint).Error; err != nil {
			return fmt.Errorf("failed to set savepoint: %w", err)
		}
		err = tx.Omit("Author", "Tags.*", "Ingredients").Create(recipe).Error
		if err == nil {
			return nil
		}
		if v, ok := database.Classify(err); !ok || v.Kind != database.UniqueViolation || !v.Mentions("short_code") {
			return recipeWriteError(err)
		}
		if err := tx.RollbackTo(savepoint).Error; err != nil {
			return fmt.Errorf("failed to roll back to savepoint: %w", err)
		}
		collided(code, attempt)
	}
	return &ShortCodeExhaustedError{Attempts: s.codes.maxAttempts}
}

// Update replaces a recipe's fields, tags and ingredient amounts. Only the
// author may update; the short code is never written.
func (s *RecipeService) Update(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RecipeRequest) (*RecipeDetail, error) {
	if err := s.authorize(ctx, actorID, recipeID); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	image, err := storeImage(ctx, s.images, "recipes", req.Image)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, req.Ingredients); err != nil {
			return err
		}

		recipe := models.Recipe{ID: recipeID}
		res := tx.Model(&recipe).
			Select("name", "text", "cooking_time", "image", "updated_at").
			Updates(models.Recipe{
				Name:        req.Name,
				Text:        req.Text,
				CookingTime: req.CookingTime,
				Image:       image,
				UpdatedAt:   time.Now(),
			})
		if res.Error != nil {
			return recipeWriteError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("failed to replace tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear ingredients: %w", err)
		}
		return insertIngredients(tx, recipeID, req.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, &actorID, recipeID)
}

// Delete removes a recipe; memberships and ingredient rows cascade.
func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID uuid.UUID) error {
	db := s.db.WithContext(ctx)
	var recipe models.Recipe
	if err := db.Select("id", "author_id", "short_code").Take(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.AuthorID != actorID {
		return ErrForbidden
	}

	res := db.Delete(&models.Recipe{}, "id = ?", recipeID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	if s.cache != nil && recipe.ShortCode != nil {
		if err := s.cache.Delete(ctx, *recipe.ShortCode); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("failed to evict short link")
		}
	}
	return nil
}

// Get loads a recipe with its author, tags and ingredients. actor may be nil.
func (s *RecipeService) Get(ctx context.Context, actor *uuid.UUID, recipeID uuid.UUID) (*RecipeDetail, error) {
	var recipe models.Recipe
	err := withRecipeRelations(s.db.WithContext(ctx)).Take(&recipe, "recipes.id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	details, err := s.decorate(ctx, actor, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// List pages through recipes newest first.
func (s *RecipeService) List(ctx context.Context, actor *uuid.UUID, filter RecipeFilter, page Page) (Paged[RecipeDetail], error) {
	page = page.Normalize(s.defaultPage)
	var out Paged[RecipeDetail]

	if actor == nil {
		filter.IsFavorited = false
		filter.IsInShoppingCart = false
	}

	db := s.db.WithContext(ctx)
	base := func() *gorm.DB {
		q := db.Model(&models.Recipe{})
		if filter.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			q = q.Where("recipes.id IN (?)", db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
		}
		if filter.IsFavorited {
			q = q.Where("recipes.id IN (?)", memberRecipeIDs(db, models.KindFavorite, *actor))
		}
		if filter.IsInShoppingCart {
			q = q.Where("recipes.id IN (?)", memberRecipeIDs(db, models.KindShoppingCart, *actor))
		}
		return q
	}

	if err := base().Count(&out.Count).Error; err != nil {
		return out, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := withRecipeRelations(base()).
		Order("recipes.created_at DESC").
		Order("recipes.id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return out, fmt.Errorf("failed to list recipes: %w", err)
	}

	out.Results, err = s.decorate(ctx, actor, recipes)
	return out, err
}

// Collection lists the recipes in the actor's collection of kind.
func (s *RecipeService) Collection(ctx context.Context, actorID uuid.UUID, kind models.MembershipKind, page Page) (Paged[RecipeDetail], error) {
	f := RecipeFilter{}
	switch kind {
	case models.KindFavorite:
		f.IsFavorited = true
	case models.KindShoppingCart:
		f.IsInShoppingCart = true
	default:
		return Paged[RecipeDetail]{}, invalid("kind", "unknown collection %q", kind)
	}
	return s.List(ctx, &actorID, f, page)
}

// ShortCode returns the recipe's short code, assigning one to recipes that
// predate short codes.
func (s *RecipeService) ShortCode(ctx context.Context, recipeID uuid.UUID) (string, error) {
	db := s.db.WithContext(ctx)
	var recipe models.Recipe
	if err := db.Select("id", "short_code").Take(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load recipe: %w", err)
	}
	if err := s.codes.Assign(db, &recipe); err != nil {
		return "", err
	}
	return *recipe.ShortCode, nil
}

// ResolveShortCode returns the id of the recipe holding code.
func (s *RecipeService) ResolveShortCode(ctx context.Context, code string) (uuid.UUID, error) {
	if len(code) == 0 || len(code) > models.ShortCodeLength {
		return uuid.Nil, ErrNotFound
	}
	log := logging.Ctx(ctx)

	if s.cache != nil {
		id, ok, err := s.cache.Get(ctx, code)
		switch {
		case err != nil:
			metrics.ShortLinkCache.WithLabelValues("error").Inc()
			log.Warn().Err(err).Msg("short link cache lookup failed")
		case ok:
			metrics.ShortLinkCache.WithLabelValues("hit").Inc()
			return id, nil
		default:
			metrics.ShortLinkCache.WithLabelValues("miss").Inc()
		}
	}

	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id").Take(&recipe, "short_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve short code: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, code, recipe.ID); err != nil {
			log.Warn().Err(err).Msg("short link cache write failed")
		}
	}
	return recipe.ID, nil
}

// BackfillShortCodes assigns a code to every recipe without one and returns
// how many were assigned. Progress is logged every logEvery recipes.
func (s *RecipeService) BackfillShortCodes(ctx context.Context, logEvery int) (int, error) {
	db := s.db.WithContext(ctx)
	assigned := 0

	var pending []uuid.UUID
	if err := db.Model(&models.Recipe{}).Where("short_code IS NULL").Order("id").Pluck("id", &pending).Error; err != nil {
		return 0, fmt.Errorf("failed to find recipes without short code: %w", err)
	}

	for i, id := range pending {
		if err := ctx.Err(); err != nil {
			return assigned, err
		}
		recipe := models.Recipe{ID: id}
		if err := s.codes.Assign(db, &recipe); err != nil {
			return assigned, fmt.Errorf("recipe %s: %w", id, err)
		}
		assigned++
		if logEvery > 0 && (i+1)%logEvery == 0 {
			logging.Info().Int("assigned", assigned).Int("total", len(pending)).Msg("backfilling short codes")
		}
	}
	return assigned, nil
}

func (s *RecipeService) authorize(ctx context.Context, actorID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "author_id").Take(&recipe, "id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.AuthorID != actorID {
		return ErrForbidden
	}
	return nil
}

// decorate attaches the actor's membership flags and author subscription.
func (s *RecipeService) decorate(ctx context.Context, actor *uuid.UUID, recipes []models.Recipe) ([]RecipeDetail, error) {
	out := make([]RecipeDetail, len(recipes))
	if len(recipes) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(recipes))
	authors := make([]uuid.UUID, 0, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		authors = append(authors, r.AuthorID)
	}

	flags, err := s.members.FlagsFor(ctx, actor, ids)
	if err != nil {
		return nil, err
	}
	following := map[uuid.UUID]bool{}
	if actor != nil {
		following, err = s.follows.FollowingSet(ctx, *actor, authors)
		if err != nil {
			return nil, err
		}
	}

	for i, r := range recipes {
		out[i] = RecipeDetail{
			Recipe:           r,
			Flags:            flags[r.ID],
			AuthorSubscribed: following[r.AuthorID],
		}
	}
	return out, nil
}

func withRecipeRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients.Ingredient")
}

func memberRecipeIDs(db *gorm.DB, kind models.MembershipKind, userID uuid.UUID) *gorm.DB {
	return db.Model(&models.Membership{}).
		Select("recipe_id").
		Where("kind = ? AND user_id = ?", string(kind), userID)
}

func loadTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(ids) {
		return nil, invalid("tags", "unknown tag")
	}
	return tags, nil
}

func checkIngredients(tx *gorm.DB, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check ingredients: %w", err)
	}
	if int(count) != len(ids) {
		return invalid("ingredients", "unknown ingredient")
	}
	return nil
}

func insertIngredients(tx *gorm.DB, recipeID uuid.UUID, items []types.IngredientAmount) error {
	rows := make([]models.RecipeIngredient, len(items))
	for i, it := range items {
		rows[i] = models.RecipeIngredient{RecipeID: recipeID, IngredientID: it.ID, Amount: it.Amount}
	}
	if err := tx.Omit("Ingredient").Create(&rows).Error; err != nil {
		if v, ok := database.Classify(err); ok {
			switch v.Kind {
			case database.UniqueViolation:
				return invalid("ingredients", "must not contain duplicates")
			case database.ForeignKeyViolation:
				return invalid("ingredients", "unknown ingredient")
			case database.CheckViolation:
				return invalid("ingredients", "amount out of range")
			}
		}
		return fmt.Errorf("failed to save ingredients: %w", err)
	}
	return nil
}

func recipeWriteError(err error) error {
	v, ok := database.Classify(err)
	if !ok {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	switch v.Kind {
	case database.UniqueViolation:
		if v.Mentions("short_code") {
			return &ShortCodeExhaustedError{Attempts: 1}
		}
		return ErrDuplicateRecipe
	case database.CheckViolation:
		if v.Mentions("short_code") {
			return models.ErrShortCodeImmutable
		}
		return invalid("cooking_time", "out of range")
	case database.ForeignKeyViolation:
		return ErrNotFound
	}
	return fmt.Errorf("failed to save recipe: %w", err)
}
