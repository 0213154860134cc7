package models

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Field bounds shared by validation and the schema.
const (
	RecipeNameMaxLength  = 256
	TagMaxLength         = 32
	IngredientMaxLength  = 128
	MeasurementMaxLength = 64
	MinAmount            = 1
	MaxCookingTime       = 32000
	MaxIngredientAmount  = 32000
	ShortCodeLength      = 8
)

// ErrShortCodeImmutable is returned by the Recipe update hook when a save
// would replace an already assigned short code.
var ErrShortCodeImmutable = errors.New("recipe short code cannot be changed once assigned")

type Tag struct {
	ID   uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name string    `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Slug string    `gorm:"size:32;uniqueIndex;not null" json:"slug"`
}

// BeforeCreate assigns an id and derives the slug from the name when empty.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	return nil
}

// Ingredient is identified by its (name, measurement unit) pair.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name            string    `gorm:"size:128;not null;uniqueIndex:idx_ingredient_name_unit;index" json:"name"`
	MeasurementUnit string    `gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Recipe struct {
	ID          uuid.UUID          `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	AuthorID    uuid.UUID          `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_author_name" json:"author_id"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Name        string             `gorm:"size:256;not null;uniqueIndex:idx_recipe_author_name" json:"name"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1 AND cooking_time <= 32000" json:"cooking_time"`
	Image       string             `gorm:"size:512;not null" json:"image"`
	ShortCode   *string            `gorm:"size:8;uniqueIndex:idx_recipe_short_code" json:"short_code,omitempty"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeUpdate refuses to change a short code that is already stored.
// Assigning a code to a recipe that has none is allowed. Save writes every
// column from the model itself, so Changed cannot see the new value there and
// the carried code is compared with the stored one instead.
func (r *Recipe) BeforeUpdate(tx *gorm.DB) error {
	fullSave := tx.Statement.Dest == tx.Statement.Model
	if !fullSave && !tx.Statement.Changed("ShortCode") {
		return nil
	}
	if r.ID == uuid.Nil {
		return nil
	}

	var stored Recipe
	err := tx.Session(&gorm.Session{NewDB: true}).
		Select("short_code").
		Where("id = ?", r.ID).
		Take(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if stored.ShortCode == nil || *stored.ShortCode == "" {
		return nil
	}
	if fullSave && r.ShortCode != nil && *r.ShortCode == *stored.ShortCode {
		return nil
	}
	return ErrShortCodeImmutable
}

// RecipeIngredient carries the amount of one ingredient in one recipe.
type RecipeIngredient struct {
	ID           uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"-"`
	RecipeID     uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_ingredient;index" json:"id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredient_amount,amount >= 1 AND amount <= 32000" json:"amount"`
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}

// Slugify lower-cases name and joins its letter/digit runs with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
