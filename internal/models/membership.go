package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipKind names the relation a (user, recipe) membership belongs to.
type MembershipKind string

const (
	KindFavorite     MembershipKind = "favorite"
	KindShoppingCart MembershipKind = "shopping_cart"
)

// Valid reports whether k is one of the known kinds.
func (k MembershipKind) Valid() bool {
	return k == KindFavorite || k == KindShoppingCart
}

// Membership marks a recipe as belonging to one of a user's collections.
// Uniqueness is per (kind, user, recipe), so the same recipe can be both a
// favorite and in the shopping cart.
type Membership struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Kind      MembershipKind `gorm:"size:16;not null;uniqueIndex:idx_membership_kind_user_recipe" json:"kind"`
	UserID    uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_membership_kind_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_membership_kind_user_recipe;index" json:"recipe_id"`
	User      User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe         `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Membership) TableName() string {
	return "recipe_memberships"
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Membership{},
	}
}
