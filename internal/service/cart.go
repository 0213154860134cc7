package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// ShoppingListFilename is the attachment name of the downloaded list.
const ShoppingListFilename = "shopping_cart.txt"

// CartLine is one aggregated ingredient of a shopping list.
type CartLine struct {
	IngredientID    uuid.UUID
	Name            string
	MeasurementUnit string
	Amount          int64
}

func (l CartLine) String() string {
	return fmt.Sprintf("%s: %d %s", l.Name, l.Amount, l.MeasurementUnit)
}

// CartService aggregates the recipes in a user's shopping cart.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart.
// Lines are grouped by ingredient identity, so the same name in two units
// stays two lines, and sorted by name. An empty cart returns
// ErrEmptyCollection without aggregating.
func (s *CartService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	db := s.db.WithContext(ctx)

	var inCart int64
	err := db.Model(&models.Membership{}).
		Where("kind = ? AND user_id = ?", string(models.KindShoppingCart), userID).
		Count(&inCart).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count cart: %w", err)
	}
	if inCart == 0 {
		return nil, ErrEmptyCollection
	}

	var lines []CartLine
	err = db.Table("recipe_memberships AS m").
		Select("i.id AS ingredient_id, i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS amount").
		Joins("JOIN recipe_ingredients AS ri ON ri.recipe_id = m.recipe_id").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Where("m.kind = ? AND m.user_id = ?", string(models.KindShoppingCart), userID).
		Group("i.id, i.name, i.measurement_unit").
		Order("i.name ASC, i.measurement_unit ASC, i.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return lines, nil
}

// RenderShoppingList formats lines as "<name>: <amount> <unit>", one per line.
func RenderShoppingList(lines []CartLine) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
