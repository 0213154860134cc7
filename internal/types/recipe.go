package types

import (
	"github.com/google/uuid"
)

// Tag is the public view of a tag.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Ingredient is the public view of an ingredient, with Amount set when it
// is shown as part of a recipe.
type Ingredient struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount,omitempty"`
}

// RecipeResponse is the full read view of a recipe for one actor.
type RecipeResponse struct {
	ID               uuid.UUID    `json:"id"`
	Author           User         `json:"author"`
	Tags             []Tag        `json:"tags"`
	Ingredients      []Ingredient `json:"ingredients"`
	IsFavorited      bool         `json:"is_favorited"`
	IsInShoppingCart bool         `json:"is_in_shopping_cart"`
	Name             string       `json:"name"`
	Image            string       `json:"image"`
	Text             string       `json:"text"`
	CookingTime      int          `json:"cooking_time"`
	ShortLink        string       `json:"short_link,omitempty"`
}

// RecipeMinified is the short recipe view used in collections and
// subscriptions.
type RecipeMinified struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// ShortLinkResponse carries a recipe's short link.
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// Page is a page-number paginated list.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
