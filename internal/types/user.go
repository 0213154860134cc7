package types

import "github.com/google/uuid"

// User is the public view of a user for one actor.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       string    `json:"avatar"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// Subscription is a followed user with a preview of their recipes.
type Subscription struct {
	User
	Recipes      []RecipeMinified `json:"recipes"`
	RecipesCount int64            `json:"recipes_count"`
}
