package types

import "github.com/google/uuid"

// IngredientAmount references an existing ingredient with a quantity.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" validate:"required"`
	Amount int       `json:"amount" validate:"min=1,max=32000"`
}

// RecipeRequest is the body of recipe create and update calls. Image is
// either an absolute URL or a base64 data URI.
type RecipeRequest struct {
	Name        string             `json:"name" validate:"required,max=256"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"min=1,max=32000"`
	Image       string             `json:"image" validate:"required"`
	Tags        []uuid.UUID        `json:"tags" validate:"required,min=1,unique,dive,required"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
}

// RegisterRequest creates a user account.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required" validate:"required,email,max=254"`
	Username  string `json:"username" binding:"required" validate:"required,username"`
	FirstName string `json:"first_name" binding:"required" validate:"required,max=150"`
	LastName  string `json:"last_name" binding:"required" validate:"required,max=150"`
	Password  string `json:"password" binding:"required" validate:"required,min=8,max=128"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest changes the caller's password.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required" validate:"required,min=8,max=128"`
}

// AvatarRequest sets the caller's avatar from a base64 data URI.
type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}
