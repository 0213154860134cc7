package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func toUser(u *models.User, subscribed bool) types.User {
	return types.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Avatar:       u.Avatar,
		IsSubscribed: subscribed,
	}
}

func toTag(t *models.Tag) types.Tag {
	return types.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func toIngredient(i *models.Ingredient) types.Ingredient {
	return types.Ingredient{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toRecipe(d *service.RecipeDetail, shortLinkPrefix string) types.RecipeResponse {
	r := &d.Recipe
	out := types.RecipeResponse{
		ID:               r.ID,
		Author:           toUser(&r.Author, d.AuthorSubscribed),
		Tags:             make([]types.Tag, 0, len(r.Tags)),
		Ingredients:      make([]types.Ingredient, 0, len(r.Ingredients)),
		IsFavorited:      d.IsFavorited,
		IsInShoppingCart: d.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	for i := range r.Tags {
		out.Tags = append(out.Tags, toTag(&r.Tags[i]))
	}
	for _, ri := range r.Ingredients {
		ing := toIngredient(&ri.Ingredient)
		ing.Amount = ri.Amount
		out.Ingredients = append(out.Ingredients, ing)
	}
	if r.ShortCode != nil && *r.ShortCode != "" {
		out.ShortLink = shortLinkPrefix + *r.ShortCode
	}
	return out
}

func toMinified(r *models.Recipe) types.RecipeMinified {
	return types.RecipeMinified{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func toSubscription(s *service.Subscription) types.Subscription {
	out := types.Subscription{
		User:         toUser(&s.User, true),
		Recipes:      make([]types.RecipeMinified, 0, len(s.Recipes)),
		RecipesCount: s.RecipesCount,
	}
	for i := range s.Recipes {
		out.Recipes = append(out.Recipes, toMinified(&s.Recipes[i]))
	}
	return out
}

// toPage converts a service page, adding next/previous links relative to the
// current request.
func toPage[S, T any](c *gin.Context, page service.Page, in service.Paged[S], conv func(*S) T) types.Page[T] {
	out := types.Page[T]{Count: in.Count, Results: make([]T, 0, len(in.Results))}
	for i := range in.Results {
		out.Results = append(out.Results, conv(&in.Results[i]))
	}
	if int64(page.Offset()+len(in.Results)) < in.Count {
		out.Next = pageLink(c, page.Number+1)
	}
	if page.Number > 1 {
		out.Previous = pageLink(c, page.Number-1)
	}
	return out
}
