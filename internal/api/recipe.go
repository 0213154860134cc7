package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes         *service.RecipeService
	members         *service.MembershipService
	cart            *service.CartService
	shortLinkPrefix string
	pageSize        int
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	members *service.MembershipService,
	cart *service.CartService,
	shortLinkPrefix string,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:         recipes,
		members:         members,
		cart:            cart,
		shortLinkPrefix: shortLinkPrefix,
		pageSize:        pageSize,
	}
}

// RegisterRoutes mounts the recipe endpoints. auth rejects anonymous
// requests, optional resolves the actor when a token is present, and write
// limits recipe creation and updates.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, auth, optional, write gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", auth, write, h.CreateRecipe)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", auth, write, h.UpdateRecipe)
		recipes.PUT("/:id", auth, write, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", auth, h.addMember(models.KindFavorite))
		recipes.DELETE("/:id/favorite", auth, h.removeMember(models.KindFavorite))
		recipes.POST("/:id/shopping_cart", auth, h.addMember(models.KindShoppingCart))
		recipes.DELETE("/:id/shopping_cart", auth, h.removeMember(models.KindShoppingCart))
	}
}

func (h *RecipeHandler) recipeResponse(d *service.RecipeDetail) types.RecipeResponse {
	return toRecipe(d, h.shortLinkPrefix)
}

// ListRecipes supports the author, tags (repeatable), is_favorited and
// is_in_shopping_cart filters.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}

	filter := service.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "author", "must be a user id")
			return
		}
		filter.AuthorID = &author
	}

	result, err := h.recipes.List(c.Request.Context(), middleware.Actor(c), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(c, page, result, h.recipeResponse))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.recipes.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.recipeResponse(detail))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	detail, err := h.recipes.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.recipeResponse(detail))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	detail, err := h.recipes.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.recipeResponse(detail))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLink returns the recipe's short link, assigning a code first when the
// recipe has none.
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	code, err := h.recipes.ShortCode(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkResponse{ShortLink: h.shortLinkPrefix + code})
}

func (h *RecipeHandler) addMember(kind models.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := h.members.Add(ctx, kind, userID, id); err != nil {
			respondError(c, err)
			return
		}
		detail, err := h.recipes.Get(ctx, &userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toMinified(&detail.Recipe))
	}
}

func (h *RecipeHandler) removeMember(kind models.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := h.members.Remove(c.Request.Context(), kind, userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated shopping list as a text
// attachment. An empty cart answers 204.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	lines, err := h.cart.ShoppingList(c.Request.Context(), userID)
	switch {
	case errors.Is(err, service.ErrEmptyCollection):
		metrics.ShoppingListDownloads.WithLabelValues("empty").Inc()
		respondError(c, err)
		return
	case err != nil:
		metrics.ShoppingListDownloads.WithLabelValues("error").Inc()
		respondError(c, err)
		return
	}
	metrics.ShoppingListDownloads.WithLabelValues("ok").Inc()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", service.RenderShoppingList(lines))
}
