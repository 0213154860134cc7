package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
)

// ShortLinkHandler redirects short links to the recipe detail endpoint.
type ShortLinkHandler struct {
	recipes *service.RecipeService
}

func NewShortLinkHandler(recipes *service.RecipeService) *ShortLinkHandler {
	return &ShortLinkHandler{recipes: recipes}
}

func (h *ShortLinkHandler) Resolve(c *gin.Context) {
	id, err := h.recipes.ResolveShortCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/api/v1/recipes/"+id.String())
}
