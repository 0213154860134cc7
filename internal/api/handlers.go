package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Recipes    *RecipeHandler
	Catalog    *CatalogHandler
	ShortLinks *ShortLinkHandler
}

// HealthCheck reports whether the database answers a ping.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
