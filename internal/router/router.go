package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Options carries the cross-cutting pieces the routes need. Nil rate
// limiters disable limiting.
type Options struct {
	DB                 *gorm.DB
	Tokens             middleware.TokenValidator
	CORSOrigins        []string
	RecipeWriteLimiter *middleware.RateLimiter
	ShortLinkLimiter   *middleware.RateLimiter
}

// SetupRouter configures the application routes
func SetupRouter(h api.Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(opts.CORSOrigins),
	)

	router.GET("/health", api.HealthCheck(opts.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.AuthMiddleware(opts.Tokens)
	optional := middleware.OptionalAuth(opts.Tokens)
	recipeWrite := limit(opts.RecipeWriteLimiter, middleware.ByUser)

	router.GET("/s/:code", limit(opts.ShortLinkLimiter, middleware.ByClientIP), h.ShortLinks.Resolve)

	v1 := router.Group("/api/v1")
	h.Auth.RegisterRoutes(v1, auth)
	h.Users.RegisterRoutes(v1, auth, optional)
	h.Recipes.RegisterRoutes(v1, auth, optional, recipeWrite)
	h.Catalog.RegisterRoutes(v1)

	return router
}

func limit(rl *middleware.RateLimiter, key middleware.KeyFunc) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.Middleware(key)
}
