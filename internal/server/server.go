package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

type options struct {
	redis  *redis.Client
	images service.ImageStore
}

// Option adds an optional backend to the server.
type Option func(*options)

// WithRedis enables the short link cache and the rate limiters.
func WithRedis(client *redis.Client) Option {
	return func(o *options) { o.redis = client }
}

// WithImageStore enables data URI uploads for recipe images and avatars.
func WithImageStore(store service.ImageStore) Option {
	return func(o *options) { o.images = store }
}

// New wires the services and routes over db.
func New(cfg *config.Config, db *gorm.DB, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	pageSize := cfg.DefaultPageSize
	auth := service.NewAuthService(db, cfg.JWTSecret)
	follows := service.NewFollowService(db, pageSize)
	members := service.NewMembershipService(db)

	var recipeOpts []service.RecipeOption
	if o.images != nil {
		recipeOpts = append(recipeOpts, service.WithImageStore(o.images))
	}
	if o.redis != nil {
		recipeOpts = append(recipeOpts, service.WithShortLinkCache(service.NewRedisShortLinkCache(o.redis, cfg.ShortLinkCacheTTL)))
	}
	recipes := service.NewRecipeService(db, service.NewShortCodeGenerator(cfg.ShortCodeMaxAttempts), pageSize, recipeOpts...)

	handlers := api.Handlers{
		Auth:       api.NewAuthHandler(auth),
		Users:      api.NewUserHandler(auth, service.NewUserService(db, follows, o.images, pageSize), follows, pageSize),
		Recipes:    api.NewRecipeHandler(recipes, members, service.NewCartService(db), cfg.ShortLinkPrefix, pageSize),
		Catalog:    api.NewCatalogHandler(service.NewCatalogService(db)),
		ShortLinks: api.NewShortLinkHandler(recipes),
	}

	routerOpts := router.Options{
		DB:          db,
		Tokens:      auth,
		CORSOrigins: cfg.CORSOrigins,
	}
	if o.redis != nil {
		if cfg.RecipeWritesPerHour > 0 {
			routerOpts.RecipeWriteLimiter = middleware.NewRecipeWriteRateLimiter(o.redis, cfg.RecipeWritesPerHour)
		}
		if cfg.ShortLinksPerMinute > 0 {
			routerOpts.ShortLinkLimiter = middleware.NewShortLinkRateLimiter(o.redis, cfg.ShortLinksPerMinute)
		}
	} else {
		logging.Warn().Msg("redis not configured; short link cache and rate limiting disabled")
	}

	engine := router.SetupRouter(handlers, routerOpts)
	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
