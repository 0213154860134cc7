package main

import (
	"context"
	"errors"
	"flag"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var demoUsers = []types.RegisterRequest{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
}

var demoTags = []struct{ name, slug string }{
	{"Breakfast", "breakfast"},
	{"Lunch", "lunch"},
	{"Dinner", "dinner"},
}

// seed_demo creates a few users and the standard meal tags for local
// development. Existing rows are left alone.
func main() {
	password := flag.String("password", "testpassword123", "Password for every demo user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	if !config.GetEnvironment().AllowsDemoData() {
		logging.Fatal().Msg("refusing to seed demo data in production")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	auth := service.NewAuthService(db, cfg.JWTSecret)
	for _, u := range demoUsers {
		req := u
		req.Password = *password
		if _, err := auth.Register(ctx, &req); err != nil {
			if errors.Is(err, service.ErrUserExists) {
				logging.Info().Str("email", u.Email).Msg("user already exists, skipping")
				continue
			}
			logging.Fatal().Err(err).Str("email", u.Email).Msg("failed to create user")
		}
		logging.Info().Str("username", u.Username).Msg("created demo user")
	}

	catalog := service.NewCatalogService(db)
	for _, tag := range demoTags {
		if _, err := catalog.CreateTag(ctx, tag.name, tag.slug); err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				logging.Info().Str("tag", tag.name).Msg("tag already exists, skipping")
				continue
			}
			logging.Fatal().Err(err).Msg("failed to create tag")
		}
	}
	logging.Info().Msg("demo data seeded")
}
