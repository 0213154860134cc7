package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	progress := flag.Int("progress", 100, "Log progress every N recipes")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() { _ = database.Close(db) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recipes := service.NewRecipeService(db, service.NewShortCodeGenerator(cfg.ShortCodeMaxAttempts), cfg.DefaultPageSize)
	assigned, err := recipes.BackfillShortCodes(ctx, *progress)
	if err != nil {
		logging.Fatal().Err(err).Int("assigned", assigned).Msg("backfill failed")
	}
	if assigned == 0 {
		logging.Info().Msg("no recipes without a short code")
		return
	}
	logging.Info().Int("assigned", assigned).Msg("short codes assigned")
}
