package main

import (
	"database/sql"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "migrations", "Directory holding the .sql migrations")
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

	if *rollback {
		if err := rollbackLast(db, *dir); err != nil {
			logging.Fatal().Err(err).Msg("rollback failed")
		}
		return
	}

	if err := database.RunMigrations(db, *dir); err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
	logging.Info().Msg("all migrations applied")
}

// rollbackLast runs <name>_rollback.sql for the most recently applied
// migration and forgets it.
func rollbackLast(db *gorm.DB, dir string) error {
	if db.Dialector.Name() == "sqlite" {
		return errors.New("rollback is only supported for postgres")
	}

	var last string
	row := db.Raw("SELECT name FROM schema_migrations ORDER BY applied_at DESC, id DESC LIMIT 1").Row()
	if err := row.Scan(&last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logging.Info().Msg("no migrations to roll back")
			return nil
		}
		return err
	}

	path := filepath.Join(dir, strings.TrimSuffix(last, ".sql")+"_rollback.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM schema_migrations WHERE name = ?", last).Error
	})
	if err != nil {
		return err
	}
	logging.Info().Str("migration", last).Msg("rolled back migration")
	return nil
}
