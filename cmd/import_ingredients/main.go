package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	file := flag.String("file", "data/ingredients.csv", "CSV file with name,measurement_unit columns")
	tagsFile := flag.String("tags", "", "Optional CSV file with name,slug columns")
	batch := flag.Int("batch", 500, "Rows per insert statement")
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

	catalog := service.NewCatalogService(db)
	ctx := context.Background()

	rows, err := readIngredients(*file)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *file).Msg("failed to read ingredients")
	}
	inserted, err := catalog.ImportIngredients(ctx, rows, *batch)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to import ingredients")
	}
	logging.Info().Int("rows", len(rows)).Int64("inserted", inserted).Msg("ingredients imported")

	if *tagsFile == "" {
		return
	}
	tags, err := readTags(*tagsFile)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *tagsFile).Msg("failed to read tags")
	}
	created := 0
	for _, tag := range tags {
		if _, err := catalog.CreateTag(ctx, tag.Name, tag.Slug); err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				logging.Warn().Err(err).Str("tag", tag.Name).Msg("skipping tag")
				continue
			}
			logging.Fatal().Err(err).Msg("failed to import tags")
		}
		created++
	}
	logging.Info().Int("created", created).Msg("tags imported")
}

func readIngredients(path string) ([]models.Ingredient, error) {
	records, err := readCSV(path, "name", "measurement_unit")
	if err != nil {
		return nil, err
	}
	out := make([]models.Ingredient, len(records))
	for i, r := range records {
		out[i] = models.Ingredient{Name: r[0], MeasurementUnit: r[1]}
	}
	return out, nil
}

func readTags(path string) ([]models.Tag, error) {
	records, err := readCSV(path, "name", "slug")
	if err != nil {
		return nil, err
	}
	out := make([]models.Tag, len(records))
	for i, r := range records {
		out[i] = models.Tag{Name: r[0], Slug: r[1]}
	}
	return out, nil
}

func readCSV(path string, columns ...string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f, columns...)
}

// parseCSV returns the named columns of every record, in the order given.
// The first line must be a header naming at least those columns; blank
// values are kept for the caller to reject.
func parseCSV(r io.Reader, columns ...string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := make([]int, len(columns))
	for i, col := range columns {
		index[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), col) {
				index[i] = j
				break
			}
		}
		if index[i] < 0 {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var out [][]string
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make([]string, len(columns))
		for i, j := range index {
			if j >= len(record) {
				return nil, fmt.Errorf("line %d: missing %s", line, columns[i])
			}
			row[i] = strings.TrimSpace(record[j])
		}
		out = append(out, row)
	}
}
