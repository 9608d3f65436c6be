package catalog

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"

	"kart-pricing/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped snapshot files on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based snapshot loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a gzipped snapshot file with one JSON discount per line.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.Discount, error) {
	l.logger.Info().Str("file", filePath).Msg("loading discount snapshot")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open snapshot file")
		return nil, fmt.Errorf("failed to open snapshot file %s: %w", filePath, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", filePath, err)
	}
	defer gzipReader.Close()

	discounts, err := readDiscounts(ctx, gzipReader)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading snapshot file")
		return nil, fmt.Errorf("error reading snapshot file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("discounts_loaded", len(discounts)).
		Msg("discount snapshot loaded successfully")

	return discounts, nil
}
