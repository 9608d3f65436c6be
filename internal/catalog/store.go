package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"kart-pricing/internal/model"

	"github.com/rs/zerolog"
)

// StoreConfig holds configuration for the catalog store.
type StoreConfig struct {
	// FilePaths is the list of snapshot files merged into one catalog.
	FilePaths []string
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		FilePaths: []string{
			"data/discounts/sales.jsonl.gz",
			"data/discounts/coupons.jsonl.gz",
		},
	}
}

// store implements Store over an atomically swapped snapshot.
type store struct {
	config  *StoreConfig
	loader  Loader
	current atomic.Pointer[snapshot]
	logger  zerolog.Logger
}

// NewStore creates a catalog store and loads the initial snapshot.
func NewStore(ctx context.Context, config *StoreConfig, loader Loader, logger zerolog.Logger) (Store, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}

	s := &store{
		config: config,
		loader: loader,
		logger: logger.With().Str("component", "catalog-store").Logger(),
	}

	s.logger.Info().
		Int("file_count", len(config.FilePaths)).
		Msg("initialising discount catalog")

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload loads all snapshot files concurrently and swaps the result in.
func (s *store) Reload(ctx context.Context) error {
	type loadResult struct {
		index     int
		discounts []model.Discount
		err       error
	}

	resultChan := make(chan loadResult, len(s.config.FilePaths))
	var wg sync.WaitGroup

	for i, filePath := range s.config.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			discounts, err := s.loader.Load(ctx, path)
			resultChan <- loadResult{
				index:     index,
				discounts: discounts,
				err:       err,
			}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	// Merge in configuration order so reloads are reproducible.
	results := make([]loadResult, len(s.config.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	var all []model.Discount
	for i, result := range results {
		if result.err != nil {
			s.logger.Error().
				Err(result.err).
				Str("file", s.config.FilePaths[i]).
				Msg("failed to load snapshot file")
			return fmt.Errorf("failed to load snapshot file %s: %w", s.config.FilePaths[i], result.err)
		}
		all = append(all, result.discounts...)
	}

	snap, err := newSnapshot(all)
	if err != nil {
		s.logger.Error().Err(err).Msg("invalid discount snapshot")
		return fmt.Errorf("failed to build discount snapshot: %w", err)
	}
	s.current.Store(snap)

	s.logger.Info().
		Int("discounts", snap.size).
		Int("coupons", len(snap.coupons)).
		Msg("discount catalog loaded")

	return nil
}

// ListActiveDiscounts returns active sales of the target type.
func (s *store) ListActiveDiscounts(ctx context.Context, target model.TargetType) ([]model.Discount, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("discount catalog is closed")
	}
	return snap.salesFor(target), nil
}

// FindCouponByCode looks a coupon up by its trimmed code.
func (s *store) FindCouponByCode(ctx context.Context, code string) (*model.Discount, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("discount catalog is closed")
	}

	d, ok := snap.coupon(strings.TrimSpace(code))
	if !ok {
		s.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
		return nil, nil
	}
	return d, nil
}

func (s *store) Size() int {
	snap := s.current.Load()
	if snap == nil {
		return 0
	}
	return snap.size
}

// Close drops the current snapshot so it can be garbage collected.
func (s *store) Close() error {
	s.current.Store(nil)
	s.logger.Info().Msg("discount catalog closed")
	return nil
}
