// internal/domain/ranking/service.go
package ranking

import (
	"context"

	"github.com/freshbasket/storefront/internal/domain/product"
)

// LeaderboardEntry is a ranking entry joined with its product
type LeaderboardEntry struct {
	Product   product.Product `json:"product"`
	UnitsSold float64         `json:"units_sold"`
}

// Service exposes the ranking to the admin API
type Service struct {
	store       Store
	products    product.Repository
	defaultTopK int
}

// NewService creates a new ranking service
func NewService(store Store, products product.Repository, defaultTopK int) *Service {
	return &Service{
		store:       store,
		products:    products,
		defaultTopK: defaultTopK,
	}
}

func (s *Service) limit(k int) int {
	if k <= 0 {
		return s.defaultTopK
	}
	return k
}

// TopProducts returns the raw top k entries; k <= 0 means the default
func (s *Service) TopProducts(ctx context.Context, k int) ([]Entry, error) {
	return s.store.TopK(ctx, s.limit(k))
}

// Leaderboard joins the top k entries with their products, skipping
// products that no longer exist
func (s *Service) Leaderboard(ctx context.Context, k int) ([]LeaderboardEntry, error) {
	entries, err := s.store.TopK(ctx, s.limit(k))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []LeaderboardEntry{}, nil
	}

	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	board := make([]LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		p, ok := byID[e.ProductID]
		if !ok {
			continue
		}
		board = append(board, LeaderboardEntry{Product: p, UnitsSold: e.Score})
	}
	return board, nil
}
