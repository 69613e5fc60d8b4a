package store

import (
	"context"
	"sort"
	"sync"

	"licensio/internal/catalog"
	id "licensio/pkg/domain"
	"licensio/pkg/platform/sentinel"
)

// Memory is the in-memory product store.
type Memory struct {
	mu     sync.RWMutex
	byID   map[id.ProductID]catalog.Product
	bySlug map[string]id.ProductID
}

func NewMemory() *Memory {
	return &Memory{
		byID:   make(map[id.ProductID]catalog.Product),
		bySlug: make(map[string]id.ProductID),
	}
}

func (s *Memory) Create(_ context.Context, product catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySlug[product.Slug]; exists {
		return sentinel.ErrConflict
	}
	s.byID[product.ID] = product
	s.bySlug[product.Slug] = product.ID
	return nil
}

func (s *Memory) FindByID(_ context.Context, productID id.ProductID) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.byID[productID]
	if !ok {
		return catalog.Product{}, sentinel.ErrNotFound
	}
	return product, nil
}

func (s *Memory) List(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]catalog.Product, 0, len(s.byID))
	for _, p := range s.byID {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Slug < products[j].Slug })
	return products, nil
}
