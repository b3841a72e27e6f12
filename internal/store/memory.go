package store

import (
	"context"
	"sort"
	"sync"

	"github.com/telvora/telvora/pkg/models"
)

// MemoryStore is an in-process CustomerStore and ProductStore, used in
// tests and for local development without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[string]models.CustomerProfile
	products  []models.Product
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{customers: make(map[string]models.CustomerProfile)}
}

// SeedCustomers loads customer profiles into the store.
func (s *MemoryStore) SeedCustomers(customers ...models.CustomerProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range customers {
		s.customers[c.CustomerID] = c
	}
}

// SeedProducts loads catalog entries, deriving per-unit prices.
func (s *MemoryStore) SeedProducts(products ...models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		p.DeriveUnitPrices()
		s.products = append(s.products, p)
	}
}

// GetCustomer fetches a single customer profile by id.
func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (models.CustomerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return models.CustomerProfile{}, ErrNotFound
	}
	return c, nil
}

// ListCustomers returns one page of the customer base ordered by id.
func (s *MemoryStore) ListCustomers(ctx context.Context, limit, offset int) ([]models.CustomerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.customers))
	for id := range s.customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}

	page := make([]models.CustomerProfile, 0, end-offset)
	for _, id := range ids[offset:end] {
		page = append(page, s.customers[id])
	}
	return page, nil
}

// ListProducts returns the full catalog.
func (s *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}
