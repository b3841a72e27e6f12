package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/telvora/telvora/pkg/models"
)

type countingStore struct {
	products []models.Product
	err      error
	calls    int
}

func (s *countingStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func TestCatalogCacheReadThrough(t *testing.T) {
	backing := &countingStore{products: []models.Product{{ProductName: "Data 10GB"}}}
	c := NewCatalogCache(backing, Config{TTL: time.Minute})

	for i := 0; i < 3; i++ {
		products, err := c.ListProducts(context.Background())
		if err != nil {
			t.Fatalf("ListProducts: %v", err)
		}
		if len(products) != 1 {
			t.Fatalf("catalog size = %d, want 1", len(products))
		}
	}

	if backing.calls != 1 {
		t.Errorf("store calls = %d, want 1 (cache hit on repeats)", backing.calls)
	}
}

func TestCatalogCacheInvalidate(t *testing.T) {
	backing := &countingStore{products: []models.Product{{ProductName: "Data 10GB"}}}
	c := NewCatalogCache(backing, Config{TTL: time.Minute})

	c.ListProducts(context.Background())
	c.Invalidate()
	c.ListProducts(context.Background())

	if backing.calls != 2 {
		t.Errorf("store calls = %d, want 2 after invalidation", backing.calls)
	}
}

func TestCatalogCacheNeverCachesErrors(t *testing.T) {
	backing := &countingStore{err: errors.New("bolt connection refused")}
	c := NewCatalogCache(backing, Config{TTL: time.Minute})

	if _, err := c.ListProducts(context.Background()); err == nil {
		t.Fatal("expected the store error to surface")
	}

	backing.err = nil
	backing.products = []models.Product{{ProductName: "Data 10GB"}}

	products, err := c.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts after recovery: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("catalog size = %d, want the recovered catalog", len(products))
	}
}
