package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/telvora/telvora/internal/store"
	"github.com/telvora/telvora/pkg/models"
)

const catalogKey = "product_catalog"

// Config represents catalog cache configuration.
type Config struct {
	TTL time.Duration `yaml:"ttl"`
}

// DefaultConfig returns default catalog cache configuration.
func DefaultConfig() Config {
	return Config{TTL: 2 * time.Minute}
}

// CatalogCache is a read-through cache over a ProductStore. The
// catalog is small and changes rarely; a short TTL keeps edits visible
// without a store round trip on every inference.
type CatalogCache struct {
	store store.ProductStore
	cache *gocache.Cache
	ttl   time.Duration
}

// NewCatalogCache wraps a product store with a TTL cache.
func NewCatalogCache(s store.ProductStore, config Config) *CatalogCache {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultConfig().TTL
	}
	return &CatalogCache{
		store: s,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// ListProducts serves the catalog from cache, fetching from the
// underlying store on a miss. A fetch failure is returned as-is and
// never cached.
func (c *CatalogCache) ListProducts(ctx context.Context) ([]models.Product, error) {
	if cached, found := c.cache.Get(catalogKey); found {
		return cached.([]models.Product), nil
	}

	products, err := c.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.Set(catalogKey, products, c.ttl)
	return products, nil
}

// Invalidate drops the cached catalog so the next read refetches.
func (c *CatalogCache) Invalidate() {
	c.cache.Delete(catalogKey)
}
