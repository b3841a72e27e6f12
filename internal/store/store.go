package store

import (
	"context"
	"errors"

	"github.com/telvora/telvora/pkg/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// CustomerStore fetches customer profiles. Persistence lives outside
// the core; the engine only ever reads.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id string) (models.CustomerProfile, error)
	// ListCustomers pages through the customer base for batch
	// simulation. A page shorter than limit signals the end.
	ListCustomers(ctx context.Context, limit, offset int) ([]models.CustomerProfile, error)
}

// ProductStore fetches the product catalog with derived per-unit price
// fields already computed.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}
