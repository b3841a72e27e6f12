package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/telvora/telvora/pkg/models"
)

func TestMemoryStoreGetCustomer(t *testing.T) {
	s := NewMemoryStore()
	s.SeedCustomers(models.CustomerProfile{CustomerID: "CUST-1", MonthlySpend: 90000})

	got, err := s.GetCustomer(context.Background(), "CUST-1")
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if got.MonthlySpend.Float() != 90000 {
		t.Errorf("spend = %v, want 90000", got.MonthlySpend.Float())
	}

	_, err = s.GetCustomer(context.Background(), "CUST-404")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStorePagination(t *testing.T) {
	s := NewMemoryStore()
	s.SeedCustomers(
		models.CustomerProfile{CustomerID: "CUST-3"},
		models.CustomerProfile{CustomerID: "CUST-1"},
		models.CustomerProfile{CustomerID: "CUST-2"},
	)

	page, err := s.ListCustomers(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(page) != 2 || page[0].CustomerID != "CUST-1" || page[1].CustomerID != "CUST-2" {
		t.Errorf("first page = %v, want CUST-1, CUST-2", page)
	}

	page, err = s.ListCustomers(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("ListCustomers offset 2: %v", err)
	}
	if len(page) != 1 || page[0].CustomerID != "CUST-3" {
		t.Errorf("second page = %v, want CUST-3", page)
	}

	page, err = s.ListCustomers(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("ListCustomers past end: %v", err)
	}
	if len(page) != 0 {
		t.Errorf("page past end = %v, want empty", page)
	}
}

func TestMemoryStoreSeedDerivesUnitPrices(t *testing.T) {
	s := NewMemoryStore()
	s.SeedProducts(
		models.Product{ProductName: "Data 10GB", Category: models.CategoryData, Price: 50000, CapacityGB: 10},
		models.Product{ProductName: "Stream Pass", Category: models.CategoryVOD, Price: 45000},
	)

	products, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("catalog size = %d, want 2", len(products))
	}

	if math.Abs(products[0].PricePerGB-5000) > 1 {
		t.Errorf("PricePerGB = %v, want ~5000", products[0].PricePerGB)
	}
	if !math.IsNaN(products[1].PricePerGB) {
		t.Errorf("PricePerGB = %v, want NaN for a zero-capacity product", products[1].PricePerGB)
	}
}
