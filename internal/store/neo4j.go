package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/telvora/telvora/pkg/models"
)

// Config represents Neo4j store configuration.
type Config struct {
	Driver       string        `yaml:"driver"` // neo4j or memory
	URI          string        `yaml:"uri"`
	Database     string        `yaml:"database"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	MaxPoolSize  int           `yaml:"max_pool_size"`
	ConnTimeout  time.Duration `yaml:"conn_timeout"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// DefaultConfig returns default store configuration.
func DefaultConfig() Config {
	return Config{
		Driver:       "neo4j",
		URI:          "neo4j://localhost:7687",
		Database:     "neo4j",
		Username:     "neo4j",
		MaxPoolSize:  50,
		ConnTimeout:  10 * time.Second,
		QueryTimeout: 15 * time.Second,
	}
}

// Neo4jStore implements CustomerStore and ProductStore on Neo4j.
// Customers and products are plain nodes; the store is read-only from
// the engine's point of view.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	config Config
}

// NewNeo4jStore creates a Neo4j-backed store and verifies
// connectivity.
func NewNeo4jStore(config Config) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		config.URI,
		neo4j.BasicAuth(config.Username, config.Password, ""),
		func(c *neo4j.Config) {
			if config.MaxPoolSize > 0 {
				c.MaxConnectionPoolSize = config.MaxPoolSize
			}
			c.MaxConnectionLifetime = time.Hour
			if config.ConnTimeout > 0 {
				c.ConnectionAcquisitionTimeout = config.ConnTimeout
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	return &Neo4jStore{driver: driver, config: config}, nil
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// GetCustomer fetches a single customer profile by id.
func (s *Neo4jStore) GetCustomer(ctx context.Context, id string) (models.CustomerProfile, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.config.Database,
	})
	defer session.Close(ctx)

	record, err := session.Run(ctx,
		`MATCH (c:Customer {customer_id: $id}) RETURN c LIMIT 1`,
		map[string]any{"id": id})
	if err != nil {
		return models.CustomerProfile{}, fmt.Errorf("failed to query customer %s: %w", id, err)
	}

	if !record.Next(ctx) {
		return models.CustomerProfile{}, ErrNotFound
	}

	node, ok := record.Record().Get("c")
	if !ok {
		return models.CustomerProfile{}, ErrNotFound
	}
	return customerFromNode(node.(neo4j.Node)), nil
}

// ListCustomers returns one page of the customer base ordered by id.
func (s *Neo4jStore) ListCustomers(ctx context.Context, limit, offset int) ([]models.CustomerProfile, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.config.Database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (c:Customer) RETURN c ORDER BY c.customer_id SKIP $offset LIMIT $limit`,
		map[string]any{"limit": limit, "offset": offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	var customers []models.CustomerProfile
	for result.Next(ctx) {
		if node, ok := result.Record().Get("c"); ok {
			customers = append(customers, customerFromNode(node.(neo4j.Node)))
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read customer page: %w", err)
	}
	return customers, nil
}

// ListProducts returns the full catalog with per-unit prices derived.
func (s *Neo4jStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.config.Database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (p:Product) RETURN p ORDER BY p.product_id`, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	var products []models.Product
	for result.Next(ctx) {
		if node, ok := result.Record().Get("p"); ok {
			products = append(products, productFromNode(node.(neo4j.Node)))
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product catalog: %w", err)
	}
	return products, nil
}

func customerFromNode(node neo4j.Node) models.CustomerProfile {
	return models.CustomerProfile{
		CustomerID:     stringProp(node, "customer_id"),
		AvgDataUsageGB: numericProp(node, "avg_data_usage_gb"),
		PctVideoUsage:  numericProp(node, "pct_video_usage"),
		AvgCallDur:     numericProp(node, "avg_call_duration"),
		SMSFreq:        numericProp(node, "sms_freq"),
		MonthlySpend:   numericProp(node, "monthly_spend"),
		TopupFreq:      numericProp(node, "topup_freq"),
		TravelScore:    numericProp(node, "travel_score"),
		ComplaintCount: numericProp(node, "complaint_count"),
		PredictedLabel: stringProp(node, "predicted_label"),
	}
}

func productFromNode(node neo4j.Node) models.Product {
	p := models.Product{
		ProductID:       stringProp(node, "product_id"),
		ProductName:     stringProp(node, "product_name"),
		Category:        models.Category(stringProp(node, "category")),
		Price:           floatProp(node, "price"),
		DurationDays:    int(floatProp(node, "duration_days")),
		CapacityGB:      floatProp(node, "product_capacity_gb"),
		CapacityMinutes: floatProp(node, "product_capacity_minutes"),
		CapacitySMS:     floatProp(node, "product_capacity_sms"),
	}
	p.DeriveUnitPrices()
	return p
}

func stringProp(node neo4j.Node, key string) string {
	if v, ok := node.Props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// numericProp tolerates string-typed numeric properties the same way
// the JSON path does: comma decimals accepted, garbage coerced to 0.
func numericProp(node neo4j.Node, key string) models.Numeric {
	v, ok := node.Props[key]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return models.Numeric(t)
	case int64:
		return models.Numeric(t)
	case string:
		return models.ParseNumeric(t)
	default:
		return 0
	}
}

func floatProp(node neo4j.Node, key string) float64 {
	return numericProp(node, key).Float()
}
