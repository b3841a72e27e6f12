package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/telvora/telvora/internal/churn"
	"github.com/telvora/telvora/internal/classifier"
	"github.com/telvora/telvora/internal/events"
	"github.com/telvora/telvora/internal/store"
	"github.com/telvora/telvora/pkg/models"
)

// ImpactSimulator estimates adoption of a candidate product across a
// customer batch.
type ImpactSimulator interface {
	Run(ctx context.Context, product models.Product, customers []models.CustomerProfile) (models.SimulationResult, error)
}

// InsightGenerator produces optional LLM commentary for an analytic
// result. One call covers both the product and the churn commentary
// so the generator's rate limiting admits whole requests.
type InsightGenerator interface {
	AnalyticInsights(ctx context.Context, label string, probability float64, profile models.CustomerProfile, items []models.RecommendationItem) (models.AIInsights, error)
}

// Config represents engine service configuration.
type Config struct {
	TopN               int `yaml:"top_n"`
	SimulationPageSize int `yaml:"simulation_page_size"`
}

// DefaultConfig returns default engine service configuration.
func DefaultConfig() Config {
	return Config{
		TopN:               DefaultTopN,
		SimulationPageSize: 500,
	}
}

// Service orchestrates one inference: fetch, classify, bucketize,
// cascade, optional insights, event publication. All state it touches
// is per-request or read-only.
type Service struct {
	customers  store.CustomerStore
	products   store.ProductStore
	classifier classifier.Classifier
	simulator  ImpactSimulator
	insights   InsightGenerator
	bus        events.EventBus
	averages   models.GlobalAverages
	config     Config
}

// NewService wires the engine service. insights and bus may be nil
// (disabled); everything else is required.
func NewService(customers store.CustomerStore, products store.ProductStore, clf classifier.Classifier, sim ImpactSimulator, gen InsightGenerator, bus events.EventBus, averages models.GlobalAverages, config Config) *Service {
	if config.TopN <= 0 {
		config.TopN = DefaultConfig().TopN
	}
	if config.SimulationPageSize <= 0 {
		config.SimulationPageSize = DefaultConfig().SimulationPageSize
	}
	return &Service{
		customers:  customers,
		products:   products,
		classifier: clf,
		simulator:  sim,
		insights:   gen,
		bus:        bus,
		averages:   averages,
		config:     config,
	}
}

// Analyze runs the full analytic pipeline for one customer.
func (s *Service) Analyze(ctx context.Context, customerID string, topN int) (models.AnalyticResult, error) {
	if topN <= 0 {
		topN = s.config.TopN
	}

	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return models.AnalyticResult{}, err
	}
	profile := customer.Normalized()

	pred, err := s.classifier.Classify(ctx, profile)
	if err != nil {
		return models.AnalyticResult{}, fmt.Errorf("failed to classify customer %s: %w", customerID, err)
	}

	catalog, err := s.products.ListProducts(ctx)
	if err != nil {
		return models.AnalyticResult{}, fmt.Errorf("failed to fetch product catalog: %w", err)
	}

	churnResult := churn.Bucketize(pred.Label, pred.ChurnProbability(), profile, s.averages)
	items := Recommend(pred.Label, profile, catalog, s.averages, topN)

	userCategory := "Unknown"
	if cat, ok := TargetCategory(pred.Label); ok {
		userCategory = string(cat)
	}

	result := models.AnalyticResult{
		Recommendations: models.RecommendationSet{TopN: topN, Items: items},
		Churn:           churnResult,
		UserCategory:    userCategory,
		GeneratedAt:     time.Now().UTC(),
	}
	result.AIInsights = s.generateInsights(ctx, pred, profile, items)

	s.publishAnalytic(ctx, customerID, pred.Label, churnResult, len(items))

	return result, nil
}

// generateInsights asks the LLM service for commentary. Any failure,
// including rate limiting, degrades to absent insights.
func (s *Service) generateInsights(ctx context.Context, pred classifier.Prediction, profile models.CustomerProfile, items []models.RecommendationItem) *models.AIInsights {
	if s.insights == nil {
		return nil
	}

	insights, err := s.insights.AnalyticInsights(ctx, pred.Label, pred.ChurnProbability(), profile, items)
	if err != nil {
		log.Printf("engine: insights unavailable for %s: %v", profile.CustomerID, err)
		return nil
	}
	return &insights
}

func (s *Service) publishAnalytic(ctx context.Context, customerID, label string, churnResult models.ChurnResult, itemCount int) {
	if s.bus == nil {
		return
	}
	err := s.bus.PublishAnalytic(ctx, events.AnalyticEvent{
		EventID:        uuid.New().String(),
		CustomerID:     customerID,
		PredictedLabel: label,
		ChurnBucket:    string(churnResult.Bucket),
		ItemCount:      itemCount,
		GeneratedAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Printf("engine: failed to publish analytic event for %s: %v", customerID, err)
	}
}

// SimulateProduct pages through the whole customer base and estimates
// the candidate product's adoption.
func (s *Service) SimulateProduct(ctx context.Context, product models.Product) (models.SimulationResult, error) {
	product.DeriveUnitPrices()

	var batch []models.CustomerProfile
	for offset := 0; ; offset += s.config.SimulationPageSize {
		page, err := s.customers.ListCustomers(ctx, s.config.SimulationPageSize, offset)
		if err != nil {
			return models.SimulationResult{}, fmt.Errorf("failed to page customer base: %w", err)
		}
		batch = append(batch, page...)
		if len(page) < s.config.SimulationPageSize {
			break
		}
	}

	result, err := s.simulator.Run(ctx, product, batch)
	if err != nil {
		return models.SimulationResult{}, err
	}

	if s.bus != nil {
		err := s.bus.PublishSimulation(ctx, events.SimulationEvent{
			EventID:        uuid.New().String(),
			ProductName:    result.ProductName,
			Category:       string(result.Category),
			Hits:           result.Hits,
			ConversionRate: result.ConversionRate,
			Revenue:        result.Revenue,
			GeneratedAt:    result.GeneratedAt,
		})
		if err != nil {
			log.Printf("engine: failed to publish simulation event for %s: %v", result.ProductName, err)
		}
	}

	return result, nil
}
