package simulator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/telvora/telvora/internal/classifier"
	"github.com/telvora/telvora/internal/engine"
	"github.com/telvora/telvora/pkg/models"
)

// Conversion-rate thresholds for the launch-tier message.
const (
	highPotentialRate     = 20.0
	moderatePotentialRate = 10.0
)

// Config represents simulator configuration.
type Config struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns default simulator configuration.
func DefaultConfig() Config {
	return Config{
		Workers: 8,
		Timeout: 30 * time.Second,
	}
}

// Simulator estimates the adoption of a hypothetical new product
// across the full customer base. Each customer's scoring is
// independent, so the batch is split across workers with per-worker
// accumulators merged at the end.
type Simulator struct {
	classifier classifier.Classifier
	config     Config
}

// New creates a simulator. The classifier is consulted only for
// customers whose profiles carry no precomputed label.
func New(clf classifier.Classifier, config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}
	return &Simulator{classifier: clf, config: config}
}

// partial is one worker's accumulator; merged after all workers stop.
type partial struct {
	hits     int
	revenue  float64
	segments map[string]int
}

// Run scores every customer against the candidate product and
// aggregates hits, projected revenue, conversion rate, and the
// per-label segment breakdown. The context bounds the whole pass; on
// cancellation the partial work is discarded and the context error is
// returned.
func (s *Simulator) Run(ctx context.Context, product models.Product, customers []models.CustomerProfile) (models.SimulationResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	workers := s.config.Workers
	if workers > len(customers) {
		workers = len(customers)
	}
	if workers < 1 {
		workers = 1
	}

	partials := make([]partial, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			acc := partial{segments: make(map[string]int)}
			for i := w; i < len(customers); i += workers {
				select {
				case <-ctx.Done():
					return
				default:
				}
				s.score(ctx, product, customers[i], &acc)
			}
			partials[w] = acc
		}(w)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return models.SimulationResult{}, fmt.Errorf("simulation aborted: %w", err)
	}

	result := models.SimulationResult{
		ProductName:    product.ProductName,
		Category:       product.Category,
		TotalCustomers: len(customers),
		Segments:       make(map[string]int),
		GeneratedAt:    time.Now().UTC(),
	}
	for _, p := range partials {
		result.Hits += p.hits
		result.Revenue += p.revenue
		for label, n := range p.segments {
			result.Segments[label] += n
		}
	}
	if result.TotalCustomers > 0 {
		result.ConversionRate = float64(result.Hits) / float64(result.TotalCustomers) * 100
	}
	result.Recommendation = tierMessage(result)

	return result, nil
}

// score counts one customer toward the accumulator when the predicted
// category matches the candidate product and the price fits the
// customer's budget. One unit of revenue per hit.
func (s *Simulator) score(ctx context.Context, product models.Product, customer models.CustomerProfile, acc *partial) {
	profile := customer.Normalized()

	label := profile.PredictedLabel
	if label == "" {
		if s.classifier == nil {
			return
		}
		pred, err := s.classifier.Classify(ctx, profile)
		if err != nil {
			// The customer still counts toward the base total;
			// it just can't be a hit.
			log.Printf("simulator: failed to classify customer %s: %v", profile.CustomerID, err)
			return
		}
		label = pred.Label
	}

	cat, ok := engine.TargetCategory(label)
	if !ok || cat != product.Category {
		return
	}
	if product.Price > profile.Budget() {
		return
	}

	acc.hits++
	acc.revenue += product.Price
	acc.segments[label]++
}

// tierMessage renders the launch recommendation from the fixed
// conversion-rate thresholds.
func tierMessage(r models.SimulationResult) string {
	switch {
	case r.ConversionRate > highPotentialRate:
		return fmt.Sprintf("High potential: %d projected adopters and Rp %.0f in revenue. Prioritize this launch.", r.Hits, r.Revenue)
	case r.ConversionRate > moderatePotentialRate:
		return fmt.Sprintf("Moderate potential: %d projected adopters and Rp %.0f in revenue. Consider a targeted campaign.", r.Hits, r.Revenue)
	default:
		return fmt.Sprintf("Low potential: only %d projected adopters and Rp %.0f in revenue. Revisit pricing or targeting before launch.", r.Hits, r.Revenue)
	}
}
