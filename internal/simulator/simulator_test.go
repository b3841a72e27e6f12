package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/telvora/telvora/internal/classifier"
	"github.com/telvora/telvora/pkg/models"
)

type stubClassifier struct {
	label string
	err   error
	calls int
}

func (s *stubClassifier) Classify(ctx context.Context, profile models.CustomerProfile) (classifier.Prediction, error) {
	s.calls++
	if s.err != nil {
		return classifier.Prediction{}, s.err
	}
	return classifier.Prediction{Label: s.label, Probabilities: map[string]float64{}}, nil
}

func labeled(id string, spend float64, label string) models.CustomerProfile {
	return models.CustomerProfile{
		CustomerID:     id,
		MonthlySpend:   models.Numeric(spend),
		PredictedLabel: label,
	}
}

func TestRunCountsHitsAndRevenue(t *testing.T) {
	customers := []models.CustomerProfile{
		labeled("CUST-1", 50000, models.LabelDataBooster),  // too poor
		labeled("CUST-2", 200000, models.LabelDataBooster), // hit
		labeled("CUST-3", 150000, models.LabelDataBooster), // hit
	}
	product := models.Product{
		ProductName: "Data Turbo",
		Category:    models.CategoryData,
		Price:       100000,
	}

	sim := New(nil, Config{Workers: 2})
	result, err := sim.Run(context.Background(), product, customers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Hits != 2 {
		t.Errorf("hits = %d, want 2", result.Hits)
	}
	if result.TotalCustomers != 3 {
		t.Errorf("total = %d, want 3", result.TotalCustomers)
	}
	if result.Revenue != 200000 {
		t.Errorf("revenue = %v, want 200000", result.Revenue)
	}
	if math.Abs(result.ConversionRate-66.6667) > 0.01 {
		t.Errorf("conversion rate = %v, want ~66.67", result.ConversionRate)
	}
	if result.Segments[models.LabelDataBooster] != 2 {
		t.Errorf("segments = %v, want 2 data boosters", result.Segments)
	}
}

func TestRunCategoryMismatchNeverHits(t *testing.T) {
	customers := []models.CustomerProfile{
		labeled("CUST-1", 500000, models.LabelVoiceBundle),
		labeled("CUST-2", 500000, models.LabelRoamingPass),
	}
	product := models.Product{ProductName: "Data Turbo", Category: models.CategoryData, Price: 10000}

	sim := New(nil, Config{Workers: 4})
	result, err := sim.Run(context.Background(), product, customers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Hits != 0 {
		t.Errorf("hits = %d, want 0 for mismatched categories", result.Hits)
	}
	if result.ConversionRate != 0 {
		t.Errorf("conversion rate = %v, want 0", result.ConversionRate)
	}
}

func TestRunClassifiesUnlabeledCustomers(t *testing.T) {
	clf := &stubClassifier{label: models.LabelDataBooster}
	customers := []models.CustomerProfile{
		labeled("CUST-1", 200000, ""),
		labeled("CUST-2", 200000, models.LabelDataBooster),
	}
	product := models.Product{ProductName: "Data Turbo", Category: models.CategoryData, Price: 100000}

	sim := New(clf, Config{Workers: 1})
	result, err := sim.Run(context.Background(), product, customers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if clf.calls != 1 {
		t.Errorf("classifier calls = %d, want 1 (only the unlabeled customer)", clf.calls)
	}
	if result.Hits != 2 {
		t.Errorf("hits = %d, want 2", result.Hits)
	}
}

func TestRunClassifierFailureSkipsCustomer(t *testing.T) {
	clf := &stubClassifier{err: errors.New("model server down")}
	customers := []models.CustomerProfile{
		labeled("CUST-1", 200000, ""),
		labeled("CUST-2", 200000, models.LabelDataBooster),
	}
	product := models.Product{ProductName: "Data Turbo", Category: models.CategoryData, Price: 100000}

	sim := New(clf, Config{Workers: 1})
	result, err := sim.Run(context.Background(), product, customers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Hits != 1 {
		t.Errorf("hits = %d, want 1 when classification fails for one customer", result.Hits)
	}
	if result.TotalCustomers != 2 {
		t.Errorf("total = %d, want the failed customer to still count toward the base", result.TotalCustomers)
	}
}

func TestRunCancelledContext(t *testing.T) {
	customers := make([]models.CustomerProfile, 100)
	for i := range customers {
		customers[i] = labeled(fmt.Sprintf("CUST-%d", i), 200000, models.LabelDataBooster)
	}
	product := models.Product{ProductName: "Data Turbo", Category: models.CategoryData, Price: 100000}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(nil, Config{Workers: 4, Timeout: time.Minute})
	_, err := sim.Run(ctx, product, customers)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTierMessage(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{"high", 25, "High potential"},
		{"boundary stays moderate", 20, "Moderate potential"},
		{"moderate", 15, "Moderate potential"},
		{"boundary stays low", 10, "Low potential"},
		{"low", 3, "Low potential"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tierMessage(models.SimulationResult{ConversionRate: tt.rate, Hits: 7, Revenue: 700000})
			if !strings.HasPrefix(msg, tt.want) {
				t.Errorf("message %q, want prefix %q", msg, tt.want)
			}
		})
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	customers := make([]models.CustomerProfile, 50)
	for i := range customers {
		label := models.LabelDataBooster
		if i%3 == 0 {
			label = models.LabelVoiceBundle
		}
		customers[i] = labeled(fmt.Sprintf("CUST-%d", i), float64(50000+i*10000), label)
	}
	product := models.Product{ProductName: "Data Turbo", Category: models.CategoryData, Price: 150000}

	var baseline models.SimulationResult
	for i, workers := range []int{1, 3, 8, 64} {
		sim := New(nil, Config{Workers: workers})
		result, err := sim.Run(context.Background(), product, customers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if i == 0 {
			baseline = result
			continue
		}
		if result.Hits != baseline.Hits || result.Revenue != baseline.Revenue {
			t.Errorf("workers=%d: hits=%d revenue=%v, want hits=%d revenue=%v",
				workers, result.Hits, result.Revenue, baseline.Hits, baseline.Revenue)
		}
	}
}
