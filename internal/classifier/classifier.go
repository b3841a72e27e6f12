package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/telvora/telvora/pkg/models"
)

// Prediction is the classifier's output for one customer: the winning
// need label and the probability distribution over all labels.
type Prediction struct {
	Label         string             `json:"label"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// ChurnProbability returns the probability mass the model assigned to
// the retention-offer class, or zero when that class is absent.
func (p Prediction) ChurnProbability() float64 {
	return p.Probabilities[models.LabelRetentionOffer]
}

// Classifier predicts a customer's need category. The model itself is
// an external collaborator; this package only consumes its output.
type Classifier interface {
	Classify(ctx context.Context, profile models.CustomerProfile) (Prediction, error)
}

// Config represents classifier client configuration.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns default classifier client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8600",
		Timeout: 10 * time.Second,
	}
}

// HTTPClassifier calls a remote model server over HTTP.
type HTTPClassifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClassifier creates a classifier client for the model server.
func NewHTTPClassifier(cfg Config) *HTTPClassifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultConfig().Timeout
	}
	return &HTTPClassifier{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

// Classify sends the normalized feature vector to the model server and
// returns its prediction.
func (c *HTTPClassifier) Classify(ctx context.Context, profile models.CustomerProfile) (Prediction, error) {
	body, err := json.Marshal(predictRequest{Features: profile.Normalized().Features()})
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to marshal features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return Prediction{}, fmt.Errorf("failed to decode prediction: %w", err)
	}
	if pred.Label == "" {
		return Prediction{}, fmt.Errorf("classifier returned an empty label")
	}
	if pred.Probabilities == nil {
		pred.Probabilities = map[string]float64{}
	}
	return pred, nil
}
