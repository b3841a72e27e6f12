package insights

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/telvora/telvora/pkg/models"
)

// Config represents insight service configuration. The service is
// optional; an empty API key disables it.
type Config struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// DefaultConfig returns default insight service configuration.
func DefaultConfig() Config {
	return Config{
		Model:       openai.GPT4,
		MaxTokens:   400,
		Temperature: 0.7,
		MinInterval: 2 * time.Second,
	}
}

// ChatClient is the slice of the OpenAI client the service needs;
// tests substitute a fake.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service generates short natural-language commentary on
// recommendation and churn results via a hosted language model.
// Failures and rate limiting degrade to absent insights; they never
// fail the analytic request.
type Service struct {
	client  ChatClient
	limiter *Limiter
	config  Config
}

// NewService creates the insight service with the real OpenAI client.
func NewService(config Config, clock Clock) *Service {
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultConfig().MaxTokens
	}
	return &Service{
		client:  openai.NewClient(config.APIKey),
		limiter: NewLimiter(config.MinInterval, clock),
		config:  config,
	}
}

// NewServiceWithClient creates the service around a caller-supplied
// chat client.
func NewServiceWithClient(client ChatClient, config Config, clock Clock) *Service {
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultConfig().MaxTokens
	}
	return &Service{
		client:  client,
		limiter: NewLimiter(config.MinInterval, clock),
		config:  config,
	}
}

// AnalyticInsights generates both commentaries for one analytic
// result. The rate limiter admits the request as a whole, one slot
// for the pair of model calls. A single failed call degrades to a
// partial result; the error is non-nil only when the request was
// rate limited or both calls failed.
func (s *Service) AnalyticInsights(ctx context.Context, label string, probability float64, profile models.CustomerProfile, items []models.RecommendationItem) (models.AIInsights, error) {
	if !s.limiter.Allow() {
		return models.AIInsights{}, ErrRateLimited
	}

	product, productErr := s.productInsight(ctx, label, profile, items)
	if productErr != nil {
		log.Printf("insights: product commentary unavailable for %s: %v", profile.CustomerID, productErr)
	}
	churn, churnErr := s.churnInsight(ctx, probability, profile, label)
	if churnErr != nil {
		log.Printf("insights: churn commentary unavailable for %s: %v", profile.CustomerID, churnErr)
	}

	if productErr != nil && churnErr != nil {
		return models.AIInsights{}, productErr
	}
	return models.AIInsights{
		ProductRecommendation: product,
		ChurnAnalysis:         churn,
	}, nil
}

// productInsight explains why the recommended offers fit the
// customer's usage profile.
func (s *Service) productInsight(ctx context.Context, label string, profile models.CustomerProfile, items []models.RecommendationItem) (string, error) {
	var recs strings.Builder
	for i, item := range items {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&recs, "- %s (%s) - Rp %.0f / %d days\n",
			item.ProductName, item.Category, item.Price, item.DurationDays)
	}

	prompt := fmt.Sprintf(`Role: senior telco product marketing analyst.
Context: product recommendations for an individual customer.

Customer data:
- Predicted need: %s
- Monthly spend: Rp %.0f
- Data usage: %.1f GB/month
- Video streaming share: %.1f%%
- Call duration: %.1f minutes

Recommended products:
%s
Task: in at most 3 sentences, explain why these products fit this
customer's usage profile, the main benefit they would get, and how to
pitch them persuasively. Professional but plain language.`,
		label,
		profile.MonthlySpend.Float(),
		profile.AvgDataUsageGB.Float(),
		profile.PctVideoUsage.Float(),
		profile.AvgCallDur.Float(),
		recs.String(),
	)

	return s.generate(ctx, prompt)
}

// churnInsight explains the drivers behind the churn risk estimate and
// suggests a retention angle.
func (s *Service) churnInsight(ctx context.Context, probability float64, profile models.CustomerProfile, label string) (string, error) {
	prompt := fmt.Sprintf(`Role: senior telco customer retention analyst.
Context: churn risk assessment for an individual customer.

Customer data:
- Churn probability: %.1f%%
- Predicted need: %s
- Complaints filed: %.0f
- Monthly spend: Rp %.0f
- Top-up frequency: %.0fx/month
- Travel score: %.2f

Task: in at most 3 sentences, name the main factors behind this risk
level, the behavior worth watching, and the retention move you would
recommend. Professional and actionable.`,
		probability*100,
		label,
		profile.ComplaintCount.Float(),
		profile.MonthlySpend.Float(),
		profile.TopupFreq.Float(),
		profile.TravelScore.Float(),
	)

	return s.generate(ctx, prompt)
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a concise telco analytics assistant.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate insight: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("model returned no text")
	}

	return resp.Choices[0].Message.Content, nil
}
