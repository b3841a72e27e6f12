package models

import "time"

// RecommendationItem is one ranked offer in a cascade result. Reasons
// record, in order, which phase produced the item and which predicted
// label drove the selection.
type RecommendationItem struct {
	ProductID    string   `json:"product_id"`
	ProductName  string   `json:"product_name"`
	Category     Category `json:"category"`
	Price        float64  `json:"price"`
	DurationDays int      `json:"duration_days"`
	Reasons      []string `json:"reasons"`
}

// RecommendationSet is the ordered, duplicate-free result of the
// cascade, at most TopN items long.
type RecommendationSet struct {
	TopN  int                  `json:"topN"`
	Items []RecommendationItem `json:"items"`
}

// AIInsights carries the optional LLM-generated commentary attached to
// an analytic response when the insight service is configured.
type AIInsights struct {
	ProductRecommendation string `json:"product_recommendation"`
	ChurnAnalysis         string `json:"churn_analysis"`
}

// AnalyticResult is the full per-customer inference output.
type AnalyticResult struct {
	Recommendations RecommendationSet `json:"recommendations"`
	Churn           ChurnResult       `json:"churn"`
	UserCategory    string            `json:"user_category"`
	GeneratedAt     time.Time         `json:"generated_at"`
	AIInsights      *AIInsights       `json:"ai_insights,omitempty"`
}
