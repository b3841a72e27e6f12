package events

import "time"

// Kafka topics published by the inference service.
const (
	TopicAnalyticCompleted   = "telvora.analytic.completed"
	TopicSimulationCompleted = "telvora.simulation.completed"
)

// Event types carried in envelopes.
const (
	TypeAnalyticCompleted   = "analytic.completed"
	TypeSimulationCompleted = "simulation.completed"
)

// AnalyticEvent summarizes one completed per-customer inference.
type AnalyticEvent struct {
	EventID        string    `json:"event_id"`
	CustomerID     string    `json:"customer_id"`
	PredictedLabel string    `json:"predicted_label"`
	ChurnBucket    string    `json:"churn_bucket"`
	ItemCount      int       `json:"item_count"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// SimulationEvent summarizes one completed product impact simulation.
type SimulationEvent struct {
	EventID        string    `json:"event_id"`
	ProductName    string    `json:"product_name"`
	Category       string    `json:"category"`
	Hits           int       `json:"hits"`
	ConversionRate float64   `json:"conversion_rate"`
	Revenue        float64   `json:"revenue"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Envelope is the wire form fanned out to local subscribers (the
// WebSocket feed) and written to Kafka.
type Envelope struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}
