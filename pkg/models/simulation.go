package models

import "time"

// SimulationResult aggregates the projected impact of a hypothetical
// new product across the full customer base.
type SimulationResult struct {
	ProductName    string         `json:"product_name"`
	Category       Category       `json:"category"`
	Hits           int            `json:"hits"`
	TotalCustomers int            `json:"total_customers"`
	Revenue        float64        `json:"revenue"`
	ConversionRate float64        `json:"conversion_rate"`
	Segments       map[string]int `json:"segments"`
	Recommendation string         `json:"recommendation"`
	GeneratedAt    time.Time      `json:"generated_at"`
}
