package models

// ChurnBucket is the coarse 3-level churn risk classification.
type ChurnBucket string

const (
	ChurnLow    ChurnBucket = "low"
	ChurnMedium ChurnBucket = "medium"
	ChurnHigh   ChurnBucket = "high"
)

// ChurnResult pairs the derived bucket with the raw model outputs that
// produced it.
type ChurnResult struct {
	Probability float64     `json:"probability"`
	Bucket      ChurnBucket `json:"label"`
	RawLabel    string      `json:"raw_label"`
}
