package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Usage field names shared between customer profiles and the global
// averages artifact. They match the column names of the training data.
const (
	FieldDataUsage      = "avg_data_usage_gb"
	FieldVideoUsage     = "pct_video_usage"
	FieldCallDuration   = "avg_call_duration"
	FieldSMSFreq        = "sms_freq"
	FieldMonthlySpend   = "monthly_spend"
	FieldTopupFreq      = "topup_freq"
	FieldTravelScore    = "travel_score"
	FieldComplaintCount = "complaint_count"
)

// Numeric is a float64 that tolerates the data-quality issues of the
// customer export: values may arrive as JSON strings, may use a comma
// as the decimal separator, and may fail to parse entirely (coerced
// to zero rather than rejected).
type Numeric float64

// UnmarshalJSON accepts numbers, numeric strings with either decimal
// separator, and null. Anything unparseable decodes as zero.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Numeric(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*n = 0
		return nil
	}

	*n = ParseNumeric(s)
	return nil
}

// ParseNumeric coerces a raw string value to a Numeric, replacing a
// comma decimal separator and defaulting to zero on parse failure.
func ParseNumeric(s string) Numeric {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Numeric(f)
}

// Float returns the plain float64 value.
func (n Numeric) Float() float64 { return float64(n) }

// CustomerProfile is a single customer's usage record. Raw records can
// carry sign errors and string-typed numbers; call Normalized before
// feeding a profile into the recommendation cascade or the churn
// bucketizer.
type CustomerProfile struct {
	CustomerID     string  `json:"customer_id"`
	AvgDataUsageGB Numeric `json:"avg_data_usage_gb"`
	PctVideoUsage  Numeric `json:"pct_video_usage"`
	AvgCallDur     Numeric `json:"avg_call_duration"`
	SMSFreq        Numeric `json:"sms_freq"`
	MonthlySpend   Numeric `json:"monthly_spend"`
	TopupFreq      Numeric `json:"topup_freq"`
	TravelScore    Numeric `json:"travel_score"`
	ComplaintCount Numeric `json:"complaint_count"`

	// PredictedLabel is set when a classification has already been
	// stored with the profile; empty otherwise.
	PredictedLabel string `json:"predicted_label,omitempty"`
}

// Normalized returns a derived copy with every usage field coerced to a
// non-negative value. The receiver is never mutated.
func (p CustomerProfile) Normalized() CustomerProfile {
	out := p
	out.AvgDataUsageGB = absNumeric(p.AvgDataUsageGB)
	out.PctVideoUsage = absNumeric(p.PctVideoUsage)
	out.AvgCallDur = absNumeric(p.AvgCallDur)
	out.SMSFreq = absNumeric(p.SMSFreq)
	out.MonthlySpend = absNumeric(p.MonthlySpend)
	out.TopupFreq = absNumeric(p.TopupFreq)
	out.TravelScore = absNumeric(p.TravelScore)
	out.ComplaintCount = absNumeric(p.ComplaintCount)
	return out
}

func absNumeric(n Numeric) Numeric {
	return Numeric(math.Abs(float64(n)))
}

// Budget is the customer's monthly spend, used as the affordability
// ceiling throughout the cascade.
func (p CustomerProfile) Budget() float64 {
	return p.MonthlySpend.Float()
}

// Features returns the numeric feature vector handed to the external
// classifier, keyed by training column name.
func (p CustomerProfile) Features() map[string]float64 {
	return map[string]float64{
		FieldDataUsage:      p.AvgDataUsageGB.Float(),
		FieldVideoUsage:     p.PctVideoUsage.Float(),
		FieldCallDuration:   p.AvgCallDur.Float(),
		FieldSMSFreq:        p.SMSFreq.Float(),
		FieldMonthlySpend:   p.MonthlySpend.Float(),
		FieldTopupFreq:      p.TopupFreq.Float(),
		FieldTravelScore:    p.TravelScore.Float(),
		FieldComplaintCount: p.ComplaintCount.Float(),
	}
}

// GlobalAverages maps a usage field name to its population average.
// Loaded once at startup and treated as read-only afterward.
type GlobalAverages map[string]float64

// Get returns the average for a field, or zero when the field is
// missing from the artifact.
func (g GlobalAverages) Get(field string) float64 {
	return g[field]
}
