package churn

import "github.com/telvora/telvora/pkg/models"

// highProbabilityThreshold is the model probability at which a
// customer is high risk regardless of usage signals.
const highProbabilityThreshold = 0.50

// lowUsageFields are the usage dimensions whose below-average count
// feeds the medium-risk rule.
var lowUsageFields = []string{
	models.FieldDataUsage,
	models.FieldCallDuration,
	models.FieldSMSFreq,
}

// Bucketize derives the churn risk bucket from the model output and
// rule-based usage signals. Pure function: identical inputs always
// produce the identical bucket.
//
// Evaluation order matters: the high-risk check short-circuits, and
// the medium rule is only consulted when high does not apply.
func Bucketize(label string, probability float64, profile models.CustomerProfile, averages models.GlobalAverages) models.ChurnResult {
	result := models.ChurnResult{
		Probability: probability,
		RawLabel:    label,
		Bucket:      models.ChurnLow,
	}

	if label == models.LabelRetentionOffer || probability >= highProbabilityThreshold {
		result.Bucket = models.ChurnHigh
		return result
	}

	p := profile.Normalized()
	if p.ComplaintCount.Float() > 0 &&
		belowAverageCount(p, averages) >= 2 &&
		p.TopupFreq.Float() < averages.Get(models.FieldTopupFreq) {
		result.Bucket = models.ChurnMedium
	}

	return result
}

// belowAverageCount counts how many of the tracked usage dimensions
// sit under their population average.
func belowAverageCount(p models.CustomerProfile, averages models.GlobalAverages) int {
	values := map[string]float64{
		models.FieldDataUsage:    p.AvgDataUsageGB.Float(),
		models.FieldCallDuration: p.AvgCallDur.Float(),
		models.FieldSMSFreq:      p.SMSFreq.Float(),
	}

	count := 0
	for _, field := range lowUsageFields {
		if values[field] < averages.Get(field) {
			count++
		}
	}
	return count
}
