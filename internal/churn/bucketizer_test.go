package churn

import (
	"testing"

	"github.com/telvora/telvora/pkg/models"
)

var testAverages = models.GlobalAverages{
	models.FieldDataUsage:    10,
	models.FieldCallDuration: 100,
	models.FieldSMSFreq:      40,
	models.FieldTopupFreq:    3,
}

func TestBucketizeHighRisk(t *testing.T) {
	tests := []struct {
		name        string
		label       string
		probability float64
	}{
		{"retention label with low probability", models.LabelRetentionOffer, 0.1},
		{"probability at threshold", models.LabelDataBooster, 0.50},
		{"probability above threshold", models.LabelDataBooster, 0.93},
	}

	// A healthy profile proves the high rule ignores usage signals.
	healthy := models.CustomerProfile{
		AvgDataUsageGB: 20,
		AvgCallDur:     200,
		SMSFreq:        80,
		TopupFreq:      5,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Bucketize(tt.label, tt.probability, healthy, testAverages)

			if result.Bucket != models.ChurnHigh {
				t.Errorf("bucket = %s, want high", result.Bucket)
			}
			if result.Probability != tt.probability {
				t.Errorf("probability = %v, want %v", result.Probability, tt.probability)
			}
			if result.RawLabel != tt.label {
				t.Errorf("raw label = %q, want %q", result.RawLabel, tt.label)
			}
		})
	}
}

func TestBucketizeMediumRisk(t *testing.T) {
	// Complaints plus two quiet usage dimensions plus low top-up.
	profile := models.CustomerProfile{
		ComplaintCount: 2,
		AvgDataUsageGB: 5,  // below average
		AvgCallDur:     50, // below average
		SMSFreq:        80, // above average
		TopupFreq:      1,  // below average
	}

	result := Bucketize(models.LabelDataBooster, 0.2, profile, testAverages)

	if result.Bucket != models.ChurnMedium {
		t.Errorf("bucket = %s, want medium", result.Bucket)
	}
}

func TestBucketizeMediumRequiresAllSignals(t *testing.T) {
	base := models.CustomerProfile{
		ComplaintCount: 2,
		AvgDataUsageGB: 5,
		AvgCallDur:     50,
		SMSFreq:        80,
		TopupFreq:      1,
	}

	tests := []struct {
		name   string
		mutate func(*models.CustomerProfile)
	}{
		{"no complaints", func(p *models.CustomerProfile) { p.ComplaintCount = 0 }},
		{"only one dimension below average", func(p *models.CustomerProfile) { p.AvgCallDur = 150 }},
		{"topup at average", func(p *models.CustomerProfile) { p.TopupFreq = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := base
			tt.mutate(&profile)

			result := Bucketize(models.LabelDataBooster, 0.2, profile, testAverages)

			if result.Bucket != models.ChurnLow {
				t.Errorf("bucket = %s, want low when a medium signal is missing", result.Bucket)
			}
		})
	}
}

func TestBucketizeHighShortCircuitsMediumSignals(t *testing.T) {
	// Every medium signal present, but the probability rule wins.
	profile := models.CustomerProfile{
		ComplaintCount: 3,
		AvgDataUsageGB: 1,
		AvgCallDur:     10,
		SMSFreq:        5,
		TopupFreq:      0,
	}

	result := Bucketize(models.LabelDataBooster, 0.75, profile, testAverages)

	if result.Bucket != models.ChurnHigh {
		t.Errorf("bucket = %s, want high to short-circuit", result.Bucket)
	}
}

func TestBucketizeNormalizesSignFlips(t *testing.T) {
	// Sign-flipped usage normalizes positive, lifting the profile above
	// the averages and out of the medium bucket.
	profile := models.CustomerProfile{
		ComplaintCount: 1,
		AvgDataUsageGB: -20,
		AvgCallDur:     -200,
		SMSFreq:        80,
		TopupFreq:      1,
	}

	result := Bucketize(models.LabelDataBooster, 0.1, profile, testAverages)

	if result.Bucket != models.ChurnLow {
		t.Errorf("bucket = %s, want low after normalization", result.Bucket)
	}
}

func TestBucketizeDeterministic(t *testing.T) {
	profile := models.CustomerProfile{
		ComplaintCount: 1,
		AvgDataUsageGB: 5,
		AvgCallDur:     50,
		SMSFreq:        10,
		TopupFreq:      1,
	}

	first := Bucketize(models.LabelVoiceBundle, 0.3, profile, testAverages)
	for i := 0; i < 10; i++ {
		if got := Bucketize(models.LabelVoiceBundle, 0.3, profile, testAverages); got != first {
			t.Fatalf("run %d: %+v differs from %+v", i, got, first)
		}
	}
}
