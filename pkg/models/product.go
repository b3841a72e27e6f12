package models

import "math"

// Epsilon guards per-unit price derivation against zero denominators.
const Epsilon = 1e-6

// Category is a coarse product grouping, distinct from the predicted
// label the classifier emits.
type Category string

const (
	CategoryData         Category = "Data"
	CategoryVoice        Category = "Voice"
	CategoryVOD          Category = "VOD"
	CategoryCombo        Category = "Combo"
	CategoryRoaming      Category = "Roaming"
	CategoryDeviceBundle Category = "DeviceBundle"
	CategorySMS          Category = "SMS"
)

// Predicted labels emitted by the classifier.
const (
	LabelDataBooster      = "Data Booster"
	LabelVoiceBundle      = "Voice Bundle"
	LabelStreamingPack    = "Streaming Partner Pack"
	LabelFamilyPlan       = "Family Plan Offer"
	LabelRetentionOffer   = "Retention Offer"
	LabelTopupPromo       = "Top-up Promo"
	LabelGeneralOffer     = "General Offer"
	LabelRoamingPass      = "Roaming Pass"
	LabelDeviceUpgrade    = "Device Upgrade Offer"
)

// Product is a catalog entry. Per-unit price fields are derived once
// when the catalog is fetched; a zero-capacity product yields a NaN
// per-unit price, which is treated as incomparable and sorts last.
type Product struct {
	ProductID       string   `json:"product_id"`
	ProductName     string   `json:"product_name"`
	Category        Category `json:"category"`
	Price           float64  `json:"price"`
	DurationDays    int      `json:"duration_days"`
	CapacityGB      float64  `json:"product_capacity_gb"`
	CapacityMinutes float64  `json:"product_capacity_minutes"`
	CapacitySMS     float64  `json:"product_capacity_sms"`

	PricePerGB     float64 `json:"price_per_gb"`
	PricePerMinute float64 `json:"price_per_minute"`
	PricePerSMS    float64 `json:"price_per_sms"`
}

// DeriveUnitPrices computes the per-unit price fields. Products with no
// capacity in a dimension get NaN for that dimension rather than the
// absurd value an epsilon-only division would produce.
func (p *Product) DeriveUnitPrices() {
	p.PricePerGB = unitPrice(p.Price, p.CapacityGB)
	p.PricePerMinute = unitPrice(p.Price, p.CapacityMinutes)
	p.PricePerSMS = unitPrice(p.Price, p.CapacitySMS)
}

func unitPrice(price, capacity float64) float64 {
	if capacity <= 0 {
		return math.NaN()
	}
	return price / (capacity + Epsilon)
}

// LessNaNLast orders two float64s ascending with incomparable (NaN)
// values after every comparable one.
func LessNaNLast(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a < b
	}
}
