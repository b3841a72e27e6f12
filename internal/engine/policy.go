package engine

import (
	"math"

	"github.com/telvora/telvora/pkg/models"
)

// SortField selects the product attribute a category's display policy
// orders by.
type SortField string

const (
	SortFieldPrice           SortField = "price"
	SortFieldCapacityGB      SortField = "product_capacity_gb"
	SortFieldCapacityMinutes SortField = "product_capacity_minutes"
	SortFieldPricePerSMS     SortField = "price_per_sms"
)

// SortPolicy describes how a category's headline offers are ordered
// and the reason text attached to them.
type SortPolicy struct {
	Field     SortField
	Ascending bool
	Reason    string
}

// targetCategories maps each predicted label to its product category.
// Loaded as a literal and never mutated.
var targetCategories = map[string]models.Category{
	models.LabelDataBooster:    models.CategoryData,
	models.LabelVoiceBundle:    models.CategoryVoice,
	models.LabelStreamingPack:  models.CategoryVOD,
	models.LabelFamilyPlan:     models.CategoryCombo,
	models.LabelRetentionOffer: models.CategoryCombo,
	models.LabelTopupPromo:     models.CategoryData,
	models.LabelGeneralOffer:   models.CategoryCombo,
	models.LabelRoamingPass:    models.CategoryRoaming,
	models.LabelDeviceUpgrade:  models.CategoryDeviceBundle,
}

// sortPolicies maps each category to its display ordering and reason
// text.
var sortPolicies = map[models.Category]SortPolicy{
	models.CategoryData:         {SortFieldCapacityGB, false, "Top pick (largest data quota):"},
	models.CategoryVoice:        {SortFieldCapacityMinutes, false, "Top pick (most voice minutes):"},
	models.CategoryVOD:          {SortFieldPrice, true, "Top pick (cheapest streaming):"},
	models.CategoryCombo:        {SortFieldPrice, true, "Top pick (best combo value):"},
	models.CategoryRoaming:      {SortFieldPrice, true, "Top pick (cheapest roaming):"},
	models.CategoryDeviceBundle: {SortFieldPrice, false, "Top pick (premium device bundle):"},
	models.CategorySMS:          {SortFieldPricePerSMS, true, "Extra pick (best SMS value):"},
}

// defaultSortPolicy covers categories missing from the table. The
// current table has no gap; the fallback exists for new labels.
var defaultSortPolicy = SortPolicy{SortFieldPrice, true, "Generic recommendation:"}

// TargetCategory maps a predicted label to its product category. The
// second return is false for unmapped labels, which silently yields an
// empty primary phase rather than an error.
func TargetCategory(label string) (models.Category, bool) {
	cat, ok := targetCategories[label]
	return cat, ok
}

// SortPolicyFor returns the display policy for a category, falling
// back to the generic ascending-price policy for unknown categories.
func SortPolicyFor(cat models.Category) SortPolicy {
	if p, ok := sortPolicies[cat]; ok {
		return p
	}
	return defaultSortPolicy
}

// fieldValue extracts the sort-field value from a product. Derived
// per-unit fields may be NaN (incomparable).
func fieldValue(p models.Product, f SortField) float64 {
	switch f {
	case SortFieldCapacityGB:
		return p.CapacityGB
	case SortFieldCapacityMinutes:
		return p.CapacityMinutes
	case SortFieldPricePerSMS:
		return p.PricePerSMS
	default:
		return p.Price
	}
}

// lessByPolicy orders two products per a sort policy, with
// incomparable values after every comparable one regardless of
// direction.
func lessByPolicy(a, b models.Product, policy SortPolicy) bool {
	va, vb := fieldValue(a, policy.Field), fieldValue(b, policy.Field)
	if math.IsNaN(va) || math.IsNaN(vb) {
		return models.LessNaNLast(va, vb)
	}
	if policy.Ascending {
		return va < vb
	}
	return va > vb
}
