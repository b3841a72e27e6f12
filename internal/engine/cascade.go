package engine

import (
	"fmt"
	"sort"

	"github.com/telvora/telvora/pkg/models"
)

// Budget and ranking policy for the cascade (wallet-share variant).
const (
	// DefaultTopN is the recommendation count when the caller does
	// not request one.
	DefaultTopN = 5

	// primaryTake caps headline offers from the predicted category.
	primaryTake = 3

	// retentionBudgetRatio caps retention offers below the full
	// budget so the save offer reads as a discount.
	retentionBudgetRatio = 0.8

	// crossSellBudgetRatio caps secondary and fallback picks; add-ons
	// must not compete with the headline spend.
	crossSellBudgetRatio = 0.5

	// shortDurationDays is the trial-length cutoff. Short packs rank
	// before longer ones in cross-sell regardless of price.
	shortDurationDays = 7
)

// Recommend runs the Primary -> Secondary -> Fallback cascade and
// returns an ordered, duplicate-free list of at most topN offers.
// Catalog and profile are read-only; the profile is normalized before
// use.
func Recommend(label string, profile models.CustomerProfile, catalog []models.Product, averages models.GlobalAverages, topN int) []models.RecommendationItem {
	if topN <= 0 {
		topN = DefaultTopN
	}

	p := profile.Normalized()
	budget := p.Budget()

	recs := make([]models.RecommendationItem, 0, topN)
	seen := make(map[string]bool)

	primaryCat, items := primaryPicks(label, budget, catalog)
	for _, item := range items {
		if len(recs) >= topN || seen[item.ProductName] {
			continue
		}
		recs = append(recs, item)
		seen[item.ProductName] = true
	}

	if remaining := topN - len(recs); remaining > 0 {
		for _, item := range crossSellPicks(label, p, averages, catalog, primaryCat, seen, remaining) {
			recs = append(recs, item)
			seen[item.ProductName] = true
		}
	}

	if remaining := topN - len(recs); remaining > 0 {
		for _, item := range fallbackPicks(label, budget, catalog, seen, remaining) {
			recs = append(recs, item)
			seen[item.ProductName] = true
		}
	}

	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs
}

// primaryPicks selects up to three headline offers in the predicted
// category. Returns the mapped category (empty when the label is
// unmapped) so later phases can exclude it.
func primaryPicks(label string, budget float64, catalog []models.Product) (models.Category, []models.RecommendationItem) {
	cat, ok := TargetCategory(label)
	if !ok {
		return "", nil
	}

	pool := filterProducts(catalog, func(p models.Product) bool {
		return p.Category == cat
	})
	if len(pool) == 0 {
		return cat, nil
	}

	policy := SortPolicyFor(cat)

	var candidates []models.Product
	switch {
	case label == models.LabelRetentionOffer:
		// Save offers stay well under budget; cheapest first.
		candidates = withinBudget(pool, budget*retentionBudgetRatio)
		sortByPrice(candidates, true, policy)
		if len(candidates) == 0 {
			candidates = append([]models.Product(nil), pool...)
			sortByPrice(candidates, true, policy)
		}
	case cat == models.CategoryDeviceBundle:
		// Most expensive affordable device maximizes the upsell.
		candidates = withinBudget(pool, budget)
		sortByPrice(candidates, false, policy)
		if len(candidates) == 0 {
			candidates = append([]models.Product(nil), pool...)
			sortByPrice(candidates, true, policy)
		}
	default:
		// Maximize wallet share inside the budget; if nothing is
		// affordable, offer the cheapest in category instead.
		candidates = withinBudget(pool, budget)
		sortByPrice(candidates, false, policy)
		if len(candidates) == 0 {
			candidates = append([]models.Product(nil), pool...)
			sortByPrice(candidates, true, policy)
		}
	}

	items := make([]models.RecommendationItem, 0, primaryTake)
	for _, p := range candidates {
		if len(items) >= primaryTake {
			break
		}
		items = append(items, newItem(p,
			policy.Reason,
			fmt.Sprintf("Predicted need: %s", label),
		))
	}
	return cat, items
}

// crossSellCandidate pairs a category with the customer's
// usage-vs-average ratio for the dimension that maps to it.
type crossSellCandidate struct {
	category models.Category
	ratio    float64
}

// crossSellPicks scores the customer's usage dimensions against the
// population averages and takes at most one affordable offer per
// over-indexed category, strongest over-index first.
func crossSellPicks(label string, profile models.CustomerProfile, averages models.GlobalAverages, catalog []models.Product, primaryCat models.Category, seen map[string]bool, slots int) []models.RecommendationItem {
	budget := profile.Budget()

	dims := []struct {
		category models.Category
		value    float64
		field    string
	}{
		{models.CategoryData, profile.AvgDataUsageGB.Float(), models.FieldDataUsage},
		{models.CategoryVoice, profile.AvgCallDur.Float(), models.FieldCallDuration},
		{models.CategoryVOD, profile.PctVideoUsage.Float(), models.FieldVideoUsage},
		{models.CategorySMS, profile.SMSFreq.Float(), models.FieldSMSFreq},
	}

	candidates := make([]crossSellCandidate, 0, len(dims))
	for _, d := range dims {
		ratio := d.value / (averages.Get(d.field) + models.Epsilon)
		if ratio > 1.0 {
			candidates = append(candidates, crossSellCandidate{d.category, ratio})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ratio > candidates[j].ratio
	})

	// Nothing over-indexed: offer a balanced combo so cross-sell
	// still has something, unless combo is already the headline.
	if len(candidates) == 0 && primaryCat != models.CategoryCombo {
		candidates = append(candidates, crossSellCandidate{models.CategoryCombo, 1.0})
	}

	items := make([]models.RecommendationItem, 0, slots)
	for _, c := range candidates {
		if len(items) >= slots {
			break
		}
		if c.category == primaryCat {
			continue
		}

		pool := filterProducts(catalog, func(p models.Product) bool {
			return p.Category == c.category &&
				p.Price <= budget*crossSellBudgetRatio &&
				!seen[p.ProductName]
		})
		if len(pool) == 0 {
			continue
		}

		// Short packs first, then cheapest; the duration bucket
		// dominates price.
		sort.SliceStable(pool, func(i, j int) bool {
			si, sj := pool[i].DurationDays <= shortDurationDays, pool[j].DurationDays <= shortDurationDays
			if si != sj {
				return si
			}
			if pool[i].Price != pool[j].Price {
				return pool[i].Price < pool[j].Price
			}
			return pool[i].ProductName < pool[j].ProductName
		})

		pick := pool[0]
		items = append(items, newItem(pick,
			fmt.Sprintf("Cross-sell pick: %s usage above subscriber average", c.category),
			fmt.Sprintf("Complements predicted need: %s", label),
		))
		seen[pick.ProductName] = true
	}
	return items
}

// fallbackPicks fills still-open slots with the cheapest unseen,
// affordable products. Under-filling is valid when inventory under the
// cap runs out; duplicating is not.
func fallbackPicks(label string, budget float64, catalog []models.Product, seen map[string]bool, slots int) []models.RecommendationItem {
	pool := filterProducts(catalog, func(p models.Product) bool {
		return !seen[p.ProductName] && p.Price <= budget*crossSellBudgetRatio
	})

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Price != pool[j].Price {
			return pool[i].Price < pool[j].Price
		}
		return pool[i].ProductName < pool[j].ProductName
	})

	items := make([]models.RecommendationItem, 0, slots)
	for _, p := range pool {
		if len(items) >= slots {
			break
		}
		items = append(items, newItem(p,
			"General pick: best value across the catalog",
			fmt.Sprintf("Fills out the plan for predicted need: %s", label),
		))
		seen[p.ProductName] = true
	}
	return items
}

func newItem(p models.Product, reasons ...string) models.RecommendationItem {
	return models.RecommendationItem{
		ProductID:    p.ProductID,
		ProductName:  p.ProductName,
		Category:     p.Category,
		Price:        p.Price,
		DurationDays: p.DurationDays,
		Reasons:      reasons,
	}
}

func filterProducts(catalog []models.Product, keep func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0, len(catalog))
	for _, p := range catalog {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func withinBudget(pool []models.Product, cap float64) []models.Product {
	return filterProducts(pool, func(p models.Product) bool {
		return p.Price <= cap
	})
}

// sortByPrice orders products by price in the given direction, using
// the category sort policy as the tie-break between equal prices and
// product name as the final deterministic key.
func sortByPrice(pool []models.Product, ascending bool, policy SortPolicy) {
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Price != pool[j].Price {
			if ascending {
				return pool[i].Price < pool[j].Price
			}
			return pool[i].Price > pool[j].Price
		}
		if lessByPolicy(pool[i], pool[j], policy) != lessByPolicy(pool[j], pool[i], policy) {
			return lessByPolicy(pool[i], pool[j], policy)
		}
		return pool[i].ProductName < pool[j].ProductName
	})
}
