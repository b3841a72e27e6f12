package engine

import (
	"math"
	"testing"

	"github.com/telvora/telvora/pkg/models"
)

func TestTargetCategory(t *testing.T) {
	tests := []struct {
		label string
		want  models.Category
		ok    bool
	}{
		{models.LabelDataBooster, models.CategoryData, true},
		{models.LabelVoiceBundle, models.CategoryVoice, true},
		{models.LabelStreamingPack, models.CategoryVOD, true},
		{models.LabelFamilyPlan, models.CategoryCombo, true},
		{models.LabelRetentionOffer, models.CategoryCombo, true},
		{models.LabelTopupPromo, models.CategoryData, true},
		{models.LabelGeneralOffer, models.CategoryCombo, true},
		{models.LabelRoamingPass, models.CategoryRoaming, true},
		{models.LabelDeviceUpgrade, models.CategoryDeviceBundle, true},
		{"Mystery Label", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := TargetCategory(tt.label)
			if got != tt.want || ok != tt.ok {
				t.Errorf("TargetCategory(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSortPolicyForUnknownCategory(t *testing.T) {
	policy := SortPolicyFor(models.Category("Satellite"))

	if policy.Field != SortFieldPrice || !policy.Ascending {
		t.Errorf("unknown category policy = %+v, want ascending price", policy)
	}
}

func TestLessByPolicyNaNAlwaysLast(t *testing.T) {
	comparable := models.Product{PricePerSMS: 150}
	incomparable := models.Product{PricePerSMS: math.NaN()}

	asc := SortPolicy{Field: SortFieldPricePerSMS, Ascending: true}
	desc := SortPolicy{Field: SortFieldPricePerSMS, Ascending: false}

	for _, policy := range []SortPolicy{asc, desc} {
		if !lessByPolicy(comparable, incomparable, policy) {
			t.Errorf("comparable should sort before NaN under %+v", policy)
		}
		if lessByPolicy(incomparable, comparable, policy) {
			t.Errorf("NaN should sort after comparable under %+v", policy)
		}
	}
}
