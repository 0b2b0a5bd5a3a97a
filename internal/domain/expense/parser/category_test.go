package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestCategory(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		category  string
		certainty CategoryCertainty
	}{
		{"merchant table ride hailing", "Grab to KLCC", "transport", CategoryFirm},
		{"merchant table streaming", "Netflix monthly", "subscriptions", CategoryFirm},
		{"merchant table ignores case", "SHOPEE haul", "shopping", CategoryFirm},
		{"strong food keywords", "nasi lemak", "food", CategoryFirm},
		{"single short keyword is firm", "kopi", "food", CategoryFirm},
		{"two letter keyword is firm", "mi goreng", "food", CategoryFirm},
		{"longer keyword wins", "parking and lunch", "transport", CategoryFirm},
		{"tie goes to the earlier category", "teh bus", "food", CategoryFirm},
		{"nothing matches", "xyz", "", CategoryNone},
		{"empty", "", "", CategoryNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SuggestCategory(tc.input)
			assert.Equal(t, tc.category, got.Name)
			assert.Equal(t, tc.certainty, CertaintyOf(got.Confidence))
		})
	}
}

func TestSuggestCategory_MerchantBeatsKeywords(t *testing.T) {
	got := SuggestCategory("grab lunch nasi lemak kopi")

	assert.Equal(t, "transport", got.Name)
	assert.InDelta(t, merchantMatchConfidence, got.Confidence, 1e-9)
}

func TestSuggestCategory_MoreKeywordsNeverLowerConfidence(t *testing.T) {
	one := SuggestCategory("nasi")
	two := SuggestCategory("nasi lemak")
	three := SuggestCategory("nasi lemak kopi teh")

	assert.Equal(t, "food", one.Name)
	assert.LessOrEqual(t, one.Confidence, two.Confidence)
	assert.LessOrEqual(t, two.Confidence, three.Confidence)
	assert.LessOrEqual(t, three.Confidence, keywordMaxConfidence)
}

func TestKeywordConfidence(t *testing.T) {
	for score := 1; score <= 20; score++ {
		assert.Equal(t, CategoryFirm, CertaintyOf(keywordConfidence(score)), "score %d", score)
	}
	assert.InDelta(t, 0.72, keywordConfidence(1), 1e-9)
	assert.InDelta(t, 0.78, keywordConfidence(4), 1e-9)
	assert.InDelta(t, keywordMaxConfidence, keywordConfidence(1000), 1e-9)
}

func TestSuggestCategory_ShortKeywordsAreFirm(t *testing.T) {
	for _, input := range []string{"kopi", "teh", "mi", "lunch"} {
		got := SuggestCategory(input)
		assert.Equal(t, "food", got.Name, input)
		assert.Equal(t, CategoryFirm, CertaintyOf(got.Confidence), input)
	}
}
