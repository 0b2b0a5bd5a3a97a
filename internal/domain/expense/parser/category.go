package parser

import (
	"math"
	"strings"
)

// Category confidence tuning.
const (
	merchantMatchConfidence = 0.9
	keywordBaseConfidence   = 0.7
	keywordConfidenceStep   = 0.02
	keywordMaxConfidence    = 0.85

	// FirmCategoryThreshold separates a firm suggestion from a guess.
	FirmCategoryThreshold = 0.7
)

// SuggestCategory guesses a category for the raw input using the default knowledge base.
func SuggestCategory(input string) CategoryResult {
	return defaultParser.SuggestCategory(input)
}

// SuggestCategory scans the raw input for known merchants first and category keywords
// second. Keyword hits are weighted by keyword length and summed per category; the highest
// total wins and ties go to the category listed first. Any keyword hit is firm.
func (p *Parser) SuggestCategory(input string) CategoryResult {
	lower := strings.ToLower(input)

	for _, mc := range p.kb.MerchantCategories {
		if strings.Contains(lower, mc.Merchant) {
			return CategoryResult{Name: mc.Category, Confidence: merchantMatchConfidence}
		}
	}

	bestCategory := ""
	bestScore := 0
	for _, ck := range p.kb.CategoryKeywords {
		score := 0
		for _, kw := range ck.Keywords {
			if strings.Contains(lower, kw) {
				score += len(kw)
			}
		}
		if score > bestScore {
			bestCategory, bestScore = ck.Category, score
		}
	}

	if bestScore == 0 {
		return CategoryResult{}
	}
	return CategoryResult{Name: bestCategory, Confidence: keywordConfidence(bestScore)}
}

func keywordConfidence(score int) float64 {
	c := keywordBaseConfidence + float64(score)*keywordConfidenceStep
	return round2(math.Min(c, keywordMaxConfidence))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
