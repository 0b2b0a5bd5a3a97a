package parser

import (
	"regexp"
	"strings"
)

const merchantAnchor = `(?:^|\s)(?:at|@|from|kedai|mamak|restoran|restaurant)\s+`

// The merchant words sit in capture group 1; the stop token is left in the text.
var merchantPatterns = []*regexp.Regexp{
	// "at ali mamak for lunch", "@ zus 12"
	regexp.MustCompile(`(?i)` + merchantAnchor + `([a-z0-9\s]+?)\s+(?:on|for|rm|myr|\d)`),
	// "from shopee" at the end of the text
	regexp.MustCompile(`(?i)` + merchantAnchor + `([a-z0-9\s]+)$`),
}

// ExtractMerchant finds a merchant in text using the default knowledge base.
func ExtractMerchant(text string) (string, string) {
	return defaultParser.ExtractMerchant(text)
}

// ExtractMerchant returns the display-cased merchant and the residual text. Anchored phrases
// ("at X", "@ X", "from X", "kedai X") are tried before the known brand list. An empty
// merchant means none was found.
func (p *Parser) ExtractMerchant(text string) (string, string) {
	for _, pattern := range merchantPatterns {
		loc := pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		name := strings.TrimSpace(text[loc[2]:loc[3]])
		if name == "" {
			continue
		}
		return TitleCase(name), cutRange(text, loc[0], loc[3])
	}

	lower := strings.ToLower(text)
	for _, brand := range p.kb.KnownBrands {
		if !strings.Contains(lower, brand) {
			continue
		}
		return TitleCase(brand), collapseSpaces(strings.ReplaceAll(lower, brand, " "))
	}

	return "", text
}
