package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// amountMatcher is one amount pattern. The number sits in capture group 1.
type amountMatcher struct {
	name    string
	pattern *regexp.Regexp
}

// Tried in order; the first pattern that matches decides the outcome.
var amountMatchers = []amountMatcher{
	// rm12, rm 12, rm12.50, myr 25
	{name: "prefix", pattern: regexp.MustCompile(`(?i)\b(?:rm|myr)\s*(\d+(?:\.\d{1,2})?)`)},
	// 12rm, 12 rm, 12.50 ringgit
	{name: "suffix", pattern: regexp.MustCompile(`(?i)(\d+(?:\.\d{1,2})?)\s*(?:rm|myr|ringgit)\b`)},
	// 12.50 with no currency at all
	{name: "bare", pattern: regexp.MustCompile(`\b(\d+\.\d{1,2})\b`)},
}

// ExtractAmount finds the first monetary value in text and returns it with the text that
// remains once the match is removed. Zero or malformed values count as not found, but their
// matched text is still removed.
func ExtractAmount(text string) (AmountResult, string) {
	for _, m := range amountMatchers {
		loc := m.pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		rest := cutRange(text, loc[0], loc[1])
		minor, err := parseMinorUnits(text[loc[2]:loc[3]])
		if err != nil || minor <= 0 {
			return AmountResult{}, rest
		}
		return AmountResult{Minor: minor, Found: true}, rest
	}
	return AmountResult{}, text
}

// parseMinorUnits converts "12", "12.5" or "12.50" into sen without going through floats.
func parseMinorUnits(raw string) (int64, error) {
	intPart, fracPart, _ := strings.Cut(raw, ".")
	if intPart == "" || len(fracPart) > 2 {
		return 0, fmt.Errorf("malformed amount %q", raw)
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", raw, err)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", raw, err)
	}
	if whole > (1<<63-1-frac)/100 {
		return 0, fmt.Errorf("amount %q out of range", raw)
	}
	return whole*100 + frac, nil
}

// FormatAmount renders an amount in sen for display, e.g. "RM 12.50".
func FormatAmount(minor *int64) string {
	if minor == nil {
		return "-"
	}
	v := *minor
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("RM %s%d.%02d", sign, v/100, v%100)
}
