package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	spacePattern    = regexp.MustCompile(`\s+`)
	currencyAliases = regexp.MustCompile(`ringgit|myr`)
)

// Normalize lowercases the input, folds currency aliases into "rm" and collapses whitespace.
func Normalize(input string) string {
	text := strings.ToLower(input)
	text = spacePattern.ReplaceAllString(text, " ")
	text = currencyAliases.ReplaceAllString(text, "rm")
	return strings.TrimSpace(text)
}

// collapseSpaces squeezes whitespace runs and trims the result.
func collapseSpaces(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// cutRange removes s[start:end] and collapses the seam.
func cutRange(s string, start, end int) string {
	return collapseSpaces(s[:start] + " " + s[end:])
}

// TitleCase upper-cases the first character of every space-separated word and lower-cases
// the rest, so "7eleven" stays "7eleven".
func TitleCase(s string) string {
	if s == "" {
		return ""
	}
	// Casers are not safe for concurrent use, so each call gets its own.
	upper, lower := cases.Upper(language.Und), cases.Lower(language.Und)

	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}
