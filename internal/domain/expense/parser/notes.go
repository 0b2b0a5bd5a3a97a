package parser

import (
	"strings"
	"unicode"
)

// ExtractNotes cleans the residual text using the default filler list.
func ExtractNotes(text string) string {
	return defaultParser.ExtractNotes(text)
}

// ExtractNotes drops filler words, trims stray punctuation and title-cases what is left.
// An empty string means there is nothing worth keeping.
func (p *Parser) ExtractNotes(text string) string {
	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, filler := p.fillers[strings.ToLower(w)]; filler {
			continue
		}
		kept = append(kept, w)
	}

	notes := strings.TrimFunc(strings.Join(kept, " "), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return TitleCase(notes)
}
