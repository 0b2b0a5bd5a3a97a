package parser

import (
	"regexp"
	"time"
)

// Parser converts expense sentences into ParsedExpense values. It only holds read-only
// data and is safe for concurrent use.
type Parser struct {
	kb                *KnowledgeBase
	fillers           map[string]struct{}
	namedMonthPattern *regexp.Regexp
	dateMatchers      []dateMatcher
}

var defaultParser = New(nil)

// New builds a Parser over kb. A nil kb selects DefaultKnowledgeBase.
func New(kb *KnowledgeBase) *Parser {
	if kb == nil {
		kb = DefaultKnowledgeBase()
	}
	p := &Parser{
		kb:                kb,
		fillers:           kb.fillerSet(),
		namedMonthPattern: buildNamedMonthPattern(kb),
	}
	p.dateMatchers = p.buildDateMatchers()
	return p
}

// KnowledgeBase returns the tables this parser consults.
func (p *Parser) KnowledgeBase() *KnowledgeBase {
	return p.kb
}

// Parse runs the default parser. now is the instant the sentence is interpreted at.
func Parse(text string, now time.Time) ParsedExpense {
	return defaultParser.Parse(text, now)
}

// Parse extracts amount, date, merchant and notes from the normalized text in that order,
// each stage consuming what it matched, then suggests a category from the untouched input
// and scores the result. The same text and now always produce the same result.
func (p *Parser) Parse(text string, now time.Time) ParsedExpense {
	working := Normalize(text)

	amount, working := ExtractAmount(working)
	date, working := p.ResolveDate(working, now)
	merchant, working := p.ExtractMerchant(working)
	notes := p.ExtractNotes(working)

	category := p.SuggestCategory(text)
	certainty := CertaintyOf(category.Confidence)
	if certainty == CategoryNone {
		category = CategoryResult{}
	}

	confidence, warnings := Score(Outcome{
		AmountFound:   amount.Found,
		DateExplicit:  date.Explicit,
		MerchantFound: merchant != "",
		Category:      certainty,
	})

	result := ParsedExpense{
		Currency:           Currency,
		Merchant:           merchant,
		Date:               date.Date,
		DateExplicit:       date.Explicit,
		Notes:              notes,
		CategoryName:       category.Name,
		CategoryConfidence: category.Confidence,
		Confidence:         confidence,
		Warnings:           warnings,
	}
	if amount.Found {
		minor := amount.Minor
		result.AmountMinor = &minor
	}
	return result
}

// IsReadyToSave reports whether parsed can be saved: it needs a positive amount and either
// a category id chosen by the caller or a category the parser resolved itself.
func IsReadyToSave(parsed ParsedExpense, categoryID string) bool {
	if parsed.AmountMinor == nil || *parsed.AmountMinor <= 0 {
		return false
	}
	return categoryID != "" || parsed.CategoryName != ""
}
