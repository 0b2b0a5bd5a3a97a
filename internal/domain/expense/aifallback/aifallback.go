// Package aifallback is the extension point for model-assisted parsing of sentences the
// deterministic parser cannot read confidently. No model is wired yet.
package aifallback

import (
	"context"
	"errors"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/parser"
)

var (
	ErrAIParserDisabled = errors.New("AI parsing is not enabled, set PARSER_AI_FALLBACK_ENABLED=true to enable")
	ErrNotImplemented   = errors.New("AI parsing not yet implemented")
)

// Parser parses text with a language model when enabled.
type Parser struct {
	enabled bool
}

func New(enabled bool) *Parser {
	return &Parser{enabled: enabled}
}

// Available reports whether the fallback is switched on.
func (p *Parser) Available() bool {
	return p.enabled
}

// Parse always fails until a model client is plugged in.
// TODO: call a hosted model with a JSON response schema once a provider is chosen.
func (p *Parser) Parse(ctx context.Context, _ string) (parser.ParsedExpense, error) {
	if err := ctx.Err(); err != nil {
		return parser.ParsedExpense{}, err
	}
	if !p.enabled {
		return parser.ParsedExpense{}, ErrAIParserDisabled
	}
	return parser.ParsedExpense{}, ErrNotImplemented
}
