package handler

import (
	"time"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/parser"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/service"
)

// ParsedExpense is the wire form of a parse result.
type ParsedExpense struct {
	AmountMinor        *int64   `json:"amount_minor,omitempty"`
	AmountDisplay      string   `json:"amount_display"`
	Currency           string   `json:"currency"`
	Merchant           string   `json:"merchant,omitempty"`
	Date               string   `json:"date"`
	DateExplicit       bool     `json:"date_explicit"`
	Notes              string   `json:"notes,omitempty"`
	CategoryName       string   `json:"category_name,omitempty"`
	CategoryConfidence float64  `json:"category_confidence"`
	Confidence         float64  `json:"confidence"`
	Warnings           []string `json:"warnings"`
	ReadyToSave        bool     `json:"ready_to_save"`
}

type Expense struct {
	ID           string `json:"id"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	AmountMinor  int64  `json:"amount_minor"`
	Currency     string `json:"currency"`
	Merchant     string `json:"merchant"`
	Date         string `json:"date"`
	Notes        string `json:"notes,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ParseExpenseRequest struct {
	Text string `json:"text"`
}

type ParseExpenseResponse struct {
	Parsed ParsedExpense `json:"parsed"`
}

type ParseExpensesRequest struct {
	Lines []string `json:"lines"`
}

type ParsedLine struct {
	Line   int           `json:"line"`
	Text   string        `json:"text"`
	Parsed ParsedExpense `json:"parsed"`
}

type ParseExpensesResponse struct {
	Results []ParsedLine `json:"results"`
}

// CreateExpenseRequest saves either free text (Text set) or structured fields.
// With Text, CategoryID optionally overrides the parsed category.
type CreateExpenseRequest struct {
	Text        string `json:"text,omitempty"`
	CategoryID  string `json:"category_id,omitempty"`
	AmountMinor int64  `json:"amount_minor,omitempty"`
	Merchant    string `json:"merchant,omitempty"`
	Date        string `json:"date,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type CreateExpenseResponse struct {
	Expense Expense        `json:"expense"`
	Parsed  *ParsedExpense `json:"parsed,omitempty"`
}

type UpdateExpenseRequest struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	AmountMinor int64  `json:"amount_minor"`
	Merchant    string `json:"merchant"`
	Date        string `json:"date"`
	Notes       string `json:"notes,omitempty"`
}

type UpdateExpenseResponse struct{}

type DeleteExpenseRequest struct {
	ID string `json:"id"`
}

type DeleteExpenseResponse struct{}

// ListExpensesRequest selects a month as YYYY-MM; empty means the current month.
type ListExpensesRequest struct {
	Month string `json:"month,omitempty"`
}

type ListExpensesResponse struct {
	Expenses   []Expense `json:"expenses"`
	TotalMinor int64     `json:"total_minor"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// ToParsedExpense converts a parse result to its wire form.
func ToParsedExpense(p parser.ParsedExpense) ParsedExpense {
	warnings := p.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return ParsedExpense{
		AmountMinor:        p.AmountMinor,
		AmountDisplay:      parser.FormatAmount(p.AmountMinor),
		Currency:           p.Currency,
		Merchant:           p.Merchant,
		Date:               p.Date.Format(time.RFC3339),
		DateExplicit:       p.DateExplicit,
		Notes:              p.Notes,
		CategoryName:       p.CategoryName,
		CategoryConfidence: p.CategoryConfidence,
		Confidence:         p.Confidence,
		Warnings:           warnings,
		ReadyToSave:        parser.IsReadyToSave(p, ""),
	}
}

// ToParsedLines converts batch results to their wire form.
func ToParsedLines(results []service.BatchResult) []ParsedLine {
	lines := make([]ParsedLine, 0, len(results))
	for _, r := range results {
		lines = append(lines, ParsedLine{Line: r.Line, Text: r.Text, Parsed: ToParsedExpense(r.Parsed)})
	}
	return lines
}

func toExpense(e *repository.Expense) Expense {
	msg := Expense{
		ID:           e.ID.String(),
		CategoryID:   e.CategoryID.String(),
		CategoryName: e.CategoryName,
		AmountMinor:  e.AmountMinor,
		Currency:     e.Currency,
		Merchant:     e.Merchant,
		Date:         e.Date.Format(time.DateOnly),
	}
	if e.Notes != nil {
		msg.Notes = *e.Notes
	}
	return msg
}
