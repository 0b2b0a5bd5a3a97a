// Package service orchestrates parsing, category resolution and persistence of expenses.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/common"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/parser"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/smart-expense-tracker/pkg/observability"
)

const (
	// Parses scoring below this are offered to the AI fallback when it is enabled.
	fallbackThreshold = 0.5

	// UnknownMerchant is stored when the text named no merchant.
	UnknownMerchant = "Unknown"

	monthLayout = "2006-01"
)

var ErrCategoryNotFound = errors.New("category not found")

// Clock returns the current instant. Tests pin it.
type Clock func() time.Time

// Fallback parses sentences the deterministic parser could not read confidently.
type Fallback interface {
	Available() bool
	Parse(ctx context.Context, text string) (parser.ParsedExpense, error)
}

// ExpenseInput carries the user-editable fields of an expense.
type ExpenseInput struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	AmountMinor int64
	Merchant    string
	Date        time.Time
	Notes       string
}

// BatchResult is one parsed line of a batch. Line is 1-based.
type BatchResult struct {
	Line   int
	Text   string
	Parsed parser.ParsedExpense
}

// ExpenseService coordinates the parser and the expense repository
type ExpenseService struct {
	repo     repository.ExpenseRepository
	parser   *parser.Parser
	fallback Fallback
	logger   *slog.Logger
	tracer   trace.Tracer
	now      Clock
	workers  int
}

// Option configures an ExpenseService.
type Option func(*ExpenseService)

func WithClock(clock Clock) Option {
	return func(s *ExpenseService) { s.now = clock }
}

// WithLocation makes the default clock report time in loc.
func WithLocation(loc *time.Location) Option {
	return func(s *ExpenseService) {
		s.now = func() time.Time { return time.Now().In(loc) }
	}
}

func WithFallback(fallback Fallback) Option {
	return func(s *ExpenseService) { s.fallback = fallback }
}

func WithParser(p *parser.Parser) Option {
	return func(s *ExpenseService) { s.parser = p }
}

func WithWorkers(n int) Option {
	return func(s *ExpenseService) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *ExpenseService) { s.tracer = tracer }
}

// NewExpenseService creates a new expense service
func NewExpenseService(repo repository.ExpenseRepository, logger *slog.Logger, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		repo:    repo,
		parser:  parser.New(nil),
		logger:  logger,
		tracer:  otel.Tracer("ExpenseService"),
		now:     time.Now,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse interprets text at the service clock's current instant.
func (s *ExpenseService) Parse(ctx context.Context, text string) (parser.ParsedExpense, error) {
	ctx, span := s.tracer.Start(ctx, "Parse")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return parser.ParsedExpense{}, err
	}

	parsed := s.parse(ctx, text, s.now())
	span.SetAttributes(
		attribute.Float64("parse.confidence", parsed.Confidence),
		attribute.Int("parse.warnings", len(parsed.Warnings)),
		attribute.String("parse.category", parsed.CategoryName),
	)
	return parsed, nil
}

func (s *ExpenseService) parse(ctx context.Context, text string, now time.Time) parser.ParsedExpense {
	l := s.logger.With(slog.String("method", "Parse"))

	parsed := s.parser.Parse(text, now)
	if parsed.Confidence < fallbackThreshold && s.fallback != nil && s.fallback.Available() {
		aiParsed, err := s.fallback.Parse(ctx, text)
		switch {
		case err != nil:
			l.DebugContext(ctx, "AI fallback unavailable, keeping deterministic parse", slog.Any("error", err))
		case aiParsed.Confidence > parsed.Confidence:
			l.DebugContext(ctx, "Using AI fallback parse", slog.Float64("confidence", aiParsed.Confidence))
			parsed = aiParsed
		}
	}

	observability.RecordParse(parser.IsReadyToSave(parsed, ""), parsed.Confidence, parsed.Warnings)
	l.DebugContext(ctx, "Parsed expense text",
		slog.Float64("confidence", parsed.Confidence),
		slog.Any("warnings", parsed.Warnings),
	)
	return parsed
}

type parseJob struct {
	line int
	text string
}

// ParseBatch parses lines concurrently on a bounded worker pool. Blank lines are skipped;
// results keep input order. Every line is interpreted at the same instant.
func (s *ExpenseService) ParseBatch(ctx context.Context, lines []string) ([]BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "ParseBatch", trace.WithAttributes(attribute.Int("batch.lines", len(lines))))
	defer span.End()

	now := s.now()
	slots := make([]*BatchResult, len(lines))

	workerCount := s.workers
	if workerCount < 1 {
		workerCount = 1
	}
	jobs := make(chan parseJob, workerCount*4)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				slots[job.line-1] = &BatchResult{
					Line:   job.line,
					Text:   job.text,
					Parsed: s.parse(ctx, job.text, now),
				}
			}
		}()
	}

feed:
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		select {
		case jobs <- parseJob{line: i + 1, text: line}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	results := make([]BatchResult, 0, len(lines))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

// ResolveCategoryID finds the id of the category called name, ignoring case.
func ResolveCategoryID(categories []repository.Category, name string) (uuid.UUID, bool) {
	if name == "" {
		return uuid.Nil, false
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c.ID, true
		}
	}
	return uuid.Nil, false
}

// CreateFromText parses text and saves it for userID. An explicit categoryID wins over the
// parsed category name. The parse is returned even when saving is refused so callers can
// show its warnings.
func (s *ExpenseService) CreateFromText(ctx context.Context, userID uuid.UUID, text string, categoryID *uuid.UUID) (*repository.Expense, parser.ParsedExpense, error) {
	ctx, span := s.tracer.Start(ctx, "CreateFromText", trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateFromText"), slog.String("userID", userID.String()))
	l.DebugContext(ctx, "Creating expense from text")

	parsed, err := s.Parse(ctx, text)
	if err != nil {
		return nil, parsed, err
	}

	resolved := uuid.Nil
	if categoryID != nil && *categoryID != uuid.Nil {
		resolved = *categoryID
	} else if parsed.CategoryName != "" {
		categories, err := s.repo.ListCategories(ctx)
		if err != nil {
			l.ErrorContext(ctx, "Failed to list categories", slog.Any("error", err))
			span.RecordError(err)
			return nil, parsed, fmt.Errorf("error listing categories: %w", err)
		}
		if id, ok := ResolveCategoryID(categories, parsed.CategoryName); ok {
			resolved = id
		}
	}

	chosen := ""
	if resolved != uuid.Nil {
		chosen = resolved.String()
	}
	if !parser.IsReadyToSave(parsed, chosen) {
		return nil, parsed, fmt.Errorf("%w: %s", common.ErrNotReadyToSave, strings.Join(parsed.Warnings, ", "))
	}
	if resolved == uuid.Nil {
		return nil, parsed, fmt.Errorf("%w: %q", ErrCategoryNotFound, parsed.CategoryName)
	}

	input := ExpenseInput{
		CategoryID:  resolved,
		AmountMinor: *parsed.AmountMinor,
		Merchant:    parsed.Merchant,
		Date:        parsed.Date,
		Notes:       parsed.Notes,
	}
	if input.Merchant == "" {
		input.Merchant = UnknownMerchant
	}

	expense, err := s.CreateExpense(ctx, userID, input)
	if err != nil {
		span.RecordError(err)
		return nil, parsed, err
	}
	return expense, parsed, nil
}

// CreateExpense validates and stores a structured expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID uuid.UUID, input ExpenseInput) (*repository.Expense, error) {
	l := s.logger.With(slog.String("method", "CreateExpense"), slog.String("userID", userID.String()))

	if err := validateInput(input); err != nil {
		l.DebugContext(ctx, "Rejected invalid expense", slog.Any("error", err))
		return nil, err
	}

	expense := toExpense(userID, input)
	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		l.ErrorContext(ctx, "Failed to create expense", slog.Any("error", err))
		return nil, fmt.Errorf("error creating expense: %w", err)
	}

	l.InfoContext(ctx, "Expense created successfully", slog.String("expenseID", expense.ID.String()))
	return expense, nil
}

// UpdateExpense overwrites an expense owned by userID.
func (s *ExpenseService) UpdateExpense(ctx context.Context, userID uuid.UUID, input ExpenseInput) error {
	l := s.logger.With(slog.String("method", "UpdateExpense"), slog.String("userID", userID.String()))

	verr := &common.ValidationError{}
	if input.ID == uuid.Nil {
		verr.Add("id", "is required")
	}
	if err := validateInput(input); err != nil {
		var fields *common.ValidationError
		if errors.As(err, &fields) {
			for f, msg := range fields.Fields {
				verr.Add(f, msg)
			}
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	if err := s.repo.UpdateExpense(ctx, toExpense(userID, input)); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		l.ErrorContext(ctx, "Failed to update expense", slog.Any("error", err))
		return fmt.Errorf("error updating expense: %w", err)
	}

	l.InfoContext(ctx, "Expense updated successfully", slog.String("expenseID", input.ID.String()))
	return nil
}

// DeleteExpense removes an expense owned by userID.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteExpense"), slog.String("userID", userID.String()))

	if err := s.repo.DeleteExpense(ctx, userID, expenseID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		l.ErrorContext(ctx, "Failed to delete expense", slog.Any("error", err))
		return fmt.Errorf("error deleting expense: %w", err)
	}

	l.InfoContext(ctx, "Expense deleted successfully", slog.String("expenseID", expenseID.String()))
	return nil
}

// ListExpenses returns the user's expenses for month, formatted YYYY-MM. An empty month
// means the current one.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID uuid.UUID, month string) ([]repository.Expense, error) {
	l := s.logger.With(slog.String("method", "ListExpenses"), slog.String("userID", userID.String()))

	now := s.now()
	start := now
	if month != "" {
		parsed, err := time.ParseInLocation(monthLayout, month, now.Location())
		if err != nil {
			verr := &common.ValidationError{}
			verr.Add("month", "must use the YYYY-MM format")
			return nil, verr
		}
		start = parsed
	}

	expenses, err := s.repo.ListExpensesByMonth(ctx, userID, start)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list expenses", slog.Any("error", err))
		return nil, fmt.Errorf("error listing expenses: %w", err)
	}
	return expenses, nil
}

// ListCategories returns every category.
func (s *ExpenseService) ListCategories(ctx context.Context) ([]repository.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list categories", slog.String("method", "ListCategories"), slog.Any("error", err))
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return categories, nil
}

func validateInput(input ExpenseInput) error {
	verr := &common.ValidationError{}
	if input.AmountMinor <= 0 {
		verr.Add("amount", "must be greater than 0")
	}
	if input.CategoryID == uuid.Nil {
		verr.Add("category_id", "please select a category")
	}
	if strings.TrimSpace(input.Merchant) == "" {
		verr.Add("merchant", "merchant name is required")
	}
	if input.Date.IsZero() {
		verr.Add("date", "a date is required")
	}
	return verr.OrNil()
}

func toExpense(userID uuid.UUID, input ExpenseInput) *repository.Expense {
	var notes *string
	if n := strings.TrimSpace(input.Notes); n != "" {
		notes = &n
	}
	return &repository.Expense{
		ID:          input.ID,
		UserID:      userID,
		CategoryID:  input.CategoryID,
		AmountMinor: input.AmountMinor,
		Currency:    parser.Currency,
		Merchant:    strings.TrimSpace(input.Merchant),
		Date:        input.Date,
		Notes:       notes,
	}
}
