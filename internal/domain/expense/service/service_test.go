package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/common"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/parser"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/repository"
)

var (
	myt      = time.FixedZone("MYT", 8*60*60)
	fixedNow = time.Date(2025, time.December, 15, 14, 30, 45, 0, myt)
)

// MockExpenseRepo is a mock implementation of ExpenseRepository
type MockExpenseRepo struct {
	mock.Mock
}

func (m *MockExpenseRepo) ListCategories(ctx context.Context) ([]repository.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.Category), args.Error(1)
}

func (m *MockExpenseRepo) CreateExpense(ctx context.Context, expense *repository.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepo) UpdateExpense(ctx context.Context, expense *repository.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepo) DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error {
	args := m.Called(ctx, userID, expenseID)
	return args.Error(0)
}

func (m *MockExpenseRepo) ListExpensesByMonth(ctx context.Context, userID uuid.UUID, month time.Time) ([]repository.Expense, error) {
	args := m.Called(ctx, userID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.Expense), args.Error(1)
}

type stubFallback struct {
	available bool
	parsed    parser.ParsedExpense
	err       error
	calls     int
}

func (f *stubFallback) Available() bool { return f.available }

func (f *stubFallback) Parse(_ context.Context, _ string) (parser.ParsedExpense, error) {
	f.calls++
	return f.parsed, f.err
}

func setupExpenseServiceTest(opts ...Option) (*ExpenseService, *MockExpenseRepo) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockExpenseRepo)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewExpenseService(mockRepo, logger, opts...), mockRepo
}

func TestExpenseService_Parse_UsesClock(t *testing.T) {
	svc, _ := setupExpenseServiceTest()

	parsed, err := svc.Parse(context.Background(), "rm 12 grab today")

	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(parsed.Date))
	assert.Equal(t, "transport", parsed.CategoryName)
	assert.Equal(t, 1.0, parsed.Confidence)
}

func TestExpenseService_Parse_CancelledContext(t *testing.T) {
	svc, _ := setupExpenseServiceTest()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Parse(ctx, "rm 12 grab today")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpenseService_Parse_Fallback(t *testing.T) {
	better := parser.ParsedExpense{Currency: parser.Currency, Merchant: "Mamak", Confidence: 0.8}

	t.Run("low confidence uses a better fallback parse", func(t *testing.T) {
		fb := &stubFallback{available: true, parsed: better}
		svc, _ := setupExpenseServiceTest(WithFallback(fb))

		parsed, err := svc.Parse(context.Background(), "lunch at mamak")

		require.NoError(t, err)
		assert.Equal(t, 1, fb.calls)
		assert.Equal(t, better, parsed)
	})

	t.Run("fallback error keeps the deterministic parse", func(t *testing.T) {
		fb := &stubFallback{available: true, err: errors.New("not implemented")}
		svc, _ := setupExpenseServiceTest(WithFallback(fb))

		parsed, err := svc.Parse(context.Background(), "lunch at mamak")

		require.NoError(t, err)
		assert.Equal(t, 1, fb.calls)
		assert.InDelta(t, 0.45, parsed.Confidence, 1e-9)
	})

	t.Run("confident parses skip the fallback", func(t *testing.T) {
		fb := &stubFallback{available: true, parsed: better}
		svc, _ := setupExpenseServiceTest(WithFallback(fb))

		_, err := svc.Parse(context.Background(), "rm 12 grab today")

		require.NoError(t, err)
		assert.Zero(t, fb.calls)
	})

	t.Run("disabled fallback is never called", func(t *testing.T) {
		fb := &stubFallback{available: false, parsed: better}
		svc, _ := setupExpenseServiceTest(WithFallback(fb))

		_, err := svc.Parse(context.Background(), "lunch at mamak")

		require.NoError(t, err)
		assert.Zero(t, fb.calls)
	})
}

func TestExpenseService_ParseBatch_OrderAndBlankLines(t *testing.T) {
	svc, _ := setupExpenseServiceTest(WithWorkers(3))
	lines := []string{
		"rm 12 grab today",
		"",
		"Spent 15 myr on nasi lemak at ali mamak",
		"   ",
		"Paid RM120 shopee 1/12 headphones",
		"netflix rm 55",
		"lunch at mamak",
	}

	results, err := svc.ParseBatch(context.Background(), lines)
	require.NoError(t, err)
	require.Len(t, results, 5)

	wantLines := []int{1, 3, 5, 6, 7}
	for i, r := range results {
		assert.Equal(t, wantLines[i], r.Line)
		assert.Equal(t, lines[r.Line-1], r.Text)
		assert.Equal(t, parser.Parse(r.Text, fixedNow), r.Parsed)
	}
}

func TestExpenseService_ParseBatch_Cancelled(t *testing.T) {
	svc, _ := setupExpenseServiceTest(WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.ParseBatch(ctx, []string{"rm 1 kopi", "rm 2 teh"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestResolveCategoryID(t *testing.T) {
	foodID := uuid.New()
	categories := []repository.Category{
		{ID: uuid.New(), Name: "Transport"},
		{ID: foodID, Name: "Food"},
	}

	id, ok := ResolveCategoryID(categories, "food")
	assert.True(t, ok)
	assert.Equal(t, foodID, id)

	_, ok = ResolveCategoryID(categories, "education")
	assert.False(t, ok)

	_, ok = ResolveCategoryID(categories, "")
	assert.False(t, ok)
}

func TestExpenseService_CreateFromText_ResolvesCategoryByName(t *testing.T) {
	svc, mockRepo := setupExpenseServiceTest()
	ctx := context.Background()
	userID := uuid.New()
	foodID := uuid.New()

	mockRepo.On("ListCategories", mock.Anything).Return([]repository.Category{
		{ID: uuid.New(), Name: "transport"},
		{ID: foodID, Name: "food"},
	}, nil)
	mockRepo.On("CreateExpense", mock.Anything, mock.MatchedBy(func(e *repository.Expense) bool {
		return e.UserID == userID &&
			e.CategoryID == foodID &&
			e.AmountMinor == 900 &&
			e.Merchant == UnknownMerchant &&
			e.Currency == "MYR" &&
			e.Notes != nil && *e.Notes == "Nasi Lemak"
	})).Return(nil)

	expense, parsed, err := svc.CreateFromText(ctx, userID, "rm 9 nasi lemak", nil)

	require.NoError(t, err)
	require.NotNil(t, expense)
	assert.Equal(t, "food", parsed.CategoryName)
	assert.True(t, fixedNow.Equal(expense.Date))
	mockRepo.AssertExpectations(t)
}

func TestExpenseService_CreateFromText_ExplicitCategoryWins(t *testing.T) {
	svc, mockRepo := setupExpenseServiceTest()
	userID := uuid.New()
	chosen := uuid.New()

	mockRepo.On("CreateExpense", mock.Anything, mock.MatchedBy(func(e *repository.Expense) bool {
		return e.CategoryID == chosen && e.AmountMinor == 3000 && e.Merchant == "Grab"
	})).Return(nil)

	_, _, err := svc.CreateFromText(context.Background(), userID, "rm 30 grab", &chosen)

	require.NoError(t, err)
	mockRepo.AssertNotCalled(t, "ListCategories", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestExpenseService_CreateFromText_NotReady(t *testing.T) {
	svc, mockRepo := setupExpenseServiceTest()
	mockRepo.On("ListCategories", mock.Anything).Return([]repository.Category{{ID: uuid.New(), Name: "food"}}, nil)

	expense, parsed, err := svc.CreateFromText(context.Background(), uuid.New(), "lunch at mamak", nil)

	assert.Nil(t, expense)
	assert.ErrorIs(t, err, common.ErrNotReadyToSave)
	assert.True(t, parsed.HasWarning(parser.WarnAmountNotFound))
	mockRepo.AssertNotCalled(t, "CreateExpense", mock.Anything, mock.Anything)
}

func TestExpenseService_CreateFromText_UnknownCategoryName(t *testing.T) {
	svc, mockRepo := setupExpenseServiceTest()
	mockRepo.On("ListCategories", mock.Anything).Return([]repository.Category{{ID: uuid.New(), Name: "food"}}, nil)

	_, _, err := svc.CreateFromText(context.Background(), uuid.New(), "rm 30 grab", nil)

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	mockRepo.AssertNotCalled(t, "CreateExpense", mock.Anything, mock.Anything)
}

func TestExpenseService_CreateFromText_RepositoryError(t *testing.T) {
	svc, mockRepo := setupExpenseServiceTest()
	dbErr := errors.New("connection reset")
	chosen := uuid.New()
	mockRepo.On("CreateExpense", mock.Anything, mock.Anything).Return(dbErr)

	_, _, err := svc.CreateFromText(context.Background(), uuid.New(), "rm 30 grab", &chosen)

	assert.ErrorIs(t, err, dbErr)
}

func TestExpenseService_UpdateExpense_Validation(t *testing.T) {
	svc, mockRepo := setupExpenseServiceTest()

	err := svc.UpdateExpense(context.Background(), uuid.New(), ExpenseInput{Merchant: "  "})

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrBadRequest))
	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr))
	for _, field := range []string{"id", "amount", "category_id", "merchant", "date"} {
		assert.Contains(t, verr.Fields, field)
	}
	mockRepo.AssertNotCalled(t, "UpdateExpense", mock.Anything, mock.Anything)
}

func TestExpenseService_UpdateExpense_NotFound(t *testing.T) {
	svc, mockRepo := setupExpenseServiceTest()
	mockRepo.On("UpdateExpense", mock.Anything, mock.Anything).Return(common.ErrNotFound)

	err := svc.UpdateExpense(context.Background(), uuid.New(), ExpenseInput{
		ID:          uuid.New(),
		CategoryID:  uuid.New(),
		AmountMinor: 500,
		Merchant:    "Zus",
		Date:        fixedNow,
	})

	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestExpenseService_DeleteExpense(t *testing.T) {
	svc, mockRepo := setupExpenseServiceTest()
	userID, expenseID := uuid.New(), uuid.New()
	mockRepo.On("DeleteExpense", mock.Anything, userID, expenseID).Return(nil)

	require.NoError(t, svc.DeleteExpense(context.Background(), userID, expenseID))
	mockRepo.AssertExpectations(t)
}

func TestExpenseService_ListExpenses(t *testing.T) {
	tests := []struct {
		name      string
		month     string
		wantMonth time.Time
		wantErr   error
	}{
		{"explicit month", "2025-11", time.Date(2025, time.November, 1, 0, 0, 0, 0, myt), nil},
		{"current month", "", fixedNow, nil},
		{"bad format", "11/2025", time.Time{}, common.ErrBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, mockRepo := setupExpenseServiceTest()
			userID := uuid.New()
			if tc.wantErr == nil {
				mockRepo.On("ListExpensesByMonth", mock.Anything, userID, mock.MatchedBy(func(m time.Time) bool {
					return m.Equal(tc.wantMonth)
				})).Return([]repository.Expense{{Merchant: "Grab"}}, nil)
			}

			expenses, err := svc.ListExpenses(context.Background(), userID, tc.month)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, expenses, 1)
			mockRepo.AssertExpectations(t)
		})
	}
}
