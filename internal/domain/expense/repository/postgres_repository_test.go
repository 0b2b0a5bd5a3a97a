package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/common"
)

var expenseColumns = []string{
	"id", "user_id", "category_id", "category_name", "amount_minor", "currency_code",
	"merchant", "expense_date", "notes", "created_at", "updated_at",
}

// The mock pool and the real pool must both satisfy the narrowed interface.
var _ PgxPool = pgxmock.PgxPoolIface(nil)

func TestPostgresExpenseRepository_ListCategories(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	foodID, transportID := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(listCategoriesQuery)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(foodID, "food", now).
			AddRow(transportID, "transport", now))

	repo := NewPostgresExpenseRepository(mock)
	categories, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].ID != foodID || categories[1].Name != "transport" {
		t.Fatalf("unexpected categories: %+v", categories)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresExpenseRepository_CreateExpense(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	userID, categoryID := uuid.New(), uuid.New()
	date := time.Date(2025, time.December, 1, 10, 0, 0, 0, time.UTC)
	notes := "Headphones"
	created := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(createExpenseQuery)).
		WithArgs(pgxmock.AnyArg(), userID, categoryID, int64(12000), "MYR", "Shopee", date, &notes).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	expense := &Expense{
		UserID:      userID,
		CategoryID:  categoryID,
		AmountMinor: 12000,
		Currency:    "MYR",
		Merchant:    "Shopee",
		Date:        date,
		Notes:       &notes,
	}

	repo := NewPostgresExpenseRepository(mock)
	if err := repo.CreateExpense(context.Background(), expense); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if expense.ID == uuid.Nil {
		t.Fatalf("expected an id to be assigned")
	}
	if !expense.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %v, got %v", created, expense.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresExpenseRepository_CreateExpense_DBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	dbErr := errors.New("insert or update on table \"expenses\" violates foreign key constraint")
	mock.ExpectQuery(regexp.QuoteMeta(createExpenseQuery)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(dbErr)

	repo := NewPostgresExpenseRepository(mock)
	err = repo.CreateExpense(context.Background(), &Expense{UserID: uuid.New(), CategoryID: uuid.New(), AmountMinor: 100})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresExpenseRepository_UpdateExpense(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{"updated", 1, nil},
		{"not owned or missing", 0, common.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("pgxmock.NewPool: %v", err)
			}
			defer mock.Close()

			expense := &Expense{
				ID:          uuid.New(),
				UserID:      uuid.New(),
				CategoryID:  uuid.New(),
				AmountMinor: 850,
				Merchant:    "Zus",
				Date:        time.Date(2025, time.December, 14, 9, 0, 0, 0, time.UTC),
			}
			mock.ExpectExec(regexp.QuoteMeta(updateExpenseQuery)).
				WithArgs(expense.ID, expense.UserID, expense.CategoryID, expense.AmountMinor,
					expense.Merchant, expense.Date, expense.Notes).
				WillReturnResult(pgxmock.NewResult("UPDATE", tc.rowsAffected))

			repo := NewPostgresExpenseRepository(mock)
			err = repo.UpdateExpense(context.Background(), expense)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations: %v", err)
			}
		})
	}
}

func TestPostgresExpenseRepository_DeleteExpense_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	userID, expenseID := uuid.New(), uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(deleteExpenseQuery)).
		WithArgs(expenseID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresExpenseRepository(mock)
	if err := repo.DeleteExpense(context.Background(), userID, expenseID); err != common.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresExpenseRepository_ListExpensesByMonth(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	userID := uuid.New()
	month := time.Date(2025, time.December, 15, 14, 30, 0, 0, time.UTC)
	start := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	notes := "Nasi Lemak"

	mock.ExpectQuery(regexp.QuoteMeta(listExpensesByMonthQuery)).
		WithArgs(userID, start, end).
		WillReturnRows(pgxmock.NewRows(expenseColumns).
			AddRow(uuid.New(), userID, uuid.New(), "food", int64(1500), "MYR", "Ali Mamak", month, &notes, month, month).
			AddRow(uuid.New(), userID, uuid.New(), "transport", int64(1200), "MYR", "Grab", start, nil, start, start))

	repo := NewPostgresExpenseRepository(mock)
	expenses, err := repo.ListExpensesByMonth(context.Background(), userID, month)
	if err != nil {
		t.Fatalf("ListExpensesByMonth: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(expenses))
	}
	if expenses[0].CategoryName != "food" || expenses[0].Notes == nil || *expenses[0].Notes != notes {
		t.Fatalf("unexpected first expense: %+v", expenses[0])
	}
	if expenses[1].Notes != nil {
		t.Fatalf("expected nil notes, got %v", *expenses[1].Notes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
