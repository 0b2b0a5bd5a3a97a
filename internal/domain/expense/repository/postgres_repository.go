package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/common"
)

// PgxPool abstracts the subset of pgxpool.Pool used by the repository to allow mocking in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ PgxPool = (*pgxpool.Pool)(nil)

var _ ExpenseRepository = (*PostgresExpenseRepository)(nil)

const (
	listCategoriesQuery = `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name
	`

	createExpenseQuery = `
		INSERT INTO expenses (id, user_id, category_id, amount_minor, currency_code, merchant, expense_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	updateExpenseQuery = `
		UPDATE expenses SET
			category_id = $3, amount_minor = $4, merchant = $5, expense_date = $6, notes = $7,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	deleteExpenseQuery = `DELETE FROM expenses WHERE id = $1 AND user_id = $2`

	listExpensesByMonthQuery = `
		SELECT e.id, e.user_id, e.category_id, c.name AS category_name, e.amount_minor,
		       e.currency_code, e.merchant, e.expense_date, e.notes, e.created_at, e.updated_at
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1 AND e.expense_date >= $2 AND e.expense_date < $3
		ORDER BY e.expense_date DESC, e.created_at DESC
	`
)

type expenseInsertRow struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PostgresExpenseRepository implements ExpenseRepository using PostgreSQL
type PostgresExpenseRepository struct {
	pgpool PgxPool
}

// NewPostgresExpenseRepository creates a new PostgreSQL-backed expense repository
func NewPostgresExpenseRepository(pgpool PgxPool) *PostgresExpenseRepository {
	return &PostgresExpenseRepository{pgpool: pgpool}
}

// ListCategories returns every category ordered by name
func (r *PostgresExpenseRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pgpool.Query(ctx, listCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByName[Category])
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}

	return categories, nil
}

// CreateExpense inserts a new expense, assigning an ID when none is set
func (r *PostgresExpenseRepository) CreateExpense(ctx context.Context, expense *Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}

	rows, err := r.pgpool.Query(ctx, createExpenseQuery,
		expense.ID, expense.UserID, expense.CategoryID, expense.AmountMinor,
		expense.Currency, expense.Merchant, expense.Date, expense.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	dbRow, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[expenseInsertRow])
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	expense.CreatedAt = dbRow.CreatedAt
	expense.UpdatedAt = dbRow.UpdatedAt
	return nil
}

// UpdateExpense overwrites the editable fields of an expense owned by expense.UserID
func (r *PostgresExpenseRepository) UpdateExpense(ctx context.Context, expense *Expense) error {
	tag, err := r.pgpool.Exec(ctx, updateExpenseQuery,
		expense.ID, expense.UserID, expense.CategoryID, expense.AmountMinor,
		expense.Merchant, expense.Date, expense.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteExpense removes an expense owned by userID
func (r *PostgresExpenseRepository) DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, deleteExpenseQuery, expenseID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ListExpensesByMonth returns the user's expenses in the calendar month containing month,
// newest first. Month boundaries follow month's location.
func (r *PostgresExpenseRepository) ListExpensesByMonth(ctx context.Context, userID uuid.UUID, month time.Time) ([]Expense, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	end := start.AddDate(0, 1, 0)

	rows, err := r.pgpool.Query(ctx, listExpensesByMonthQuery, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses, err := pgx.CollectRows(rows, pgx.RowToStructByName[Expense])
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses: %w", err)
	}

	return expenses, nil
}
