// Package repository provides data access for expenses and their categories.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category is a spending category users file expenses under.
type Category struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Expense is a saved expense. AmountMinor is in sen.
type Expense struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	CategoryID   uuid.UUID `db:"category_id"`
	CategoryName string    `db:"category_name"`
	AmountMinor  int64     `db:"amount_minor"`
	Currency     string    `db:"currency_code"`
	Merchant     string    `db:"merchant"`
	Date         time.Time `db:"expense_date"`
	Notes        *string   `db:"notes"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ExpenseRepository defines data access operations for expenses
type ExpenseRepository interface {
	// Categories
	ListCategories(ctx context.Context) ([]Category, error)

	// Expenses, always scoped to their owner
	CreateExpense(ctx context.Context, expense *Expense) error
	UpdateExpense(ctx context.Context, expense *Expense) error
	DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error
	ListExpensesByMonth(ctx context.Context, userID uuid.UUID, month time.Time) ([]Expense, error)
}
