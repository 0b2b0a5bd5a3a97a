// Package handler implements the ExpenseService Connect RPC handlers.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/common"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/parser"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/service"
	"github.com/FACorreiaa/smart-expense-tracker/pkg/interceptors"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "expense.v1.ExpenseService"

// Procedure paths, as routed by the HTTP mux and matched by interceptors.
const (
	ExpenseServiceParseExpenseProcedure   = "/" + ExpenseServiceName + "/ParseExpense"
	ExpenseServiceParseExpensesProcedure  = "/" + ExpenseServiceName + "/ParseExpenses"
	ExpenseServiceCreateExpenseProcedure  = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceUpdateExpenseProcedure  = "/" + ExpenseServiceName + "/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure  = "/" + ExpenseServiceName + "/DeleteExpense"
	ExpenseServiceListExpensesProcedure   = "/" + ExpenseServiceName + "/ListExpenses"
	ExpenseServiceListCategoriesProcedure = "/" + ExpenseServiceName + "/ListCategories"
)

// ExpenseService is the behaviour the handler needs from the service layer.
type ExpenseService interface {
	Parse(ctx context.Context, text string) (parser.ParsedExpense, error)
	ParseBatch(ctx context.Context, lines []string) ([]service.BatchResult, error)
	CreateFromText(ctx context.Context, userID uuid.UUID, text string, categoryID *uuid.UUID) (*repository.Expense, parser.ParsedExpense, error)
	CreateExpense(ctx context.Context, userID uuid.UUID, input service.ExpenseInput) (*repository.Expense, error)
	UpdateExpense(ctx context.Context, userID uuid.UUID, input service.ExpenseInput) error
	DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error
	ListExpenses(ctx context.Context, userID uuid.UUID, month string) ([]repository.Expense, error)
	ListCategories(ctx context.Context) ([]repository.Category, error)
}

var _ ExpenseService = (*service.ExpenseService)(nil)

// ExpenseHandler implements the ExpenseService Connect handlers.
type ExpenseHandler struct {
	svc ExpenseService
}

// NewExpenseHandler constructs a new handler.
func NewExpenseHandler(svc ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

// NewExpenseServiceHandler builds an HTTP handler serving every ExpenseService procedure
// and returns the path to mount it on.
func NewExpenseServiceHandler(h *ExpenseHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceParseExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceParseExpenseProcedure, h.ParseExpense, opts...))
	mux.Handle(ExpenseServiceParseExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceParseExpensesProcedure, h.ParseExpenses, opts...))
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, h.CreateExpense, opts...))
	mux.Handle(ExpenseServiceUpdateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, h.UpdateExpense, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, h.DeleteExpense, opts...))
	mux.Handle(ExpenseServiceListExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, h.ListExpenses, opts...))
	mux.Handle(ExpenseServiceListCategoriesProcedure, connect.NewUnaryHandler(ExpenseServiceListCategoriesProcedure, h.ListCategories, opts...))

	return "/" + ExpenseServiceName + "/", mux
}

// ParseExpense previews how a sentence would be read without saving it.
func (h *ExpenseHandler) ParseExpense(
	ctx context.Context,
	req *connect.Request[ParseExpenseRequest],
) (*connect.Response[ParseExpenseResponse], error) {
	parsed, err := h.svc.Parse(ctx, req.Msg.Text)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ParseExpenseResponse{Parsed: ToParsedExpense(parsed)}), nil
}

// ParseExpenses previews many sentences at once, one per line.
func (h *ExpenseHandler) ParseExpenses(
	ctx context.Context,
	req *connect.Request[ParseExpensesRequest],
) (*connect.Response[ParseExpensesResponse], error) {
	results, err := h.svc.ParseBatch(ctx, req.Msg.Lines)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ParseExpensesResponse{Results: ToParsedLines(results)}), nil
}

// CreateExpense saves an expense from free text or from structured fields.
func (h *ExpenseHandler) CreateExpense(
	ctx context.Context,
	req *connect.Request[CreateExpenseRequest],
) (*connect.Response[CreateExpenseResponse], error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if req.Msg.Text != "" {
		var categoryID *uuid.UUID
		if req.Msg.CategoryID != "" {
			id, err := parseID("category_id", req.Msg.CategoryID)
			if err != nil {
				return nil, err
			}
			categoryID = &id
		}

		expense, parsed, err := h.svc.CreateFromText(ctx, userID, req.Msg.Text, categoryID)
		if err != nil {
			return nil, toConnectError(err)
		}
		msg := ToParsedExpense(parsed)
		return connect.NewResponse(&CreateExpenseResponse{Expense: toExpense(expense), Parsed: &msg}), nil
	}

	input, err := toInput("", req.Msg.CategoryID, req.Msg.AmountMinor, req.Msg.Merchant, req.Msg.Date, req.Msg.Notes)
	if err != nil {
		return nil, err
	}
	expense, err := h.svc.CreateExpense(ctx, userID, input)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CreateExpenseResponse{Expense: toExpense(expense)}), nil
}

func (h *ExpenseHandler) UpdateExpense(
	ctx context.Context,
	req *connect.Request[UpdateExpenseRequest],
) (*connect.Response[UpdateExpenseResponse], error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	input, err := toInput(req.Msg.ID, req.Msg.CategoryID, req.Msg.AmountMinor, req.Msg.Merchant, req.Msg.Date, req.Msg.Notes)
	if err != nil {
		return nil, err
	}
	if err := h.svc.UpdateExpense(ctx, userID, input); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpdateExpenseResponse{}), nil
}

func (h *ExpenseHandler) DeleteExpense(
	ctx context.Context,
	req *connect.Request[DeleteExpenseRequest],
) (*connect.Response[DeleteExpenseResponse], error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	expenseID, err := parseID("id", req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteExpense(ctx, userID, expenseID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}

// ListExpenses returns a month of expenses and their total.
func (h *ExpenseHandler) ListExpenses(
	ctx context.Context,
	req *connect.Request[ListExpensesRequest],
) (*connect.Response[ListExpensesResponse], error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := h.svc.ListExpenses(ctx, userID, req.Msg.Month)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &ListExpensesResponse{Expenses: make([]Expense, 0, len(expenses))}
	for i := range expenses {
		resp.Expenses = append(resp.Expenses, toExpense(&expenses[i]))
		resp.TotalMinor += expenses[i].AmountMinor
	}
	return connect.NewResponse(resp), nil
}

func (h *ExpenseHandler) ListCategories(
	ctx context.Context,
	_ *connect.Request[ListCategoriesRequest],
) (*connect.Response[ListCategoriesResponse], error) {
	categories, err := h.svc.ListCategories(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &ListCategoriesResponse{Categories: make([]Category, 0, len(categories))}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, Category{ID: c.ID.String(), Name: c.Name})
	}
	return connect.NewResponse(resp), nil
}

func userIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userIDStr, ok := interceptors.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		return uuid.Nil, connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid user ID in context"))
	}
	return userID, nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		verr := &common.ValidationError{}
		verr.Add(field, "must be a valid UUID")
		return uuid.Nil, connect.NewError(connect.CodeInvalidArgument, verr)
	}
	return id, nil
}

// toInput converts wire fields. Empty ids are left nil for the service to report.
func toInput(id, categoryID string, amountMinor int64, merchant, date, notes string) (service.ExpenseInput, error) {
	verr := &common.ValidationError{}
	input := service.ExpenseInput{AmountMinor: amountMinor, Merchant: merchant, Notes: notes}

	if id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			verr.Add("id", "must be a valid UUID")
		}
		input.ID = parsed
	}
	if categoryID != "" {
		parsed, err := uuid.Parse(categoryID)
		if err != nil {
			verr.Add("category_id", "must be a valid UUID")
		}
		input.CategoryID = parsed
	}
	if date != "" {
		parsed, err := parseDate(date)
		if err != nil {
			verr.Add("date", "must be YYYY-MM-DD or RFC 3339")
		}
		input.Date = parsed
	}

	if err := verr.OrNil(); err != nil {
		return service.ExpenseInput{}, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return input, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, common.ErrBadRequest),
		errors.Is(err, common.ErrNotReadyToSave),
		errors.Is(err, service.ErrCategoryNotFound):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, common.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, common.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
