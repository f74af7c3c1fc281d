package services

import (
	"context"
	"fmt"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
)

// ExpenseService orchestrates expense use cases.
type ExpenseService struct {
	store store.Store
}

func NewExpenseService(s store.Store) *ExpenseService { return &ExpenseService{store: s} }

func (s *ExpenseService) CreateExpense(ctx context.Context, e *model.Expense) (*model.Expense, error) {
	if e.Amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative: %w", model.ErrValidation)
	}
	if e.Date.IsZero() {
		return nil, fmt.Errorf("date is required: %w", model.ErrValidation)
	}
	if e.Category == "" {
		return nil, fmt.Errorf("category is required: %w", model.ErrValidation)
	}
	return s.store.Expenses().Create(ctx, e)
}

func (s *ExpenseService) GetExpense(ctx context.Context, userID, expenseID string) (*model.Expense, error) {
	return s.store.Expenses().GetByID(ctx, userID, expenseID)
}

func (s *ExpenseService) ListExpensesByDate(ctx context.Context, userID string, date model.Date) ([]*model.Expense, error) {
	return s.store.Expenses().ListByUserAndDate(ctx, userID, date)
}

// DailyTotal returns the summed spend for the date, 0 if none.
func (s *ExpenseService) DailyTotal(ctx context.Context, userID string, date model.Date) (float64, error) {
	return s.store.Expenses().SumByUserAndDate(ctx, userID, date)
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, userID, expenseID string, p model.ExpensePatch) (*model.Expense, error) {
	return s.store.Expenses().Update(ctx, userID, expenseID, p)
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	return s.store.Expenses().Delete(ctx, userID, expenseID)
}
