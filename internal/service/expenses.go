package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dukaan/backend/internal/domain"
)

func (s *Service) ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListExpenseCategories(ctx)
}

func (s *Service) CreateExpenseCategory(ctx context.Context, req domain.ExpenseCategoryRequest) (*domain.ExpenseCategory, error) {
	if _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidField("name", "name is required")
	}
	created, err := s.repo.CreateExpenseCategory(ctx, domain.ExpenseCategory{Name: name})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "expense_category_create", "expense_category", created.ID, "name="+created.Name)
	return created, nil
}

func (s *Service) UpdateExpenseCategory(ctx context.Context, id int64, req domain.ExpenseCategoryRequest) (*domain.ExpenseCategory, error) {
	if _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetExpenseCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category := *existing
	category.Name = strings.TrimSpace(req.Name)
	saved, err := s.repo.UpdateExpenseCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "expense_category_update", "expense_category", saved.ID, "")
	return saved, nil
}

func (s *Service) DeleteExpenseCategory(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.DeleteExpenseCategory(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "expense_category_delete", "expense_category", id, "")
	return nil
}

func (s *Service) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	return s.repo.ListExpenses(ctx, filter)
}

func (s *Service) GetExpense(ctx context.Context, id int64) (*domain.Expense, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	return s.repo.GetExpense(ctx, id)
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error) {
	actor, err := requireRole(ctx, managers...)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if req.Amount == nil {
		return nil, invalidField("amount", "amount is required")
	}

	expense := domain.Expense{
		BranchID:    req.BranchID,
		ExpenseDate: s.now().UTC().Truncate(24 * time.Hour),
		CreatedBy:   actor.UserID,
	}
	if expense.BranchID == nil {
		expense.BranchID = actor.BranchID
	}
	if err := s.applyExpense(&expense, req); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "expense_create", "expense", created.ID, fmt.Sprintf("amount=%s", created.Amount))
	return created, nil
}

func (s *Service) UpdateExpense(ctx context.Context, id int64, req domain.ExpenseRequest) (*domain.Expense, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	expense := *existing
	if req.BranchID != nil {
		expense.BranchID = req.BranchID
	}
	if err := s.applyExpense(&expense, req); err != nil {
		return nil, err
	}
	saved, err := s.repo.UpdateExpense(ctx, expense)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "expense_update", "expense", saved.ID, fmt.Sprintf("amount=%s", saved.Amount))
	return saved, nil
}

func (s *Service) applyExpense(expense *domain.Expense, req domain.ExpenseRequest) error {
	if req.Amount != nil {
		if err := checkPositive("amount", *req.Amount); err != nil {
			return err
		}
		expense.Amount = *req.Amount
	}
	if req.CategoryID != nil {
		expense.CategoryID = req.CategoryID
	}
	if req.ExpenseDate != nil {
		date, err := parseDate("expense_date", *req.ExpenseDate)
		if err != nil {
			return err
		}
		expense.ExpenseDate = date
	}
	setString(&expense.Description, req.Description)
	setString(&expense.PaidTo, req.PaidTo)
	return nil
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, managers...); err != nil {
		return err
	}
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "expense_delete", "expense", id, "")
	return nil
}
