package httpapi

import (
	"net/http"

	"dukaan/backend/internal/domain"
)

func (a *API) handleListExpenseCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.service.ListExpenseCategories(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, categories, "")
}

func (a *API) handleCreateExpenseCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseCategoryRequest
	if !a.decode(w, r, &req) {
		return
	}
	category, err := a.service.CreateExpenseCategory(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, category, "Expense category created")
}

func (a *API) handleUpdateExpenseCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.ExpenseCategoryRequest
	if !a.decode(w, r, &req) {
		return
	}
	category, err := a.service.UpdateExpenseCategory(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, category, "Expense category updated")
}

func (a *API) handleDeleteExpenseCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteExpenseCategory(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "Expense category deleted")
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := domain.ExpenseFilter{
		BranchID:   q.id("branch_id"),
		CategoryID: q.id("category_id"),
		Limit:      q.limit(),
	}
	filter.From, filter.To = q.dateRange()
	if q.err != nil {
		a.fail(w, r, q.err)
		return
	}

	expenses, err := a.service.ListExpenses(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, expenses, "")
}

func (a *API) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	expense, err := a.service.GetExpense(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, expense, "")
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseRequest
	if !a.decode(w, r, &req) {
		return
	}
	expense, err := a.service.CreateExpense(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, expense, "Expense recorded")
}

func (a *API) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.ExpenseRequest
	if !a.decode(w, r, &req) {
		return
	}
	expense, err := a.service.UpdateExpense(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, expense, "Expense updated")
}

func (a *API) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteExpense(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "Expense deleted")
}
