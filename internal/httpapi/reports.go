package httpapi

import (
	"net/http"

	"dukaan/backend/internal/report"
)

func (a *API) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := q.reportFilter()
	if q.err != nil {
		a.fail(w, r, q.err)
		return
	}
	result, err := a.service.SalesReport(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if wantsXLSX(r) {
		a.writeWorkbook(w, r, "sales-report", report.Sales(result))
		return
	}
	a.ok(w, r, result, "")
}

func (a *API) handlePurchaseReport(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := q.reportFilter()
	if q.err != nil {
		a.fail(w, r, q.err)
		return
	}
	result, err := a.service.PurchaseReport(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if wantsXLSX(r) {
		a.writeWorkbook(w, r, "purchase-report", report.Purchases(result))
		return
	}
	a.ok(w, r, result, "")
}

func (a *API) handleExpenseReport(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := q.reportFilter()
	if q.err != nil {
		a.fail(w, r, q.err)
		return
	}
	result, err := a.service.ExpenseReport(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if wantsXLSX(r) {
		a.writeWorkbook(w, r, "expense-report", report.Expenses(result))
		return
	}
	a.ok(w, r, result, "")
}

func (a *API) handleStockReport(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	threshold := q.integer("threshold")
	if q.err != nil {
		a.fail(w, r, q.err)
		return
	}
	result, err := a.service.StockReport(r.Context(), threshold)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if wantsXLSX(r) {
		a.writeWorkbook(w, r, "stock-report", report.Stock(result))
		return
	}
	a.ok(w, r, result, "")
}
