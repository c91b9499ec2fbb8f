package httpapi

import (
	"net/http"

	"dukaan/backend/internal/domain"
)

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := domain.SaleFilter{
		BranchID:   q.id("branch_id"),
		CustomerID: q.id("customer_id"),
		Limit:      q.limit(),
	}
	filter.From, filter.To = q.dateRange()
	if q.err != nil {
		a.fail(w, r, q.err)
		return
	}

	sales, err := a.service.ListSales(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, sales, "")
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCreateRequest
	if !a.decode(w, r, &req) {
		return
	}
	sale, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, sale, "Sale completed")
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	sale, err := a.service.GetSale(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, sale, "")
}

func (a *API) handleSaleReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	receipt, err := a.service.SaleReceipt(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, receipt, "")
}

func (a *API) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := domain.PurchaseFilter{
		BranchID:   q.id("branch_id"),
		SupplierID: q.id("supplier_id"),
		Limit:      q.limit(),
	}
	filter.From, filter.To = q.dateRange()
	if q.err != nil {
		a.fail(w, r, q.err)
		return
	}

	purchases, err := a.service.ListPurchases(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, purchases, "")
}

func (a *API) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseCreateRequest
	if !a.decode(w, r, &req) {
		return
	}
	purchase, err := a.service.CreatePurchase(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, purchase, "Purchase recorded")
}

func (a *API) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	purchase, err := a.service.GetPurchase(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, purchase, "")
}

func (a *API) handleListStockAdjustments(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := domain.AdjustmentFilter{
		BranchID:  q.id("branch_id"),
		ProductID: q.id("product_id"),
		Limit:     q.limit(),
	}
	filter.From, filter.To = q.dateRange()
	if q.err != nil {
		a.fail(w, r, q.err)
		return
	}

	adjustments, err := a.service.ListStockAdjustments(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, adjustments, "")
}

func (a *API) handleCreateStockAdjustment(w http.ResponseWriter, r *http.Request) {
	var req domain.StockAdjustmentRequest
	if !a.decode(w, r, &req) {
		return
	}
	adjustment, err := a.service.CreateStockAdjustment(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, adjustment, "Stock adjusted")
}

func (a *API) handleGetStockAdjustment(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	adjustment, err := a.service.GetStockAdjustment(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, adjustment, "")
}
