package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dukaan/backend/internal/domain"
)

func (s *Store) SalesByPaymentMethod(_ context.Context, filter domain.ReportFilter) ([]domain.SalesByPaymentRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		branch int64
		method domain.PaymentMethod
	}
	groups := map[key]*domain.SalesByPaymentRow{}
	for _, sale := range s.sales {
		if !matchesReport(filter, &sale.BranchID, sale.SaleDate) {
			continue
		}
		k := key{sale.BranchID, sale.PaymentMethod}
		row, ok := groups[k]
		if !ok {
			row = &domain.SalesByPaymentRow{BranchID: sale.BranchID, PaymentMethod: sale.PaymentMethod}
			groups[k] = row
		}
		row.TotalAmount = row.TotalAmount.Add(sale.TotalAmount)
		row.PaidAmount = row.PaidAmount.Add(sale.PaidAmount)
		row.TotalSales++
	}

	rows := make([]domain.SalesByPaymentRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b domain.SalesByPaymentRow) int {
		if c := cmp.Compare(a.BranchID, b.BranchID); c != 0 {
			return c
		}
		return strings.Compare(string(a.PaymentMethod), string(b.PaymentMethod))
	})
	return rows, nil
}

func (s *Store) DailySales(_ context.Context, filter domain.ReportFilter) ([]domain.DailySalesRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		date   string
		branch int64
	}
	groups := map[key]*domain.DailySalesRow{}
	for _, sale := range s.sales {
		if !matchesReport(filter, &sale.BranchID, sale.SaleDate) {
			continue
		}
		k := key{sale.SaleDate.UTC().Format("2006-01-02"), sale.BranchID}
		row, ok := groups[k]
		if !ok {
			row = &domain.DailySalesRow{Date: k.date, BranchID: k.branch}
			groups[k] = row
		}
		row.TotalAmount = row.TotalAmount.Add(sale.TotalAmount)
		row.PaidAmount = row.PaidAmount.Add(sale.PaidAmount)
		row.TotalSales++
	}

	rows := make([]domain.DailySalesRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b domain.DailySalesRow) int {
		if c := strings.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.BranchID, b.BranchID)
	})
	return rows, nil
}

func (s *Store) StockLevels(_ context.Context, threshold *int64) ([]domain.StockLevelRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.StockLevelRow, 0, len(s.products))
	for _, p := range s.products {
		if p.Status != domain.ProductActive {
			continue
		}
		if threshold != nil && p.StockQty.GreaterThan(decimal.NewFromInt(*threshold)) {
			continue
		}
		rows = append(rows, domain.StockLevelRow{
			ID:            p.ID,
			Code:          p.Code,
			NameEn:        p.NameEn,
			NameUr:        p.NameUr,
			StockQty:      p.StockQty,
			MinStockLevel: p.MinStockLevel,
			IsLowStock:    p.StockQty.LessThanOrEqual(decimal.NewFromInt(p.MinStockLevel)),
		})
	}
	slices.SortFunc(rows, func(a, b domain.StockLevelRow) int {
		if c := a.StockQty.Cmp(b.StockQty); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rows, nil
}

func (s *Store) LowStock(_ context.Context) ([]domain.LowStockRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.LowStockRow, 0)
	for _, p := range s.products {
		minimum := decimal.NewFromInt(p.MinStockLevel)
		if p.Status != domain.ProductActive || p.StockQty.GreaterThan(minimum) {
			continue
		}
		rows = append(rows, domain.LowStockRow{
			ID:            p.ID,
			Code:          p.Code,
			NameEn:        p.NameEn,
			NameUr:        p.NameUr,
			StockQty:      p.StockQty,
			MinStockLevel: p.MinStockLevel,
			Difference:    minimum.Sub(p.StockQty),
		})
	}
	slices.SortFunc(rows, func(a, b domain.LowStockRow) int {
		if c := b.Difference.Cmp(a.Difference); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rows, nil
}

func (s *Store) PurchasesBySupplier(_ context.Context, filter domain.ReportFilter) ([]domain.PurchaseSummaryRow, error) {
	return s.purchaseSummary(filter, func(p domain.Purchase) int64 { return p.SupplierID }), nil
}

func (s *Store) PurchasesByBranch(_ context.Context, filter domain.ReportFilter) ([]domain.PurchaseSummaryRow, error) {
	return s.purchaseSummary(filter, func(p domain.Purchase) int64 { return p.BranchID }), nil
}

func (s *Store) purchaseSummary(filter domain.ReportFilter, group func(domain.Purchase) int64) []domain.PurchaseSummaryRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := map[int64]*domain.PurchaseSummaryRow{}
	for _, p := range s.purchases {
		if !matchesReport(filter, &p.BranchID, p.PurchaseDate) {
			continue
		}
		id := group(p)
		row, ok := groups[id]
		if !ok {
			row = &domain.PurchaseSummaryRow{GroupID: id}
			groups[id] = row
		}
		row.TotalPurchases++
		row.TotalAmount = row.TotalAmount.Add(p.TotalAmount)
		row.PaidAmount = row.PaidAmount.Add(p.PaidAmount)
		row.DueAmount = row.DueAmount.Add(p.DueAmount)
	}

	rows := make([]domain.PurchaseSummaryRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b domain.PurchaseSummaryRow) int { return cmp.Compare(a.GroupID, b.GroupID) })
	return rows
}

func (s *Store) ExpensesByCategory(_ context.Context, filter domain.ReportFilter) ([]domain.ExpenseSummaryRow, error) {
	return s.expenseSummary(filter, func(e domain.Expense) *int64 { return e.CategoryID }), nil
}

func (s *Store) ExpensesByBranch(_ context.Context, filter domain.ReportFilter) ([]domain.ExpenseSummaryRow, error) {
	return s.expenseSummary(filter, func(e domain.Expense) *int64 { return e.BranchID }), nil
}

func (s *Store) expenseSummary(filter domain.ReportFilter, group func(domain.Expense) *int64) []domain.ExpenseSummaryRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// -1 collects expenses without a group.
	const ungrouped int64 = -1
	groups := map[int64]*domain.ExpenseSummaryRow{}
	for _, e := range s.expenses {
		if !matchesReport(filter, e.BranchID, e.ExpenseDate) {
			continue
		}
		key := ungrouped
		if id := group(e); id != nil {
			key = *id
		}
		row, ok := groups[key]
		if !ok {
			row = &domain.ExpenseSummaryRow{}
			if key != ungrouped {
				id := key
				row.GroupID = &id
			}
			groups[key] = row
		}
		row.TotalExpenses++
		row.TotalAmount = row.TotalAmount.Add(e.Amount)
	}

	rows := make([]domain.ExpenseSummaryRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b domain.ExpenseSummaryRow) int {
		return cmp.Compare(groupKey(a.GroupID), groupKey(b.GroupID))
	})
	return rows
}

func groupKey(id *int64) int64 {
	if id == nil {
		return -1
	}
	return *id
}

func matchesReport(filter domain.ReportFilter, branchID *int64, at time.Time) bool {
	if filter.BranchID != nil && (branchID == nil || *branchID != *filter.BranchID) {
		return false
	}
	return inRange(at, filter.From, filter.To)
}
