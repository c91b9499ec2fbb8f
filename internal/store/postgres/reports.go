package postgres

import (
	"context"

	"dukaan/backend/internal/domain"
)

func reportWhere(filter domain.ReportFilter, dateColumn string) *where {
	w := &where{}
	if filter.BranchID != nil {
		w.add(`branch_id = $%d`, *filter.BranchID)
	}
	w.dateRange(dateColumn, filter.From, filter.To)
	return w
}

func (s *Store) SalesByPaymentMethod(ctx context.Context, filter domain.ReportFilter) ([]domain.SalesByPaymentRow, error) {
	w := reportWhere(filter, "sale_date")
	rows := []domain.SalesByPaymentRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT branch_id, payment_method,
			COALESCE(SUM(total_amount), 0) AS total_amount,
			COUNT(*) AS total_sales,
			COALESCE(SUM(paid_amount), 0) AS paid_amount
		FROM sales`+w.String()+`
		GROUP BY branch_id, payment_method
		ORDER BY branch_id, payment_method`, w.args...)
	return rows, err
}

func (s *Store) DailySales(ctx context.Context, filter domain.ReportFilter) ([]domain.DailySalesRow, error) {
	w := reportWhere(filter, "sale_date")
	rows := []domain.DailySalesRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT to_char(sale_date AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS date, branch_id,
			COALESCE(SUM(total_amount), 0) AS total_amount,
			COUNT(*) AS total_sales,
			COALESCE(SUM(paid_amount), 0) AS paid_amount
		FROM sales`+w.String()+`
		GROUP BY 1, branch_id
		ORDER BY 1 DESC, branch_id`, w.args...)
	return rows, err
}

func (s *Store) StockLevels(ctx context.Context, threshold *int64) ([]domain.StockLevelRow, error) {
	w := &where{clauses: []string{`status = 'active'`}}
	if threshold != nil {
		w.add(`COALESCE(stock_qty, 0) <= $%d`, *threshold)
	}
	rows := []domain.StockLevelRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, code, name_en, name_ur, COALESCE(stock_qty, 0) AS stock_qty, min_stock_level,
			COALESCE(stock_qty, 0) <= min_stock_level AS is_low_stock
		FROM products`+w.String()+`
		ORDER BY 5, id`, w.args...)
	return rows, err
}

func (s *Store) LowStock(ctx context.Context) ([]domain.LowStockRow, error) {
	rows := []domain.LowStockRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, code, name_en, name_ur, COALESCE(stock_qty, 0) AS stock_qty, min_stock_level,
			min_stock_level - COALESCE(stock_qty, 0) AS difference
		FROM products
		WHERE status = 'active' AND COALESCE(stock_qty, 0) <= min_stock_level
		ORDER BY difference DESC, id`)
	return rows, err
}

func (s *Store) PurchasesBySupplier(ctx context.Context, filter domain.ReportFilter) ([]domain.PurchaseSummaryRow, error) {
	return s.purchaseSummary(ctx, filter, "supplier_id")
}

func (s *Store) PurchasesByBranch(ctx context.Context, filter domain.ReportFilter) ([]domain.PurchaseSummaryRow, error) {
	return s.purchaseSummary(ctx, filter, "branch_id")
}

func (s *Store) purchaseSummary(ctx context.Context, filter domain.ReportFilter, groupColumn string) ([]domain.PurchaseSummaryRow, error) {
	w := reportWhere(filter, "purchase_date")
	rows := []domain.PurchaseSummaryRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+groupColumn+` AS group_id,
			COUNT(*) AS total_purchases,
			COALESCE(SUM(total_amount), 0) AS total_amount,
			COALESCE(SUM(paid_amount), 0) AS paid_amount,
			COALESCE(SUM(due_amount), 0) AS due_amount
		FROM purchases`+w.String()+`
		GROUP BY `+groupColumn+`
		ORDER BY `+groupColumn, w.args...)
	return rows, err
}

func (s *Store) ExpensesByCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.ExpenseSummaryRow, error) {
	return s.expenseSummary(ctx, filter, "category_id")
}

func (s *Store) ExpensesByBranch(ctx context.Context, filter domain.ReportFilter) ([]domain.ExpenseSummaryRow, error) {
	return s.expenseSummary(ctx, filter, "branch_id")
}

func (s *Store) expenseSummary(ctx context.Context, filter domain.ReportFilter, groupColumn string) ([]domain.ExpenseSummaryRow, error) {
	w := reportWhere(filter, "expense_date")
	rows := []domain.ExpenseSummaryRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+groupColumn+` AS group_id,
			COUNT(*) AS total_expenses,
			COALESCE(SUM(amount), 0) AS total_amount
		FROM expenses`+w.String()+`
		GROUP BY `+groupColumn+`
		ORDER BY `+groupColumn+` NULLS FIRST`, w.args...)
	return rows, err
}
