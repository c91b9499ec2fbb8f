package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReportFilter struct {
	BranchID *int64
	From     *time.Time
	To       *time.Time
}

type SalesByPaymentRow struct {
	BranchID      int64           `json:"branch_id" db:"branch_id"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	TotalSales    int64           `json:"total_sales" db:"total_sales"`
	PaidAmount    decimal.Decimal `json:"paid_amount" db:"paid_amount"`
}

type DailySalesRow struct {
	Date        string          `json:"date" db:"date"`
	BranchID    int64           `json:"branch_id" db:"branch_id"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	TotalSales  int64           `json:"total_sales" db:"total_sales"`
	PaidAmount  decimal.Decimal `json:"paid_amount" db:"paid_amount"`
}

type StockLevelRow struct {
	ID            int64           `json:"id" db:"id"`
	Code          string          `json:"code" db:"code"`
	NameEn        string          `json:"name_en" db:"name_en"`
	NameUr        string          `json:"name_ur" db:"name_ur"`
	StockQty      decimal.Decimal `json:"stock_qty" db:"stock_qty"`
	MinStockLevel int64           `json:"min_stock_level" db:"min_stock_level"`
	IsLowStock    bool            `json:"is_low_stock" db:"is_low_stock"`
}

type LowStockRow struct {
	ID            int64           `json:"id" db:"id"`
	Code          string          `json:"code" db:"code"`
	NameEn        string          `json:"name_en" db:"name_en"`
	NameUr        string          `json:"name_ur" db:"name_ur"`
	StockQty      decimal.Decimal `json:"stock_qty" db:"stock_qty"`
	MinStockLevel int64           `json:"min_stock_level" db:"min_stock_level"`
	Difference    decimal.Decimal `json:"difference" db:"difference"`
}

type PurchaseSummaryRow struct {
	GroupID        int64           `json:"group_id" db:"group_id"`
	TotalPurchases int64           `json:"total_purchases" db:"total_purchases"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	DueAmount      decimal.Decimal `json:"due_amount" db:"due_amount"`
}

type ExpenseSummaryRow struct {
	GroupID       *int64          `json:"group_id" db:"group_id"`
	TotalExpenses int64           `json:"total_expenses" db:"total_expenses"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
}

type SalesReport struct {
	ByPaymentMethod []SalesByPaymentRow `json:"by_payment_method"`
	Daily           []DailySalesRow     `json:"daily"`
}

type StockReport struct {
	Levels   []StockLevelRow `json:"levels"`
	LowStock []LowStockRow   `json:"low_stock"`
}

type PurchaseReport struct {
	BySupplier []PurchaseSummaryRow `json:"by_supplier"`
	ByBranch   []PurchaseSummaryRow `json:"by_branch"`
}

type ExpenseReport struct {
	ByCategory []ExpenseSummaryRow `json:"by_category"`
	ByBranch   []ExpenseSummaryRow `json:"by_branch"`
}
