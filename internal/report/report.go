// Package report renders report rows as spreadsheet downloads.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"dukaan/backend/internal/domain"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

// WriteXLSX writes one sheet per table. At least one table is required.
func WriteXLSX(w io.Writer, tables ...Table) error {
	if len(tables) == 0 {
		return errors.New("no tables to write")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, table := range tables {
		sheet := table.Sheet
		if sheet == "" {
			sheet = fmt.Sprintf("Report %d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeTable(f, sheet, table); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeTable(f *excelize.File, sheet string, table Table) error {
	for col, header := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	for i, row := range table.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func cellValue(value any) any {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.InexactFloat64()
	case *int64:
		if v == nil {
			return ""
		}
		return *v
	}
	return value
}

func SalesByPayment(rows []domain.SalesByPaymentRow) Table {
	t := Table{Sheet: "Sales by payment", Headers: []string{"Branch", "Payment method", "Sales", "Total amount", "Paid amount"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.BranchID, string(r.PaymentMethod), r.TotalSales, r.TotalAmount, r.PaidAmount})
	}
	return t
}

func DailySales(rows []domain.DailySalesRow) Table {
	t := Table{Sheet: "Daily sales", Headers: []string{"Date", "Branch", "Sales", "Total amount", "Paid amount"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Date, r.BranchID, r.TotalSales, r.TotalAmount, r.PaidAmount})
	}
	return t
}

func StockLevels(rows []domain.StockLevelRow) Table {
	t := Table{Sheet: "Stock levels", Headers: []string{"Code", "Name", "Name (Urdu)", "Stock", "Minimum", "Low stock"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Code, r.NameEn, r.NameUr, r.StockQty, r.MinStockLevel, strconv.FormatBool(r.IsLowStock)})
	}
	return t
}

func LowStock(rows []domain.LowStockRow) Table {
	t := Table{Sheet: "Low stock", Headers: []string{"Code", "Name", "Name (Urdu)", "Stock", "Minimum", "Short by"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Code, r.NameEn, r.NameUr, r.StockQty, r.MinStockLevel, r.Difference})
	}
	return t
}

func PurchaseSummary(groupLabel string, rows []domain.PurchaseSummaryRow) Table {
	t := Table{Sheet: "Purchases by " + strings.ToLower(groupLabel), Headers: []string{groupLabel, "Purchases", "Total amount", "Paid amount", "Due amount"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.GroupID, r.TotalPurchases, r.TotalAmount, r.PaidAmount, r.DueAmount})
	}
	return t
}

func ExpenseSummary(groupLabel string, rows []domain.ExpenseSummaryRow) Table {
	t := Table{Sheet: "Expenses by " + strings.ToLower(groupLabel), Headers: []string{groupLabel, "Expenses", "Total amount"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.GroupID, r.TotalExpenses, r.TotalAmount})
	}
	return t
}

func Sales(r *domain.SalesReport) []Table {
	return []Table{SalesByPayment(r.ByPaymentMethod), DailySales(r.Daily)}
}

func Stock(r *domain.StockReport) []Table {
	return []Table{StockLevels(r.Levels), LowStock(r.LowStock)}
}

func Purchases(r *domain.PurchaseReport) []Table {
	return []Table{PurchaseSummary("Supplier", r.BySupplier), PurchaseSummary("Branch", r.ByBranch)}
}

func Expenses(r *domain.ExpenseReport) []Table {
	return []Table{ExpenseSummary("Category", r.ByCategory), ExpenseSummary("Branch", r.ByBranch)}
}
