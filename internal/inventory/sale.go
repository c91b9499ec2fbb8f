package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"dukaan/backend/internal/domain"
)

type SaleInput struct {
	BranchID         int64
	CustomerID       *int64
	CustomerName     string
	InvoiceNo        string
	Lines            []domain.SaleLineRequest
	PaymentMethod    domain.PaymentMethod
	PaymentDetails   domain.PaymentSplits
	IsCreditSale     bool
	FBRInvoiceNumber *int64
	CreatedBy        int64
}

// PlanSale prices every line and checks stock against the snapshot before
// anything is written. Lines for the same product are checked against their
// running total.
func PlanSale(products map[int64]domain.Product, in SaleInput, now time.Time) (*UnitOfWork, error) {
	var (
		subtotal      decimal.Decimal
		totalDiscount decimal.Decimal
		totalGST      decimal.Decimal
	)

	items := make([]domain.SaleItem, 0, len(in.Lines))
	requested := newDeltaBuilder(len(in.Lines))

	for _, line := range in.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, domain.NotFound("product", line.ProductID)
		}

		wanted := requested.add(product.ID, line.Qty)
		if product.StockQty.LessThan(wanted) {
			return nil, &domain.InsufficientStockError{
				ProductID: product.ID,
				Code:      product.Code,
				Available: product.StockQty,
				Requested: wanted,
			}
		}

		discountPerItem := decimal.Zero
		if line.DiscountPerItem != nil {
			discountPerItem = *line.DiscountPerItem
		}
		rate := EffectiveGSTPercent(line.GSTPercent, product)

		lineSubtotal := line.UnitPrice.Mul(line.Qty)
		lineDiscount := discountPerItem.Mul(line.Qty)
		lineGST := lineSubtotal.Sub(lineDiscount).Mul(rate.Shift(percentShift))
		lineTotal := lineSubtotal.Sub(lineDiscount).Add(lineGST)

		subtotal = subtotal.Add(lineSubtotal)
		totalDiscount = totalDiscount.Add(lineDiscount)
		totalGST = totalGST.Add(lineGST)

		items = append(items, domain.SaleItem{
			ProductID:       product.ID,
			Qty:             line.Qty,
			UnitPrice:       line.UnitPrice,
			DiscountPerItem: discountPerItem,
			GSTPercent:      rate,
			TotalPrice:      lineTotal,
		})
	}

	totalAmount := subtotal.Sub(totalDiscount).Add(totalGST)
	paidAmount := totalAmount
	if in.IsCreditSale {
		paidAmount = decimal.Zero
	}

	sale := &domain.Sale{
		BranchID:         in.BranchID,
		CustomerID:       in.CustomerID,
		CustomerName:     in.CustomerName,
		InvoiceNo:        in.InvoiceNo,
		SaleDate:         now.UTC(),
		Subtotal:         subtotal,
		DiscountAmount:   totalDiscount,
		GSTAmount:        totalGST,
		FurtherTaxAmount: decimal.Zero,
		TotalAmount:      totalAmount,
		PaidAmount:       paidAmount,
		PaymentMethod:    in.PaymentMethod,
		PaymentDetails:   in.PaymentDetails,
		IsCreditSale:     in.IsCreditSale,
		FBRInvoiceNumber: in.FBRInvoiceNumber,
		CreatedBy:        in.CreatedBy,
		Items:            items,
	}

	return &UnitOfWork{
		Kind:   KindSale,
		Sale:   sale,
		Deltas: requested.deltas(-1, true),
	}, nil
}
