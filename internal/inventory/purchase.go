package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"dukaan/backend/internal/domain"
)

type PurchaseInput struct {
	BranchID       int64
	SupplierID     int64
	InvoiceNo      string
	PurchaseDate   time.Time
	Lines          []domain.PurchaseLineRequest
	DiscountAmount decimal.Decimal
	PaymentMethod  domain.PaymentMethod
	PaidAmount     decimal.Decimal
	Notes          string
	CreatedBy      int64
}

// PlanPurchase prices the lines and adds the purchased quantity to stock.
// An overpaid purchase keeps a negative due amount.
func PlanPurchase(products map[int64]domain.Product, in PurchaseInput) (*UnitOfWork, error) {
	var (
		subtotal decimal.Decimal
		totalGST decimal.Decimal
	)

	items := make([]domain.PurchaseItem, 0, len(in.Lines))
	received := newDeltaBuilder(len(in.Lines))

	for _, line := range in.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, domain.NotFound("product", line.ProductID)
		}

		rate := EffectiveGSTPercent(line.GSTPercent, product)
		lineSubtotal := line.UnitPrice.Mul(line.Qty)
		lineGST := lineSubtotal.Mul(rate.Shift(percentShift))

		subtotal = subtotal.Add(lineSubtotal)
		totalGST = totalGST.Add(lineGST)
		received.add(product.ID, line.Qty)

		items = append(items, domain.PurchaseItem{
			ProductID:  product.ID,
			Qty:        line.Qty,
			UnitPrice:  line.UnitPrice,
			GSTPercent: rate,
			TotalPrice: lineSubtotal.Add(lineGST),
		})
	}

	totalAmount := subtotal.Add(totalGST)

	purchase := &domain.Purchase{
		BranchID:       in.BranchID,
		SupplierID:     in.SupplierID,
		InvoiceNo:      in.InvoiceNo,
		PurchaseDate:   in.PurchaseDate,
		Subtotal:       subtotal,
		GSTAmount:      totalGST,
		TotalAmount:    totalAmount,
		DiscountAmount: in.DiscountAmount,
		PaidAmount:     in.PaidAmount,
		DueAmount:      totalAmount.Sub(in.DiscountAmount).Sub(in.PaidAmount),
		PaymentMethod:  in.PaymentMethod,
		Notes:          in.Notes,
		CreatedBy:      in.CreatedBy,
		Items:          items,
	}

	return &UnitOfWork{
		Kind:     KindPurchase,
		Purchase: purchase,
		Deltas:   received.deltas(1, false),
	}, nil
}
