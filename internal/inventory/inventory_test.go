package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukaan/backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testProducts() map[int64]domain.Product {
	return map[int64]domain.Product{
		1: {ID: 1, Code: "P-001", SellingPrice: dec("100"), GSTPercent: decimal.NewNullDecimal(dec("17")), StockQty: dec("10")},
		2: {ID: 2, Code: "P-002", SellingPrice: dec("40"), GSTPercent: decimal.NewNullDecimal(dec("5")), StockQty: dec("2")},
		3: {ID: 3, Code: "P-003", SellingPrice: dec("12.5"), StockQty: dec("0")},
	}
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestPlanSaleSingleLineExample(t *testing.T) {
	uow, err := PlanSale(testProducts(), SaleInput{
		BranchID:      1,
		InvoiceNo:     "INV-1",
		PaymentMethod: domain.PaymentCash,
		CreatedBy:     7,
		Lines: []domain.SaleLineRequest{
			{ProductID: 1, Qty: dec("3"), UnitPrice: dec("100")},
		},
	}, fixedNow)
	require.NoError(t, err)

	sale := uow.Sale
	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Items[0].TotalPrice.Equal(dec("351")), "line total %s", sale.Items[0].TotalPrice)
	assert.True(t, sale.Subtotal.Equal(dec("300")))
	assert.True(t, sale.GSTAmount.Equal(dec("51")))
	assert.True(t, sale.TotalAmount.Equal(dec("351")))
	assert.True(t, sale.PaidAmount.Equal(sale.TotalAmount))
	assert.Equal(t, fixedNow, sale.SaleDate)

	next, events, err := uow.Apply(Levels{1: dec("10")})
	require.NoError(t, err)
	assert.True(t, next[1].Equal(dec("7")))
	require.Len(t, events, 1)
	assert.Equal(t, KindSale, events[0].Source)
	assert.True(t, events[0].Delta.Equal(dec("-3")))
}

func TestPlanSaleTotalsAcrossLines(t *testing.T) {
	uow, err := PlanSale(testProducts(), SaleInput{
		BranchID:      1,
		InvoiceNo:     "INV-2",
		PaymentMethod: domain.PaymentCard,
		Lines: []domain.SaleLineRequest{
			{ProductID: 1, Qty: dec("2"), UnitPrice: dec("100"), DiscountPerItem: decPtr("10")},
			{ProductID: 2, Qty: dec("1.5"), UnitPrice: dec("40")},
			{ProductID: 3, Qty: dec("0"), UnitPrice: dec("12.5")},
		},
	}, fixedNow)
	require.NoError(t, err)

	sale := uow.Sale
	var subtotal decimal.Decimal
	for _, item := range sale.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(item.Qty))
	}
	assert.True(t, sale.Subtotal.Equal(subtotal))
	assert.True(t, sale.DiscountAmount.Equal(dec("20")))
	// (200-20)*17% + 60*5%
	assert.True(t, sale.GSTAmount.Equal(dec("33.6")), "gst %s", sale.GSTAmount)
	assert.True(t, sale.TotalAmount.Equal(sale.Subtotal.Sub(sale.DiscountAmount).Add(sale.GSTAmount)))
	assert.True(t, sale.Items[2].GSTPercent.Equal(domain.DefaultGSTPercent))
}

func TestPlanSaleExplicitRateWinsEvenWhenZero(t *testing.T) {
	uow, err := PlanSale(testProducts(), SaleInput{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.SaleLineRequest{
			{ProductID: 1, Qty: dec("1"), UnitPrice: dec("100"), GSTPercent: decPtr("0")},
		},
	}, fixedNow)
	require.NoError(t, err)
	assert.True(t, uow.Sale.GSTAmount.IsZero())
	assert.True(t, uow.Sale.TotalAmount.Equal(dec("100")))
}

func TestPlanSaleCreditSaleIsUnpaid(t *testing.T) {
	uow, err := PlanSale(testProducts(), SaleInput{
		PaymentMethod: domain.PaymentCredit,
		IsCreditSale:  true,
		Lines: []domain.SaleLineRequest{
			{ProductID: 1, Qty: dec("1"), UnitPrice: dec("100")},
		},
	}, fixedNow)
	require.NoError(t, err)
	assert.True(t, uow.Sale.PaidAmount.IsZero())
	assert.True(t, uow.Sale.TotalAmount.Equal(dec("117")))
}

func TestPlanSaleRejectsInsufficientStock(t *testing.T) {
	_, err := PlanSale(testProducts(), SaleInput{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.SaleLineRequest{
			{ProductID: 1, Qty: dec("1"), UnitPrice: dec("100")},
			{ProductID: 2, Qty: dec("3"), UnitPrice: dec("40")},
		},
	}, fixedNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "P-002")
}

func TestPlanSaleSumsRepeatedProductLines(t *testing.T) {
	_, err := PlanSale(testProducts(), SaleInput{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.SaleLineRequest{
			{ProductID: 2, Qty: dec("1"), UnitPrice: dec("40")},
			{ProductID: 2, Qty: dec("1.5"), UnitPrice: dec("40")},
		},
	}, fixedNow)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	uow, err := PlanSale(testProducts(), SaleInput{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.SaleLineRequest{
			{ProductID: 1, Qty: dec("4"), UnitPrice: dec("100")},
			{ProductID: 1, Qty: dec("5"), UnitPrice: dec("95")},
		},
	}, fixedNow)
	require.NoError(t, err)
	require.Len(t, uow.Deltas, 1)
	assert.True(t, uow.Deltas[0].Qty.Equal(dec("-9")))
	assert.True(t, uow.Deltas[0].Guarded)
}

func TestPlanSaleUnknownProduct(t *testing.T) {
	_, err := PlanSale(testProducts(), SaleInput{
		Lines: []domain.SaleLineRequest{{ProductID: 99, Qty: dec("1"), UnitPrice: dec("1")}},
	}, fixedNow)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "product 99 not found", err.Error())
}

func TestApplyGuardedDeltaLeavesLevelsUntouched(t *testing.T) {
	uow := &UnitOfWork{
		Kind: KindSale,
		Sale: &domain.Sale{},
		Deltas: []StockDelta{
			{ProductID: 1, Qty: dec("-2"), Guarded: true},
			{ProductID: 2, Qty: dec("-5"), Guarded: true},
		},
	}
	levels := Levels{1: dec("10"), 2: dec("4")}

	next, events, err := uow.Apply(levels)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, next)
	assert.Nil(t, events)
	assert.True(t, levels[1].Equal(dec("10")))
	assert.True(t, levels[2].Equal(dec("4")))
}

func TestPlanPurchaseTotalsAndDue(t *testing.T) {
	uow, err := PlanPurchase(testProducts(), PurchaseInput{
		BranchID:       1,
		SupplierID:     3,
		InvoiceNo:      "PUR-1",
		PurchaseDate:   fixedNow,
		DiscountAmount: dec("10"),
		PaidAmount:     dec("50"),
		PaymentMethod:  domain.PaymentCheque,
		Lines: []domain.PurchaseLineRequest{
			{ProductID: 1, Qty: dec("2"), UnitPrice: dec("80")},
			{ProductID: 3, Qty: dec("4"), UnitPrice: dec("10"), GSTPercent: decPtr("10")},
		},
	})
	require.NoError(t, err)

	p := uow.Purchase
	assert.True(t, p.Subtotal.Equal(dec("200")))
	assert.True(t, p.GSTAmount.Equal(dec("31.2")))
	assert.True(t, p.TotalAmount.Equal(p.Subtotal.Add(p.GSTAmount)))
	assert.True(t, p.DueAmount.Equal(p.TotalAmount.Sub(p.DiscountAmount).Sub(p.PaidAmount)))
	assert.True(t, p.Items[0].TotalPrice.Equal(dec("187.2")))
	assert.True(t, p.Items[1].TotalPrice.Equal(dec("44")))
}

func TestPlanPurchaseOverpaidKeepsNegativeDue(t *testing.T) {
	uow, err := PlanPurchase(testProducts(), PurchaseInput{
		PaidAmount:    dec("1000"),
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.PurchaseLineRequest{
			{ProductID: 3, Qty: dec("1"), UnitPrice: dec("100")},
		},
	})
	require.NoError(t, err)
	assert.True(t, uow.Purchase.DueAmount.Equal(dec("-883")))
}

func TestPurchaseApplyTreatsMissingStockAsZero(t *testing.T) {
	uow, err := PlanPurchase(testProducts(), PurchaseInput{
		PaymentMethod: domain.PaymentCash,
		Lines: []domain.PurchaseLineRequest{
			{ProductID: 3, Qty: dec("6"), UnitPrice: dec("1")},
			{ProductID: 1, Qty: dec("2"), UnitPrice: dec("1")},
		},
	})
	require.NoError(t, err)

	next, _, err := uow.Apply(Levels{1: dec("7")})
	require.NoError(t, err)
	assert.True(t, next[3].Equal(dec("6")))
	assert.True(t, next[1].Equal(dec("9")))
}

func TestPlanAdjustmentHasNoFloor(t *testing.T) {
	products := testProducts()
	uow, err := PlanAdjustment(products, AdjustmentInput{
		ProductID:  2,
		QtyChange:  -5,
		Reason:     domain.ReasonLost,
		AdjustedBy: 1,
	}, fixedNow)
	require.NoError(t, err)

	next, events, err := uow.Apply(Levels{2: dec("2")})
	require.NoError(t, err)
	assert.True(t, next[2].Equal(dec("-3")))
	require.Len(t, events, 1)
	assert.Equal(t, "lost", events[0].Reason)
}

func TestPlanAdjustmentExampleSequence(t *testing.T) {
	products := testProducts()
	levels := Levels{1: dec("7")}

	uow, err := PlanAdjustment(products, AdjustmentInput{ProductID: 1, QtyChange: -2, Reason: domain.ReasonDamage}, fixedNow)
	require.NoError(t, err)
	levels, _, err = uow.Apply(levels)
	require.NoError(t, err)
	assert.True(t, levels[1].Equal(dec("5")))

	_, err = PlanAdjustment(products, AdjustmentInput{ProductID: 1, QtyChange: -2, Reason: "bogus"}, fixedNow)
	require.Error(t, err)
	assert.True(t, levels[1].Equal(dec("5")))
}

func TestPlanAdjustmentRejectsZeroAndUnknownProduct(t *testing.T) {
	_, err := PlanAdjustment(testProducts(), AdjustmentInput{ProductID: 1, QtyChange: 0, Reason: domain.ReasonFound}, fixedNow)
	require.ErrorIs(t, err, ErrZeroQuantity)

	_, err = PlanAdjustment(testProducts(), AdjustmentInput{ProductID: 42, QtyChange: 1, Reason: domain.ReasonFound}, fixedNow)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
