// Package inventory holds the stock transitions for sales, purchases and
// manual adjustments. Planning functions are pure: they take a product
// snapshot and a request and return a UnitOfWork that a store commits in a
// single database transaction.
package inventory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"dukaan/backend/internal/domain"
)

type Kind string

const (
	KindSale       Kind = "sale"
	KindPurchase   Kind = "purchase"
	KindAdjustment Kind = "adjustment"
)

var ErrZeroQuantity = errors.New("quantity change cannot be zero")

// percentShift turns a percentage into a fraction without division.
const percentShift int32 = -2

// Levels maps product id to stock quantity. A missing entry reads as zero.
type Levels map[int64]decimal.Decimal

// StockDelta is a signed change to one product's stock. Guarded deltas must
// not leave the product below zero.
type StockDelta struct {
	ProductID int64
	Qty       decimal.Decimal
	Guarded   bool
}

type StockEvent struct {
	ProductID   int64           `json:"product_id"`
	Delta       decimal.Decimal `json:"delta"`
	Source      Kind            `json:"source"`
	ReferenceID int64           `json:"reference_id"`
	BranchID    *int64          `json:"branch_id,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	At          time.Time       `json:"at"`
}

// UnitOfWork is everything one committed operation writes: exactly one
// header (with its lines) and the stock deltas it implies.
type UnitOfWork struct {
	Kind       Kind
	Sale       *domain.Sale
	Purchase   *domain.Purchase
	Adjustment *domain.StockAdjustment
	Deltas     []StockDelta
}

func (u *UnitOfWork) ReferenceID() int64 {
	switch u.Kind {
	case KindSale:
		return u.Sale.ID
	case KindPurchase:
		return u.Purchase.ID
	case KindAdjustment:
		return u.Adjustment.ID
	}
	return 0
}

func (u *UnitOfWork) BranchID() *int64 {
	switch u.Kind {
	case KindSale:
		id := u.Sale.BranchID
		return &id
	case KindPurchase:
		id := u.Purchase.BranchID
		return &id
	case KindAdjustment:
		return u.Adjustment.BranchID
	}
	return nil
}

func (u *UnitOfWork) OccurredAt() time.Time {
	switch u.Kind {
	case KindSale:
		return u.Sale.SaleDate
	case KindPurchase:
		return u.Purchase.PurchaseDate
	case KindAdjustment:
		return u.Adjustment.CreatedAt
	}
	return time.Time{}
}

// ProductIDs lists the products touched by the deltas, in delta order.
func (u *UnitOfWork) ProductIDs() []int64 {
	ids := make([]int64, 0, len(u.Deltas))
	for _, d := range u.Deltas {
		ids = append(ids, d.ProductID)
	}
	return ids
}

// Apply computes the stock levels after this unit of work. The input map is
// not modified. On a guarded delta that would go negative nothing is applied.
func (u *UnitOfWork) Apply(levels Levels) (Levels, []StockEvent, error) {
	next := make(Levels, len(levels)+len(u.Deltas))
	for id, qty := range levels {
		next[id] = qty
	}
	for _, d := range u.Deltas {
		current := next[d.ProductID]
		updated := current.Add(d.Qty)
		if d.Guarded && updated.IsNegative() {
			return nil, nil, &domain.InsufficientStockError{
				ProductID: d.ProductID,
				Available: current,
				Requested: d.Qty.Neg(),
			}
		}
		next[d.ProductID] = updated
	}
	return next, u.Events(), nil
}

// Events describes the stock movements of the unit of work. Reference ids are
// only meaningful after the store has assigned them.
func (u *UnitOfWork) Events() []StockEvent {
	reason := ""
	if u.Kind == KindAdjustment {
		reason = string(u.Adjustment.Reason)
	}
	events := make([]StockEvent, 0, len(u.Deltas))
	for _, d := range u.Deltas {
		events = append(events, StockEvent{
			ProductID:   d.ProductID,
			Delta:       d.Qty,
			Source:      u.Kind,
			ReferenceID: u.ReferenceID(),
			BranchID:    u.BranchID(),
			Reason:      reason,
			At:          u.OccurredAt(),
		})
	}
	return events
}

// EffectiveGSTPercent picks the explicit line rate, then the product rate,
// then the default rate.
func EffectiveGSTPercent(explicit *decimal.Decimal, product domain.Product) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if product.GSTPercent.Valid {
		return product.GSTPercent.Decimal
	}
	return domain.DefaultGSTPercent
}

// deltaBuilder accumulates per product quantities in first-seen order.
type deltaBuilder struct {
	order  []int64
	totals map[int64]decimal.Decimal
}

func newDeltaBuilder(capacity int) *deltaBuilder {
	return &deltaBuilder{
		order:  make([]int64, 0, capacity),
		totals: make(map[int64]decimal.Decimal, capacity),
	}
}

func (b *deltaBuilder) add(productID int64, qty decimal.Decimal) decimal.Decimal {
	current, seen := b.totals[productID]
	if !seen {
		b.order = append(b.order, productID)
	}
	total := current.Add(qty)
	b.totals[productID] = total
	return total
}

func (b *deltaBuilder) deltas(sign int64, guarded bool) []StockDelta {
	out := make([]StockDelta, 0, len(b.order))
	multiplier := decimal.NewFromInt(sign)
	for _, id := range b.order {
		out = append(out, StockDelta{ProductID: id, Qty: b.totals[id].Mul(multiplier), Guarded: guarded})
	}
	return out
}
