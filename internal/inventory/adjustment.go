package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"dukaan/backend/internal/domain"
)

type AdjustmentInput struct {
	BranchID   *int64
	ProductID  int64
	QtyChange  int64
	Reason     domain.AdjustmentReason
	Notes      string
	AdjustedBy int64
}

// PlanAdjustment applies a signed delta. There is no floor at zero: a
// negative adjustment may leave the product with negative stock.
func PlanAdjustment(products map[int64]domain.Product, in AdjustmentInput, now time.Time) (*UnitOfWork, error) {
	if _, ok := products[in.ProductID]; !ok {
		return nil, domain.NotFound("product", in.ProductID)
	}
	if in.QtyChange == 0 {
		return nil, ErrZeroQuantity
	}
	if _, err := domain.ParseAdjustmentReason(string(in.Reason)); err != nil {
		return nil, err
	}

	adjustment := &domain.StockAdjustment{
		BranchID:   in.BranchID,
		ProductID:  in.ProductID,
		QtyChange:  in.QtyChange,
		Reason:     in.Reason,
		Notes:      in.Notes,
		AdjustedBy: in.AdjustedBy,
		CreatedAt:  now.UTC(),
	}

	return &UnitOfWork{
		Kind:       KindAdjustment,
		Adjustment: adjustment,
		Deltas: []StockDelta{{
			ProductID: in.ProductID,
			Qty:       decimal.NewFromInt(in.QtyChange),
		}},
	}, nil
}
