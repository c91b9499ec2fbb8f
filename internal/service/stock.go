package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/inventory"
)

func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseCreateRequest) (*domain.Purchase, error) {
	actor, err := requireRole(ctx, catalogWriters...)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	method, err := domain.ParsePurchasePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, invalidField("payment_method", "%s", err.Error())
	}
	purchaseDate, err := parseDate("purchase_date", req.PurchaseDate)
	if err != nil {
		return nil, err
	}
	if err := checkNotNegative("discount_amount", req.DiscountAmount); err != nil {
		return nil, err
	}
	if err := checkNotNegative("paid_amount", *req.PaidAmount); err != nil {
		return nil, err
	}
	for i, line := range req.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if err := checkPositive(prefix+"qty", line.Qty); err != nil {
			return nil, err
		}
		if err := checkNotNegative(prefix+"unit_price", line.UnitPrice); err != nil {
			return nil, err
		}
		if err := checkPercent(prefix+"gst_percent", line.GSTPercent); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	uow, err := inventory.PlanPurchase(products, inventory.PurchaseInput{
		BranchID:       req.BranchID,
		SupplierID:     req.SupplierID,
		InvoiceNo:      strings.TrimSpace(req.InvoiceNo),
		PurchaseDate:   purchaseDate,
		Lines:          req.Items,
		DiscountAmount: req.DiscountAmount,
		PaymentMethod:  method,
		PaidAmount:     *req.PaidAmount,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedBy:      actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetBranch(ctx, req.BranchID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	committed, err := s.commit(ctx, uow)
	if err != nil {
		return nil, err
	}
	purchase := committed.Purchase
	s.logAudit(ctx, "purchase_create", "purchase", purchase.ID,
		fmt.Sprintf("invoice=%s,total=%s,due=%s", purchase.InvoiceNo, purchase.TotalAmount, purchase.DueAmount))
	return purchase, nil
}

func (s *Service) GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetPurchase(ctx, id)
}

func (s *Service) ListPurchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListPurchases(ctx, filter)
}

func (s *Service) CreateStockAdjustment(ctx context.Context, req domain.StockAdjustmentRequest) (*domain.StockAdjustment, error) {
	actor, err := requireRole(ctx, catalogWriters...)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	reason, err := domain.ParseAdjustmentReason(req.Reason)
	if err != nil {
		return nil, invalidField("reason", "%s", err.Error())
	}

	branchID := req.BranchID
	if branchID == nil {
		branchID = actor.BranchID
	}
	return s.adjust(ctx, actor, inventory.AdjustmentInput{
		BranchID:   branchID,
		ProductID:  req.ProductID,
		QtyChange:  req.QtyChange,
		Reason:     reason,
		Notes:      strings.TrimSpace(req.Notes),
		AdjustedBy: actor.UserID,
	})
}

func (s *Service) adjust(ctx context.Context, actor domain.Actor, in inventory.AdjustmentInput) (*domain.StockAdjustment, error) {
	products, err := s.repo.GetProductsByIDs(ctx, []int64{in.ProductID})
	if err != nil {
		return nil, err
	}
	uow, err := inventory.PlanAdjustment(products, in, s.now())
	if errors.Is(err, inventory.ErrZeroQuantity) {
		return nil, invalidField("qty_change", "%s", err.Error())
	}
	if err != nil {
		return nil, err
	}
	if in.BranchID != nil {
		if _, err := s.repo.GetBranch(ctx, *in.BranchID); err != nil {
			return nil, err
		}
	}

	committed, err := s.commit(ctx, uow)
	if err != nil {
		return nil, err
	}
	adjustment := committed.Adjustment
	s.logAudit(ctx, "stock_adjust", "product", adjustment.ProductID,
		fmt.Sprintf("change=%d,reason=%s,by=%s", adjustment.QtyChange, adjustment.Reason, actor.Username))
	return adjustment, nil
}

func (s *Service) GetStockAdjustment(ctx context.Context, id int64) (*domain.StockAdjustment, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetStockAdjustment(ctx, id)
}

func (s *Service) ListStockAdjustments(ctx context.Context, filter domain.AdjustmentFilter) ([]domain.StockAdjustment, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListStockAdjustments(ctx, filter)
}
