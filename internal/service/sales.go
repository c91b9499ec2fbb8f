package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dukaan/backend/internal/cache"
	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/inventory"
	"dukaan/backend/internal/xid"
)

// CreateSale prices the cart, checks stock and commits the sale with its
// stock decrements as one unit of work. A missing invoice number is generated.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (*domain.Sale, error) {
	actor, err := requireRole(ctx, sellers...)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	method, err := domain.ParseSalePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, invalidField("payment_method", "%s", err.Error())
	}
	if err := checkSaleLines(req.Items); err != nil {
		return nil, err
	}
	splits, err := checkPaymentSplits(method, req.PaymentDetails)
	if err != nil {
		return nil, err
	}

	branchID := req.BranchID
	if actor.BranchID != nil {
		branchID = *actor.BranchID
	}
	if branchID == 0 {
		return nil, invalidField("branch_id", "branch is required for sales")
	}

	isCredit := method == domain.PaymentCredit
	if req.IsCreditSale != nil {
		isCredit = *req.IsCreditSale
	}

	now := s.now()
	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	if invoiceNo == "" {
		invoiceNo = xid.Invoice("INV", branchID, now)
	}

	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	input := inventory.SaleInput{
		BranchID:         branchID,
		CustomerID:       req.CustomerID,
		CustomerName:     strings.TrimSpace(req.CustomerName),
		InvoiceNo:        invoiceNo,
		Lines:            req.Items,
		PaymentMethod:    method,
		PaymentDetails:   splits,
		IsCreditSale:     isCredit,
		FBRInvoiceNumber: req.FBRInvoiceNumber,
		CreatedBy:        actor.UserID,
	}
	uow, err := inventory.PlanSale(products, input, now)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetBranch(ctx, branchID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUser(ctx, actor.UserID); err != nil {
		return nil, err
	}
	if req.CustomerID != nil {
		customer, err := s.repo.GetCustomer(ctx, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if uow.Sale.CustomerName == "" {
			uow.Sale.CustomerName = customer.Name
		}
	}

	lock, err := s.locker.Obtain(ctx, cache.SaleLockKey(branchID, input.InvoiceNo), s.lockTTL)
	if errors.Is(err, cache.ErrLockNotObtained) {
		return nil, domain.Conflict("sale with this invoice is already being processed")
	}
	if err != nil {
		return nil, fmt.Errorf("obtain sale lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Str("invoice_no", input.InvoiceNo).Msg("failed to release sale lock")
		}
	}()

	committed, err := s.commit(ctx, uow)
	if err != nil {
		return nil, err
	}
	sale := committed.Sale
	s.logAudit(ctx, "sale_create", "sale", sale.ID,
		fmt.Sprintf("invoice=%s,total=%s,method=%s,credit=%t", sale.InvoiceNo, sale.TotalAmount, sale.PaymentMethod, sale.IsCreditSale))
	return sale, nil
}

func checkSaleLines(lines []domain.SaleLineRequest) error {
	for i, line := range lines {
		prefix := fmt.Sprintf("items[%d].", i)
		if err := checkPositive(prefix+"qty", line.Qty); err != nil {
			return err
		}
		if err := checkNotNegative(prefix+"unit_price", line.UnitPrice); err != nil {
			return err
		}
		if line.DiscountPerItem != nil {
			if err := checkNotNegative(prefix+"discount_per_item", *line.DiscountPerItem); err != nil {
				return err
			}
		}
		if err := checkPercent(prefix+"gst_percent", line.GSTPercent); err != nil {
			return err
		}
	}
	return nil
}

// checkPaymentSplits validates the parts of a mixed payment. Other methods
// keep whatever detail the POS sent as long as it parses.
func checkPaymentSplits(method domain.PaymentMethod, splits domain.PaymentSplits) (domain.PaymentSplits, error) {
	if method == domain.PaymentMixed && len(splits) < 2 {
		return nil, invalidField("payment_details", "mixed payment requires at least two payment details")
	}
	out := make(domain.PaymentSplits, 0, len(splits))
	for i, split := range splits {
		parsed, err := domain.ParseSalePaymentMethod(string(split.Method))
		if err != nil || parsed == domain.PaymentMixed {
			return nil, invalidField(fmt.Sprintf("payment_details[%d].method", i), "invalid payment method %q", split.Method)
		}
		if err := checkPositive(fmt.Sprintf("payment_details[%d].amount", i), split.Amount); err != nil {
			return nil, err
		}
		split.Method = parsed
		split.Reference = strings.TrimSpace(split.Reference)
		out = append(out, split)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetSale(ctx, id)
}

func (s *Service) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, filter)
}

// SaleReceipt joins everything a printed receipt needs. Sales are immutable,
// so a built receipt is cached until its TTL runs out.
func (s *Service) SaleReceipt(ctx context.Context, id int64) (*domain.Receipt, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}

	cached, ok, err := s.receipts.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Int64("sale_id", id).Msg("receipt cache read failed")
	}
	if ok {
		return cached, nil
	}

	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	receipt, err := s.buildReceipt(ctx, sale)
	if err != nil {
		return nil, err
	}

	if err := s.receipts.Set(ctx, id, receipt, s.receiptTTL); err != nil {
		s.log.Warn().Err(err).Int64("sale_id", id).Msg("receipt cache write failed")
	}
	return receipt, nil
}

func (s *Service) buildReceipt(ctx context.Context, sale *domain.Sale) (*domain.Receipt, error) {
	ids := make([]int64, 0, len(sale.Items))
	for _, item := range sale.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	receipt := &domain.Receipt{Sale: *sale, Items: make([]domain.ReceiptLine, 0, len(sale.Items))}
	receipt.Sale.Items = nil
	for _, item := range sale.Items {
		line := domain.ReceiptLine{SaleItem: item}
		if product, ok := products[item.ProductID]; ok {
			line.Product = &product
		}
		receipt.Items = append(receipt.Items, line)
	}

	if sale.CustomerID != nil {
		customer, err := s.repo.GetCustomer(ctx, *sale.CustomerID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		receipt.Customer = customer
	}
	branch, err := s.repo.GetBranch(ctx, sale.BranchID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	receipt.Branch = branch

	profile, err := s.repo.GetShopProfile(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	receipt.ShopProfile = profile

	cashier, err := s.repo.GetUser(ctx, sale.CreatedBy)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if cashier != nil {
		receipt.Cashier = &domain.ReceiptPerson{ID: cashier.ID, Name: cashier.Name, Username: cashier.Username}
	}
	return receipt, nil
}
