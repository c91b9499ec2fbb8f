package service

import (
	"context"

	"dukaan/backend/internal/domain"
)

func (s *Service) SalesReport(ctx context.Context, filter domain.ReportFilter) (*domain.SalesReport, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	byMethod, err := s.repo.SalesByPaymentMethod(ctx, filter)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.DailySales(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.SalesReport{ByPaymentMethod: byMethod, Daily: daily}, nil
}

// StockReport lists stock levels, optionally only those at or below
// threshold, together with the low stock alerts.
func (s *Service) StockReport(ctx context.Context, threshold *int64) (*domain.StockReport, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	if threshold != nil && *threshold < 0 {
		return nil, invalidField("threshold", "threshold cannot be negative")
	}
	levels, err := s.repo.StockLevels(ctx, threshold)
	if err != nil {
		return nil, err
	}
	low, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.StockReport{Levels: levels, LowStock: low}, nil
}

func (s *Service) PurchaseReport(ctx context.Context, filter domain.ReportFilter) (*domain.PurchaseReport, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	bySupplier, err := s.repo.PurchasesBySupplier(ctx, filter)
	if err != nil {
		return nil, err
	}
	byBranch, err := s.repo.PurchasesByBranch(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.PurchaseReport{BySupplier: bySupplier, ByBranch: byBranch}, nil
}

func (s *Service) ExpenseReport(ctx context.Context, filter domain.ReportFilter) (*domain.ExpenseReport, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	byCategory, err := s.repo.ExpensesByCategory(ctx, filter)
	if err != nil {
		return nil, err
	}
	byBranch, err := s.repo.ExpensesByBranch(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.ExpenseReport{ByCategory: byCategory, ByBranch: byBranch}, nil
}
