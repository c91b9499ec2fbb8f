package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/store"
)

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListCustomers(ctx)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerRequest) (*domain.Customer, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if trimmed(req.Name) == "" {
		return nil, invalidField("name", "name is required")
	}

	customer := domain.Customer{CreditLimit: decimal.Zero}
	if err := s.applyCustomer(ctx, &customer, req); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "customer_create", "customer", created.ID, "name="+created.Name)
	return created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, req domain.CustomerRequest) (*domain.Customer, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	customer := *existing
	if err := s.applyCustomer(ctx, &customer, req); err != nil {
		return nil, err
	}
	saved, err := s.repo.UpdateCustomer(ctx, customer)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "customer_update", "customer", saved.ID, "")
	return saved, nil
}

func (s *Service) applyCustomer(ctx context.Context, customer *domain.Customer, req domain.CustomerRequest) error {
	setString(&customer.Name, req.Name)
	setString(&customer.CNIC, req.CNIC)
	setString(&customer.Address, req.Address)
	if req.CreditLimit != nil {
		if err := checkNotNegative("credit_limit", *req.CreditLimit); err != nil {
			return err
		}
		customer.CreditLimit = *req.CreditLimit
	}
	if req.Phone == nil {
		return nil
	}
	phone, err := s.normalizePhone("phone", *req.Phone)
	if err != nil {
		return err
	}
	if phone != "" {
		other, err := s.repo.GetCustomerByPhone(ctx, phone)
		switch {
		case err == nil && other.ID != customer.ID:
			return domain.Conflict("customer with this phone already exists")
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return err
		}
	}
	customer.Phone = phone
	return nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, managers...); err != nil {
		return err
	}
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "customer_delete", "customer", id, "")
	return nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetSupplier(ctx, id)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierRequest) (*domain.Supplier, error) {
	if _, err := requireRole(ctx, catalogWriters...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if trimmed(req.Name) == "" {
		return nil, invalidField("name", "name is required")
	}

	var supplier domain.Supplier
	if err := s.applySupplier(ctx, &supplier, req); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateSupplier(ctx, supplier)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "supplier_create", "supplier", created.ID, "name="+created.Name)
	return created, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, req domain.SupplierRequest) (*domain.Supplier, error) {
	if _, err := requireRole(ctx, catalogWriters...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier := *existing
	if err := s.applySupplier(ctx, &supplier, req); err != nil {
		return nil, err
	}
	saved, err := s.repo.UpdateSupplier(ctx, supplier)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "supplier_update", "supplier", saved.ID, "")
	return saved, nil
}

func (s *Service) applySupplier(ctx context.Context, supplier *domain.Supplier, req domain.SupplierRequest) error {
	setString(&supplier.Name, req.Name)
	setString(&supplier.ContactPerson, req.ContactPerson)
	setString(&supplier.CNIC, req.CNIC)
	setString(&supplier.NTN, req.NTN)
	setString(&supplier.Address, req.Address)
	setString(&supplier.Notes, req.Notes)
	if req.Phone == nil {
		return nil
	}
	phone, err := s.normalizePhone("phone", *req.Phone)
	if err != nil {
		return err
	}
	if phone != "" {
		other, err := s.repo.GetSupplierByPhone(ctx, phone)
		switch {
		case err == nil && other.ID != supplier.ID:
			return domain.Conflict("supplier with this phone already exists")
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return err
		}
	}
	supplier.Phone = phone
	return nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, managers...); err != nil {
		return err
	}
	if err := s.repo.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "supplier_delete", "supplier", id, "")
	return nil
}
