package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/inventory"
)

func (s *Service) GetShopProfile(ctx context.Context) (*domain.ShopProfile, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetShopProfile(ctx)
}

func (s *Service) UpdateShopProfile(ctx context.Context, req domain.ShopProfileUpdateRequest) (*domain.ShopProfile, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	profile := domain.ShopProfile{ID: 1}
	if existing, err := s.repo.GetShopProfile(ctx); err == nil {
		profile = *existing
	}
	setString(&profile.ShopNameEn, req.ShopNameEn)
	setString(&profile.ShopNameUr, req.ShopNameUr)
	setString(&profile.OwnerName, req.OwnerName)
	setString(&profile.NTN, req.NTN)
	setString(&profile.STRN, req.STRN)
	setString(&profile.CNIC, req.CNIC)
	setString(&profile.Phone1, req.Phone1)
	setString(&profile.Phone2, req.Phone2)
	setString(&profile.AddressEn, req.AddressEn)
	setString(&profile.AddressUr, req.AddressUr)
	setString(&profile.FBRPosID, req.FBRPosID)
	setString(&profile.LogoURL, req.LogoURL)

	saved, err := s.repo.UpsertShopProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "shop_profile_update", "shop_profile", saved.ID, "")
	return saved, nil
}

func (s *Service) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListBranches(ctx)
}

func (s *Service) GetBranch(ctx context.Context, id int64) (*domain.Branch, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetBranch(ctx, id)
}

func (s *Service) CreateBranch(ctx context.Context, req domain.BranchRequest) (*domain.Branch, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if trimmed(req.BranchNameEn) == "" {
		return nil, invalidField("branch_name_en", "branch name is required")
	}

	var branch domain.Branch
	applyBranch(&branch, req)
	created, err := s.repo.CreateBranch(ctx, branch)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "branch_create", "branch", created.ID, "name="+created.BranchNameEn)
	return created, nil
}

func (s *Service) UpdateBranch(ctx context.Context, id int64, req domain.BranchRequest) (*domain.Branch, error) {
	if _, err := requireRole(ctx, managers...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetBranch(ctx, id)
	if err != nil {
		return nil, err
	}
	branch := *existing
	applyBranch(&branch, req)
	saved, err := s.repo.UpdateBranch(ctx, branch)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "branch_update", "branch", saved.ID, "")
	return saved, nil
}

func applyBranch(branch *domain.Branch, req domain.BranchRequest) {
	setString(&branch.BranchNameEn, req.BranchNameEn)
	setString(&branch.BranchNameUr, req.BranchNameUr)
	setString(&branch.AddressEn, req.AddressEn)
	setString(&branch.AddressUr, req.AddressUr)
	setString(&branch.Phone, req.Phone)
}

func (s *Service) DeleteBranch(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, managers...); err != nil {
		return err
	}
	if err := s.repo.DeleteBranch(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "branch_delete", "branch", id, "")
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, req domain.NameRequest) (*domain.Category, error) {
	if _, err := requireRole(ctx, catalogWriters...); err != nil {
		return nil, err
	}
	if err := s.validateName(req); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateCategory(ctx, domain.Category{NameEn: trimmed(req.NameEn), NameUr: trimmed(req.NameUr)})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "category_create", "category", created.ID, "name="+created.NameEn)
	return created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req domain.NameRequest) (*domain.Category, error) {
	if _, err := requireRole(ctx, catalogWriters...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category := *existing
	setString(&category.NameEn, req.NameEn)
	setString(&category.NameUr, req.NameUr)
	saved, err := s.repo.UpdateCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "category_update", "category", saved.ID, "")
	return saved, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, managers...); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "category_delete", "category", id, "")
	return nil
}

func (s *Service) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListBrands(ctx)
}

func (s *Service) GetBrand(ctx context.Context, id int64) (*domain.Brand, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetBrand(ctx, id)
}

func (s *Service) CreateBrand(ctx context.Context, req domain.NameRequest) (*domain.Brand, error) {
	if _, err := requireRole(ctx, catalogWriters...); err != nil {
		return nil, err
	}
	if err := s.validateName(req); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateBrand(ctx, domain.Brand{NameEn: trimmed(req.NameEn), NameUr: trimmed(req.NameUr)})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "brand_create", "brand", created.ID, "name="+created.NameEn)
	return created, nil
}

func (s *Service) UpdateBrand(ctx context.Context, id int64, req domain.NameRequest) (*domain.Brand, error) {
	if _, err := requireRole(ctx, catalogWriters...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	brand := *existing
	setString(&brand.NameEn, req.NameEn)
	setString(&brand.NameUr, req.NameUr)
	saved, err := s.repo.UpdateBrand(ctx, brand)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "brand_update", "brand", saved.ID, "")
	return saved, nil
}

func (s *Service) DeleteBrand(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, managers...); err != nil {
		return err
	}
	if err := s.repo.DeleteBrand(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "brand_delete", "brand", id, "")
	return nil
}

func (s *Service) validateName(req domain.NameRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}
	if trimmed(req.NameEn) == "" {
		return invalidField("name_en", "name is required")
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.ListProducts(ctx, filter)
}

// SearchProducts matches code, barcode and both names. Only active products
// are returned so the POS never offers a disabled item.
func (s *Service) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidField("q", "search query is required")
	}
	return s.ListProducts(ctx, domain.ProductFilter{Query: query, Status: domain.ProductActive})
}

func (s *Service) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	return s.ListProducts(ctx, domain.ProductFilter{LowStockOnly: true, Status: domain.ProductActive})
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (*domain.Product, error) {
	if _, err := requireRole(ctx, catalogWriters...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	product := domain.Product{
		Code:               strings.TrimSpace(req.Code),
		Barcode:            strings.TrimSpace(req.Barcode),
		NameEn:             strings.TrimSpace(req.NameEn),
		NameUr:             strings.TrimSpace(req.NameUr),
		BrandID:            req.BrandID,
		CategoryID:         req.CategoryID,
		ModelCompatibility: strings.TrimSpace(req.ModelCompatibility),
		PurchasePrice:      *req.PurchasePrice,
		SellingPrice:       *req.SellingPrice,
		GSTPercent:         decimal.NewNullDecimal(domain.DefaultGSTPercent),
		MinStockLevel:      domain.DefaultMinStockLevel,
		Status:             domain.ProductActive,
		Notes:              strings.TrimSpace(req.Notes),
	}
	if product.Code == "" || product.NameEn == "" {
		return nil, invalidField("code", "code and name_en are required")
	}
	if req.WholesalePrice != nil {
		product.WholesalePrice = decimal.NewNullDecimal(*req.WholesalePrice)
	}
	if req.GSTPercent != nil {
		product.GSTPercent = decimal.NewNullDecimal(*req.GSTPercent)
	}
	if req.StockQty != nil {
		product.StockQty = *req.StockQty
	}
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.Status != "" {
		status, err := domain.ParseProductStatus(req.Status)
		if err != nil {
			return nil, invalidField("status", "%s", err.Error())
		}
		product.Status = status
	}
	if err := checkProductNumbers(product, req.GSTPercent); err != nil {
		return nil, err
	}
	if err := checkNotNegative("stock_qty", product.StockQty); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("code=%s,price=%s,stock=%s", created.Code, created.SellingPrice, created.StockQty))
	return created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (*domain.Product, error) {
	if _, err := requireRole(ctx, catalogWriters...); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product := *existing
	setString(&product.Barcode, req.Barcode)
	setString(&product.NameEn, req.NameEn)
	setString(&product.NameUr, req.NameUr)
	setString(&product.ModelCompatibility, req.ModelCompatibility)
	setString(&product.Notes, req.Notes)
	if req.BrandID != nil {
		product.BrandID = req.BrandID
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.PurchasePrice != nil {
		product.PurchasePrice = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		product.SellingPrice = *req.SellingPrice
	}
	if req.WholesalePrice != nil {
		product.WholesalePrice = decimal.NewNullDecimal(*req.WholesalePrice)
	}
	if req.GSTPercent != nil {
		product.GSTPercent = decimal.NewNullDecimal(*req.GSTPercent)
	}
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.Status != nil {
		status, err := domain.ParseProductStatus(*req.Status)
		if err != nil {
			return nil, invalidField("status", "%s", err.Error())
		}
		product.Status = status
	}
	if err := checkProductNumbers(product, req.GSTPercent); err != nil {
		return nil, err
	}

	saved, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	detail := fmt.Sprintf("status=%s,price=%s", saved.Status, saved.SellingPrice)
	if !existing.SellingPrice.Equal(saved.SellingPrice) {
		detail += ",old_price=" + existing.SellingPrice.String()
	}
	s.logAudit(ctx, "product_update", "product", saved.ID, detail)
	return saved, nil
}

func checkProductNumbers(product domain.Product, gst *decimal.Decimal) error {
	if err := checkNotNegative("purchase_price", product.PurchasePrice); err != nil {
		return err
	}
	if err := checkNotNegative("selling_price", product.SellingPrice); err != nil {
		return err
	}
	if product.WholesalePrice.Valid {
		if err := checkNotNegative("wholesale_price", product.WholesalePrice.Decimal); err != nil {
			return err
		}
	}
	return checkPercent("gst_percent", gst)
}

func (s *Service) ToggleProductStatus(ctx context.Context, id int64) (*domain.Product, error) {
	if _, err := requireRole(ctx, catalogWriters...); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product := *existing
	if product.Status == domain.ProductActive {
		product.Status = domain.ProductInactive
	} else {
		product.Status = domain.ProductActive
	}
	saved, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "product_toggle_status", "product", saved.ID, "status="+string(saved.Status))
	return saved, nil
}

// UpdateProductStock applies a signed delta recorded as a correction
// adjustment, so every stock change outside a sale or purchase stays traceable.
func (s *Service) UpdateProductStock(ctx context.Context, id int64, req domain.StockUpdateRequest) (*domain.StockAdjustment, *domain.Product, error) {
	actor, err := requireRole(ctx, catalogWriters...)
	if err != nil {
		return nil, nil, err
	}
	if req.Quantity == 0 {
		return nil, nil, invalidField("quantity", "quantity change cannot be zero")
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = "manual stock update"
	}
	adjustment, err := s.adjust(ctx, actor, inventory.AdjustmentInput{
		BranchID:   actor.BranchID,
		ProductID:  id,
		QtyChange:  req.Quantity,
		Reason:     domain.ReasonCorrection,
		Notes:      notes,
		AdjustedBy: actor.UserID,
	})
	if err != nil {
		return nil, nil, err
	}
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return adjustment, product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, managers...); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "product_delete", "product", id, "")
	return nil
}
