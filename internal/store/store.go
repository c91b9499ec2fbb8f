package store

import (
	"context"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/inventory"
)

var (
	ErrNotFound          = domain.ErrNotFound
	ErrConflict          = domain.ErrConflict
	ErrInsufficientStock = domain.ErrInsufficientStock
	ErrInvalidReference  = domain.ErrInvalidReference
)

type Repository interface {
	GetShopProfile(ctx context.Context) (*domain.ShopProfile, error)
	UpsertShopProfile(ctx context.Context, profile domain.ShopProfile) (*domain.ShopProfile, error)

	ListBranches(ctx context.Context) ([]domain.Branch, error)
	GetBranch(ctx context.Context, id int64) (*domain.Branch, error)
	CreateBranch(ctx context.Context, branch domain.Branch) (*domain.Branch, error)
	UpdateBranch(ctx context.Context, branch domain.Branch) (*domain.Branch, error)
	DeleteBranch(ctx context.Context, id int64) error

	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListBrands(ctx context.Context) ([]domain.Brand, error)
	GetBrand(ctx context.Context, id int64) (*domain.Brand, error)
	CreateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductByCode(ctx context.Context, code string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error

	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error)
	GetSupplierByPhone(ctx context.Context, phone string) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error

	ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
	GetExpenseCategory(ctx context.Context, id int64) (*domain.ExpenseCategory, error)
	CreateExpenseCategory(ctx context.Context, category domain.ExpenseCategory) (*domain.ExpenseCategory, error)
	UpdateExpenseCategory(ctx context.Context, category domain.ExpenseCategory) (*domain.ExpenseCategory, error)
	DeleteExpenseCategory(ctx context.Context, id int64) error

	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error)
	GetExpense(ctx context.Context, id int64) (*domain.Expense, error)
	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error

	// Commit writes the header, its lines and the stock deltas of uow in one
	// transaction and returns uow with the assigned ids filled in.
	Commit(ctx context.Context, uow *inventory.UnitOfWork) (*inventory.UnitOfWork, error)

	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
	GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error)
	GetStockAdjustment(ctx context.Context, id int64) (*domain.StockAdjustment, error)
	ListStockAdjustments(ctx context.Context, filter domain.AdjustmentFilter) ([]domain.StockAdjustment, error)

	SalesByPaymentMethod(ctx context.Context, filter domain.ReportFilter) ([]domain.SalesByPaymentRow, error)
	DailySales(ctx context.Context, filter domain.ReportFilter) ([]domain.DailySalesRow, error)
	StockLevels(ctx context.Context, threshold *int64) ([]domain.StockLevelRow, error)
	LowStock(ctx context.Context) ([]domain.LowStockRow, error)
	PurchasesBySupplier(ctx context.Context, filter domain.ReportFilter) ([]domain.PurchaseSummaryRow, error)
	PurchasesByBranch(ctx context.Context, filter domain.ReportFilter) ([]domain.PurchaseSummaryRow, error)
	ExpensesByCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.ExpenseSummaryRow, error)
	ExpensesByBranch(ctx context.Context, filter domain.ReportFilter) ([]domain.ExpenseSummaryRow, error)
}

// Limit clamps a caller supplied list size.
func Limit(requested int, fallback int) int {
	if requested <= 0 {
		return fallback
	}
	if requested > 500 {
		return 500
	}
	return requested
}
