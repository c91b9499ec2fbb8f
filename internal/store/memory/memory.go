package memory

import (
	"cmp"
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/inventory"
	"dukaan/backend/internal/store"
)

type Store struct {
	mu                sync.RWMutex
	seq               map[string]int64
	shop              *domain.ShopProfile
	branches          map[int64]domain.Branch
	users             map[int64]domain.User
	categories        map[int64]domain.Category
	brands            map[int64]domain.Brand
	products          map[int64]domain.Product
	customers         map[int64]domain.Customer
	suppliers         map[int64]domain.Supplier
	expenseCategories map[int64]domain.ExpenseCategory
	expenses          map[int64]domain.Expense
	sales             map[int64]domain.Sale
	purchases         map[int64]domain.Purchase
	adjustments       map[int64]domain.StockAdjustment
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		seq:               make(map[string]int64),
		branches:          make(map[int64]domain.Branch),
		users:             make(map[int64]domain.User),
		categories:        make(map[int64]domain.Category),
		brands:            make(map[int64]domain.Brand),
		products:          make(map[int64]domain.Product),
		customers:         make(map[int64]domain.Customer),
		suppliers:         make(map[int64]domain.Supplier),
		expenseCategories: make(map[int64]domain.ExpenseCategory),
		expenses:          make(map[int64]domain.Expense),
		sales:             make(map[int64]domain.Sale),
		purchases:         make(map[int64]domain.Purchase),
		adjustments:       make(map[int64]domain.StockAdjustment),
	}
}

// seedUsers builds one account per role for dev/demo mode. Passwords come from
// SEED_<ROLE>_PASSWORD and fall back to dev defaults with a warning.
func (s *Store) seedUsers(branchID int64) {
	warned := false
	for _, u := range []struct {
		username string
		name     string
		role     domain.Role
		env      string
		fallback string
		branch   bool
	}{
		{"admin", "Shop Admin", domain.RoleAdmin, "SEED_ADMIN_PASSWORD", "admin123", false},
		{"manager", "Branch Manager", domain.RoleManager, "SEED_MANAGER_PASSWORD", "manager123", true},
		{"cashier", "Counter Cashier", domain.RoleCashier, "SEED_CASHIER_PASSWORD", "cashier123", true},
		{"stock", "Stock Keeper", domain.RoleStockKeeper, "SEED_STOCK_PASSWORD", "stock123", true},
	} {
		if os.Getenv(u.env) == "" && !warned {
			log.Warn().Str("component", "memory-store").Msg("using default dev credentials, set SEED_*_PASSWORD to override")
			warned = true
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(envOr(u.env, u.fallback)), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Str("username", u.username).Msg("failed to hash seed password")
		}
		user := domain.User{
			ID:           s.nextID("user"),
			Name:         u.name,
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
			IsActive:     true,
		}
		if u.branch {
			id := branchID
			user.BranchID = &id
		}
		s.users[user.ID] = user
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	s := New()

	s.shop = &domain.ShopProfile{
		ID:         1,
		ShopNameEn: "Dukaan Mobile Accessories",
		ShopNameUr: "دکان موبائل ایکسیسریز",
		OwnerName:  "Owner",
		Phone1:     "+923001234567",
		AddressEn:  "Hall Road, Lahore",
	}

	branch := domain.Branch{ID: s.nextID("branch"), BranchNameEn: "Main Branch", BranchNameUr: "مین برانچ", AddressEn: "Hall Road, Lahore"}
	s.branches[branch.ID] = branch
	s.seedUsers(branch.ID)

	cables := domain.Category{ID: s.nextID("category"), NameEn: "Cables", NameUr: "کیبلز"}
	chargers := domain.Category{ID: s.nextID("category"), NameEn: "Chargers", NameUr: "چارجرز"}
	covers := domain.Category{ID: s.nextID("category"), NameEn: "Covers", NameUr: "کورز"}
	for _, c := range []domain.Category{cables, chargers, covers} {
		s.categories[c.ID] = c
	}

	generic := domain.Brand{ID: s.nextID("brand"), NameEn: "Generic"}
	anker := domain.Brand{ID: s.nextID("brand"), NameEn: "Anker"}
	s.brands[generic.ID] = generic
	s.brands[anker.ID] = anker

	seed := []struct {
		code     string
		name     string
		category int64
		brand    int64
		purchase string
		selling  string
		stock    string
		compat   string
	}{
		{"CBL-TC-1M", "Type-C Cable 1m", cables.ID, generic.ID, "180", "350", "40", "Type-C phones"},
		{"CBL-LTN-1M", "Lightning Cable 1m", cables.ID, anker.ID, "650", "1200", "15", "iPhone 5 to 14"},
		{"CHG-20W", "20W USB-C Charger", chargers.ID, anker.ID, "2200", "3500", "8", ""},
		{"CHG-CAR-2P", "Car Charger Dual Port", chargers.ID, generic.ID, "400", "750", "3", ""},
		{"CVR-A54-SIL", "Silicone Cover A54", covers.ID, generic.ID, "120", "300", "25", "Samsung A54"},
	}
	for _, p := range seed {
		category, brand := p.category, p.brand
		product := domain.Product{
			ID:                 s.nextID("product"),
			Code:               p.code,
			NameEn:             p.name,
			CategoryID:         &category,
			BrandID:            &brand,
			ModelCompatibility: p.compat,
			PurchasePrice:      decimal.RequireFromString(p.purchase),
			SellingPrice:       decimal.RequireFromString(p.selling),
			GSTPercent:         decimal.NewNullDecimal(domain.DefaultGSTPercent),
			StockQty:           decimal.RequireFromString(p.stock),
			MinStockLevel:      domain.DefaultMinStockLevel,
			Status:             domain.ProductActive,
		}
		s.products[product.ID] = product
	}

	for _, name := range []string{"Rent", "Utilities", "Salaries"} {
		c := domain.ExpenseCategory{ID: s.nextID("expense_category"), Name: name}
		s.expenseCategories[c.ID] = c
	}

	return s
}

func (s *Store) nextID(kind string) int64 {
	s.seq[kind]++
	return s.seq[kind]
}

func (s *Store) GetShopProfile(_ context.Context) (*domain.ShopProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.shop == nil {
		return nil, domain.NotFound("shop profile", 0)
	}
	profile := *s.shop
	return &profile, nil
}

func (s *Store) UpsertShopProfile(_ context.Context, profile domain.ShopProfile) (*domain.ShopProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile.ID = 1
	s.shop = &profile
	saved := profile
	return &saved, nil
}

func (s *Store) ListBranches(_ context.Context) ([]domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.branches, func(b domain.Branch) int64 { return b.ID }), nil
}

func (s *Store) GetBranch(_ context.Context, id int64) (*domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	branch, ok := s.branches[id]
	if !ok {
		return nil, domain.NotFound("branch", id)
	}
	return &branch, nil
}

func (s *Store) CreateBranch(_ context.Context, branch domain.Branch) (*domain.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	branch.ID = s.nextID("branch")
	s.branches[branch.ID] = branch
	return &branch, nil
}

func (s *Store) UpdateBranch(_ context.Context, branch domain.Branch) (*domain.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.branches[branch.ID]; !ok {
		return nil, domain.NotFound("branch", branch.ID)
	}
	s.branches[branch.ID] = branch
	return &branch, nil
}

func (s *Store) DeleteBranch(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.branches[id]; !ok {
		return domain.NotFound("branch", id)
	}
	if s.branchInUse(id) {
		return domain.Conflict("branch is still referenced by users or transactions")
	}
	delete(s.branches, id)
	return nil
}

func (s *Store) branchInUse(id int64) bool {
	for _, u := range s.users {
		if ptrEquals(u.BranchID, id) {
			return true
		}
	}
	for _, sale := range s.sales {
		if sale.BranchID == id {
			return true
		}
	}
	for _, p := range s.purchases {
		if p.BranchID == id {
			return true
		}
	}
	for _, a := range s.adjustments {
		if ptrEquals(a.BranchID, id) {
			return true
		}
	}
	for _, e := range s.expenses {
		if ptrEquals(e.BranchID, id) {
			return true
		}
	}
	return false
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.users, func(u domain.User) int64 { return u.ID }), nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			user := u
			return &user, nil
		}
	}
	return nil, domain.NotFound("user", 0)
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUser(user); err != nil {
		return nil, err
	}
	user.ID = s.nextID("user")
	s.users[user.ID] = user
	return &user, nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return nil, domain.NotFound("user", user.ID)
	}
	if err := s.checkUser(user); err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		user.PasswordHash = current.PasswordHash
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *Store) checkUser(user domain.User) error {
	for _, u := range s.users {
		if u.ID != user.ID && strings.EqualFold(u.Username, user.Username) {
			return domain.Conflict("username already exists")
		}
	}
	if user.BranchID != nil {
		if _, ok := s.branches[*user.BranchID]; !ok {
			return store.ErrInvalidReference
		}
	}
	return nil
}

func (s *Store) UpdateUserPassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.NotFound("user", id)
	}
	user.PasswordHash = passwordHash
	s.users[id] = user
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.NotFound("user", id)
	}
	for _, sale := range s.sales {
		if sale.CreatedBy == id {
			return domain.Conflict("user has recorded sales")
		}
	}
	for _, p := range s.purchases {
		if p.CreatedBy == id {
			return domain.Conflict("user has recorded purchases")
		}
	}
	for _, a := range s.adjustments {
		if a.AdjustedBy == id {
			return domain.Conflict("user has recorded stock adjustments")
		}
	}
	for _, e := range s.expenses {
		if e.CreatedBy == id {
			return domain.Conflict("user has recorded expenses")
		}
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.categories, func(c domain.Category) int64 { return c.ID }), nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, domain.NotFound("category", id)
	}
	return &category, nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category.ID = s.nextID("category")
	s.categories[category.ID] = category
	return &category, nil
}

func (s *Store) UpdateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; !ok {
		return nil, domain.NotFound("category", category.ID)
	}
	s.categories[category.ID] = category
	return &category, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return domain.NotFound("category", id)
	}
	for _, p := range s.products {
		if ptrEquals(p.CategoryID, id) {
			return domain.Conflict("category has products")
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ListBrands(_ context.Context) ([]domain.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.brands, func(b domain.Brand) int64 { return b.ID }), nil
}

func (s *Store) GetBrand(_ context.Context, id int64) (*domain.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	brand, ok := s.brands[id]
	if !ok {
		return nil, domain.NotFound("brand", id)
	}
	return &brand, nil
}

func (s *Store) CreateBrand(_ context.Context, brand domain.Brand) (*domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	brand.ID = s.nextID("brand")
	s.brands[brand.ID] = brand
	return &brand, nil
}

func (s *Store) UpdateBrand(_ context.Context, brand domain.Brand) (*domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[brand.ID]; !ok {
		return nil, domain.NotFound("brand", brand.ID)
	}
	s.brands[brand.ID] = brand
	return &brand, nil
}

func (s *Store) DeleteBrand(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[id]; !ok {
		return domain.NotFound("brand", id)
	}
	for _, p := range s.products {
		if ptrEquals(p.BrandID, id) {
			return domain.Conflict("brand has products")
		}
	}
	delete(s.brands, id)
	return nil
}

func (s *Store) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.CategoryID != nil && !ptrEquals(p.CategoryID, *filter.CategoryID) {
			continue
		}
		if filter.LowStockOnly && p.StockQty.GreaterThan(decimal.NewFromInt(p.MinStockLevel)) {
			continue
		}
		if query != "" && !matchesProduct(p, query) {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if c := strings.Compare(a.NameEn, b.NameEn); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return products, nil
}

func matchesProduct(p domain.Product, query string) bool {
	for _, field := range []string{p.Code, p.Barcode, p.NameEn, p.NameUr} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, domain.NotFound("product", id)
	}
	return &product, nil
}

func (s *Store) GetProductByCode(_ context.Context, code string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Code == code {
			product := p
			return &product, nil
		}
	}
	return nil, domain.NotFound("product", 0)
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkProduct(product); err != nil {
		return nil, err
	}
	product.ID = s.nextID("product")
	s.products[product.ID] = product
	return &product, nil
}

// UpdateProduct replaces the catalog fields. Stock only moves through Commit.
func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[product.ID]
	if !ok {
		return nil, domain.NotFound("product", product.ID)
	}
	if err := s.checkProduct(product); err != nil {
		return nil, err
	}
	product.StockQty = current.StockQty
	s.products[product.ID] = product
	return &product, nil
}

func (s *Store) checkProduct(product domain.Product) error {
	for _, p := range s.products {
		if p.ID != product.ID && p.Code == product.Code {
			return domain.Conflict("product code already exists")
		}
	}
	if product.CategoryID != nil {
		if _, ok := s.categories[*product.CategoryID]; !ok {
			return store.ErrInvalidReference
		}
	}
	if product.BrandID != nil {
		if _, ok := s.brands[*product.BrandID]; !ok {
			return store.ErrInvalidReference
		}
	}
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return domain.NotFound("product", id)
	}
	for _, sale := range s.sales {
		for _, item := range sale.Items {
			if item.ProductID == id {
				return domain.Conflict("product has sales")
			}
		}
	}
	for _, p := range s.purchases {
		for _, item := range p.Items {
			if item.ProductID == id {
				return domain.Conflict("product has purchases")
			}
		}
	}
	for _, a := range s.adjustments {
		if a.ProductID == id {
			return domain.Conflict("product has stock adjustments")
		}
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.customers, func(c domain.Customer) int64 { return c.ID }), nil
}

func (s *Store) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, domain.NotFound("customer", id)
	}
	return &customer, nil
}

func (s *Store) GetCustomerByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.customers {
		if phone != "" && c.Phone == phone {
			customer := c
			return &customer, nil
		}
	}
	return nil, domain.NotFound("customer", 0)
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCustomerPhone(customer); err != nil {
		return nil, err
	}
	customer.ID = s.nextID("customer")
	s.customers[customer.ID] = customer
	return &customer, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customer.ID]; !ok {
		return nil, domain.NotFound("customer", customer.ID)
	}
	if err := s.checkCustomerPhone(customer); err != nil {
		return nil, err
	}
	s.customers[customer.ID] = customer
	return &customer, nil
}

func (s *Store) checkCustomerPhone(customer domain.Customer) error {
	if customer.Phone == "" {
		return nil
	}
	for _, c := range s.customers {
		if c.ID != customer.ID && c.Phone == customer.Phone {
			return domain.Conflict("customer phone already exists")
		}
	}
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return domain.NotFound("customer", id)
	}
	for _, sale := range s.sales {
		if ptrEquals(sale.CustomerID, id) {
			return domain.Conflict("customer has sales")
		}
	}
	delete(s.customers, id)
	return nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.suppliers, func(v domain.Supplier) int64 { return v.ID }), nil
}

func (s *Store) GetSupplier(_ context.Context, id int64) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, domain.NotFound("supplier", id)
	}
	return &supplier, nil
}

func (s *Store) GetSupplierByPhone(_ context.Context, phone string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.suppliers {
		if phone != "" && v.Phone == phone {
			supplier := v
			return &supplier, nil
		}
	}
	return nil, domain.NotFound("supplier", 0)
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSupplierPhone(supplier); err != nil {
		return nil, err
	}
	supplier.ID = s.nextID("supplier")
	s.suppliers[supplier.ID] = supplier
	return &supplier, nil
}

func (s *Store) UpdateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[supplier.ID]; !ok {
		return nil, domain.NotFound("supplier", supplier.ID)
	}
	if err := s.checkSupplierPhone(supplier); err != nil {
		return nil, err
	}
	s.suppliers[supplier.ID] = supplier
	return &supplier, nil
}

func (s *Store) checkSupplierPhone(supplier domain.Supplier) error {
	if supplier.Phone == "" {
		return nil
	}
	for _, v := range s.suppliers {
		if v.ID != supplier.ID && v.Phone == supplier.Phone {
			return domain.Conflict("supplier phone already exists")
		}
	}
	return nil
}

func (s *Store) DeleteSupplier(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[id]; !ok {
		return domain.NotFound("supplier", id)
	}
	for _, p := range s.purchases {
		if p.SupplierID == id {
			return domain.Conflict("supplier has purchases")
		}
	}
	delete(s.suppliers, id)
	return nil
}

func (s *Store) ListExpenseCategories(_ context.Context) ([]domain.ExpenseCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.expenseCategories, func(c domain.ExpenseCategory) int64 { return c.ID }), nil
}

func (s *Store) GetExpenseCategory(_ context.Context, id int64) (*domain.ExpenseCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.expenseCategories[id]
	if !ok {
		return nil, domain.NotFound("expense category", id)
	}
	return &category, nil
}

func (s *Store) CreateExpenseCategory(_ context.Context, category domain.ExpenseCategory) (*domain.ExpenseCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category.ID = s.nextID("expense_category")
	s.expenseCategories[category.ID] = category
	return &category, nil
}

func (s *Store) UpdateExpenseCategory(_ context.Context, category domain.ExpenseCategory) (*domain.ExpenseCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenseCategories[category.ID]; !ok {
		return nil, domain.NotFound("expense category", category.ID)
	}
	s.expenseCategories[category.ID] = category
	return &category, nil
}

func (s *Store) DeleteExpenseCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenseCategories[id]; !ok {
		return domain.NotFound("expense category", id)
	}
	for _, e := range s.expenses {
		if ptrEquals(e.CategoryID, id) {
			return domain.Conflict("expense category has expenses")
		}
	}
	delete(s.expenseCategories, id)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := make([]domain.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if filter.BranchID != nil && !ptrEquals(e.BranchID, *filter.BranchID) {
			continue
		}
		if filter.CategoryID != nil && !ptrEquals(e.CategoryID, *filter.CategoryID) {
			continue
		}
		if !inRange(e.ExpenseDate, filter.From, filter.To) {
			continue
		}
		expenses = append(expenses, e)
	}
	slices.SortFunc(expenses, func(a, b domain.Expense) int {
		return newestFirst(a.ExpenseDate, b.ExpenseDate, a.ID, b.ID)
	})
	return limitSlice(expenses, filter.Limit), nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expense, ok := s.expenses[id]
	if !ok {
		return nil, domain.NotFound("expense", id)
	}
	return &expense, nil
}

func (s *Store) CreateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkExpense(expense); err != nil {
		return nil, err
	}
	expense.ID = s.nextID("expense")
	s.expenses[expense.ID] = expense
	return &expense, nil
}

func (s *Store) UpdateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[expense.ID]; !ok {
		return nil, domain.NotFound("expense", expense.ID)
	}
	if err := s.checkExpense(expense); err != nil {
		return nil, err
	}
	s.expenses[expense.ID] = expense
	return &expense, nil
}

func (s *Store) checkExpense(expense domain.Expense) error {
	if expense.BranchID != nil {
		if _, ok := s.branches[*expense.BranchID]; !ok {
			return store.ErrInvalidReference
		}
	}
	if expense.CategoryID != nil {
		if _, ok := s.expenseCategories[*expense.CategoryID]; !ok {
			return store.ErrInvalidReference
		}
	}
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return domain.NotFound("expense", id)
	}
	delete(s.expenses, id)
	return nil
}

// Commit applies the unit of work under the write lock. The stock transition
// is computed first so a rejected delta leaves every map untouched.
func (s *Store) Commit(_ context.Context, uow *inventory.UnitOfWork) (*inventory.UnitOfWork, error) {
	if uow == nil {
		return nil, errors.New("nil unit of work")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnitReferences(uow); err != nil {
		return nil, err
	}

	levels := make(inventory.Levels, len(uow.Deltas))
	for _, id := range uow.ProductIDs() {
		product, ok := s.products[id]
		if !ok {
			return nil, domain.NotFound("product", id)
		}
		levels[id] = product.StockQty
	}

	next, _, err := uow.Apply(levels)
	if err != nil {
		var shortage *domain.InsufficientStockError
		if errors.As(err, &shortage) {
			shortage.Code = s.products[shortage.ProductID].Code
		}
		return nil, err
	}

	switch uow.Kind {
	case inventory.KindSale:
		uow.Sale.ID = s.nextID("sale")
		for i := range uow.Sale.Items {
			uow.Sale.Items[i].ID = s.nextID("sale_item")
			uow.Sale.Items[i].SaleID = uow.Sale.ID
		}
		s.sales[uow.Sale.ID] = cloneSale(*uow.Sale)
	case inventory.KindPurchase:
		uow.Purchase.ID = s.nextID("purchase")
		for i := range uow.Purchase.Items {
			uow.Purchase.Items[i].ID = s.nextID("purchase_item")
			uow.Purchase.Items[i].PurchaseID = uow.Purchase.ID
		}
		s.purchases[uow.Purchase.ID] = clonePurchase(*uow.Purchase)
	case inventory.KindAdjustment:
		uow.Adjustment.ID = s.nextID("adjustment")
		s.adjustments[uow.Adjustment.ID] = *uow.Adjustment
	}

	for id, qty := range next {
		product := s.products[id]
		product.StockQty = qty
		s.products[id] = product
	}
	return uow, nil
}

func (s *Store) checkUnitReferences(uow *inventory.UnitOfWork) error {
	switch uow.Kind {
	case inventory.KindSale:
		if uow.Sale == nil {
			return errors.New("sale unit of work without sale")
		}
		if _, ok := s.branches[uow.Sale.BranchID]; !ok {
			return domain.NotFound("branch", uow.Sale.BranchID)
		}
		if _, ok := s.users[uow.Sale.CreatedBy]; !ok {
			return domain.NotFound("user", uow.Sale.CreatedBy)
		}
		if uow.Sale.CustomerID != nil {
			if _, ok := s.customers[*uow.Sale.CustomerID]; !ok {
				return domain.NotFound("customer", *uow.Sale.CustomerID)
			}
		}
	case inventory.KindPurchase:
		if uow.Purchase == nil {
			return errors.New("purchase unit of work without purchase")
		}
		if _, ok := s.branches[uow.Purchase.BranchID]; !ok {
			return domain.NotFound("branch", uow.Purchase.BranchID)
		}
		if _, ok := s.suppliers[uow.Purchase.SupplierID]; !ok {
			return domain.NotFound("supplier", uow.Purchase.SupplierID)
		}
	case inventory.KindAdjustment:
		if uow.Adjustment == nil {
			return errors.New("adjustment unit of work without adjustment")
		}
		if uow.Adjustment.BranchID != nil {
			if _, ok := s.branches[*uow.Adjustment.BranchID]; !ok {
				return domain.NotFound("branch", *uow.Adjustment.BranchID)
			}
		}
	default:
		return errors.New("unknown unit of work kind")
	}
	return nil
}

func (s *Store) GetSale(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, domain.NotFound("sale", id)
	}
	copied := cloneSale(sale)
	return &copied, nil
}

func (s *Store) ListSales(_ context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if filter.BranchID != nil && sale.BranchID != *filter.BranchID {
			continue
		}
		if filter.CustomerID != nil && !ptrEquals(sale.CustomerID, *filter.CustomerID) {
			continue
		}
		if !inRange(sale.SaleDate, filter.From, filter.To) {
			continue
		}
		sale.Items = nil
		sales = append(sales, sale)
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return newestFirst(a.SaleDate, b.SaleDate, a.ID, b.ID)
	})
	return limitSlice(sales, filter.Limit), nil
}

func (s *Store) GetPurchase(_ context.Context, id int64) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchase, ok := s.purchases[id]
	if !ok {
		return nil, domain.NotFound("purchase", id)
	}
	copied := clonePurchase(purchase)
	return &copied, nil
}

func (s *Store) ListPurchases(_ context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchases := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		if filter.BranchID != nil && p.BranchID != *filter.BranchID {
			continue
		}
		if filter.SupplierID != nil && p.SupplierID != *filter.SupplierID {
			continue
		}
		if !inRange(p.PurchaseDate, filter.From, filter.To) {
			continue
		}
		p.Items = nil
		purchases = append(purchases, p)
	}
	slices.SortFunc(purchases, func(a, b domain.Purchase) int {
		return newestFirst(a.PurchaseDate, b.PurchaseDate, a.ID, b.ID)
	})
	return limitSlice(purchases, filter.Limit), nil
}

func (s *Store) GetStockAdjustment(_ context.Context, id int64) (*domain.StockAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adjustment, ok := s.adjustments[id]
	if !ok {
		return nil, domain.NotFound("stock adjustment", id)
	}
	return &adjustment, nil
}

func (s *Store) ListStockAdjustments(_ context.Context, filter domain.AdjustmentFilter) ([]domain.StockAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adjustments := make([]domain.StockAdjustment, 0, len(s.adjustments))
	for _, a := range s.adjustments {
		if filter.BranchID != nil && !ptrEquals(a.BranchID, *filter.BranchID) {
			continue
		}
		if filter.ProductID != nil && a.ProductID != *filter.ProductID {
			continue
		}
		if !inRange(a.CreatedAt, filter.From, filter.To) {
			continue
		}
		adjustments = append(adjustments, a)
	}
	slices.SortFunc(adjustments, func(a, b domain.StockAdjustment) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return limitSlice(adjustments, filter.Limit), nil
}

func sortedValues[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}

func limitSlice[T any](items []T, requested int) []T {
	limit := store.Limit(requested, 100)
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func newestFirst(a, b time.Time, aID, bID int64) int {
	if a.Equal(b) {
		return cmp.Compare(bID, aID)
	}
	if a.After(b) {
		return -1
	}
	return 1
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func ptrEquals(p *int64, v int64) bool {
	return p != nil && *p == v
}

func cloneSale(src domain.Sale) domain.Sale {
	dst := src
	dst.Items = slices.Clone(src.Items)
	dst.PaymentDetails = slices.Clone(src.PaymentDetails)
	return dst
}

func clonePurchase(src domain.Purchase) domain.Purchase {
	dst := src
	dst.Items = slices.Clone(src.Items)
	return dst
}
