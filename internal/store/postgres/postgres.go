package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sqlx.DB
}

var _ store.Repository = (*Store)(nil)

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the embedded schema on a dedicated connection, which the
// migrate driver closes when done.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	driver, err := pgxmigrate.WithInstance(conn, &pgxmigrate.Config{})
	if err != nil {
		_ = conn.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

const shopProfileColumns = `id, shop_name_en, shop_name_ur, owner_name, ntn, strn, cnic, phone1, phone2,
	address_en, address_ur, fbr_pos_id, logo_url`

func (s *Store) GetShopProfile(ctx context.Context) (*domain.ShopProfile, error) {
	var profile domain.ShopProfile
	err := s.db.GetContext(ctx, &profile, `SELECT `+shopProfileColumns+` FROM shop_profile WHERE id = 1`)
	if err != nil {
		return nil, notFound(err, "shop profile", 0)
	}
	return &profile, nil
}

func (s *Store) UpsertShopProfile(ctx context.Context, profile domain.ShopProfile) (*domain.ShopProfile, error) {
	profile.ID = 1
	var saved domain.ShopProfile
	err := namedGet(ctx, s.db, &saved, `
		INSERT INTO shop_profile (id, shop_name_en, shop_name_ur, owner_name, ntn, strn, cnic, phone1, phone2,
			address_en, address_ur, fbr_pos_id, logo_url, updated_at)
		VALUES (:id, :shop_name_en, :shop_name_ur, :owner_name, :ntn, :strn, :cnic, :phone1, :phone2,
			:address_en, :address_ur, :fbr_pos_id, :logo_url, now())
		ON CONFLICT (id) DO UPDATE SET
			shop_name_en = EXCLUDED.shop_name_en,
			shop_name_ur = EXCLUDED.shop_name_ur,
			owner_name = EXCLUDED.owner_name,
			ntn = EXCLUDED.ntn,
			strn = EXCLUDED.strn,
			cnic = EXCLUDED.cnic,
			phone1 = EXCLUDED.phone1,
			phone2 = EXCLUDED.phone2,
			address_en = EXCLUDED.address_en,
			address_ur = EXCLUDED.address_ur,
			fbr_pos_id = EXCLUDED.fbr_pos_id,
			logo_url = EXCLUDED.logo_url,
			updated_at = now()
		RETURNING `+shopProfileColumns, profile)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

const branchColumns = `id, branch_name_en, branch_name_ur, address_en, address_ur, phone`

func (s *Store) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	branches := []domain.Branch{}
	err := s.db.SelectContext(ctx, &branches, `SELECT `+branchColumns+` FROM branches ORDER BY id`)
	return branches, err
}

func (s *Store) GetBranch(ctx context.Context, id int64) (*domain.Branch, error) {
	var branch domain.Branch
	if err := s.db.GetContext(ctx, &branch, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "branch", id)
	}
	return &branch, nil
}

func (s *Store) CreateBranch(ctx context.Context, branch domain.Branch) (*domain.Branch, error) {
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO branches (branch_name_en, branch_name_ur, address_en, address_ur, phone)
		VALUES (:branch_name_en, :branch_name_ur, :address_en, :address_ur, :phone)
		RETURNING id`, branch)
	if err != nil {
		return nil, mapWriteError(err)
	}
	branch.ID = id
	return &branch, nil
}

func (s *Store) UpdateBranch(ctx context.Context, branch domain.Branch) (*domain.Branch, error) {
	err := namedExecOne(ctx, s.db, `
		UPDATE branches SET branch_name_en = :branch_name_en, branch_name_ur = :branch_name_ur,
			address_en = :address_en, address_ur = :address_ur, phone = :phone
		WHERE id = :id`, branch, "branch", branch.ID)
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (s *Store) DeleteBranch(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "branches", "branch", id)
}

const userColumns = `id, branch_id, name, username, password_hash, role, phone, is_active`

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
	return users, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
	if err != nil {
		return nil, notFound(err, "user", 0)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO users (branch_id, name, username, password_hash, role, phone, is_active)
		VALUES (:branch_id, :name, :username, :password_hash, :role, :phone, :is_active)
		RETURNING id`, user)
	if err != nil {
		return nil, mapWriteError(err)
	}
	user.ID = id
	return &user, nil
}

// UpdateUser leaves the password hash alone; UpdateUserPassword changes it.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	err := namedExecOne(ctx, s.db, `
		UPDATE users SET branch_id = :branch_id, name = :name, username = :username, role = :role,
			phone = :phone, is_active = :is_active
		WHERE id = :id`, user, "user", user.ID)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, user.ID)
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	return expectOne(res, "user", id)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "users", "user", id)
}

const namedColumns = `id, name_en, name_ur`

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	err := s.db.SelectContext(ctx, &categories, `SELECT `+namedColumns+` FROM categories ORDER BY id`)
	return categories, err
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var category domain.Category
	if err := s.db.GetContext(ctx, &category, `SELECT `+namedColumns+` FROM categories WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "category", id)
	}
	return &category, nil
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	id, err := insertReturningID(ctx, s.db, `INSERT INTO categories (name_en, name_ur) VALUES (:name_en, :name_ur) RETURNING id`, category)
	if err != nil {
		return nil, mapWriteError(err)
	}
	category.ID = id
	return &category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	err := namedExecOne(ctx, s.db, `UPDATE categories SET name_en = :name_en, name_ur = :name_ur WHERE id = :id`, category, "category", category.ID)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "categories", "category", id)
}

func (s *Store) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	brands := []domain.Brand{}
	err := s.db.SelectContext(ctx, &brands, `SELECT `+namedColumns+` FROM brands ORDER BY id`)
	return brands, err
}

func (s *Store) GetBrand(ctx context.Context, id int64) (*domain.Brand, error) {
	var brand domain.Brand
	if err := s.db.GetContext(ctx, &brand, `SELECT `+namedColumns+` FROM brands WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "brand", id)
	}
	return &brand, nil
}

func (s *Store) CreateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error) {
	id, err := insertReturningID(ctx, s.db, `INSERT INTO brands (name_en, name_ur) VALUES (:name_en, :name_ur) RETURNING id`, brand)
	if err != nil {
		return nil, mapWriteError(err)
	}
	brand.ID = id
	return &brand, nil
}

func (s *Store) UpdateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error) {
	err := namedExecOne(ctx, s.db, `UPDATE brands SET name_en = :name_en, name_ur = :name_ur WHERE id = :id`, brand, "brand", brand.ID)
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (s *Store) DeleteBrand(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "brands", "brand", id)
}

const productColumns = `id, code, barcode, name_en, name_ur, brand_id, category_id, model_compatibility,
	purchase_price, selling_price, wholesale_price, gst_percent, COALESCE(stock_qty, 0) AS stock_qty,
	min_stock_level, status, notes`

func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var w where
	if q := strings.TrimSpace(filter.Query); q != "" {
		w.add(`(code ILIKE $%[1]d OR barcode ILIKE $%[1]d OR name_en ILIKE $%[1]d OR name_ur ILIKE $%[1]d)`, "%"+q+"%")
	}
	if filter.CategoryID != nil {
		w.add(`category_id = $%d`, *filter.CategoryID)
	}
	if filter.Status != "" {
		w.add(`status = $%d`, filter.Status)
	}
	if filter.LowStockOnly {
		w.clauses = append(w.clauses, `COALESCE(stock_qty, 0) <= min_stock_level`)
	}

	products := []domain.Product{}
	err := s.db.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM products`+w.String()+` ORDER BY name_en, id`, w.args...)
	return products, err
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := s.db.GetContext(ctx, &product, `SELECT `+productColumns+` FROM products WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "product", id)
	}
	return &product, nil
}

func (s *Store) GetProductByCode(ctx context.Context, code string) (*domain.Product, error) {
	var product domain.Product
	if err := s.db.GetContext(ctx, &product, `SELECT `+productColumns+` FROM products WHERE code = $1`, code); err != nil {
		return nil, notFound(err, "product", 0)
	}
	return &product, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	result := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	products := []domain.Product{}
	if err := s.db.SelectContext(ctx, &products, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO products (code, barcode, name_en, name_ur, brand_id, category_id, model_compatibility,
			purchase_price, selling_price, wholesale_price, gst_percent, stock_qty, min_stock_level, status, notes)
		VALUES (:code, :barcode, :name_en, :name_ur, :brand_id, :category_id, :model_compatibility,
			:purchase_price, :selling_price, :wholesale_price, :gst_percent, :stock_qty, :min_stock_level, :status, :notes)
		RETURNING id`, product)
	if err != nil {
		return nil, mapWriteError(err)
	}
	product.ID = id
	return &product, nil
}

// UpdateProduct replaces the catalog fields. Stock only moves through Commit.
func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	err := namedExecOne(ctx, s.db, `
		UPDATE products SET code = :code, barcode = :barcode, name_en = :name_en, name_ur = :name_ur,
			brand_id = :brand_id, category_id = :category_id, model_compatibility = :model_compatibility,
			purchase_price = :purchase_price, selling_price = :selling_price, wholesale_price = :wholesale_price,
			gst_percent = :gst_percent, min_stock_level = :min_stock_level, status = :status, notes = :notes,
			updated_at = now()
		WHERE id = :id`, product, "product", product.ID)
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, product.ID)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "products", "product", id)
}

const customerColumns = `id, name, COALESCE(phone, '') AS phone, cnic, address, credit_limit,
	current_credit_balance, loyalty_points`

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	err := s.db.SelectContext(ctx, &customers, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	return customers, err
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	if err := s.db.GetContext(ctx, &customer, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &customer, nil
}

func (s *Store) GetCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var customer domain.Customer
	if err := s.db.GetContext(ctx, &customer, `SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone); err != nil {
		return nil, notFound(err, "customer", 0)
	}
	return &customer, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO customers (name, phone, cnic, address, credit_limit, current_credit_balance, loyalty_points)
		VALUES (:name, NULLIF(:phone, ''), :cnic, :address, :credit_limit, :current_credit_balance, :loyalty_points)
		RETURNING id`, customer)
	if err != nil {
		return nil, mapWriteError(err)
	}
	customer.ID = id
	return &customer, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	err := namedExecOne(ctx, s.db, `
		UPDATE customers SET name = :name, phone = NULLIF(:phone, ''), cnic = :cnic, address = :address,
			credit_limit = :credit_limit
		WHERE id = :id`, customer, "customer", customer.ID)
	if err != nil {
		return nil, err
	}
	return s.GetCustomer(ctx, customer.ID)
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "customers", "customer", id)
}

const supplierColumns = `id, name, contact_person, COALESCE(phone, '') AS phone, cnic, ntn, address, notes`

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers := []domain.Supplier{}
	err := s.db.SelectContext(ctx, &suppliers, `SELECT `+supplierColumns+` FROM suppliers ORDER BY id`)
	return suppliers, err
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	var supplier domain.Supplier
	if err := s.db.GetContext(ctx, &supplier, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "supplier", id)
	}
	return &supplier, nil
}

func (s *Store) GetSupplierByPhone(ctx context.Context, phone string) (*domain.Supplier, error) {
	var supplier domain.Supplier
	if err := s.db.GetContext(ctx, &supplier, `SELECT `+supplierColumns+` FROM suppliers WHERE phone = $1`, phone); err != nil {
		return nil, notFound(err, "supplier", 0)
	}
	return &supplier, nil
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO suppliers (name, contact_person, phone, cnic, ntn, address, notes)
		VALUES (:name, :contact_person, NULLIF(:phone, ''), :cnic, :ntn, :address, :notes)
		RETURNING id`, supplier)
	if err != nil {
		return nil, mapWriteError(err)
	}
	supplier.ID = id
	return &supplier, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	err := namedExecOne(ctx, s.db, `
		UPDATE suppliers SET name = :name, contact_person = :contact_person, phone = NULLIF(:phone, ''),
			cnic = :cnic, ntn = :ntn, address = :address, notes = :notes
		WHERE id = :id`, supplier, "supplier", supplier.ID)
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "suppliers", "supplier", id)
}

func (s *Store) ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	categories := []domain.ExpenseCategory{}
	err := s.db.SelectContext(ctx, &categories, `SELECT id, name FROM expense_categories ORDER BY id`)
	return categories, err
}

func (s *Store) GetExpenseCategory(ctx context.Context, id int64) (*domain.ExpenseCategory, error) {
	var category domain.ExpenseCategory
	if err := s.db.GetContext(ctx, &category, `SELECT id, name FROM expense_categories WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "expense category", id)
	}
	return &category, nil
}

func (s *Store) CreateExpenseCategory(ctx context.Context, category domain.ExpenseCategory) (*domain.ExpenseCategory, error) {
	id, err := insertReturningID(ctx, s.db, `INSERT INTO expense_categories (name) VALUES (:name) RETURNING id`, category)
	if err != nil {
		return nil, mapWriteError(err)
	}
	category.ID = id
	return &category, nil
}

func (s *Store) UpdateExpenseCategory(ctx context.Context, category domain.ExpenseCategory) (*domain.ExpenseCategory, error) {
	err := namedExecOne(ctx, s.db, `UPDATE expense_categories SET name = :name WHERE id = :id`, category, "expense category", category.ID)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) DeleteExpenseCategory(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "expense_categories", "expense category", id)
}

const expenseColumns = `id, branch_id, category_id, amount, description, expense_date, paid_to, created_by`

func (s *Store) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	var w where
	if filter.BranchID != nil {
		w.add(`branch_id = $%d`, *filter.BranchID)
	}
	if filter.CategoryID != nil {
		w.add(`category_id = $%d`, *filter.CategoryID)
	}
	w.dateRange("expense_date", filter.From, filter.To)

	expenses := []domain.Expense{}
	err := s.db.SelectContext(ctx, &expenses,
		`SELECT `+expenseColumns+` FROM expenses`+w.String()+` ORDER BY expense_date DESC, id DESC`+w.limit(filter.Limit),
		w.args...)
	return expenses, err
}

func (s *Store) GetExpense(ctx context.Context, id int64) (*domain.Expense, error) {
	var expense domain.Expense
	if err := s.db.GetContext(ctx, &expense, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "expense", id)
	}
	return &expense, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO expenses (branch_id, category_id, amount, description, expense_date, paid_to, created_by)
		VALUES (:branch_id, :category_id, :amount, :description, :expense_date, :paid_to, :created_by)
		RETURNING id`, expense)
	if err != nil {
		return nil, mapWriteError(err)
	}
	expense.ID = id
	return &expense, nil
}

func (s *Store) UpdateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	err := namedExecOne(ctx, s.db, `
		UPDATE expenses SET branch_id = :branch_id, category_id = :category_id, amount = :amount,
			description = :description, expense_date = :expense_date, paid_to = :paid_to
		WHERE id = :id`, expense, "expense", expense.ID)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "expenses", "expense", id)
}

// deleteByID maps a foreign key violation to a conflict: the row is still in use.
func (s *Store) deleteByID(ctx context.Context, table string, entity string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Conflict(entity + " is still referenced by other records")
		}
		return err
	}
	return expectOne(res, entity, id)
}

func insertReturningID(ctx context.Context, ext sqlx.ExtContext, query string, arg any) (int64, error) {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := ext.QueryRowxContext(ctx, ext.Rebind(q), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func namedGet(ctx context.Context, ext sqlx.ExtContext, dest any, query string, arg any) error {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, ext, dest, ext.Rebind(q), args...)
}

func namedExecOne(ctx context.Context, ext sqlx.ExtContext, query string, arg any, entity string, id int64) error {
	res, err := sqlx.NamedExecContext(ctx, ext, query, arg)
	if err != nil {
		return mapWriteError(err)
	}
	return expectOne(res, entity, id)
}

func expectOne(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(entity, id)
	}
	return nil
}

func notFound(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity, id)
	}
	return err
}

var uniqueReasons = map[string]string{
	"products_code_key":   "product code already exists",
	"customers_phone_key": "customer phone already exists",
	"suppliers_phone_key": "supplier phone already exists",
	"users_username_key":  "username already exists",
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		if reason, ok := uniqueReasons[pgErr.ConstraintName]; ok {
			return domain.Conflict(reason)
		}
		return domain.Conflict("record already exists")
	case "23503":
		return fmt.Errorf("%w: %s", store.ErrInvalidReference, pgErr.ConstraintName)
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// where builds a positional WHERE clause. Each clause carries one %d verb
// for the index of its argument.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *where) dateRange(column string, from, to *time.Time) {
	if from != nil {
		w.add(column+` >= $%d`, *from)
	}
	if to != nil {
		w.add(column+` <= $%d`, *to)
	}
}

func (w *where) limit(requested int) string {
	w.args = append(w.args, store.Limit(requested, 100))
	return fmt.Sprintf(" LIMIT $%d", len(w.args))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}
