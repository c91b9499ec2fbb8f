package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultGSTPercent applies when neither the line nor the product carries a rate.
var DefaultGSTPercent = decimal.NewFromInt(17)

const DefaultMinStockLevel = 5

type ShopProfile struct {
	ID         int64  `json:"id" db:"id"`
	ShopNameEn string `json:"shop_name_en" db:"shop_name_en"`
	ShopNameUr string `json:"shop_name_ur" db:"shop_name_ur"`
	OwnerName  string `json:"owner_name" db:"owner_name"`
	NTN        string `json:"ntn" db:"ntn"`
	STRN       string `json:"strn" db:"strn"`
	CNIC       string `json:"cnic" db:"cnic"`
	Phone1     string `json:"phone1" db:"phone1"`
	Phone2     string `json:"phone2" db:"phone2"`
	AddressEn  string `json:"address_en" db:"address_en"`
	AddressUr  string `json:"address_ur" db:"address_ur"`
	FBRPosID   string `json:"fbr_pos_id" db:"fbr_pos_id"`
	LogoURL    string `json:"logo_url" db:"logo_url"`
}

type ShopProfileUpdateRequest struct {
	ShopNameEn *string `json:"shop_name_en,omitempty" validate:"omitempty,max=150"`
	ShopNameUr *string `json:"shop_name_ur,omitempty" validate:"omitempty,max=150"`
	OwnerName  *string `json:"owner_name,omitempty" validate:"omitempty,max=100"`
	NTN        *string `json:"ntn,omitempty" validate:"omitempty,max=20"`
	STRN       *string `json:"strn,omitempty" validate:"omitempty,max=20"`
	CNIC       *string `json:"cnic,omitempty" validate:"omitempty,max=15"`
	Phone1     *string `json:"phone1,omitempty" validate:"omitempty,max=15"`
	Phone2     *string `json:"phone2,omitempty" validate:"omitempty,max=15"`
	AddressEn  *string `json:"address_en,omitempty"`
	AddressUr  *string `json:"address_ur,omitempty"`
	FBRPosID   *string `json:"fbr_pos_id,omitempty" validate:"omitempty,max=50"`
	LogoURL    *string `json:"logo_url,omitempty" validate:"omitempty,max=255,url"`
}

type Branch struct {
	ID           int64  `json:"id" db:"id"`
	BranchNameEn string `json:"branch_name_en" db:"branch_name_en"`
	BranchNameUr string `json:"branch_name_ur" db:"branch_name_ur"`
	AddressEn    string `json:"address_en" db:"address_en"`
	AddressUr    string `json:"address_ur" db:"address_ur"`
	Phone        string `json:"phone" db:"phone"`
}

type BranchRequest struct {
	BranchNameEn *string `json:"branch_name_en,omitempty" validate:"omitempty,min=1,max=100"`
	BranchNameUr *string `json:"branch_name_ur,omitempty" validate:"omitempty,max=100"`
	AddressEn    *string `json:"address_en,omitempty"`
	AddressUr    *string `json:"address_ur,omitempty"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=15"`
}

type User struct {
	ID           int64  `json:"id" db:"id"`
	BranchID     *int64 `json:"branch_id" db:"branch_id"`
	Name         string `json:"name" db:"name"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	Phone        string `json:"phone" db:"phone"`
	IsActive     bool   `json:"is_active" db:"is_active"`
}

type UserCreateRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required"`
	BranchID *int64 `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=15"`
}

type UserUpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Role     *string `json:"role,omitempty"`
	BranchID *int64  `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=15"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type Actor struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	BranchID *int64 `json:"branch_id,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        Role   `json:"role"`
	UserID      int64  `json:"user_id"`
	BranchID    *int64 `json:"branch_id,omitempty"`
	ExpiresAt   string `json:"expires_at"`
}

type Category struct {
	ID     int64  `json:"id" db:"id"`
	NameEn string `json:"name_en" db:"name_en"`
	NameUr string `json:"name_ur" db:"name_ur"`
}

type Brand struct {
	ID     int64  `json:"id" db:"id"`
	NameEn string `json:"name_en" db:"name_en"`
	NameUr string `json:"name_ur" db:"name_ur"`
}

type NameRequest struct {
	NameEn *string `json:"name_en,omitempty" validate:"omitempty,min=1,max=100"`
	NameUr *string `json:"name_ur,omitempty" validate:"omitempty,max=100"`
}

type Product struct {
	ID                 int64               `json:"id" db:"id"`
	Code               string              `json:"code" db:"code"`
	Barcode            string              `json:"barcode" db:"barcode"`
	NameEn             string              `json:"name_en" db:"name_en"`
	NameUr             string              `json:"name_ur" db:"name_ur"`
	BrandID            *int64              `json:"brand_id" db:"brand_id"`
	CategoryID         *int64              `json:"category_id" db:"category_id"`
	ModelCompatibility string              `json:"model_compatibility" db:"model_compatibility"`
	PurchasePrice      decimal.Decimal     `json:"purchase_price" db:"purchase_price"`
	SellingPrice       decimal.Decimal     `json:"selling_price" db:"selling_price"`
	WholesalePrice     decimal.NullDecimal `json:"wholesale_price" db:"wholesale_price"`
	GSTPercent         decimal.NullDecimal `json:"gst_percent" db:"gst_percent"`
	StockQty           decimal.Decimal     `json:"stock_qty" db:"stock_qty"`
	MinStockLevel      int64               `json:"min_stock_level" db:"min_stock_level"`
	Status             ProductStatus       `json:"status" db:"status"`
	Notes              string              `json:"notes" db:"notes"`
}

type ProductCreateRequest struct {
	Code               string           `json:"code" validate:"required,max=50"`
	Barcode            string           `json:"barcode,omitempty" validate:"omitempty,max=50"`
	NameEn             string           `json:"name_en" validate:"required,max=200"`
	NameUr             string           `json:"name_ur,omitempty" validate:"omitempty,max=200"`
	BrandID            *int64           `json:"brand_id,omitempty" validate:"omitempty,gt=0"`
	CategoryID         *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	ModelCompatibility string           `json:"model_compatibility,omitempty" validate:"omitempty,max=255"`
	PurchasePrice      *decimal.Decimal `json:"purchase_price" validate:"required"`
	SellingPrice       *decimal.Decimal `json:"selling_price" validate:"required"`
	WholesalePrice     *decimal.Decimal `json:"wholesale_price,omitempty"`
	GSTPercent         *decimal.Decimal `json:"gst_percent,omitempty"`
	StockQty           *decimal.Decimal `json:"stock_qty,omitempty"`
	MinStockLevel      *int64           `json:"min_stock_level,omitempty" validate:"omitempty,min=0"`
	Status             string           `json:"status,omitempty"`
	Notes              string           `json:"notes,omitempty"`
}

type ProductUpdateRequest struct {
	Barcode            *string          `json:"barcode,omitempty" validate:"omitempty,max=50"`
	NameEn             *string          `json:"name_en,omitempty" validate:"omitempty,min=1,max=200"`
	NameUr             *string          `json:"name_ur,omitempty" validate:"omitempty,max=200"`
	BrandID            *int64           `json:"brand_id,omitempty" validate:"omitempty,gt=0"`
	CategoryID         *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	ModelCompatibility *string          `json:"model_compatibility,omitempty" validate:"omitempty,max=255"`
	PurchasePrice      *decimal.Decimal `json:"purchase_price,omitempty"`
	SellingPrice       *decimal.Decimal `json:"selling_price,omitempty"`
	WholesalePrice     *decimal.Decimal `json:"wholesale_price,omitempty"`
	GSTPercent         *decimal.Decimal `json:"gst_percent,omitempty"`
	MinStockLevel      *int64           `json:"min_stock_level,omitempty" validate:"omitempty,min=0"`
	Status             *string          `json:"status,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
}

// StockUpdateRequest applies a signed delta outside a sale or purchase.
type StockUpdateRequest struct {
	Quantity int64  `json:"quantity" validate:"required"`
	Notes    string `json:"notes,omitempty"`
}

type ProductFilter struct {
	Query        string
	CategoryID   *int64
	Status       ProductStatus
	LowStockOnly bool
}

type Customer struct {
	ID                   int64           `json:"id" db:"id"`
	Name                 string          `json:"name" db:"name"`
	Phone                string          `json:"phone" db:"phone"`
	CNIC                 string          `json:"cnic" db:"cnic"`
	Address              string          `json:"address" db:"address"`
	CreditLimit          decimal.Decimal `json:"credit_limit" db:"credit_limit"`
	CurrentCreditBalance decimal.Decimal `json:"current_credit_balance" db:"current_credit_balance"`
	LoyaltyPoints        int64           `json:"loyalty_points" db:"loyalty_points"`
}

type CustomerRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone       *string          `json:"phone,omitempty" validate:"omitempty,max=20"`
	CNIC        *string          `json:"cnic,omitempty" validate:"omitempty,max=15"`
	Address     *string          `json:"address,omitempty"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
}

type Supplier struct {
	ID            int64  `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	ContactPerson string `json:"contact_person" db:"contact_person"`
	Phone         string `json:"phone" db:"phone"`
	CNIC          string `json:"cnic" db:"cnic"`
	NTN           string `json:"ntn" db:"ntn"`
	Address       string `json:"address" db:"address"`
	Notes         string `json:"notes" db:"notes"`
}

type SupplierRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	ContactPerson *string `json:"contact_person,omitempty" validate:"omitempty,max=100"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	CNIC          *string `json:"cnic,omitempty" validate:"omitempty,max=15"`
	NTN           *string `json:"ntn,omitempty" validate:"omitempty,max=20"`
	Address       *string `json:"address,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// PaymentSplit is one part of a mixed payment.
type PaymentSplit struct {
	Method    PaymentMethod   `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

type PaymentSplits []PaymentSplit

func (p PaymentSplits) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *PaymentSplits) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	}
	return errors.New("unsupported payment_details value")
}

type Sale struct {
	ID               int64           `json:"id" db:"id"`
	BranchID         int64           `json:"branch_id" db:"branch_id"`
	CustomerID       *int64          `json:"customer_id" db:"customer_id"`
	CustomerName     string          `json:"customer_name" db:"customer_name"`
	InvoiceNo        string          `json:"invoice_no" db:"invoice_no"`
	SaleDate         time.Time       `json:"sale_date" db:"sale_date"`
	Subtotal         decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountAmount   decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	GSTAmount        decimal.Decimal `json:"gst_amount" db:"gst_amount"`
	FurtherTaxAmount decimal.Decimal `json:"further_tax_amount" db:"further_tax_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaymentMethod    PaymentMethod   `json:"payment_method" db:"payment_method"`
	PaymentDetails   PaymentSplits   `json:"payment_details,omitempty" db:"payment_details"`
	IsCreditSale     bool            `json:"is_credit_sale" db:"is_credit_sale"`
	FBRInvoiceNumber *int64          `json:"fbr_invoice_number" db:"fbr_invoice_number"`
	CreatedBy        int64           `json:"created_by" db:"created_by"`
	Items            []SaleItem      `json:"items,omitempty" db:"-"`
}

type SaleItem struct {
	ID              int64           `json:"id" db:"id"`
	SaleID          int64           `json:"sale_id" db:"sale_id"`
	ProductID       int64           `json:"product_id" db:"product_id"`
	Qty             decimal.Decimal `json:"qty" db:"qty"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountPerItem decimal.Decimal `json:"discount_per_item" db:"discount_per_item"`
	GSTPercent      decimal.Decimal `json:"gst_percent" db:"gst_percent"`
	TotalPrice      decimal.Decimal `json:"total_price" db:"total_price"`
}

type SaleLineRequest struct {
	ProductID       int64            `json:"product_id" validate:"required,gt=0"`
	Qty             decimal.Decimal  `json:"qty"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPerItem *decimal.Decimal `json:"discount_per_item,omitempty"`
	GSTPercent      *decimal.Decimal `json:"gst_percent,omitempty"`
}

type SaleCreateRequest struct {
	BranchID         int64             `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	CustomerID       *int64            `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	CustomerName     string            `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	InvoiceNo        string            `json:"invoice_no,omitempty" validate:"omitempty,max=100"`
	Items            []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod    string            `json:"payment_method" validate:"required"`
	PaymentDetails   PaymentSplits     `json:"payment_details,omitempty"`
	IsCreditSale     *bool             `json:"is_credit_sale,omitempty"`
	FBRInvoiceNumber *int64            `json:"fbr_invoice_number,omitempty"`
}

type SaleFilter struct {
	BranchID   *int64
	CustomerID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
}

type Purchase struct {
	ID             int64           `json:"id" db:"id"`
	BranchID       int64           `json:"branch_id" db:"branch_id"`
	SupplierID     int64           `json:"supplier_id" db:"supplier_id"`
	InvoiceNo      string          `json:"invoice_no" db:"invoice_no"`
	PurchaseDate   time.Time       `json:"purchase_date" db:"purchase_date"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	GSTAmount      decimal.Decimal `json:"gst_amount" db:"gst_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	DueAmount      decimal.Decimal `json:"due_amount" db:"due_amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method" db:"payment_method"`
	Notes          string          `json:"notes" db:"notes"`
	CreatedBy      int64           `json:"created_by" db:"created_by"`
	Items          []PurchaseItem  `json:"items,omitempty" db:"-"`
}

type PurchaseItem struct {
	ID         int64           `json:"id" db:"id"`
	PurchaseID int64           `json:"purchase_id" db:"purchase_id"`
	ProductID  int64           `json:"product_id" db:"product_id"`
	Qty        decimal.Decimal `json:"qty" db:"qty"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	GSTPercent decimal.Decimal `json:"gst_percent" db:"gst_percent"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
}

type PurchaseLineRequest struct {
	ProductID  int64            `json:"product_id" validate:"required,gt=0"`
	Qty        decimal.Decimal  `json:"qty"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	GSTPercent *decimal.Decimal `json:"gst_percent,omitempty"`
}

type PurchaseCreateRequest struct {
	BranchID       int64                 `json:"branch_id" validate:"required,gt=0"`
	SupplierID     int64                 `json:"supplier_id" validate:"required,gt=0"`
	InvoiceNo      string                `json:"invoice_no" validate:"required,max=100"`
	PurchaseDate   string                `json:"purchase_date" validate:"required"`
	Items          []PurchaseLineRequest `json:"items" validate:"required,min=1,dive"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	PaymentMethod  string                `json:"payment_method" validate:"required"`
	PaidAmount     *decimal.Decimal      `json:"paid_amount" validate:"required"`
	Notes          string                `json:"notes,omitempty"`
}

type PurchaseFilter struct {
	BranchID   *int64
	SupplierID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
}

type StockAdjustment struct {
	ID         int64            `json:"id" db:"id"`
	BranchID   *int64           `json:"branch_id" db:"branch_id"`
	ProductID  int64            `json:"product_id" db:"product_id"`
	QtyChange  int64            `json:"qty_change" db:"qty_change"`
	Reason     AdjustmentReason `json:"reason" db:"reason"`
	Notes      string           `json:"notes" db:"notes"`
	AdjustedBy int64            `json:"adjusted_by" db:"adjusted_by"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

type StockAdjustmentRequest struct {
	BranchID  *int64 `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	QtyChange int64  `json:"qty_change" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=50"`
	Notes     string `json:"notes,omitempty"`
}

type AdjustmentFilter struct {
	BranchID  *int64
	ProductID *int64
	From      *time.Time
	To        *time.Time
	Limit     int
}

type ExpenseCategory struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type ExpenseCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type Expense struct {
	ID          int64           `json:"id" db:"id"`
	BranchID    *int64          `json:"branch_id" db:"branch_id"`
	CategoryID  *int64          `json:"category_id" db:"category_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	ExpenseDate time.Time       `json:"expense_date" db:"expense_date"`
	PaidTo      string          `json:"paid_to" db:"paid_to"`
	CreatedBy   int64           `json:"created_by" db:"created_by"`
}

type ExpenseRequest struct {
	BranchID    *int64           `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	CategoryID  *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	ExpenseDate *string          `json:"expense_date,omitempty"`
	PaidTo      *string          `json:"paid_to,omitempty" validate:"omitempty,max=150"`
}

type ExpenseFilter struct {
	BranchID   *int64
	CategoryID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
}

type Receipt struct {
	Sale        Sale           `json:"sale"`
	Items       []ReceiptLine  `json:"items"`
	Customer    *Customer      `json:"customer"`
	Branch      *Branch        `json:"branch"`
	ShopProfile *ShopProfile   `json:"shop_profile"`
	Cashier     *ReceiptPerson `json:"user"`
}

type ReceiptLine struct {
	SaleItem
	Product *Product `json:"product"`
}

type ReceiptPerson struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}
