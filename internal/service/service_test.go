package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukaan/backend/internal/cache"
	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/inventory"
	"dukaan/backend/internal/store"
	"dukaan/backend/internal/store/memory"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.StockEvent
}

func (p *recordingPublisher) PublishStockEvents(_ context.Context, events []inventory.StockEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type mapCache struct {
	mu      sync.Mutex
	values  map[int64]*domain.Receipt
	gets    int
	setTTLs []time.Duration
}

func (c *mapCache) Get(_ context.Context, saleID int64) (*domain.Receipt, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.values[saleID]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, saleID int64, value *domain.Receipt, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[int64]*domain.Receipt{}
	}
	c.values[saleID] = value
	c.setTTLs = append(c.setTTLs, ttl)
	return nil
}

type fixture struct {
	svc       *Service
	repo      *memory.Store
	publisher *recordingPublisher
	receipts  *mapCache
	locker    *cache.LocalLocker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      memory.NewSeeded(),
		publisher: &recordingPublisher{},
		receipts:  &mapCache{},
		locker:    cache.NewLocalLocker(),
	}
	f.svc = New(f.repo, Options{
		ReceiptCache: f.receipts,
		ReceiptTTL:   time.Minute,
		Locker:       f.locker,
		Publisher:    f.publisher,
		Logger:       zerolog.Nop(),
		Now:          func() time.Time { return fixedNow },
	})
	return f
}

func (f *fixture) as(t *testing.T, username string) context.Context {
	t.Helper()
	user, err := f.repo.GetUserByUsername(context.Background(), username)
	require.NoError(t, err)
	return WithActor(context.Background(), domain.Actor{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		BranchID: user.BranchID,
	})
}

func (f *fixture) product(t *testing.T, code string) domain.Product {
	t.Helper()
	p, err := f.repo.GetProductByCode(context.Background(), code)
	require.NoError(t, err)
	return *p
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func TestCreateSaleComputesTotalsAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "cashier")
	cable := f.product(t, "CBL-TC-1M")
	charger := f.product(t, "CHG-20W")

	sale, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		InvoiceNo:     "INV-1001",
		PaymentMethod: "cash",
		Items: []domain.SaleLineRequest{
			{ProductID: cable.ID, Qty: dec("2"), UnitPrice: dec("350"), DiscountPerItem: decPtr("50")},
			{ProductID: charger.ID, Qty: dec("1"), UnitPrice: dec("3500"), GSTPercent: decPtr("0")},
		},
	})
	require.NoError(t, err)

	assert.True(t, sale.Subtotal.Equal(dec("4200")), sale.Subtotal.String())
	assert.True(t, sale.DiscountAmount.Equal(dec("100")))
	assert.True(t, sale.GSTAmount.Equal(dec("102")))
	assert.True(t, sale.TotalAmount.Equal(dec("4202")))
	assert.True(t, sale.PaidAmount.Equal(sale.TotalAmount))
	assert.False(t, sale.IsCreditSale)
	assert.Equal(t, int64(1), sale.BranchID)
	assert.Equal(t, fixedNow, sale.SaleDate)
	require.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].TotalPrice.Equal(dec("702")))
	assert.True(t, sale.Items[1].GSTPercent.IsZero())

	assert.True(t, f.product(t, "CBL-TC-1M").StockQty.Equal(dec("38")))
	assert.True(t, f.product(t, "CHG-20W").StockQty.Equal(dec("7")))

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, sale.ID, f.publisher.events[0].ReferenceID)
	assert.True(t, f.publisher.events[0].Delta.Equal(dec("-2")))
}

func TestCreateSaleCreditDefaultsFromPaymentMethod(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "cashier")
	cable := f.product(t, "CBL-TC-1M")

	sale, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		InvoiceNo:     "INV-CR-1",
		PaymentMethod: "credit",
		Items:         []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)
	assert.True(t, sale.IsCreditSale)
	assert.True(t, sale.PaidAmount.IsZero())

	notCredit := false
	sale, err = f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		InvoiceNo:     "INV-CR-2",
		PaymentMethod: "credit",
		IsCreditSale:  &notCredit,
		Items:         []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)
	assert.True(t, sale.PaidAmount.Equal(dec("117")))
}

func TestCreateSaleBranchRules(t *testing.T) {
	f := newFixture(t)
	cable := f.product(t, "CBL-TC-1M")
	req := domain.SaleCreateRequest{
		InvoiceNo:     "INV-B",
		PaymentMethod: "card",
		Items:         []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), UnitPrice: dec("350")}},
	}

	_, err := f.svc.CreateSale(f.as(t, "admin"), req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "branch is required for sales", verr.Message)

	req.BranchID = 99
	_, err = f.svc.CreateSale(f.as(t, "admin"), req)
	require.ErrorIs(t, err, store.ErrNotFound)

	sale, err := f.svc.CreateSale(f.as(t, "cashier"), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sale.BranchID)
}

func TestCreateSaleRejectsInsufficientStockBeforeWriting(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "cashier")
	carCharger := f.product(t, "CHG-CAR-2P")

	_, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		InvoiceNo:     "INV-X",
		PaymentMethod: "cash",
		Items: []domain.SaleLineRequest{
			{ProductID: carCharger.ID, Qty: dec("2"), UnitPrice: dec("750")},
			{ProductID: carCharger.ID, Qty: dec("2"), UnitPrice: dec("750")},
		},
	})
	require.ErrorIs(t, err, store.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "CHG-CAR-2P")
	assert.True(t, f.product(t, "CHG-CAR-2P").StockQty.Equal(dec("3")))
	assert.Empty(t, f.publisher.events)
}

func TestCreateSaleValidation(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "cashier")
	cable := f.product(t, "CBL-TC-1M")

	cases := map[string]domain.SaleCreateRequest{
		"no items":       {InvoiceNo: "A", PaymentMethod: "cash"},
		"bad method":     {InvoiceNo: "A", PaymentMethod: "cheque", Items: []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1")}}},
		"zero qty":       {InvoiceNo: "A", PaymentMethod: "cash", Items: []domain.SaleLineRequest{{ProductID: cable.ID}}},
		"gst over 100":   {InvoiceNo: "A", PaymentMethod: "cash", Items: []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), GSTPercent: decPtr("101")}}},
		"mixed one part": {InvoiceNo: "A", PaymentMethod: "mixed", PaymentDetails: domain.PaymentSplits{{Method: "cash", Amount: dec("1")}}, Items: []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1")}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateSale(ctx, req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		InvoiceNo:     "A",
		PaymentMethod: "cash",
		Items:         []domain.SaleLineRequest{{ProductID: 9999, Qty: dec("1")}},
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateSaleRoleGate(t *testing.T) {
	f := newFixture(t)
	cable := f.product(t, "CBL-TC-1M")
	req := domain.SaleCreateRequest{
		InvoiceNo:     "INV-R",
		PaymentMethod: "cash",
		Items:         []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), UnitPrice: dec("350")}},
	}

	_, err := f.svc.CreateSale(f.as(t, "stock"), req)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CreateSale(context.Background(), req)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateSaleRejectsInvoiceInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "cashier")
	cable := f.product(t, "CBL-TC-1M")

	held, err := f.locker.Obtain(context.Background(), cache.SaleLockKey(1, "INV-DUP"), time.Minute)
	require.NoError(t, err)

	_, err = f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		InvoiceNo:     "INV-DUP",
		PaymentMethod: "cash",
		Items:         []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), UnitPrice: dec("350")}},
	})
	require.ErrorIs(t, err, store.ErrConflict)
	assert.True(t, f.product(t, "CBL-TC-1M").StockQty.Equal(dec("40")))

	require.NoError(t, held.Release(context.Background()))
	_, err = f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		InvoiceNo:     "INV-DUP",
		PaymentMethod: "cash",
		Items:         []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), UnitPrice: dec("350")}},
	})
	require.NoError(t, err)
}

func TestSaleReceiptIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "cashier")
	cable := f.product(t, "CBL-TC-1M")

	customer, err := f.svc.CreateCustomer(ctx, domain.CustomerRequest{Name: strPtr("Ayesha"), Phone: strPtr("0300 1234567")})
	require.NoError(t, err)

	sale, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		InvoiceNo:     "INV-RC",
		CustomerID:    &customer.ID,
		PaymentMethod: "easypaisa",
		Items:         []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), UnitPrice: dec("350")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ayesha", sale.CustomerName)

	receipt, err := f.svc.SaleReceipt(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, "CBL-TC-1M", receipt.Items[0].Product.Code)
	assert.Equal(t, "Ayesha", receipt.Customer.Name)
	assert.Equal(t, "Main Branch", receipt.Branch.BranchNameEn)
	assert.Equal(t, "cashier", receipt.Cashier.Username)
	require.NotNil(t, receipt.ShopProfile)
	assert.Equal(t, []time.Duration{time.Minute}, f.receipts.setTTLs)

	again, err := f.svc.SaleReceipt(ctx, sale.ID)
	require.NoError(t, err)
	assert.Same(t, receipt, again)
	assert.Len(t, f.receipts.setTTLs, 1)
}

func TestCreatePurchaseAllowsNegativeDue(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "stock")
	cover := f.product(t, "CVR-A54-SIL")

	supplier, err := f.svc.CreateSupplier(ctx, domain.SupplierRequest{Name: strPtr("Hall Road Traders"), Phone: strPtr("0333 4567890")})
	require.NoError(t, err)

	purchase, err := f.svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		BranchID:       1,
		SupplierID:     supplier.ID,
		InvoiceNo:      "PO-77",
		PurchaseDate:   "2026-03-10",
		PaymentMethod:  "cheque",
		DiscountAmount: dec("50"),
		PaidAmount:     decPtr("1000"),
		Items: []domain.PurchaseLineRequest{
			{ProductID: cover.ID, Qty: dec("3"), UnitPrice: dec("100")},
		},
	})
	require.NoError(t, err)
	assert.True(t, purchase.TotalAmount.Equal(dec("351")))
	assert.True(t, purchase.DueAmount.Equal(dec("-699")))
	assert.Equal(t, "2026-03-10", purchase.PurchaseDate.Format(time.DateOnly))
	assert.True(t, f.product(t, "CVR-A54-SIL").StockQty.Equal(dec("28")))

	_, err = f.svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		BranchID:      1,
		SupplierID:    supplier.ID,
		InvoiceNo:     "PO-78",
		PurchaseDate:  "10/03/2026",
		PaymentMethod: "cash",
		PaidAmount:    decPtr("0"),
		Items:         []domain.PurchaseLineRequest{{ProductID: cover.ID, Qty: dec("1"), UnitPrice: dec("1")}},
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		BranchID:      1,
		SupplierID:    404,
		InvoiceNo:     "PO-79",
		PurchaseDate:  "2026-03-10",
		PaymentMethod: "cash",
		PaidAmount:    decPtr("0"),
		Items:         []domain.PurchaseLineRequest{{ProductID: cover.ID, Qty: dec("1"), UnitPrice: dec("1")}},
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStockAdjustmentHasNoFloor(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "manager")
	carCharger := f.product(t, "CHG-CAR-2P")

	adjustment, err := f.svc.CreateStockAdjustment(ctx, domain.StockAdjustmentRequest{
		ProductID: carCharger.ID,
		QtyChange: -5,
		Reason:    "damage",
		Notes:     "water damage",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonDamage, adjustment.Reason)
	require.NotNil(t, adjustment.BranchID)
	assert.Equal(t, int64(1), *adjustment.BranchID)
	assert.True(t, f.product(t, "CHG-CAR-2P").StockQty.Equal(dec("-2")))

	_, err = f.svc.CreateStockAdjustment(ctx, domain.StockAdjustmentRequest{ProductID: carCharger.ID, QtyChange: 1, Reason: "Damage"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateStockAdjustment(ctx, domain.StockAdjustmentRequest{ProductID: carCharger.ID, QtyChange: 0, Reason: "found"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateStockAdjustment(ctx, domain.StockAdjustmentRequest{ProductID: 9999, QtyChange: 1, Reason: "found"})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.CreateStockAdjustment(f.as(t, "cashier"), domain.StockAdjustmentRequest{ProductID: carCharger.ID, QtyChange: 1, Reason: "found"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateProductStockRecordsCorrection(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "stock")
	cable := f.product(t, "CBL-TC-1M")

	adjustment, product, err := f.svc.UpdateProductStock(ctx, cable.ID, domain.StockUpdateRequest{Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonCorrection, adjustment.Reason)
	assert.Equal(t, "manual stock update", adjustment.Notes)
	assert.True(t, product.StockQty.Equal(dec("52")))

	adjustments, err := f.svc.ListStockAdjustments(ctx, domain.AdjustmentFilter{ProductID: &cable.ID})
	require.NoError(t, err)
	assert.Len(t, adjustments, 1)
}

func TestCreateProductDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "manager")

	product, err := f.svc.CreateProduct(ctx, domain.ProductCreateRequest{
		Code:          " SCR-GLS-A54 ",
		NameEn:        "Glass Protector A54",
		PurchasePrice: decPtr("60"),
		SellingPrice:  decPtr("250"),
	})
	require.NoError(t, err)
	assert.Equal(t, "SCR-GLS-A54", product.Code)
	assert.True(t, product.GSTPercent.Valid)
	assert.True(t, product.GSTPercent.Decimal.Equal(dec("17")))
	assert.Equal(t, int64(5), product.MinStockLevel)
	assert.Equal(t, domain.ProductActive, product.Status)
	assert.True(t, product.StockQty.IsZero())

	_, err = f.svc.CreateProduct(ctx, domain.ProductCreateRequest{
		Code: "SCR-GLS-A54", NameEn: "Duplicate", PurchasePrice: decPtr("1"), SellingPrice: decPtr("1"),
	})
	require.ErrorIs(t, err, store.ErrConflict)

	_, err = f.svc.CreateProduct(ctx, domain.ProductCreateRequest{
		Code: "X-1", NameEn: "Bad status", PurchasePrice: decPtr("1"), SellingPrice: decPtr("1"), Status: "archived",
	})
	require.ErrorIs(t, err, ErrValidation)

	toggled, err := f.svc.ToggleProductStatus(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductInactive, toggled.Status)

	found, err := f.svc.SearchProducts(ctx, "glass")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCustomerPhoneIsNormalizedAndUnique(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "cashier")

	customer, err := f.svc.CreateCustomer(ctx, domain.CustomerRequest{Name: strPtr("Bilal"), Phone: strPtr("0321-5551234")})
	require.NoError(t, err)
	assert.Equal(t, "+923215551234", customer.Phone)
	assert.True(t, customer.CreditLimit.IsZero())

	_, err = f.svc.CreateCustomer(ctx, domain.CustomerRequest{Name: strPtr("Other"), Phone: strPtr("+92 321 5551234")})
	require.ErrorIs(t, err, store.ErrConflict)

	_, err = f.svc.CreateCustomer(ctx, domain.CustomerRequest{Name: strPtr("Bad"), Phone: strPtr("12")})
	require.ErrorIs(t, err, ErrValidation)

	updated, err := f.svc.UpdateCustomer(ctx, customer.ID, domain.CustomerRequest{Phone: strPtr("0321 5551234"), Address: strPtr("Anarkali")})
	require.NoError(t, err)
	assert.Equal(t, "Anarkali", updated.Address)

	require.ErrorIs(t, f.svc.DeleteCustomer(ctx, customer.ID), ErrForbidden)
	require.NoError(t, f.svc.DeleteCustomer(f.as(t, "manager"), customer.ID))
}

func TestUserLifecycle(t *testing.T) {
	f := newFixture(t)
	admin := f.as(t, "admin")

	user, err := f.svc.RegisterUser(admin, domain.UserCreateRequest{
		Username: "counter2",
		Password: "s3cret-pass",
		Name:     "Second Counter",
		Role:     "cashier",
		BranchID: int64Ptr(1),
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, isPasswordHash(user.PasswordHash))

	_, err = f.svc.RegisterUser(admin, domain.UserCreateRequest{Username: "x", Password: "short", Name: "X", Role: "cashier"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")

	_, err = f.svc.RegisterUser(admin, domain.UserCreateRequest{Username: "auditor", Password: "s3cret-pass", Name: "A", Role: "auditor"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.RegisterUser(f.as(t, "manager"), domain.UserCreateRequest{Username: "m2", Password: "s3cret-pass", Name: "M", Role: "manager"})
	require.ErrorIs(t, err, ErrForbidden)

	authed, err := f.svc.Authenticate(context.Background(), "counter2", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCashier, authed.Role)

	_, err = f.svc.Authenticate(context.Background(), "counter2", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	self := WithActor(context.Background(), domain.Actor{UserID: user.ID, Username: user.Username, Role: user.Role})
	err = f.svc.ChangePassword(self, domain.PasswordChangeRequest{CurrentPassword: "nope", NewPassword: "another-pass"})
	require.ErrorIs(t, err, ErrValidation)
	require.NoError(t, f.svc.ChangePassword(self, domain.PasswordChangeRequest{CurrentPassword: "s3cret-pass", NewPassword: "another-pass"}))
	_, err = f.svc.Authenticate(context.Background(), "counter2", "another-pass")
	require.NoError(t, err)

	inactive := false
	_, err = f.svc.UpdateUser(admin, user.ID, domain.UserUpdateRequest{IsActive: &inactive})
	require.NoError(t, err)
	_, err = f.svc.Authenticate(context.Background(), "counter2", "another-pass")
	require.ErrorIs(t, err, ErrInactiveAccount)

	adminActor, _ := ActorFromContext(admin)
	require.ErrorIs(t, f.svc.DeleteUser(admin, adminActor.UserID), store.ErrConflict)
	require.NoError(t, f.svc.DeleteUser(admin, user.ID))
}

func TestSessionActorFollowsStoredUser(t *testing.T) {
	f := newFixture(t)
	admin := f.as(t, "admin")
	ctx := context.Background()
	cashier, err := f.repo.GetUserByUsername(ctx, "cashier")
	require.NoError(t, err)

	actor, err := f.svc.SessionActor(ctx, cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCashier, actor.Role)
	assert.Equal(t, "cashier", actor.Username)

	role := "manager"
	_, err = f.svc.UpdateUser(admin, cashier.ID, domain.UserUpdateRequest{Role: &role})
	require.NoError(t, err)
	actor, err = f.svc.SessionActor(ctx, cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, actor.Role)

	inactive := false
	_, err = f.svc.UpdateUser(admin, cashier.ID, domain.UserUpdateRequest{IsActive: &inactive})
	require.NoError(t, err)
	_, err = f.svc.SessionActor(ctx, cashier.ID)
	require.ErrorIs(t, err, ErrInactiveAccount)

	require.NoError(t, f.svc.DeleteUser(admin, cashier.ID))
	_, err = f.svc.SessionActor(ctx, cashier.ID)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestBootstrapAdminOnlyOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	empty := New(memory.New(), Options{Logger: zerolog.Nop()})

	created, err := empty.BootstrapAdmin(ctx, "owner", "owner-pass")
	require.NoError(t, err)
	assert.True(t, created)

	user, err := empty.Authenticate(ctx, "owner", "owner-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	created, err = empty.BootstrapAdmin(ctx, "second", "second-pass")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = New(memory.New(), Options{Logger: zerolog.Nop()}).BootstrapAdmin(ctx, "owner", "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestReportsAreForManagers(t *testing.T) {
	f := newFixture(t)
	cable := f.product(t, "CBL-TC-1M")

	_, err := f.svc.CreateSale(f.as(t, "cashier"), domain.SaleCreateRequest{
		InvoiceNo:     "INV-REP",
		PaymentMethod: "jazzcash",
		Items:         []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)

	_, err = f.svc.SalesReport(f.as(t, "cashier"), domain.ReportFilter{})
	require.ErrorIs(t, err, ErrForbidden)

	report, err := f.svc.SalesReport(f.as(t, "manager"), domain.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, report.ByPaymentMethod, 1)
	assert.Equal(t, domain.PaymentJazzCash, report.ByPaymentMethod[0].PaymentMethod)

	stock, err := f.svc.StockReport(f.as(t, "admin"), nil)
	require.NoError(t, err)
	assert.Len(t, stock.Levels, 5)
	require.Len(t, stock.LowStock, 1)
	assert.Equal(t, "CHG-CAR-2P", stock.LowStock[0].Code)
}

func TestExpenses(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "manager")

	expense, err := f.svc.CreateExpense(ctx, domain.ExpenseRequest{
		CategoryID:  int64Ptr(1),
		Amount:      decPtr("45000"),
		ExpenseDate: strPtr("2026-03-01"),
		PaidTo:      strPtr("Landlord"),
	})
	require.NoError(t, err)
	require.NotNil(t, expense.BranchID)
	assert.Equal(t, int64(1), *expense.BranchID)

	_, err = f.svc.CreateExpense(ctx, domain.ExpenseRequest{Amount: decPtr("-1")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.ListExpenses(f.as(t, "cashier"), domain.ExpenseFilter{})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CreateExpenseCategory(ctx, domain.ExpenseCategoryRequest{Name: "Transport"})
	require.ErrorIs(t, err, ErrForbidden)
	category, err := f.svc.CreateExpenseCategory(f.as(t, "admin"), domain.ExpenseCategoryRequest{Name: "Transport"})
	require.NoError(t, err)
	assert.Equal(t, "Transport", category.Name)
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func TestCreateSaleGeneratesInvoiceNumber(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, "cashier")
	cable := f.product(t, "CBL-TC-1M")

	sale, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		PaymentMethod: "cash",
		Items:         []domain.SaleLineRequest{{ProductID: cable.ID, Qty: dec("1"), UnitPrice: dec("350")}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^INV-1-20260314-[0-9a-f]{8}$`, sale.InvoiceNo)
}
