package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/report"
)

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var data map[string]any
	decodeData(t, rec, &data)
	assert.Equal(t, true, data["ok"])
}

func TestLogin(t *testing.T) {
	handler := newTestAPI(t).Handler()

	t.Run("success", func(t *testing.T) {
		rec := send(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "manager", "password": "manager123"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var data domain.LoginResponse
		decodeData(t, rec, &data)
		assert.NotEmpty(t, data.AccessToken)
		assert.Equal(t, domain.RoleManager, data.Role)
		require.NotNil(t, data.BranchID)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := send(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "manager", "password": "nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "invalid credentials", body.Error)
		assert.Equal(t, body.Error, body.Message)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := send(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "manager", "pin": "1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMeReturnsCurrentUser(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "cashier", "cashier123")

	rec := send(t, handler, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user domain.User
	decodeData(t, rec, &user)
	assert.Equal(t, "cashier", user.Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := send(t, handler, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(t, handler, http.MethodGet, "/api/v1/products", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSaleFlow(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "cashier", "cashier123")

	rec := send(t, handler, http.MethodPost, "/api/v1/sales", token, map[string]any{
		"invoice_no":     "INV-2001",
		"payment_method": "cash",
		"items": []map[string]any{
			{"product_id": 1, "qty": 2, "unit_price": "350"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sale domain.Sale
	decodeData(t, rec, &sale)
	assert.Equal(t, "819", sale.TotalAmount.String())
	assert.Equal(t, "119", sale.GSTAmount.String())
	require.Len(t, sale.Items, 1)

	rec = send(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", 1), token, nil)
	var product domain.Product
	decodeData(t, rec, &product)
	assert.Equal(t, "38", product.StockQty.String())

	rec = send(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/sales/%d/receipt", sale.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var receipt domain.Receipt
	decodeData(t, rec, &receipt)
	assert.Equal(t, "INV-2001", receipt.Sale.InvoiceNo)
	require.Len(t, receipt.Items, 1)

	today := time.Now().UTC().Format(time.DateOnly)
	rec = send(t, handler, http.MethodGet, "/api/v1/sales?start_date="+today+"&end_date="+today, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sales []domain.Sale
	decodeData(t, rec, &sales)
	assert.Len(t, sales, 1)

}

func TestCreateSaleErrors(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "cashier", "cashier123")

	t.Run("insufficient stock", func(t *testing.T) {
		rec := send(t, handler, http.MethodPost, "/api/v1/sales", token, map[string]any{
			"invoice_no":     "INV-3001",
			"payment_method": "cash",
			"items":          []map[string]any{{"product_id": 4, "qty": 5, "unit_price": "750"}},
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, decodeBody(t, rec).Error, "CHG-CAR-2P")
	})

	t.Run("validation errors listed per field", func(t *testing.T) {
		rec := send(t, handler, http.MethodPost, "/api/v1/sales", token, map[string]any{
			"invoice_no":     "INV-3002",
			"payment_method": "cash",
			"items":          []map[string]any{},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var data struct {
			Errors map[string]string `json:"errors"`
		}
		body := decodeBody(t, rec)
		require.NoError(t, jsonUnmarshal(body.Data, &data))
		assert.Contains(t, data.Errors, "items")
	})

	t.Run("unknown product", func(t *testing.T) {
		rec := send(t, handler, http.MethodPost, "/api/v1/sales", token, map[string]any{
			"invoice_no":     "INV-3003",
			"payment_method": "cash",
			"items":          []map[string]any{{"product_id": 999, "qty": 1, "unit_price": "10"}},
		})
		assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("missing sale", func(t *testing.T) {
		rec := send(t, handler, http.MethodGet, "/api/v1/sales/999", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		rec := send(t, handler, http.MethodGet, "/api/v1/sales/abc", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRoleChecks(t *testing.T) {
	handler := newTestAPI(t).Handler()
	cashier := loginAs(t, handler, "cashier", "cashier123")

	rec := send(t, handler, http.MethodPost, "/api/v1/products", cashier, map[string]any{
		"code":           "SCR-GLS-A54",
		"name_en":        "Glass Protector A54",
		"purchase_price": "80",
		"selling_price":  "250",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(t, handler, http.MethodGet, "/api/v1/reports/sales", cashier, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stock := loginAs(t, handler, "stock", "stock123")
	rec = send(t, handler, http.MethodPost, "/api/v1/products", stock, map[string]any{
		"code":           "SCR-GLS-A54",
		"name_en":        "Glass Protector A54",
		"purchase_price": "80",
		"selling_price":  "250",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var product domain.Product
	decodeData(t, rec, &product)
	assert.Equal(t, domain.ProductActive, product.Status)
	assert.Equal(t, int64(domain.DefaultMinStockLevel), product.MinStockLevel)

	rec = send(t, handler, http.MethodPost, "/api/v1/products", stock, map[string]any{
		"code":           "SCR-GLS-A54",
		"name_en":        "Duplicate",
		"purchase_price": "80",
		"selling_price":  "250",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestIssuedTokensFollowAccountChanges(t *testing.T) {
	handler := newTestAPI(t).Handler()
	admin := loginAs(t, handler, "admin", "admin123")
	cashier := loginAs(t, handler, "cashier", "cashier123")

	rec := send(t, handler, http.MethodGet, "/api/v1/auth/me", cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me domain.User
	decodeData(t, rec, &me)

	rec = send(t, handler, http.MethodGet, "/api/v1/reports/sales", cashier, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(t, handler, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", me.ID), admin, map[string]any{"role": "manager"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = send(t, handler, http.MethodGet, "/api/v1/reports/sales", cashier, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(t, handler, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", me.ID), admin, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(t, handler, http.MethodPost, "/api/v1/sales", cashier, map[string]any{
		"payment_method": "cash",
		"items":          []map[string]any{{"product_id": 1, "qty": 1, "unit_price": "350"}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = send(t, handler, http.MethodGet, "/api/v1/auth/me", cashier, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", me.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = send(t, handler, http.MethodGet, "/api/v1/auth/me", cashier, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStockAdjustmentAndPurchase(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "stock", "stock123")

	rec := send(t, handler, http.MethodPost, "/api/v1/stock-adjustments", token, map[string]any{
		"product_id": 5,
		"qty_change": -2,
		"reason":     "stolen",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reason"`)

	rec = send(t, handler, http.MethodPost, "/api/v1/stock-adjustments", token, map[string]any{
		"product_id": 5,
		"qty_change": -2,
		"reason":     "damage",
		"notes":      "dropped box",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var adjustment domain.StockAdjustment
	decodeData(t, rec, &adjustment)
	assert.Equal(t, domain.ReasonDamage, adjustment.Reason)

	rec = send(t, handler, http.MethodPost, "/api/v1/suppliers", token, map[string]any{
		"name":  "Hall Road Traders",
		"phone": "0300 1112233",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var supplier domain.Supplier
	decodeData(t, rec, &supplier)

	rec = send(t, handler, http.MethodPost, "/api/v1/purchases", token, map[string]any{
		"branch_id":      1,
		"supplier_id":    supplier.ID,
		"invoice_no":     "PUR-77",
		"purchase_date":  "2026-03-14",
		"payment_method": "bank_transfer",
		"paid_amount":    "1000",
		"items":          []map[string]any{{"product_id": 5, "qty": 10, "unit_price": "120"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(t, handler, http.MethodGet, "/api/v1/products/5", token, nil)
	var product domain.Product
	decodeData(t, rec, &product)
	assert.Equal(t, "33", product.StockQty.String())
}

func TestReports(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginAs(t, handler, "manager", "manager123")

	rec := send(t, handler, http.MethodGet, "/api/v1/reports/stock?threshold=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stock domain.StockReport
	decodeData(t, rec, &stock)
	assert.Len(t, stock.Levels, 2)
	assert.Len(t, stock.LowStock, 1)

	rec = send(t, handler, http.MethodGet, "/api/v1/reports/sales?format=xlsx", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sales-report-")
	assert.Equal(t, "PK", rec.Body.String()[:2])

	rec = send(t, handler, http.MethodGet, "/api/v1/reports/expenses?start_date=14-03-2026", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "start_date")

	rec = send(t, handler, http.MethodGet, "/api/v1/reports/purchases?start_date=2026-03-14&end_date=2026-03-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
