package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/inventory"
)

// Commit runs the unit of work in one transaction. Guarded decrements use a
// conditional UPDATE so two concurrent sales cannot both take the last units:
// the loser updates zero rows and the whole transaction rolls back.
func (s *Store) Commit(ctx context.Context, uow *inventory.UnitOfWork) (*inventory.UnitOfWork, error) {
	if uow == nil {
		return nil, errors.New("nil unit of work")
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	switch uow.Kind {
	case inventory.KindSale:
		err = insertSale(ctx, tx, uow.Sale)
	case inventory.KindPurchase:
		err = insertPurchase(ctx, tx, uow.Purchase)
	case inventory.KindAdjustment:
		err = insertAdjustment(ctx, tx, uow.Adjustment)
	default:
		err = errors.New("unknown unit of work kind")
	}
	if err != nil {
		return nil, err
	}

	for _, delta := range uow.Deltas {
		if err := applyDelta(ctx, tx, delta); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return uow, nil
}

func applyDelta(ctx context.Context, tx *sqlx.Tx, delta inventory.StockDelta) error {
	var (
		res sql.Result
		err error
	)
	if delta.Guarded && delta.Qty.IsNegative() {
		res, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock_qty = COALESCE(stock_qty, 0) - $1, updated_at = now()
			WHERE id = $2 AND COALESCE(stock_qty, 0) >= $1
		`, delta.Qty.Neg(), delta.ProductID)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock_qty = COALESCE(stock_qty, 0) + $1, updated_at = now()
			WHERE id = $2
		`, delta.Qty, delta.ProductID)
	}
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var current struct {
		Code     string          `db:"code"`
		StockQty decimal.Decimal `db:"stock_qty"`
	}
	err = tx.GetContext(ctx, &current, `SELECT code, COALESCE(stock_qty, 0) AS stock_qty FROM products WHERE id = $1`, delta.ProductID)
	if err != nil {
		return notFound(err, "product", delta.ProductID)
	}
	return &domain.InsufficientStockError{
		ProductID: delta.ProductID,
		Code:      current.Code,
		Available: current.StockQty,
		Requested: delta.Qty.Neg(),
	}
}

func insertSale(ctx context.Context, tx *sqlx.Tx, sale *domain.Sale) error {
	if sale == nil {
		return errors.New("sale unit of work without sale")
	}
	id, err := insertReturningID(ctx, tx, `
		INSERT INTO sales (branch_id, customer_id, customer_name, invoice_no, sale_date, subtotal,
			discount_amount, gst_amount, further_tax_amount, total_amount, paid_amount, payment_method,
			payment_details, is_credit_sale, fbr_invoice_number, created_by)
		VALUES (:branch_id, :customer_id, :customer_name, :invoice_no, :sale_date, :subtotal,
			:discount_amount, :gst_amount, :further_tax_amount, :total_amount, :paid_amount, :payment_method,
			:payment_details, :is_credit_sale, :fbr_invoice_number, :created_by)
		RETURNING id`, sale)
	if err != nil {
		return mapWriteError(err)
	}
	sale.ID = id

	for i := range sale.Items {
		item := &sale.Items[i]
		item.SaleID = id
		itemID, err := insertReturningID(ctx, tx, `
			INSERT INTO sale_items (sale_id, product_id, qty, unit_price, discount_per_item, gst_percent, total_price)
			VALUES (:sale_id, :product_id, :qty, :unit_price, :discount_per_item, :gst_percent, :total_price)
			RETURNING id`, item)
		if err != nil {
			return mapWriteError(err)
		}
		item.ID = itemID
	}
	return nil
}

func insertPurchase(ctx context.Context, tx *sqlx.Tx, purchase *domain.Purchase) error {
	if purchase == nil {
		return errors.New("purchase unit of work without purchase")
	}
	id, err := insertReturningID(ctx, tx, `
		INSERT INTO purchases (branch_id, supplier_id, invoice_no, purchase_date, subtotal, gst_amount,
			total_amount, discount_amount, paid_amount, due_amount, payment_method, notes, created_by)
		VALUES (:branch_id, :supplier_id, :invoice_no, :purchase_date, :subtotal, :gst_amount,
			:total_amount, :discount_amount, :paid_amount, :due_amount, :payment_method, :notes, :created_by)
		RETURNING id`, purchase)
	if err != nil {
		return mapWriteError(err)
	}
	purchase.ID = id

	for i := range purchase.Items {
		item := &purchase.Items[i]
		item.PurchaseID = id
		itemID, err := insertReturningID(ctx, tx, `
			INSERT INTO purchase_items (purchase_id, product_id, qty, unit_price, gst_percent, total_price)
			VALUES (:purchase_id, :product_id, :qty, :unit_price, :gst_percent, :total_price)
			RETURNING id`, item)
		if err != nil {
			return mapWriteError(err)
		}
		item.ID = itemID
	}
	return nil
}

func insertAdjustment(ctx context.Context, tx *sqlx.Tx, adjustment *domain.StockAdjustment) error {
	if adjustment == nil {
		return errors.New("adjustment unit of work without adjustment")
	}
	id, err := insertReturningID(ctx, tx, `
		INSERT INTO stock_adjustments (branch_id, product_id, qty_change, reason, notes, adjusted_by, created_at)
		VALUES (:branch_id, :product_id, :qty_change, :reason, :notes, :adjusted_by, :created_at)
		RETURNING id`, adjustment)
	if err != nil {
		return mapWriteError(err)
	}
	adjustment.ID = id
	return nil
}

const saleColumns = `id, branch_id, customer_id, customer_name, invoice_no, sale_date, subtotal, discount_amount,
	gst_amount, further_tax_amount, total_amount, paid_amount, payment_method, payment_details, is_credit_sale,
	fbr_invoice_number, created_by`

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	if err := s.db.GetContext(ctx, &sale, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "sale", id)
	}
	sale.Items = []domain.SaleItem{}
	err := s.db.SelectContext(ctx, &sale.Items, `
		SELECT id, sale_id, product_id, qty, unit_price, discount_per_item, gst_percent, total_price
		FROM sale_items WHERE sale_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	var w where
	if filter.BranchID != nil {
		w.add(`branch_id = $%d`, *filter.BranchID)
	}
	if filter.CustomerID != nil {
		w.add(`customer_id = $%d`, *filter.CustomerID)
	}
	w.dateRange("sale_date", filter.From, filter.To)

	sales := []domain.Sale{}
	err := s.db.SelectContext(ctx, &sales,
		`SELECT `+saleColumns+` FROM sales`+w.String()+` ORDER BY sale_date DESC, id DESC`+w.limit(filter.Limit),
		w.args...)
	return sales, err
}

const purchaseColumns = `id, branch_id, supplier_id, invoice_no, purchase_date, subtotal, gst_amount, total_amount,
	discount_amount, paid_amount, due_amount, payment_method, notes, created_by`

func (s *Store) GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	var purchase domain.Purchase
	if err := s.db.GetContext(ctx, &purchase, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "purchase", id)
	}
	purchase.Items = []domain.PurchaseItem{}
	err := s.db.SelectContext(ctx, &purchase.Items, `
		SELECT id, purchase_id, product_id, qty, unit_price, gst_percent, total_price
		FROM purchase_items WHERE purchase_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *Store) ListPurchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error) {
	var w where
	if filter.BranchID != nil {
		w.add(`branch_id = $%d`, *filter.BranchID)
	}
	if filter.SupplierID != nil {
		w.add(`supplier_id = $%d`, *filter.SupplierID)
	}
	w.dateRange("purchase_date", filter.From, filter.To)

	purchases := []domain.Purchase{}
	err := s.db.SelectContext(ctx, &purchases,
		`SELECT `+purchaseColumns+` FROM purchases`+w.String()+` ORDER BY purchase_date DESC, id DESC`+w.limit(filter.Limit),
		w.args...)
	return purchases, err
}

const adjustmentColumns = `id, branch_id, product_id, qty_change, reason, notes, adjusted_by, created_at`

func (s *Store) GetStockAdjustment(ctx context.Context, id int64) (*domain.StockAdjustment, error) {
	var adjustment domain.StockAdjustment
	err := s.db.GetContext(ctx, &adjustment, `SELECT `+adjustmentColumns+` FROM stock_adjustments WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err, "stock adjustment", id)
	}
	return &adjustment, nil
}

func (s *Store) ListStockAdjustments(ctx context.Context, filter domain.AdjustmentFilter) ([]domain.StockAdjustment, error) {
	var w where
	if filter.BranchID != nil {
		w.add(`branch_id = $%d`, *filter.BranchID)
	}
	if filter.ProductID != nil {
		w.add(`product_id = $%d`, *filter.ProductID)
	}
	w.dateRange("created_at", filter.From, filter.To)

	adjustments := []domain.StockAdjustment{}
	err := s.db.SelectContext(ctx, &adjustments,
		`SELECT `+adjustmentColumns+` FROM stock_adjustments`+w.String()+` ORDER BY created_at DESC, id DESC`+w.limit(filter.Limit),
		w.args...)
	return adjustments, err
}
