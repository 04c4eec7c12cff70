package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CheckoutInput is a checkout request. Lines carry product and quantity only;
// every monetary figure is recomputed server-side from the catalog, so any
// client-supplied price or total is ignored by construction.
type CheckoutInput struct {
	Lines           []CartLine
	PaymentMethod   string
	DiscountPercent decimal.Decimal
	AmountPaid      decimal.Decimal
	CashierID       int
	Customer        SaleCustomer
}

// CheckoutService processes sales. Checkout is not idempotent — callers must
// not resubmit a request whose outcome is unknown without first checking for
// the resulting bill.
type CheckoutService interface {
	// Checkout computes totals from catalog prices, persists the sale, and
	// decrements stock — writing one ledger row per cart line — inside a
	// single transaction. A failure on any line leaves every product, the
	// sale collection, and the ledger exactly as they were.
	Checkout(ctx context.Context, input CheckoutInput) (*Sale, error)

	// RefundSale transitions a completed sale to refunded, restoring the sold
	// quantities to stock with compensating "return" ledger rows.
	RefundSale(ctx context.Context, saleID, userID int) (*Sale, error)

	// VoidSale transitions a completed sale to voided. Stock handling is the
	// same as for refunds.
	VoidSale(ctx context.Context, saleID, userID int) (*Sale, error)

	GetSale(ctx context.Context, saleID int) (*Sale, error)
	GetSaleByBillNumber(ctx context.Context, billNumber string) (*Sale, error)

	// ListSales returns the most recent sales, newest first.
	ListSales(ctx context.Context, limit int) ([]Sale, error)
}

type checkoutService struct {
	pool *pgxpool.Pool
	seq  SequenceService
}

// NewCheckoutService constructs a CheckoutService backed by PostgreSQL.
func NewCheckoutService(pool *pgxpool.Pool, seq SequenceService) CheckoutService {
	return &checkoutService{pool: pool, seq: seq}
}

func (s *checkoutService) Checkout(ctx context.Context, input CheckoutInput) (*Sale, error) {
	lines, err := mergeCartLines(input.Lines)
	if err != nil {
		return nil, err
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = "cash"
	}
	if input.Customer.Kind == "" {
		input.Customer.Kind = CustomerWalkIn
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var cashierExists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND is_active = true)",
		input.CashierID,
	).Scan(&cashierExists); err != nil {
		return nil, fmt.Errorf("validate cashier: %w", err)
	}
	if !cashierExists {
		return nil, &NotFoundError{Kind: "employee", Ref: strconv.Itoa(input.CashierID)}
	}

	customerID, customerName, err := resolveSaleCustomer(ctx, tx, input.Customer)
	if err != nil {
		return nil, err
	}

	// Lock product rows in ID order so two overlapping carts cannot deadlock,
	// then verify stock while holding the locks.
	priced, err := lockAndPrice(ctx, tx, lines)
	if err != nil {
		return nil, err
	}

	totals, err := ComputeTotals(priced, input.DiscountPercent, input.AmountPaid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	billNumber, err := s.seq.NextBillNumberTx(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	var saleID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO sales (bill_number, status, subtotal, gst, service_charge, discount, total,
		                   amount_paid, change_due, payment_method, cashier_id,
		                   customer_type, customer_id, customer_name)
		VALUES ($1, 'completed', $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		billNumber, totals.Subtotal, totals.GST, totals.ServiceCharge, totals.Discount,
		totals.Total, input.AmountPaid, totals.Change, input.PaymentMethod, input.CashierID,
		string(input.Customer.Kind), customerID, customerName,
	).Scan(&saleID); err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	for i, pl := range priced {
		lineTotal := pl.UnitPrice.Mul(decimal.NewFromInt(int64(pl.Quantity)))
		if _, err := tx.Exec(ctx, `
			INSERT INTO sale_lines (sale_id, line_number, product_id, name, unit_price, quantity, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			saleID, i+1, pl.ProductID, pl.Name, pl.UnitPrice, pl.Quantity, lineTotal,
		); err != nil {
			return nil, fmt.Errorf("insert sale line %d: %w", i+1, err)
		}

		if err := deductStockTx(ctx, tx, pl, saleID, input.CashierID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}

	return s.GetSale(ctx, saleID)
}

// mergeCartLines validates the raw cart and collapses repeated products into
// a single line each, preserving first-seen order.
func mergeCartLines(lines []CartLine) ([]CartLine, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Msg: "cart must contain at least one line"}
	}

	byProduct := make(map[int]int, len(lines))
	var order []int
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, &ValidationError{Msg: fmt.Sprintf("quantity must be positive for product %d", l.ProductID)}
		}
		if _, seen := byProduct[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		byProduct[l.ProductID] += l.Quantity
	}

	merged := make([]CartLine, 0, len(order))
	for _, id := range order {
		merged = append(merged, CartLine{ProductID: id, Quantity: byProduct[id]})
	}
	return merged, nil
}

// resolveSaleCustomer validates the tagged customer variant and returns the
// column values to persist on the sale row.
func resolveSaleCustomer(ctx context.Context, tx pgx.Tx, c SaleCustomer) (*int, string, error) {
	switch c.Kind {
	case CustomerRegistered:
		if c.ID == nil {
			return nil, "", &ValidationError{Msg: "registered customer requires an id"}
		}
		var name string
		err := tx.QueryRow(ctx,
			"SELECT name FROM customers WHERE id = $1 AND is_active = true", *c.ID,
		).Scan(&name)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, "", &NotFoundError{Kind: "customer", Ref: strconv.Itoa(*c.ID)}
			}
			return nil, "", fmt.Errorf("resolve customer %d: %w", *c.ID, err)
		}
		return c.ID, name, nil
	case CustomerWalkIn:
		return nil, c.Name, nil
	default:
		return nil, "", &ValidationError{Msg: fmt.Sprintf("unknown customer kind %q", c.Kind)}
	}
}

// lockAndPrice locks each cart product FOR UPDATE in ascending ID order,
// resolves the authoritative unit price, and checks stock while the lock is
// held. Returned lines are in the same order as the input cart.
func lockAndPrice(ctx context.Context, tx pgx.Tx, lines []CartLine) ([]PricedLine, error) {
	sorted := make([]CartLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	pricedByID := make(map[int]PricedLine, len(sorted))
	for _, l := range sorted {
		var pl PricedLine
		var stock int
		err := tx.QueryRow(ctx, `
			SELECT id, code, name, price, stock_on_hand
			FROM products
			WHERE id = $1 AND is_active = true
			FOR UPDATE`,
			l.ProductID,
		).Scan(&pl.ProductID, &pl.Code, &pl.Name, &pl.UnitPrice, &stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Kind: "product", Ref: strconv.Itoa(l.ProductID)}
			}
			return nil, fmt.Errorf("lock product %d: %w", l.ProductID, err)
		}

		if stock < l.Quantity {
			return nil, &InsufficientStockError{
				ProductCode: pl.Code,
				ProductName: pl.Name,
				Requested:   l.Quantity,
				Available:   stock,
			}
		}
		pl.Quantity = l.Quantity
		pricedByID[pl.ProductID] = pl
	}

	priced := make([]PricedLine, 0, len(lines))
	for _, l := range lines {
		priced = append(priced, pricedByID[l.ProductID])
	}
	return priced, nil
}

// deductStockTx decrements stock for one sold line under a conditional guard
// and appends the matching ledger row. The guard re-checks stock at write
// time; zero matched rows means a concurrent writer got there first despite
// the row lock, which is reported as a ConsistencyError rather than ignored.
func deductStockTx(ctx context.Context, tx pgx.Tx, pl PricedLine, saleID, userID int) error {
	var newQty int
	err := tx.QueryRow(ctx, `
		UPDATE products
		SET stock_on_hand = stock_on_hand - $1, updated_at = NOW()
		WHERE id = $2 AND stock_on_hand >= $1
		RETURNING stock_on_hand`,
		pl.Quantity, pl.ProductID,
	).Scan(&newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &ConsistencyError{Msg: fmt.Sprintf("stock for %s changed during checkout, please retry", pl.Code)}
		}
		return fmt.Errorf("deduct stock for %s: %w", pl.Code, err)
	}

	if err := appendLedgerTx(ctx, tx, ledgerEntry{
		ProductID:        pl.ProductID,
		Type:             TxSale,
		Quantity:         -pl.Quantity,
		PreviousQuantity: newQty + pl.Quantity,
		NewQuantity:      newQty,
		ReferenceType:    "sale",
		ReferenceID:      saleID,
		Notes:            fmt.Sprintf("sold %d × %s", pl.Quantity, pl.Code),
		CreatedBy:        userID,
	}); err != nil {
		return err
	}
	return nil
}

func (s *checkoutService) RefundSale(ctx context.Context, saleID, userID int) (*Sale, error) {
	return s.reverseSale(ctx, saleID, userID, SaleRefunded)
}

func (s *checkoutService) VoidSale(ctx context.Context, saleID, userID int) (*Sale, error) {
	return s.reverseSale(ctx, saleID, userID, SaleVoided)
}

// reverseSale moves a completed sale to refunded or voided and returns the
// sold quantities to stock. Every restock lands in the ledger as a "return"
// row referencing the sale, so the audit trail stays complete.
func (s *checkoutService) reverseSale(ctx context.Context, saleID, userID int, target SaleStatus) (*Sale, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin %s transaction: %w", target, err)
	}
	defer tx.Rollback(ctx)

	var status SaleStatus
	var billNumber string
	err = tx.QueryRow(ctx,
		"SELECT status, bill_number FROM sales WHERE id = $1 FOR UPDATE", saleID,
	).Scan(&status, &billNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "sale", Ref: strconv.Itoa(saleID)}
		}
		return nil, fmt.Errorf("fetch sale %d: %w", saleID, err)
	}
	if status != SaleCompleted {
		return nil, &ValidationError{Msg: fmt.Sprintf("sale %s cannot be %s: status is %s", billNumber, target, status)}
	}

	timestampCol := "refunded_at"
	if target == SaleVoided {
		timestampCol = "voided_at"
	}
	if _, err := tx.Exec(ctx,
		"UPDATE sales SET status = $1, "+timestampCol+" = NOW() WHERE id = $2",
		string(target), saleID,
	); err != nil {
		return nil, fmt.Errorf("update sale %d status: %w", saleID, err)
	}

	rows, err := tx.Query(ctx, `
		SELECT product_id, quantity FROM sale_lines
		WHERE sale_id = $1 ORDER BY product_id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("fetch sale lines for %d: %w", saleID, err)
	}
	type restockLine struct {
		productID int
		quantity  int
	}
	var restock []restockLine
	for rows.Next() {
		var rl restockLine
		if err := rows.Scan(&rl.productID, &rl.quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		restock = append(restock, rl)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale lines: %w", err)
	}

	for _, rl := range restock {
		var newQty int
		// Restock even if the product has been deactivated since the sale.
		if err := tx.QueryRow(ctx, `
			UPDATE products
			SET stock_on_hand = stock_on_hand + $1, updated_at = NOW()
			WHERE id = $2
			RETURNING stock_on_hand`,
			rl.quantity, rl.productID,
		).Scan(&newQty); err != nil {
			return nil, fmt.Errorf("restock product %d: %w", rl.productID, err)
		}

		if err := appendLedgerTx(ctx, tx, ledgerEntry{
			ProductID:        rl.productID,
			Type:             TxReturn,
			Quantity:         rl.quantity,
			PreviousQuantity: newQty - rl.quantity,
			NewQuantity:      newQty,
			ReferenceType:    "sale",
			ReferenceID:      saleID,
			Notes:            fmt.Sprintf("%s of bill %s", target, billNumber),
			CreatedBy:        userID,
		}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit %s of sale %d: %w", target, saleID, err)
	}

	return s.GetSale(ctx, saleID)
}

const saleColumns = `id, bill_number, status, subtotal, gst, service_charge, discount, total,
       amount_paid, change_due, payment_method, cashier_id,
       customer_type, customer_id, customer_name, created_at, refunded_at, voided_at`

func scanSale(row pgx.Row) (*Sale, error) {
	sale := &Sale{}
	var customerKind string
	var customerID *int
	var customerName string
	err := row.Scan(
		&sale.ID, &sale.BillNumber, &sale.Status, &sale.Subtotal, &sale.GST,
		&sale.ServiceCharge, &sale.Discount, &sale.Total, &sale.AmountPaid, &sale.Change,
		&sale.PaymentMethod, &sale.CashierID,
		&customerKind, &customerID, &customerName,
		&sale.CreatedAt, &sale.RefundedAt, &sale.VoidedAt,
	)
	if err != nil {
		return nil, err
	}
	sale.Customer = SaleCustomer{Kind: CustomerKind(customerKind), ID: customerID, Name: customerName}
	return sale, nil
}

func (s *checkoutService) GetSale(ctx context.Context, saleID int) (*Sale, error) {
	sale, err := scanSale(s.pool.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1`, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "sale", Ref: strconv.Itoa(saleID)}
		}
		return nil, fmt.Errorf("get sale %d: %w", saleID, err)
	}

	lines, err := s.fetchLines(ctx, saleID)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines
	return sale, nil
}

func (s *checkoutService) GetSaleByBillNumber(ctx context.Context, billNumber string) (*Sale, error) {
	sale, err := scanSale(s.pool.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE bill_number = $1`, billNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "sale", Ref: billNumber}
		}
		return nil, fmt.Errorf("get sale %s: %w", billNumber, err)
	}

	lines, err := s.fetchLines(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines
	return sale, nil
}

func (s *checkoutService) ListSales(ctx context.Context, limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

func (s *checkoutService) fetchLines(ctx context.Context, saleID int) ([]SaleLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sale_id, line_number, product_id, name, unit_price, quantity, line_total
		FROM sale_lines
		WHERE sale_id = $1
		ORDER BY line_number`, saleID)
	if err != nil {
		return nil, fmt.Errorf("fetch lines for sale %d: %w", saleID, err)
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.LineNumber, &l.ProductID, &l.Name,
			&l.UnitPrice, &l.Quantity, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
