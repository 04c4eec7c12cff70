package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PurchaseOrderLineInput is one requested product on a new purchase order.
// CostPrice nil means "use the product's current cost price".
type PurchaseOrderLineInput struct {
	ProductID int
	Quantity  int
	CostPrice *decimal.Decimal
}

// CreatePurchaseOrderInput describes a new draft order.
type CreatePurchaseOrderInput struct {
	SupplierID int
	Notes      string
	Lines      []PurchaseOrderLineInput
}

// ReceiptLine records how many units of one order line arrived in a delivery.
type ReceiptLine struct {
	LineNumber int
	Quantity   int
}

// PurchaseOrderService manages the supplier ordering lifecycle:
// draft → ordered → partially_received → received, with cancellation possible
// until the first receipt.
type PurchaseOrderService interface {
	// CreatePurchaseOrder stores a draft. Drafts have no PO number and do not
	// touch stock.
	CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (*PurchaseOrder, error)

	// SubmitPurchaseOrder moves a draft to ordered and assigns its PO number.
	SubmitPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrder, error)

	// ReceiveDelivery books an incoming delivery against an ordered or
	// partially received order. Receiving is cumulative per line; a quantity
	// that would push a line past what was ordered fails the whole delivery
	// with OverReceiptError. Received units raise stock and append "purchase"
	// ledger rows in the same transaction.
	ReceiveDelivery(ctx context.Context, orderID int, lines []ReceiptLine, userID int) (*PurchaseOrder, error)

	// CancelPurchaseOrder cancels a draft or ordered order. Orders with any
	// received units cannot be cancelled.
	CancelPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrder, error)

	GetPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, status POStatus) ([]PurchaseOrder, error)
}

type purchaseOrderService struct {
	pool *pgxpool.Pool
	seq  SequenceService
}

// NewPurchaseOrderService constructs a PurchaseOrderService backed by
// PostgreSQL.
func NewPurchaseOrderService(pool *pgxpool.Pool, seq SequenceService) PurchaseOrderService {
	return &purchaseOrderService{pool: pool, seq: seq}
}

func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (*PurchaseOrder, error) {
	if len(input.Lines) == 0 {
		return nil, &ValidationError{Msg: "purchase order must contain at least one line"}
	}
	seen := make(map[int]bool, len(input.Lines))
	for _, l := range input.Lines {
		if l.Quantity <= 0 {
			return nil, &ValidationError{Msg: fmt.Sprintf("quantity must be positive for product %d", l.ProductID)}
		}
		if l.CostPrice != nil && l.CostPrice.IsNegative() {
			return nil, &ValidationError{Msg: fmt.Sprintf("cost price must not be negative for product %d", l.ProductID)}
		}
		if seen[l.ProductID] {
			return nil, &ValidationError{Msg: fmt.Sprintf("product %d appears on more than one line", l.ProductID)}
		}
		seen[l.ProductID] = true
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin purchase order transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var supplierExists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1 AND is_active = true)",
		input.SupplierID,
	).Scan(&supplierExists); err != nil {
		return nil, fmt.Errorf("validate supplier: %w", err)
	}
	if !supplierExists {
		return nil, &NotFoundError{Kind: "supplier", Ref: strconv.Itoa(input.SupplierID)}
	}

	var notes *string
	if input.Notes != "" {
		notes = &input.Notes
	}
	var orderID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (supplier_id, status, notes)
		VALUES ($1, 'draft', $2)
		RETURNING id`,
		input.SupplierID, notes,
	).Scan(&orderID); err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	total := decimal.Zero
	for i, l := range input.Lines {
		cost := l.CostPrice
		if cost == nil {
			var c decimal.Decimal
			err := tx.QueryRow(ctx,
				"SELECT cost_price FROM products WHERE id = $1 AND is_active = true",
				l.ProductID,
			).Scan(&c)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, &NotFoundError{Kind: "product", Ref: strconv.Itoa(l.ProductID)}
				}
				return nil, fmt.Errorf("resolve cost price for product %d: %w", l.ProductID, err)
			}
			cost = &c
		} else {
			var exists bool
			if err := tx.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1 AND is_active = true)",
				l.ProductID,
			).Scan(&exists); err != nil {
				return nil, fmt.Errorf("validate product %d: %w", l.ProductID, err)
			}
			if !exists {
				return nil, &NotFoundError{Kind: "product", Ref: strconv.Itoa(l.ProductID)}
			}
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_lines (order_id, line_number, product_id, quantity, cost_price)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, i+1, l.ProductID, l.Quantity, *cost,
		); err != nil {
			return nil, fmt.Errorf("insert purchase order line %d: %w", i+1, err)
		}
		total = total.Add(cost.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET total = $1 WHERE id = $2", total, orderID,
	); err != nil {
		return nil, fmt.Errorf("set purchase order total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order: %w", err)
	}

	return s.GetPurchaseOrder(ctx, orderID)
}

func (s *purchaseOrderService) SubmitPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin submit transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	status, _, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if status != PODraft {
		return nil, &ValidationError{Msg: fmt.Sprintf("only draft orders can be submitted: order %d is %s", orderID, status)}
	}

	poNumber, err := s.seq.NextPONumberTx(ctx, tx, time.Now())
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET status = 'ordered', po_number = $1, ordered_at = NOW() WHERE id = $2",
		poNumber, orderID,
	); err != nil {
		return nil, fmt.Errorf("submit purchase order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit submit: %w", err)
	}

	return s.GetPurchaseOrder(ctx, orderID)
}

func (s *purchaseOrderService) ReceiveDelivery(ctx context.Context, orderID int, lines []ReceiptLine, userID int) (*PurchaseOrder, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Msg: "delivery must contain at least one line"}
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, &ValidationError{Msg: fmt.Sprintf("received quantity must be positive on line %d", l.LineNumber)}
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin receipt transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	status, poNumber, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if status != POOrdered && status != POPartiallyReceived {
		return nil, &ValidationError{Msg: fmt.Sprintf("order %d cannot receive deliveries: status is %s", orderID, status)}
	}

	for _, rl := range lines {
		var productID, ordered, received int
		err := tx.QueryRow(ctx, `
			SELECT product_id, quantity, received_quantity
			FROM purchase_order_lines
			WHERE order_id = $1 AND line_number = $2
			FOR UPDATE`,
			orderID, rl.LineNumber,
		).Scan(&productID, &ordered, &received)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Kind: "purchase order line", Ref: fmt.Sprintf("%d/%d", orderID, rl.LineNumber)}
			}
			return nil, fmt.Errorf("lock order line %d/%d: %w", orderID, rl.LineNumber, err)
		}

		if received+rl.Quantity > ordered {
			return nil, &OverReceiptError{
				PONumber:        poNumber,
				LineNumber:      rl.LineNumber,
				Ordered:         ordered,
				AlreadyReceived: received,
				Requested:       rl.Quantity,
			}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE purchase_order_lines
			SET received_quantity = received_quantity + $1
			WHERE order_id = $2 AND line_number = $3`,
			rl.Quantity, orderID, rl.LineNumber,
		); err != nil {
			return nil, fmt.Errorf("update received quantity on line %d/%d: %w", orderID, rl.LineNumber, err)
		}

		var code string
		var newQty int
		// Receipt into a deactivated product is allowed; the goods arrived.
		if err := tx.QueryRow(ctx, `
			UPDATE products
			SET stock_on_hand = stock_on_hand + $1, updated_at = NOW()
			WHERE id = $2
			RETURNING code, stock_on_hand`,
			rl.Quantity, productID,
		).Scan(&code, &newQty); err != nil {
			return nil, fmt.Errorf("restock product %d: %w", productID, err)
		}

		if err := appendLedgerTx(ctx, tx, ledgerEntry{
			ProductID:        productID,
			Type:             TxPurchase,
			Quantity:         rl.Quantity,
			PreviousQuantity: newQty - rl.Quantity,
			NewQuantity:      newQty,
			ReferenceType:    "purchase_order",
			ReferenceID:      orderID,
			Notes:            fmt.Sprintf("received %d × %s against %s", rl.Quantity, code, poNumber),
			CreatedBy:        userID,
		}); err != nil {
			return nil, err
		}
	}

	// Recompute status from the lines: fully received when every line is
	// complete, partially received otherwise.
	var outstanding int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchase_order_lines
		WHERE order_id = $1 AND received_quantity < quantity`,
		orderID,
	).Scan(&outstanding); err != nil {
		return nil, fmt.Errorf("count outstanding lines for order %d: %w", orderID, err)
	}

	if outstanding == 0 {
		_, err = tx.Exec(ctx,
			"UPDATE purchase_orders SET status = 'received', received_at = NOW() WHERE id = $1", orderID)
	} else {
		_, err = tx.Exec(ctx,
			"UPDATE purchase_orders SET status = 'partially_received' WHERE id = $1", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("update order %d status: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit receipt: %w", err)
	}

	return s.GetPurchaseOrder(ctx, orderID)
}

func (s *purchaseOrderService) CancelPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cancel transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	status, _, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if status != PODraft && status != POOrdered {
		return nil, &ValidationError{Msg: fmt.Sprintf("order %d cannot be cancelled: status is %s", orderID, status)}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET status = 'cancelled', cancelled_at = NOW() WHERE id = $1", orderID,
	); err != nil {
		return nil, fmt.Errorf("cancel purchase order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}

	return s.GetPurchaseOrder(ctx, orderID)
}

// lockOrder locks the order header row and returns its status and PO number
// ("" for drafts).
func lockOrder(ctx context.Context, tx pgx.Tx, orderID int) (POStatus, string, error) {
	var status POStatus
	var poNumber *string
	err := tx.QueryRow(ctx,
		"SELECT status, po_number FROM purchase_orders WHERE id = $1 FOR UPDATE", orderID,
	).Scan(&status, &poNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", &NotFoundError{Kind: "purchase order", Ref: strconv.Itoa(orderID)}
		}
		return "", "", fmt.Errorf("lock purchase order %d: %w", orderID, err)
	}
	number := ""
	if poNumber != nil {
		number = *poNumber
	}
	return status, number, nil
}

const orderColumns = `o.id, o.po_number, o.supplier_id, s.name, o.status, o.total, o.notes,
       o.created_at, o.ordered_at, o.received_at, o.cancelled_at`

func scanOrder(row pgx.Row) (*PurchaseOrder, error) {
	o := &PurchaseOrder{}
	err := row.Scan(&o.ID, &o.PONumber, &o.SupplierID, &o.SupplierName, &o.Status,
		&o.Total, &o.Notes, &o.CreatedAt, &o.OrderedAt, &o.ReceivedAt, &o.CancelledAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrder, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM purchase_orders o
		JOIN suppliers s ON s.id = o.supplier_id
		WHERE o.id = $1`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "purchase order", Ref: strconv.Itoa(orderID)}
		}
		return nil, fmt.Errorf("get purchase order %d: %w", orderID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.order_id, l.line_number, l.product_id, p.code, p.name,
		       l.quantity, l.cost_price, l.received_quantity
		FROM purchase_order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.line_number`, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch lines for order %d: %w", orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.LineNumber, &l.ProductID, &l.ProductCode,
			&l.ProductName, &l.Quantity, &l.CostPrice, &l.ReceivedQuantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}

func (s *purchaseOrderService) ListPurchaseOrders(ctx context.Context, status POStatus) ([]PurchaseOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM purchase_orders o
		JOIN suppliers s ON s.id = o.supplier_id`
	var args []any
	if status != "" {
		query += " WHERE o.status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY o.created_at DESC, o.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}
