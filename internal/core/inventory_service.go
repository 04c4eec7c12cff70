package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdjustStockInput describes a manual stock correction. Delta is signed:
// positive for found stock, negative for shrinkage or damage. Notes are
// required — a correction with no stated reason is not auditable.
type AdjustStockInput struct {
	ProductID int
	Delta     int
	Notes     string
	UserID    int
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	ProductID int
	Type      TransactionType
	Limit     int
}

// InventoryService owns the stock ledger. Every quantity change in the
// system — sales, receipts, adjustments, returns — lands here as an
// append-only InventoryTransaction; rows are never updated or deleted.
type InventoryService interface {
	// AdjustStock applies a signed manual correction and records it. An
	// adjustment that would take stock below zero fails with
	// NegativeStockError and changes nothing.
	AdjustStock(ctx context.Context, input AdjustStockInput) (*InventoryTransaction, error)

	// GetStockLevels reports on-hand quantities for active products.
	GetStockLevels(ctx context.Context) ([]StockLevel, error)

	ListTransactions(ctx context.Context, filter TransactionFilter) ([]InventoryTransaction, error)
}

type inventoryService struct {
	pool *pgxpool.Pool
}

// NewInventoryService constructs an InventoryService backed by PostgreSQL.
func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

// ledgerEntry is the write-side shape of an inventory transaction, shared by
// every service that moves stock.
type ledgerEntry struct {
	ProductID        int
	Type             TransactionType
	Quantity         int
	PreviousQuantity int
	NewQuantity      int
	ReferenceType    string
	ReferenceID      int
	Notes            string
	CreatedBy        int
}

// appendLedgerTx inserts one ledger row inside the caller's transaction, so
// the row commits or rolls back together with the stock change it records.
func appendLedgerTx(ctx context.Context, tx pgx.Tx, e ledgerEntry) error {
	var refType *string
	var refID *int
	if e.ReferenceType != "" {
		refType = &e.ReferenceType
		refID = &e.ReferenceID
	}
	var createdBy *int
	if e.CreatedBy != 0 {
		createdBy = &e.CreatedBy
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO inventory_transactions
			(product_id, type, quantity, previous_quantity, new_quantity,
			 reference_type, reference_id, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ProductID, string(e.Type), e.Quantity, e.PreviousQuantity, e.NewQuantity,
		refType, refID, e.Notes, createdBy,
	)
	if err != nil {
		return fmt.Errorf("append inventory transaction for product %d: %w", e.ProductID, err)
	}
	return nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, input AdjustStockInput) (*InventoryTransaction, error) {
	if input.Delta == 0 {
		return nil, &ValidationError{Msg: "adjustment delta must be non-zero"}
	}
	if strings.TrimSpace(input.Notes) == "" {
		return nil, &ValidationError{Msg: "adjustment notes are required"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin adjustment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var code string
	var onHand int
	err = tx.QueryRow(ctx, `
		SELECT code, stock_on_hand FROM products
		WHERE id = $1 AND is_active = true
		FOR UPDATE`,
		input.ProductID,
	).Scan(&code, &onHand)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "product", Ref: strconv.Itoa(input.ProductID)}
		}
		return nil, fmt.Errorf("lock product %d: %w", input.ProductID, err)
	}

	newQty := onHand + input.Delta
	if newQty < 0 {
		return nil, &NegativeStockError{ProductCode: code, OnHand: onHand, Delta: input.Delta}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE products SET stock_on_hand = $1, updated_at = NOW() WHERE id = $2",
		newQty, input.ProductID,
	); err != nil {
		return nil, fmt.Errorf("adjust stock for %s: %w", code, err)
	}

	var txnID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO inventory_transactions
			(product_id, type, quantity, previous_quantity, new_quantity, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		input.ProductID, string(TxAdjustment), input.Delta, onHand, newQty,
		input.Notes, input.UserID,
	).Scan(&txnID); err != nil {
		return nil, fmt.Errorf("record adjustment for %s: %w", code, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit adjustment: %w", err)
	}

	return s.getTransaction(ctx, txnID)
}

func (s *inventoryService) GetStockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, category, stock_on_hand, cost_price,
		       stock_on_hand * cost_price
		FROM products
		WHERE is_active = true
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("get stock levels: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.ProductID, &sl.ProductCode, &sl.ProductName,
			&sl.Category, &sl.OnHand, &sl.CostPrice, &sl.StockValue); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, sl)
	}
	return levels, rows.Err()
}

const transactionColumns = `id, product_id, type, quantity, previous_quantity, new_quantity,
       reference_type, reference_id, notes, created_by, created_at`

func scanTransaction(row pgx.Row) (*InventoryTransaction, error) {
	t := &InventoryTransaction{}
	err := row.Scan(&t.ID, &t.ProductID, &t.Type, &t.Quantity, &t.PreviousQuantity,
		&t.NewQuantity, &t.ReferenceType, &t.ReferenceID, &t.Notes, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *inventoryService) getTransaction(ctx context.Context, id int) (*InventoryTransaction, error) {
	t, err := scanTransaction(s.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM inventory_transactions WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get inventory transaction %d: %w", id, err)
	}
	return t, nil
}

func (s *inventoryService) ListTransactions(ctx context.Context, filter TransactionFilter) ([]InventoryTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM inventory_transactions`
	var conds []string
	var args []any
	if filter.ProductID != 0 {
		args = append(args, filter.ProductID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory transactions: %w", err)
	}
	defer rows.Close()

	var txns []InventoryTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}
