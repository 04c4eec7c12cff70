package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductInput holds the caller-editable fields of a product.
type ProductInput struct {
	Code      string
	Name      string
	Category  string
	Price     decimal.Decimal
	CostPrice decimal.Decimal
}

// CatalogService provides product master data operations. Products are never
// hard-deleted: historical sale lines reference them, so removal is a
// deactivation that hides the product from new carts.
type CatalogService interface {
	CreateProduct(ctx context.Context, input ProductInput, initialStock int) (*Product, error)
	UpdateProduct(ctx context.Context, productID int, input ProductInput) (*Product, error)
	DeactivateProduct(ctx context.Context, productID int) error
	GetProduct(ctx context.Context, productID int) (*Product, error)
	GetProductByCode(ctx context.Context, code string) (*Product, error)
	GetProducts(ctx context.Context, includeInactive bool) ([]Product, error)
}

type catalogService struct {
	pool *pgxpool.Pool
}

// NewCatalogService constructs a CatalogService backed by PostgreSQL.
func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

func validateProductInput(input ProductInput) error {
	if input.Code == "" {
		return &ValidationError{Msg: "product code is required"}
	}
	if input.Name == "" {
		return &ValidationError{Msg: "product name is required"}
	}
	if input.Price.IsNegative() {
		return &ValidationError{Msg: "product price must not be negative"}
	}
	if input.CostPrice.IsNegative() {
		return &ValidationError{Msg: "product cost price must not be negative"}
	}
	return nil
}

const productColumns = `id, code, name, category, price, cost_price, stock_on_hand, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.Price, &p.CostPrice,
		&p.StockOnHand, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput, initialStock int) (*Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	if initialStock < 0 {
		return nil, &ValidationError{Msg: "initial stock must not be negative"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create product transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := scanProduct(tx.QueryRow(ctx, `
		INSERT INTO products (code, name, category, price, cost_price, stock_on_hand)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		input.Code, input.Name, input.Category, input.Price, input.CostPrice, initialStock,
	))
	if err != nil {
		return nil, fmt.Errorf("create product %q: %w", input.Code, err)
	}

	// Opening stock enters through the ledger like every other stock change.
	if initialStock > 0 {
		err := appendLedgerTx(ctx, tx, ledgerEntry{
			ProductID:        p.ID,
			Type:             TxAdjustment,
			Quantity:         initialStock,
			PreviousQuantity: 0,
			NewQuantity:      initialStock,
			Notes:            fmt.Sprintf("opening stock for %s", p.Code),
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create product: %w", err)
	}
	return p, nil
}

// UpdateProduct edits the descriptive and pricing fields of a product.
// Stock on hand is deliberately not editable here — stock changes go through
// checkout, adjustment, and receiving so every change lands in the ledger.
func (s *catalogService) UpdateProduct(ctx context.Context, productID int, input ProductInput) (*Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET code = $1, name = $2, category = $3, price = $4, cost_price = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+productColumns,
		input.Code, input.Name, input.Category, input.Price, input.CostPrice, productID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "product", Ref: strconv.Itoa(productID)}
		}
		return nil, fmt.Errorf("update product %d: %w", productID, err)
	}
	return p, nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, productID int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1`,
		productID,
	)
	if err != nil {
		return fmt.Errorf("deactivate product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Kind: "product", Ref: strconv.Itoa(productID)}
	}
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "product", Ref: strconv.Itoa(productID)}
		}
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	return p, nil
}

// GetProductByCode resolves a product by its unique code. Like GetProduct it
// returns deactivated products too; listings are where is_active filters.
func (s *catalogService) GetProductByCode(ctx context.Context, code string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "product", Ref: code}
		}
		return nil, fmt.Errorf("get product %q: %w", code, err)
	}
	return p, nil
}

func (s *catalogService) GetProducts(ctx context.Context, includeInactive bool) ([]Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	if !includeInactive {
		q += ` WHERE is_active = true`
	}
	q += ` ORDER BY code`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
