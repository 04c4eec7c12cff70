package core_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"retail-pos/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, context.Context) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE inventory_transactions, sale_lines, sales,
		               purchase_order_lines, purchase_orders, number_sequences,
		               products, customers, employees, suppliers, users
		RESTART IDENTITY CASCADE;

		INSERT INTO employees (name, role) VALUES
		('Alice Vega', 'cashier'),
		('Ben Ortiz',  'manager');

		INSERT INTO customers (name, email) VALUES
		('Acme Catering', 'orders@acme-catering.test');

		INSERT INTO suppliers (name, contact_person) VALUES
		('Fresh Farms Ltd', 'Dana Kim');

		INSERT INTO products (code, name, category, price, cost_price, stock_on_hand) VALUES
		('P001', 'Espresso Beans 1kg', 'coffee',   45.99, 30.00, 10),
		('P002', 'Oat Milk 1L',        'dairy',    12.75,  8.00, 50),
		('P003', 'Paper Cups 50pk',    'supplies',  9.99,  6.00,  0);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool, ctx
}

func newCheckoutService(pool *pgxpool.Pool) core.CheckoutService {
	return core.NewCheckoutService(pool, core.NewSequenceService(pool))
}

// stockOnHand reads the current stock figure straight from the table.
func stockOnHand(t *testing.T, ctx context.Context, pool *pgxpool.Pool, productID int) int {
	t.Helper()
	var qty int
	if err := pool.QueryRow(ctx,
		"SELECT stock_on_hand FROM products WHERE id = $1", productID,
	).Scan(&qty); err != nil {
		t.Fatalf("Failed to read stock for product %d: %v", productID, err)
	}
	return qty
}

func ledgerRowCount(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM inventory_transactions").Scan(&n); err != nil {
		t.Fatalf("Failed to count inventory transactions: %v", err)
	}
	return n
}

func TestCheckout_ComputesTotalsAndDeductsStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	sale, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines: []core.CartLine{
			{ProductID: 1, Quantity: 2}, // 2 × 45.99
			{ProductID: 2, Quantity: 4}, // 4 × 12.75
		},
		AmountPaid: decimal.NewFromInt(200),
		CashierID:  1,
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if sale.Status != core.SaleCompleted {
		t.Errorf("Expected status completed, got %s", sale.Status)
	}
	if sale.BillNumber == "" {
		t.Error("Completed sale must have a bill number")
	}
	if !sale.Subtotal.Equal(decimal.NewFromFloat(142.98)) {
		t.Errorf("Expected subtotal 142.98, got %s", sale.Subtotal)
	}
	if !sale.Total.Equal(decimal.NewFromFloat(180.15)) {
		t.Errorf("Expected total 180.15, got %s", sale.Total)
	}
	if !sale.Change.Equal(decimal.NewFromFloat(19.85)) {
		t.Errorf("Expected change 19.85, got %s", sale.Change)
	}
	if len(sale.Lines) != 2 {
		t.Fatalf("Expected 2 sale lines, got %d", len(sale.Lines))
	}
	if !sale.Lines[0].UnitPrice.Equal(decimal.NewFromFloat(45.99)) {
		t.Errorf("Expected snapshot unit price 45.99, got %s", sale.Lines[0].UnitPrice)
	}

	if got := stockOnHand(t, ctx, pool, 1); got != 8 {
		t.Errorf("Expected product 1 stock 8 after sale, got %d", got)
	}
	if got := stockOnHand(t, ctx, pool, 2); got != 46 {
		t.Errorf("Expected product 2 stock 46 after sale, got %d", got)
	}
	if got := ledgerRowCount(t, ctx, pool); got != 2 {
		t.Errorf("Expected 2 ledger rows (one per line), got %d", got)
	}
}

func TestCheckout_IgnoresClientPrices(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	// The cart carries no prices at all; the catalog is authoritative even
	// after a price change between browsing and paying.
	if _, err := pool.Exec(ctx,
		"UPDATE products SET price = 50.00 WHERE id = 1"); err != nil {
		t.Fatalf("Failed to reprice product: %v", err)
	}

	sale, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 1, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(100),
		CashierID:  1,
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if !sale.Lines[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected current catalog price 50.00, got %s", sale.Lines[0].UnitPrice)
	}
}

func TestCheckout_InsufficientStockIsAtomic(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	// First line is satisfiable, second is not. Nothing may change.
	_, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines: []core.CartLine{
			{ProductID: 1, Quantity: 2},
			{ProductID: 3, Quantity: 1}, // stock is 0
		},
		AmountPaid: decimal.NewFromInt(500),
		CashierID:  1,
	})
	if err == nil {
		t.Fatal("Expected insufficient stock error, got nil")
	}

	var ise *core.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("Expected InsufficientStockError, got %T: %v", err, err)
	}
	if ise.ProductCode != "P003" || ise.Requested != 1 || ise.Available != 0 {
		t.Errorf("Unexpected error detail: %+v", ise)
	}

	if got := stockOnHand(t, ctx, pool, 1); got != 10 {
		t.Errorf("Expected product 1 stock untouched at 10, got %d", got)
	}
	if got := ledgerRowCount(t, ctx, pool); got != 0 {
		t.Errorf("Expected no ledger rows after failed checkout, got %d", got)
	}
	var saleCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales").Scan(&saleCount); err != nil {
		t.Fatalf("Failed to count sales: %v", err)
	}
	if saleCount != 0 {
		t.Errorf("Expected no sale rows after failed checkout, got %d", saleCount)
	}
}

func TestCheckout_MergesDuplicateCartLines(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	sale, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines: []core.CartLine{
			{ProductID: 2, Quantity: 3},
			{ProductID: 2, Quantity: 2},
		},
		AmountPaid: decimal.NewFromInt(100),
		CashierID:  1,
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if len(sale.Lines) != 1 {
		t.Fatalf("Expected duplicate product lines merged into 1, got %d", len(sale.Lines))
	}
	if sale.Lines[0].Quantity != 5 {
		t.Errorf("Expected merged quantity 5, got %d", sale.Lines[0].Quantity)
	}
	if got := stockOnHand(t, ctx, pool, 2); got != 45 {
		t.Errorf("Expected stock 45 after merged sale, got %d", got)
	}
}

func TestCheckout_RegisteredCustomer(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	customerID := 1
	sale, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 2, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(20),
		CashierID:  1,
		Customer:   core.SaleCustomer{Kind: core.CustomerRegistered, ID: &customerID},
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if sale.Customer.Kind != core.CustomerRegistered {
		t.Errorf("Expected registered customer, got %s", sale.Customer.Kind)
	}
	if sale.Customer.Name != "Acme Catering" {
		t.Errorf("Expected resolved customer name, got %q", sale.Customer.Name)
	}

	missing := 99
	_, err = svc.Checkout(ctx, core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 2, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(20),
		CashierID:  1,
		Customer:   core.SaleCustomer{Kind: core.CustomerRegistered, ID: &missing},
	})
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError for unknown customer, got %v", err)
	}
}

func TestCheckout_BillNumbersAreSequential(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	input := core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 2, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(20),
		CashierID:  1,
	}

	first, err := svc.Checkout(ctx, input)
	if err != nil {
		t.Fatalf("First checkout failed: %v", err)
	}
	second, err := svc.Checkout(ctx, input)
	if err != nil {
		t.Fatalf("Second checkout failed: %v", err)
	}
	if first.BillNumber == second.BillNumber {
		t.Errorf("Bill numbers must be unique, both were %s", first.BillNumber)
	}
	t.Logf("Bill numbers: %s, %s", first.BillNumber, second.BillNumber)
}

func TestCheckout_SellToZeroThenOneMoreFails(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	// Product 1 has exactly 10 on hand. Selling all of them is fine.
	if _, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 1, Quantity: 10}},
		AmountPaid: decimal.NewFromInt(1000),
		CashierID:  1,
	}); err != nil {
		t.Fatalf("Checkout to zero failed: %v", err)
	}
	if got := stockOnHand(t, ctx, pool, 1); got != 0 {
		t.Fatalf("Expected stock 0, got %d", got)
	}

	_, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 1, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(100),
		CashierID:  1,
	})
	var ise *core.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("Expected InsufficientStockError at zero stock, got %v", err)
	}
	if got := stockOnHand(t, ctx, pool, 1); got != 0 {
		t.Errorf("Expected stock still 0, got %d", got)
	}
}

func TestRefundSale_RestoresStockWithReturnLedgerRows(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	sale, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 1, Quantity: 3}},
		AmountPaid: decimal.NewFromInt(200),
		CashierID:  1,
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if got := stockOnHand(t, ctx, pool, 1); got != 7 {
		t.Fatalf("Expected stock 7 after sale, got %d", got)
	}

	refunded, err := svc.RefundSale(ctx, sale.ID, 2)
	if err != nil {
		t.Fatalf("RefundSale failed: %v", err)
	}
	if refunded.Status != core.SaleRefunded {
		t.Errorf("Expected status refunded, got %s", refunded.Status)
	}
	if refunded.RefundedAt == nil {
		t.Error("Refunded sale must have refunded_at timestamp")
	}
	if got := stockOnHand(t, ctx, pool, 1); got != 10 {
		t.Errorf("Expected stock restored to 10, got %d", got)
	}

	var returnRows int
	if err := pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_transactions
		WHERE type = 'return' AND reference_type = 'sale' AND reference_id = $1`,
		sale.ID,
	).Scan(&returnRows); err != nil {
		t.Fatalf("Failed to count return rows: %v", err)
	}
	if returnRows != 1 {
		t.Errorf("Expected 1 return ledger row, got %d", returnRows)
	}

	// A second refund of the same sale must fail.
	if _, err := svc.RefundSale(ctx, sale.ID, 2); err == nil {
		t.Error("Expected error refunding an already refunded sale")
	}
}

func TestVoidSale_RestoresStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	sale, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 2, Quantity: 10}},
		AmountPaid: decimal.NewFromInt(200),
		CashierID:  1,
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	voided, err := svc.VoidSale(ctx, sale.ID, 2)
	if err != nil {
		t.Fatalf("VoidSale failed: %v", err)
	}
	if voided.Status != core.SaleVoided {
		t.Errorf("Expected status voided, got %s", voided.Status)
	}
	if voided.VoidedAt == nil {
		t.Error("Voided sale must have voided_at timestamp")
	}
	if got := stockOnHand(t, ctx, pool, 2); got != 50 {
		t.Errorf("Expected stock restored to 50, got %d", got)
	}
}

func TestGetSaleByBillNumber(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := newCheckoutService(pool)

	sale, err := svc.Checkout(ctx, core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 2, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(20),
		CashierID:  1,
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	found, err := svc.GetSaleByBillNumber(ctx, sale.BillNumber)
	if err != nil {
		t.Fatalf("GetSaleByBillNumber failed: %v", err)
	}
	if found.ID != sale.ID {
		t.Errorf("Expected sale %d, got %d", sale.ID, found.ID)
	}

	var nf *core.NotFoundError
	if _, err := svc.GetSaleByBillNumber(ctx, "POS-00000000-0000"); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError for unknown bill number, got %v", err)
	}
}
