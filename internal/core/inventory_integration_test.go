package core_test

import (
	"errors"
	"testing"

	"retail-pos/internal/core"

	"github.com/shopspring/decimal"
)

func TestAdjustStock_PositiveDelta(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := core.NewInventoryService(pool)

	txn, err := svc.AdjustStock(ctx, core.AdjustStockInput{
		ProductID: 1,
		Delta:     5,
		Notes:     "found during stocktake",
		UserID:    2,
	})
	if err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}

	if txn.Type != core.TxAdjustment {
		t.Errorf("Expected adjustment type, got %s", txn.Type)
	}
	if txn.PreviousQuantity != 10 || txn.NewQuantity != 15 || txn.Quantity != 5 {
		t.Errorf("Expected 10 → 15 (+5), got %d → %d (%+d)",
			txn.PreviousQuantity, txn.NewQuantity, txn.Quantity)
	}
	if got := stockOnHand(t, ctx, pool, 1); got != 15 {
		t.Errorf("Expected stock 15, got %d", got)
	}
}

func TestAdjustStock_NegativeDelta(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := core.NewInventoryService(pool)

	txn, err := svc.AdjustStock(ctx, core.AdjustStockInput{
		ProductID: 2,
		Delta:     -8,
		Notes:     "water damage, pallet 3",
		UserID:    2,
	})
	if err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}
	if txn.PreviousQuantity != 50 || txn.NewQuantity != 42 {
		t.Errorf("Expected 50 → 42, got %d → %d", txn.PreviousQuantity, txn.NewQuantity)
	}
}

func TestAdjustStock_RejectsNegativeResult(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := core.NewInventoryService(pool)

	_, err := svc.AdjustStock(ctx, core.AdjustStockInput{
		ProductID: 1,
		Delta:     -11, // only 10 on hand
		Notes:     "shrinkage",
		UserID:    2,
	})
	if err == nil {
		t.Fatal("Expected negative stock error, got nil")
	}
	var nse *core.NegativeStockError
	if !errors.As(err, &nse) {
		t.Fatalf("Expected NegativeStockError, got %T: %v", err, err)
	}
	if nse.OnHand != 10 || nse.Delta != -11 {
		t.Errorf("Unexpected error detail: %+v", nse)
	}

	if got := stockOnHand(t, ctx, pool, 1); got != 10 {
		t.Errorf("Expected stock untouched at 10, got %d", got)
	}
	if got := ledgerRowCount(t, ctx, pool); got != 0 {
		t.Errorf("Expected no ledger rows after rejected adjustment, got %d", got)
	}
}

func TestAdjustStock_RequiresNotes(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := core.NewInventoryService(pool)

	cases := []core.AdjustStockInput{
		{ProductID: 1, Delta: 5, Notes: "", UserID: 2},
		{ProductID: 1, Delta: 5, Notes: "   ", UserID: 2},
		{ProductID: 1, Delta: 0, Notes: "no-op", UserID: 2},
	}
	for _, input := range cases {
		_, err := svc.AdjustStock(ctx, input)
		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("Expected ValidationError for input %+v, got %v", input, err)
		}
	}
}

func TestGetStockLevels(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	svc := core.NewInventoryService(pool)

	levels, err := svc.GetStockLevels(ctx)
	if err != nil {
		t.Fatalf("GetStockLevels failed: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("Expected 3 stock levels, got %d", len(levels))
	}

	// Ordered by code: P001, P002, P003.
	if levels[0].ProductCode != "P001" || levels[0].OnHand != 10 {
		t.Errorf("Unexpected first level: %+v", levels[0])
	}
	// Stock value = on hand × cost price: 10 × 30.00 = 300.
	if levels[0].StockValue.StringFixed(2) != "300.00" {
		t.Errorf("Expected stock value 300.00, got %s", levels[0].StockValue)
	}

	// Deactivated products drop out of the view.
	if _, err := pool.Exec(ctx, "UPDATE products SET is_active = false WHERE id = 3"); err != nil {
		t.Fatalf("Failed to deactivate product: %v", err)
	}
	levels, err = svc.GetStockLevels(ctx)
	if err != nil {
		t.Fatalf("GetStockLevels failed: %v", err)
	}
	if len(levels) != 2 {
		t.Errorf("Expected 2 stock levels after deactivation, got %d", len(levels))
	}
}

func TestListTransactions_Filters(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	invSvc := core.NewInventoryService(pool)
	checkoutSvc := newCheckoutService(pool)

	if _, err := invSvc.AdjustStock(ctx, core.AdjustStockInput{
		ProductID: 1, Delta: 5, Notes: "stocktake", UserID: 2,
	}); err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}
	if _, err := checkoutSvc.Checkout(ctx, core.CheckoutInput{
		Lines:      []core.CartLine{{ProductID: 1, Quantity: 2}},
		AmountPaid: decimal.NewFromInt(100),
		CashierID:  1,
	}); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	all, err := invSvc.ListTransactions(ctx, core.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(all))
	}

	sales, err := invSvc.ListTransactions(ctx, core.TransactionFilter{Type: core.TxSale})
	if err != nil {
		t.Fatalf("ListTransactions by type failed: %v", err)
	}
	if len(sales) != 1 || sales[0].Quantity != -2 {
		t.Errorf("Expected one sale transaction of -2, got %+v", sales)
	}

	byProduct, err := invSvc.ListTransactions(ctx, core.TransactionFilter{ProductID: 1})
	if err != nil {
		t.Fatalf("ListTransactions by product failed: %v", err)
	}
	if len(byProduct) != 2 {
		t.Errorf("Expected 2 transactions for product 1, got %d", len(byProduct))
	}

	// Ledger rows must self-verify: new = previous + quantity.
	for _, txn := range all {
		if txn.NewQuantity != txn.PreviousQuantity+txn.Quantity {
			t.Errorf("Ledger row %d violates quantity invariant: %+v", txn.ID, txn)
		}
	}
}
