package core_test

import (
	"context"
	"errors"
	"testing"

	"retail-pos/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func setupPurchaseOrderTest(t *testing.T) (*pgxpool.Pool, core.PurchaseOrderService, context.Context) {
	t.Helper()
	pool, ctx := setupTestDB(t)
	svc := core.NewPurchaseOrderService(pool, core.NewSequenceService(pool))
	return pool, svc, ctx
}

func createDraftOrder(t *testing.T, ctx context.Context, svc core.PurchaseOrderService) *core.PurchaseOrder {
	t.Helper()
	order, err := svc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 1,
		Notes:      "weekly restock",
		Lines: []core.PurchaseOrderLineInput{
			{ProductID: 1, Quantity: 20},
			{ProductID: 3, Quantity: 100},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}
	return order
}

func TestPurchaseOrder_CreateDraft(t *testing.T) {
	pool, svc, ctx := setupPurchaseOrderTest(t)
	defer pool.Close()

	order := createDraftOrder(t, ctx, svc)

	if order.Status != core.PODraft {
		t.Errorf("Expected draft status, got %s", order.Status)
	}
	if order.PONumber != nil {
		t.Errorf("Draft order must have no PO number, got %q", *order.PONumber)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(order.Lines))
	}
	// Cost defaults to the product's cost price: 20 × 30.00 + 100 × 6.00 = 1200.
	if order.Total.StringFixed(2) != "1200.00" {
		t.Errorf("Expected total 1200.00, got %s", order.Total)
	}
	// Drafts never touch stock.
	if got := stockOnHand(t, ctx, pool, 1); got != 10 {
		t.Errorf("Expected stock untouched at 10, got %d", got)
	}
}

func TestPurchaseOrder_ExplicitCostPrice(t *testing.T) {
	pool, svc, ctx := setupPurchaseOrderTest(t)
	defer pool.Close()

	cost := decimal.NewFromFloat(28.50)
	order, err := svc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 1,
		Lines: []core.PurchaseOrderLineInput{
			{ProductID: 1, Quantity: 10, CostPrice: &cost},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}
	if order.Total.StringFixed(2) != "285.00" {
		t.Errorf("Expected total 285.00 with negotiated cost, got %s", order.Total)
	}
}

func TestPurchaseOrder_SubmitAssignsNumber(t *testing.T) {
	pool, svc, ctx := setupPurchaseOrderTest(t)
	defer pool.Close()

	order := createDraftOrder(t, ctx, svc)

	submitted, err := svc.SubmitPurchaseOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("SubmitPurchaseOrder failed: %v", err)
	}
	if submitted.Status != core.POOrdered {
		t.Errorf("Expected ordered status, got %s", submitted.Status)
	}
	if submitted.PONumber == nil || *submitted.PONumber == "" {
		t.Fatal("Submitted order must have a PO number")
	}
	if submitted.OrderedAt == nil {
		t.Error("Submitted order must have ordered_at timestamp")
	}
	t.Logf("PO number: %s", *submitted.PONumber)

	// Double submit must fail.
	if _, err := svc.SubmitPurchaseOrder(ctx, order.ID); err == nil {
		t.Error("Expected error submitting an already ordered PO")
	}
}

func TestPurchaseOrder_ReceivePartialThenFull(t *testing.T) {
	pool, svc, ctx := setupPurchaseOrderTest(t)
	defer pool.Close()

	order := createDraftOrder(t, ctx, svc)
	if _, err := svc.SubmitPurchaseOrder(ctx, order.ID); err != nil {
		t.Fatalf("SubmitPurchaseOrder failed: %v", err)
	}

	// First delivery: 12 of 20 on line 1 only.
	received, err := svc.ReceiveDelivery(ctx, order.ID,
		[]core.ReceiptLine{{LineNumber: 1, Quantity: 12}}, 2)
	if err != nil {
		t.Fatalf("First ReceiveDelivery failed: %v", err)
	}
	if received.Status != core.POPartiallyReceived {
		t.Errorf("Expected partially_received, got %s", received.Status)
	}
	if received.Lines[0].ReceivedQuantity != 12 {
		t.Errorf("Expected line 1 received 12, got %d", received.Lines[0].ReceivedQuantity)
	}
	if got := stockOnHand(t, ctx, pool, 1); got != 22 {
		t.Errorf("Expected stock 10+12=22, got %d", got)
	}

	// Second delivery completes both lines. Receiving is cumulative.
	received, err = svc.ReceiveDelivery(ctx, order.ID, []core.ReceiptLine{
		{LineNumber: 1, Quantity: 8},
		{LineNumber: 2, Quantity: 100},
	}, 2)
	if err != nil {
		t.Fatalf("Second ReceiveDelivery failed: %v", err)
	}
	if received.Status != core.POReceived {
		t.Errorf("Expected received, got %s", received.Status)
	}
	if received.ReceivedAt == nil {
		t.Error("Fully received order must have received_at timestamp")
	}
	if got := stockOnHand(t, ctx, pool, 1); got != 30 {
		t.Errorf("Expected stock 30, got %d", got)
	}
	if got := stockOnHand(t, ctx, pool, 3); got != 100 {
		t.Errorf("Expected stock 100, got %d", got)
	}

	// Each receipt line wrote a purchase ledger row: 1 + 2 = 3.
	var purchaseRows int
	if err := pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_transactions
		WHERE type = 'purchase' AND reference_type = 'purchase_order' AND reference_id = $1`,
		order.ID,
	).Scan(&purchaseRows); err != nil {
		t.Fatalf("Failed to count purchase rows: %v", err)
	}
	if purchaseRows != 3 {
		t.Errorf("Expected 3 purchase ledger rows, got %d", purchaseRows)
	}
}

func TestPurchaseOrder_OverReceiptIsAtomic(t *testing.T) {
	pool, svc, ctx := setupPurchaseOrderTest(t)
	defer pool.Close()

	order := createDraftOrder(t, ctx, svc)
	if _, err := svc.SubmitPurchaseOrder(ctx, order.ID); err != nil {
		t.Fatalf("SubmitPurchaseOrder failed: %v", err)
	}
	if _, err := svc.ReceiveDelivery(ctx, order.ID,
		[]core.ReceiptLine{{LineNumber: 1, Quantity: 15}}, 2); err != nil {
		t.Fatalf("ReceiveDelivery failed: %v", err)
	}

	// Line 1 has 15 of 20 received; 6 more would overshoot. The whole
	// delivery fails, including the valid line 2 portion.
	_, err := svc.ReceiveDelivery(ctx, order.ID, []core.ReceiptLine{
		{LineNumber: 2, Quantity: 50},
		{LineNumber: 1, Quantity: 6},
	}, 2)
	if err == nil {
		t.Fatal("Expected over-receipt error, got nil")
	}
	var ore *core.OverReceiptError
	if !errors.As(err, &ore) {
		t.Fatalf("Expected OverReceiptError, got %T: %v", err, err)
	}
	if ore.LineNumber != 1 || ore.Ordered != 20 || ore.AlreadyReceived != 15 || ore.Requested != 6 {
		t.Errorf("Unexpected error detail: %+v", ore)
	}

	// Nothing from the failed delivery may stick.
	reloaded, err := svc.GetPurchaseOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetPurchaseOrder failed: %v", err)
	}
	if reloaded.Lines[1].ReceivedQuantity != 0 {
		t.Errorf("Expected line 2 still at 0 received, got %d", reloaded.Lines[1].ReceivedQuantity)
	}
	if got := stockOnHand(t, ctx, pool, 3); got != 0 {
		t.Errorf("Expected product 3 stock untouched at 0, got %d", got)
	}
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	pool, svc, ctx := setupPurchaseOrderTest(t)
	defer pool.Close()

	draft := createDraftOrder(t, ctx, svc)
	cancelled, err := svc.CancelPurchaseOrder(ctx, draft.ID)
	if err != nil {
		t.Fatalf("CancelPurchaseOrder on draft failed: %v", err)
	}
	if cancelled.Status != core.POCancelled {
		t.Errorf("Expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Error("Cancelled order must have cancelled_at timestamp")
	}

	// Cancelling after a receipt has landed is refused.
	order := createDraftOrder(t, ctx, svc)
	if _, err := svc.SubmitPurchaseOrder(ctx, order.ID); err != nil {
		t.Fatalf("SubmitPurchaseOrder failed: %v", err)
	}
	if _, err := svc.ReceiveDelivery(ctx, order.ID,
		[]core.ReceiptLine{{LineNumber: 1, Quantity: 1}}, 2); err != nil {
		t.Fatalf("ReceiveDelivery failed: %v", err)
	}
	_, err = svc.CancelPurchaseOrder(ctx, order.ID)
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError cancelling a partially received order, got %v", err)
	}
}

func TestPurchaseOrder_Validation(t *testing.T) {
	pool, svc, ctx := setupPurchaseOrderTest(t)
	defer pool.Close()

	var ve *core.ValidationError
	var nf *core.NotFoundError

	_, err := svc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{SupplierID: 1})
	if !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError for empty order, got %v", err)
	}

	_, err = svc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 99,
		Lines:      []core.PurchaseOrderLineInput{{ProductID: 1, Quantity: 5}},
	})
	if !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError for unknown supplier, got %v", err)
	}

	_, err = svc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 1,
		Lines: []core.PurchaseOrderLineInput{
			{ProductID: 1, Quantity: 5},
			{ProductID: 1, Quantity: 3},
		},
	})
	if !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError for duplicate product lines, got %v", err)
	}

	// Receiving against a draft is refused.
	draft := createDraftOrder(t, ctx, svc)
	_, err = svc.ReceiveDelivery(ctx, draft.ID,
		[]core.ReceiptLine{{LineNumber: 1, Quantity: 1}}, 2)
	if !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError receiving against a draft, got %v", err)
	}
}

func TestPurchaseOrder_ListByStatus(t *testing.T) {
	pool, svc, ctx := setupPurchaseOrderTest(t)
	defer pool.Close()

	first := createDraftOrder(t, ctx, svc)
	second := createDraftOrder(t, ctx, svc)
	if _, err := svc.SubmitPurchaseOrder(ctx, second.ID); err != nil {
		t.Fatalf("SubmitPurchaseOrder failed: %v", err)
	}

	drafts, err := svc.ListPurchaseOrders(ctx, core.PODraft)
	if err != nil {
		t.Fatalf("ListPurchaseOrders failed: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != first.ID {
		t.Errorf("Expected only the first order in drafts, got %+v", drafts)
	}

	all, err := svc.ListPurchaseOrders(ctx, "")
	if err != nil {
		t.Fatalf("ListPurchaseOrders failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 orders, got %d", len(all))
	}
}
