package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. StockOnHand is the single authoritative stock
// figure; it is mutated only by checkout, adjustment, refund/void restock,
// and purchase order receipt — each mutation paired with a ledger row.
type Product struct {
	ID          int             `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	StockOnHand int             `json:"stock_on_hand"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Customer is a directory record for registered customers.
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Employee is a staff directory record. Sales reference the employee who
// operated the register.
type Employee struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Supplier is a directory record for purchase order counterparties.
type Supplier struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Address       *string   `json:"address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// CustomerKind discriminates the two customer representations on a sale.
type CustomerKind string

const (
	CustomerRegistered CustomerKind = "registered"
	CustomerWalkIn     CustomerKind = "walkin"
)

// SaleCustomer is the tagged counterparty of a sale: either a reference to a
// registered customer or a free-form walk-in name. It is resolved once at the
// boundary; downstream code never re-normalizes it.
type SaleCustomer struct {
	Kind CustomerKind `json:"kind"`
	ID   *int         `json:"id,omitempty"`   // set when Kind == registered
	Name string       `json:"name,omitempty"` // set when Kind == walkin
}

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SaleRefunded  SaleStatus = "refunded"
	SaleVoided    SaleStatus = "voided"
)

// Sale is a persisted checkout. Monetary fields are computed server-side from
// catalog prices at checkout time and are immutable afterwards; only the
// status may transition (completed → refunded | voided).
type Sale struct {
	ID            int             `json:"id"`
	BillNumber    string          `json:"bill_number"`
	Status        SaleStatus      `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	GST           decimal.Decimal `json:"gst"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Change        decimal.Decimal `json:"change"`
	PaymentMethod string          `json:"payment_method"`
	CashierID     int             `json:"cashier_id"`
	Customer      SaleCustomer    `json:"customer"`
	CreatedAt     time.Time       `json:"created_at"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
	VoidedAt      *time.Time      `json:"voided_at,omitempty"`
	Lines         []SaleLine      `json:"lines"`
}

// SaleLine is one cart line within a sale. Name and UnitPrice are snapshots
// taken at checkout; the current product record has no bearing on them.
type SaleLine struct {
	ID         int             `json:"id"`
	SaleID     int             `json:"sale_id"`
	LineNumber int             `json:"line_number"`
	ProductID  int             `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// TransactionType classifies inventory ledger entries by cause.
type TransactionType string

const (
	TxPurchase    TransactionType = "purchase"
	TxSale        TransactionType = "sale"
	TxAdjustment  TransactionType = "adjustment"
	TxReturn      TransactionType = "return"
	TxTransferIn  TransactionType = "transfer_in"
	TxTransferOut TransactionType = "transfer_out"
)

// InventoryTransaction is one row of the append-only stock ledger. The
// invariant NewQuantity == PreviousQuantity + Quantity always equals the
// product's stock on hand at the moment the row committed; rows are never
// mutated after creation.
type InventoryTransaction struct {
	ID               int             `json:"id"`
	ProductID        int             `json:"product_id"`
	Type             TransactionType `json:"type"`
	Quantity         int             `json:"quantity"` // signed delta
	PreviousQuantity int             `json:"previous_quantity"`
	NewQuantity      int             `json:"new_quantity"`
	ReferenceType    *string         `json:"reference_type,omitempty"` // "sale" | "purchase_order"
	ReferenceID      *int            `json:"reference_id,omitempty"`
	Notes            string          `json:"notes"`
	CreatedBy        *int            `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	PODraft             POStatus = "draft"
	POOrdered           POStatus = "ordered"
	POPartiallyReceived POStatus = "partially_received"
	POReceived          POStatus = "received"
	POCancelled         POStatus = "cancelled"
)

// PurchaseOrder is a supplier order header. Receiving is cumulative: each
// receipt raises per-line ReceivedQuantity, never resets it, and the status
// is recomputed from the lines after every receipt.
type PurchaseOrder struct {
	ID           int                 `json:"id"`
	PONumber     *string             `json:"po_number,omitempty"` // assigned on submit
	SupplierID   int                 `json:"supplier_id"`
	SupplierName string              `json:"supplier_name"`
	Status       POStatus            `json:"status"`
	Total        decimal.Decimal     `json:"total"`
	Notes        *string             `json:"notes,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	OrderedAt    *time.Time          `json:"ordered_at,omitempty"`
	ReceivedAt   *time.Time          `json:"received_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	Lines        []PurchaseOrderLine `json:"lines"`
}

// PurchaseOrderLine is one ordered product on a purchase order.
type PurchaseOrderLine struct {
	ID               int             `json:"id"`
	OrderID          int             `json:"order_id"`
	LineNumber       int             `json:"line_number"`
	ProductID        int             `json:"product_id"`
	ProductCode      string          `json:"product_code"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	ReceivedQuantity int             `json:"received_quantity"`
}

// StockLevel is the read view of a product's current stock position.
type StockLevel struct {
	ProductID   int             `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	OnHand      int             `json:"on_hand"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	StockValue  decimal.Decimal `json:"stock_value"` // OnHand × CostPrice
}
