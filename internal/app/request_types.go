package app

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest is the input for adding a catalog product.
type CreateProductRequest struct {
	Code         string
	Name         string
	Category     string
	Price        decimal.Decimal
	CostPrice    decimal.Decimal
	InitialStock int
}

// UpdateProductRequest edits catalog fields of an existing product.
type UpdateProductRequest struct {
	ProductID int
	Code      string
	Name      string
	Category  string
	Price     decimal.Decimal
	CostPrice decimal.Decimal
}

// CheckoutRequest is the input for processing a sale. Lines carry no prices;
// the catalog is the only price source.
type CheckoutRequest struct {
	Lines           []CheckoutLineInput
	PaymentMethod   string
	DiscountPercent decimal.Decimal
	AmountPaid      decimal.Decimal
	CashierID       int
	CustomerID      *int   // registered customer when set
	CustomerName    string // walk-in name otherwise; may be empty
}

// CheckoutLineInput is a single cart line within a CheckoutRequest.
type CheckoutLineInput struct {
	ProductID int
	Quantity  int
}

// AdjustStockRequest is the input for a manual stock correction.
type AdjustStockRequest struct {
	ProductID int
	Delta     int
	Notes     string
	UserID    int
}

// TransactionListRequest narrows ListInventoryTransactions. Zero values mean
// no filter.
type TransactionListRequest struct {
	ProductID int
	Type      string
	Limit     int
}

// CreatePurchaseOrderRequest is the input for a new draft purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierID int
	Notes      string
	Lines      []PurchaseOrderLineInput
}

// PurchaseOrderLineInput is a single line within a CreatePurchaseOrderRequest.
// CostPrice nil means "use the product's current cost price".
type PurchaseOrderLineInput struct {
	ProductID int
	Quantity  int
	CostPrice *decimal.Decimal
}

// ReceiveDeliveryRequest records a delivery against a purchase order.
type ReceiveDeliveryRequest struct {
	OrderID int
	UserID  int
	Lines   []ReceiptLineInput
}

// ReceiptLineInput is a single received line within a ReceiveDeliveryRequest.
type ReceiptLineInput struct {
	LineNumber int
	Quantity   int
}

// SalesReportRequest selects the reporting window. From and To apply to
// custom periods only.
type SalesReportRequest struct {
	Period    string // "day" | "week" | "month" | "year" | "custom"
	Reference time.Time
	From      time.Time
	To        time.Time
}

// CreateCustomerRequest is the input for a new registered customer.
type CreateCustomerRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// CreateEmployeeRequest is the input for a new staff record.
type CreateEmployeeRequest struct {
	Name  string
	Role  string
	Email string
	Phone string
}

// CreateSupplierRequest is the input for a new supplier.
type CreateSupplierRequest struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}
