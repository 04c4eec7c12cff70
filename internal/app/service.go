package app

import (
	"context"

	"retail-pos/internal/core"
)

// ApplicationService is the single interface all adapters call. It decouples
// presentation from business logic. Implementations must contain no
// fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns a user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)

	// ListProducts returns catalog products, optionally including
	// deactivated ones.
	ListProducts(ctx context.Context, includeInactive bool) (*ProductListResult, error)

	// GetProduct returns one product by numeric ID or product code.
	GetProduct(ctx context.Context, ref string) (*ProductResult, error)

	// CreateProduct adds a product to the catalog, recording any opening
	// stock in the inventory ledger.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error)

	// UpdateProduct edits catalog fields. Stock is not editable here; use
	// AdjustStock so every change is ledgered.
	UpdateProduct(ctx context.Context, req UpdateProductRequest) (*ProductResult, error)

	// DeactivateProduct hides a product from new carts. Historical sales
	// keep referencing it.
	DeactivateProduct(ctx context.Context, productID int) error

	// Checkout processes a sale: totals computed from catalog prices, stock
	// decremented, ledger appended, all atomically.
	Checkout(ctx context.Context, req CheckoutRequest) (*SaleResult, error)

	// GetSale returns one sale by numeric ID or bill number.
	GetSale(ctx context.Context, ref string) (*SaleResult, error)

	// ListSales returns the most recent sales.
	ListSales(ctx context.Context, limit int) (*SaleListResult, error)

	// RefundSale refunds a completed sale, restoring stock.
	RefundSale(ctx context.Context, saleID, userID int) (*SaleResult, error)

	// VoidSale voids a completed sale, restoring stock.
	VoidSale(ctx context.Context, saleID, userID int) (*SaleResult, error)

	// GetStockLevels returns current on-hand quantities and stock value for
	// active products.
	GetStockLevels(ctx context.Context) (*StockResult, error)

	// AdjustStock applies a manual stock correction with a mandatory reason.
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*TransactionResult, error)

	// ListInventoryTransactions returns ledger rows, newest first.
	ListInventoryTransactions(ctx context.Context, req TransactionListRequest) (*TransactionListResult, error)

	// CreatePurchaseOrder stores a draft supplier order.
	CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error)

	// SubmitPurchaseOrder moves a draft to ordered and assigns its PO number.
	SubmitPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrderResult, error)

	// ReceiveDelivery books a delivery against an order, raising stock.
	ReceiveDelivery(ctx context.Context, req ReceiveDeliveryRequest) (*PurchaseOrderResult, error)

	// CancelPurchaseOrder cancels a draft or ordered purchase order.
	CancelPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrderResult, error)

	GetPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrderResult, error)
	ListPurchaseOrders(ctx context.Context, status string) (*PurchaseOrderListResult, error)

	// GetSalesReport aggregates completed sales over a named or custom
	// period.
	GetSalesReport(ctx context.Context, req SalesReportRequest) (*core.SalesReport, error)

	// Directory CRUD. Records are deactivated, never deleted.
	ListCustomers(ctx context.Context) (*CustomerListResult, error)
	GetCustomer(ctx context.Context, customerID int) (*CustomerResult, error)
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResult, error)
	DeactivateCustomer(ctx context.Context, customerID int) error
	ListEmployees(ctx context.Context) (*EmployeeListResult, error)
	GetEmployee(ctx context.Context, employeeID int) (*EmployeeResult, error)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResult, error)
	DeactivateEmployee(ctx context.Context, employeeID int) error
	ListSuppliers(ctx context.Context) (*SupplierListResult, error)
	GetSupplier(ctx context.Context, supplierID int) (*SupplierResult, error)
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResult, error)
	DeactivateSupplier(ctx context.Context, supplierID int) error

	// AskAssistant routes a manager question through the AI tool loop. The
	// assistant has read-only tools (reports, stock, catalog) and never
	// mutates anything.
	AskAssistant(ctx context.Context, question string) (*AssistantResult, error)
}
