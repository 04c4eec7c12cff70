package app

import "retail-pos/internal/core"

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID   int
	Username string
	Role     string
}

// UserResult is returned by GetUser.
type UserResult struct {
	User *core.User
}

// ProductResult is returned by single-product operations.
type ProductResult struct {
	Product *core.Product
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
}

// SaleResult is returned by checkout and sale lifecycle operations.
type SaleResult struct {
	Sale *core.Sale
}

// SaleListResult is returned by ListSales.
type SaleListResult struct {
	Sales []core.Sale
}

// StockResult is returned by GetStockLevels.
type StockResult struct {
	Levels []core.StockLevel
}

// TransactionResult is returned by AdjustStock.
type TransactionResult struct {
	Transaction *core.InventoryTransaction
}

// TransactionListResult is returned by ListInventoryTransactions.
type TransactionListResult struct {
	Transactions []core.InventoryTransaction
}

// PurchaseOrderResult is returned by purchase order lifecycle operations.
type PurchaseOrderResult struct {
	Order *core.PurchaseOrder
}

// PurchaseOrderListResult is returned by ListPurchaseOrders.
type PurchaseOrderListResult struct {
	Orders []core.PurchaseOrder
}

// CustomerResult is returned by CreateCustomer and GetCustomer.
type CustomerResult struct {
	Customer *core.Customer
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer
}

// EmployeeResult is returned by CreateEmployee and GetEmployee.
type EmployeeResult struct {
	Employee *core.Employee
}

// EmployeeListResult is returned by ListEmployees.
type EmployeeListResult struct {
	Employees []core.Employee
}

// SupplierResult is returned by CreateSupplier and GetSupplier.
type SupplierResult struct {
	Supplier *core.Supplier
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []core.Supplier
}

// AssistantResult is returned by AskAssistant.
type AssistantResult struct {
	Answer string
}
