package app

import (
	"context"
	"fmt"
	"strconv"

	"retail-pos/internal/ai"
	"retail-pos/internal/core"
)

type appService struct {
	users      core.UserService
	catalog    core.CatalogService
	checkout   core.CheckoutService
	inventory  core.InventoryService
	purchasing core.PurchaseOrderService
	reporting  core.ReportingService
	directory  core.DirectoryService
	source     ReadSource
	assistant  *ai.Assistant
}

// NewAppService constructs an appService that satisfies ApplicationService.
// assistant may be nil when no API key is configured; AskAssistant then
// fails with a ValidationError instead of panicking.
func NewAppService(
	users core.UserService,
	catalog core.CatalogService,
	checkout core.CheckoutService,
	inventory core.InventoryService,
	purchasing core.PurchaseOrderService,
	reporting core.ReportingService,
	directory core.DirectoryService,
	source ReadSource,
	assistant *ai.Assistant,
) ApplicationService {
	return &appService{
		users:      users,
		catalog:    catalog,
		checkout:   checkout,
		inventory:  inventory,
		purchasing: purchasing,
		reporting:  reporting,
		directory:  directory,
		source:     source,
		assistant:  assistant,
	}
}

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{User: u}, nil
}

func (s *appService) ListProducts(ctx context.Context, includeInactive bool) (*ProductListResult, error) {
	// The active-products view goes through the configured read source so
	// the fixture backend serves it too; the admin view is always live.
	if includeInactive {
		products, err := s.catalog.GetProducts(ctx, true)
		if err != nil {
			return nil, err
		}
		return &ProductListResult{Products: products}, nil
	}
	products, err := s.source.Products(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

// GetProduct accepts a numeric ID or a product code.
func (s *appService) GetProduct(ctx context.Context, ref string) (*ProductResult, error) {
	var p *core.Product
	var err error
	if id, convErr := strconv.Atoi(ref); convErr == nil {
		p, err = s.catalog.GetProduct(ctx, id)
	} else {
		p, err = s.catalog.GetProductByCode(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error) {
	p, err := s.catalog.CreateProduct(ctx, core.ProductInput{
		Code:      req.Code,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		CostPrice: req.CostPrice,
	}, req.InitialStock)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, req UpdateProductRequest) (*ProductResult, error) {
	p, err := s.catalog.UpdateProduct(ctx, req.ProductID, core.ProductInput{
		Code:      req.Code,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		CostPrice: req.CostPrice,
	})
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) DeactivateProduct(ctx context.Context, productID int) error {
	return s.catalog.DeactivateProduct(ctx, productID)
}

func (s *appService) Checkout(ctx context.Context, req CheckoutRequest) (*SaleResult, error) {
	lines := make([]core.CartLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.CartLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	customer := core.SaleCustomer{Kind: core.CustomerWalkIn, Name: req.CustomerName}
	if req.CustomerID != nil {
		customer = core.SaleCustomer{Kind: core.CustomerRegistered, ID: req.CustomerID}
	}

	sale, err := s.checkout.Checkout(ctx, core.CheckoutInput{
		Lines:           lines,
		PaymentMethod:   req.PaymentMethod,
		DiscountPercent: req.DiscountPercent,
		AmountPaid:      req.AmountPaid,
		CashierID:       req.CashierID,
		Customer:        customer,
	})
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

// GetSale accepts a numeric ID or a bill number.
func (s *appService) GetSale(ctx context.Context, ref string) (*SaleResult, error) {
	var sale *core.Sale
	var err error
	if id, convErr := strconv.Atoi(ref); convErr == nil {
		sale, err = s.checkout.GetSale(ctx, id)
	} else {
		sale, err = s.checkout.GetSaleByBillNumber(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) ListSales(ctx context.Context, limit int) (*SaleListResult, error) {
	sales, err := s.checkout.ListSales(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &SaleListResult{Sales: sales}, nil
}

func (s *appService) RefundSale(ctx context.Context, saleID, userID int) (*SaleResult, error) {
	sale, err := s.checkout.RefundSale(ctx, saleID, userID)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) VoidSale(ctx context.Context, saleID, userID int) (*SaleResult, error) {
	sale, err := s.checkout.VoidSale(ctx, saleID, userID)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) GetStockLevels(ctx context.Context) (*StockResult, error) {
	levels, err := s.source.StockLevels(ctx)
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels}, nil
}

func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*TransactionResult, error) {
	txn, err := s.inventory.AdjustStock(ctx, core.AdjustStockInput{
		ProductID: req.ProductID,
		Delta:     req.Delta,
		Notes:     req.Notes,
		UserID:    req.UserID,
	})
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: txn}, nil
}

func (s *appService) ListInventoryTransactions(ctx context.Context, req TransactionListRequest) (*TransactionListResult, error) {
	txns, err := s.inventory.ListTransactions(ctx, core.TransactionFilter{
		ProductID: req.ProductID,
		Type:      core.TransactionType(req.Type),
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: txns}, nil
}

func (s *appService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	lines := make([]core.PurchaseOrderLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.PurchaseOrderLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			CostPrice: l.CostPrice,
		}
	}
	order, err := s.purchasing.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: req.SupplierID,
		Notes:      req.Notes,
		Lines:      lines,
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: order}, nil
}

func (s *appService) SubmitPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrderResult, error) {
	order, err := s.purchasing.SubmitPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: order}, nil
}

func (s *appService) ReceiveDelivery(ctx context.Context, req ReceiveDeliveryRequest) (*PurchaseOrderResult, error) {
	lines := make([]core.ReceiptLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.ReceiptLine{LineNumber: l.LineNumber, Quantity: l.Quantity}
	}
	order, err := s.purchasing.ReceiveDelivery(ctx, req.OrderID, lines, req.UserID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: order}, nil
}

func (s *appService) CancelPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrderResult, error) {
	order, err := s.purchasing.CancelPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: order}, nil
}

func (s *appService) GetPurchaseOrder(ctx context.Context, orderID int) (*PurchaseOrderResult, error) {
	order, err := s.purchasing.GetPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: order}, nil
}

func (s *appService) ListPurchaseOrders(ctx context.Context, status string) (*PurchaseOrderListResult, error) {
	orders, err := s.purchasing.ListPurchaseOrders(ctx, core.POStatus(status))
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderListResult{Orders: orders}, nil
}

func (s *appService) GetSalesReport(ctx context.Context, req SalesReportRequest) (*core.SalesReport, error) {
	return s.source.SalesReport(ctx, core.ReportRequest{
		Kind:      core.PeriodKind(req.Period),
		Reference: req.Reference,
		From:      req.From,
		To:        req.To,
	})
}

func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.directory.GetCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) GetCustomer(ctx context.Context, customerID int) (*CustomerResult, error) {
	c, err := s.directory.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResult, error) {
	c, err := s.directory.CreateCustomer(ctx, core.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) DeactivateCustomer(ctx context.Context, customerID int) error {
	return s.directory.DeactivateCustomer(ctx, customerID)
}

func (s *appService) ListEmployees(ctx context.Context) (*EmployeeListResult, error) {
	employees, err := s.directory.GetEmployees(ctx)
	if err != nil {
		return nil, err
	}
	return &EmployeeListResult{Employees: employees}, nil
}

func (s *appService) GetEmployee(ctx context.Context, employeeID int) (*EmployeeResult, error) {
	e, err := s.directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return &EmployeeResult{Employee: e}, nil
}

func (s *appService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResult, error) {
	e, err := s.directory.CreateEmployee(ctx, core.EmployeeInput{
		Name:  req.Name,
		Role:  req.Role,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &EmployeeResult{Employee: e}, nil
}

func (s *appService) DeactivateEmployee(ctx context.Context, employeeID int) error {
	return s.directory.DeactivateEmployee(ctx, employeeID)
}

func (s *appService) ListSuppliers(ctx context.Context) (*SupplierListResult, error) {
	suppliers, err := s.directory.GetSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: suppliers}, nil
}

func (s *appService) GetSupplier(ctx context.Context, supplierID int) (*SupplierResult, error) {
	sup, err := s.directory.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: sup}, nil
}

func (s *appService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResult, error) {
	sup, err := s.directory.CreateSupplier(ctx, core.SupplierInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: sup}, nil
}

func (s *appService) DeactivateSupplier(ctx context.Context, supplierID int) error {
	return s.directory.DeactivateSupplier(ctx, supplierID)
}

func (s *appService) AskAssistant(ctx context.Context, question string) (*AssistantResult, error) {
	if s.assistant == nil {
		return nil, &core.ValidationError{Msg: "assistant is not configured: OPENAI_API_KEY is missing"}
	}
	if question == "" {
		return nil, &core.ValidationError{Msg: "question must not be empty"}
	}
	answer, err := s.assistant.Ask(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("assistant request failed: %w", err)
	}
	return &AssistantResult{Answer: answer}, nil
}
