package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerInput holds the caller-editable fields of a customer.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// EmployeeInput holds the caller-editable fields of an employee.
type EmployeeInput struct {
	Name  string
	Role  string
	Email string
	Phone string
}

// SupplierInput holds the caller-editable fields of a supplier.
type SupplierInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

// DirectoryService provides master data operations for the three reference
// directories: customers, employees, and suppliers. Records are deactivated,
// never deleted — sales and purchase orders reference them historically.
type DirectoryService interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int) (*Customer, error)
	GetCustomers(ctx context.Context) ([]Customer, error)
	DeactivateCustomer(ctx context.Context, customerID int) error

	CreateEmployee(ctx context.Context, input EmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, employeeID int) (*Employee, error)
	GetEmployees(ctx context.Context) ([]Employee, error)
	DeactivateEmployee(ctx context.Context, employeeID int) error

	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)
	GetSupplier(ctx context.Context, supplierID int) (*Supplier, error)
	GetSuppliers(ctx context.Context) ([]Supplier, error)
	DeactivateSupplier(ctx context.Context, supplierID int) error
}

type directoryService struct {
	pool *pgxpool.Pool
}

// NewDirectoryService constructs a DirectoryService backed by PostgreSQL.
func NewDirectoryService(pool *pgxpool.Pool) DirectoryService {
	return &directoryService{pool: pool}
}

func toPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (s *directoryService) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	if input.Name == "" {
		return nil, &ValidationError{Msg: "customer name is required"}
	}

	c := &Customer{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (name, email, phone, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, phone, address, is_active, created_at`,
		input.Name, toPtr(input.Email), toPtr(input.Phone), toPtr(input.Address),
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create customer %q: %w", input.Name, err)
	}
	return c, nil
}

func (s *directoryService) GetCustomer(ctx context.Context, customerID int) (*Customer, error) {
	c := &Customer{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, address, is_active, created_at
		FROM customers WHERE id = $1`,
		customerID,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "customer", Ref: strconv.Itoa(customerID)}
		}
		return nil, fmt.Errorf("get customer %d: %w", customerID, err)
	}
	return c, nil
}

func (s *directoryService) GetCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, phone, address, is_active, created_at
		FROM customers WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *directoryService) DeactivateCustomer(ctx context.Context, customerID int) error {
	return s.deactivate(ctx, "customers", "customer", customerID)
}

// ── Employees ─────────────────────────────────────────────────────────────────

func (s *directoryService) CreateEmployee(ctx context.Context, input EmployeeInput) (*Employee, error) {
	if input.Name == "" {
		return nil, &ValidationError{Msg: "employee name is required"}
	}
	role := input.Role
	if role == "" {
		role = "cashier"
	}

	e := &Employee{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO employees (name, role, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, role, email, phone, is_active, created_at`,
		input.Name, role, toPtr(input.Email), toPtr(input.Phone),
	).Scan(&e.ID, &e.Name, &e.Role, &e.Email, &e.Phone, &e.IsActive, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create employee %q: %w", input.Name, err)
	}
	return e, nil
}

func (s *directoryService) GetEmployee(ctx context.Context, employeeID int) (*Employee, error) {
	e := &Employee{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, role, email, phone, is_active, created_at
		FROM employees WHERE id = $1`,
		employeeID,
	).Scan(&e.ID, &e.Name, &e.Role, &e.Email, &e.Phone, &e.IsActive, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "employee", Ref: strconv.Itoa(employeeID)}
		}
		return nil, fmt.Errorf("get employee %d: %w", employeeID, err)
	}
	return e, nil
}

func (s *directoryService) GetEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, role, email, phone, is_active, created_at
		FROM employees WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.Email, &e.Phone, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *directoryService) DeactivateEmployee(ctx context.Context, employeeID int) error {
	return s.deactivate(ctx, "employees", "employee", employeeID)
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (s *directoryService) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if input.Name == "" {
		return nil, &ValidationError{Msg: "supplier name is required"}
	}

	sup := &Supplier{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, contact_person, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, contact_person, email, phone, address, is_active, created_at`,
		input.Name, toPtr(input.ContactPerson), toPtr(input.Email), toPtr(input.Phone), toPtr(input.Address),
	).Scan(&sup.ID, &sup.Name, &sup.ContactPerson, &sup.Email, &sup.Phone, &sup.Address, &sup.IsActive, &sup.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create supplier %q: %w", input.Name, err)
	}
	return sup, nil
}

func (s *directoryService) GetSupplier(ctx context.Context, supplierID int) (*Supplier, error) {
	sup := &Supplier{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, contact_person, email, phone, address, is_active, created_at
		FROM suppliers WHERE id = $1`,
		supplierID,
	).Scan(&sup.ID, &sup.Name, &sup.ContactPerson, &sup.Email, &sup.Phone, &sup.Address, &sup.IsActive, &sup.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "supplier", Ref: strconv.Itoa(supplierID)}
		}
		return nil, fmt.Errorf("get supplier %d: %w", supplierID, err)
	}
	return sup, nil
}

func (s *directoryService) GetSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, contact_person, email, phone, address, is_active, created_at
		FROM suppliers WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.ContactPerson, &sup.Email, &sup.Phone,
			&sup.Address, &sup.IsActive, &sup.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

func (s *directoryService) DeactivateSupplier(ctx context.Context, supplierID int) error {
	return s.deactivate(ctx, "suppliers", "supplier", supplierID)
}

func (s *directoryService) deactivate(ctx context.Context, table, kind string, id int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE `+table+` SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate %s %d: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Kind: kind, Ref: strconv.Itoa(id)}
	}
	return nil
}
