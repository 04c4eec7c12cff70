// seed applies the schema and loads a small demo dataset: a handful of
// products, one registered customer, two staff members, one supplier, and an
// admin login. Safe to re-run; every insert is keyed on a unique column.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"retail-pos/internal/core"
	"retail-pos/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	log.Println("Applying schema...")
	schema, err := os.ReadFile("migrations/001_schema.sql")
	if err != nil {
		log.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding products...")
	if err := seedProducts(ctx, tx); err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Println("Seeding directory...")
	if err := seedDirectory(ctx, tx); err != nil {
		log.Fatalf("Failed to seed directory: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme123"
		log.Println("Warning: SEED_ADMIN_PASSWORD not set, using default")
	}

	users := core.NewUserService(pool)
	if _, err := users.GetByUsername(ctx, "admin"); err == nil {
		log.Println("Admin user already present")
	} else {
		var nf *core.NotFoundError
		if !errors.As(err, &nf) {
			log.Fatalf("Failed to look up admin user: %v", err)
		}
		if _, err := users.CreateUser(ctx, "admin", adminPassword, "admin"); err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Println("Created admin user")
	}

	log.Println("Seed data loaded successfully.")
}

func seedProducts(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO products (code, name, category, price, cost_price, stock_on_hand)
		VALUES
		  ('CF-001', 'Espresso Beans 1kg',   'coffee',   45.99, 30.00, 24),
		  ('CF-002', 'House Blend 500g',     'coffee',   22.50, 14.00, 40),
		  ('DY-014', 'Oat Milk 1L',          'dairy',    12.75,  8.00, 60),
		  ('DY-015', 'Whole Milk 1L',        'dairy',     9.25,  6.00, 48),
		  ('SP-207', 'Paper Cups 50pk',      'supplies',  9.99,  6.00, 30),
		  ('SP-210', 'Napkins 200pk',        'supplies',  4.50,  2.50, 80)
		ON CONFLICT (code) DO NOTHING;
	`)
	return err
}

func seedDirectory(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO customers (name, email, phone, address)
		SELECT 'Acme Catering', 'orders@acmecatering.example', '555-0143', '12 Mill Lane'
		WHERE NOT EXISTS (SELECT 1 FROM customers WHERE name = 'Acme Catering');

		INSERT INTO employees (name, role, email, phone)
		SELECT 'Alice Vega', 'cashier', 'alice@store.example', '555-0101'
		WHERE NOT EXISTS (SELECT 1 FROM employees WHERE name = 'Alice Vega');

		INSERT INTO employees (name, role, email, phone)
		SELECT 'Ben Ortiz', 'manager', 'ben@store.example', '555-0102'
		WHERE NOT EXISTS (SELECT 1 FROM employees WHERE name = 'Ben Ortiz');

		INSERT INTO suppliers (name, contact_person, email, phone, address)
		SELECT 'Fresh Farms Ltd', 'Dana Kim', 'sales@freshfarms.example', '555-0177', '4 Orchard Road'
		WHERE NOT EXISTS (SELECT 1 FROM suppliers WHERE name = 'Fresh Farms Ltd');
	`)
	return err
}
