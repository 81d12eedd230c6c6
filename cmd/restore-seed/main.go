// restore-seed is a one-shot tool to restore the live database seed data.
// Run it when the demo catalog or customer registry has been accidentally
// wiped. Existing rows with the same ids are updated in place.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"os"

	"smartshodhai/internal/core"
	"smartshodhai/internal/db"

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

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "shodhai123"
	}
	passwordHash, err := core.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Restoring owner account...")
	_, err = tx.Exec(ctx, `
		INSERT INTO users (username, email, password_hash, name, role, is_active)
		VALUES ('admin', 'admin@smartshodhai.local', $1, 'Shop Owner', 'Admin', true)
		ON CONFLICT (username) DO UPDATE
		  SET password_hash = EXCLUDED.password_hash,
		      is_active = true;
	`, passwordHash)
	if err != nil {
		log.Fatalf("Failed to restore owner account: %v", err)
	}

	log.Println("Restoring product catalog...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (id, name, category, cost_price, selling_price, quantity, min_stock_level)
		VALUES
		  ('prod-1', 'Fresh Milk 1L',         'Dairy',       85,  95,  50,  10),
		  ('prod-2', 'Teer Soyabean Oil 5L',  'Cooking Oil', 780, 820, 5,   10),
		  ('prod-3', 'PRAN Frooto 250ml',     'Beverages',   22,  25,  120, 24),
		  ('prod-4', 'Chashi Aromatic Rice 5kg', 'Rice',     550, 620, 30,  5),
		  ('prod-5', 'ACI Salt 1kg',          'Spices',      35,  40,  100, 20)
		ON CONFLICT (id) DO UPDATE
		  SET name = EXCLUDED.name,
		      category = EXCLUDED.category,
		      cost_price = EXCLUDED.cost_price,
		      selling_price = EXCLUDED.selling_price,
		      quantity = EXCLUDED.quantity,
		      min_stock_level = EXCLUDED.min_stock_level;
	`)
	if err != nil {
		log.Fatalf("Failed to restore products: %v", err)
	}

	log.Println("Restoring customer registry...")
	_, err = tx.Exec(ctx, `
		INSERT INTO customers (id, name, phone, address, current_due, created_at)
		VALUES
		  ('cust-0', 'Walk-in Customer',         '',            '',           0,    now() - interval '90 days'),
		  ('cust-1', 'Rahim Store',              '01712345678', 'Mirpur 10',  0,    now() - interval '60 days'),
		  ('cust-2', 'Mayer Doa General Store',  '01898765432', 'Dhanmondi',  540,  now() - interval '45 days'),
		  ('cust-3', 'Popular Super Shop',       '01911223344', 'Uttara',     2100, now() - interval '30 days')
		ON CONFLICT (id) DO UPDATE
		  SET name = EXCLUDED.name,
		      phone = EXCLUDED.phone,
		      address = EXCLUDED.address,
		      current_due = EXCLUDED.current_due;
	`)
	if err != nil {
		log.Fatalf("Failed to restore customers: %v", err)
	}

	log.Println("Restoring demo orders...")
	_, err = tx.Exec(ctx, `
		DELETE FROM order_items WHERE order_id IN ('ord-101', 'ord-102');
		INSERT INTO orders (id, customer_id, customer_name, total_amount, status, payment_status, created_at)
		VALUES
		  ('ord-101', 'cust-1', 'Rahim Store',             950,  'Delivered',  'Paid',    now() - interval '7 days'),
		  ('ord-102', 'cust-2', 'Mayer Doa General Store', 1640, 'Processing', 'Partial', now() - interval '2 days')
		ON CONFLICT (id) DO UPDATE
		  SET customer_id = EXCLUDED.customer_id,
		      customer_name = EXCLUDED.customer_name,
		      total_amount = EXCLUDED.total_amount,
		      status = EXCLUDED.status,
		      payment_status = EXCLUDED.payment_status;
		INSERT INTO order_items (order_id, line_number, product_id, name, quantity, price)
		VALUES
		  ('ord-101', 1, 'prod-1', 'Fresh Milk 1L',        10, 95),
		  ('ord-102', 1, 'prod-2', 'Teer Soyabean Oil 5L', 2,  820);
	`)
	if err != nil {
		log.Fatalf("Failed to restore orders: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data restored successfully.")
	os.Exit(0)
}
