package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CustomerService manages the customer registry, including the outstanding
// baki balances. Reconciliation may only ever increase a due; settling one is
// a separate, explicit operation.
type CustomerService interface {
	GetCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	// GetDefaultCustomer returns the walk-in customer scanned sales are
	// booked against: the oldest record in the registry.
	GetDefaultCustomer(ctx context.Context) (*Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (*Customer, error)
	// AddDue increases a customer's outstanding balance. delta must be
	// positive.
	AddDue(ctx context.Context, id string, delta decimal.Decimal) (*Customer, error)
	// SettleDue records a repayment, reducing the balance but never below
	// zero.
	SettleDue(ctx context.Context, id string, amount decimal.Decimal) (*Customer, error)

	// AddDueTx is the transaction-scoped form of AddDue, used by
	// ScanService to keep the due update atomic with the rest of a scan.
	AddDueTx(ctx context.Context, tx pgx.Tx, id string, delta decimal.Decimal) error
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

func (s *customerService) GetCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, phone, address, current_due, created_at
		FROM customers
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CurrentDue, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	for i := range customers {
		history, err := s.fetchOrderHistory(ctx, customers[i].ID)
		if err != nil {
			return nil, err
		}
		customers[i].OrderHistory = history
	}
	return customers, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.fetchOne(ctx, "SELECT id, name, phone, address, current_due, created_at FROM customers WHERE id = $1", id)
}

func (s *customerService) GetDefaultCustomer(ctx context.Context) (*Customer, error) {
	c, err := s.fetchOne(ctx, `
		SELECT id, name, phone, address, current_due, created_at
		FROM customers
		ORDER BY created_at, id
		LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("no customers in registry: %w", err)
	}
	return c, nil
}

func (s *customerService) fetchOne(ctx context.Context, sql string, args ...any) (*Customer, error) {
	var c Customer
	err := s.pool.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Address, &c.CurrentDue, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("customer not found")
		}
		return nil, fmt.Errorf("failed to fetch customer: %w", err)
	}

	history, err := s.fetchOrderHistory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.OrderHistory = history
	return &c, nil
}

func (s *customerService) fetchOrderHistory(ctx context.Context, customerID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id FROM orders WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history for %s: %w", customerID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *customerService) CreateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	if c.Name == "" {
		return nil, errors.New("customer name is required")
	}
	if c.CurrentDue.IsNegative() {
		return nil, errors.New("current due cannot be negative")
	}
	if c.ID == "" {
		c.ID = "c-" + uuid.NewString()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (id, name, phone, address, current_due)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, c.ID, c.Name, c.Phone, c.Address, c.CurrentDue).Scan(&c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &c, nil
}

func (s *customerService) AddDue(ctx context.Context, id string, delta decimal.Decimal) (*Customer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.AddDueTx(ctx, tx, id, delta); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit due update: %w", err)
	}
	return s.GetCustomer(ctx, id)
}

func (s *customerService) AddDueTx(ctx context.Context, tx pgx.Tx, id string, delta decimal.Decimal) error {
	if delta.IsNegative() || delta.IsZero() {
		return fmt.Errorf("due delta must be positive, got %s", delta)
	}

	tag, err := tx.Exec(ctx,
		"UPDATE customers SET current_due = current_due + $2 WHERE id = $1", id, delta)
	if err != nil {
		return fmt.Errorf("failed to add due for customer %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %s not found", id)
	}
	return nil
}

func (s *customerService) SettleDue(ctx context.Context, id string, amount decimal.Decimal) (*Customer, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, fmt.Errorf("settlement amount must be positive, got %s", amount)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE customers
		SET current_due = GREATEST(current_due - $2, 0)
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to settle due for customer %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("customer %s not found", id)
	}
	return s.GetCustomer(ctx, id)
}
