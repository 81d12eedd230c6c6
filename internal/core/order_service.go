package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// decimalSum totals the subtotals of a set of order lines.
func decimalSum(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// OrderService manages the order ledger. Orders are append-only: line items
// never change after creation, only the status fields move.
type OrderService interface {
	GetOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	// CreateOrder persists a fully built order in its own transaction.
	CreateOrder(ctx context.Context, order Order) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error)

	// InsertOrderTx appends an order within a caller-provided transaction.
	// Used by ScanService so order creation commits atomically with the
	// catalog and due updates of the same scan.
	InsertOrderTx(ctx context.Context, tx pgx.Tx, order *Order) error
}

type orderService struct {
	pool *pgxpool.Pool
}

func NewOrderService(pool *pgxpool.Pool) OrderService {
	return &orderService{pool: pool}
}

func (s *orderService) GetOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, customer_id, customer_name, total_amount, status, payment_status, created_at
		FROM orders
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.TotalAmount,
			&o.Status, &o.PaymentStatus, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := s.fetchItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := s.pool.QueryRow(ctx, `
		SELECT id, customer_id, customer_name, total_amount, status, payment_status, created_at
		FROM orders WHERE id = $1
	`, id).Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.TotalAmount,
		&o.Status, &o.PaymentStatus, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}

	items, err := s.fetchItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *orderService) fetchItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, name, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_number
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *orderService) CreateOrder(ctx context.Context, order Order) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.InsertOrderTx(ctx, tx, &order); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return &order, nil
}

func (s *orderService) InsertOrderTx(ctx context.Context, tx pgx.Tx, order *Order) error {
	if order.ID == "" {
		return errors.New("order ID is required")
	}
	if len(order.Items) == 0 {
		return errors.New("order must have at least one item")
	}

	// The stored total must equal the sum of line subtotals.
	sum := decimalSum(order.Items)
	if !order.TotalAmount.Equal(sum) {
		return fmt.Errorf("order total %s does not equal sum of line subtotals %s",
			order.TotalAmount, sum)
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, customer_id, customer_name, total_amount, status, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, order.ID, order.CustomerID, order.CustomerName, order.TotalAmount,
		order.Status, order.PaymentStatus, order.CreatedAt).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.ID, err)
	}

	for i, item := range order.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, line_number, product_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, order.ID, i+1, item.ProductID, item.Name, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("failed to insert order line %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, status OrderStatus) (*Order, error) {
	switch status {
	case OrderProcessing, OrderReady, OrderDelivered, OrderCancelled:
	default:
		return nil, fmt.Errorf("unknown order status %q", status)
	}

	tag, err := s.pool.Exec(ctx, "UPDATE orders SET status = $2 WHERE id = $1", id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("order %s not found", id)
	}
	return s.GetOrder(ctx, id)
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error) {
	switch status {
	case PaymentPaid, PaymentPartial, PaymentDue:
	default:
		return nil, fmt.Errorf("unknown payment status %q", status)
	}

	tag, err := s.pool.Exec(ctx, "UPDATE orders SET payment_status = $2 WHERE id = $1", id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %s payment status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("order %s not found", id)
	}
	return s.GetOrder(ctx, id)
}
