package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// DashboardStats is the at-a-glance summary shown on the shop dashboard.
type DashboardStats struct {
	TotalRevenue   decimal.Decimal
	TotalOrders    int
	PendingOrders  int
	LowStockCount  int
	TotalDues      decimal.Decimal
	InventoryValue decimal.Decimal
	CustomerCount  int
}

// SalesPoint is one day's sales total in a time series.
type SalesPoint struct {
	Date    string
	Revenue decimal.Decimal
	Orders  int
}

// CategorySales is the revenue contribution of one product category.
type CategorySales struct {
	Category string
	Revenue  decimal.Decimal
	Units    int
}

// ProductSales ranks a product by units sold within the report window.
type ProductSales struct {
	ProductID string
	Name      string
	Units     int
	Revenue   decimal.Decimal
}

// SalesReport bundles the time series and breakdowns for one window.
type SalesReport struct {
	FromDate    string
	ToDate      string
	Daily       []SalesPoint
	ByCategory  []CategorySales
	TopProducts []ProductSales
}

// ── Interface ─────────────────────────────────────────────────────────────────

// AnalyticsService provides read-only reporting queries over orders and stock.
// Cancelled orders are excluded from every revenue figure.
type AnalyticsService interface {
	// GetDashboardStats returns the headline numbers for the dashboard.
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)

	// GetSalesReport returns daily sales, per-category revenue, and the top
	// selling products for the date range. Dates are YYYY-MM-DD; an empty
	// toDate means today, an empty fromDate means 30 days before toDate.
	GetSalesReport(ctx context.Context, fromDate, toDate string, topN int) (*SalesReport, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type analyticsService struct {
	pool  *pgxpool.Pool
	clock Clock
}

// NewAnalyticsService constructs an AnalyticsService backed by the given pool.
func NewAnalyticsService(pool *pgxpool.Pool, clock Clock) AnalyticsService {
	return &analyticsService{pool: pool, clock: clock}
}

func (s *analyticsService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount) FILTER (WHERE status <> 'Cancelled'), 0),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'Processing')
		FROM orders
	`).Scan(&stats.TotalRevenue, &stats.TotalOrders, &stats.PendingOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to query order stats: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE quantity <= min_stock_level),
		       COALESCE(SUM(cost_price * quantity), 0)
		FROM products
	`).Scan(&stats.LowStockCount, &stats.InventoryValue)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock stats: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(current_due), 0), COUNT(*)
		FROM customers
	`).Scan(&stats.TotalDues, &stats.CustomerCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer stats: %w", err)
	}

	return stats, nil
}

func (s *analyticsService) GetSalesReport(ctx context.Context, fromDate, toDate string, topN int) (*SalesReport, error) {
	if toDate == "" {
		toDate = s.clock.Now().Format("2006-01-02")
	}
	if fromDate == "" {
		to, err := time.Parse("2006-01-02", toDate)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %q: %w", toDate, err)
		}
		fromDate = to.AddDate(0, 0, -30).Format("2006-01-02")
	}
	if topN <= 0 {
		topN = 5
	}

	report := &SalesReport{FromDate: fromDate, ToDate: toDate}

	daily, err := s.queryDaily(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	report.Daily = daily

	byCategory, err := s.queryByCategory(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	report.ByCategory = byCategory

	topProducts, err := s.queryTopProducts(ctx, fromDate, toDate, topN)
	if err != nil {
		return nil, err
	}
	report.TopProducts = topProducts

	return report, nil
}

func (s *analyticsService) queryDaily(ctx context.Context, fromDate, toDate string) ([]SalesPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT created_at::date::text,
		       COALESCE(SUM(total_amount), 0),
		       COUNT(*)
		FROM orders
		WHERE status <> 'Cancelled'
		  AND created_at::date BETWEEN $1::date AND $2::date
		GROUP BY created_at::date
		ORDER BY created_at::date
	`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily sales: %w", err)
	}
	defer rows.Close()

	var points []SalesPoint
	for rows.Next() {
		var p SalesPoint
		if err := rows.Scan(&p.Date, &p.Revenue, &p.Orders); err != nil {
			return nil, fmt.Errorf("failed to scan sales point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *analyticsService) queryByCategory(ctx context.Context, fromDate, toDate string) ([]CategorySales, error) {
	// Deleted products fall out of the join and are grouped under the
	// default category.
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(p.category, $3),
		       COALESCE(SUM(oi.price * oi.quantity), 0),
		       COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o      ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.status <> 'Cancelled'
		  AND o.created_at::date BETWEEN $1::date AND $2::date
		GROUP BY COALESCE(p.category, $3)
		ORDER BY 2 DESC
	`, fromDate, toDate, DefaultCategory())
	if err != nil {
		return nil, fmt.Errorf("failed to query category sales: %w", err)
	}
	defer rows.Close()

	var sales []CategorySales
	for rows.Next() {
		var c CategorySales
		if err := rows.Scan(&c.Category, &c.Revenue, &c.Units); err != nil {
			return nil, fmt.Errorf("failed to scan category sales: %w", err)
		}
		sales = append(sales, c)
	}
	return sales, rows.Err()
}

func (s *analyticsService) queryTopProducts(ctx context.Context, fromDate, toDate string, topN int) ([]ProductSales, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT oi.product_id,
		       oi.name,
		       SUM(oi.quantity),
		       SUM(oi.price * oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status <> 'Cancelled'
		  AND o.created_at::date BETWEEN $1::date AND $2::date
		GROUP BY oi.product_id, oi.name
		ORDER BY SUM(oi.quantity) DESC, oi.name
		LIMIT $3
	`, fromDate, toDate, topN)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	var sales []ProductSales
	for rows.Next() {
		var p ProductSales
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Units, &p.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan product sales: %w", err)
		}
		sales = append(sales, p)
	}
	return sales, rows.Err()
}
