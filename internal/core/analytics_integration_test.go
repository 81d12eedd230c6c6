package core_test

import (
	"context"
	"testing"

	"smartshodhai/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// seedAnalyticsOrders loads a small order history: two live orders inside the
// default 30-day window, one cancelled order, and one old order outside it.
func seedAnalyticsOrders(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO orders (id, customer_id, customer_name, total_amount, status, payment_status, created_at) VALUES
		('ord-s1', 'c1', 'Walk-in Customer', 480, 'Delivered',  'Paid', now() - interval '1 day'),
		('ord-s2', 'c2', 'Karim Uddin',      300, 'Processing', 'Due',  now() - interval '2 days'),
		('ord-s3', 'c2', 'Karim Uddin',      950, 'Cancelled',  'Paid', now() - interval '1 day'),
		('ord-s4', 'c1', 'Walk-in Customer', 250, 'Delivered',  'Paid', now() - interval '40 days');

		INSERT INTO order_items (order_id, line_number, product_id, name, quantity, price) VALUES
		('ord-s1', 1, 'p1', 'Fresh Milk 1L',     4,  95),
		('ord-s1', 2, 'p3', 'PRAN Frooto 250ml', 4,  25),
		('ord-s2', 1, 'p3', 'PRAN Frooto 250ml', 12, 25),
		('ord-s3', 1, 'p1', 'Fresh Milk 1L',     10, 95),
		('ord-s4', 1, 'p3', 'PRAN Frooto 250ml', 10, 25);
	`)
	if err != nil {
		t.Fatalf("Failed to seed analytics orders: %v", err)
	}
}

func TestAnalyticsService_DashboardStats(t *testing.T) {
	pool, ctx := setupTestDB(t)
	seedAnalyticsOrders(t, ctx, pool)
	svc := core.NewAnalyticsService(pool, core.SystemClock())

	stats, err := svc.GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("GetDashboardStats failed: %v", err)
	}

	// The cancelled ord-s3 (950) must not count toward revenue; everything
	// else does regardless of age.
	want := decimal.NewFromInt(480 + 300 + 250)
	if !stats.TotalRevenue.Equal(want) {
		t.Errorf("Expected revenue %s excluding cancelled orders, got %s", want, stats.TotalRevenue)
	}
	if stats.TotalOrders != 4 {
		t.Errorf("Expected 4 orders total, got %d", stats.TotalOrders)
	}
	if stats.PendingOrders != 1 {
		t.Errorf("Expected 1 processing order, got %d", stats.PendingOrders)
	}

	// Inventory is valued at cost: 76*24 + 656*8 + 20*120.
	wantInventory := decimal.NewFromInt(76*24 + 656*8 + 20*120)
	if !stats.InventoryValue.Equal(wantInventory) {
		t.Errorf("Expected inventory value %s, got %s", wantInventory, stats.InventoryValue)
	}
	if stats.LowStockCount != 0 {
		t.Errorf("Expected no low stock products, got %d", stats.LowStockCount)
	}

	if stats.CustomerCount != 2 {
		t.Errorf("Expected 2 customers, got %d", stats.CustomerCount)
	}
	if !stats.TotalDues.Equal(decimal.NewFromInt(450)) {
		t.Errorf("Expected total dues 450, got %s", stats.TotalDues)
	}
}

func TestAnalyticsService_SalesReportWindowDefaults(t *testing.T) {
	pool, ctx := setupTestDB(t)
	seedAnalyticsOrders(t, ctx, pool)
	svc := core.NewAnalyticsService(pool, core.SystemClock())

	// Empty dates default to the last 30 days ending today: ord-s1 and
	// ord-s2 are in, ord-s4 is too old, ord-s3 is cancelled.
	report, err := svc.GetSalesReport(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("GetSalesReport failed: %v", err)
	}
	if report.FromDate == "" || report.ToDate == "" {
		t.Errorf("Expected defaulted window dates, got from=%q to=%q", report.FromDate, report.ToDate)
	}

	if len(report.Daily) != 2 {
		t.Fatalf("Expected 2 daily points, got %+v", report.Daily)
	}
	sum := decimal.Zero
	for _, p := range report.Daily {
		sum = sum.Add(p.Revenue)
		if p.Revenue.Equal(decimal.NewFromInt(950)) {
			t.Errorf("Cancelled order leaked into daily series: %+v", p)
		}
	}
	if !sum.Equal(decimal.NewFromInt(480 + 300)) {
		t.Errorf("Expected windowed revenue 780, got %s", sum)
	}

	// Beverages: 4+12 units at 25 = 400. Dairy: 4 units at 95 = 380.
	if len(report.ByCategory) != 2 {
		t.Fatalf("Expected 2 categories, got %+v", report.ByCategory)
	}
	if report.ByCategory[0].Category != "Beverages" || report.ByCategory[0].Units != 16 {
		t.Errorf("Expected Beverages first with 16 units, got %+v", report.ByCategory[0])
	}
	if !report.ByCategory[1].Revenue.Equal(decimal.NewFromInt(380)) {
		t.Errorf("Expected Dairy revenue 380, got %+v", report.ByCategory[1])
	}

	if len(report.TopProducts) != 2 {
		t.Fatalf("Expected 2 top products, got %+v", report.TopProducts)
	}
	if report.TopProducts[0].ProductID != "p3" || report.TopProducts[0].Units != 16 {
		t.Errorf("Expected p3 on top with 16 units, got %+v", report.TopProducts[0])
	}
}

func TestAnalyticsService_TopNBounds(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := core.NewAnalyticsService(pool, core.SystemClock())

	// Six distinct products sold so the default cutoff is observable.
	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, category, cost_price, selling_price, quantity, min_stock_level) VALUES
		('x1', 'Ruchi Chanachur 150g',   'Snacks', 30, 40, 50, 5),
		('x2', 'Bombay Sweets Chips',    'Snacks', 15, 20, 50, 5),
		('x3', 'Pran Toast Biscuit',     'Snacks', 40, 55, 50, 5),
		('x4', 'Danish Marie Biscuit',   'Snacks', 35, 45, 50, 5),
		('x5', 'Alooz Potato Crackers',  'Snacks', 20, 30, 50, 5),
		('x6', 'Kurkure Masala Munch',   'Snacks', 22, 32, 50, 5);

		INSERT INTO orders (id, customer_id, customer_name, total_amount, status, payment_status, created_at) VALUES
		('ord-t1', 'c1', 'Walk-in Customer', 1009, 'Delivered', 'Paid', now() - interval '1 day');

		INSERT INTO order_items (order_id, line_number, product_id, name, quantity, price) VALUES
		('ord-t1', 1, 'x1', 'Ruchi Chanachur 150g',  7, 40),
		('ord-t1', 2, 'x2', 'Bombay Sweets Chips',   6, 20),
		('ord-t1', 3, 'x3', 'Pran Toast Biscuit',    5, 55),
		('ord-t1', 4, 'x4', 'Danish Marie Biscuit',  4, 45),
		('ord-t1', 5, 'x5', 'Alooz Potato Crackers', 3, 30),
		('ord-t1', 6, 'x6', 'Kurkure Masala Munch',  2, 32);
	`)
	if err != nil {
		t.Fatalf("Failed to seed top product orders: %v", err)
	}

	report, err := svc.GetSalesReport(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("GetSalesReport failed: %v", err)
	}
	if len(report.TopProducts) != 5 {
		t.Errorf("Expected zero topN to fall back to 5 products, got %d", len(report.TopProducts))
	}
	if report.TopProducts[0].ProductID != "x1" {
		t.Errorf("Expected x1 (7 units) on top, got %+v", report.TopProducts[0])
	}

	report, err = svc.GetSalesReport(ctx, "", "", 1)
	if err != nil {
		t.Fatalf("GetSalesReport failed: %v", err)
	}
	if len(report.TopProducts) != 1 {
		t.Errorf("Expected 1 top product, got %d", len(report.TopProducts))
	}
}
