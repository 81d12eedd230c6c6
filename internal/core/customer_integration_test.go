package core_test

import (
	"testing"

	"smartshodhai/internal/core"

	"github.com/shopspring/decimal"
)

func TestCustomerService_GetDefaultCustomer(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := core.NewCustomerService(pool)

	// The walk-in customer was seeded as the oldest record.
	def, err := svc.GetDefaultCustomer(ctx)
	if err != nil {
		t.Fatalf("GetDefaultCustomer failed: %v", err)
	}
	if def.ID != "c1" {
		t.Errorf("Expected c1 as default customer, got %s", def.ID)
	}
}

func TestCustomerService_DueCycle(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := core.NewCustomerService(pool)

	// Seeded due is 450. Add 150, settle 200, leaving 400.
	c, err := svc.AddDue(ctx, "c2", decimal.NewFromInt(150))
	if err != nil {
		t.Fatalf("AddDue failed: %v", err)
	}
	if !c.CurrentDue.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected due 600 after add, got %s", c.CurrentDue)
	}

	c, err = svc.SettleDue(ctx, "c2", decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("SettleDue failed: %v", err)
	}
	if !c.CurrentDue.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected due 400 after settle, got %s", c.CurrentDue)
	}
}

func TestCustomerService_SettleClampsAtZero(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := core.NewCustomerService(pool)

	c, err := svc.SettleDue(ctx, "c2", decimal.NewFromInt(10000))
	if err != nil {
		t.Fatalf("SettleDue failed: %v", err)
	}
	if !c.CurrentDue.IsZero() {
		t.Errorf("Expected due clamped to 0, got %s", c.CurrentDue)
	}
}

func TestCustomerService_RejectsBadDeltas(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := core.NewCustomerService(pool)

	if _, err := svc.AddDue(ctx, "c2", decimal.Zero); err == nil {
		t.Error("Expected error for zero due delta, got nil")
	}
	if _, err := svc.AddDue(ctx, "c2", decimal.NewFromInt(-50)); err == nil {
		t.Error("Expected error for negative due delta, got nil")
	}
	if _, err := svc.SettleDue(ctx, "c2", decimal.NewFromInt(-50)); err == nil {
		t.Error("Expected error for negative settlement, got nil")
	}
	if _, err := svc.AddDue(ctx, "missing", decimal.NewFromInt(50)); err == nil {
		t.Error("Expected error for missing customer, got nil")
	}
}

func TestCustomerService_OrderHistory(t *testing.T) {
	pool, ctx := setupTestDB(t)
	customers := core.NewCustomerService(pool)
	orders := core.NewOrderService(pool)

	order := testOrder("ord-hist")
	order.CustomerID = "c2"
	order.CustomerName = "Karim Uddin"
	if _, err := orders.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	c, err := customers.GetCustomer(ctx, "c2")
	if err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
	if len(c.OrderHistory) != 1 || c.OrderHistory[0] != "ord-hist" {
		t.Errorf("Expected order history [ord-hist], got %v", c.OrderHistory)
	}
}
