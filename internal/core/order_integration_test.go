package core_test

import (
	"testing"
	"time"

	"smartshodhai/internal/core"

	"github.com/shopspring/decimal"
)

func testOrder(id string) core.Order {
	return core.Order{
		ID:           id,
		CustomerID:   "c1",
		CustomerName: "Walk-in Customer",
		Items: []core.OrderItem{
			{ProductID: "p1", Name: "Fresh Milk 1L", Quantity: 2, Price: decimal.NewFromInt(95)},
			{ProductID: "p3", Name: "PRAN Frooto 250ml", Quantity: 4, Price: decimal.NewFromInt(25)},
		},
		TotalAmount:   decimal.NewFromInt(290),
		Status:        core.OrderProcessing,
		PaymentStatus: core.PaymentPaid,
		CreatedAt:     time.Now(),
	}
}

func TestOrderService_CreateAndGet(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := core.NewOrderService(pool)

	created, err := svc.CreateOrder(ctx, testOrder("ord-1"))
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if created.ID != "ord-1" {
		t.Errorf("Expected ord-1, got %s", created.ID)
	}

	got, err := svc.GetOrder(ctx, "ord-1")
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(got.Items))
	}
	// Line order must survive the round trip.
	if got.Items[0].ProductID != "p1" || got.Items[1].ProductID != "p3" {
		t.Errorf("Items out of order: %+v", got.Items)
	}
	if !got.TotalAmount.Equal(decimal.NewFromInt(290)) {
		t.Errorf("Expected total 290, got %s", got.TotalAmount)
	}
}

func TestOrderService_RejectsMismatchedTotal(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := core.NewOrderService(pool)

	order := testOrder("ord-bad")
	order.TotalAmount = decimal.NewFromInt(999)

	if _, err := svc.CreateOrder(ctx, order); err == nil {
		t.Error("Expected error for total not matching line subtotals, got nil")
	}
}

func TestOrderService_RejectsEmptyOrder(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := core.NewOrderService(pool)

	order := testOrder("ord-empty")
	order.Items = nil
	order.TotalAmount = decimal.Zero

	if _, err := svc.CreateOrder(ctx, order); err == nil {
		t.Error("Expected error for order without items, got nil")
	}
}

func TestOrderService_StatusTransitions(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := core.NewOrderService(pool)

	if _, err := svc.CreateOrder(ctx, testOrder("ord-2")); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, "ord-2", core.OrderDelivered)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != core.OrderDelivered {
		t.Errorf("Expected Delivered, got %s", updated.Status)
	}

	if _, err := svc.UpdateStatus(ctx, "ord-2", core.OrderStatus("Shipped")); err == nil {
		t.Error("Expected error for unknown status, got nil")
	}
	if _, err := svc.UpdateStatus(ctx, "missing", core.OrderReady); err == nil {
		t.Error("Expected error for missing order, got nil")
	}

	updated, err = svc.UpdatePaymentStatus(ctx, "ord-2", core.PaymentPartial)
	if err != nil {
		t.Fatalf("UpdatePaymentStatus failed: %v", err)
	}
	if updated.PaymentStatus != core.PaymentPartial {
		t.Errorf("Expected Partial, got %s", updated.PaymentStatus)
	}
}
