package core_test

import (
	"fmt"
	"testing"
	"time"

	"smartshodhai/internal/core"

	"github.com/shopspring/decimal"
)

// seqIDs hands out predictable identifiers so tests can assert exact output.
type seqIDs struct {
	products int
	orders   int
}

func (g *seqIDs) ProductID() string {
	g.products++
	return fmt.Sprintf("p-new-%d", g.products)
}

func (g *seqIDs) OrderID() string {
	g.orders++
	return fmt.Sprintf("ord-%d", g.orders)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestReconciler() *core.Reconciler {
	return core.NewReconciler(&seqIDs{}, fixedClock{t: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)})
}

func testCatalog() []core.Product {
	return []core.Product{
		{
			ID:            "p1",
			Name:          "Fresh Milk 1L",
			Category:      "Dairy",
			CostPrice:     decimal.NewFromInt(85),
			SellingPrice:  decimal.NewFromInt(95),
			Quantity:      10,
			MinStockLevel: 10,
		},
		{
			ID:            "p2",
			Name:          "Teer Soyabean Oil 5L",
			Category:      "Cooking Oil",
			CostPrice:     decimal.NewFromInt(780),
			SellingPrice:  decimal.NewFromInt(820),
			Quantity:      5,
			MinStockLevel: 10,
		},
	}
}

func findProduct(t *testing.T, catalog []core.Product, id string) core.Product {
	t.Helper()
	for _, p := range catalog {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("product %s not found in catalog", id)
	return core.Product{}
}

func TestReconcile_IncomingAddsStock(t *testing.T) {
	r := newTestReconciler()
	scan := core.ScanResult{
		Intent: core.IntentIncoming,
		Items: []core.DetectedItem{
			{Name: "Fresh Milk 1L", Quantity: 24, IsExisting: true, ExistingProductID: "p1"},
		},
	}

	out := r.Reconcile(testCatalog(), scan, nil)

	if got := findProduct(t, out.Catalog, "p1").Quantity; got != 34 {
		t.Errorf("quantity = %d, want 34", got)
	}
	if out.Order != nil {
		t.Errorf("incoming scan created an order: %+v", out.Order)
	}
	if !out.DueDelta.IsZero() {
		t.Errorf("due delta = %s, want 0", out.DueDelta)
	}
}

func TestReconcile_OutgoingClampsAtZero(t *testing.T) {
	r := newTestReconciler()
	customer := &core.Customer{ID: "c1", Name: "Rahim Store"}
	scan := core.ScanResult{
		Intent: core.IntentOutgoing,
		Items: []core.DetectedItem{
			// p2 has 5 on hand; selling 8 must floor at zero, not go negative.
			{Name: "Teer Soyabean Oil 5L", Quantity: 8, IsExisting: true, ExistingProductID: "p2"},
		},
	}

	out := r.Reconcile(testCatalog(), scan, customer)

	if got := findProduct(t, out.Catalog, "p2").Quantity; got != 0 {
		t.Errorf("quantity = %d, want 0 (clamped)", got)
	}
	if out.Order == nil {
		t.Fatal("outgoing scan did not create an order")
	}
	// The order line still records the full detected quantity; the clamp is a
	// stock policy, not a sales correction.
	if out.Order.Items[0].Quantity != 8 {
		t.Errorf("order line quantity = %d, want 8", out.Order.Items[0].Quantity)
	}
}

func TestReconcile_UnmatchedItemCreatesProduct(t *testing.T) {
	r := newTestReconciler()
	scan := core.ScanResult{
		Intent: core.IntentIncoming,
		Items: []core.DetectedItem{
			{Name: "Ruchi Chanachur 150g", Quantity: 12, Category: "Snacks", SuggestedSellingPrice: 50},
		},
	}

	catalog := testCatalog()
	out := r.Reconcile(catalog, scan, nil)

	if len(out.Catalog) != len(catalog)+1 {
		t.Fatalf("catalog size = %d, want %d", len(out.Catalog), len(catalog)+1)
	}

	created := out.Catalog[len(out.Catalog)-1]
	if created.ID != "p-new-1" {
		t.Errorf("new product ID = %q, want %q", created.ID, "p-new-1")
	}
	for _, p := range catalog {
		if p.ID == created.ID {
			t.Errorf("new product ID %q collides with existing catalog", created.ID)
		}
	}
	if created.Quantity != 12 {
		t.Errorf("new product quantity = %d, want 12", created.Quantity)
	}
	if created.MinStockLevel != core.DefaultMinStockLevel {
		t.Errorf("min stock level = %d, want %d", created.MinStockLevel, core.DefaultMinStockLevel)
	}
	if !created.SellingPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("selling price = %s, want 50", created.SellingPrice)
	}
	if !created.CostPrice.Equal(decimal.NewFromInt(40)) {
		t.Errorf("cost price = %s, want 40 (80%% of suggested)", created.CostPrice)
	}
}

func TestReconcile_UnmatchedItemDefaults(t *testing.T) {
	tests := []struct {
		name         string
		item         core.DetectedItem
		wantCategory string
		wantSelling  decimal.Decimal
		wantCost     decimal.Decimal
	}{
		{
			name:         "unknown category falls back to default",
			item:         core.DetectedItem{Name: "Mystery Item", Quantity: 1, Category: "Electronics", SuggestedSellingPrice: 100},
			wantCategory: core.DefaultCategory(),
			wantSelling:  decimal.NewFromInt(100),
			wantCost:     decimal.NewFromInt(80),
		},
		{
			name:         "missing price becomes zero",
			item:         core.DetectedItem{Name: "Unpriced Item", Quantity: 2, Category: "Snacks"},
			wantCategory: "Snacks",
			wantSelling:  decimal.Zero,
			wantCost:     decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReconciler()
			out := r.Reconcile(nil, core.ScanResult{Intent: core.IntentAudit, Items: []core.DetectedItem{tt.item}}, nil)

			if len(out.Catalog) != 1 {
				t.Fatalf("catalog size = %d, want 1", len(out.Catalog))
			}
			p := out.Catalog[0]
			if p.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", p.Category, tt.wantCategory)
			}
			if !p.SellingPrice.Equal(tt.wantSelling) {
				t.Errorf("selling price = %s, want %s", p.SellingPrice, tt.wantSelling)
			}
			if !p.CostPrice.Equal(tt.wantCost) {
				t.Errorf("cost price = %s, want %s", p.CostPrice, tt.wantCost)
			}
		})
	}
}

func TestReconcile_AuditNeverMovesStockOrCreatesOrders(t *testing.T) {
	r := newTestReconciler()
	scan := core.ScanResult{
		Intent: core.IntentAudit,
		Items: []core.DetectedItem{
			{Name: "Fresh Milk 1L", Quantity: 99, IsExisting: true, ExistingProductID: "p1"},
		},
	}

	catalog := testCatalog()
	first := r.Reconcile(catalog, scan, nil)
	if first.Order != nil {
		t.Error("audit scan created an order")
	}
	if got := findProduct(t, first.Catalog, "p1").Quantity; got != 10 {
		t.Errorf("quantity after audit = %d, want 10", got)
	}

	// Applying the same audit again must leave state identical.
	second := r.Reconcile(first.Catalog, scan, nil)
	if len(second.Catalog) != len(first.Catalog) {
		t.Fatalf("catalog size changed on repeat audit: %d vs %d", len(second.Catalog), len(first.Catalog))
	}
	for i := range first.Catalog {
		if second.Catalog[i].Quantity != first.Catalog[i].Quantity {
			t.Errorf("product %s quantity changed on repeat audit", first.Catalog[i].ID)
		}
	}
}

func TestReconcile_OutgoingOrderTotals(t *testing.T) {
	r := newTestReconciler()
	customer := &core.Customer{ID: "c1", Name: "Rahim Store"}
	scan := core.ScanResult{
		Intent: core.IntentOutgoing,
		Items: []core.DetectedItem{
			{Name: "Fresh Milk 1L", Quantity: 2, IsExisting: true, ExistingProductID: "p1"},
			{Name: "Teer Soyabean Oil 5L", Quantity: 1, IsExisting: true, ExistingProductID: "p2"},
		},
	}

	out := r.Reconcile(testCatalog(), scan, customer)
	if out.Order == nil {
		t.Fatal("no order created")
	}

	// 2×95 + 1×820 = 1010
	want := decimal.NewFromInt(1010)
	if !out.Order.TotalAmount.Equal(want) {
		t.Errorf("total = %s, want %s", out.Order.TotalAmount, want)
	}

	sum := decimal.Zero
	for _, line := range out.Order.Items {
		sum = sum.Add(line.Subtotal())
	}
	if !out.Order.TotalAmount.Equal(sum) {
		t.Errorf("total %s does not equal sum of line subtotals %s", out.Order.TotalAmount, sum)
	}

	if out.Order.CustomerID != "c1" || out.Order.CustomerName != "Rahim Store" {
		t.Errorf("order customer = %s/%s, want c1/Rahim Store", out.Order.CustomerID, out.Order.CustomerName)
	}
	if out.Order.Status != core.OrderProcessing {
		t.Errorf("status = %s, want %s", out.Order.Status, core.OrderProcessing)
	}
}

func TestReconcile_DuePropagation(t *testing.T) {
	customer := &core.Customer{ID: "c1", Name: "Rahim Store"}
	items := []core.DetectedItem{
		{Name: "Fresh Milk 1L", Quantity: 3, IsExisting: true, ExistingProductID: "p1"},
	}

	t.Run("due amount present", func(t *testing.T) {
		r := newTestReconciler()
		out := r.Reconcile(testCatalog(), core.ScanResult{Intent: core.IntentOutgoing, Items: items, DueAmount: 150}, customer)

		if !out.DueDelta.Equal(decimal.NewFromInt(150)) {
			t.Errorf("due delta = %s, want 150", out.DueDelta)
		}
		if out.Order.PaymentStatus != core.PaymentDue {
			t.Errorf("payment status = %s, want %s", out.Order.PaymentStatus, core.PaymentDue)
		}
	})

	t.Run("due amount absent", func(t *testing.T) {
		r := newTestReconciler()
		out := r.Reconcile(testCatalog(), core.ScanResult{Intent: core.IntentOutgoing, Items: items}, customer)

		if !out.DueDelta.IsZero() {
			t.Errorf("due delta = %s, want 0", out.DueDelta)
		}
		if out.Order.PaymentStatus != core.PaymentPaid {
			t.Errorf("payment status = %s, want %s", out.Order.PaymentStatus, core.PaymentPaid)
		}
	})

	t.Run("due amount on incoming scan is ignored", func(t *testing.T) {
		r := newTestReconciler()
		out := r.Reconcile(testCatalog(), core.ScanResult{Intent: core.IntentIncoming, Items: items, DueAmount: 500}, customer)

		if out.Order != nil {
			t.Error("incoming scan created an order")
		}
		if !out.DueDelta.IsZero() {
			t.Errorf("due delta = %s, want 0 when no order was created", out.DueDelta)
		}
	})
}

func TestReconcile_EmptyScanIsNoOp(t *testing.T) {
	r := newTestReconciler()
	catalog := testCatalog()

	out := r.Reconcile(catalog, core.ScanResult{Intent: core.IntentOutgoing}, &core.Customer{ID: "c1"})

	if len(out.Catalog) != len(catalog) {
		t.Errorf("catalog size changed: %d vs %d", len(out.Catalog), len(catalog))
	}
	if out.Order != nil {
		t.Error("empty scan created an order")
	}
	if !out.DueDelta.IsZero() {
		t.Errorf("due delta = %s, want 0", out.DueDelta)
	}
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	r := newTestReconciler()
	catalog := testCatalog()
	scan := core.ScanResult{
		Intent: core.IntentOutgoing,
		Items: []core.DetectedItem{
			{Name: "Fresh Milk 1L", Quantity: 4, IsExisting: true, ExistingProductID: "p1"},
			{Name: "New Thing", Quantity: 1},
		},
	}

	_ = r.Reconcile(catalog, scan, &core.Customer{ID: "c1"})

	if catalog[0].Quantity != 10 {
		t.Errorf("input catalog mutated: quantity = %d, want 10", catalog[0].Quantity)
	}
	if len(catalog) != 2 {
		t.Errorf("input catalog grew to %d entries", len(catalog))
	}
}

func TestReconcile_RepeatedNamesAreIndependentLines(t *testing.T) {
	r := newTestReconciler()
	scan := core.ScanResult{
		Intent: core.IntentOutgoing,
		Items: []core.DetectedItem{
			{Name: "Fresh Milk 1L", Quantity: 2, IsExisting: true, ExistingProductID: "p1"},
			{Name: "Fresh Milk 1L", Quantity: 3, IsExisting: true, ExistingProductID: "p1"},
		},
	}

	out := r.Reconcile(testCatalog(), scan, &core.Customer{ID: "c1"})

	if got := findProduct(t, out.Catalog, "p1").Quantity; got != 5 {
		t.Errorf("quantity = %d, want 5 (10 - 2 - 3)", got)
	}
	if out.Order == nil || len(out.Order.Items) != 2 {
		t.Fatalf("want 2 independent order lines, got %+v", out.Order)
	}
}

// The worked end-to-end example: selling 3 Milk from a stock of 10 at ৳95.
func TestReconcile_EndToEndSale(t *testing.T) {
	r := newTestReconciler()
	catalog := []core.Product{{
		ID:           "p1",
		Name:         "Milk",
		Quantity:     10,
		SellingPrice: decimal.NewFromInt(95),
	}}
	scan := core.ScanResult{
		Intent: core.IntentOutgoing,
		Items: []core.DetectedItem{
			{Name: "Milk", Quantity: 3, IsExisting: true, ExistingProductID: "p1"},
		},
	}

	out := r.Reconcile(catalog, scan, &core.Customer{ID: "c1", Name: "Rahim Store"})

	if got := findProduct(t, out.Catalog, "p1").Quantity; got != 7 {
		t.Errorf("quantity = %d, want 7", got)
	}
	if out.Order == nil {
		t.Fatal("no order created")
	}
	if len(out.Order.Items) != 1 {
		t.Fatalf("order lines = %d, want 1", len(out.Order.Items))
	}
	line := out.Order.Items[0]
	if line.ProductID != "p1" || line.Quantity != 3 || !line.Price.Equal(decimal.NewFromInt(95)) {
		t.Errorf("line = %+v, want {p1 3 95}", line)
	}
	if !out.Order.TotalAmount.Equal(decimal.NewFromInt(285)) {
		t.Errorf("total = %s, want 285", out.Order.TotalAmount)
	}
	if out.Order.PaymentStatus != core.PaymentPaid {
		t.Errorf("payment status = %s, want Paid", out.Order.PaymentStatus)
	}
}
