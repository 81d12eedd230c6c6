package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IDGenerator issues unique identifiers for records created during
// reconciliation. Injectable so tests can assert deterministic IDs; the
// production implementation is UUID-backed and collision-safe under rapid
// successive scans.
type IDGenerator interface {
	ProductID() string
	OrderID() string
}

// Clock supplies creation timestamps. Injectable for the same reason.
type Clock interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) ProductID() string { return "p-" + uuid.NewString() }
func (uuidGenerator) OrderID() string   { return "ord-" + uuid.NewString() }

// NewIDGenerator returns the UUID-backed production IDGenerator.
func NewIDGenerator() IDGenerator { return uuidGenerator{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock Clock.
func SystemClock() Clock { return systemClock{} }

// ReconcileOutcome is everything a confirmed scan changes. The caller owns
// persistence and must apply the whole outcome atomically: replace the
// catalog, append the order, add the due delta.
type ReconcileOutcome struct {
	Catalog  []Product       // full replacement catalog
	Order    *Order          // at most one new order; nil unless the scan was a sale
	DueDelta decimal.Decimal // amount to add to the customer's baki, never negative
}

// Reconciler merges a confirmed scan result into the product catalog and, for
// sales, synthesises the corresponding order. It is pure: no I/O, no hidden
// state, and it never mutates its inputs. The only non-determinism is the
// injected ID and timestamp generation.
type Reconciler struct {
	ids   IDGenerator
	clock Clock
}

// NewReconciler builds a Reconciler with the given ID and clock sources.
func NewReconciler(ids IDGenerator, clock Clock) *Reconciler {
	return &Reconciler{ids: ids, clock: clock}
}

// Reconcile applies scan to a snapshot of catalog.
//
// Items are processed in list order; repeated names are independent lines.
// Matched items move stock according to the intent: Incoming adds, Outgoing
// subtracts floored at zero (over-sales are clamped, not rejected — the scan
// is a user-reviewed draft, and upstream detection is probabilistic), Audit
// leaves quantities untouched. Unmatched items each create exactly one new
// product with lenient defaults: missing prices become zero, cost price is
// 80% of the suggested selling price, unknown categories fall back to the
// default.
//
// One order is created only for an Outgoing scan that produced at least one
// line; its total is the exact sum of line subtotals. defaultCustomer is the
// order's customer and must be set for Outgoing scans. A written due amount
// is returned as DueDelta for the caller to apply; the customer record itself
// is never touched here.
func (r *Reconciler) Reconcile(catalog []Product, scan ScanResult, defaultCustomer *Customer) ReconcileOutcome {
	updated := make([]Product, len(catalog))
	copy(updated, catalog)

	byID := make(map[string]int, len(updated))
	for i, p := range updated {
		byID[p.ID] = i
	}

	var lines []OrderItem

	for _, item := range scan.Items {
		if idx, ok := matchIndex(byID, item); ok {
			switch scan.Intent {
			case IntentIncoming:
				updated[idx].Quantity += item.Quantity
			case IntentOutgoing:
				updated[idx].Quantity -= item.Quantity
				if updated[idx].Quantity < 0 {
					updated[idx].Quantity = 0
				}
			case IntentAudit:
				// presence confirmed, stock untouched
			}
			lines = append(lines, OrderItem{
				ProductID: updated[idx].ID,
				Name:      updated[idx].Name,
				Quantity:  item.Quantity,
				Price:     updated[idx].SellingPrice,
			})
			continue
		}

		product := r.newProductFromItem(item)
		updated = append(updated, product)
		byID[product.ID] = len(updated) - 1
		lines = append(lines, OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Price:     product.SellingPrice,
		})
	}

	outcome := ReconcileOutcome{Catalog: updated, DueDelta: decimal.Zero}

	if scan.Intent != IntentOutgoing || len(lines) == 0 {
		return outcome
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}

	order := &Order{
		ID:            r.ids.OrderID(),
		Items:         lines,
		TotalAmount:   total,
		Status:        OrderProcessing,
		PaymentStatus: PaymentPaid,
		CreatedAt:     r.clock.Now(),
	}
	if defaultCustomer != nil {
		order.CustomerID = defaultCustomer.ID
		order.CustomerName = defaultCustomer.Name
	}
	if scan.DueAmount > 0 {
		order.PaymentStatus = PaymentDue
		outcome.DueDelta = decimal.NewFromFloat(scan.DueAmount)
	}
	outcome.Order = order

	return outcome
}

// matchIndex resolves an item to a catalog index strictly by the product ID
// the upstream matcher attached. Name matching is not this component's job.
func matchIndex(byID map[string]int, item DetectedItem) (int, bool) {
	if item.ExistingProductID == "" {
		return 0, false
	}
	idx, ok := byID[item.ExistingProductID]
	return idx, ok
}

// newProductFromItem synthesises a catalog entry for an unmatched detection.
func (r *Reconciler) newProductFromItem(item DetectedItem) Product {
	category := item.Category
	if !IsKnownCategory(category) {
		category = DefaultCategory()
	}

	selling := decimal.Zero
	cost := decimal.Zero
	if item.SuggestedSellingPrice > 0 {
		selling = decimal.NewFromFloat(item.SuggestedSellingPrice)
		cost = selling.Mul(decimal.NewFromFloat(0.8))
	}

	return Product{
		ID:            r.ids.ProductID(),
		Name:          item.Name,
		Category:      category,
		CostPrice:     cost,
		SellingPrice:  selling,
		Quantity:      item.Quantity,
		MinStockLevel: DefaultMinStockLevel,
		CreatedAt:     r.clock.Now(),
	}
}
