package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ScanService turns a user-confirmed scan result into persisted state. It
// owns the atomicity contract the pure Reconciler leaves to its caller: the
// catalog replacement, the optional order append, and the due delta commit
// together or not at all.
type ScanService interface {
	// ApplyScan validates and reconciles scan against the live catalog and
	// persists the outcome in a single transaction.
	ApplyScan(ctx context.Context, scan ScanResult) (*ReconcileOutcome, error)
}

type scanService struct {
	pool       *pgxpool.Pool
	reconciler *Reconciler
	catalog    CatalogService
	orders     OrderService
	customers  CustomerService
}

func NewScanService(pool *pgxpool.Pool, reconciler *Reconciler,
	catalog CatalogService, orders OrderService, customers CustomerService) ScanService {
	return &scanService{
		pool:       pool,
		reconciler: reconciler,
		catalog:    catalog,
		orders:     orders,
		customers:  customers,
	}
}

func (s *scanService) ApplyScan(ctx context.Context, scan ScanResult) (*ReconcileOutcome, error) {
	scan.Normalize()
	if err := scan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan result: %w", err)
	}

	products, err := s.catalog.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Sales need a customer to book against, and the match resolution must
	// be re-run against the current catalog in case it changed since the
	// scan was taken.
	var defaultCustomer *Customer
	if scan.Intent == IntentOutgoing {
		defaultCustomer, err = s.customers.GetDefaultCustomer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load default customer: %w", err)
		}
	}
	scan.Items = ResolveMatches(products, scan.Items)

	outcome := s.reconciler.Reconcile(products, scan, defaultCustomer)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range outcome.Catalog {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (id, name, category, cost_price, selling_price, quantity, min_stock_level)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE
			  SET quantity = EXCLUDED.quantity
		`, p.ID, p.Name, p.Category, p.CostPrice, p.SellingPrice, p.Quantity, p.MinStockLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
		}
	}

	if outcome.Order != nil {
		if err := s.orders.InsertOrderTx(ctx, tx, outcome.Order); err != nil {
			return nil, fmt.Errorf("failed to append order: %w", err)
		}
	}

	if outcome.DueDelta.IsPositive() {
		if outcome.Order == nil || outcome.Order.CustomerID == "" {
			return nil, fmt.Errorf("due delta %s has no customer to apply to", outcome.DueDelta)
		}
		if err := s.customers.AddDueTx(ctx, tx, outcome.Order.CustomerID, outcome.DueDelta); err != nil {
			return nil, fmt.Errorf("failed to apply due delta: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit scan: %w", err)
	}
	return &outcome, nil
}
