package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService manages the product catalog. It is the single writer for
// product rows outside of scan reconciliation.
type CatalogService interface {
	GetProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	// CreateProduct inserts a manually entered product. A blank ID is
	// replaced with a generated one.
	CreateProduct(ctx context.Context, p Product) (*Product, error)
	UpdateProduct(ctx context.Context, p Product) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	// GetLowStock returns products at or below their minimum stock level.
	GetLowStock(ctx context.Context) ([]Product, error)
}

type catalogService struct {
	pool *pgxpool.Pool
	ids  IDGenerator
}

func NewCatalogService(pool *pgxpool.Pool, ids IDGenerator) CatalogService {
	return &catalogService{pool: pool, ids: ids}
}

const productColumns = "id, name, category, cost_price, selling_price, quantity, min_stock_level, created_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.CostPrice, &p.SellingPrice,
		&p.Quantity, &p.MinStockLevel, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *catalogService) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return collectProducts(rows)
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}
	return p, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, p Product) (*Product, error) {
	if p.Name == "" {
		return nil, errors.New("product name is required")
	}
	if p.Quantity < 0 || p.MinStockLevel < 0 {
		return nil, errors.New("quantity and min stock level cannot be negative")
	}
	if p.CostPrice.IsNegative() || p.SellingPrice.IsNegative() {
		return nil, errors.New("prices cannot be negative")
	}
	if !IsKnownCategory(p.Category) {
		p.Category = DefaultCategory()
	}
	if p.ID == "" {
		p.ID = s.ids.ProductID()
	}

	created, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, category, cost_price, selling_price, quantity, min_stock_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns+`
	`, p.ID, p.Name, p.Category, p.CostPrice, p.SellingPrice, p.Quantity, p.MinStockLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, p Product) (*Product, error) {
	if p.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative, got %d", p.Quantity)
	}
	if !IsKnownCategory(p.Category) {
		p.Category = DefaultCategory()
	}

	updated, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, category = $3, cost_price = $4, selling_price = $5,
		    quantity = $6, min_stock_level = $7
		WHERE id = $1
		RETURNING `+productColumns+`
	`, p.ID, p.Name, p.Category, p.CostPrice, p.SellingPrice, p.Quantity, p.MinStockLevel))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s not found", p.ID)
		}
		return nil, fmt.Errorf("failed to update product %s: %w", p.ID, err)
	}
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found", id)
	}
	return nil
}

func (s *catalogService) GetLowStock(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE quantity <= min_stock_level
		ORDER BY quantity, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	return collectProducts(rows)
}
