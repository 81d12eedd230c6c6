package app

import (
	"context"
	"fmt"
	"strings"

	"smartshodhai/internal/ai"
	"smartshodhai/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type appService struct {
	pool     *pgxpool.Pool
	services Services
	validate *validator.Validate
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(pool *pgxpool.Pool, services Services) ApplicationService {
	return &appService{
		pool:     pool,
		services: services,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.services.Catalog.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, id string) (*core.Product, error) {
	return s.services.Catalog.GetProduct(ctx, id)
}

func (s *appService) CreateProduct(ctx context.Context, req ProductRequest) (*core.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid product request: %w", err)
	}
	return s.services.Catalog.CreateProduct(ctx, productFromRequest("", req))
}

func (s *appService) UpdateProduct(ctx context.Context, id string, req ProductRequest) (*core.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid product request: %w", err)
	}
	return s.services.Catalog.UpdateProduct(ctx, productFromRequest(id, req))
}

func (s *appService) DeleteProduct(ctx context.Context, id string) error {
	return s.services.Catalog.DeleteProduct(ctx, id)
}

func productFromRequest(id string, req ProductRequest) core.Product {
	return core.Product{
		ID:            id,
		Name:          req.Name,
		Category:      req.Category,
		CostPrice:     decimal.NewFromFloat(req.CostPrice),
		SellingPrice:  decimal.NewFromFloat(req.SellingPrice),
		Quantity:      req.Quantity,
		MinStockLevel: req.MinStockLevel,
	}
}

// ── Orders ────────────────────────────────────────────────────────────────────

func (s *appService) ListOrders(ctx context.Context) (*OrderListResult, error) {
	orders, err := s.services.Orders.GetOrders(ctx)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

func (s *appService) GetOrder(ctx context.Context, id string) (*core.Order, error) {
	return s.services.Orders.GetOrder(ctx, id)
}

// CreateOrder records a manually entered order. Lines are priced from the
// catalog at order time, and sold quantities come off stock in the same
// transaction, floored at zero like scan reconciliation.
func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*core.Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid order request: %w", err)
	}

	customer, err := s.services.Customers.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	order := core.Order{
		ID:            s.services.IDs.OrderID(),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		Status:        core.OrderProcessing,
		PaymentStatus: core.PaymentPaid,
		CreatedAt:     s.services.Clock.Now(),
	}
	if !req.Paid {
		order.PaymentStatus = core.PaymentDue
	}

	total := decimal.Zero
	for _, line := range req.Items {
		product, err := s.services.Catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		item := core.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.SellingPrice,
		}
		order.Items = append(order.Items, item)
		total = total.Add(item.Subtotal())
	}
	order.TotalAmount = total

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.services.Orders.InsertOrderTx(ctx, tx, &order); err != nil {
		return nil, err
	}
	for _, item := range order.Items {
		_, err := tx.Exec(ctx,
			"UPDATE products SET quantity = GREATEST(quantity - $2, 0) WHERE id = $1",
			item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to deduct stock for %s: %w", item.ProductID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return &order, nil
}

func (s *appService) UpdateOrderStatus(ctx context.Context, id string, req OrderStatusRequest) (*core.Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid status request: %w", err)
	}
	if (req.Status == "") == (req.PaymentStatus == "") {
		return nil, fmt.Errorf("exactly one of status or paymentStatus must be set")
	}

	if req.Status != "" {
		return s.services.Orders.UpdateStatus(ctx, id, core.OrderStatus(req.Status))
	}
	return s.services.Orders.UpdatePaymentStatus(ctx, id, core.PaymentStatus(req.PaymentStatus))
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.services.Customers.GetCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) GetCustomer(ctx context.Context, id string) (*core.Customer, error) {
	return s.services.Customers.GetCustomer(ctx, id)
}

func (s *appService) CreateCustomer(ctx context.Context, req CustomerRequest) (*core.Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid customer request: %w", err)
	}
	return s.services.Customers.CreateCustomer(ctx, core.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
}

func (s *appService) SettleCustomerDue(ctx context.Context, id string, req DueRequest) (*core.Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid due request: %w", err)
	}
	return s.services.Customers.SettleDue(ctx, id, decimal.NewFromFloat(req.Amount))
}

// ── Scanning ──────────────────────────────────────────────────────────────────

func (s *appService) AnalyzeScan(ctx context.Context, mode core.ScanMode, attachment Attachment) (*core.ScanResult, error) {
	var result *core.ScanResult

	switch mode {
	case core.ScanModeProduct:
		item, err := s.services.Scanner.AnalyzeProductLabel(ctx, attachment.Data, attachment.MimeType)
		if err != nil {
			return nil, err
		}
		result = &core.ScanResult{
			Mode:    core.ScanModeProduct,
			Intent:  core.IntentIncoming,
			Items:   []core.DetectedItem{*item},
			Summary: fmt.Sprintf("Product label: %s", item.Name),
		}
	case core.ScanModeBook:
		var err error
		result, err = s.services.Scanner.AnalyzeLedgerPage(ctx, attachment.Data, attachment.MimeType)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown scan mode %q", mode)
	}

	// Attach catalog matches so the review screen can show which lines hit
	// existing products.
	products, err := s.services.Catalog.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	result.Items = core.ResolveMatches(products, result.Items)
	return result, nil
}

func (s *appService) ConfirmScan(ctx context.Context, scan core.ScanResult) (*core.ReconcileOutcome, error) {
	return s.services.Scans.ApplyScan(ctx, scan)
}

func (s *appService) DescribeImage(ctx context.Context, attachment Attachment, prompt string) (string, error) {
	return s.services.Scanner.Describe(ctx, attachment.Data, attachment.MimeType, prompt)
}

// ── Assistant ─────────────────────────────────────────────────────────────────

func (s *appService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", fmt.Errorf("invalid chat request: %w", err)
	}
	businessContext, err := s.buildBusinessContext(ctx)
	if err != nil {
		return "", err
	}
	return s.services.Assistant.Chat(ctx, req.Prompt, businessContext, chatMode(req.Mode))
}

func (s *appService) ChatStream(ctx context.Context, req ChatRequest, onDelta func(string) error) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid chat request: %w", err)
	}
	businessContext, err := s.buildBusinessContext(ctx)
	if err != nil {
		return err
	}
	return s.services.Assistant.ChatStream(ctx, req.Prompt, businessContext, chatMode(req.Mode), onDelta)
}

func (s *appService) Speak(ctx context.Context, req SpeechRequest) ([]byte, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid speech request: %w", err)
	}
	return s.services.Speech.Synthesize(ctx, req.Text)
}

func chatMode(mode string) ai.ChatMode {
	if mode == string(ai.ChatThink) {
		return ai.ChatThink
	}
	return ai.ChatFast
}

// buildBusinessContext snapshots the shop's numbers into a compact prompt
// section so the assistant answers from real data instead of guessing.
func (s *appService) buildBusinessContext(ctx context.Context) (string, error) {
	stats, err := s.services.Analytics.GetDashboardStats(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to build business context: %w", err)
	}
	low, err := s.services.Catalog.GetLowStock(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to build business context: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total revenue: ৳%s across %d orders (%d processing).\n",
		stats.TotalRevenue, stats.TotalOrders, stats.PendingOrders)
	fmt.Fprintf(&b, "Inventory value: ৳%s. Customers: %d, total baki: ৳%s.\n",
		stats.InventoryValue, stats.CustomerCount, stats.TotalDues)

	if len(low) == 0 {
		b.WriteString("No products are low on stock.")
	} else {
		b.WriteString("Low stock products:\n")
		for _, p := range low {
			fmt.Fprintf(&b, "- %s: %d left (minimum %d)\n", p.Name, p.Quantity, p.MinStockLevel)
		}
	}
	return b.String(), nil
}

// ── Analytics ─────────────────────────────────────────────────────────────────

func (s *appService) GetDashboard(ctx context.Context) (*core.DashboardStats, error) {
	return s.services.Analytics.GetDashboardStats(ctx)
}

func (s *appService) GetSalesReport(ctx context.Context, req SalesReportRequest) (*core.SalesReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid report request: %w", err)
	}
	return s.services.Analytics.GetSalesReport(ctx, req.FromDate, req.ToDate, req.TopN)
}

func (s *appService) GetLowStock(ctx context.Context) (*ProductListResult, error) {
	products, err := s.services.Catalog.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.services.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("invalid credentials")
	}
	return &UserSession{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	user, err := s.services.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
	}, nil
}
