package app

import (
	"context"

	"smartshodhai/internal/ai"
	"smartshodhai/internal/core"
)

// Attachment is an uploaded image attached to a scan or chat request.
// Supports JPG, PNG, and WEBP for vision model input.
type Attachment struct {
	MimeType string // "image/jpeg", "image/png", "image/webp"
	Data     []byte // raw file bytes
}

// ApplicationService is the single interface all UI adapters (Web, CLI) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ── Catalog ──

	// ListProducts returns the full product catalog.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// GetProduct returns a single product by ID.
	GetProduct(ctx context.Context, id string) (*core.Product, error)

	// CreateProduct adds a manually entered product to the catalog.
	CreateProduct(ctx context.Context, req ProductRequest) (*core.Product, error)

	// UpdateProduct replaces a product's editable fields.
	UpdateProduct(ctx context.Context, id string, req ProductRequest) (*core.Product, error)

	// DeleteProduct removes a product from the catalog.
	DeleteProduct(ctx context.Context, id string) error

	// ── Orders ──

	// ListOrders returns all orders, newest first.
	ListOrders(ctx context.Context) (*OrderListResult, error)

	// GetOrder returns a single order with its line items.
	GetOrder(ctx context.Context, id string) (*core.Order, error)

	// CreateOrder records a manually entered order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*core.Order, error)

	// UpdateOrderStatus moves an order through its fulfilment states.
	UpdateOrderStatus(ctx context.Context, id string, req OrderStatusRequest) (*core.Order, error)

	// ── Customers ──

	// ListCustomers returns the customer registry with derived order history.
	ListCustomers(ctx context.Context) (*CustomerListResult, error)

	// GetCustomer returns a single customer by ID.
	GetCustomer(ctx context.Context, id string) (*core.Customer, error)

	// CreateCustomer adds a customer to the registry.
	CreateCustomer(ctx context.Context, req CustomerRequest) (*core.Customer, error)

	// SettleCustomerDue records a baki repayment.
	SettleCustomerDue(ctx context.Context, id string, req DueRequest) (*core.Customer, error)

	// ── Scanning ──

	// AnalyzeScan reads an uploaded image. Mode "product" identifies a single
	// label; mode "book" reads a handwritten khata page. The result is matched
	// against the catalog but nothing is persisted.
	AnalyzeScan(ctx context.Context, mode core.ScanMode, attachment Attachment) (*core.ScanResult, error)

	// ConfirmScan applies a user-reviewed scan result to the shop's records
	// atomically: stock moves, at most one order is created, and any written
	// baki is added to the default customer.
	ConfirmScan(ctx context.Context, scan core.ScanResult) (*core.ReconcileOutcome, error)

	// DescribeImage returns a free-form reading of an arbitrary business photo.
	DescribeImage(ctx context.Context, attachment Attachment, prompt string) (string, error)

	// ── Assistant ──

	// Chat answers a shop-owner question grounded on live business data.
	Chat(ctx context.Context, req ChatRequest) (string, error)

	// ChatStream is Chat with incremental delivery through onDelta.
	ChatStream(ctx context.Context, req ChatRequest, onDelta func(string) error) error

	// Speak renders assistant text to WAV audio.
	Speak(ctx context.Context, req SpeechRequest) ([]byte, error)

	// ── Analytics ──

	// GetDashboard returns the headline numbers for the dashboard.
	GetDashboard(ctx context.Context) (*core.DashboardStats, error)

	// GetSalesReport returns daily sales and breakdowns for a date window.
	GetSalesReport(ctx context.Context, req SalesReportRequest) (*core.SalesReport, error)

	// GetLowStock returns products at or below their minimum stock level.
	GetLowStock(ctx context.Context) (*ProductListResult, error)

	// ── Auth ──

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns a user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)
}

// Services bundles the dependencies an appService needs.
type Services struct {
	Catalog   core.CatalogService
	Orders    core.OrderService
	Customers core.CustomerService
	Scans     core.ScanService
	Analytics core.AnalyticsService
	Users     core.UserService
	Assistant ai.AssistantService
	Scanner   ai.ScannerService
	Speech    ai.SpeechService
	IDs       core.IDGenerator
	Clock     core.Clock
}
