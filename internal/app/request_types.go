package app

// ProductRequest is the input for creating or updating a catalog product.
type ProductRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Category      string  `json:"category" validate:"required,max=100"`
	CostPrice     float64 `json:"costPrice" validate:"gte=0"`
	SellingPrice  float64 `json:"sellingPrice" validate:"gte=0"`
	Quantity      int     `json:"quantity" validate:"gte=0"`
	MinStockLevel int     `json:"minStockLevel" validate:"gte=0"`
}

// CreateOrderRequest is the input for recording a manual order.
type CreateOrderRequest struct {
	CustomerID string             `json:"customerId" validate:"required"`
	Paid       bool               `json:"paid"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest is a single line within a CreateOrderRequest.
type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// OrderStatusRequest updates the fulfilment or payment state of an order.
// Exactly one of the two fields must be set.
type OrderStatusRequest struct {
	Status        string `json:"status" validate:"omitempty,oneof=Processing Ready Delivered Cancelled"`
	PaymentStatus string `json:"paymentStatus" validate:"omitempty,oneof=Paid Partial Due"`
}

// CustomerRequest is the input for creating a customer.
type CustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"max=30"`
	Address string `json:"address" validate:"max=300"`
}

// DueRequest carries the amount for a baki settlement.
type DueRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// ChatRequest is the input for an assistant conversation turn.
type ChatRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
	Mode   string `json:"mode" validate:"omitempty,oneof=fast think"`
}

// SpeechRequest is the input for text-to-speech synthesis.
type SpeechRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// SalesReportRequest selects the window for a sales report.
type SalesReportRequest struct {
	FromDate string `json:"fromDate" validate:"omitempty,datetime=2006-01-02"`
	ToDate   string `json:"toDate" validate:"omitempty,datetime=2006-01-02"`
	TopN     int    `json:"topN" validate:"gte=0,lte=50"`
}
