package core

import (
	"fmt"
	"strings"
)

// ScanMode says what kind of image produced a scan result.
type ScanMode string

const (
	ScanModeProduct ScanMode = "product" // a single product label
	ScanModeBook    ScanMode = "book"    // a handwritten ledger (khata) page
)

// TxnIntent is the stock movement a scan implies.
type TxnIntent string

const (
	IntentIncoming TxnIntent = "Incoming" // restock / purchase
	IntentOutgoing TxnIntent = "Outgoing" // sale
	IntentAudit    TxnIntent = "Audit"    // presence check, no stock change
)

// DetectedItem is one line recognised by the vision model. It lives only for
// the duration of a single reconciliation.
//
// Monetary fields are plain numbers here because this is the structured-output
// boundary with the model; they are converted to decimals once the user
// confirms the scan.
type DetectedItem struct {
	Name                  string  `json:"name" jsonschema_description:"Product name as read from the image"`
	Brand                 string  `json:"brand" jsonschema_description:"Brand name if visible, else empty"`
	Quantity              int     `json:"quantity" jsonschema_description:"Number of units, at least 1"`
	Price                 float64 `json:"price" jsonschema_description:"Unit price if written, else 0"`
	Category              string  `json:"category" jsonschema_description:"Best-guess category for a Bangladeshi FMCG store"`
	SuggestedSellingPrice float64 `json:"suggested_selling_price" jsonschema_description:"Suggested retail price in taka, else 0"`
	Confidence            float64 `json:"confidence" jsonschema_description:"Recognition confidence between 0.0 and 1.0"`

	// Match resolution, filled in after detection by ResolveMatches.
	// Not part of the model output schema.
	IsExisting        bool   `json:"is_existing,omitempty" jsonschema:"-"`
	ExistingProductID string `json:"existing_product_id,omitempty" jsonschema:"-"`
}

// ScanResult is the model's reading of one captured image.
type ScanResult struct {
	Mode         ScanMode       `json:"mode" jsonschema:"-"`
	Intent       TxnIntent      `json:"intent" jsonschema_description:"Incoming for a purchase/restock, Outgoing for a sale, Audit for a stock check"`
	Items        []DetectedItem `json:"items" jsonschema_description:"Every product line recognised in the image, in reading order"`
	Summary      string         `json:"summary" jsonschema_description:"One-line description of what the page or label records"`
	CustomerName string         `json:"customer_name" jsonschema_description:"Customer name if written on the page, else empty"`
	DueAmount    float64        `json:"due_amount" jsonschema_description:"Unpaid (baki) amount if written, else 0"`
	TotalAmount  float64        `json:"total_amount" jsonschema_description:"Total amount if written, else 0"`
}

// Normalize cleans up model output before validation: trims text, repairs
// intent casing, drops negative amounts, and clamps confidence into [0,1].
func (s *ScanResult) Normalize() {
	s.Summary = strings.TrimSpace(s.Summary)
	s.CustomerName = strings.TrimSpace(s.CustomerName)

	switch strings.ToLower(strings.TrimSpace(string(s.Intent))) {
	case "incoming", "purchase", "restock":
		s.Intent = IntentIncoming
	case "outgoing", "sale", "sold":
		s.Intent = IntentOutgoing
	case "audit", "check":
		s.Intent = IntentAudit
	}

	if s.DueAmount < 0 {
		s.DueAmount = 0
	}
	if s.TotalAmount < 0 {
		s.TotalAmount = 0
	}

	for i := range s.Items {
		item := &s.Items[i]
		item.Name = strings.TrimSpace(item.Name)
		item.Brand = strings.TrimSpace(item.Brand)
		item.Category = strings.TrimSpace(item.Category)
		if !IsKnownCategory(item.Category) {
			item.Category = DefaultCategory()
		}
		if item.Price < 0 {
			item.Price = 0
		}
		if item.SuggestedSellingPrice < 0 {
			item.SuggestedSellingPrice = 0
		}
		if item.Confidence < 0 {
			item.Confidence = 0
		}
		if item.Confidence > 1 {
			item.Confidence = 1
		}
	}
}

// Validate rejects scan results the reconciler cannot act on. An empty item
// list is allowed — it reconciles to a no-op.
func (s *ScanResult) Validate() error {
	switch s.Intent {
	case IntentIncoming, IntentOutgoing, IntentAudit:
	default:
		return fmt.Errorf("unknown transaction intent %q", s.Intent)
	}

	for i, item := range s.Items {
		if item.Name == "" {
			return fmt.Errorf("item %d has an empty name", i+1)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("item %q has non-positive quantity %d", item.Name, item.Quantity)
		}
	}
	return nil
}
