package core_test

import (
	"testing"

	"smartshodhai/internal/core"
)

func TestScanResult_NormalizationAndValidation(t *testing.T) {
	tests := []struct {
		name      string
		scan      core.ScanResult
		expectErr bool
	}{
		{
			name: "happy path sale",
			scan: core.ScanResult{
				Intent: "Outgoing",
				Items:  []core.DetectedItem{{Name: "Fresh Milk 1L", Quantity: 2, Category: "Dairy"}},
			},
			expectErr: false,
		},
		{
			name: "lowercase intent is repaired",
			scan: core.ScanResult{
				Intent: "outgoing",
				Items:  []core.DetectedItem{{Name: "Milk", Quantity: 1}},
			},
			expectErr: false,
		},
		{
			name: "purchase alias maps to incoming",
			scan: core.ScanResult{
				Intent: "Purchase",
				Items:  []core.DetectedItem{{Name: "Rice", Quantity: 5}},
			},
			expectErr: false,
		},
		{
			name:      "empty item list is a valid no-op",
			scan:      core.ScanResult{Intent: "Audit"},
			expectErr: false,
		},
		{
			name: "unknown intent",
			scan: core.ScanResult{
				Intent: "Transfer",
				Items:  []core.DetectedItem{{Name: "Milk", Quantity: 1}},
			},
			expectErr: true,
		},
		{
			name: "blank item name",
			scan: core.ScanResult{
				Intent: "Incoming",
				Items:  []core.DetectedItem{{Name: "   ", Quantity: 1}},
			},
			expectErr: true,
		},
		{
			name: "zero quantity",
			scan: core.ScanResult{
				Intent: "Incoming",
				Items:  []core.DetectedItem{{Name: "Milk", Quantity: 0}},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.scan
			s.Normalize()
			err := s.Validate()

			if tt.expectErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v, scan: %+v", err, s)
			}
		})
	}
}

func TestScanResult_NormalizeDefaults(t *testing.T) {
	s := core.ScanResult{
		Intent:    "sale",
		DueAmount: -40,
		Items: []core.DetectedItem{
			{Name: "  PRAN Frooto 250ml ", Quantity: 3, Category: "Juice Drinks", Price: -5, Confidence: 1.7},
		},
	}

	s.Normalize()

	if s.Intent != core.IntentOutgoing {
		t.Errorf("intent = %q, want %q", s.Intent, core.IntentOutgoing)
	}
	if s.DueAmount != 0 {
		t.Errorf("due amount = %v, want 0", s.DueAmount)
	}

	item := s.Items[0]
	if item.Name != "PRAN Frooto 250ml" {
		t.Errorf("name = %q, not trimmed", item.Name)
	}
	if item.Category != core.DefaultCategory() {
		t.Errorf("category = %q, want default %q", item.Category, core.DefaultCategory())
	}
	if item.Price != 0 {
		t.Errorf("price = %v, want 0", item.Price)
	}
	if item.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", item.Confidence)
	}
}
