package metadata

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		quantity     int
		reorderLevel int
		expected     Status
	}{
		{"zero quantity is out of stock", 0, 10, StatusOutOfStock},
		{"zero quantity with zero reorder level", 0, 0, StatusOutOfStock},
		{"quantity at reorder level is low", 10, 10, StatusLowStock},
		{"quantity below reorder level is low", 1, 10, StatusLowStock},
		{"quantity just above reorder level is in stock", 11, 10, StatusInStock},
		{"large quantity is in stock", 5000, 10, StatusInStock},
		{"zero reorder level never reports low", 1, 0, StatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.quantity, tt.reorderLevel); got != tt.expected {
				t.Errorf("Classify(%d, %d) = %v, want %v", tt.quantity, tt.reorderLevel, got, tt.expected)
			}
		})
	}
}

// Growing stock must never demote an item from in-stock back to low or out.
func TestClassifyMonotonic(t *testing.T) {
	const reorderLevel = 10

	reachedInStock := false
	for quantity := 0; quantity <= 100; quantity++ {
		status := Classify(quantity, reorderLevel)
		if !status.IsValid() {
			t.Fatalf("Classify(%d, %d) returned invalid status %q", quantity, reorderLevel, status)
		}
		if status == StatusInStock {
			reachedInStock = true
		} else if reachedInStock {
			t.Fatalf("status regressed to %v at quantity %d", status, quantity)
		}
	}
	if !reachedInStock {
		t.Fatal("never reached in-stock status")
	}
}

func TestNewStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{"valid in-stock", "in-stock", StatusInStock, false},
		{"valid with whitespace", "  low-stock ", StatusLowStock, false},
		{"valid uppercase", "OUT-OF-STOCK", StatusOutOfStock, false},
		{"underscore variant rejected", "in_stock", "", true},
		{"unknown rejected", "plenty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("NewStatus(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPurchaseOrderTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    PurchaseOrderStatus
		to      PurchaseOrderStatus
		allowed bool
	}{
		{"pending to approved", PurchaseOrderPending, PurchaseOrderApproved, true},
		{"approved to sent", PurchaseOrderApproved, PurchaseOrderSent, true},
		{"sent to received", PurchaseOrderSent, PurchaseOrderReceived, true},
		{"pending to received skips steps", PurchaseOrderPending, PurchaseOrderReceived, false},
		{"received is terminal", PurchaseOrderReceived, PurchaseOrderCancelled, false},
		{"cancelled is terminal", PurchaseOrderCancelled, PurchaseOrderApproved, false},
		{"sent can be cancelled", PurchaseOrderSent, PurchaseOrderCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}
