package metadata

import (
	"testing"
)

func TestReorderQuantity(t *testing.T) {
	tests := []struct {
		name         string
		current      int
		reorderLevel int
		expected     int
	}{
		{"half of reorder level left", 5, 10, 15},
		{"just under threshold keeps minimum order", 9, 10, 11},
		{"at threshold orders the gap", 10, 10, 10},
		{"out of stock orders full buffer", 0, 10, 20},
		{"zero reorder level orders nothing", 0, 0, 0},
		{"overstocked still orders minimum", 100, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReorderQuantity(tt.current, tt.reorderLevel); got != tt.expected {
				t.Errorf("ReorderQuantity(%d, %d) = %d, want %d", tt.current, tt.reorderLevel, got, tt.expected)
			}
		})
	}
}

func TestReorderQuantityNeverNegative(t *testing.T) {
	for current := 0; current <= 50; current++ {
		for level := 0; level <= 25; level++ {
			if got := ReorderQuantity(current, level); got < 0 {
				t.Fatalf("ReorderQuantity(%d, %d) = %d, want >= 0", current, level, got)
			}
		}
	}
}
