package metadata

import (
	"fmt"
	"strings"
)

// Status describes stock availability of a product or raw material. It is always
// derived from quantity and reorder level, never stored independently.
type Status string

const (
	StatusInStock    Status = "in-stock"
	StatusLowStock   Status = "low-stock"
	StatusOutOfStock Status = "out-of-stock"
)

// Classify derives the stock status from the current quantity and the reorder
// level. The same rule backs the SQL CASE used by the stock ledger, so every
// write path agrees on the boundaries.
func Classify(quantity, reorderLevel int) Status {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity <= reorderLevel:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

func NewStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid stock status: %s", value)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusOutOfStock:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}
