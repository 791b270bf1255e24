package items

import (
	"github.com/shopspring/decimal"
)

type ItemRequest struct {
	Name         string          `json:"name" binding:"required"`
	Category     string          `json:"category"`
	Quantity     int             `json:"quantity" binding:"gte=0"`
	ReorderLevel *int            `json:"reorder_level" binding:"omitempty,gte=0"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

type PatchItemRequest struct {
	ID           int              `uri:"id" json:"-" binding:"required"`
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	ReorderLevel *int             `json:"reorder_level" binding:"omitempty,gte=0"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
}

type AdjustQuantityRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}
