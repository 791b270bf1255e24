package models

import (
	"stockroom/pkg/metadata"

	"github.com/shopspring/decimal"
)

// ItemClass distinguishes the two stock-tracked item kinds, each living in its
// own table.
type ItemClass string

const (
	ClassProduct  ItemClass = "product"
	ClassMaterial ItemClass = "raw_material"
)

func (c ItemClass) Table() string {
	switch c {
	case ClassProduct:
		return "products"
	case ClassMaterial:
		return "raw_materials"
	default:
		return ""
	}
}

// SKUPrefix is the sequencer prefix used for ids of this class.
func (c ItemClass) SKUPrefix() string {
	if c == ClassProduct {
		return "PRD"
	}
	return "MAT"
}

func (c ItemClass) IsValid() bool {
	return c == ClassProduct || c == ClassMaterial
}

const DefaultReorderLevel = 10

// StockItem is the shared shape of products and raw materials. Status is
// derived: it always equals metadata.Classify(Quantity, ReorderLevel).
type StockItem struct {
	ID           int             `json:"id" db:"id"`
	Class        ItemClass       `json:"class" db:"-"`
	SKU          string          `json:"sku" db:"sku"`
	Name         string          `json:"name" db:"name"`
	Category     string          `json:"category" db:"category"`
	Quantity     int             `json:"quantity" db:"quantity"`
	ReorderLevel int             `json:"reorder_level" db:"reorder_level"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	Status       metadata.Status `json:"status" db:"status"`
}

func (s *StockItem) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   s.ID,
		ResourceType: string(s.Class),
	}
}
