package models

import (
	"time"

	"stockroom/pkg/metadata"

	"github.com/shopspring/decimal"
)

// PurchaseOrderItem is a line item owned by its purchase order.
type PurchaseOrderItem struct {
	MaterialID int             `json:"material_id" db:"material_id"`
	SKU        string          `json:"sku,omitempty" db:"sku"`
	Name       string          `json:"name,omitempty" db:"name"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// PurchaseOrder replenishes raw materials from a supplier. PONumber is assigned
// once at creation and never changes.
type PurchaseOrder struct {
	ID           int                          `json:"id" db:"id"`
	PONumber     string                       `json:"po_number" db:"po_number"`
	Supplier     Supplier                     `json:"supplier" db:"-"`
	Status       metadata.PurchaseOrderStatus `json:"status" db:"status"`
	Items        []PurchaseOrderItem          `json:"items" db:"-"`
	Subtotal     decimal.Decimal              `json:"subtotal" db:"subtotal"`
	TaxAmount    decimal.Decimal              `json:"tax_amount" db:"tax_amount"`
	ShippingCost decimal.Decimal              `json:"shipping_cost" db:"shipping_cost"`
	TotalAmount  decimal.Decimal              `json:"total_amount" db:"total_amount"`
	CreatedAt    time.Time                    `json:"created_at" db:"created_at"`
	ReceivedAt   *time.Time                   `json:"received_at,omitempty" db:"received_at"`
}

func (p *PurchaseOrder) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   p.ID,
		ResourceType: "purchase_order",
	}
}
