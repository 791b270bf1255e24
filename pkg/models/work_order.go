package models

import (
	"time"

	"stockroom/pkg/metadata"
)

// WorkOrderMaterial is a raw-material requirement owned by its work order.
type WorkOrderMaterial struct {
	MaterialID int    `json:"material_id" db:"material_id"`
	SKU        string `json:"sku,omitempty" db:"sku"`
	Name       string `json:"name,omitempty" db:"name"`
	Quantity   int    `json:"quantity" db:"quantity"`
}

// WorkOrder is a production order: the listed materials were consumed at
// creation, the finished product is credited on completion. A work order lives
// in exactly one of the active and history tables.
type WorkOrder struct {
	ID          int                      `json:"id" db:"id"`
	ProductID   int                      `json:"product_id" db:"product_id"`
	ProductSKU  string                   `json:"product_sku,omitempty" db:"product_sku"`
	Quantity    int                      `json:"quantity" db:"quantity"`
	Status      metadata.WorkOrderStatus `json:"status" db:"status"`
	Materials   []WorkOrderMaterial      `json:"materials" db:"-"`
	CreatedAt   time.Time                `json:"created_at" db:"created_at"`
	CompletedAt *time.Time               `json:"completed_at,omitempty" db:"completed_at"`
}

func (w *WorkOrder) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   w.ID,
		ResourceType: "work_order",
	}
}
