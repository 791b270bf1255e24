package purchaseorders

import (
	"github.com/shopspring/decimal"
)

type PurchaseOrderItemRequest struct {
	MaterialID int             `json:"material_id" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID   int                        `json:"supplier_id" binding:"required"`
	ShippingCost decimal.Decimal            `json:"shipping_cost"`
	Items        []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type GenerateFromLowStockRequest struct {
	SupplierID   int             `json:"supplier_id" binding:"required"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}
