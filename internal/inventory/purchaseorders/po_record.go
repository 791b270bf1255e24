package purchaseorders

import (
	"time"

	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/shopspring/decimal"
)

// flatPurchaseOrder is the joined row shape scanned from the database before
// nesting the supplier.
type flatPurchaseOrder struct {
	ID           int             `db:"id"`
	PONumber     string          `db:"po_number"`
	Status       string          `db:"status"`
	Subtotal     decimal.Decimal `db:"subtotal"`
	TaxAmount    decimal.Decimal `db:"tax_amount"`
	ShippingCost decimal.Decimal `db:"shipping_cost"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	CreatedAt    time.Time       `db:"created_at"`
	ReceivedAt   *time.Time      `db:"received_at"`
	SupplierID   int             `db:"supplier_id"`
	SupplierName string          `db:"supplier_name"`
}

func (f flatPurchaseOrder) transform() models.PurchaseOrder {
	return models.PurchaseOrder{
		ID:       f.ID,
		PONumber: f.PONumber,
		Supplier: models.Supplier{
			ID:   f.SupplierID,
			Name: f.SupplierName,
		},
		Status:       metadata.PurchaseOrderStatus(f.Status),
		Subtotal:     f.Subtotal,
		TaxAmount:    f.TaxAmount,
		ShippingCost: f.ShippingCost,
		TotalAmount:  f.TotalAmount,
		CreatedAt:    f.CreatedAt,
		ReceivedAt:   f.ReceivedAt,
	}
}
