package purchaseorders

import (
	"fmt"
	"time"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

const poPrefix = "PO"

type PurchaseOrderRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{repository: r}
}

// NextPONumber derives the next PO number from the existing ones. Best effort;
// the unique constraint on po_number decides races and the service retries once.
func (r *PurchaseOrderRepository) NextPONumber() (string, error) {
	var existing []string
	query := r.repository.GoquDBWrapper.
		From("purchase_orders").
		Select("po_number").
		Where(goqu.C("po_number").Like(poPrefix + "-%"))

	if err := query.Executor().ScanVals(&existing); err != nil {
		return "", fmt.Errorf("failed to fetch existing PO numbers: %w", err)
	}

	return metadata.NextCode(poPrefix, existing), nil
}

// Insert persists the order and its line items in the caller's transaction.
func (r *PurchaseOrderRepository) Insert(tx *goqu.TxDatabase, po *models.PurchaseOrder) (int, error) {
	var orderID int
	query := tx.Insert("purchase_orders").
		Rows(goqu.Record{
			"po_number":     po.PONumber,
			"supplier_id":   po.Supplier.ID,
			"status":        string(po.Status),
			"subtotal":      po.Subtotal,
			"tax_amount":    po.TaxAmount,
			"shipping_cost": po.ShippingCost,
			"total_amount":  po.TotalAmount,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&orderID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return 0, custom_error.WrapDBError("PO number already registered", string(pqErr.Code))
		}
		return 0, fmt.Errorf("failed to insert purchase order record: %w", err)
	}

	rows := make([]interface{}, 0, len(po.Items))
	for _, item := range po.Items {
		rows = append(rows, goqu.Record{
			"purchase_order_id": orderID,
			"material_id":       item.MaterialID,
			"quantity":          item.Quantity,
			"unit_price":        item.UnitPrice,
		})
	}

	if _, err := tx.Insert("purchase_order_items").Rows(rows...).Executor().Exec(); err != nil {
		return 0, fmt.Errorf("failed to insert purchase order items: %w", err)
	}

	return orderID, nil
}

func (r *PurchaseOrderRepository) Get(id int) (*models.PurchaseOrder, error) {
	var flat flatPurchaseOrder
	found, err := r.orderQuery().
		Where(goqu.Ex{"po.id": id}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("unable to select purchase order: %w", err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: "purchase_order", ID: id}
	}

	po := flat.transform()
	items, err := r.scanItems(po.ID)
	if err != nil {
		return nil, err
	}
	po.Items = items

	return &po, nil
}

func (r *PurchaseOrderRepository) List(conditions repository.QueryBuilder) (*[]models.PurchaseOrder, error) {
	aliases := map[string]string{
		"status":      "po.status",
		"supplier_id": "po.supplier_id",
	}

	var flats []flatPurchaseOrder
	query := r.orderQuery().
		Where(conditions.BuildConditions(aliases)).
		Order(goqu.I("po.id").Desc())

	if err := query.Executor().ScanStructs(&flats); err != nil {
		return nil, fmt.Errorf("unable to select purchase orders: %w", err)
	}

	orders := make([]models.PurchaseOrder, 0, len(flats))
	for _, flat := range flats {
		po := flat.transform()
		items, err := r.scanItems(po.ID)
		if err != nil {
			return nil, err
		}
		po.Items = items
		orders = append(orders, po)
	}

	return &orders, nil
}

// SetStatus performs a guarded transition; zero rows affected means the order
// is missing or not in the expected state.
func (r *PurchaseOrderRepository) SetStatus(id int, from, to metadata.PurchaseOrderStatus) error {
	result, err := r.repository.GoquDBWrapper.
		Update("purchase_orders").
		Set(goqu.Record{"status": string(to)}).
		Where(goqu.Ex{"id": id, "status": string(from)}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update purchase order %d status: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: "purchase_order", ID: id}
	}

	return nil
}

// MarkReceived flips a sent order to received inside the caller's transaction.
// The status guard makes concurrent receives of the same order settle exactly
// once.
func (r *PurchaseOrderRepository) MarkReceived(tx *goqu.TxDatabase, id int, at time.Time) error {
	result, err := tx.
		Update("purchase_orders").
		Set(goqu.Record{
			"status":      string(metadata.PurchaseOrderReceived),
			"received_at": at,
		}).
		Where(goqu.Ex{"id": id, "status": string(metadata.PurchaseOrderSent)}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to mark purchase order %d received: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: "purchase_order", ID: id}
	}

	return nil
}

// GetItems loads the line items inside the caller's transaction, for crediting
// stock on receive.
func (r *PurchaseOrderRepository) GetItems(tx *goqu.TxDatabase, id int) ([]models.PurchaseOrderItem, error) {
	var items []models.PurchaseOrderItem
	query := tx.
		From(goqu.T("purchase_order_items").As("poi")).
		Select(
			goqu.I("poi.material_id").As("material_id"),
			goqu.I("m.sku").As("sku"),
			goqu.I("m.name").As("name"),
			goqu.I("poi.quantity").As("quantity"),
			goqu.I("poi.unit_price").As("unit_price"),
		).
		LeftJoin(
			goqu.T("raw_materials").As("m"),
			goqu.On(goqu.Ex{"poi.material_id": goqu.I("m.id")}),
		).
		Where(goqu.Ex{"poi.purchase_order_id": id})

	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("unable to select items for purchase order %d: %w", id, err)
	}

	return items, nil
}

func (r *PurchaseOrderRepository) scanItems(id int) ([]models.PurchaseOrderItem, error) {
	var items []models.PurchaseOrderItem
	query := r.repository.GoquDBWrapper.
		From(goqu.T("purchase_order_items").As("poi")).
		Select(
			goqu.I("poi.material_id").As("material_id"),
			goqu.I("m.sku").As("sku"),
			goqu.I("m.name").As("name"),
			goqu.I("poi.quantity").As("quantity"),
			goqu.I("poi.unit_price").As("unit_price"),
		).
		LeftJoin(
			goqu.T("raw_materials").As("m"),
			goqu.On(goqu.Ex{"poi.material_id": goqu.I("m.id")}),
		).
		Where(goqu.Ex{"poi.purchase_order_id": id})

	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("unable to select items for purchase order %d: %w", id, err)
	}

	return items, nil
}

func (r *PurchaseOrderRepository) orderQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		From(goqu.T("purchase_orders").As("po")).
		Select(
			goqu.I("po.id").As("id"),
			goqu.I("po.po_number").As("po_number"),
			goqu.I("po.status").As("status"),
			goqu.I("po.subtotal").As("subtotal"),
			goqu.I("po.tax_amount").As("tax_amount"),
			goqu.I("po.shipping_cost").As("shipping_cost"),
			goqu.I("po.total_amount").As("total_amount"),
			goqu.I("po.created_at").As("created_at"),
			goqu.I("po.received_at").As("received_at"),
			goqu.I("s.id").As("supplier_id"),
			goqu.I("s.name").As("supplier_name"),
		).
		LeftJoin(
			goqu.T("suppliers").As("s"),
			goqu.On(goqu.Ex{"po.supplier_id": goqu.I("s.id")}),
		)
}
