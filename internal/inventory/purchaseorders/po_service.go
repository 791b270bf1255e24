package purchaseorders

import (
	"fmt"
	"time"

	"stockroom/internal/repository"
	"stockroom/pkg/auditlog"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
)

type TxRunner interface {
	InTransaction(fn func(tx *goqu.TxDatabase) error) error
}

type Ledger interface {
	AdjustQuantityTx(tx *goqu.TxDatabase, class models.ItemClass, itemID, delta int) (*models.StockItem, error)
}

type OrderStore interface {
	NextPONumber() (string, error)
	Insert(tx *goqu.TxDatabase, po *models.PurchaseOrder) (int, error)
	Get(id int) (*models.PurchaseOrder, error)
	List(conditions repository.QueryBuilder) (*[]models.PurchaseOrder, error)
	SetStatus(id int, from, to metadata.PurchaseOrderStatus) error
	MarkReceived(tx *goqu.TxDatabase, id int, at time.Time) error
	GetItems(tx *goqu.TxDatabase, id int) ([]models.PurchaseOrderItem, error)
}

// MaterialSource lists raw materials needing replenishment, for draft PO
// generation.
type MaterialSource interface {
	GetItemsBelowThreshold(class models.ItemClass) (*[]models.StockItem, error)
}

type ActivityLog interface {
	Log(action string, data interface{}, item auditlog.Auditable)
}

type PurchaseOrderService struct {
	tx        TxRunner
	ledger    Ledger
	orders    OrderStore
	materials MaterialSource
	auditLog  ActivityLog
	taxRate   decimal.Decimal
}

func NewPurchaseOrderService(tx TxRunner, ledger Ledger, orders OrderStore, materials MaterialSource, auditLog ActivityLog, taxRate decimal.Decimal) *PurchaseOrderService {
	return &PurchaseOrderService{
		tx:        tx,
		ledger:    ledger,
		orders:    orders,
		materials: materials,
		auditLog:  auditLog,
		taxRate:   taxRate,
	}
}

// Create assigns the next PO number, prices the order and persists it as
// pending. A sequencer collision with a concurrent creation is retried once
// with a re-fetched number before the conflict is surfaced.
func (s *PurchaseOrderService) Create(req CreatePurchaseOrderRequest) (*models.PurchaseOrder, error) {
	po, err := s.create(req)
	if err != nil {
		if _, ok := err.(*custom_error.UniqueViolationError); ok {
			return s.create(req)
		}
		return nil, err
	}
	return po, nil
}

func (s *PurchaseOrderService) create(req CreatePurchaseOrderRequest) (*models.PurchaseOrder, error) {
	poNumber, err := s.orders.NextPONumber()
	if err != nil {
		return nil, err
	}

	items := make([]models.PurchaseOrderItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, item := range req.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.PurchaseOrderItem{
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}

	taxAmount := subtotal.Mul(s.taxRate).Round(2)
	po := models.PurchaseOrder{
		PONumber:     poNumber,
		Supplier:     models.Supplier{ID: req.SupplierID},
		Status:       metadata.PurchaseOrderPending,
		Items:        items,
		Subtotal:     subtotal,
		TaxAmount:    taxAmount,
		ShippingCost: req.ShippingCost,
		TotalAmount:  subtotal.Add(taxAmount).Add(req.ShippingCost),
		CreatedAt:    time.Now(),
	}

	err = s.tx.InTransaction(func(tx *goqu.TxDatabase) error {
		id, err := s.orders.Insert(tx, &po)
		if err != nil {
			return err
		}
		po.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.auditLog.Log(
		"create",
		map[string]interface{}{
			"po_number": po.PONumber,
			"total":     po.TotalAmount,
			"msg":       "Created purchase order",
		},
		&po,
	)

	return &po, nil
}

// GenerateFromLowStock drafts a purchase order covering every raw material at
// or below its reorder level, ordering the replenishment quantity at the
// material's current unit price.
func (s *PurchaseOrderService) GenerateFromLowStock(req GenerateFromLowStockRequest) (*models.PurchaseOrder, error) {
	lowStock, err := s.materials.GetItemsBelowThreshold(models.ClassMaterial)
	if err != nil {
		return nil, err
	}
	if lowStock == nil || len(*lowStock) == 0 {
		return nil, fmt.Errorf("no materials below reorder level")
	}

	createReq := CreatePurchaseOrderRequest{
		SupplierID:   req.SupplierID,
		ShippingCost: req.ShippingCost,
	}
	for _, material := range *lowStock {
		createReq.Items = append(createReq.Items, PurchaseOrderItemRequest{
			MaterialID: material.ID,
			Quantity:   metadata.ReorderQuantity(material.Quantity, material.ReorderLevel),
			UnitPrice:  material.UnitPrice,
		})
	}

	return s.Create(createReq)
}

func (s *PurchaseOrderService) Approve(id int) error {
	return s.transition(id, metadata.PurchaseOrderApproved)
}

func (s *PurchaseOrderService) Send(id int) error {
	return s.transition(id, metadata.PurchaseOrderSent)
}

func (s *PurchaseOrderService) Cancel(id int) error {
	return s.transition(id, metadata.PurchaseOrderCancelled)
}

func (s *PurchaseOrderService) transition(id int, to metadata.PurchaseOrderStatus) error {
	po, err := s.orders.Get(id)
	if err != nil {
		return err
	}
	if err := po.Status.Transition(to); err != nil {
		return err
	}

	if err := s.orders.SetStatus(id, po.Status, to); err != nil {
		return err
	}

	go s.auditLog.Log(
		string(to),
		map[string]interface{}{
			"po_number": po.PONumber,
			"msg":       "Purchase order status changed",
		},
		po,
	)

	return nil
}

// Receive settles a sent order: the status flip and every material credit are
// one transaction, so stock is never credited for an order that did not flip
// and vice versa.
func (s *PurchaseOrderService) Receive(id int) (*models.PurchaseOrder, error) {
	err := s.tx.InTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.orders.MarkReceived(tx, id, time.Now()); err != nil {
			return err
		}

		items, err := s.orders.GetItems(tx, id)
		if err != nil {
			return err
		}

		for _, item := range items {
			if _, err := s.ledger.AdjustQuantityTx(tx, models.ClassMaterial, item.MaterialID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	po, err := s.orders.Get(id)
	if err != nil {
		return nil, err
	}

	go s.auditLog.Log(
		"receive",
		map[string]interface{}{
			"po_number": po.PONumber,
			"msg":       "Received purchase order, material stock credited",
		},
		po,
	)

	return po, nil
}

func (s *PurchaseOrderService) Get(id int) (*models.PurchaseOrder, error) {
	return s.orders.Get(id)
}

func (s *PurchaseOrderService) List(conditions repository.QueryBuilder) (*[]models.PurchaseOrder, error) {
	return s.orders.List(conditions)
}
