package workorders

import (
	"time"

	"stockroom/pkg/auditlog"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type TxRunner interface {
	InTransaction(fn func(tx *goqu.TxDatabase) error) error
}

type Ledger interface {
	AdjustQuantityTx(tx *goqu.TxDatabase, class models.ItemClass, itemID, delta int) (*models.StockItem, error)
}

type OrderStore interface {
	InsertWorkOrder(tx *goqu.TxDatabase, req CreateWorkOrderRequest) (int, error)
	GetActiveWorkOrder(tx *goqu.TxDatabase, id int) (*models.WorkOrder, error)
	MoveToHistory(tx *goqu.TxDatabase, order *models.WorkOrder, completedAt time.Time) error
	UpdateStatus(id int, from []metadata.WorkOrderStatus, to metadata.WorkOrderStatus) error
	GetActiveWorkOrders() (*[]models.WorkOrder, error)
	GetWorkOrderHistory() (*[]models.WorkOrder, error)
}

type ActivityLog interface {
	Log(action string, data interface{}, item auditlog.Auditable)
}

// WorkOrderService settles production orders against the stock ledger. Both
// settlement operations run inside a single database transaction, so a failed
// step rolls back every stock movement made before it: creation can never
// consume part of its materials, completion can never credit the product twice
// or strand the order between the active and history sets.
type WorkOrderService struct {
	tx       TxRunner
	ledger   Ledger
	orders   OrderStore
	auditLog ActivityLog
}

func NewWorkOrderService(tx TxRunner, ledger Ledger, orders OrderStore, auditLog ActivityLog) *WorkOrderService {
	return &WorkOrderService{
		tx:       tx,
		ledger:   ledger,
		orders:   orders,
		auditLog: auditLog,
	}
}

// Create deducts every required material and persists the order as pending.
// Any failed deduction aborts the whole creation; no material is consumed.
func (s *WorkOrderService) Create(req CreateWorkOrderRequest) (*models.WorkOrder, error) {
	var order models.WorkOrder

	err := s.tx.InTransaction(func(tx *goqu.TxDatabase) error {
		for _, m := range req.Materials {
			if _, err := s.ledger.AdjustQuantityTx(tx, models.ClassMaterial, m.MaterialID, -m.Quantity); err != nil {
				return err
			}
		}

		orderID, err := s.orders.InsertWorkOrder(tx, req)
		if err != nil {
			return err
		}

		materials := make([]models.WorkOrderMaterial, 0, len(req.Materials))
		for _, m := range req.Materials {
			materials = append(materials, models.WorkOrderMaterial{
				MaterialID: m.MaterialID,
				Quantity:   m.Quantity,
			})
		}

		order = models.WorkOrder{
			ID:        orderID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Status:    metadata.WorkOrderPending,
			Materials: materials,
			CreatedAt: time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.auditLog.Log(
		"create",
		map[string]interface{}{
			"product_id": order.ProductID,
			"quantity":   order.Quantity,
			"materials":  order.Materials,
			"msg":        "Created work order, materials consumed",
		},
		&order,
	)

	return &order, nil
}

// Complete credits the finished product and moves the order to history.
// Consumed materials are not returned when the credit fails; the transaction
// rollback simply leaves the order active for a retry.
func (s *WorkOrderService) Complete(id int) (*models.WorkOrder, error) {
	var order *models.WorkOrder

	err := s.tx.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		order, err = s.orders.GetActiveWorkOrder(tx, id)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			// cancelled orders stay in the active table but are done
			return &custom_error.NotFoundError{Resource: "work_order", ID: id}
		}

		if _, err := s.ledger.AdjustQuantityTx(tx, models.ClassProduct, order.ProductID, order.Quantity); err != nil {
			return err
		}

		completedAt := time.Now()
		if err := s.orders.MoveToHistory(tx, order, completedAt); err != nil {
			return err
		}

		order.Status = metadata.WorkOrderCompleted
		order.CompletedAt = &completedAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.auditLog.Log(
		"complete",
		map[string]interface{}{
			"product_id": order.ProductID,
			"quantity":   order.Quantity,
			"msg":        "Completed work order, product stock credited",
		},
		order,
	)

	return order, nil
}

// Start moves a pending order to in-progress.
func (s *WorkOrderService) Start(id int) error {
	return s.orders.UpdateStatus(id,
		[]metadata.WorkOrderStatus{metadata.WorkOrderPending},
		metadata.WorkOrderInProgress,
	)
}

// Cancel terminates an order without any stock effect.
func (s *WorkOrderService) Cancel(id int) error {
	err := s.orders.UpdateStatus(id,
		[]metadata.WorkOrderStatus{metadata.WorkOrderPending, metadata.WorkOrderInProgress},
		metadata.WorkOrderCancelled,
	)
	if err != nil {
		return err
	}

	go s.auditLog.Log(
		"cancel",
		map[string]interface{}{"msg": "Cancelled work order"},
		&models.WorkOrder{ID: id},
	)

	return nil
}

func (s *WorkOrderService) ListActive() (*[]models.WorkOrder, error) {
	return s.orders.GetActiveWorkOrders()
}

func (s *WorkOrderService) ListHistory() (*[]models.WorkOrder, error) {
	return s.orders.GetWorkOrderHistory()
}
