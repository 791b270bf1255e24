package workorders

import (
	"fmt"
	"time"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type WorkOrderRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *WorkOrderRepository {
	return &WorkOrderRepository{repository: r}
}

// InsertWorkOrder persists the order and its material requirements inside the
// caller's transaction, after the material deductions have succeeded.
func (r *WorkOrderRepository) InsertWorkOrder(tx *goqu.TxDatabase, req CreateWorkOrderRequest) (int, error) {
	var orderID int
	query := tx.Insert("work_orders").
		Rows(goqu.Record{
			"product_id": req.ProductID,
			"quantity":   req.Quantity,
			"status":     string(metadata.WorkOrderPending),
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&orderID); err != nil {
		return 0, fmt.Errorf("failed to insert work order record: %w", err)
	}

	rows := make([]interface{}, 0, len(req.Materials))
	for _, m := range req.Materials {
		rows = append(rows, goqu.Record{
			"work_order_id": orderID,
			"material_id":   m.MaterialID,
			"quantity":      m.Quantity,
		})
	}

	if _, err := tx.Insert("work_order_materials").Rows(rows...).Executor().Exec(); err != nil {
		return 0, fmt.Errorf("failed to insert work order materials: %w", err)
	}

	return orderID, nil
}

// GetActiveWorkOrder loads an order from the active table inside the caller's
// transaction. Completed orders live in history, so by construction they are
// NotFound here.
func (r *WorkOrderRepository) GetActiveWorkOrder(tx *goqu.TxDatabase, id int) (*models.WorkOrder, error) {
	var order models.WorkOrder
	found, err := tx.
		From("work_orders").
		Select("id", "product_id", "quantity", "status", "created_at").
		Where(goqu.Ex{"id": id}).
		Executor().
		ScanStruct(&order)
	if err != nil {
		return nil, fmt.Errorf("failed to select work order %d: %w", id, err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: "work_order", ID: id}
	}

	materials, err := scanMaterials(tx, id)
	if err != nil {
		return nil, err
	}
	order.Materials = materials

	return &order, nil
}

// MoveToHistory completes the active/history handover: insert into history with
// the completion timestamp, then delete from the active table, both in the
// caller's transaction so the order is never in both sets or neither.
func (r *WorkOrderRepository) MoveToHistory(tx *goqu.TxDatabase, order *models.WorkOrder, completedAt time.Time) error {
	insert := tx.Insert("work_order_history").
		Rows(goqu.Record{
			"id":           order.ID,
			"product_id":   order.ProductID,
			"quantity":     order.Quantity,
			"status":       string(metadata.WorkOrderCompleted),
			"created_at":   order.CreatedAt,
			"completed_at": completedAt,
		})

	if _, err := insert.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert work order %d into history: %w", order.ID, err)
	}

	result, err := tx.Delete("work_orders").
		Where(goqu.Ex{"id": order.ID}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to remove work order %d from active set: %w", order.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("work order %d vanished from active set during completion", order.ID)
	}

	return nil
}

// UpdateStatus moves an active order between non-terminal states (or cancels
// it). The allowed-from guard keeps terminal orders untouched.
func (r *WorkOrderRepository) UpdateStatus(id int, from []metadata.WorkOrderStatus, to metadata.WorkOrderStatus) error {
	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}

	result, err := r.repository.GoquDBWrapper.
		Update("work_orders").
		Set(goqu.Record{"status": string(to)}).
		Where(goqu.Ex{"id": id}).
		Where(goqu.C("status").In(allowed)).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update work order %d status: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: "work_order", ID: id}
	}

	return nil
}

func (r *WorkOrderRepository) GetActiveWorkOrders() (*[]models.WorkOrder, error) {
	return r.listOrders("work_orders", nil)
}

func (r *WorkOrderRepository) GetWorkOrderHistory() (*[]models.WorkOrder, error) {
	completedAt := "completed_at"
	return r.listOrders("work_order_history", &completedAt)
}

func (r *WorkOrderRepository) listOrders(table string, completedColumn *string) (*[]models.WorkOrder, error) {
	columns := []interface{}{
		goqu.I("w.id").As("id"),
		goqu.I("w.product_id").As("product_id"),
		goqu.I("p.sku").As("product_sku"),
		goqu.I("w.quantity").As("quantity"),
		goqu.I("w.status").As("status"),
		goqu.I("w.created_at").As("created_at"),
	}
	if completedColumn != nil {
		columns = append(columns, goqu.I("w."+*completedColumn).As("completed_at"))
	}

	query := r.repository.GoquDBWrapper.
		From(goqu.T(table).As("w")).
		Select(columns...).
		LeftJoin(
			goqu.T("products").As("p"),
			goqu.On(goqu.Ex{"w.product_id": goqu.I("p.id")}),
		).
		Order(goqu.I("w.id").Desc())

	var orders []models.WorkOrder
	if err := query.Executor().ScanStructs(&orders); err != nil {
		return nil, fmt.Errorf("unable to select work orders from %s: %w", table, err)
	}

	for i := range orders {
		materials, err := scanMaterials(r.repository.GoquDBWrapper, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Materials = materials
	}

	return &orders, nil
}

type selectRunner interface {
	From(table ...interface{}) *goqu.SelectDataset
}

func scanMaterials(db selectRunner, orderID int) ([]models.WorkOrderMaterial, error) {
	query := db.
		From(goqu.T("work_order_materials").As("wm")).
		Select(
			goqu.I("wm.material_id").As("material_id"),
			goqu.I("m.sku").As("sku"),
			goqu.I("m.name").As("name"),
			goqu.I("wm.quantity").As("quantity"),
		).
		LeftJoin(
			goqu.T("raw_materials").As("m"),
			goqu.On(goqu.Ex{"wm.material_id": goqu.I("m.id")}),
		).
		Where(goqu.Ex{"wm.work_order_id": orderID})

	var materials []models.WorkOrderMaterial
	if err := query.Executor().ScanStructs(&materials); err != nil {
		return nil, fmt.Errorf("unable to select materials for work order %d: %w", orderID, err)
	}

	return materials, nil
}
