package items

import (
	"fmt"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

var stockItemColumns = []interface{}{
	"id", "sku", "name", "category", "quantity", "reorder_level", "unit_price", "status",
}

type ItemRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *ItemRepository {
	return &ItemRepository{repository: r}
}

func (r *ItemRepository) GetItem(class models.ItemClass, id int) (*models.StockItem, error) {
	var item models.StockItem
	found, err := r.repository.GoquDBWrapper.
		From(class.Table()).
		Select(stockItemColumns...).
		Where(goqu.Ex{"id": id}).
		Executor().
		ScanStruct(&item)
	if err != nil {
		return nil, fmt.Errorf("unable to select %s from database: %w", class, err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: string(class), ID: id}
	}

	item.Class = class
	return &item, nil
}

func (r *ItemRepository) GetItemsBy(class models.ItemClass, conditions repository.QueryBuilder) (*[]models.StockItem, error) {
	aliases := map[string]string{
		"category": "category",
		"status":   "status",
	}

	query := r.repository.GoquDBWrapper.
		From(class.Table()).
		Select(stockItemColumns...).
		Where(conditions.BuildConditions(aliases)).
		Order(goqu.I("id").Asc())

	var items []models.StockItem
	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("unable to select %s list from database: %w", class, err)
	}

	for i := range items {
		items[i].Class = class
	}

	return &items, nil
}

// GetItemsBelowThreshold lists items whose derived status is low or out of
// stock. Feeds the replenishment report and purchase-order generation.
func (r *ItemRepository) GetItemsBelowThreshold(class models.ItemClass) (*[]models.StockItem, error) {
	query := r.repository.GoquDBWrapper.
		From(class.Table()).
		Select(stockItemColumns...).
		Where(goqu.C("status").In(
			string(metadata.StatusLowStock),
			string(metadata.StatusOutOfStock),
		)).
		Order(goqu.I("quantity").Asc())

	var items []models.StockItem
	if err := query.Executor().ScanStructs(&items); err != nil {
		return nil, fmt.Errorf("unable to select low-stock %s list: %w", class, err)
	}

	for i := range items {
		items[i].Class = class
	}

	return &items, nil
}

// PersistItem inserts a new product or raw material. The SKU comes from the
// sequencer; on a duplicate-key race the insert is retried once with a
// re-fetched sequence before the conflict is surfaced.
func (r *ItemRepository) PersistItem(class models.ItemClass, req ItemRequest) (*models.StockItem, error) {
	item, err := r.insertItem(class, req)
	if err != nil {
		if _, ok := err.(*custom_error.UniqueViolationError); ok {
			return r.insertItem(class, req)
		}
		return nil, err
	}
	return item, nil
}

func (r *ItemRepository) insertItem(class models.ItemClass, req ItemRequest) (*models.StockItem, error) {
	sku, err := r.NextSKU(class)
	if err != nil {
		return nil, err
	}

	reorderLevel := models.DefaultReorderLevel
	if req.ReorderLevel != nil {
		reorderLevel = *req.ReorderLevel
	}

	item := models.StockItem{
		Class:        class,
		SKU:          sku,
		Name:         req.Name,
		Category:     req.Category,
		Quantity:     req.Quantity,
		ReorderLevel: reorderLevel,
		UnitPrice:    req.UnitPrice,
		Status:       metadata.Classify(req.Quantity, reorderLevel),
	}

	query := r.repository.GoquDBWrapper.Insert(class.Table()).
		Rows(goqu.Record{
			"sku":           item.SKU,
			"name":          item.Name,
			"category":      item.Category,
			"quantity":      item.Quantity,
			"reorder_level": item.ReorderLevel,
			"unit_price":    item.UnitPrice,
			"status":        string(item.Status),
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&item.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, custom_error.WrapDBError("SKU already registered", string(pqErr.Code))
		}
		return nil, fmt.Errorf("failed to insert %s record: %w", class, err)
	}

	return &item, nil
}

// NextSKU derives the next SKU for the class from the existing ids. Best
// effort: the unique constraint on sku is the final arbiter.
func (r *ItemRepository) NextSKU(class models.ItemClass) (string, error) {
	prefix := class.SKUPrefix()

	var existing []string
	query := r.repository.GoquDBWrapper.
		From(class.Table()).
		Select("sku").
		Where(goqu.C("sku").Like(prefix + "-%"))

	if err := query.Executor().ScanVals(&existing); err != nil {
		return "", fmt.Errorf("failed to fetch existing SKUs for %s: %w", class, err)
	}

	return metadata.NextCode(prefix, existing), nil
}

// UpdateItem patches descriptive fields and the reorder level. A changed
// reorder level re-derives status in the same UPDATE; quantity itself only
// moves through the stock ledger.
func (r *ItemRepository) UpdateItem(class models.ItemClass, req *PatchItemRequest) (*models.StockItem, error) {
	record := goqu.Record{}
	if req.Name != nil {
		record["name"] = *req.Name
	}
	if req.Category != nil {
		record["category"] = *req.Category
	}
	if req.UnitPrice != nil {
		record["unit_price"] = *req.UnitPrice
	}
	if req.ReorderLevel != nil {
		record["reorder_level"] = *req.ReorderLevel
		record["status"] = goqu.L(
			"CASE WHEN quantity = 0 THEN ? WHEN quantity <= ? THEN ? ELSE ? END",
			string(metadata.StatusOutOfStock),
			*req.ReorderLevel,
			string(metadata.StatusLowStock),
			string(metadata.StatusInStock),
		)
	}

	if len(record) == 0 {
		return r.GetItem(class, req.ID)
	}

	var item models.StockItem
	found, err := r.repository.GoquDBWrapper.
		Update(class.Table()).
		Set(record).
		Where(goqu.Ex{"id": req.ID}).
		Returning(stockItemColumns...).
		Executor().
		ScanStruct(&item)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %d: %w", class, req.ID, err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: string(class), ID: req.ID}
	}

	item.Class = class
	return &item, nil
}

func (r *ItemRepository) DeleteItem(class models.ItemClass, id int) error {
	result, err := r.repository.GoquDBWrapper.
		Delete(class.Table()).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec()
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return custom_error.WrapDBError(fmt.Sprintf("%s %d", class, id), string(pqErr.Code))
		}
		return fmt.Errorf("failed to delete %s %d: %w", class, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: string(class), ID: id}
	}

	return nil
}
