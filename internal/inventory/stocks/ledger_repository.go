package stocks

import (
	"fmt"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

var stockItemColumns = []interface{}{
	"id", "sku", "name", "category", "quantity", "reorder_level", "unit_price", "status",
}

// queryRunner is the slice of goqu.Database / goqu.TxDatabase the ledger needs,
// so adjustments run either standalone or inside a caller's transaction.
type queryRunner interface {
	Update(table interface{}) *goqu.UpdateDataset
	From(table ...interface{}) *goqu.SelectDataset
}

// LedgerRepository performs every quantity mutation on products and raw
// materials. Quantity and status change in the same UPDATE, so no reader ever
// observes a quantity with a stale status, and the guard in the WHERE clause
// makes the read-modify-write safe against concurrent adjustments.
type LedgerRepository struct {
	repository *repository.Repository
}

func NewLedger(r *repository.Repository) *LedgerRepository {
	return &LedgerRepository{repository: r}
}

// AdjustQuantity applies delta to the item's quantity. It fails with
// InsufficientStockError when the result would be negative and leaves the row
// untouched.
func (r *LedgerRepository) AdjustQuantity(class models.ItemClass, itemID, delta int) (*models.StockItem, error) {
	return adjustQuantity(r.repository.GoquDBWrapper, class, itemID, delta)
}

// AdjustQuantityTx is AdjustQuantity inside an open transaction. Work-order
// settlement and purchase-order receiving use it so a failed step rolls back
// every earlier adjustment.
func (r *LedgerRepository) AdjustQuantityTx(tx *goqu.TxDatabase, class models.ItemClass, itemID, delta int) (*models.StockItem, error) {
	return adjustQuantity(tx, class, itemID, delta)
}

func adjustQuantity(db queryRunner, class models.ItemClass, itemID, delta int) (*models.StockItem, error) {
	if !class.IsValid() {
		return nil, fmt.Errorf("unknown item class: %s", class)
	}

	var item models.StockItem
	found, err := adjustStatement(db, class, itemID, delta).
		Executor().
		ScanStruct(&item)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust quantity of %s %d: %w", class, itemID, err)
	}

	if !found {
		return nil, classifyRejection(db, class, itemID, delta)
	}

	item.Class = class
	return &item, nil
}

// adjustStatement builds the single UPDATE that applies the delta and
// re-derives status in one statement.
func adjustStatement(db queryRunner, class models.ItemClass, itemID, delta int) *goqu.UpdateDataset {
	return db.Update(class.Table()).
		Set(goqu.Record{
			"quantity": goqu.L("quantity + ?", delta),
			"status":   classifyExpression(delta),
		}).
		Where(goqu.C("id").Eq(itemID)).
		Where(goqu.L("quantity + ? >= 0", delta)). // quantity must never go negative
		Returning(stockItemColumns...)
}

// classifyRejection decides why the guarded update matched no row: a missing
// item is NotFound, an existing one means the delta would overdraw the stock.
func classifyRejection(db queryRunner, class models.ItemClass, itemID, delta int) error {
	var available int
	found, err := db.From(class.Table()).
		Select("quantity").
		Where(goqu.C("id").Eq(itemID)).
		Executor().
		ScanVal(&available)
	if err != nil {
		return fmt.Errorf("failed to inspect %s %d after rejected adjustment: %w", class, itemID, err)
	}
	if !found {
		return &custom_error.NotFoundError{Resource: string(class), ID: itemID}
	}

	return &custom_error.InsufficientStockError{
		ItemClass: string(class),
		ItemID:    itemID,
		Requested: -delta,
		Available: available,
	}
}

// classifyExpression is metadata.Classify as a SQL CASE over the post-update
// quantity. The boundaries must stay in lockstep with Classify.
func classifyExpression(delta int) goqu.Expression {
	return goqu.L(
		"CASE WHEN quantity + ? = 0 THEN ? WHEN quantity + ? <= reorder_level THEN ? ELSE ? END",
		delta, string(metadata.StatusOutOfStock),
		delta, string(metadata.StatusLowStock),
		string(metadata.StatusInStock),
	)
}
