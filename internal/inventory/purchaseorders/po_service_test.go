package purchaseorders

import (
	"errors"
	"testing"
	"time"

	"stockroom/internal/repository"
	"stockroom/pkg/auditlog"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type recordingTxRunner struct {
	rolledBack bool
}

func (r *recordingTxRunner) InTransaction(fn func(tx *goqu.TxDatabase) error) error {
	err := fn(nil)
	if err != nil {
		r.rolledBack = true
	}
	return err
}

type noopActivityLog struct{}

func (noopActivityLog) Log(action string, data interface{}, item auditlog.Auditable) {}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) AdjustQuantityTx(tx *goqu.TxDatabase, class models.ItemClass, itemID, delta int) (*models.StockItem, error) {
	args := m.Called(tx, class, itemID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockItem), args.Error(1)
}

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) NextPONumber() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockOrderStore) Insert(tx *goqu.TxDatabase, po *models.PurchaseOrder) (int, error) {
	args := m.Called(tx, po)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderStore) Get(id int) (*models.PurchaseOrder, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockOrderStore) List(conditions repository.QueryBuilder) (*[]models.PurchaseOrder, error) {
	args := m.Called(conditions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*[]models.PurchaseOrder), args.Error(1)
}

func (m *MockOrderStore) SetStatus(id int, from, to metadata.PurchaseOrderStatus) error {
	args := m.Called(id, from, to)
	return args.Error(0)
}

func (m *MockOrderStore) MarkReceived(tx *goqu.TxDatabase, id int, at time.Time) error {
	args := m.Called(tx, id, at)
	return args.Error(0)
}

func (m *MockOrderStore) GetItems(tx *goqu.TxDatabase, id int) ([]models.PurchaseOrderItem, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PurchaseOrderItem), args.Error(1)
}

type MockMaterialSource struct {
	mock.Mock
}

func (m *MockMaterialSource) GetItemsBelowThreshold(class models.ItemClass) (*[]models.StockItem, error) {
	args := m.Called(class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*[]models.StockItem), args.Error(1)
}

func newService(tx TxRunner, ledger *MockLedger, store *MockOrderStore, materials *MockMaterialSource) *PurchaseOrderService {
	return NewPurchaseOrderService(tx, ledger, store, materials, noopActivityLog{}, decimal.RequireFromString("0.12"))
}

func TestCreatePurchaseOrder(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	materials := new(MockMaterialSource)
	service := newService(txRunner, ledger, store, materials)

	req := CreatePurchaseOrderRequest{
		SupplierID:   2,
		ShippingCost: decimal.RequireFromString("5.00"),
		Items: []PurchaseOrderItemRequest{
			{MaterialID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("2.50")},
			{MaterialID: 4, Quantity: 4, UnitPrice: decimal.RequireFromString("1.25")},
		},
	}

	store.On("NextPONumber").Return("PO-0007", nil).Once()
	store.On("Insert", mock.Anything, mock.AnythingOfType("*models.PurchaseOrder")).Return(7, nil).Once()

	po, err := service.Create(req)

	assert.NoError(t, err)
	assert.Equal(t, 7, po.ID)
	assert.Equal(t, "PO-0007", po.PONumber)
	assert.Equal(t, metadata.PurchaseOrderPending, po.Status)
	assert.Len(t, po.Items, 2)

	assert.True(t, po.Subtotal.Equal(decimal.RequireFromString("12.50")), "subtotal %s", po.Subtotal)
	assert.True(t, po.TaxAmount.Equal(decimal.RequireFromString("1.50")), "tax %s", po.TaxAmount)
	assert.True(t, po.TotalAmount.Equal(decimal.RequireFromString("19.00")), "total %s", po.TotalAmount)

	store.AssertExpectations(t)
}

// A duplicate PO number from a concurrent creation is retried once with a
// freshly fetched number.
func TestCreatePurchaseOrderRetriesOnDuplicateNumber(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	materials := new(MockMaterialSource)
	service := newService(txRunner, ledger, store, materials)

	req := CreatePurchaseOrderRequest{
		SupplierID: 2,
		Items: []PurchaseOrderItemRequest{
			{MaterialID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
		},
	}

	store.On("NextPONumber").Return("PO-0003", nil).Once()
	store.On("Insert", mock.Anything, mock.AnythingOfType("*models.PurchaseOrder")).
		Return(0, &custom_error.UniqueViolationError{}).Once()
	store.On("NextPONumber").Return("PO-0004", nil).Once()
	store.On("Insert", mock.Anything, mock.AnythingOfType("*models.PurchaseOrder")).
		Return(4, nil).Once()

	po, err := service.Create(req)

	assert.NoError(t, err)
	assert.Equal(t, "PO-0004", po.PONumber)
	store.AssertExpectations(t)
}

func TestGenerateFromLowStock(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	materials := new(MockMaterialSource)
	service := newService(txRunner, ledger, store, materials)

	lowStock := []models.StockItem{
		{ID: 1, Quantity: 5, ReorderLevel: 10, UnitPrice: decimal.RequireFromString("2.00")},
		{ID: 2, Quantity: 0, ReorderLevel: 10, UnitPrice: decimal.RequireFromString("3.00")},
	}
	materials.On("GetItemsBelowThreshold", models.ClassMaterial).Return(&lowStock, nil).Once()
	store.On("NextPONumber").Return("PO-0010", nil).Once()
	store.On("Insert", mock.Anything, mock.AnythingOfType("*models.PurchaseOrder")).Return(10, nil).Once()

	po, err := service.GenerateFromLowStock(GenerateFromLowStockRequest{SupplierID: 3})

	assert.NoError(t, err)
	assert.Len(t, po.Items, 2)
	// topped up to twice the reorder level
	assert.Equal(t, 15, po.Items[0].Quantity)
	assert.Equal(t, 20, po.Items[1].Quantity)

	materials.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestGenerateFromLowStockNothingToOrder(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	materials := new(MockMaterialSource)
	service := newService(txRunner, ledger, store, materials)

	empty := []models.StockItem{}
	materials.On("GetItemsBelowThreshold", models.ClassMaterial).Return(&empty, nil).Once()

	po, err := service.GenerateFromLowStock(GenerateFromLowStockRequest{SupplierID: 3})

	assert.Error(t, err)
	assert.Nil(t, po)
	store.AssertNotCalled(t, "NextPONumber")
}

// Receiving flips the status and credits every line item inside one
// transaction.
func TestReceivePurchaseOrder(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	materials := new(MockMaterialSource)
	service := newService(txRunner, ledger, store, materials)

	items := []models.PurchaseOrderItem{
		{MaterialID: 1, Quantity: 15},
		{MaterialID: 2, Quantity: 20},
	}
	receivedAt := time.Now()
	received := &models.PurchaseOrder{
		ID:         6,
		PONumber:   "PO-0006",
		Status:     metadata.PurchaseOrderReceived,
		ReceivedAt: &receivedAt,
	}

	store.On("MarkReceived", mock.Anything, 6, mock.AnythingOfType("time.Time")).Return(nil).Once()
	store.On("GetItems", mock.Anything, 6).Return(items, nil).Once()
	ledger.On("AdjustQuantityTx", mock.Anything, models.ClassMaterial, 1, 15).
		Return(&models.StockItem{ID: 1, Quantity: 20, Status: metadata.StatusInStock}, nil).Once()
	ledger.On("AdjustQuantityTx", mock.Anything, models.ClassMaterial, 2, 20).
		Return(&models.StockItem{ID: 2, Quantity: 20, Status: metadata.StatusInStock}, nil).Once()
	store.On("Get", 6).Return(received, nil).Once()

	po, err := service.Receive(6)

	assert.NoError(t, err)
	assert.Equal(t, metadata.PurchaseOrderReceived, po.Status)
	assert.NotNil(t, po.ReceivedAt)
	assert.False(t, txRunner.rolledBack)

	ledger.AssertExpectations(t)
	store.AssertExpectations(t)
}

// An order not in the sent state cannot be received; no stock moves.
func TestReceivePurchaseOrderNotSent(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	materials := new(MockMaterialSource)
	service := newService(txRunner, ledger, store, materials)

	store.On("MarkReceived", mock.Anything, 9, mock.AnythingOfType("time.Time")).
		Return(&custom_error.NotFoundError{Resource: "purchase_order", ID: 9}).Once()

	po, err := service.Receive(9)

	assert.Error(t, err)
	assert.Nil(t, po)
	assert.True(t, txRunner.rolledBack)

	var notFound *custom_error.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	ledger.AssertNotCalled(t, "AdjustQuantityTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApprovePurchaseOrder(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	materials := new(MockMaterialSource)
	service := newService(txRunner, ledger, store, materials)

	pending := &models.PurchaseOrder{ID: 12, PONumber: "PO-0012", Status: metadata.PurchaseOrderPending}
	store.On("Get", 12).Return(pending, nil).Once()
	store.On("SetStatus", 12, metadata.PurchaseOrderPending, metadata.PurchaseOrderApproved).Return(nil).Once()

	err := service.Approve(12)

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestApproveReceivedPurchaseOrder(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	materials := new(MockMaterialSource)
	service := newService(txRunner, ledger, store, materials)

	done := &models.PurchaseOrder{ID: 13, PONumber: "PO-0013", Status: metadata.PurchaseOrderReceived}
	store.On("Get", 13).Return(done, nil).Once()

	err := service.Approve(13)

	assert.Error(t, err)
	store.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}
