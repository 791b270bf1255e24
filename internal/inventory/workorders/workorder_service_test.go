package workorders

import (
	"errors"
	"testing"
	"time"

	"stockroom/pkg/auditlog"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// recordingTxRunner executes the transaction body directly and records whether
// it ended in rollback.
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

func (m *MockOrderStore) InsertWorkOrder(tx *goqu.TxDatabase, req CreateWorkOrderRequest) (int, error) {
	args := m.Called(tx, req)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderStore) GetActiveWorkOrder(tx *goqu.TxDatabase, id int) (*models.WorkOrder, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkOrder), args.Error(1)
}

func (m *MockOrderStore) MoveToHistory(tx *goqu.TxDatabase, order *models.WorkOrder, completedAt time.Time) error {
	args := m.Called(tx, order, completedAt)
	return args.Error(0)
}

func (m *MockOrderStore) UpdateStatus(id int, from []metadata.WorkOrderStatus, to metadata.WorkOrderStatus) error {
	args := m.Called(id, from, to)
	return args.Error(0)
}

func (m *MockOrderStore) GetActiveWorkOrders() (*[]models.WorkOrder, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*[]models.WorkOrder), args.Error(1)
}

func (m *MockOrderStore) GetWorkOrderHistory() (*[]models.WorkOrder, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*[]models.WorkOrder), args.Error(1)
}

func newService(tx TxRunner, ledger *MockLedger, store *MockOrderStore) *WorkOrderService {
	return NewWorkOrderService(tx, ledger, store, noopActivityLog{})
}

func TestCreateWorkOrder(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	service := newService(txRunner, ledger, store)

	req := CreateWorkOrderRequest{
		ProductID: 3,
		Quantity:  20,
		Materials: []MaterialRequirement{
			{MaterialID: 1, Quantity: 5},
			{MaterialID: 2, Quantity: 8},
		},
	}

	ledger.On("AdjustQuantityTx", mock.Anything, models.ClassMaterial, 1, -5).
		Return(&models.StockItem{ID: 1, Quantity: 5}, nil).Once()
	ledger.On("AdjustQuantityTx", mock.Anything, models.ClassMaterial, 2, -8).
		Return(&models.StockItem{ID: 2, Quantity: 0}, nil).Once()
	store.On("InsertWorkOrder", mock.Anything, req).Return(42, nil).Once()

	order, err := service.Create(req)

	assert.NoError(t, err)
	assert.Equal(t, 42, order.ID)
	assert.Equal(t, metadata.WorkOrderPending, order.Status)
	assert.Len(t, order.Materials, 2)
	assert.False(t, txRunner.rolledBack)

	ledger.AssertExpectations(t)
	store.AssertExpectations(t)
}

// A shortfall in any single material must abort the whole creation: no order
// row, and the earlier deductions undone by the transaction rollback.
func TestCreateWorkOrderInsufficientStock(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	service := newService(txRunner, ledger, store)

	req := CreateWorkOrderRequest{
		ProductID: 3,
		Quantity:  10,
		Materials: []MaterialRequirement{
			{MaterialID: 1, Quantity: 5},
			{MaterialID: 2, Quantity: 5},
		},
	}

	ledger.On("AdjustQuantityTx", mock.Anything, models.ClassMaterial, 1, -5).
		Return(&models.StockItem{ID: 1, Quantity: 5}, nil).Once()
	ledger.On("AdjustQuantityTx", mock.Anything, models.ClassMaterial, 2, -5).
		Return(nil, &custom_error.InsufficientStockError{
			ItemClass: string(models.ClassMaterial), ItemID: 2, Requested: 5, Available: 2,
		}).Once()

	order, err := service.Create(req)

	assert.Error(t, err)
	assert.Nil(t, order)

	var insufficient *custom_error.InsufficientStockError
	assert.True(t, errors.As(err, &insufficient))
	assert.True(t, txRunner.rolledBack)
	store.AssertNotCalled(t, "InsertWorkOrder", mock.Anything, mock.Anything)

	ledger.AssertExpectations(t)
}

func TestCompleteWorkOrder(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	service := newService(txRunner, ledger, store)

	active := &models.WorkOrder{
		ID:        7,
		ProductID: 3,
		Quantity:  7,
		Status:    metadata.WorkOrderInProgress,
		CreatedAt: time.Now().Add(-time.Hour),
	}

	store.On("GetActiveWorkOrder", mock.Anything, 7).Return(active, nil).Once()
	ledger.On("AdjustQuantityTx", mock.Anything, models.ClassProduct, 3, 7).
		Return(&models.StockItem{ID: 3, Quantity: 10, Status: metadata.StatusLowStock}, nil).Once()
	store.On("MoveToHistory", mock.Anything, active, mock.AnythingOfType("time.Time")).Return(nil).Once()

	order, err := service.Complete(7)

	assert.NoError(t, err)
	assert.Equal(t, metadata.WorkOrderCompleted, order.Status)
	assert.NotNil(t, order.CompletedAt)
	assert.False(t, txRunner.rolledBack)

	ledger.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestCompleteWorkOrderNotFound(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	service := newService(txRunner, ledger, store)

	store.On("GetActiveWorkOrder", mock.Anything, 99).
		Return(nil, &custom_error.NotFoundError{Resource: "work_order", ID: 99}).Once()

	order, err := service.Complete(99)

	assert.Error(t, err)
	assert.Nil(t, order)

	var notFound *custom_error.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	ledger.AssertNotCalled(t, "AdjustQuantityTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteCancelledWorkOrder(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	service := newService(txRunner, ledger, store)

	cancelled := &models.WorkOrder{
		ID:        5,
		ProductID: 3,
		Quantity:  4,
		Status:    metadata.WorkOrderCancelled,
	}
	store.On("GetActiveWorkOrder", mock.Anything, 5).Return(cancelled, nil).Once()

	_, err := service.Complete(5)

	var notFound *custom_error.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	ledger.AssertNotCalled(t, "AdjustQuantityTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "MoveToHistory", mock.Anything, mock.Anything, mock.Anything)
}

// The product credit failing must leave the order in the active set; the
// materials stay consumed.
func TestCompleteWorkOrderCreditFails(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	service := newService(txRunner, ledger, store)

	active := &models.WorkOrder{
		ID:        8,
		ProductID: 44,
		Quantity:  2,
		Status:    metadata.WorkOrderPending,
	}
	store.On("GetActiveWorkOrder", mock.Anything, 8).Return(active, nil).Once()
	ledger.On("AdjustQuantityTx", mock.Anything, models.ClassProduct, 44, 2).
		Return(nil, &custom_error.NotFoundError{Resource: "product", ID: 44}).Once()

	order, err := service.Complete(8)

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, txRunner.rolledBack)
	store.AssertNotCalled(t, "MoveToHistory", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelWorkOrder(t *testing.T) {
	txRunner := &recordingTxRunner{}
	ledger := new(MockLedger)
	store := new(MockOrderStore)
	service := newService(txRunner, ledger, store)

	store.On("UpdateStatus", 11,
		[]metadata.WorkOrderStatus{metadata.WorkOrderPending, metadata.WorkOrderInProgress},
		metadata.WorkOrderCancelled,
	).Return(nil).Once()

	err := service.Cancel(11)

	assert.NoError(t, err)
	ledger.AssertNotCalled(t, "AdjustQuantityTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}
