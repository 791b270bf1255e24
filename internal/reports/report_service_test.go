package reports

import (
	"testing"

	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockItemSource struct {
	mock.Mock
}

func (m *MockItemSource) GetItemsBelowThreshold(class models.ItemClass) (*[]models.StockItem, error) {
	args := m.Called(class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*[]models.StockItem), args.Error(1)
}

func TestReplenishmentReport(t *testing.T) {
	source := new(MockItemSource)
	service := NewReportService(source)

	products := []models.StockItem{
		{ID: 3, SKU: "PRD-0003", Name: "Oak Table", Quantity: 0, ReorderLevel: 5, Status: metadata.StatusOutOfStock},
	}
	materials := []models.StockItem{
		{ID: 1, SKU: "MAT-0001", Name: "Oak Plank", Quantity: 5, ReorderLevel: 10, Status: metadata.StatusLowStock},
		{ID: 2, SKU: "MAT-0002", Name: "Wood Glue", Quantity: 9, ReorderLevel: 10, Status: metadata.StatusLowStock},
	}
	source.On("GetItemsBelowThreshold", models.ClassProduct).Return(&products, nil).Once()
	source.On("GetItemsBelowThreshold", models.ClassMaterial).Return(&materials, nil).Once()

	report, err := service.Replenishment()

	assert.NoError(t, err)
	assert.Len(t, report.Lines, 3)
	assert.False(t, report.GeneratedAt.IsZero())

	// products listed before materials
	assert.Equal(t, models.ClassProduct, report.Lines[0].Class)
	assert.Equal(t, 10, report.Lines[0].SuggestedOrder)

	assert.Equal(t, "MAT-0001", report.Lines[1].SKU)
	assert.Equal(t, 15, report.Lines[1].SuggestedOrder)
	assert.Equal(t, 11, report.Lines[2].SuggestedOrder)

	source.AssertExpectations(t)
}

func TestReplenishmentReportEmpty(t *testing.T) {
	source := new(MockItemSource)
	service := NewReportService(source)

	empty := []models.StockItem{}
	source.On("GetItemsBelowThreshold", models.ClassProduct).Return(&empty, nil).Once()
	source.On("GetItemsBelowThreshold", models.ClassMaterial).Return(&empty, nil).Once()

	report, err := service.Replenishment()

	assert.NoError(t, err)
	assert.Empty(t, report.Lines)
}
