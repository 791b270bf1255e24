package reports

import (
	"time"

	"stockroom/pkg/metadata"
	"stockroom/pkg/models"
)

type ItemSource interface {
	GetItemsBelowThreshold(class models.ItemClass) (*[]models.StockItem, error)
}

// ReplenishmentLine is one item needing attention, with the suggested order
// quantity that would restore it to twice its reorder level.
type ReplenishmentLine struct {
	Class          models.ItemClass `json:"class"`
	ItemID         int              `json:"item_id"`
	SKU            string           `json:"sku"`
	Name           string           `json:"name"`
	Quantity       int              `json:"quantity"`
	ReorderLevel   int              `json:"reorder_level"`
	Status         metadata.Status  `json:"status"`
	SuggestedOrder int              `json:"suggested_order"`
}

type ReplenishmentReport struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Lines       []ReplenishmentLine `json:"lines"`
}

type ReportService struct {
	items ItemSource
}

func NewReportService(items ItemSource) *ReportService {
	return &ReportService{items: items}
}

// Replenishment lists every product and raw material at or below its reorder
// level. Products are listed first, then materials, each in store order.
func (s *ReportService) Replenishment() (*ReplenishmentReport, error) {
	report := &ReplenishmentReport{
		GeneratedAt: time.Now(),
		Lines:       []ReplenishmentLine{},
	}

	for _, class := range []models.ItemClass{models.ClassProduct, models.ClassMaterial} {
		items, err := s.items.GetItemsBelowThreshold(class)
		if err != nil {
			return nil, err
		}
		if items == nil {
			continue
		}

		for _, item := range *items {
			report.Lines = append(report.Lines, ReplenishmentLine{
				Class:          class,
				ItemID:         item.ID,
				SKU:            item.SKU,
				Name:           item.Name,
				Quantity:       item.Quantity,
				ReorderLevel:   item.ReorderLevel,
				Status:         item.Status,
				SuggestedOrder: metadata.ReorderQuantity(item.Quantity, item.ReorderLevel),
			})
		}
	}

	return report, nil
}
