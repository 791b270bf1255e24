package reports

import (
	"log"
	"net/http"

	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

// Exporter pushes a replenishment report to an external destination.
type Exporter interface {
	Export(spreadsheetID string, report *ReplenishmentReport) error
}

type ReportHandler struct {
	service  *ReportService
	exporter Exporter
}

// NewReportHandler accepts a nil exporter; the export endpoint then reports
// the integration as unconfigured instead of failing at startup.
func NewReportHandler(service *ReportService, exporter Exporter) *ReportHandler {
	return &ReportHandler{service: service, exporter: exporter}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/reports/replenishment", security.Authorize("user"), h.GetReplenishment)
	router.POST("/reports/replenishment/export", security.Authorize("moderator"), h.ExportReplenishment)
}

func (h *ReportHandler) GetReplenishment(c *gin.Context) {
	report, err := h.service.Replenishment()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build replenishment report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) ExportReplenishment(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Spreadsheet export is not configured"})
		return
	}

	var req struct {
		SpreadsheetID string `json:"spreadsheet_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	report, err := h.service.Replenishment()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build replenishment report"})
		return
	}

	if err := h.exporter.Export(req.SpreadsheetID, report); err != nil {
		log.Printf("Replenishment export failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to export report to spreadsheet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Report exported",
		"lines":   len(report.Lines),
	})
}
