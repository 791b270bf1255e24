package container

import (
	"database/sql"
	"log"
	"os"

	auditLogRepo "stockroom/internal/auditlog"
	"stockroom/internal/integrations/sheets"
	"stockroom/internal/inventory/items"
	"stockroom/internal/inventory/purchaseorders"
	"stockroom/internal/inventory/stocks"
	"stockroom/internal/inventory/workorders"
	"stockroom/internal/reports"
	"stockroom/internal/repository"
	"stockroom/internal/suppliers"
	"stockroom/internal/users"
	"stockroom/pkg/auditlog"
	"stockroom/pkg/security"

	"github.com/shopspring/decimal"
)

type Container struct {
	Repository           *repository.Repository
	AuditLog             *auditlog.Auditlog
	LoginHandler         *security.LoginHandler
	ItemHandler          *items.ItemHandler
	WorkOrderHandler     *workorders.WorkOrderHandler
	PurchaseOrderHandler *purchaseorders.PurchaseOrderHandler
	ReportHandler        *reports.ReportHandler
	SupplierHandler      *suppliers.SupplierHandler
	UserHandler          *users.UsersHandler
}

func NewAppContainer(db *sql.DB) *Container {
	repo := repository.NewRepository(db)
	logRepo := auditLogRepo.NewRepository(repo)
	auditLog := auditlog.NewAuditLog(logRepo)
	loginHandler := security.NewLoginHandler(repo)

	itemRepo := items.NewRepository(repo)
	ledger := stocks.NewLedger(repo)
	itemHandler := items.NewItemHandler(itemRepo, ledger, auditLog, logRepo)

	workOrderRepo := workorders.NewRepository(repo)
	workOrderService := workorders.NewWorkOrderService(repo, ledger, workOrderRepo, auditLog)
	workOrderHandler := workorders.NewHandler(workOrderService)

	purchaseOrderRepo := purchaseorders.NewRepository(repo)
	purchaseOrderService := purchaseorders.NewPurchaseOrderService(
		repo, ledger, purchaseOrderRepo, itemRepo, auditLog, taxRate())
	purchaseOrderHandler := purchaseorders.NewPurchaseOrderHandler(purchaseOrderService)

	reportService := reports.NewReportService(itemRepo)
	reportHandler := reports.NewReportHandler(reportService, reportExporter())

	supplierRepo := suppliers.NewSupplierRepository(repo)
	supplierHandler := suppliers.NewSupplierHandler(supplierRepo)

	userRepo := users.NewRepository(repo)
	userHandler := users.NewHandler(userRepo)

	return &Container{
		Repository:           repo,
		AuditLog:             auditLog,
		LoginHandler:         loginHandler,
		ItemHandler:          itemHandler,
		WorkOrderHandler:     workOrderHandler,
		PurchaseOrderHandler: purchaseOrderHandler,
		ReportHandler:        reportHandler,
		SupplierHandler:      supplierHandler,
		UserHandler:          userHandler,
	}
}

func taxRate() decimal.Decimal {
	raw := os.Getenv("PO_TAX_RATE")
	if raw == "" {
		return decimal.RequireFromString("0.12")
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Invalid PO_TAX_RATE %q, using default 0.12", raw)
		return decimal.RequireFromString("0.12")
	}
	return rate
}

// reportExporter returns nil when Google credentials are absent; the report
// endpoints still work, only the export is disabled.
func reportExporter() reports.Exporter {
	exporter, err := sheets.NewReportExporter()
	if err != nil {
		log.Printf("Spreadsheet export disabled: %v", err)
		return nil
	}
	return exporter
}
