package auditlog

import (
	"encoding/json"
	"fmt"

	"stockroom/internal/repository"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type AuditLogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *AuditLogRepository {
	return &AuditLogRepository{repository: r}
}

func (r *AuditLogRepository) PersistLog(auditlog models.AuditLog, auditLogData interface{}) error {
	dataJSON, err := json.Marshal(auditLogData)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log data: %w", err)
	}

	query := r.repository.GoquDBWrapper.Insert("audit_logs").
		Rows(goqu.Record{
			"resource_id":   auditlog.ResourceID,
			"resource_type": auditlog.ResourceType,
			"action":        auditlog.Action,
			"data":          dataJSON,
		})

	if _, err = query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

func (r *AuditLogRepository) GetResourceLog(id int, resourceType string) (*[]models.AuditLog, error) {
	query := r.repository.GoquDBWrapper.
		From(goqu.T("audit_logs").As("a")).
		Select(
			goqu.I("a.id").As("id"),
			goqu.I("a.resource_id").As("resource_id"),
			goqu.I("a.resource_type").As("resource_type"),
			goqu.I("a.action").As("action"),
			goqu.I("a.data").As("data"),
			goqu.I("a.created_at").As("created_at"),
		).
		Where(goqu.Ex{
			"a.resource_id":   id,
			"a.resource_type": resourceType,
		}).
		Order(goqu.I("a.created_at").Desc())

	rows, err := query.Executor().Query()
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	defer rows.Close()

	var auditLogs []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ResourceID,
			&entry.ResourceType,
			&entry.Action,
			&entry.DataRaw,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		entry.LoadFromDB()
		auditLogs = append(auditLogs, entry)
	}

	return &auditLogs, nil
}
