package auditlog

import (
	"log"

	"stockroom/pkg/models"
)

// LogRepository persists audit entries. Implemented by internal/auditlog.
type LogRepository interface {
	PersistLog(auditlog models.AuditLog, data interface{}) error
}

type Auditlog struct {
	r LogRepository
}

type Auditable interface {
	CreateLogView() models.AuditLog
}

// Log records an activity entry for the given resource. Fire-and-forget: a
// failed write is logged but never aborts the operation that triggered it.
func (a *Auditlog) Log(action string, data interface{}, item Auditable) {
	auditLog := item.CreateLogView()
	auditLog.Action = action

	if err := a.r.PersistLog(auditLog, data); err != nil {
		log.Println("Unable to create AuditLog entry for id ", auditLog.ResourceID)
		return
	}
}

func NewAuditLog(repository LogRepository) *Auditlog {
	return &Auditlog{r: repository}
}
