package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/publishing-backend/internal/models"
	repo "github.com/baharkarakas/publishing-backend/internal/repository"
	"github.com/baharkarakas/publishing-backend/internal/worker"
)

// Auditor appends audit log entries off the request path. A failed write is
// logged and never fails the operation that produced it.
type Auditor struct {
	logs repo.AuditLogs
	wp   *worker.Pool
	log  *slog.Logger
}

// NewAuditor writes synchronously when wp is nil.
func NewAuditor(logs repo.AuditLogs, wp *worker.Pool, log *slog.Logger) *Auditor {
	if log == nil {
		log = slog.Default()
	}
	return &Auditor{logs: logs, wp: wp, log: log}
}

func (a *Auditor) Record(entityType, entityID, action string, details map[string]any) {
	if a == nil {
		return
	}
	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   &entityID,
		Action:     action,
		Details:    details,
	}
	write := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.logs.Create(ctx, entry); err != nil {
			a.log.Warn("audit write", "action", action, "entity_id", entityID, "err", err)
		}
	}
	if a.wp == nil || !a.wp.Submit(write) {
		write()
	}
}
