package ports

import (
	"context"

	"github.com/userhub/user-service/internal/core/domain"
)

// AuditRepository persists auth audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}

// AuditService writes a single event; the dispatcher workers call it.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}
