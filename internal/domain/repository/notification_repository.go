package repository

import (
	"context"

	"github.com/clinicahealth/clinica-backend/internal/domain/entity"
)

// NotificationRepository stores the append-only push delivery log.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
}
