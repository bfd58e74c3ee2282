package store

import (
	"context"
	"time"

	"github.com/nhle/camphub/internal/model"
)

// NotificationFilter controls filtering and pagination for cached
// notification queries. Results are always newest first.
type NotificationFilter struct {
	UnreadOnly bool
	Type       *model.NotificationType
	Limit      int
	Offset     int
}

// Store persists the last successfully fetched notification list so the
// client can paint something before the first poll completes. It is a
// snapshot, never a source of truth: every write replaces it wholesale.
type Store interface {
	ReplaceNotifications(ctx context.Context, list []model.Notification, syncedAt time.Time) error
	GetNotifications(ctx context.Context, filter NotificationFilter) ([]model.Notification, error)
	CountUnread(ctx context.Context) (int, error)
	LastSync(ctx context.Context) (time.Time, error)

	SetMeta(ctx context.Context, key, value string) error
	GetMeta(ctx context.Context, key string) (string, error)
}
