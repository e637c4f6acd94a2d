package notification

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uint64) (*Notification, error)
	ListForUser(ctx context.Context, userID uint64, onlyUnread bool, now time.Time) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id uint64, at time.Time) error
	MarkAllRead(ctx context.Context, userID uint64, at time.Time) (int64, error)
	// RecordPush stores the push outcome for a notification.
	RecordPush(ctx context.Context, id uint64, ok bool, errText string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
