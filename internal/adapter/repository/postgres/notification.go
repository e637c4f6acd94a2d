package postgres

import (
	"context"
	"time"

	notificationDomain "site-report-backend/internal/domain/notification"

	"gorm.io/gorm"
)

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notificationDomain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uint64) (*notificationDomain.Notification, error) {
	var out notificationDomain.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, notFound(err, notificationDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID uint64, onlyUnread bool, now time.Time) ([]notificationDomain.Notification, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("expires_at IS NULL OR expires_at > ?", now)
	if onlyUnread {
		q = q.Where("status = ?", notificationDomain.StatusNew)
	}
	var out []notificationDomain.Notification
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// MarkRead is a no-op for notifications already read.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uint64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&notificationDomain.Notification{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, notificationDomain.StatusNew).
		Updates(map[string]any{"status": notificationDomain.StatusRead, "lida_em": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&notificationDomain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notificationDomain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&notificationDomain.Notification{}).
		Where("user_id = ? AND status = ?", userID, notificationDomain.StatusNew).
		Updates(map[string]any{"status": notificationDomain.StatusRead, "lida_em": at})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) RecordPush(ctx context.Context, id uint64, ok bool, errText string) error {
	return r.db.WithContext(ctx).
		Model(&notificationDomain.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{"push_sent": true, "push_ok": ok, "push_err": errText}).Error
}

func (r *NotificationRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&notificationDomain.Notification{})
	return res.RowsAffected, res.Error
}
