package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "site-report-backend/internal/domain/notification"
	"site-report-backend/internal/domain/user"
	"site-report-backend/pkg/logger"
)

var ErrEmptyToken = errors.New("device token is required")

type Usecase struct {
	notifications domain.Repository
	users         user.Repository
	log           *logger.Logger
	now           func() time.Time
}

func NewUsecase(notifications domain.Repository, users user.Repository, log *logger.Logger) *Usecase {
	if log == nil {
		log = logger.Nop()
	}
	return &Usecase{notifications: notifications, users: users, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the user's unexpired notifications, newest first.
func (u *Usecase) List(ctx context.Context, userID uint64, onlyUnread bool) ([]NotificationDTO, error) {
	list, err := u.notifications.ListForUser(ctx, userID, onlyUnread, u.now())
	if err != nil {
		return nil, err
	}
	out := make([]NotificationDTO, 0, len(list))
	for i := range list {
		out = append(out, ToDTO(&list[i]))
	}
	return out, nil
}

func (u *Usecase) MarkRead(ctx context.Context, userID, id uint64) error {
	return u.notifications.MarkRead(ctx, userID, id, u.now())
}

func (u *Usecase) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	return u.notifications.MarkAllRead(ctx, userID, u.now())
}

// PurgeExpired deletes notifications whose expires_at has passed.
func (u *Usecase) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := u.notifications.PurgeExpired(ctx, u.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		u.log.Info("expired notifications purged", "count", n)
	}
	return n, nil
}

// RegisterDevice binds a push token to the user. A token already known is
// moved to this user and its last_active refreshed.
func (u *Usecase) RegisterDevice(ctx context.Context, in DeviceInput) error {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return ErrEmptyToken
	}
	if _, err := u.users.GetByID(ctx, in.UserID); err != nil {
		return err
	}
	return u.users.UpsertDevice(ctx, &user.UserDevice{UserID: in.UserID, DeviceToken: token, DeviceInfo: in.Info})
}

func (u *Usecase) UnregisterDevice(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	return u.users.DeleteDevice(ctx, token)
}
