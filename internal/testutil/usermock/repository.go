package usermock

import (
	"context"

	domain "site-report-backend/internal/domain/user"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return domain.ErrNotFound; unset writes succeed.
type Repo struct {
	CreateFn          func(ctx context.Context, u *domain.User) error
	GetByIDFn         func(ctx context.Context, id uint64) (*domain.User, error)
	GetByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	ByEmailsFn        func(ctx context.Context, emails []string) ([]domain.User, error)
	SaveFn            func(ctx context.Context, u *domain.User) error
	UpsertDeviceFn    func(ctx context.Context, d *domain.UserDevice) error
	DeleteDeviceFn    func(ctx context.Context, token string) error
	DevicesForUsersFn func(ctx context.Context, userIDs []uint64) ([]domain.UserDevice, error)
	GetEmailConfigFn  func(ctx context.Context, userID uint64) (*domain.EmailConfig, error)
	SaveEmailConfigFn func(ctx context.Context, c *domain.EmailConfig) error
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ByEmails(ctx context.Context, emails []string) ([]domain.User, error) {
	if m.ByEmailsFn != nil {
		return m.ByEmailsFn(ctx, emails)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, u *domain.User) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, u)
	}
	return nil
}

func (m *Repo) UpsertDevice(ctx context.Context, d *domain.UserDevice) error {
	if m.UpsertDeviceFn != nil {
		return m.UpsertDeviceFn(ctx, d)
	}
	return nil
}

func (m *Repo) DeleteDevice(ctx context.Context, token string) error {
	if m.DeleteDeviceFn != nil {
		return m.DeleteDeviceFn(ctx, token)
	}
	return nil
}

func (m *Repo) DevicesForUsers(ctx context.Context, userIDs []uint64) ([]domain.UserDevice, error) {
	if m.DevicesForUsersFn != nil {
		return m.DevicesForUsersFn(ctx, userIDs)
	}
	return nil, nil
}

func (m *Repo) GetEmailConfig(ctx context.Context, userID uint64) (*domain.EmailConfig, error) {
	if m.GetEmailConfigFn != nil {
		return m.GetEmailConfigFn(ctx, userID)
	}
	return nil, nil
}

func (m *Repo) SaveEmailConfig(ctx context.Context, c *domain.EmailConfig) error {
	if m.SaveEmailConfigFn != nil {
		return m.SaveEmailConfigFn(ctx, c)
	}
	return nil
}
