package postgres

import (
	"context"
	"errors"
	"time"

	userDomain "site-report-backend/internal/domain/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	u.Email = userDomain.NormalizeEmail(u.Email)
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*userDomain.User, error) {
	var out userDomain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, notFound(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	var out userDomain.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", userDomain.NormalizeEmail(email)).
		Take(&out).Error
	if err != nil {
		return nil, notFound(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) ByEmails(ctx context.Context, emails []string) ([]userDomain.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	norm := make([]string, 0, len(emails))
	for _, e := range emails {
		norm = append(norm, userDomain.NormalizeEmail(e))
	}
	var out []userDomain.User
	err := r.db.WithContext(ctx).Where("LOWER(email) IN ?", norm).Order("id").Find(&out).Error
	return out, err
}

func (r *UserRepository) Save(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepository) UpsertDevice(ctx context.Context, d *userDomain.UserDevice) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.LastActive = now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_info", "last_active"}),
	}).Create(d).Error
}

func (r *UserRepository) DeleteDevice(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("device_token = ?", token).Delete(&userDomain.UserDevice{}).Error
}

func (r *UserRepository) DevicesForUsers(ctx context.Context, userIDs []uint64) ([]userDomain.UserDevice, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var out []userDomain.UserDevice
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Order("id").Find(&out).Error
	return out, err
}

// GetEmailConfig returns nil, nil when the user never configured one.
func (r *UserRepository) GetEmailConfig(ctx context.Context, userID uint64) (*userDomain.EmailConfig, error) {
	var out userDomain.EmailConfig
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) SaveEmailConfig(ctx context.Context, c *userDomain.EmailConfig) error {
	c.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reply_to", "assinatura", "updated_at"}),
	}).Create(c).Error
}
