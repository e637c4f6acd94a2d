package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ByEmails matches case-insensitively; unknown addresses are skipped.
	ByEmails(ctx context.Context, emails []string) ([]User, error)
	Save(ctx context.Context, u *User) error

	// UpsertDevice inserts by token or re-binds an existing token to the user.
	UpsertDevice(ctx context.Context, d *UserDevice) error
	DeleteDevice(ctx context.Context, token string) error
	DevicesForUsers(ctx context.Context, userIDs []uint64) ([]UserDevice, error)

	GetEmailConfig(ctx context.Context, userID uint64) (*EmailConfig, error)
	SaveEmailConfig(ctx context.Context, c *EmailConfig) error
}
