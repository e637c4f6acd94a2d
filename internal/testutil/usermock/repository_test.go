package usermock

import (
	"context"
	"errors"
	"testing"

	domain "site-report-backend/internal/domain/user"
)

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}

	if _, err := m.GetByID(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID default: %v", err)
	}
	if _, err := m.GetByEmail(ctx, "a@b.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByEmail default: %v", err)
	}
	if cfg, err := m.GetEmailConfig(ctx, 1); cfg != nil || err != nil {
		t.Fatalf("GetEmailConfig default: %v %v", cfg, err)
	}
	if err := m.UpsertDevice(ctx, &domain.UserDevice{}); err != nil {
		t.Fatalf("UpsertDevice default: %v", err)
	}
}

func TestRepo_GetByID(t *testing.T) {
	want := &domain.User{ID: 3, Email: "eng@obra.com"}
	m := &Repo{
		GetByIDFn: func(_ context.Context, id uint64) (*domain.User, error) {
			if id != 3 {
				t.Fatalf("id mismatch: %d", id)
			}
			return want, nil
		},
	}
	got, err := m.GetByID(context.Background(), 3)
	if err != nil || got != want {
		t.Fatalf("GetByID: %v %v", got, err)
	}
}
