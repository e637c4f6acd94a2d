package postgres

import (
	"context"
	"errors"
	"testing"

	userDomain "site-report-backend/internal/domain/user"
	"site-report-backend/internal/testutil/testdb"
)

func TestUser_ByEmailsCaseInsensitive(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	if err := repo.Create(ctx, &userDomain.User{FullName: "Ana", Email: " Ana@X.com "}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	testdb.SeedUser(t, db, "bruno@x.com", true)

	got, err := repo.ByEmails(ctx, []string{"ANA@x.com", "nobody@x.com", "bruno@X.COM"})
	if err != nil || len(got) != 2 {
		t.Fatalf("ByEmails: %+v err=%v", got, err)
	}
	u, err := repo.GetByEmail(ctx, "ana@x.com")
	if err != nil || u.FullName != "Ana" {
		t.Fatalf("GetByEmail: %+v err=%v", u, err)
	}
	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUser_DevicesAndEmailConfig(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	a := testdb.SeedUser(t, db, "a@x.com", false)
	b := testdb.SeedUser(t, db, "b@x.com", false)

	if err := repo.UpsertDevice(ctx, &userDomain.UserDevice{UserID: a.ID, DeviceToken: "tok-1", DeviceInfo: "android"}); err != nil {
		t.Fatalf("UpsertDevice: %v", err)
	}
	// the same token moves to another user
	if err := repo.UpsertDevice(ctx, &userDomain.UserDevice{UserID: b.ID, DeviceToken: "tok-1", DeviceInfo: "ios"}); err != nil {
		t.Fatalf("UpsertDevice rebind: %v", err)
	}
	devs, _ := repo.DevicesForUsers(ctx, []uint64{a.ID, b.ID})
	if len(devs) != 1 || devs[0].UserID != b.ID || devs[0].DeviceInfo != "ios" {
		t.Fatalf("devices: %+v", devs)
	}
	if err := repo.DeleteDevice(ctx, "tok-1"); err != nil {
		t.Fatalf("DeleteDevice: %v", err)
	}
	if devs, _ := repo.DevicesForUsers(ctx, []uint64{b.ID}); len(devs) != 0 {
		t.Fatalf("device not deleted: %+v", devs)
	}

	cfg, err := repo.GetEmailConfig(ctx, a.ID)
	if err != nil || cfg != nil {
		t.Fatalf("missing config should be nil, nil: %+v %v", cfg, err)
	}
	if err := repo.SaveEmailConfig(ctx, &userDomain.EmailConfig{UserID: a.ID, ReplyTo: "eng@x.com", Signature: "Eng. A"}); err != nil {
		t.Fatalf("SaveEmailConfig: %v", err)
	}
	if err := repo.SaveEmailConfig(ctx, &userDomain.EmailConfig{UserID: a.ID, ReplyTo: "eng2@x.com", Signature: "Eng. A"}); err != nil {
		t.Fatalf("SaveEmailConfig upsert: %v", err)
	}
	cfg, _ = repo.GetEmailConfig(ctx, a.ID)
	if cfg == nil || cfg.ReplyTo != "eng2@x.com" {
		t.Fatalf("email config: %+v", cfg)
	}
}
