package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	notificationDomain "site-report-backend/internal/domain/notification"
	"site-report-backend/internal/testutil/testdb"
)

func TestNotification_ListReadAndPurge(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewNotificationRepository(db)
	u := testdb.SeedUser(t, db, "a@x.com", false)
	now := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)

	mk := func(title string, created time.Time, ttl time.Duration) *notificationDomain.Notification {
		exp := created.Add(ttl)
		n := &notificationDomain.Notification{
			UserID: u.ID, Kind: notificationDomain.KindReportApproved, Title: title,
			Status: notificationDomain.StatusNew, CreatedAt: created, ExpiresAt: &exp,
		}
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create: %v", err)
		}
		return n
	}
	old := mk("old", now.Add(-72*time.Hour), 24*time.Hour)
	recent := mk("recent", now.Add(-time.Hour), 24*time.Hour)
	newest := mk("newest", now.Add(-time.Minute), 24*time.Hour)

	list, err := repo.ListForUser(ctx, u.ID, false, now)
	if err != nil || len(list) != 2 || list[0].ID != newest.ID {
		t.Fatalf("ListForUser: %+v err=%v", list, err)
	}

	if err := repo.MarkRead(ctx, u.ID, recent.ID, now); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := repo.MarkRead(ctx, u.ID, recent.ID, now); err != nil {
		t.Fatalf("MarkRead twice: %v", err)
	}
	if err := repo.MarkRead(ctx, u.ID+1, recent.ID, now); !errors.Is(err, notificationDomain.ErrNotFound) {
		t.Fatalf("other user's notification: want ErrNotFound, got %v", err)
	}
	unread, _ := repo.ListForUser(ctx, u.ID, true, now)
	if len(unread) != 1 || unread[0].ID != newest.ID {
		t.Fatalf("unread: %+v", unread)
	}

	if err := repo.RecordPush(ctx, newest.ID, false, "no devices"); err != nil {
		t.Fatalf("RecordPush: %v", err)
	}
	got, _ := repo.GetByID(ctx, newest.ID)
	if !got.PushSent || got.PushOK || got.PushErr != "no devices" {
		t.Fatalf("push accounting: %+v", got)
	}

	n, err := repo.MarkAllRead(ctx, u.ID, now)
	if err != nil || n != 2 {
		t.Fatalf("MarkAllRead: n=%d err=%v", n, err)
	}

	purged, err := repo.PurgeExpired(ctx, now)
	if err != nil || purged != 1 {
		t.Fatalf("PurgeExpired: n=%d err=%v", purged, err)
	}
	if _, err := repo.GetByID(ctx, old.ID); !errors.Is(err, notificationDomain.ErrNotFound) {
		t.Fatalf("expired notification should be gone: %v", err)
	}
}
