package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)

	// non-zero DB to verify it's set
	c, err := OpenRedis(context.Background(), s.Addr(), 2)
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Set(ctx, "idem:approve:1", "v", time.Minute).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	if !s.DB(2).Exists("idem:approve:1") {
		t.Fatal("key not stored in db 2")
	}
}

func TestOpenRedis_Disabled(t *testing.T) {
	c, err := OpenRedis(context.Background(), "", 0)
	if err != nil || c != nil {
		t.Fatalf("empty addr: got (%v, %v), want (nil, nil)", c, err)
	}
}

func TestOpenRedis_Failure(t *testing.T) {
	if _, err := OpenRedis(context.Background(), "not-a-real-host:6379", 0); err == nil {
		t.Fatal("expected error, got nil")
	}
}
