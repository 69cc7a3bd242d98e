package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisHolder, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	holder, err := NewRedisHolder("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis holder: %v", err)
	}
	return holder, s
}

func TestNewRedisHolder(t *testing.T) {
	holder, s := setupTestRedis(t)
	defer holder.Close()
	defer s.Close()

	if err := holder.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestRedisHolderSetAndCurrent(t *testing.T) {
	holder, s := setupTestRedis(t)
	defer holder.Close()
	defer s.Close()

	ctx := context.Background()
	if _, ok := holder.Current(ctx); ok {
		t.Error("expected empty slot before first login")
	}

	if err := holder.Set(ctx, "autor1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if user, ok := holder.Current(ctx); !ok || user != "autor1" {
		t.Errorf("expected autor1, got %q (ok=%v)", user, ok)
	}

	if err := holder.Set(ctx, "autor2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if user, _ := holder.Current(ctx); user != "autor2" {
		t.Errorf("expected autor2 after replacement, got %q", user)
	}
}

func TestRedisHolderClear(t *testing.T) {
	holder, s := setupTestRedis(t)
	defer holder.Close()
	defer s.Close()

	ctx := context.Background()
	if err := holder.Set(ctx, "autor1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := holder.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := holder.Current(ctx); ok {
		t.Error("expected empty slot after Clear")
	}
}

func TestRedisHolderSlotSurvivesReconnect(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	ctx := context.Background()
	first, err := NewRedisHolder("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis holder: %v", err)
	}
	if err := first.Set(ctx, "autor1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	first.Close()

	// A fresh holder over the same Redis sees the same slot.
	second, err := NewRedisHolder("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to recreate redis holder: %v", err)
	}
	defer second.Close()
	if user, ok := second.Current(ctx); !ok || user != "autor1" {
		t.Errorf("expected slot to survive reconnect, got %q (ok=%v)", user, ok)
	}
}
