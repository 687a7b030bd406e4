package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisClaimer struct {
	lastSetKey string
	lastSetTTL time.Duration
	lastDel    []string
	setResult  bool
	setErr     error
	delErr     error
}

func (m *mockRedisClaimer) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.lastSetKey = key
	m.lastSetTTL = expiration
	cmd := redis.NewBoolCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal(m.setResult)
	return cmd
}

func (m *mockRedisClaimer) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	cmd := redis.NewIntCmd(ctx)
	if m.delErr != nil {
		cmd.SetErr(m.delErr)
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

func TestMemoryEventDeduper(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryEventDeduper(time.Minute)

	ok, err := d.Claim(ctx, "Ev1")
	if err != nil || !ok {
		t.Fatalf("expected first claim to succeed, got ok=%v err=%v", ok, err)
	}
	ok, _ = d.Claim(ctx, "Ev1")
	if ok {
		t.Fatalf("expected duplicate claim to fail")
	}
	if err := d.Release(ctx, "Ev1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, _ = d.Claim(ctx, "Ev1")
	if !ok {
		t.Fatalf("expected claim after release to succeed")
	}
	ok, _ = d.Claim(ctx, "")
	if !ok {
		t.Fatalf("expected events without id to pass through")
	}
}

func TestMemoryEventDeduper_Expires(t *testing.T) {
	ctx := context.Background()
	d := &memoryEventDeduper{ttl: time.Minute, items: map[string]time.Time{
		"Ev1": time.Now().UTC().Add(-time.Second),
	}}
	ok, _ := d.Claim(ctx, "Ev1")
	if !ok {
		t.Fatalf("expected expired entry to be reclaimable")
	}
}

func TestRedisEventDeduper(t *testing.T) {
	ctx := context.Background()

	t.Run("nil client", func(t *testing.T) {
		if NewRedisEventDeduper(nil, time.Minute) != nil {
			t.Fatalf("expected nil deduper for nil client")
		}
	})

	t.Run("claim uses prefixed key and ttl", func(t *testing.T) {
		mock := &mockRedisClaimer{setResult: true}
		d := &redisEventDeduper{client: mock, ttl: 10 * time.Minute, prefix: "slack:event:"}
		ok, err := d.Claim(ctx, "Ev1")
		if err != nil || !ok {
			t.Fatalf("expected claim, got ok=%v err=%v", ok, err)
		}
		if mock.lastSetKey != "slack:event:Ev1" || mock.lastSetTTL != 10*time.Minute {
			t.Fatalf("unexpected setnx key=%q ttl=%s", mock.lastSetKey, mock.lastSetTTL)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		d := &redisEventDeduper{client: &mockRedisClaimer{setResult: false}, ttl: time.Minute, prefix: "slack:event:"}
		ok, err := d.Claim(ctx, "Ev1")
		if err != nil || ok {
			t.Fatalf("expected duplicate, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("redis error", func(t *testing.T) {
		d := &redisEventDeduper{client: &mockRedisClaimer{setErr: errors.New("redis down")}, ttl: time.Minute, prefix: "slack:event:"}
		if _, err := d.Claim(ctx, "Ev1"); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("release", func(t *testing.T) {
		mock := &mockRedisClaimer{}
		d := &redisEventDeduper{client: mock, ttl: time.Minute, prefix: "slack:event:"}
		if err := d.Release(ctx, "Ev1"); err != nil {
			t.Fatalf("release: %v", err)
		}
		if len(mock.lastDel) != 1 || mock.lastDel[0] != "slack:event:Ev1" {
			t.Fatalf("unexpected del keys %+v", mock.lastDel)
		}
	})
}
