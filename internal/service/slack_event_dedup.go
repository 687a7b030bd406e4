package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventDeduper reclama event_id de Slack para que los reintentos no repitan el intercambio.
type EventDeduper interface {
	// Claim devuelve true si el evento no se había visto dentro del TTL.
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type memoryEventDeduper struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]time.Time
}

func NewMemoryEventDeduper(ttl time.Duration) EventDeduper {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &memoryEventDeduper{
		ttl:   ttl,
		items: make(map[string]time.Time),
	}
}

func (d *memoryEventDeduper) Claim(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if strings.TrimSpace(eventID) == "" {
		return true, nil
	}
	now := time.Now().UTC()
	for id, exp := range d.items {
		if now.After(exp) {
			delete(d.items, id)
		}
	}
	if _, ok := d.items[eventID]; ok {
		return false, nil
	}
	d.items[eventID] = now.Add(d.ttl)
	return true, nil
}

func (d *memoryEventDeduper) Release(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.items, eventID)
	return nil
}

type redisClaimer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisEventDeduper struct {
	client redisClaimer
	ttl    time.Duration
	prefix string
}

func NewRedisEventDeduper(client *redis.Client, ttl time.Duration) EventDeduper {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisEventDeduper{
		client: client,
		ttl:    ttl,
		prefix: "slack:event:",
	}
}

func (d *redisEventDeduper) Claim(ctx context.Context, eventID string) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return d.client.SetNX(ctx, d.prefix+eventID, 1, d.ttl).Result()
}

func (d *redisEventDeduper) Release(ctx context.Context, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return d.client.Del(ctx, d.prefix+eventID).Err()
}
