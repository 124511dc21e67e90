package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
)

// Deduper remembers signatures so a transaction mentioned by several
// subscriptions is processed once. Seen marks sig and reports whether it
// had already been marked within the TTL.
type Deduper interface {
	Seen(ctx context.Context, sig solana.Signature) (bool, error)
}

var (
	_ Deduper = (*MemoryDeduper)(nil)
	_ Deduper = (*RedisDeduper)(nil)
)

// MemoryDeduper is a process-local Deduper. A zero ttl keeps entries for the
// life of the process.
type MemoryDeduper struct {
	mu        sync.Mutex
	ttl       time.Duration
	seen      map[solana.Signature]time.Time
	lastPrune time.Time
	now       func() time.Time
}

func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	return &MemoryDeduper{
		ttl:  ttl,
		seen: make(map[solana.Signature]time.Time),
		now:  time.Now,
	}
}

func (d *MemoryDeduper) Seen(_ context.Context, sig solana.Signature) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.ttl <= 0 {
		if _, ok := d.seen[sig]; ok {
			return true, nil
		}
		d.seen[sig] = now
		return false, nil
	}
	if now.Sub(d.lastPrune) >= d.ttl {
		for s, at := range d.seen {
			if now.Sub(at) >= d.ttl {
				delete(d.seen, s)
			}
		}
		d.lastPrune = now
	}

	if at, ok := d.seen[sig]; ok && now.Sub(at) < d.ttl {
		return true, nil
	}
	d.seen[sig] = now
	return false, nil
}

// Len is the number of signatures currently remembered.
func (d *MemoryDeduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

const redisSeenPrefix = "dexevents:seen:"

// RedisDeduper shares seen signatures between watcher processes.
type RedisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeduper(rdb *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{rdb: rdb, ttl: ttl}
}

func (d *RedisDeduper) key(sig solana.Signature) string {
	return redisSeenPrefix + sig.String()
}

func (d *RedisDeduper) Seen(ctx context.Context, sig solana.Signature) (bool, error) {
	set, err := d.rdb.SetNX(ctx, d.key(sig), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx error: %w", err)
	}
	return !set, nil
}
