package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const ledgerKeyPrefix = "formreport:ledger:"

// Ledger remembers keys for a while so periodic jobs act on each of them once.
type Ledger interface {
	// Claim records key at now for ttl. It reports false when the key is already recorded.
	Claim(ctx context.Context, key string, now time.Time, ttl time.Duration) (bool, error)
	// Release forgets key so a later run can claim it again.
	Release(ctx context.Context, key string) error
}

// MemoryLedger keeps claims in process memory. Claims are lost on restart.
type MemoryLedger struct {
	mu     sync.Mutex
	claims map[string]time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		claims: make(map[string]time.Time),
	}
}

// Claim expires claims against now, the time of the job run.
func (l *MemoryLedger) Claim(_ context.Context, key string, now time.Time, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for claimed, expires := range l.claims {
		if !now.Before(expires) {
			delete(l.claims, claimed)
		}
	}

	if _, ok := l.claims[key]; ok {
		return false, nil
	}

	l.claims[key] = now.Add(ttl)

	return true, nil
}

func (l *MemoryLedger) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.claims, key)

	return nil
}

// RedisLedger shares claims between workers through redis SETNX.
type RedisLedger struct {
	client redis.UniversalClient
}

func NewRedisLedger(client redis.UniversalClient) *RedisLedger {
	return &RedisLedger{client: client}
}

// NewRedisLedgerFromURL connects to url, e.g. redis://localhost:6379/0, and checks the connection.
func NewRedisLedgerFromURL(ctx context.Context, url string) (*RedisLedger, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisLedger(client), nil
}

// Claim relies on the redis key expiry, so ttl runs on the server clock.
func (l *RedisLedger) Claim(ctx context.Context, key string, now time.Time, ttl time.Duration) (bool, error) {
	claimed, err := l.client.SetNX(ctx, ledgerKeyPrefix+key, now.UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}

	return claimed, nil
}

func (l *RedisLedger) Release(ctx context.Context, key string) error {
	err := l.client.Del(ctx, ledgerKeyPrefix+key).Err()
	if err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}

	return nil
}

func (l *RedisLedger) Close() error {
	return l.client.Close()
}
