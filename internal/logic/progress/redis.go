package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClaimStore 执行认领与状态标记（多 worker 间幂等控制）
type ClaimStore interface {
	// Claim 原子认领，已被认领返回 false
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Status(ctx context.Context, key string) (ExecStatus, error)
	Mark(ctx context.Context, key string, status ExecStatus, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// Redis key 前缀
const claimPrefix = "cronos:exec"

// RedisClaimStore 基于 SETNX 的认领实现
type RedisClaimStore struct {
	rdb *redis.Client
}

func NewRedisClaimStore(rdb *redis.Client) *RedisClaimStore {
	return &RedisClaimStore{rdb: rdb}
}

func (r *RedisClaimStore) getKey(key string) string {
	return claimPrefix + ":" + key
}

func (r *RedisClaimStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, r.getKey(key), int(ExecClaimed), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx error: %w", err)
	}
	return ok, nil
}

func (r *RedisClaimStore) Status(ctx context.Context, key string) (ExecStatus, error) {
	val, err := r.rdb.Get(ctx, r.getKey(key)).Int()
	switch {
	case err == redis.Nil:
		return ExecUnknown, nil
	case err != nil:
		return ExecUnknown, fmt.Errorf("redis get error: %w", err)
	default:
		return ExecStatus(val), nil
	}
}

func (r *RedisClaimStore) Mark(ctx context.Context, key string, status ExecStatus, ttl time.Duration) error {
	return r.rdb.Set(ctx, r.getKey(key), int(status), ttl).Err()
}

func (r *RedisClaimStore) Release(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.getKey(key)).Err()
}

// MemoryClaimStore 进程内实现，未配置 Redis 时使用
type MemoryClaimStore struct {
	mu    sync.Mutex
	items map[string]memItem
	now   func() time.Time
}

type memItem struct {
	status   ExecStatus
	expireAt time.Time
}

func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{items: make(map[string]memItem), now: time.Now}
}

func (m *MemoryClaimStore) getUnsafe(key string) (memItem, bool) {
	it, ok := m.items[key]
	if !ok {
		return it, false
	}
	if !it.expireAt.IsZero() && !m.now().Before(it.expireAt) {
		delete(m.items, key)
		return it, false
	}
	return it, true
}

func (m *MemoryClaimStore) expireAt(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *MemoryClaimStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.getUnsafe(key); ok {
		return false, nil
	}
	m.items[key] = memItem{status: ExecClaimed, expireAt: m.expireAt(ttl)}
	return true, nil
}

func (m *MemoryClaimStore) Status(_ context.Context, key string) (ExecStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.getUnsafe(key)
	if !ok {
		return ExecUnknown, nil
	}
	return it.status, nil
}

func (m *MemoryClaimStore) Mark(_ context.Context, key string, status ExecStatus, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memItem{status: status, expireAt: m.expireAt(ttl)}
	return nil
}

func (m *MemoryClaimStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Sweep 清理过期条目
func (m *MemoryClaimStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.items {
		if _, ok := m.getUnsafe(k); !ok {
			n++
		}
	}
	return n
}
