package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const vaultKeyPrefix = "session:"

// Vault is the durable session slot: one string-keyed record per browser
// session holding the serialized user record. Load returns (nil, nil) when
// the slot is absent.
type Vault interface {
	Load(ctx context.Context, sid string) ([]byte, error)
	Save(ctx context.Context, sid string, data []byte) error
	Clear(ctx context.Context, sid string) error
}

// RedisClient is the subset of Redis operations the vault needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisVault stores session slots in Redis with a TTL so they expire with
// the browser session.
type RedisVault struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedisVault creates a Redis-backed vault.
func NewRedisVault(client RedisClient, ttl time.Duration) *RedisVault {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisVault{client: client, ttl: ttl}
}

func (v *RedisVault) Load(ctx context.Context, sid string) ([]byte, error) {
	data, err := v.client.Get(ctx, vaultKeyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (v *RedisVault) Save(ctx context.Context, sid string, data []byte) error {
	return v.client.Set(ctx, vaultKeyPrefix+sid, data, v.ttl).Err()
}

func (v *RedisVault) Clear(ctx context.Context, sid string) error {
	return v.client.Del(ctx, vaultKeyPrefix+sid).Err()
}

// MemoryVault is an in-process vault for tests and single-node development.
type MemoryVault struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{slots: make(map[string][]byte)}
}

func (v *MemoryVault) Load(_ context.Context, sid string) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	data, ok := v.slots[sid]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (v *MemoryVault) Save(_ context.Context, sid string, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	v.slots[sid] = stored
	return nil
}

func (v *MemoryVault) Clear(_ context.Context, sid string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.slots, sid)
	return nil
}

// Has reports whether a slot exists. Test helper.
func (v *MemoryVault) Has(sid string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.slots[sid]
	return ok
}
