// Package selection keeps the visitor's in-progress pick (ride ids or tier
// quantities) and booking contact fields, keyed by browser session id.
package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonderpark/storefront/internal/domain"
)

const selectionKeyPrefix = "selection:"

// Record is everything the booking form holds between requests.
type Record struct {
	Selection domain.Selection    `json:"selection"`
	Contact   domain.PersonalInfo `json:"contact"`
}

// NewRecord returns an empty record with an initialized quantity map.
func NewRecord() *Record {
	return &Record{
		Selection: domain.Selection{TierQuantities: make(map[string]int)},
	}
}

// Repository stores one Record per browser session. Get returns a fresh
// empty record when none exists.
type Repository interface {
	Get(ctx context.Context, sid string) (*Record, error)
	Save(ctx context.Context, sid string, rec *Record) error
	Clear(ctx context.Context, sid string) error
}

// RedisClient is the subset of Redis operations the repository needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRepository stores records in Redis with the same TTL as the session
// vault, so an abandoned selection dies with its session.
type RedisRepository struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedisRepository creates a Redis-backed repository.
func NewRedisRepository(client RedisClient, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) Get(ctx context.Context, sid string) (*Record, error) {
	data, err := r.client.Get(ctx, selectionKeyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewRecord(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}

	rec := NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		// A garbled record is dropped rather than wedging the form.
		_ = r.client.Del(ctx, selectionKeyPrefix+sid).Err()
		return NewRecord(), nil
	}
	if rec.Selection.TierQuantities == nil {
		rec.Selection.TierQuantities = make(map[string]int)
	}
	return rec, nil
}

func (r *RedisRepository) Save(ctx context.Context, sid string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	return r.client.Set(ctx, selectionKeyPrefix+sid, data, r.ttl).Err()
}

func (r *RedisRepository) Clear(ctx context.Context, sid string) error {
	return r.client.Del(ctx, selectionKeyPrefix+sid).Err()
}

// MemoryRepository is an in-process repository for tests and single-node
// development.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*Record)}
}

func (r *MemoryRepository) Get(_ context.Context, sid string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[sid]
	if !ok {
		return NewRecord(), nil
	}
	return cloneRecord(rec), nil
}

func (r *MemoryRepository) Save(_ context.Context, sid string, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[sid] = cloneRecord(rec)
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, sid)
	return nil
}

func cloneRecord(rec *Record) *Record {
	out := &Record{Contact: rec.Contact}
	out.Selection.RideIDs = append([]string(nil), rec.Selection.RideIDs...)
	out.Selection.TierQuantities = make(map[string]int, len(rec.Selection.TierQuantities))
	for k, v := range rec.Selection.TierQuantities {
		out.Selection.TierQuantities[k] = v
	}
	return out
}
