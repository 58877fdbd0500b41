package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisJSONStore keeps JSON-encoded values under prefix:id with a sliding TTL.
type RedisJSONStore[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisJSONStore[T any](client *redis.Client, prefix string, ttl time.Duration) *RedisJSONStore[T] {
	return &RedisJSONStore[T]{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisJSONStore[T]) key(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", s.prefix, id.String())
}

func (s *RedisJSONStore[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.prefix, err)
	}
	return &v, nil
}

func (s *RedisJSONStore[T]) Save(ctx context.Context, id uuid.UUID, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(id), data, s.ttl).Err()
}

func (s *RedisJSONStore[T]) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryJSONStore is the in-process counterpart of RedisJSONStore. Values
// are stored encoded so a loaded value never aliases the stored one.
type MemoryJSONStore[T any] struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryJSONStore[T any](ttl time.Duration) *MemoryJSONStore[T] {
	return &MemoryJSONStore[T]{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryJSONStore[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.expired(e) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var v T
	if err := json.Unmarshal(e.data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *MemoryJSONStore[T]) Save(ctx context.Context, id uuid.UUID, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := memoryEntry{data: data}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryJSONStore[T]) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || s.expired(e) {
		delete(s.entries, id)
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *MemoryJSONStore[T]) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}
