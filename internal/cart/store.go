package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store persists carts keyed by shopper session id.
type Store interface {
	// Load returns the session cart, or an empty cart when none is stored.
	Load(ctx context.Context, sessionID string) (*Cart, error)
	// Update applies fn to the stored cart atomically and persists the result.
	// An empty result removes the stored cart.
	Update(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error)
	// Delete drops the stored cart.
	Delete(ctx context.Context, sessionID string) error
}

type redisCarts interface {
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Mutate(ctx context.Context, key string, ttl time.Duration, fn func(current []byte) ([]byte, error)) error
	CartKey(sessionID string) string
}

// RedisStore keeps each cart as a JSON document with a sliding TTL.
type RedisStore struct {
	client redisCarts
	ttl    time.Duration
	isNil  func(error) bool
}

// NewRedisStore builds a Redis-backed store. isNil reports the client's
// missing-key error.
func NewRedisStore(client redisCarts, ttl time.Duration, isNil func(error) bool) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if isNil == nil {
		return nil, errors.New("missing-key predicate required")
	}
	return &RedisStore{client: client, ttl: ttl, isNil: isNil}, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if s.isNil(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return decodeCart([]byte(raw))
}

func (s *RedisStore) Update(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	var result *Cart
	err := s.client.Mutate(ctx, s.client.CartKey(sessionID), s.ttl, func(current []byte) ([]byte, error) {
		c := New()
		if current != nil {
			decoded, err := decodeCart(current)
			if err != nil {
				return nil, err
			}
			c = decoded
		}
		if err := fn(c); err != nil {
			return nil, err
		}
		result = c
		if c.IsEmpty() {
			return nil, nil
		}
		return json.Marshal(c)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.client.CartKey(sessionID))
}

func decodeCart(raw []byte) (*Cart, error) {
	c := New()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// MemoryStore is a process-local store for development and tests. Entries
// expire after ttl of inactivity when ttl is positive.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	carts map[string]memoryEntry
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, carts: map[string]memoryEntry{}}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(memoryKey(sessionID))
}

func (s *MemoryStore) Update(_ context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(sessionID)
	c, err := s.load(key)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		delete(s.carts, key)
		return c, nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	entry := memoryEntry{raw: raw}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.carts[key] = entry
	return c, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, memoryKey(sessionID))
	return nil
}

func (s *MemoryStore) load(key string) (*Cart, error) {
	entry, ok := s.carts[key]
	if !ok {
		return New(), nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.carts, key)
		return New(), nil
	}
	return decodeCart(entry.raw)
}

func memoryKey(sessionID string) string {
	return strings.TrimSpace(sessionID)
}
