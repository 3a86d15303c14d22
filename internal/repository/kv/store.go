package kv

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store is a durable key-value capability holding whole records as bytes
type Store interface {
	// Get returns nil, nil when the key does not exist
	Get(ctx context.Context, key string) ([]byte, error)

	// SetMany writes all entries atomically
	SetMany(ctx context.Context, entries map[string][]byte) error
}

// RedisStore keeps records as plain Redis strings
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis backed store
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get reads a record
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

// SetMany writes the records inside MULTI/EXEC
func (s *RedisStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, val := range entries {
			pipe.Set(ctx, key, val, 0)
		}
		return nil
	})
	return err
}

// MemoryStore is an in-process Store for development and tests
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Get reads a record
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), val...), nil
}

// SetMany writes all records under one lock
func (s *MemoryStore) SetMany(_ context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, val := range entries {
		s.records[key] = append([]byte(nil), val...)
	}
	return nil
}
