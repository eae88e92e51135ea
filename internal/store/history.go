package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront-merchandising-service/internal/domain"
	"storefront-merchandising-service/internal/merch"
)

// ErrHistoryConflict is returned when concurrent writers keep invalidating a Record call.
var ErrHistoryConflict = errors.New("store: view history update conflicted too many times")

const (
	historyKeyPrefix  = "merch:recently_viewed:"
	historyMaxRetries = 5
)

// RedisHistoryStore keeps each viewer's history as a JSON list under its own key.
// Every write refreshes the key's TTL.
type RedisHistoryStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisHistoryStore creates a RedisHistoryStore. A non-positive ttl keeps keys forever.
func NewRedisHistoryStore(client *redis.Client, ttl time.Duration) *RedisHistoryStore {
	return &RedisHistoryStore{client: client, ttl: ttl}
}

func historyKey(viewerID string) string { return historyKeyPrefix + viewerID }

// Recent returns the viewer's history, most recent first. Unknown viewers get an empty list.
func (s *RedisHistoryStore) Recent(ctx context.Context, viewerID string) ([]domain.Product, error) {
	products, err := readHistory(ctx, s.client, historyKey(viewerID))
	if err != nil {
		return nil, fmt.Errorf("store: Recent failed: %w", err)
	}
	return products, nil
}

// Record prepends product to the viewer's history and returns the updated list.
// The read-modify-write runs under WATCH and is retried when another writer wins the race.
func (s *RedisHistoryStore) Record(ctx context.Context, viewerID string, product domain.Product) ([]domain.Product, error) {
	key := historyKey(viewerID)
	var updated []domain.Product

	txf := func(tx *redis.Tx) error {
		current, err := readHistory(ctx, tx, key)
		if err != nil {
			return err
		}
		updated = merch.InsertRecentlyViewed(current, product)
		data, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, max(s.ttl, 0))
			return nil
		})
		return err
	}

	for attempt := 0; attempt < historyMaxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, fmt.Errorf("store: Record failed: %w", err)
	}
	return nil, ErrHistoryConflict
}

// getter is the slice of the redis API shared by *redis.Client and *redis.Tx that readHistory needs.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readHistory(ctx context.Context, c getter, key string) ([]domain.Product, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return []domain.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal history %s: %w", key, err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// MemoryHistoryStore is a process-local HistoryStore for development and tests.
type MemoryHistoryStore struct {
	mu      sync.Mutex
	history map[string][]domain.Product
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{history: make(map[string][]domain.Product)}
}

func (s *MemoryHistoryStore) Recent(_ context.Context, viewerID string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Product{}, s.history[viewerID]...), nil
}

func (s *MemoryHistoryStore) Record(_ context.Context, viewerID string, product domain.Product) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := merch.InsertRecentlyViewed(s.history[viewerID], product)
	s.history[viewerID] = updated
	return append([]domain.Product{}, updated...), nil
}
