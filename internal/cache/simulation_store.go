package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"risk-register-service/internal/workflow"
)

// RedisSimulationStore keeps superadmin simulation overrides in Redis, keyed
// by session so concurrent superadmin sessions never interfere. With no
// Redis available it falls back to an in-process map, which is enough for a
// single instance.
type RedisSimulationStore struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	fallback map[string]workflow.SimulationState
}

// NewRedisSimulationStore creates a simulation store. client may be nil.
func NewRedisSimulationStore(client *redis.Client, ttl time.Duration) *RedisSimulationStore {
	return &RedisSimulationStore{
		client:   client,
		ttl:      ttl,
		fallback: make(map[string]workflow.SimulationState),
	}
}

var _ workflow.SimulationStore = (*RedisSimulationStore)(nil)

func (s *RedisSimulationStore) cacheKey(sessionID string) string {
	return fmt.Sprintf("simulation:%s", sessionID)
}

// Get returns the stored override for a session, or nil when none is active.
func (s *RedisSimulationStore) Get(ctx context.Context, sessionID string) (*workflow.SimulationState, error) {
	if s.client == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if state, ok := s.fallback[sessionID]; ok {
			return &state, nil
		}
		return nil, nil
	}

	data, err := s.client.Get(ctx, s.cacheKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state workflow.SimulationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Set stores a normalized override for a session.
func (s *RedisSimulationStore) Set(ctx context.Context, sessionID string, state workflow.SimulationState) error {
	state = state.Normalized()

	if s.client == nil {
		s.mu.Lock()
		s.fallback[sessionID] = state
		s.mu.Unlock()
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.cacheKey(sessionID), data, s.ttl).Err()
}

// Clear removes the override for a session.
func (s *RedisSimulationStore) Clear(ctx context.Context, sessionID string) error {
	if s.client == nil {
		s.mu.Lock()
		delete(s.fallback, sessionID)
		s.mu.Unlock()
		return nil
	}
	return s.client.Del(ctx, s.cacheKey(sessionID)).Err()
}
