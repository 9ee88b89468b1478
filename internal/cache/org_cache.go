package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OrgPrefixCache caches the user id -> org prefix mapping in Redis so scope
// resolution does not hit the employee table on every request.
type OrgPrefixCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOrgPrefixCache creates a new org prefix cache instance
func NewOrgPrefixCache(host string, port int, password string, db int, ttlSeconds int) (*OrgPrefixCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Return cache with nil client - will gracefully degrade to direct
		// database lookups
		return &OrgPrefixCache{
			client: nil,
			ttl:    time.Duration(ttlSeconds) * time.Second,
		}, nil
	}

	return &OrgPrefixCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

// NewOrgPrefixCacheWithClient wraps an existing client, mainly for sharing
// one connection between caches.
func NewOrgPrefixCacheWithClient(client *redis.Client, ttl time.Duration) *OrgPrefixCache {
	return &OrgPrefixCache{client: client, ttl: ttl}
}

func (c *OrgPrefixCache) cacheKey(userID int64) string {
	return fmt.Sprintf("orgprefix:%d", userID)
}

// Get retrieves a cached org prefix. The second return value is false on a
// miss or when the cache is unavailable.
func (c *OrgPrefixCache) Get(ctx context.Context, userID int64) (string, bool, error) {
	if c.client == nil {
		return "", false, nil
	}

	val, err := c.client.Get(ctx, c.cacheKey(userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set caches an org prefix for a user
func (c *OrgPrefixCache) Set(ctx context.Context, userID int64, prefix string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.cacheKey(userID), prefix, c.ttl).Err()
}

// Invalidate removes the cached prefix for a user
func (c *OrgPrefixCache) Invalidate(ctx context.Context, userID int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.cacheKey(userID)).Err()
}

// Client exposes the underlying redis client (nil when unavailable) so other
// stores can share the connection.
func (c *OrgPrefixCache) Client() *redis.Client {
	return c.client
}

// IsAvailable returns true if the cache is available
func (c *OrgPrefixCache) IsAvailable() bool {
	return c.client != nil
}

// Close closes the Redis connection
func (c *OrgPrefixCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
