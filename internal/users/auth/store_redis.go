// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/sec"
)

// RedisIdentityCache implements [IdentityCache] using Redis.
//
// Entries are sanitized identities only, never password hashes or refresh
// tokens, so a compromised cache cannot leak credentials.
type RedisIdentityCache struct {
	client *redis.Client
}

// NewIdentityCache creates a new Redis-backed IdentityCache.
func NewIdentityCache(client *redis.Client) *RedisIdentityCache {
	return &RedisIdentityCache{client: client}
}

// Set stores the identity under its user ID with the given TTL.
func (cache *RedisIdentityCache) Set(ctx context.Context, identity *sec.Identity, ttl time.Duration) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("redis_identity_cache_marshal_failed: %w", err)
	}

	key := constants.RedisPrefixIdentity + identity.ID
	if err := cache.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_identity_cache_set_failed: %w", err)
	}

	return nil
}

// Get retrieves the cached identity, or [ErrCacheMiss] if absent or expired.
func (cache *RedisIdentityCache) Get(ctx context.Context, userID string) (*sec.Identity, error) {
	key := constants.RedisPrefixIdentity + userID

	payload, err := cache.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis_identity_cache_get_failed: %w", err)
	}

	identity := &sec.Identity{}
	if err := json.Unmarshal(payload, identity); err != nil {
		// A corrupt entry behaves like a miss; the caller re-hydrates from the store.
		return nil, ErrCacheMiss
	}

	return identity, nil
}

// Delete drops the cached identity.
func (cache *RedisIdentityCache) Delete(ctx context.Context, userID string) error {
	key := constants.RedisPrefixIdentity + userID

	if err := cache.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis_identity_cache_delete_failed: %w", err)
	}

	return nil
}
