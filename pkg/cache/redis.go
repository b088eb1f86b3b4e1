package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mess-ledger/backend/internal/types"
	"github.com/redis/go-redis/v9"
)

// Redis stores JSON encoded entries in a Redis database.
//
// All keys are namespaced with a prefix so that Flush only removes entries of this cache.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis cache on an existing client.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// ConnectRedis creates a client for the address and verifies the connection.
func ConnectRedis(ctx context.Context, address string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: "",
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

func (c *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Redis) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}

// Invalidate deletes all keys of the month.
func (c *Redis) Invalidate(ctx context.Context, month types.Month) error {
	return c.deleteMatching(ctx, c.prefix+monthPattern(month))
}

// Flush deletes all keys of the cache.
func (c *Redis) Flush(ctx context.Context) error {
	return c.deleteMatching(ctx, c.prefix+"*")
}

// deleteMatching scans for keys matching the pattern and deletes them in batches.
func (c *Redis) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())

		if len(keys) == 100 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}
