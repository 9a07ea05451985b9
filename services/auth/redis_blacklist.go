package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/customeros/recipestack/interfaces"
)

const blacklistKeyPrefix = "recipestack:token:blacklist:"

type redisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) interfaces.TokenBlacklist {
	return &redisBlacklist{client: client}
}

// NewRedisClient parses a redis:// url and checks the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to connect to redis")
	}
	return client, nil
}

// Add claims jti with SETNX so that exactly one caller wins for a given token.
// Tokens that already expired are never claimed.
func (b *redisBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	claimed, err := b.client.SetNX(ctx, blacklistKeyPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to blacklist refresh token")
	}
	return claimed, nil
}

func (b *redisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
