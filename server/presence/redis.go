package presence

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
)

// onlineKey is the Redis set holding online user ids.
const onlineKey = "whisperd:online"

// RedisRegistry is a cluster-wide registry backed by a Redis set, for
// deployments where several gateway processes share one presence view.
type RedisRegistry struct {
	client *redis.Client
}

func NewRedisRegistry(addr string) *RedisRegistry {
	return &RedisRegistry{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (r *RedisRegistry) Add(ctx context.Context, userID string) error {
	return r.client.SAdd(ctx, onlineKey, userID).Err()
}

func (r *RedisRegistry) Remove(ctx context.Context, userID string) error {
	return r.client.SRem(ctx, onlineKey, userID).Err()
}

func (r *RedisRegistry) Online(ctx context.Context) ([]string, error) {
	users, err := r.client.SMembers(ctx, onlineKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}

func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
