package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps the list as a Redis list under one key
type RedisStore struct {
	client *redis.Client
	key    string
}

// OpenRedis connects and pings with a short deadline
func OpenRedis(ctx context.Context, addr, password string, db int, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisStore{client: client, key: key}, nil
}

func (r *RedisStore) Load(ctx context.Context) ([]int, error) {
	vals, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]int, 0, len(vals))
	for _, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q", ErrCorrupt, r.key, v)
		}
		entries = append(entries, n)
	}
	return entries, nil
}

// Save replaces the list atomically with MULTI/EXEC
func (r *RedisStore) Save(ctx context.Context, entries []int) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key)
	if len(entries) > 0 {
		vals := make([]any, len(entries))
		for i, v := range entries {
			vals[i] = v
		}
		pipe.RPush(ctx, r.key, vals...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Close() error { return r.client.Close() }
