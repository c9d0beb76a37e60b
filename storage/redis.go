package storage

import (
	"context"
	"fmt"
	"time"

	"SleepFM/config"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 5 * time.Second

// RedisStore 把状态快照写进Redis，键统一加前缀。
// 用于多端共享同一份客户端状态（小程序和网页端登录同一账号时）。
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore 连接Redis并做一次Ping探活。ttl 为0表示快照不过期。
func NewRedisStore(cfg *config.Config, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, prefix: "sleepfm:state:", ttl: ttl}, nil
}

// Close 关闭底层连接。
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) key(key string) string {
	return r.prefix + key
}

func (r *RedisStore) Get(key string, v any) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := unmarshalSnapshot(raw, v); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisStore) Set(key string, v any) error {
	raw, err := marshalSnapshot(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key(key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// SelfTest 做一轮读写删，用于 CLI 的连通性检查。
func (r *RedisStore) SelfTest() error {
	type probe struct {
		OK bool `json:"ok"`
	}
	if err := r.Set("self_test", probe{OK: true}); err != nil {
		return err
	}
	var got probe
	found, err := r.Get("self_test", &got)
	if err != nil {
		return err
	}
	if !found || !got.OK {
		return fmt.Errorf("unexpected value from Redis self test")
	}
	return r.Delete("self_test")
}
