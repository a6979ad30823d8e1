package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyRepo keeps replayable response bodies in Redis with a TTL.
type IdempotencyRepo struct {
	client *goredis.Client
}

func NewIdempotencyRepo(client *goredis.Client) *IdempotencyRepo {
	return &IdempotencyRepo{client: client}
}

func (r *IdempotencyRepo) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "idempotency get")
	}
	return val, nil
}

// SetNX stores value only when key is free and reports whether it did.
func (r *IdempotencyRepo) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "idempotency setnx")
	}
	return ok, nil
}

// Set overwrites key, replacing a reservation with the final response.
func (r *IdempotencyRepo) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, "idempotency set")
	}
	return nil
}

func (r *IdempotencyRepo) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(err, "idempotency delete")
	}
	return nil
}
