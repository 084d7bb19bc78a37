package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lifeadmin/internal/core"
)

// RedisKeyPrefix namespaces cloud documents.
const RedisKeyPrefix = "lifeadmin:cloud:"

// Redis keeps each user's Document as a JSON string.
type Redis struct {
	client *redis.Client
	now    core.Clock
}

func NewRedis(client *redis.Client, now core.Clock) *Redis {
	if now == nil {
		now = core.SystemClock
	}
	return &Redis{client: client, now: now}
}

func (r *Redis) Pull(ctx context.Context, uid string) (*Document, error) {
	b, err := r.client.Get(ctx, RedisKeyPrefix+uid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cloud doc: %w", err)
	}
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode cloud doc: %w", err)
	}
	return &d, nil
}

func (r *Redis) Push(ctx context.Context, uid string, doc Document) error {
	doc.ServerUpdatedAt = r.now().UnixMilli()
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cloud doc: %w", err)
	}
	if err := r.client.Set(ctx, RedisKeyPrefix+uid, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set cloud doc: %w", err)
	}
	return nil
}
