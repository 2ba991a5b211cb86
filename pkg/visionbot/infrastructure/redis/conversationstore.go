package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

const keyPrefix = "visionbot:conversation:"

// ConversationStore keeps the last image of every conversation in Redis, so that it survives restarts and can be
// shared by several bot instances. Records expire after conversationTTL, if set.
type ConversationStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewConversationStore(client *redis.Client, config *common.Config) *ConversationStore {
	return &ConversationStore{
		client: client,
		ttl:    config.GetDurationOrDefault(domain.ConfigKeyConversationTTL, 0),
	}
}

// NewClient connects to redisAddr and checks the connection.
func NewClient(ctx context.Context, config *common.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: config.GetStringOrDefault(domain.ConfigKeyRedisAddr, "localhost:6379"),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *ConversationStore) Remember(ctx context.Context, where string, record domain.ImageRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+where, value, c.ttl).Err()
}

func (c *ConversationStore) Recall(ctx context.Context, where string) (*domain.ImageRecord, error) {
	value, err := c.client.Get(ctx, keyPrefix+where).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record domain.ImageRecord
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, fmt.Errorf("corrupted record for %q: %w", where, err)
	}
	return &record, nil
}

func (c *ConversationStore) Forget(ctx context.Context, where string) error {
	return c.client.Del(ctx, keyPrefix+where).Err()
}
