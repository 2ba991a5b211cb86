package inmemory

import (
	"context"
	"sync"
	"time"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

type ConversationStore struct {
	mutex   sync.Mutex
	records map[string]domain.ImageRecord // where => last image
	ttl     time.Duration
	now     func() time.Time
}

func NewConversationStore(config *common.Config) *ConversationStore {
	return &ConversationStore{
		records: make(map[string]domain.ImageRecord),
		ttl:     config.GetDurationOrDefault(domain.ConfigKeyConversationTTL, 0),
		now:     time.Now,
	}
}

func (c *ConversationStore) Remember(ctx context.Context, where string, record domain.ImageRecord) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.records[where] = record
	return nil
}

func (c *ConversationStore) Recall(ctx context.Context, where string) (*domain.ImageRecord, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	record, ok := c.records[where]
	if !ok {
		return nil, nil
	}
	if c.ttl > 0 && c.now().Sub(record.SubmittedAt) > c.ttl {
		delete(c.records, where)
		return nil, nil
	}
	return &record, nil
}

func (c *ConversationStore) Forget(ctx context.Context, where string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.records, where)
	return nil
}
