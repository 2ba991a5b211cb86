package domain

import (
	"context"
	"time"
)

// ImageRecord the last image submitted to a conversation.
type ImageRecord struct {
	Origin      ImageOrigin `json:"origin"`
	Filename    string      `json:"filename"`
	SubmittedAt time.Time   `json:"submittedAt"`
}

// ConversationStore remembers the last image of every conversation ("where"), so that follow-up commands don't need
// to upload the image again.
type ConversationStore interface {
	Remember(ctx context.Context, where string, record ImageRecord) error
	// Recall returns nil if the conversation has no image (or it has expired).
	Recall(ctx context.Context, where string) (*ImageRecord, error)
	Forget(ctx context.Context, where string) error
}
