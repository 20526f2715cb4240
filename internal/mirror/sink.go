package mirror

import (
	"context"
	"time"

	"github.com/perplexiplay/backend/internal/auth/domain"
)

// Document is the denormalized user record written to the mirror store.
type Document struct {
	Username  string `json:"username"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

func NewDocument(user domain.User) Document {
	return Document{
		Username:  user.Username,
		UserID:    string(user.ID),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Sink is a secondary, non-authoritative store for user metadata.
type Sink interface {
	Save(ctx context.Context, doc Document) error
}

// NopSink is used when the mirror is not configured.
type NopSink struct{}

func (NopSink) Save(context.Context, Document) error { return nil }
