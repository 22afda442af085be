// Package store provides durable persistence for conversations and the
// singleton settings record.
package store

import (
	"context"

	"github.com/aichat/aichat/internal/model"
)

// Store is the persistence contract: upsert-by-id conversation records plus
// at most one settings record under a reserved key.
type Store interface {
	Save(ctx context.Context, conv *model.Conversation) error
	Get(ctx context.Context, id string) (*model.Conversation, error)
	List(ctx context.Context) ([]model.Conversation, error)
	Delete(ctx context.Context, id string) error

	SaveSettings(ctx context.Context, settings model.Settings) error
	GetSettings(ctx context.Context) (model.Settings, error)

	Close() error
}

var _ Store = (*SQLiteStore)(nil)
