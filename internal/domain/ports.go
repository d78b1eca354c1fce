package domain

import (
	"context"

	"github.com/google/uuid"
)

type ReviewRepository interface {
	// Write paths
	Insert(ctx context.Context, rc ReviewCreate) (Review, error)
	Update(ctx context.Context, id int64, fields map[string]string) error

	// Read paths, all scoped to a session
	Get(ctx context.Context, id int64, session uuid.UUID) (Review, error)
	List(ctx context.Context, session uuid.UUID, f ReviewFilter, page, pageSize int) (ReviewPage, error)
	ListAll(ctx context.Context, session uuid.UUID) ([]Review, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Completer issues a single-shot prompt to the language-model provider.
// Empty completions come back as errors so callers can fall back.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
