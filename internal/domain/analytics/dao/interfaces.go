package dao

import (
	"context"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

// PostFilter contains filters for listing posts
type PostFilter struct {
	Platform *entity.Platform
	Topic    *string
	Format   *entity.Format
}

// ListOptions contains pagination options
type ListOptions struct {
	Limit  int
	Offset int
}

// PostRepository defines the interface for post metrics data access
type PostRepository interface {
	// Create inserts a new post; returns entity.ErrDuplicatePost if the ID exists
	Create(ctx context.Context, post *entity.PostMetrics) error

	// Upsert inserts a post or replaces the counters of an existing one
	Upsert(ctx context.Context, post *entity.PostMetrics) error

	// GetByID retrieves a post by ID, returns nil if not found
	GetByID(ctx context.Context, id string) (*entity.PostMetrics, error)

	// Delete removes a post by ID
	Delete(ctx context.Context, id string) error

	// List retrieves posts ordered by posting instant then ID;
	// posts without a timestamp come last
	List(ctx context.Context, filter PostFilter, opts ListOptions) ([]entity.PostMetrics, error)

	// Count returns the number of posts matching the filter
	Count(ctx context.Context, filter PostFilter) (int64, error)
}
