package dao

import (
	"context"
	"sort"
	"sync"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

// PostMemory implements PostRepository in memory.
// Used when no database is configured and in tests.
type PostMemory struct {
	mu    sync.RWMutex
	posts map[string]entity.PostMetrics
}

// NewPostMemory creates an in-memory repository holding the given posts
func NewPostMemory(posts ...entity.PostMetrics) *PostMemory {
	m := &PostMemory{posts: make(map[string]entity.PostMetrics, len(posts))}
	for _, p := range posts {
		m.posts[p.PostID] = p
	}
	return m
}

// Create inserts a new post
func (m *PostMemory) Create(ctx context.Context, post *entity.PostMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[post.PostID]; ok {
		return entity.ErrDuplicatePost
	}
	m.posts[post.PostID] = *post
	return nil
}

// Upsert inserts or replaces a post
func (m *PostMemory) Upsert(ctx context.Context, post *entity.PostMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts[post.PostID] = *post
	return nil
}

// GetByID retrieves a post by ID
func (m *PostMemory) GetByID(ctx context.Context, id string) (*entity.PostMetrics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	return &post, nil
}

// Delete removes a post
func (m *PostMemory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.posts, id)
	return nil
}

// List retrieves posts ordered by posting instant then ID
func (m *PostMemory) List(ctx context.Context, filter PostFilter, opts ListOptions) ([]entity.PostMetrics, error) {
	posts := m.filtered(filter)

	if opts.Offset > 0 {
		if opts.Offset >= len(posts) {
			return []entity.PostMetrics{}, nil
		}
		posts = posts[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(posts) {
		posts = posts[:opts.Limit]
	}

	return posts, nil
}

// Count returns the number of posts matching the filter
func (m *PostMemory) Count(ctx context.Context, filter PostFilter) (int64, error) {
	return int64(len(m.filtered(filter))), nil
}

func (m *PostMemory) filtered(filter PostFilter) []entity.PostMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	posts := make([]entity.PostMetrics, 0, len(m.posts))
	for _, p := range m.posts {
		if filter.Platform != nil && p.Platform != *filter.Platform {
			continue
		}
		if filter.Topic != nil && p.Topic != *filter.Topic {
			continue
		}
		if filter.Format != nil && p.Format != *filter.Format {
			continue
		}
		posts = append(posts, p)
	}

	sort.Slice(posts, func(i, j int) bool {
		return postedBefore(&posts[i], &posts[j])
	})

	return posts
}

// postedBefore orders by posting instant, posts without a timestamp last, then by ID
func postedBefore(a, b *entity.PostMetrics) bool {
	ta, okA := a.PostedAt()
	tb, okB := b.PostedAt()
	switch {
	case okA && okB && !ta.Equal(tb):
		return ta.Before(tb)
	case okA != okB:
		return okA
	}
	return a.PostID < b.PostID
}
