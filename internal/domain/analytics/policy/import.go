package policy

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

const (
	defaultImportLimit = 25
	maxImportLimit     = 200
)

// ErrMissingCredentials is returned when an import lacks the account or token
var ErrMissingCredentials = errors.New("user_id and access_token are required")

// MediaSource fetches post metrics from a social platform account
type MediaSource interface {
	FetchPosts(ctx context.Context, in FetchInput) ([]entity.PostMetrics, error)
}

// FetchInput represents input for a media source
type FetchInput struct {
	UserID      string
	AccessToken string
	Topic       string
	Limit       int
}

// PostWriter stores imported posts
type PostWriter interface {
	UpsertPost(ctx context.Context, post entity.PostMetrics) (*entity.PostMetrics, error)
}

// Importer pulls posts from a platform into the repository
type Importer struct {
	source MediaSource
	posts  PostWriter
	logger *slog.Logger
}

// NewImporter creates a new importer
func NewImporter(source MediaSource, posts PostWriter, logger *slog.Logger) *Importer {
	return &Importer{
		source: source,
		posts:  posts,
		logger: logger,
	}
}

// ImportInput represents input for an import run
type ImportInput = FetchInput

// ImportOutput reports what an import run stored
type ImportOutput struct {
	Imported []string `json:"imported"`
	Skipped  []string `json:"skipped"`
}

// Import fetches posts and upserts each valid one; invalid posts are skipped
func (i *Importer) Import(ctx context.Context, in ImportInput) (*ImportOutput, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.AccessToken) == "" {
		return nil, ErrMissingCredentials
	}
	if in.Limit <= 0 {
		in.Limit = defaultImportLimit
	}
	in.Limit = min(in.Limit, maxImportLimit)

	posts, err := i.source.FetchPosts(ctx, in)
	if err != nil {
		i.logger.ErrorContext(ctx, "fetching posts for import failed", "user_id", in.UserID, "error", err)
		return nil, err
	}

	out := &ImportOutput{Imported: []string{}, Skipped: []string{}}
	for _, p := range posts {
		if _, err := i.posts.UpsertPost(ctx, p); err != nil {
			if errors.Is(err, entity.ErrInvalidMetrics) {
				i.logger.WarnContext(ctx, "skipping invalid imported post", "post_id", p.PostID, "error", err)
				out.Skipped = append(out.Skipped, p.PostID)
				continue
			}
			return nil, err
		}
		out.Imported = append(out.Imported, p.PostID)
	}

	i.logger.InfoContext(ctx, "posts imported", "user_id", in.UserID, "imported", len(out.Imported), "skipped", len(out.Skipped))
	return out, nil
}
