package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vadim/social-insights/internal/domain/analytics/dao"
	"github.com/vadim/social-insights/internal/domain/analytics/engine"
	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

const (
	defaultListLimit  = 50
	defaultBatchLimit = 8
)

// Service handles business logic for stored posts and their analysis
type Service struct {
	posts      dao.PostRepository
	engine     *engine.Engine
	batchLimit int
}

// New creates a new analytics service. batchLimit bounds concurrent
// analyses in AnalyzeBatch; zero means the default.
func New(posts dao.PostRepository, eng *engine.Engine, batchLimit int) *Service {
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}
	return &Service{
		posts:      posts,
		engine:     eng,
		batchLimit: batchLimit,
	}
}

// CreatePost validates and stores a new post
func (s *Service) CreatePost(ctx context.Context, post entity.PostMetrics) (*entity.PostMetrics, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpsertPost validates and stores a post, replacing an existing one
func (s *Service) UpsertPost(ctx context.Context, post entity.PostMetrics) (*entity.PostMetrics, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.posts.Upsert(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPost retrieves a post by ID
func (s *Service) GetPost(ctx context.Context, id string) (*entity.PostMetrics, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, entity.ErrPostNotFound
	}
	return post, nil
}

// DeletePost deletes a post
func (s *Service) DeletePost(ctx context.Context, id string) error {
	if _, err := s.GetPost(ctx, id); err != nil {
		return err
	}
	return s.posts.Delete(ctx, id)
}

// ListInput represents input for listing posts
type ListInput struct {
	Platform *entity.Platform
	Topic    *string
	Format   *entity.Format
	Limit    int
	Offset   int
}

// ListOutput represents output from listing posts
type ListOutput struct {
	Posts []entity.PostMetrics
	Total int64
}

// ListPosts retrieves posts with filtering
func (s *Service) ListPosts(ctx context.Context, in ListInput) (*ListOutput, error) {
	filter := dao.PostFilter{
		Platform: in.Platform,
		Topic:    in.Topic,
		Format:   in.Format,
	}

	opts := dao.ListOptions{Limit: in.Limit, Offset: in.Offset}
	if opts.Limit == 0 {
		opts.Limit = defaultListLimit
	}

	posts, err := s.posts.List(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListOutput{Posts: posts, Total: total}, nil
}

// AnalyzeInline analyzes a caller-supplied post against a caller-supplied cohort
func (s *Service) AnalyzeInline(post entity.PostMetrics, cohort []entity.PostMetrics) (*entity.AnalysisOutput, error) {
	return s.engine.Analyze(post, cohort)
}

// AnalyzePost analyzes a stored post against every stored post on its platform.
// The subject is part of that cohort.
func (s *Service) AnalyzePost(ctx context.Context, id string) (*entity.AnalysisOutput, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	cohort, err := s.platformCohort(ctx, post.Platform)
	if err != nil {
		return nil, err
	}

	return s.engine.Analyze(*post, cohort)
}

// BatchResult is the outcome of analyzing one post in a batch
type BatchResult struct {
	PostID string
	Output *entity.AnalysisOutput
	Err    error
}

// AnalyzeBatch analyzes stored posts concurrently. A failure for one post is
// reported in its own result and never aborts the others. Results keep the
// order of ids.
func (s *Service) AnalyzeBatch(ctx context.Context, ids []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(ids))
	cohorts := make(map[entity.Platform][]entity.PostMetrics)
	subjects := make([]*entity.PostMetrics, len(ids))

	// Load subjects and one cohort per platform up front
	for i, id := range ids {
		results[i].PostID = id

		post, err := s.GetPost(ctx, id)
		if err != nil {
			results[i].Err = err
			continue
		}
		subjects[i] = post

		if _, ok := cohorts[post.Platform]; ok {
			continue
		}
		cohort, err := s.platformCohort(ctx, post.Platform)
		if err != nil {
			return nil, err
		}
		cohorts[post.Platform] = cohort
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)

	for i := range ids {
		if subjects[i] == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			post := subjects[i]
			results[i].Output, results[i].Err = s.engine.Analyze(*post, cohorts[post.Platform])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *Service) platformCohort(ctx context.Context, platform entity.Platform) ([]entity.PostMetrics, error) {
	cohort, err := s.posts.List(ctx, dao.PostFilter{Platform: &platform}, dao.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("loading cohort: %w", err)
	}
	return cohort, nil
}
