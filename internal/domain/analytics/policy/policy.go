package policy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
	"github.com/vadim/social-insights/internal/domain/analytics/service"
	"github.com/vadim/social-insights/internal/metrics"
)

// Analysis sources used as metric labels
const (
	SourceInline = "inline"
	SourceStored = "stored"
	SourceBatch  = "batch"
)

// AnalyticsService defines the interface for the analytics service
type AnalyticsService interface {
	CreatePost(ctx context.Context, post entity.PostMetrics) (*entity.PostMetrics, error)
	UpsertPost(ctx context.Context, post entity.PostMetrics) (*entity.PostMetrics, error)
	GetPost(ctx context.Context, id string) (*entity.PostMetrics, error)
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, in service.ListInput) (*service.ListOutput, error)
	AnalyzeInline(post entity.PostMetrics, cohort []entity.PostMetrics) (*entity.AnalysisOutput, error)
	AnalyzePost(ctx context.Context, id string) (*entity.AnalysisOutput, error)
	AnalyzeBatch(ctx context.Context, ids []string) ([]service.BatchResult, error)
}

// Recorder records analysis metrics
type Recorder interface {
	ObserveAnalysis(source, outcome string, elapsed time.Duration)
}

// Policy orchestrates analytics use-cases
type Policy struct {
	svc     AnalyticsService
	metrics Recorder
	logger  *slog.Logger
}

// New creates a new analytics policy
func New(svc AnalyticsService, rec Recorder, logger *slog.Logger) *Policy {
	return &Policy{
		svc:     svc,
		metrics: rec,
		logger:  logger,
	}
}

// AnalyzeInput represents input for an inline analysis
type AnalyzeInput struct {
	Post   entity.PostMetrics
	Cohort []entity.PostMetrics
}

// Analyze runs the engine on caller-supplied data
func (p *Policy) Analyze(ctx context.Context, in AnalyzeInput) (*entity.AnalysisOutput, error) {
	start := time.Now()
	out, err := p.svc.AnalyzeInline(in.Post, in.Cohort)
	p.observe(ctx, SourceInline, in.Post.PostID, start, err)
	return out, err
}

// AnalyzePost runs the engine on a stored post and its stored cohort
func (p *Policy) AnalyzePost(ctx context.Context, id string) (*entity.AnalysisOutput, error) {
	start := time.Now()
	out, err := p.svc.AnalyzePost(ctx, id)
	p.observe(ctx, SourceStored, id, start, err)
	return out, err
}

// AnalyzeBatch analyzes several stored posts; per-post failures stay in the results
func (p *Policy) AnalyzeBatch(ctx context.Context, ids []string) ([]service.BatchResult, error) {
	start := time.Now()
	results, err := p.svc.AnalyzeBatch(ctx, ids)
	if err != nil {
		p.logger.ErrorContext(ctx, "batch analysis failed", "posts", len(ids), "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	failed := 0
	for _, r := range results {
		p.metrics.ObserveAnalysis(SourceBatch, outcome(r.Err), elapsed/time.Duration(max(len(results), 1)))
		if r.Err != nil {
			failed++
		}
	}
	p.logger.InfoContext(ctx, "batch analysis completed", "posts", len(ids), "failed", failed, "elapsed", elapsed)

	return results, nil
}

// CreatePost stores a new post
func (p *Policy) CreatePost(ctx context.Context, post entity.PostMetrics) (*entity.PostMetrics, error) {
	return p.svc.CreatePost(ctx, post)
}

// UpsertPost stores or replaces a post
func (p *Policy) UpsertPost(ctx context.Context, post entity.PostMetrics) (*entity.PostMetrics, error) {
	return p.svc.UpsertPost(ctx, post)
}

// GetPost retrieves a post by ID
func (p *Policy) GetPost(ctx context.Context, id string) (*entity.PostMetrics, error) {
	return p.svc.GetPost(ctx, id)
}

// DeletePost removes a post
func (p *Policy) DeletePost(ctx context.Context, id string) error {
	return p.svc.DeletePost(ctx, id)
}

// ListPostsInput represents input for listing posts
type ListPostsInput struct {
	Platform *entity.Platform
	Topic    *string
	Format   *entity.Format
	Limit    int
	Offset   int
}

// ListPostsOutput represents output from listing posts
type ListPostsOutput struct {
	Posts []entity.PostMetrics
	Total int64
}

// ListPosts retrieves posts with filtering
func (p *Policy) ListPosts(ctx context.Context, in ListPostsInput) (*ListPostsOutput, error) {
	out, err := p.svc.ListPosts(ctx, service.ListInput{
		Platform: in.Platform,
		Topic:    in.Topic,
		Format:   in.Format,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListPostsOutput{Posts: out.Posts, Total: out.Total}, nil
}

func (p *Policy) observe(ctx context.Context, source, postID string, start time.Time, err error) {
	elapsed := time.Since(start)
	p.metrics.ObserveAnalysis(source, outcome(err), elapsed)

	switch {
	case err == nil:
		p.logger.DebugContext(ctx, "post analyzed", "source", source, "post_id", postID, "elapsed", elapsed)
	case errors.Is(err, entity.ErrInvalidMetrics), errors.Is(err, entity.ErrPostNotFound):
		p.logger.InfoContext(ctx, "post analysis rejected", "source", source, "post_id", postID, "error", err)
	default:
		p.logger.ErrorContext(ctx, "post analysis failed", "source", source, "post_id", postID, "error", err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, entity.ErrInvalidMetrics):
		return metrics.OutcomeInvalid
	case errors.Is(err, entity.ErrPostNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
