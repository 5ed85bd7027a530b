package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vadim/social-insights/internal/domain/content/entity"
	"github.com/vadim/social-insights/internal/metrics"
)

// ErrUnavailable is returned by a Generator that refuses calls for now.
// Adapters wrap their own unavailability errors with it.
var ErrUnavailable = errors.New("generator unavailable")

// Generator produces social media content for a company.
// Defined here (consumer), implemented by an adapter over the pipeline client.
type Generator interface {
	Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error)
}

// GenerateInput represents input for the generator
type GenerateInput struct {
	Company entity.CompanyInput
	Options entity.GenerationOptions
}

// GenerateOutput represents what the generator produced
type GenerateOutput struct {
	RunID    string
	Content  entity.SocialMediaContent
	Research *entity.MarketResearch
	Assets   []entity.Asset
}

// AssetMirror copies a provider-hosted file into our storage and returns its stable URL
type AssetMirror interface {
	Mirror(ctx context.Context, sourceURL string) (string, error)
}

// Recorder records generation metrics
type Recorder interface {
	ObserveGeneration(outcome string, elapsed time.Duration)
	ObserveAssetMirror(kind, outcome string)
}

// Policy orchestrates content generation use-cases
type Policy struct {
	generator Generator
	mirror    AssetMirror // nil when object storage is not configured
	metrics   Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a new content policy. mirror may be nil.
func New(generator Generator, mirror AssetMirror, rec Recorder, logger *slog.Logger) *Policy {
	return &Policy{
		generator: generator,
		mirror:    mirror,
		metrics:   rec,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateContentInput represents input for generating content
type GenerateContentInput struct {
	Company entity.CompanyInput
	Options entity.GenerationOptions
}

// Generate validates the company input, runs the generator and mirrors produced assets
func (p *Policy) Generate(ctx context.Context, in GenerateContentInput) (*entity.Generation, error) {
	if err := in.Company.Validate(); err != nil {
		p.metrics.ObserveGeneration(metrics.OutcomeInvalid, 0)
		return nil, err
	}

	start := p.now()
	out, err := p.generator.Generate(ctx, GenerateInput{Company: in.Company, Options: in.Options})
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			p.metrics.ObserveGeneration(metrics.OutcomeUnavailable, elapsed)
			p.logger.WarnContext(ctx, "content generator unavailable", "company", in.Company.CompanyName, "error", err)
			return nil, fmt.Errorf("%w: %v", entity.ErrGeneratorUnavailable, err)
		}
		p.metrics.ObserveGeneration(metrics.OutcomeError, elapsed)
		p.logger.ErrorContext(ctx, "content generation failed", "company", in.Company.CompanyName, "error", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrPipelineFailed, err)
	}

	if err := out.Content.Validate(); err != nil {
		p.metrics.ObserveGeneration(metrics.OutcomeError, elapsed)
		p.logger.ErrorContext(ctx, "content pipeline returned empty content", "run_id", out.RunID)
		return nil, fmt.Errorf("%w: %v", entity.ErrPipelineFailed, err)
	}

	gen := &entity.Generation{
		ID:          uuid.New().String(),
		Input:       in.Company,
		Research:    out.Research,
		Content:     out.Content,
		Assets:      p.mirrorAssets(ctx, out.Assets),
		Warnings:    out.Content.Warnings(),
		GeneratedAt: p.now().UTC(),
	}

	p.metrics.ObserveGeneration(metrics.OutcomeSuccess, elapsed)
	p.logger.InfoContext(ctx, "content generated",
		"generation_id", gen.ID,
		"run_id", out.RunID,
		"company", in.Company.CompanyName,
		"instagram", len(gen.Content.Instagram),
		"linkedin", len(gen.Content.LinkedIn),
		"assets", len(gen.Assets),
	)

	return gen, nil
}

// mirrorAssets copies each asset to storage; a failed copy keeps the provider URL
func (p *Policy) mirrorAssets(ctx context.Context, assets []entity.Asset) []entity.Asset {
	result := make([]entity.Asset, 0, len(assets))
	for _, a := range assets {
		if p.mirror == nil || a.SourceURL == "" {
			result = append(result, a)
			continue
		}

		url, err := p.mirror.Mirror(ctx, a.SourceURL)
		if err != nil {
			p.metrics.ObserveAssetMirror(string(a.Kind), metrics.OutcomeError)
			p.logger.WarnContext(ctx, "failed to mirror asset",
				"kind", a.Kind,
				"platform", a.Platform,
				"index", a.Index,
				"error", err,
			)
			result = append(result, a)
			continue
		}

		p.metrics.ObserveAssetMirror(string(a.Kind), metrics.OutcomeSuccess)
		a.URL = url
		result = append(result, a)
	}
	return result
}
